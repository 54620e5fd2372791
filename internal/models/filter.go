package models

import (
	"errors"
	"fmt"
)

// SortKey ключ сортировки списка подписок.
type SortKey string

const (
	SortBillingAsc  SortKey = "billing-asc"
	SortBillingDesc SortKey = "billing-desc"
	SortPriceAsc    SortKey = "price-asc"
	SortPriceDesc   SortKey = "price-desc"
	SortNameAsc     SortKey = "name-asc"
	SortNameDesc    SortKey = "name-desc"
	SortRecent      SortKey = "recent"
)

// ParseSortKey нормализует ключ сортировки. Старые значения cost-asc и cost-desc
// считаются синонимами сортировки по цене.
func ParseSortKey(s string) SortKey {
	switch s {
	case "cost-asc":
		return SortPriceAsc
	case "cost-desc":
		return SortPriceDesc
	}
	return SortKey(s)
}

// Valid сообщает, известен ли ключ сортировки.
func (k SortKey) Valid() bool {
	switch k {
	case SortBillingAsc, SortBillingDesc, SortPriceAsc, SortPriceDesc,
		SortNameAsc, SortNameDesc, SortRecent:
		return true
	}
	return false
}

// FilterConfig критерии фильтрации и сортировки списка подписок.
// Пустое значение фильтра означает его отсутствие.
type FilterConfig struct {
	Search       string       `json:"search"`
	Status       Status       `json:"status,omitempty"`
	BillingCycle BillingCycle `json:"billing_cycle,omitempty"`
	Category     Category     `json:"category,omitempty"`
	Sort         SortKey      `json:"sort"`
}

// DefaultFilterConfig возвращает критерии без фильтров с сортировкой по ближайшему списанию.
func DefaultFilterConfig() FilterConfig {
	return FilterConfig{Sort: SortBillingAsc}
}

// FilterQuery параметры запроса списка до валидации.
type FilterQuery struct {
	Search       string `validate:"max=100"`
	Status       string `validate:"omitempty,oneof=all active paused trial cancelled"`
	BillingCycle string `validate:"omitempty,oneof=all monthly yearly"`
	Category     string `validate:"omitempty,oneof=all Entertainment Business Food Housing Utilities Fitness ECommerce Other"`
	Sort         string `validate:"omitempty,oneof=billing-asc billing-desc price-asc price-desc name-asc name-desc recent cost-asc cost-desc"`
}

// Config переводит провалидированный запрос в критерии. Значение all снимает фильтр.
func (q FilterQuery) Config() FilterConfig {
	cfg := DefaultFilterConfig()
	cfg.Search = q.Search
	cfg.Status = Status(dropAll(q.Status))
	cfg.BillingCycle = BillingCycle(dropAll(q.BillingCycle))
	cfg.Category = Category(dropAll(q.Category))
	if q.Sort != "" {
		cfg.Sort = ParseSortKey(q.Sort)
	}
	return cfg
}

// ErrInvalidFilter возвращается при неизвестном значении фильтра или сортировки.
var ErrInvalidFilter = errors.New("invalid filter value")

// FilterPatch частичное изменение критериев. nil-поле не меняется,
// пустая строка или all снимают соответствующий фильтр.
type FilterPatch struct {
	Search       *string `json:"search,omitempty"`
	Status       *string `json:"status,omitempty"`
	BillingCycle *string `json:"billing_cycle,omitempty"`
	Category     *string `json:"category,omitempty"`
	Sort         *string `json:"sort,omitempty"`
}

// Merge применяет изменения к cfg и возвращает новые критерии.
func (p FilterPatch) Merge(cfg FilterConfig) (FilterConfig, error) {
	if p.Search != nil {
		cfg.Search = *p.Search
	}
	if p.Status != nil {
		st := Status(dropAll(*p.Status))
		if st != "" && !st.Valid() {
			return cfg, fmt.Errorf("status %q: %w", *p.Status, ErrInvalidFilter)
		}
		cfg.Status = st
	}
	if p.BillingCycle != nil {
		bc := BillingCycle(dropAll(*p.BillingCycle))
		if bc != "" && !bc.Valid() {
			return cfg, fmt.Errorf("billing_cycle %q: %w", *p.BillingCycle, ErrInvalidFilter)
		}
		cfg.BillingCycle = bc
	}
	if p.Category != nil {
		c := Category(dropAll(*p.Category))
		if c != "" && !c.Valid() {
			return cfg, fmt.Errorf("category %q: %w", *p.Category, ErrInvalidFilter)
		}
		cfg.Category = c
	}
	if p.Sort != nil {
		k := ParseSortKey(*p.Sort)
		if !k.Valid() {
			return cfg, fmt.Errorf("sort %q: %w", *p.Sort, ErrInvalidFilter)
		}
		cfg.Sort = k
	}
	return cfg, nil
}

func dropAll(s string) string {
	if s == "all" {
		return ""
	}
	return s
}

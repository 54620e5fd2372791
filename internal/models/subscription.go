// Package models содержит доменные структуры трекера подписок,
// а также вспомогательные типы для приёма данных из JSON-запросов.
package models

import (
	"encoding/json"
	"time"
)

// BillingCycle период списания по подписке.
type BillingCycle string

const (
	BillingMonthly BillingCycle = "monthly"
	BillingYearly  BillingCycle = "yearly"
)

// Valid сообщает, является ли значение известным периодом списания.
func (c BillingCycle) Valid() bool {
	return c == BillingMonthly || c == BillingYearly
}

// Category категория подписки. Набор категорий фиксирован.
type Category string

const (
	CategoryEntertainment Category = "Entertainment"
	CategoryBusiness      Category = "Business"
	CategoryFood          Category = "Food"
	CategoryHousing       Category = "Housing"
	CategoryUtilities     Category = "Utilities"
	CategoryFitness       Category = "Fitness"
	CategoryECommerce     Category = "ECommerce"
	CategoryOther         Category = "Other"
)

// Categories перечисляет все известные категории в порядке отображения.
var Categories = []Category{
	CategoryEntertainment,
	CategoryBusiness,
	CategoryFood,
	CategoryHousing,
	CategoryUtilities,
	CategoryFitness,
	CategoryECommerce,
	CategoryOther,
}

// Valid сообщает, входит ли категория в фиксированный набор.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Status жизненный статус подписки.
type Status string

const (
	StatusActive    Status = "active"
	StatusPaused    Status = "paused"
	StatusTrial     Status = "trial"
	StatusCancelled Status = "cancelled"
)

// Valid сообщает, является ли значение известным статусом.
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusPaused, StatusTrial, StatusCancelled:
		return true
	}
	return false
}

// Subscription основная модель подписки пользователя.
//
// NextBillingDate равен nil, если дата отсутствует или не распознана:
// такие записи не считаются ошибкой и при сортировке по дате идут последними.
// Description и TrialEndDate необязательны.
type Subscription struct {
	ID              string       `json:"id"`
	UserID          string       `json:"user_id"`
	Name            string       `json:"name"`
	Price           float64      `json:"price"` // Цена за один период BillingCycle
	BillingCycle    BillingCycle `json:"billing_cycle"`
	Category        Category     `json:"category"`
	Status          Status       `json:"status"`
	NextBillingDate *time.Time   `json:"next_billing_date"`
	TrialEndDate    *time.Time   `json:"trial_end_date,omitempty"`
	Description     *string      `json:"description,omitempty"`
	StatusChangedAt time.Time    `json:"status_changed_at"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
}

// IsActive единственный предикат активности подписки.
// Все агрегаты и фильтры опираются только на него.
func (s Subscription) IsActive() bool {
	return s.Status == StatusActive
}

// MarshalJSON добавляет в ответ производное поле is_active.
func (s Subscription) MarshalJSON() ([]byte, error) {
	type alias Subscription
	return json.Marshal(struct {
		alias
		IsActive bool `json:"is_active"`
	}{
		alias:    alias(s),
		IsActive: s.IsActive(),
	})
}

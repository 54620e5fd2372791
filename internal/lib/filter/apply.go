// Package filter отбирает и сортирует подписки по критериям FilterConfig.
//
// Apply чистая функция: она не меняет входной срез и возвращает новый.
// Pipeline хранит базовый список и критерии и пересчитывает результат
// при каждом их фактическом изменении.
package filter

import (
	"cmp"
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

// Apply применяет фильтры (все условия через И) и устойчивую сортировку.
func Apply(subs []models.Subscription, cfg models.FilterConfig) []models.Subscription {
	result := make([]models.Subscription, 0, len(subs))
	for _, sub := range subs {
		if matches(sub, cfg) {
			result = append(result, sub)
		}
	}

	if cmpFn := comparator(cfg.Sort); cmpFn != nil {
		slices.SortStableFunc(result, cmpFn)
	}
	return result
}

func matches(sub models.Subscription, cfg models.FilterConfig) bool {
	if strings.TrimSpace(cfg.Search) != "" && !matchesSearch(sub, cfg.Search) {
		return false
	}
	if cfg.Status != "" && sub.Status != cfg.Status {
		return false
	}
	if cfg.BillingCycle != "" && sub.BillingCycle != cfg.BillingCycle {
		return false
	}
	if cfg.Category != "" && sub.Category != cfg.Category {
		return false
	}
	return true
}

func matchesSearch(sub models.Subscription, search string) bool {
	query := strings.ToLower(search)
	if strings.Contains(strings.ToLower(sub.Name), query) {
		return true
	}
	return sub.Description != nil && strings.Contains(strings.ToLower(*sub.Description), query)
}

type compareFunc func(a, b models.Subscription) int

// comparator возвращает nil для неизвестного ключа: порядок остаётся входным.
func comparator(key models.SortKey) compareFunc {
	switch models.ParseSortKey(string(key)) {
	case models.SortBillingAsc:
		return byBillingDate(false)
	case models.SortBillingDesc:
		return byBillingDate(true)
	case models.SortPriceAsc:
		return func(a, b models.Subscription) int { return cmp.Compare(a.Price, b.Price) }
	case models.SortPriceDesc:
		return func(a, b models.Subscription) int { return cmp.Compare(b.Price, a.Price) }
	case models.SortNameAsc:
		return byName(false)
	case models.SortNameDesc:
		return byName(true)
	case models.SortRecent:
		return func(a, b models.Subscription) int { return b.CreatedAt.Compare(a.CreatedAt) }
	}
	return nil
}

// byBillingDate ставит записи без даты после всех датированных в обоих направлениях.
func byBillingDate(desc bool) compareFunc {
	return func(a, b models.Subscription) int {
		switch {
		case a.NextBillingDate == nil && b.NextBillingDate == nil:
			return 0
		case a.NextBillingDate == nil:
			return 1
		case b.NextBillingDate == nil:
			return -1
		}
		if desc {
			return b.NextBillingDate.Compare(*a.NextBillingDate)
		}
		return a.NextBillingDate.Compare(*b.NextBillingDate)
	}
}

// byName сравнивает названия с учётом правил языка. Collator не потокобезопасен,
// поэтому создаётся на каждую сортировку.
func byName(desc bool) compareFunc {
	coll := collate.New(language.Und)
	return func(a, b models.Subscription) int {
		if desc {
			return coll.CompareString(b.Name, a.Name)
		}
		return coll.CompareString(a.Name, b.Name)
	}
}

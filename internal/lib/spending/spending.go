// Package spending считает сводные показатели по подпискам пользователя:
// месячные и годовые расходы, число активных подписок, разбивку по категориям.
//
// Все функции чистые. Список подписок передаётся явно и уже ограничен
// текущим пользователем. Пустая категория означает "без фильтра по категории".
// Активной считается подписка, для которой models.Subscription.IsActive возвращает true.
package spending

import (
	"errors"
	"fmt"
	"math"

	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

// ErrUnknownBillingCycle возвращается, если у подписки период, отличный от monthly и yearly.
// Такая запись нарушает контракт входных данных и не учитывается молча.
var ErrUnknownBillingCycle = errors.New("unknown billing cycle")

// MonthlyEquivalent приводит цену подписки к месячной: годовая делится на 12.
func MonthlyEquivalent(sub models.Subscription) (float64, error) {
	switch sub.BillingCycle {
	case models.BillingMonthly:
		return sub.Price, nil
	case models.BillingYearly:
		return sub.Price / 12, nil
	}
	return 0, unknownCycle(sub)
}

// YearlyEquivalent приводит цену подписки к годовой: месячная умножается на 12.
func YearlyEquivalent(sub models.Subscription) (float64, error) {
	switch sub.BillingCycle {
	case models.BillingMonthly:
		return sub.Price * 12, nil
	case models.BillingYearly:
		return sub.Price, nil
	}
	return 0, unknownCycle(sub)
}

// TotalMonthlySpending суммирует месячные эквиваленты активных подписок.
func TotalMonthlySpending(subs []models.Subscription, category models.Category) (float64, error) {
	return total(subs, category, MonthlyEquivalent)
}

// TotalYearlySpending суммирует годовые эквиваленты активных подписок.
func TotalYearlySpending(subs []models.Subscription, category models.Category) (float64, error) {
	return total(subs, category, YearlyEquivalent)
}

// ActiveCount возвращает число активных подписок, при необходимости в одной категории.
func ActiveCount(subs []models.Subscription, category models.Category) int {
	count := 0
	for _, sub := range subs {
		if counted(sub, category) {
			count++
		}
	}
	return count
}

// SpendingByCategory возвращает месячные расходы активных подписок по каждой известной категории.
// Категории без подписок присутствуют с нулём.
func SpendingByCategory(subs []models.Subscription) (map[models.Category]float64, error) {
	result := make(map[models.Category]float64, len(models.Categories))
	for _, c := range models.Categories {
		result[c] = 0
	}
	for _, sub := range subs {
		if !sub.IsActive() {
			continue
		}
		monthly, err := MonthlyEquivalent(sub)
		if err != nil {
			return nil, err
		}
		result[sub.Category] += monthly
	}
	return result, nil
}

// percentageChanges временная таблица изменения расходов к прошлому месяцу.
// TODO: считать по снимкам расходов за прошлые месяцы, когда появится их хранение.
var percentageChanges = map[models.Category]float64{
	models.CategoryEntertainment: 5.2,
	models.CategoryBusiness:      -3.1,
	models.CategoryFitness:       12.5,
	models.CategoryECommerce:     -8.7,
	models.CategoryOther:         2.3,
}

const overallPercentageChange = 1.8

// PercentageChange возвращает изменение расходов в процентах к прошлому месяцу.
// Значения не вычисляются из данных: это заглушка. Для категорий вне таблицы возвращается 0.
func PercentageChange(category models.Category) float64 {
	if category == "" {
		return overallPercentageChange
	}
	return percentageChanges[category]
}

// Round округляет сумму до двух знаков для отображения.
func Round(x float64) float64 {
	return math.Round(x*100) / 100
}

func total(subs []models.Subscription, category models.Category,
	equivalent func(models.Subscription) (float64, error)) (float64, error) {
	var sum float64
	for _, sub := range subs {
		if !counted(sub, category) {
			continue
		}
		v, err := equivalent(sub)
		if err != nil {
			return 0, err
		}
		sum += v
	}
	return sum, nil
}

func counted(sub models.Subscription, category models.Category) bool {
	return sub.IsActive() && (category == "" || sub.Category == category)
}

func unknownCycle(sub models.Subscription) error {
	return fmt.Errorf("subscription %s: %q: %w", sub.ID, sub.BillingCycle, ErrUnknownBillingCycle)
}

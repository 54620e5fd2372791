// Package billing содержит календарную арифметику дат списания:
// следующая дата по периоду, перенос просроченной даты вперёд,
// количество дней до списания и степень его близости.
package billing

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

const (
	urgentDays   = 3
	upcomingDays = 7

	// maxRollSteps ограничивает перенос даты, записанной с ошибкой на века назад.
	maxRollSteps = 1200
)

// ErrUnknownCycle возвращается для периода, отличного от monthly и yearly.
var ErrUnknownCycle = errors.New("unknown billing cycle")

// Today возвращает полночь дня now в его часовом поясе.
func Today(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, now.Location())
}

// NextDate возвращает дату, отстоящую от from на один период.
func NextDate(from time.Time, cycle models.BillingCycle) (time.Time, error) {
	switch cycle {
	case models.BillingMonthly:
		return addMonths(from, 1), nil
	case models.BillingYearly:
		return addMonths(from, 12), nil
	}
	return time.Time{}, fmt.Errorf("%q: %w", cycle, ErrUnknownCycle)
}

// RollForward переносит прошедшую дату списания вперёд на целое число периодов,
// пока она не станет не раньше today. Будущая дата возвращается без изменений.
func RollForward(date time.Time, cycle models.BillingCycle, today time.Time) (time.Time, error) {
	const op = "billing.RollForward"
	if !cycle.Valid() {
		return time.Time{}, fmt.Errorf("%s: %q: %w", op, cycle, ErrUnknownCycle)
	}
	// Шагаем от исходной даты, чтобы 31-е число не "съезжало" после коротких месяцев.
	next := date
	for i := 1; next.Before(today); i++ {
		if i > maxRollSteps {
			return time.Time{}, fmt.Errorf("%s: date %s is too far in the past", op, date.Format(models.DateLayout))
		}
		if cycle == models.BillingMonthly {
			next = addMonths(date, i)
		} else {
			next = addMonths(date, 12*i)
		}
	}
	return next, nil
}

// addMonths сдвигает дату на n месяцев. Если в целевом месяце нет такого числа,
// берётся его последний день: 31 января даёт 28 (29) февраля.
func addMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(n), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	if last := first.AddDate(0, 1, -1).Day(); d > last {
		d = last
	}
	return first.AddDate(0, 0, d-1)
}

// DaysUntil возвращает количество дней до date, округлённое вверх.
// Для прошедших дат результат отрицательный или ноль.
func DaysUntil(date, now time.Time) int {
	return int(math.Ceil(date.Sub(now).Hours() / 24))
}

// Proximity оценивает близость списания: urgent при трёх днях и меньше,
// upcoming при сроке от четырёх до семи дней.
func Proximity(date, now time.Time) models.Urgency {
	days := DaysUntil(date, now)
	switch {
	case days <= urgentDays:
		return models.UrgencyUrgent
	case days <= upcomingDays:
		return models.UrgencyUpcoming
	}
	return models.UrgencyNone
}

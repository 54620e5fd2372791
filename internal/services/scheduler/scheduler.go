// Package services содержит фоновые задачи: рассылку напоминаний о списаниях
// и окончании пробных периодов и перенос прошедших дат списания вперёд.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/subscription-tracker/internal/cache"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/billing"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/metrics"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

const (
	// billingWindowDays за сколько дней напоминать о списании.
	billingWindowDays = 7
	// trialWindowDays за сколько дней напоминать об окончании пробного периода.
	trialWindowDays = 3
)

// SubscriptionRepository методы хранилища, нужные фоновым задачам.
type SubscriptionRepository interface {
	FindUpcomingBillings(ctx context.Context, from, to time.Time) ([]models.BillingReminder, error)
	FindEndingTrials(ctx context.Context, from, to time.Time) ([]models.BillingReminder, error)
	FindStaleBillingDates(ctx context.Context, before time.Time) ([]models.Subscription, error)
	UpdateNextBillingDate(ctx context.Context, id string, next time.Time) error
}

// Publisher публикует сообщение с ключом маршрутизации.
type Publisher interface {
	Publish(routingKey string, message any) error
}

// Cache сбрасывает закешированные подписки после переноса дат.
type Cache interface {
	Invalidate(ctx context.Context, keys ...string) error
}

// SchedulerService реализует фоновые задачи.
type SchedulerService struct {
	repo      SubscriptionRepository
	publisher Publisher
	cache     Cache
	loc       *time.Location
	log       *slog.Logger
	now       func() time.Time
}

// NewSchedulerService создает новый экземпляр SchedulerService.
// Границы "сегодня" считаются в часовом поясе loc.
func NewSchedulerService(repo SubscriptionRepository, publisher Publisher, c Cache, loc *time.Location, log *slog.Logger) *SchedulerService {
	if loc == nil {
		loc = time.UTC
	}
	return &SchedulerService{
		repo:      repo,
		publisher: publisher,
		cache:     c,
		loc:       loc,
		log:       log,
		now:       time.Now,
	}
}

// SendReminders публикует напоминания о списаниях в ближайшие семь дней
// и об окончании пробных периодов в ближайшие три дня. Возвращает число опубликованных.
// Ошибка публикации одного напоминания не прерывает остальные.
func (s *SchedulerService) SendReminders(ctx context.Context) (int, error) {
	const op = "services.scheduler.SendReminders"
	log := s.log.With(slog.String("op", op))

	now := s.now().In(s.loc)
	today := calendarDay(now)

	billings, err := s.repo.FindUpcomingBillings(ctx, today, today.AddDate(0, 0, billingWindowDays))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	trials, err := s.repo.FindEndingTrials(ctx, today, today.AddDate(0, 0, trialWindowDays))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	reminders := append(billings, trials...)
	if len(reminders) == 0 {
		log.Info("no upcoming billings or ending trials found")
		return 0, nil
	}
	log.Info("found reminders", slog.Int("billing", len(billings)), slog.Int("trial", len(trials)))

	sent := 0
	for _, r := range reminders {
		date := time.Date(r.Date.Year(), r.Date.Month(), r.Date.Day(), 0, 0, 0, 0, s.loc)
		r.DaysLeft = billing.DaysUntil(date, now)
		r.Urgency = billing.Proximity(date, now)

		if err := s.publisher.Publish(rabbitmq.RoutingKeyFor(r.Kind), r); err != nil {
			log.Error("failed to publish reminder", slog.String("subscription_id", r.SubscriptionID), sl.Err(err))
			continue
		}
		metrics.RemindersPublished.WithLabelValues(string(r.Kind)).Inc()
		sent++
	}
	return sent, nil
}

// RollForwardBillingDates переносит прошедшие даты списания активных подписок
// на ближайшую дату не раньше сегодняшней. Возвращает число обновлённых подписок.
func (s *SchedulerService) RollForwardBillingDates(ctx context.Context) (int, error) {
	const op = "services.scheduler.RollForwardBillingDates"
	log := s.log.With(slog.String("op", op))

	todayUTC := calendarDay(s.now().In(s.loc))

	stale, err := s.repo.FindStaleBillingDates(ctx, todayUTC)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	updated := 0
	for _, sub := range stale {
		if sub.NextBillingDate == nil {
			continue
		}
		next, err := billing.RollForward(*sub.NextBillingDate, sub.BillingCycle, todayUTC)
		if err != nil {
			log.Warn("cannot roll billing date forward", slog.String("subscription_id", sub.ID), sl.Err(err))
			continue
		}
		if err = s.repo.UpdateNextBillingDate(ctx, sub.ID, next); err != nil {
			log.Error("failed to update billing date", slog.String("subscription_id", sub.ID), sl.Err(err))
			continue
		}
		if s.cache != nil {
			if err = s.cache.Invalidate(ctx, cache.SubscriptionKey(sub.ID), cache.UserListKey(sub.UserID)); err != nil {
				log.Warn("failed to remove from cache", slog.String("subscription_id", sub.ID), sl.Err(err))
			}
		}
		metrics.BillingDatesRolled.Inc()
		updated++
	}
	if updated > 0 {
		log.Info("billing dates rolled forward", slog.Int("count", updated))
	}
	return updated, nil
}

// calendarDay возвращает дату t как полночь UTC: так хранятся даты в базе.
func calendarDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

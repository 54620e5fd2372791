// Package services содержит бизнес-логику управления подписками:
// проверку формы, CRUD с кешированием, отфильтрованный список и сводку расходов.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/magabrotheeeer/subscription-tracker/internal/cache"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/billing"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/filter"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/spending"
	"github.com/magabrotheeeer/subscription-tracker/internal/models"
	"github.com/magabrotheeeer/subscription-tracker/internal/storage"
)

// Ошибки проверки формы подписки.
var (
	ErrEmptyName            = errors.New("name is required")
	ErrUnknownChoice        = errors.New("unknown billing cycle, category or status")
	ErrInvalidPrice         = errors.New("price must be a number between 0.01 and 9999999999.99")
	ErrInvalidDate          = errors.New("date must be in format YYYY-MM-DD")
	ErrBillingDateInPast    = errors.New("next billing date must be today or later")
	ErrTrialEndRequired     = errors.New("trial end date is required for trial subscriptions")
	ErrTrialEndAfterBilling = errors.New("trial end date must not be after next billing date")
)

var formErrors = []error{
	ErrEmptyName, ErrUnknownChoice, ErrInvalidPrice, ErrInvalidDate,
	ErrBillingDateInPast, ErrTrialEndRequired, ErrTrialEndAfterBilling,
}

// maxPrice соответствует столбцу NUMERIC(12, 2).
const maxPrice = 9999999999.99

// IsFormError сообщает, вызвана ли ошибка некорректными данными формы.
func IsFormError(err error) bool {
	for _, target := range formErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// SubscriptionRepository определяет методы хранилища подписок.
type SubscriptionRepository interface {
	// CreateSubscription добавляет подписку и возвращает её ID.
	CreateSubscription(ctx context.Context, sub models.Subscription) (string, error)
	// ListSubscriptionsByUser возвращает все подписки пользователя.
	ListSubscriptionsByUser(ctx context.Context, userID string) ([]models.Subscription, error)
	// ReadSubscription возвращает подписку пользователя по ID.
	ReadSubscription(ctx context.Context, userID, id string) (*models.Subscription, error)
	// UpdateSubscription перезаписывает подписку.
	UpdateSubscription(ctx context.Context, sub models.Subscription) error
	// RemoveSubscription удаляет подписку пользователя.
	RemoveSubscription(ctx context.Context, userID, id string) error
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Invalidate(ctx context.Context, keys ...string) error
}

// ViewRefresher получает свежий список подписок пользователя после изменений.
type ViewRefresher interface {
	Refresh(userID string, subs []models.Subscription)
}

// SubscriptionService реализует бизнес-логику работы с подписками, включая кеширование.
type SubscriptionService struct {
	repo  SubscriptionRepository
	cache Cache
	ttl   time.Duration
	view  ViewRefresher
	log   *slog.Logger
	now   func() time.Time
}

// NewSubscriptionService создает новый экземпляр SubscriptionService.
func NewSubscriptionService(repo SubscriptionRepository, c Cache, ttl time.Duration, log *slog.Logger) *SubscriptionService {
	return &SubscriptionService{
		repo:  repo,
		cache: c,
		ttl:   ttl,
		log:   log,
		now:   time.Now,
	}
}

// SetViewRefresher подключает получателя обновлений списка.
func (s *SubscriptionService) SetViewRefresher(v ViewRefresher) {
	s.view = v
}

// Create проверяет форму, сохраняет подписку и возвращает её ID.
func (s *SubscriptionService) Create(ctx context.Context, userID string, form models.SubscriptionForm) (string, error) {
	const op = "services.subscription.Create"

	sub, err := s.fromForm(form)
	if err != nil {
		return "", err
	}
	sub.UserID = userID

	id, err := s.repo.CreateSubscription(ctx, sub)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("created new subscription", slog.String("id", id), slog.String("user_id", userID))

	s.changed(ctx, userID)
	return id, nil
}

// Read возвращает подписку пользователя, используя кеш или репозиторий.
// Чужая подписка неотличима от отсутствующей.
func (s *SubscriptionService) Read(ctx context.Context, userID, id string) (*models.Subscription, error) {
	const op = "services.subscription.Read"

	var cached models.Subscription
	found, err := s.cache.Get(ctx, cache.SubscriptionKey(id), &cached)
	if err != nil {
		s.log.Warn("failed to read from cache", slog.String("key", cache.SubscriptionKey(id)), sl.Err(err))
	}
	if found {
		if cached.UserID != userID {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}
		return &cached, nil
	}

	sub, err := s.repo.ReadSubscription(ctx, userID, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.cacheSet(ctx, cache.SubscriptionKey(id), *sub)
	return sub, nil
}

// Update заменяет поля подписки значениями из формы.
func (s *SubscriptionService) Update(ctx context.Context, userID, id string, form models.SubscriptionForm) (*models.Subscription, error) {
	const op = "services.subscription.Update"

	sub, err := s.fromForm(form)
	if err != nil {
		return nil, err
	}
	sub.ID = id
	sub.UserID = userID

	if err = s.repo.UpdateSubscription(ctx, sub); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("updated subscription", slog.String("id", id))

	s.invalidate(ctx, cache.SubscriptionKey(id))
	s.changed(ctx, userID)

	updated, err := s.repo.ReadSubscription(ctx, userID, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return updated, nil
}

// Remove удаляет подписку пользователя и инвалидирует кеш.
func (s *SubscriptionService) Remove(ctx context.Context, userID, id string) error {
	const op = "services.subscription.Remove"

	if err := s.repo.RemoveSubscription(ctx, userID, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("removed subscription", slog.String("id", id))

	s.invalidate(ctx, cache.SubscriptionKey(id))
	s.changed(ctx, userID)
	return nil
}

// All возвращает все подписки пользователя. Список кешируется целиком.
func (s *SubscriptionService) All(ctx context.Context, userID string) ([]models.Subscription, error) {
	const op = "services.subscription.All"

	var subs []models.Subscription
	found, err := s.cache.Get(ctx, cache.UserListKey(userID), &subs)
	if err != nil {
		s.log.Warn("failed to read from cache", slog.String("key", cache.UserListKey(userID)), sl.Err(err))
	}
	if found {
		return subs, nil
	}

	subs, err = s.repo.ListSubscriptionsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.cacheSet(ctx, cache.UserListKey(userID), subs)
	return subs, nil
}

// List возвращает подписки пользователя, отобранные и упорядоченные по cfg.
func (s *SubscriptionService) List(ctx context.Context, userID string, cfg models.FilterConfig) (*models.ListResult, error) {
	subs, err := s.All(ctx, userID)
	if err != nil {
		return nil, err
	}
	entries := filter.Apply(subs, cfg)
	return &models.ListResult{
		Entries: entries,
		Shown:   len(entries),
		Total:   len(subs),
	}, nil
}

// Overview считает сводку расходов по активным подпискам пользователя.
// Пустая category означает все категории.
func (s *SubscriptionService) Overview(ctx context.Context, userID string, category models.Category) (*models.Overview, error) {
	const op = "services.subscription.Overview"

	subs, err := s.All(ctx, userID)
	if err != nil {
		return nil, err
	}

	monthly, err := spending.TotalMonthlySpending(subs, category)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	yearly, err := spending.TotalYearlySpending(subs, category)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	byCategory, err := spending.SpendingByCategory(subs)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &models.Overview{
		Category:         category,
		MonthlySpending:  monthly,
		YearlySpending:   yearly,
		ActiveCount:      spending.ActiveCount(subs, category),
		PercentageChange: spending.PercentageChange(category),
		ByCategory:       byCategory,
	}, nil
}

// fromForm проверяет форму и собирает из неё подписку.
// Дата окончания пробного периода сохраняется только для статуса trial.
func (s *SubscriptionService) fromForm(form models.SubscriptionForm) (models.Subscription, error) {
	name := strings.TrimSpace(form.Name)
	if name == "" {
		return models.Subscription{}, ErrEmptyName
	}

	if !form.BillingCycle.Valid() || !form.Category.Valid() || !form.Status.Valid() {
		return models.Subscription{}, ErrUnknownChoice
	}

	price, err := form.Price.Float()
	if err != nil {
		return models.Subscription{}, ErrInvalidPrice
	}
	// Цена хранится с точностью до копеек.
	price = math.Round(price*100) / 100
	if price <= 0 || price > maxPrice {
		return models.Subscription{}, ErrInvalidPrice
	}

	today := billing.Today(s.now().UTC())

	var next time.Time
	if strings.TrimSpace(form.NextBillingDate) == "" {
		next, err = billing.NextDate(today, form.BillingCycle)
		if err != nil {
			return models.Subscription{}, err
		}
	} else {
		next, err = parseDate(form.NextBillingDate)
		if err != nil {
			return models.Subscription{}, err
		}
		if next.Before(today) {
			return models.Subscription{}, ErrBillingDateInPast
		}
	}

	sub := models.Subscription{
		Name:            name,
		Price:           price,
		BillingCycle:    form.BillingCycle,
		Category:        form.Category,
		Status:          form.Status,
		NextBillingDate: &next,
	}

	if form.Status == models.StatusTrial {
		if strings.TrimSpace(form.TrialEndDate) == "" {
			return models.Subscription{}, ErrTrialEndRequired
		}
		trialEnd, err := parseDate(form.TrialEndDate)
		if err != nil {
			return models.Subscription{}, err
		}
		if trialEnd.After(next) {
			return models.Subscription{}, ErrTrialEndAfterBilling
		}
		sub.TrialEndDate = &trialEnd
	}

	if desc := strings.TrimSpace(form.Description); desc != "" {
		sub.Description = &desc
	}
	return sub, nil
}

func parseDate(value string) (time.Time, error) {
	t, err := time.Parse(models.DateLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, fmt.Errorf("%q: %w", value, ErrInvalidDate)
	}
	return t, nil
}

func (s *SubscriptionService) cacheSet(ctx context.Context, key string, value any) {
	if err := s.cache.Set(ctx, key, value, s.ttl); err != nil {
		s.log.Warn("failed to cache value", slog.String("key", key), sl.Err(err))
	}
}

func (s *SubscriptionService) invalidate(ctx context.Context, keys ...string) {
	if err := s.cache.Invalidate(ctx, keys...); err != nil {
		s.log.Warn("failed to remove from cache", slog.Any("keys", keys), sl.Err(err))
	}
}

// changed сбрасывает кеш списка пользователя и передаёт свежий список в представление.
func (s *SubscriptionService) changed(ctx context.Context, userID string) {
	s.invalidate(ctx, cache.UserListKey(userID))
	if s.view == nil {
		return
	}
	subs, err := s.All(ctx, userID)
	if err != nil {
		s.log.Warn("failed to refresh view", slog.String("user_id", userID), sl.Err(err))
		return
	}
	s.view.Refresh(userID, subs)
}

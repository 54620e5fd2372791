// Package services хранит для каждого пользователя состояние фильтров списка
// подписок и держит отфильтрованный результат актуальным между запросами.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/magabrotheeeer/subscription-tracker/internal/cache"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/filter"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/metrics"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

// session хранит конвейер пользователя и момент последней загрузки его списка.
type session struct {
	pipeline *filter.Pipeline
	loadedAt atomic.Int64
}

func (s *session) touch(now time.Time) {
	s.loadedAt.Store(now.UnixNano())
}

func (s *session) stale(now time.Time, after time.Duration) bool {
	return after > 0 && now.Sub(time.Unix(0, s.loadedAt.Load())) >= after
}

// Loader загружает все подписки пользователя.
type Loader interface {
	All(ctx context.Context, userID string) ([]models.Subscription, error)
}

// ViewService управляет состояниями фильтров пользователей.
// Состояния живут в памяти процесса и вытесняются по LRU и времени простоя.
// Изменения из других процессов (перенос дат планировщиком) подхватываются
// при обращении к состоянию старше reloadAfter.
type ViewService struct {
	loader      Loader
	sessions    *cache.LRU[*session]
	reloadAfter time.Duration
	log         *slog.Logger
	now         func() time.Time
}

// NewViewService создает новый экземпляр ViewService.
func NewViewService(loader Loader, maxSessions int, ttl time.Duration, log *slog.Logger) *ViewService {
	return &ViewService{
		loader:   loader,
		sessions: cache.NewLRU[*session](maxSessions, ttl),
		log:      log,
		now:      time.Now,
	}
}

// SetReloadAfter задаёт возраст состояния, после которого список перечитывается.
// Ноль отключает перечитывание.
func (s *ViewService) SetReloadAfter(d time.Duration) {
	s.reloadAfter = d
}

// Get возвращает текущее состояние списка, создавая его при первом обращении.
func (s *ViewService) Get(ctx context.Context, userID string) (*models.View, error) {
	p, err := s.pipeline(ctx, userID)
	if err != nil {
		return nil, err
	}
	return snapshot(p), nil
}

// Patch меняет переданные поля критериев за один пересчёт.
// Неизвестное значение фильтра возвращает models.ErrInvalidFilter, состояние не меняется.
func (s *ViewService) Patch(ctx context.Context, userID string, patch models.FilterPatch) (*models.View, error) {
	const op = "services.view.Patch"
	p, err := s.pipeline(ctx, userID)
	if err != nil {
		return nil, err
	}
	if _, err = p.Update(patch); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return snapshot(p), nil
}

// Clear сбрасывает фильтры и сортировку к значениям по умолчанию.
func (s *ViewService) Clear(ctx context.Context, userID string) (*models.View, error) {
	p, err := s.pipeline(ctx, userID)
	if err != nil {
		return nil, err
	}
	p.ClearFilters()
	return snapshot(p), nil
}

// Refresh заменяет базовый список, если состояние пользователя уже есть в памяти.
func (s *ViewService) Refresh(userID string, subs []models.Subscription) {
	sess, ok := s.sessions.Peek(userID)
	if !ok {
		return
	}
	sess.pipeline.SetSubscriptions(subs)
	sess.touch(s.now())
}

// Sessions возвращает число состояний в памяти.
func (s *ViewService) Sessions() int {
	return s.sessions.Len()
}

// CleanExpired удаляет состояния, к которым давно не обращались.
func (s *ViewService) CleanExpired() int {
	n := s.sessions.CleanExpired()
	metrics.ViewSessions.Set(float64(s.sessions.Len()))
	return n
}

func (s *ViewService) pipeline(ctx context.Context, userID string) (*filter.Pipeline, error) {
	const op = "services.view.pipeline"
	if sess, ok := s.sessions.Get(userID); ok {
		if sess.stale(s.now(), s.reloadAfter) {
			s.reload(ctx, userID, sess)
		}
		return sess.pipeline, nil
	}

	subs, err := s.loader.All(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	sess, err := s.sessions.GetOrCreate(userID, func() (*session, error) {
		created := &session{pipeline: filter.NewPipeline(subs, s.consumer(userID))}
		created.touch(s.now())
		return created, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	metrics.ViewSessions.Set(float64(s.sessions.Len()))
	return sess.pipeline, nil
}

// reload перечитывает список, сохраняя критерии. При ошибке остаётся прежний список.
func (s *ViewService) reload(ctx context.Context, userID string, sess *session) {
	subs, err := s.loader.All(ctx, userID)
	if err != nil {
		s.log.Warn("failed to reload view", slog.String("user_id", userID), sl.Err(err))
		return
	}
	sess.pipeline.SetSubscriptions(subs)
	sess.touch(s.now())
}

func (s *ViewService) consumer(userID string) filter.Consumer {
	return func(result []models.Subscription, version uint64) {
		metrics.ViewRecomputes.Inc()
		s.log.Debug("view recomputed",
			slog.String("user_id", userID),
			slog.Int("shown", len(result)),
			slog.Uint64("version", version))
	}
}

func snapshot(p *filter.Pipeline) *models.View {
	v := p.Snapshot()
	return &v
}

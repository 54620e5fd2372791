// Package scheduler содержит приложение планировщика фоновых задач:
// рассылку напоминаний и перенос прошедших дат списания.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/subscription-tracker/internal/cache"
	"github.com/magabrotheeeer/subscription-tracker/internal/config"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/sl"
	schedulerservice "github.com/magabrotheeeer/subscription-tracker/internal/services/scheduler"
	"github.com/magabrotheeeer/subscription-tracker/internal/storage"
)

const (
	dbReadyRetries = 10
	dbReadyDelay   = 3 * time.Second
	jobTimeout     = 5 * time.Minute
)

// Jobs фоновые задачи планировщика.
type Jobs interface {
	SendReminders(ctx context.Context) (int, error)
	RollForwardBillingDates(ctx context.Context) (int, error)
}

// App представляет приложение планировщика.
type App struct {
	cron   *cron.Cron
	conn   *amqp.Connection
	ch     *amqp.Channel
	db     *storage.Storage
	cache  *cache.Cache
	logger *slog.Logger
}

// New создает новый экземпляр приложения планировщика.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	loc, err := time.LoadLocation(cfg.Location)
	if err != nil {
		return nil, fmt.Errorf("invalid scheduler location %q: %w", cfg.Location, err)
	}

	conn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("failed to connect RabbitMQ: %w", err)
	}
	a := &App{conn: conn, logger: logger}

	a.ch, err = rabbitmq.SetupChannel(conn, rabbitmq.GetNotificationQueues())
	if err != nil {
		a.close()
		return nil, fmt.Errorf("failed to setup RabbitMQ channel: %w", err)
	}

	a.db, err = storage.New(cfg.StorageConnectionString)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("failed to connect storage: %w", err)
	}
	if err = a.db.WaitReady(ctx, dbReadyRetries, dbReadyDelay); err != nil {
		a.close()
		return nil, err
	}

	a.cache, err = cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("cache not initialized: %w", err)
	}

	service := schedulerservice.NewSchedulerService(a.db, rabbitmq.NewPublisher(a.ch), a.cache, loc, logger)
	a.cron, err = NewCron(service, cfg.Scheduler, loc, logger)
	if err != nil {
		a.close()
		return nil, err
	}
	return a, nil
}

// NewCron регистрирует задачи по расписаниям из конфига.
// Расписания задаются в формате cron с секундами.
func NewCron(jobs Jobs, cfg config.Scheduler, loc *time.Location, logger *slog.Logger) (*cron.Cron, error) {
	cronLogger := cron.PrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelInfo))
	c := cron.New(
		cron.WithSeconds(),
		cron.WithLocation(loc),
		cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
	)

	if _, err := c.AddFunc(cfg.ReminderSchedule, runJob(logger, "send_reminders", jobs.SendReminders)); err != nil {
		return nil, fmt.Errorf("failed to schedule reminders job: %w", err)
	}
	logger.Info("scheduled reminders job", slog.String("schedule", cfg.ReminderSchedule))

	if _, err := c.AddFunc(cfg.RollForwardSchedule, runJob(logger, "roll_forward", jobs.RollForwardBillingDates)); err != nil {
		return nil, fmt.Errorf("failed to schedule roll forward job: %w", err)
	}
	logger.Info("scheduled roll forward job", slog.String("schedule", cfg.RollForwardSchedule))

	return c, nil
}

func runJob(logger *slog.Logger, name string, job func(ctx context.Context) (int, error)) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()

		started := time.Now()
		n, err := job(ctx)
		if err != nil {
			logger.Error("job failed", slog.String("job", name), sl.Err(err))
			return
		}
		logger.Info("job finished", slog.String("job", name), slog.Int("processed", n),
			slog.Duration("took", time.Since(started)))
	}
}

// Run запускает планировщик и ждёт отмены ctx.
func (a *App) Run(ctx context.Context) error {
	a.cron.Start()
	a.logger.Info("scheduler started")

	<-ctx.Done()
	a.logger.Info("shutting down scheduler service")

	// ждём завершения уже запущенных задач
	<-a.cron.Stop().Done()
	a.close()
	return nil
}

func (a *App) close() {
	if a.ch != nil {
		if err := a.ch.Close(); err != nil {
			a.logger.Error("failed to close channel", sl.Err(err))
		}
	}
	if a.conn != nil {
		if err := a.conn.Close(); err != nil {
			a.logger.Error("failed to close connection", sl.Err(err))
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Error("failed to close database", sl.Err(err))
		}
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Error("failed to close redis", sl.Err(err))
		}
	}
}

package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/subscription-tracker/internal/config"
)

type countingJobs struct {
	reminders atomic.Int32
	rolls     atomic.Int32
}

func (j *countingJobs) SendReminders(_ context.Context) (int, error) {
	j.reminders.Add(1)
	return 2, nil
}

func (j *countingJobs) RollForwardBillingDates(_ context.Context) (int, error) {
	j.rolls.Add(1)
	return 0, errors.New("db down")
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewCron(t *testing.T) {
	jobs := &countingJobs{}
	c, err := NewCron(jobs, config.Scheduler{
		ReminderSchedule:    "0 0 9 * * *",
		RollForwardSchedule: "0 5 0 * * *",
	}, time.UTC, newNoopLogger())
	require.NoError(t, err)
	assert.Len(t, c.Entries(), 2)
}

func TestNewCron_InvalidSchedule(t *testing.T) {
	_, err := NewCron(&countingJobs{}, config.Scheduler{
		ReminderSchedule:    "every day",
		RollForwardSchedule: "0 5 0 * * *",
	}, time.UTC, newNoopLogger())
	assert.Error(t, err)

	_, err = NewCron(&countingJobs{}, config.Scheduler{
		ReminderSchedule:    "0 0 9 * * *",
		RollForwardSchedule: "0 5 0 * *",
	}, time.UTC, newNoopLogger())
	assert.Error(t, err, "schedules require a seconds field")
}

func TestNewCron_RunsJobs(t *testing.T) {
	jobs := &countingJobs{}
	c, err := NewCron(jobs, config.Scheduler{
		ReminderSchedule:    "* * * * * *",
		RollForwardSchedule: "* * * * * *",
	}, time.UTC, newNoopLogger())
	require.NoError(t, err)

	c.Start()
	assert.Eventually(t, func() bool {
		return jobs.reminders.Load() > 0 && jobs.rolls.Load() > 0
	}, 3*time.Second, 50*time.Millisecond)
	<-c.Stop().Done()
}

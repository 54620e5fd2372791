package billing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNextDate(t *testing.T) {
	from := date(2025, 1, 15)

	got, err := NextDate(from, models.BillingMonthly)
	require.NoError(t, err)
	assert.Equal(t, date(2025, 2, 15), got)

	got, err = NextDate(from, models.BillingYearly)
	require.NoError(t, err)
	assert.Equal(t, date(2026, 1, 15), got)

	_, err = NextDate(from, "weekly")
	assert.ErrorIs(t, err, ErrUnknownCycle)
}

func TestNextDate_MonthEnd(t *testing.T) {
	tests := []struct {
		name  string
		from  time.Time
		cycle models.BillingCycle
		want  time.Time
	}{
		{"jan 31 to feb 28", date(2025, 1, 31), models.BillingMonthly, date(2025, 2, 28)},
		{"jan 31 to feb 29 in leap year", date(2024, 1, 31), models.BillingMonthly, date(2024, 2, 29)},
		{"mar 31 to apr 30", date(2025, 3, 31), models.BillingMonthly, date(2025, 4, 30)},
		{"dec 31 to jan 31", date(2025, 12, 31), models.BillingMonthly, date(2026, 1, 31)},
		{"feb 29 yearly to feb 28", date(2024, 2, 29), models.BillingYearly, date(2025, 2, 28)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NextDate(tt.from, tt.cycle)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRollForward(t *testing.T) {
	today := date(2025, 6, 10)

	tests := []struct {
		name  string
		date  time.Time
		cycle models.BillingCycle
		want  time.Time
	}{
		{
			name:  "future date is unchanged",
			date:  date(2025, 7, 1),
			cycle: models.BillingMonthly,
			want:  date(2025, 7, 1),
		},
		{
			name:  "today is unchanged",
			date:  today,
			cycle: models.BillingMonthly,
			want:  today,
		},
		{
			name:  "monthly several periods behind",
			date:  date(2025, 3, 5),
			cycle: models.BillingMonthly,
			want:  date(2025, 7, 5),
		},
		{
			name:  "monthly lands on today",
			date:  date(2025, 4, 10),
			cycle: models.BillingMonthly,
			want:  today,
		},
		{
			name:  "monthly from 31st lands on 30th",
			date:  date(2025, 5, 31),
			cycle: models.BillingMonthly,
			want:  date(2025, 6, 30),
		},
		{
			name:  "monthly from 31st does not drift after short months",
			date:  date(2025, 3, 31),
			cycle: models.BillingMonthly,
			want:  date(2025, 6, 30),
		},
		{
			name:  "yearly from feb 29 is clamped",
			date:  date(2024, 2, 29),
			cycle: models.BillingYearly,
			want:  date(2026, 2, 28),
		},
		{
			name:  "yearly",
			date:  date(2023, 2, 1),
			cycle: models.BillingYearly,
			want:  date(2026, 2, 1),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RollForward(tt.date, tt.cycle, today)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	got, err := RollForward(date(2025, 1, 31), models.BillingMonthly, date(2025, 2, 10))
	require.NoError(t, err)
	assert.Equal(t, date(2025, 2, 28), got)

	got, err = RollForward(date(2024, 1, 31), models.BillingMonthly, date(2024, 2, 10))
	require.NoError(t, err)
	assert.Equal(t, date(2024, 2, 29), got)

	_, err = RollForward(date(2025, 1, 1), "weekly", today)
	assert.ErrorIs(t, err, ErrUnknownCycle)
}

func TestDaysUntilAndProximity(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		date     time.Time
		wantDays int
		want     models.Urgency
	}{
		{name: "overdue", date: date(2025, 6, 8), wantDays: -2, want: models.UrgencyUrgent},
		{name: "later today", date: now.Add(2 * time.Hour), wantDays: 1, want: models.UrgencyUrgent},
		{name: "three days", date: date(2025, 6, 13), wantDays: 3, want: models.UrgencyUrgent},
		{name: "four days", date: date(2025, 6, 14), wantDays: 4, want: models.UrgencyUpcoming},
		{name: "seven days", date: date(2025, 6, 17), wantDays: 7, want: models.UrgencyUpcoming},
		{name: "eight days", date: date(2025, 6, 18), wantDays: 8, want: models.UrgencyNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantDays, DaysUntil(tt.date, now))
			assert.Equal(t, tt.want, Proximity(tt.date, now))
		})
	}
}

func TestToday(t *testing.T) {
	now := time.Date(2025, 6, 10, 23, 59, 1, 5, time.UTC)
	assert.Equal(t, date(2025, 6, 10), Today(now))
}

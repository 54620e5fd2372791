package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

const subscriptionColumns = `id, user_id, name, price, billing_cycle, category, status,
	next_billing_date, trial_end_date, description, status_changed_at, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSubscription(row rowScanner) (models.Subscription, error) {
	var sub models.Subscription
	err := row.Scan(&sub.ID, &sub.UserID, &sub.Name, &sub.Price, &sub.BillingCycle, &sub.Category,
		&sub.Status, &sub.NextBillingDate, &sub.TrialEndDate, &sub.Description,
		&sub.StatusChangedAt, &sub.CreatedAt, &sub.UpdatedAt)
	return sub, err
}

// CreateSubscription вставляет подписку и возвращает присвоенный базой id.
func (s *Storage) CreateSubscription(ctx context.Context, sub models.Subscription) (string, error) {
	const op = "storage.CreateSubscription"
	if err := checkCtx(ctx, op); err != nil {
		return "", err
	}

	query := `INSERT INTO subscriptions (user_id, name, price, billing_cycle, category, status,
				next_billing_date, trial_end_date, description, status_changed_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now())
			  RETURNING id`
	var id string
	err := s.DB.QueryRowContext(ctx, query,
		sub.UserID, sub.Name, sub.Price, sub.BillingCycle, sub.Category, sub.Status,
		sub.NextBillingDate, sub.TrialEndDate, sub.Description).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// ListSubscriptionsByUser возвращает все подписки пользователя в порядке создания.
func (s *Storage) ListSubscriptionsByUser(ctx context.Context, userID string) ([]models.Subscription, error) {
	const op = "storage.ListSubscriptionsByUser"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions
			  WHERE user_id = $1
			  ORDER BY created_at, id`
	rows, err := s.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	subs := make([]models.Subscription, 0)
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		subs = append(subs, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return subs, nil
}

// ReadSubscription возвращает подписку пользователя по id.
func (s *Storage) ReadSubscription(ctx context.Context, userID, id string) (*models.Subscription, error) {
	const op = "storage.ReadSubscription"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE id = $1 AND user_id = $2`
	sub, err := scanSubscription(s.DB.QueryRowContext(ctx, query, id, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &sub, nil
}

// UpdateSubscription перезаписывает поля подписки. status_changed_at обновляется,
// только если статус действительно поменялся.
func (s *Storage) UpdateSubscription(ctx context.Context, sub models.Subscription) error {
	const op = "storage.UpdateSubscription"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	query := `UPDATE subscriptions
			  SET name = $1, price = $2, billing_cycle = $3, category = $4,
			      status_changed_at = CASE WHEN status <> $5 THEN now() ELSE status_changed_at END,
			      status = $5, next_billing_date = $6, trial_end_date = $7, description = $8,
			      updated_at = now()
			  WHERE id = $9 AND user_id = $10`
	result, err := s.DB.ExecContext(ctx, query,
		sub.Name, sub.Price, sub.BillingCycle, sub.Category, sub.Status,
		sub.NextBillingDate, sub.TrialEndDate, sub.Description, sub.ID, sub.UserID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return expectOneRow(op, result)
}

// RemoveSubscription удаляет подписку пользователя.
func (s *Storage) RemoveSubscription(ctx context.Context, userID, id string) error {
	const op = "storage.RemoveSubscription"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	result, err := s.DB.ExecContext(ctx, `DELETE FROM subscriptions WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return expectOneRow(op, result)
}

// FindUpcomingBillings возвращает активные подписки со списанием в интервале [from, to]
// вместе с email владельца.
func (s *Storage) FindUpcomingBillings(ctx context.Context, from, to time.Time) ([]models.BillingReminder, error) {
	const op = "storage.FindUpcomingBillings"
	query := `SELECT s.id, u.email, s.name, s.price, s.billing_cycle, s.next_billing_date
			  FROM subscriptions s
			  JOIN users u ON u.id = s.user_id
			  WHERE s.status = 'active'
			    AND s.next_billing_date BETWEEN $1 AND $2
			  ORDER BY s.next_billing_date`
	return s.findReminders(ctx, op, models.ReminderBilling, query, from, to)
}

// FindEndingTrials возвращает подписки в пробном периоде, который заканчивается в интервале [from, to].
func (s *Storage) FindEndingTrials(ctx context.Context, from, to time.Time) ([]models.BillingReminder, error) {
	const op = "storage.FindEndingTrials"
	query := `SELECT s.id, u.email, s.name, s.price, s.billing_cycle, s.trial_end_date
			  FROM subscriptions s
			  JOIN users u ON u.id = s.user_id
			  WHERE s.status = 'trial'
			    AND s.trial_end_date BETWEEN $1 AND $2
			  ORDER BY s.trial_end_date`
	return s.findReminders(ctx, op, models.ReminderTrial, query, from, to)
}

func (s *Storage) findReminders(ctx context.Context, op string, kind models.ReminderKind,
	query string, from, to time.Time) ([]models.BillingReminder, error) {
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	rows, err := s.DB.QueryContext(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var reminders []models.BillingReminder
	for rows.Next() {
		r := models.BillingReminder{Kind: kind}
		if err := rows.Scan(&r.SubscriptionID, &r.Email, &r.Name, &r.Price, &r.BillingCycle, &r.Date); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		reminders = append(reminders, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return reminders, nil
}

// FindStaleBillingDates возвращает активные подписки, дата списания которых раньше before.
func (s *Storage) FindStaleBillingDates(ctx context.Context, before time.Time) ([]models.Subscription, error) {
	const op = "storage.FindStaleBillingDates"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions
			  WHERE status = 'active' AND next_billing_date < $1`
	rows, err := s.DB.QueryContext(ctx, query, before)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var subs []models.Subscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		subs = append(subs, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return subs, nil
}

// UpdateNextBillingDate переносит дату следующего списания.
func (s *Storage) UpdateNextBillingDate(ctx context.Context, id string, next time.Time) error {
	const op = "storage.UpdateNextBillingDate"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	result, err := s.DB.ExecContext(ctx,
		`UPDATE subscriptions SET next_billing_date = $1, updated_at = now() WHERE id = $2`, next, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return expectOneRow(op, result)
}

func expectOneRow(op string, result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}

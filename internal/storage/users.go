package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/magabrotheeeer/subscription-tracker/internal/models"
)

const uniqueViolation = "23505"

// RegisterUser создаёт пользователя и возвращает его id.
func (s *Storage) RegisterUser(ctx context.Context, email, passwordHash string) (string, error) {
	const op = "storage.RegisterUser"
	if err := checkCtx(ctx, op); err != nil {
		return "", err
	}

	var id string
	err := s.DB.QueryRowContext(ctx,
		`INSERT INTO users (email, password_hash) VALUES ($1, $2) RETURNING id`,
		email, passwordHash).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return "", fmt.Errorf("%s: %w", op, ErrUserExists)
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// GetUserByEmail ищет пользователя по email.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.GetUserByEmail"
	return s.getUser(ctx, op, `SELECT id, email, password_hash, created_at FROM users WHERE email = $1`, email)
}

// GetUser ищет пользователя по id.
func (s *Storage) GetUser(ctx context.Context, id string) (*models.User, error) {
	const op = "storage.GetUser"
	return s.getUser(ctx, op, `SELECT id, email, password_hash, created_at FROM users WHERE id = $1`, id)
}

func (s *Storage) getUser(ctx context.Context, op, query string, arg any) (*models.User, error) {
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	var user models.User
	err := s.DB.QueryRowContext(ctx, query, arg).Scan(&user.ID, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &user, nil
}

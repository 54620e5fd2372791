// Package services содержит логику бизнес-уровня для работы с пользователями и аутентификацией.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/magabrotheeeer/subscription-tracker/internal/cache"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/jwt"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/password"
	"github.com/magabrotheeeer/subscription-tracker/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-tracker/internal/models"
	"github.com/magabrotheeeer/subscription-tracker/internal/storage"
)

var (
	// ErrInvalidCredentials неверный email или пароль.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrTokenRevoked токен отозван при выходе пользователя.
	ErrTokenRevoked = errors.New("token revoked")
)

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	// RegisterUser сохраняет нового пользователя и возвращает его ID.
	RegisterUser(ctx context.Context, email, passwordHash string) (string, error)
	// GetUserByEmail возвращает пользователя по email.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// RevocationStore хранит идентификаторы отозванных токенов до истечения их срока.
type RevocationStore interface {
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Exists(ctx context.Context, key string) (bool, error)
}

// AuthService отвечает за регистрацию, вход, выход и проверку JWT.
type AuthService struct {
	users    UserRepository
	jwtMaker jwt.Maker
	revoked  RevocationStore
	log      *slog.Logger
	now      func() time.Time
}

// NewAuthService создает новый экземпляр AuthService.
func NewAuthService(users UserRepository, jwtMaker jwt.Maker, revoked RevocationStore, log *slog.Logger) *AuthService {
	return &AuthService{
		users:    users,
		jwtMaker: jwtMaker,
		revoked:  revoked,
		log:      log,
		now:      time.Now,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register создает пользователя с хэшированным паролем и возвращает его ID.
// Повторная регистрация email возвращает storage.ErrUserExists.
func (s *AuthService) Register(ctx context.Context, creds models.Credentials) (string, error) {
	const op = "services.auth.Register"
	hashed, err := password.GetHash(creds.Password)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	id, err := s.users.RegisterUser(ctx, normalizeEmail(creds.Email), hashed)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("user registered", slog.String("user_id", id))
	return id, nil
}

// Login проверяет пароль и выпускает токен доступа.
// Неизвестный email и неверный пароль неразличимы для вызывающего.
func (s *AuthService) Login(ctx context.Context, creds models.Credentials) (*models.AuthToken, error) {
	const op = "services.auth.Login"
	user, err := s.users.GetUserByEmail(ctx, normalizeEmail(creds.Email))
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = password.CompareHash(user.PasswordHash, creds.Password); err != nil {
		if errors.Is(err, password.ErrMismatch) {
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	token, claims, err := s.jwtMaker.GenerateToken(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &models.AuthToken{
		Token:     token,
		UserID:    user.ID,
		Email:     user.Email,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// Logout отзывает токен до конца срока его действия.
func (s *AuthService) Logout(ctx context.Context, claims *jwt.Claims) error {
	const op = "services.auth.Logout"
	if claims.ExpiresAt == nil {
		return fmt.Errorf("%s: %w", op, jwt.ErrInvalidToken)
	}
	ttl := claims.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	if err := s.revoked.Set(ctx, cache.RevokedTokenKey(claims.ID), true, ttl); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("token revoked", slog.String("user_id", claims.UserID))
	return nil
}

// ValidateToken проверяет подпись и срок токена и то, что он не отозван.
// Если проверить отзыв не удалось, токен не принимается.
func (s *AuthService) ValidateToken(ctx context.Context, token string) (*jwt.Claims, error) {
	const op = "services.auth.ValidateToken"
	claims, err := s.jwtMaker.ParseToken(token)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	revoked, err := s.revoked.Exists(ctx, cache.RevokedTokenKey(claims.ID))
	if err != nil {
		s.log.Error("failed to check token revocation", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if revoked {
		return nil, fmt.Errorf("%s: %w", op, ErrTokenRevoked)
	}
	return claims, nil
}

package models

import "time"

// User зарегистрированный пользователь трекера.
type User struct {
	ID           string    // Уникальный идентификатор пользователя (uuid)
	Email        string    // Электронная почта, используется как логин
	PasswordHash string    // bcrypt-хэш пароля
	CreatedAt    time.Time // Дата регистрации
}

// Credentials данные для регистрации и входа.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

// AuthToken выданный при входе токен доступа.
type AuthToken struct {
	Token     string    `json:"token"`
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expires_at"`
}

package models

import "time"

type User struct {
	ID            int    `json:"id"`
	Name          string `json:"name"`
	Email         string `json:"email"` // stored lowercase
	PasswordHash  string `json:"-"`     // не отдаём наружу
	IsVerified    bool   `json:"is_verified"`
	ContactNumber string `json:"contact_number"`
	Address       string `json:"address"`

	// email verification: одна активная запись, новая выдача затирает старую
	EmailVerificationToken   *string    `json:"-"`
	EmailVerificationExpires *time.Time `json:"-"`

	// password reset: тот же принцип
	PasswordResetToken   *string    `json:"-"`
	PasswordResetExpires *time.Time `json:"-"`

	// refresh-хранение в БД
	RefreshToken     *string    `json:"-"`
	RefreshExpiresAt *time.Time `json:"-"`
	RefreshRevoked   bool       `json:"-"`

	CreatedAt time.Time `json:"created_at"`
}

type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ProfileUpdateRequest struct {
	Name          string `json:"name"`
	ContactNumber string `json:"contactNumber"`
	Address       string `json:"address"`
}

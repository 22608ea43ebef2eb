package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"auraleen/internal/models"
)

type UserRepository interface {
	Create(user *models.User) error
	GetByID(id int) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	UpdateProfile(id int, name, contactNumber, address string) error
	UpdatePassword(id int, passwordHash string) error

	// verification: одна активная запись на пользователя, новая выдача затирает старую
	SetVerificationCode(id int, code string, expiresAt time.Time) error
	ReissueUnverified(id int, name, passwordHash, code string, expiresAt time.Time) error
	MarkVerified(id int) error

	// password reset
	SetResetToken(id int, token string, expiresAt time.Time) error
	GetByActiveResetToken(token string, now time.Time) (*models.User, error)
	ResetPassword(id int, passwordHash string) error

	// refresh helpers
	UpdateRefresh(id int, token string, expiresAt time.Time) error
	RotateRefresh(oldToken, newToken string, newExpiresAt time.Time) (*models.User, error)
	GetByRefreshToken(token string) (*models.User, error)
}

type userRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{DB: db}
}

const userColumns = `
	id, name, email, password_hash, is_verified, contact_number, address,
	email_verification_token, email_verification_expires,
	password_reset_token, password_reset_expires,
	refresh_token, refresh_expires_at, refresh_revoked,
	created_at
`

func (r *userRepository) Create(user *models.User) error {
	const q = `
		INSERT INTO users (
			name, email, password_hash, is_verified, contact_number, address,
			email_verification_token, email_verification_expires
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING id, created_at
	`
	if err := r.DB.QueryRow(q,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.IsVerified,
		user.ContactNumber,
		user.Address,
		user.EmailVerificationToken,
		user.EmailVerificationExpires,
	).Scan(&user.ID, &user.CreatedAt); err != nil {
		return fmt.Errorf("user create: %w", err)
	}
	return nil
}

func (r *userRepository) GetByID(id int) (*models.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.DB.QueryRow(q, id))
}

func (r *userRepository) GetByEmail(email string) (*models.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(r.DB.QueryRow(q, email))
}

func (r *userRepository) UpdateProfile(id int, name, contactNumber, address string) error {
	const q = `
		UPDATE users SET name = $2, contact_number = $3, address = $4 WHERE id = $1
	`
	_, err := r.DB.Exec(q, id, name, contactNumber, address)
	return err
}

func (r *userRepository) UpdatePassword(id int, passwordHash string) error {
	_, err := r.DB.Exec(`UPDATE users SET password_hash = $2 WHERE id = $1`, id, passwordHash)
	return err
}

func (r *userRepository) SetVerificationCode(id int, code string, expiresAt time.Time) error {
	const q = `
		UPDATE users
		SET email_verification_token = $2, email_verification_expires = $3
		WHERE id = $1
	`
	_, err := r.DB.Exec(q, id, code, expiresAt)
	return err
}

// ReissueUnverified — повторная регистрация на неподтверждённый email:
// перезаписываем имя/пароль и выдаём новый код.
func (r *userRepository) ReissueUnverified(id int, name, passwordHash, code string, expiresAt time.Time) error {
	const q = `
		UPDATE users
		SET name = $2, password_hash = $3,
		    email_verification_token = $4, email_verification_expires = $5
		WHERE id = $1 AND is_verified = FALSE
	`
	_, err := r.DB.Exec(q, id, name, passwordHash, code, expiresAt)
	return err
}

func (r *userRepository) MarkVerified(id int) error {
	const q = `
		UPDATE users
		SET is_verified = TRUE,
		    email_verification_token = NULL, email_verification_expires = NULL
		WHERE id = $1
	`
	_, err := r.DB.Exec(q, id)
	return err
}

func (r *userRepository) SetResetToken(id int, token string, expiresAt time.Time) error {
	const q = `
		UPDATE users
		SET password_reset_token = $2, password_reset_expires = $3
		WHERE id = $1
	`
	_, err := r.DB.Exec(q, id, token, expiresAt)
	return err
}

func (r *userRepository) GetByActiveResetToken(token string, now time.Time) (*models.User, error) {
	q := `SELECT ` + userColumns + ` FROM users
		WHERE password_reset_token = $1 AND password_reset_expires > $2`
	return scanUser(r.DB.QueryRow(q, token, now))
}

func (r *userRepository) ResetPassword(id int, passwordHash string) error {
	const q = `
		UPDATE users
		SET password_hash = $2,
		    password_reset_token = NULL, password_reset_expires = NULL
		WHERE id = $1
	`
	_, err := r.DB.Exec(q, id, passwordHash)
	return err
}

func (r *userRepository) UpdateRefresh(id int, token string, expiresAt time.Time) error {
	const q = `
		UPDATE users
		SET refresh_token = $2, refresh_expires_at = $3, refresh_revoked = FALSE
		WHERE id = $1
	`
	_, err := r.DB.Exec(q, id, token, expiresAt)
	return err
}

func (r *userRepository) RotateRefresh(oldToken, newToken string, newExpiresAt time.Time) (*models.User, error) {
	const q = `
		UPDATE users
		SET refresh_token = $2, refresh_expires_at = $3
		WHERE refresh_token = $1 AND refresh_revoked = FALSE
		RETURNING ` + userColumns
	return scanUser(r.DB.QueryRow(q, oldToken, newToken, newExpiresAt))
}

func (r *userRepository) GetByRefreshToken(token string) (*models.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE refresh_token = $1`
	return scanUser(r.DB.QueryRow(q, token))
}

func scanUser(row *sql.Row) (*models.User, error) {
	u := &models.User{}
	var (
		verifToken   sql.NullString
		verifExpires sql.NullTime
		resetToken   sql.NullString
		resetExpires sql.NullTime
		rt           sql.NullString
		rte          sql.NullTime
	)
	err := row.Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.IsVerified, &u.ContactNumber, &u.Address,
		&verifToken, &verifExpires,
		&resetToken, &resetExpires,
		&rt, &rte, &u.RefreshRevoked,
		&u.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("user scan: %w", err)
	}
	if verifToken.Valid {
		s := verifToken.String
		u.EmailVerificationToken = &s
	}
	if verifExpires.Valid {
		t := verifExpires.Time
		u.EmailVerificationExpires = &t
	}
	if resetToken.Valid {
		s := resetToken.String
		u.PasswordResetToken = &s
	}
	if resetExpires.Valid {
		t := resetExpires.Time
		u.PasswordResetExpires = &t
	}
	if rt.Valid {
		s := rt.String
		u.RefreshToken = &s
	}
	if rte.Valid {
		t := rte.Time
		u.RefreshExpiresAt = &t
	}
	return u, nil
}

package services

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"auraleen/internal/repositories"
	"auraleen/internal/utils"
)

var ErrResetTokenInvalid = errors.New("this reset link is invalid or has expired")

const resetTokenTTL = 30 * time.Minute

// ForgotResult — вне production можем показать ссылку, если письмо не ушло.
type ForgotResult struct {
	EmailSent   bool
	DevResetURL string
}

type PasswordResetService interface {
	RequestReset(email string) (*ForgotResult, error)
	ResetPassword(token, newPassword string) error
}

type passwordResetService struct {
	repo         repositories.UserRepository
	emails       EmailService
	auth         AuthService
	baseURL      string
	isProduction bool
}

func NewPasswordResetService(repo repositories.UserRepository, emails EmailService, auth AuthService, baseURL string, isProduction bool) PasswordResetService {
	return &passwordResetService{
		repo:         repo,
		emails:       emails,
		auth:         auth,
		baseURL:      strings.TrimRight(baseURL, "/"),
		isProduction: isProduction,
	}
}

// RequestReset никогда не сообщает, существует ли аккаунт: на любой исход
// хендлер отвечает одним и тем же сообщением.
func (s *passwordResetService) RequestReset(email string) (*ForgotResult, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", ErrValidation)
	}
	res := &ForgotResult{}

	user, err := s.repo.GetByEmail(email)
	if err != nil || user == nil {
		log.Printf("[password-reset] request for %q: user not found or error: %v", email, err)
		return res, nil
	}

	token, err := utils.NewSecureToken(32)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SetResetToken(user.ID, token, time.Now().Add(resetTokenTTL)); err != nil {
		// сбой персистентности тоже прячем за общий ответ
		log.Printf("[password-reset] failed to store token for userID=%d: %v", user.ID, err)
		return res, nil
	}

	resetURL := s.baseURL + "/reset-password?token=" + token
	if s.emails != nil {
		if err := s.emails.SendPasswordResetEmail(user.Email, resetURL); err != nil {
			log.Printf("[password-reset] failed to send email to %s: %v", user.Email, err)
		} else {
			res.EmailSent = true
		}
	}
	if !res.EmailSent && !s.isProduction {
		res.DevResetURL = resetURL
	}
	return res, nil
}

func (s *passwordResetService) ResetPassword(token, newPassword string) error {
	token = strings.TrimSpace(token)
	if token == "" || newPassword == "" {
		return fmt.Errorf("%w: token and new password are required", ErrValidation)
	}
	if err := s.auth.ValidatePasswordStrength(newPassword); err != nil {
		return fmt.Errorf("%w: %s", ErrValidation, err.Error())
	}

	user, err := s.repo.GetByActiveResetToken(token, time.Now())
	if err != nil {
		return err
	}
	if user == nil {
		return ErrResetTokenInvalid
	}

	hash, err := s.auth.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.repo.ResetPassword(user.ID, hash); err != nil {
		return err
	}
	log.Printf("[password-reset] password updated for userID=%d", user.ID)
	return nil
}

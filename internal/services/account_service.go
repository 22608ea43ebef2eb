package services

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"auraleen/internal/models"
	"auraleen/internal/repositories"
	"auraleen/internal/utils"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrEmailTaken         = errors.New("an account with this email already exists")
	ErrUserNotFound       = errors.New("no account found for this email")
	ErrAlreadyVerified    = errors.New("this account is already verified")
	ErrNoActiveCode       = errors.New("no active verification code")
	ErrCodeInvalid        = errors.New("invalid or expired verification code")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

const verificationCodeTTL = 15 * time.Minute

// SignupResult — что отдать клиенту после регистрации/переотправки кода.
// DevCode заполняется только вне production и только если письмо не ушло.
type SignupResult struct {
	EmailSent bool
	DevCode   string
}

type AccountService interface {
	Signup(name, email, password string) (*SignupResult, error)
	ResendCode(email string) (*SignupResult, error)
	VerifyCode(email, code string) error
	Login(email, password string) (*models.User, error)
	GetProfile(email string) (*models.User, error)
	UpdateProfile(email, name, contactNumber, address string) (*models.User, error)

	// refresh helpers
	StoreRefresh(userID int, token string, expiresAt time.Time) error
	GetByRefreshToken(token string) (*models.User, error)
	RotateRefresh(oldToken, newToken string, newExpiresAt time.Time) (*models.User, error)
}

type accountService struct {
	repo         repositories.UserRepository
	emailService EmailService
	authService  AuthService
	isProduction bool
}

func NewAccountService(repo repositories.UserRepository, emailService EmailService, authService AuthService, isProduction bool) AccountService {
	return &accountService{
		repo:         repo,
		emailService: emailService,
		authService:  authService,
		isProduction: isProduction,
	}
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *accountService) Signup(name, email, password string) (*SignupResult, error) {
	name = strings.TrimSpace(name)
	email = NormalizeEmail(email)
	if name == "" || email == "" || password == "" {
		return nil, fmt.Errorf("%w: name, email and password are required", ErrValidation)
	}
	if err := s.authService.ValidatePasswordStrength(password); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidation, err.Error())
	}

	existing, err := s.repo.GetByEmail(email)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.IsVerified {
		return nil, ErrEmailTaken
	}

	hash, err := s.authService.HashPassword(password)
	if err != nil {
		return nil, err
	}
	code, err := utils.NewVerificationCode()
	if err != nil {
		return nil, err
	}
	expires := time.Now().Add(verificationCodeTTL)

	if existing != nil {
		// неподтверждённая запись: перезаписываем имя/пароль и выдаём новый код
		if err := s.repo.ReissueUnverified(existing.ID, name, hash, code, expires); err != nil {
			return nil, err
		}
		log.Printf("[account][signup] reissued code for unverified userID=%d", existing.ID)
	} else {
		user := &models.User{
			Name:                     name,
			Email:                    email,
			PasswordHash:             hash,
			IsVerified:               false,
			EmailVerificationToken:   &code,
			EmailVerificationExpires: &expires,
		}
		if err := s.repo.Create(user); err != nil {
			return nil, err
		}
		log.Printf("[account][signup] created unverified userID=%d", user.ID)
	}

	return s.deliverCode(email, code), nil
}

func (s *accountService) ResendCode(email string) (*SignupResult, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", ErrValidation)
	}
	user, err := s.repo.GetByEmail(email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	if user.IsVerified {
		return nil, ErrAlreadyVerified
	}

	code, err := utils.NewVerificationCode()
	if err != nil {
		return nil, err
	}
	// новая выдача всегда затирает предыдущий код, даже неистёкший
	if err := s.repo.SetVerificationCode(user.ID, code, time.Now().Add(verificationCodeTTL)); err != nil {
		return nil, err
	}
	log.Printf("[account][resend] new code issued for userID=%d", user.ID)

	return s.deliverCode(email, code), nil
}

// deliverCode отправляет код на почту. Отправка не роняет операцию: при
// недоставке отвечаем успехом, а сырой код показываем только вне production.
func (s *accountService) deliverCode(email, code string) *SignupResult {
	res := &SignupResult{}
	if s.emailService != nil {
		if err := s.emailService.SendVerificationCode(email, code); err != nil {
			log.Printf("[account][mail] failed to send verification code to %s: %v", email, err)
		} else {
			res.EmailSent = true
		}
	}
	if !res.EmailSent && !s.isProduction {
		res.DevCode = code
	}
	return res
}

func (s *accountService) VerifyCode(email, code string) error {
	email = NormalizeEmail(email)
	code = strings.TrimSpace(code)
	if email == "" || code == "" {
		return fmt.Errorf("%w: email and verification code are required", ErrValidation)
	}
	user, err := s.repo.GetByEmail(email)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}
	if user.EmailVerificationToken == nil || user.EmailVerificationExpires == nil {
		return ErrNoActiveCode
	}
	// несовпадение и истечение не различаем
	if *user.EmailVerificationToken != code || time.Now().After(*user.EmailVerificationExpires) {
		return ErrCodeInvalid
	}
	if err := s.repo.MarkVerified(user.ID); err != nil {
		return err
	}
	log.Printf("[account][verify] userID=%d verified", user.ID)
	return nil
}

// Login намеренно не различает "нет пользователя", "не подтверждён" и
// "неверный пароль" — наружу уходит один и тот же ErrInvalidCredentials.
func (s *accountService) Login(email, password string) (*models.User, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}
	user, err := s.repo.GetByEmail(email)
	if err != nil {
		log.Printf("[account][login] lookup failed for email=%q: %v", email, err)
		return nil, ErrInvalidCredentials
	}
	if user == nil || !user.IsVerified {
		return nil, ErrInvalidCredentials
	}
	if !s.authService.CheckPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	log.Printf("[account][login] success userID=%d", user.ID)
	return user, nil
}

func (s *accountService) GetProfile(email string) (*models.User, error) {
	user, err := s.repo.GetByEmail(NormalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (s *accountService) StoreRefresh(userID int, token string, expiresAt time.Time) error {
	return s.repo.UpdateRefresh(userID, token, expiresAt)
}

func (s *accountService) GetByRefreshToken(token string) (*models.User, error) {
	return s.repo.GetByRefreshToken(token)
}

func (s *accountService) RotateRefresh(oldToken, newToken string, newExpiresAt time.Time) (*models.User, error) {
	return s.repo.RotateRefresh(oldToken, newToken, newExpiresAt)
}

func (s *accountService) UpdateProfile(email, name, contactNumber, address string) (*models.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}
	user, err := s.GetProfile(email)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateProfile(user.ID, name, contactNumber, address); err != nil {
		return nil, err
	}
	user.Name = name
	user.ContactNumber = contactNumber
	user.Address = address
	return user, nil
}

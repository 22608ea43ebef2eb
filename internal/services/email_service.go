package services

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

type EmailService interface {
	SendVerificationCode(email, code string) error
	SendPasswordResetEmail(email, resetURL string) error
}

type emailService struct {
	dialer *gomail.Dialer
	from   string
}

func NewEmailService(smtpHost string, smtpPort int, smtpUser, smtpPassword, fromEmail string) EmailService {
	dialer := gomail.NewDialer(smtpHost, smtpPort, smtpUser, smtpPassword)
	return &emailService{
		dialer: dialer,
		from:   fromEmail,
	}
}

func (s *emailService) SendVerificationCode(email, code string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", email)
	m.SetHeader("Subject", "Verify your AURALEEN account")

	body := fmt.Sprintf(`
		<p>Welcome to AURALEEN.</p>
		<p>Your email verification code is:</p>
		<p style="font-size: 24px; font-weight: bold; letter-spacing: 4px;">%s</p>
		<p>This code will expire in 15 minutes.</p>
	`, code)

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send verification email: %w", err)
	}

	return nil
}

func (s *emailService) SendPasswordResetEmail(email, resetURL string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", email)
	m.SetHeader("Subject", "Reset your AURALEEN password")

	body := fmt.Sprintf(`
		<p>We received a request to reset your password.</p>
		<p>Click the link below to choose a new password:</p>
		<p><a href="%s">%s</a></p>
		<p>This link will expire in 30 minutes. If you did not request this, you can ignore this email.</p>
	`, resetURL, resetURL)

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send password reset email: %w", err)
	}

	return nil
}

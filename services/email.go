package services

import (
	"fmt"
	"net/smtp"
	"strings"

	"edunexa-backend/internal/config"
)

// EmailSender delivers transactional mail (OTP codes, operator alerts).
type EmailSender interface {
	SendOTP(to, name, otp string) error
	SendQuotaAlert(to []string, userID string, usedTokens, totalTokens int) error
}

type SMTPEmailSender struct {
	config *config.Config
}

func NewSMTPEmailSender(cfg *config.Config) *SMTPEmailSender {
	return &SMTPEmailSender{config: cfg}
}

func (s *SMTPEmailSender) SendOTP(to, name, otp string) error {
	if name == "" {
		name = "there"
	}

	subject := fmt.Sprintf("Verify Your Email, %s!", name)
	body := fmt.Sprintf(`EduNexa - Secure Email Verification

Hello %s,

To complete your signup on EduNexa, please use the One-Time Password (OTP) below.

VERIFICATION CODE: %s

Valid for: 5 minutes only

If you didn't request this verification, you can safely ignore this message.
No changes will be made to your account.

Happy Learning!
- Team EduNexa`, name, otp)

	return s.send([]string{to}, subject, body)
}

func (s *SMTPEmailSender) SendQuotaAlert(to []string, userID string, usedTokens, totalTokens int) error {
	subject := fmt.Sprintf("Gemini quota alert for user %s", userID)
	body := fmt.Sprintf(`Gemini Usage Alert

User %s has used %d of %d daily tokens.

Consider reviewing generation activity or raising the daily limit.`,
		userID, usedTokens, totalTokens)

	return s.send(to, subject, body)
}

func (s *SMTPEmailSender) send(recipients []string, subject, body string) error {
	cleaned := make([]string, 0, len(recipients))
	for _, r := range recipients {
		if strings.TrimSpace(r) != "" {
			cleaned = append(cleaned, strings.TrimSpace(r))
		}
	}
	if len(cleaned) == 0 {
		return fmt.Errorf("no recipients configured")
	}

	auth := smtp.PlainAuth("", s.config.SMTPUser, s.config.SMTPPass, s.config.SMTPHost)

	message := fmt.Sprintf(`From: "EduNexa Admin" <%s>
To: %s
Subject: %s
MIME-Version: 1.0
Content-Type: text/plain; charset=UTF-8

%s`,
		s.config.SMTPFrom,
		strings.Join(cleaned, ", "),
		subject,
		body)

	addr := fmt.Sprintf("%s:%s", s.config.SMTPHost, s.config.SMTPPort)
	return smtp.SendMail(addr, auth, s.config.SMTPFrom, cleaned, []byte(message))
}

package email

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"motoshop-backend/pkg/logger"
)

type EmailService interface {
	SendEmail(ctx context.Context, req EmailRequest) error
}

type smtpEmailService struct {
	smtpAddr string
	smtpFrom string
}

// NewSMTPEmailService builds a mailer for a plain (unauthenticated) SMTP
// relay, which is what local dev and the staging mailhog use.
func NewSMTPEmailService(smtpHost, smtpPort, from string) EmailService {
	return &smtpEmailService{
		smtpAddr: smtpHost + ":" + smtpPort,
		smtpFrom: from,
	}
}

func (s *smtpEmailService) SendEmail(ctx context.Context, req EmailRequest) error {
	if len(req.To) == 0 {
		return fmt.Errorf("email request has no recipients")
	}

	contentType := "text/plain; charset=utf-8"
	if req.IsHTML {
		contentType = "text/html; charset=utf-8"
	}

	headers := []string{
		"From: " + s.smtpFrom,
		"To: " + strings.Join(req.To, ", "),
	}
	if len(req.Cc) > 0 {
		headers = append(headers, "Cc: "+strings.Join(req.Cc, ", "))
	}
	headers = append(headers,
		"Subject: "+req.Subject,
		"MIME-Version: 1.0",
		"Content-Type: "+contentType,
	)

	msg := []byte(strings.Join(headers, "\r\n") + "\r\n\r\n" + req.Body)

	recipients := append(append([]string{}, req.To...), req.Cc...)
	if err := smtp.SendMail(s.smtpAddr, nil, s.smtpFrom, recipients, msg); err != nil {
		logger.Error().
			Err(err).
			Strs("to", req.To).
			Str("smtp_addr", s.smtpAddr).
			Msg("Failed to send email")
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}

package email

import (
	"context"
	"fmt"
	"time"
)

// =====================================================
// NOTIFICATION EMAIL ADAPTER
// Adapts EmailService to the notification domain sender interface
// =====================================================

type NotificationEmailProvider struct {
	emailService EmailService
}

func NewNotificationEmailProvider(emailService EmailService) *NotificationEmailProvider {
	return &NotificationEmailProvider{
		emailService: emailService,
	}
}

// SendEmail implements the notification domain EmailProvider interface.
func (p *NotificationEmailProvider) SendEmail(ctx context.Context, to, subject, body string) (messageID string, err error) {
	req := EmailRequest{
		To:      []string{to},
		Subject: subject,
		Body:    body,
		IsHTML:  true,
	}

	if err := p.emailService.SendEmail(ctx, req); err != nil {
		return "", fmt.Errorf("send notification email: %w", err)
	}

	// SMTP does not return a message ID, so synthesize one for the audit trail.
	messageID = fmt.Sprintf("smtp-%s-%d", to, time.Now().Unix())
	return messageID, nil
}

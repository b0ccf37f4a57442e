// Package email provides the email client for sending transactional emails.
package email

import (
	"fmt"

	"github.com/CircuitDesk/circuitdesk-go/internal/infrastructure/email/templates"
	"github.com/CircuitDesk/circuitdesk-go/pkg/config"
	"github.com/resendlabs/resend-go"
)

// Service defines the interface for sending emails, allowing for mock implementations in tests.
type Service interface {
	SendCaseOpenedEmail(toEmail string, props templates.CaseOpenedEmailProps) error
}

// ResendClient is the concrete implementation of the email Service using the Resend API.
type ResendClient struct {
	client    *resend.Client
	fromEmail string
}

// NewService creates a new email service client, returning the Service interface.
func NewService() (Service, error) {
	if config.ResendAPIKey == "" {
		return nil, fmt.Errorf("RESEND_API_KEY environment variable is required")
	}

	return &ResendClient{
		client:    resend.NewClient(config.ResendAPIKey),
		fromEmail: config.CaseEmailFrom,
	}, nil
}

// SendCaseOpenedEmail composes and sends the case-opened notification email.
func (c *ResendClient) SendCaseOpenedEmail(toEmail string, props templates.CaseOpenedEmailProps) error {
	subject := fmt.Sprintf("New support case for circuit %s", props.LeadCkt)

	htmlContent := templates.GetEmailLayout(templates.EmailLayoutProps{
		Preheader: subject,
		Content:   templates.GetCaseOpenedEmailContent(props),
	})

	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("CircuitDesk <%s>", c.fromEmail),
		To:      []string{toEmail},
		Subject: subject,
		Html:    htmlContent,
	}

	_, err := c.client.Emails.Send(params)
	if err != nil {
		return fmt.Errorf("failed to send case opened email via Resend: %w", err)
	}

	return nil
}

// Package notify sends notification mail through SendGrid.
package notify

import (
	"context"
	"fmt"
	"strings"

	"marketplace/config"
	"marketplace/internal/models"
	"marketplace/internal/util"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"
)

type Mailer struct {
	client  *sendgrid.Client
	from    *mail.Email
	support *mail.Email
	logger  *zap.Logger
}

// NewMailer creates a mailer. With no API key configured every send is
// logged and skipped.
func NewMailer(cfg config.MailConfig) *Mailer {
	m := &Mailer{
		from:    mail.NewEmail("YourOps Marketplace", cfg.FromAddress),
		support: mail.NewEmail("Support", cfg.SupportAddress),
		logger:  util.GetLogger(),
	}
	if cfg.SendGridAPIKey != "" {
		m.client = sendgrid.NewSendClient(cfg.SendGridAPIKey)
	}
	return m
}

// Enabled reports whether mail is actually delivered
func (m *Mailer) Enabled() bool {
	return m.client != nil
}

// SendContact forwards a contact form submission to the support inbox
func (m *Mailer) SendContact(ctx context.Context, msg models.ContactMessage) error {
	return m.send(ctx, "contact", contactMail(m.from, m.support, msg))
}

// SendTicket forwards a support ticket to the support inbox
func (m *Mailer) SendTicket(ctx context.Context, ticket models.SupportTicket) error {
	return m.send(ctx, "ticket", ticketMail(m.from, m.support, ticket))
}

func (m *Mailer) send(ctx context.Context, kind string, message *mail.SGMailV3) error {
	if m.client == nil {
		m.logger.Info("Missing SendGrid config, skipping email",
			zap.String("kind", kind),
			zap.String("subject", message.Subject))
		util.MailsSentTotal.WithLabelValues(kind, "skipped").Inc()
		return nil
	}

	resp, err := m.client.SendWithContext(ctx, message)
	if err != nil {
		util.MailsSentTotal.WithLabelValues(kind, "error").Inc()
		return fmt.Errorf("failed to send %s email: %w", kind, err)
	}
	if resp.StatusCode >= 400 {
		util.MailsSentTotal.WithLabelValues(kind, "rejected").Inc()
		return fmt.Errorf("sendgrid rejected %s email: status %d", kind, resp.StatusCode)
	}

	util.MailsSentTotal.WithLabelValues(kind, "sent").Inc()
	m.logger.Info("Email sent", zap.String("kind", kind), zap.Int("status", resp.StatusCode))
	return nil
}

func contactMail(from, to *mail.Email, msg models.ContactMessage) *mail.SGMailV3 {
	subject := fmt.Sprintf("New contact message from %s", msg.Name)

	var b strings.Builder
	fmt.Fprintf(&b, "Name: %s\n", msg.Name)
	fmt.Fprintf(&b, "Email: %s\n", msg.Email)
	if msg.Company != "" {
		fmt.Fprintf(&b, "Company: %s\n", msg.Company)
	}
	if msg.Product != "" {
		fmt.Fprintf(&b, "Product: %s\n", msg.Product)
	}
	fmt.Fprintf(&b, "\n%s\n", msg.Message)

	message := mail.NewSingleEmail(from, subject, to, b.String(), "")
	message.SetReplyTo(mail.NewEmail(msg.Name, msg.Email))
	return message
}

func ticketMail(from, to *mail.Email, ticket models.SupportTicket) *mail.SGMailV3 {
	subject := fmt.Sprintf("[%s] %s", strings.ToUpper(ticket.Category), ticket.Subject)
	body := fmt.Sprintf("Ticket: %s\nFrom: %s\nCategory: %s\n\n%s\n",
		ticket.ID, ticket.UserEmail, ticket.Category, ticket.Message)

	message := mail.NewSingleEmail(from, subject, to, body, "")
	if ticket.UserEmail != "" {
		message.SetReplyTo(mail.NewEmail("", ticket.UserEmail))
	}
	return message
}

package notify

import (
	"context"
	"testing"

	"marketplace/config"
	"marketplace/internal/models"

	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMailerWithoutKeySkips(t *testing.T) {
	m := NewMailer(config.MailConfig{FromAddress: "noreply@example.com", SupportAddress: "support@example.com"})
	assert.False(t, m.Enabled())

	err := m.SendContact(context.Background(), models.ContactMessage{Name: "Ada", Email: "ada@example.com", Message: "hi"})
	assert.NoError(t, err)
}

func TestContactMail(t *testing.T) {
	from := mail.NewEmail("From", "noreply@example.com")
	to := mail.NewEmail("Support", "support@example.com")

	msg := contactMail(from, to, models.ContactMessage{
		Name:    "Ada",
		Email:   "ada@example.com",
		Company: "Acme",
		Message: "Tell me about MediScan",
	})

	assert.Equal(t, "New contact message from Ada", msg.Subject)
	require.NotNil(t, msg.ReplyTo)
	assert.Equal(t, "ada@example.com", msg.ReplyTo.Address)
	require.NotEmpty(t, msg.Content)
	assert.Contains(t, msg.Content[0].Value, "Company: Acme")
	assert.NotContains(t, msg.Content[0].Value, "Product:")
}

func TestTicketMail(t *testing.T) {
	from := mail.NewEmail("From", "noreply@example.com")
	to := mail.NewEmail("Support", "support@example.com")

	msg := ticketMail(from, to, models.SupportTicket{
		ID:        "t-1",
		UserEmail: "user@example.com",
		Category:  "billing",
		Subject:   "Invoice",
		Message:   "Where is it?",
	})

	assert.Equal(t, "[BILLING] Invoice", msg.Subject)
	assert.Contains(t, msg.Content[0].Value, "Ticket: t-1")
}

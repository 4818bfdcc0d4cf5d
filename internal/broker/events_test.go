package broker

import (
	"context"
	"testing"
	"time"

	"marketplace/internal/models"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInlinePublisherRoutesOrderPaid(t *testing.T) {
	handler := NewEventHandler()

	var got *models.OrderPaidEvent
	handler.OnOrderPaid(func(ctx context.Context, e *models.OrderPaidEvent) error {
		got = e
		return nil
	})

	pub := NewInlinePublisher(handler)
	err := pub.PublishOrderPaid(context.Background(), &models.OrderPaidEvent{
		BaseEvent: models.BaseEvent{
			EventID:   "evt-1",
			EventType: models.EventTypeOrderPaid,
			Timestamp: time.Now(),
		},
		OrderID:     "order-1",
		UserID:      "user-1",
		ProductID:   "mediscan-ai",
		ProductName: "MediScan AI",
		Plan:        "Starter",
		Amount:      99,
	})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "order-1", got.OrderID)
	assert.Equal(t, int64(99), got.Amount)
}

func TestHandleMessageRoutesNotifications(t *testing.T) {
	handler := NewEventHandler()

	var contact *models.ContactMessageEvent
	var ticket *models.SupportTicketEvent
	handler.OnContactMessage(func(ctx context.Context, e *models.ContactMessageEvent) error {
		contact = e
		return nil
	})
	handler.OnSupportTicket(func(ctx context.Context, e *models.SupportTicketEvent) error {
		ticket = e
		return nil
	})

	pub := NewInlinePublisher(handler)
	ctx := context.Background()

	require.NoError(t, pub.PublishContactMessage(ctx, &models.ContactMessageEvent{
		BaseEvent: models.BaseEvent{EventID: "c1", EventType: models.EventTypeContactMessage},
		Contact:   models.ContactMessage{Name: "Ada", Email: "ada@example.com", Message: "hi"},
	}))
	require.NoError(t, pub.PublishSupportTicket(ctx, &models.SupportTicketEvent{
		BaseEvent: models.BaseEvent{EventID: "t1", EventType: models.EventTypeSupportTicket},
		Ticket:    models.SupportTicket{ID: "ticket-1", Subject: "Help", Category: "billing"},
	}))

	require.NotNil(t, contact)
	assert.Equal(t, "ada@example.com", contact.Contact.Email)
	require.NotNil(t, ticket)
	assert.Equal(t, "billing", ticket.Ticket.Category)
}

func TestHandleMessageIgnoresUnregisteredTypes(t *testing.T) {
	handler := NewEventHandler()
	err := handler.HandleMessage(context.Background(), kafka.Message{
		Value: []byte(`{"event_id":"x","event_type":"ORDER_CREATED"}`),
	})
	assert.NoError(t, err)
}

func TestHandleMessageRejectsGarbage(t *testing.T) {
	handler := NewEventHandler()
	err := handler.HandleMessage(context.Background(), kafka.Message{Value: []byte("not json")})
	assert.Error(t, err)
}

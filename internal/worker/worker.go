package worker

import (
	"context"

	"marketplace/internal/broker"
	"marketplace/internal/models"
	"marketplace/internal/util"

	"go.uber.org/zap"
)

// OrderPaidHandler activates what a paid order bought
type OrderPaidHandler interface {
	HandleOrderPaid(ctx context.Context, event *models.OrderPaidEvent) error
}

// Mailer delivers notification mail
type Mailer interface {
	SendContact(ctx context.Context, msg models.ContactMessage) error
	SendTicket(ctx context.Context, ticket models.SupportTicket) error
}

// RegisterOrderHandlers wires order-topic events to their handlers
func RegisterOrderHandlers(h *broker.EventHandler, paid OrderPaidHandler) {
	h.OnOrderPaid(paid.HandleOrderPaid)
}

// RegisterNotificationHandlers wires notification-topic events to the mailer
func RegisterNotificationHandlers(h *broker.EventHandler, mailer Mailer) {
	h.OnContactMessage(func(ctx context.Context, e *models.ContactMessageEvent) error {
		return mailer.SendContact(ctx, e.Contact)
	})
	h.OnSupportTicket(func(ctx context.Context, e *models.SupportTicketEvent) error {
		return mailer.SendTicket(ctx, e.Ticket)
	})
}

// OrderWorker consumes order events
type OrderWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
	logger       *zap.Logger
}

// NewOrderWorker creates a new order worker
func NewOrderWorker(consumer *broker.Consumer, paid OrderPaidHandler) *OrderWorker {
	eventHandler := broker.NewEventHandler()
	RegisterOrderHandlers(eventHandler, paid)

	return &OrderWorker{
		consumer:     consumer,
		eventHandler: eventHandler,
		logger:       util.GetLogger(),
	}
}

// Start starts the worker
func (w *OrderWorker) Start(ctx context.Context) error {
	w.logger.Info("Starting order worker")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *OrderWorker) Stop() error {
	w.logger.Info("Stopping order worker")
	return w.consumer.Close()
}

// NotificationWorker consumes contact and support events and mails them
type NotificationWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
	logger       *zap.Logger
}

// NewNotificationWorker creates a new notification worker
func NewNotificationWorker(consumer *broker.Consumer, mailer Mailer) *NotificationWorker {
	eventHandler := broker.NewEventHandler()
	RegisterNotificationHandlers(eventHandler, mailer)

	return &NotificationWorker{
		consumer:     consumer,
		eventHandler: eventHandler,
		logger:       util.GetLogger(),
	}
}

// Start starts the notification worker
func (nw *NotificationWorker) Start(ctx context.Context) error {
	nw.logger.Info("Starting notification worker")
	return nw.consumer.StartConsuming(ctx, nw.eventHandler.HandleMessage)
}

// Stop stops the notification worker
func (nw *NotificationWorker) Stop() error {
	nw.logger.Info("Stopping notification worker")
	return nw.consumer.Close()
}

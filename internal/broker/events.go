package broker

import (
	"context"
	"encoding/json"
	"fmt"

	"marketplace/internal/models"
	"marketplace/internal/util"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// EventPublisher handles publishing domain events. Order events go to the
// order topic; contact and support events go to the notification topic.
type EventPublisher struct {
	orders        *Producer
	notifications *Producer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(orders, notifications *Producer) *EventPublisher {
	return &EventPublisher{orders: orders, notifications: notifications}
}

// PublishOrderCreated publishes OrderCreated event
func (ep *EventPublisher) PublishOrderCreated(ctx context.Context, event *models.OrderCreatedEvent) error {
	return ep.orders.PublishEvent(ctx, orderKey(event.OrderID), event)
}

// PublishOrderPaid publishes OrderPaid event
func (ep *EventPublisher) PublishOrderPaid(ctx context.Context, event *models.OrderPaidEvent) error {
	return ep.orders.PublishEvent(ctx, orderKey(event.OrderID), event)
}

// PublishContactMessage publishes a ContactMessage event
func (ep *EventPublisher) PublishContactMessage(ctx context.Context, event *models.ContactMessageEvent) error {
	return ep.notifications.PublishEvent(ctx, "contact-"+event.EventID, event)
}

// PublishSupportTicket publishes a SupportTicket event
func (ep *EventPublisher) PublishSupportTicket(ctx context.Context, event *models.SupportTicketEvent) error {
	return ep.notifications.PublishEvent(ctx, "ticket-"+event.Ticket.ID, event)
}

func orderKey(orderID string) string {
	return fmt.Sprintf("order-%s", orderID)
}

// InlinePublisher delivers events straight to an EventHandler in the
// calling goroutine. It stands in for Kafka when KAFKA_ENABLED=false.
type InlinePublisher struct {
	handler *EventHandler
}

// NewInlinePublisher creates a publisher that dispatches to handler
func NewInlinePublisher(handler *EventHandler) *InlinePublisher {
	return &InlinePublisher{handler: handler}
}

func (ip *InlinePublisher) dispatch(ctx context.Context, key string, event interface{}) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	return ip.handler.HandleMessage(ctx, kafka.Message{Key: []byte(key), Value: value})
}

func (ip *InlinePublisher) PublishOrderCreated(ctx context.Context, event *models.OrderCreatedEvent) error {
	return ip.dispatch(ctx, orderKey(event.OrderID), event)
}

func (ip *InlinePublisher) PublishOrderPaid(ctx context.Context, event *models.OrderPaidEvent) error {
	return ip.dispatch(ctx, orderKey(event.OrderID), event)
}

func (ip *InlinePublisher) PublishContactMessage(ctx context.Context, event *models.ContactMessageEvent) error {
	return ip.dispatch(ctx, "contact-"+event.EventID, event)
}

func (ip *InlinePublisher) PublishSupportTicket(ctx context.Context, event *models.SupportTicketEvent) error {
	return ip.dispatch(ctx, "ticket-"+event.Ticket.ID, event)
}

// EventHandler handles incoming events
type EventHandler struct {
	onOrderPaid      func(context.Context, *models.OrderPaidEvent) error
	onContactMessage func(context.Context, *models.ContactMessageEvent) error
	onSupportTicket  func(context.Context, *models.SupportTicketEvent) error
	logger           *zap.Logger
}

// NewEventHandler creates a new event handler
func NewEventHandler() *EventHandler {
	return &EventHandler{logger: util.GetLogger()}
}

// OnOrderPaid registers a handler for OrderPaid events
func (eh *EventHandler) OnOrderPaid(handler func(context.Context, *models.OrderPaidEvent) error) {
	eh.onOrderPaid = handler
}

// OnContactMessage registers a handler for ContactMessage events
func (eh *EventHandler) OnContactMessage(handler func(context.Context, *models.ContactMessageEvent) error) {
	eh.onContactMessage = handler
}

// OnSupportTicket registers a handler for SupportTicket events
func (eh *EventHandler) OnSupportTicket(handler func(context.Context, *models.SupportTicketEvent) error) {
	eh.onSupportTicket = handler
}

// HandleMessage routes messages to appropriate handlers. Event types with
// no registered handler are acknowledged and dropped.
func (eh *EventHandler) HandleMessage(ctx context.Context, msg kafka.Message) error {
	var baseEvent models.BaseEvent
	if err := json.Unmarshal(msg.Value, &baseEvent); err != nil {
		return fmt.Errorf("failed to unmarshal base event: %w", err)
	}

	eh.logger.Debug("Handling event",
		zap.String("type", baseEvent.EventType),
		zap.String("id", baseEvent.EventID))

	switch baseEvent.EventType {
	case models.EventTypeOrderPaid:
		if eh.onOrderPaid != nil {
			var event models.OrderPaidEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal OrderPaid event: %w", err)
			}
			return eh.onOrderPaid(ctx, &event)
		}

	case models.EventTypeContactMessage:
		if eh.onContactMessage != nil {
			var event models.ContactMessageEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal ContactMessage event: %w", err)
			}
			return eh.onContactMessage(ctx, &event)
		}

	case models.EventTypeSupportTicket:
		if eh.onSupportTicket != nil {
			var event models.SupportTicketEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal SupportTicket event: %w", err)
			}
			return eh.onSupportTicket(ctx, &event)
		}

	default:
		eh.logger.Debug("Unhandled event type", zap.String("type", baseEvent.EventType))
	}

	return nil
}

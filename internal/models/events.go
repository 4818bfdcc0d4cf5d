package models

import "time"

// Event types
const (
	EventTypeOrderCreated   = "ORDER_CREATED"
	EventTypeOrderPaid      = "ORDER_PAID"
	EventTypeContactMessage = "CONTACT_MESSAGE"
	EventTypeSupportTicket  = "SUPPORT_TICKET"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// OrderCreatedEvent published when a pending order is placed
type OrderCreatedEvent struct {
	BaseEvent
	OrderID       string `json:"order_id"`
	UserID        string `json:"user_id"`
	ProductID     string `json:"product_id"`
	Plan          string `json:"plan"`
	Amount        int64  `json:"amount"`
	PaymentMethod string `json:"payment_method"`
}

// OrderPaidEvent published when an order moves to completed
type OrderPaidEvent struct {
	BaseEvent
	OrderID     string `json:"order_id"`
	UserID      string `json:"user_id"`
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	Plan        string `json:"plan"`
	Amount      int64  `json:"amount"`
}

// ContactMessageEvent carries an accepted contact form to the mailer
type ContactMessageEvent struct {
	BaseEvent
	Contact ContactMessage `json:"contact"`
}

// SupportTicketEvent carries a stored support ticket to the mailer
type SupportTicketEvent struct {
	BaseEvent
	Ticket SupportTicket `json:"ticket"`
}

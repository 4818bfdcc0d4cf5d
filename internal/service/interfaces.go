package service

import (
	"context"
	"time"

	"marketplace/internal/models"
)

type OrderStore interface {
	CreateOrder(ctx context.Context, order *models.Order) error
	GetOrderForUser(ctx context.Context, id, userID string) (*models.Order, error)
	GetOrderByIdempotencyKey(ctx context.Context, userID, key string) (*models.Order, error)
	ListOrdersByUser(ctx context.Context, userID string) ([]models.Order, error)
	CompletePendingOrder(ctx context.Context, id, userID string) (bool, error)
}

type AccountStore interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetProfile(ctx context.Context, userID string) (*models.Profile, error)
	UpdateProfile(ctx context.Context, profile *models.Profile) error
	GetPreferences(ctx context.Context, userID string) (*models.Preferences, error)
	UpdatePreferences(ctx context.Context, prefs *models.Preferences) error
}

type SubscriptionStore interface {
	ActivateService(ctx context.Context, svc *models.UserService) (bool, error)
	ListServices(ctx context.Context, userID string, activeOnly bool) ([]models.UserService, error)
}

type ConnectionStore interface {
	CreateConnection(ctx context.Context, conn *models.APIConnection) error
	ListConnections(ctx context.Context, userID string) ([]models.APIConnection, error)
	GetConnection(ctx context.Context, id, userID string) (*models.APIConnection, error)
	DeleteConnection(ctx context.Context, id, userID string) error
	TouchConnection(ctx context.Context, id, userID string, at time.Time) error
}

type TicketStore interface {
	CreateTicket(ctx context.Context, ticket *models.SupportTicket) error
}

// EventPublisher is satisfied by broker.EventPublisher and
// broker.InlinePublisher
type EventPublisher interface {
	PublishOrderCreated(ctx context.Context, event *models.OrderCreatedEvent) error
	PublishOrderPaid(ctx context.Context, event *models.OrderPaidEvent) error
	PublishContactMessage(ctx context.Context, event *models.ContactMessageEvent) error
	PublishSupportTicket(ctx context.Context, event *models.SupportTicketEvent) error
}

// Locker guards a critical section across instances
type Locker interface {
	AcquireLock(ctx context.Context, key string, ttl time.Duration) (string, bool, error)
	ReleaseLock(ctx context.Context, key, token string) error
}

type IdempotencyCache interface {
	SetIdempotencyKey(ctx context.Context, key, value string, ttl time.Duration) error
	GetIdempotencyKey(ctx context.Context, key string) (string, bool, error)
}

type RateLimiter interface {
	AllowRequest(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

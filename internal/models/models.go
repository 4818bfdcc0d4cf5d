package models

import (
	"strings"
	"time"
)

// User is an account as seen by the auth gateway
type User struct {
	ID           string    `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	Name         string    `db:"name" json:"name"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Profile holds the editable account details shown in settings
type Profile struct {
	UserID   string `db:"user_id" json:"-"`
	FullName string `db:"full_name" json:"full_name"`
	Company  string `db:"company" json:"company"`
	Phone    string `db:"phone" json:"phone"`
}

// Preferences holds notification switches and the UI theme
type Preferences struct {
	UserID             string `db:"user_id" json:"-"`
	EmailNotifications bool   `db:"email_notifications" json:"email_notifications"`
	MarketingEmails    bool   `db:"marketing_emails" json:"marketing_emails"`
	APIAlerts          bool   `db:"api_alerts" json:"api_alerts"`
	Theme              Theme  `db:"theme" json:"theme"`
}

type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// DefaultPreferences matches what a new account starts with
func DefaultPreferences(userID string) Preferences {
	return Preferences{
		UserID:             userID,
		EmailNotifications: true,
		MarketingEmails:    false,
		APIAlerts:          true,
		Theme:              ThemeLight,
	}
}

// OrderStatus is the stored order state
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusFailed    OrderStatus = "failed"
)

// Display maps a stored status to the label the dashboard shows.
// "completed" and the legacy "paid" both render as Paid.
func (s OrderStatus) Display() string {
	switch s {
	case OrderStatusCompleted, "paid":
		return "Paid"
	case OrderStatusFailed:
		return "Failed"
	default:
		return "Not Paid"
	}
}

// Badge is the short badge key used by clients for styling
func (s OrderStatus) Badge() string {
	switch s {
	case OrderStatusCompleted, "paid":
		return "paid"
	case OrderStatusFailed:
		return "failed"
	default:
		return "pending"
	}
}

// Terminal reports whether no further transition is allowed
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusCompleted || s == "paid" || s == OrderStatusFailed
}

// Order is a user-scoped purchase of a product at a plan tier.
// Only Status changes after creation.
type Order struct {
	ID             string      `db:"id" json:"id"`
	UserID         string      `db:"user_id" json:"user_id"`
	ProductID      string      `db:"product_id" json:"product_id"`
	ProductName    string      `db:"product_name" json:"product_name"`
	Plan           string      `db:"plan" json:"plan"`
	Amount         int64       `db:"amount" json:"amount"`
	PaymentMethod  string      `db:"payment_method" json:"payment_method"`
	Status         OrderStatus `db:"status" json:"status"`
	IdempotencyKey *string     `db:"idempotency_key" json:"-"`
	CreatedAt      time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time   `db:"updated_at" json:"updated_at"`
}

// PlanTier is one of the fixed monthly pricing levels
type PlanTier struct {
	Key   string `json:"key"`
	Name  string `json:"name"`
	Price int64  `json:"price"`
}

const (
	PlanStarter      = "starter"
	PlanProfessional = "professional"
	PlanEnterprise   = "enterprise"
)

var planTiers = []PlanTier{
	{Key: PlanStarter, Name: "Starter", Price: 99},
	{Key: PlanProfessional, Name: "Professional", Price: 299},
	{Key: PlanEnterprise, Name: "Enterprise", Price: 999},
}

// PlanTiers returns the tiers in display order
func PlanTiers() []PlanTier {
	out := make([]PlanTier, len(planTiers))
	copy(out, planTiers)
	return out
}

// LookupPlan resolves a plan key, case-insensitively
func LookupPlan(key string) (PlanTier, bool) {
	key = strings.ToLower(strings.TrimSpace(key))
	for _, t := range planTiers {
		if t.Key == key {
			return t, true
		}
	}
	return PlanTier{}, false
}

// PaymentMethod is the key submitted by the payment-method form
type PaymentMethod string

const (
	PaymentCreditCard   PaymentMethod = "credit_card"
	PaymentBankTransfer PaymentMethod = "bank_transfer"
)

// Label is the human label stored on the order
func (m PaymentMethod) Label() string {
	switch m {
	case PaymentBankTransfer:
		return "Bank Transfer"
	default:
		return "Credit Card"
	}
}

// Valid reports whether m is a known method
func (m PaymentMethod) Valid() bool {
	return m == PaymentCreditCard || m == PaymentBankTransfer
}

// PaymentMethodFromLabel maps a stored label back to its key
func PaymentMethodFromLabel(label string) PaymentMethod {
	if strings.Contains(label, "Credit") {
		return PaymentCreditCard
	}
	return PaymentBankTransfer
}

// APIConnection is an external AI tool endpoint configured by a user
type APIConnection struct {
	ID             string     `db:"id" json:"id"`
	UserID         string     `db:"user_id" json:"-"`
	ToolName       string     `db:"tool_name" json:"tool_name"`
	APIURL         string     `db:"api_url" json:"api_url"`
	APIKey         string     `db:"api_key" json:"-"`
	TimeoutSeconds int        `db:"timeout_seconds" json:"timeout_seconds"`
	RateLimit      *int       `db:"rate_limit" json:"rate_limit,omitempty"`
	Status         string     `db:"status" json:"status"`
	LastUsed       *time.Time `db:"last_used" json:"last_used,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
}

const ConnectionStatusConnected = "connected"

// UserService is an active product subscription
type UserService struct {
	ID          string    `db:"id" json:"id"`
	UserID      string    `db:"user_id" json:"-"`
	OrderID     string    `db:"order_id" json:"order_id"`
	ProductID   string    `db:"product_id" json:"product_id"`
	ProductName string    `db:"product_name" json:"product_name"`
	Plan        string    `db:"plan" json:"plan"`
	Price       int64     `db:"price" json:"price"`
	Status      string    `db:"status" json:"status"`
	ActivatedAt time.Time `db:"activated_at" json:"activated_at"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

const ServiceStatusActive = "active"

// SupportTicket is a dashboard support request
type SupportTicket struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"-"`
	UserEmail string    `db:"user_email" json:"user_email"`
	Category  string    `db:"category" json:"category"`
	Subject   string    `db:"subject" json:"subject"`
	Message   string    `db:"message" json:"message"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// ContactMessage is a public contact form submission
type ContactMessage struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Company string `json:"company,omitempty"`
	Product string `json:"product,omitempty"`
	Message string `json:"message" validate:"required"`
}

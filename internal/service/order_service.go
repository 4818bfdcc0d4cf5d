package service

import (
	"context"
	"fmt"
	"time"

	"marketplace/internal/models"
	"marketplace/internal/util"

	"go.uber.org/zap"
)

const (
	ActionContinuePayment = "continue_payment"
	ActionInvoice         = "invoice"
)

// OrderAction is the row action offered next to an order
type OrderAction struct {
	Kind     string `json:"kind"`
	Label    string `json:"label"`
	Href     string `json:"href,omitempty"`
	Disabled bool   `json:"disabled"`
}

// OrderSummary is one row of the orders list
type OrderSummary struct {
	ID            string             `json:"id"`
	ProductID     string             `json:"product_id"`
	ProductName   string             `json:"product_name"`
	Plan          string             `json:"plan"`
	Amount        int64              `json:"amount"`
	PaymentMethod string             `json:"payment_method"`
	Status        models.OrderStatus `json:"status"`
	StatusLabel   string             `json:"status_label"`
	Badge         string             `json:"badge"`
	Action        *OrderAction       `json:"action,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
}

// EmptyState is rendered when a list has no rows
type EmptyState struct {
	Message     string `json:"message"`
	ActionLabel string `json:"action_label"`
	ActionHref  string `json:"action_href"`
}

// OrderList is the orders dashboard page model
type OrderList struct {
	Orders []OrderSummary `json:"orders"`
	Empty  *EmptyState    `json:"empty,omitempty"`
}

// BillingSummary aggregates a user's orders and subscriptions
type BillingSummary struct {
	TotalPaid      int64                `json:"total_paid"`
	Outstanding    int64                `json:"outstanding"`
	StatusCounts   map[string]int       `json:"status_counts"`
	Subscriptions  []models.UserService `json:"subscriptions"`
	MonthlyTotal   int64                `json:"monthly_total"`
	RecentPayments []OrderSummary       `json:"recent_payments"`
}

const recentPaymentsLimit = 5

// OrderService handles the order list and billing views
type OrderService struct {
	orders        OrderStore
	subscriptions SubscriptionStore
	logger        *zap.Logger
}

// NewOrderService creates a new order service
func NewOrderService(orders OrderStore, subscriptions SubscriptionStore) *OrderService {
	return &OrderService{
		orders:        orders,
		subscriptions: subscriptions,
		logger:        util.GetLogger(),
	}
}

// ListOrders returns the user's orders newest first. On store failure the
// error is returned together with an empty list.
func (s *OrderService) ListOrders(ctx context.Context, userID string) (*OrderList, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.ListOrders")
	defer span.End()

	orders, err := s.orders.ListOrdersByUser(ctx, userID)
	if err != nil {
		util.RecordError(span, err)
		s.logger.Error("Failed to list orders", zap.String("user_id", userID), zap.Error(err))
		return &OrderList{Orders: []OrderSummary{}}, fmt.Errorf("failed to list orders: %w", err)
	}

	list := &OrderList{Orders: make([]OrderSummary, 0, len(orders))}
	for i := range orders {
		list.Orders = append(list.Orders, summarize(&orders[i]))
	}
	if len(list.Orders) == 0 {
		list.Empty = &EmptyState{
			Message:     "You haven't placed any orders yet.",
			ActionLabel: "Browse Products",
			ActionHref:  "/products",
		}
	}
	return list, nil
}

// Billing summarizes payments and active subscriptions
func (s *OrderService) Billing(ctx context.Context, userID string) (*BillingSummary, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.Billing")
	defer span.End()

	orders, err := s.orders.ListOrdersByUser(ctx, userID)
	if err != nil {
		util.RecordError(span, err)
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	subs, err := s.subscriptions.ListServices(ctx, userID, true)
	if err != nil {
		util.RecordError(span, err)
		return nil, fmt.Errorf("failed to list services: %w", err)
	}

	summary := &BillingSummary{
		StatusCounts:   map[string]int{"paid": 0, "pending": 0, "failed": 0},
		Subscriptions:  subs,
		RecentPayments: []OrderSummary{},
	}

	for i := range orders {
		o := &orders[i]
		summary.StatusCounts[o.Status.Badge()]++

		switch o.Status.Badge() {
		case "paid":
			summary.TotalPaid += o.Amount
			if len(summary.RecentPayments) < recentPaymentsLimit {
				summary.RecentPayments = append(summary.RecentPayments, summarize(o))
			}
		case "pending":
			summary.Outstanding += o.Amount
		}
	}

	for _, sub := range subs {
		summary.MonthlyTotal += sub.Price
	}

	return summary, nil
}

func summarize(o *models.Order) OrderSummary {
	row := OrderSummary{
		ID:            o.ID,
		ProductID:     o.ProductID,
		ProductName:   o.ProductName,
		Plan:          o.Plan,
		Amount:        o.Amount,
		PaymentMethod: o.PaymentMethod,
		Status:        o.Status,
		StatusLabel:   o.Status.Display(),
		Badge:         o.Status.Badge(),
		CreatedAt:     o.CreatedAt,
	}

	switch o.Status.Badge() {
	case "pending":
		row.Action = &OrderAction{
			Kind:  ActionContinuePayment,
			Label: "Continue to Payment",
			Href:  orderURL(o.ID),
		}
	case "paid":
		row.Action = &OrderAction{
			Kind:     ActionInvoice,
			Label:    "Invoice",
			Disabled: true,
		}
	}
	return row
}

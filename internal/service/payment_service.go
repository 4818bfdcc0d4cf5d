package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"marketplace/internal/models"
	"marketplace/internal/store"
	"marketplace/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CardField describes one input of the simulated card form
type CardField struct {
	Name        string `json:"name"`
	Label       string `json:"label"`
	Placeholder string `json:"placeholder"`
}

// BankDetails are the static transfer coordinates shown for bank payments
type BankDetails struct {
	BankName string `json:"bank_name"`
	IBAN     string `json:"iban"`
	BIC      string `json:"bic"`
}

// PaymentInstructions depend on the payment method stored on the order
type PaymentInstructions struct {
	Method      models.PaymentMethod `json:"method"`
	CardFields  []CardField          `json:"card_fields,omitempty"`
	Bank        *BankDetails         `json:"bank,omitempty"`
	Note        string               `json:"note"`
	ActionLabel string               `json:"action_label"`
}

// OrderDetail is the order-payment page model
type OrderDetail struct {
	Order        *models.Order        `json:"order"`
	StatusLabel  string               `json:"status_label"`
	Badge        string               `json:"badge"`
	Payable      bool                 `json:"payable"`
	Instructions *PaymentInstructions `json:"instructions,omitempty"`
}

// PaymentResult is returned by PayOrder
type PaymentResult struct {
	Order         *models.Order `json:"order"`
	Changed       bool          `json:"changed"`
	Next          string        `json:"next"`
	RedirectAfter time.Duration `json:"-"`
}

var cardFields = []CardField{
	{Name: "card_number", Label: "Card Number", Placeholder: "4242 4242 4242 4242"},
	{Name: "expiry", Label: "Expiry Date", Placeholder: "MM/YY"},
	{Name: "cvv", Label: "CVV", Placeholder: "123"},
}

var transferDetails = BankDetails{
	BankName: "CDM Bank",
	IBAN:     "FR76 3000 6000 0112 3456 7890 189",
	BIC:      "EXAMPLFR",
}

// PaymentService handles the simulated capture of pending orders
type PaymentService struct {
	orders         OrderStore
	locker         Locker
	eventPublisher EventPublisher
	lockTTL        time.Duration
	redirectDelay  time.Duration
	logger         *zap.Logger
}

// NewPaymentService creates a new payment service. locker may be nil.
func NewPaymentService(
	orders OrderStore,
	locker Locker,
	eventPublisher EventPublisher,
	lockTTL, redirectDelay time.Duration,
) *PaymentService {
	return &PaymentService{
		orders:         orders,
		locker:         locker,
		eventPublisher: eventPublisher,
		lockTTL:        lockTTL,
		redirectDelay:  redirectDelay,
		logger:         util.GetLogger(),
	}
}

// GetOrder loads an order owned by userID together with the payment
// instructions for its method. Orders of other users are not found.
func (ps *PaymentService) GetOrder(ctx context.Context, userID, orderID string) (*OrderDetail, error) {
	ctx, span := util.StartSpan(ctx, "PaymentService.GetOrder")
	defer span.End()

	order, err := ps.loadOrder(ctx, userID, orderID)
	if err != nil {
		util.RecordError(span, err)
		return nil, err
	}

	detail := &OrderDetail{
		Order:       order,
		StatusLabel: order.Status.Display(),
		Badge:       order.Status.Badge(),
		Payable:     order.Status == models.OrderStatusPending,
	}
	if detail.Payable {
		detail.Instructions = instructionsFor(order)
	}
	return detail, nil
}

// PayOrder moves a pending order to completed. Paying a completed order
// again succeeds without changes and without a second ORDER_PAID event.
// Ownership is checked before the lock so a foreign id never reports
// ErrPaymentInProgress.
func (ps *PaymentService) PayOrder(ctx context.Context, userID, orderID string) (*PaymentResult, error) {
	ctx, span := util.StartSpan(ctx, "PaymentService.PayOrder")
	defer span.End()

	order, err := ps.loadOrder(ctx, userID, orderID)
	if err != nil {
		util.RecordError(span, err)
		return nil, err
	}

	if ps.locker != nil {
		lockKey := "order-pay:" + order.ID
		token, ok, err := ps.locker.AcquireLock(ctx, lockKey, ps.lockTTL)
		if err != nil {
			ps.logger.Warn("Pay lock unavailable, relying on guarded update", zap.Error(err))
		} else if !ok {
			return nil, ErrPaymentInProgress
		} else {
			defer func() {
				if err := ps.locker.ReleaseLock(context.Background(), lockKey, token); err != nil {
					ps.logger.Warn("Failed to release pay lock", zap.String("order_id", orderID), zap.Error(err))
				}
			}()
		}
	}

	// re-read under the lock
	order, err = ps.loadOrder(ctx, userID, orderID)
	if err != nil {
		util.RecordError(span, err)
		return nil, err
	}

	switch order.Status {
	case models.OrderStatusPending:
	case models.OrderStatusFailed:
		return nil, ErrOrderNotPayable
	default:
		util.OrderPaymentRepeatsTotal.Inc()
		return ps.result(order, false), nil
	}

	changed, err := ps.orders.CompletePendingOrder(ctx, order.ID, userID)
	if err != nil {
		util.RecordError(span, err)
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	order, err = ps.loadOrder(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	if !changed {
		util.OrderPaymentRepeatsTotal.Inc()
		return ps.result(order, false), nil
	}

	util.OrdersPaidTotal.Inc()
	ps.logger.Info("Order paid",
		zap.String("order_id", order.ID),
		zap.String("payment_method", order.PaymentMethod),
		zap.Int64("amount", order.Amount))

	event := &models.OrderPaidEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeOrderPaid,
			Timestamp: time.Now(),
		},
		OrderID:     order.ID,
		UserID:      order.UserID,
		ProductID:   order.ProductID,
		ProductName: order.ProductName,
		Plan:        order.Plan,
		Amount:      order.Amount,
	}
	if err := ps.eventPublisher.PublishOrderPaid(ctx, event); err != nil {
		ps.logger.Error("Failed to publish OrderPaid event", zap.Error(err))
	}

	return ps.result(order, true), nil
}

func (ps *PaymentService) result(order *models.Order, changed bool) *PaymentResult {
	return &PaymentResult{
		Order:         order,
		Changed:       changed,
		Next:          "/dashboard/orders",
		RedirectAfter: ps.redirectDelay,
	}
}

func (ps *PaymentService) loadOrder(ctx context.Context, userID, orderID string) (*models.Order, error) {
	if userID == "" || orderID == "" {
		return nil, ErrOrderNotFound
	}

	order, err := ps.orders.GetOrderForUser(ctx, orderID, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load order: %w", err)
	}
	return order, nil
}

func instructionsFor(order *models.Order) *PaymentInstructions {
	method := models.PaymentMethodFromLabel(order.PaymentMethod)
	if method == models.PaymentCreditCard {
		fields := make([]CardField, len(cardFields))
		copy(fields, cardFields)
		return &PaymentInstructions{
			Method:      method,
			CardFields:  fields,
			Note:        "This is a simulated payment. No card will be charged.",
			ActionLabel: "Pay Now",
		}
	}

	bank := transferDetails
	return &PaymentInstructions{
		Method:      method,
		Bank:        &bank,
		Note:        "Once you've transferred the funds, mark the order as paid.",
		ActionLabel: "Mark as Paid",
	}
}

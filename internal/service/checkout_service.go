package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"marketplace/internal/catalog"
	"marketplace/internal/models"
	"marketplace/internal/store"
	"marketplace/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const defaultPlan = models.PlanProfessional

// PaymentOption is a selectable payment method
type PaymentOption struct {
	Key   models.PaymentMethod `json:"key"`
	Label string               `json:"label"`
}

// CheckoutView is what the plan-selection and payment-method steps render
type CheckoutView struct {
	Product        catalog.Product   `json:"product"`
	Plan           models.PlanTier   `json:"plan"`
	Plans          []models.PlanTier `json:"plans"`
	PaymentMethods []PaymentOption   `json:"payment_methods,omitempty"`
	Next           string            `json:"next"`
}

// PlaceOrderRequest is the confirmed payment-method form
type PlaceOrderRequest struct {
	UserID         string
	ProductID      string
	Plan           string
	Method         models.PaymentMethod
	IdempotencyKey string
}

// PlacedOrder is a newly created (or replayed) pending order
type PlacedOrder struct {
	Order    *models.Order `json:"order"`
	Next     string        `json:"next"`
	Replayed bool          `json:"replayed"`
}

// CheckoutService drives the plan-selection and payment-method steps
type CheckoutService struct {
	orders         OrderStore
	idempotency    IdempotencyCache
	eventPublisher EventPublisher
	idempotencyTTL time.Duration
	logger         *zap.Logger
}

// NewCheckoutService creates a checkout service. idempotency may be nil.
func NewCheckoutService(
	orders OrderStore,
	idempotency IdempotencyCache,
	eventPublisher EventPublisher,
	idempotencyTTL time.Duration,
) *CheckoutService {
	return &CheckoutService{
		orders:         orders,
		idempotency:    idempotency,
		eventPublisher: eventPublisher,
		idempotencyTTL: idempotencyTTL,
		logger:         util.GetLogger(),
	}
}

// StartCheckout resolves the plan-selection step
func (s *CheckoutService) StartCheckout(ctx context.Context, userID, productID, plan string) (*CheckoutView, error) {
	product, tier, err := s.resolve(userID, productID, plan)
	if err != nil {
		return nil, err
	}

	return &CheckoutView{
		Product: product,
		Plan:    tier,
		Plans:   models.PlanTiers(),
		Next:    stepURL("/payment-method", product.ID, tier.Key),
	}, nil
}

// PaymentOptions resolves the payment-method step
func (s *CheckoutService) PaymentOptions(ctx context.Context, userID, productID, plan string) (*CheckoutView, error) {
	product, tier, err := s.resolve(userID, productID, plan)
	if err != nil {
		return nil, err
	}

	return &CheckoutView{
		Product:        product,
		Plan:           tier,
		Plans:          models.PlanTiers(),
		PaymentMethods: paymentOptions(),
		Next:           stepURL("/payment-method", product.ID, tier.Key),
	}, nil
}

// PlaceOrder creates a pending order for the chosen plan and method. A
// repeated request with the same idempotency key returns the first order.
func (s *CheckoutService) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*PlacedOrder, error) {
	ctx, span := util.StartSpan(ctx, "CheckoutService.PlaceOrder")
	defer span.End()

	product, tier, err := s.resolve(req.UserID, req.ProductID, req.Plan)
	if err != nil {
		return nil, err
	}
	if !req.Method.Valid() {
		return nil, ErrInvalidPaymentMethod
	}

	var key *string
	if k := strings.TrimSpace(req.IdempotencyKey); k != "" {
		scoped := req.UserID + ":" + k
		key = &scoped

		existing, err := s.lookupIdempotent(ctx, req.UserID, scoped)
		if err != nil {
			util.RecordError(span, err)
			return nil, err
		}
		if existing != nil {
			s.logger.Info("Duplicate order request detected",
				zap.String("idempotency_key", k),
				zap.String("order_id", existing.ID))
			return &PlacedOrder{Order: existing, Next: orderURL(existing.ID), Replayed: true}, nil
		}
	}

	order := &models.Order{
		UserID:         req.UserID,
		ProductID:      product.ID,
		ProductName:    product.Name,
		Plan:           tier.Name,
		Amount:         tier.Price,
		PaymentMethod:  req.Method.Label(),
		Status:         models.OrderStatusPending,
		IdempotencyKey: key,
	}

	if err := s.orders.CreateOrder(ctx, order); err != nil {
		if errors.Is(err, store.ErrConflict) && key != nil {
			existing, lerr := s.orders.GetOrderByIdempotencyKey(ctx, req.UserID, *key)
			if lerr == nil && existing != nil {
				return &PlacedOrder{Order: existing, Next: orderURL(existing.ID), Replayed: true}, nil
			}
		}
		util.OrdersFailedTotal.WithLabelValues("db_error").Inc()
		util.RecordError(span, err)
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	util.OrdersCreatedTotal.WithLabelValues(tier.Key).Inc()
	s.logger.Info("Order created",
		zap.String("order_id", order.ID),
		zap.String("product_id", order.ProductID),
		zap.String("plan", tier.Key))

	if key != nil && s.idempotency != nil {
		if err := s.idempotency.SetIdempotencyKey(ctx, *key, order.ID, s.idempotencyTTL); err != nil {
			s.logger.Warn("Failed to cache idempotency key", zap.Error(err))
		}
	}

	event := &models.OrderCreatedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeOrderCreated,
			Timestamp: time.Now(),
		},
		OrderID:       order.ID,
		UserID:        order.UserID,
		ProductID:     order.ProductID,
		Plan:          tier.Key,
		Amount:        order.Amount,
		PaymentMethod: order.PaymentMethod,
	}
	if err := s.eventPublisher.PublishOrderCreated(ctx, event); err != nil {
		s.logger.Error("Failed to publish OrderCreated event", zap.Error(err))
	}

	return &PlacedOrder{Order: order, Next: orderURL(order.ID)}, nil
}

func (s *CheckoutService) lookupIdempotent(ctx context.Context, userID, key string) (*models.Order, error) {
	if s.idempotency != nil {
		orderID, ok, err := s.idempotency.GetIdempotencyKey(ctx, key)
		if err != nil {
			s.logger.Warn("Idempotency cache unavailable", zap.Error(err))
		} else if ok {
			order, err := s.orders.GetOrderForUser(ctx, orderID, userID)
			if err == nil {
				return order, nil
			}
			if !errors.Is(err, store.ErrNotFound) {
				return nil, fmt.Errorf("failed to load order: %w", err)
			}
		}
	}

	order, err := s.orders.GetOrderByIdempotencyKey(ctx, userID, key)
	if err != nil {
		return nil, fmt.Errorf("failed to check idempotency: %w", err)
	}
	return order, nil
}

// resolve applies the guards shared by every checkout step: the product
// must exist, the caller must be signed in, and the plan must be known
func (s *CheckoutService) resolve(userID, productID, plan string) (catalog.Product, models.PlanTier, error) {
	product, ok := catalog.FindProduct(productID)
	if !ok {
		util.CheckoutRedirectsTotal.WithLabelValues("product_not_found").Inc()
		return catalog.Product{}, models.PlanTier{}, &RedirectError{
			Location: "/products",
			Reason:   "product_not_found",
			Message:  "Product not found",
			cause:    ErrProductNotFound,
		}
	}

	if userID == "" {
		util.CheckoutRedirectsTotal.WithLabelValues("unauthenticated").Inc()
		return catalog.Product{}, models.PlanTier{}, &RedirectError{
			Location: "/products/" + product.ID,
			Reason:   "unauthenticated",
			Message:  "Please sign in to continue",
		}
	}

	if strings.TrimSpace(plan) == "" {
		plan = defaultPlan
	}
	tier, ok := models.LookupPlan(plan)
	if !ok {
		return catalog.Product{}, models.PlanTier{}, fmt.Errorf("%w: %q", ErrInvalidPlan, plan)
	}

	return product, tier, nil
}

func paymentOptions() []PaymentOption {
	return []PaymentOption{
		{Key: models.PaymentCreditCard, Label: models.PaymentCreditCard.Label()},
		{Key: models.PaymentBankTransfer, Label: models.PaymentBankTransfer.Label()},
	}
}

func stepURL(path, productID, plan string) string {
	return fmt.Sprintf("%s?product=%s&plan=%s", path, url.QueryEscape(productID), url.QueryEscape(plan))
}

func orderURL(orderID string) string {
	return "/dashboard/orders/" + orderID
}

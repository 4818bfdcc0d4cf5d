package service

import (
	"context"
	"fmt"

	"marketplace/internal/models"
	"marketplace/internal/util"

	"go.uber.org/zap"
)

// ServiceView is a subscription as listed on the services page
type ServiceView struct {
	models.UserService
	LaunchURL string `json:"launch_url"`
}

// SubscriptionService activates and lists product subscriptions
type SubscriptionService struct {
	subscriptions SubscriptionStore
	launchURL     string
	logger        *zap.Logger
}

// NewSubscriptionService creates a new subscription service
func NewSubscriptionService(subscriptions SubscriptionStore, launchURL string) *SubscriptionService {
	return &SubscriptionService{
		subscriptions: subscriptions,
		launchURL:     launchURL,
		logger:        util.GetLogger(),
	}
}

// ListServices returns all of a user's subscriptions, newest first
func (s *SubscriptionService) ListServices(ctx context.Context, userID string) ([]ServiceView, error) {
	services, err := s.subscriptions.ListServices(ctx, userID, false)
	if err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}

	views := make([]ServiceView, 0, len(services))
	for _, svc := range services {
		view := ServiceView{UserService: svc}
		if svc.Status == models.ServiceStatusActive {
			view.LaunchURL = s.launchURL
		}
		views = append(views, view)
	}
	return views, nil
}

// HandleOrderPaid activates the subscription bought by a paid order.
// Redelivered events are absorbed by the one-subscription-per-order rule.
func (s *SubscriptionService) HandleOrderPaid(ctx context.Context, event *models.OrderPaidEvent) error {
	ctx, span := util.StartSpan(ctx, "SubscriptionService.HandleOrderPaid")
	defer span.End()

	svc := &models.UserService{
		UserID:      event.UserID,
		OrderID:     event.OrderID,
		ProductID:   event.ProductID,
		ProductName: event.ProductName,
		Plan:        event.Plan,
		Price:       event.Amount,
		Status:      models.ServiceStatusActive,
	}

	created, err := s.subscriptions.ActivateService(ctx, svc)
	if err != nil {
		util.RecordError(span, err)
		return fmt.Errorf("failed to activate service: %w", err)
	}
	if !created {
		s.logger.Info("Service already active for order", zap.String("order_id", event.OrderID))
		return nil
	}

	util.ServicesActivatedTotal.Inc()
	s.logger.Info("Service activated",
		zap.String("order_id", event.OrderID),
		zap.String("product_id", event.ProductID),
		zap.String("plan", event.Plan))
	return nil
}

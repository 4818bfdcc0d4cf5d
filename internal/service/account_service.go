package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"marketplace/internal/models"
	"marketplace/internal/store"
	"marketplace/internal/util"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// Overview is the dashboard landing page model
type Overview struct {
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	MemberSince    time.Time `json:"member_since"`
	TotalOrders    int       `json:"total_orders"`
	PendingOrders  int       `json:"pending_orders"`
	ActiveServices int       `json:"active_services"`
}

// ProfileInput is the editable part of the profile
type ProfileInput struct {
	FullName string `json:"full_name" validate:"max=100"`
	Company  string `json:"company" validate:"max=100"`
	Phone    string `json:"phone" validate:"max=30"`
}

// PreferencesInput updates only the fields that are set
type PreferencesInput struct {
	EmailNotifications *bool   `json:"email_notifications"`
	MarketingEmails    *bool   `json:"marketing_emails"`
	APIAlerts          *bool   `json:"api_alerts"`
	Theme              *string `json:"theme" validate:"omitempty,oneof=light dark"`
}

// AccountService serves the overview and settings pages
type AccountService struct {
	accounts      AccountStore
	orders        OrderStore
	subscriptions SubscriptionStore
	validate      *validator.Validate
	logger        *zap.Logger
}

// NewAccountService creates a new account service
func NewAccountService(accounts AccountStore, orders OrderStore, subscriptions SubscriptionStore) *AccountService {
	return &AccountService{
		accounts:      accounts,
		orders:        orders,
		subscriptions: subscriptions,
		validate:      validator.New(),
		logger:        util.GetLogger(),
	}
}

// Overview loads the account header and order/service counters
func (s *AccountService) Overview(ctx context.Context, userID string) (*Overview, error) {
	ctx, span := util.StartSpan(ctx, "AccountService.Overview")
	defer span.End()

	user, err := s.accounts.GetUserByID(ctx, userID)
	if err != nil {
		util.RecordError(span, err)
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	orders, err := s.orders.ListOrdersByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	services, err := s.subscriptions.ListServices(ctx, userID, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}

	ov := &Overview{
		Name:           user.Name,
		Email:          user.Email,
		MemberSince:    user.CreatedAt,
		TotalOrders:    len(orders),
		ActiveServices: len(services),
	}
	for _, o := range orders {
		if o.Status == models.OrderStatusPending {
			ov.PendingOrders++
		}
	}
	return ov, nil
}

func (s *AccountService) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	profile, err := s.accounts.GetProfile(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	return profile, nil
}

func (s *AccountService) UpdateProfile(ctx context.Context, userID string, in ProfileInput) (*models.Profile, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, validationError(err)
	}

	profile := &models.Profile{
		UserID:   userID,
		FullName: strings.TrimSpace(in.FullName),
		Company:  strings.TrimSpace(in.Company),
		Phone:    strings.TrimSpace(in.Phone),
	}
	if err := s.accounts.UpdateProfile(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	s.logger.Info("Profile updated", zap.String("user_id", userID))
	return profile, nil
}

func (s *AccountService) GetPreferences(ctx context.Context, userID string) (*models.Preferences, error) {
	prefs, err := s.accounts.GetPreferences(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		defaults := models.DefaultPreferences(userID)
		return &defaults, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load preferences: %w", err)
	}
	return prefs, nil
}

// UpdatePreferences merges in over the stored preferences
func (s *AccountService) UpdatePreferences(ctx context.Context, userID string, in PreferencesInput) (*models.Preferences, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, validationError(err)
	}

	prefs, err := s.GetPreferences(ctx, userID)
	if err != nil {
		return nil, err
	}

	if in.EmailNotifications != nil {
		prefs.EmailNotifications = *in.EmailNotifications
	}
	if in.MarketingEmails != nil {
		prefs.MarketingEmails = *in.MarketingEmails
	}
	if in.APIAlerts != nil {
		prefs.APIAlerts = *in.APIAlerts
	}
	if in.Theme != nil {
		prefs.Theme = models.Theme(*in.Theme)
	}

	if err := s.accounts.UpdatePreferences(ctx, prefs); err != nil {
		return nil, fmt.Errorf("failed to update preferences: %w", err)
	}
	return prefs, nil
}

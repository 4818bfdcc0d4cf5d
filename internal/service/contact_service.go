package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"marketplace/internal/models"
	"marketplace/internal/util"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ContactService accepts public contact form submissions
type ContactService struct {
	eventPublisher EventPublisher
	validate       *validator.Validate
	logger         *zap.Logger
}

// NewContactService creates a new contact service
func NewContactService(eventPublisher EventPublisher) *ContactService {
	return &ContactService{
		eventPublisher: eventPublisher,
		validate:       validator.New(),
		logger:         util.GetLogger(),
	}
}

// Submit validates msg and publishes it for delivery. Nothing is sent when
// validation fails.
func (s *ContactService) Submit(ctx context.Context, msg models.ContactMessage) error {
	ctx, span := util.StartSpan(ctx, "ContactService.Submit")
	defer span.End()

	msg.Name = strings.TrimSpace(msg.Name)
	msg.Email = strings.TrimSpace(msg.Email)
	msg.Company = strings.TrimSpace(msg.Company)
	msg.Product = strings.TrimSpace(msg.Product)
	msg.Message = strings.TrimSpace(msg.Message)

	if err := s.validate.Struct(msg); err != nil {
		util.ContactMessagesTotal.WithLabelValues("invalid").Inc()
		return validationError(err)
	}

	event := &models.ContactMessageEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeContactMessage,
			Timestamp: time.Now(),
		},
		Contact: msg,
	}
	if err := s.eventPublisher.PublishContactMessage(ctx, event); err != nil {
		util.ContactMessagesTotal.WithLabelValues("error").Inc()
		util.RecordError(span, err)
		return fmt.Errorf("failed to send message: %w", err)
	}

	util.ContactMessagesTotal.WithLabelValues("accepted").Inc()
	s.logger.Info("Contact message accepted", zap.String("event_id", event.EventID))
	return nil
}

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

// TicketInput is the support form
type TicketInput struct {
	Category string `json:"category" validate:"omitempty,oneof=general billing technical feature other"`
	Subject  string `json:"subject" validate:"required,max=200"`
	Message  string `json:"message" validate:"required"`
}

// FAQEntry is one question on the support page
type FAQEntry struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

var faqs = []FAQEntry{
	{
		Question: "How do I reset my password?",
		Answer:   "You can reset your password by clicking the \"Forgot Password\" link on the login page. Follow the instructions sent to your email.",
	},
	{
		Question: "How do I upgrade my plan?",
		Answer:   "Visit the Billing section in your dashboard to view available plans and upgrade your subscription anytime.",
	},
	{
		Question: "What payment methods do you accept?",
		Answer:   "We accept all major credit cards (Visa, Mastercard, American Express) and other digital payment methods through Stripe.",
	},
	{
		Question: "How can I cancel my subscription?",
		Answer:   "You can cancel your subscription anytime from the Billing section. Your access will continue until the end of your billing period.",
	},
	{
		Question: "Is there a free trial available?",
		Answer:   "Yes! We offer a 14-day free trial for new users. No credit card required to start.",
	},
	{
		Question: "Do you offer refunds?",
		Answer:   "We offer a 30-day money-back guarantee if you're not satisfied with our service.",
	},
}

// FAQ returns the static FAQ list
func FAQ() []FAQEntry {
	out := make([]FAQEntry, len(faqs))
	copy(out, faqs)
	return out
}

// SupportService stores tickets and hands them to the notification topic
type SupportService struct {
	tickets        TicketStore
	eventPublisher EventPublisher
	validate       *validator.Validate
	logger         *zap.Logger
}

// NewSupportService creates a new support service
func NewSupportService(tickets TicketStore, eventPublisher EventPublisher) *SupportService {
	return &SupportService{
		tickets:        tickets,
		eventPublisher: eventPublisher,
		validate:       validator.New(),
		logger:         util.GetLogger(),
	}
}

// SubmitTicket validates and stores a ticket. Mailing happens
// asynchronously from the SUPPORT_TICKET event.
func (s *SupportService) SubmitTicket(ctx context.Context, userID, email string, in TicketInput) (*models.SupportTicket, error) {
	ctx, span := util.StartSpan(ctx, "SupportService.SubmitTicket")
	defer span.End()

	in.Subject = strings.TrimSpace(in.Subject)
	in.Message = strings.TrimSpace(in.Message)
	in.Category = strings.ToLower(strings.TrimSpace(in.Category))
	if err := s.validate.Struct(in); err != nil {
		return nil, validationError(err)
	}
	if in.Category == "" {
		in.Category = "general"
	}

	ticket := &models.SupportTicket{
		UserID:    userID,
		UserEmail: email,
		Category:  in.Category,
		Subject:   in.Subject,
		Message:   in.Message,
	}
	if err := s.tickets.CreateTicket(ctx, ticket); err != nil {
		util.RecordError(span, err)
		return nil, fmt.Errorf("failed to submit ticket: %w", err)
	}
	util.SupportTicketsTotal.WithLabelValues(ticket.Category).Inc()

	event := &models.SupportTicketEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeSupportTicket,
			Timestamp: time.Now(),
		},
		Ticket: *ticket,
	}
	if err := s.eventPublisher.PublishSupportTicket(ctx, event); err != nil {
		s.logger.Error("Failed to publish SupportTicket event", zap.String("ticket_id", ticket.ID), zap.Error(err))
	}

	return ticket, nil
}

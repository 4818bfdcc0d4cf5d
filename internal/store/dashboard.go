package store

import (
	"context"
	"database/sql"
	"time"

	"marketplace/internal/models"

	"github.com/google/uuid"
)

// ActivateService records a subscription for a paid order. It reports
// false when the order already has one.
func (s *Store) ActivateService(ctx context.Context, svc *models.UserService) (bool, error) {
	svc.ID = uuid.New().String()

	err := s.db.QueryRowxContext(ctx, `
		INSERT INTO user_services (id, user_id, order_id, product_id, product_name, plan, price, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (order_id) DO NOTHING
		RETURNING activated_at, created_at`,
		svc.ID, svc.UserID, svc.OrderID, svc.ProductID, svc.ProductName, svc.Plan, svc.Price, svc.Status,
	).Scan(&svc.ActivatedAt, &svc.CreatedAt)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ListServices retrieves a user's subscriptions, newest first
func (s *Store) ListServices(ctx context.Context, userID string, activeOnly bool) ([]models.UserService, error) {
	services := []models.UserService{}
	query := "SELECT * FROM user_services WHERE user_id = $1 ORDER BY created_at DESC"
	args := []interface{}{userID}
	if activeOnly {
		query = "SELECT * FROM user_services WHERE user_id = $1 AND status = $2 ORDER BY created_at DESC"
		args = append(args, models.ServiceStatusActive)
	}
	err := s.db.SelectContext(ctx, &services, query, args...)
	return services, err
}

// CreateConnection stores a new API connection
func (s *Store) CreateConnection(ctx context.Context, conn *models.APIConnection) error {
	conn.ID = uuid.New().String()

	return s.db.QueryRowxContext(ctx, `
		INSERT INTO api_connections (id, user_id, tool_name, api_url, api_key, timeout_seconds, rate_limit, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at`,
		conn.ID, conn.UserID, conn.ToolName, conn.APIURL, conn.APIKey, conn.TimeoutSeconds, conn.RateLimit, conn.Status,
	).Scan(&conn.CreatedAt)
}

// ListConnections retrieves a user's API connections, newest first
func (s *Store) ListConnections(ctx context.Context, userID string) ([]models.APIConnection, error) {
	conns := []models.APIConnection{}
	err := s.db.SelectContext(ctx, &conns,
		"SELECT * FROM api_connections WHERE user_id = $1 ORDER BY created_at DESC", userID)
	return conns, err
}

// GetConnection retrieves one connection owned by userID
func (s *Store) GetConnection(ctx context.Context, id, userID string) (*models.APIConnection, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}

	var conn models.APIConnection
	err := s.db.GetContext(ctx, &conn,
		"SELECT * FROM api_connections WHERE id = $1 AND user_id = $2", id, userID)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &conn, nil
}

// DeleteConnection removes a connection owned by userID
func (s *Store) DeleteConnection(ctx context.Context, id, userID string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrNotFound
	}

	res, err := s.db.ExecContext(ctx,
		"DELETE FROM api_connections WHERE id = $1 AND user_id = $2", id, userID)
	if err != nil {
		return err
	}
	return expectOneRow(res)
}

// TouchConnection records when a connection was last used
func (s *Store) TouchConnection(ctx context.Context, id, userID string, at time.Time) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE api_connections SET last_used = $1 WHERE id = $2 AND user_id = $3", at, id, userID)
	if err != nil {
		return err
	}
	return expectOneRow(res)
}

// CreateTicket stores a support ticket
func (s *Store) CreateTicket(ctx context.Context, ticket *models.SupportTicket) error {
	ticket.ID = uuid.New().String()

	return s.db.QueryRowxContext(ctx, `
		INSERT INTO support_tickets (id, user_id, user_email, category, subject, message)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`,
		ticket.ID, ticket.UserID, ticket.UserEmail, ticket.Category, ticket.Subject, ticket.Message,
	).Scan(&ticket.CreatedAt)
}

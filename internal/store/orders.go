package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"marketplace/internal/models"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// CreateOrder inserts an order and fills in its id and timestamps
func (s *Store) CreateOrder(ctx context.Context, order *models.Order) error {
	order.ID = uuid.New().String()

	query := `
		INSERT INTO orders (id, user_id, product_id, product_name, plan, amount, payment_method, status, idempotency_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at`

	err := s.db.QueryRowxContext(ctx, query,
		order.ID, order.UserID, order.ProductID, order.ProductName, order.Plan,
		order.Amount, order.PaymentMethod, order.Status, order.IdempotencyKey,
	).Scan(&order.CreatedAt, &order.UpdatedAt)
	if isUniqueViolation(err) {
		return ErrConflict
	}
	return err
}

// GetOrderForUser retrieves an order owned by userID. Orders owned by
// someone else are reported as ErrNotFound.
func (s *Store) GetOrderForUser(ctx context.Context, id, userID string) (*models.Order, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}

	var order models.Order
	err := s.db.GetContext(ctx, &order,
		"SELECT * FROM orders WHERE id = $1 AND user_id = $2", id, userID)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// GetOrderByIdempotencyKey retrieves an order by idempotency key
func (s *Store) GetOrderByIdempotencyKey(ctx context.Context, userID, key string) (*models.Order, error) {
	var order models.Order
	err := s.db.GetContext(ctx, &order,
		"SELECT * FROM orders WHERE idempotency_key = $1 AND user_id = $2", key, userID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// ListOrdersByUser retrieves a user's orders, newest first
func (s *Store) ListOrdersByUser(ctx context.Context, userID string) ([]models.Order, error) {
	orders := []models.Order{}
	err := s.db.SelectContext(ctx, &orders,
		"SELECT * FROM orders WHERE user_id = $1 ORDER BY created_at DESC", userID)
	return orders, err
}

// CompletePendingOrder moves a pending order to completed. It reports
// false when the order was not pending (or not owned by userID).
func (s *Store) CompletePendingOrder(ctx context.Context, id, userID string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		"UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2 AND user_id = $3 AND status = $4",
		models.OrderStatusCompleted, id, userID, models.OrderStatusPending)
	if err != nil {
		return false, fmt.Errorf("failed to update order status: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

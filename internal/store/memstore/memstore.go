// Package memstore is an in-process implementation of the store used for
// local development (STORE_DRIVER=memory) and tests.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"marketplace/internal/models"
	"marketplace/internal/store"

	"github.com/google/uuid"
)

type Store struct {
	mu    sync.RWMutex
	seq   int64
	now   func() time.Time
	users map[string]*models.User

	profiles    map[string]models.Profile
	preferences map[string]models.Preferences

	orders      map[string]*orderRow
	services    map[string]*serviceRow
	connections map[string]*connectionRow
	tickets     []models.SupportTicket
}

type orderRow struct {
	seq   int64
	order models.Order
}

type serviceRow struct {
	seq int64
	svc models.UserService
}

type connectionRow struct {
	seq  int64
	conn models.APIConnection
}

// New creates an empty store
func New() *Store {
	return &Store{
		now:         time.Now,
		users:       make(map[string]*models.User),
		profiles:    make(map[string]models.Profile),
		preferences: make(map[string]models.Preferences),
		orders:      make(map[string]*orderRow),
		services:    make(map[string]*serviceRow),
		connections: make(map[string]*connectionRow),
	}
}

// Ping always succeeds
func (s *Store) Ping(ctx context.Context) error { return nil }

func (s *Store) next() int64 {
	s.seq++
	return s.seq
}

// CreateUser inserts a user with an empty profile and default preferences
func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Email, user.Email) {
			return store.ErrConflict
		}
	}

	user.ID = uuid.New().String()
	user.CreatedAt = s.now()
	cp := *user
	s.users[user.ID] = &cp
	s.profiles[user.ID] = models.Profile{UserID: user.ID, FullName: user.Name}
	s.preferences[user.ID] = models.DefaultPreferences(user.ID)
	return nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *Store) UpdatePasswordHash(ctx context.Context, userID, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return store.ErrNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (s *Store) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.profiles[userID]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &p, nil
}

func (s *Store) UpdateProfile(ctx context.Context, profile *models.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.profiles[profile.UserID]; !ok {
		return store.ErrNotFound
	}
	s.profiles[profile.UserID] = *profile
	return nil
}

func (s *Store) GetPreferences(ctx context.Context, userID string) (*models.Preferences, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.preferences[userID]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &p, nil
}

func (s *Store) UpdatePreferences(ctx context.Context, prefs *models.Preferences) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.preferences[prefs.UserID]; !ok {
		return store.ErrNotFound
	}
	s.preferences[prefs.UserID] = *prefs
	return nil
}

// CreateOrder inserts an order and fills in its id and timestamps
func (s *Store) CreateOrder(ctx context.Context, order *models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if order.IdempotencyKey != nil {
		for _, row := range s.orders {
			if row.order.IdempotencyKey != nil && *row.order.IdempotencyKey == *order.IdempotencyKey {
				return store.ErrConflict
			}
		}
	}

	order.ID = uuid.New().String()
	order.CreatedAt = s.now()
	order.UpdatedAt = order.CreatedAt
	s.orders[order.ID] = &orderRow{seq: s.next(), order: *order}
	return nil
}

func (s *Store) GetOrderForUser(ctx context.Context, id, userID string) (*models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row, ok := s.orders[id]
	if !ok || row.order.UserID != userID {
		return nil, store.ErrNotFound
	}
	cp := row.order
	return &cp, nil
}

func (s *Store) GetOrderByIdempotencyKey(ctx context.Context, userID, key string) (*models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, row := range s.orders {
		k := row.order.IdempotencyKey
		if k != nil && *k == key && row.order.UserID == userID {
			cp := row.order
			return &cp, nil
		}
	}
	return nil, nil
}

// ListOrdersByUser returns a user's orders, newest first
func (s *Store) ListOrdersByUser(ctx context.Context, userID string) ([]models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := make([]*orderRow, 0)
	for _, row := range s.orders {
		if row.order.UserID == userID {
			rows = append(rows, row)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if !a.order.CreatedAt.Equal(b.order.CreatedAt) {
			return a.order.CreatedAt.After(b.order.CreatedAt)
		}
		return a.seq > b.seq
	})

	orders := make([]models.Order, 0, len(rows))
	for _, row := range rows {
		orders = append(orders, row.order)
	}
	return orders, nil
}

func (s *Store) CompletePendingOrder(ctx context.Context, id, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.orders[id]
	if !ok || row.order.UserID != userID || row.order.Status != models.OrderStatusPending {
		return false, nil
	}
	row.order.Status = models.OrderStatusCompleted
	row.order.UpdatedAt = s.now()
	return true, nil
}

// ActivateService records a subscription unless the order already has one
func (s *Store) ActivateService(ctx context.Context, svc *models.UserService) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, row := range s.services {
		if row.svc.OrderID == svc.OrderID {
			return false, nil
		}
	}

	svc.ID = uuid.New().String()
	svc.ActivatedAt = s.now()
	svc.CreatedAt = svc.ActivatedAt
	s.services[svc.ID] = &serviceRow{seq: s.next(), svc: *svc}
	return true, nil
}

func (s *Store) ListServices(ctx context.Context, userID string, activeOnly bool) ([]models.UserService, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := make([]*serviceRow, 0)
	for _, row := range s.services {
		if row.svc.UserID != userID {
			continue
		}
		if activeOnly && row.svc.Status != models.ServiceStatusActive {
			continue
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].seq > rows[j].seq })

	out := make([]models.UserService, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.svc)
	}
	return out, nil
}

func (s *Store) CreateConnection(ctx context.Context, conn *models.APIConnection) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	conn.ID = uuid.New().String()
	conn.CreatedAt = s.now()
	s.connections[conn.ID] = &connectionRow{seq: s.next(), conn: *conn}
	return nil
}

func (s *Store) ListConnections(ctx context.Context, userID string) ([]models.APIConnection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := make([]*connectionRow, 0)
	for _, row := range s.connections {
		if row.conn.UserID == userID {
			rows = append(rows, row)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].seq > rows[j].seq })

	out := make([]models.APIConnection, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.conn)
	}
	return out, nil
}

func (s *Store) GetConnection(ctx context.Context, id, userID string) (*models.APIConnection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row, ok := s.connections[id]
	if !ok || row.conn.UserID != userID {
		return nil, store.ErrNotFound
	}
	cp := row.conn
	return &cp, nil
}

func (s *Store) DeleteConnection(ctx context.Context, id, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.connections[id]
	if !ok || row.conn.UserID != userID {
		return store.ErrNotFound
	}
	delete(s.connections, id)
	return nil
}

func (s *Store) TouchConnection(ctx context.Context, id, userID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.connections[id]
	if !ok || row.conn.UserID != userID {
		return store.ErrNotFound
	}
	row.conn.LastUsed = &at
	return nil
}

func (s *Store) CreateTicket(ctx context.Context, ticket *models.SupportTicket) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ticket.ID = uuid.New().String()
	ticket.CreatedAt = s.now()
	s.tickets = append(s.tickets, *ticket)
	return nil
}

// Tickets returns the stored support tickets
func (s *Store) Tickets() []models.SupportTicket {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.SupportTicket(nil), s.tickets...)
}

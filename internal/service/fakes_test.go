package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"marketplace/internal/models"
	"marketplace/internal/store/memstore"
)

type recordingPublisher struct {
	mu       sync.Mutex
	created  []*models.OrderCreatedEvent
	paid     []*models.OrderPaidEvent
	contacts []*models.ContactMessageEvent
	tickets  []*models.SupportTicketEvent
	err      error
}

func (p *recordingPublisher) PublishOrderCreated(ctx context.Context, e *models.OrderCreatedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.created = append(p.created, e)
	return p.err
}

func (p *recordingPublisher) PublishOrderPaid(ctx context.Context, e *models.OrderPaidEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.paid = append(p.paid, e)
	return p.err
}

func (p *recordingPublisher) PublishContactMessage(ctx context.Context, e *models.ContactMessageEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.contacts = append(p.contacts, e)
	return p.err
}

func (p *recordingPublisher) PublishSupportTicket(ctx context.Context, e *models.SupportTicketEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tickets = append(p.tickets, e)
	return p.err
}

type fakeLocker struct {
	mu   sync.Mutex
	held map[string]string
}

func newFakeLocker() *fakeLocker {
	return &fakeLocker{held: make(map[string]string)}
}

func (l *fakeLocker) AcquireLock(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.held[key]; ok {
		return "", false, nil
	}
	token := key + "-token"
	l.held[key] = token
	return token, true, nil
}

func (l *fakeLocker) ReleaseLock(ctx context.Context, key, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] == token {
		delete(l.held, key)
	}
	return nil
}

type fakeIdempotency struct {
	mu     sync.Mutex
	values map[string]string
}

func newFakeIdempotency() *fakeIdempotency {
	return &fakeIdempotency{values: make(map[string]string)}
}

func (f *fakeIdempotency) SetIdempotencyKey(ctx context.Context, key, value string, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values[key] = value
	return nil
}

func (f *fakeIdempotency) GetIdempotencyKey(ctx context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.values[key]
	return v, ok, nil
}

type fakeLimiter struct {
	mu     sync.Mutex
	counts map[string]int
}

func (f *fakeLimiter) AllowRequest(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.counts == nil {
		f.counts = make(map[string]int)
	}
	f.counts[key]++
	return f.counts[key] <= limit, nil
}

var errStoreDown = errors.New("store unavailable")

// brokenOrders fails every order query
type brokenOrders struct {
	*memstore.Store
}

func (b brokenOrders) CreateOrder(ctx context.Context, order *models.Order) error {
	return errStoreDown
}

func (b brokenOrders) ListOrdersByUser(ctx context.Context, userID string) ([]models.Order, error) {
	return nil, errStoreDown
}

func createUser(ctx context.Context, s *memstore.Store, email string) *models.User {
	u := &models.User{Email: email, Name: "Test User", PasswordHash: "x"}
	if err := s.CreateUser(ctx, u); err != nil {
		panic(err)
	}
	return u
}

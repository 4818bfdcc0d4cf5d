package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"marketplace/internal/models"
	"marketplace/internal/store"
	"marketplace/internal/util"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

const maxUpstreamBody = 1 << 20

// HTTPDoer is the subset of *http.Client used for outbound tool calls
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ConnectionInput is the AI tool configuration form
type ConnectionInput struct {
	ToolName       string `json:"tool_name" validate:"required,max=100"`
	APIURL         string `json:"api_url" validate:"required,url"`
	APIKey         string `json:"api_key"`
	TimeoutSeconds int    `json:"timeout_seconds" validate:"omitempty,min=1,max=300"`
	RateLimit      *int   `json:"rate_limit" validate:"omitempty,min=1"`
}

// ToolsOverview is the AI tools page model
type ToolsOverview struct {
	Connections       []models.APIConnection `json:"connections"`
	PurchasedProducts []models.UserService   `json:"purchased_products"`
}

// TestResult reports a connection check
type TestResult struct {
	Success    bool      `json:"success"`
	StatusCode int       `json:"status_code,omitempty"`
	Message    string    `json:"message"`
	CheckedAt  time.Time `json:"checked_at"`
}

// PlaygroundResult carries the upstream response verbatim
type PlaygroundResult struct {
	ConnectionID string
	StatusCode   int
	ContentType  string
	Body         []byte
}

// ConnectionService manages user-configured AI tool endpoints
type ConnectionService struct {
	connections    ConnectionStore
	subscriptions  SubscriptionStore
	limiter        RateLimiter
	client         HTTPDoer
	defaultTimeout int
	validate       *validator.Validate
	now            func() time.Time
	logger         *zap.Logger
}

// NewConnectionService creates a connection service. limiter may be nil.
func NewConnectionService(
	connections ConnectionStore,
	subscriptions SubscriptionStore,
	limiter RateLimiter,
	client HTTPDoer,
	defaultTimeout int,
) *ConnectionService {
	if client == nil {
		client = &http.Client{}
	}
	return &ConnectionService{
		connections:    connections,
		subscriptions:  subscriptions,
		limiter:        limiter,
		client:         client,
		defaultTimeout: defaultTimeout,
		validate:       validator.New(),
		now:            time.Now,
		logger:         util.GetLogger(),
	}
}

// Overview lists connections and the active purchased products
func (s *ConnectionService) Overview(ctx context.Context, userID string) (*ToolsOverview, error) {
	conns, err := s.connections.ListConnections(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list connections: %w", err)
	}
	products, err := s.subscriptions.ListServices(ctx, userID, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}
	return &ToolsOverview{Connections: conns, PurchasedProducts: products}, nil
}

// Create stores a new connection in the connected state
func (s *ConnectionService) Create(ctx context.Context, userID string, in ConnectionInput) (*models.APIConnection, error) {
	in.ToolName = strings.TrimSpace(in.ToolName)
	in.APIURL = strings.TrimSpace(in.APIURL)
	if err := s.validate.Struct(in); err != nil {
		return nil, validationError(err)
	}
	if !strings.HasPrefix(in.APIURL, "http://") && !strings.HasPrefix(in.APIURL, "https://") {
		return nil, fmt.Errorf("%w: api_url must use http or https", ErrValidation)
	}

	timeout := in.TimeoutSeconds
	if timeout == 0 {
		timeout = s.defaultTimeout
	}

	conn := &models.APIConnection{
		UserID:         userID,
		ToolName:       in.ToolName,
		APIURL:         in.APIURL,
		APIKey:         in.APIKey,
		TimeoutSeconds: timeout,
		RateLimit:      in.RateLimit,
		Status:         models.ConnectionStatusConnected,
	}
	if err := s.connections.CreateConnection(ctx, conn); err != nil {
		return nil, fmt.Errorf("failed to save connection: %w", err)
	}

	s.logger.Info("Connection saved", zap.String("connection_id", conn.ID), zap.String("tool", conn.ToolName))
	return conn, nil
}

// Delete removes a connection owned by userID
func (s *ConnectionService) Delete(ctx context.Context, userID, id string) error {
	err := s.connections.DeleteConnection(ctx, id, userID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrConnectionNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to delete connection: %w", err)
	}
	return nil
}

// Test issues a GET to the connection URL; any 2xx answer is a success
func (s *ConnectionService) Test(ctx context.Context, userID, id string) (*TestResult, error) {
	ctx, span := util.StartSpan(ctx, "ConnectionService.Test")
	defer span.End()

	conn, err := s.load(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := s.allow(ctx, conn); err != nil {
		return nil, err
	}

	resp, err := s.call(ctx, conn, http.MethodGet, nil, false)
	result := &TestResult{CheckedAt: s.now()}
	if err != nil {
		util.ConnectionTestsTotal.WithLabelValues("test", "error").Inc()
		s.logger.Warn("Connection test error", zap.String("connection_id", conn.ID), zap.Error(err))
		result.Message = "Connection test failed"
		return result, nil
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxUpstreamBody))

	result.StatusCode = resp.StatusCode
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		util.ConnectionTestsTotal.WithLabelValues("test", "failed").Inc()
		result.Message = "Connection failed: " + http.StatusText(resp.StatusCode)
		return result, nil
	}

	util.ConnectionTestsTotal.WithLabelValues("test", "success").Inc()
	result.Success = true
	result.Message = "Connection successful!"
	s.touch(ctx, conn)
	return result, nil
}

// Playground posts {"input": ...} to the user's newest connection with its
// key as bearer token and returns the upstream body untouched
func (s *ConnectionService) Playground(ctx context.Context, userID, input string) (*PlaygroundResult, error) {
	ctx, span := util.StartSpan(ctx, "ConnectionService.Playground")
	defer span.End()

	if strings.TrimSpace(input) == "" {
		return nil, fmt.Errorf("%w: please enter test input", ErrValidation)
	}

	conns, err := s.connections.ListConnections(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list connections: %w", err)
	}
	if len(conns) == 0 {
		return nil, ErrNoConnection
	}
	conn := &conns[0]

	if err := s.allow(ctx, conn); err != nil {
		return nil, err
	}

	payload, err := json.Marshal(map[string]string{"input": input})
	if err != nil {
		return nil, err
	}

	resp, err := s.call(ctx, conn, http.MethodPost, payload, true)
	if err != nil {
		util.ConnectionTestsTotal.WithLabelValues("playground", "error").Inc()
		util.RecordError(span, err)
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxUpstreamBody))
	if err != nil {
		util.ConnectionTestsTotal.WithLabelValues("playground", "error").Inc()
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	util.ConnectionTestsTotal.WithLabelValues("playground", "success").Inc()
	s.touch(ctx, conn)

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return &PlaygroundResult{
		ConnectionID: conn.ID,
		StatusCode:   resp.StatusCode,
		ContentType:  contentType,
		Body:         body,
	}, nil
}

func (s *ConnectionService) load(ctx context.Context, userID, id string) (*models.APIConnection, error) {
	conn, err := s.connections.GetConnection(ctx, id, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrConnectionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load connection: %w", err)
	}
	return conn, nil
}

func (s *ConnectionService) allow(ctx context.Context, conn *models.APIConnection) error {
	if s.limiter == nil || conn.RateLimit == nil {
		return nil
	}

	ok, err := s.limiter.AllowRequest(ctx, "connection:"+conn.ID, *conn.RateLimit, time.Minute)
	if err != nil {
		s.logger.Warn("Rate limiter unavailable", zap.Error(err))
		return nil
	}
	if !ok {
		util.ConnectionTestsTotal.WithLabelValues("any", "rate_limited").Inc()
		return ErrRateLimited
	}
	return nil
}

func (s *ConnectionService) call(ctx context.Context, conn *models.APIConnection, method string, body []byte, auth bool) (*http.Response, error) {
	timeout := conn.TimeoutSeconds
	if timeout <= 0 {
		timeout = s.defaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, time.Duration(timeout)*time.Second)

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, conn.APIURL, reader)
	if err != nil {
		cancel()
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if auth && conn.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+conn.APIKey)
	}

	start := time.Now()
	resp, err := s.client.Do(req)
	util.ConnectionCallLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		cancel()
		return nil, err
	}
	resp.Body = &cancelOnClose{ReadCloser: resp.Body, cancel: cancel}
	return resp, nil
}

func (s *ConnectionService) touch(ctx context.Context, conn *models.APIConnection) {
	if err := s.connections.TouchConnection(ctx, conn.ID, conn.UserID, s.now()); err != nil {
		s.logger.Warn("Failed to update last_used", zap.String("connection_id", conn.ID), zap.Error(err))
	}
}

// cancelOnClose releases the per-call timeout once the body is consumed
type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c *cancelOnClose) Close() error {
	err := c.ReadCloser.Close()
	c.cancel()
	return err
}

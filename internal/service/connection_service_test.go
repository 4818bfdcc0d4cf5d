package service

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"marketplace/internal/store/memstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newConnections(st *memstore.Store, limiter RateLimiter) *ConnectionService {
	return NewConnectionService(st, st, limiter, nil, 30)
}

func TestCreateConnectionValidation(t *testing.T) {
	ctx := context.Background()
	svc := newConnections(memstore.New(), nil)

	_, err := svc.Create(ctx, "u1", ConnectionInput{APIURL: "https://api.example.com"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Create(ctx, "u1", ConnectionInput{ToolName: "GPT", APIURL: "not a url"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Create(ctx, "u1", ConnectionInput{ToolName: "GPT", APIURL: "ftp://files.example.com"})
	assert.ErrorIs(t, err, ErrValidation)

	conn, err := svc.Create(ctx, "u1", ConnectionInput{ToolName: " GPT ", APIURL: "https://api.example.com"})
	require.NoError(t, err)
	assert.Equal(t, "GPT", conn.ToolName)
	assert.Equal(t, 30, conn.TimeoutSeconds)
	assert.Equal(t, "connected", conn.Status)
}

func TestConnectionTest(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()
	svc := newConnections(st, nil)

	ok := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		w.WriteHeader(http.StatusOK)
	}))
	defer ok.Close()

	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer down.Close()

	good, err := svc.Create(ctx, "u1", ConnectionInput{ToolName: "ok", APIURL: ok.URL})
	require.NoError(t, err)
	bad, err := svc.Create(ctx, "u1", ConnectionInput{ToolName: "down", APIURL: down.URL})
	require.NoError(t, err)

	result, err := svc.Test(ctx, "u1", good.ID)
	require.NoError(t, err)
	assert.True(t, result.Success)
	stored, err := st.GetConnection(ctx, good.ID, "u1")
	require.NoError(t, err)
	assert.NotNil(t, stored.LastUsed)

	result, err = svc.Test(ctx, "u1", bad.ID)
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, http.StatusServiceUnavailable, result.StatusCode)
	stored, err = st.GetConnection(ctx, bad.ID, "u1")
	require.NoError(t, err)
	assert.Nil(t, stored.LastUsed)

	_, err = svc.Test(ctx, "u2", good.ID)
	assert.ErrorIs(t, err, ErrConnectionNotFound)
}

func TestPlaygroundPassesBodyThrough(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()
	svc := newConnections(st, nil)

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var body map[string]string
		raw, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(raw, &body))
		assert.Equal(t, "hello", body["input"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"output":"hi there"}`))
	}))
	defer upstream.Close()

	_, err := svc.Playground(ctx, "u1", "hello")
	assert.ErrorIs(t, err, ErrNoConnection)

	_, err = svc.Create(ctx, "u1", ConnectionInput{ToolName: "Echo", APIURL: upstream.URL, APIKey: "sk-test"})
	require.NoError(t, err)

	_, err = svc.Playground(ctx, "u1", "   ")
	assert.ErrorIs(t, err, ErrValidation)

	result, err := svc.Playground(ctx, "u1", "hello")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, result.StatusCode)
	assert.Equal(t, "application/json", result.ContentType)
	assert.JSONEq(t, `{"output":"hi there"}`, string(result.Body))
}

func TestConnectionRateLimit(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()
	svc := newConnections(st, &fakeLimiter{})

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer upstream.Close()

	limit := 1
	conn, err := svc.Create(ctx, "u1", ConnectionInput{ToolName: "t", APIURL: upstream.URL, RateLimit: &limit})
	require.NoError(t, err)

	_, err = svc.Test(ctx, "u1", conn.ID)
	require.NoError(t, err)
	_, err = svc.Test(ctx, "u1", conn.ID)
	assert.ErrorIs(t, err, ErrRateLimited)
}

func TestDeleteConnection(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()
	svc := newConnections(st, nil)

	conn, err := svc.Create(ctx, "u1", ConnectionInput{ToolName: "t", APIURL: "https://api.example.com"})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Delete(ctx, "u2", conn.ID), ErrConnectionNotFound)
	require.NoError(t, svc.Delete(ctx, "u1", conn.ID))

	overview, err := svc.Overview(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, overview.Connections)
	assert.Empty(t, overview.PurchasedProducts)
}

package auth

import (
	"context"
	"sync"
	"testing"
	"time"

	"marketplace/internal/store/memstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRevoker struct {
	mu      sync.Mutex
	revoked map[string]time.Duration
}

func newFakeRevoker() *fakeRevoker {
	return &fakeRevoker{revoked: make(map[string]time.Duration)}
}

func (f *fakeRevoker) RevokeSession(ctx context.Context, id string, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.revoked[id] = ttl
	return nil
}

func (f *fakeRevoker) IsSessionRevoked(ctx context.Context, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.revoked[id]
	return ok, nil
}

func newTestGateway() (*Gateway, *fakeRevoker) {
	revoker := newFakeRevoker()
	return NewGateway(memstore.New(), revoker, "test-secret", time.Hour), revoker
}

func TestSignUpAndSignIn(t *testing.T) {
	g, _ := newTestGateway()
	ctx := context.Background()

	session, err := g.SignUp(ctx, " Ada@Example.com ", "secret1", "Ada")
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)
	assert.Equal(t, "ada@example.com", session.User.Email)

	id, err := g.CurrentUser(ctx, session.Token)
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, id.UserID)
	assert.Equal(t, "Ada", id.Name)

	_, err = g.SignIn(ctx, "ada@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = g.SignIn(ctx, "nobody@example.com", "secret1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	again, err := g.SignIn(ctx, "ADA@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, again.User.ID)
}

func TestSignUpValidation(t *testing.T) {
	g, _ := newTestGateway()
	ctx := context.Background()

	_, err := g.SignUp(ctx, "not-an-email", "secret1", "x")
	assert.ErrorIs(t, err, ErrInvalidEmail)

	_, err = g.SignUp(ctx, "a@example.com", "12345", "x")
	assert.ErrorIs(t, err, ErrWeakPassword)

	_, err = g.SignUp(ctx, "a@example.com", "123456", "x")
	require.NoError(t, err)
	_, err = g.SignUp(ctx, "a@example.com", "123456", "x")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestSignOutRevokesSession(t *testing.T) {
	g, revoker := newTestGateway()
	ctx := context.Background()

	session, err := g.SignUp(ctx, "a@example.com", "secret1", "A")
	require.NoError(t, err)

	require.NoError(t, g.SignOut(ctx, session.Token))
	assert.Len(t, revoker.revoked, 1)

	_, err = g.CurrentUser(ctx, session.Token)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	assert.ErrorIs(t, g.SignOut(ctx, "garbage"), ErrUnauthenticated)
}

func TestCurrentUserRejectsBadTokens(t *testing.T) {
	g, _ := newTestGateway()
	ctx := context.Background()

	_, err := g.CurrentUser(ctx, "")
	assert.ErrorIs(t, err, ErrUnauthenticated)

	other := NewGateway(memstore.New(), nil, "other-secret", time.Hour)
	session, err := other.SignUp(ctx, "a@example.com", "secret1", "A")
	require.NoError(t, err)

	_, err = g.CurrentUser(ctx, session.Token)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestExpiredToken(t *testing.T) {
	g, _ := newTestGateway()
	ctx := context.Background()

	session, err := g.SignUp(ctx, "a@example.com", "secret1", "A")
	require.NoError(t, err)

	g.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = g.CurrentUser(ctx, session.Token)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestUpdatePassword(t *testing.T) {
	g, _ := newTestGateway()
	ctx := context.Background()

	session, err := g.SignUp(ctx, "a@example.com", "secret1", "A")
	require.NoError(t, err)
	userID := session.User.ID

	assert.ErrorIs(t, g.UpdatePassword(ctx, userID, "short", "short"), ErrWeakPassword)
	assert.ErrorIs(t, g.UpdatePassword(ctx, userID, "newsecret", "newsecreT"), ErrPasswordMismatch)
	require.NoError(t, g.UpdatePassword(ctx, userID, "newsecret", "newsecret"))

	_, err = g.SignIn(ctx, "a@example.com", "secret1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = g.SignIn(ctx, "a@example.com", "newsecret")
	assert.NoError(t, err)
}

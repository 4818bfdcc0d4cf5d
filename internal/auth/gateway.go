// Package auth issues and verifies session tokens for marketplace users.
package auth

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
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const MinPasswordLength = 6

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("an account with this email already exists")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrUnauthenticated    = errors.New("authentication required")
	ErrWeakPassword       = fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	ErrPasswordMismatch   = errors.New("passwords do not match")
)

// UserStore is the account persistence the gateway needs
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	UpdatePasswordHash(ctx context.Context, userID, hash string) error
}

// SessionRevoker remembers signed-out session ids
type SessionRevoker interface {
	RevokeSession(ctx context.Context, sessionID string, ttl time.Duration) error
	IsSessionRevoked(ctx context.Context, sessionID string) (bool, error)
}

// Claims are carried in every session token
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	jwt.RegisteredClaims
}

// Identity is the signed-in user as seen by request handlers
type Identity struct {
	UserID    string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	SessionID string    `json:"-"`
	ExpiresAt time.Time `json:"-"`
}

// Session is returned by sign-up and sign-in
type Session struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user"`
}

type Gateway struct {
	users    UserStore
	sessions SessionRevoker
	secret   []byte
	ttl      time.Duration
	validate *validator.Validate
	now      func() time.Time
	logger   *zap.Logger
}

// NewGateway creates an auth gateway. sessions may be nil, in which case
// sign-out only affects the client.
func NewGateway(users UserStore, sessions SessionRevoker, secret string, ttl time.Duration) *Gateway {
	return &Gateway{
		users:    users,
		sessions: sessions,
		secret:   []byte(secret),
		ttl:      ttl,
		validate: validator.New(),
		now:      time.Now,
		logger:   util.GetLogger(),
	}
}

// SignUp creates an account and opens a session for it
func (g *Gateway) SignUp(ctx context.Context, email, password, name string) (*Session, error) {
	ctx, span := util.StartSpan(ctx, "Auth.SignUp")
	defer span.End()

	email = normalizeEmail(email)
	if err := g.validate.Var(email, "required,email"); err != nil {
		return nil, ErrInvalidEmail
	}
	if len(password) < MinPasswordLength {
		return nil, ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:        email,
		Name:         strings.TrimSpace(name),
		PasswordHash: string(hash),
	}
	if err := g.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, ErrEmailTaken
		}
		util.RecordError(span, err)
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	g.logger.Info("User signed up", zap.String("user_id", user.ID))
	return g.issue(user)
}

// SignIn verifies credentials and opens a session
func (g *Gateway) SignIn(ctx context.Context, email, password string) (*Session, error) {
	ctx, span := util.StartSpan(ctx, "Auth.SignIn")
	defer span.End()

	user, err := g.users.GetUserByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		util.RecordError(span, err)
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return g.issue(user)
}

// SignOut revokes the session behind token for the rest of its lifetime
func (g *Gateway) SignOut(ctx context.Context, token string) error {
	claims, err := g.parse(token)
	if err != nil {
		return ErrUnauthenticated
	}
	if g.sessions == nil {
		return nil
	}

	ttl := claims.ExpiresAt.Time.Sub(g.now())
	if err := g.sessions.RevokeSession(ctx, claims.ID, ttl); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}

	g.logger.Info("User signed out", zap.String("user_id", claims.UserID))
	return nil
}

// CurrentUser resolves a token to the signed-in identity
func (g *Gateway) CurrentUser(ctx context.Context, token string) (*Identity, error) {
	claims, err := g.parse(token)
	if err != nil {
		return nil, ErrUnauthenticated
	}

	if g.sessions != nil {
		revoked, err := g.sessions.IsSessionRevoked(ctx, claims.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to check session: %w", err)
		}
		if revoked {
			return nil, ErrUnauthenticated
		}
	}

	return &Identity{
		UserID:    claims.UserID,
		Email:     claims.Email,
		Name:      claims.Name,
		SessionID: claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// UpdatePassword replaces the password of userID
func (g *Gateway) UpdatePassword(ctx context.Context, userID, password, confirm string) error {
	if len(password) < MinPasswordLength {
		return ErrWeakPassword
	}
	if password != confirm {
		return ErrPasswordMismatch
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := g.users.UpdatePasswordHash(ctx, userID, string(hash)); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

func (g *Gateway) issue(user *models.User) (*Session, error) {
	now := g.now()
	expires := now.Add(g.ttl)

	claims := &Claims{
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(g.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &Session{Token: token, ExpiresAt: expires, User: user}, nil
}

func (g *Gateway) parse(token string) (*Claims, error) {
	if token == "" {
		return nil, ErrUnauthenticated
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return g.secret, nil
	}, jwt.WithTimeFunc(g.now))
	if err != nil || !parsed.Valid {
		return nil, ErrUnauthenticated
	}
	if claims.UserID == "" || claims.ID == "" || claims.ExpiresAt == nil {
		return nil, ErrUnauthenticated
	}
	return claims, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

package store

import (
	"context"
	"database/sql"
	"fmt"

	"marketplace/internal/models"

	"github.com/google/uuid"
)

// CreateUser inserts a user together with an empty profile and default
// preferences
func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	user.ID = uuid.New().String()

	err = tx.QueryRowxContext(ctx,
		"INSERT INTO users (id, email, name, password_hash) VALUES ($1, $2, $3, $4) RETURNING created_at",
		user.ID, user.Email, user.Name, user.PasswordHash,
	).Scan(&user.CreatedAt)
	if isUniqueViolation(err) {
		return ErrConflict
	}
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO profiles (user_id, full_name) VALUES ($1, $2)", user.ID, user.Name); err != nil {
		return fmt.Errorf("failed to insert profile: %w", err)
	}

	prefs := models.DefaultPreferences(user.ID)
	if _, err := tx.NamedExecContext(ctx, `
		INSERT INTO preferences (user_id, email_notifications, marketing_emails, api_alerts, theme)
		VALUES (:user_id, :email_notifications, :marketing_emails, :api_alerts, :theme)`, prefs); err != nil {
		return fmt.Errorf("failed to insert preferences: %w", err)
	}

	return tx.Commit()
}

// GetUserByEmail retrieves a user by email
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.db.GetContext(ctx, &user, "SELECT * FROM users WHERE email = $1", email)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByID retrieves a user by id
func (s *Store) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}

	var user models.User
	err := s.db.GetContext(ctx, &user, "SELECT * FROM users WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdatePasswordHash replaces a user's password hash
func (s *Store) UpdatePasswordHash(ctx context.Context, userID, hash string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE users SET password_hash = $1 WHERE id = $2", hash, userID)
	if err != nil {
		return err
	}
	return expectOneRow(res)
}

// GetProfile retrieves the profile for a user
func (s *Store) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	var profile models.Profile
	err := s.db.GetContext(ctx, &profile, "SELECT * FROM profiles WHERE user_id = $1", userID)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// UpdateProfile stores the editable profile fields
func (s *Store) UpdateProfile(ctx context.Context, profile *models.Profile) error {
	res, err := s.db.NamedExecContext(ctx, `
		UPDATE profiles SET full_name = :full_name, company = :company, phone = :phone
		WHERE user_id = :user_id`, profile)
	if err != nil {
		return err
	}
	return expectOneRow(res)
}

// GetPreferences retrieves notification and theme preferences
func (s *Store) GetPreferences(ctx context.Context, userID string) (*models.Preferences, error) {
	var prefs models.Preferences
	err := s.db.GetContext(ctx, &prefs, "SELECT * FROM preferences WHERE user_id = $1", userID)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &prefs, nil
}

// UpdatePreferences stores notification and theme preferences
func (s *Store) UpdatePreferences(ctx context.Context, prefs *models.Preferences) error {
	res, err := s.db.NamedExecContext(ctx, `
		UPDATE preferences
		SET email_notifications = :email_notifications, marketing_emails = :marketing_emails,
		    api_alerts = :api_alerts, theme = :theme
		WHERE user_id = :user_id`, prefs)
	if err != nil {
		return err
	}
	return expectOneRow(res)
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

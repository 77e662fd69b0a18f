package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/regioninvest/portal/internal/domain"
)

// UserRepository handles user data access operations.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByID retrieves a user by their ID.
func (r *UserRepository) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	var user domain.User
	err := r.db.GetContext(ctx, &user,
		`SELECT id, google_id, email, display_name, avatar_url, role, chat_id, created_at, updated_at
		 FROM users WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find user by id %d: %w", id, err)
	}
	return &user, nil
}

// ListByRole retrieves all users holding the given role.
func (r *UserRepository) ListByRole(ctx context.Context, role domain.Role) ([]domain.User, error) {
	var users []domain.User
	err := r.db.SelectContext(ctx, &users,
		`SELECT id, google_id, email, display_name, avatar_url, role, chat_id, created_at, updated_at
		 FROM users WHERE role = $1 ORDER BY id`, role)
	if err != nil {
		return nil, fmt.Errorf("list users by role %s: %w", role, err)
	}
	return users, nil
}

// PushChannelID returns the user's external push-channel identifier, or
// nil when the user has not linked the portal bot.
func (r *UserRepository) PushChannelID(ctx context.Context, userID int64) (*string, error) {
	var chatID *string
	err := r.db.GetContext(ctx, &chatID, `SELECT chat_id FROM users WHERE id = $1`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("push channel for user %d: %w", userID, err)
	}
	return chatID, nil
}

// Upsert creates a new user or updates an existing one based on their
// Google account ID. Role and chat_id are preserved on update; they are
// managed by administrators and the bot link flow, not by login.
func (r *UserRepository) Upsert(ctx context.Context, user domain.User) (*domain.User, error) {
	var result domain.User
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO users (google_id, email, display_name, avatar_url, role)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (google_id)
		 DO UPDATE SET email = EXCLUDED.email,
		               display_name = EXCLUDED.display_name,
		               avatar_url = EXCLUDED.avatar_url,
		               updated_at = NOW()
		 RETURNING id, google_id, email, display_name, avatar_url, role, chat_id, created_at, updated_at`,
		user.GoogleID, user.Email, user.DisplayName, user.AvatarURL, domain.RoleUser,
	).StructScan(&result)
	if err != nil {
		return nil, fmt.Errorf("upsert user: %w", err)
	}
	return &result, nil
}

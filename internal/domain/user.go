package domain

import "time"

// Role represents a portal-wide user role.
type Role string

const (
	RoleUser       Role = "user"
	RoleSuperadmin Role = "superadmin"
)

// User represents an authenticated portal user.
type User struct {
	ID          int64     `json:"id" db:"id"`
	GoogleID    string    `json:"google_id" db:"google_id"`
	Email       string    `json:"email" db:"email"`
	DisplayName string    `json:"display_name" db:"display_name"`
	AvatarURL   *string   `json:"avatar_url,omitempty" db:"avatar_url"`
	Role        Role      `json:"role" db:"role"`
	// ChatID is the external push-channel identifier, set once the user
	// links the portal bot. Nil means no push delivery for this user.
	ChatID    *string   `json:"chat_id,omitempty" db:"chat_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

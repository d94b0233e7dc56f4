package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// UserProfile is the display profile and role record for a registered user.
type UserProfile struct {
	ID        string    `json:"id" db:"id"`
	Username  string    `json:"username" db:"username"`
	Email     *string   `json:"email" db:"email"`
	FullName  *string   `json:"full_name" db:"full_name"`
	AvatarURL *string   `json:"avatar_url" db:"avatar_url"`
	Role      string    `json:"role" db:"role"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// ProfileUpdate is a partial profile edit. Nil fields are left untouched.
type ProfileUpdate struct {
	Username  *string `json:"username,omitempty"`
	FullName  *string `json:"full_name,omitempty"`
	AvatarURL *string `json:"avatar_url,omitempty"`
}

// IsEmpty reports whether the update would change nothing.
func (u ProfileUpdate) IsEmpty() bool {
	return u.Username == nil && u.FullName == nil && u.AvatarURL == nil
}

// Claims is the JWT payload for an authenticated session. The role claim
// is advisory only; authorization rechecks the profile on every request.
type Claims struct {
	jwt.RegisteredClaims
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// UserAuth is the credential record used by the identity provider.
type UserAuth struct {
	ID           string    `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	Email         string     `db:"email" json:"email"`
	PasswordHash  string     `db:"password_hash" json:"-"`
	Role          StoredRole `db:"role" json:"-"`
	FirstName     string     `db:"first_name" json:"first_name"`
	LastName      string     `db:"last_name" json:"last_name"`
	AvatarURL     *string    `db:"avatar_url" json:"avatar_url,omitempty"`
	EmailVerified bool       `db:"email_verified" json:"email_verified"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}

// UserView is the public shape of a user: roles are exposed as capabilities.
type UserView struct {
	ID            uuid.UUID    `json:"id"`
	Email         string       `json:"email"`
	FirstName     string       `json:"first_name"`
	LastName      string       `json:"last_name"`
	AvatarURL     *string      `json:"avatar_url,omitempty"`
	EmailVerified bool         `json:"email_verified"`
	Roles         []Capability `json:"roles"`
	CreatedAt     time.Time    `json:"created_at"`
}

func (u *User) View() *UserView {
	return &UserView{
		ID:            u.ID,
		Email:         u.Email,
		FirstName:     u.FirstName,
		LastName:      u.LastName,
		AvatarURL:     u.AvatarURL,
		EmailVerified: u.EmailVerified,
		Roles:         u.Role.Capabilities(),
		CreatedAt:     u.CreatedAt,
	}
}

// NormalizeEmail lower-cases and trims an address before storage or lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

type RegisterRequest struct {
	Email     string   `json:"email" binding:"required,email"`
	Password  string   `json:"password" binding:"required,min=8,max=72"`
	FirstName string   `json:"first_name" binding:"required,max=100"`
	LastName  string   `json:"last_name" binding:"required,max=100"`
	Roles     []string `json:"roles"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type UpgradeRolesRequest struct {
	Add []string `json:"add" binding:"required,min=1"`
}

type UpdateMeRequest struct {
	FirstName *string  `json:"first_name" binding:"omitempty,max=100"`
	LastName  *string  `json:"last_name" binding:"omitempty,max=100"`
	Roles     []string `json:"roles"`
}

type AuthResponse struct {
	AccessToken string    `json:"access_token"`
	User        *UserView `json:"user"`
}

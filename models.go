package auth

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// UserRole is the user's role
type UserRole = string

const (
	// RoleUser is the default role assigned at registration
	RoleUser UserRole = "USER"
	// RoleAdmin is an administrative role
	RoleAdmin UserRole = "ADMIN"
)

// DefaultRole is the role given to accounts created through registration
const DefaultRole = RoleUser

// User is the user credential model
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Role          UserRole   `bun:"user_role,notnull" json:"role,omitempty"`
	FullName      string     `bun:"full_name" json:"full_name,omitempty"`
	Email         string     `bun:"email,notnull,unique" json:"email,omitempty"`
	PasswordHash  string     `bun:"password_hash" json:"-"`
	Onboarded     bool       `bun:"onboarded" json:"onboarded"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt     *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// PublicProfile is the outward view of a credential record. It never carries
// the password hash.
type PublicProfile struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Role      UserRole  `json:"role"`
	Onboarded bool      `json:"onboarded"`
}

// PublicProfile builds the outward view of the record
func (u *User) PublicProfile() *PublicProfile {
	if u == nil {
		return nil
	}
	return &PublicProfile{
		ID:        u.ID,
		Email:     u.Email,
		FullName:  u.FullName,
		Role:      u.Role,
		Onboarded: u.Onboarded,
	}
}

// NormalizeEmail lower cases and trims an email so it can be used as the
// login key and token subject
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

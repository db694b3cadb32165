package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenKind discriminates the two token shapes issued by the TokenService
type TokenKind = string

const (
	// TokenKindAccess is the short-lived token authorizing a request window
	TokenKindAccess TokenKind = "access"
	// TokenKindRefresh is the longer-lived token used solely to mint new
	// access tokens
	TokenKindRefresh TokenKind = "refresh"
)

// AuthClaims represents the structured claims carried inside a signed token
type AuthClaims interface {
	Subject() string
	TokenKind() TokenKind
	RoleList() []string
	UserEmail() string
	UserFullName() string
	HasRole(role string) bool
	IsAtLeast(minRole string) bool
	Expires() time.Time
	IssuedAt() time.Time
}

// TokenClaims is the concrete implementation of AuthClaims. Access tokens
// additionally carry email and full name; refresh tokens carry only subject,
// roles, and kind.
type TokenClaims struct {
	jwt.RegisteredClaims
	Kind     TokenKind `json:"kind,omitempty"`
	Roles    []string  `json:"roles,omitempty"`
	Email    string    `json:"email,omitempty"`
	FullName string    `json:"fullName,omitempty"`
}

// Verify interface compliance
var _ AuthClaims = (*TokenClaims)(nil)

// Subject returns the subject claim
func (c *TokenClaims) Subject() string {
	return c.RegisteredClaims.Subject
}

// TokenKind returns the kind claim
func (c *TokenClaims) TokenKind() TokenKind {
	return c.Kind
}

// RoleList returns the role claims
func (c *TokenClaims) RoleList() []string {
	return c.Roles
}

// UserEmail returns the email claim; empty on refresh tokens
func (c *TokenClaims) UserEmail() string {
	return c.Email
}

// UserFullName returns the full name claim; empty on refresh tokens
func (c *TokenClaims) UserFullName() string {
	return c.FullName
}

// HasRole checks if the claims carry a specific role
func (c *TokenClaims) HasRole(role string) bool {
	for _, r := range c.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// IsAtLeast checks if any carried role is at least the minimum required role
func (c *TokenClaims) IsAtLeast(minRole string) bool {
	for _, r := range c.Roles {
		if RoleIsAtLeast(r, minRole) {
			return true
		}
	}
	return false
}

// Expires returns the expiration time
func (c *TokenClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// IssuedAt returns the issued at time
func (c *TokenClaims) IssuedAt() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}

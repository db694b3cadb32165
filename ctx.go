package auth

import (
	"context"
)

var principalCtxKey = &contextKey{"principal"}
var claimsCtxKey = &contextKey{"claims"}

type contextKey struct {
	name string
}

// Principal is the resolved identity for the current request, derived from a
// verified token. It is owned by the request that decoded it and never
// persisted.
type Principal struct {
	Subject  string
	Roles    []string
	FullName string
}

// NewPrincipal derives a Principal from decoded claims
func NewPrincipal(claims AuthClaims) Principal {
	return Principal{
		Subject:  claims.Subject(),
		Roles:    append([]string(nil), claims.RoleList()...),
		FullName: claims.UserFullName(),
	}
}

// HasRole checks if the principal carries a specific role
func (p Principal) HasRole(role string) bool {
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// IsAtLeast checks if any carried role meets the minimum required level
func (p Principal) IsAtLeast(minRole UserRole) bool {
	for _, r := range p.Roles {
		if RoleIsAtLeast(r, minRole) {
			return true
		}
	}
	return false
}

// WithPrincipal sets the Principal in the given context
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalCtxKey, p)
}

// PrincipalFromContext finds the principal from the context.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalCtxKey).(Principal)
	return p, ok
}

// WithClaimsContext sets the AuthClaims in the given context
func WithClaimsContext(ctx context.Context, claims AuthClaims) context.Context {
	return context.WithValue(ctx, claimsCtxKey, claims)
}

// GetClaims extracts the AuthClaims from the standard context
func GetClaims(ctx context.Context) (AuthClaims, bool) {
	raw, ok := ctx.Value(claimsCtxKey).(AuthClaims)
	return raw, ok
}

package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
)

// Default TTLs match the source system: access tokens live for one request
// window, refresh tokens for a week.
const (
	DefaultAccessTokenTTL  = 10 * time.Minute
	DefaultRefreshTokenTTL = 7 * 24 * time.Hour
)

// SigningMethod is the fixed MAC algorithm for every issued token
var SigningMethod = jwt.SigningMethodHS512

// TokenServiceImpl implements the TokenService interface
type TokenServiceImpl struct {
	signingKey []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	issuer     string
	logger     Logger
}

// roleListIdentity lets identities carry more than one role claim, e.g. when
// re-deriving authority from a decoded refresh token.
type roleListIdentity interface {
	RoleList() []string
}

// NewTokenService creates a new TokenService instance. Zero TTLs fall back
// to the defaults.
func NewTokenService(signingKey []byte, accessTTL, refreshTTL time.Duration, issuer string, logger Logger) TokenService {
	if logger == nil {
		logger = defLogger{}
	}
	if accessTTL <= 0 {
		accessTTL = DefaultAccessTokenTTL
	}
	if refreshTTL <= 0 {
		refreshTTL = DefaultRefreshTokenTTL
	}
	return &TokenServiceImpl{
		signingKey: signingKey,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		issuer:     issuer,
		logger:     logger,
	}
}

// IssueAccessToken creates a short-lived token carrying the full principal
// claim set
func (ts *TokenServiceImpl) IssueAccessToken(identity Identity) (string, error) {
	claims := ts.newClaims(identity, TokenKindAccess, ts.accessTTL)
	claims.Email = identity.Email()
	claims.FullName = identity.FullName()

	return ts.SignClaims(claims)
}

// IssueRefreshToken creates a longer-lived token carrying only subject and
// roles. Profile claims are intentionally left out.
func (ts *TokenServiceImpl) IssueRefreshToken(identity Identity) (string, error) {
	return ts.SignClaims(ts.newClaims(identity, TokenKindRefresh, ts.refreshTTL))
}

func (ts *TokenServiceImpl) newClaims(identity Identity, kind TokenKind, ttl time.Duration) *TokenClaims {
	now := time.Now()

	roles := []string{identity.Role()}
	if rl, ok := identity.(roleListIdentity); ok && len(rl.RoleList()) > 0 {
		roles = append([]string(nil), rl.RoleList()...)
	}

	return &TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    ts.issuer,
			Subject:   identity.Email(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Kind:  kind,
		Roles: roles,
	}
}

// SignClaims signs arbitrary claims using the configured signing key.
func (ts *TokenServiceImpl) SignClaims(claims *TokenClaims) (string, error) {
	if claims == nil {
		return "", errors.New("claims must not be nil", errors.CategoryInternal)
	}

	token := jwt.NewWithClaims(SigningMethod, claims)

	signedString, err := token.SignedString(ts.signingKey)
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to sign JWT")
	}

	return signedString, nil
}

// Validate parses and verifies a token string, returning structured claims.
// Any failure (bad signature, wrong algorithm, malformed structure, expired)
// comes back as a typed error so callers can translate it to an
// unauthenticated outcome; it never panics and never returns nil claims
// without an error.
func (ts *TokenServiceImpl) Validate(raw string) (AuthClaims, error) {
	parserOptions := []jwt.ParserOption{
		jwt.WithValidMethods([]string{SigningMethod.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if ts.issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(ts.issuer))
	}

	token, err := jwt.ParseWithClaims(raw, &TokenClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			ts.logger.Error("TokenService validate encountered unexpected signing method", "alg", t.Header["alg"])
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return ts.signingKey, nil
	}, parserOptions...)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, errors.Wrap(err, ErrTokenMalformed.Category, ErrTokenMalformed.Message).
			WithTextCode(ErrTokenMalformed.TextCode)
	}

	if claims, ok := token.Claims.(*TokenClaims); ok && token.Valid {
		return claims, nil
	}

	ts.logger.Error("TokenService validate could not decode claims")
	return nil, ErrTokenMalformed
}

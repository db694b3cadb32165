package auth

import (
	"context"

	"github.com/goliatone/go-errors"
)

// LoginResult is the outcome of a successful login
type LoginResult struct {
	AccessToken  string         `json:"access_token"`
	RefreshToken string         `json:"refresh_token"`
	User         *PublicProfile `json:"user"`
}

// Auther orchestrates the register, login, refresh, and profile flows on top
// of the credential store, the password hasher, and the token codec.
type Auther struct {
	provider   IdentityProvider
	store      CredentialStore
	tokens     TokenService
	authScheme string
	logger     Logger
}

var _ Authenticator = (*Auther)(nil)

// NewAuthenticator returns a new Authenticator
func NewAuthenticator(provider IdentityProvider, store CredentialStore, opts Config) *Auther {
	tokens := NewTokenService(
		[]byte(opts.GetSigningKey()),
		opts.GetAccessTokenTTL(),
		opts.GetRefreshTokenTTL(),
		opts.GetIssuer(),
		defLogger{},
	)

	scheme := opts.GetAuthScheme()
	if scheme == "" {
		scheme = "Bearer"
	}

	return &Auther{
		provider:   provider,
		store:      store,
		tokens:     tokens,
		authScheme: scheme,
		logger:     defLogger{},
	}
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	s.logger = logger
	return s
}

// WithTokenService replaces the token codec, e.g. with one holding a test
// secret or shortened TTLs.
func (s *Auther) WithTokenService(tokens TokenService) *Auther {
	if tokens != nil {
		s.tokens = tokens
	}
	return s
}

// TokenService returns the token codec used by this Authenticator
func (s *Auther) TokenService() TokenService {
	return s.tokens
}

// Register creates a credential record with a hashed password and the
// default role. No token is issued; login is a separate step. Exactly one
// persistence write happens on success.
func (s *Auther) Register(ctx context.Context, email, password, fullName string) error {
	email = NormalizeEmail(email)

	existing, err := s.store.GetByEmail(ctx, email)
	if err != nil && !errors.IsNotFound(err) {
		s.logger.Error("Register lookup error", "email", email, "error", err)
		return err
	}

	if existing != nil && existing.PasswordHash != "" {
		return ErrEmailInUse
	}

	hash, err := HashPassword(password)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to hash password")
	}

	// A record without a password hash is a stub (e.g. seeded externally);
	// registration claims it instead of failing.
	if existing != nil {
		existing.PasswordHash = hash
		existing.FullName = fullName
		if existing.Role == "" {
			existing.Role = DefaultRole
		}
		_, err = s.store.Save(ctx, existing)
		return err
	}

	user := &User{
		Email:        email,
		FullName:     fullName,
		PasswordHash: hash,
		Role:         DefaultRole,
	}

	// The store maps a unique-constraint violation to ErrEmailInUse, so a
	// concurrent registration for the same email loses cleanly here.
	if _, err = s.store.Register(ctx, user); err != nil {
		return err
	}

	return nil
}

// Login verifies credentials and issues the access/refresh token pair. Any
// verification failure surfaces as ErrBadCredentials regardless of which
// part failed.
func (s *Auther) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	identity, err := s.provider.VerifyIdentity(ctx, email, password)
	if err != nil {
		s.logger.Error("Login verify identity error", "error", err)
		return nil, err
	}

	accessToken, err := s.tokens.IssueAccessToken(identity)
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.tokens.IssueRefreshToken(identity)
	if err != nil {
		return nil, err
	}

	// Re-read the record so the summary reflects fields that live outside
	// the token, e.g. the onboarding flag.
	user, err := s.store.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, ErrBadCredentials
		}
		return nil, err
	}

	return &LoginResult{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         user.PublicProfile(),
	}, nil
}

// Refresh redeems a refresh token for a new access token. The principal is
// re-derived from the decoded claims alone; the role is trusted from the
// token and the store is not consulted. The refresh token itself is not
// rotated.
func (s *Auther) Refresh(ctx context.Context, authorization string) (string, error) {
	raw, err := StripTokenPrefix(authorization, s.authScheme)
	if err != nil {
		return "", err
	}

	claims, err := s.tokens.Validate(raw)
	if err != nil {
		s.logger.Error("Refresh token validation failed", "error", err)
		return "", err
	}

	if claims.TokenKind() != TokenKindRefresh || claims.Subject() == "" || len(claims.RoleList()) == 0 {
		return "", ErrUnauthorized
	}

	return s.tokens.IssueAccessToken(claimsIdentity{claims: claims})
}

// Profile resolves the current credential record for the subject of a valid
// access token, picking up fields that may have changed since issuance.
func (s *Auther) Profile(ctx context.Context, authorization string) (*PublicProfile, error) {
	raw, err := StripTokenPrefix(authorization, s.authScheme)
	if err != nil {
		return nil, err
	}

	claims, err := s.tokens.Validate(raw)
	if err != nil {
		return nil, err
	}

	// Refresh tokens decode through the same codec but lack the email
	// claim; they do not authorize profile reads.
	if claims.UserEmail() == "" {
		return nil, ErrUnauthorized
	}

	user, err := s.store.GetByEmail(ctx, claims.Subject())
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, ErrIdentityNotFound
		}
		return nil, err
	}

	return user.PublicProfile(), nil
}

// CompleteOnboarding flips the onboarding flag for the given subject and
// returns the updated profile.
func (s *Auther) CompleteOnboarding(ctx context.Context, email string) (*PublicProfile, error) {
	user, err := s.store.SetOnboarded(ctx, NormalizeEmail(email), true)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, ErrIdentityNotFound
		}
		return nil, err
	}

	return user.PublicProfile(), nil
}

// claimsIdentity adapts decoded token claims back into an Identity so the
// codec can mint a fresh access token without a store round trip.
type claimsIdentity struct {
	claims AuthClaims
}

func (c claimsIdentity) ID() string       { return c.claims.Subject() }
func (c claimsIdentity) Email() string    { return c.claims.Subject() }
func (c claimsIdentity) FullName() string { return c.claims.UserFullName() }

func (c claimsIdentity) Role() string {
	if roles := c.claims.RoleList(); len(roles) > 0 {
		return roles[0]
	}
	return ""
}

func (c claimsIdentity) RoleList() []string { return c.claims.RoleList() }

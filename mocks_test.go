package auth_test

import (
	"context"
	"time"

	auth "github.com/cramdeck/go-auth"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/stretchr/testify/mock"
)

// TestIdentity is a simple implementation of Identity interface for testing
type TestIdentity struct {
	id       string
	email    string
	fullName string
	role     string
}

func (t TestIdentity) ID() string       { return t.id }
func (t TestIdentity) Email() string    { return t.email }
func (t TestIdentity) FullName() string { return t.fullName }
func (t TestIdentity) Role() string     { return t.role }

// testConfig implements auth.Config
type testConfig struct {
	signingKey string
	accessTTL  time.Duration
	refreshTTL time.Duration
	issuer     string
	contextKey string
	authScheme string
}

func (c testConfig) GetSigningKey() string             { return c.signingKey }
func (c testConfig) GetSigningMethod() string          { return "HS512" }
func (c testConfig) GetAccessTokenTTL() time.Duration  { return c.accessTTL }
func (c testConfig) GetRefreshTokenTTL() time.Duration { return c.refreshTTL }
func (c testConfig) GetIssuer() string                 { return c.issuer }
func (c testConfig) GetContextKey() string             { return c.contextKey }
func (c testConfig) GetAuthScheme() string             { return c.authScheme }

func newTestConfig() testConfig {
	return testConfig{
		signingKey: "test-signing-key",
		issuer:     "test-issuer",
		contextKey: "user",
		authScheme: "Bearer",
	}
}

// notFoundErr mimics what the users repository returns for missing records
func notFoundErr(email string) error {
	return repository.NewRecordNotFound().
		WithMetadata(map[string]any{"email": email})
}

// MockIdentityProvider implements auth.IdentityProvider
type MockIdentityProvider struct {
	mock.Mock
}

func (m *MockIdentityProvider) VerifyIdentity(ctx context.Context, email, password string) (auth.Identity, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(auth.Identity), args.Error(1)
}

func (m *MockIdentityProvider) FindIdentityByEmail(ctx context.Context, email string) (auth.Identity, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(auth.Identity), args.Error(1)
}

// MockCredentialStore implements auth.CredentialStore
type MockCredentialStore struct {
	mock.Mock
}

func (m *MockCredentialStore) GetByEmail(ctx context.Context, email string) (*auth.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.User), args.Error(1)
}

func (m *MockCredentialStore) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockCredentialStore) Register(ctx context.Context, user *auth.User) (*auth.User, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.User), args.Error(1)
}

func (m *MockCredentialStore) Save(ctx context.Context, user *auth.User) (*auth.User, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.User), args.Error(1)
}

func (m *MockCredentialStore) SetOnboarded(ctx context.Context, email string, onboarded bool) (*auth.User, error) {
	args := m.Called(ctx, email, onboarded)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.User), args.Error(1)
}

// MockAuthenticator implements auth.Authenticator
type MockAuthenticator struct {
	mock.Mock
}

func (m *MockAuthenticator) Register(ctx context.Context, email, password, fullName string) error {
	args := m.Called(ctx, email, password, fullName)
	return args.Error(0)
}

func (m *MockAuthenticator) Login(ctx context.Context, email, password string) (*auth.LoginResult, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.LoginResult), args.Error(1)
}

func (m *MockAuthenticator) Refresh(ctx context.Context, authorization string) (string, error) {
	args := m.Called(ctx, authorization)
	return args.String(0), args.Error(1)
}

func (m *MockAuthenticator) Profile(ctx context.Context, authorization string) (*auth.PublicProfile, error) {
	args := m.Called(ctx, authorization)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.PublicProfile), args.Error(1)
}

func (m *MockAuthenticator) CompleteOnboarding(ctx context.Context, email string) (*auth.PublicProfile, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.PublicProfile), args.Error(1)
}

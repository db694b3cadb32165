package auth

import (
	"context"

	"github.com/goliatone/go-errors"
)

// UserFinder is the store surface the provider needs to resolve users
type UserFinder interface {
	GetByEmail(ctx context.Context, email string) (*User, error)
}

// UserProvider resolves and verifies identities against the credential store
type UserProvider struct {
	store  UserFinder
	logger Logger
}

var _ IdentityProvider = (*UserProvider)(nil)

// NewUserProvider will create a new UserProvider
func NewUserProvider(store UserFinder) *UserProvider {
	return &UserProvider{
		store:  store,
		logger: defLogger{},
	}
}

func (u *UserProvider) WithLogger(l Logger) *UserProvider {
	if l != nil {
		u.logger = l
	}
	return u
}

// VerifyIdentity will find the user, compare the password, and return the
// identity. A missing account and a wrong password both collapse into
// ErrBadCredentials so the caller cannot tell which part failed.
func (u *UserProvider) VerifyIdentity(ctx context.Context, email, password string) (Identity, error) {
	user, err := u.store.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, ErrBadCredentials
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to retrieve user during verification")
	}

	if user.PasswordHash == "" {
		return nil, ErrBadCredentials
	}

	if err := ComparePasswordAndHash(password, user.PasswordHash); err != nil {
		if errors.Is(err, ErrMismatchedHashAndPassword) {
			return nil, ErrBadCredentials
		}
		// Corrupted stored hash, not a wrong password.
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to compare password hash")
	}

	return identityFromUser(user), nil
}

// FindIdentityByEmail resolves an identity without checking a password
func (u *UserProvider) FindIdentityByEmail(ctx context.Context, email string) (Identity, error) {
	user, err := u.store.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, ErrIdentityNotFound
		}
		return nil, err
	}

	return identityFromUser(user), nil
}

type authIdentity struct {
	id       string
	email    string
	fullName string
	role     string
}

func identityFromUser(user *User) authIdentity {
	return authIdentity{
		id:       user.ID.String(),
		email:    user.Email,
		fullName: user.FullName,
		role:     string(user.Role),
	}
}

func (a authIdentity) ID() string       { return a.id }
func (a authIdentity) Email() string    { return a.email }
func (a authIdentity) FullName() string { return a.fullName }
func (a authIdentity) Role() string     { return a.role }

package auth_test

import (
	"context"
	"errors"
	"testing"

	auth "github.com/cramdeck/go-auth"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubUserFinder struct {
	users map[string]*auth.User
	err   error
}

func (s stubUserFinder) GetByEmail(ctx context.Context, email string) (*auth.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	if u, ok := s.users[email]; ok {
		return u, nil
	}
	return nil, notFoundErr(email)
}

func TestVerifyIdentity(t *testing.T) {
	ctx := context.Background()

	hash, err := auth.HashPassword("secret-password")
	require.NoError(t, err)

	user := &auth.User{
		ID:           uuid.New(),
		Email:        "user@example.com",
		FullName:     "Test User",
		Role:         auth.RoleUser,
		PasswordHash: hash,
	}

	provider := auth.NewUserProvider(stubUserFinder{
		users: map[string]*auth.User{"user@example.com": user},
	})

	t.Run("valid credentials", func(t *testing.T) {
		identity, err := provider.VerifyIdentity(ctx, "user@example.com", "secret-password")
		require.NoError(t, err)

		assert.Equal(t, user.ID.String(), identity.ID())
		assert.Equal(t, "user@example.com", identity.Email())
		assert.Equal(t, "Test User", identity.FullName())
		assert.Equal(t, auth.RoleUser, identity.Role())
	})

	t.Run("email is normalized before lookup", func(t *testing.T) {
		identity, err := provider.VerifyIdentity(ctx, "  User@Example.COM ", "secret-password")
		require.NoError(t, err)
		assert.Equal(t, "user@example.com", identity.Email())
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := provider.VerifyIdentity(ctx, "user@example.com", "wrong-password")
		assert.ErrorIs(t, err, auth.ErrBadCredentials)
	})

	t.Run("unknown email is indistinguishable from wrong password", func(t *testing.T) {
		_, errUnknown := provider.VerifyIdentity(ctx, "nobody@example.com", "secret-password")
		_, errWrongPwd := provider.VerifyIdentity(ctx, "user@example.com", "wrong-password")

		assert.ErrorIs(t, errUnknown, auth.ErrBadCredentials)
		assert.ErrorIs(t, errWrongPwd, auth.ErrBadCredentials)
		assert.Equal(t, errUnknown.Error(), errWrongPwd.Error())
	})

	t.Run("passwordless stub cannot log in", func(t *testing.T) {
		stub := auth.NewUserProvider(stubUserFinder{
			users: map[string]*auth.User{
				"seeded@example.com": {Email: "seeded@example.com"},
			},
		})

		_, err := stub.VerifyIdentity(ctx, "seeded@example.com", "anything")
		assert.ErrorIs(t, err, auth.ErrBadCredentials)
	})

	t.Run("store failure is not a credential error", func(t *testing.T) {
		broken := auth.NewUserProvider(stubUserFinder{err: errors.New("connection refused")})

		_, err := broken.VerifyIdentity(ctx, "user@example.com", "secret-password")
		require.Error(t, err)
		assert.NotErrorIs(t, err, auth.ErrBadCredentials)
	})
}

func TestFindIdentityByEmail(t *testing.T) {
	ctx := context.Background()

	provider := auth.NewUserProvider(stubUserFinder{
		users: map[string]*auth.User{
			"user@example.com": {
				ID:    uuid.New(),
				Email: "user@example.com",
				Role:  auth.RoleAdmin,
			},
		},
	})

	t.Run("found", func(t *testing.T) {
		identity, err := provider.FindIdentityByEmail(ctx, "user@example.com")
		require.NoError(t, err)
		assert.Equal(t, auth.RoleAdmin, identity.Role())
	})

	t.Run("not found", func(t *testing.T) {
		_, err := provider.FindIdentityByEmail(ctx, "ghost@example.com")
		assert.ErrorIs(t, err, auth.ErrIdentityNotFound)
	})
}

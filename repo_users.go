package auth

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Users is the credential-record repository
type Users interface {
	repository.Repository[*User]

	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByEmailTx(ctx context.Context, tx bun.IDB, email string) (bool, error)

	Register(ctx context.Context, user *User) (*User, error)
	RegisterTx(ctx context.Context, tx bun.IDB, user *User) (*User, error)
	Save(ctx context.Context, user *User) (*User, error)
	SaveTx(ctx context.Context, tx bun.IDB, user *User) (*User, error)

	SetOnboarded(ctx context.Context, email string, onboarded bool) (*User, error)
	SetOnboardedTx(ctx context.Context, tx bun.IDB, email string, onboarded bool) (*User, error)
}

type users struct {
	repository.Repository[*User]
	db *bun.DB
}

var (
	_ Users                        = (*users)(nil)
	_ CredentialStore              = (*users)(nil)
	_ repository.Repository[*User] = (*users)(nil)
)

func NewUsersRepository(db *bun.DB) Users {
	repo := repository.NewRepository[*User](db, repository.ModelHandlers[*User]{
		NewRecord: func() *User { return &User{} },
		GetID: func(u *User) uuid.UUID {
			if u == nil {
				return uuid.Nil
			}
			return u.ID
		},
		SetID: func(u *User, id uuid.UUID) {
			if u != nil {
				u.ID = id
			}
		},
		GetIdentifier: func() string {
			return "email"
		},
	})

	return &users{
		Repository: repo,
		db:         db,
	}
}

func (a *users) Register(ctx context.Context, user *User) (*User, error) {
	return a.RegisterTx(ctx, a.db, user)
}

func (a *users) RegisterTx(ctx context.Context, tx bun.IDB, user *User) (*User, error) {
	prepareUserDefaults(user)

	record, err := a.Repository.CreateTx(ctx, tx, user)
	if err != nil {
		return nil, mapUserWriteError(err)
	}

	return record, nil
}

func (a *users) Save(ctx context.Context, user *User) (*User, error) {
	return a.SaveTx(ctx, a.db, user)
}

func (a *users) SaveTx(ctx context.Context, tx bun.IDB, user *User) (*User, error) {
	prepareUserDefaults(user)

	record, err := a.Repository.UpdateTx(ctx, tx, user, repository.UpdateByID(user.ID.String()))
	if err != nil {
		return nil, mapUserWriteError(err)
	}

	return record, nil
}

func (a *users) GetByEmail(ctx context.Context, email string) (*User, error) {
	return a.GetByEmailTx(ctx, a.db, email)
}

func (a *users) GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*User, error) {
	record := &User{}

	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.email = ?", NormalizeEmail(email)).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if isStoreConnError(err) {
			return nil, wrapStoreUnavailable(err)
		}
		if strings.Contains(err.Error(), "no rows") {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					"email": email,
				})
		}
		return nil, err
	}

	return record, nil
}

func (a *users) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return a.ExistsByEmailTx(ctx, a.db, email)
}

func (a *users) ExistsByEmailTx(ctx context.Context, tx bun.IDB, email string) (bool, error) {
	exists, err := tx.NewSelect().
		Model((*User)(nil)).
		Where("?TableAlias.email = ?", NormalizeEmail(email)).
		Exists(ctx)

	if err != nil && isStoreConnError(err) {
		return false, wrapStoreUnavailable(err)
	}

	return exists, err
}

func (a *users) SetOnboarded(ctx context.Context, email string, onboarded bool) (*User, error) {
	return a.SetOnboardedTx(ctx, a.db, email, onboarded)
}

func (a *users) SetOnboardedTx(ctx context.Context, tx bun.IDB, email string, onboarded bool) (*User, error) {
	email = NormalizeEmail(email)

	res, err := tx.NewRaw(`
		UPDATE "users"
		SET
			"onboarded" = ?,
			"updated_at" = CURRENT_TIMESTAMP
		WHERE
			"email" = ?
			AND "deleted_at" IS NULL;
	`, onboarded, email).Exec(ctx)

	if err != nil {
		if isStoreConnError(err) {
			return nil, wrapStoreUnavailable(err)
		}
		return nil, err
	}

	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return nil, repository.NewRecordNotFound().
			WithMetadata(map[string]any{
				"email": email,
			})
	}

	return a.GetByEmailTx(ctx, tx, email)
}

func prepareUserDefaults(record *User) {
	record.Email = NormalizeEmail(record.Email)

	if record.Role == "" {
		record.Role = DefaultRole
	}

	if record.ID == uuid.Nil {
		// Deterministic IDs keep re-seeded fixtures stable across resets.
		if id, err := hashid.NewUUID(record.Email); err == nil {
			record.ID = id
		} else {
			record.ID = uuid.New()
		}
	}
}

// mapUserWriteError translates driver-level failures into the typed errors
// callers handle: unique-constraint violations mean the email is taken, lost
// connections mean the store is unavailable.
func mapUserWriteError(err error) error {
	if err == nil {
		return nil
	}

	if isUniqueViolation(err) {
		return ErrEmailInUse
	}

	if isStoreConnError(err) {
		return wrapStoreUnavailable(err)
	}

	return err
}

func isUniqueViolation(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || // sqlite
		strings.Contains(msg, "duplicate key value violates unique constraint") || // postgres
		strings.Contains(msg, "Duplicate entry") // mysql
}

func isStoreConnError(err error) bool {
	if goerrors.Is(err, sql.ErrConnDone) || goerrors.Is(err, driver.ErrBadConn) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "database is closed")
}

func wrapStoreUnavailable(err error) error {
	return goerrors.Wrap(err, ErrStoreUnavailable.Category, ErrStoreUnavailable.Message).
		WithTextCode(ErrStoreUnavailable.TextCode)
}

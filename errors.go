package auth

import (
	"strings"

	"github.com/goliatone/go-errors"
)

const (
	TextCodeEmailInUse       = "auth_email_in_use"
	TextCodeBadCredentials   = "auth_bad_credentials"
	TextCodeTokenExpired     = "auth_token_expired"
	TextCodeTokenMalformed   = "auth_token_malformed"
	TextCodeUnauthorized     = "auth_unauthorized"
	TextCodeIdentityNotFound = "auth_identity_not_found"
	TextCodeStoreUnavailable = "auth_store_unavailable"
)

// ErrEmailInUse is returned when registration targets an email that already
// has an active credential.
var ErrEmailInUse = errors.New("email is already in use", errors.CategoryValidation).
	WithTextCode(TextCodeEmailInUse).
	WithCode(errors.CodeBadRequest)

// ErrBadCredentials merges "no such user" and "wrong password" so callers
// cannot enumerate accounts.
var ErrBadCredentials = errors.New("invalid credentials", errors.CategoryAuth).
	WithTextCode(TextCodeBadCredentials).
	WithCode(errors.CodeUnauthorized)

// ErrTokenExpired is returned when a token is presented after its expiry.
var ErrTokenExpired = errors.New("token is expired", errors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(errors.CodeUnauthorized)

// ErrTokenMalformed covers bad signatures, wrong algorithms, and structural
// decode failures.
var ErrTokenMalformed = errors.New("token is malformed", errors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed).
	WithCode(errors.CodeUnauthorized)

// ErrUnauthorized is returned when a token is missing, lacks the bearer
// prefix, or carries claims that do not fit the operation.
var ErrUnauthorized = errors.New("unauthorized", errors.CategoryAuth).
	WithTextCode(TextCodeUnauthorized).
	WithCode(errors.CodeUnauthorized)

// ErrIdentityNotFound is the error we return for non found identities
var ErrIdentityNotFound = errors.New("identity not found", errors.CategoryNotFound).
	WithTextCode(TextCodeIdentityNotFound).
	WithCode(errors.CodeNotFound)

// ErrStoreUnavailable flags credential-store connectivity failures, the one
// class callers may retry with backoff.
var ErrStoreUnavailable = errors.New("credential store unavailable", errors.CategoryInternal).
	WithTextCode(TextCodeStoreUnavailable)

// ErrNoEmptyString rejects empty inputs to the password hasher
var ErrNoEmptyString = errors.New("value should not be an empty string", errors.CategoryBadInput)

// ErrMismatchedHashAndPassword is the hasher-level verification failure
var ErrMismatchedHashAndPassword = errors.New("mismatched hash and password", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized)

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrTokenExpired) ||
		strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for error message
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrTokenMalformed) ||
		strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}

// IsStoreUnavailable reports whether err comes from losing the credential
// store connection rather than from caller input.
func IsStoreUnavailable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrStoreUnavailable) {
		return true
	}
	var rich *errors.Error
	if errors.As(err, &rich) {
		return rich.TextCode == TextCodeStoreUnavailable
	}
	return false
}

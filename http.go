package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"

	"github.com/cramdeck/go-auth/middleware/jwtware"
)

// StripTokenPrefix extracts the raw token from a bearer-style authorization
// value. A missing or mismatched scheme is ErrUnauthorized.
func StripTokenPrefix(authorization, scheme string) (string, error) {
	if scheme == "" {
		scheme = "Bearer"
	}

	prefix := scheme + " "
	if !strings.HasPrefix(authorization, prefix) {
		return "", ErrUnauthorized
	}

	raw := strings.TrimSpace(strings.TrimPrefix(authorization, prefix))
	if raw == "" {
		return "", ErrUnauthorized
	}

	return raw, nil
}

// ErrorStatusCode maps core failures to the status the boundary responds
// with. None of these are retried by the server; StoreUnavailable is the one
// kind a client may retry with backoff.
func ErrorStatusCode(err error) int {
	var rich *errors.Error
	if errors.As(err, &rich) {
		switch rich.TextCode {
		case TextCodeEmailInUse:
			return fiber.StatusBadRequest
		case TextCodeBadCredentials,
			TextCodeTokenExpired,
			TextCodeTokenMalformed,
			TextCodeUnauthorized:
			return fiber.StatusUnauthorized
		case TextCodeIdentityNotFound:
			return fiber.StatusNotFound
		case TextCodeStoreUnavailable:
			return fiber.StatusServiceUnavailable
		}

		switch rich.Category {
		case errors.CategoryAuth:
			return fiber.StatusUnauthorized
		case errors.CategoryNotFound:
			return fiber.StatusNotFound
		case errors.CategoryValidation, errors.CategoryBadInput:
			return fiber.StatusBadRequest
		}
	}

	if IsTokenExpiredError(err) || IsMalformedError(err) {
		return fiber.StatusUnauthorized
	}

	return fiber.StatusInternalServerError
}

// WriteError renders a typed core failure as a JSON error response.
// Internal details never reach the client on 5xx.
func WriteError(c *fiber.Ctx, err error) error {
	status := ErrorStatusCode(err)

	message := "internal server error"
	code := "auth_internal"

	var rich *errors.Error
	if status < fiber.StatusInternalServerError && errors.As(err, &rich) {
		message = rich.Message
		if rich.TextCode != "" {
			code = rich.TextCode
		}
	}

	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"error": fiber.Map{
			"code":    code,
			"message": message,
		},
	})
}

// RouteValidator adapts a TokenValidator for route middleware.
func RouteValidator(validator TokenValidator) jwtware.TokenValidator {
	return routeValidator{validator: validator}
}

type routeValidator struct {
	validator TokenValidator
}

func (r routeValidator) Validate(raw string) (jwtware.AuthClaims, error) {
	claims, err := r.validator.Validate(raw)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// ProtectedRoute builds the access-token guard used in front of routes that
// require an authenticated principal. Validated claims are stored under the
// configured context key and mirrored into the request context.
func ProtectedRoute(cfg Config, validator TokenValidator) fiber.Handler {
	return jwtware.New(jwtware.Config{
		TokenValidator:  RouteValidator(validator),
		ContextKey:      cfg.GetContextKey(),
		AuthScheme:      cfg.GetAuthScheme(),
		TokenKind:       TokenKindAccess,
		ContextEnricher: ContextEnricherAdapter,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var rich *errors.Error
			if errors.As(err, &rich) {
				return WriteError(c, err)
			}
			// extraction and kind/role failures are plain errors
			return WriteError(c, ErrUnauthorized)
		},
	})
}

// Package auth implements the credential and token lifecycle for the
// cramdeck backend: user registration with bcrypt password hashing, login
// that issues a short-lived access token plus a longer-lived refresh token,
// refresh-token redemption, and claim-based identity propagation consumed by
// every other controller.
//
// Token codec:
//   - TokenService signs and validates compact HS512 JWTs. Access tokens
//     carry subject, roles, email, and full name; refresh tokens carry only
//     subject, roles, and kind so a leaked refresh token never leaks profile
//     data. Validation failures are always typed errors, never nil claims.
//
// Principal propagation:
//   - middleware/jwtware extracts the bearer token, validates it, and stores
//     the claims in the request context. Handlers read the resolved Principal
//     through PrincipalFromContext instead of an ambient global.
//
// Persistence:
//   - Users is a Bun-backed repository for the single user-credential record.
//     Email uniqueness is enforced by the database so concurrent registrations
//     for the same address cannot both succeed.
package auth

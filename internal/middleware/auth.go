// Package middleware holds the echo middleware of the request gate.
package middleware

import (
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"userauth/internal/auth"
	apperrors "userauth/internal/errors"
)

// ClaimsKey is the context key holding the verified *auth.Claims.
const ClaimsKey = "user"

// RequireAuth verifies the bearer token with issuer and stores its claims
// under ClaimsKey. Missing, malformed, expired and forged tokens all end in
// ErrUnauthenticated.
func RequireAuth(issuer auth.TokenIssuer) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey: ClaimsKey,
		ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
			return issuer.Verify(token)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return apperrors.ErrUnauthenticated
		},
	})
}

// ClaimsFrom returns the claims stored by RequireAuth.
func ClaimsFrom(c echo.Context) (*auth.Claims, bool) {
	claims, ok := c.Get(ClaimsKey).(*auth.Claims)
	return claims, ok && claims != nil
}

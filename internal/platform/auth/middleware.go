package auth

import (
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/carehub/carehub/internal/platform/apperror"
)

// Middleware authenticates the bearer token on every request and places the
// derived Identity on the request context. Routes registered outside the
// group carrying this middleware (login, signup, health) stay open.
func Middleware(signingKey []byte) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			if header == "" {
				return apperror.New(apperror.KindAuthentication, "missing authorization header")
			}

			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return apperror.New(apperror.KindAuthentication, "invalid authorization format")
			}

			claims := &Claims{}
			token, err := jwt.ParseWithClaims(parts[1], claims, func(t *jwt.Token) (interface{}, error) {
				return signingKey, nil
			}, jwt.WithValidMethods([]string{"HS256"}))
			if err != nil || !token.Valid {
				return apperror.New(apperror.KindAuthentication, "invalid token")
			}

			id, err := identityFromClaims(claims)
			if err != nil {
				return apperror.New(apperror.KindAuthentication, "invalid token")
			}

			ctx := WithIdentity(c.Request().Context(), id)
			c.SetRequest(c.Request().WithContext(ctx))
			if id.Tenant != "" {
				c.Set("jwt_tenant_id", id.Tenant)
			}
			return next(c)
		}
	}
}

// OptionalMiddleware parses a bearer token when one is present but lets
// anonymous requests through. Used on endpoints that behave differently for
// authenticated callers, such as the signup bootstrap.
func OptionalMiddleware(signingKey []byte) echo.MiddlewareFunc {
	required := Middleware(signingKey)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		withAuth := required(next)
		return func(c echo.Context) error {
			if c.Request().Header.Get("Authorization") == "" {
				return next(c)
			}
			return withAuth(c)
		}
	}
}

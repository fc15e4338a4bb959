// Package middleware contains reusable HTTP middleware: bearer-token
// authentication, the login rate limiter and the response cache.
package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/arsouza/fintrack/internal/auth"
)

// SubjectKey is the echo context key under which BearerAuth stores the
// authenticated username.
const SubjectKey = "username"

// BearerAuth returns middleware that validates the Authorization header
// against the token service and injects the token subject into the
// request context. Everything — missing header, malformed token, bad
// signature, expiry — fails closed as 401; expired tokens get a more
// specific message but are otherwise treated the same.
func BearerAuth(tokens *auth.TokenService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimPrefix(header, "Bearer ")

			sub, err := tokens.ExtractSubject(raw)
			if err != nil {
				if errors.Is(err, auth.ErrTokenExpired) {
					return c.JSON(http.StatusUnauthorized, echo.Map{"error": "token expired"})
				}
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}
			if sub == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}

			c.Set(SubjectKey, sub)
			return next(c)
		}
	}
}

// Subject returns the authenticated username stored by BearerAuth, or
// an error when the request was not authenticated.
func Subject(c echo.Context) (string, error) {
	if s, ok := c.Get(SubjectKey).(string); ok && s != "" {
		return s, nil
	}
	return "", errors.New("no authenticated subject in context")
}

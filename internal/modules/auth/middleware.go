package auth

import (
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const subjectContextKey = "auth.subject_id"

// RequireAuth gates a route group behind access token validation. The subject
// the token was issued for is placed on the echo context for handlers
func RequireAuth(tokens *TokenService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, err := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if err != nil {
				return err
			}

			subjectID, err := tokens.Validate(token)
			if err != nil {
				return err
			}

			c.Set(subjectContextKey, subjectID)
			return next(c)
		}
	}
}

// SubjectFromContext returns the authenticated subject set by RequireAuth
func SubjectFromContext(c echo.Context) (uuid.UUID, bool) {
	subjectID, ok := c.Get(subjectContextKey).(uuid.UUID)
	return subjectID, ok
}

func bearerToken(authHeader string) (string, error) {
	const prefix = "Bearer "
	if authHeader == "" || !strings.HasPrefix(authHeader, prefix) {
		return "", ErrTokenMalformed
	}
	return strings.TrimPrefix(authHeader, prefix), nil
}

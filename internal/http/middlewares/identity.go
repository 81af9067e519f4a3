package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	apperrors "planboard.com/planboard/internal/errors"
)

// UserIDKey is the echo context key the identity middleware fills.
const UserIDKey = "userID"

// Identity pulls the authenticated user id from the X-User-ID header.
// Session issuance happens upstream; the service trusts this value.
func Identity() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID := strings.TrimSpace(c.Request().Header.Get("X-User-ID"))
			if userID == "" {
				return echo.NewHTTPError(apperrors.ErrIdentityRequired.StatusCode, apperrors.ErrIdentityRequired.Message)
			}
			c.Set(UserIDKey, userID)
			return next(c)
		}
	}
}

// UserID reads the identity set by the middleware.
func UserID(c echo.Context) string {
	id, _ := c.Get(UserIDKey).(string)
	return id
}

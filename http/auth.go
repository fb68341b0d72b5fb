package http

import (
	"net/http"
	"strings"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/labstack/echo/v4"

	"rentals/entity"
)

const authContextKey = "auth_context"

// resolveAuthContext turns a bearer token into the AuthContext of the request.
// A missing or invalid token leaves the request anonymous.
func (s *Server) resolveAuthContext(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token, ok := strings.CutPrefix(c.Request().Header.Get(echo.HeaderAuthorization), "Bearer ")
		if ok && token != "" {
			authCtx, err := s.tokens.Parse(token)
			if err != nil {
				log.FromContext(c.Request().Context()).WithError(err).Debug("Ignoring invalid bearer token")
			} else {
				c.Set(authContextKey, authCtx)
			}
		}

		return next(c)
	}
}

func authContext(c echo.Context) entity.AuthContext {
	authCtx, _ := c.Get(authContextKey).(entity.AuthContext)
	return authCtx
}

func forbidden(authCtx entity.AuthContext) error {
	if authCtx.IsAnonymous() {
		return echo.NewHTTPError(http.StatusUnauthorized, "Not authenticated")
	}
	return echo.NewHTTPError(http.StatusForbidden, "Forbidden: Insufficient permissions")
}

package middleware

import (
	"net/http"
	"strings"

	"github.com/EnpoDev/camlikspor-sub001/internal/authz"
	"github.com/EnpoDev/camlikspor-sub001/pkg/logger"
	"github.com/EnpoDev/camlikspor-sub001/pkg/sessiontoken"
	"github.com/EnpoDev/camlikspor-sub001/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// AuthMiddleware validates the session token from the Authorization
// header. API routes bypass the page gate, so this is their own
// authentication step.
func AuthMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		log := logger.FromContext(c)

		// Get the Authorization header
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			log.Error("Missing Authorization header")
			prometheus.RecordAuthError("missing_token")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing authorization token"})
		}

		// Check if it's a Bearer token
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			log.Error("Invalid Authorization header format")
			prometheus.RecordAuthError("invalid_auth_format")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid authorization format, expected Bearer token"})
		}

		// Validate the token
		session, err := sessiontoken.Parse(parts[1])
		if err != nil {
			if err == sessiontoken.ErrLegacyShape {
				prometheus.LegacyTokenCounter.Inc()
				log.Warn("Rejected legacy-shaped session token")
			} else {
				log.Error("Invalid session token", zap.Error(err))
			}
			prometheus.RecordAuthError("invalid_token")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
		}

		SetSession(c, session)

		if session.DealerID != nil {
			log.Debug("Request authenticated with dealer context",
				zap.Uint("dealer_id", *session.DealerID),
				zap.String("dealer_slug", session.DealerSlug),
				zap.String("role", string(session.Role)))
		}

		return next(c)
	}
}

// RequireCapability guards a route with a capability check against the
// session snapshot. It runs after the gate (or AuthMiddleware) and
// short-circuits before the handler, so no write can precede a failed
// check. Under-privileged page visitors are sent to homePath; API
// callers get a 403.
func RequireCapability(capability authz.Capability, homePath string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := logger.FromContext(c)

			session, ok := CurrentSession(c)
			if !ok {
				log.Error("Capability check without a session")
				prometheus.RecordAuthError("missing_session")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
			}

			if !session.HasCapability(capability) {
				log.Warn("Capability denied",
					zap.Uint("user_id", session.UserID),
					zap.String("capability", string(capability)))
				prometheus.RecordCapabilityDenied(string(capability))

				if strings.HasPrefix(c.Request().URL.Path, "/api/") {
					return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
				}
				return c.Redirect(http.StatusFound, homePath)
			}

			return next(c)
		}
	}
}

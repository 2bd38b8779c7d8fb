package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/EnpoDev/camlikspor-sub001/internal/auth"
	"github.com/EnpoDev/camlikspor-sub001/internal/middleware"
	"github.com/EnpoDev/camlikspor-sub001/pkg/config"
	"github.com/EnpoDev/camlikspor-sub001/pkg/logger"
	"github.com/EnpoDev/camlikspor-sub001/pkg/sessiontoken"
	"github.com/EnpoDev/camlikspor-sub001/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// AuthHandler owns the sign-in and sign-out endpoints.
type AuthHandler struct {
	issuer *auth.Issuer
	cfg    config.SessionConfig
}

// NewAuthHandler creates the auth handler.
func NewAuthHandler(issuer *auth.Issuer, cfg config.SessionConfig) *AuthHandler {
	return &AuthHandler{issuer: issuer, cfg: cfg}
}

// Login authenticates a credential pair, issues the signed session token
// and sets it as the session cookie. Every failure path returns the same
// generic message; the cause is only logged.
func (h *AuthHandler) Login(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.LoginCounter.Inc()

	var req struct {
		Email    string `json:"email" form:"email"`
		Password string `json:"password" form:"password"`
	}

	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse login request", zap.Error(err))
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	session, err := h.issuer.Authenticate(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			prometheus.RecordAuthError("invalid_credentials")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}
		log.Error("Authentication failed", zap.Error(err))
		prometheus.RecordAuthError("auth_error")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "authentication failed"})
	}

	token, err := sessiontoken.Issue(session)
	if err != nil {
		log.Error("Failed to issue session token", zap.Error(err))
		prometheus.RecordAuthError("token_generation_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token error"})
	}

	c.SetCookie(h.sessionCookie(token, sessiontoken.TTL()))
	prometheus.ActiveSessionsGauge.Inc()

	log.Info("User logged in",
		zap.Uint("user_id", session.UserID),
		zap.String("role", string(session.Role)),
		zap.String("dealer_slug", session.DealerSlug),
		zap.Bool("sub_dealer", session.SubDealer))

	response := echo.Map{
		"token": token,
		"user": map[string]interface{}{
			"id":    session.UserID,
			"email": session.Email,
			"name":  session.Name,
			"role":  session.Role,
		},
	}
	if session.DealerID != nil {
		response["dealer"] = map[string]interface{}{
			"id":         *session.DealerID,
			"name":       session.DealerName,
			"slug":       session.DealerSlug,
			"sub_dealer": session.SubDealer,
		}
	}
	// Send the browser back where the gate intercepted it. Only local
	// paths qualify; "//host" is a scheme-relative URL, not a path.
	if redirect := c.QueryParam("redirect"); strings.HasPrefix(redirect, "/") && !strings.HasPrefix(redirect, "//") {
		response["redirect"] = redirect
	}

	return c.JSON(http.StatusOK, response)
}

// Logout clears the session cookie. The active-sessions gauge only moves
// when the request actually carried a live session; repeated or cookieless
// logouts must not drive it below zero.
func (h *AuthHandler) Logout(c echo.Context) error {
	log := logger.FromContext(c)

	if cookie, err := c.Cookie(h.cfg.CookieName); err == nil && cookie.Value != "" {
		if _, err := sessiontoken.Parse(cookie.Value); err == nil {
			prometheus.ActiveSessionsGauge.Dec()
		}
	}
	c.SetCookie(h.sessionCookie("", -time.Hour))

	log.Info("User logged out")
	return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}

// ChangePassword rotates the password of the logged-in user after
// re-verifying the current one.
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	log := logger.FromContext(c)

	session, ok := middleware.CurrentSession(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	var req struct {
		CurrentPassword string `json:"current_password" form:"current_password"`
		NewPassword     string `json:"new_password" form:"new_password"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	err := h.issuer.ChangePassword(c.Request().Context(), session.Email, req.CurrentPassword, req.NewPassword)
	switch {
	case errors.Is(err, auth.ErrPasswordTooShort):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "password too short"})
	case errors.Is(err, auth.ErrInvalidCredentials):
		prometheus.RecordAuthError("password_change_rejected")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	case err != nil:
		log.Error("Password change failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}

	prometheus.RecordAuthOperation("password_change")
	return c.JSON(http.StatusOK, echo.Map{"message": "password updated"})
}

func (h *AuthHandler) sessionCookie(value string, ttl time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     h.cfg.CookieName,
		Value:    value,
		Path:     "/",
		Expires:  time.Now().Add(ttl),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

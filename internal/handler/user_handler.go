package handler

import (
	"net/http"

	"github.com/EnpoDev/camlikspor-sub001/internal/authz"
	"github.com/EnpoDev/camlikspor-sub001/internal/middleware"
	"github.com/EnpoDev/camlikspor-sub001/internal/model"
	"github.com/EnpoDev/camlikspor-sub001/internal/store"
	"github.com/EnpoDev/camlikspor-sub001/pkg/logger"
	"github.com/EnpoDev/camlikspor-sub001/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// UserHandler owns the back-office user listing and profile endpoints.
type UserHandler struct {
	users   store.UserStore
	dealers store.DealerStore
}

// NewUserHandler creates the user handler.
func NewUserHandler(users store.UserStore, dealers store.DealerStore) *UserHandler {
	return &UserHandler{users: users, dealers: dealers}
}

// Profile echoes the identity resolved at sign-in.
func (h *UserHandler) Profile(c echo.Context) error {
	session, ok := middleware.CurrentSession(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	response := echo.Map{
		"id":           session.UserID,
		"email":        session.Email,
		"name":         session.Name,
		"role":         session.Role,
		"capabilities": session.Capabilities(),
	}
	if session.DealerID != nil {
		response["dealer"] = map[string]interface{}{
			"id":         *session.DealerID,
			"name":       session.DealerName,
			"slug":       session.DealerSlug,
			"sub_dealer": session.SubDealer,
		}
	}
	return c.JSON(http.StatusOK, response)
}

// List returns the users visible to the session. This is the one read
// path where the dealer filter widens: a dealer admin also sees the
// users of their dealer's sub-dealers.
func (h *UserHandler) List(c echo.Context) error {
	log := logger.FromContext(c)

	session, ok := middleware.CurrentSession(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	scope := authz.TenantFilter(session)
	if session.Role == model.RoleDealerAdmin && session.DealerID != nil {
		childIDs, err := h.dealers.ListChildIDs(c.Request().Context(), *session.DealerID)
		if err != nil {
			log.Error("Failed to list child dealers", zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve users"})
		}
		scope = authz.UserListingFilter(session, childIDs)
	}

	users, err := h.users.ListVisible(c.Request().Context(), scope)
	if err != nil {
		log.Error("Failed to retrieve users", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve users"})
	}

	type UserResponse struct {
		ID       uint       `json:"id"`
		Email    string     `json:"email"`
		Name     string     `json:"name"`
		Role     model.Role `json:"role"`
		Active   bool       `json:"active"`
		DealerID *uint      `json:"dealer_id,omitempty"`
	}

	response := make([]UserResponse, 0, len(users))
	for _, u := range users {
		response = append(response, UserResponse{
			ID:       u.ID,
			Email:    u.Email,
			Name:     u.Name,
			Role:     u.Role,
			Active:   u.Active,
			DealerID: u.DealerID,
		})
	}

	prometheus.RecordAuthOperation("user_listing")
	return c.JSON(http.StatusOK, echo.Map{"users": response})
}

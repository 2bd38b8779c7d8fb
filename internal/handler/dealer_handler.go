package handler

import (
	"errors"
	"net/http"

	"github.com/EnpoDev/camlikspor-sub001/internal/authz"
	"github.com/EnpoDev/camlikspor-sub001/internal/middleware"
	"github.com/EnpoDev/camlikspor-sub001/internal/store"
	"github.com/EnpoDev/camlikspor-sub001/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// DealerHandler owns the dealer read endpoints.
type DealerHandler struct {
	dealers store.DealerStore
}

// NewDealerHandler creates the dealer handler.
func NewDealerHandler(dealers store.DealerStore) *DealerHandler {
	return &DealerHandler{dealers: dealers}
}

// GetBySlug returns a dealer inside the session's scope. The general
// dealer filter applies here; the user-listing widening does not.
func (h *DealerHandler) GetBySlug(c echo.Context) error {
	log := logger.FromContext(c)

	session, ok := middleware.CurrentSession(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	dealer, err := h.dealers.FindBySlug(c.Request().Context(), c.Param("slug"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "dealer not found"})
		}
		log.Error("Failed to retrieve dealer", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve dealer"})
	}

	if !authz.TenantFilter(session).Contains(dealer.ID) {
		log.Warn("Unauthorized dealer access attempt",
			zap.Uint("user_id", session.UserID),
			zap.Uint("dealer_id", dealer.ID))
		return c.JSON(http.StatusForbidden, echo.Map{"error": "access denied"})
	}

	return c.JSON(http.StatusOK, dealer)
}

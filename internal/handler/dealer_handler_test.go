package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/EnpoDev/camlikspor-sub001/internal/authz"
	"github.com/EnpoDev/camlikspor-sub001/internal/middleware"
	"github.com/EnpoDev/camlikspor-sub001/internal/model"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getDealer(t *testing.T, h *DealerHandler, slug string, session *authz.Session) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/app/dealers/"+slug, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("slug")
	c.SetParamValues(slug)
	if session != nil {
		middleware.SetSession(c, session)
	}
	require.NoError(t, h.GetBySlug(c))
	return rec
}

func testDealers() *stubDealers {
	parentID := uint(1)
	return &stubDealers{dealers: map[uint]*model.Dealer{
		1: {ID: 1, Name: "Merkez", Slug: "merkez", Active: true},
		2: {ID: 2, Name: "Sahil", Slug: "sahil", Active: true, ParentID: &parentID},
	}}
}

func TestGetDealerOwnDealer(t *testing.T) {
	h := NewDealerHandler(testDealers())
	dealerID := uint(1)

	rec := getDealer(t, h, "merkez", sessionFor(model.RoleDealerAdmin, &dealerID))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGetDealerOutsideScopeIsForbidden(t *testing.T) {
	h := NewDealerHandler(testDealers())
	dealerID := uint(1)

	// The user-listing widening does not apply here: a parent admin does
	// not see the sub-dealer record through the general filter.
	rec := getDealer(t, h, "sahil", sessionFor(model.RoleDealerAdmin, &dealerID))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestGetDealerSuperAdminSeesAll(t *testing.T) {
	h := NewDealerHandler(testDealers())

	rec := getDealer(t, h, "sahil", sessionFor(model.RoleSuperAdmin, nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGetDealerUnknownSlugIs404(t *testing.T) {
	h := NewDealerHandler(testDealers())

	rec := getDealer(t, h, "kuzey", sessionFor(model.RoleSuperAdmin, nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

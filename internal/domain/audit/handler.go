package audit

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/carehub/carehub/internal/platform/auth"
	"github.com/carehub/carehub/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/audit-logs", h.List, auth.Require(auth.OpRead, auth.ResourceAuditLog))
	api.GET("/audit-logs/:id", h.Get, auth.Require(auth.OpRead, auth.ResourceAuditLog))
	api.DELETE("/audit-logs", h.Purge, auth.Require(auth.OpDelete, auth.ResourceAuditLog))
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)

	f := Filter{
		Actor:      c.QueryParam("actor"),
		Action:     c.QueryParam("action"),
		TargetType: c.QueryParam("target_type"),
	}
	if v := c.QueryParam("target_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid target_id")
		}
		f.TargetID = &id
	}
	if v := c.QueryParam("client_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid client_id")
		}
		f.ClientID = &id
	}
	if v := c.QueryParam("from"); v != "" {
		ts, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid from timestamp")
		}
		f.From = &ts
	}
	if v := c.QueryParam("to"); v != "" {
		ts, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid to timestamp")
		}
		f.To = &ts
	}

	actor := auth.IdentityFromContext(c.Request().Context())
	items, total, err := h.svc.List(c.Request().Context(), actor, f, pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	if items == nil {
		items = []*Entry{}
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	e, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, e)
}

// Purge removes entries older than the required "before" timestamp.
func (h *Handler) Purge(c echo.Context) error {
	before := c.QueryParam("before")
	if before == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "before timestamp is required")
	}
	cutoff, err := time.Parse(time.RFC3339, before)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid before timestamp")
	}

	id := auth.IdentityFromContext(c.Request().Context())
	removed, err := h.svc.Purge(c.Request().Context(), id, cutoff)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]int64{"removed": removed})
}

package medication

import (
	"net/http"

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
	api.POST("/medications", h.Create, auth.Require(auth.OpCreate, auth.ResourceMedication))
	api.GET("/medications", h.List, auth.Require(auth.OpRead, auth.ResourceMedication))
	api.GET("/medications/low-stock", h.LowStock, auth.Require(auth.OpRead, auth.ResourceMedication))
	api.GET("/medications/older-than-six-months", h.Stale, auth.Require(auth.OpRead, auth.ResourceMedication))
	api.GET("/medications/audit-logs", h.AuditTrail, auth.Require(auth.OpRead, auth.ResourceAuditLog))
	api.GET("/medications/:id", h.Get, auth.Require(auth.OpRead, auth.ResourceMedication))
	api.PUT("/medications/:id", h.Update, auth.Require(auth.OpUpdate, auth.ResourceMedication))
	api.DELETE("/medications/:id", h.Delete, auth.Require(auth.OpDelete, auth.ResourceMedication))
	api.POST("/medications/:id/attachments", h.AddAttachment, auth.Require(auth.OpUpdate, auth.ResourceMedication))
	api.DELETE("/medications/:id/attachments/:blobId", h.RemoveAttachment, auth.Require(auth.OpUpdate, auth.ResourceMedication))

	api.POST("/medications/:id/administrations", h.Administer, auth.Require(auth.OpCreate, auth.ResourceAdministration))
	api.GET("/medications/:id/administrations", h.History, auth.Require(auth.OpRead, auth.ResourceAdministration))
	api.PUT("/administrations/:id", h.Amend, auth.Require(auth.OpUpdate, auth.ResourceAdministration))
	api.DELETE("/administrations/:id", h.Reverse, auth.Require(auth.OpDelete, auth.ResourceAdministration))
}

func (h *Handler) Create(c echo.Context) error {
	var m Medication
	if err := c.Bind(&m); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	actor := auth.IdentityFromContext(c.Request().Context())
	if err := h.svc.Create(c.Request().Context(), actor, &m); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, m)
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	actor := auth.IdentityFromContext(c.Request().Context())

	var (
		items []Medication
		total int
		err   error
	)
	if v := c.QueryParam("client_id"); v != "" {
		clientID, perr := uuid.Parse(v)
		if perr != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid client_id")
		}
		items, total, err = h.svc.ListByClient(c.Request().Context(), actor, clientID, pg.Limit, pg.Offset)
	} else {
		items, total, err = h.svc.List(c.Request().Context(), actor, pg.Limit, pg.Offset)
	}
	if err != nil {
		return err
	}
	if items == nil {
		items = []Medication{}
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) LowStock(c echo.Context) error {
	pg := pagination.FromContext(c)
	actor := auth.IdentityFromContext(c.Request().Context())
	items, total, err := h.svc.LowStock(c.Request().Context(), actor, pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	if items == nil {
		items = []Medication{}
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) Stale(c echo.Context) error {
	pg := pagination.FromContext(c)
	actor := auth.IdentityFromContext(c.Request().Context())
	items, total, err := h.svc.Stale(c.Request().Context(), actor, pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	if items == nil {
		items = []Medication{}
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) AuditTrail(c echo.Context) error {
	actor := auth.IdentityFromContext(c.Request().Context())
	pg := pagination.FromContext(c)
	items, total, err := h.svc.AuditTrail(c.Request().Context(), actor, pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) AddAttachment(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	file, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "file is required")
	}
	src, err := file.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "unreadable file")
	}
	defer src.Close()

	actor := auth.IdentityFromContext(c.Request().Context())
	m, err := h.svc.AddAttachment(c.Request().Context(), actor, id,
		file.Filename, file.Header.Get("Content-Type"), src)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, m)
}

func (h *Handler) RemoveAttachment(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	actor := auth.IdentityFromContext(c.Request().Context())
	m, err := h.svc.RemoveAttachment(c.Request().Context(), actor, id, c.Param("blobId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, m)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	actor := auth.IdentityFromContext(c.Request().Context())
	m, err := h.svc.Get(c.Request().Context(), actor, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, m)
}

func (h *Handler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req UpdateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	actor := auth.IdentityFromContext(c.Request().Context())
	m, err := h.svc.Update(c.Request().Context(), actor, id, &req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, m)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	actor := auth.IdentityFromContext(c.Request().Context())
	if err := h.svc.Delete(c.Request().Context(), actor, id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) Administer(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var ev AdministrationEvent
	if err := c.Bind(&ev); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	actor := auth.IdentityFromContext(c.Request().Context())
	if err := h.svc.Administer(c.Request().Context(), actor, id, &ev); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, ev)
}

func (h *Handler) History(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	pg := pagination.FromContext(c)
	actor := auth.IdentityFromContext(c.Request().Context())
	items, total, err := h.svc.History(c.Request().Context(), actor, id, pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	if items == nil {
		items = []AdministrationEvent{}
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) Amend(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req AmendRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	actor := auth.IdentityFromContext(c.Request().Context())
	ev, err := h.svc.Amend(c.Request().Context(), actor, id, &req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ev)
}

func (h *Handler) Reverse(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	actor := auth.IdentityFromContext(c.Request().Context())
	if err := h.svc.Reverse(c.Request().Context(), actor, id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

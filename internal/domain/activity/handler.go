package activity

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
	api.POST("/daily-logs", h.CreateLog, auth.Require(auth.OpCreate, auth.ResourceDailyLog))
	api.GET("/daily-logs", h.ListLogs, auth.Require(auth.OpRead, auth.ResourceDailyLog))
	api.GET("/daily-logs/:id", h.GetLog, auth.Require(auth.OpRead, auth.ResourceDailyLog))
	api.PUT("/daily-logs/:id", h.UpdateLog, auth.Require(auth.OpUpdate, auth.ResourceDailyLog))
	api.DELETE("/daily-logs/:id", h.DeleteLog, auth.Require(auth.OpDelete, auth.ResourceDailyLog))

	api.POST("/handovers", h.CreateHandover, auth.Require(auth.OpCreate, auth.ResourceHandover))
	api.GET("/handovers", h.ListHandovers, auth.Require(auth.OpRead, auth.ResourceHandover))
	api.GET("/handovers/:id", h.GetHandover, auth.Require(auth.OpRead, auth.ResourceHandover))
	api.PUT("/handovers/:id", h.UpdateHandover, auth.Require(auth.OpUpdate, auth.ResourceHandover))
	api.DELETE("/handovers/:id", h.DeleteHandover, auth.Require(auth.OpDelete, auth.ResourceHandover))

	api.POST("/social-activities", h.CreateActivity, auth.Require(auth.OpCreate, auth.ResourceSocialActivity))
	api.GET("/social-activities", h.ListActivities, auth.Require(auth.OpRead, auth.ResourceSocialActivity))
	api.GET("/social-activities/:id", h.GetActivity, auth.Require(auth.OpRead, auth.ResourceSocialActivity))
	api.PUT("/social-activities/:id", h.UpdateActivity, auth.Require(auth.OpUpdate, auth.ResourceSocialActivity))
	api.DELETE("/social-activities/:id", h.DeleteActivity, auth.Require(auth.OpDelete, auth.ResourceSocialActivity))
	api.POST("/social-activities/:id/attachments", h.AddAttachment, auth.Require(auth.OpUpdate, auth.ResourceSocialActivity))
	api.DELETE("/social-activities/:id/attachments/:blobId", h.RemoveAttachment, auth.Require(auth.OpUpdate, auth.ResourceSocialActivity))
}

func (h *Handler) CreateLog(c echo.Context) error {
	var l DailyLog
	if err := c.Bind(&l); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	actor := auth.IdentityFromContext(c.Request().Context())
	if err := h.svc.CreateLog(c.Request().Context(), actor, &l); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, l)
}

func (h *Handler) ListLogs(c echo.Context) error {
	pg := pagination.FromContext(c)
	actor := auth.IdentityFromContext(c.Request().Context())
	items, total, err := h.svc.ListLogs(c.Request().Context(), actor, pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	if items == nil {
		items = []DailyLog{}
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) GetLog(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	actor := auth.IdentityFromContext(c.Request().Context())
	l, err := h.svc.GetLog(c.Request().Context(), actor, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, l)
}

func (h *Handler) UpdateLog(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var upd DailyLog
	if err := c.Bind(&upd); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	actor := auth.IdentityFromContext(c.Request().Context())
	l, err := h.svc.UpdateLog(c.Request().Context(), actor, id, &upd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, l)
}

func (h *Handler) DeleteLog(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	actor := auth.IdentityFromContext(c.Request().Context())
	if err := h.svc.DeleteLog(c.Request().Context(), actor, id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) CreateHandover(c echo.Context) error {
	var hv Handover
	if err := c.Bind(&hv); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	actor := auth.IdentityFromContext(c.Request().Context())
	if err := h.svc.CreateHandover(c.Request().Context(), actor, &hv); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, hv)
}

func (h *Handler) ListHandovers(c echo.Context) error {
	pg := pagination.FromContext(c)
	actor := auth.IdentityFromContext(c.Request().Context())
	items, total, err := h.svc.ListHandovers(c.Request().Context(), actor, pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	if items == nil {
		items = []Handover{}
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) GetHandover(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	actor := auth.IdentityFromContext(c.Request().Context())
	hv, err := h.svc.GetHandover(c.Request().Context(), actor, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, hv)
}

func (h *Handler) UpdateHandover(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var upd Handover
	if err := c.Bind(&upd); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	actor := auth.IdentityFromContext(c.Request().Context())
	hv, err := h.svc.UpdateHandover(c.Request().Context(), actor, id, &upd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, hv)
}

func (h *Handler) DeleteHandover(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	actor := auth.IdentityFromContext(c.Request().Context())
	if err := h.svc.DeleteHandover(c.Request().Context(), actor, id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) CreateActivity(c echo.Context) error {
	var a SocialActivity
	if err := c.Bind(&a); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	actor := auth.IdentityFromContext(c.Request().Context())
	if err := h.svc.CreateActivity(c.Request().Context(), actor, &a); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *Handler) ListActivities(c echo.Context) error {
	pg := pagination.FromContext(c)
	actor := auth.IdentityFromContext(c.Request().Context())
	items, total, err := h.svc.ListActivities(c.Request().Context(), actor, pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	if items == nil {
		items = []SocialActivity{}
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) GetActivity(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	actor := auth.IdentityFromContext(c.Request().Context())
	a, err := h.svc.GetActivity(c.Request().Context(), actor, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) UpdateActivity(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var upd SocialActivity
	if err := c.Bind(&upd); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	actor := auth.IdentityFromContext(c.Request().Context())
	a, err := h.svc.UpdateActivity(c.Request().Context(), actor, id, &upd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) DeleteActivity(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	actor := auth.IdentityFromContext(c.Request().Context())
	if err := h.svc.DeleteActivity(c.Request().Context(), actor, id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
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
	a, err := h.svc.AddAttachment(c.Request().Context(), actor, id,
		file.Filename, file.Header.Get("Content-Type"), src)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *Handler) RemoveAttachment(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	actor := auth.IdentityFromContext(c.Request().Context())
	a, err := h.svc.RemoveAttachment(c.Request().Context(), actor, id, c.Param("blobId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, a)
}

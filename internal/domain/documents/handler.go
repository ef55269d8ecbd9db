package documents

import (
	"fmt"
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
	api.POST("/templates", h.CreateTemplate, auth.Require(auth.OpCreate, auth.ResourceTemplate))
	api.GET("/templates", h.ListTemplates, auth.Require(auth.OpRead, auth.ResourceTemplate))
	api.GET("/templates/:id", h.GetTemplate, auth.Require(auth.OpRead, auth.ResourceTemplate))
	api.PUT("/templates/:id", h.UpdateTemplate, auth.Require(auth.OpUpdate, auth.ResourceTemplate))
	api.DELETE("/templates/:id", h.DeleteTemplate, auth.Require(auth.OpDelete, auth.ResourceTemplate))
	api.POST("/templates/:id/attachments", h.AddTemplateAttachment, auth.Require(auth.OpUpdate, auth.ResourceTemplate))
	api.GET("/templates/:id/attachments/:blobId", h.DownloadTemplateAttachment, auth.Require(auth.OpRead, auth.ResourceTemplate))

	api.POST("/consent-records", h.CreateConsent, auth.Require(auth.OpCreate, auth.ResourceConsentRecord))
	api.GET("/consent-records", h.ListConsents, auth.Require(auth.OpRead, auth.ResourceConsentRecord))
	api.GET("/consent-records/:id", h.GetConsent, auth.Require(auth.OpRead, auth.ResourceConsentRecord))
	api.PUT("/consent-records/:id", h.UpdateConsent, auth.Require(auth.OpUpdate, auth.ResourceConsentRecord))
	api.DELETE("/consent-records/:id", h.DeleteConsent, auth.Require(auth.OpDelete, auth.ResourceConsentRecord))
}

func (h *Handler) CreateTemplate(c echo.Context) error {
	var t Template
	if err := c.Bind(&t); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	actor := auth.IdentityFromContext(c.Request().Context())
	if err := h.svc.CreateTemplate(c.Request().Context(), actor, &t); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, t)
}

func (h *Handler) ListTemplates(c echo.Context) error {
	pg := pagination.FromContext(c)
	actor := auth.IdentityFromContext(c.Request().Context())
	items, total, err := h.svc.ListTemplates(c.Request().Context(), actor, pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	if items == nil {
		items = []Template{}
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) GetTemplate(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	actor := auth.IdentityFromContext(c.Request().Context())
	t, err := h.svc.GetTemplate(c.Request().Context(), actor, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, t)
}

func (h *Handler) UpdateTemplate(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var upd Template
	if err := c.Bind(&upd); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	actor := auth.IdentityFromContext(c.Request().Context())
	t, err := h.svc.UpdateTemplate(c.Request().Context(), actor, id, &upd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, t)
}

func (h *Handler) DeleteTemplate(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	actor := auth.IdentityFromContext(c.Request().Context())
	if err := h.svc.DeleteTemplate(c.Request().Context(), actor, id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) AddTemplateAttachment(c echo.Context) error {
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
	t, err := h.svc.AddTemplateAttachment(c.Request().Context(), actor, id,
		file.Filename, file.Header.Get("Content-Type"), src)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, t)
}

func (h *Handler) DownloadTemplateAttachment(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	actor := auth.IdentityFromContext(c.Request().Context())
	rc, meta, err := h.svc.DownloadTemplateAttachment(c.Request().Context(), actor, id, c.Param("blobId"))
	if err != nil {
		return err
	}
	defer rc.Close()

	contentType := meta.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename=%q`, meta.FileName))
	return c.Stream(http.StatusOK, contentType, rc)
}

func (h *Handler) CreateConsent(c echo.Context) error {
	var r ConsentRecord
	if err := c.Bind(&r); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	actor := auth.IdentityFromContext(c.Request().Context())
	if err := h.svc.CreateConsent(c.Request().Context(), actor, &r); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, r)
}

func (h *Handler) ListConsents(c echo.Context) error {
	pg := pagination.FromContext(c)
	actor := auth.IdentityFromContext(c.Request().Context())
	items, total, err := h.svc.ListConsents(c.Request().Context(), actor, pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	if items == nil {
		items = []ConsentRecord{}
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) GetConsent(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	actor := auth.IdentityFromContext(c.Request().Context())
	r, err := h.svc.GetConsent(c.Request().Context(), actor, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, r)
}

func (h *Handler) UpdateConsent(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var upd ConsentRecord
	if err := c.Bind(&upd); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	actor := auth.IdentityFromContext(c.Request().Context())
	r, err := h.svc.UpdateConsent(c.Request().Context(), actor, id, &upd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, r)
}

func (h *Handler) DeleteConsent(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	actor := auth.IdentityFromContext(c.Request().Context())
	if err := h.svc.DeleteConsent(c.Request().Context(), actor, id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

package staff

import (
	"fmt"
	"io"
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
	api.POST("/staff", h.Create, auth.Require(auth.OpCreate, auth.ResourceStaff))
	api.GET("/staff", h.List, auth.Require(auth.OpRead, auth.ResourceStaff))
	api.GET("/staff/:id", h.Get, auth.Require(auth.OpRead, auth.ResourceStaff))
	api.PUT("/staff/:id", h.Update, auth.Require(auth.OpUpdate, auth.ResourceStaff))
	api.DELETE("/staff/:id", h.Delete, auth.Require(auth.OpDelete, auth.ResourceStaff))

	api.POST("/staff/:id/documents", h.AddDocument, auth.Require(auth.OpCreate, auth.ResourceStaffDocument))
	api.GET("/staff/:id/documents", h.ListDocuments, auth.Require(auth.OpRead, auth.ResourceStaffDocument))
	api.GET("/staff-documents/:id", h.GetDocument, auth.Require(auth.OpRead, auth.ResourceStaffDocument))
	api.GET("/staff-documents/:id/download", h.DownloadDocument, auth.Require(auth.OpRead, auth.ResourceStaffDocument))
	api.DELETE("/staff-documents/:id", h.DeleteDocument, auth.Require(auth.OpDelete, auth.ResourceStaffDocument))

	api.POST("/staff/:id/performance", h.AddPerformance, auth.Require(auth.OpCreate, auth.ResourcePerformance))
	api.GET("/staff/:id/performance", h.ListPerformance, auth.Require(auth.OpRead, auth.ResourcePerformance))
	api.GET("/performance/:id", h.GetPerformance, auth.Require(auth.OpRead, auth.ResourcePerformance))
	api.PUT("/performance/:id", h.UpdatePerformance, auth.Require(auth.OpUpdate, auth.ResourcePerformance))
	api.DELETE("/performance/:id", h.DeletePerformance, auth.Require(auth.OpDelete, auth.ResourcePerformance))
}

func (h *Handler) Create(c echo.Context) error {
	var st Staff
	if err := c.Bind(&st); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	actor := auth.IdentityFromContext(c.Request().Context())
	if err := h.svc.Create(c.Request().Context(), actor, &st); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, st)
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	actor := auth.IdentityFromContext(c.Request().Context())
	items, total, err := h.svc.List(c.Request().Context(), actor,
		c.QueryParam("name"), c.QueryParam("status"), pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	if items == nil {
		items = []Staff{}
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	actor := auth.IdentityFromContext(c.Request().Context())
	st, err := h.svc.Get(c.Request().Context(), actor, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, st)
}

func (h *Handler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var upd Staff
	if err := c.Bind(&upd); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	actor := auth.IdentityFromContext(c.Request().Context())
	st, err := h.svc.Update(c.Request().Context(), actor, id, &upd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, st)
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

// AddDocument accepts a multipart form: name is required, category and
// notes are optional, and an optional file part becomes the stored body.
func (h *Handler) AddDocument(c echo.Context) error {
	staffID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	d := Document{StaffID: staffID, Name: c.FormValue("name")}
	if v := c.FormValue("category"); v != "" {
		d.Category = &v
	}
	if v := c.FormValue("notes"); v != "" {
		d.Notes = &v
	}

	var (
		src         io.Reader
		fileName    string
		contentType string
	)
	if file, ferr := c.FormFile("file"); ferr == nil {
		f, oerr := file.Open()
		if oerr != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "unreadable file")
		}
		defer f.Close()
		src = f
		fileName = file.Filename
		contentType = file.Header.Get("Content-Type")
	}

	actor := auth.IdentityFromContext(c.Request().Context())
	if err := h.svc.AddDocument(c.Request().Context(), actor, &d, fileName, contentType, src); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, d)
}

func (h *Handler) DownloadDocument(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	actor := auth.IdentityFromContext(c.Request().Context())
	rc, meta, err := h.svc.DownloadDocument(c.Request().Context(), actor, id)
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

func (h *Handler) ListDocuments(c echo.Context) error {
	staffID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	pg := pagination.FromContext(c)
	actor := auth.IdentityFromContext(c.Request().Context())
	items, total, err := h.svc.ListDocuments(c.Request().Context(), actor, staffID, pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	if items == nil {
		items = []Document{}
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) GetDocument(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	actor := auth.IdentityFromContext(c.Request().Context())
	d, err := h.svc.GetDocument(c.Request().Context(), actor, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, d)
}

func (h *Handler) DeleteDocument(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	actor := auth.IdentityFromContext(c.Request().Context())
	if err := h.svc.DeleteDocument(c.Request().Context(), actor, id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) AddPerformance(c echo.Context) error {
	staffID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var p Performance
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	p.StaffID = staffID
	actor := auth.IdentityFromContext(c.Request().Context())
	if err := h.svc.AddPerformance(c.Request().Context(), actor, &p); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) ListPerformance(c echo.Context) error {
	staffID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	pg := pagination.FromContext(c)
	actor := auth.IdentityFromContext(c.Request().Context())
	items, total, err := h.svc.ListPerformance(c.Request().Context(), actor, staffID, pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	if items == nil {
		items = []Performance{}
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) GetPerformance(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	actor := auth.IdentityFromContext(c.Request().Context())
	p, err := h.svc.GetPerformance(c.Request().Context(), actor, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) UpdatePerformance(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var upd Performance
	if err := c.Bind(&upd); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	actor := auth.IdentityFromContext(c.Request().Context())
	p, err := h.svc.UpdatePerformance(c.Request().Context(), actor, id, &upd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) DeletePerformance(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	actor := auth.IdentityFromContext(c.Request().Context())
	if err := h.svc.DeletePerformance(c.Request().Context(), actor, id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

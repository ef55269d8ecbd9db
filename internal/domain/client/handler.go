package client

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
	api.POST("/clients", h.Create, auth.Require(auth.OpCreate, auth.ResourceClient))
	api.GET("/clients", h.List, auth.Require(auth.OpRead, auth.ResourceClient))
	api.GET("/clients/:id", h.Get, auth.Require(auth.OpRead, auth.ResourceClient))
	api.PUT("/clients/:id", h.Update, auth.Require(auth.OpUpdate, auth.ResourceClient))
	api.DELETE("/clients/:id", h.Delete, auth.Require(auth.OpDelete, auth.ResourceClient))
}

func (h *Handler) Create(c echo.Context) error {
	var cl Client
	if err := c.Bind(&cl); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	actor := auth.IdentityFromContext(c.Request().Context())
	if err := h.svc.Create(c.Request().Context(), actor, &cl); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, cl)
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	actor := auth.IdentityFromContext(c.Request().Context())

	name := c.QueryParam("name")
	status := c.QueryParam("status")

	var (
		items []Client
		total int
		err   error
	)
	if name != "" || status != "" {
		items, total, err = h.svc.Search(c.Request().Context(), actor, name, status, pg.Limit, pg.Offset)
	} else {
		items, total, err = h.svc.List(c.Request().Context(), actor, pg.Limit, pg.Offset)
	}
	if err != nil {
		return err
	}
	if items == nil {
		items = []Client{}
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	actor := auth.IdentityFromContext(c.Request().Context())
	cl, err := h.svc.Get(c.Request().Context(), actor, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cl)
}

func (h *Handler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var upd Client
	if err := c.Bind(&upd); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	actor := auth.IdentityFromContext(c.Request().Context())
	cl, err := h.svc.Update(c.Request().Context(), actor, id, &upd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cl)
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

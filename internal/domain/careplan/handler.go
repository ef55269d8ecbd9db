package careplan

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
	api.POST("/care-plans", h.Create, auth.Require(auth.OpCreate, auth.ResourceCarePlan))
	api.GET("/care-plans", h.List, auth.Require(auth.OpRead, auth.ResourceCarePlan))
	api.GET("/care-plans/:id", h.Get, auth.Require(auth.OpRead, auth.ResourceCarePlan))
	api.PUT("/care-plans/:id", h.Update, auth.Require(auth.OpUpdate, auth.ResourceCarePlan))
	api.POST("/care-plans/:id/acknowledge", h.Acknowledge, auth.Require(auth.OpUpdate, auth.ResourceCarePlan))
	api.DELETE("/care-plans/:id", h.Delete, auth.Require(auth.OpDelete, auth.ResourceCarePlan))
	api.POST("/care-plans/:id/attachments", h.AddAttachment, auth.Require(auth.OpUpdate, auth.ResourceCarePlan))
	api.DELETE("/care-plans/:id/attachments/:blobId", h.RemoveAttachment, auth.Require(auth.OpUpdate, auth.ResourceCarePlan))

	api.POST("/care-plans/:id/goals", h.AddGoal, auth.Require(auth.OpCreate, auth.ResourceGoal))
	api.GET("/care-plans/:id/goals", h.ListGoals, auth.Require(auth.OpRead, auth.ResourceGoal))
	api.PUT("/goals/:id", h.UpdateGoal, auth.Require(auth.OpUpdate, auth.ResourceGoal))
	api.DELETE("/goals/:id", h.DeleteGoal, auth.Require(auth.OpDelete, auth.ResourceGoal))
}

func (h *Handler) Create(c echo.Context) error {
	var cp CarePlan
	if err := c.Bind(&cp); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	actor := auth.IdentityFromContext(c.Request().Context())
	if err := h.svc.Create(c.Request().Context(), actor, &cp); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, cp)
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	actor := auth.IdentityFromContext(c.Request().Context())

	var (
		items []CarePlan
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
		items = []CarePlan{}
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	actor := auth.IdentityFromContext(c.Request().Context())
	cp, err := h.svc.Get(c.Request().Context(), actor, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cp)
}

func (h *Handler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var upd CarePlan
	if err := c.Bind(&upd); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	actor := auth.IdentityFromContext(c.Request().Context())
	cp, err := h.svc.Update(c.Request().Context(), actor, id, &upd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cp)
}

func (h *Handler) Acknowledge(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req AcknowledgeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	actor := auth.IdentityFromContext(c.Request().Context())
	cp, err := h.svc.Acknowledge(c.Request().Context(), actor, id, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cp)
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

func (h *Handler) AddGoal(c echo.Context) error {
	planID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var g Goal
	if err := c.Bind(&g); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	g.CarePlanID = planID
	actor := auth.IdentityFromContext(c.Request().Context())
	if err := h.svc.AddGoal(c.Request().Context(), actor, &g); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, g)
}

func (h *Handler) ListGoals(c echo.Context) error {
	planID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	actor := auth.IdentityFromContext(c.Request().Context())
	goals, err := h.svc.ListGoals(c.Request().Context(), actor, planID)
	if err != nil {
		return err
	}
	if goals == nil {
		goals = []Goal{}
	}
	return c.JSON(http.StatusOK, goals)
}

func (h *Handler) UpdateGoal(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var upd Goal
	if err := c.Bind(&upd); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	actor := auth.IdentityFromContext(c.Request().Context())
	g, err := h.svc.UpdateGoal(c.Request().Context(), actor, id, &upd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, g)
}

func (h *Handler) DeleteGoal(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	actor := auth.IdentityFromContext(c.Request().Context())
	if err := h.svc.DeleteGoal(c.Request().Context(), actor, id); err != nil {
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
	cp, err := h.svc.AddAttachment(c.Request().Context(), actor, id,
		file.Filename, file.Header.Get("Content-Type"), src)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, cp)
}

func (h *Handler) RemoveAttachment(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	actor := auth.IdentityFromContext(c.Request().Context())
	cp, err := h.svc.RemoveAttachment(c.Request().Context(), actor, id, c.Param("blobId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cp)
}

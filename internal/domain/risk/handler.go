package risk

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
	api.POST("/risk-assessments", h.CreateAssessment, auth.Require(auth.OpCreate, auth.ResourceRiskAssessment))
	api.GET("/risk-assessments", h.ListAssessments, auth.Require(auth.OpRead, auth.ResourceRiskAssessment))
	api.GET("/risk-assessments/:id", h.GetAssessment, auth.Require(auth.OpRead, auth.ResourceRiskAssessment))
	api.PUT("/risk-assessments/:id", h.UpdateAssessment, auth.Require(auth.OpUpdate, auth.ResourceRiskAssessment))
	api.DELETE("/risk-assessments/:id", h.DeleteAssessment, auth.Require(auth.OpDelete, auth.ResourceRiskAssessment))

	api.POST("/pbs-plans", h.CreatePlan, auth.Require(auth.OpCreate, auth.ResourcePBSPlan))
	api.GET("/pbs-plans", h.ListPlans, auth.Require(auth.OpRead, auth.ResourcePBSPlan))
	api.GET("/pbs-plans/:id", h.GetPlan, auth.Require(auth.OpRead, auth.ResourcePBSPlan))
	api.PUT("/pbs-plans/:id", h.UpdatePlan, auth.Require(auth.OpUpdate, auth.ResourcePBSPlan))
	api.DELETE("/pbs-plans/:id", h.DeletePlan, auth.Require(auth.OpDelete, auth.ResourcePBSPlan))
}

func (h *Handler) CreateAssessment(c echo.Context) error {
	var a Assessment
	if err := c.Bind(&a); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	actor := auth.IdentityFromContext(c.Request().Context())
	if err := h.svc.CreateAssessment(c.Request().Context(), actor, &a); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *Handler) ListAssessments(c echo.Context) error {
	pg := pagination.FromContext(c)
	actor := auth.IdentityFromContext(c.Request().Context())
	items, total, err := h.svc.ListAssessments(c.Request().Context(), actor, pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	if items == nil {
		items = []Assessment{}
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) GetAssessment(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	actor := auth.IdentityFromContext(c.Request().Context())
	a, err := h.svc.GetAssessment(c.Request().Context(), actor, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) UpdateAssessment(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var upd Assessment
	if err := c.Bind(&upd); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	actor := auth.IdentityFromContext(c.Request().Context())
	a, err := h.svc.UpdateAssessment(c.Request().Context(), actor, id, &upd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) DeleteAssessment(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	actor := auth.IdentityFromContext(c.Request().Context())
	if err := h.svc.DeleteAssessment(c.Request().Context(), actor, id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) CreatePlan(c echo.Context) error {
	var p PBSPlan
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	actor := auth.IdentityFromContext(c.Request().Context())
	if err := h.svc.CreatePlan(c.Request().Context(), actor, &p); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) ListPlans(c echo.Context) error {
	pg := pagination.FromContext(c)
	actor := auth.IdentityFromContext(c.Request().Context())
	items, total, err := h.svc.ListPlans(c.Request().Context(), actor, pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	if items == nil {
		items = []PBSPlan{}
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) GetPlan(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	actor := auth.IdentityFromContext(c.Request().Context())
	p, err := h.svc.GetPlan(c.Request().Context(), actor, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) UpdatePlan(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var upd PBSPlan
	if err := c.Bind(&upd); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	actor := auth.IdentityFromContext(c.Request().Context())
	p, err := h.svc.UpdatePlan(c.Request().Context(), actor, id, &upd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) DeletePlan(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	actor := auth.IdentityFromContext(c.Request().Context())
	if err := h.svc.DeletePlan(c.Request().Context(), actor, id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

package assessment

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/psyscale/psyscale/internal/domain/scoring"
	"github.com/psyscale/psyscale/internal/platform/auth"
	"github.com/psyscale/psyscale/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("", auth.RequireRole("admin", "physician", "psychologist"))
	g.POST("/assessments", h.Start)
	g.GET("/assessments", h.Search)
	g.GET("/assessments/:id", h.Get)
	g.PUT("/assessments/:id/answers", h.Answer)
	g.POST("/assessments/:id/submit", h.Submit)
	g.POST("/assessments/:id/rescore", h.Rescore)
	g.GET("/assessments/:id/results", h.Results)
}

type startRequest struct {
	PatientRef      string `json:"patient_ref"`
	TemplateID      string `json:"template_id"`
	TemplateVersion int    `json:"template_version"`
}

func (h *Handler) Start(c echo.Context) error {
	var req startRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.PatientRef == "" || req.TemplateID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "patient_ref and template_id are required")
	}
	a, err := h.svc.Start(c.Request().Context(), req.PatientRef, req.TemplateID, req.TemplateVersion)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid assessment id")
	}
	a, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "assessment not found")
	}
	return c.JSON(http.StatusOK, a)
}

type answerRequest struct {
	Answers []scoring.Answer `json:"answers"`
}

func (h *Handler) Answer(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid assessment id")
	}
	var req answerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	a, err := h.svc.Answer(c.Request().Context(), id, req.Answers)
	if err != nil {
		if errors.Is(err, ErrFrozen) {
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) Submit(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid assessment id")
	}
	a, result, failure, err := h.svc.Submit(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrAlreadySubmitted) {
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	if failure != nil {
		return c.JSON(http.StatusUnprocessableEntity, map[string]interface{}{
			"error":      "response set failed validation",
			"violations": failure.Violations,
		})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"assessment": a,
		"result":     result,
	})
}

func (h *Handler) Rescore(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid assessment id")
	}
	result, err := h.svc.Rescore(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotSubmitted) {
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	return c.JSON(http.StatusCreated, result)
}

func (h *Handler) Results(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid assessment id")
	}
	records, err := h.svc.Results(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, records)
}

func (h *Handler) Search(c echo.Context) error {
	pg := pagination.FromContext(c)
	params := map[string]string{}
	for _, key := range []string{"patient_ref", "template_id", "status"} {
		if v := c.QueryParam(key); v != "" {
			params[key] = v
		}
	}
	items, total, err := h.svc.Search(c.Request().Context(), params, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

package scale

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

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
	readGroup := api.Group("", auth.RequireRole("admin", "physician", "psychologist"))
	readGroup.GET("/scales", h.List)
	readGroup.GET("/scales/:id", h.GetLatest)
	readGroup.GET("/scales/:id/versions/:version", h.GetVersion)

	writeGroup := api.Group("", auth.RequireRole("admin"))
	writeGroup.POST("/scales", h.Publish)
}

func (h *Handler) Publish(c echo.Context) error {
	var t Template
	if err := c.Bind(&t); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	compiled, err := h.svc.Publish(c.Request().Context(), &t)
	if err != nil {
		if ie, ok := err.(*IntegrityError); ok {
			return c.JSON(http.StatusUnprocessableEntity, map[string]interface{}{
				"error":    "template integrity",
				"problems": ie.Problems,
			})
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, compiled.Template)
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	params := map[string]string{}
	if cat := c.QueryParam("category"); cat != "" {
		params["category"] = cat
	}
	if active := c.QueryParam("active"); active != "" {
		params["active"] = active
	}
	items, total, err := h.svc.List(c.Request().Context(), params, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) GetLatest(c echo.Context) error {
	compiled, err := h.svc.GetLatest(c.Request().Context(), c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "scale not found")
	}
	return c.JSON(http.StatusOK, compiled.Template)
}

func (h *Handler) GetVersion(c echo.Context) error {
	version, err := strconv.Atoi(c.Param("version"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid version")
	}
	compiled, err := h.svc.Get(c.Request().Context(), c.Param("id"), version)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "scale version not found")
	}
	return c.JSON(http.StatusOK, compiled.Template)
}

package growth

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/babytrack/babytrack/internal/platform/auth"
	"github.com/babytrack/babytrack/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/growth-measurements", h.Create)
	api.GET("/children/:id/growth-measurements", h.ListByChild)
	api.GET("/growth-measurements/:id", h.Get)
	api.DELETE("/growth-measurements/:id", h.Delete)
}

type measurementRequest struct {
	ChildID         uuid.UUID `json:"child_id"`
	MeasurementDate string    `json:"measurement_date"`
	WeightKG        float64   `json:"weight_kg"`
	LengthCM        float64   `json:"length_cm"`
	Notes           *string   `json:"notes,omitempty"`
}

func (h *Handler) Create(c echo.Context) error {
	var req measurementRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	date, err := time.Parse("2006-01-02", req.MeasurementDate)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "measurement_date must be YYYY-MM-DD")
	}

	ownerID := auth.UserIDFromContext(c.Request().Context())
	m, err := h.svc.Record(c.Request().Context(), ownerID, RecordInput{
		ChildID:         req.ChildID,
		MeasurementDate: date,
		WeightKG:        req.WeightKG,
		LengthCM:        req.LengthCM,
		Notes:           req.Notes,
	})
	if err != nil {
		if errors.Is(err, ErrChildNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "child not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, m)
}

func (h *Handler) ListByChild(c echo.Context) error {
	childID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid child id")
	}

	var ages AgeRange
	if raw := c.QueryParam("min_age"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid min_age")
		}
		ages.Min = &v
	}
	if raw := c.QueryParam("max_age"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid max_age")
		}
		ages.Max = &v
	}

	pg := pagination.FromContext(c)
	ownerID := auth.UserIDFromContext(c.Request().Context())
	items, total, err := h.svc.ListByChild(c.Request().Context(), ownerID, childID, ages, pg.Limit, pg.Offset)
	if err != nil {
		if errors.Is(err, ErrChildNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "child not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if items == nil {
		items = []*Measurement{}
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	ownerID := auth.UserIDFromContext(c.Request().Context())
	m, err := h.svc.Get(c.Request().Context(), ownerID, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "measurement not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, m)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	ownerID := auth.UserIDFromContext(c.Request().Context())
	if err := h.svc.Delete(c.Request().Context(), ownerID, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "measurement not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

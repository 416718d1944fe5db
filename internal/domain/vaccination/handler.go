package vaccination

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/babytrack/babytrack/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/children/:id/vaccination-schedule", h.GenerateSchedule)
	api.GET("/children/:id/vaccination-schedule", h.GetSchedule)
	api.POST("/vaccinations/:id/apply", h.MarkApplied)
	api.GET("/vaccination-calendar", h.GetCalendar)
}

func (h *Handler) GenerateSchedule(c echo.Context) error {
	childID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid child id")
	}

	ownerID := auth.UserIDFromContext(c.Request().Context())
	if err := h.svc.GenerateSchedule(c.Request().Context(), ownerID, childID); err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusCreated, map[string]string{"message": "vaccination schedule created"})
}

func (h *Handler) GetSchedule(c echo.Context) error {
	childID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid child id")
	}

	ownerID := auth.UserIDFromContext(c.Request().Context())
	result, err := h.svc.Schedule(c.Request().Context(), ownerID, childID)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, result)
}

type markAppliedRequest struct {
	CompletedDate string  `json:"completed_date"`
	Location      string  `json:"location"`
	Notes         *string `json:"notes,omitempty"`
}

func (h *Handler) MarkApplied(c echo.Context) error {
	doseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid dose id")
	}

	var req markAppliedRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	completedDate, err := time.Parse("2006-01-02", req.CompletedDate)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "completed_date must be YYYY-MM-DD")
	}

	ownerID := auth.UserIDFromContext(c.Request().Context())
	in := MarkAppliedInput{
		CompletedDate: completedDate,
		Location:      req.Location,
		Notes:         req.Notes,
	}
	if err := h.svc.MarkApplied(c.Request().Context(), ownerID, doseID, in); err != nil {
		if errors.Is(err, ErrInvalidInput) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return mapError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "dose marked as applied"})
}

func (h *Handler) GetCalendar(c echo.Context) error {
	definitions, err := h.svc.Calendar(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load vaccination calendar")
	}
	if definitions == nil {
		definitions = []*VaccineDefinition{}
	}
	return c.JSON(http.StatusOK, definitions)
}

// mapError translates domain sentinels into transport errors. Anything else
// is a storage failure.
func mapError(err error) error {
	switch {
	case errors.Is(err, ErrChildNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "child not found")
	case errors.Is(err, ErrDoseNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "scheduled dose not found")
	case errors.Is(err, ErrScheduleExists):
		return echo.NewHTTPError(http.StatusConflict, "vaccination schedule already exists")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "storage error, try again later")
	}
}

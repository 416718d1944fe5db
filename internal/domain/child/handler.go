package child

import (
	"errors"
	"net/http"
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
	api.POST("/children", h.Create)
	api.GET("/children", h.List)
	api.GET("/children/:id", h.Get)
	api.PUT("/children/:id", h.Update)
	api.DELETE("/children/:id", h.Delete)
}

type childRequest struct {
	Name                string  `json:"name"`
	BirthDate           string  `json:"birth_date"`
	BloodType           string  `json:"blood_type"`
	BirthPlace          string  `json:"birth_place"`
	FatherName          string  `json:"father_name"`
	MotherName          string  `json:"mother_name"`
	PaternalGrandfather *string `json:"paternal_grandfather,omitempty"`
	MaternalGrandmother *string `json:"maternal_grandmother,omitempty"`

	// Optional measurements at birth; when both are present the creation
	// seeds the child's first growth measurement.
	BirthWeightKG *float64 `json:"birth_weight_kg,omitempty"`
	BirthLengthCM *float64 `json:"birth_length_cm,omitempty"`
}

func (req *childRequest) birthMeasurement() *BirthMeasurement {
	if req.BirthWeightKG == nil || req.BirthLengthCM == nil {
		return nil
	}
	return &BirthMeasurement{WeightKG: *req.BirthWeightKG, LengthCM: *req.BirthLengthCM}
}

func (req *childRequest) toModel(ownerID string) (*Child, error) {
	birthDate, err := time.Parse("2006-01-02", req.BirthDate)
	if err != nil {
		return nil, errors.New("birth_date must be YYYY-MM-DD")
	}
	return &Child{
		OwnerID:             ownerID,
		Name:                req.Name,
		BirthDate:           birthDate,
		BloodType:           req.BloodType,
		BirthPlace:          req.BirthPlace,
		FatherName:          req.FatherName,
		MotherName:          req.MotherName,
		PaternalGrandfather: req.PaternalGrandfather,
		MaternalGrandmother: req.MaternalGrandmother,
	}, nil
}

func (h *Handler) Create(c echo.Context) error {
	var req childRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ownerID := auth.UserIDFromContext(c.Request().Context())
	ch, err := req.toModel(ownerID)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.Create(c.Request().Context(), ch, req.birthMeasurement()); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, ch)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	ownerID := auth.UserIDFromContext(c.Request().Context())
	ch, err := h.svc.Get(c.Request().Context(), ownerID, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "child not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, ch)
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	ownerID := auth.UserIDFromContext(c.Request().Context())

	items, total, err := h.svc.List(c.Request().Context(), ownerID, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if items == nil {
		items = []*Child{}
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var req childRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ownerID := auth.UserIDFromContext(c.Request().Context())
	ch, err := req.toModel(ownerID)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ch.ID = id

	if err := h.svc.Update(c.Request().Context(), ch); err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "child not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, ch)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	ownerID := auth.UserIDFromContext(c.Request().Context())
	if err := h.svc.Delete(c.Request().Context(), ownerID, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "child not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

package booking

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/careq/careq/internal/platform/auth"
	"github.com/careq/careq/pkg/pagination"
)

type Handler struct {
	svc       *Service
	lifecycle *Lifecycle
	queries   *Queries
}

func NewHandler(svc *Service, lifecycle *Lifecycle, queries *Queries) *Handler {
	return &Handler{svc: svc, lifecycle: lifecycle, queries: queries}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	// Patient-facing endpoints
	api.POST("/appointments", h.Book)
	api.GET("/appointments/availability", h.CheckAvailability)
	api.GET("/appointments/:id", h.Get)

	// Staff endpoints for dashboards and desk operations
	staff := api.Group("", auth.RequireRole("receptionist", "nurse"))
	staff.GET("/appointments", h.List)
	staff.POST("/appointments/:id/check-in", h.CheckIn)
	staff.POST("/appointments/:id/complete", h.Complete)
	staff.POST("/appointments/:id/cancel", h.Cancel)
	staff.POST("/appointments/:id/no-show", h.MarkNoShow)
}

func (h *Handler) Book(c echo.Context) error {
	var req BookRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	a, err := h.svc.Book(c.Request().Context(), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *Handler) CheckAvailability(c echo.Context) error {
	hospitalID, err := uuid.Parse(c.QueryParam("hospital_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid hospital_id")
	}
	doctorID, err := uuid.Parse(c.QueryParam("doctor_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid doctor_id")
	}
	date, err := time.Parse(DateLayout, c.QueryParam("date"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "date must be formatted as "+DateLayout)
	}
	av, err := h.svc.CheckAvailability(c.Request().Context(), hospitalID, doctorID, date)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, av)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	a, err := h.queries.Get(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *Handler) List(c echo.Context) error {
	var f ListFilter

	if v := c.QueryParam("hospital_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid hospital_id")
		}
		f.HospitalID = &id
	}
	if v := c.QueryParam("doctor_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid doctor_id")
		}
		f.DoctorID = &id
	}
	if v := c.QueryParam("date"); v != "" {
		d, err := time.Parse(DateLayout, v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "date must be formatted as "+DateLayout)
		}
		day := Day(d)
		f.Date = &day
	}
	f.PatientName = c.QueryParam("patient_name")
	if v := c.QueryParam("status"); v != "" {
		st := Status(v)
		f.Status = &st
	}

	pg := pagination.FromContext(c)
	items, total, err := h.queries.List(c.Request().Context(), f, pg.Limit, pg.Offset)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) CheckIn(c echo.Context) error {
	return h.transition(c, h.lifecycle.CheckIn)
}

func (h *Handler) Complete(c echo.Context) error {
	return h.transition(c, h.lifecycle.Complete)
}

func (h *Handler) Cancel(c echo.Context) error {
	return h.transition(c, h.lifecycle.Cancel)
}

func (h *Handler) MarkNoShow(c echo.Context) error {
	return h.transition(c, h.lifecycle.MarkNoShow)
}

func (h *Handler) transition(c echo.Context, op func(ctx context.Context, id uuid.UUID) (*Appointment, error)) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	a, err := op(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, a)
}

// httpError maps the engine's error kinds onto HTTP statuses.
func httpError(err error) error {
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return echo.NewHTTPError(http.StatusBadRequest, map[string]interface{}{
			"error":      "invalid request",
			"violations": vErr.Violations,
		})
	}
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrDoctorNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrCapacityExceeded):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, ErrInvalidTransition):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, ErrTooEarly):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, ErrPersistence):
		return echo.NewHTTPError(http.StatusInternalServerError, "storage failure")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}

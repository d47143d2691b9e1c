package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/parking-spot-reservation/internal/service"
)

// ReservationHandler serves the customer facing reservation endpoints.
type ReservationHandler struct {
	Lifecycle *service.Lifecycle
	Allocator *service.Allocator
	Stats     *service.OccupancyStats
	Calendar  service.Calendar
}

// NewReservationHandler constructs a ReservationHandler. All services are
// required.
func NewReservationHandler(l *service.Lifecycle, a *service.Allocator, s *service.OccupancyStats, cal service.Calendar) *ReservationHandler {
	if l == nil || a == nil || s == nil {
		panic("nil service passed to NewReservationHandler")
	}
	return &ReservationHandler{Lifecycle: l, Allocator: a, Stats: s, Calendar: cal}
}

// createReservationRequest carries a window on one day. Times are RFC3339
// instants or HH:MM wall clock times on date.
type createReservationRequest struct {
	Date      string `json:"date" validate:"required"`
	StartTime string `json:"start_time" validate:"required"`
	EndTime   string `json:"end_time" validate:"required"`
}

type window struct {
	date, start, end time.Time
}

// parseWindow resolves a date and two times against cal. Missing values
// are reported as validation errors by the service.
func parseWindow(cal service.Calendar, date, start, end string) (window, error) {
	var (
		w   window
		err error
	)
	if date == "" {
		return w, &service.ValidationError{Field: "date", Message: "is required"}
	}
	if w.date, err = cal.ParseDate(date); err != nil {
		return w, err
	}
	if start != "" {
		if w.start, err = cal.ParseTimeOn(w.date, start); err != nil {
			return w, &service.ValidationError{Field: "start_time", Message: "expected HH:MM or RFC3339"}
		}
	}
	if end != "" {
		if w.end, err = cal.ParseTimeOn(w.date, end); err != nil {
			return w, &service.ValidationError{Field: "end_time", Message: "expected HH:MM or RFC3339"}
		}
	}
	return w, nil
}

// Create handles POST /v1/reservations.
func (h *ReservationHandler) Create(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	var req createReservationRequest
	if err := bind(c, &req); err != nil {
		return writeError(c, err)
	}
	w, err := parseWindow(h.Calendar, req.Date, req.StartTime, req.EndTime)
	if err != nil {
		return writeError(c, err)
	}
	r, err := h.Lifecycle.CreateReservation(c.Request().Context(), userID, w.date, w.start, w.end)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, toReservation(h.Calendar, r))
}

// List handles GET /v1/reservations.
func (h *ReservationHandler) List(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	rs, err := h.Lifecycle.ListOwnerReservations(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}
	out := make([]reservationResponse, 0, len(rs))
	for _, r := range rs {
		out = append(out, toReservation(h.Calendar, r))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// Cancel handles DELETE /v1/reservations/:id. Only the owner may cancel,
// and only before the window starts.
func (h *ReservationHandler) Cancel(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	r, err := h.Lifecycle.CancelReservation(c.Request().Context(), id, userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message":     "reservation cancelled",
		"reservation": toReservation(h.Calendar, r),
	})
}

type availabilityResponse struct {
	Spot      spotResponse `json:"spot"`
	Available bool         `json:"available"`
}

// Availability handles GET /v1/spots/availability?date&start_time&end_time.
// Sundays yield an empty list.
func (h *ReservationHandler) Availability(c echo.Context) error {
	w, err := parseWindow(h.Calendar, c.QueryParam("date"), c.QueryParam("start_time"), c.QueryParam("end_time"))
	if err != nil {
		return writeError(c, err)
	}
	spots, err := h.Allocator.ListAvailableSpots(c.Request().Context(), w.date, w.start, w.end)
	if err != nil {
		return writeError(c, err)
	}
	out := make([]availabilityResponse, 0, len(spots))
	for _, s := range spots {
		out = append(out, availabilityResponse{Spot: toSpot(s.Spot), Available: s.Available})
	}
	return c.JSON(http.StatusOK, echo.Map{"date": h.Calendar.FormatDate(w.date), "items": out})
}

type hourlyResponse struct {
	Hour          int     `json:"hour"`
	Occupied      int     `json:"occupied"`
	Available     int     `json:"available"`
	OccupancyRate float64 `json:"occupancy_rate"`
}

// OccupancyStats handles GET /v1/occupancy-stats?date.
func (h *ReservationHandler) OccupancyStats(c echo.Context) error {
	raw := c.QueryParam("date")
	if raw == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date is required", "field": "date"})
	}
	day, err := h.Calendar.ParseDate(raw)
	if err != nil {
		return writeError(c, err)
	}
	stats, err := h.Stats.GetOccupancyStats(c.Request().Context(), day)
	if err != nil {
		return writeError(c, err)
	}
	out := make([]hourlyResponse, 0, len(stats))
	for _, s := range stats {
		out = append(out, hourlyResponse(s))
	}
	return c.JSON(http.StatusOK, echo.Map{"date": h.Calendar.FormatDate(day), "hours": out})
}

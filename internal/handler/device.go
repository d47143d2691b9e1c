package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/parking-spot-reservation/internal/service"
)

// DeviceHandler serves the entrance gate and presence sensor endpoints.
type DeviceHandler struct {
	Lifecycle  *service.Lifecycle
	Reconciler *service.Reconciler
	Calendar   service.Calendar
}

func NewDeviceHandler(l *service.Lifecycle, r *service.Reconciler, cal service.Calendar) *DeviceHandler {
	if l == nil || r == nil {
		panic("nil service passed to NewDeviceHandler")
	}
	return &DeviceHandler{Lifecycle: l, Reconciler: r, Calendar: cal}
}

type arrivalRequest struct {
	ReservationID uint64 `json:"reservation_id" validate:"required"`
}

// arrival writes an ArrivalResult. A reservation that is absent or
// terminal is a 404 with allowed=false.
func (h *DeviceHandler) arrival(c echo.Context, res service.ArrivalResult, message string) error {
	if res.Reservation == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found", "allowed": false})
	}
	body := echo.Map{"allowed": res.Allowed, "reservation": toReservation(h.Calendar, *res.Reservation)}
	if res.Allowed {
		body["message"] = message
	}
	return c.JSON(http.StatusOK, body)
}

// ConfirmArrival handles POST /v1/devices/arrivals/confirm.
func (h *DeviceHandler) ConfirmArrival(c echo.Context) error {
	var req arrivalRequest
	if err := bind(c, &req); err != nil {
		return writeError(c, err)
	}
	res, err := h.Lifecycle.ConfirmArrival(c.Request().Context(), req.ReservationID)
	if err != nil {
		return writeError(c, err)
	}
	return h.arrival(c, res, "reservation confirmed")
}

// CancelArrival handles POST /v1/devices/arrivals/cancel.
func (h *DeviceHandler) CancelArrival(c echo.Context) error {
	var req arrivalRequest
	if err := bind(c, &req); err != nil {
		return writeError(c, err)
	}
	res, err := h.Lifecycle.CancelExpiredArrival(c.Request().Context(), req.ReservationID)
	if err != nil {
		return writeError(c, err)
	}
	return h.arrival(c, res, "reservation cancelled")
}

type codeRequest struct {
	Code string `json:"code" validate:"required"`
}

// CheckCode handles POST /v1/devices/codes/check. The keypad gets back the
// spot of the code's active reservation.
func (h *DeviceHandler) CheckCode(c echo.Context) error {
	var req codeRequest
	if err := bind(c, &req); err != nil {
		return writeError(c, err)
	}
	spotID, err := h.Lifecycle.LookupByCode(c.Request().Context(), req.Code)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found", "allowed": false})
		}
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"allowed": true, "spot_id": spotID})
}

type occupancyRequest struct {
	SpotNumber int   `json:"spot_number" validate:"required,gt=0"`
	Occupied   *bool `json:"occupied" validate:"required"`
}

// ReportOccupancy handles POST /v1/devices/occupancy.
func (h *DeviceHandler) ReportOccupancy(c echo.Context) error {
	var req occupancyRequest
	if err := bind(c, &req); err != nil {
		return writeError(c, err)
	}
	res, err := h.Reconciler.ReportOccupancy(c.Request().Context(), service.OccupancyReport{
		SpotNumber: req.SpotNumber,
		Occupied:   req.Occupied,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"notifications":          toNotifications(res.Notifications),
		"count":                  res.Count,
		"current_reservation_id": res.CurrentReservationID,
		"next_reservation_id":    res.NextReservationID,
	})
}

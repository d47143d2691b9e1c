// Package handler implements the HTTP endpoints. Handlers translate
// requests into service calls and service errors into JSON responses of
// the form {"error": "..."}.
package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/parking-spot-reservation/internal/log"
	"github.com/iliyamo/parking-spot-reservation/internal/middleware"
	"github.com/iliyamo/parking-spot-reservation/internal/model"
	"github.com/iliyamo/parking-spot-reservation/internal/service"
)

// getUserID reads the JWT subject stored by middleware.JWTAuth. Numeric
// claims decode as float64.
func getUserID(c echo.Context) (uint64, error) {
	switch t := c.Get(middleware.CtxUserID).(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		if t > 0 {
			return uint64(t), nil
		}
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// parseID reads a positive numeric path parameter.
func parseID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	return id, err == nil && id > 0
}

func unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
}

// bind decodes and validates the request body into v. Failures come back
// as validation errors for writeError.
func bind(c echo.Context, v any) error {
	if err := c.Bind(v); err != nil {
		return &service.ValidationError{Message: "invalid request body"}
	}
	if err := c.Validate(v); err != nil {
		return &service.ValidationError{Message: err.Error()}
	}
	return nil
}

// writeError maps a service error onto a status code. Unknown errors are
// logged and reported as 500 without details.
func writeError(c echo.Context, err error) error {
	var (
		ve *service.ValidationError
		rv *service.RuleViolation
	)
	switch {
	case errors.As(err, &ve):
		body := echo.Map{"error": ve.Message}
		if ve.Field != "" {
			body["field"] = ve.Field
		}
		return c.JSON(http.StatusBadRequest, body)
	case errors.Is(err, service.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.As(err, &rv):
		status := http.StatusBadRequest
		if rv.Rule == service.RuleAlreadyStarted || rv.Rule == service.RuleAlreadyTerminal {
			status = http.StatusConflict
		}
		return c.JSON(status, echo.Map{"error": rv.Message, "rule": rv.Rule})
	}
	log.Error(c.Request().Context(), "request failed",
		log.Err("error", err))
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
}

type spotResponse struct {
	ID         uint64 `json:"id"`
	SpotNumber int    `json:"spot_number"`
	Name       string `json:"name"`
	Location   string `json:"location"`
}

func toSpot(sp model.ParkingSpot) spotResponse {
	return spotResponse{ID: sp.ID, SpotNumber: sp.SpotNumber, Name: sp.Name, Location: sp.Location}
}

type reservationResponse struct {
	ID              uint64        `json:"id"`
	OwnerID         uint64        `json:"owner_id"`
	Code            string        `json:"code"`
	SpotID          uint64        `json:"spot_id"`
	Spot            *spotResponse `json:"spot,omitempty"`
	ReservationDate string        `json:"reservation_date"`
	StartTime       time.Time     `json:"start_time"`
	EndTime         time.Time     `json:"end_time"`
	Status          string        `json:"status"`
	CreatedAt       time.Time     `json:"created_at"`
}

func toReservation(cal service.Calendar, r model.Reservation) reservationResponse {
	out := reservationResponse{
		ID:              r.ID,
		OwnerID:         r.OwnerID,
		Code:            r.Code,
		SpotID:          r.SpotID,
		ReservationDate: cal.FormatDate(r.ReservationDate),
		StartTime:       r.StartTime.UTC(),
		EndTime:         r.EndTime.UTC(),
		Status:          string(r.Status),
		CreatedAt:       r.CreatedAt.UTC(),
	}
	if r.Spot != nil {
		sp := toSpot(*r.Spot)
		out.Spot = &sp
	}
	return out
}

type notificationResponse struct {
	ID                   uint64    `json:"id"`
	Kind                 string    `json:"kind"`
	Title                string    `json:"title"`
	Message              string    `json:"message"`
	RelatedReservationID *uint64   `json:"related_reservation_id,omitempty"`
	RelatedSpotNumber    *int      `json:"related_spot_number,omitempty"`
	Read                 bool      `json:"read"`
	CreatedAt            time.Time `json:"created_at"`
	ExpiresAt            time.Time `json:"expires_at"`
}

func toNotification(n model.Notification) notificationResponse {
	return notificationResponse{
		ID:                   n.ID,
		Kind:                 string(n.Kind),
		Title:                n.Title,
		Message:              n.Message,
		RelatedReservationID: n.RelatedReservationID,
		RelatedSpotNumber:    n.RelatedSpotNumber,
		Read:                 n.Read,
		CreatedAt:            n.CreatedAt.UTC(),
		ExpiresAt:            n.ExpiresAt.UTC(),
	}
}

func toNotifications(ns []model.Notification) []notificationResponse {
	out := make([]notificationResponse, 0, len(ns))
	for _, n := range ns {
		out = append(out, toNotification(n))
	}
	return out
}

package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/parking-spot-reservation/internal/log"
	"github.com/iliyamo/parking-spot-reservation/internal/service"
)

// OperatorHandler serves the on-site staff endpoints. Routes are guarded
// by the OPERATOR role.
type OperatorHandler struct {
	Lifecycle *service.Lifecycle
	Sweeper   *service.Sweeper
	Calendar  service.Calendar
}

func NewOperatorHandler(l *service.Lifecycle, s *service.Sweeper, cal service.Calendar) *OperatorHandler {
	if l == nil || s == nil {
		panic("nil service passed to NewOperatorHandler")
	}
	return &OperatorHandler{Lifecycle: l, Sweeper: s, Calendar: cal}
}

// Cancel handles DELETE /v1/operator/reservations/:id. Unlike the
// customer route it skips the ownership check.
func (h *OperatorHandler) Cancel(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	ctx := c.Request().Context()
	r, err := h.Lifecycle.CancelReservationAsOperator(ctx, id)
	if err != nil {
		return writeError(c, err)
	}
	if operator, err := getUserID(c); err == nil {
		log.Info(ctx, "reservation cancelled by operator",
			log.ID("reservation_id", id), log.ID("operator_id", operator))
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message":     "reservation cancelled",
		"reservation": toReservation(h.Calendar, r),
	})
}

// Complete handles PUT /v1/operator/reservations/:id/complete. Absent or
// already terminal reservations report completed=false.
func (h *OperatorHandler) Complete(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	done, err := h.Lifecycle.MarkCompleted(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"reservation_id": id, "completed": done})
}

// Sweep handles POST /v1/operator/sweep, running the expiry sweep now.
func (h *OperatorHandler) Sweep(c echo.Context) error {
	n, err := h.Sweeper.CompleteExpired(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"completed": n})
}

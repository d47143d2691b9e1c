package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/parking-spot-reservation/internal/handler"
	"github.com/iliyamo/parking-spot-reservation/internal/middleware"
)

// RegisterDevice registers the gate and sensor endpoints under
// /v1/devices. Devices authenticate with a shared key instead of a JWT,
// and limiter throttles chatty sensors.
func RegisterDevice(e *echo.Echo, d *handler.DeviceHandler, deviceKeyHash string, limiter echo.MiddlewareFunc) {
	g := e.Group(
		"/v1/devices",
		middleware.DeviceKey(deviceKeyHash),
		limiter,
	)

	g.POST("/arrivals/confirm", d.ConfirmArrival)
	g.POST("/arrivals/cancel", d.CancelArrival)
	g.POST("/codes/check", d.CheckCode)
	g.POST("/occupancy", d.ReportOccupancy)
}

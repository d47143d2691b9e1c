package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/parking-spot-reservation/internal/handler"
	"github.com/iliyamo/parking-spot-reservation/internal/middleware"
	"github.com/iliyamo/parking-spot-reservation/internal/model"
)

// RegisterCustomer registers customer endpoints under /v1. All routes
// require a valid JWT with the CUSTOMER role. cache fronts the occupancy
// stats endpoint.
func RegisterCustomer(e *echo.Echo, r *handler.ReservationHandler, n *handler.NotificationHandler, jwtSecret string, cache echo.MiddlewareFunc) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleCustomer),
	)

	g.POST("/reservations", r.Create)
	g.GET("/reservations", r.List)
	g.DELETE("/reservations/:id", r.Cancel)
	g.GET("/spots/availability", r.Availability)
	g.GET("/occupancy-stats", r.OccupancyStats, cache)

	g.GET("/notifications", n.List)
	g.PUT("/notifications/read-all", n.MarkAllRead)
	g.PUT("/notifications/:id/read", n.MarkRead)
	g.DELETE("/notifications/:id", n.Delete)
}

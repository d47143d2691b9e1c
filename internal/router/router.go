// Package router registers the HTTP routes and their middleware.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/parking-spot-reservation/internal/handler"
)

// RegisterRoutes registers routes that do not require authentication.
// db may be nil, in which case the health check does not ping a database.
func RegisterRoutes(e *echo.Echo, db handler.Pinger) {
	e.GET("/healthz", handler.Health(db))
}

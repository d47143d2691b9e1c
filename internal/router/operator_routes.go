package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/parking-spot-reservation/internal/handler"
	"github.com/iliyamo/parking-spot-reservation/internal/middleware"
	"github.com/iliyamo/parking-spot-reservation/internal/model"
)

// RegisterOperator registers staff endpoints under /v1/operator. All
// routes require a valid JWT with the OPERATOR role.
func RegisterOperator(e *echo.Echo, o *handler.OperatorHandler, jwtSecret string) {
	g := e.Group(
		"/v1/operator",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleOperator),
	)

	g.DELETE("/reservations/:id", o.Cancel)
	g.PUT("/reservations/:id/complete", o.Complete)
	g.POST("/sweep", o.Sweep)
}

package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/parking-spot-reservation/internal/utils"
)

// HeaderDeviceKey carries the shared secret of gate and sensor devices.
const HeaderDeviceKey = "X-Device-Key"

// CtxDevice is set to true once a device key was verified.
const CtxDevice = "device"

// DeviceKey guards the device routes with a shared key compared against a
// bcrypt hash. An empty hash leaves the routes open, which is how sensors
// without provisioning push readings.
func DeviceKey(hash string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		if hash == "" {
			return next
		}
		return func(c echo.Context) error {
			key := c.Request().Header.Get(HeaderDeviceKey)
			if key == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing device key"})
			}
			if !utils.VerifyKey(hash, key) {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid device key"})
			}
			c.Set(CtxDevice, true)
			return next(c)
		}
	}
}

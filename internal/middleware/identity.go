package middleware

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// identity returns a key fragment naming the caller for rate limit and
// cache keys: the JWT subject when present, "device" for routes guarded by
// DeviceKey, and "anon" otherwise.
func identity(c echo.Context) string {
	switch v := c.Get(CtxUserID).(type) {
	case string:
		if v != "" {
			return v
		}
	case float64:
		return strconv.FormatUint(uint64(v), 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	}
	if ok, _ := c.Get(CtxDevice).(bool); ok {
		return "device"
	}
	return "anon"
}

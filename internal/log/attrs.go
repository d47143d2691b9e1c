package log

import (
	"log/slog"
	"time"
)

// Err returns an Attr for the given error value.
// A nil error is logged as the constant "no-error".
func Err(key string, value error) slog.Attr {
	if value == nil {
		return slog.String(key, "no-error")
	}
	return slog.String(key, value.Error())
}

// ID returns an Attr for a numeric identifier.
func ID(key string, id uint64) slog.Attr {
	return slog.Uint64(key, id)
}

// Time returns an Attr for t formatted as RFC3339 in UTC.
func Time(key string, t time.Time) slog.Attr {
	return slog.String(key, t.UTC().Format(time.RFC3339))
}

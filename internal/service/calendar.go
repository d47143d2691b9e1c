package service

import (
	"time"
)

// dateLayout is the wire format of a bare calendar date.
const dateLayout = "2006-01-02"

// Calendar maps instants to day buckets. Day buckets run from midnight to
// midnight in the calendar's location, which is UTC unless configured
// otherwise. All returned instants are in UTC.
type Calendar struct {
	loc *time.Location
}

// NewCalendar returns a Calendar for loc. A nil loc means UTC.
func NewCalendar(loc *time.Location) Calendar {
	if loc == nil {
		loc = time.UTC
	}
	return Calendar{loc: loc}
}

// Location returns the calendar's location.
func (c Calendar) Location() *time.Location {
	if c.loc == nil {
		return time.UTC
	}
	return c.loc
}

// Day returns the start of the day bucket containing t.
func (c Calendar) Day(t time.Time) time.Time {
	lt := t.In(c.Location())
	return time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, c.Location()).UTC()
}

// NextDay returns the start of the bucket following day.
func (c Calendar) NextDay(day time.Time) time.Time {
	lt := day.In(c.Location())
	return time.Date(lt.Year(), lt.Month(), lt.Day()+1, 0, 0, 0, 0, c.Location()).UTC()
}

// At returns the instant hour:00 on the bucket of day.
func (c Calendar) At(day time.Time, hour int) time.Time {
	lt := day.In(c.Location())
	return time.Date(lt.Year(), lt.Month(), lt.Day(), hour, 0, 0, 0, c.Location()).UTC()
}

// IsBlackout reports whether t falls on a day that takes no reservations.
func (c Calendar) IsBlackout(t time.Time) bool {
	return t.In(c.Location()).Weekday() == time.Sunday
}

// ParseDate accepts a bare date (2006-01-02), interpreted in the calendar's
// location, or an RFC3339 instant, and returns the start of its bucket.
func (c Calendar) ParseDate(s string) (time.Time, error) {
	if t, err := time.ParseInLocation(dateLayout, s, c.Location()); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, invalid("date", "expected YYYY-MM-DD or RFC3339")
	}
	return c.Day(t), nil
}

// ParseTimeOn accepts an RFC3339 instant, or a wall clock time (15:04) on
// the bucket of day.
func (c Calendar) ParseTimeOn(day time.Time, s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	hm, err := time.Parse("15:04", s)
	if err != nil {
		return time.Time{}, invalid("time", "expected HH:MM or RFC3339")
	}
	lt := day.In(c.Location())
	return time.Date(lt.Year(), lt.Month(), lt.Day(), hm.Hour(), hm.Minute(), 0, 0, c.Location()).UTC(), nil
}

// FormatDate renders the bucket of day as YYYY-MM-DD.
func (c Calendar) FormatDate(day time.Time) string {
	return day.In(c.Location()).Format(dateLayout)
}

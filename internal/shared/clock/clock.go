package clock

import (
	"fmt"
	"time"
)

const DefaultTimezone = "Asia/Manila"

// Clock supplies "now" in the organization's timezone. All attendance and
// payroll date arithmetic runs in that zone, never in UTC.
type Clock interface {
	Now() time.Time
	Location() *time.Location
}

type orgClock struct {
	loc *time.Location
}

// NewOrgClock loads the organization timezone. An empty name falls back to
// the default zone.
func NewOrgClock(tzName string) (Clock, error) {
	if tzName == "" {
		tzName = DefaultTimezone
	}
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		return nil, fmt.Errorf("load org timezone %q: %w", tzName, err)
	}
	return &orgClock{loc: loc}, nil
}

func (c *orgClock) Now() time.Time {
	return time.Now().In(c.loc)
}

func (c *orgClock) Location() *time.Location {
	return c.loc
}

// Fixed returns a clock pinned to one instant, for tests.
func Fixed(t time.Time) Clock {
	return &fixedClock{t: t}
}

type fixedClock struct {
	t time.Time
}

func (c *fixedClock) Now() time.Time {
	return c.t
}

func (c *fixedClock) Location() *time.Location {
	return c.t.Location()
}

// DateOf truncates an instant to midnight in its own location.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

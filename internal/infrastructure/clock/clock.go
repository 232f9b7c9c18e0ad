package clock

import "time"

// SystemClock implements port.Clock. The business date is the UTC calendar
// day, optionally shifted so that late-evening cutoffs in other timezones
// still book on the intended servicing day.
type SystemClock struct {
	offset time.Duration
}

// NewSystemClock creates a clock with the given business-date offset.
func NewSystemClock(offsetHours int) *SystemClock {
	return &SystemClock{offset: time.Duration(offsetHours) * time.Hour}
}

func (c *SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// BusinessDate truncates the shifted wall clock to midnight UTC.
func (c *SystemClock) BusinessDate() time.Time {
	return c.Now().Add(c.offset).Truncate(24 * time.Hour)
}

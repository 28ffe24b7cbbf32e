package service

import (
	"time"

	"github.com/spf13/viper"
)

// Clock owns every instant-vs-calendar decision in the core. Storage and
// comparison always happen in UTC; the configured local zone influences
// exactly one thing, the end-of-day clamp on multi-day link expiries.
type Clock struct {
	Zone *time.Location
}

func NewClock() (*Clock, error) {
	zone, err := time.LoadLocation(viper.GetString("storage.local_zone"))
	if err != nil {
		return nil, err
	}

	return &Clock{Zone: zone}, nil
}

// ExpiryFor computes when a public link of the given duration class runs
// out, starting from now.
//
// The one hour class is an exact instant: now + 1h. Every other class is
// calendar based: now + hours/24 days, with the time of day forced to
// 23:59:59 in the local zone before converting back to UTC. Two renewals
// minutes apart can therefore land on the same expiry, which is intended:
// "3 days" means "until the end of the third day", not 72h of wall time.
func (c *Clock) ExpiryFor(durationHours int, now time.Time) time.Time {
	now = now.UTC()

	if durationHours == 1 {
		return now.Add(time.Hour)
	}

	days := durationHours / 24

	local := now.In(c.Zone).AddDate(0, 0, days)
	end := time.Date(local.Year(), local.Month(), local.Day(), 23, 59, 59, 0, c.Zone)

	return end.UTC()
}

// Expired reports whether a link with the given expiry is no longer valid
// at now. The boundary instant itself is already expired.
func Expired(expiresAt, now time.Time) bool {
	return !now.UTC().Before(expiresAt.UTC())
}

package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestExpiryForDayClasses(t *testing.T) {
	clock := utcClock()
	now := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		hours int
		want  time.Time
	}{
		{24, time.Date(2024, 1, 2, 23, 59, 59, 0, time.UTC)},
		{72, time.Date(2024, 1, 4, 23, 59, 59, 0, time.UTC)},
		{168, time.Date(2024, 1, 8, 23, 59, 59, 0, time.UTC)},
		{720, time.Date(2024, 1, 31, 23, 59, 59, 0, time.UTC)},
		// Unlisted values fall back to hours/24 full days
		{48, time.Date(2024, 1, 3, 23, 59, 59, 0, time.UTC)},
		// Sub-day values other than 1 resolve to the end of the current day
		{2, time.Date(2024, 1, 1, 23, 59, 59, 0, time.UTC)},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, clock.ExpiryFor(tt.hours, now), "hours=%d", tt.hours)
	}
}

func TestExpiryForOneHourIsExact(t *testing.T) {
	clock := utcClock()
	now := time.Date(2024, 6, 15, 11, 22, 33, 0, time.UTC)

	assert.Equal(t, now.Add(time.Hour), clock.ExpiryFor(1, now))
}

func TestExpiryForUsesLocalZoneDayBoundary(t *testing.T) {
	clock := &Clock{Zone: time.FixedZone("UTC+2", 2*3600)}

	// 23:00Z is already the next calendar day in UTC+2, so the 24h class
	// lands on the end of Jan 3 local, which is 21:59:59Z
	now := time.Date(2024, 1, 1, 23, 0, 0, 0, time.UTC)

	assert.Equal(t,
		time.Date(2024, 1, 3, 21, 59, 59, 0, time.UTC),
		clock.ExpiryFor(24, now))
}

func TestExpiryForSameDayRenewalsAgree(t *testing.T) {
	clock := utcClock()

	a := clock.ExpiryFor(72, time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC))
	b := clock.ExpiryFor(72, time.Date(2024, 3, 10, 9, 45, 0, 0, time.UTC))

	assert.Equal(t, a, b)
}

func TestExpiredBoundaryIsExclusive(t *testing.T) {
	expiry := time.Date(2024, 1, 2, 23, 59, 59, 0, time.UTC)

	assert.True(t, Expired(expiry, expiry), "the boundary instant itself is expired")
	assert.False(t, Expired(expiry, expiry.Add(-time.Second)))
	assert.True(t, Expired(expiry, expiry.Add(time.Second)))
}

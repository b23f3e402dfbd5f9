package ratelimit_test

import (
	"context"
	"testing"
	"time"

	"busline/pkg/ratelimit"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		path string
		want ratelimit.Class
	}{
		{"/health", ratelimit.ClassHealth},
		{"/ping", ratelimit.ClassHealth},
		{"/api/v1/analytics/routes", ratelimit.ClassAnalytics},
		{"/api/v1/auth/login", ratelimit.ClassAuth},
		{"/api/v1/payments", ratelimit.ClassBookingCritical},
		{"/api/v1/trips/:tripId/seats", ratelimit.ClassBookingCritical},
		{"/api/v1/bookings/:bookingId/cancel", ratelimit.ClassBookingCritical},
		{"/api/v1/bookings", ratelimit.ClassBooking},
		{"/api/v1/tickets/booking/:bookingId", ratelimit.ClassBooking},
		{"/api/v1/trips/search", ratelimit.ClassPublic},
		{"/api/v1/routes", ratelimit.ClassPublic},
		{"/swagger/*any", ratelimit.ClassDefault},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, ratelimit.Classify(tc.path), "path %s", tc.path)
	}
}

func TestAllow_DisabledLimiterNeverBlocks(t *testing.T) {
	limiter := ratelimit.NewLimiter(nil, &ratelimit.Config{
		Enabled:         false,
		WindowDuration:  time.Minute,
		BookingRequests: 60,
	})

	result, err := limiter.Allow(context.Background(), "203.0.113.9", ratelimit.ClassBooking)

	assert.NoError(t, err)
	if assert.NotNil(t, result) {
		assert.True(t, result.Allowed)
		assert.Equal(t, 60, result.Limit)
		assert.Equal(t, 60, result.Remaining)
	}
}

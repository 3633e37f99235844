package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestParseStatus verifies known statuses pass through and everything else
// maps to unknown.
func TestParseStatus(t *testing.T) {
	tests := []struct {
		raw  string
		want Status
	}{
		{"pending", StatusPending},
		{"in_transit", StatusInTransit},
		{"out_for_delivery", StatusOutForDelivery},
		{"delivered", StatusDelivered},
		{"exception", StatusException},
		{"unknown", StatusUnknown},
		{"", StatusUnknown},
		{"NotApplicable", StatusUnknown},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseStatus(tt.raw), "raw=%q", tt.raw)
	}
}

// TestStatus_Terminal verifies only delivered and exception end the lifecycle.
func TestStatus_Terminal(t *testing.T) {
	assert.True(t, StatusDelivered.Terminal())
	assert.True(t, StatusException.Terminal())

	assert.False(t, StatusPending.Terminal())
	assert.False(t, StatusInTransit.Terminal())
	assert.False(t, StatusOutForDelivery.Terminal())
	assert.False(t, StatusUnknown.Terminal())
}

// TestNextStatus verifies the terminal-state guard.
func TestNextStatus(t *testing.T) {
	tests := []struct {
		name     string
		current  Status
		incoming Status
		want     Status
	}{
		{"normal progress", StatusPending, StatusInTransit, StatusInTransit},
		{"out for delivery", StatusInTransit, StatusOutForDelivery, StatusOutForDelivery},
		{"delivery", StatusOutForDelivery, StatusDelivered, StatusDelivered},
		{"stale response cannot reopen delivered", StatusDelivered, StatusInTransit, StatusDelivered},
		{"stale response cannot reopen exception", StatusException, StatusPending, StatusException},
		{"terminal to terminal is allowed", StatusDelivered, StatusException, StatusException},
		{"unknown does not regress delivered", StatusDelivered, StatusUnknown, StatusDelivered},
		{"non-terminal regression is allowed", StatusOutForDelivery, StatusInTransit, StatusInTransit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NextStatus(tt.current, tt.incoming))
		})
	}
}

// TestParseEventTime verifies the carrier time formats and the nil fallback.
func TestParseEventTime(t *testing.T) {
	ts := ParseEventTime("2024-03-01T08:30:00Z")
	require.NotNil(t, ts)
	assert.Equal(t, time.Date(2024, 3, 1, 8, 30, 0, 0, time.UTC), *ts)

	ts = ParseEventTime("2024-03-01 08:30:00")
	require.NotNil(t, ts)
	assert.Equal(t, time.Date(2024, 3, 1, 8, 30, 0, 0, time.UTC), *ts)

	assert.Nil(t, ParseEventTime(""))
	assert.Nil(t, ParseEventTime("yesterday-ish"))
}

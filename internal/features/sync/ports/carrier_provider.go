package ports

import (
	"context"
	"errors"
)

var (
	// ErrCarrierUnavailable is returned when the aggregation API cannot be
	// reached, times out, or answers with a non-2xx status.
	ErrCarrierUnavailable = errors.New("carrier API unavailable")
	// ErrMalformedResponse is returned when the aggregation API response
	// cannot be decoded.
	ErrMalformedResponse = errors.New("malformed carrier response")
)

// TrackingEvent is one carrier-reported ledger entry, times as reported.
type TrackingEvent struct {
	Time        string `json:"time"`
	Location    string `json:"location"`
	Description string `json:"description"`
}

// TrackingInfo is the carrier-reported state for one tracking number.
type TrackingInfo struct {
	Status string          `json:"status"`
	Events []TrackingEvent `json:"events"`
}

// CarrierProvider defines the interface to the carrier-aggregation API.
type CarrierProvider interface {
	// Query fetches status and events for a batch of tracking numbers.
	// Numbers the carrier has nothing for are simply absent from the result.
	// The call is all-or-nothing: on any transport or decode failure no
	// partial data is returned.
	Query(ctx context.Context, numbers []string) (map[string]TrackingInfo, error)

	// HealthCheck verifies the API is reachable and credentials are accepted.
	HealthCheck(ctx context.Context) error
}

package adapters

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"package-tracker/internal/core/cache"
	"package-tracker/internal/core/config"
	"package-tracker/internal/features/sync/ports"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func carrierConfig(url string) config.CarrierConfig {
	return config.CarrierConfig{
		APIKey:         "key_test",
		APIURL:         url,
		TimeoutSeconds: 2,
	}
}

// TestTrack17Adapter_Query_Success verifies request shape and response mapping.
func TestTrack17Adapter_Query_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/getpackageinfo", r.URL.Path)
		assert.Equal(t, "key_test", r.Header.Get("APIKey"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		var req map[string][]string
		require.NoError(t, json.Unmarshal(body, &req))
		assert.Equal(t, []string{"1Z999AA1", "XYZ"}, req["number"])

		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{
			"data": {
				"1Z999AA1": {
					"status": "in_transit",
					"events": [
						{"time": "2024-03-01T08:00:00Z", "location": "Memphis", "description": "Departed facility"}
					]
				}
			}
		}`))
	}))
	defer server.Close()

	adapter := NewTrack17Adapter(carrierConfig(server.URL), nil, 0)

	result, err := adapter.Query(context.Background(), []string{"1Z999AA1", "XYZ"})
	require.NoError(t, err)

	require.Len(t, result, 1)
	info, ok := result["1Z999AA1"]
	require.True(t, ok)
	assert.Equal(t, "in_transit", info.Status)
	require.Len(t, info.Events, 1)
	assert.Equal(t, "Memphis", info.Events[0].Location)
}

// TestTrack17Adapter_Query_ServerError verifies non-2xx maps to the
// transport sentinel.
func TestTrack17Adapter_Query_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	adapter := NewTrack17Adapter(carrierConfig(server.URL), nil, 0)

	_, err := adapter.Query(context.Background(), []string{"A"})
	assert.ErrorIs(t, err, ports.ErrCarrierUnavailable)
}

// TestTrack17Adapter_Query_MalformedBody verifies bad JSON maps to the
// decode sentinel.
func TestTrack17Adapter_Query_MalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"data": not-json`))
	}))
	defer server.Close()

	adapter := NewTrack17Adapter(carrierConfig(server.URL), nil, 0)

	_, err := adapter.Query(context.Background(), []string{"A"})
	assert.ErrorIs(t, err, ports.ErrMalformedResponse)
}

// TestTrack17Adapter_Query_Unreachable verifies connection failures map to
// the transport sentinel.
func TestTrack17Adapter_Query_Unreachable(t *testing.T) {
	adapter := NewTrack17Adapter(carrierConfig("http://127.0.0.1:1"), nil, 0)

	_, err := adapter.Query(context.Background(), []string{"A"})
	assert.ErrorIs(t, err, ports.ErrCarrierUnavailable)
}

// TestTrack17Adapter_Query_CacheHit verifies an identical batch within the
// TTL is served from the cache without touching the API.
func TestTrack17Adapter_Query_CacheHit(t *testing.T) {
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"data": {"A": {"status": "delivered", "events": []}}}`))
	}))
	defer server.Close()

	mr := miniredis.RunT(t)
	defer mr.Close()
	redisCache, err := cache.NewRedisAdapter("redis://" + mr.Addr())
	require.NoError(t, err)
	defer redisCache.Close()

	adapter := NewTrack17Adapter(carrierConfig(server.URL), redisCache, time.Minute)
	ctx := context.Background()

	first, err := adapter.Query(ctx, []string{"A"})
	require.NoError(t, err)
	second, err := adapter.Query(ctx, []string{"A"})
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int64(1), calls.Load())
}

// TestTrack17Adapter_HealthCheck verifies the reachability probe.
func TestTrack17Adapter_HealthCheck(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "key_test", r.Header.Get("APIKey"))
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"data": {}}`))
	}))
	defer server.Close()

	adapter := NewTrack17Adapter(carrierConfig(server.URL), nil, 0)
	assert.NoError(t, adapter.HealthCheck(context.Background()))

	bad := NewTrack17Adapter(carrierConfig("http://127.0.0.1:1"), nil, 0)
	assert.Error(t, bad.HealthCheck(context.Background()))
}

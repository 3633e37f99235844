package adapters

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"package-tracker/internal/core/cache"
	"package-tracker/internal/core/config"
	"package-tracker/internal/core/httpclient"
	"package-tracker/internal/core/logger"
	"package-tracker/internal/features/sync/ports"

	"go.uber.org/zap"
)

// Track17Adapter implements the CarrierProvider interface using the 17track
// aggregation API.
type Track17Adapter struct {
	// client is the HTTP client used for API requests.
	client *http.Client
	// config holds the 17track connection details.
	config config.CarrierConfig
	// responseCache, when non-nil, holds recent batch responses to protect
	// the API request quota. Never consulted on correctness-critical paths
	// beyond serving an identical batch within the TTL.
	responseCache cache.Cache
	cacheTTL      time.Duration
	logger        *zap.Logger
}

// NewTrack17Adapter creates a new instance of Track17Adapter. responseCache
// may be nil to disable caching; a cacheTTL of 0 disables it as well.
func NewTrack17Adapter(cfg config.CarrierConfig, responseCache cache.Cache, cacheTTL time.Duration) *Track17Adapter {
	return &Track17Adapter{
		client:        httpclient.NewClient(time.Duration(cfg.TimeoutSeconds) * time.Second),
		config:        cfg,
		responseCache: responseCache,
		cacheTTL:      cacheTTL,
		logger:        logger.Get(),
	}
}

// track17Response represents the JSON structure from the 17track API.
type track17Response struct {
	Data map[string]struct {
		Status string `json:"status"`
		Events []struct {
			Time        string `json:"time"`
			Location    string `json:"location"`
			Description string `json:"description"`
		} `json:"events"`
	} `json:"data"`
}

// Query fetches status and events for the given numbers in one batched call.
func (a *Track17Adapter) Query(ctx context.Context, numbers []string) (map[string]ports.TrackingInfo, error) {
	cacheKey := a.cacheKey(numbers)
	if cached := a.fromCache(ctx, cacheKey); cached != nil {
		return cached, nil
	}

	payload, err := json.Marshal(map[string][]string{"number": numbers})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	url := fmt.Sprintf("%s/getpackageinfo", a.config.APIURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("APIKey", a.config.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ports.ErrCarrierUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ports.ErrCarrierUnavailable, resp.StatusCode)
	}

	var apiResp track17Response
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("%w: %s", ports.ErrMalformedResponse, err)
	}

	result := make(map[string]ports.TrackingInfo, len(apiResp.Data))
	for number, info := range apiResp.Data {
		events := make([]ports.TrackingEvent, 0, len(info.Events))
		for _, ev := range info.Events {
			events = append(events, ports.TrackingEvent{
				Time:        ev.Time,
				Location:    ev.Location,
				Description: ev.Description,
			})
		}
		result[number] = ports.TrackingInfo{Status: info.Status, Events: events}
	}

	a.toCache(ctx, cacheKey, result)

	return result, nil
}

// HealthCheck verifies that the 17track API is reachable and the key is accepted.
func (a *Track17Adapter) HealthCheck(ctx context.Context) error {
	url := fmt.Sprintf("%s/getpackageinfo", a.config.APIURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(`{"number":[]}`))
	if err != nil {
		return fmt.Errorf("health check failed to create request: %w", err)
	}
	req.Header.Set("APIKey", a.config.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("health check request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check failed with status: %d", resp.StatusCode)
	}

	return nil
}

func (a *Track17Adapter) cacheKey(numbers []string) string {
	sorted := make([]string, len(numbers))
	copy(sorted, numbers)
	sort.Strings(sorted)

	sum := sha256.Sum256([]byte(strings.Join(sorted, ",")))
	return "carrier:batch:" + hex.EncodeToString(sum[:])
}

func (a *Track17Adapter) fromCache(ctx context.Context, key string) map[string]ports.TrackingInfo {
	if a.responseCache == nil || a.cacheTTL <= 0 {
		return nil
	}

	data, err := a.responseCache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			a.logger.Warn("Carrier cache read failed", zap.Error(err))
		}
		return nil
	}

	var result map[string]ports.TrackingInfo
	if err := json.Unmarshal(data, &result); err != nil {
		a.logger.Warn("Carrier cache entry unreadable", zap.Error(err))
		return nil
	}
	return result
}

func (a *Track17Adapter) toCache(ctx context.Context, key string, result map[string]ports.TrackingInfo) {
	if a.responseCache == nil || a.cacheTTL <= 0 {
		return
	}

	data, err := json.Marshal(result)
	if err != nil {
		return
	}
	if err := a.responseCache.Set(ctx, key, data, a.cacheTTL); err != nil {
		a.logger.Warn("Carrier cache write failed", zap.Error(err))
	}
}

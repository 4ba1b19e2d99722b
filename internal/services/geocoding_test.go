package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/relieflink/disaster-response-api/pkg/geocode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	name   string
	result *geocode.Result
	err    error
	calls  int
}

func (p *stubProvider) Name() string { return p.name }

func (p *stubProvider) Resolve(_ context.Context, _ string) (*geocode.Result, error) {
	p.calls++
	return p.result, p.err
}

func newTestChain(providers ...geocode.Provider) (*GeocodingService, *MemoryCache) {
	cache := NewMemoryCache(clockwork.NewFakeClock())
	return NewGeocodingChain(cache, time.Second, time.Hour, providers...), cache
}

func TestGeocode_FirstProviderWins(t *testing.T) {
	primary := &stubProvider{name: "google", result: &geocode.Result{Lat: 40.7, Lng: -74.0, Source: "google"}}
	secondary := &stubProvider{name: "mapbox", result: &geocode.Result{Lat: 1, Lng: 1, Source: "mapbox"}}
	svc, _ := newTestChain(primary, secondary)

	result := svc.Geocode(context.Background(), "Manhattan")
	require.NotNil(t, result)
	assert.Equal(t, "google", result.Source)
	assert.Zero(t, secondary.calls)
}

func TestGeocode_FallsBackOnError(t *testing.T) {
	primary := &stubProvider{name: "google", err: errors.New("quota exceeded")}
	secondary := &stubProvider{name: "mapbox", result: &geocode.Result{Lat: 40.7, Lng: -74.0, Source: "mapbox"}}
	svc, _ := newTestChain(primary, secondary)

	result := svc.Geocode(context.Background(), "Manhattan")
	require.NotNil(t, result)
	assert.Equal(t, "mapbox", result.Source)
	assert.Equal(t, 1, primary.calls)
}

func TestGeocode_FallsBackOnNoMatch(t *testing.T) {
	primary := &stubProvider{name: "google"} // nil result, nil error
	secondary := &stubProvider{name: "osm", result: &geocode.Result{Lat: 40.7, Lng: -74.0, Source: "osm"}}
	svc, _ := newTestChain(primary, secondary)

	result := svc.Geocode(context.Background(), "Manhattan")
	require.NotNil(t, result)
	assert.Equal(t, "osm", result.Source)
}

func TestGeocode_AllProvidersFail(t *testing.T) {
	primary := &stubProvider{name: "google", err: errors.New("down")}
	secondary := &stubProvider{name: "osm", err: errors.New("down")}
	svc, cache := newTestChain(primary, secondary)

	result := svc.Geocode(context.Background(), "Manhattan")
	assert.Nil(t, result)

	// A failed lookup is never cached.
	_, ok := cache.Get(context.Background(), "geocode:Manhattan")
	assert.False(t, ok)
}

func TestGeocode_EmptyInput(t *testing.T) {
	provider := &stubProvider{name: "google", result: &geocode.Result{Lat: 1, Lng: 1}}
	svc, _ := newTestChain(provider)

	assert.Nil(t, svc.Geocode(context.Background(), ""))
	assert.Nil(t, svc.Geocode(context.Background(), "   "))
	assert.Zero(t, provider.calls, "empty input short-circuits before any provider call")
}

func TestGeocode_CachesSuccess(t *testing.T) {
	provider := &stubProvider{name: "google", result: &geocode.Result{Lat: 40.7, Lng: -74.0, Source: "google"}}
	svc, _ := newTestChain(provider)

	first := svc.Geocode(context.Background(), "Manhattan")
	second := svc.Geocode(context.Background(), "Manhattan")

	require.NotNil(t, first)
	require.NotNil(t, second)
	assert.Equal(t, first.Lat, second.Lat)
	assert.Equal(t, 1, provider.calls, "second lookup must come from cache")
}

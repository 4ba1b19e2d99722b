package services

import (
	"context"
	"strings"
	"time"

	"github.com/relieflink/disaster-response-api/internal/config"
	"github.com/relieflink/disaster-response-api/internal/geo"
	"github.com/relieflink/disaster-response-api/internal/logger"
	"github.com/relieflink/disaster-response-api/pkg/geocode"
)

// GeocodingService resolves location names through an ordered provider
// chain with cached results.
type GeocodingService struct {
	cache     Cache
	providers []geocode.Provider
	timeout   time.Duration
	cacheTTL  time.Duration
}

// NewGeocodingService builds the fallback chain from configuration:
// Google and Mapbox only when their credentials are set, Nominatim always
// as the free tertiary.
func NewGeocodingService(cfg *config.Config, cache Cache) *GeocodingService {
	var providers []geocode.Provider
	if cfg.GoogleMapsAPIKey != "" {
		providers = append(providers, geocode.NewGoogleClient(cfg.GoogleMapsAPIKey, cfg.GeocodeTimeout))
	}
	if cfg.MapboxAccessToken != "" {
		providers = append(providers, geocode.NewMapboxClient(cfg.MapboxAccessToken, cfg.GeocodeTimeout))
	}
	providers = append(providers, geocode.NewNominatimClient(cfg.NominatimBaseURL, cfg.GeocodeTimeout))

	return &GeocodingService{
		cache:     cache,
		providers: providers,
		timeout:   cfg.GeocodeTimeout,
		cacheTTL:  cfg.GeocodeCacheTTL,
	}
}

// NewGeocodingChain wires an explicit provider list; used by tests and by
// callers that need a custom chain.
func NewGeocodingChain(cache Cache, timeout, cacheTTL time.Duration, providers ...geocode.Provider) *GeocodingService {
	return &GeocodingService{
		cache:     cache,
		providers: providers,
		timeout:   timeout,
		cacheTTL:  cacheTTL,
	}
}

// Geocode resolves a location name to coordinates. Providers are tried in
// order with independent timeouts; each failure is logged and swallowed.
// A nil result means no provider had a match - that is not an error, and
// nothing is cached for it.
func (s *GeocodingService) Geocode(ctx context.Context, locationName string) *geocode.Result {
	log := logger.GetLogger("geocoding")

	locationName = strings.TrimSpace(locationName)
	if locationName == "" {
		return nil
	}

	cacheKey := geo.CacheKey("geocode", locationName)
	var cached geocode.Result
	if cacheGet(ctx, s.cache, cacheKey, &cached) {
		return &cached
	}

	for _, provider := range s.providers {
		callCtx, cancel := context.WithTimeout(ctx, s.timeout)
		result, err := provider.Resolve(callCtx, locationName)
		cancel()

		if err != nil {
			log.Warnf("%s geocoding error: %v", provider.Name(), err)
			continue
		}
		if result == nil {
			continue
		}

		s.cache.Set(ctx, cacheKey, result, s.cacheTTL)
		log.Infof("geocoded %q -> %f, %f via %s", locationName, result.Lat, result.Lng, result.Source)
		return result
	}

	return nil
}

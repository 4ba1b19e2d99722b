package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

const nominatimUserAgent = "DisasterResponseAPI/1.0"

// NominatimClient implements Provider using the public OSM Nominatim API.
// Nominatim's usage policy allows one request per second, enforced here
// with a rate limiter. Coordinates arrive as strings and are validated
// before acceptance.
type NominatimClient struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

func NewNominatimClient(baseURL string, timeout time.Duration) *NominatimClient {
	if baseURL == "" {
		baseURL = "https://nominatim.openstreetmap.org"
	}
	return &NominatimClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		limiter: rate.NewLimiter(rate.Every(time.Second), 1),
	}
}

func (c *NominatimClient) Name() string {
	return SourceOSM
}

func (c *NominatimClient) Resolve(ctx context.Context, location string) (*Result, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	params := url.Values{
		"q":      {location},
		"format": {"json"},
		"limit":  {"1"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", nominatimUserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("nominatim geocode request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("nominatim API error: status %d", resp.StatusCode)
	}

	var body []nominatimPlace
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if len(body) == 0 {
		return nil, nil
	}

	lat, err := strconv.ParseFloat(body[0].Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("parse lat %q: %w", body[0].Lat, err)
	}
	lng, err := strconv.ParseFloat(body[0].Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("parse lon %q: %w", body[0].Lon, err)
	}
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return nil, fmt.Errorf("coordinates out of range: %f, %f", lat, lng)
	}

	return &Result{
		Lat:              lat,
		Lng:              lng,
		FormattedAddress: body[0].DisplayName,
		Source:           SourceOSM,
	}, nil
}

type nominatimPlace struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

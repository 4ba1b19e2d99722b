package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// MapboxClient implements Provider using the Mapbox Geocoding API.
type MapboxClient struct {
	token      string
	httpClient *http.Client
	baseURL    string
}

func NewMapboxClient(token string, timeout time.Duration) *MapboxClient {
	return &MapboxClient{
		token: token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: "https://api.mapbox.com/geocoding/v5/mapbox.places",
	}
}

func (c *MapboxClient) Name() string {
	return SourceMapbox
}

func (c *MapboxClient) Resolve(ctx context.Context, location string) (*Result, error) {
	u := fmt.Sprintf("%s/%s.json", c.baseURL, url.PathEscape(location))
	params := url.Values{
		"access_token": {c.token},
		"limit":        {"1"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("mapbox geocode request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("mapbox API error: status %d", resp.StatusCode)
	}

	var body mapboxResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if len(body.Features) == 0 {
		return nil, nil
	}

	f := body.Features[0]
	if len(f.Center) != 2 {
		return nil, nil
	}

	// Mapbox uses lng,lat order.
	return &Result{
		Lat:              f.Center[1],
		Lng:              f.Center[0],
		FormattedAddress: f.PlaceName,
		Source:           SourceMapbox,
	}, nil
}

type mapboxResponse struct {
	Features []struct {
		Center    []float64 `json:"center"` // [lng, lat]
		PlaceName string    `json:"place_name"`
	} `json:"features"`
}

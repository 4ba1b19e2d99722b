package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// GoogleClient implements Provider using the Google Maps Geocoding API.
type GoogleClient struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
}

func NewGoogleClient(apiKey string, timeout time.Duration) *GoogleClient {
	return &GoogleClient{
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: "https://maps.googleapis.com/maps/api/geocode/json",
	}
}

func (c *GoogleClient) Name() string {
	return SourceGoogle
}

func (c *GoogleClient) Resolve(ctx context.Context, location string) (*Result, error) {
	params := url.Values{
		"address": {location},
		"key":     {c.apiKey},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("google geocode request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google API error: status %d", resp.StatusCode)
	}

	var body googleResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if len(body.Results) == 0 {
		return nil, nil
	}

	first := body.Results[0]
	return &Result{
		Lat:              first.Geometry.Location.Lat,
		Lng:              first.Geometry.Location.Lng,
		FormattedAddress: first.FormattedAddress,
		Source:           SourceGoogle,
	}, nil
}

type googleResponse struct {
	Results []struct {
		FormattedAddress string `json:"formatted_address"`
		Geometry         struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

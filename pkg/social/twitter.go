// Package social contains the external social-media provider client.
package social

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Post is one social-media post as returned by a provider. Priority is
// left empty by providers; the ranker derives it from content.
type Post struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	User      string    `json:"user"`
	Timestamp time.Time `json:"timestamp"`
	Priority  string    `json:"priority,omitempty"`
}

// TwitterClient searches recent tweets through the Twitter API v2
// recent-search endpoint with bearer-token auth.
type TwitterClient struct {
	bearerToken string
	httpClient  *http.Client
	baseURL     string
}

func NewTwitterClient(bearerToken string, timeout time.Duration) *TwitterClient {
	return &TwitterClient{
		bearerToken: bearerToken,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: "https://api.twitter.com/2/tweets/search/recent",
	}
}

// Search queries recent posts matching any of the keywords as hashtags.
func (c *TwitterClient) Search(ctx context.Context, keywords []string, location string) ([]Post, error) {
	terms := make([]string, 0, len(keywords))
	for _, k := range keywords {
		terms = append(terms, "#"+k)
	}
	query := strings.Join(terms, " OR ")
	if query == "" {
		query = "#disaster"
	}

	params := url.Values{
		"query":        {query},
		"max_results":  {"25"},
		"tweet.fields": {"created_at,author_id"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.bearerToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("twitter search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("twitter API error: status %d", resp.StatusCode)
	}

	var body twitterResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	posts := make([]Post, 0, len(body.Data))
	for _, tweet := range body.Data {
		posts = append(posts, Post{
			ID:        tweet.ID,
			Content:   tweet.Text,
			User:      tweet.AuthorID,
			Timestamp: tweet.CreatedAt,
		})
	}
	return posts, nil
}

type twitterResponse struct {
	Data []struct {
		ID        string    `json:"id"`
		Text      string    `json:"text"`
		AuthorID  string    `json:"author_id"`
		CreatedAt time.Time `json:"created_at"`
	} `json:"data"`
}

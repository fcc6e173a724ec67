package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/parleyhq/parley/internal/event"
)

// ProfileClient issues the coalescer's bulk profile fetches against the
// realtime transport's profile endpoint.
type ProfileClient struct {
	url    string
	client *http.Client
}

// NewProfileClient creates a client for the given endpoint.
func NewProfileClient(url string) *ProfileClient {
	return &ProfileClient{
		url:    url,
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

// FetchProfiles fetches the given user ids in one call.
func (c *ProfileClient) FetchProfiles(ctx context.Context, userIDs []string) ([]event.Profile, error) {
	if c.url == "" {
		return nil, fmt.Errorf("profile fetch: no endpoint configured")
	}
	body, err := json.Marshal(map[string][]string{"user_ids": userIDs})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch profiles: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch profiles: status %d", resp.StatusCode)
	}

	var profiles []event.Profile
	if err := json.NewDecoder(resp.Body).Decode(&profiles); err != nil {
		return nil, fmt.Errorf("decode profiles: %w", err)
	}
	return profiles, nil
}

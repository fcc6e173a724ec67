// Package client speaks the daemon's HTTP API over the profile's
// unix-domain socket, plus the websocket push stream used to drive UI
// refreshes.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/parleyhq/parley/internal/api"
)

// Client wraps HTTP calls to the daemon socket.
type Client struct {
	socketPath string
	http       *http.Client
}

// New creates a client for the daemon at the given socket path.
func New(socketPath string) *Client {
	return &Client{
		socketPath: socketPath,
		http: &http.Client{
			Transport: &http.Transport{
				DialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
					var d net.Dialer
					return d.DialContext(ctx, "unix", socketPath)
				},
			},
			Timeout: 10 * time.Second,
		},
	}
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://unix"+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) send(ctx context.Context, method, path string, body, out any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, "http://unix"+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("daemon request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Error != "" {
			return fmt.Errorf("daemon: %s", apiErr.Error)
		}
		return fmt.Errorf("daemon: status %d", resp.StatusCode)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// Rooms lists all rooms, most recently active first.
func (c *Client) Rooms(ctx context.Context) ([]api.Room, error) {
	var resp struct {
		Rooms []api.Room `json:"rooms"`
	}
	if err := c.get(ctx, "/v1/rooms", &resp); err != nil {
		return nil, err
	}
	return resp.Rooms, nil
}

// Messages returns a room's visible messages in arrival order.
func (c *Client) Messages(ctx context.Context, roomID string) ([]api.Message, error) {
	var resp struct {
		Messages []api.Message `json:"messages"`
	}
	if err := c.get(ctx, "/v1/rooms/"+roomID+"/messages", &resp); err != nil {
		return nil, err
	}
	return resp.Messages, nil
}

// Meeting returns a meeting's participants and tile set.
func (c *Client) Meeting(ctx context.Context, meetingID string) ([]api.Participant, []api.Tile, error) {
	var resp struct {
		Participants []api.Participant `json:"participants"`
		Tiles        []api.Tile        `json:"tiles"`
	}
	if err := c.get(ctx, "/v1/meetings/"+meetingID, &resp); err != nil {
		return nil, nil, err
	}
	return resp.Participants, resp.Tiles, nil
}

type container struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Arrange computes the tile layout for the given container dimensions.
func (c *Client) Arrange(ctx context.Context, meetingID string, width, height int) (api.Arrangement, error) {
	var arr api.Arrangement
	err := c.send(ctx, http.MethodPost, "/v1/meetings/"+meetingID+"/arrange", container{width, height}, &arr)
	return arr, err
}

// PagePrev steps the meeting view one page back and re-arranges.
func (c *Client) PagePrev(ctx context.Context, meetingID string, width, height int) (api.Arrangement, error) {
	var arr api.Arrangement
	err := c.send(ctx, http.MethodPost, "/v1/meetings/"+meetingID+"/page/prev", container{width, height}, &arr)
	return arr, err
}

// PageNext steps the meeting view one page forward and re-arranges.
func (c *Client) PageNext(ctx context.Context, meetingID string, width, height int) (api.Arrangement, error) {
	var arr api.Arrangement
	err := c.send(ctx, http.MethodPost, "/v1/meetings/"+meetingID+"/page/next", container{width, height}, &arr)
	return arr, err
}

// Pin pins one participant's stream.
func (c *Client) Pin(ctx context.Context, meetingID, userID, stream string) error {
	body := map[string]string{"user_id": userID, "stream": stream}
	return c.send(ctx, http.MethodPost, "/v1/meetings/"+meetingID+"/pin", body, nil)
}

// Unpin clears the pin.
func (c *Client) Unpin(ctx context.Context, meetingID string) error {
	return c.send(ctx, http.MethodDelete, "/v1/meetings/"+meetingID+"/pin", nil, nil)
}

// SetViewMode switches between grid and cinema.
func (c *Client) SetViewMode(ctx context.Context, mode string) error {
	return c.send(ctx, http.MethodPut, "/v1/meetings/view-mode", map[string]string{"mode": mode}, nil)
}

// Health returns the combined connectivity status.
func (c *Client) Health(ctx context.Context) (api.Health, error) {
	var h api.Health
	err := c.get(ctx, "/v1/health", &h)
	return h, err
}

// DismissBanner acknowledges the degraded banner.
func (c *Client) DismissBanner(ctx context.Context) error {
	return c.send(ctx, http.MethodPost, "/v1/health/dismiss", nil, nil)
}

// RestartFeeds asks the daemon to re-dial every channel listener.
func (c *Client) RestartFeeds(ctx context.Context) error {
	return c.send(ctx, http.MethodPost, "/v1/feeds/restart", nil, nil)
}

// RequestProfile asks the daemon to resolve a user's profile.
func (c *Client) RequestProfile(ctx context.Context, userID string) error {
	return c.send(ctx, http.MethodPost, "/v1/profiles/request", map[string]string{"user_id": userID}, nil)
}

// Raw fetches a path and returns the response body verbatim.
func (c *Client) Raw(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://unix"+path, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("daemon request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("daemon: status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// Stream subscribes to the daemon's push stream. Envelopes are delivered
// on the returned channel until the context is cancelled or the daemon
// goes away, after which the channel is closed.
func (c *Client) Stream(ctx context.Context) (<-chan api.Envelope, error) {
	dialer := websocket.Dialer{
		NetDialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
			var d net.Dialer
			return d.DialContext(ctx, "unix", c.socketPath)
		},
	}
	conn, _, err := dialer.DialContext(ctx, "ws://unix/v1/events/stream", nil)
	if err != nil {
		return nil, fmt.Errorf("dial stream: %w", err)
	}

	ch := make(chan api.Envelope, 64)
	go func() {
		defer close(ch)
		defer func() { _ = conn.Close() }()
		go func() {
			<-ctx.Done()
			_ = conn.Close()
		}()
		for {
			var env api.Envelope
			if err := conn.ReadJSON(&env); err != nil {
				return
			}
			select {
			case ch <- env:
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch, nil
}

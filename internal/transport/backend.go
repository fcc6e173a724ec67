package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/parleyhq/parley/internal/event"
	"github.com/parleyhq/parley/internal/health"
	"github.com/parleyhq/parley/internal/store"
	"go.uber.org/zap"
)

// BackendFeed polls the backend channel (chats_be) for room, message and
// member mutations. Each poll returns a batch of frames applied in
// order. A failed poll reports the channel down and ends the loop.
type BackendFeed struct {
	url      string
	interval time.Duration
	client   *http.Client
	store    *store.Store
	monitor  *health.Monitor
	logger   *zap.Logger
	cancel   context.CancelFunc
}

// NewBackendFeed creates a poller for the backend events endpoint.
func NewBackendFeed(url string, interval time.Duration, st *store.Store, monitor *health.Monitor, logger *zap.Logger) *BackendFeed {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &BackendFeed{
		url:      url,
		interval: interval,
		client:   &http.Client{Timeout: 30 * time.Second},
		store:    st,
		monitor:  monitor,
		logger:   logger,
	}
}

// Start begins polling in the background.
func (f *BackendFeed) Start(ctx context.Context) error {
	if f.url == "" {
		return fmt.Errorf("backend feed: no endpoint configured")
	}
	ctx, f.cancel = context.WithCancel(ctx)
	go f.loop(ctx)
	return nil
}

// Stop ends the poll loop.
func (f *BackendFeed) Stop() {
	if f.cancel != nil {
		f.cancel()
	}
}

func (f *BackendFeed) loop(ctx context.Context) {
	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	if err := f.poll(ctx); err != nil {
		f.fail(err)
		return
	}
	for {
		select {
		case <-ticker.C:
			if err := f.poll(ctx); err != nil {
				f.fail(err)
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

func (f *BackendFeed) fail(err error) {
	f.logger.Warn("backend poll failed", zap.Error(err))
	f.monitor.Report(health.ChannelBackend, false)
}

func (f *BackendFeed) poll(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("poll: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("poll: status %d", resp.StatusCode)
	}

	var frames []event.Frame
	if err := json.NewDecoder(resp.Body).Decode(&frames); err != nil {
		return fmt.Errorf("decode batch: %w", err)
	}

	f.monitor.Report(health.ChannelBackend, true)
	for _, frame := range frames {
		evt, err := event.Decode(frame)
		if err != nil {
			f.logger.Warn("dropping malformed frame", zap.String("type", frame.Type), zap.Error(err))
			continue
		}
		f.store.Apply(evt)
	}
	return nil
}

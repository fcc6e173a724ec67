// Package transport contains the thin boundary adapters for the three
// push channels. Each adapter decodes wire frames into store events and
// reports liveness edges to the health monitor. Retry policy lives with
// whoever restarts a feed, not here: a feed that loses its connection
// reports down and returns.
package transport

import (
	"context"
	"fmt"

	"github.com/gorilla/websocket"
	"github.com/parleyhq/parley/internal/event"
	"github.com/parleyhq/parley/internal/health"
	"github.com/parleyhq/parley/internal/store"
	"go.uber.org/zap"
)

// WSFeed consumes event frames from a websocket endpoint. It serves both
// push channels that speak websocket: the message-bus channel (xmpp) and
// the realtime transport channel.
type WSFeed struct {
	channel health.Channel
	url     string
	store   *store.Store
	monitor *health.Monitor
	logger  *zap.Logger
	cancel  context.CancelFunc
}

// NewWSFeed creates a feed for the given channel and endpoint.
func NewWSFeed(channel health.Channel, url string, st *store.Store, monitor *health.Monitor, logger *zap.Logger) *WSFeed {
	return &WSFeed{
		channel: channel,
		url:     url,
		store:   st,
		monitor: monitor,
		logger:  logger,
	}
}

// Start dials the endpoint and begins reading frames. Frames are applied
// in delivery order, preserving the per-channel ordering guarantee.
func (f *WSFeed) Start(ctx context.Context) error {
	if f.url == "" {
		return fmt.Errorf("feed %s: no endpoint configured", f.channel)
	}
	ctx, f.cancel = context.WithCancel(ctx)

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, f.url, nil)
	if err != nil {
		f.monitor.Report(f.channel, false)
		return fmt.Errorf("dial %s: %w", f.channel, err)
	}
	f.monitor.Report(f.channel, true)
	f.logger.Info("feed connected", zap.String("channel", string(f.channel)))

	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()
	go f.readLoop(ctx, conn)
	return nil
}

// Stop closes the connection and ends the read loop.
func (f *WSFeed) Stop() {
	if f.cancel != nil {
		f.cancel()
	}
}

func (f *WSFeed) readLoop(ctx context.Context, conn *websocket.Conn) {
	defer func() { _ = conn.Close() }()
	for {
		var frame event.Frame
		if err := conn.ReadJSON(&frame); err != nil {
			if ctx.Err() == nil {
				f.logger.Warn("feed read failed", zap.String("channel", string(f.channel)), zap.Error(err))
			}
			f.monitor.Report(f.channel, false)
			return
		}
		evt, err := event.Decode(frame)
		if err != nil {
			// Malformed frames are dropped; the channel stays up.
			f.logger.Warn("dropping malformed frame",
				zap.String("channel", string(f.channel)),
				zap.String("type", frame.Type),
				zap.Error(err))
			continue
		}
		f.store.Apply(evt)
	}
}

// Package profile implements the batched profile fetch coalescer.
// Requests for unknown user ids are queued, deduplicated and flushed as
// bulk fetches, either when the debounce window elapses or when the
// batch ceiling is reached.
package profile

import (
	"context"
	"sync"
	"time"

	"github.com/parleyhq/parley/internal/bus"
	"github.com/parleyhq/parley/internal/event"
	"go.uber.org/zap"
)

// Fetcher issues the bulk profile fetch over the realtime transport.
type Fetcher interface {
	FetchProfiles(ctx context.Context, userIDs []string) ([]event.Profile, error)
}

// Sink receives the terminal ProfileResolved event for a completed
// batch. In the daemon this is the reconciliation store.
type Sink interface {
	Apply(evt event.Event)
}

// Options tunes the coalescer.
type Options struct {
	// Window is the debounce window started by the first request after
	// an idle period. Later requests join the batch without restarting it.
	Window time.Duration
	// Ceiling is the batch size that triggers an immediate flush.
	Ceiling int
}

// Coalescer batches profile requests. The pending and in-flight sets are
// disjoint; an id in either set (or already resolved) is silently
// ignored. A failed batch is not retried; its ids re-enter pending on
// the next Request for them.
type Coalescer struct {
	mu       sync.Mutex
	pending  map[string]struct{}
	order    []string
	inFlight map[string]struct{}
	resolved map[string]struct{}
	timer    *time.Timer
	stopped  bool

	opts    Options
	fetcher Fetcher
	sink    Sink
	bus     *bus.Bus
	logger  *zap.Logger
}

// New creates a coalescer. sink and b may not be nil in daemon use;
// tests may pass a recording sink.
func New(fetcher Fetcher, sink Sink, b *bus.Bus, logger *zap.Logger, opts Options) *Coalescer {
	if opts.Window <= 0 {
		opts.Window = 50 * time.Millisecond
	}
	if opts.Ceiling <= 0 {
		opts.Ceiling = 10
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Coalescer{
		pending:  make(map[string]struct{}),
		inFlight: make(map[string]struct{}),
		resolved: make(map[string]struct{}),
		opts:     opts,
		fetcher:  fetcher,
		sink:     sink,
		bus:      b,
		logger:   logger,
	}
}

// Request queues a profile fetch for userID. Never blocks and never
// calls the sink synchronously.
func (c *Coalescer) Request(userID string) {
	if userID == "" {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stopped {
		return
	}
	if _, ok := c.resolved[userID]; ok {
		return
	}
	if _, ok := c.pending[userID]; ok {
		return
	}
	if _, ok := c.inFlight[userID]; ok {
		return
	}

	c.pending[userID] = struct{}{}
	c.order = append(c.order, userID)

	if len(c.pending) >= c.opts.Ceiling {
		// Ceiling pre-empts the debounce timer: flush now.
		c.cancelTimerLocked()
		c.flushLocked()
		return
	}
	if c.timer == nil {
		c.timer = time.AfterFunc(c.opts.Window, c.onWindowElapsed)
	}
}

// Flush forces the current pending batch out immediately.
func (c *Coalescer) Flush() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelTimerLocked()
	c.flushLocked()
}

// Stop cancels any scheduled flush and rejects further requests.
// In-flight batches run to completion.
func (c *Coalescer) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopped = true
	c.cancelTimerLocked()
}

// PendingCount returns the number of queued, not yet flushed ids.
func (c *Coalescer) PendingCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

// InFlightCount returns the number of ids awaiting a fetch response.
func (c *Coalescer) InFlightCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.inFlight)
}

func (c *Coalescer) onWindowElapsed() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.timer = nil
	c.flushLocked()
}

func (c *Coalescer) cancelTimerLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

// flushLocked moves the pending batch atomically into the in-flight set
// and launches the bulk fetch. Each batch tracks its own ids, so a
// failed batch never blocks or poisons other in-flight batches.
func (c *Coalescer) flushLocked() {
	if c.stopped || len(c.pending) == 0 {
		return
	}
	batch := c.order
	c.order = nil
	c.pending = make(map[string]struct{})
	for _, id := range batch {
		c.inFlight[id] = struct{}{}
	}
	go c.runBatch(batch)
}

func (c *Coalescer) runBatch(batch []string) {
	profiles, err := c.fetcher.FetchProfiles(context.Background(), batch)

	c.mu.Lock()
	for _, id := range batch {
		delete(c.inFlight, id)
	}
	if err == nil {
		for _, p := range profiles {
			c.resolved[p.UserID] = struct{}{}
		}
	}
	c.mu.Unlock()

	if err != nil {
		// No automatic retry: the ids re-enter pending the next time
		// something references them.
		c.logger.Warn("profile batch failed", zap.Int("size", len(batch)), zap.Error(err))
		if c.bus != nil {
			c.bus.Publish(bus.Event{
				Kind:      bus.KindProfileFailed,
				Timestamp: time.Now(),
				Payload:   map[string]int{"size": len(batch)},
			})
		}
		return
	}

	if c.sink != nil {
		c.sink.Apply(event.ProfileResolved{Profiles: profiles})
	}
	if c.bus != nil {
		c.bus.Publish(bus.Event{
			Kind:      bus.KindProfileResolved,
			Timestamp: time.Now(),
			Payload:   map[string]int{"size": len(profiles)},
		})
	}
}

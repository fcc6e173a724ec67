package health

import (
	"sync"
	"time"

	"github.com/parleyhq/parley/internal/bus"
)

// Channel identifies one of the three independent push channels.
type Channel string

const (
	ChannelBackend  Channel = "chats_be"
	ChannelBus      Channel = "xmpp"
	ChannelRealtime Channel = "websocket"
)

// Channels lists every tracked channel in a stable order.
var Channels = []Channel{ChannelBackend, ChannelBus, ChannelRealtime}

// Liveness is the tri-state liveness of a single channel.
type Liveness string

const (
	Unknown Liveness = "UNKNOWN"
	Up      Liveness = "UP"
	Down    Liveness = "DOWN"
)

// Status is the combined connectivity status across all channels.
type Status string

const (
	Healthy  Status = "HEALTHY"
	Degraded Status = "DEGRADED"
)

// StatusChange is the payload for health.status_changed bus events.
type StatusChange struct {
	Channel  Channel
	Liveness Liveness
	Combined Status
}

// Monitor aggregates per-channel liveness reports into a combined status
// and tracks the dismissed flag for the degraded banner. It owns no retry
// policy and schedules no work; it only records what channel owners report.
type Monitor struct {
	mu        sync.RWMutex
	liveness  map[Channel]Liveness
	dismissed bool
	bus       *bus.Bus
}

// NewMonitor creates a monitor with every channel in the Unknown state.
func NewMonitor(b *bus.Bus) *Monitor {
	m := &Monitor{
		liveness: make(map[Channel]Liveness, len(Channels)),
		bus:      b,
	}
	for _, ch := range Channels {
		m.liveness[ch] = Unknown
	}
	return m
}

// Report records a liveness report for a channel. Repeated identical
// reports are no-ops. A transition into Down from any state that was not
// already Down is a down-edge and re-arms a previous Dismiss.
func (m *Monitor) Report(channel Channel, isUp bool) {
	next := Down
	if isUp {
		next = Up
	}

	m.mu.Lock()
	prev, known := m.liveness[channel]
	if !known {
		prev = Unknown
	}
	if prev == next {
		m.mu.Unlock()
		return
	}
	m.liveness[channel] = next
	if next == Down {
		m.dismissed = false
	}
	combined := m.combinedLocked()
	m.mu.Unlock()

	if m.bus != nil {
		m.bus.Publish(bus.Event{
			Kind:      bus.KindHealthChanged,
			Timestamp: time.Now(),
			Payload: StatusChange{
				Channel:  channel,
				Liveness: next,
				Combined: combined,
			},
		})
	}
}

// CombinedStatus returns Degraded iff at least one channel is explicitly
// Down. Channels still Unknown do not degrade the combined status.
func (m *Monitor) CombinedStatus() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.combinedLocked()
}

func (m *Monitor) combinedLocked() Status {
	for _, l := range m.liveness {
		if l == Down {
			return Degraded
		}
	}
	return Healthy
}

// ChannelLiveness returns the recorded liveness of a single channel.
func (m *Monitor) ChannelLiveness(channel Channel) Liveness {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if l, ok := m.liveness[channel]; ok {
		return l
	}
	return Unknown
}

// Snapshot returns a copy of the per-channel liveness map.
func (m *Monitor) Snapshot() map[Channel]Liveness {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[Channel]Liveness, len(m.liveness))
	for ch, l := range m.liveness {
		out[ch] = l
	}
	return out
}

// Dismiss suppresses the degraded banner until the next down-edge on any
// channel.
func (m *Monitor) Dismiss() {
	m.mu.Lock()
	m.dismissed = true
	m.mu.Unlock()
}

// BannerVisible reports whether the degraded banner should be shown:
// combined status is Degraded and the user has not dismissed it since the
// last down-edge.
func (m *Monitor) BannerVisible() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.combinedLocked() == Degraded && !m.dismissed
}

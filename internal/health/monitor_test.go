package health

import (
	"testing"
	"time"

	"github.com/parleyhq/parley/internal/bus"
)

func TestInitialStateIsUnknownAndHealthy(t *testing.T) {
	m := NewMonitor(nil)
	for _, ch := range Channels {
		if got := m.ChannelLiveness(ch); got != Unknown {
			t.Errorf("ChannelLiveness(%s) = %s, want UNKNOWN", ch, got)
		}
	}
	if m.CombinedStatus() != Healthy {
		t.Errorf("CombinedStatus() = %s, want HEALTHY", m.CombinedStatus())
	}
}

func TestDegradedRequiresExplicitDown(t *testing.T) {
	m := NewMonitor(nil)
	m.Report(ChannelBackend, true)
	if m.CombinedStatus() != Healthy {
		t.Errorf("one channel up, rest unknown: got %s, want HEALTHY", m.CombinedStatus())
	}

	m.Report(ChannelBus, false)
	if m.CombinedStatus() != Degraded {
		t.Errorf("one channel down: got %s, want DEGRADED", m.CombinedStatus())
	}

	m.Report(ChannelBus, true)
	if m.CombinedStatus() != Healthy {
		t.Errorf("channel recovered: got %s, want HEALTHY", m.CombinedStatus())
	}
}

func TestRepeatedReportIsNoOp(t *testing.T) {
	b := bus.New()
	ch, unsub := b.Subscribe("health.", 10)
	defer unsub()

	m := NewMonitor(b)
	m.Report(ChannelRealtime, false)
	m.Report(ChannelRealtime, false)
	m.Report(ChannelRealtime, false)

	count := 0
	for {
		select {
		case <-ch:
			count++
		case <-time.After(50 * time.Millisecond):
			if count != 1 {
				t.Errorf("got %d status events for repeated identical reports, want 1", count)
			}
			return
		}
	}
}

func TestDismissSuppressesBanner(t *testing.T) {
	m := NewMonitor(nil)
	m.Report(ChannelBackend, false)
	if !m.BannerVisible() {
		t.Fatal("banner should be visible while degraded")
	}

	m.Dismiss()
	if m.BannerVisible() {
		t.Error("banner should be hidden after dismiss")
	}

	// Flapping at the same value does not re-surface the banner.
	m.Report(ChannelBackend, false)
	if m.BannerVisible() {
		t.Error("identical down report must not re-arm the banner")
	}
}

func TestFreshDownEdgeReArmsBanner(t *testing.T) {
	m := NewMonitor(nil)
	m.Report(ChannelBackend, false)
	m.Dismiss()

	// A different channel failing is a fresh edge.
	m.Report(ChannelBus, false)
	if !m.BannerVisible() {
		t.Error("down-edge on another channel must re-arm the banner")
	}
}

func TestUpDownCycleOnSameChannelReArms(t *testing.T) {
	m := NewMonitor(nil)
	m.Report(ChannelRealtime, false)
	m.Dismiss()

	m.Report(ChannelRealtime, true)
	m.Report(ChannelRealtime, false)
	if !m.BannerVisible() {
		t.Error("up then down on the same channel is a fresh edge and must re-arm")
	}
}

func TestReportPublishesCombinedStatus(t *testing.T) {
	b := bus.New()
	ch, unsub := b.Subscribe("health.", 10)
	defer unsub()

	m := NewMonitor(b)
	m.Report(ChannelBus, false)

	select {
	case evt := <-ch:
		change, ok := evt.Payload.(StatusChange)
		if !ok {
			t.Fatalf("payload type = %T, want StatusChange", evt.Payload)
		}
		if change.Channel != ChannelBus || change.Liveness != Down || change.Combined != Degraded {
			t.Errorf("unexpected change: %+v", change)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for status event")
	}
}

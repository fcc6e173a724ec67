package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/parleyhq/parley/internal/event"
	"github.com/parleyhq/parley/internal/health"
	"github.com/parleyhq/parley/internal/store"
	"go.uber.org/zap"
)

func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal(msg)
}

func mustFrame(t *testing.T, evt event.Event) event.Frame {
	t.Helper()
	frame, err := event.Encode(evt)
	if err != nil {
		t.Fatal(err)
	}
	return frame
}

func TestWSFeedAppliesFramesAndReportsLiveness(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer func() { _ = conn.Close() }()
		frames := []any{
			mustFrame(t, event.MessageNew{RoomID: "r1", StanzaID: "s1", SenderID: "u1", Body: "hi", Timestamp: 1}),
			event.Frame{Type: "bogus", Data: json.RawMessage(`{}`)},
			mustFrame(t, event.MessageNew{RoomID: "r1", StanzaID: "s2", SenderID: "u1", Body: "again", Timestamp: 2}),
		}
		for _, f := range frames {
			if err := conn.WriteJSON(f); err != nil {
				return
			}
		}
		// Hold the connection open until the client goes away.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	st := store.New(nil, nil, nil)
	monitor := health.NewMonitor(nil)
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	feed := NewWSFeed(health.ChannelBus, url, st, monitor, zap.NewNop())

	if err := feed.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer feed.Stop()

	if got := monitor.ChannelLiveness(health.ChannelBus); got != health.Up {
		t.Errorf("liveness = %s, want UP after dial", got)
	}
	waitFor(t, func() bool {
		return len(st.Snapshot().VisibleMessages("r1")) == 2
	}, "frames never applied")
}

func TestWSFeedReportsDownOnDialFailure(t *testing.T) {
	st := store.New(nil, nil, nil)
	monitor := health.NewMonitor(nil)
	feed := NewWSFeed(health.ChannelRealtime, "ws://127.0.0.1:1/nope", st, monitor, zap.NewNop())

	if err := feed.Start(context.Background()); err == nil {
		t.Error("Start() should fail against a dead endpoint")
	}
	if got := monitor.ChannelLiveness(health.ChannelRealtime); got != health.Down {
		t.Errorf("liveness = %s, want DOWN", got)
	}
}

func TestWSFeedReportsDownWhenServerCloses(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		_ = conn.Close()
	}))
	defer srv.Close()

	st := store.New(nil, nil, nil)
	monitor := health.NewMonitor(nil)
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	feed := NewWSFeed(health.ChannelBus, url, st, monitor, zap.NewNop())

	if err := feed.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	waitFor(t, func() bool {
		return monitor.ChannelLiveness(health.ChannelBus) == health.Down
	}, "feed never reported down")
}

func TestBackendFeedPollsBatches(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		frames := []event.Frame{
			mustFrame(t, event.RoomUpsert{RoomID: "r1", Name: "General", Type: event.RoomGroup}),
		}
		_ = json.NewEncoder(w).Encode(frames)
	}))
	defer srv.Close()

	st := store.New(nil, nil, nil)
	monitor := health.NewMonitor(nil)
	feed := NewBackendFeed(srv.URL, 10*time.Millisecond, st, monitor, zap.NewNop())

	if err := feed.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer feed.Stop()

	waitFor(t, func() bool {
		_, ok := st.Snapshot().Room("r1")
		return ok
	}, "room never applied")
	if got := monitor.ChannelLiveness(health.ChannelBackend); got != health.Up {
		t.Errorf("liveness = %s, want UP", got)
	}
}

func TestBackendFeedReportsDownOnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	st := store.New(nil, nil, nil)
	monitor := health.NewMonitor(nil)
	feed := NewBackendFeed(srv.URL, 10*time.Millisecond, st, monitor, zap.NewNop())

	if err := feed.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer feed.Stop()

	waitFor(t, func() bool {
		return monitor.ChannelLiveness(health.ChannelBackend) == health.Down
	}, "backend feed never reported down")
}

func TestProfileClientFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string][]string
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		profiles := make([]event.Profile, 0, len(req["user_ids"]))
		for _, id := range req["user_ids"] {
			profiles = append(profiles, event.Profile{UserID: id, Name: "name-" + id})
		}
		_ = json.NewEncoder(w).Encode(profiles)
	}))
	defer srv.Close()

	c := NewProfileClient(srv.URL)
	got, err := c.FetchProfiles(context.Background(), []string{"u1", "u2"})
	if err != nil {
		t.Fatalf("FetchProfiles() error = %v", err)
	}
	if len(got) != 2 || got[0].Name != "name-u1" {
		t.Errorf("profiles = %+v", got)
	}
}

func TestProfileClientErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewProfileClient(srv.URL)
	if _, err := c.FetchProfiles(context.Background(), []string{"u1"}); err == nil {
		t.Error("FetchProfiles() should fail on non-200")
	}
}

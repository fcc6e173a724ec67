package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/parleyhq/parley/internal/bus"
	"github.com/parleyhq/parley/internal/event"
	"github.com/parleyhq/parley/internal/health"
	"github.com/parleyhq/parley/internal/layout"
	"github.com/parleyhq/parley/internal/profile"
	"github.com/parleyhq/parley/internal/store"
	"go.uber.org/zap"
)

type noopFetcher struct{}

func (noopFetcher) FetchProfiles(_ context.Context, ids []string) ([]event.Profile, error) {
	profiles := make([]event.Profile, len(ids))
	for i, id := range ids {
		profiles[i] = event.Profile{UserID: id, Name: id}
	}
	return profiles, nil
}

func newTestRouter(t *testing.T) (*Deps, http.Handler) {
	t.Helper()
	b := bus.New()
	st := store.New(nil, b, zap.NewNop())
	co := profile.New(noopFetcher{}, st, b, zap.NewNop(), profile.Options{Window: 10 * time.Millisecond, Ceiling: 10})
	t.Cleanup(co.Stop)
	deps := Deps{
		ProfileName: "test",
		Store:       st,
		Monitor:     health.NewMonitor(b),
		Coalescer:   co,
		Engine:      layout.NewEngine(16.0/9.0, 320),
		Bus:         b,
		Logger:      zap.NewNop(),
	}
	return &deps, NewRouter(deps)
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRoomEndpoints(t *testing.T) {
	deps, h := newTestRouter(t)
	deps.Store.Apply(event.RoomUpsert{RoomID: "r1", Name: "General", Type: event.RoomGroup})
	deps.Store.Apply(event.MessageNew{RoomID: "r1", StanzaID: "s1", SenderID: "u1", Body: "hi", Timestamp: 10})
	deps.Store.Apply(event.FasteningAdd{RoomID: "r1", OriginalStanzaID: "s1", Actor: "a1", Kind: event.FasteningReaction, Value: "👍"})

	rec := doJSON(t, h, http.MethodGet, "/v1/rooms", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /v1/rooms status = %d", rec.Code)
	}
	var listResp struct {
		Rooms []Room `json:"rooms"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &listResp); err != nil {
		t.Fatal(err)
	}
	if len(listResp.Rooms) != 1 || listResp.Rooms[0].Name != "General" {
		t.Errorf("rooms = %+v", listResp.Rooms)
	}

	rec = doJSON(t, h, http.MethodGet, "/v1/rooms/r1/messages", nil)
	var msgResp struct {
		Messages []Message `json:"messages"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &msgResp); err != nil {
		t.Fatal(err)
	}
	if len(msgResp.Messages) != 1 {
		t.Fatalf("messages = %+v", msgResp.Messages)
	}
	if len(msgResp.Messages[0].Reactions) != 1 || msgResp.Messages[0].Reactions[0].Value != "👍" {
		t.Errorf("reactions = %+v", msgResp.Messages[0].Reactions)
	}

	rec = doJSON(t, h, http.MethodGet, "/v1/rooms/absent", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("GET absent room status = %d, want 404", rec.Code)
	}
}

func TestMeetingEndpoints(t *testing.T) {
	deps, h := newTestRouter(t)
	for i, u := range []string{"u1", "u2", "u3"} {
		deps.Store.Apply(event.ParticipantJoin{MeetingID: "m1", UserID: u, JoinedAt: int64(i + 1), Video: true})
	}

	rec := doJSON(t, h, http.MethodGet, "/v1/meetings/m1", nil)
	var getResp struct {
		Participants []Participant `json:"participants"`
		Tiles        []Tile        `json:"tiles"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &getResp); err != nil {
		t.Fatal(err)
	}
	if len(getResp.Participants) != 3 || len(getResp.Tiles) != 3 {
		t.Errorf("participants=%d tiles=%d, want 3/3", len(getResp.Participants), len(getResp.Tiles))
	}

	rec = doJSON(t, h, http.MethodPost, "/v1/meetings/m1/arrange", containerBody{Width: 1280, Height: 720})
	if rec.Code != http.StatusOK {
		t.Fatalf("arrange status = %d", rec.Code)
	}
	var arr Arrangement
	if err := json.Unmarshal(rec.Body.Bytes(), &arr); err != nil {
		t.Fatal(err)
	}
	if arr.Composition != "grid" {
		t.Errorf("composition = %s, want grid", arr.Composition)
	}

	rec = doJSON(t, h, http.MethodPost, "/v1/meetings/m1/pin", pinBody{UserID: "u2", Stream: "camera"})
	if rec.Code != http.StatusOK {
		t.Fatalf("pin status = %d", rec.Code)
	}
	rec = doJSON(t, h, http.MethodPost, "/v1/meetings/m1/arrange", containerBody{Width: 1280, Height: 720})
	_ = json.Unmarshal(rec.Body.Bytes(), &arr)
	if arr.Pinned == nil || arr.Pinned.UserID != "u2" {
		t.Errorf("pinned = %+v, want u2", arr.Pinned)
	}

	rec = doJSON(t, h, http.MethodPost, "/v1/meetings/m1/pin", pinBody{UserID: "u2", Stream: "hologram"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad stream status = %d, want 400", rec.Code)
	}

	rec = doJSON(t, h, http.MethodPut, "/v1/meetings/view-mode", viewModeBody{Mode: "cinema"})
	if rec.Code != http.StatusOK {
		t.Errorf("view mode status = %d", rec.Code)
	}
}

func TestHealthAndDismiss(t *testing.T) {
	deps, h := newTestRouter(t)
	deps.Monitor.Report(health.ChannelBus, false)

	rec := doJSON(t, h, http.MethodGet, "/v1/health", nil)
	var hr Health
	if err := json.Unmarshal(rec.Body.Bytes(), &hr); err != nil {
		t.Fatal(err)
	}
	if hr.Combined != "DEGRADED" || !hr.BannerVisible {
		t.Errorf("health = %+v", hr)
	}
	if hr.Channels["xmpp"] != "DOWN" {
		t.Errorf("channels = %+v", hr.Channels)
	}

	rec = doJSON(t, h, http.MethodPost, "/v1/health/dismiss", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("dismiss status = %d", rec.Code)
	}
	rec = doJSON(t, h, http.MethodGet, "/v1/health", nil)
	_ = json.Unmarshal(rec.Body.Bytes(), &hr)
	if hr.BannerVisible {
		t.Error("banner should be hidden after dismiss")
	}
}

func TestInjectEvent(t *testing.T) {
	deps, h := newTestRouter(t)
	frame, err := event.Encode(event.MessageNew{RoomID: "r1", StanzaID: "s1", SenderID: "u1", Body: "hi", Timestamp: 1})
	if err != nil {
		t.Fatal(err)
	}

	rec := doJSON(t, h, http.MethodPost, "/v1/events", frame)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("inject status = %d", rec.Code)
	}
	if got := deps.Store.Snapshot().VisibleMessages("r1"); len(got) != 1 {
		t.Errorf("messages = %+v, want 1", got)
	}

	rec = doJSON(t, h, http.MethodPost, "/v1/events", event.Frame{Type: "bogus", Data: json.RawMessage(`{}`)})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("malformed inject status = %d, want 400", rec.Code)
	}
}

type fakeRestarter struct {
	calls int
	err   error
}

func (f *fakeRestarter) Restart(context.Context) error {
	f.calls++
	return f.err
}

func TestRestartFeeds(t *testing.T) {
	_, h := newTestRouter(t)
	rec := doJSON(t, h, http.MethodPost, "/v1/feeds/restart", nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("restart with no feeds status = %d, want 503", rec.Code)
	}

	deps, _ := newTestRouter(t)
	restarter := &fakeRestarter{}
	deps.Feeds = restarter
	h2 := NewRouter(*deps)
	rec = doJSON(t, h2, http.MethodPost, "/v1/feeds/restart", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("restart status = %d, want 200", rec.Code)
	}
	if restarter.calls != 1 {
		t.Errorf("restart calls = %d, want 1", restarter.calls)
	}
}

func TestStats(t *testing.T) {
	deps, h := newTestRouter(t)
	deps.Store.Apply(event.MessageNew{RoomID: "r1", StanzaID: "s1", SenderID: "u1", Body: "hi", Timestamp: 1})

	rec := doJSON(t, h, http.MethodGet, "/v1/stats", nil)
	var resp struct {
		Store store.Stats `json:"store"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Store.Rooms != 1 || resp.Store.Messages != 1 {
		t.Errorf("stats = %+v", resp.Store)
	}
}

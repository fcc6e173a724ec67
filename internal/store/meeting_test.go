package store

import (
	"testing"

	"github.com/parleyhq/parley/internal/event"
)

func join(meeting, user string, at int64) event.ParticipantJoin {
	return event.ParticipantJoin{MeetingID: meeting, UserID: user, JoinedAt: at, Audio: true, Video: true}
}

func TestParticipantJoinLeave(t *testing.T) {
	s := New(nil, nil, nil)
	s.Apply(join("m1", "u1", 1))
	s.Apply(join("m1", "u2", 2))
	s.Apply(join("m1", "u2", 2)) // re-delivered join is a no-op

	parts := s.Snapshot().Participants("m1")
	if len(parts) != 2 {
		t.Fatalf("got %d participants, want 2", len(parts))
	}
	if parts[0].UserID != "u1" || parts[1].UserID != "u2" {
		t.Errorf("join order = [%s %s]", parts[0].UserID, parts[1].UserID)
	}

	s.Apply(event.ParticipantLeave{MeetingID: "m1", UserID: "u1"})
	parts = s.Snapshot().Participants("m1")
	if len(parts) != 1 || parts[0].UserID != "u2" {
		t.Errorf("participants after leave = %+v", parts)
	}
}

func TestStreamStatusChange(t *testing.T) {
	s := New(nil, nil, nil)
	s.Apply(join("m1", "u1", 1))
	s.Apply(event.StreamStatusChange{MeetingID: "m1", UserID: "u1", Stream: event.StreamAudio, On: false})
	s.Apply(event.StreamStatusChange{MeetingID: "m1", UserID: "u1", Stream: event.StreamScreen, On: true, Timestamp: 50})

	parts := s.Snapshot().Participants("m1")
	if parts[0].Audio {
		t.Error("audio should be off")
	}
	if !parts[0].Screen || parts[0].ScreenStartedAt != 50 {
		t.Errorf("screen = %v started %d, want on at 50", parts[0].Screen, parts[0].ScreenStartedAt)
	}
}

func TestStreamStatusForUnknownParticipantIgnored(t *testing.T) {
	s := New(nil, nil, nil)
	s.Apply(event.StreamStatusChange{MeetingID: "m1", UserID: "ghost", Stream: event.StreamVideo, On: true})

	if parts := s.Snapshot().Participants("m1"); len(parts) != 0 {
		t.Errorf("participants = %+v, want none", parts)
	}
}

func TestTileProjection(t *testing.T) {
	s := New(nil, nil, nil)
	for i, u := range []string{"u1", "u2", "u3", "u4", "u5"} {
		s.Apply(join("m1", u, int64(i+1)))
	}

	tiles := s.Snapshot().Tiles("m1")
	if len(tiles) != 5 {
		t.Fatalf("got %d tiles, want 5 camera tiles", len(tiles))
	}
	for _, tile := range tiles {
		if tile.Stream != TileCamera {
			t.Errorf("tile %+v, want camera", tile)
		}
	}

	// One participant starts sharing: a sixth tile appears, ahead of the
	// camera tiles.
	s.Apply(event.StreamStatusChange{MeetingID: "m1", UserID: "u3", Stream: event.StreamScreen, On: true, Timestamp: 100})
	tiles = s.Snapshot().Tiles("m1")
	if len(tiles) != 6 {
		t.Fatalf("got %d tiles, want 6", len(tiles))
	}
	if tiles[0].UserID != "u3" || tiles[0].Stream != TileScreen {
		t.Errorf("tiles[0] = %+v, want u3 screen", tiles[0])
	}
}

func TestTileProjectionMultipleScreensNewestFirst(t *testing.T) {
	s := New(nil, nil, nil)
	s.Apply(join("m1", "u1", 1))
	s.Apply(join("m1", "u2", 2))
	s.Apply(event.StreamStatusChange{MeetingID: "m1", UserID: "u1", Stream: event.StreamScreen, On: true, Timestamp: 10})
	s.Apply(event.StreamStatusChange{MeetingID: "m1", UserID: "u2", Stream: event.StreamScreen, On: true, Timestamp: 20})

	tiles := s.Snapshot().Tiles("m1")
	if len(tiles) != 4 {
		t.Fatalf("got %d tiles, want 4", len(tiles))
	}
	if tiles[0].UserID != "u2" || tiles[1].UserID != "u1" {
		t.Errorf("screen order = [%s %s], want newest share first", tiles[0].UserID, tiles[1].UserID)
	}
}

func TestMeetingRemovedWhenEmpty(t *testing.T) {
	s := New(nil, nil, nil)
	s.Apply(join("m1", "u1", 1))
	s.Apply(event.ParticipantLeave{MeetingID: "m1", UserID: "u1"})

	if stats := s.Stats(); stats.Meetings != 0 {
		t.Errorf("meetings = %d, want 0", stats.Meetings)
	}
}

func TestParticipantJoinRequestsProfile(t *testing.T) {
	req := &recordingRequester{}
	s := New(req, nil, nil)
	s.Apply(join("m1", "u1", 1))

	if len(req.ids) != 1 || req.ids[0] != "u1" {
		t.Errorf("requested ids = %v, want [u1]", req.ids)
	}
}

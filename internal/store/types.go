package store

import "github.com/parleyhq/parley/internal/event"

// Room is a chat room as exposed by selectors.
type Room struct {
	ID          string
	Name        string
	Description string
	Type        event.RoomType
	Members     []event.Member
	Muted       bool
	ClearedAt   int64
	MeetingID   string
}

// Message is a single message. Immutable once created; deletion and
// edits are overlays applied at render time.
type Message struct {
	RoomID    string
	StanzaID  string
	SenderID  string
	Body      string
	Timestamp int64
}

// RenderedMessage is a message with its applicable fastenings folded in:
// the latest edit replaces the body, any deletion hides it.
type RenderedMessage struct {
	Message
	Deleted bool
	Edited  bool
	Sender  Profile
}

// ReactionGroup is one distinct reaction value with the actors whose
// reaction is currently active.
type ReactionGroup struct {
	Value  string
	Actors []string
}

// Participant is one live meeting participant.
type Participant struct {
	UserID          string
	Audio           bool
	Video           bool
	Screen          bool
	JoinedAt        int64
	ScreenStartedAt int64
}

// TileStream is the stream a tile renders.
type TileStream string

const (
	TileCamera TileStream = "camera"
	TileScreen TileStream = "screen"
)

// Tile identifies one visual tile: a participant's camera or screen.
// Derived, never stored; recomputed from the participant map.
type Tile struct {
	UserID string
	Stream TileStream
}

// Profile is a cached user profile. Pending marks a placeholder that is
// still waiting on the fetch coalescer.
type Profile struct {
	UserID         string
	Name           string
	Email          string
	PictureVersion int
	Guest          bool
	Anonymous      bool
	Pending        bool
}

// Stats counts store contents, for the daemon's stats endpoint.
type Stats struct {
	Rooms    int `json:"rooms"`
	Messages int `json:"messages"`
	Meetings int `json:"meetings"`
	Profiles int `json:"profiles"`
}

// Package event defines the closed set of events the three push channels
// deliver into the reconciliation store. Each channel's payloads are
// normalized into one of these types before they reach the store, so the
// store's apply switch is exhaustive instead of probing loose shapes.
package event

import "fmt"

// RoomType classifies a room.
type RoomType string

const (
	RoomOneToOne  RoomType = "one_to_one"
	RoomGroup     RoomType = "group"
	RoomTemporary RoomType = "temporary"
)

// FasteningKind is the action a fastening applies to its target message.
type FasteningKind string

const (
	FasteningReaction FasteningKind = "reaction"
	FasteningEdit     FasteningKind = "edit"
	FasteningDeletion FasteningKind = "deletion"
)

// StreamType identifies one of a participant's media streams.
type StreamType string

const (
	StreamAudio  StreamType = "audio"
	StreamVideo  StreamType = "video"
	StreamScreen StreamType = "screen"
)

// Event is the closed union of everything the store can apply.
// Implementations are value types; the marker method keeps the set closed.
type Event interface {
	// Validate reports whether the event carries every required field.
	Validate() error
	isEvent()
}

// Member describes one room member as delivered by the backend channel.
type Member struct {
	UserID    string `json:"user_id"`
	Owner     bool   `json:"owner"`
	External  bool   `json:"external"`
	Temporary bool   `json:"temporary"`
}

// RoomUpsert creates or mutates a room. Empty string fields and nil
// optional fields leave the existing value untouched, mirroring how the
// backend delivers partial room updates.
type RoomUpsert struct {
	RoomID      string   `json:"room_id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Type        RoomType `json:"type"`
	Members     []Member `json:"members"`
	Muted       *bool    `json:"muted"`
	MeetingID   string   `json:"meeting_id"`
}

func (e RoomUpsert) Validate() error {
	if e.RoomID == "" {
		return fmt.Errorf("room upsert: missing room id")
	}
	switch e.Type {
	case "", RoomOneToOne, RoomGroup, RoomTemporary:
	default:
		return fmt.Errorf("room upsert: unknown room type %q", e.Type)
	}
	return nil
}

// RoomDelete removes a room and everything hanging off it.
type RoomDelete struct {
	RoomID string `json:"room_id"`
}

func (e RoomDelete) Validate() error {
	if e.RoomID == "" {
		return fmt.Errorf("room delete: missing room id")
	}
	return nil
}

// RoomCleared sets a room's clearedAt watermark. Messages at or before
// the watermark are suppressed by selectors, never deleted.
type RoomCleared struct {
	RoomID    string `json:"room_id"`
	ClearedAt int64  `json:"cleared_at"`
}

func (e RoomCleared) Validate() error {
	if e.RoomID == "" {
		return fmt.Errorf("room cleared: missing room id")
	}
	return nil
}

// MessageNew delivers a new message. (RoomID, StanzaID) is the
// idempotence key; re-delivery must not duplicate.
type MessageNew struct {
	RoomID    string `json:"room_id"`
	StanzaID  string `json:"stanza_id"`
	SenderID  string `json:"sender_id"`
	Body      string `json:"body"`
	Timestamp int64  `json:"timestamp"`
}

func (e MessageNew) Validate() error {
	if e.RoomID == "" || e.StanzaID == "" {
		return fmt.Errorf("message new: missing room or stanza id")
	}
	if e.SenderID == "" {
		return fmt.Errorf("message new: missing sender id")
	}
	return nil
}

// FasteningAdd overlays a reaction, edit or deletion onto an existing
// message. Idempotence key is (RoomID, OriginalStanzaID, Actor, Kind)
// plus the toggle rule for identical reaction values.
type FasteningAdd struct {
	RoomID           string        `json:"room_id"`
	OriginalStanzaID string        `json:"original_stanza_id"`
	Actor            string        `json:"actor"`
	Kind             FasteningKind `json:"kind"`
	Value            string        `json:"value"`
	Timestamp        int64         `json:"timestamp"`
}

func (e FasteningAdd) Validate() error {
	if e.RoomID == "" || e.OriginalStanzaID == "" {
		return fmt.Errorf("fastening: missing room or stanza id")
	}
	if e.Actor == "" {
		return fmt.Errorf("fastening: missing actor")
	}
	switch e.Kind {
	case FasteningReaction, FasteningEdit, FasteningDeletion:
	default:
		return fmt.Errorf("fastening: unknown kind %q", e.Kind)
	}
	if e.Kind == FasteningReaction && e.Value == "" {
		return fmt.Errorf("fastening: reaction without value")
	}
	return nil
}

// ParticipantJoin adds a participant to a meeting's participant map.
type ParticipantJoin struct {
	MeetingID string `json:"meeting_id"`
	UserID    string `json:"user_id"`
	JoinedAt  int64  `json:"joined_at"`
	Audio     bool   `json:"audio"`
	Video     bool   `json:"video"`
	Screen    bool   `json:"screen"`
}

func (e ParticipantJoin) Validate() error {
	if e.MeetingID == "" || e.UserID == "" {
		return fmt.Errorf("participant join: missing meeting or user id")
	}
	return nil
}

// ParticipantLeave removes a participant (leave or kick).
type ParticipantLeave struct {
	MeetingID string `json:"meeting_id"`
	UserID    string `json:"user_id"`
}

func (e ParticipantLeave) Validate() error {
	if e.MeetingID == "" || e.UserID == "" {
		return fmt.Errorf("participant leave: missing meeting or user id")
	}
	return nil
}

// StreamStatusChange flips one stream of one participant on or off.
type StreamStatusChange struct {
	MeetingID string     `json:"meeting_id"`
	UserID    string     `json:"user_id"`
	Stream    StreamType `json:"stream"`
	On        bool       `json:"on"`
	Timestamp int64      `json:"timestamp"`
}

func (e StreamStatusChange) Validate() error {
	if e.MeetingID == "" || e.UserID == "" {
		return fmt.Errorf("stream status: missing meeting or user id")
	}
	switch e.Stream {
	case StreamAudio, StreamVideo, StreamScreen:
	default:
		return fmt.Errorf("stream status: unknown stream %q", e.Stream)
	}
	return nil
}

// Profile is one resolved user profile from a bulk fetch.
type Profile struct {
	UserID         string `json:"user_id"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	PictureVersion int    `json:"picture_version"`
	Guest          bool   `json:"guest"`
	Anonymous      bool   `json:"anonymous"`
}

// ProfileResolved is the terminal cache-update event produced by the
// fetch coalescer. Applying it never triggers further coalescer calls.
type ProfileResolved struct {
	Profiles []Profile `json:"profiles"`
}

func (e ProfileResolved) Validate() error {
	for _, p := range e.Profiles {
		if p.UserID == "" {
			return fmt.Errorf("profile resolved: profile without user id")
		}
	}
	return nil
}

func (RoomUpsert) isEvent()         {}
func (RoomDelete) isEvent()         {}
func (RoomCleared) isEvent()        {}
func (MessageNew) isEvent()         {}
func (FasteningAdd) isEvent()       {}
func (ParticipantJoin) isEvent()    {}
func (ParticipantLeave) isEvent()   {}
func (StreamStatusChange) isEvent() {}
func (ProfileResolved) isEvent()    {}

package api

import (
	"github.com/parleyhq/parley/internal/event"
	"github.com/parleyhq/parley/internal/layout"
	"github.com/parleyhq/parley/internal/store"
)

// Room is the wire shape of a room.
type Room struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Type        string         `json:"type"`
	Members     []event.Member `json:"members,omitempty"`
	Muted       bool           `json:"muted"`
	ClearedAt   int64          `json:"cleared_at,omitempty"`
	MeetingID   string         `json:"meeting_id,omitempty"`
	Empty       bool           `json:"empty"`
}

// Message is the wire shape of a rendered message.
type Message struct {
	RoomID     string  `json:"room_id"`
	StanzaID   string  `json:"stanza_id"`
	SenderID   string  `json:"sender_id"`
	SenderName string  `json:"sender_name"`
	Pending    bool    `json:"sender_pending,omitempty"`
	Body       string  `json:"body"`
	Timestamp  int64   `json:"timestamp"`
	Deleted    bool    `json:"deleted,omitempty"`
	Edited     bool    `json:"edited,omitempty"`
	Reactions  []Group `json:"reactions,omitempty"`
}

// Group is one reaction group on a message.
type Group struct {
	Value  string   `json:"value"`
	Actors []string `json:"actors"`
}

// Participant is the wire shape of a meeting participant.
type Participant struct {
	UserID   string `json:"user_id"`
	Name     string `json:"name"`
	Audio    bool   `json:"audio"`
	Video    bool   `json:"video"`
	Screen   bool   `json:"screen"`
	JoinedAt int64  `json:"joined_at"`
}

// Tile is the wire shape of a tile descriptor.
type Tile struct {
	UserID string `json:"user_id"`
	Stream string `json:"stream"`
}

// Arrangement is the wire shape of a computed layout.
type Arrangement struct {
	Composition string `json:"composition"`
	Rows        int    `json:"rows"`
	Columns     int    `json:"columns"`
	TileWidth   int    `json:"tile_width"`
	TileHeight  int    `json:"tile_height"`
	PageIndex   int    `json:"page_index"`
	PageSize    int    `json:"page_size"`
	AtStart     bool   `json:"at_start"`
	AtEnd       bool   `json:"at_end"`
	Tiles       []Tile `json:"tiles"`
	Pinned      *Tile  `json:"pinned,omitempty"`
}

// Health is the wire shape of the combined connectivity status.
type Health struct {
	Combined      string            `json:"combined"`
	Channels      map[string]string `json:"channels"`
	BannerVisible bool              `json:"banner_visible"`
}

// Envelope wraps a pushed bus event on the stream endpoint.
type Envelope struct {
	EventID          string `json:"event_id"`
	Profile          string `json:"profile"`
	OccurredAtUnixMs int64  `json:"occurred_at_unix_ms"`
	Kind             string `json:"kind"`
}

func roomToWire(r store.Room, empty bool) Room {
	return Room{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Type:        string(r.Type),
		Members:     r.Members,
		Muted:       r.Muted,
		ClearedAt:   r.ClearedAt,
		MeetingID:   r.MeetingID,
		Empty:       empty,
	}
}

func messageToWire(m store.RenderedMessage, groups []store.ReactionGroup) Message {
	msg := Message{
		RoomID:     m.RoomID,
		StanzaID:   m.StanzaID,
		SenderID:   m.SenderID,
		SenderName: m.Sender.Name,
		Pending:    m.Sender.Pending,
		Body:       m.Body,
		Timestamp:  m.Timestamp,
		Deleted:    m.Deleted,
		Edited:     m.Edited,
	}
	for _, g := range groups {
		msg.Reactions = append(msg.Reactions, Group{Value: g.Value, Actors: g.Actors})
	}
	return msg
}

func tileToWire(t store.Tile) Tile {
	return Tile{UserID: t.UserID, Stream: string(t.Stream)}
}

func arrangementToWire(a layout.Arrangement) Arrangement {
	out := Arrangement{
		Composition: string(a.Composition),
		Rows:        a.Grid.Rows,
		Columns:     a.Grid.Columns,
		TileWidth:   a.Grid.TileWidth,
		TileHeight:  a.Grid.TileHeight,
		PageIndex:   a.Page.Index,
		PageSize:    a.Page.PageSize,
		AtStart:     a.Page.AtStart,
		AtEnd:       a.Page.AtEnd,
	}
	for _, t := range a.Tiles {
		out.Tiles = append(out.Tiles, tileToWire(t))
	}
	if a.Pinned != nil {
		pinned := tileToWire(*a.Pinned)
		out.Pinned = &pinned
	}
	return out
}

package store

import (
	"sort"

	"github.com/parleyhq/parley/internal/event"
)

// Snapshot is an immutable copy of the store's state. Selectors are pure
// functions over a snapshot, so derived views can be computed and tested
// without holding the store's lock or mounting any UI.
type Snapshot struct {
	rooms    map[string]snapRoom
	meetings map[string]snapMeeting
	profiles map[string]Profile
}

type snapRoom struct {
	room     Room
	order    []string
	messages map[string]Message
	overlays map[string]snapOverlay
}

type snapOverlay struct {
	reactions []reactionEntry
	edits     []event.FasteningAdd
	deleted   bool
}

type snapMeeting struct {
	order        []string
	participants map[string]Participant
}

// Snapshot returns an immutable copy of the current state.
func (s *Store) Snapshot() *Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := &Snapshot{
		rooms:    make(map[string]snapRoom, len(s.rooms)),
		meetings: make(map[string]snapMeeting, len(s.meetings)),
		profiles: make(map[string]Profile, len(s.profiles)),
	}
	for id, p := range s.profiles {
		snap.profiles[id] = p
	}
	for id, rs := range s.rooms {
		sr := snapRoom{
			room:     rs.room,
			order:    append([]string(nil), rs.order...),
			messages: make(map[string]Message, len(rs.messages)),
			overlays: make(map[string]snapOverlay, len(rs.overlays)),
		}
		sr.room.Members = append([]event.Member(nil), rs.room.Members...)
		for sid, m := range rs.messages {
			sr.messages[sid] = *m
		}
		for sid, ov := range rs.overlays {
			sr.overlays[sid] = snapOverlay{
				reactions: append([]reactionEntry(nil), ov.reactions...),
				edits:     append([]event.FasteningAdd(nil), ov.edits...),
				deleted:   len(ov.deleted) > 0,
			}
		}
		snap.rooms[id] = sr
	}
	for id, ms := range s.meetings {
		sm := snapMeeting{
			order:        append([]string(nil), ms.order...),
			participants: make(map[string]Participant, len(ms.participants)),
		}
		for uid, p := range ms.participants {
			sm.participants[uid] = *p
		}
		snap.meetings[id] = sm
	}
	return snap
}

// Rooms returns all rooms ordered by most recent visible message first,
// then by id for rooms without messages.
func (sn *Snapshot) Rooms() []Room {
	type entry struct {
		room   Room
		lastTs int64
	}
	entries := make([]entry, 0, len(sn.rooms))
	for id, sr := range sn.rooms {
		last := int64(0)
		for _, msg := range sn.VisibleMessages(id) {
			if msg.Timestamp > last {
				last = msg.Timestamp
			}
		}
		entries = append(entries, entry{room: sr.room, lastTs: last})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].lastTs != entries[j].lastTs {
			return entries[i].lastTs > entries[j].lastTs
		}
		return entries[i].room.ID < entries[j].room.ID
	})
	rooms := make([]Room, len(entries))
	for i, e := range entries {
		rooms[i] = e.room
	}
	return rooms
}

// Room returns one room by id.
func (sn *Snapshot) Room(roomID string) (Room, bool) {
	sr, ok := sn.rooms[roomID]
	if !ok {
		return Room{}, false
	}
	return sr.room, true
}

// VisibleMessages returns a room's messages in arrival order with
// overlays applied, filtering out messages at or before the room's
// clearedAt watermark. Arrival order is channel-delivery order, not
// timestamp order.
func (sn *Snapshot) VisibleMessages(roomID string) []RenderedMessage {
	sr, ok := sn.rooms[roomID]
	if !ok {
		return nil
	}
	var out []RenderedMessage
	for _, sid := range sr.order {
		m, ok := sr.messages[sid]
		if !ok {
			continue
		}
		if m.Timestamp <= sr.room.ClearedAt {
			continue
		}
		rm := RenderedMessage{Message: m, Sender: sn.Profile(m.SenderID)}
		if ov, ok := sr.overlays[sid]; ok {
			rm.Deleted = ov.deleted
			if n := len(ov.edits); n > 0 {
				rm.Body = ov.edits[n-1].Value
				rm.Edited = true
			}
		}
		out = append(out, rm)
	}
	return out
}

// IsRoomEmpty reports whether a room has no visible messages.
func (sn *Snapshot) IsRoomEmpty(roomID string) bool {
	return len(sn.VisibleMessages(roomID)) == 0
}

// ReactionGroups returns the active reactions on a message grouped by
// value, most recently inserted distinct value first. Actors within a
// group keep their reaction arrival order.
func (sn *Snapshot) ReactionGroups(roomID, stanzaID string) []ReactionGroup {
	sr, ok := sn.rooms[roomID]
	if !ok {
		return nil
	}
	ov, ok := sr.overlays[stanzaID]
	if !ok {
		return nil
	}

	var values []string
	actors := make(map[string][]string)
	for _, r := range ov.reactions {
		if _, seen := actors[r.value]; !seen {
			values = append(values, r.value)
		}
		actors[r.value] = append(actors[r.value], r.actor)
	}

	groups := make([]ReactionGroup, 0, len(values))
	for i := len(values) - 1; i >= 0; i-- {
		groups = append(groups, ReactionGroup{Value: values[i], Actors: actors[values[i]]})
	}
	return groups
}

// Participants returns a meeting's participants in join order.
func (sn *Snapshot) Participants(meetingID string) []Participant {
	sm, ok := sn.meetings[meetingID]
	if !ok {
		return nil
	}
	out := make([]Participant, 0, len(sm.order))
	for _, uid := range sm.order {
		if p, ok := sm.participants[uid]; ok {
			out = append(out, p)
		}
	}
	return out
}

// Tiles projects a meeting's participants onto tile descriptors: screen
// tiles first (most recently started share first), then one camera tile
// per participant in join order.
func (sn *Snapshot) Tiles(meetingID string) []Tile {
	parts := sn.Participants(meetingID)
	if len(parts) == 0 {
		return nil
	}

	var screens []Participant
	for _, p := range parts {
		if p.Screen {
			screens = append(screens, p)
		}
	}
	sort.SliceStable(screens, func(i, j int) bool {
		return screens[i].ScreenStartedAt > screens[j].ScreenStartedAt
	})

	tiles := make([]Tile, 0, len(parts)+len(screens))
	for _, p := range screens {
		tiles = append(tiles, Tile{UserID: p.UserID, Stream: TileScreen})
	}
	for _, p := range parts {
		tiles = append(tiles, Tile{UserID: p.UserID, Stream: TileCamera})
	}
	return tiles
}

// Profile returns the cached profile for a user, or a pending
// placeholder if the user has never been referenced.
func (sn *Snapshot) Profile(userID string) Profile {
	if p, ok := sn.profiles[userID]; ok {
		return p
	}
	return Profile{UserID: userID, Name: userID, Pending: true}
}

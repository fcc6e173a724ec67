package store

import (
	"github.com/parleyhq/parley/internal/bus"
	"github.com/parleyhq/parley/internal/event"
)

func (s *Store) applyRoomUpsert(e event.RoomUpsert) {
	rs := s.room(e.RoomID)
	r := &rs.room

	// Partial update semantics: empty/nil fields leave existing values.
	if e.Name != "" {
		r.Name = e.Name
	}
	if e.Description != "" {
		r.Description = e.Description
	}
	if e.Type != "" {
		r.Type = e.Type
	}
	if e.Muted != nil {
		r.Muted = *e.Muted
	}
	if e.MeetingID != "" {
		r.MeetingID = e.MeetingID
	}
	if e.Members != nil {
		r.Members = make([]event.Member, len(e.Members))
		copy(r.Members, e.Members)
		for _, m := range e.Members {
			s.noteUser(m.UserID)
		}
	}

	s.publish(bus.KindRoomUpserted, map[string]string{"room_id": e.RoomID})
}

func (s *Store) applyRoomDelete(e event.RoomDelete) {
	if _, ok := s.rooms[e.RoomID]; !ok {
		return
	}
	delete(s.rooms, e.RoomID)
	s.publish(bus.KindRoomDeleted, map[string]string{"room_id": e.RoomID})
}

func (s *Store) applyRoomCleared(e event.RoomCleared) {
	rs := s.room(e.RoomID)
	// Watermark only moves forward; messages stay, selectors filter.
	if e.ClearedAt > rs.room.ClearedAt {
		rs.room.ClearedAt = e.ClearedAt
	}
	s.publish(bus.KindRoomUpserted, map[string]string{"room_id": e.RoomID})
}

func (s *Store) applyMessageNew(e event.MessageNew) {
	rs := s.room(e.RoomID)

	// Idempotence key (room_id, stanza_id): re-delivery is a no-op,
	// messages are immutable once created.
	if _, ok := rs.messages[e.StanzaID]; ok {
		return
	}

	rs.messages[e.StanzaID] = &Message{
		RoomID:    e.RoomID,
		StanzaID:  e.StanzaID,
		SenderID:  e.SenderID,
		Body:      e.Body,
		Timestamp: e.Timestamp,
	}
	rs.order = append(rs.order, e.StanzaID)
	s.noteUser(e.SenderID)

	s.publish(bus.KindMessageUpserted, map[string]string{
		"room_id":   e.RoomID,
		"stanza_id": e.StanzaID,
	})
}

func (s *Store) applyFastening(e event.FasteningAdd) {
	rs := s.room(e.RoomID)
	ov := rs.overlay(e.OriginalStanzaID)
	s.noteUser(e.Actor)

	switch e.Kind {
	case event.FasteningReaction:
		ov.applyReaction(e.Actor, e.Value)
	case event.FasteningEdit:
		// A re-delivered edit carries the same timestamp as the
		// original and is a no-op. An edit back to an earlier text is a
		// genuine new edit and becomes the latest.
		for i := len(ov.edits) - 1; i >= 0; i-- {
			if ov.edits[i].Actor == e.Actor && ov.edits[i].Value == e.Value && ov.edits[i].Timestamp == e.Timestamp {
				return
			}
		}
		ov.edits = append(ov.edits, e)
	case event.FasteningDeletion:
		if _, ok := ov.deleted[e.Actor]; ok {
			return
		}
		ov.deleted[e.Actor] = struct{}{}
	}

	s.publish(bus.KindFasteningApplied, map[string]string{
		"room_id":   e.RoomID,
		"stanza_id": e.OriginalStanzaID,
		"kind":      string(e.Kind),
	})
}

// applyReaction implements the toggle/replace rule: at most one active
// reaction per actor; an identical value toggles it off, a different
// value replaces it. A replacement or re-add counts as a fresh insertion
// for rendering order.
func (ov *overlayState) applyReaction(actor, value string) {
	for i, r := range ov.reactions {
		if r.actor != actor {
			continue
		}
		ov.reactions = append(ov.reactions[:i], ov.reactions[i+1:]...)
		if r.value == value {
			return // toggle off
		}
		break
	}
	ov.reactions = append(ov.reactions, reactionEntry{actor: actor, value: value})
}

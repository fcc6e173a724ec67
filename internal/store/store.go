package store

import (
	"sync"
	"time"

	"github.com/parleyhq/parley/internal/bus"
	"github.com/parleyhq/parley/internal/event"
	"go.uber.org/zap"
)

// ProfileRequester receives user ids the store could not resolve from
// its cache. Request is invoked outside the store's lock, so an
// implementation may apply a ProfileResolved event synchronously.
type ProfileRequester interface {
	Request(userID string)
}

// Store is the authoritative in-memory state container. It is the single
// writer of room, message, fastening, participant and profile state; all
// mutation goes through Apply, all reads through Snapshot.
//
// Events from the same channel are applied in delivery order. Events from
// different channels carry no cross-channel ordering guarantee; the store
// deliberately performs no clock reconciliation between channels.
type Store struct {
	mu        sync.Mutex
	rooms     map[string]*roomState
	meetings  map[string]*meetingState
	profiles  map[string]Profile
	queue     []event.Event
	applying  bool
	requester ProfileRequester
	bus       *bus.Bus
	logger    *zap.Logger

	// Side effects collected while the lock is held, delivered by the
	// drain loop after it releases the lock.
	pendingRequests  []string
	pendingPublishes []bus.Event
}

type roomState struct {
	room     Room
	order    []string
	messages map[string]*Message
	overlays map[string]*overlayState
}

// overlayState holds the fastenings for one (room, stanza) target. It may
// exist before the message itself arrives, since fastenings can be
// delivered on a different channel than the message they reference.
type overlayState struct {
	reactions []reactionEntry
	edits     []event.FasteningAdd
	deleted   map[string]struct{}
}

type reactionEntry struct {
	actor string
	value string
}

type meetingState struct {
	order        []string
	participants map[string]*Participant
}

// New creates an empty store. requester may be nil in tests that do not
// exercise profile resolution; b and logger may be nil likewise.
func New(requester ProfileRequester, b *bus.Bus, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		rooms:     make(map[string]*roomState),
		meetings:  make(map[string]*meetingState),
		profiles:  make(map[string]Profile),
		requester: requester,
		bus:       b,
		logger:    logger,
	}
}

// SetRequester wires the profile requester after construction. The store
// and the coalescer reference each other, so one side is attached late.
func (s *Store) SetRequester(r ProfileRequester) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requester = r
}

// Apply validates and applies one incoming event. Malformed events are
// dropped and logged; valid events mutate state atomically. Apply is
// safe to call re-entrantly: an event applied from inside a requester or
// bus callback is queued and applied after the current one completes, so
// derived events can never recurse unboundedly.
//
// Outbound calls (profile requests, bus publishes) happen with the lock
// released. A callback that applies an event synchronously therefore
// finds the drain in progress, enqueues and returns; the draining call
// picks the event up on its next pass.
func (s *Store) Apply(evt event.Event) {
	if evt == nil {
		return
	}
	if err := evt.Validate(); err != nil {
		s.logger.Warn("dropping malformed event", zap.Error(err))
		return
	}

	s.mu.Lock()
	s.queue = append(s.queue, evt)
	if s.applying {
		s.mu.Unlock()
		return
	}
	s.applying = true

	for len(s.queue) > 0 {
		next := s.queue[0]
		s.queue = s.queue[1:]
		s.applyOne(next)

		requests := s.pendingRequests
		publishes := s.pendingPublishes
		s.pendingRequests, s.pendingPublishes = nil, nil
		requester := s.requester
		s.mu.Unlock()

		if requester != nil {
			for _, id := range requests {
				requester.Request(id)
			}
		}
		for _, be := range publishes {
			s.bus.Publish(be)
		}

		s.mu.Lock()
	}
	s.applying = false
	s.mu.Unlock()
}

func (s *Store) applyOne(evt event.Event) {
	switch e := evt.(type) {
	case event.RoomUpsert:
		s.applyRoomUpsert(e)
	case event.RoomDelete:
		s.applyRoomDelete(e)
	case event.RoomCleared:
		s.applyRoomCleared(e)
	case event.MessageNew:
		s.applyMessageNew(e)
	case event.FasteningAdd:
		s.applyFastening(e)
	case event.ParticipantJoin:
		s.applyParticipantJoin(e)
	case event.ParticipantLeave:
		s.applyParticipantLeave(e)
	case event.StreamStatusChange:
		s.applyStreamStatus(e)
	case event.ProfileResolved:
		s.applyProfileResolved(e)
	}
}

// room returns the state for roomID, creating a bare room on first
// reference from any channel.
func (s *Store) room(roomID string) *roomState {
	rs, ok := s.rooms[roomID]
	if !ok {
		rs = &roomState{
			room:     Room{ID: roomID},
			messages: make(map[string]*Message),
			overlays: make(map[string]*overlayState),
		}
		s.rooms[roomID] = rs
	}
	return rs
}

func (rs *roomState) overlay(stanzaID string) *overlayState {
	ov, ok := rs.overlays[stanzaID]
	if !ok {
		ov = &overlayState{deleted: make(map[string]struct{})}
		rs.overlays[stanzaID] = ov
	}
	return ov
}

// noteUser forwards an unresolved user id to the fetch coalescer and
// seeds a pending placeholder profile. Resolved ids are left alone; a
// still-pending id is forwarded again so that ids from a failed batch
// are naturally retried on their next reference (the coalescer dedupes
// overlapping requests itself).
func (s *Store) noteUser(userID string) {
	if userID == "" {
		return
	}
	if p, ok := s.profiles[userID]; ok && !p.Pending {
		return
	}
	s.profiles[userID] = Profile{UserID: userID, Name: userID, Pending: true}
	s.pendingRequests = append(s.pendingRequests, userID)
}

func (s *Store) applyProfileResolved(e event.ProfileResolved) {
	for _, p := range e.Profiles {
		s.profiles[p.UserID] = Profile{
			UserID:         p.UserID,
			Name:           p.Name,
			Email:          p.Email,
			PictureVersion: p.PictureVersion,
			Guest:          p.Guest,
			Anonymous:      p.Anonymous,
		}
	}
	s.publish(bus.KindProfileCached, map[string]int{"profiles": len(e.Profiles)})
}

// publish stages a bus event for delivery once the drain loop drops the
// lock.
func (s *Store) publish(kind string, payload any) {
	if s.bus == nil {
		return
	}
	s.pendingPublishes = append(s.pendingPublishes, bus.Event{Kind: kind, Timestamp: time.Now(), Payload: payload})
}

// Stats returns entity counts.
func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	msgs := 0
	for _, rs := range s.rooms {
		msgs += len(rs.messages)
	}
	return Stats{
		Rooms:    len(s.rooms),
		Messages: msgs,
		Meetings: len(s.meetings),
		Profiles: len(s.profiles),
	}
}

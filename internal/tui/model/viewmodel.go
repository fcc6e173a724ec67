package model

import (
	"context"
	"sync"

	"github.com/parleyhq/parley/internal/api"
	"github.com/parleyhq/parley/internal/tui/client"
)

// ViewModel caches daemon state between refreshes so views never block on
// the socket while rendering.
type ViewModel struct {
	mu sync.RWMutex

	client       *client.Client
	rooms        []api.Room
	messages     []api.Message
	participants []api.Participant
	health       api.Health

	ActiveRoomID    string
	ActiveMeetingID string
	Flash           Flash
}

// NewViewModel creates a view model backed by the daemon client.
func NewViewModel(c *client.Client) *ViewModel {
	return &ViewModel{client: c}
}

// LoadRooms refreshes the room list.
func (vm *ViewModel) LoadRooms(ctx context.Context) error {
	rooms, err := vm.client.Rooms(ctx)
	if err != nil {
		return err
	}
	vm.mu.Lock()
	vm.rooms = rooms
	vm.mu.Unlock()
	return nil
}

// LoadMessages refreshes the visible messages for one room and makes it
// the active room.
func (vm *ViewModel) LoadMessages(ctx context.Context, roomID string) error {
	msgs, err := vm.client.Messages(ctx, roomID)
	if err != nil {
		return err
	}
	vm.mu.Lock()
	vm.ActiveRoomID = roomID
	vm.messages = msgs
	vm.mu.Unlock()
	return nil
}

// LoadMeeting refreshes the participant roster for one meeting.
func (vm *ViewModel) LoadMeeting(ctx context.Context, meetingID string) error {
	parts, _, err := vm.client.Meeting(ctx, meetingID)
	if err != nil {
		return err
	}
	vm.mu.Lock()
	vm.ActiveMeetingID = meetingID
	vm.participants = parts
	vm.mu.Unlock()
	return nil
}

// LoadHealth refreshes the connectivity status.
func (vm *ViewModel) LoadHealth(ctx context.Context) error {
	h, err := vm.client.Health(ctx)
	if err != nil {
		return err
	}
	vm.mu.Lock()
	vm.health = h
	vm.mu.Unlock()
	return nil
}

// Rooms returns the cached room list.
func (vm *ViewModel) Rooms() []api.Room {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.rooms
}

// RoomName returns the display name of a cached room, falling back to id.
func (vm *ViewModel) RoomName(roomID string) string {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	for _, r := range vm.rooms {
		if r.ID == roomID && r.Name != "" {
			return r.Name
		}
	}
	return roomID
}

// MeetingID returns the meeting attached to a cached room, if any.
func (vm *ViewModel) MeetingID(roomID string) string {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	for _, r := range vm.rooms {
		if r.ID == roomID {
			return r.MeetingID
		}
	}
	return ""
}

// Messages returns the cached messages of the active room.
func (vm *ViewModel) Messages() []api.Message {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.messages
}

// Participants returns the cached roster of the active meeting.
func (vm *ViewModel) Participants() []api.Participant {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.participants
}

// Health returns the cached connectivity status.
func (vm *ViewModel) Health() api.Health {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.health
}

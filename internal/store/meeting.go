package store

import (
	"github.com/parleyhq/parley/internal/bus"
	"github.com/parleyhq/parley/internal/event"
)

func (s *Store) meeting(meetingID string) *meetingState {
	ms, ok := s.meetings[meetingID]
	if !ok {
		ms = &meetingState{participants: make(map[string]*Participant)}
		s.meetings[meetingID] = ms
	}
	return ms
}

func (s *Store) applyParticipantJoin(e event.ParticipantJoin) {
	ms := s.meeting(e.MeetingID)

	// Re-delivered join for a present participant is a no-op.
	if _, ok := ms.participants[e.UserID]; ok {
		return
	}

	p := &Participant{
		UserID:   e.UserID,
		Audio:    e.Audio,
		Video:    e.Video,
		Screen:   e.Screen,
		JoinedAt: e.JoinedAt,
	}
	if e.Screen {
		p.ScreenStartedAt = e.JoinedAt
	}
	ms.participants[e.UserID] = p
	ms.order = append(ms.order, e.UserID)
	s.noteUser(e.UserID)

	s.publish(bus.KindMeetingChanged, map[string]string{
		"meeting_id": e.MeetingID,
		"user_id":    e.UserID,
	})
}

func (s *Store) applyParticipantLeave(e event.ParticipantLeave) {
	ms, ok := s.meetings[e.MeetingID]
	if !ok {
		return
	}
	if _, ok := ms.participants[e.UserID]; !ok {
		return
	}
	delete(ms.participants, e.UserID)
	for i, id := range ms.order {
		if id == e.UserID {
			ms.order = append(ms.order[:i], ms.order[i+1:]...)
			break
		}
	}
	if len(ms.participants) == 0 {
		delete(s.meetings, e.MeetingID)
	}

	s.publish(bus.KindMeetingChanged, map[string]string{
		"meeting_id": e.MeetingID,
		"user_id":    e.UserID,
	})
}

func (s *Store) applyStreamStatus(e event.StreamStatusChange) {
	ms, ok := s.meetings[e.MeetingID]
	if !ok {
		return
	}
	p, ok := ms.participants[e.UserID]
	if !ok {
		return
	}

	switch e.Stream {
	case event.StreamAudio:
		if p.Audio == e.On {
			return
		}
		p.Audio = e.On
	case event.StreamVideo:
		if p.Video == e.On {
			return
		}
		p.Video = e.On
	case event.StreamScreen:
		if p.Screen == e.On {
			return
		}
		p.Screen = e.On
		if e.On {
			p.ScreenStartedAt = e.Timestamp
		} else {
			p.ScreenStartedAt = 0
		}
	}

	s.publish(bus.KindMeetingChanged, map[string]string{
		"meeting_id": e.MeetingID,
		"user_id":    e.UserID,
	})
}

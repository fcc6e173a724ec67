package event

import (
	"encoding/json"
	"fmt"
)

// Frame is the wire envelope every channel uses: a type tag plus the
// type-specific payload.
type Frame struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Frame type tags.
const (
	TypeRoomUpsert       = "room.upsert"
	TypeRoomDelete       = "room.delete"
	TypeRoomCleared      = "room.cleared"
	TypeMessageNew       = "message.new"
	TypeFasteningAdd     = "fastening.add"
	TypeParticipantJoin  = "participant.join"
	TypeParticipantLeave = "participant.leave"
	TypeStreamStatus     = "stream.status"
	TypeProfileResolved  = "profile.resolved"
)

// Decode turns a wire frame into a validated event. An unknown type tag
// or a payload missing required fields is an error; callers drop and log
// such frames without touching store state.
func Decode(f Frame) (Event, error) {
	var evt Event
	switch f.Type {
	case TypeRoomUpsert:
		evt = unmarshal[RoomUpsert](f.Data)
	case TypeRoomDelete:
		evt = unmarshal[RoomDelete](f.Data)
	case TypeRoomCleared:
		evt = unmarshal[RoomCleared](f.Data)
	case TypeMessageNew:
		evt = unmarshal[MessageNew](f.Data)
	case TypeFasteningAdd:
		evt = unmarshal[FasteningAdd](f.Data)
	case TypeParticipantJoin:
		evt = unmarshal[ParticipantJoin](f.Data)
	case TypeParticipantLeave:
		evt = unmarshal[ParticipantLeave](f.Data)
	case TypeStreamStatus:
		evt = unmarshal[StreamStatusChange](f.Data)
	case TypeProfileResolved:
		evt = unmarshal[ProfileResolved](f.Data)
	default:
		return nil, fmt.Errorf("unknown frame type %q", f.Type)
	}
	if evt == nil {
		return nil, fmt.Errorf("malformed %q payload", f.Type)
	}
	if err := evt.Validate(); err != nil {
		return nil, err
	}
	return evt, nil
}

// TypeTag returns the wire type tag for an event, for encoding outbound
// frames (tests and the daemon's injection endpoint).
func TypeTag(evt Event) string {
	switch evt.(type) {
	case RoomUpsert:
		return TypeRoomUpsert
	case RoomDelete:
		return TypeRoomDelete
	case RoomCleared:
		return TypeRoomCleared
	case MessageNew:
		return TypeMessageNew
	case FasteningAdd:
		return TypeFasteningAdd
	case ParticipantJoin:
		return TypeParticipantJoin
	case ParticipantLeave:
		return TypeParticipantLeave
	case StreamStatusChange:
		return TypeStreamStatus
	case ProfileResolved:
		return TypeProfileResolved
	default:
		return ""
	}
}

// Encode wraps an event in a wire frame.
func Encode(evt Event) (Frame, error) {
	tag := TypeTag(evt)
	if tag == "" {
		return Frame{}, fmt.Errorf("unencodable event type %T", evt)
	}
	data, err := json.Marshal(evt)
	if err != nil {
		return Frame{}, fmt.Errorf("marshal %s: %w", tag, err)
	}
	return Frame{Type: tag, Data: data}, nil
}

func unmarshal[T Event](data []byte) Event {
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil
	}
	return v
}

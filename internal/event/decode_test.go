package event

import (
	"encoding/json"
	"testing"
)

func TestDecodeRoundTrip(t *testing.T) {
	muted := true
	events := []Event{
		RoomUpsert{RoomID: "r1", Name: "Design", Type: RoomGroup, Muted: &muted,
			Members: []Member{{UserID: "u1", Owner: true}, {UserID: "u2", External: true}}},
		RoomDelete{RoomID: "r1"},
		RoomCleared{RoomID: "r1", ClearedAt: 1000},
		MessageNew{RoomID: "r1", StanzaID: "s1", SenderID: "u1", Body: "hi", Timestamp: 42},
		FasteningAdd{RoomID: "r1", OriginalStanzaID: "s1", Actor: "u2", Kind: FasteningReaction, Value: "👍"},
		ParticipantJoin{MeetingID: "m1", UserID: "u1", JoinedAt: 10, Audio: true, Video: true},
		ParticipantLeave{MeetingID: "m1", UserID: "u1"},
		StreamStatusChange{MeetingID: "m1", UserID: "u1", Stream: StreamScreen, On: true, Timestamp: 5},
		ProfileResolved{Profiles: []Profile{{UserID: "u1", Name: "Ana"}}},
	}

	for _, evt := range events {
		t.Run(TypeTag(evt), func(t *testing.T) {
			frame, err := Encode(evt)
			if err != nil {
				t.Fatalf("Encode() error = %v", err)
			}
			decoded, err := Decode(frame)
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if TypeTag(decoded) != TypeTag(evt) {
				t.Errorf("decoded type = %s, want %s", TypeTag(decoded), TypeTag(evt))
			}
		})
	}
}

func TestDecodeUnknownType(t *testing.T) {
	_, err := Decode(Frame{Type: "bogus.kind", Data: json.RawMessage(`{}`)})
	if err == nil {
		t.Error("Decode() with unknown type should fail")
	}
}

func TestDecodeRejectsMissingFields(t *testing.T) {
	tests := []struct {
		name  string
		frame Frame
	}{
		{"message without stanza id", Frame{Type: TypeMessageNew, Data: json.RawMessage(`{"room_id":"r1","sender_id":"u1"}`)}},
		{"message without sender", Frame{Type: TypeMessageNew, Data: json.RawMessage(`{"room_id":"r1","stanza_id":"s1"}`)}},
		{"fastening with unknown kind", Frame{Type: TypeFasteningAdd, Data: json.RawMessage(`{"room_id":"r1","original_stanza_id":"s1","actor":"u1","kind":"wave"}`)}},
		{"reaction without value", Frame{Type: TypeFasteningAdd, Data: json.RawMessage(`{"room_id":"r1","original_stanza_id":"s1","actor":"u1","kind":"reaction"}`)}},
		{"room upsert without id", Frame{Type: TypeRoomUpsert, Data: json.RawMessage(`{"name":"x"}`)}},
		{"stream status with unknown stream", Frame{Type: TypeStreamStatus, Data: json.RawMessage(`{"meeting_id":"m1","user_id":"u1","stream":"hologram"}`)}},
		{"invalid json", Frame{Type: TypeMessageNew, Data: json.RawMessage(`{"room_id":`)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decode(tt.frame); err == nil {
				t.Error("Decode() should fail")
			}
		})
	}
}

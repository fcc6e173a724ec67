package bus

import "time"

// Event represents a domain event published on the bus.
type Event struct {
	Kind      string
	Timestamp time.Time
	Payload   any
}

// Well-known kind namespaces. Subscribers filter by prefix, so a
// subscription to "store." receives every store-originated kind.
const (
	KindRoomUpserted     = "store.room_upserted"
	KindRoomDeleted      = "store.room_deleted"
	KindMessageUpserted  = "store.message_upserted"
	KindFasteningApplied = "store.fastening_applied"
	KindMeetingChanged   = "store.meeting_changed"
	KindProfileCached    = "store.profile_cached"
	KindHealthChanged    = "health.status_changed"
	KindProfileResolved  = "profile.resolved"
	KindProfileFailed    = "profile.batch_failed"
)

package raid

import (
	"encoding/json"
	"time"
)

// EventType names a raid event
type EventType string

// Events players send
const (
	EventHackAttempt EventType = "hack_attempt"
	EventProgress    EventType = "progress"
	EventDamage      EventType = "damage"
	EventLoot        EventType = "loot"
	EventComplete    EventType = "complete"
)

// Events the registry generates
const (
	EventJoin  EventType = "join"
	EventLeave EventType = "leave"
)

// PlayerEvents lists the event types a participant may emit
var PlayerEvents = []EventType{EventHackAttempt, EventProgress, EventDamage, EventLoot, EventComplete}

// Emittable reports whether players may send t
func (t EventType) Emittable() bool {
	for _, e := range PlayerEvents {
		if t == e {
			return true
		}
	}
	return false
}

// Participant is a player in a room
type Participant struct {
	ID       string    `json:"id"`
	Name     string    `json:"name,omitempty"`
	JoinedAt time.Time `json:"joined_at"`
}

// Event is one entry in a room's log
type Event struct {
	Seq       int64           `json:"seq"`
	RoomID    string          `json:"raid_id"`
	Type      EventType       `json:"type"`
	PlayerID  string          `json:"player_id,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// Snapshot is a copy of a room's state
type Snapshot struct {
	RoomID       string        `json:"raid_id"`
	Participants []Participant `json:"participants"`
	Events       []Event       `json:"events"`
	Completed    bool          `json:"completed"`
	CreatedAt    time.Time     `json:"created_at"`
	// ClosingAt is set while a teardown is pending
	ClosingAt *time.Time `json:"closing_at,omitempty"`
}

// Summary is the room listing entry
type Summary struct {
	RoomID       string     `json:"raid_id"`
	Participants int        `json:"participants"`
	Events       int        `json:"events"`
	Completed    bool       `json:"completed"`
	CreatedAt    time.Time  `json:"created_at"`
	ClosingAt    *time.Time `json:"closing_at,omitempty"`
}

// Sink receives a participant's fan-out. Methods must not block;
// Deliver reports false when the event was dropped. Replaced is called
// when the participant rejoins through another sink; the old sink gets
// nothing further from that room.
type Sink interface {
	Deliver(ev Event) bool
	RoomClosed(roomID string)
	Replaced(roomID string)
}

// Observer is told about registry activity, for metrics
type Observer interface {
	RoomOpened()
	RoomClosed()
	ParticipantJoined()
	ParticipantLeft()
	EventRelayed(t EventType)
	MessageDropped()
}

type nopObserver struct{}

func (nopObserver) RoomOpened() {}
func (nopObserver) RoomClosed() {}
func (nopObserver) ParticipantJoined() {}
func (nopObserver) ParticipantLeft() {}
func (nopObserver) EventRelayed(EventType) {}
func (nopObserver) MessageDropped() {}

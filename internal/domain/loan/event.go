package loan

import "time"

// EventType is the routing key of a loan event.
type EventType string

const (
	EventCreated  EventType = "loan.created"
	EventUpdated  EventType = "loan.updated"
	EventAssigned EventType = "loan.assigned"
	EventReturned EventType = "loan.returned"
)

// Event records a committed change to a book instance.
type Event struct {
	Type       EventType  `json:"type"`
	InstanceID uint       `json:"instance_id"`
	UUID       string     `json:"uuid"`
	BookID     *uint      `json:"book_id,omitempty"`
	Status     Status     `json:"status"`
	ReaderID   *uint      `json:"reader_id,omitempty"`
	DueBack    *time.Time `json:"due_back,omitempty"`
	Version    uint       `json:"version"`
	ActorID    uint       `json:"actor_id"`
	OccurredAt time.Time  `json:"occurred_at"`
}

// NewEvent snapshots inst after a change made by actorID.
func NewEvent(typ EventType, inst *Instance, actorID uint) Event {
	return Event{
		Type:       typ,
		InstanceID: inst.ID,
		UUID:       inst.UUID,
		BookID:     inst.BookID,
		Status:     inst.Status,
		ReaderID:   inst.ReaderID,
		DueBack:    inst.DueBack,
		Version:    inst.Version,
		ActorID:    actorID,
		OccurredAt: time.Now().UTC(),
	}
}

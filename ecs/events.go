package ecs

// Event is a generic ECS event payload.
type Event struct {
	Type string
	Data any
}

// EventCollision is the Event.Type used for CollisionEvent payloads.
const EventCollision = "collision"

// CollisionEventKind identifies collision event types.
type CollisionEventKind string

const (
	// CollisionEnter fires once when two solid shapes start touching.
	CollisionEnter CollisionEventKind = "enter"
	// CollisionStay fires every physics step while two solid shapes touch.
	CollisionStay CollisionEventKind = "stay"
	// CollisionExit fires once when two solid shapes separate.
	CollisionExit CollisionEventKind = "exit"
	// CollisionTriggerEnter fires once when a sensor starts overlapping.
	CollisionTriggerEnter CollisionEventKind = "trigger_enter"
)

// CollisionEvent is emitted by the physics layer from the point of view of
// Entity; Other is the entity it touched.
type CollisionEvent struct {
	Entity Entity
	Other  Entity
	Kind   CollisionEventKind
}

// EventQueue is a simple FIFO queue.
type EventQueue struct {
	items []Event
}

// Push adds an event.
func (q *EventQueue) Push(evt Event) {
	if q == nil {
		return
	}
	q.items = append(q.items, evt)
}

// PushCollision adds a collision event.
func (q *EventQueue) PushCollision(evt CollisionEvent) {
	q.Push(Event{Type: EventCollision, Data: evt})
}

// Drain returns all events and clears the queue.
func (q *EventQueue) Drain() []Event {
	if q == nil || len(q.items) == 0 {
		return nil
	}
	out := q.items
	q.items = nil
	return out
}

// Take removes and returns the events of one type, keeping the rest in
// order.
func (q *EventQueue) Take(typ string) []Event {
	if q == nil || len(q.items) == 0 {
		return nil
	}
	var out []Event
	kept := q.items[:0]
	for _, evt := range q.items {
		if evt.Type == typ {
			out = append(out, evt)
			continue
		}
		kept = append(kept, evt)
	}
	for i := len(kept); i < len(q.items); i++ {
		q.items[i] = Event{}
	}
	q.items = kept
	return out
}

// Len reports the number of queued events.
func (q *EventQueue) Len() int {
	if q == nil {
		return 0
	}
	return len(q.items)
}

func (q *EventQueue) flush() {
	if q == nil {
		return
	}
	q.items = nil
}

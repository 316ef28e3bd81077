// Package events is the contract between aggregates and the outbox.
package events

import "time"

// DomainEvent is a fact recorded by an aggregate.
type DomainEvent interface {
	EventName() string
	AggregateID() string
	OccurredAt() time.Time
}

// EventRecorder is embedded by aggregates. Recording an event whose name and
// aggregate match a pending one replaces it and moves it to the end, so one
// command that edits the booking list twice still emits a single change.
type EventRecorder struct {
	pending []DomainEvent
}

func (r *EventRecorder) Record(event DomainEvent) {
	if event == nil {
		return
	}
	for i, prev := range r.pending {
		if prev.EventName() == event.EventName() && prev.AggregateID() == event.AggregateID() {
			r.pending = append(r.pending[:i:i], r.pending[i+1:]...)
			break
		}
	}
	r.pending = append(r.pending, event)
}

// PendingEvents returns a copy of the events not yet drained.
func (r *EventRecorder) PendingEvents() []DomainEvent {
	return append([]DomainEvent(nil), r.pending...)
}

func (r *EventRecorder) ClearEvents() {
	r.pending = nil
}

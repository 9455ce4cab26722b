// Package events defines the review lifecycle domain events and the
// dispatcher that fans them out to registered handlers.
package events

import (
	"time"

	"github.com/google/uuid"
)

// Review lifecycle event types.
const (
	TypeReviewSubmitted        = "review.submitted"
	TypeReviewApproved         = "review.approved"
	TypeReviewRejected         = "review.rejected"
	TypeReviewChangesRequested = "review.changes_requested"
)

// DomainEvent is the base interface for all domain events.
type DomainEvent interface {
	EventType() string
	AggregateID() string
	OccurredAt() time.Time
}

// BaseEvent provides common fields for all events.
type BaseEvent struct {
	ID           string    `json:"id"`
	Type         string    `json:"type"`
	AggregateID_ string    `json:"aggregate_id"`
	Timestamp    time.Time `json:"timestamp"`
	Actor        string    `json:"actor,omitempty"`
}

func (e BaseEvent) EventType() string     { return e.Type }
func (e BaseEvent) AggregateID() string   { return e.AggregateID_ }
func (e BaseEvent) OccurredAt() time.Time { return e.Timestamp }

func newBase(eventType, aggregateID, actor string) BaseEvent {
	return BaseEvent{
		ID:           uuid.NewString(),
		Type:         eventType,
		AggregateID_: aggregateID,
		Timestamp:    time.Now().UTC(),
		Actor:        actor,
	}
}

// ReviewSubmitted is emitted when a generated artifact enters the queue.
type ReviewSubmitted struct {
	BaseEvent
	CorrelationID string  `json:"correlation_id"`
	Title         string  `json:"title"`
	Confidence    float64 `json:"confidence"`
	Valid         bool    `json:"valid"`
}

// NewReviewSubmitted builds a ReviewSubmitted event.
func NewReviewSubmitted(itemID, correlationID, title string, confidence float64, valid bool) *ReviewSubmitted {
	return &ReviewSubmitted{
		BaseEvent:     newBase(TypeReviewSubmitted, itemID, "system"),
		CorrelationID: correlationID,
		Title:         title,
		Confidence:    confidence,
		Valid:         valid,
	}
}

// ReviewDecided is emitted for every human disposition.
type ReviewDecided struct {
	BaseEvent
	CorrelationID string `json:"correlation_id"`
	Disposition   string `json:"disposition"`
	Notes         string `json:"notes,omitempty"`
}

// NewReviewDecided builds a disposition event of the given type.
func NewReviewDecided(eventType, itemID, correlationID, actor, disposition, notes string) *ReviewDecided {
	return &ReviewDecided{
		BaseEvent:     newBase(eventType, itemID, actor),
		CorrelationID: correlationID,
		Disposition:   disposition,
		Notes:         notes,
	}
}

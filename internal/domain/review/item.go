package review

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/planwright/planwright/internal/domain/layout"
)

var (
	// ErrTerminal is returned when a disposition is attempted on an item
	// whose status is already final.
	ErrTerminal = errors.New("review item already has a final disposition")
	// ErrNotesRequired is returned when rejecting or requesting changes
	// without a reason.
	ErrNotesRequired = errors.New("review notes are required")
	// ErrNotFound is returned when the queue has no item with that id.
	ErrNotFound = errors.New("review item not found")
)

// Item is a unit of AI-generated work awaiting human disposition.
// Items are never deleted; a changes_requested item is superseded by a
// fresh item when the generation is rerun.
type Item struct {
	Id            string                  `json:"id"`
	CorrelationId string                  `json:"correlationId"`
	Title         string                  `json:"title"`
	Description   string                  `json:"description,omitempty"`
	Status        Status                  `json:"status"`
	CreatedAt     time.Time               `json:"createdAt"`
	ReviewedAt    *time.Time              `json:"reviewedAt,omitempty"`
	Confidence    float64                 `json:"confidence"`
	ReviewNotes   string                  `json:"reviewNotes,omitempty"`
	SupersededBy  string                  `json:"supersededBy,omitempty"`
	Layout        *layout.Layout          `json:"layout,omitempty"`
	Validation    layout.ValidationResult `json:"validation"`
}

// NewItem creates a pending item for a generated artifact. Every
// artifact lands here regardless of its validation verdict; approval is
// always a human act.
func NewItem(correlationId, title, description string, l *layout.Layout, v layout.ValidationResult) *Item {
	return &Item{
		Id:            uuid.NewString(),
		CorrelationId: correlationId,
		Title:         title,
		Description:   description,
		Status:        StatusPending,
		CreatedAt:     time.Now().UTC(),
		Confidence:    v.ConfidenceScore,
		Layout:        l,
		Validation:    v,
	}
}

// Approve records an approved disposition.
func (i *Item) Approve(notes string) error {
	return i.transition(StatusApproved, notes, false)
}

// Reject records a rejected disposition. Notes are mandatory: reject
// without a reason is disallowed.
func (i *Item) Reject(notes string) error {
	return i.transition(StatusRejected, notes, true)
}

// RequestChanges records a changes_requested disposition. Notes are
// mandatory so the next generation cycle has something to act on.
func (i *Item) RequestChanges(notes string) error {
	return i.transition(StatusChangesRequested, notes, true)
}

func (i *Item) transition(target Status, notes string, notesRequired bool) error {
	if i.Status.IsTerminal() {
		return ErrTerminal
	}
	if notesRequired && strings.TrimSpace(notes) == "" {
		return ErrNotesRequired
	}
	if !i.Status.CanTransitionTo(target) {
		return ErrTerminal
	}
	if err := fsmTransition(i.Status, target); err != nil {
		return err
	}
	now := time.Now().UTC()
	i.Status = target
	i.ReviewedAt = &now
	i.ReviewNotes = strings.TrimSpace(notes)
	return nil
}

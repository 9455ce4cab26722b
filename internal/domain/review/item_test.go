package review

import (
	"errors"
	"testing"

	"github.com/planwright/planwright/internal/domain/layout"
)

func newTestItem() *Item {
	v := layout.ValidationResult{IsValid: true, ConfidenceScore: 0.9}
	return NewItem("corr-1", "Residential layout, 120 m²", "two bedrooms", &layout.Layout{}, v)
}

func TestNewItem(t *testing.T) {
	item := newTestItem()

	if item.Id == "" {
		t.Error("Id should be generated")
	}
	if item.Status != StatusPending {
		t.Errorf("Status = %v, want pending", item.Status)
	}
	if item.ReviewedAt != nil {
		t.Error("ReviewedAt should be nil before disposition")
	}
	if item.Confidence != 0.9 {
		t.Errorf("Confidence = %v, want validation score 0.9", item.Confidence)
	}
	if item.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set")
	}
}

func TestItem_Approve(t *testing.T) {
	item := newTestItem()

	if err := item.Approve(""); err != nil {
		t.Fatalf("Approve() error = %v", err)
	}
	if item.Status != StatusApproved {
		t.Errorf("Status = %v, want approved", item.Status)
	}
	if item.ReviewedAt == nil {
		t.Error("ReviewedAt should be recorded")
	}
}

func TestItem_RejectRequiresNotes(t *testing.T) {
	item := newTestItem()

	err := item.Reject("   ")
	if !errors.Is(err, ErrNotesRequired) {
		t.Fatalf("Reject() error = %v, want ErrNotesRequired", err)
	}
	if item.Status != StatusPending {
		t.Errorf("Status = %v, refused disposition must not change the item", item.Status)
	}
	if item.ReviewedAt != nil {
		t.Error("ReviewedAt set despite refused disposition")
	}
}

func TestItem_RequestChangesRequiresNotes(t *testing.T) {
	item := newTestItem()

	if err := item.RequestChanges(""); !errors.Is(err, ErrNotesRequired) {
		t.Fatalf("RequestChanges() error = %v, want ErrNotesRequired", err)
	}

	if err := item.RequestChanges("corridor too narrow"); err != nil {
		t.Fatalf("RequestChanges() error = %v", err)
	}
	if item.Status != StatusChangesRequested {
		t.Errorf("Status = %v, want changes_requested", item.Status)
	}
	if item.ReviewNotes != "corridor too narrow" {
		t.Errorf("ReviewNotes = %q", item.ReviewNotes)
	}
}

func TestItem_TerminalIsImmutable(t *testing.T) {
	item := newTestItem()
	if err := item.Reject("bad geometry"); err != nil {
		t.Fatalf("Reject() error = %v", err)
	}

	reviewedAt := *item.ReviewedAt
	notes := item.ReviewNotes

	if err := item.Approve(""); !errors.Is(err, ErrTerminal) {
		t.Fatalf("Approve() after reject error = %v, want ErrTerminal", err)
	}
	if item.Status != StatusRejected {
		t.Errorf("Status = %v, disposition must stick", item.Status)
	}
	if !item.ReviewedAt.Equal(reviewedAt) {
		t.Error("ReviewedAt mutated after terminal disposition")
	}
	if item.ReviewNotes != notes {
		t.Error("ReviewNotes mutated after terminal disposition")
	}
}

func TestItem_NotesTrimmed(t *testing.T) {
	item := newTestItem()
	if err := item.Reject("  too small  "); err != nil {
		t.Fatalf("Reject() error = %v", err)
	}
	if item.ReviewNotes != "too small" {
		t.Errorf("ReviewNotes = %q, want trimmed", item.ReviewNotes)
	}
}

package events

import (
	"context"
	"errors"
	"testing"
)

func TestEventDispatcher_Dispatch(t *testing.T) {
	d := NewEventDispatcher()

	var seen []string
	d.RegisterHandler("first", func(ctx context.Context, e DomainEvent) error {
		seen = append(seen, "first:"+e.AggregateID())
		return nil
	}, TypeReviewApproved)
	d.RegisterHandler("second", func(ctx context.Context, e DomainEvent) error {
		seen = append(seen, "second:"+e.AggregateID())
		return nil
	}, TypeReviewApproved, TypeReviewRejected)

	event := NewReviewDecided(TypeReviewApproved, "item-1", "corr-1", "alice", "approved", "")
	if err := d.Dispatch(context.Background(), event); err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}

	if len(seen) != 2 {
		t.Fatalf("handlers ran = %d, want 2", len(seen))
	}
	if seen[0] != "first:item-1" || seen[1] != "second:item-1" {
		t.Errorf("seen = %v", seen)
	}
}

func TestEventDispatcher_NoHandlers(t *testing.T) {
	d := NewEventDispatcher()
	event := NewReviewSubmitted("item-1", "corr-1", "title", 0.9, true)
	if err := d.Dispatch(context.Background(), event); err != nil {
		t.Errorf("Dispatch() with no handlers error = %v", err)
	}
}

func TestEventDispatcher_ContinueOnError(t *testing.T) {
	d := NewEventDispatcher()

	failure := errors.New("boom")
	var ran bool
	d.RegisterHandler("failing", func(ctx context.Context, e DomainEvent) error {
		return failure
	}, TypeReviewRejected)
	d.RegisterHandler("after", func(ctx context.Context, e DomainEvent) error {
		ran = true
		return nil
	}, TypeReviewRejected)

	event := NewReviewDecided(TypeReviewRejected, "item-1", "corr-1", "alice", "rejected", "bad")
	err := d.Dispatch(context.Background(), event)
	if !errors.Is(err, failure) {
		t.Errorf("Dispatch() error = %v, want wrapped handler failure", err)
	}
	if !ran {
		t.Error("later handler skipped despite ContinueOnError")
	}
}

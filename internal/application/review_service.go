package application

import (
	"context"
	"fmt"

	"github.com/planwright/planwright/internal/domain"
	"github.com/planwright/planwright/internal/domain/events"
	"github.com/planwright/planwright/internal/domain/layout"
	"github.com/planwright/planwright/internal/domain/review"
)

// ReviewService is the human-approval workflow, decoupled from any
// presentation layer: desktop, web or CLI front ends all drive it
// through Submit/Approve/Reject/RequestChanges, never through direct
// field mutation.
type ReviewService struct {
	repo       domain.WorkspaceRepository
	dispatcher *events.EventDispatcher
	threshold  float64
}

func NewReviewService(repo domain.WorkspaceRepository, dispatcher *events.EventDispatcher, threshold float64) *ReviewService {
	if dispatcher == nil {
		dispatcher = events.NewEventDispatcher()
	}
	return &ReviewService{repo: repo, dispatcher: dispatcher, threshold: threshold}
}

// Threshold returns the configured confidence threshold.
func (s *ReviewService) Threshold() float64 {
	return s.threshold
}

// Submit enqueues a generated artifact as a pending item. Every
// artifact lands here, valid or not; nothing is ever auto-approved.
// When supersededID names an earlier changes_requested item, that item
// is linked to its replacement.
func (s *ReviewService) Submit(ctx context.Context, correlationId, title, description string, l *layout.Layout, v layout.ValidationResult, supersededID string) (*review.Item, error) {
	if err := s.repo.Initialize(); err != nil {
		return nil, err
	}

	items, err := s.repo.LoadQueue()
	if err != nil {
		return nil, err
	}

	item := review.NewItem(correlationId, title, description, l, v)
	items = append(items, item)

	if supersededID != "" {
		for _, prev := range items {
			if prev.Id == supersededID {
				if prev.Status != review.StatusChangesRequested {
					return nil, fmt.Errorf("item %s is %s, only changes_requested items can be superseded", supersededID, prev.Status)
				}
				prev.SupersededBy = item.Id
			}
		}
	}

	if err := s.repo.SaveQueue(items); err != nil {
		return nil, err
	}

	event := events.NewReviewSubmitted(item.Id, correlationId, title, v.ConfidenceScore, v.IsValid)
	if err := s.repo.AppendEvent(event); err != nil {
		return nil, err
	}
	s.dispatcher.Dispatch(ctx, event)

	return item, nil
}

// Approve records an approved disposition and notifies subscribers so
// the plugin side may proceed with the CAD commit.
func (s *ReviewService) Approve(ctx context.Context, itemID, actor, notes string) (*review.Item, error) {
	return s.decide(ctx, itemID, actor, notes, events.TypeReviewApproved, func(item *review.Item) error {
		return item.Approve(notes)
	})
}

// Reject records a rejected disposition. Empty notes are refused.
func (s *ReviewService) Reject(ctx context.Context, itemID, actor, notes string) (*review.Item, error) {
	return s.decide(ctx, itemID, actor, notes, events.TypeReviewRejected, func(item *review.Item) error {
		return item.Reject(notes)
	})
}

// RequestChanges records a changes_requested disposition. Empty notes
// are refused; no commit is triggered.
func (s *ReviewService) RequestChanges(ctx context.Context, itemID, actor, notes string) (*review.Item, error) {
	return s.decide(ctx, itemID, actor, notes, events.TypeReviewChangesRequested, func(item *review.Item) error {
		return item.RequestChanges(notes)
	})
}

// List returns all items, newest first.
func (s *ReviewService) List() ([]*review.Item, error) {
	items, err := s.repo.LoadQueue()
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
		items[i], items[j] = items[j], items[i]
	}
	return items, nil
}

// Pending returns the items still awaiting disposition, oldest first.
func (s *ReviewService) Pending() ([]*review.Item, error) {
	items, err := s.repo.LoadQueue()
	if err != nil {
		return nil, err
	}
	pending := make([]*review.Item, 0)
	for _, item := range items {
		if item.Status.IsPending() {
			pending = append(pending, item)
		}
	}
	return pending, nil
}

// Get returns the item with the given id.
func (s *ReviewService) Get(itemID string) (*review.Item, error) {
	items, err := s.repo.LoadQueue()
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		if item.Id == itemID {
			return item, nil
		}
	}
	return nil, review.ErrNotFound
}

func (s *ReviewService) decide(ctx context.Context, itemID, actor, notes, eventType string, apply func(*review.Item) error) (*review.Item, error) {
	items, err := s.repo.LoadQueue()
	if err != nil {
		return nil, err
	}

	var item *review.Item
	for _, candidate := range items {
		if candidate.Id == itemID {
			item = candidate
			break
		}
	}
	if item == nil {
		return nil, review.ErrNotFound
	}

	// Apply the transition before persisting: a refused transition
	// (terminal state, missing notes) must leave the queue untouched.
	if err := apply(item); err != nil {
		return nil, err
	}

	if err := s.repo.SaveQueue(items); err != nil {
		return nil, err
	}

	event := events.NewReviewDecided(eventType, item.Id, item.CorrelationId, actor, item.Status.String(), notes)
	if err := s.repo.AppendEvent(event); err != nil {
		return nil, err
	}
	s.dispatcher.Dispatch(ctx, event)

	return item, nil
}

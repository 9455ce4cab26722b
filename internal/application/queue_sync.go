package application

import (
	"log/slog"
	"sync"

	"github.com/planwright/planwright/internal/domain/protocol"
	"github.com/planwright/planwright/internal/domain/review"
)

// QueueSync pushes disposition notifications for review items decided
// outside this process (desktop dialogs, a second CLI editing the same
// workspace). The serve loop primes it at startup and calls Sync on
// every queue file change.
type QueueSync struct {
	reviews  *ReviewService
	notifier Notifier
	logger   *slog.Logger

	mu   sync.Mutex
	seen map[string]review.Status
}

func NewQueueSync(reviews *ReviewService, notifier Notifier, logger *slog.Logger) *QueueSync {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &QueueSync{
		reviews:  reviews,
		notifier: notifier,
		logger:   logger,
		seen:     make(map[string]review.Status),
	}
}

// Prime records the current queue statuses without notifying, so items
// decided before this process started are not re-announced.
func (q *QueueSync) Prime() error {
	items, err := q.reviews.List()
	if err != nil {
		return err
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, item := range items {
		q.seen[item.Id] = item.Status
	}
	return nil
}

// Sync reloads the queue and pushes a completion_notification for every
// item that reached a terminal status since the last call.
func (q *QueueSync) Sync() error {
	items, err := q.reviews.List()
	if err != nil {
		return err
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	for _, item := range items {
		prev, known := q.seen[item.Id]
		q.seen[item.Id] = item.Status
		if !item.Status.IsTerminal() || (known && prev == item.Status) {
			continue
		}
		if err := q.push(item); err != nil {
			q.logger.Warn("out-of-band disposition not delivered",
				"item", item.Id,
				"disposition", item.Status.String(),
				"error", err)
		}
	}
	return nil
}

func (q *QueueSync) push(item *review.Item) error {
	payload := protocol.CompletionNotification{
		CorrelationId: item.CorrelationId,
		ReviewItemId:  item.Id,
		Disposition:   item.Status.String(),
		Notes:         item.ReviewNotes,
	}
	if item.ReviewedAt != nil {
		payload.ReviewedAt = item.ReviewedAt.UTC()
	}
	env, err := protocol.NewEnvelope(protocol.TypeCompletionNotification, item.CorrelationId, payload)
	if err != nil {
		return err
	}
	return q.notifier.Push(env)
}

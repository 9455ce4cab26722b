package application

import (
	"context"
	"log/slog"
	"time"

	"github.com/planwright/planwright/internal/domain/events"
	"github.com/planwright/planwright/internal/domain/protocol"
)

// NotificationHandler turns review dispositions into push envelopes so
// the originating plugin process learns the outcome. On an approved
// disposition the plugin may then perform the CAD commit; the companion
// itself never touches host geometry.
type NotificationHandler struct {
	notifier Notifier
	logger   *slog.Logger
}

func NewNotificationHandler(notifier Notifier, logger *slog.Logger) *NotificationHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &NotificationHandler{notifier: notifier, logger: logger}
}

// Register subscribes the handler to all disposition events.
func (h *NotificationHandler) Register(dispatcher *events.EventDispatcher) {
	dispatcher.RegisterHandler("review-notifications", h.Handle,
		events.TypeReviewApproved,
		events.TypeReviewRejected,
		events.TypeReviewChangesRequested,
	)
}

// Handle pushes a completion_notification for one disposition event.
func (h *NotificationHandler) Handle(ctx context.Context, event events.DomainEvent) error {
	decided, ok := event.(*events.ReviewDecided)
	if !ok {
		return nil
	}

	env, err := protocol.NewEnvelope(protocol.TypeCompletionNotification, decided.CorrelationID, protocol.CompletionNotification{
		CorrelationId: decided.CorrelationID,
		ReviewItemId:  decided.AggregateID(),
		Disposition:   decided.Disposition,
		Notes:         decided.Notes,
		ReviewedAt:    decided.OccurredAt().UTC(),
	})
	if err != nil {
		return err
	}

	if err := h.notifier.Push(env); err != nil {
		// The plugin may be offline; the disposition is durable in the
		// queue either way.
		h.logger.Warn("disposition notification not delivered",
			"item", decided.AggregateID(),
			"disposition", decided.Disposition,
			"error", err)
		return nil
	}

	h.logger.Info("disposition notification pushed",
		"item", decided.AggregateID(),
		"disposition", decided.Disposition,
		"at", decided.OccurredAt().Format(time.RFC3339))
	return nil
}

package domain

import (
	"github.com/planwright/planwright/internal/domain/events"
	"github.com/planwright/planwright/internal/domain/review"
)

// WorkspaceRepository handles the persistence of companion artifacts in
// the .planwright/ directory. The review queue is owned exclusively by
// the desktop process; the plugin never mutates it.
type WorkspaceRepository interface {
	Initialize() error
	IsInitialized() bool
	SaveQueue(items []*review.Item) error
	LoadQueue() ([]*review.Item, error)
	AppendEvent(event events.DomainEvent) error
	QueuePath() (string, error)
}

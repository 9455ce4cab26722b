// Package wiring assembles the companion's services for the CLI and
// the serve loop.
package wiring

import (
	"github.com/planwright/planwright/internal/domain/events"
	"github.com/planwright/planwright/internal/infrastructure/config"
	"github.com/planwright/planwright/internal/infrastructure/storage"
)

// Workspace bundles core infrastructure dependencies.
type Workspace struct {
	Repo       *storage.FilesystemRepository
	Config     *config.Config
	Dispatcher *events.EventDispatcher
}

func NewWorkspace(root string) (*Workspace, error) {
	cfg, err := config.Load(root)
	if err != nil {
		return nil, err
	}

	return &Workspace{
		Repo:       storage.NewFilesystemRepository(root),
		Config:     cfg,
		Dispatcher: events.NewEventDispatcher(),
	}, nil
}

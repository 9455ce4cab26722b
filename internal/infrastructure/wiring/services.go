package wiring

import (
	"fmt"

	"github.com/planwright/planwright/internal/application"
	domainai "github.com/planwright/planwright/internal/domain/ai"
	"github.com/planwright/planwright/internal/infrastructure/ai"
	"github.com/planwright/planwright/internal/infrastructure/router"
)

// Version is stamped at build time.
var Version = "dev"

// AppServices exposes the application layer wired together for a
// workspace root.
type AppServices struct {
	Workspace *Workspace
	Reviews   *application.ReviewService
	Layouts   *application.LayoutService
	Analysis  *application.AnalysisService
	Health    *application.HealthService
	Provider  domainai.Provider
	Router    *router.Router
}

// BuildAppServices constructs the services and the dispatch table for a
// workspace root. The notifier is supplied by the caller: the serve
// loop passes the push paths, the CLI passes nil.
func BuildAppServices(root string, notifier application.Notifier) (*AppServices, error) {
	workspace, err := NewWorkspace(root)
	if err != nil {
		return nil, err
	}

	base, err := ai.GetDefaultProvider(workspace.Config.AIProvider, workspace.Config.AIModel)
	if err != nil {
		return nil, fmt.Errorf("ai provider: %w", err)
	}
	provider := ai.NewResilientProvider(base)

	reviews := application.NewReviewService(workspace.Repo, workspace.Dispatcher, workspace.Config.ConfidenceThreshold)
	layouts := application.NewLayoutService(provider, reviews, notifier)
	analysis := application.NewAnalysisService(nil, provider, notifier)
	health := application.NewHealthService(Version)

	r := router.New()
	application.RegisterHandlers(r, layouts, analysis, health)

	application.NewNotificationHandler(notifier, nil).Register(workspace.Dispatcher)

	return &AppServices{
		Workspace: workspace,
		Reviews:   reviews,
		Layouts:   layouts,
		Analysis:  analysis,
		Health:    health,
		Provider:  provider,
		Router:    r,
	}, nil
}

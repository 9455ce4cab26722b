package application

import (
	"context"
	"fmt"
	"time"

	"github.com/planwright/planwright/internal/domain/ai"
	"github.com/planwright/planwright/internal/domain/protocol"
)

// Inspector supplies the host project's element inventory. The real
// implementation lives on the plugin side against the host CAD API;
// the companion consumes it as an opaque capability.
type Inspector interface {
	Inspect(ctx context.Context, projectName string, scope []string) (*protocol.ProjectAnalysisResult, error)
}

// StaticInspector serves a fixed snapshot, for operation without a
// connected host project.
type StaticInspector struct {
	Snapshot protocol.ProjectAnalysisResult
}

func (i *StaticInspector) Inspect(ctx context.Context, projectName string, scope []string) (*protocol.ProjectAnalysisResult, error) {
	result := i.Snapshot
	result.ProjectName = projectName
	result.AnalyzedAt = time.Now().UTC()
	return &result, nil
}

// summaryGrace bounds how long a late summary may keep running after
// the request itself has been answered.
const summaryGrace = 2 * time.Minute

// AnalysisService handles project_analysis_request: gather the element
// inventory through the inspector, then ask the AI backend for a
// readable summary of it. When the summary outlives the request
// deadline the counts are answered immediately and the full result
// follows as a project_analysis push.
type AnalysisService struct {
	inspector Inspector
	provider  ai.Provider
	notifier  Notifier
}

func NewAnalysisService(inspector Inspector, provider ai.Provider, notifier Notifier) *AnalysisService {
	if inspector == nil {
		inspector = &StaticInspector{}
	}
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &AnalysisService{inspector: inspector, provider: provider, notifier: notifier}
}

// Analyze produces the analysis result for one request.
func (s *AnalysisService) Analyze(ctx context.Context, correlationId string, req protocol.ProjectAnalysisRequest) (*protocol.ProjectAnalysisResult, error) {
	result, err := s.inspector.Inspect(ctx, req.ProjectName, req.Scope)
	if err != nil {
		return nil, fmt.Errorf("inspect project: %w", err)
	}
	if result.AnalyzedAt.IsZero() {
		result.AnalyzedAt = time.Now().UTC()
	}
	if s.provider == nil {
		return result, nil
	}

	done := make(chan string, 1)
	go func() {
		sumCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), summaryGrace)
		defer cancel()
		completion, err := s.provider.Complete(sumCtx, ai.CompletionRequest{
			System: "Summarize the state of a CAD project in two sentences.",
			Prompt: fmt.Sprintf("Project %s: %d elements, %d levels, %d walls, %d rooms, issues: %v",
				result.ProjectName, result.ElementCount, result.LevelCount, result.WallCount, result.RoomCount, result.Issues),
		})
		if err != nil {
			// A summary failure is not an analysis failure, counts
			// still stand.
			close(done)
			return
		}
		done <- completion.Text
	}()

	select {
	case text, ok := <-done:
		if ok {
			result.Summary = text
		}
		return result, nil
	case <-ctx.Done():
		// Answer with the counts now; the summary follows as a
		// project_analysis push when the backend finishes.
		late := *result
		go func() {
			text, ok := <-done
			if !ok {
				return
			}
			late.Summary = text
			env, err := protocol.NewEnvelope(protocol.TypeProjectAnalysis, correlationId, &late)
			if err != nil {
				return
			}
			s.notifier.Push(env)
		}()
		return result, nil
	}
}

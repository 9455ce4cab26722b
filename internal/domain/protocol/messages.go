package protocol

import (
	"time"

	"github.com/planwright/planwright/internal/domain/layout"
)

// LayoutGenerationRequest asks the companion to generate an
// architectural layout from free-text requirements plus structured
// constraints.
type LayoutGenerationRequest struct {
	Requirements string            `json:"requirements"`
	BuildingType string            `json:"buildingType"`
	TargetArea   float64           `json:"targetArea"`
	Rooms        []RoomRequirement `json:"rooms,omitempty"`
	Constraints  []string          `json:"constraints,omitempty"`
}

// RoomRequirement is a single requested room.
type RoomRequirement struct {
	Name    string  `json:"name"`
	MinArea float64 `json:"minArea,omitempty"`
}

// LayoutGenerationResponse carries the generated layout, the abstract
// commands to apply it to the host model after approval, and the
// validation verdict. A response with IsValid=false still reaches the
// review queue as a pending item; it is never auto-committed.
type LayoutGenerationResponse struct {
	Success        bool                    `json:"success"`
	LayoutData     *layout.Layout          `json:"layoutData,omitempty"`
	CommitCommands []layout.CommitCommand  `json:"commitCommands,omitempty"`
	Validation     layout.ValidationResult `json:"validation"`
	Error          string                  `json:"error,omitempty"`
}

// ValidationRequest asks for a standalone validation of a layout.
type ValidationRequest struct {
	LayoutData *layout.Layout `json:"layoutData"`
}

// ValidationResponse carries the validation verdict for a
// validation_request.
type ValidationResponse struct {
	Success    bool                    `json:"success"`
	Validation layout.ValidationResult `json:"validation"`
	Error      string                  `json:"error,omitempty"`
}

// ProjectAnalysisRequest asks for an analysis of the current host
// project (element counts, levels, detected issues).
type ProjectAnalysisRequest struct {
	ProjectName string   `json:"projectName"`
	Scope       []string `json:"scope,omitempty"`
}

// ProjectAnalysisResult summarizes the host project. Also used as the
// payload of the push-only project_analysis message when an analysis
// completes after the requesting exchange already timed out.
type ProjectAnalysisResult struct {
	ProjectName  string    `json:"projectName"`
	ElementCount int       `json:"elementCount"`
	LevelCount   int       `json:"levelCount"`
	WallCount    int       `json:"wallCount"`
	RoomCount    int       `json:"roomCount"`
	Issues       []string  `json:"issues,omitempty"`
	Summary      string    `json:"summary"`
	AnalyzedAt   time.Time `json:"analyzedAt"`
}

// ProjectAnalysisResponse wraps an analysis result for the
// request/response path.
type ProjectAnalysisResponse struct {
	Success bool                   `json:"success"`
	Result  *ProjectAnalysisResult `json:"result,omitempty"`
	Error   string                 `json:"error,omitempty"`
}

// HealthCheckResponse is the payload of health_check_response.
type HealthCheckResponse struct {
	Status    string    `json:"status"`
	Version   string    `json:"version"`
	Uptime    string    `json:"uptime"`
	Timestamp time.Time `json:"timestamp"`
}

// ProgressUpdate is a push-only payload for long-running operations.
type ProgressUpdate struct {
	CorrelationId string `json:"correlationId"`
	Stage         string `json:"stage"`
	Percent       int    `json:"percent"`
	Status        string `json:"status,omitempty"`
}

// CompletionNotification is a push-only payload announcing the final
// disposition of a review item to the originating process. On an
// approved disposition the plugin may proceed with the CAD commit.
type CompletionNotification struct {
	CorrelationId string    `json:"correlationId"`
	ReviewItemId  string    `json:"reviewItemId"`
	Disposition   string    `json:"disposition"`
	Notes         string    `json:"notes,omitempty"`
	ReviewedAt    time.Time `json:"reviewedAt"`
}

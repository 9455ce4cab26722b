package application

import (
	"context"
	"errors"
	"strings"
	"testing"

	domainai "github.com/planwright/planwright/internal/domain/ai"
	"github.com/planwright/planwright/internal/domain/protocol"
	"github.com/planwright/planwright/internal/domain/review"
	infraai "github.com/planwright/planwright/internal/infrastructure/ai"
)

// cannedProvider returns fixed text or a fixed error.
type cannedProvider struct {
	text string
	err  error
}

func (p *cannedProvider) Complete(ctx context.Context, req domainai.CompletionRequest) (*domainai.CompletionResponse, error) {
	if p.err != nil {
		return nil, p.err
	}
	return &domainai.CompletionResponse{Text: p.text, Model: "canned"}, nil
}

func (p *cannedProvider) ID() string { return "canned" }

// capturingNotifier records pushed envelopes.
type capturingNotifier struct {
	pushed []*protocol.Envelope
}

func (n *capturingNotifier) Push(env *protocol.Envelope) error {
	n.pushed = append(n.pushed, env)
	return nil
}

func residentialRequest() protocol.LayoutGenerationRequest {
	return protocol.LayoutGenerationRequest{
		Requirements: "single-storey family home",
		BuildingType: "Residential",
		TargetArea:   120,
		Rooms: []protocol.RoomRequirement{
			{Name: "Living Room", MinArea: 30},
			{Name: "Kitchen"},
			{Name: "Bedroom"},
			{Name: "Bathroom"},
		},
		Constraints: []string{"bathroom adjacent to bedroom"},
	}
}

func TestLayoutService_Generate(t *testing.T) {
	reviews, _ := newTestReviewService(t)
	notifier := &capturingNotifier{}
	s := NewLayoutService(infraai.NewStubProvider(""), reviews, notifier)

	resp, err := s.Generate(context.Background(), "corr-1", residentialRequest())
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if !resp.Success {
		t.Fatalf("Success = false, error = %q", resp.Error)
	}
	if resp.LayoutData == nil || len(resp.LayoutData.Walls) == 0 {
		t.Fatal("generated layout has no walls")
	}
	for _, name := range []string{"Living Room", "Kitchen", "Bedroom", "Bathroom"} {
		if resp.LayoutData.RoomByName(name) == nil {
			t.Errorf("room %q missing from generated layout", name)
		}
	}
	if len(resp.CommitCommands) == 0 {
		t.Error("no commit commands derived")
	}
	if resp.Validation.ConfidenceScore < 0 || resp.Validation.ConfidenceScore > 1 {
		t.Errorf("ConfidenceScore = %v, want within [0,1]", resp.Validation.ConfidenceScore)
	}

	// Every generation lands in the review queue as pending.
	pending, err := reviews.Pending()
	if err != nil {
		t.Fatalf("Pending() error = %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("pending items = %d, want 1", len(pending))
	}
	if pending[0].CorrelationId != "corr-1" {
		t.Errorf("CorrelationId = %q", pending[0].CorrelationId)
	}
	if !strings.Contains(pending[0].Title, "Residential") {
		t.Errorf("Title = %q, want building type in title", pending[0].Title)
	}

	// Progress pushes carry the request's correlation id and end at 100.
	if len(notifier.pushed) == 0 {
		t.Fatal("no progress updates pushed")
	}
	var last protocol.ProgressUpdate
	for _, env := range notifier.pushed {
		if env.MessageType != protocol.TypeProgressUpdate {
			t.Errorf("pushed MessageType = %q", env.MessageType)
		}
		if env.CorrelationId != "corr-1" {
			t.Errorf("pushed CorrelationId = %q", env.CorrelationId)
		}
		if err := env.DecodePayload(&last); err != nil {
			t.Fatalf("DecodePayload() error = %v", err)
		}
	}
	if last.Percent != 100 {
		t.Errorf("final progress = %d, want 100", last.Percent)
	}
}

func TestLayoutService_GenerateProviderFailure(t *testing.T) {
	reviews, _ := newTestReviewService(t)
	s := NewLayoutService(&cannedProvider{err: errors.New("backend down")}, reviews, nil)

	resp, err := s.Generate(context.Background(), "corr-1", residentialRequest())
	if err != nil {
		t.Fatalf("Generate() error = %v, backend failures belong in the payload", err)
	}
	if resp.Success {
		t.Error("Success = true for failed generation")
	}
	if !strings.Contains(resp.Error, "backend down") {
		t.Errorf("Error = %q", resp.Error)
	}

	// Nothing reached the queue.
	pending, _ := reviews.Pending()
	if len(pending) != 0 {
		t.Errorf("pending items = %d, want 0", len(pending))
	}
}

func TestLayoutService_GenerateMalformedOutput(t *testing.T) {
	reviews, _ := newTestReviewService(t)
	s := NewLayoutService(&cannedProvider{text: "sorry, I cannot help with that"}, reviews, nil)

	resp, err := s.Generate(context.Background(), "corr-1", residentialRequest())
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if resp.Success {
		t.Error("Success = true for unparseable output")
	}
}

func TestLayoutService_GenerateSchemaViolation(t *testing.T) {
	reviews, _ := newTestReviewService(t)
	// rooms entries missing the required area field
	s := NewLayoutService(&cannedProvider{text: `{"walls": [], "rooms": [{"id": "r1", "name": "a"}]}`}, reviews, nil)

	resp, err := s.Generate(context.Background(), "corr-1", residentialRequest())
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if resp.Success {
		t.Error("Success = true for schema-violating output")
	}
	if !strings.Contains(resp.Error, "AI output rejected") {
		t.Errorf("Error = %q", resp.Error)
	}
}

func TestLayoutService_GenerateInvalidGeometryStillQueued(t *testing.T) {
	reviews, _ := newTestReviewService(t)
	// Valid JSON, bad geometry: no walls at all.
	s := NewLayoutService(&cannedProvider{text: `{"walls": [], "rooms": [{"id": "r1", "name": "Living Room", "area": 120}]}`}, reviews, nil)

	req := protocol.LayoutGenerationRequest{BuildingType: "Residential", TargetArea: 120, Rooms: []protocol.RoomRequirement{{Name: "Living Room"}}}
	resp, err := s.Generate(context.Background(), "corr-1", req)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if !resp.Success {
		t.Fatalf("Success = false, geometric failures are review material, not protocol errors")
	}
	if resp.Validation.IsValid {
		t.Error("IsValid = true for a layout without walls")
	}

	pending, _ := reviews.Pending()
	if len(pending) != 1 {
		t.Fatalf("pending items = %d, want 1", len(pending))
	}
	if pending[0].Status != review.StatusPending {
		t.Errorf("Status = %v", pending[0].Status)
	}
}

func TestLayoutService_Validate(t *testing.T) {
	reviews, _ := newTestReviewService(t)
	s := NewLayoutService(infraai.NewStubProvider(""), reviews, nil)

	resp := s.Validate(context.Background(), protocol.ValidationRequest{})
	if resp.Success {
		t.Error("Success = true for a request without layout data")
	}
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare", `{"walls": []}`, `{"walls": []}`},
		{"fenced", "```json\n{\"walls\": []}\n```", `{"walls": []}`},
		{"prose around", "Here you go:\n{\"walls\": []}\nHope that helps!", `{"walls": []}`},
		{"no object", "cannot comply", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractJSON(tt.in); got != tt.want {
				t.Errorf("extractJSON() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuildLayoutPrompt(t *testing.T) {
	prompt := buildLayoutPrompt(residentialRequest())
	for _, want := range []string{
		"Building type: Residential",
		"Target area: 120.0 m2",
		"Rooms: Living Room, Kitchen, Bedroom, Bathroom",
		"Constraint: bathroom adjacent to bedroom",
		"Requirements: single-storey family home",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}
}

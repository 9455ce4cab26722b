package application

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/planwright/planwright/internal/domain/ai"
	"github.com/planwright/planwright/internal/domain/layout"
	"github.com/planwright/planwright/internal/domain/protocol"
)

// Notifier delivers push envelopes to the connected plugin. Both the
// pipe server and the HTTP fallback server implement it.
type Notifier interface {
	Push(env *protocol.Envelope) error
}

// nopNotifier drops pushes when no outbound path is wired.
type nopNotifier struct{}

func (nopNotifier) Push(*protocol.Envelope) error { return nil }

const layoutSystemPrompt = `You are an architectural layout assistant. ` +
	`Respond with a single JSON object only, no prose, matching the requested schema: ` +
	`walls (id, start [x,y] mm, end [x,y] mm, height mm, thickness mm), ` +
	`doors and windows (id, wallId, position 0..1, width mm, height mm), ` +
	`rooms (id, name, area sq m).`

const layoutSchemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["walls", "rooms"],
  "properties": {
    "walls": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "start", "end"],
        "properties": {
          "id": { "type": "string" },
          "start": { "type": "array", "items": { "type": "number" }, "minItems": 2, "maxItems": 2 },
          "end": { "type": "array", "items": { "type": "number" }, "minItems": 2, "maxItems": 2 },
          "height": { "type": "number" },
          "thickness": { "type": "number" }
        }
      }
    },
    "doors": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "wallId"],
        "properties": {
          "id": { "type": "string" },
          "wallId": { "type": "string" },
          "position": { "type": "number" },
          "width": { "type": "number" },
          "height": { "type": "number" }
        }
      }
    },
    "windows": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "wallId"],
        "properties": {
          "id": { "type": "string" },
          "wallId": { "type": "string" },
          "position": { "type": "number" },
          "width": { "type": "number" },
          "height": { "type": "number" },
          "sillHeight": { "type": "number" }
        }
      }
    },
    "rooms": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "name", "area"],
        "properties": {
          "id": { "type": "string" },
          "name": { "type": "string" },
          "area": { "type": "number" }
        }
      }
    }
  }
}`

var layoutSchemaLoader = gojsonschema.NewStringLoader(layoutSchemaJSON)

// LayoutService turns generation requests into reviewed layout
// artifacts: prompt the AI backend, parse and schema-check its output,
// run the geometric checks, and enqueue the artifact for human review.
type LayoutService struct {
	provider ai.Provider
	reviews  *ReviewService
	notifier Notifier
}

func NewLayoutService(provider ai.Provider, reviews *ReviewService, notifier Notifier) *LayoutService {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &LayoutService{provider: provider, reviews: reviews, notifier: notifier}
}

// Generate handles one layout_generation_request. Failures of the AI
// call or its output parsing are returned inside the response payload;
// geometric validation failures surface as review items with errors,
// never as protocol errors.
func (s *LayoutService) Generate(ctx context.Context, correlationId string, req protocol.LayoutGenerationRequest) (*protocol.LayoutGenerationResponse, error) {
	s.progress(correlationId, "prompting", 10, "sending requirements to the AI backend")

	completion, err := s.provider.Complete(ctx, ai.CompletionRequest{
		System: layoutSystemPrompt,
		Prompt: buildLayoutPrompt(req),
	})
	if err != nil {
		return &protocol.LayoutGenerationResponse{
			Success: false,
			Error:   fmt.Sprintf("layout generation failed: %v", err),
		}, nil
	}

	s.progress(correlationId, "parsing", 55, "parsing generated layout")

	generated, err := parseLayout(completion.Text)
	if err != nil {
		return &protocol.LayoutGenerationResponse{
			Success: false,
			Error:   fmt.Sprintf("AI output rejected: %v", err),
		}, nil
	}

	s.progress(correlationId, "validating", 75, "running geometric checks")

	requestedRooms := make([]string, 0, len(req.Rooms))
	for _, room := range req.Rooms {
		requestedRooms = append(requestedRooms, room.Name)
	}
	validation := layout.Validate(generated, requestedRooms, req.TargetArea)

	title := fmt.Sprintf("%s layout, %.0f m²", req.BuildingType, req.TargetArea)
	if req.BuildingType == "" {
		title = fmt.Sprintf("Layout, %.0f m²", req.TargetArea)
	}
	item, err := s.reviews.Submit(ctx, correlationId, title, req.Requirements, generated, validation, "")
	if err != nil {
		return nil, fmt.Errorf("enqueue review item: %w", err)
	}

	s.progress(correlationId, "review", 100, "awaiting human review: "+item.Id)
	log.Printf("layout %s enqueued for review (valid=%v confidence=%.2f)", item.Id, validation.IsValid, validation.ConfidenceScore)

	return &protocol.LayoutGenerationResponse{
		Success:        true,
		LayoutData:     generated,
		CommitCommands: generated.CommitCommands(),
		Validation:     validation,
	}, nil
}

// Validate handles one standalone validation_request.
func (s *LayoutService) Validate(ctx context.Context, req protocol.ValidationRequest) *protocol.ValidationResponse {
	if req.LayoutData == nil {
		return &protocol.ValidationResponse{Success: false, Error: "no layout provided"}
	}
	return &protocol.ValidationResponse{
		Success:    true,
		Validation: layout.Validate(req.LayoutData, nil, req.LayoutData.TotalArea()),
	}
}

func (s *LayoutService) progress(correlationId, stage string, percent int, status string) {
	env, err := protocol.NewEnvelope(protocol.TypeProgressUpdate, correlationId, protocol.ProgressUpdate{
		CorrelationId: correlationId,
		Stage:         stage,
		Percent:       percent,
		Status:        status,
	})
	if err != nil {
		return
	}
	if err := s.notifier.Push(env); err != nil {
		// Progress is best effort; the client may simply not be listening.
		return
	}
}

func buildLayoutPrompt(req protocol.LayoutGenerationRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Building type: %s\n", req.BuildingType)
	fmt.Fprintf(&b, "Target area: %.1f m2\n", req.TargetArea)
	if len(req.Rooms) > 0 {
		names := make([]string, 0, len(req.Rooms))
		for _, room := range req.Rooms {
			names = append(names, room.Name)
		}
		fmt.Fprintf(&b, "Rooms: %s\n", strings.Join(names, ", "))
	}
	for _, constraint := range req.Constraints {
		fmt.Fprintf(&b, "Constraint: %s\n", constraint)
	}
	if req.Requirements != "" {
		fmt.Fprintf(&b, "Requirements: %s\n", req.Requirements)
	}
	return b.String()
}

// rawLayout matches the JSON shape the model is prompted for.
type rawLayout struct {
	Walls []struct {
		Id        string     `json:"id"`
		Start     [2]float64 `json:"start"`
		End       [2]float64 `json:"end"`
		Height    float64    `json:"height"`
		Thickness float64    `json:"thickness"`
	} `json:"walls"`
	Doors []struct {
		Id       string  `json:"id"`
		WallId   string  `json:"wallId"`
		Position float64 `json:"position"`
		Width    float64 `json:"width"`
		Height   float64 `json:"height"`
	} `json:"doors"`
	Windows []struct {
		Id         string  `json:"id"`
		WallId     string  `json:"wallId"`
		Position   float64 `json:"position"`
		Width      float64 `json:"width"`
		Height     float64 `json:"height"`
		SillHeight float64 `json:"sillHeight"`
	} `json:"windows"`
	Rooms []struct {
		Id   string  `json:"id"`
		Name string  `json:"name"`
		Area float64 `json:"area"`
	} `json:"rooms"`
}

// parseLayout extracts, schema-checks and maps the model's JSON.
func parseLayout(text string) (*layout.Layout, error) {
	cleaned := extractJSON(text)
	if cleaned == "" {
		return nil, fmt.Errorf("no JSON object in AI output")
	}

	result, err := gojsonschema.Validate(layoutSchemaLoader, gojsonschema.NewStringLoader(cleaned))
	if err != nil {
		return nil, fmt.Errorf("schema validation: %w", err)
	}
	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			details = append(details, desc.String())
		}
		return nil, fmt.Errorf("layout JSON does not match schema: %s", strings.Join(details, "; "))
	}

	var raw rawLayout
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		return nil, fmt.Errorf("unmarshal layout: %w", err)
	}

	out := &layout.Layout{}
	for _, w := range raw.Walls {
		out.Walls = append(out.Walls, layout.Wall{
			Id:     w.Id,
			Start:  layout.Point{X: w.Start[0], Y: w.Start[1]},
			End:    layout.Point{X: w.End[0], Y: w.End[1]},
			Height: w.Height,
			Thick:  w.Thickness,
		})
	}
	for _, d := range raw.Doors {
		out.Doors = append(out.Doors, layout.Door{
			Id:       d.Id,
			WallId:   d.WallId,
			Position: d.Position,
			Width:    d.Width,
			Height:   d.Height,
		})
	}
	for _, w := range raw.Windows {
		out.Windows = append(out.Windows, layout.Window{
			Id:         w.Id,
			WallId:     w.WallId,
			Position:   w.Position,
			Width:      w.Width,
			Height:     w.Height,
			SillHeight: w.SillHeight,
		})
	}
	for _, r := range raw.Rooms {
		out.Rooms = append(out.Rooms, layout.Room{
			Id:   r.Id,
			Name: r.Name,
			Area: r.Area,
		})
	}
	return out, nil
}

// extractJSON strips prose and code fences around the first JSON object.
func extractJSON(text string) string {
	text = strings.TrimSpace(text)
	if idx := strings.Index(text, "```"); idx >= 0 {
		text = text[idx+3:]
		text = strings.TrimPrefix(text, "json")
		if end := strings.Index(text, "```"); end >= 0 {
			text = text[:end]
		}
	}
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return ""
	}
	return strings.TrimSpace(text[start : end+1])
}

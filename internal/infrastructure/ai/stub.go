package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/planwright/planwright/internal/domain/ai"
)

// StubProvider is a deterministic offline backend. It lays the
// requested rooms out along a straight corridor and returns the same
// JSON shape a remote model is prompted for, so the rest of the
// pipeline (schema validation, geometric checks, review) is exercised
// without network access.
type StubProvider struct {
	Model string
}

func NewStubProvider(model string) *StubProvider {
	if model == "" {
		model = "deterministic"
	}
	return &StubProvider{Model: model}
}

func (p *StubProvider) ID() string {
	return "stub:" + p.Model
}

type stubLayout struct {
	Walls []stubWall `json:"walls"`
	Doors []stubDoor `json:"doors"`
	Rooms []stubRoom `json:"rooms"`
}

type stubWall struct {
	Id        string     `json:"id"`
	Start     [2]float64 `json:"start"`
	End       [2]float64 `json:"end"`
	Height    float64    `json:"height"`
	Thickness float64    `json:"thickness"`
}

type stubDoor struct {
	Id       string  `json:"id"`
	WallId   string  `json:"wallId"`
	Position float64 `json:"position"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
}

type stubRoom struct {
	Id   string  `json:"id"`
	Name string  `json:"name"`
	Area float64 `json:"area"`
}

func (p *StubProvider) Complete(ctx context.Context, req ai.CompletionRequest) (*ai.CompletionResponse, error) {
	rooms := roomNamesFromPrompt(req.Prompt)
	if len(rooms) == 0 {
		rooms = []string{"Room 1"}
	}
	targetArea := areaFromPrompt(req.Prompt)
	if targetArea <= 0 {
		targetArea = float64(len(rooms)) * 20
	}

	out := stubLayout{}
	perRoom := targetArea / float64(len(rooms))
	// Rooms as 5m-deep bays along a corridor; widths derive from area.
	var x float64
	for i, name := range rooms {
		width := perRoom / 5.0 * 1000 // mm
		depth := 5000.0
		wallID := fmt.Sprintf("wall-%d", i+1)
		out.Walls = append(out.Walls,
			stubWall{Id: wallID, Start: [2]float64{x, 0}, End: [2]float64{x + width, 0}, Height: 2700, Thickness: 200},
			stubWall{Id: fmt.Sprintf("wall-%d-side", i+1), Start: [2]float64{x, 0}, End: [2]float64{x, depth}, Height: 2700, Thickness: 200},
		)
		out.Doors = append(out.Doors, stubDoor{
			Id:       fmt.Sprintf("door-%d", i+1),
			WallId:   wallID,
			Position: 0.5,
			Width:    900,
			Height:   2100,
		})
		out.Rooms = append(out.Rooms, stubRoom{
			Id:   fmt.Sprintf("room-%d", i+1),
			Name: name,
			Area: perRoom,
		})
		x += width
	}

	text, err := json.Marshal(out)
	if err != nil {
		return nil, err
	}

	return &ai.CompletionResponse{
		Text:  string(text),
		Model: p.Model,
		Usage: ai.TokenUsage{
			InputTokens:  len(req.Prompt) / 4,
			OutputTokens: len(text) / 4,
		},
	}, nil
}

// roomNamesFromPrompt pulls the room list out of the structured prompt
// section ("Rooms: Living Room, Kitchen, Bedroom").
func roomNamesFromPrompt(prompt string) []string {
	for _, line := range strings.Split(prompt, "\n") {
		line = strings.TrimSpace(line)
		if after, ok := strings.CutPrefix(line, "Rooms:"); ok {
			var names []string
			for _, name := range strings.Split(after, ",") {
				name = strings.TrimSpace(name)
				if name != "" {
					names = append(names, name)
				}
			}
			return names
		}
	}
	return nil
}

// areaFromPrompt pulls the target area out of the structured prompt
// section ("Target area: 120 m2").
func areaFromPrompt(prompt string) float64 {
	for _, line := range strings.Split(prompt, "\n") {
		line = strings.TrimSpace(line)
		if after, ok := strings.CutPrefix(line, "Target area:"); ok {
			var area float64
			fmt.Sscanf(strings.TrimSpace(after), "%f", &area)
			return area
		}
	}
	return 0
}

package layout

import (
	"math"
	"testing"
)

func validLayout() *Layout {
	return &Layout{
		Walls: []Wall{
			{Id: "w1", Start: Point{X: 0, Y: 0}, End: Point{X: 10000, Y: 0}, Height: 2700, Thick: 200},
			{Id: "w2", Start: Point{X: 10000, Y: 0}, End: Point{X: 10000, Y: 12000}, Height: 2700, Thick: 200},
			{Id: "w3", Start: Point{X: 10000, Y: 12000}, End: Point{X: 0, Y: 12000}, Height: 2700, Thick: 200},
			{Id: "w4", Start: Point{X: 0, Y: 12000}, End: Point{X: 0, Y: 0}, Height: 2700, Thick: 200},
		},
		Doors: []Door{
			{Id: "d1", WallId: "w1", Position: 0.5, Width: 900, Height: 2100},
		},
		Rooms: []Room{
			{Id: "r1", Name: "Living Room", Area: 40},
			{Id: "r2", Name: "Bedroom", Area: 30},
			{Id: "r3", Name: "Kitchen", Area: 30},
			{Id: "r4", Name: "Bathroom", Area: 20},
		},
	}
}

func TestValidate_CleanLayout(t *testing.T) {
	l := validLayout()
	result := Validate(l, []string{"Living Room", "Bedroom", "Kitchen", "Bathroom"}, 120)

	if !result.IsValid {
		t.Fatalf("IsValid = false, errors = %v", result.Errors)
	}
	if len(result.Warnings) != 0 {
		t.Errorf("Warnings = %v, want none", result.Warnings)
	}
	if result.ConfidenceScore != 1.0 {
		t.Errorf("ConfidenceScore = %v, want 1.0", result.ConfidenceScore)
	}
}

func TestValidate_NilLayout(t *testing.T) {
	result := Validate(nil, nil, 0)
	if result.IsValid {
		t.Error("IsValid = true for nil layout")
	}
	if result.ConfidenceScore != 0 {
		t.Errorf("ConfidenceScore = %v, want 0", result.ConfidenceScore)
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Layout)
		code   string
	}{
		{
			name:   "no walls",
			mutate: func(l *Layout) { l.Walls = nil },
			code:   CodeNoWalls,
		},
		{
			name: "zero length wall",
			mutate: func(l *Layout) {
				l.Walls[0].End = l.Walls[0].Start
			},
			code: CodeZeroLengthWall,
		},
		{
			name: "orphan door",
			mutate: func(l *Layout) {
				l.Doors[0].WallId = "missing"
			},
			code: CodeOrphanOpening,
		},
		{
			name: "orphan window",
			mutate: func(l *Layout) {
				l.Windows = append(l.Windows, Window{Id: "win1", WallId: "missing"})
			},
			code: CodeOrphanOpening,
		},
		{
			name: "non-positive room area",
			mutate: func(l *Layout) {
				l.Rooms[0].Area = 0
			},
			code: CodeNonPositiveArea,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := validLayout()
			tt.mutate(l)

			result := Validate(l, nil, 0)
			if result.IsValid {
				t.Fatal("IsValid = true, want false")
			}
			if !hasIssue(result.Errors, tt.code) {
				t.Errorf("errors %v missing code %q", result.Errors, tt.code)
			}
			if result.ConfidenceScore >= 1.0 {
				t.Errorf("ConfidenceScore = %v, want < 1.0", result.ConfidenceScore)
			}
		})
	}
}

func TestValidate_MissingRequestedRoom(t *testing.T) {
	l := validLayout()
	result := Validate(l, []string{"Living Room", "Study"}, 0)

	if result.IsValid {
		t.Fatal("IsValid = true, want false")
	}
	if !hasIssue(result.Errors, CodeMissingRoom) {
		t.Errorf("errors %v missing code %q", result.Errors, CodeMissingRoom)
	}
}

func TestValidate_AreaDriftWarning(t *testing.T) {
	l := validLayout() // 120 m² total

	// Within 15% stays clean.
	result := Validate(l, nil, 110)
	if len(result.Warnings) != 0 {
		t.Errorf("Warnings = %v, want none inside tolerance", result.Warnings)
	}

	// Beyond 15% warns but stays valid.
	result = Validate(l, nil, 200)
	if !result.IsValid {
		t.Error("IsValid = false, a drift warning is not an error")
	}
	if !hasIssue(result.Warnings, CodeAreaMismatch) {
		t.Errorf("warnings %v missing code %q", result.Warnings, CodeAreaMismatch)
	}
	if math.Abs(result.ConfidenceScore-0.9) > 1e-9 {
		t.Errorf("ConfidenceScore = %v, want 0.9", result.ConfidenceScore)
	}
}

func TestValidate_ConfidenceFloor(t *testing.T) {
	l := &Layout{
		Rooms: []Room{{Id: "r1", Name: "a", Area: -1}},
	}
	result := Validate(l, []string{"b", "c", "d", "e"}, 0)
	if result.ConfidenceScore != 0 {
		t.Errorf("ConfidenceScore = %v, want floor at 0", result.ConfidenceScore)
	}
}

func TestLayout_TotalArea(t *testing.T) {
	l := validLayout()
	if got := l.TotalArea(); got != 120 {
		t.Errorf("TotalArea() = %v, want 120", got)
	}
}

func TestLayout_CommitCommands(t *testing.T) {
	l := validLayout()
	cmds := l.CommitCommands()

	want := len(l.Walls) + len(l.Doors) + len(l.Rooms)
	if len(cmds) != want {
		t.Fatalf("len(cmds) = %d, want %d", len(cmds), want)
	}

	// Walls first so hosted openings can resolve their hosts.
	for i := range l.Walls {
		if cmds[i].Action != ActionCreateWall {
			t.Errorf("cmds[%d].Action = %q, want %q", i, cmds[i].Action, ActionCreateWall)
		}
	}
	if cmds[len(l.Walls)].Action != ActionCreateDoor {
		t.Errorf("door command not after walls")
	}
}

func hasIssue(issues []ValidationIssue, code string) bool {
	for _, issue := range issues {
		if issue.Code == code {
			return true
		}
	}
	return false
}

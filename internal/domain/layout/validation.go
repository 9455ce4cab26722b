package layout

// Severity levels for validation issues.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// ValidationIssue is a single validation error or warning.
type ValidationIssue struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	Severity     string `json:"severity"`
	SuggestedFix string `json:"suggestedFix,omitempty"`
}

// ValidationResult is the verdict attached to every generated layout.
// A result with IsValid=false, or a ConfidenceScore below the review
// threshold, never bypasses the review queue.
type ValidationResult struct {
	IsValid         bool              `json:"isValid"`
	Errors          []ValidationIssue `json:"errors,omitempty"`
	Warnings        []ValidationIssue `json:"warnings,omitempty"`
	ConfidenceScore float64           `json:"confidenceScore"`
}

// Validation issue codes.
const (
	CodeNoWalls         = "no_walls"
	CodeZeroLengthWall  = "zero_length_wall"
	CodeOrphanOpening   = "orphan_opening"
	CodeMissingRoom     = "missing_room"
	CodeNonPositiveArea = "non_positive_area"
	CodeAreaMismatch    = "area_mismatch"
)

// Validate runs the geometric and completeness checks for a generated
// layout against the requested rooms and target area. It always returns
// a result; failures are reported inside it, never as an error value.
func Validate(l *Layout, requestedRooms []string, targetArea float64) ValidationResult {
	result := ValidationResult{IsValid: true, ConfidenceScore: 1.0}
	if l == nil {
		result.IsValid = false
		result.ConfidenceScore = 0
		result.Errors = append(result.Errors, ValidationIssue{
			Code:     CodeNoWalls,
			Message:  "layout is empty",
			Severity: SeverityError,
		})
		return result
	}

	if len(l.Walls) == 0 {
		result.addError(ValidationIssue{
			Code:         CodeNoWalls,
			Message:      "layout contains no walls",
			Severity:     SeverityError,
			SuggestedFix: "regenerate with an explicit perimeter",
		})
	}

	for _, w := range l.Walls {
		if w.Start == w.End {
			result.addError(ValidationIssue{
				Code:     CodeZeroLengthWall,
				Message:  "wall " + w.Id + " has zero length",
				Severity: SeverityError,
			})
		}
	}

	for _, d := range l.Doors {
		if l.WallById(d.WallId) == nil {
			result.addError(ValidationIssue{
				Code:     CodeOrphanOpening,
				Message:  "door " + d.Id + " references unknown wall " + d.WallId,
				Severity: SeverityError,
			})
		}
	}
	for _, w := range l.Windows {
		if l.WallById(w.WallId) == nil {
			result.addError(ValidationIssue{
				Code:     CodeOrphanOpening,
				Message:  "window " + w.Id + " references unknown wall " + w.WallId,
				Severity: SeverityError,
			})
		}
	}

	for _, name := range requestedRooms {
		if l.RoomByName(name) == nil {
			result.addError(ValidationIssue{
				Code:         CodeMissingRoom,
				Message:      "requested room " + name + " is missing from the layout",
				Severity:     SeverityError,
				SuggestedFix: "regenerate including room " + name,
			})
		}
	}

	for _, r := range l.Rooms {
		if r.Area <= 0 {
			result.addError(ValidationIssue{
				Code:     CodeNonPositiveArea,
				Message:  "room " + r.Name + " has non-positive area",
				Severity: SeverityError,
			})
		}
	}

	// Allow 15% drift between requested and generated total area before
	// warning.
	if targetArea > 0 {
		total := l.TotalArea()
		drift := total - targetArea
		if drift < 0 {
			drift = -drift
		}
		if drift > targetArea*0.15 {
			result.addWarning(ValidationIssue{
				Code:         CodeAreaMismatch,
				Message:      "total room area deviates more than 15% from target",
				Severity:     SeverityWarning,
				SuggestedFix: "adjust room areas toward the target",
			})
		}
	}

	return result
}

func (r *ValidationResult) addError(issue ValidationIssue) {
	r.Errors = append(r.Errors, issue)
	r.IsValid = false
	r.ConfidenceScore -= 0.25
	if r.ConfidenceScore < 0 {
		r.ConfidenceScore = 0
	}
}

func (r *ValidationResult) addWarning(issue ValidationIssue) {
	r.Warnings = append(r.Warnings, issue)
	r.ConfidenceScore -= 0.1
	if r.ConfidenceScore < 0 {
		r.ConfidenceScore = 0
	}
}

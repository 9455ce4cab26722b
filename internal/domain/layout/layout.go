// Package layout defines the architectural layout model produced by the
// AI backend: walls, doors, windows and rooms, plus the abstract commit
// commands applied to the host CAD model once a layout is approved.
package layout

// Point is a 2D coordinate in millimeters.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Wall is a straight wall segment between two points.
type Wall struct {
	Id       string  `json:"id"`
	Start    Point   `json:"start"`
	End      Point   `json:"end"`
	Height   float64 `json:"height"`
	Thick    float64 `json:"thickness"`
	WallType string  `json:"wallType,omitempty"`
}

// Door is hosted on a wall at a parametric position along it.
type Door struct {
	Id       string  `json:"id"`
	WallId   string  `json:"wallId"`
	Position float64 `json:"position"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
}

// Window is hosted on a wall at a parametric position along it.
type Window struct {
	Id         string  `json:"id"`
	WallId     string  `json:"wallId"`
	Position   float64 `json:"position"`
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	SillHeight float64 `json:"sillHeight,omitempty"`
}

// Room is a named region with an area in square meters.
type Room struct {
	Id       string  `json:"id"`
	Name     string  `json:"name"`
	Area     float64 `json:"area"`
	Boundary []Point `json:"boundary,omitempty"`
}

// Layout is the full generated layout.
type Layout struct {
	Walls   []Wall   `json:"walls"`
	Doors   []Door   `json:"doors,omitempty"`
	Windows []Window `json:"windows,omitempty"`
	Rooms   []Room   `json:"rooms"`
}

// CommitCommand is an abstract instruction for the host CAD API. The
// companion never executes these; they are handed to the plugin after
// approval, inside a host transaction.
type CommitCommand struct {
	Action    string                 `json:"action"`
	ElementId string                 `json:"elementId"`
	Params    map[string]interface{} `json:"params,omitempty"`
}

// Commit command actions understood by the plugin side.
const (
	ActionCreateWall   = "create_wall"
	ActionCreateDoor   = "create_door"
	ActionCreateWindow = "create_window"
	ActionCreateRoom   = "create_room"
)

// WallById returns the wall with the given id, or nil.
func (l *Layout) WallById(id string) *Wall {
	for i := range l.Walls {
		if l.Walls[i].Id == id {
			return &l.Walls[i]
		}
	}
	return nil
}

// RoomByName returns the first room with the given name, or nil.
func (l *Layout) RoomByName(name string) *Room {
	for i := range l.Rooms {
		if l.Rooms[i].Name == name {
			return &l.Rooms[i]
		}
	}
	return nil
}

// TotalArea sums all room areas.
func (l *Layout) TotalArea() float64 {
	var total float64
	for _, r := range l.Rooms {
		total += r.Area
	}
	return total
}

// CommitCommands derives the ordered command list for this layout.
// Walls come first so hosted doors and windows resolve their hosts.
func (l *Layout) CommitCommands() []CommitCommand {
	cmds := make([]CommitCommand, 0, len(l.Walls)+len(l.Doors)+len(l.Windows)+len(l.Rooms))
	for _, w := range l.Walls {
		cmds = append(cmds, CommitCommand{
			Action:    ActionCreateWall,
			ElementId: w.Id,
			Params: map[string]interface{}{
				"start":     w.Start,
				"end":       w.End,
				"height":    w.Height,
				"thickness": w.Thick,
			},
		})
	}
	for _, d := range l.Doors {
		cmds = append(cmds, CommitCommand{
			Action:    ActionCreateDoor,
			ElementId: d.Id,
			Params: map[string]interface{}{
				"wallId":   d.WallId,
				"position": d.Position,
				"width":    d.Width,
				"height":   d.Height,
			},
		})
	}
	for _, w := range l.Windows {
		cmds = append(cmds, CommitCommand{
			Action:    ActionCreateWindow,
			ElementId: w.Id,
			Params: map[string]interface{}{
				"wallId":   w.WallId,
				"position": w.Position,
				"width":    w.Width,
				"height":   w.Height,
			},
		})
	}
	for _, r := range l.Rooms {
		cmds = append(cmds, CommitCommand{
			Action:    ActionCreateRoom,
			ElementId: r.Id,
			Params: map[string]interface{}{
				"name": r.Name,
				"area": r.Area,
			},
		})
	}
	return cmds
}

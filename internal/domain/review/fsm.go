package review

import (
	"fmt"

	"github.com/felixgeelhaar/statekit"
)

// Disposition events driving the review machine.
const (
	EventApprove        = "approve"
	EventReject         = "reject"
	EventRequestChanges = "request_changes"
)

type reviewContext struct {
	ItemID string
}

// StateMachine wraps the statekit interpreter for one review item.
type StateMachine struct {
	interpreter *statekit.Interpreter[reviewContext]
}

// NewStateMachine builds the review machine starting at initialState.
// Pending is the only state with outgoing transitions; approved,
// rejected and changes_requested are final.
func NewStateMachine(initialState Status, itemID string) (*StateMachine, error) {
	builder := statekit.NewMachine[reviewContext]("review-machine").
		WithInitial(statekit.StateID(initialState)).
		WithContext(reviewContext{ItemID: itemID})

	builder.State(statekit.StateID(StatusPending)).
		On(EventApprove).Target(statekit.StateID(StatusApproved)).
		On(EventReject).Target(statekit.StateID(StatusRejected)).
		On(EventRequestChanges).Target(statekit.StateID(StatusChangesRequested)).
		Done()

	builder.State(statekit.StateID(StatusApproved)).Done()
	builder.State(statekit.StateID(StatusRejected)).Done()
	builder.State(statekit.StateID(StatusChangesRequested)).Done()

	machine, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build review state machine: %w", err)
	}

	interpreter := statekit.NewInterpreter(machine)
	interpreter.Start()

	return &StateMachine{interpreter: interpreter}, nil
}

// Transition attempts to apply a disposition event.
func (sm *StateMachine) Transition(event string) error {
	before := sm.Current()
	sm.interpreter.Send(statekit.Event{Type: statekit.EventType(event)})
	after := sm.Current()

	if before != after {
		return nil
	}

	// Statekit leaves the state unchanged when no transition matches, so
	// an unchanged state means the disposition is not allowed here.
	return fmt.Errorf("disposition '%s' is not allowed while the item is '%s'", event, before)
}

// Current returns the machine's current state.
func (sm *StateMachine) Current() Status {
	return Status(sm.interpreter.State().Value)
}

func eventFor(target Status) string {
	switch target {
	case StatusApproved:
		return EventApprove
	case StatusRejected:
		return EventReject
	case StatusChangesRequested:
		return EventRequestChanges
	default:
		return ""
	}
}

// fsmTransition runs one disposition through a fresh machine seeded
// with the item's current status.
func fsmTransition(current, target Status) error {
	event := eventFor(target)
	if event == "" {
		return fmt.Errorf("no disposition event leads to status '%s'", target)
	}
	sm, err := NewStateMachine(current, "")
	if err != nil {
		return err
	}
	return sm.Transition(event)
}

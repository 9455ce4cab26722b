// Package review owns the review queue: every AI-generated artifact
// awaiting human disposition, and the state machine governing its
// lifecycle. The queue belongs exclusively to the desktop companion;
// the plugin process only observes dispositions via push notifications.
package review

import (
	"encoding/json"
	"fmt"
)

// Status is the disposition state of a review item.
type Status string

const (
	StatusPending          Status = "pending"
	StatusApproved         Status = "approved"
	StatusRejected         Status = "rejected"
	StatusChangesRequested Status = "changes_requested"
)

// AllStatuses returns all valid review statuses.
func AllStatuses() []Status {
	return []Status{
		StatusPending,
		StatusApproved,
		StatusRejected,
		StatusChangesRequested,
	}
}

// IsValid returns true if the status is a valid review status.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusChangesRequested:
		return true
	default:
		return false
	}
}

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// IsPending returns true if the item still awaits disposition.
func (s Status) IsPending() bool {
	return s == StatusPending
}

// IsTerminal returns true once a disposition has been recorded.
// Every non-pending status is final for the item; changes_requested
// implies a new generation cycle producing a fresh item.
func (s Status) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected || s == StatusChangesRequested
}

// CanTransitionTo returns true if a transition to target is allowed.
func (s Status) CanTransitionTo(target Status) bool {
	if s != StatusPending {
		return false
	}
	return target == StatusApproved || target == StatusRejected || target == StatusChangesRequested
}

// DisplayName returns a human-readable display name for the status.
func (s Status) DisplayName() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusApproved:
		return "Approved"
	case StatusRejected:
		return "Rejected"
	case StatusChangesRequested:
		return "Changes Requested"
	default:
		return string(s)
	}
}

// ParseStatus parses a string into a Status.
func ParseStatus(str string) (Status, error) {
	status := Status(str)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid review status: %s", str)
	}
	return status, nil
}

// MarshalJSON implements json.Marshaler.
func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(s))
}

// UnmarshalJSON implements json.Unmarshaler. An empty string is read as
// pending for backward compatibility with earlier queue files.
func (s *Status) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	if str == "" {
		*s = StatusPending
		return nil
	}
	status := Status(str)
	if !status.IsValid() {
		return fmt.Errorf("invalid review status: %s", str)
	}
	*s = status
	return nil
}

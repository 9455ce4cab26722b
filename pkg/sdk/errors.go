package sdk

import (
	"errors"
	"fmt"
)

// ErrUnavailable is returned when neither the pipe nor the HTTP
// transport can reach the desktop companion.
var ErrUnavailable = errors.New("planwright: desktop app unavailable")

// MismatchError reports a response whose message type does not match
// the expected response type for the request.
type MismatchError struct {
	Expected string
	Got      string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("planwright: expected %s, got %s", e.Expected, e.Got)
}

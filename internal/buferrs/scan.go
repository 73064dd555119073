package buferrs

import "fmt"

// CancelledError indicates a host predicate (or a cancelled context)
// asked a long-running scan to stop. The state produced so far remains
// valid but partial.
type CancelledError struct {
	Operation string
}

func (e *CancelledError) Error() string {
	return fmt.Sprintf("%s cancelled", e.Operation)
}

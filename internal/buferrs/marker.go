package buferrs

import "fmt"

// MarkerNotFoundError indicates an overlay referenced a marker id that
// no longer exists in the marker list. This is never surfaced to the
// host as an error: the overlay is auto-dropped and an
// OverlaysInvalidated event is emitted instead. The type exists so
// internal plumbing can use errors.As the same way it does for every
// other kind.
type MarkerNotFoundError struct {
	MarkerID string
}

func (e *MarkerNotFoundError) Error() string {
	return fmt.Sprintf("marker %q not found", e.MarkerID)
}

// OverlayNotFoundError indicates a caller referenced an overlay id that
// has already been removed or never existed.
type OverlayNotFoundError struct {
	OverlayID string
}

func (e *OverlayNotFoundError) Error() string {
	return fmt.Sprintf("overlay %q not found", e.OverlayID)
}

package buferrs

import "fmt"

// InvalidRangeError indicates an offset or byte range fell outside the
// document's valid bounds. apply leaves the document unmodified when
// this error is returned.
type InvalidRangeError struct {
	// Offset is the out-of-bounds value, when a single offset was
	// rejected (inserts).
	Offset int
	// Start and End describe the rejected range, when a range was
	// rejected (deletes/replaces). Both are zero for single-offset
	// errors.
	Start, End int
	// TotalBytes is the document length the offset/range was checked
	// against.
	TotalBytes int
}

func (e *InvalidRangeError) Error() string {
	if e.Start == 0 && e.End == 0 {
		return fmt.Sprintf(
			"offset %d out of range [0, %d]",
			e.Offset,
			e.TotalBytes,
		)
	}

	return fmt.Sprintf(
		"range [%d, %d) out of range [0, %d]",
		e.Start,
		e.End,
		e.TotalBytes,
	)
}

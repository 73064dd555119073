package buffer

import (
	"context"

	"github.com/hashicorp/go-multierror"

	"github.com/connerohnesorge/piecewise/internal/buferrs"
)

// maxApproximationIterations bounds how many times
// approximatePositionToOffset rescans toward the true line boundary
// before giving up.
const maxApproximationIterations = 4

// approximatePositionToOffset estimates a byte offset for (line, col)
// in a large document whose exact line index isn't available,
// force-loads the chunk around the estimate, and rescans toward the
// true boundary. Held under d.mu.
func (d *Document) approximatePositionToOffset(line, col int) (int, error) {
	assumed := d.opts.AssumedLineLength
	if assumed <= 0 {
		assumed = 80
	}

	total := d.tree.TotalBytes()
	estimate := (line - 1) * assumed
	if estimate < 0 {
		estimate = 0
	}

	for i := 0; i < maxApproximationIterations; i++ {
		if estimate >= total {
			estimate = total
		}

		window := Range{Start: maxInt(0, estimate-assumed), End: minInt(total, estimate+assumed)}
		chunk, err := d.sliceLocked(context.Background(), window)
		if err != nil {
			return 0, err
		}

		lineAtWindowStart, _ := d.tree.OffsetToPosition(d.resolver, window.Start)

		foundLine := lineAtWindowStart.Line
		cursor := window.Start
		lineStart := window.Start - lineAtWindowStart.Column

		for idx, b := range chunk {
			if foundLine == line {
				break
			}
			if b == '\n' {
				foundLine++
				lineStart = window.Start + idx + 1
			}
			cursor = window.Start + idx + 1
		}

		if foundLine == line {
			offset := lineStart + col
			if offset < 0 {
				offset = 0
			}
			if offset > total {
				offset = total
			}

			return offset, nil
		}

		// The estimate undershot or overshot the target line; nudge it
		// toward where the scan left off and try again.
		estimate = cursor + (line-foundLine)*assumed
	}

	return 0, &buferrs.LineUnknownError{Line: line, ApproxOffset: estimate}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}

	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}

	return b
}

// ScanLines walks the document chunk by chunk, forcing every unloaded
// run to load, so that LineCount becomes exact rather than a lower
// bound. It is meant to run as an opt-in background pass for
// large-file documents; ctx cancellation is checked between chunks.
// Per-chunk I/O failures are collected rather than aborting the scan,
// since one bad region shouldn't prevent counting the rest.
func (d *Document) ScanLines(ctx context.Context) (LineScanResult, error) {
	const scanChunk = 1 << 20

	d.mu.Lock()
	defer d.mu.Unlock()

	total := d.tree.TotalBytes()

	var errs *multierror.Error
	for offset := 0; offset < total; offset += scanChunk {
		if err := ctx.Err(); err != nil {
			return LineScanResult{LineCount: d.tree.LineCount(), Complete: false},
				&buferrs.CancelledError{Operation: "ScanLines"}
		}

		end := minInt(total, offset+scanChunk)
		if _, err := d.sliceLocked(ctx, Range{Start: offset, End: end}); err != nil {
			errs = multierror.Append(errs, err)
		}
	}

	var err error
	if errs != nil {
		err = errs.ErrorOrNil()
	}

	return LineScanResult{LineCount: d.tree.LineCount(), Complete: err == nil}, err
}

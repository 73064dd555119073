package buffer

import (
	"context"
	"sort"

	"github.com/connerohnesorge/piecewise/internal/overlay"
)

// Cell is one rendered byte and the composed style active at its
// offset.
type Cell struct {
	Offset int
	Byte   byte
	Style  overlay.Style
}

// RenderIterator walks a byte range once, interleaving content bytes
// with overlay crossings drawn ahead of time from the marker list, so
// the active style set updates only at crossing points rather than
// being recomputed per byte.
type RenderIterator struct {
	bytes     []byte
	start     int
	pos       int
	crossings []crossing
	nextIdx   int
	active    map[string]overlay.Resolved
	style     overlay.Style
}

type crossing struct {
	offset int
	enter  *overlay.Resolved
	exitID string
}

// NewRenderIterator materializes rng and precomputes the overlay
// crossings within it.
func (d *Document) NewRenderIterator(rng Range) (*RenderIterator, error) {
	d.mu.Lock()
	bytes, err := d.sliceLocked(context.Background(), rng)
	d.mu.Unlock()
	if err != nil {
		return nil, err
	}

	overlaps := d.OverlaysIn(rng)

	crossings := make([]crossing, 0, len(overlaps)*2)
	for i := range overlaps {
		ov := overlaps[i]
		if ov.Start >= rng.Start && ov.Start < rng.End {
			crossings = append(crossings, crossing{offset: ov.Start, enter: &overlaps[i]})
		}
		if ov.End > rng.Start && ov.End <= rng.End {
			crossings = append(crossings, crossing{offset: ov.End, exitID: ov.ID})
		}
	}

	sort.Slice(crossings, func(i, j int) bool { return crossings[i].offset < crossings[j].offset })

	it := &RenderIterator{
		bytes:     bytes,
		start:     rng.Start,
		crossings: crossings,
		active:    make(map[string]overlay.Resolved),
	}

	// Overlays already active at rng.Start never produced a crossing
	// inside the range; seed them directly.
	for _, ov := range overlaps {
		if ov.Start < rng.Start {
			it.active[ov.ID] = ov
		}
	}
	it.style = it.composeActive()

	return it, nil
}

// Next returns the next cell in the range, or ok=false once the range
// is exhausted.
func (it *RenderIterator) Next() (Cell, bool) {
	if it.pos >= len(it.bytes) {
		return Cell{}, false
	}

	offset := it.start + it.pos

	crossed := false
	for it.nextIdx < len(it.crossings) && it.crossings[it.nextIdx].offset <= offset {
		c := it.crossings[it.nextIdx]
		if c.enter != nil {
			it.active[c.enter.ID] = *c.enter
		}
		if c.exitID != "" {
			delete(it.active, c.exitID)
		}
		it.nextIdx++
		crossed = true
	}

	if crossed {
		it.style = it.composeActive()
	}

	b := it.bytes[it.pos]
	it.pos++

	return Cell{Offset: offset, Byte: b, Style: it.style}, true
}

// composeActive recomputes the style for the current active set,
// ordered ascending by priority and, for overlays sharing a priority,
// by id — so equal-priority composition is deterministic rather than
// depending on map-iteration order.
func (it *RenderIterator) composeActive() overlay.Style {
	ordered := make([]overlay.Resolved, 0, len(it.active))
	for _, ov := range it.active {
		ordered = append(ordered, ov)
	}
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].Priority != ordered[j].Priority {
			return ordered[i].Priority < ordered[j].Priority
		}

		return ordered[i].ID < ordered[j].ID
	})

	var style overlay.Style
	for _, ov := range ordered {
		style = overlay.Compose(style, ov.Style)
	}

	return style
}

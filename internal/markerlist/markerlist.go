// Package markerlist implements a gap-encoded position tracker: an
// ordered sequence alternating gaps and markers that survives
// insertions and deletions without every marker needing its own
// absolute-offset rewrite. A marker's position is the prefix sum of
// the gaps preceding it, so an edit only has to touch the gaps (and
// markers) in its immediate vicinity — the rest of the sequence is
// untouched.
package markerlist

import (
	"fmt"

	"github.com/connerohnesorge/piecewise/internal/buferrs"
)

// Affinity selects which side a marker sticks to when an insertion
// lands exactly at its position.
type Affinity uint8

const (
	// AffinityLeft keeps the marker at its original offset; the
	// insertion is pushed past it.
	AffinityLeft Affinity = iota
	// AffinityRight moves the marker forward by the inserted length;
	// the insertion appears before it.
	AffinityRight
)

// entryKind distinguishes the two alternating entry types the list is
// built from.
type entryKind uint8

const (
	kindGap entryKind = iota
	kindMarker
)

type entry struct {
	kind entryKind
	gap  int    // valid when kind == kindGap
	id   string // valid when kind == kindMarker
	aff  Affinity
}

// List is a gap-encoded marker sequence: [Gap, Marker, Gap, Marker, …, Gap].
// The first and last entries are always gaps, possibly zero-sized.
type List struct {
	entries []entry
	index   map[string]int // marker id -> entry slot
}

// New returns an empty list tracking a document of the given byte
// length, with no markers yet.
func New(documentLength int) *List {
	return &List{
		entries: []entry{{kind: kindGap, gap: documentLength}},
		index:   make(map[string]int),
	}
}

// TotalBytes returns the sum of every gap, which always equals the
// tracked document's length.
func (l *List) TotalBytes() int {
	total := 0
	for _, e := range l.entries {
		if e.kind == kindGap {
			total += e.gap
		}
	}

	return total
}

// Create inserts a new marker at position, splitting the gap that
// contains it. position must be within [0, TotalBytes()].
func (l *List) Create(id string, position int, aff Affinity) error {
	if _, exists := l.index[id]; exists {
		return fmt.Errorf("marker %q already exists", id)
	}

	total := l.TotalBytes()
	if position < 0 || position > total {
		return &buferrs.InvalidRangeError{Offset: position, TotalBytes: total}
	}

	slot, offsetIntoGap := l.locateGap(position)
	gapEntry := l.entries[slot]

	before := entry{kind: kindGap, gap: offsetIntoGap}
	marker := entry{kind: kindMarker, id: id, aff: aff}
	after := entry{kind: kindGap, gap: gapEntry.gap - offsetIntoGap}

	replacement := []entry{before, marker, after}
	l.entries = spliceEntries(l.entries, slot, slot+1, replacement)

	l.reindexFrom(slot)

	return nil
}

// Delete removes marker id and merges the two gaps that surrounded it
// into one.
func (l *List) Delete(id string) error {
	slot, ok := l.index[id]
	if !ok {
		return &buferrs.MarkerNotFoundError{MarkerID: id}
	}

	// slot-1 and slot+1 are always gaps, by the alternation invariant.
	merged := l.entries[slot-1].gap + l.entries[slot+1].gap
	replacement := []entry{{kind: kindGap, gap: merged}}
	l.entries = spliceEntries(l.entries, slot-1, slot+2, replacement)

	delete(l.index, id)
	l.reindexFrom(slot - 1)

	return nil
}

// Position returns the current offset of marker id, computed as the
// prefix sum of gaps preceding it.
func (l *List) Position(id string) (int, bool) {
	slot, ok := l.index[id]
	if !ok {
		return 0, false
	}

	offset := 0
	for i := 0; i < slot; i++ {
		if l.entries[i].kind == kindGap {
			offset += l.entries[i].gap
		}
	}

	return offset, true
}

// Affinity returns the affinity marker id was created with.
func (l *List) Affinity(id string) (Affinity, bool) {
	slot, ok := l.index[id]
	if !ok {
		return 0, false
	}

	return l.entries[slot].aff, true
}

// locateGap finds the gap entry containing document position and the
// offset into that gap. Ties are broken strictly (consumed+e.gap >
// position, not >=) so that creating a marker at a position where one
// already sits places the new one after the existing one in entry
// order, matching document order for markers created left-to-right at
// the same offset. Callers that care about insertion-vs-marker
// affinity ties use AdjustForInsert directly, not this function.
func (l *List) locateGap(position int) (slot int, offsetIntoGap int) {
	consumed := 0
	for i, e := range l.entries {
		if e.kind != kindGap {
			continue
		}
		if consumed+e.gap > position {
			return i, position - consumed
		}
		consumed += e.gap
	}

	// Reached when position == TotalBytes(): the strict test above
	// never matches the document end, so it resolves to the end of the
	// last gap.
	last := len(l.entries) - 1

	return last, l.entries[last].gap
}

// reindexFrom rebuilds the id->slot index for entries at or after
// from, which is the only range a splice can have shifted.
func (l *List) reindexFrom(from int) {
	if from < 0 {
		from = 0
	}
	for i := from; i < len(l.entries); i++ {
		if l.entries[i].kind == kindMarker {
			l.index[l.entries[i].id] = i
		}
	}
}

// spliceEntries replaces entries[start:end] with replacement and
// returns the resulting slice. Used instead of append(a[:start],
// append(replacement, a[end:]...)...) to avoid aliasing bugs between
// the two append calls sharing a's backing array.
func spliceEntries(entries []entry, start, end int, replacement []entry) []entry {
	out := make([]entry, 0, len(entries)-(end-start)+len(replacement))
	out = append(out, entries[:start]...)
	out = append(out, replacement...)
	out = append(out, entries[end:]...)

	return out
}

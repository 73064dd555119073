package buffer

import (
	"github.com/connerohnesorge/piecewise/internal/buferrs"
	"github.com/connerohnesorge/piecewise/internal/piecetree"
)

// Apply performs one mutation transaction: validate against the
// current tree, adjust the marker list, update the tree, then swap
// state in atomically. Events fire synchronously after the swap.
//
// Document assumes a single writer: Apply is expected to be called
// from one goroutine (the host's main or UI loop). An Apply call made
// from inside an event callback (re-entrant apply, on that same
// goroutine) cannot take d.mu again without deadlocking, so it is
// instead queued and drains once the outer Apply's dispatch finishes.
func (d *Document) Apply(ev Event) error {
	if d.inApply {
		d.pendingEvt = append(d.pendingEvt, ev)

		return nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.inApply = true
	defer func() { d.inApply = false }()

	err := d.applyOne(ev)

	for len(d.pendingEvt) > 0 {
		next := d.pendingEvt[0]
		d.pendingEvt = d.pendingEvt[1:]
		_ = d.applyOne(next)
	}

	return err
}

// applyOne performs the actual validate/adjust/update/swap/dispatch
// sequence for one event. Held under d.mu.
func (d *Document) applyOne(ev Event) error {
	switch e := ev.(type) {
	case InsertEvent:
		return d.applyInsert(e.Offset, e.Bytes)
	case DeleteEvent:
		return d.applyDelete(e.Range)
	case ReplaceEvent:
		return d.applyReplace(e.Range, e.Bytes)
	default:
		return &buferrs.InvalidRangeError{Offset: -1, TotalBytes: d.tree.TotalBytes()}
	}
}

func (d *Document) applyInsert(offset int, content []byte) error {
	total := d.tree.TotalBytes()
	if offset < 0 || offset > total {
		return &buferrs.InvalidRangeError{Offset: offset, TotalBytes: total}
	}
	if len(content) == 0 {
		return nil
	}

	start, err := d.added.Append(content)
	if err != nil {
		return err
	}

	newlines := countStoredNewlines(d.added.LineStarts(), start, start+len(content))

	d.markers.AdjustForInsert(offset, len(content))

	tree, err := d.tree.Insert(d.resolver, offset, piecetree.Piece{
		Storage: d.added.ID(), Start: start, Length: len(content), Newlines: newlines,
	})
	if err != nil {
		return err
	}

	d.tree = tree

	d.emitChange(BufferChanged{
		RangeBefore: Range{Start: offset, End: offset},
		RangeAfter:  Range{Start: offset, End: offset + len(content)},
	})

	return nil
}

func (d *Document) applyDelete(rng Range) error {
	total := d.tree.TotalBytes()
	if rng.Start < 0 || rng.End > total || rng.Start > rng.End {
		return &buferrs.InvalidRangeError{Offset: -1, Start: rng.Start, End: rng.End, TotalBytes: total}
	}
	if rng.Len() == 0 {
		return nil
	}

	destroyed := d.markers.AdjustForDelete(rng.Start, rng.Len())

	tree, err := d.tree.Delete(d.resolver, piecetree.Range{Start: rng.Start, End: rng.End})
	if err != nil {
		return err
	}

	d.tree = tree
	d.overlays.RemoveByDestroyedMarkers(destroyed)

	d.emitOverlaysInvalidated(destroyed)
	d.emitChange(BufferChanged{
		RangeBefore: rng,
		RangeAfter:  Range{Start: rng.Start, End: rng.Start},
	})

	return nil
}

// applyReplace runs the marker list's delete adjustment for rng and
// then its insert adjustment at rng.Start, in one transaction with one
// BufferChanged event. Markers fare exactly as under a Delete followed
// by an Insert: those strictly inside rng, and right-affinity markers
// at rng.Start, are destroyed and are not recreated.
func (d *Document) applyReplace(rng Range, content []byte) error {
	total := d.tree.TotalBytes()
	if rng.Start < 0 || rng.End > total || rng.Start > rng.End {
		return &buferrs.InvalidRangeError{Offset: -1, Start: rng.Start, End: rng.End, TotalBytes: total}
	}

	destroyed := d.markers.AdjustForDelete(rng.Start, rng.Len())

	tree, err := d.tree.Delete(d.resolver, piecetree.Range{Start: rng.Start, End: rng.End})
	if err != nil {
		return err
	}

	if len(content) > 0 {
		start, err := d.added.Append(content)
		if err != nil {
			return err
		}

		newlines := countStoredNewlines(d.added.LineStarts(), start, start+len(content))

		d.markers.AdjustForInsert(rng.Start, len(content))

		tree, err = tree.Insert(d.resolver, rng.Start, piecetree.Piece{
			Storage: d.added.ID(), Start: start, Length: len(content), Newlines: newlines,
		})
		if err != nil {
			return err
		}
	}

	d.tree = tree
	d.overlays.RemoveByDestroyedMarkers(destroyed)

	d.emitOverlaysInvalidated(destroyed)
	d.emitChange(BufferChanged{
		RangeBefore: rng,
		RangeAfter:  Range{Start: rng.Start, End: rng.Start + len(content)},
	})

	return nil
}

package markerlist

// AdjustForInsert grows the list to account for an insertion of length
// bytes at document offset at. When at lands exactly on a marker
// boundary, affinity decides which side absorbs the growth: a
// left-affinity marker's following gap grows (the marker stays put),
// a right-affinity marker's preceding gap grows (the marker moves
// forward). Opposite-affinity markers sitting back to back at the
// same offset fall out of this rule automatically: the insertion
// lands in the gap between them, which is exactly what grows.
func (l *List) AdjustForInsert(at, length int) {
	if length <= 0 {
		return
	}

	slot := l.boundarySlot(at)
	if slot == -1 {
		gapSlot, _ := l.locateGap(at)
		l.entries[gapSlot].gap += length

		return
	}

	l.growAtBoundary(slot, length)
}

// boundarySlot returns the marker slot whose position equals at, or -1
// if at falls strictly inside a gap (not exactly on any marker).
func (l *List) boundarySlot(at int) int {
	offset := 0
	for i, e := range l.entries {
		if e.kind == kindGap {
			offset += e.gap
			continue
		}
		if offset == at {
			return i
		}
		if offset > at {
			return -1
		}
	}

	return -1
}

// growAtBoundary grows the correct neighboring gap of the marker at
// markerSlot for an insertion landing exactly at that marker's
// position, per affinity. A left-affinity marker must stay at its
// current offset (the prefix sum of gaps preceding it), so the
// insertion has to land in the gap that follows it; a right-affinity
// marker must move forward by the inserted length, so it lands in the
// gap that precedes it.
func (l *List) growAtBoundary(markerSlot, length int) {
	m := l.entries[markerSlot]
	if m.aff == AffinityLeft {
		l.entries[markerSlot+1].gap += length

		return
	}

	l.entries[markerSlot-1].gap += length
}

// AdjustForDelete shrinks the list to account for deleting length
// bytes starting at document offset at. A marker is destroyed when its
// position falls strictly inside (at, at+length), or lands exactly at
// at with right affinity (the deleted range is half-open on the left,
// so a right-affinity marker sitting at the cut point is inside it;
// a left-affinity marker there survives at the cut point, per the
// affinity rule). Destroyed ids are returned so the overlay manager
// can drop any overlay depending on them.
func (l *List) AdjustForDelete(at, length int) []string {
	if length <= 0 {
		return nil
	}

	end := at + length

	var destroyed []string
	newEntries := make([]entry, 0, len(l.entries))
	pendingGap := 0
	offset := 0

	for _, e := range l.entries {
		if e.kind == kindGap {
			gapStart, gapEnd := offset, offset+e.gap

			overlapStart := maxInt(gapStart, at)
			overlapEnd := minInt(gapEnd, end)
			shrink := 0
			if overlapEnd > overlapStart {
				shrink = overlapEnd - overlapStart
			}

			pendingGap += e.gap - shrink
			offset = gapEnd

			continue
		}

		pos := offset
		destroy := (pos > at && pos < end) || (pos == at && e.aff == AffinityRight)
		if destroy {
			destroyed = append(destroyed, e.id)

			continue
		}

		newEntries = append(newEntries, entry{kind: kindGap, gap: pendingGap})
		newEntries = append(newEntries, e)
		pendingGap = 0
	}

	newEntries = append(newEntries, entry{kind: kindGap, gap: pendingGap})

	l.entries = newEntries
	for _, id := range destroyed {
		delete(l.index, id)
	}
	l.rebuildIndex()

	return destroyed
}

// rebuildIndex recomputes the id->slot map from scratch, used after
// AdjustForDelete rewrites the entire entry slice.
func (l *List) rebuildIndex() {
	for i, e := range l.entries {
		if e.kind == kindMarker {
			l.index[e.id] = i
		}
	}
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

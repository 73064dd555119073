package markerlist

import "testing"

func TestList_CreateAndPosition(t *testing.T) {
	l := New(20)

	if err := l.Create("a", 5, AffinityLeft); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if err := l.Create("b", 12, AffinityRight); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	pos, ok := l.Position("a")
	if !ok || pos != 5 {
		t.Errorf("Position(a) = (%d, %v), want (5, true)", pos, ok)
	}
	pos, ok = l.Position("b")
	if !ok || pos != 12 {
		t.Errorf("Position(b) = (%d, %v), want (12, true)", pos, ok)
	}

	if got := l.TotalBytes(); got != 20 {
		t.Errorf("TotalBytes() = %d, want 20", got)
	}
}

func TestList_CreateRejectsOutOfRange(t *testing.T) {
	l := New(10)

	if err := l.Create("a", 11, AffinityLeft); err == nil {
		t.Error("Create() at out-of-range position = nil error, want error")
	}
}

func TestList_CreateRejectsDuplicateID(t *testing.T) {
	l := New(10)
	if err := l.Create("a", 1, AffinityLeft); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	if err := l.Create("a", 2, AffinityLeft); err == nil {
		t.Error("Create() with duplicate id = nil error, want error")
	}
}

func TestList_Delete(t *testing.T) {
	l := New(20)
	_ = l.Create("a", 5, AffinityLeft)
	_ = l.Create("b", 12, AffinityRight)

	if err := l.Delete("a"); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}

	if _, ok := l.Position("a"); ok {
		t.Error("Position(a) after Delete() = ok, want not found")
	}
	pos, ok := l.Position("b")
	if !ok || pos != 12 {
		t.Errorf("Position(b) after deleting a = (%d, %v), want (12, true)", pos, ok)
	}
	if got := l.TotalBytes(); got != 20 {
		t.Errorf("TotalBytes() after Delete() = %d, want 20", got)
	}
}

func TestList_DeleteUnknownID(t *testing.T) {
	l := New(10)

	if err := l.Delete("missing"); err == nil {
		t.Error("Delete() of unknown id = nil error, want error")
	}
}

// TestList_AdjustForInsert_LeftAffinityStaysPut verifies the
// marker-stability property: a left-affinity marker at p, after an
// insert of length k exactly at p, stays at p.
func TestList_AdjustForInsert_LeftAffinityStaysPut(t *testing.T) {
	l := New(10)
	_ = l.Create("m", 5, AffinityLeft)

	l.AdjustForInsert(5, 3)

	pos, ok := l.Position("m")
	if !ok || pos != 5 {
		t.Errorf("Position(m) after insert-at-left-affinity = (%d, %v), want (5, true)", pos, ok)
	}
	if got := l.TotalBytes(); got != 13 {
		t.Errorf("TotalBytes() = %d, want 13", got)
	}
}

// TestList_AdjustForInsert_RightAffinityMovesForward verifies the
// symmetric right-affinity rule: insertion at q <= p moves the marker
// forward by the inserted length.
func TestList_AdjustForInsert_RightAffinityMovesForward(t *testing.T) {
	l := New(10)
	_ = l.Create("m", 5, AffinityRight)

	l.AdjustForInsert(5, 3)

	pos, ok := l.Position("m")
	if !ok || pos != 8 {
		t.Errorf("Position(m) after insert-at-right-affinity = (%d, %v), want (8, true)", pos, ok)
	}
}

// TestList_AdjustForInsert_StrictlyBeforeShiftsBoth verifies that an
// insertion strictly before a marker's position shifts it forward
// regardless of affinity.
func TestList_AdjustForInsert_StrictlyBeforeShiftsBoth(t *testing.T) {
	for _, aff := range []Affinity{AffinityLeft, AffinityRight} {
		l := New(10)
		_ = l.Create("m", 5, aff)

		l.AdjustForInsert(2, 4)

		pos, ok := l.Position("m")
		if !ok || pos != 9 {
			t.Errorf("affinity %v: Position(m) = (%d, %v), want (9, true)", aff, pos, ok)
		}
	}
}

// TestList_AdjustForInsert_StrictlyAfterLeavesUnchanged verifies that
// an insertion strictly after a marker does not move it.
func TestList_AdjustForInsert_StrictlyAfterLeavesUnchanged(t *testing.T) {
	l := New(10)
	_ = l.Create("m", 5, AffinityLeft)

	l.AdjustForInsert(8, 4)

	pos, ok := l.Position("m")
	if !ok || pos != 5 {
		t.Errorf("Position(m) = (%d, %v), want (5, true)", pos, ok)
	}
}

// TestList_AdjustForDelete_DestroysMarkerStrictlyInside verifies the
// destruction rule for markers strictly inside a deleted range.
func TestList_AdjustForDelete_DestroysMarkerStrictlyInside(t *testing.T) {
	l := New(20)
	_ = l.Create("m", 5, AffinityLeft)

	destroyed := l.AdjustForDelete(2, 6)

	if len(destroyed) != 1 || destroyed[0] != "m" {
		t.Fatalf("AdjustForDelete() destroyed = %v, want [m]", destroyed)
	}
	if _, ok := l.Position("m"); ok {
		t.Error("Position(m) after destruction = ok, want not found")
	}
	if got := l.TotalBytes(); got != 14 {
		t.Errorf("TotalBytes() = %d, want 14", got)
	}
}

// TestList_AdjustForDelete_LeftAffinityAtCutSurvives verifies that a
// left-affinity marker positioned exactly at the deletion start
// survives at that offset.
func TestList_AdjustForDelete_LeftAffinityAtCutSurvives(t *testing.T) {
	l := New(20)
	_ = l.Create("m", 5, AffinityLeft)

	destroyed := l.AdjustForDelete(5, 5)

	if len(destroyed) != 0 {
		t.Fatalf("AdjustForDelete() destroyed = %v, want none", destroyed)
	}
	pos, ok := l.Position("m")
	if !ok || pos != 5 {
		t.Errorf("Position(m) = (%d, %v), want (5, true)", pos, ok)
	}
}

// TestList_AdjustForDelete_RightAffinityAtCutDestroyed verifies the
// other half of the same boundary rule: a right-affinity marker sitting
// exactly at the deletion's start offset is inside the half-open
// deleted range and is destroyed.
func TestList_AdjustForDelete_RightAffinityAtCutDestroyed(t *testing.T) {
	l := New(20)
	_ = l.Create("m", 5, AffinityRight)

	destroyed := l.AdjustForDelete(5, 5)

	if len(destroyed) != 1 || destroyed[0] != "m" {
		t.Fatalf("AdjustForDelete() destroyed = %v, want [m]", destroyed)
	}
}

// TestList_AdjustForDelete_MarkerAfterRangeShiftsBack verifies a
// marker positioned past the deleted range shifts back by the deleted
// length.
func TestList_AdjustForDelete_MarkerAfterRangeShiftsBack(t *testing.T) {
	l := New(20)
	_ = l.Create("m", 15, AffinityLeft)

	l.AdjustForDelete(5, 5)

	pos, ok := l.Position("m")
	if !ok || pos != 10 {
		t.Errorf("Position(m) = (%d, %v), want (10, true)", pos, ok)
	}
}

// TestList_AdjustForDelete_MultipleMarkersDestroyedInOneRange verifies
// that several markers destroyed by one delete are all reported and
// the surrounding gaps correctly coalesce into one.
func TestList_AdjustForDelete_MultipleMarkersDestroyedInOneRange(t *testing.T) {
	l := New(30)
	_ = l.Create("a", 5, AffinityLeft)
	_ = l.Create("b", 10, AffinityLeft)
	_ = l.Create("c", 15, AffinityLeft)
	_ = l.Create("tail", 25, AffinityLeft)

	destroyed := l.AdjustForDelete(4, 13)

	want := map[string]bool{"a": true, "b": true, "c": true}
	if len(destroyed) != len(want) {
		t.Fatalf("AdjustForDelete() destroyed = %v, want 3 markers", destroyed)
	}
	for _, id := range destroyed {
		if !want[id] {
			t.Errorf("unexpected destroyed id %q", id)
		}
	}

	pos, ok := l.Position("tail")
	if !ok || pos != 12 {
		t.Errorf("Position(tail) = (%d, %v), want (12, true)", pos, ok)
	}
	if got := l.TotalBytes(); got != 17 {
		t.Errorf("TotalBytes() = %d, want 17", got)
	}
}

// TestList_OppositeAffinityMarkersAtSameOffsetSplitInsertBetweenThem
// verifies a split-insert scenario: a left-affinity and a right-affinity
// marker created at the same offset, in that order, end up straddling
// an insertion at that offset — the left marker stays put, the right
// marker moves forward, and document order is left-marker, inserted
// text, right-marker.
func TestList_OppositeAffinityMarkersAtSameOffsetSplitInsertBetweenThem(t *testing.T) {
	l := New(10)
	_ = l.Create("left", 5, AffinityLeft)
	_ = l.Create("right", 5, AffinityRight)

	l.AdjustForInsert(5, 1)

	leftPos, ok := l.Position("left")
	if !ok || leftPos != 5 {
		t.Errorf("Position(left) = (%d, %v), want (5, true)", leftPos, ok)
	}
	rightPos, ok := l.Position("right")
	if !ok || rightPos != 6 {
		t.Errorf("Position(right) = (%d, %v), want (6, true)", rightPos, ok)
	}
	if got := l.TotalBytes(); got != 11 {
		t.Errorf("TotalBytes() = %d, want 11", got)
	}
}

func TestList_Affinity(t *testing.T) {
	l := New(10)
	_ = l.Create("m", 3, AffinityRight)

	aff, ok := l.Affinity("m")
	if !ok || aff != AffinityRight {
		t.Errorf("Affinity(m) = (%v, %v), want (AffinityRight, true)", aff, ok)
	}
}

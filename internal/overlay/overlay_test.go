package overlay

import (
	"testing"

	"github.com/charmbracelet/lipgloss"

	"github.com/connerohnesorge/piecewise/internal/markerlist"
)

func TestManager_AddAndOverlapping(t *testing.T) {
	m := NewManager(markerlist.New(100))

	id, err := m.Add(Range{Start: 10, End: 20}, Style{Background: lipgloss.Color("1")}, 0, Options{})
	if err != nil {
		t.Fatalf("Add() failed: %v", err)
	}

	overlapping := m.OverlaysOverlapping(Range{Start: 15, End: 16})
	if len(overlapping) != 1 || overlapping[0].ID != id {
		t.Fatalf("OverlaysOverlapping() = %+v, want one overlay %q", overlapping, id)
	}

	none := m.OverlaysOverlapping(Range{Start: 20, End: 30})
	if len(none) != 0 {
		t.Errorf("OverlaysOverlapping() past the overlay = %+v, want none", none)
	}
}

func TestManager_GrowsWithInsertInsideRange(t *testing.T) {
	markers := markerlist.New(100)
	m := NewManager(markers)

	id, err := m.Add(Range{Start: 10, End: 20}, Style{}, 0, Options{})
	if err != nil {
		t.Fatalf("Add() failed: %v", err)
	}

	markers.AdjustForInsert(15, 5)

	overlapping := m.OverlaysOverlapping(Range{Start: 0, End: 100})
	if len(overlapping) != 1 {
		t.Fatalf("OverlaysOverlapping() = %+v, want one overlay", overlapping)
	}
	if overlapping[0].ID != id || overlapping[0].Start != 10 || overlapping[0].End != 25 {
		t.Errorf("overlay after internal insert = %+v, want Start=10 End=25", overlapping[0])
	}
}

// TestManager_StartStaysPutOnInsertAtItsOwnOffset verifies the
// marker-stability property for the left-affinity start marker: an
// insert landing exactly at the overlay's start offset leaves the start
// marker's own position unchanged (it "stays behind" the inserted
// text), while the end marker — strictly after the insertion point —
// shifts forward by the inserted length, so the overlay grows to
// absorb the new text rather than being pushed forward as a whole.
func TestManager_StartStaysPutOnInsertAtItsOwnOffset(t *testing.T) {
	markers := markerlist.New(100)
	m := NewManager(markers)

	_, err := m.Add(Range{Start: 10, End: 20}, Style{}, 0, Options{})
	if err != nil {
		t.Fatalf("Add() failed: %v", err)
	}

	markers.AdjustForInsert(10, 5)

	overlapping := m.OverlaysOverlapping(Range{Start: 0, End: 100})
	if len(overlapping) != 1 {
		t.Fatalf("OverlaysOverlapping() = %+v, want one overlay", overlapping)
	}
	if overlapping[0].Start != 10 || overlapping[0].End != 25 {
		t.Errorf("overlay after insert-at-start = %+v, want Start=10 End=25", overlapping[0])
	}
}

func TestManager_Remove(t *testing.T) {
	m := NewManager(markerlist.New(100))

	id, _ := m.Add(Range{Start: 0, End: 10}, Style{}, 0, Options{})

	if err := m.Remove(id); err != nil {
		t.Fatalf("Remove() failed: %v", err)
	}

	if err := m.Remove(id); err == nil {
		t.Error("Remove() of already-removed overlay = nil error, want error")
	}
}

func TestManager_RemoveByIDPrefix(t *testing.T) {
	m := NewManager(markerlist.New(100))

	_, _ = m.Add(Range{Start: 0, End: 5}, Style{}, 0, Options{ID: "lint:a"})
	_, _ = m.Add(Range{Start: 5, End: 10}, Style{}, 0, Options{ID: "lint:b"})
	_, _ = m.Add(Range{Start: 10, End: 15}, Style{}, 0, Options{ID: "cursor"})

	removed, errs := m.RemoveByIDPrefix("lint:")
	if removed != 2 {
		t.Errorf("RemoveByIDPrefix() = %d, want 2", removed)
	}
	if len(errs) != 0 {
		t.Errorf("RemoveByIDPrefix() errs = %v, want none", errs)
	}

	remaining := m.OverlaysOverlapping(Range{Start: 0, End: 100})
	if len(remaining) != 1 || remaining[0].ID != "cursor" {
		t.Errorf("remaining overlays = %+v, want only cursor", remaining)
	}
}

func TestManager_RemoveByDestroyedMarkers(t *testing.T) {
	markers := markerlist.New(100)
	m := NewManager(markers)

	id, err := m.Add(Range{Start: 10, End: 20}, Style{}, 0, Options{})
	if err != nil {
		t.Fatalf("Add() failed: %v", err)
	}

	destroyed := markers.AdjustForDelete(5, 10)

	m.RemoveByDestroyedMarkers(destroyed)

	if err := m.Remove(id); err == nil {
		t.Error("overlay survived deletion of its start marker, want auto-removed")
	}
}

func TestManager_AtPositionOrdersByPriority(t *testing.T) {
	m := NewManager(markerlist.New(100))

	_, _ = m.Add(Range{Start: 0, End: 10}, Style{Background: lipgloss.Color("1")}, 1, Options{})
	_, _ = m.Add(Range{Start: 0, End: 10}, Style{Background: lipgloss.Color("2")}, 5, Options{})

	resolved := m.AtPosition(5)
	if len(resolved) != 2 {
		t.Fatalf("AtPosition() = %+v, want 2 overlays", resolved)
	}
	if resolved[0].Priority > resolved[1].Priority {
		t.Errorf("AtPosition() not ascending by priority: %+v", resolved)
	}

	style := m.StyleAt(5)
	if style.Background != lipgloss.Color("2") {
		t.Errorf("StyleAt() background = %q, want the higher-priority overlay's color", style.Background)
	}
}

func TestCompose_BackgroundReplacesUnderlineAndStrikethroughOR(t *testing.T) {
	base := Style{Background: lipgloss.Color("1"), Underline: true}
	over := Style{Background: lipgloss.Color("2"), Strikethrough: true}

	got := Compose(base, over)

	if got.Background != lipgloss.Color("2") {
		t.Errorf("Background = %q, want %q (replaced)", got.Background, "2")
	}
	if !got.Underline || !got.Strikethrough {
		t.Errorf("Underline/Strikethrough = %v/%v, want both true (OR-ed)", got.Underline, got.Strikethrough)
	}
}

func TestCompose_ForegroundFallsThroughWhenUnset(t *testing.T) {
	base := Style{Foreground: lipgloss.Color("7")}
	over := Style{}

	got := Compose(base, over)

	if got.Foreground != lipgloss.Color("7") {
		t.Errorf("Foreground = %q, want base's %q to fall through", got.Foreground, "7")
	}
}

func TestCompose_BlendsInheritedForegroundTowardNewBackground(t *testing.T) {
	base := Style{Foreground: lipgloss.Color("#ff0000")}
	over := Style{Background: lipgloss.Color("#0000ff")}

	got := Compose(base, over)

	if got.Background != lipgloss.Color("#0000ff") {
		t.Errorf("Background = %q, want %q", got.Background, "#0000ff")
	}
	if got.Foreground == lipgloss.Color("#ff0000") {
		t.Error("Foreground unchanged, want it nudged toward the new background")
	}
}

func TestCompose_NonHexColorsPassThroughUnblended(t *testing.T) {
	base := Style{Foreground: lipgloss.Color("9")}
	over := Style{Background: lipgloss.Color("21")}

	got := Compose(base, over)

	if got.Foreground != lipgloss.Color("9") {
		t.Errorf("Foreground = %q, want unchanged ANSI index %q", got.Foreground, "9")
	}
}

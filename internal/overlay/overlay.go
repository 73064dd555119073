// Package overlay implements annotations anchored to byte ranges via
// markers rather than raw offsets: an overlay survives edits because
// its endpoints are markers, which the marker list keeps correctly
// positioned (or destroys, when an edit removes the text they were
// anchored to).
package overlay

import (
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/connerohnesorge/piecewise/internal/buferrs"
	"github.com/connerohnesorge/piecewise/internal/markerlist"
)

// Style is a layerable set of text attributes. A zero-value field
// means "unset" and falls through to a lower-priority overlay's value
// during composition; Background and Foreground use the empty
// lipgloss.Color ("") as their unset sentinel.
type Style struct {
	Foreground    lipgloss.Color
	Background    lipgloss.Color
	Underline     bool
	Strikethrough bool
}

// Compose layers over atop base, following the composition rules:
// background is replaced outright by any overlay that sets it,
// underline and strikethrough OR together, and foreground keeps the
// highest-priority value that set one. When over sets a background but
// no foreground, an inherited foreground is blended toward that new
// background (foregroundBlendToward). Compose is called with
// overlays already sorted ascending by priority, so later layers in
// the call sequence win — mirroring Go's own struct-embedding
// override semantics rather than introducing a separate priority
// field here.
func Compose(base Style, over Style) Style {
	result := base

	if over.Background != "" {
		if result.Foreground != "" && over.Foreground == "" {
			result.Foreground = foregroundBlendToward(result.Foreground, over.Background, blendTowardAmount)
		}
		result.Background = over.Background
	}
	if over.Foreground != "" {
		result.Foreground = over.Foreground
	}
	result.Underline = result.Underline || over.Underline
	result.Strikethrough = result.Strikethrough || over.Strikethrough

	return result
}

// Options carries the optional fields an overlay may be created with.
type Options struct {
	// ID is used for prefix-based batch removal. Overlays with no ID
	// can still be removed individually by the id Add returns.
	ID string
	// Payload is opaque caller data carried alongside the overlay
	// (e.g. a diagnostic message, a plugin-defined annotation kind).
	Payload any
}

// Overlay is a style annotation anchored to a marker-tracked range.
type Overlay struct {
	ID            string
	StartMarkerID string
	EndMarkerID   string
	Style         Style
	Priority      int
	Payload       any
}

// Resolved is an Overlay with its marker endpoints resolved to current
// document offsets.
type Resolved struct {
	Overlay
	Start, End int
}

// Manager owns the set of live overlays for one document and the
// marker list backing their endpoints. It is not safe for concurrent
// use without external synchronization beyond what sync.RWMutex
// itself provides for the read paths; apply (the single mutation
// path) is expected to serialize writes the way the rest of the
// document's edit pipeline does.
type Manager struct {
	mu       sync.RWMutex
	markers  *markerlist.List
	overlays map[string]*Overlay
	nextSeq  uint64

	// byStart is a sorted-by-resolved-start auxiliary index, rebuilt
	// lazily once overlays exceeds linearScanLimit.
	byStart      []string
	byStartDirty bool
}

// linearScanLimit is the overlay count below which OverlaysOverlapping
// and AtPosition scan every overlay directly instead of consulting the
// sorted auxiliary index.
const linearScanLimit = 1000

// NewManager returns a Manager that anchors overlay endpoints in the
// given marker list.
func NewManager(markers *markerlist.List) *Manager {
	return &Manager{
		markers:  markers,
		overlays: make(map[string]*Overlay),
	}
}

// Add creates two markers (start left-affinity, end right-affinity)
// spanning rng and stores the overlay, returning its id.
func (m *Manager) Add(rng Range, style Style, priority int, opts Options) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := opts.ID
	if id == "" {
		id = m.generateID()
	} else if _, exists := m.overlays[id]; exists {
		id = m.generateID()
	}

	startMarker := id + ":start"
	endMarker := id + ":end"

	if err := m.markers.Create(startMarker, rng.Start, markerlist.AffinityLeft); err != nil {
		return "", err
	}
	if err := m.markers.Create(endMarker, rng.End, markerlist.AffinityRight); err != nil {
		_ = m.markers.Delete(startMarker)

		return "", err
	}

	m.overlays[id] = &Overlay{
		ID:            id,
		StartMarkerID: startMarker,
		EndMarkerID:   endMarker,
		Style:         style,
		Priority:      priority,
		Payload:       opts.Payload,
	}
	m.byStartDirty = true

	return id, nil
}

// generateID produces a unique overlay id when the caller did not
// supply one (or supplied one already in use). Held under m.mu.
func (m *Manager) generateID() string {
	for {
		m.nextSeq++
		candidate := "overlay-" + strconv.FormatUint(m.nextSeq, 10)
		if _, exists := m.overlays[candidate]; !exists {
			return candidate
		}
	}
}

// Remove destroys overlay id and its two markers.
func (m *Manager) Remove(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	ov, ok := m.overlays[id]
	if !ok {
		return &buferrs.OverlayNotFoundError{OverlayID: id}
	}

	m.removeLocked(ov)

	return nil
}

func (m *Manager) removeLocked(ov *Overlay) []error {
	var errs []error
	if err := m.markers.Delete(ov.StartMarkerID); err != nil {
		errs = append(errs, err)
	}
	if err := m.markers.Delete(ov.EndMarkerID); err != nil {
		errs = append(errs, err)
	}
	delete(m.overlays, ov.ID)
	m.byStartDirty = true

	return errs
}

// RemoveByIDPrefix removes every overlay whose id begins with prefix
// in one pass and reports how many were removed, plus any per-overlay
// marker-removal errors encountered along the way, rather than
// aborting the batch on the first failure. The buffer package returns
// this slice to its caller unchanged.
func (m *Manager) RemoveByIDPrefix(prefix string) (removed int, errs []error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var matched []*Overlay
	for _, ov := range m.overlays {
		if strings.HasPrefix(ov.ID, prefix) {
			matched = append(matched, ov)
		}
	}

	for _, ov := range matched {
		errs = append(errs, m.removeLocked(ov)...)
	}

	return len(matched), errs
}

// RemoveByDestroyedMarkers drops every overlay whose start or end
// marker id appears in destroyed — called by the buffer package after
// AdjustForDelete reports markers that no longer exist; those overlays
// are auto-dropped here rather than surfaced as an error.
func (m *Manager) RemoveByDestroyedMarkers(destroyed []string) {
	if len(destroyed) == 0 {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	lost := make(map[string]bool, len(destroyed))
	for _, id := range destroyed {
		lost[id] = true
	}

	var orphaned []*Overlay
	for _, ov := range m.overlays {
		if lost[ov.StartMarkerID] || lost[ov.EndMarkerID] {
			orphaned = append(orphaned, ov)
		}
	}

	for _, ov := range orphaned {
		m.removeLocked(ov)
	}
}

// resolve reads an overlay's current start/end offsets from the
// marker list. Held under at least a read lock.
func (m *Manager) resolve(ov *Overlay) (Resolved, bool) {
	start, ok := m.markers.Position(ov.StartMarkerID)
	if !ok {
		return Resolved{}, false
	}
	end, ok := m.markers.Position(ov.EndMarkerID)
	if !ok {
		return Resolved{}, false
	}

	return Resolved{Overlay: *ov, Start: start, End: end}, true
}

// OverlaysOverlapping returns every overlay whose resolved range
// intersects rng, in no particular order.
func (m *Manager) OverlaysOverlapping(rng Range) []Resolved {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []Resolved
	for _, ov := range m.candidatesBefore(rng.End) {
		r, ok := m.resolve(ov)
		if !ok {
			continue
		}
		if r.Start < rng.End && r.End > rng.Start {
			out = append(out, r)
		}
	}

	return out
}

// AtPosition returns the overlays active at offset, ascending by
// priority so the caller's last-wins composition produces the correct
// result by folding left to right with Compose.
func (m *Manager) AtPosition(offset int) []Resolved {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []Resolved
	for _, ov := range m.candidatesBefore(offset + 1) {
		r, ok := m.resolve(ov)
		if !ok {
			continue
		}
		if offset >= r.Start && offset < r.End {
			out = append(out, r)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority < out[j].Priority
		}

		return out[i].ID < out[j].ID
	})

	return out
}

// candidatesBefore returns the overlays that could possibly start
// before boundary. Below linearScanLimit it returns every overlay
// directly; above it, it consults the sorted-by-start index so that
// overlays starting at or after boundary are skipped without being
// resolved. Held under at least a read lock; may upgrade to a
// rebuild of byStart, hence the caller taking the write lock.
func (m *Manager) candidatesBefore(boundary int) []*Overlay {
	if len(m.overlays) <= linearScanLimit {
		out := make([]*Overlay, 0, len(m.overlays))
		for _, ov := range m.overlays {
			out = append(out, ov)
		}

		return out
	}

	if m.byStartDirty {
		m.rebuildByStart()
	}

	idx := sort.Search(len(m.byStart), func(i int) bool {
		r, ok := m.resolve(m.overlays[m.byStart[i]])
		return !ok || r.Start >= boundary
	})

	out := make([]*Overlay, 0, idx)
	for _, id := range m.byStart[:idx] {
		if ov, ok := m.overlays[id]; ok {
			out = append(out, ov)
		}
	}

	return out
}

// rebuildByStart recomputes the sorted-by-resolved-start id index from
// scratch. Held under m.mu (write).
func (m *Manager) rebuildByStart() {
	ids := make([]string, 0, len(m.overlays))
	starts := make(map[string]int, len(m.overlays))
	for id, ov := range m.overlays {
		r, ok := m.resolve(ov)
		if !ok {
			continue
		}
		ids = append(ids, id)
		starts[id] = r.Start
	}

	sort.Slice(ids, func(i, j int) bool { return starts[ids[i]] < starts[ids[j]] })

	m.byStart = ids
	m.byStartDirty = false
}

// StyleAt composes every active overlay at offset into a single Style,
// lowest priority first.
func (m *Manager) StyleAt(offset int) Style {
	var style Style
	for _, r := range m.AtPosition(offset) {
		style = Compose(style, r.Style)
	}

	return style
}

// Range is a half-open document byte range.
type Range struct {
	Start, End int
}

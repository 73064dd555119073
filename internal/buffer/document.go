package buffer

import (
	"context"
	"sort"
	"sync"

	"github.com/spf13/afero"

	"github.com/connerohnesorge/piecewise/internal/bufconfig"
	"github.com/connerohnesorge/piecewise/internal/buferrs"
	"github.com/connerohnesorge/piecewise/internal/markerlist"
	"github.com/connerohnesorge/piecewise/internal/overlay"
	"github.com/connerohnesorge/piecewise/internal/piecetree"
	"github.com/connerohnesorge/piecewise/internal/storage"
)

// Document is a single editable buffer: a piece tree over byte
// storages, a marker list anchoring overlays, and the event callbacks
// a host registers. Apply is the only path that edits the text; the
// overlay methods change only overlays. Reads may run concurrently
// with other reads, but not with Apply (see Apply's doc for the
// single-writer note).
type Document struct {
	mu sync.Mutex

	path       string
	storages   *storage.Set
	resolver   docResolver
	tree       *piecetree.Tree
	markers    *markerlist.List
	overlays   *overlay.Manager
	added      storage.Appender
	largeFile  bool
	opts       bufconfig.Options
	pendingEvt []Event
	inApply    bool

	onChange              []func(BufferChanged)
	onOverlaysInvalidated []func(OverlaysInvalidated)
	onChunkLoaded         []func(ChunkLoaded)
	onExternalChange      []func(ExternalChangeDetected)

	watcher *storage.ExternalChangeWatcher
}

// docResolver answers piecetree.StorageResolver queries against a
// Document's storage set.
type docResolver struct {
	storages *storage.Set
}

func (r docResolver) LineStarts(id storage.ID) []int {
	st, ok := r.storages.Get(id)
	if !ok {
		return nil
	}

	return st.LineStarts()
}

// New creates an empty in-memory document, used by tests and by
// callers building content programmatically rather than from a file.
func New() *Document {
	set := storage.NewSet(nil, 0, storage.DefaultChunkPolicy())
	added := set.NewAddedStorage()

	d := &Document{
		storages: set,
		resolver: docResolver{storages: set},
		tree:     piecetree.Empty(),
		markers:  markerlist.New(0),
		added:    added,
	}
	d.overlays = overlay.NewManager(d.markers)

	return d
}

// Load reads path through fs (nil defaults to the OS filesystem) and
// builds a Document, entering large-file mode per opts.
func Load(fs afero.Fs, path string, opts bufconfig.Options) (*Document, error) {
	if fs == nil {
		fs = afero.NewOsFs()
	}

	info, err := fs.Stat(path)
	if err != nil {
		return nil, &buferrs.IoFailedError{Path: path, Op: "stat", Err: err}
	}
	length := int(info.Size())

	large := opts.ForceLarge || int64(length) >= opts.LargeFileThreshold

	set := storage.NewSet(fs, opts.MaxCachedChunks, storage.ChunkPolicy{
		Alignment: opts.ChunkAlignment,
		MinSize:   opts.ChunkSize,
	})

	d := &Document{
		path:      path,
		storages:  set,
		resolver:  docResolver{storages: set},
		markers:   markerlist.New(length),
		largeFile: large,
		opts:      opts,
	}
	d.overlays = overlay.NewManager(d.markers)

	var original storage.Storage
	if large && !opts.EagerLineIndex && !opts.ForceLineIndex {
		original = set.LoadOriginalFile(path, length)
	} else {
		original, err = set.LoadWholeFileEager(path)
		if err != nil {
			return nil, err
		}
	}

	newlines := 0
	if original.Loaded() {
		newlines = countStoredNewlines(original.LineStarts(), 0, length)
	}

	tree, err := piecetree.Empty().Insert(d.resolver, 0, piecetree.Piece{
		Storage: original.ID(), Start: 0, Length: length, Newlines: newlines,
	})
	if err != nil {
		return nil, err
	}
	d.tree = tree

	d.added = set.NewAddedStorage()

	return d, nil
}

func countStoredNewlines(starts []int, start, end int) int {
	if starts == nil {
		return 0
	}

	lo := sort.Search(len(starts), func(i int) bool { return starts[i] > start })
	hi := sort.Search(len(starts), func(i int) bool { return starts[i] > end })

	return hi - lo
}

// TotalBytes returns the document's total byte length.
func (d *Document) TotalBytes() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.tree.TotalBytes()
}

// LineCount returns the root newline aggregate plus one. In large-file
// mode before a ScanLines pass, this is a lower bound.
func (d *Document) LineCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.tree.LineCount()
}

// OffsetToPosition converts a byte offset to a line/column position.
func (d *Document) OffsetToPosition(offset int) (Position, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	pos, err := d.tree.OffsetToPosition(d.resolver, offset)
	if err != nil {
		return Position{}, err
	}

	return Position{Line: pos.Line, Column: pos.Column}, nil
}

// PositionToOffset converts a line/column position to a byte offset.
// In large-file mode, once the exact conversion is unavailable it
// falls back to the approximate algorithm.
func (d *Document) PositionToOffset(line, col int) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if offset, ok := d.tree.PositionToOffset(d.resolver, line, col); ok {
		return offset, nil
	}

	if !d.largeFile {
		return 0, &buferrs.LineUnknownError{Line: line, ApproxOffset: -1}
	}

	return d.approximatePositionToOffset(line, col)
}

// ByteAt returns the single byte at offset.
func (d *Document) ByteAt(offset int) (byte, error) {
	b, err := d.Slice(Range{Start: offset, End: offset + 1})
	if err != nil {
		return 0, err
	}
	if len(b) == 0 {
		return 0, &buferrs.InvalidRangeError{Offset: offset, TotalBytes: d.TotalBytes()}
	}

	return b[0], nil
}

// Slice materializes [rng.Start, rng.End) of the document, forcing any
// chunk loads the requested range touches.
func (d *Document) Slice(rng Range) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.sliceLocked(context.Background(), rng)
}

// sliceLocked assembles the raw bytes for rng, materializing (and
// splicing into the tree) any unloaded run it touches. Held under d.mu.
func (d *Document) sliceLocked(ctx context.Context, rng Range) ([]byte, error) {
	runs, err := d.tree.Slice(piecetree.Range{Start: rng.Start, End: rng.End})
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, rng.Len())
	cursor := rng.Start

	for _, r := range runs {
		st, ok := d.storages.Get(r.Storage)
		if !ok {
			return nil, &buferrs.IoFailedError{Path: d.path, Op: "read"}
		}

		if !st.Loaded() {
			if err := d.materializeRunLocked(ctx, r, cursor); err != nil {
				return nil, err
			}
			// The tree changed under us; restart the slice from the
			// same logical range against the updated tree.
			return d.sliceLocked(ctx, rng)
		}

		b, err := st.Bytes(ctx, storage.Range{Start: r.Offset, End: r.Offset + r.Length})
		if err != nil {
			return nil, err
		}
		out = append(out, b...)
		cursor += r.Length
	}

	return out, nil
}

// materializeRunLocked loads the chunk backing run r, registers it as
// a new loaded storage, and splices it into the tree at the document
// range [docStart, docStart+r.Length), replacing the unloaded
// reference there. Held under d.mu.
func (d *Document) materializeRunLocked(ctx context.Context, r piecetree.Run, docStart int) error {
	newStorage, loadedRange, err := d.storages.MaterializeChunk(ctx, r.Storage, storage.Range{
		Start: r.Offset, End: r.Offset + r.Length,
	})
	if err != nil {
		return err
	}

	pieceStart := r.Offset - loadedRange.Start
	newlines := countStoredNewlines(newStorage.LineStarts(), pieceStart, pieceStart+r.Length)

	after, err := d.tree.Delete(d.resolver, piecetree.Range{Start: docStart, End: docStart + r.Length})
	if err != nil {
		return err
	}
	after, err = after.Insert(d.resolver, docStart, piecetree.Piece{
		Storage: newStorage.ID(), Start: pieceStart, Length: r.Length, Newlines: newlines,
	})
	if err != nil {
		return err
	}

	d.tree = after
	d.emitChunkLoaded(ChunkLoaded{StorageID: uint32(newStorage.ID()), Range: Range{Start: docStart, End: docStart + r.Length}})

	return nil
}

// OverlaysIn returns the overlays whose resolved range intersects rng.
func (d *Document) OverlaysIn(rng Range) []overlay.Resolved {
	return d.overlays.OverlaysOverlapping(overlay.Range{Start: rng.Start, End: rng.End})
}

// AddOverlay creates an overlay spanning rng.
func (d *Document) AddOverlay(rng Range, style overlay.Style, opts overlay.Options) (string, error) {
	return d.overlays.Add(overlay.Range{Start: rng.Start, End: rng.End}, style, 0, opts)
}

// AddOverlayWithPriority creates an overlay spanning rng at a given
// priority, used when callers need explicit paint ordering beyond
// AddOverlay's default of 0.
func (d *Document) AddOverlayWithPriority(rng Range, style overlay.Style, priority int, opts overlay.Options) (string, error) {
	return d.overlays.Add(overlay.Range{Start: rng.Start, End: rng.End}, style, priority, opts)
}

// RemoveOverlay destroys the overlay identified by id.
func (d *Document) RemoveOverlay(id string) error {
	return d.overlays.Remove(id)
}

// RemoveOverlaysByIDPrefix removes every overlay whose id begins with
// prefix, returning how many were removed. Used by hosts that tag a
// batch of related overlays with a shared prefix (e.g. one linter
// pass's diagnostics) and want to clear them in one call before the
// next pass runs.
func (d *Document) RemoveOverlaysByIDPrefix(prefix string) (int, []error) {
	return d.overlays.RemoveByIDPrefix(prefix)
}

// OnChange registers a callback invoked after every Apply that changes
// the text. An insert of no bytes or a delete of an empty range
// returns nil without invoking it.
func (d *Document) OnChange(f func(BufferChanged)) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.onChange = append(d.onChange, f)
}

// OnOverlaysInvalidated registers a callback invoked when an edit
// destroys overlays by marker loss.
func (d *Document) OnOverlaysInvalidated(f func(OverlaysInvalidated)) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.onOverlaysInvalidated = append(d.onOverlaysInvalidated, f)
}

// OnChunkLoaded registers a callback invoked when a lazy chunk load
// completes.
func (d *Document) OnChunkLoaded(f func(ChunkLoaded)) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.onChunkLoaded = append(d.onChunkLoaded, f)
}

// OnExternalChange registers a callback invoked when the watcher sees
// the backing file change. Save's own write of the file is reported
// too.
func (d *Document) OnExternalChange(f func(ExternalChangeDetected)) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.onExternalChange = append(d.onExternalChange, f)
}

func (d *Document) emitChange(ev BufferChanged) {
	for _, f := range d.onChange {
		f(ev)
	}
}

func (d *Document) emitOverlaysInvalidated(ids []string) {
	if len(ids) == 0 {
		return
	}
	for _, f := range d.onOverlaysInvalidated {
		f(OverlaysInvalidated{IDs: ids})
	}
}

func (d *Document) emitChunkLoaded(ev ChunkLoaded) {
	for _, f := range d.onChunkLoaded {
		f(ev)
	}
}

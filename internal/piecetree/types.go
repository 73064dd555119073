// Package piecetree implements the buffer core's piece tree: an
// immutable, balanced tree of references into append-only byte
// storages, indexed by both byte offset and line-feed count.
//
// The tree itself never touches storage bytes directly except through
// a small StorageResolver it is handed per call — splitting a piece
// during Insert/Delete needs to know how many newlines fall in each
// half, which the resolver answers from a storage's precomputed
// line-starts index in O(log n) when one exists, and reports as
// unknown (0) otherwise, as is expected for unloaded or large-file
// storages.
//
// Balance is maintained with a split/join discipline over an AVL
// (height-balanced) tree — the same family of technique used by the
// immutable ropes in the retrieved pack (aretext's cache-conscious
// B+-tree-of-runs, keystorm's structurally-shared rope). Rotations
// happen only inside join and rebalance, not interleaved with piece
// splitting.
package piecetree

import "github.com/connerohnesorge/piecewise/internal/storage"

// Piece is a leaf descriptor: a reference to a contiguous run of bytes
// held by some storage. Pieces never span two storages and are never
// empty (Length > 0).
type Piece struct {
	Storage  storage.ID
	Start    int
	Length   int
	// Newlines is the number of line feeds within [Start, Start+Length).
	// Zero means unknown (unloaded storage, or large-file mode).
	Newlines int
}

// End returns the storage offset one past the piece's last byte.
func (p Piece) End() int { return p.Start + p.Length }

// Range is a half-open document byte range [Start, End).
type Range struct {
	Start, End int
}

// Len returns the number of bytes the range covers.
func (r Range) Len() int { return r.End - r.Start }

// Run is one contiguous reference returned by Slice: the caller reads
// [Offset, Offset+Length) of the named storage.
type Run struct {
	Storage storage.ID
	Offset  int
	Length  int
}

// Position is a 1-based line, 0-based column location in the document.
type Position struct {
	Line   int
	Column int
}

// StorageResolver answers the piece tree's only question about actual
// byte content: where do lines start within a given storage. A nil
// result (or a nil LineStarts implementation) means "unknown" — the
// caller gets back pieces with Newlines == 0 and OffsetToPosition /
// PositionToOffset report that the exact position along that path is
// not available.
type StorageResolver interface {
	LineStarts(id storage.ID) []int
}

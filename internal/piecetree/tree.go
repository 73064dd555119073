package piecetree

import (
	"sort"

	"github.com/connerohnesorge/piecewise/internal/buferrs"
)

// Tree is an immutable piece tree. The zero value is not useful; use
// Empty() to construct one. Every mutating method returns a new Tree
// and never modifies the receiver — unchanged subtrees are shared
// between old and new trees.
type Tree struct {
	root *node
}

// Empty returns the piece tree for a zero-length document.
func Empty() *Tree {
	return &Tree{}
}

// TotalBytes returns the document's total byte length in O(1).
func (t *Tree) TotalBytes() int {
	return bytesOf(t.root)
}

// LineCount returns the root newline aggregate plus one, in O(1). In
// large-file mode, where piece newline counts are 0 (unknown), this is
// a lower bound.
func (t *Tree) LineCount() int {
	return newlinesOf(t.root) + 1
}

// Insert produces a new tree with piece spliced in at document offset
// at. If at falls inside an existing piece, that piece is split into
// two first.
func (t *Tree) Insert(resolver StorageResolver, at int, piece Piece) (*Tree, error) {
	total := t.TotalBytes()
	if at < 0 || at > total {
		return nil, &buferrs.InvalidRangeError{Offset: at, TotalBytes: total}
	}
	if piece.Length <= 0 {
		return t, nil
	}

	if merged, ok := tryCoalesceAppend(t.root, at, piece); ok {
		return &Tree{root: merged}, nil
	}

	left, right := split(t.root, at, resolver)
	combined := join(join(left, newLeaf(piece)), right)

	return &Tree{root: combined}, nil
}

// Delete produces a new tree with rng removed. The boundary pieces are
// split as needed; pieces fully inside rng are dropped.
func (t *Tree) Delete(resolver StorageResolver, rng Range) (*Tree, error) {
	total := t.TotalBytes()
	if rng.Start < 0 || rng.End > total || rng.Start > rng.End {
		return nil, &buferrs.InvalidRangeError{Start: rng.Start, End: rng.End, TotalBytes: total}
	}
	if rng.Len() == 0 {
		return t, nil
	}

	left, mid := split(t.root, rng.Start, resolver)
	_, right := split(mid, rng.Len(), resolver)

	return &Tree{root: join(left, right)}, nil
}

// Slice returns the ordered sequence of storage runs covering rng.
func (t *Tree) Slice(rng Range) ([]Run, error) {
	total := t.TotalBytes()
	if rng.Start < 0 || rng.End > total || rng.Start > rng.End {
		return nil, &buferrs.InvalidRangeError{Start: rng.Start, End: rng.End, TotalBytes: total}
	}

	var runs []Run
	collectRuns(t.root, rng.Start, rng.End, &runs)

	return runs, nil
}

func collectRuns(n *node, start, end int, out *[]Run) {
	if n == nil || start >= end {
		return
	}

	if n.isLeaf() {
		if end <= 0 || start >= n.piece.Length {
			return
		}

		s, e := start, end
		if s < 0 {
			s = 0
		}
		if e > n.piece.Length {
			e = n.piece.Length
		}

		*out = append(*out, Run{
			Storage: n.piece.Storage,
			Offset:  n.piece.Start + s,
			Length:  e - s,
		})

		return
	}

	collectRuns(n.left, start, end, out)
	collectRuns(n.right, start-n.bytesInLeft, end-n.bytesInLeft, out)
}

// OffsetToPosition converts a document byte offset to a (line, column)
// position. Returns a LineUnknownError if a piece along the path has
// no storage line-starts (unloaded storage, or large-file mode) — the
// caller falls back to the large-file approximate algorithm in that
// case.
func (t *Tree) OffsetToPosition(resolver StorageResolver, offset int) (Position, error) {
	total := t.TotalBytes()
	if offset < 0 || offset > total {
		return Position{}, &buferrs.InvalidRangeError{Offset: offset, TotalBytes: total}
	}

	line, col, ok := offsetToPosition(t.root, resolver, offset, 0)
	if !ok {
		return Position{}, &buferrs.LineUnknownError{ApproxOffset: -1}
	}

	// col counts from the line start inside the leaf's storage; measure
	// it from the line start in the document, which may lie in an
	// earlier piece.
	if lineStart, ok := positionToOffset(t.root, resolver, line, 0, 0, 0); ok {
		col = offset - lineStart
	}

	return Position{Line: line + 1, Column: col}, nil
}

// offsetToPosition returns the 0-based line and 0-based column for
// offset, plus whether the computation succeeded exactly.
func offsetToPosition(n *node, resolver StorageResolver, offset, linesBefore int) (line, col int, ok bool) {
	if n == nil {
		return linesBefore, 0, true
	}

	if n.isLeaf() {
		starts := resolver.LineStarts(n.piece.Storage)
		if starts == nil {
			return 0, 0, false
		}

		target := n.piece.Start + offset
		pieceStartLine := sort.Search(len(starts), func(i int) bool { return starts[i] > n.piece.Start }) - 1
		storageLine := sort.Search(len(starts), func(i int) bool { return starts[i] > target }) - 1

		return linesBefore + (storageLine - pieceStartLine), target - starts[storageLine], true
	}

	if offset < n.bytesInLeft {
		return offsetToPosition(n.left, resolver, offset, linesBefore)
	}

	return offsetToPosition(n.right, resolver, offset-n.bytesInLeft, linesBefore+n.nlInLeft)
}

// PositionToOffset converts a 1-based line / 0-based column position to
// a document byte offset. ok is false when a piece on the traversed
// path lacks storage line-starts — the caller must fall back to the
// approximate large-file algorithm.
func (t *Tree) PositionToOffset(resolver StorageResolver, line, col int) (offset int, ok bool) {
	if line < 1 {
		return 0, true
	}

	lineStart, ok := positionToOffset(t.root, resolver, line-1, 0, 0, 0)
	if !ok {
		return 0, false
	}
	if col < 0 {
		col = 0
	}
	offset = lineStart + col
	if total := t.TotalBytes(); offset > total {
		offset = total
	}

	return offset, true
}

func positionToOffset(n *node, resolver StorageResolver, lineIdx, col, bytesBefore, linesBefore int) (int, bool) {
	if n == nil {
		return bytesBefore, true
	}

	if n.isLeaf() {
		starts := resolver.LineStarts(n.piece.Storage)
		if starts == nil {
			return 0, false
		}

		pieceStartLine := sort.Search(len(starts), func(i int) bool { return starts[i] > n.piece.Start }) - 1
		targetStorageLine := pieceStartLine + (lineIdx - linesBefore)

		if targetStorageLine < 0 || targetStorageLine >= len(starts) {
			return 0, false
		}

		lineStart := starts[targetStorageLine]
		localOffset := lineStart + col - n.piece.Start
		if localOffset < 0 {
			localOffset = 0
		}
		if localOffset > n.piece.Length {
			localOffset = n.piece.Length
		}

		return bytesBefore + localOffset, true
	}

	if lineIdx <= linesBefore+n.nlInLeft {
		return positionToOffset(n.left, resolver, lineIdx, col, bytesBefore, linesBefore)
	}

	return positionToOffset(n.right, resolver, lineIdx, col, bytesBefore+n.bytesInLeft, linesBefore+n.nlInLeft)
}

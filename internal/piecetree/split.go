package piecetree

import "sort"

// split divides n into two subtrees at document offset at: the left
// result holds bytes [0, at), the right result holds [at, n.bytes). If
// at falls inside a leaf's piece, that piece is split into two,
// which both Insert and Delete rely on.
func split(n *node, at int, resolver StorageResolver) (*node, *node) {
	if n == nil {
		return nil, nil
	}

	if n.isLeaf() {
		return splitLeaf(*n.piece, at, resolver)
	}

	if at <= n.bytesInLeft {
		l, r := split(n.left, at, resolver)

		return l, join(r, n.right)
	}

	l, r := split(n.right, at-n.bytesInLeft, resolver)

	return join(n.left, l), r
}

func splitLeaf(p Piece, at int, resolver StorageResolver) (*node, *node) {
	switch {
	case at <= 0:
		return nil, newLeaf(p)
	case at >= p.Length:
		return newLeaf(p), nil
	default:
		leftPiece := Piece{Storage: p.Storage, Start: p.Start, Length: at}
		rightPiece := Piece{Storage: p.Storage, Start: p.Start + at, Length: p.Length - at}

		leftNL, rightNL, known := splitNewlines(resolver, p, at)
		if known {
			leftPiece.Newlines = leftNL
			rightPiece.Newlines = rightNL
		}

		return newLeaf(leftPiece), newLeaf(rightPiece)
	}
}

// splitNewlines reports how many newlines fall in [p.Start, p.Start+at)
// and [p.Start+at, p.Start+p.Length), using the storage's line-starts
// index when available. known is false (and both counts 0) when the
// storage has no line-starts, meaning the newline count is unknown
// rather than zero.
func splitNewlines(resolver StorageResolver, p Piece, at int) (left, right int, known bool) {
	if resolver == nil {
		return 0, 0, false
	}

	starts := resolver.LineStarts(p.Storage)
	if starts == nil {
		return 0, 0, false
	}

	// Newlines strictly inside [start, end) correspond to line-start
	// offsets in (start, end] (a line-start at offset k means the
	// byte at k-1 is a newline).
	countIn := func(start, end int) int {
		lo := sort.Search(len(starts), func(i int) bool { return starts[i] > start })
		hi := sort.Search(len(starts), func(i int) bool { return starts[i] > end })

		return hi - lo
	}

	left = countIn(p.Start, p.Start+at)
	right = countIn(p.Start+at, p.Start+p.Length)

	return left, right, true
}

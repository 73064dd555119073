package piecetree

// tryCoalesceAppend implements the append-coalescing optimization:
// when an insert lands exactly at the document's end and the new
// piece is contiguous with the rightmost leaf's piece (same storage,
// starting where it left off — the common case for typed-character
// appends into an added-storage buffer), the two pieces merge into
// one leaf instead of allocating a new leaf plus rebalancing. New
// nodes with updated aggregates are built along the rightmost spine
// (the old tree is left unchanged) without any rotation, since a
// single leaf's byte/newline counts growing cannot unbalance the tree.
func tryCoalesceAppend(root *node, at int, piece Piece) (*node, bool) {
	if root == nil || at != bytesOf(root) {
		return nil, false
	}

	return coalesceRightmost(root, piece)
}

func coalesceRightmost(n *node, piece Piece) (*node, bool) {
	if n.isLeaf() {
		if n.piece.Storage != piece.Storage || n.piece.End() != piece.Start {
			return nil, false
		}

		merged := Piece{
			Storage:  n.piece.Storage,
			Start:    n.piece.Start,
			Length:   n.piece.Length + piece.Length,
			Newlines: n.piece.Newlines + piece.Newlines,
		}

		return newLeaf(merged), true
	}

	right, ok := coalesceRightmost(n.right, piece)
	if !ok {
		return nil, false
	}

	return &node{
		left:        n.left,
		right:       right,
		height:      n.height,
		bytes:       n.bytes + piece.Length,
		nl:          n.nl + piece.Newlines,
		bytesInLeft: n.bytesInLeft,
		nlInLeft:    n.nlInLeft,
	}, true
}

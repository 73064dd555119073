// Package storage implements the buffer core's byte-storage layer:
// append-only or lazily-loaded byte arrays with an optional line-start
// index, plus the LRU chunk cache large-file mode evicts through.
//
// Two roles coexist per document: original (read-only, derived from
// the backing file) and added (append-only, created for inserted
// text). The piece tree references both uniformly by ID; this package
// never knows about pieces.
package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/connerohnesorge/piecewise/internal/buferrs"
)

// ID identifies a single storage within a document. IDs are assigned
// by the Set that owns the storage and are never reused within it.
type ID uint32

// Role distinguishes a storage's lifecycle. Original storages are
// read-only and may be evicted back to unloaded form; added storages
// are append-only and pinned in memory for the life of the document.
type Role uint8

const (
	// RoleOriginal marks a storage derived from the file the document
	// was loaded from.
	RoleOriginal Role = iota
	// RoleAdded marks a storage created to hold inserted text.
	RoleAdded
)

// Range is a half-open byte range [Start, End).
type Range struct {
	Start, End int
}

// Len returns the number of bytes the range covers.
func (r Range) Len() int {
	return r.End - r.Start
}

// Storage is a byte array, loaded (in memory) or unloaded (a file
// region descriptor). Unloaded storages materialize on demand via
// Bytes, which may trigger file I/O.
type Storage interface {
	// ID returns the storage's identifier within its owning Set.
	ID() ID
	// Role reports whether this storage is original or added.
	Role() Role
	// Len returns the storage's total byte length. For an unloaded
	// storage this is known without materializing any bytes.
	Len() int
	// Loaded reports whether the storage's bytes currently reside in
	// memory.
	Loaded() bool
	// Bytes materializes the sub-range [r.Start, r.End) of the
	// storage, forcing a chunk load for an unloaded storage.
	Bytes(ctx context.Context, r Range) ([]byte, error)
	// LineStarts returns the precomputed line-start index, or nil if
	// one has never been computed. Line-starts are never computed for
	// storages that are (or have ever been) unloaded.
	LineStarts() []int
}

// Appender is implemented by storages created to receive inserted
// text. Append is defined only on added storages.
type Appender interface {
	Storage
	// Append adds bytes to the end of the storage and returns the
	// offset the appended region starts at.
	Append(b []byte) (start int, err error)
}

// errNotAppendable is returned when Append is called on a storage that
// does not support it (an unloaded or original storage).
type errNotAppendable struct{ id ID }

func (e *errNotAppendable) Error() string {
	return "storage is not appendable"
}

// loaded is an owned byte sequence plus an optional lazily-built
// line-starts index.
type loaded struct {
	id   ID
	role Role

	mu         sync.RWMutex
	bytes      []byte
	lineStarts []int
	built      bool
}

// NewLoaded creates a Storage backed by an in-memory byte slice. The
// result always satisfies Appender, but Append succeeds only when role
// is RoleAdded.
func NewLoaded(id ID, role Role, initial []byte) Storage {
	buf := make([]byte, len(initial))
	copy(buf, initial)

	return &loaded{id: id, role: role, bytes: buf}
}

func (l *loaded) ID() ID     { return l.id }
func (l *loaded) Role() Role { return l.role }

func (l *loaded) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return len(l.bytes)
}

func (l *loaded) Loaded() bool { return true }

func (l *loaded) Bytes(_ context.Context, r Range) ([]byte, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if r.Start < 0 || r.End > len(l.bytes) || r.Start > r.End {
		return nil, &buferrs.InvalidRangeError{
			Start:      r.Start,
			End:        r.End,
			TotalBytes: len(l.bytes),
		}
	}

	out := make([]byte, r.Len())
	copy(out, l.bytes[r.Start:r.End])

	return out, nil
}

// Append appends b to the storage and returns the start offset of the
// appended region. Append is the only mutator any storage exposes:
// everything else about a loaded/unloaded storage is immutable once
// constructed, matching the piece tree's expectation that a
// (storage_id, offset, length) triple never changes meaning once
// referenced by a piece.
func (l *loaded) Append(b []byte) (int, error) {
	if l.role != RoleAdded {
		return 0, &errNotAppendable{id: l.id}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	start := len(l.bytes)
	l.bytes = append(l.bytes, b...)
	// Appending invalidates any previously built line-starts index;
	// it is rebuilt lazily on next LineStarts() call.
	l.built = false
	l.lineStarts = nil

	return start, nil
}

// LineStarts returns the precomputed line-start index, building it on
// first use. Handles both LF and CRLF line endings.
func (l *loaded) LineStarts() []int {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.built {
		return l.lineStarts
	}

	starts := []int{0}
	i := 0
	for i < len(l.bytes) {
		switch l.bytes[i] {
		case '\n':
			starts = append(starts, i+1)
			i++
		case '\r':
			if i+1 < len(l.bytes) && l.bytes[i+1] == '\n' {
				starts = append(starts, i+2)
				i += 2
			} else {
				starts = append(starts, i+1)
				i++
			}
		default:
			i++
		}
	}

	l.lineStarts = starts
	l.built = true

	return starts
}

// LineCol converts a byte offset within this storage's bytes to a
// (line, column) pair, both 0-indexed relative to the storage's own
// start, given that storage's line-start index.
func LineCol(starts []int, offset int) (line, col int) {
	idx := sort.Search(len(starts), func(i int) bool {
		return starts[i] > offset
	})
	line = idx - 1
	if line < 0 {
		line = 0
	}

	return line, offset - starts[line]
}

package storage

import (
	"context"
	"io"

	"github.com/connerohnesorge/piecewise/internal/buferrs"
	"github.com/spf13/afero"
)

// ChunkPolicy controls how an unloaded storage rounds a requested
// range outward before materializing it.
type ChunkPolicy struct {
	// Alignment is the boundary a requested range is rounded outward
	// to (default 64 KiB).
	Alignment int
	// MinSize is the minimum number of bytes a single load brings in
	// (default 1 MiB).
	MinSize int
}

// DefaultChunkPolicy returns the built-in chunking defaults.
func DefaultChunkPolicy() ChunkPolicy {
	return ChunkPolicy{Alignment: 64 * 1024, MinSize: 1024 * 1024}
}

// unloaded is a handle (file, offset, length) whose bytes are not yet
// in memory. Its bytes are brought into memory through the owning
// Set's MaterializeChunk method; line-starts are never computed for an
// unloaded storage.
type unloaded struct {
	id   ID
	fs   afero.Fs
	path string
	// fileOffset is this storage's starting offset within path.
	fileOffset int
	length     int
	policy     ChunkPolicy
}

// NewUnloaded creates a Storage handle over a region of a file that has
// not been read into memory yet.
func NewUnloaded(id ID, fs afero.Fs, path string, fileOffset, length int, policy ChunkPolicy) Storage {
	return &unloaded{id: id, fs: fs, path: path, fileOffset: fileOffset, length: length, policy: policy}
}

func (u *unloaded) ID() ID         { return u.id }
func (u *unloaded) Role() Role     { return RoleOriginal }
func (u *unloaded) Len() int       { return u.length }
func (u *unloaded) Loaded() bool   { return false }
func (u *unloaded) LineStarts() []int { return nil }

// Bytes reads exactly [r.Start, r.End) from the backing file; rounding
// to the chunk policy happens in Materialize, not here. It does not
// mutate u or replace it in any tree: Set.MaterializeChunk registers
// the loaded chunk as a new storage, and its caller in the buffer
// package splices that storage into the tree in place of the unloaded
// run.
func (u *unloaded) Bytes(_ context.Context, r Range) ([]byte, error) {
	if r.Start < 0 || r.End > u.length || r.Start > r.End {
		return nil, &buferrs.InvalidRangeError{
			Start:      r.Start,
			End:        r.End,
			TotalBytes: u.length,
		}
	}

	f, err := u.fs.Open(u.path)
	if err != nil {
		return nil, &buferrs.IoFailedError{Path: u.path, Op: "load", Err: err}
	}
	defer f.Close()

	buf := make([]byte, r.Len())
	if _, err := f.Seek(int64(u.fileOffset+r.Start), io.SeekStart); err != nil {
		return nil, &buferrs.IoFailedError{Path: u.path, Op: "load", Err: err}
	}
	if _, err := io.ReadFull(f, buf); err != nil {
		return nil, &buferrs.IoFailedError{Path: u.path, Op: "load", Err: err}
	}

	return buf, nil
}

// RoundChunk rounds [start, end) outward to the policy's alignment,
// extends it to at least MinSize, then clamps to [0, storageLen).
func (p ChunkPolicy) RoundChunk(start, end, storageLen int) Range {
	if p.Alignment <= 0 {
		p.Alignment = DefaultChunkPolicy().Alignment
	}
	if p.MinSize <= 0 {
		p.MinSize = DefaultChunkPolicy().MinSize
	}

	alignedStart := (start / p.Alignment) * p.Alignment
	alignedEnd := ((end + p.Alignment - 1) / p.Alignment) * p.Alignment

	if alignedEnd-alignedStart < p.MinSize {
		alignedEnd = alignedStart + p.MinSize
	}

	if alignedStart < 0 {
		alignedStart = 0
	}
	if alignedEnd > storageLen {
		alignedEnd = storageLen
	}
	if alignedStart > alignedEnd {
		alignedStart = alignedEnd
	}

	return Range{Start: alignedStart, End: alignedEnd}
}

// Materialize reads the rounded chunk containing [r.Start, r.End) and
// returns it along with the exact Range (relative to this storage)
// that was loaded, so the caller can perform the corresponding piece
// split.
func (u *unloaded) Materialize(ctx context.Context, r Range) ([]byte, Range, error) {
	rounded := u.policy.RoundChunk(r.Start, r.End, u.length)
	b, err := u.Bytes(ctx, rounded)
	if err != nil {
		return nil, Range{}, err
	}

	return b, rounded, nil
}

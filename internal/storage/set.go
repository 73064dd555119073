package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/connerohnesorge/piecewise/internal/buferrs"
	"github.com/spf13/afero"
)

// Set owns every storage belonging to one document: the original
// storage(s) derived from the backing file and the added storage(s)
// created for inserted text. It assigns IDs, tracks the LRU of loaded
// original chunks, and performs the atomic write-temp-then-rename save
// that keeps a crash from ever leaving the target file half-written.
type Set struct {
	fs afero.Fs

	mu       sync.Mutex
	next     ID
	storages map[ID]Storage
	cache    *ChunkCache
	policy   ChunkPolicy
	// origins records (path, fileOffset) for storages created by
	// MaterializeChunk, so evictLocked can rebuild an unloaded handle
	// over the same file region when the chunk is evicted.
	origins map[ID]origin
}

// origin is the file region a materialized chunk was read from.
type origin struct {
	path       string
	fileOffset int
}

// NewSet creates an empty Set backed by fs. A nil fs defaults to the
// OS filesystem; tests typically pass afero.NewMemMapFs().
func NewSet(fs afero.Fs, cacheCapacity int, policy ChunkPolicy) *Set {
	if fs == nil {
		fs = afero.NewOsFs()
	}

	return &Set{
		fs:       fs,
		storages: make(map[ID]Storage),
		cache:    NewChunkCache(cacheCapacity),
		policy:   policy,
		origins:  make(map[ID]origin),
	}
}

// Get returns the storage registered under id.
func (s *Set) Get(id ID) (Storage, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.storages[id]

	return st, ok
}

// Fs returns the filesystem the Set reads from and saves to.
func (s *Set) Fs() afero.Fs {
	return s.fs
}

// AddLoaded registers data as a new loaded original storage, used by
// Save to collapse an assembled document back onto a single in-memory
// storage the way a fresh Load would have produced.
func (s *Set) AddLoaded(data []byte) Storage {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.allocID()
	st := NewLoaded(id, RoleOriginal, data)
	s.storages[id] = st

	return st
}

// NewAddedStorage registers and returns a fresh in-memory added
// storage, used when an insert needs a place to append to and no
// existing added storage can be extended.
func (s *Set) NewAddedStorage() Appender {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.allocID()
	st := NewLoaded(id, RoleAdded, nil).(*loaded)
	s.storages[id] = st

	return st
}

// LoadOriginalFile registers the file at path as a single unloaded
// original storage covering its full length: the original storage is
// created unloaded, and a single piece covers the whole file.
func (s *Set) LoadOriginalFile(path string, length int) Storage {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.allocID()
	st := NewUnloaded(id, s.fs, path, 0, length, s.policy)
	s.storages[id] = st

	return st
}

// LoadWholeFileEager reads path entirely into memory and registers it
// as a loaded original storage, used outside large-file mode.
func (s *Set) LoadWholeFileEager(path string) (Storage, error) {
	b, err := afero.ReadFile(s.fs, path)
	if err != nil {
		return nil, &buferrs.IoFailedError{Path: path, Op: "load", Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.allocID()
	st := NewLoaded(id, RoleOriginal, b)
	s.storages[id] = st

	return st, nil
}

// MaterializeChunk loads the rounded chunk of an unloaded storage
// containing r, registers the loaded bytes as a new storage, touches
// the LRU, and returns the new storage plus the exact range (relative
// to the source storage) it covers. The caller (piecetree, via the
// document apply/read path) is responsible for splicing the new
// storage into the piece tree in place of the unloaded source over
// that range.
func (s *Set) MaterializeChunk(ctx context.Context, sourceID ID, r Range) (Storage, Range, error) {
	s.mu.Lock()
	src, ok := s.storages[sourceID]
	s.mu.Unlock()

	if !ok {
		return nil, Range{}, fmt.Errorf("storage %d not found", sourceID)
	}

	u, ok := src.(*unloaded)
	if !ok {
		// Already loaded: nothing to materialize, but the full range
		// is already available under the existing id.
		return src, Range{Start: 0, End: src.Len()}, nil
	}

	b, loadedRange, err := u.Materialize(ctx, r)
	if err != nil {
		return nil, Range{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.allocID()
	newStorage := NewLoaded(id, RoleOriginal, b)
	s.storages[id] = newStorage
	s.origins[id] = origin{path: u.path, fileOffset: u.fileOffset + loadedRange.Start}

	if victim, evicted := s.cache.Touch(id); evicted {
		s.evictLocked(victim)
	}

	return newStorage, loadedRange, nil
}

// evictLocked discards a loaded original storage's bytes, replacing it
// in-place with an unloaded handle over the same file region. Added
// storages are never passed here; Touch only ever tracks original
// chunk ids.
func (s *Set) evictLocked(id ID) {
	st, ok := s.storages[id]
	if !ok || st.Role() != RoleOriginal {
		return
	}

	if orig, ok := s.origins[id]; ok {
		s.storages[id] = NewUnloaded(id, s.fs, orig.path, orig.fileOffset, st.Len(), s.policy)
		delete(s.origins, id)
	}
}

// Save streams every byte of assembled content (supplied by the
// caller, which owns piece-tree iteration order) to path, atomically:
// write to a temp file in the same directory, then rename over the
// target. On success the caller should redefine the original storage
// over the new file and reset the added storage.
func (s *Set) Save(path string, content func() ([]byte, error)) error {
	b, err := content()
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	tmp, err := afero.TempFile(s.fs, dir, ".piecewise-save-*")
	if err != nil {
		return &buferrs.IoFailedError{Path: path, Op: "save", Err: err}
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		_ = s.fs.Remove(tmpName)

		return &buferrs.IoFailedError{Path: path, Op: "save", Err: err}
	}
	if err := tmp.Close(); err != nil {
		_ = s.fs.Remove(tmpName)

		return &buferrs.IoFailedError{Path: path, Op: "save", Err: err}
	}

	if err := s.fs.Rename(tmpName, path); err != nil {
		_ = s.fs.Remove(tmpName)

		return &buferrs.IoFailedError{Path: path, Op: "save", Err: err}
	}

	return nil
}

func (s *Set) allocID() ID {
	id := s.next
	s.next++

	return id
}

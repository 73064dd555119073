package storage

import (
	"context"
	"testing"

	"github.com/spf13/afero"
)

func TestLoaded_AppendAndBytes(t *testing.T) {
	st := NewLoaded(0, RoleAdded, []byte("hello "))
	app := st.(Appender)

	start, err := app.Append([]byte("world"))
	if err != nil {
		t.Fatalf("Append() failed: %v", err)
	}
	if start != 6 {
		t.Errorf("Append() start = %d, want 6", start)
	}

	b, err := st.Bytes(context.Background(), Range{Start: 0, End: 11})
	if err != nil {
		t.Fatalf("Bytes() failed: %v", err)
	}
	if string(b) != "hello world" {
		t.Errorf("Bytes() = %q, want %q", b, "hello world")
	}
}

func TestLoaded_AppendOnNonAddedFails(t *testing.T) {
	st := NewLoaded(0, RoleOriginal, []byte("hello"))
	app := st.(Appender)
	if _, err := app.Append([]byte("x")); err == nil {
		t.Errorf("Append() on RoleOriginal storage = nil error, want error")
	}
}

func TestLoaded_LineStarts(t *testing.T) {
	st := NewLoaded(0, RoleOriginal, []byte("ab\ncd\r\nef"))
	starts := st.LineStarts()
	want := []int{0, 3, 7}

	if len(starts) != len(want) {
		t.Fatalf("LineStarts() = %v, want %v", starts, want)
	}
	for i := range want {
		if starts[i] != want[i] {
			t.Errorf("LineStarts()[%d] = %d, want %d", i, starts[i], want[i])
		}
	}
}

func TestLoaded_BytesOutOfRange(t *testing.T) {
	st := NewLoaded(0, RoleOriginal, []byte("abc"))
	if _, err := st.Bytes(context.Background(), Range{Start: 0, End: 10}); err == nil {
		t.Errorf("Bytes() with out-of-range end = nil error, want error")
	}
}

func TestChunkPolicy_RoundChunk(t *testing.T) {
	p := ChunkPolicy{Alignment: 64 * 1024, MinSize: 1024 * 1024}
	storageLen := 2_000_000_000

	r := p.RoundChunk(500_000_000, 500_000_050, storageLen)
	if r.Start%p.Alignment != 0 {
		t.Errorf("RoundChunk() start %d not aligned to %d", r.Start, p.Alignment)
	}
	if r.Len() < p.MinSize {
		t.Errorf("RoundChunk() len %d < MinSize %d", r.Len(), p.MinSize)
	}
	if r.Start > 500_000_000 || r.End < 500_000_050 {
		t.Errorf("RoundChunk() %v does not cover requested range", r)
	}
}

func TestUnloaded_Materialize(t *testing.T) {
	fs := afero.NewMemMapFs()
	content := make([]byte, 200_000)
	for i := range content {
		content[i] = byte('a' + i%26)
	}
	if err := afero.WriteFile(fs, "/doc.txt", content, 0o644); err != nil {
		t.Fatalf("failed to seed file: %v", err)
	}

	policy := ChunkPolicy{Alignment: 1024, MinSize: 4096}
	u := NewUnloaded(0, fs, "/doc.txt", 0, len(content), policy)

	b, loadedRange, err := u.(*unloaded).Materialize(context.Background(), Range{Start: 100_000, End: 100_010})
	if err != nil {
		t.Fatalf("Materialize() failed: %v", err)
	}
	if loadedRange.Len() < 4096 {
		t.Errorf("Materialize() range len = %d, want >= 4096", loadedRange.Len())
	}
	if string(b) != string(content[loadedRange.Start:loadedRange.End]) {
		t.Errorf("Materialize() content mismatch")
	}
}

func TestChunkCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c := NewChunkCache(2)

	if _, evicted := c.Touch(1); evicted {
		t.Errorf("Touch(1) evicted something with room to spare")
	}
	if _, evicted := c.Touch(2); evicted {
		t.Errorf("Touch(2) evicted something with room to spare")
	}

	victim, evicted := c.Touch(3)
	if !evicted || victim != 1 {
		t.Errorf("Touch(3) victim = %d, evicted = %v, want 1, true", victim, evicted)
	}

	if c.Contains(1) {
		t.Errorf("cache still contains evicted id 1")
	}
	if !c.Contains(2) || !c.Contains(3) {
		t.Errorf("cache missing expected entries 2 and 3")
	}
}

func TestChunkCache_ZeroCapacityDisablesEviction(t *testing.T) {
	c := NewChunkCache(0)
	for i := ID(0); i < 10; i++ {
		if _, evicted := c.Touch(i); evicted {
			t.Errorf("Touch(%d) evicted with zero-capacity cache", i)
		}
	}
	if c.Len() != 10 {
		t.Errorf("Len() = %d, want 10", c.Len())
	}
}

func TestSet_SaveWritesAtomically(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := NewSet(fs, 10, DefaultChunkPolicy())

	err := s.Save("/out.txt", func() ([]byte, error) {
		return []byte("final content"), nil
	})
	if err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	b, err := afero.ReadFile(fs, "/out.txt")
	if err != nil {
		t.Fatalf("ReadFile() failed: %v", err)
	}
	if string(b) != "final content" {
		t.Errorf("saved content = %q, want %q", b, "final content")
	}

	entries, err := afero.ReadDir(fs, "/")
	if err != nil {
		t.Fatalf("ReadDir() failed: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("directory has %d entries after save, want 1 (no leftover temp file)", len(entries))
	}
}

func TestSet_MaterializeChunkTracksOrigin(t *testing.T) {
	fs := afero.NewMemMapFs()
	content := []byte("0123456789")
	if err := afero.WriteFile(fs, "/f.txt", content, 0o644); err != nil {
		t.Fatalf("failed to seed file: %v", err)
	}

	s := NewSet(fs, 1, ChunkPolicy{Alignment: 1, MinSize: 1})
	orig := s.LoadOriginalFile("/f.txt", len(content))

	loadedStorage, loadedRange, err := s.MaterializeChunk(context.Background(), orig.ID(), Range{Start: 2, End: 4})
	if err != nil {
		t.Fatalf("MaterializeChunk() failed: %v", err)
	}
	if !loadedStorage.Loaded() {
		t.Errorf("MaterializeChunk() result is not loaded")
	}
	if loadedRange.Start > 2 || loadedRange.End < 4 {
		t.Errorf("MaterializeChunk() range %v does not cover requested [2,4)", loadedRange)
	}

	// Forcing a second, different chunk should evict the first given
	// capacity 1, and the evicted storage should become unloaded again
	// while still resolving to the same bytes.
	_, _, err = s.MaterializeChunk(context.Background(), orig.ID(), Range{Start: 8, End: 9})
	if err != nil {
		t.Fatalf("second MaterializeChunk() failed: %v", err)
	}

	evictedStorage, ok := s.Get(loadedStorage.ID())
	if !ok {
		t.Fatalf("evicted storage id no longer registered")
	}
	if evictedStorage.Loaded() {
		t.Errorf("evicted storage still reports Loaded() = true")
	}

	b, err := evictedStorage.Bytes(context.Background(), Range{Start: 0, End: evictedStorage.Len()})
	if err != nil {
		t.Fatalf("Bytes() on re-evicted storage failed: %v", err)
	}
	if string(b) != string(content[loadedRange.Start:loadedRange.End]) {
		t.Errorf("re-read evicted storage content mismatch: got %q", b)
	}
}

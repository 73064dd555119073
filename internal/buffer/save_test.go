package buffer

import (
	"testing"

	"github.com/spf13/afero"

	"github.com/connerohnesorge/piecewise/internal/bufconfig"
)

func TestDocument_LoadEditSaveRoundTrip(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "/doc.txt", []byte("hello world"), 0o644); err != nil {
		t.Fatalf("WriteFile() failed: %v", err)
	}

	d, err := Load(fs, "/doc.txt", *bufconfig.Defaults())
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if err := d.Apply(ReplaceEvent{Range: Range{Start: 6, End: 11}, Bytes: []byte("there")}); err != nil {
		t.Fatalf("Apply(replace) failed: %v", err)
	}

	if err := d.Save(); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	saved, err := afero.ReadFile(fs, "/doc.txt")
	if err != nil {
		t.Fatalf("ReadFile() failed: %v", err)
	}
	if string(saved) != "hello there" {
		t.Errorf("saved content = %q, want %q", saved, "hello there")
	}

	if got, err := d.Slice(Range{Start: 0, End: d.TotalBytes()}); err != nil || string(got) != "hello there" {
		t.Errorf("Slice() after Save() = (%q, %v), want (%q, nil)", got, err, "hello there")
	}
}

func TestDocument_SaveWithoutPathFails(t *testing.T) {
	d := New()
	_ = d.Apply(InsertEvent{Offset: 0, Bytes: []byte("x")})

	if err := d.Save(); err == nil {
		t.Error("Save() on an in-memory-only document = nil error, want error")
	}
}

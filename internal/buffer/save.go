package buffer

import (
	"context"

	"github.com/connerohnesorge/piecewise/internal/buferrs"
	"github.com/connerohnesorge/piecewise/internal/piecetree"
	"github.com/connerohnesorge/piecewise/internal/storage"
)

// Save assembles the document's full current content and writes it to
// its backing path atomically, then collapses the piece tree onto a
// single loaded storage holding the written bytes in memory and a new
// empty added storage. The new storage is not an unloaded reference
// into the written file; it keeps the whole content in memory.
func (d *Document) Save() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.path == "" {
		return &buferrs.IoFailedError{Op: "save", Err: errNoPath}
	}

	var assembled []byte
	err := d.storages.Save(d.path, func() ([]byte, error) {
		b, err := d.sliceLocked(context.Background(), Range{Start: 0, End: d.tree.TotalBytes()})
		assembled = b

		return b, err
	})
	if err != nil {
		return err
	}

	newSet := storage.NewSet(d.storages.Fs(), d.opts.MaxCachedChunks, storage.ChunkPolicy{
		Alignment: d.opts.ChunkAlignment,
		MinSize:   d.opts.ChunkSize,
	})
	newResolver := docResolver{storages: newSet}

	fresh := newSet.AddLoaded(assembled)
	newlines := countStoredNewlines(fresh.LineStarts(), 0, len(assembled))

	tree, err := piecetree.Empty().Insert(newResolver, 0, piecetree.Piece{
		Storage: fresh.ID(), Start: 0, Length: len(assembled), Newlines: newlines,
	})
	if err != nil {
		return err
	}

	d.tree = tree
	d.storages = newSet
	d.resolver = newResolver
	d.added = newSet.NewAddedStorage()

	return nil
}

// WatchExternalChanges starts watching the document's backing path for
// changes and forwards them as ExternalChangeDetected events to
// registered callbacks. The watcher does not tell Save's own write
// apart from an outside change, so a Save is reported too. The core
// takes no unilateral action on the change.
func (d *Document) WatchExternalChanges() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.path == "" {
		return &buferrs.IoFailedError{Op: "watch", Err: errNoPath}
	}
	if d.watcher != nil {
		return nil
	}

	w, err := storage.NewExternalChangeWatcher(d.path)
	if err != nil {
		return err
	}
	d.watcher = w

	go func() {
		for range w.Events() {
			d.mu.Lock()
			path := d.path
			callbacks := append([]func(ExternalChangeDetected){}, d.onExternalChange...)
			d.mu.Unlock()

			for _, f := range callbacks {
				f(ExternalChangeDetected{Path: path})
			}
		}
	}()

	return nil
}

// StopWatching closes the external-change watcher, if one is running.
func (d *Document) StopWatching() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.watcher == nil {
		return nil
	}

	err := d.watcher.Close()
	d.watcher = nil

	return err
}

var errNoPath = pathlessSaveError{}

type pathlessSaveError struct{}

func (pathlessSaveError) Error() string { return "document has no backing path" }

package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/vbonduro/nutriscan/internal/domain"
)

// entryRepository is the subset of store.EntryStore that Diary requires.
type entryRepository interface {
	List(ctx context.Context) ([]domain.DiaryEntry, error)
	Create(ctx context.Context, e domain.DiaryEntry) error
	Update(ctx context.Context, id string, patch domain.EntryPatch) (*domain.DiaryEntry, error)
	Delete(ctx context.Context, id string) error
}

// Diary keeps an in-memory copy of every diary entry and mirrors changes to
// the entry store. Changes are applied locally first; when the store rejects
// one, the whole collection is reloaded from the store.
//
// The lock only guards the collection. Store calls run without it, so two
// changes can both be applied locally before either is confirmed, and a
// reload after one of them fails may discard the other.
type Diary struct {
	store  entryRepository
	logger *slog.Logger

	mu      sync.RWMutex
	entries []domain.DiaryEntry
	loading bool
}

func NewDiary(store entryRepository, logger *slog.Logger) *Diary {
	return &Diary{store: store, logger: logger, loading: true}
}

// Load replaces the collection with the store contents. On failure the
// previous collection is kept. The loading flag is cleared either way.
func (d *Diary) Load(ctx context.Context) error {
	entries, err := d.store.List(ctx)

	d.mu.Lock()
	defer d.mu.Unlock()
	d.loading = false
	if err != nil {
		d.logger.Error("failed to load diary", "error", err)
		return fmt.Errorf("failed to load diary: %w", err)
	}
	d.entries = entries
	return nil
}

// Loading reports whether the first Load has not finished yet.
func (d *Diary) Loading() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.loading
}

// Entries returns a copy of the collection in insertion order.
func (d *Diary) Entries() []domain.DiaryEntry {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]domain.DiaryEntry, len(d.entries))
	for i, e := range d.entries {
		out[i] = e.Clone()
	}
	return out
}

// Get returns a copy of one entry, or false if it is not in the collection.
func (d *Diary) Get(id string) (domain.DiaryEntry, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if i := d.indexOf(id); i >= 0 {
		return d.entries[i].Clone(), true
	}
	return domain.DiaryEntry{}, false
}

func (d *Diary) Add(ctx context.Context, entry domain.DiaryEntry) error {
	d.mu.Lock()
	d.entries = append(d.entries, entry.Clone())
	d.mu.Unlock()

	if err := d.store.Create(ctx, entry); err != nil {
		d.logger.Error("failed to save entry", "entry_id", entry.ID, "error", err)
		d.resync(ctx)
		return fmt.Errorf("failed to save entry: %w", err)
	}
	d.logger.Info("entry added", "entry_id", entry.ID, "items", len(entry.Items))
	return nil
}

// Update merges patch into the entry with the given id. An id that is not in
// the collection is still sent to the store, which reports domain.ErrNotFound.
func (d *Diary) Update(ctx context.Context, id string, patch domain.EntryPatch) error {
	d.mu.Lock()
	if i := d.indexOf(id); i >= 0 {
		patch.Apply(&d.entries[i])
	}
	d.mu.Unlock()

	if _, err := d.store.Update(ctx, id, patch); err != nil {
		d.logger.Error("failed to update entry", "entry_id", id, "error", err)
		d.resync(ctx)
		return fmt.Errorf("failed to update entry: %w", err)
	}
	d.logger.Info("entry updated", "entry_id", id)
	return nil
}

func (d *Diary) Delete(ctx context.Context, id string) error {
	d.mu.Lock()
	if i := d.indexOf(id); i >= 0 {
		d.entries = append(d.entries[:i:i], d.entries[i+1:]...)
	}
	d.mu.Unlock()

	if err := d.store.Delete(ctx, id); err != nil {
		d.logger.Error("failed to delete entry", "entry_id", id, "error", err)
		d.resync(ctx)
		return fmt.Errorf("failed to delete entry: %w", err)
	}
	d.logger.Info("entry deleted", "entry_id", id)
	return nil
}

// resync reloads the collection after a failed change. A failed reload is
// logged by Load and leaves the locally applied state in place.
func (d *Diary) resync(ctx context.Context) {
	_ = d.Load(context.WithoutCancel(ctx))
}

// indexOf must be called with mu held.
func (d *Diary) indexOf(id string) int {
	for i := range d.entries {
		if d.entries[i].ID == id {
			return i
		}
	}
	return -1
}

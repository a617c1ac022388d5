package buffer

import (
	"sync"
	"time"

	"github.com/Geun-Oh/scrollback/internal/line"
)

// Locked serializes access to a Store so the pipeline can insert while the
// TUI reads. All operations are goroutine-safe.
type Locked struct {
	mu    sync.RWMutex
	store *Store
}

// NewLocked wraps a store. The caller must not use s directly afterwards.
func NewLocked(s *Store) *Locked {
	return &Locked{store: s}
}

// Insert adds text to the store. See Store.Insert.
func (l *Locked) Insert(category line.Category, from, text string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.store.Insert(category, from, text)
}

// InsertAt adds text with an explicit timestamp. See Store.InsertAt.
func (l *Locked) InsertAt(ts time.Time, category line.Category, from, text string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.store.InsertAt(ts, category, from, text)
}

// Len returns the number of retained lines.
func (l *Locked) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.store.Len()
}

// Cap returns the store capacity.
func (l *Locked) Cap() int {
	return l.store.Cap()
}

// Evicted returns the total number of evicted lines.
func (l *Locked) Evicted() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.store.Evicted()
}

// Newest returns the most recently inserted line.
func (l *Locked) Newest() (line.Line, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.store.Newest()
}

// Oldest returns the oldest retained line.
func (l *Locked) Oldest() (line.Line, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.store.Oldest()
}

// At returns the i-th retained line counting from the oldest.
func (l *Locked) At(i int) (line.Line, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.store.At(i)
}

// Snapshot returns a copy of all retained lines, oldest first.
func (l *Locked) Snapshot() []line.Line {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.store.Snapshot()
}

// View calls fn with the store while holding the read lock, so a batch of
// reads sees one consistent state. fn must not retain s or call Insert.
func (l *Locked) View(fn func(s *Store)) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	fn(l.store)
}

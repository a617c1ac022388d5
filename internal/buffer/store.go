// Package buffer provides the fixed-capacity line store behind the
// scrollback pane.
package buffer

import (
	"errors"
	"fmt"
	"time"

	"github.com/Geun-Oh/scrollback/internal/line"
	"github.com/Geun-Oh/scrollback/internal/wrap"
)

var (
	// ErrCapacity is returned when the store capacity is not a power of two.
	ErrCapacity = errors.New("capacity must be a power of two")
	// ErrMaxLineLength is returned when the maximum line length is below 1.
	ErrMaxLineLength = errors.New("max line length must be at least 1")
)

// Store is a fixed-capacity circular buffer of lines. When full, the oldest
// line is evicted to make room for each new one. Text longer than the
// maximum line length is split across consecutive slots.
//
// head counts every line ever inserted and tail is the insertion count of
// the oldest retained line. Both are uint32 and wrap on overflow; slot
// indexing and size stay correct across the wrap because capacity is a
// power of two.
//
// A Store is not safe for concurrent use. See Locked.
type Store struct {
	lines   []line.Line
	mask    uint32
	maxLen  int
	head    uint32
	tail    uint32
	evicted uint64
	now     func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock sets the function used to timestamp inserted lines.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates a store holding capacity lines of at most maxLineLength
// bytes each. All slots are allocated up front.
func New(capacity, maxLineLength int, opts ...Option) (*Store, error) {
	if capacity < 1 || capacity&(capacity-1) != 0 || uint64(capacity) > 1<<31 {
		return nil, fmt.Errorf("buffer: %w: %d", ErrCapacity, capacity)
	}
	if maxLineLength < 1 {
		return nil, fmt.Errorf("buffer: %w: %d", ErrMaxLineLength, maxLineLength)
	}

	s := &Store{
		lines:  make([]line.Line, capacity),
		mask:   uint32(capacity - 1),
		maxLen: maxLineLength,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Insert appends text as one or more lines and returns how many lines
// were stored. It never fails: the oldest lines are evicted as needed.
func (s *Store) Insert(category line.Category, from, text string) int {
	return s.InsertAt(s.now(), category, from, text)
}

// InsertAt is Insert with an explicit timestamp for the stored lines.
func (s *Store) InsertAt(ts time.Time, category line.Category, from, text string) int {
	chunks := Split(text, s.maxLen)
	for _, chunk := range chunks {
		if s.size() == uint32(len(s.lines)) {
			s.tail++
			s.evicted++
		}
		s.lines[s.head&s.mask] = line.Line{
			Time:     ts,
			Category: category,
			From:     from,
			Text:     chunk,
		}
		s.head++
	}
	return len(chunks)
}

func (s *Store) size() uint32 {
	return s.head - s.tail
}

// Len returns the number of lines currently retained.
func (s *Store) Len() int {
	return int(s.size())
}

// Cap returns the store capacity.
func (s *Store) Cap() int {
	return len(s.lines)
}

// MaxLineLength returns the longest text a single stored line may hold.
func (s *Store) MaxLineLength() int {
	return s.maxLen
}

// Evicted returns the total number of lines evicted since creation.
func (s *Store) Evicted() uint64 {
	return s.evicted
}

// Newest returns the most recently inserted line.
// ok is false when the store is empty.
func (s *Store) Newest() (l line.Line, ok bool) {
	if s.size() == 0 {
		return line.Line{}, false
	}
	return s.lines[(s.head-1)&s.mask], true
}

// Oldest returns the oldest retained line.
// ok is false when the store is empty.
func (s *Store) Oldest() (l line.Line, ok bool) {
	if s.size() == 0 {
		return line.Line{}, false
	}
	return s.lines[s.tail&s.mask], true
}

// At returns the i-th retained line counting from the oldest (0) to the
// newest (Len()-1). ok is false when i is out of range.
func (s *Store) At(i int) (l line.Line, ok bool) {
	if i < 0 || i >= s.Len() {
		return line.Line{}, false
	}
	return s.lines[(s.tail+uint32(i))&s.mask], true
}

// Rows returns how many display rows the i-th retained line occupies at
// the given width.
func (s *Store) Rows(i, columns int) (int, error) {
	l, ok := s.At(i)
	if !ok {
		return 0, fmt.Errorf("buffer: line %d out of range [0,%d)", i, s.Len())
	}
	return wrap.Rows(l.Text, columns)
}

// Snapshot returns a copy of all retained lines, oldest first.
func (s *Store) Snapshot() []line.Line {
	n := s.Len()
	result := make([]line.Line, n)
	for i := 0; i < n; i++ {
		result[i] = s.lines[(s.tail+uint32(i))&s.mask]
	}
	return result
}

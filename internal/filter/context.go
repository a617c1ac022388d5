package filter

import (
	"math"

	"github.com/Geun-Oh/scrollback/internal/buffer"
	"github.com/Geun-Oh/scrollback/internal/line"
)

// ContextBuffer provides grep-like --before / --after context lines.
// It wraps a primary filter and keeps recent lines in a ring store so
// context around a match can be emitted. Lines are never emitted twice.
type ContextBuffer struct {
	filter     Filter
	beforeN    int
	afterN     int
	history    *buffer.Store
	sinceEmit  int // lines seen since the last emitted one
	afterCount int // remaining "after" lines to emit
}

// NewContextBuffer creates a context-aware filter wrapper.
// before is the number of lines before a match to include.
// after is the number of lines after a match to include.
func NewContextBuffer(f Filter, before, after int) *ContextBuffer {
	if before < 0 {
		before = 0
	}
	if after < 0 {
		after = 0
	}

	// History lines are never split.
	history, err := buffer.New(nextPowerOfTwo(before+1), math.MaxInt32)
	if err != nil {
		panic(err)
	}
	return &ContextBuffer{
		filter:  f,
		beforeN: before,
		afterN:  after,
		history: history,
	}
}

// Process evaluates a line and returns the lines to emit, including
// context. Returns nil if nothing should be emitted yet.
func (cb *ContextBuffer) Process(l *line.Line) []line.Line {
	cb.history.InsertAt(l.Time, l.Category, l.From, l.Text)

	if cb.filter.Match(l) {
		k := min(cb.beforeN, cb.sinceEmit)
		result := make([]line.Line, 0, k+1)

		last := cb.history.Len() - 1
		for i := last - k; i < last; i++ {
			prev, _ := cb.history.At(i)
			result = append(result, prev)
		}
		result = append(result, *l)

		cb.sinceEmit = 0
		cb.afterCount = cb.afterN
		return result
	}

	if cb.afterCount > 0 {
		cb.afterCount--
		cb.sinceEmit = 0
		return []line.Line{*l}
	}

	cb.sinceEmit++
	return nil
}

// Name returns the filter description.
func (cb *ContextBuffer) Name() string {
	return "context:" + cb.filter.Name()
}

func nextPowerOfTwo(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

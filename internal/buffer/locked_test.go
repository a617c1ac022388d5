package buffer

import (
	"strconv"
	"sync"
	"testing"

	"github.com/Geun-Oh/scrollback/internal/line"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocked_ConcurrentWriterAndReaders(t *testing.T) {
	s, err := New(64, 16)
	require.NoError(t, err)
	l := NewLocked(s)

	const writes = 1000

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < writes; i++ {
			l.Insert(line.CategoryOther, "w", strconv.Itoa(i))
		}
	}()

	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				l.View(func(s *Store) {
					if s.Len() > s.Cap() {
						t.Errorf("size %d exceeds capacity %d", s.Len(), s.Cap())
					}
				})
				_, _ = l.Newest()
				_ = l.Snapshot()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 64, l.Len())
	assert.Equal(t, uint64(writes-64), l.Evicted())

	newest, ok := l.Newest()
	require.True(t, ok)
	assert.Equal(t, strconv.Itoa(writes-1), newest.Text)

	oldest, ok := l.Oldest()
	require.True(t, ok)
	assert.Equal(t, strconv.Itoa(writes-64), oldest.Text)

	at, ok := l.At(0)
	require.True(t, ok)
	assert.Equal(t, oldest, at)
}

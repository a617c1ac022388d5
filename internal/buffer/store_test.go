package buffer

import (
	"math"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/Geun-Oh/scrollback/internal/line"
	"github.com/Geun-Oh/scrollback/internal/wrap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testCapacity = 16
	testMaxLen   = 510
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(testCapacity, testMaxLen)
	require.NoError(t, err)
	return s
}

func insertText(s *Store, text string) {
	s.Insert(line.CategoryOther, "", text)
}

func TestNew_RejectsBadConfig(t *testing.T) {
	for _, c := range []int{0, -4, 3, 12, 100} {
		_, err := New(c, testMaxLen)
		require.ErrorIs(t, err, ErrCapacity, "capacity %d", c)
	}

	_, err := New(8, 0)
	require.ErrorIs(t, err, ErrMaxLineLength)

	s, err := New(1, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, s.Cap())
	assert.Equal(t, 1, s.MaxLineLength())
}

func TestStore_EmptyHasNoLines(t *testing.T) {
	s := newTestStore(t)

	assert.Equal(t, 0, s.Len())

	_, ok := s.Newest()
	assert.False(t, ok)
	_, ok = s.Oldest()
	assert.False(t, ok)
	_, ok = s.At(0)
	assert.False(t, ok)
	assert.Empty(t, s.Snapshot())
}

func TestStore_NewestAfterOverflow(t *testing.T) {
	s := newTestStore(t)

	for i := 0; i < testCapacity+1; i++ {
		insertText(s, strconv.Itoa(i+1))
	}

	newest, ok := s.Newest()
	require.True(t, ok)
	assert.Equal(t, strconv.Itoa(testCapacity+1), newest.Text)
	assert.Equal(t, testCapacity, s.Len())
}

func TestStore_OldestAtAndAfterCapacity(t *testing.T) {
	s := newTestStore(t)

	for i := 0; i < testCapacity; i++ {
		insertText(s, strconv.Itoa(i+1))
	}

	oldest, ok := s.Oldest()
	require.True(t, ok)
	assert.Equal(t, "1", oldest.Text)
	newest, _ := s.Newest()
	assert.Equal(t, strconv.Itoa(testCapacity), newest.Text)
	assert.Equal(t, testCapacity, s.Len())
	assert.Zero(t, s.Evicted())

	insertText(s, strconv.Itoa(testCapacity+1))

	oldest, _ = s.Oldest()
	assert.Equal(t, "2", oldest.Text)
	assert.Equal(t, testCapacity, s.Len())
	assert.Equal(t, uint64(1), s.Evicted())
}

func TestStore_ManyInsertionsKeepMostRecent(t *testing.T) {
	for _, n := range []int{testCapacity + 1, 2 * testCapacity, 5*testCapacity + 3} {
		s := newTestStore(t)
		for i := 1; i <= n; i++ {
			insertText(s, strconv.Itoa(i))
		}

		require.Equal(t, testCapacity, s.Len())
		oldest, _ := s.Oldest()
		newest, _ := s.Newest()
		assert.Equal(t, strconv.Itoa(n-testCapacity+1), oldest.Text, "n=%d", n)
		assert.Equal(t, strconv.Itoa(n), newest.Text, "n=%d", n)

		for i := 0; i < s.Len(); i++ {
			l, ok := s.At(i)
			require.True(t, ok)
			assert.Equal(t, strconv.Itoa(n-testCapacity+1+i), l.Text)
		}
		_, ok := s.At(s.Len())
		assert.False(t, ok)
		_, ok = s.At(-1)
		assert.False(t, ok)
	}
}

func TestStore_IndexOverflow(t *testing.T) {
	s := newTestStore(t)
	s.head = math.MaxUint32
	s.tail = math.MaxUint32 - 1

	assert.Equal(t, 1, s.Len())
	assert.Equal(t, uint32(testCapacity-1), s.head&s.mask)

	insertText(s, "0")

	assert.Equal(t, 2, s.Len())
	assert.Equal(t, uint32(0), s.head&s.mask)

	insertText(s, "-1")

	assert.Equal(t, 3, s.Len())
	assert.Equal(t, "-1", s.lines[0].Text)

	newest, _ := s.Newest()
	assert.Equal(t, "-1", newest.Text)
	at, _ := s.At(1)
	assert.Equal(t, "0", at.Text)
}

func TestStore_EvictionAcrossOverflow(t *testing.T) {
	s := newTestStore(t)
	s.head = math.MaxUint32 - 3
	s.tail = s.head

	for i := 1; i <= testCapacity+5; i++ {
		insertText(s, strconv.Itoa(i))
	}

	assert.Equal(t, testCapacity, s.Len())
	oldest, _ := s.Oldest()
	newest, _ := s.Newest()
	assert.Equal(t, "6", oldest.Text)
	assert.Equal(t, strconv.Itoa(testCapacity+5), newest.Text)
	assert.Equal(t, uint64(5), s.Evicted())
}

func TestStore_LineOverlength(t *testing.T) {
	s := newTestStore(t)

	// 2.5 times the maximum, with markers at the first and last byte of
	// each expected chunk.
	f1, l1 := 0, testMaxLen-1
	f2, l2 := testMaxLen, 2*testMaxLen-1
	f3, l3 := 2*testMaxLen, 2*testMaxLen+testMaxLen/2-1

	text := []byte(strings.Repeat(" ", l3+1))
	text[f1], text[l1] = 'a', 'A'
	text[f2], text[l2] = 'b', 'B'
	text[f3], text[l3] = 'c', 'C'

	n := s.Insert(line.CategoryOther, "", string(text))

	require.Equal(t, 3, n)
	require.Equal(t, 3, s.Len())

	assert.Equal(t, testMaxLen, s.lines[0].Len())
	assert.Equal(t, testMaxLen, s.lines[1].Len())
	assert.Equal(t, testMaxLen/2, s.lines[2].Len())

	assert.Equal(t, byte('a'), s.lines[0].Text[0])
	assert.Equal(t, byte('A'), s.lines[0].Text[testMaxLen-1])
	assert.Equal(t, byte('b'), s.lines[1].Text[0])
	assert.Equal(t, byte('B'), s.lines[1].Text[testMaxLen-1])
	assert.Equal(t, byte('c'), s.lines[2].Text[0])
	assert.Equal(t, byte('C'), s.lines[2].Text[testMaxLen/2-1])

	var joined strings.Builder
	for _, l := range s.Snapshot() {
		joined.WriteString(l.Text)
	}
	assert.Equal(t, string(text), joined.String())
}

func TestStore_OverlengthEvictsOnlyWhatItNeeds(t *testing.T) {
	s, err := New(4, 3)
	require.NoError(t, err)

	for _, txt := range []string{"w", "x", "y", "z"} {
		insertText(s, txt)
	}
	require.Equal(t, 4, s.Len())

	insertText(s, "abcdefg")

	require.Equal(t, 4, s.Len())
	assert.Equal(t, uint64(3), s.Evicted())

	var texts []string
	for _, l := range s.Snapshot() {
		texts = append(texts, l.Text)
	}
	assert.Equal(t, []string{"z", "abc", "def", "g"}, texts)
}

func TestStore_CarriesTags(t *testing.T) {
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s, err := New(4, 4, WithClock(func() time.Time { return fixed }))
	require.NoError(t, err)

	s.Insert(line.CategoryChat, "alice", "hello world")

	require.Equal(t, 3, s.Len())
	for _, l := range s.Snapshot() {
		assert.Equal(t, line.CategoryChat, l.Category)
		assert.Equal(t, "alice", l.From)
		assert.Equal(t, fixed, l.Time)
	}
}

func TestStore_EmptyTextIsOneLine(t *testing.T) {
	s := newTestStore(t)

	assert.Equal(t, 1, s.Insert(line.CategoryOther, "", ""))
	assert.Equal(t, 1, s.Len())

	rows, err := s.Rows(0, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, rows)
}

func TestStore_Rows(t *testing.T) {
	s := newTestStore(t)
	insertText(s, "aa bb cc")

	newest, ok := s.Newest()
	require.True(t, ok)

	rows, err := wrap.Rows(newest.Text, 1)
	require.NoError(t, err)
	assert.Equal(t, 6, rows)

	rows, err = s.Rows(0, 4)
	require.NoError(t, err)
	assert.Equal(t, 3, rows)

	rows, err = s.Rows(0, newest.Len()+1)
	require.NoError(t, err)
	assert.Equal(t, 1, rows)

	_, err = s.Rows(0, 0)
	require.ErrorIs(t, err, wrap.ErrColumns)

	_, err = s.Rows(5, 10)
	require.Error(t, err)
}

package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Geun-Oh/scrollback/internal/buffer"
	"github.com/Geun-Oh/scrollback/internal/line"
)

func newTestModel(t *testing.T, capacity int, texts ...string) Model {
	t.Helper()
	ts := time.Date(2025, 1, 26, 13, 32, 19, 0, time.UTC)
	s, err := buffer.New(capacity, 100, buffer.WithClock(func() time.Time { return ts }))
	require.NoError(t, err)
	store := buffer.NewLocked(s)
	for _, text := range texts {
		store.Insert(line.CategoryOther, "a", text)
	}

	m := NewModel(store, nil, nil, "test")
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 40, Height: 10})
	return updated.(Model)
}

// resize sets the window so the pane shows height-3 rows.
func resize(m Model, width, height int) Model {
	updated, _ := m.Update(tea.WindowSizeMsg{Width: width, Height: height})
	return updated.(Model)
}

func press(m Model, key string) Model {
	var msg tea.KeyMsg
	switch key {
	case "up":
		msg = tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		msg = tea.KeyMsg{Type: tea.KeyDown}
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
	updated, _ := m.Update(msg)
	return updated.(Model)
}

func TestVisibleRows_BottomUp(t *testing.T) {
	m := newTestModel(t, 8, "one", "two", "three")

	rows := m.visibleRows(2)
	require.Len(t, rows, 2)
	assert.Contains(t, rows[0], "two")
	assert.Contains(t, rows[1], "three")
	assert.Contains(t, rows[1], "13:32:19 a: ")
}

func TestVisibleRows_WrapsLongLines(t *testing.T) {
	// "13:32:19 a: " is 12 columns, leaving 28 for text.
	text := strings.Repeat("word ", 10)
	m := newTestModel(t, 8, text)

	rows := m.visibleRows(10)
	require.Len(t, rows, 2)
	assert.True(t, strings.HasPrefix(rows[1], strings.Repeat(" ", 12)))
}

func TestVisibleRows_CutsTopLine(t *testing.T) {
	text := strings.Repeat("word ", 10)
	m := newTestModel(t, 8, text, "last")

	rows := m.visibleRows(2)
	require.Len(t, rows, 2)
	assert.Contains(t, rows[0], "word")
	assert.NotContains(t, rows[0], "13:32:19")
	assert.Contains(t, rows[1], "last")
}

func TestScrollKeys(t *testing.T) {
	m := resize(newTestModel(t, 8, "one", "two", "three"), 40, 4)

	m = press(m, "up")
	assert.Equal(t, 1, m.scrollPos)
	rows := m.visibleRows(1)
	assert.Contains(t, rows[0], "two")

	m = press(m, "G")
	assert.Equal(t, 2, m.scrollPos)
	m = press(m, "up")
	assert.Equal(t, 2, m.scrollPos, "clamped at oldest line")

	m = press(m, "down")
	assert.Equal(t, 1, m.scrollPos)
	m = press(m, "g")
	assert.Equal(t, 0, m.scrollPos)
}

func TestTopKey_FillsPageFromOldest(t *testing.T) {
	m := resize(newTestModel(t, 8, "l0", "l1", "l2", "l3", "l4"), 40, 6)
	require.Equal(t, 3, m.viewportHeight())

	m = press(m, "G")
	assert.Equal(t, 2, m.scrollPos)
	rows := m.visibleRows(m.viewportHeight())
	require.Len(t, rows, 3)
	assert.Contains(t, rows[0], "l0")
	assert.Contains(t, rows[2], "l2")

	m = press(m, "up")
	assert.Equal(t, 2, m.scrollPos, "cannot scroll past the top page")
}

func TestTopKey_WrappedLines(t *testing.T) {
	// The first line takes two rows at width 40.
	m := resize(newTestModel(t, 8, strings.Repeat("word ", 10), "b", "c", "d"), 40, 6)

	m = press(m, "G")
	assert.Equal(t, 2, m.scrollPos)
	rows := m.visibleRows(m.viewportHeight())
	require.Len(t, rows, 3)
	assert.Contains(t, rows[0], "13:32:19 a: word")
	assert.Contains(t, rows[2], "b")
}

func TestTopKey_EverythingFits(t *testing.T) {
	m := newTestModel(t, 8, "one", "two")
	m = press(m, "G")
	assert.Equal(t, 0, m.scrollPos)
}

func TestStoredMsg_KeepsViewWhilePaused(t *testing.T) {
	m := resize(newTestModel(t, 8, "one", "two"), 40, 4)
	m = press(m, "p")
	require.True(t, m.paused)

	m.Store.Insert(line.CategoryServerError, "srv", "three")
	updated, _ := m.Update(StoredMsg{Line: line.Line{Category: line.CategoryServerError}, Chunks: 1})
	m = updated.(Model)

	assert.Equal(t, 1, m.scrollPos)
	assert.Equal(t, 1, m.errorCount)
	assert.Contains(t, m.visibleRows(1)[0], "two")

	m = press(m, "p")
	assert.False(t, m.paused)
	assert.Equal(t, 0, m.scrollPos)
}

func TestSearch(t *testing.T) {
	m := resize(newTestModel(t, 8, "alpha", "beta", "alpha2", "gamma"), 40, 4)

	m = press(m, "/")
	require.True(t, m.searching)
	m = press(m, "alpha")
	m = press(m, "enter")
	assert.False(t, m.searching)
	assert.Equal(t, 1, m.scrollPos)

	m = press(m, "n")
	assert.Equal(t, 3, m.scrollPos)

	m = press(m, "n")
	assert.True(t, m.searchMiss)
	assert.Equal(t, 3, m.scrollPos)
}

func TestView(t *testing.T) {
	m := newTestModel(t, 8, "hello world")

	view := m.View()
	assert.Contains(t, view, "scrollback")
	assert.Contains(t, view, "1/8 lines")
	assert.Contains(t, view, "hello world")
	assert.Contains(t, view, "quit")

	updated, _ := m.Update(AlertMsg{Rules: []string{"hello"}, Line: line.Line{Text: "hello world"}})
	assert.Contains(t, updated.(Model).View(), "ALERT [hello]")

	updated, _ = updated.Update(DoneMsg{})
	assert.Contains(t, updated.(Model).View(), "DONE")
}

func TestView_BeforeSize(t *testing.T) {
	m := NewModel(nil, nil, nil, "test")
	assert.Equal(t, "Loading...", m.View())
}

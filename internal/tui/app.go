// Package tui provides a live scrollback pane over the line store.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Geun-Oh/scrollback/internal/buffer"
	"github.com/Geun-Oh/scrollback/internal/line"
	"github.com/Geun-Oh/scrollback/internal/monitor"
	"github.com/Geun-Oh/scrollback/internal/wrap"
)

// --- Styles ---

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			PaddingLeft(1).
			PaddingRight(1)

	statusBarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFDF5")).
			Background(lipgloss.Color("#353533"))

	prefixStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))

	highlightStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6600")).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888"))

	categoryStyles = map[line.Category]lipgloss.Style{
		line.CategoryServerError: lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4444")).Bold(true),
		line.CategoryServerInfo:  lipgloss.NewStyle().Foreground(lipgloss.Color("#44AAFF")),
		line.CategoryPinged:      lipgloss.NewStyle().Foreground(lipgloss.Color("#FFAA00")).Bold(true),
		line.CategoryChat:        lipgloss.NewStyle().Foreground(lipgloss.Color("#E0E0E0")),
		line.CategoryJoin:        lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")),
		line.CategoryPart:        lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")),
		line.CategoryQuit:        lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")),
		line.CategoryNick:        lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")),
	}
)

// --- Keys ---

type keyMap struct {
	Quit   key.Binding
	Pause  key.Binding
	Search key.Binding
	Next   key.Binding
	Up     key.Binding
	Down   key.Binding
	PgUp   key.Binding
	PgDown key.Binding
	Bottom key.Binding
	Top    key.Binding
}

var keys = keyMap{
	Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Pause:  key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "pause")),
	Search: key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
	Next:   key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "next")),
	Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "older")),
	Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "newer")),
	PgUp:   key.NewBinding(key.WithKeys("pgup")),
	PgDown: key.NewBinding(key.WithKeys("pgdown")),
	Bottom: key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "bottom")),
	Top:    key.NewBinding(key.WithKeys("G"), key.WithHelp("G", "top")),
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Search, k.Next, k.Pause, k.Up, k.Down, k.Bottom, k.Top, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

// --- Messages ---

// StoredMsg reports that a line was inserted into the store.
type StoredMsg struct {
	Line   line.Line
	Chunks int
}

// AlertMsg notifies the TUI that an alert was triggered.
type AlertMsg struct {
	Rules []string
	Line  line.Line
}

// SpikeMsg notifies the TUI that a rate spike was detected.
type SpikeMsg struct {
	Rate float64
}

// TickMsg triggers periodic UI updates.
type TickMsg time.Time

// DoneMsg signals the source has finished.
type DoneMsg struct {
	Err error
}

// --- Model ---

// Model is the bubbletea model for the scrollback pane. It holds no lines
// itself; every frame is drawn from the store.
type Model struct {
	Store  *buffer.Locked
	Rate   *monitor.RateDetector
	Alerts *monitor.AlertEngine
	Source string

	width  int
	height int

	// scrollPos counts stored lines between the newest line and the
	// bottom of the view. 0 follows new output.
	scrollPos int
	paused    bool

	searching   bool
	searchQuery string
	searchMiss  bool

	lastAlert  string
	alertFlash int

	errorCount  int
	pingedCount int
	totalCount  int

	done    bool
	doneErr error

	help help.Model
}

// NewModel creates a new TUI model over store.
func NewModel(store *buffer.Locked, rate *monitor.RateDetector, alerts *monitor.AlertEngine, sourceName string) Model {
	h := help.New()
	h.Styles.ShortDesc = helpStyle
	return Model{
		Store:  store,
		Rate:   rate,
		Alerts: alerts,
		Source: sourceName,
		help:   h,
	}
}

// Init starts the tick timer.
func (m Model) Init() tea.Cmd {
	return tea.Batch(tickCmd(), tea.WindowSize())
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case StoredMsg:
		m.totalCount++
		switch msg.Line.Category {
		case line.CategoryServerError:
			m.errorCount++
		case line.CategoryPinged:
			m.pingedCount++
		}
		// Keep the same lines in view while paused or scrolled back.
		if m.paused || m.scrollPos > 0 {
			m.scrollPos += msg.Chunks
			m.clampScroll()
		}
		return m, nil

	case AlertMsg:
		m.lastAlert = fmt.Sprintf("⚠ ALERT [%s]: %s", strings.Join(msg.Rules, ","), truncate(msg.Line.Text, 60))
		m.alertFlash = 10
		return m, nil

	case SpikeMsg:
		m.lastAlert = fmt.Sprintf("📈 SPIKE: %.0f lines/s", msg.Rate)
		m.alertFlash = 8
		return m, nil

	case TickMsg:
		if m.alertFlash > 0 {
			m.alertFlash--
		}
		return m, tickCmd()

	case DoneMsg:
		m.done = true
		m.doneErr = msg.Err
		return m, nil
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.searching {
		switch msg.String() {
		case "esc":
			m.searching = false
			m.searchQuery = ""
			m.searchMiss = false
		case "enter":
			m.searching = false
			m.performSearch()
		case "backspace":
			if len(m.searchQuery) > 0 {
				m.searchQuery = m.searchQuery[:len(m.searchQuery)-1]
			}
		default:
			if len(msg.Runes) > 0 {
				m.searchQuery += string(msg.Runes)
			}
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, keys.Pause):
		m.paused = !m.paused
		if !m.paused {
			m.scrollPos = 0
		}
	case key.Matches(msg, keys.Search):
		m.searching = true
		m.searchQuery = ""
		m.searchMiss = false
	case key.Matches(msg, keys.Next):
		m.performSearch()
	case key.Matches(msg, keys.Up):
		m.scrollPos++
		m.clampScroll()
	case key.Matches(msg, keys.Down):
		if m.scrollPos > 0 {
			m.scrollPos--
		}
	case key.Matches(msg, keys.PgUp):
		m.scrollPos += m.viewportHeight()
		m.clampScroll()
	case key.Matches(msg, keys.PgDown):
		m.scrollPos -= m.viewportHeight()
		m.clampScroll()
	case key.Matches(msg, keys.Bottom):
		m.scrollPos = 0 // jump to bottom (latest)
	case key.Matches(msg, keys.Top):
		m.scrollPos = m.maxScroll() // jump to top (oldest)
	}
	return m, nil
}

// View renders the TUI.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var sb strings.Builder

	// Title bar.
	title := titleStyle.Render(fmt.Sprintf(" scrollback · %s ", m.Source))
	status := "▶ LIVE"
	if m.paused {
		status = "⏸ PAUSED"
	}
	if m.done {
		status = "✔ DONE"
	}
	statusText := statusBarStyle.Render(fmt.Sprintf(" %s  %d/%d lines ", status, m.Store.Len(), m.Store.Cap()))
	gap := max(m.width-lipgloss.Width(title)-lipgloss.Width(statusText), 0)
	sb.WriteString(title + statusBarStyle.Render(strings.Repeat(" ", gap)) + statusText)
	sb.WriteString("\n")

	if m.alertFlash > 0 && m.lastAlert != "" {
		sb.WriteString(highlightStyle.Render(m.lastAlert))
		sb.WriteString("\n")
	}

	if m.searching {
		sb.WriteString(fmt.Sprintf(" 🔍 Search: %s█", m.searchQuery))
		sb.WriteString("\n")
	}

	height := m.viewportHeight()
	rows := m.visibleRows(height)
	for i := len(rows); i < height; i++ {
		sb.WriteString("\n")
	}
	for _, row := range rows {
		sb.WriteString(row)
		sb.WriteString("\n")
	}

	// Stats bar.
	statsLine := fmt.Sprintf(" ERR: %d │ PING: %d │ Total: %d │ Evicted: %d",
		m.errorCount, m.pingedCount, m.totalCount, m.Store.Evicted())
	if m.Rate != nil {
		rate := m.Rate.CurrentRate()
		statsLine = fmt.Sprintf(" Rate: %s %.0f/s │", renderRateBar(rate, 10), rate) + statsLine
	}
	if m.Alerts.TotalAlerts() > 0 {
		statsLine += fmt.Sprintf(" │ Alerts: %d", m.Alerts.TotalAlerts())
	}
	if m.scrollPos > 0 {
		statsLine += fmt.Sprintf(" │ ↑ %d", m.scrollPos)
	}
	if m.searchMiss {
		statsLine += " │ no match"
	}
	sb.WriteString(statusBarStyle.Render(padRight(statsLine, m.width)))
	sb.WriteString("\n")

	helpText := " " + m.help.ShortHelpView(keys.ShortHelp())
	if m.doneErr != nil {
		helpText += "  (" + m.doneErr.Error() + ")"
	}
	sb.WriteString(helpText)

	return sb.String()
}

// --- Helpers ---

func (m Model) viewportHeight() int {
	header := 1
	if m.alertFlash > 0 && m.lastAlert != "" {
		header++
	}
	if m.searching {
		header++
	}
	const footer = 2
	return max(m.height-header-footer, 1)
}

// prefix is the plain-text column shown before a line's text.
func prefix(l line.Line) string {
	return fmt.Sprintf("%s %s: ", l.Time.Format("15:04:05"), l.From)
}

// visibleRows lays out stored lines bottom-up, starting scrollPos lines
// above the newest, until height rows are filled. The topmost line may be
// cut, showing only its last rows.
func (m Model) visibleRows(height int) []string {
	var lines []line.Line

	// Budget with row counts first so only lines that show get rendered.
	m.Store.View(func(s *buffer.Store) {
		budget := 0
		for i := s.Len() - 1 - m.scrollPos; i >= 0 && budget < height; i-- {
			l, _ := s.At(i)
			cols, narrow := m.textColumns(l)
			n, err := s.Rows(i, cols)
			if err != nil {
				break
			}
			if narrow {
				n++
			}
			budget += n
			lines = append(lines, l)
		}
	})

	var rows []string
	for i := len(lines) - 1; i >= 0; i-- {
		rows = append(rows, m.renderLine(lines[i])...)
	}
	if len(rows) > height {
		rows = rows[len(rows)-height:]
	}
	return rows
}

// textColumns returns the width available to l's text. narrow reports that
// the pane is too slim for a text column beside the prefix, in which case
// the prefix takes a row of its own.
func (m Model) textColumns(l line.Line) (cols int, narrow bool) {
	cols = m.width - len(prefix(l))
	if cols < 10 {
		return max(m.width, 1), true
	}
	return cols, false
}

// renderLine word-wraps one stored line to the pane width. Continuation
// rows are indented under the text.
func (m Model) renderLine(l line.Line) []string {
	p := prefix(l)
	cols, narrow := m.textColumns(l)
	indent := strings.Repeat(" ", len(p))

	segs, _ := wrap.Segments(l.Text, cols)

	style, ok := categoryStyles[l.Category]
	if !ok {
		style = lipgloss.NewStyle()
	}

	out := make([]string, 0, len(segs)+1)
	if narrow {
		out = append(out, prefixStyle.Render(p))
	}
	for i, seg := range segs {
		seg = m.highlight(seg, style)
		switch {
		case narrow:
			out = append(out, seg)
		case i == 0:
			out = append(out, prefixStyle.Render(p)+seg)
		default:
			out = append(out, indent+seg)
		}
	}
	return out
}

func (m Model) highlight(seg string, style lipgloss.Style) string {
	if m.searchQuery == "" || m.searching || !strings.Contains(seg, m.searchQuery) {
		return style.Render(seg)
	}
	parts := strings.Split(seg, m.searchQuery)
	for i := range parts {
		parts[i] = style.Render(parts[i])
	}
	return strings.Join(parts, highlightStyle.Render(m.searchQuery))
}

// performSearch scrolls to the newest line above the current view bottom
// that contains the query.
func (m *Model) performSearch() {
	m.searchMiss = false
	if m.searchQuery == "" {
		return
	}

	found := -1
	m.Store.View(func(s *buffer.Store) {
		start := s.Len() - 1 - m.scrollPos
		if m.scrollPos > 0 || m.lastMatchedAtBottom(s) {
			start--
		}
		for i := start; i >= 0; i-- {
			l, _ := s.At(i)
			if strings.Contains(l.Text, m.searchQuery) {
				found = s.Len() - 1 - i
				return
			}
		}
	})

	if found < 0 {
		m.searchMiss = true
		return
	}
	m.scrollPos = found
	m.clampScroll()
}

// lastMatchedAtBottom reports whether the bottom line already matches, so
// a repeated search moves on to an older match.
func (m *Model) lastMatchedAtBottom(s *buffer.Store) bool {
	l, ok := s.At(s.Len() - 1 - m.scrollPos)
	return ok && strings.Contains(l.Text, m.searchQuery)
}

func (m *Model) clampScroll() {
	m.scrollPos = min(max(m.scrollPos, 0), m.maxScroll())
}

// maxScroll returns the scroll position that shows the oldest line at the
// top of the view with as many following lines below it as fit. It is 0
// when every stored line fits on one page.
func (m Model) maxScroll() int {
	height := m.viewportHeight()
	maxPos := 0
	m.Store.View(func(s *buffer.Store) {
		rows := 0
		for i := 0; i < s.Len(); i++ {
			l, _ := s.At(i)
			cols, narrow := m.textColumns(l)
			n, err := s.Rows(i, cols)
			if err != nil {
				return
			}
			if narrow {
				n++
			}
			rows += n
			if rows > height {
				maxPos = s.Len() - 1 - max(i-1, 0)
				return
			}
		}
	})
	return maxPos
}

func renderRateBar(rate float64, width int) string {
	maxRate := 200.0 // scale: 200 lines/s = full bar
	filled := min(int(rate/maxRate*float64(width)), width)
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

func tickCmd() tea.Cmd {
	return tea.Tick(500*time.Millisecond, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func truncate(s string, maxLen int) string {
	if maxLen <= 0 || len(s) <= maxLen {
		return s
	}
	return s[:maxLen-1] + "…"
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

package sink

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Geun-Oh/scrollback/internal/line"
	"github.com/Geun-Oh/scrollback/internal/wrap"
)

// color ANSI escape codes.
const (
	colorReset   = "\033[0m"
	colorRed     = "\033[31m"
	colorGreen   = "\033[32m"
	colorYellow  = "\033[33m"
	colorMagenta = "\033[35m"
	colorCyan    = "\033[36m"
	colorGray    = "\033[90m"
	colorBold    = "\033[1m"
)

// TerminalSink writes lines as text, word-wrapped to a fixed width.
// Continuation rows are indented under the text column.
type TerminalSink struct {
	w     io.Writer
	color bool
	width int // 0 disables wrapping
}

// NewTerminalSink creates a sink that writes to w. width is the terminal
// width in columns; 0 disables wrapping. If color is true, output
// includes ANSI colors by category.
func NewTerminalSink(w io.Writer, color bool, width int) *TerminalSink {
	if w == nil {
		w = os.Stdout
	}
	if width < 0 {
		width = 0
	}
	return &TerminalSink{w: w, color: color, width: width}
}

// Write outputs a formatted line.
func (s *TerminalSink) Write(l *line.Line) error {
	prefix := fmt.Sprintf("%s [%s] ", l.Time.Format("15:04:05"), l.From)
	if l.Category != line.CategoryOther {
		prefix += l.Category.String() + " "
	}

	rows := []string{l.Text}
	if s.width > 0 {
		cols := s.width - len(prefix)
		if cols < 1 {
			cols = 1
		}
		// cols is positive, so Segments cannot fail.
		rows, _ = wrap.Segments(l.Text, cols)
	}

	var sb strings.Builder
	indent := strings.Repeat(" ", len(prefix))
	for i, row := range rows {
		if i == 0 {
			if s.color {
				sb.WriteString(colorGray + prefix + colorReset)
			} else {
				sb.WriteString(prefix)
			}
		} else {
			sb.WriteString(indent)
		}
		if s.color {
			sb.WriteString(categoryColor(l.Category) + row + colorReset)
		} else {
			sb.WriteString(row)
		}
		sb.WriteByte('\n')
	}

	_, err := io.WriteString(s.w, sb.String())
	return err
}

// Flush is a no-op for terminal output.
func (s *TerminalSink) Flush() error { return nil }

// Close is a no-op for terminal output.
func (s *TerminalSink) Close() error { return nil }

// Name returns the sink identifier.
func (s *TerminalSink) Name() string { return "terminal" }

func categoryColor(c line.Category) string {
	switch c {
	case line.CategoryServerError:
		return colorBold + colorRed
	case line.CategoryPinged:
		return colorBold + colorYellow
	case line.CategoryJoin, line.CategoryPart, line.CategoryQuit, line.CategoryNick:
		return colorGray
	case line.CategoryServerInfo:
		return colorCyan
	case line.CategoryChat:
		return colorGreen
	default:
		return colorMagenta
	}
}

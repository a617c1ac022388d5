package sink

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/Geun-Oh/scrollback/internal/line"
)

// jsonLine is the serialization format for JSON Lines output.
type jsonLine struct {
	Timestamp string `json:"timestamp"`
	Category  string `json:"category"`
	From      string `json:"from,omitempty"`
	Text      string `json:"text"`
	Length    int    `json:"length"`
}

// JSONSink writes lines as JSON Lines (one JSON object per line).
type JSONSink struct {
	enc *json.Encoder
}

// NewJSONSink creates a JSON Lines sink writing to w.
func NewJSONSink(w io.Writer) *JSONSink {
	if w == nil {
		w = os.Stdout
	}
	return &JSONSink{enc: json.NewEncoder(w)}
}

// Write serializes a line as a single JSON object.
func (s *JSONSink) Write(l *line.Line) error {
	return s.enc.Encode(jsonLine{
		Timestamp: l.Time.Format("2006-01-02T15:04:05.000Z07:00"),
		Category:  l.Category.String(),
		From:      l.From,
		Text:      l.Text,
		Length:    l.Len(),
	})
}

// Flush is a no-op for JSON sink.
func (s *JSONSink) Flush() error { return nil }

// Close is a no-op for JSON sink.
func (s *JSONSink) Close() error { return nil }

// Name returns the sink identifier.
func (s *JSONSink) Name() string { return "json" }

// TextSink writes each line on its own row in Line.Format form, without
// wrapping or color.
type TextSink struct {
	w io.Writer
}

// NewTextSink creates a plain text sink writing to w.
func NewTextSink(w io.Writer) *TextSink {
	return &TextSink{w: w}
}

// Write outputs l followed by a newline.
func (s *TextSink) Write(l *line.Line) error {
	_, err := io.WriteString(s.w, l.Format()+"\n")
	return err
}

// Flush is a no-op for text output.
func (s *TextSink) Flush() error { return nil }

// Close is a no-op; the writer belongs to the caller.
func (s *TextSink) Close() error { return nil }

// Name returns the sink identifier.
func (s *TextSink) Name() string { return "text" }

// FileSink appends lines to a file.
type FileSink struct {
	inner Sink
	file  *os.File
}

// NewFileSink creates a sink that appends to the file at path.
// format selects the inner formatter: "json" or "text" (default).
func NewFileSink(path string, format string) (*FileSink, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open output file %s: %w", path, err)
	}

	var inner Sink
	switch format {
	case "json":
		inner = NewJSONSink(f)
	default:
		inner = NewTextSink(f)
	}

	return &FileSink{inner: inner, file: f}, nil
}

// Write delegates to the inner sink.
func (s *FileSink) Write(l *line.Line) error {
	return s.inner.Write(l)
}

// Flush syncs the file to disk.
func (s *FileSink) Flush() error {
	return s.file.Sync()
}

// Close flushes and closes the file.
func (s *FileSink) Close() error {
	if err := s.Flush(); err != nil {
		_ = s.file.Close()
		return err
	}
	return s.file.Close()
}

// Name returns the sink identifier.
func (s *FileSink) Name() string {
	return "file:" + s.file.Name()
}

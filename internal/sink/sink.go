// Package sink defines the Sink interface for stored lines.
package sink

import (
	"github.com/Geun-Oh/scrollback/internal/line"
)

// Sink receives stored lines and writes them to an output destination.
type Sink interface {
	// Write outputs a single stored line.
	Write(l *line.Line) error

	// Flush ensures all buffered output is written.
	Flush() error

	// Close releases resources held by the sink.
	Close() error

	// Name returns a human-readable identifier for this sink.
	Name() string
}

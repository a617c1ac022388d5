// Package source defines the Source interface and the inputs that feed
// text into the scrollback store.
package source

import (
	"bufio"
	"context"
	"errors"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/Geun-Oh/scrollback/internal/line"
	"github.com/Geun-Oh/scrollback/internal/logging"
)

// maxScanLine bounds a single input line. Longer input is delivered in
// pieces of this size; the store splits it further.
const maxScanLine = 1024 * 1024

// Source reads text from an input and emits Line values on a channel.
// Emitted lines carry raw text of any length and an origin label in From.
type Source interface {
	// Start begins reading from the source. The returned channel receives
	// lines until the source is exhausted or ctx is cancelled, then is
	// closed.
	Start(ctx context.Context) (<-chan line.Line, error)

	// Name returns a human-readable identifier for this source.
	Name() string
}

// ReaderSource reads lines from any io.Reader, such as os.Stdin.
type ReaderSource struct {
	name   string
	r      io.Reader
	logger zerolog.Logger
}

// NewReaderSource creates a source reading r; name labels emitted lines.
func NewReaderSource(name string, r io.Reader) *ReaderSource {
	return &ReaderSource{
		name:   name,
		r:      r,
		logger: logging.Component("source"),
	}
}

// Name returns the source identifier.
func (s *ReaderSource) Name() string {
	return s.name
}

// Start reads from the reader and returns a channel of lines.
func (s *ReaderSource) Start(ctx context.Context) (<-chan line.Line, error) {
	ch := make(chan line.Line, 256)

	go func() {
		defer close(ch)
		if err := scanLines(ctx, s.r, s.name, nil, ch); err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Error().Err(err).Str("source", s.name).Msg("read failed")
		}
	}()

	return ch, nil
}

// scanLines sends each line of r to ch until EOF or cancellation. parse,
// if set, derives the timestamp and text from the raw line.
func scanLines(ctx context.Context, r io.Reader, from string, parse func(string) (time.Time, string), ch chan<- line.Line) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxScanLine)
	scanner.Split(scanLinesOrChunks)

	for scanner.Scan() {
		ts, text := time.Now(), scanner.Text()
		if parse != nil {
			ts, text = parse(text)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case ch <- line.Line{Time: ts, From: from, Text: text}:
		}
	}
	return scanner.Err()
}

// scanLinesOrChunks is bufio.ScanLines that hands out a full buffer
// instead of failing with bufio.ErrTooLong.
func scanLinesOrChunks(data []byte, atEOF bool) (int, []byte, error) {
	advance, token, err := bufio.ScanLines(data, atEOF)
	if advance == 0 && token == nil && err == nil && len(data) >= maxScanLine {
		return maxScanLine, data[:maxScanLine], nil
	}
	return advance, token, err
}

package source

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/Geun-Oh/scrollback/internal/line"
	"github.com/Geun-Oh/scrollback/internal/logging"
)

// pollInterval is used when following a file without filesystem events.
const pollInterval = 250 * time.Millisecond

// FileSource reads lines from a file, optionally following new writes
// (tail -f).
type FileSource struct {
	path   string
	follow bool
	logger zerolog.Logger
}

// NewFileSource creates a source that reads from a file.
// If follow is true, it continues reading as new lines are appended.
func NewFileSource(path string, follow bool) *FileSource {
	return &FileSource{
		path:   path,
		follow: follow,
		logger: logging.Component("source"),
	}
}

// Name returns the source identifier.
func (s *FileSource) Name() string {
	return "file:" + s.path
}

// Start opens the file and returns a channel of lines.
func (s *FileSource) Start(ctx context.Context) (<-chan line.Line, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open file %s: %w", s.path, err)
	}

	var events <-chan fsnotify.Event
	var watcher *fsnotify.Watcher
	if s.follow {
		watcher, err = fsnotify.NewWatcher()
		if err == nil {
			err = watcher.Add(s.path)
		}
		if err != nil {
			s.logger.Warn().Err(err).Str("path", s.path).Msg("file watch unavailable, polling")
			if watcher != nil {
				_ = watcher.Close()
				watcher = nil
			}
		} else {
			events = watcher.Events
		}
	}

	ch := make(chan line.Line, 256)

	go func() {
		defer close(ch)
		defer f.Close()
		if watcher != nil {
			defer watcher.Close()
		}

		var err error
		if s.follow {
			err = s.followLines(ctx, f, events, ch)
		} else {
			err = scanLines(ctx, f, s.Name(), nil, ch)
		}
		if err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Error().Err(err).Str("path", s.path).Msg("read failed")
		}
	}()

	return ch, nil
}

// followLines reads r until ctx ends or the file goes away. A trailing
// line without its newline is held back until the rest of it is written.
func (s *FileSource) followLines(ctx context.Context, r io.Reader, events <-chan fsnotify.Event, ch chan<- line.Line) error {
	br := bufio.NewReaderSize(r, 64*1024)
	var pending []byte

	emit := func(b []byte) bool {
		select {
		case <-ctx.Done():
			return false
		case ch <- line.Line{Time: time.Now(), From: s.Name(), Text: string(dropCR(b))}:
			return true
		}
	}

	for {
		chunk, err := br.ReadSlice('\n')
		pending = append(pending, chunk...)

		switch {
		case err == nil:
			if !emit(pending[:len(pending)-1]) {
				return ctx.Err()
			}
			pending = pending[:0]
		case errors.Is(err, bufio.ErrBufferFull):
			if len(pending) >= maxScanLine {
				if !emit(pending[:maxScanLine]) {
					return ctx.Err()
				}
				pending = append(pending[:0], pending[maxScanLine:]...)
			}
		case errors.Is(err, io.EOF):
			if s.wait(ctx, events) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			// The file went away; hand out what is left of it.
			if len(pending) > 0 {
				emit(pending)
			}
			return nil
		default:
			return err
		}
	}
}

func dropCR(b []byte) []byte {
	if len(b) > 0 && b[len(b)-1] == '\r' {
		return b[:len(b)-1]
	}
	return b
}

// wait blocks until the file may have grown. Returns false when reading
// should stop.
func (s *FileSource) wait(ctx context.Context, events <-chan fsnotify.Event) bool {
	if events == nil {
		select {
		case <-ctx.Done():
			return false
		case <-time.After(pollInterval):
			return !s.gone()
		}
	}

	for {
		select {
		case <-ctx.Done():
			return false
		case ev, ok := <-events:
			if !ok {
				return false
			}
			if ev.Has(fsnotify.Write) {
				return true
			}
			// Deleting a file we still hold open may only report Chmod.
			if ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename) || s.gone() {
				s.logger.Info().Str("path", s.path).Msg("followed file went away")
				return false
			}
		}
	}
}

func (s *FileSource) gone() bool {
	_, err := os.Stat(s.path)
	return errors.Is(err, os.ErrNotExist)
}

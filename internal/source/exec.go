package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Geun-Oh/scrollback/internal/line"
	"github.com/Geun-Oh/scrollback/internal/logging"
)

// CommandSource runs a command and streams its stdout and stderr. Lines
// are labelled with the stream they came from.
type CommandSource struct {
	name    string
	command string
	args    []string
	parse   func(string) (time.Time, string)
	logger  zerolog.Logger
}

// NewExecSource creates a source that runs the given command with arguments.
func NewExecSource(command string, args []string) *CommandSource {
	return &CommandSource{
		name:    "exec:" + command,
		command: command,
		args:    args,
		logger:  logging.Component("source"),
	}
}

// Name returns the source identifier.
func (s *CommandSource) Name() string {
	return s.name
}

// Start executes the command and returns a channel of lines.
// The channel is closed when the command exits or ctx is cancelled.
func (s *CommandSource) Start(ctx context.Context) (<-chan line.Line, error) {
	cmd := exec.CommandContext(ctx, s.command, s.args...)

	stdoutPipe, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("%s: stdout pipe: %w", s.name, err)
	}
	stderrPipe, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("%s: stderr pipe: %w", s.name, err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%s: start: %w", s.name, err)
	}

	ch := make(chan line.Line, 256)
	var wg sync.WaitGroup
	wg.Add(2)

	read := func(stream string, r io.Reader) {
		defer wg.Done()
		if err := scanLines(ctx, r, stream, s.parse, ch); err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Warn().Err(err).Str("source", s.name).Str("stream", stream).Msg("read failed")
		}
	}
	go read("stdout", stdoutPipe)
	go read("stderr", stderrPipe)

	go func() {
		wg.Wait()
		if err := cmd.Wait(); err != nil && ctx.Err() == nil {
			s.logger.Info().Err(err).Str("source", s.name).Msg("command exited")
		}
		close(ch)
	}()

	return ch, nil
}

// Package pipeline orchestrates Source → Filter → Store → Sink processing.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/Geun-Oh/scrollback/internal/buffer"
	"github.com/Geun-Oh/scrollback/internal/filter"
	"github.com/Geun-Oh/scrollback/internal/line"
	"github.com/Geun-Oh/scrollback/internal/logging"
	"github.com/Geun-Oh/scrollback/internal/monitor"
	"github.com/Geun-Oh/scrollback/internal/parser"
	"github.com/Geun-Oh/scrollback/internal/sink"
	"github.com/Geun-Oh/scrollback/internal/source"
)

var (
	ErrNoSource = errors.New("pipeline: source is required")
	ErrNoStore  = errors.New("pipeline: store is required")
	ErrNoSink   = errors.New("pipeline: at least one sink is required")
)

// Config holds pipeline configuration.
type Config struct {
	Source     source.Source
	Store      *buffer.Locked
	Classifier *parser.Classifier    // optional category detection
	Grok       *parser.GrokParser    // optional structured parsing
	Filters    *filter.Chain         // optional
	Context    *filter.ContextBuffer // optional context lines, replaces Filters
	Sinks      []sink.Sink
	Stats      *monitor.Stats
	Alerts     *monitor.AlertEngine

	// OnStored, if set, is called after each line is inserted with the
	// number of store slots it took.
	OnStored func(l line.Line, chunks int)

	// OnAlert, if set, is called when a stored line triggers alert rules.
	OnAlert func(rules []string, l line.Line)

	// SinkOptional allows running with no sinks, when a live view reads
	// the store instead.
	SinkOptional bool

	ShowStats bool
	StatsOut  io.Writer // summary destination when ShowStats is set
}

// Run executes the pipeline: reads from source, filters, inserts into the
// store, and writes every stored chunk to the sinks.
// Blocks until the source is exhausted or ctx is cancelled.
func Run(ctx context.Context, cfg *Config) error {
	if cfg.Source == nil {
		return ErrNoSource
	}
	if cfg.Store == nil {
		return ErrNoStore
	}
	if len(cfg.Sinks) == 0 && !cfg.SinkOptional {
		return ErrNoSink
	}
	if cfg.Stats == nil {
		cfg.Stats = monitor.NewStats()
	}

	logger := logging.Component("pipeline")

	ch, err := cfg.Source.Start(ctx)
	if err != nil {
		return fmt.Errorf("pipeline: start source: %w", err)
	}
	logger.Debug().Str("source", cfg.Source.Name()).Msg("source started")

	defer func() {
		for _, s := range cfg.Sinks {
			if err := s.Flush(); err != nil {
				logger.Warn().Err(err).Str("sink", s.Name()).Msg("flush failed")
			}
			if err := s.Close(); err != nil {
				logger.Warn().Err(err).Str("sink", s.Name()).Msg("close failed")
			}
		}
	}()

	for l := range ch {
		cfg.Stats.RecordReceived()

		if cfg.Grok != nil {
			cfg.Grok.Parse(&l)
		}
		if cfg.Classifier != nil {
			cfg.Classifier.Classify(&l)
		}

		var pass []line.Line
		switch {
		case cfg.Context != nil:
			pass = cfg.Context.Process(&l)
		case cfg.Filters == nil || cfg.Filters.Match(&l):
			pass = []line.Line{l}
		}

		for i := range pass {
			cfg.Stats.RecordMatch()
			if rules := cfg.Alerts.Check(&pass[i]); len(rules) > 0 && cfg.OnAlert != nil {
				cfg.OnAlert(rules, pass[i])
			}
			if err := store(cfg, pass[i]); err != nil {
				return err
			}
		}
	}

	cfg.Stats.SetEvicted(cfg.Store.Evicted())
	logger.Debug().
		Uint64("received", cfg.Stats.Received()).
		Uint64("stored", cfg.Stats.Stored()).
		Uint64("evicted", cfg.Stats.Evicted()).
		Msg("source exhausted")

	if cfg.ShowStats && cfg.StatsOut != nil {
		fmt.Fprintln(cfg.StatsOut)
		fmt.Fprintln(cfg.StatsOut, cfg.Stats.Summary())
		if summary := cfg.Alerts.Summary(); summary != "" {
			fmt.Fprintln(cfg.StatsOut, summary)
		}
	}

	return ctx.Err()
}

// store inserts l and forwards the chunks it produced to the sinks. The
// chunks are read back from the store so sinks see exactly what is held.
func store(cfg *Config, l line.Line) error {
	if l.Time.IsZero() {
		l.Time = time.Now()
	}

	var stored []line.Line
	n := cfg.Store.InsertAt(l.Time, l.Category, l.From, l.Text)
	cfg.Store.View(func(s *buffer.Store) {
		// A burst larger than the store only keeps its tail.
		first := s.Len() - min(n, s.Len())
		for i := first; i < s.Len(); i++ {
			chunk, _ := s.At(i)
			stored = append(stored, chunk)
		}
	})

	cfg.Stats.RecordStored(n)
	cfg.Stats.SetEvicted(cfg.Store.Evicted())
	if cfg.OnStored != nil {
		cfg.OnStored(l, n)
	}

	for i := range stored {
		for _, s := range cfg.Sinks {
			if err := s.Write(&stored[i]); err != nil {
				return fmt.Errorf("pipeline: write to %s: %w", s.Name(), err)
			}
		}
	}
	return nil
}

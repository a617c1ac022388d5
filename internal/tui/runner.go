package tui

import (
	"context"
	"errors"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Geun-Oh/scrollback/internal/line"
	"github.com/Geun-Oh/scrollback/internal/monitor"
	"github.com/Geun-Oh/scrollback/internal/pipeline"
)

// RunConfig holds configuration for the TUI.
type RunConfig struct {
	Pipeline *pipeline.Config
	Rate     *monitor.RateDetector
}

// Run starts the TUI with the pipeline feeding the store in the
// background. It blocks until the user quits.
func Run(ctx context.Context, cfg *RunConfig) error {
	// Stop the source when the TUI exits.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	pcfg := cfg.Pipeline
	pcfg.SinkOptional = true
	pcfg.ShowStats = false

	model := NewModel(pcfg.Store, cfg.Rate, pcfg.Alerts, pcfg.Source.Name())
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	pcfg.OnStored = func(l line.Line, chunks int) {
		program.Send(StoredMsg{Line: l, Chunks: chunks})
		if cfg.Rate != nil && cfg.Rate.Record() {
			program.Send(SpikeMsg{Rate: cfg.Rate.CurrentRate()})
		}
	}
	pcfg.OnAlert = func(rules []string, l line.Line) {
		program.Send(AlertMsg{Rules: rules, Line: l})
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		err := pipeline.Run(ctx, pcfg)
		if ctx.Err() != nil {
			err = nil
		}
		program.Send(DoneMsg{Err: err})
	}()

	_, err := program.Run()

	cancel()
	wg.Wait()

	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}

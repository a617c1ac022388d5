package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/Geun-Oh/scrollback/internal/buffer"
	"github.com/Geun-Oh/scrollback/internal/config"
	"github.com/Geun-Oh/scrollback/internal/filter"
	"github.com/Geun-Oh/scrollback/internal/monitor"
	"github.com/Geun-Oh/scrollback/internal/parser"
	"github.com/Geun-Oh/scrollback/internal/pipeline"
	"github.com/Geun-Oh/scrollback/internal/sink"
	"github.com/Geun-Oh/scrollback/internal/source"
)

var errManySources = errors.New("choose one of --file, --docker or a command")

// buildPipeline assembles everything but the sinks.
func buildPipeline(cfg config.Config, args []string, stdin io.Reader) (*pipeline.Config, error) {
	src, err := buildSource(cfg, args, stdin)
	if err != nil {
		return nil, err
	}

	s, err := buffer.New(cfg.Capacity, cfg.MaxLineLength)
	if err != nil {
		return nil, err
	}

	chain, err := buildFilters(cfg)
	if err != nil {
		return nil, err
	}

	alerts, err := monitor.NewAlertEngine(cfg.Alerts)
	if err != nil {
		return nil, err
	}

	pcfg := &pipeline.Config{
		Source:     src,
		Store:      buffer.NewLocked(s),
		Classifier: &parser.Classifier{Nick: cfg.Nick},
		Alerts:     alerts,
		Stats:      monitor.NewStats(),
	}

	if cfg.Grok != "" {
		if pcfg.Grok, err = parser.NewGrokParser(cfg.Grok); err != nil {
			return nil, err
		}
	}

	if cfg.Before > 0 || cfg.After > 0 {
		pcfg.Context = filter.NewContextBuffer(chain, cfg.Before, cfg.After)
	} else if chain.Len() > 0 {
		pcfg.Filters = chain
	}

	return pcfg, nil
}

func buildSource(cfg config.Config, args []string, stdin io.Reader) (source.Source, error) {
	n := 0
	for _, set := range []bool{cfg.File != "", cfg.Docker != "", len(args) > 0} {
		if set {
			n++
		}
	}
	if n > 1 {
		return nil, errManySources
	}

	switch {
	case cfg.File != "":
		return source.NewFileSource(cfg.File, cfg.Follow), nil
	case cfg.Docker != "":
		return source.NewDockerSource(cfg.Docker, cfg.Follow), nil
	case len(args) > 0:
		return source.NewExecSource(args[0], args[1:]), nil
	default:
		return source.NewReaderSource("stdin", stdin), nil
	}
}

func buildFilters(cfg config.Config) (*filter.Chain, error) {
	mode := filter.MatchAny
	if cfg.MatchAll {
		mode = filter.MatchAll
	}
	chain := filter.NewChain(mode)

	for _, kw := range cfg.Keywords {
		chain.Add(filter.NewKeywordFilter(kw))
	}
	for _, pattern := range cfg.Regex {
		f, err := filter.NewRegexFilter(pattern)
		if err != nil {
			return nil, err
		}
		chain.Add(f)
	}
	if len(cfg.Categories) > 0 {
		f, err := filter.ParseCategoryFilter(cfg.Categories)
		if err != nil {
			return nil, err
		}
		chain.Add(f)
	}
	if len(cfg.From) > 0 {
		chain.Add(filter.NewFromFilter(cfg.From...))
	}
	if len(cfg.Exclude) > 0 {
		chain.Require(filter.NewExcludeFilter(cfg.Exclude...))
	}
	return chain, nil
}

func buildSinks(cfg config.Config, stdout io.Writer) ([]sink.Sink, error) {
	var sinks []sink.Sink
	if cfg.JSON {
		sinks = append(sinks, sink.NewJSONSink(stdout))
	} else {
		sinks = append(sinks, sink.NewTerminalSink(stdout, cfg.Color, cfg.Width))
	}

	if cfg.Output != "" {
		fs, err := sink.NewFileSink(cfg.Output, cfg.Format)
		if err != nil {
			return nil, fmt.Errorf("output: %w", err)
		}
		sinks = append(sinks, fs)
	}
	return sinks, nil
}

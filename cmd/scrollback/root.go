package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/Geun-Oh/scrollback/internal/config"
	"github.com/Geun-Oh/scrollback/internal/logging"
	"github.com/Geun-Oh/scrollback/internal/monitor"
	"github.com/Geun-Oh/scrollback/internal/pipeline"
	"github.com/Geun-Oh/scrollback/internal/tui"
)

func newRootCmd() *cobra.Command {
	v := viper.New()
	var configPath string

	cmd := &cobra.Command{
		Use:   "scrollback [flags] [-- command args...]",
		Short: "scrollback keeps a bounded history of a text stream",
		Long: `scrollback reads lines from stdin, a file, a docker container or a
command, keeps the most recent ones in a fixed-size store and prints them
word-wrapped to the terminal width. Lines longer than --max-line-length are
split across several slots; the oldest lines are evicted when the store is
full.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := v.BindPFlags(cmd.Flags()); err != nil {
				return err
			}
			cfg, err := config.Load(v, configPath)
			if err != nil {
				return err
			}
			return run(cmd, cfg, args)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "config file (yaml, toml or json)")
	addFlags(cmd.Flags())

	return cmd
}

// addFlags registers one flag per config key. Flag names match the
// config file keys so viper can bind them directly.
func addFlags(f *pflag.FlagSet) {
	d := config.Default()

	f.Int("capacity", d.Capacity, "number of lines kept; must be a power of two")
	f.Int("max-line-length", d.MaxLineLength, "longest text stored in one slot")

	f.StringP("file", "f", "", "read from a file instead of stdin")
	f.Bool("follow", false, "keep reading the file as it grows")
	f.String("docker", "", "read the logs of a docker container")
	f.String("grok", "", "grok pattern filling from, text and category")
	f.String("nick", "", "nick whose mentions count as pinged")

	f.StringSliceP("keyword", "k", nil, "keep lines containing keyword")
	f.StringSliceP("regex", "r", nil, "keep lines matching regex")
	f.StringSliceP("exclude", "x", nil, "drop lines containing pattern")
	f.StringSliceP("category", "c", nil, "keep lines of category (chat, join, error, ...)")
	f.StringSlice("from", nil, "keep lines from nick or stream")
	f.Bool("and", false, "require every filter to match instead of any")
	f.IntP("before", "B", 0, "lines of context before a match")
	f.IntP("after", "A", 0, "lines of context after a match")
	f.StringSlice("alert", nil, "alert rule, regex or name=regex")

	f.IntP("width", "w", d.Width, "terminal width used for wrapping")
	f.Bool("color", false, "color output by category")
	f.Bool("json", false, "print JSON lines instead of text")
	f.StringP("output", "o", "", "also append stored lines to a file")
	f.String("format", d.Format, "output file format: text or json")
	f.Bool("tui", false, "show an interactive scrollback pane")
	f.Bool("stats", false, "print a summary when the input ends")

	f.String("log-level", d.LogLevel, "diagnostic log level")
	f.Bool("log-json", false, "diagnostic logs as JSON")
}

func run(cmd *cobra.Command, cfg config.Config, args []string) error {
	logging.Init(logging.Options{
		Level:  cfg.LogLevel,
		JSON:   cfg.LogJSON,
		Output: cmd.ErrOrStderr(),
	})
	logger := logging.Component("cli")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pcfg, err := buildPipeline(cfg, args, cmd.InOrStdin())
	if err != nil {
		return err
	}
	logger.Debug().
		Str("source", pcfg.Source.Name()).
		Int("capacity", cfg.Capacity).
		Int("max_line_length", cfg.MaxLineLength).
		Msg("starting")
	if pcfg.Grok != nil {
		logger.Debug().Str("pattern", pcfg.Grok.Pattern()).Msg("grok enabled")
	}
	if pcfg.Filters != nil {
		logger.Debug().Str("filters", pcfg.Filters.Name()).Msg("filters enabled")
	}

	if cfg.TUI {
		return tui.Run(ctx, &tui.RunConfig{
			Pipeline: pcfg,
			Rate:     monitor.NewRateDetector(10*time.Second, 3),
		})
	}

	pcfg.Sinks, err = buildSinks(cfg, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	pcfg.ShowStats = cfg.Stats
	pcfg.StatsOut = cmd.ErrOrStderr()

	err = pipeline.Run(ctx, pcfg)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

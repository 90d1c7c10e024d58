// Package cmd provides the entrypoint and CLI command configuration for the
// lazyscope application.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"runtime/pprof"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/kpumuk/lazyscope/internal/config"
	"github.com/kpumuk/lazyscope/internal/devtools"
	"github.com/kpumuk/lazyscope/internal/render"
	"github.com/kpumuk/lazyscope/internal/source"
	"github.com/kpumuk/lazyscope/internal/ui"
)

func buildVersion(version, commit, date, builtBy string) string {
	result := version
	if commit != "" {
		result = fmt.Sprintf("%s\ncommit: %s", result, commit)
	}
	if date != "" {
		result = fmt.Sprintf("%s\nbuilt at: %s", result, date)
	}
	if builtBy != "" {
		result = fmt.Sprintf("%s\nbuilt by: %s", result, builtBy)
	}
	result = fmt.Sprintf("%s\ngoos: %s\ngoarch: %s", result, runtime.GOOS, runtime.GOARCH)
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Sum != "" {
		result = fmt.Sprintf("%s\nmodule version: %s, checksum: %s", result, info.Main.Version, info.Main.Sum)
	}

	return result
}

// Execute initializes and runs the lazyscope terminal application.
func Execute(version, commit, date, builtBy string) error {
	rootCmd := newRootCmd()
	rootCmd.Version = buildVersion(version, commit, date, builtBy)
	rootCmd.SetVersionTemplate(`lazyscope {{printf "version %s\n" .Version}}`)
	rootCmd.AddCommand(newFeedCmd())

	return fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(rootCmd.Version),
		fang.WithoutCompletions(),
		fang.WithoutManpage(),
	)
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "lazyscope",
		Short: "A terminal oscilloscope for live time series.",
		Long: "A terminal oscilloscope for live time series. Plots every channel of a " +
			"source, zooms and pans, and reports statistics for a selected time range.",
		Args: cobra.NoArgs,
	}

	flags := rootCmd.Flags()
	flags.String("config", "", "config file (default "+config.DefaultPath()+")")
	flags.String("source", "", "data source: random, sine, redis, websocket, csv or host")
	flags.String("redis", "", "redis URL for the redis source")
	flags.String("stream", "", "redis stream to read")
	flags.String("url", "", "OmnAIScope server URL for the websocket source")
	flags.StringSlice("file", nil, "CSV file to import (repeatable)")
	flags.Bool("no-worker", false, "render paths on the UI goroutine")
	flags.String("log-file", "", "log file (default "+config.DefaultLogPath()+")")
	flags.Bool("debug", false, "log at debug level")
	flags.String("cpuprofile", "", "write cpu profile to file")
	flags.BoolP("help", "h", false, "help for lazyscope")
	flags.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		switch name {
		case "csv":
			name = "file"
		case "redis-url":
			name = "redis"
		}
		return pflag.NormalizedName(name)
	})

	rootCmd.RunE = func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(cmd.Flags())
		if err != nil {
			return err
		}

		cpuprofile, err := cmd.Flags().GetString("cpuprofile")
		if err != nil {
			return fmt.Errorf("parse cpuprofile flag: %w", err)
		}
		if cpuprofile != "" {
			stop, err := startCPUProfile(cpuprofile)
			if err != nil {
				return err
			}
			defer stop()
		}

		logger, closeLog, err := openLogger(cfg)
		if err != nil {
			return err
		}
		defer closeLog()

		return run(cmd.Context(), cfg, logger)
	}

	return rootCmd
}

// loadConfig reads the config file and applies the flags that were set.
func loadConfig(flags *pflag.FlagSet) (*config.Config, error) {
	path, err := flags.GetString("config")
	if err != nil {
		return nil, fmt.Errorf("parse config flag: %w", err)
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	overrides := []struct {
		flag string
		dst  *string
	}{
		{"source", &cfg.Source.Kind},
		{"redis", &cfg.Source.Redis.URL},
		{"stream", &cfg.Source.Redis.Stream},
		{"url", &cfg.Source.WebSocket.URL},
		{"log-file", &cfg.Log.File},
	}
	for _, o := range overrides {
		if !flags.Changed(o.flag) {
			continue
		}
		if *o.dst, err = flags.GetString(o.flag); err != nil {
			return nil, fmt.Errorf("parse %s flag: %w", o.flag, err)
		}
	}
	if flags.Changed("file") {
		if cfg.Source.CSV.Files, err = flags.GetStringSlice("file"); err != nil {
			return nil, fmt.Errorf("parse file flag: %w", err)
		}
		if !flags.Changed("source") {
			cfg.Source.Kind = string(source.KindCSV)
		}
	}
	if noWorker, _ := flags.GetBool("no-worker"); noWorker {
		cfg.Render.Worker = false
	}
	if debugLog, _ := flags.GetBool("debug"); debugLog {
		cfg.Log.Level = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// openLogger writes text logs to the configured file. The terminal belongs
// to the UI, so nothing is logged to stderr.
func openLogger(cfg *config.Config) (*slog.Logger, func(), error) {
	level, err := cfg.LogLevel()
	if err != nil {
		return nil, nil, err
	}
	path := cfg.Log.File
	if path == "" {
		path = config.DefaultLogPath()
	}
	if path == "-" {
		return slog.New(slog.DiscardHandler), func() {}, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return newLogger(f, level), func() { _ = f.Close() }, nil
}

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func startCPUProfile(path string) (func(), error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create cpuprofile file: %w", err)
	}
	if err := pprof.StartCPUProfile(file); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("start cpu profile: %w", err)
	}
	return func() {
		pprof.StopCPUProfile()
		_ = file.Close()
	}, nil
}

// run wires the source, the render worker and the UI, and tears them down
// in reverse order when the program exits.
// supervise runs the UI in an errgroup next to the source and closes the
// source once the group context ends. The UI may add its own background
// tasks to g; the first one to fail stops the others.
func supervise(ctx context.Context, src source.Source, runUI func(ctx context.Context, g *errgroup.Group) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer cancel()
		return runUI(gctx, g)
	})
	g.Go(func() error {
		<-gctx.Done()
		if closer, ok := src.(io.Closer); ok {
			if err := closer.Close(); err != nil {
				return fmt.Errorf("close %s source: %w", src.Name(), err)
			}
			return nil
		}
		src.Disconnect()
		return nil
	})
	return g.Wait()
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	kind, err := cfg.SourceKind()
	if err != nil {
		return err
	}
	tracker := devtools.NewTracker()

	opts := cfg.SourceOptions()
	opts.Logger = logger
	opts.Tracker = tracker
	src, err := source.Open(kind, opts)
	if err != nil {
		return fmt.Errorf("open %s source: %w", kind, err)
	}

	logger.Info("starting", "source", src.Name(), "worker", cfg.Render.Worker)
	err = supervise(ctx, src, func(ctx context.Context, g *errgroup.Group) error {
		appOpts := []ui.Option{
			ui.WithConfig(cfg),
			ui.WithContext(ctx),
			ui.WithLogger(logger),
			ui.WithTracker(tracker),
		}
		if cfg.Render.Worker {
			worker := render.StartWorker(ctx, logger)
			g.Go(func() error {
				<-worker.Done()
				return nil
			})
			appOpts = append(appOpts, ui.WithWorker(worker))
		}

		p := tea.NewProgram(ui.New(src, appOpts...), tea.WithContext(ctx))
		if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
			return fmt.Errorf("run lazyscope: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	logger.Info("stopped", "source", src.Name())
	return nil
}

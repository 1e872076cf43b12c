package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/ritzau/influence-graph/pkg/analysis"
	"github.com/ritzau/influence-graph/pkg/config"
	"github.com/ritzau/influence-graph/pkg/graph"
	"github.com/ritzau/influence-graph/pkg/graphio"
	"github.com/ritzau/influence-graph/pkg/logging"
	"github.com/ritzau/influence-graph/pkg/network"
	"github.com/ritzau/influence-graph/pkg/output"
	"github.com/ritzau/influence-graph/pkg/pubsub"
	"github.com/ritzau/influence-graph/pkg/source"
	"github.com/ritzau/influence-graph/pkg/watcher"
	"github.com/ritzau/influence-graph/pkg/web"
)

func main() {
	flags := config.Flags("influence-graph")
	if err := flags.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	cfg, err := config.Load(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	level, err := logging.ParseLevel(cfg.Verbosity, cfg.VerboseCnt)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	logging.SetLevel(level)
	logging.SetJSONOutput(cfg.LogJSON)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil && !errors.Is(err, context.Canceled) {
		logging.Fatal("influence-graph failed", "error", err)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	delim, _ := cfg.Delim()
	parser := network.NewParser(cfg.GraphOptions())
	parser.Delimiter = delim

	var src source.Source
	if cfg.Source != "" {
		src = source.NewShared(source.New(cfg.Source))
	}

	publisher := pubsub.NewSSEPublisher()
	pubsub.ConfigureDefaults(publisher)
	defer publisher.Close()

	runner := analysis.NewRunner(src, parser, publisher)

	if cfg.WebMode {
		return serve(ctx, cfg, runner, publisher)
	}

	snap, err := runner.Run(ctx, "startup")
	if err != nil {
		return err
	}
	if err := emit(cfg, snap); err != nil {
		return err
	}
	if !cfg.Watch {
		return nil
	}

	return watcher.Watch(ctx, cfg.Source, cfg.Debounce, maxWait(cfg.Debounce), func(ctx context.Context, _ watcher.ChangeEvent) {
		snap, err := runner.Run(ctx, "file changed")
		if err != nil {
			logging.Warn("re-parse failed, keeping previous graph", "error", err)
			return
		}
		if err := emit(cfg, snap); err != nil {
			logging.Error("could not write output", "error", err)
		}
	})
}

// emit writes the export when one is configured and the report otherwise.
func emit(cfg *config.Config, snap *analysis.Snapshot) error {
	if cfg.Export == "" {
		output.PrintReport(os.Stdout, snap, cfg.Top)
		return nil
	}

	g := snap.Graph
	if cfg.Focus != "" {
		component, err := graph.Component(g, cfg.Focus)
		if err != nil {
			return err
		}
		g = component
	}
	g = graph.Optimize(g, cfg.MaxNodes)

	format, err := graphio.ParseFormat(cfg.Format)
	if err != nil {
		return err
	}

	var w io.Writer = os.Stdout
	if cfg.Export != "-" {
		f, err := os.Create(cfg.Export)
		if err != nil {
			return fmt.Errorf("creating export file: %w", err)
		}
		defer f.Close()
		w = f
	}
	if err := graphio.Export(w, g, format); err != nil {
		return fmt.Errorf("exporting graph: %w", err)
	}
	if cfg.Export != "-" {
		logging.Info("exported graph", "path", cfg.Export, "format", string(format), "nodes", len(g.Nodes), "edges", len(g.Edges))
	}
	return nil
}

func serve(ctx context.Context, cfg *config.Config, runner *analysis.Runner, publisher *pubsub.SSEPublisher) error {
	server := web.NewServer(runner, publisher, cfg.Legend(), cfg.MaxNodes)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start(ctx, cfg.Port)
	}()

	// Parse in the background so clients can subscribe to the progress.
	if cfg.Source != "" {
		go func() {
			if _, err := runner.Run(ctx, "startup"); err != nil {
				logging.Warn("initial parse failed", "error", err)
			}
		}()
	}

	if cfg.Watch {
		go func() {
			err := watcher.Watch(ctx, cfg.Source, cfg.Debounce, maxWait(cfg.Debounce), func(ctx context.Context, _ watcher.ChangeEvent) {
				if _, err := runner.Run(ctx, "file changed"); err != nil {
					logging.Warn("re-parse failed, keeping previous graph", "error", err)
				}
			})
			if err != nil && !errors.Is(err, context.Canceled) {
				logging.Error("watcher stopped", "error", err)
			}
		}()
	}

	if cfg.OpenBrowser {
		url := fmt.Sprintf("http://localhost:%d/api/graph", cfg.Port)
		go func() {
			// Wait a moment for server to start
			time.Sleep(500 * time.Millisecond)
			openBrowser(url)
		}()
	}

	return <-errCh
}

func maxWait(quiet time.Duration) time.Duration {
	return max(10*quiet, 2*time.Second)
}

func openBrowser(url string) {
	var cmd string
	var args []string

	switch runtime.GOOS {
	case "darwin":
		cmd = "open"
		args = []string{url}
	case "linux":
		cmd = "xdg-open"
		args = []string{url}
	case "windows":
		cmd = "cmd"
		args = []string{"/c", "start", url}
	default:
		logging.Warn("cannot open browser on this platform", "os", runtime.GOOS)
		return
	}

	if err := exec.Command(cmd, args...).Start(); err != nil {
		logging.Warn("failed to open browser", "error", err)
	}
}

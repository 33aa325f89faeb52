package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/essedev/doppia.os/internal/bridge"
	"github.com/essedev/doppia.os/internal/config"
	"github.com/essedev/doppia.os/internal/control"
	"github.com/essedev/doppia.os/internal/desktop"
	"github.com/essedev/doppia.os/internal/metrics"
	"github.com/essedev/doppia.os/internal/state"
	"github.com/essedev/doppia.os/internal/surface"
	"github.com/essedev/doppia.os/internal/ui/term"
	"github.com/essedev/doppia.os/internal/util"
)

// errTerminalClosed stops the daemon when the in-process terminal frontend exits.
var errTerminalClosed = errors.New("terminal closed")

type options struct {
	configPath string
	logLevel   string
	listen     string
	socketPath string
	noBridge   bool
	terminal   bool
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func defaultConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "doppia", "config.yaml")
}

func newRootCommand() *cobra.Command {
	opts := options{configPath: defaultConfigPath(), logLevel: "info"}
	cmd := &cobra.Command{
		Use:           "doppiad",
		Short:         "Run the doppia desktop window manager",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), opts, cmd.Flags().Changed("config"))
		},
	}
	cmd.Flags().StringVar(&opts.configPath, "config", opts.configPath, "path to YAML config")
	cmd.Flags().StringVar(&opts.logLevel, "log-level", opts.logLevel, "log level (trace|debug|info|warn|error)")
	cmd.Flags().StringVar(&opts.listen, "listen", "", "bridge listen address (overrides bridge.listen)")
	cmd.Flags().StringVar(&opts.socketPath, "socket", "", "control socket path")
	cmd.Flags().BoolVar(&opts.noBridge, "no-bridge", false, "do not serve the WebSocket bridge")
	cmd.Flags().BoolVar(&opts.terminal, "terminal", false, "render the desktop in this terminal")
	return cmd
}

// loadConfig reads path. A missing default config falls back to built-in
// settings; a missing explicit one is an error.
func loadConfig(path string, explicit bool, logger *util.Logger) (*config.Config, []byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			logger.Infof("no config at %s, using defaults", path)
			return config.Default(), nil, nil
		}
		return nil, nil, fmt.Errorf("read config: %w", err)
	}
	cfg, err := config.Parse(raw)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, raw, nil
}

func run(ctx context.Context, opts options, explicitConfig bool) error {
	logger := util.NewLogger(util.ParseLogLevel(opts.logLevel))
	defer func() { _ = logger.Sync() }()

	cfg, raw, err := loadConfig(opts.configPath, explicitConfig, logger)
	if err != nil {
		return err
	}
	for _, issue := range cfg.Lint() {
		logger.Warnf("config %s", issue.Error())
	}

	store := state.NewStore(state.Seed(cfg.Catalog()))
	collector := metrics.NewCollector(cfg.Telemetry.Enabled)
	desk := desktop.New(store, logger, collector, desktop.Params{
		Viewport:    cfg.ViewportSize(),
		Margins:     cfg.Margins(),
		SnapEnabled: cfg.Snap.Enabled,
	})
	defer desk.Close()

	input := make(chan *surface.Event, 64)
	reloader := newConfigReloader(opts.configPath, logger, desk, collector, cfg, raw)

	ctrlSrv, err := control.NewServer(desk, collector, logger, func(reason string) error {
		return reloader.Reload(ctx, reason)
	}, opts.socketPath)
	if err != nil {
		return fmt.Errorf("start control server: %w", err)
	}

	reloadRequests := make(chan string, 1)
	if raw != nil {
		watcher, target, err := newConfigWatcher(opts.configPath, logger)
		if err != nil {
			return err
		}
		defer watcher.Close()
		go watchConfig(logger, watcher, target, reloadRequests)
	}

	hups := make(chan os.Signal, 1)
	signal.Notify(hups, syscall.SIGHUP)
	defer signal.Stop(hups)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return desk.Run(gctx, input)
	})
	g.Go(func() error {
		return ctrlSrv.Serve(gctx)
	})
	if !opts.noBridge {
		addr := cfg.Bridge.Listen
		if opts.listen != "" {
			addr = opts.listen
		}
		srv := bridge.New(addr, store, desk, input, logger)
		g.Go(func() error {
			return srv.Run(gctx)
		})
	}
	if opts.terminal {
		screen, err := tcell.NewScreen()
		if err != nil {
			return fmt.Errorf("open terminal: %w", err)
		}
		frontend := term.New(screen, store, input, logger)
		g.Go(func() error {
			if err := frontend.Run(gctx, desk); err != nil {
				return err
			}
			return errTerminalClosed
		})
	}
	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return nil
			case reason := <-reloadRequests:
				if err := reloader.Reload(gctx, reason); err != nil {
					logger.Errorf("reload failed: %v", err)
				}
			case <-hups:
				if err := reloader.Reload(gctx, "received SIGHUP"); err != nil {
					logger.Errorf("reload failed: %v", err)
				}
			}
		}
	})

	err = g.Wait()
	switch {
	case err == nil, errors.Is(err, context.Canceled), errors.Is(err, errTerminalClosed):
		logger.Infof("desktop stopped")
		return nil
	default:
		return err
	}
}

// newConfigWatcher watches the directory holding path so editors that
// replace the file are still observed. It returns the cleaned absolute path
// events are matched against.
func newConfigWatcher(path string, logger *util.Logger) (*fsnotify.Watcher, string, error) {
	full, err := filepath.Abs(path)
	if err != nil {
		return nil, "", fmt.Errorf("resolve config path: %w", err)
	}
	full = filepath.Clean(full)
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, "", fmt.Errorf("watch config: %w", err)
	}
	if err := watcher.Add(filepath.Dir(full)); err != nil {
		watcher.Close()
		return nil, "", fmt.Errorf("watch config dir: %w", err)
	}
	if err := watcher.Add(full); err != nil {
		logger.Debugf("unable to watch config file directly: %v", err)
	}
	return watcher, full, nil
}

package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/essedev/doppia.os/internal/config"
	"github.com/essedev/doppia.os/internal/desktop"
	"github.com/essedev/doppia.os/internal/layout"
	"github.com/essedev/doppia.os/internal/metrics"
	"github.com/essedev/doppia.os/internal/state"
	"github.com/essedev/doppia.os/internal/surface"
	"github.com/essedev/doppia.os/internal/util"
)

type smokeWindow struct {
	ID        string  `yaml:"id"`
	X         float64 `yaml:"x"`
	Y         float64 `yaml:"y"`
	W         float64 `yaml:"w"`
	H         float64 `yaml:"h"`
	Z         int     `yaml:"z"`
	Snap      string  `yaml:"snap,omitempty"`
	Active    bool    `yaml:"active"`
	Minimized bool    `yaml:"minimized,omitempty"`
	Maximized bool    `yaml:"maximized,omitempty"`
	Preview   bool    `yaml:"preview,omitempty"`
}

type smokeStep struct {
	Name    string        `yaml:"step"`
	Error   string        `yaml:"error,omitempty"`
	Windows []smokeWindow `yaml:"windows"`
}

type scenario struct {
	desk  *desktop.Desktop
	store *state.Store
	id    string
}

func main() {
	home, _ := os.UserHomeDir()
	defaultConfig := filepath.Join(home, ".config", "doppia", "config.yaml")

	cfgPath := flag.String("config", defaultConfig, "path to YAML config")
	logLevel := flag.String("log-level", "info", "log level (trace|debug|info|warn|error)")
	window := flag.String("window", "", "window to exercise (defaults to the first catalog entry)")
	flag.Parse()

	logger := util.NewLogger(util.ParseLogLevel(*logLevel))

	cfg, err := config.Load(*cfgPath)
	switch {
	case err == nil:
		fmt.Printf("Loaded config from %s\n", *cfgPath)
	case errors.Is(err, os.ErrNotExist) && *cfgPath == defaultConfig:
		fmt.Println("Using built-in configuration")
		cfg = config.Default()
	default:
		exitErr(fmt.Errorf("load config: %w", err))
	}

	fmt.Println("\n=== Configuration ===")
	if err := marshalYAML(os.Stdout, cfg); err != nil {
		logger.Warnf("failed to print config: %v", err)
	}

	id := *window
	if id == "" {
		id = cfg.Windows[0].ID
	}

	collector := metrics.NewCollector(true)
	store := state.NewStore(state.Seed(cfg.Catalog()))
	desk := desktop.New(store, logger, collector, desktop.Params{
		Viewport:    cfg.ViewportSize(),
		Margins:     cfg.Margins(),
		SnapEnabled: cfg.Snap.Enabled,
	})
	defer desk.Close()

	steps := runScenario(&scenario{desk: desk, store: store, id: id})

	fmt.Printf("\n=== Scenario (%s) ===\n", id)
	if err := marshalYAML(os.Stdout, steps); err != nil {
		logger.Warnf("failed to print scenario: %v", err)
	}

	fmt.Println("\n=== Interaction Metrics ===")
	if err := marshalJSON(os.Stdout, collector.Snapshot()); err != nil {
		logger.Warnf("failed to print metrics: %v", err)
	}

	for _, step := range steps {
		if step.Error != "" {
			exitErr(fmt.Errorf("step %q failed: %s", step.Name, step.Error))
		}
	}
}

// runScenario walks one window through the interactions the desktop supports
// and records the window list after each of them.
func runScenario(s *scenario) []smokeStep {
	actions := []struct {
		name string
		run  func() error
	}{
		{"open", func() error { return s.desk.Open(s.id) }},
		{"drag", func() error { return s.drag(120, 80) }},
		{"drag to left edge", s.dragToLeftEdge},
		{"maximize", func() error { return s.desk.ToggleMaximize(s.id) }},
		{"unmaximize", func() error { return s.desk.ToggleMaximize(s.id) }},
		{"resize", func() error { return s.resize(-50, -40) }},
		{"snap top-right", func() error { return s.desk.Snap(s.id, state.SnapTopRight) }},
		{"unsnap", func() error { return s.desk.Unsnap(s.id) }},
		{"minimize", func() error { return s.desk.Minimize(s.id) }},
		{"restore", func() error { return s.desk.Restore(s.id) }},
		{"close", func() error { return s.desk.CloseWindow(s.id) }},
	}
	steps := make([]smokeStep, 0, len(actions))
	for _, a := range actions {
		step := smokeStep{Name: a.name}
		if err := a.run(); err != nil {
			step.Error = err.Error()
		}
		step.Windows = snapshot(s.store.Snapshot())
		steps = append(steps, step)
	}
	return steps
}

func (s *scenario) record() (state.WindowRecord, error) {
	rec, ok := s.store.Find(s.id)
	if !ok {
		return rec, fmt.Errorf("unknown window %q", s.id)
	}
	return rec, nil
}

// drag presses inside the title bar and moves the pointer by dx, dy in ten
// increments before releasing.
func (s *scenario) drag(dx, dy float64) error {
	rec, err := s.record()
	if err != nil {
		return err
	}
	if err := s.desk.Focus(s.id); err != nil {
		return err
	}
	start := layout.Point{X: rec.Pos.X + 40, Y: rec.Pos.Y + desktop.TitleBarHeight/2}
	s.gesture(start, layout.Point{X: start.X + dx, Y: start.Y + dy})
	return nil
}

func (s *scenario) dragToLeftEdge() error {
	rec, err := s.record()
	if err != nil {
		return err
	}
	return s.drag(-rec.Pos.X, 0)
}

// resize grabs the bottom-right corner handle.
func (s *scenario) resize(dw, dh float64) error {
	rec, err := s.record()
	if err != nil {
		return err
	}
	if err := s.desk.Focus(s.id); err != nil {
		return err
	}
	corner := layout.Point{X: rec.Pos.X + rec.Size.W, Y: rec.Pos.Y + rec.Size.H}
	s.gesture(corner, layout.Point{X: corner.X + dw, Y: corner.Y + dh})
	return nil
}

func (s *scenario) gesture(from, to layout.Point) {
	const steps = 10
	s.desk.Deliver(&surface.Event{Type: surface.MouseDown, X: from.X, Y: from.Y})
	for i := 1; i <= steps; i++ {
		f := float64(i) / steps
		s.desk.Deliver(&surface.Event{
			Type: surface.MouseMove,
			X:    from.X + (to.X-from.X)*f,
			Y:    from.Y + (to.Y-from.Y)*f,
		})
	}
	s.desk.Deliver(&surface.Event{Type: surface.MouseUp, X: to.X, Y: to.Y})
}

func snapshot(records []state.WindowRecord) []smokeWindow {
	out := make([]smokeWindow, 0, len(records))
	for _, r := range records {
		w := smokeWindow{
			ID:        r.ID,
			X:         r.Pos.X,
			Y:         r.Pos.Y,
			W:         r.Size.W,
			H:         r.Size.H,
			Z:         r.Pos.Z,
			Active:    r.Active,
			Minimized: r.IsMinimized,
			Maximized: r.IsMaximized,
			Preview:   r.IsPreview,
		}
		if r.Snapped() {
			w.Snap = string(r.SnapType)
		}
		out = append(out, w)
	}
	return out
}

func exitErr(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}

func marshalYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(v)
}

func marshalJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

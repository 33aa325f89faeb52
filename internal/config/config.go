package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/essedev/doppia.os/internal/layout"
	"github.com/essedev/doppia.os/internal/state"
)

// Defaults applied to omitted settings.
const (
	DefaultViewportWidth  = 1280
	DefaultViewportHeight = 800
	DefaultOffset         = 10
	DefaultNavHeight      = 40
	DefaultWindowWidth    = 650
	DefaultWindowHeight   = 400
	DefaultBridgeListen   = "127.0.0.1:7878"
)

// Config is the top-level configuration document.
type Config struct {
	Viewport  ViewportConfig  `yaml:"viewport"`
	Offset    float64         `yaml:"offset"`
	NavHeight float64         `yaml:"navHeight"`
	Snap      SnapConfig      `yaml:"snap"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Bridge    BridgeConfig    `yaml:"bridge"`
	Windows   WindowList      `yaml:"windows"`
}

// UnmarshalYAML handles deprecated fields while decoding configuration files.
func (c *Config) UnmarshalYAML(value *yaml.Node) error {
	type rawConfig struct {
		Viewport        ViewportConfig  `yaml:"viewport"`
		Offset          *float64        `yaml:"offset"`
		NavHeight       *float64        `yaml:"navHeight"`
		LegacyNavHeight *float64        `yaml:"navbarHeight"`
		Snap            rawSnapConfig   `yaml:"snap"`
		Telemetry       TelemetryConfig `yaml:"telemetry"`
		Bridge          BridgeConfig    `yaml:"bridge"`
		Windows         WindowList      `yaml:"windows"`
	}

	var raw rawConfig
	if err := value.Decode(&raw); err != nil {
		return err
	}

	c.Viewport = raw.Viewport
	c.Telemetry = raw.Telemetry
	c.Bridge = raw.Bridge
	c.Windows = raw.Windows

	c.Offset = DefaultOffset
	if raw.Offset != nil {
		c.Offset = *raw.Offset
	}
	switch {
	case raw.NavHeight != nil:
		c.NavHeight = *raw.NavHeight
	case raw.LegacyNavHeight != nil:
		c.NavHeight = *raw.LegacyNavHeight
	default:
		c.NavHeight = DefaultNavHeight
	}
	c.Snap.Enabled = true
	if raw.Snap.Enabled != nil {
		c.Snap.Enabled = *raw.Snap.Enabled
	}
	return nil
}

// ViewportConfig is the initial page size. Frontends may report a different
// size at runtime.
type ViewportConfig struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// SnapConfig toggles edge snapping during drags.
type SnapConfig struct {
	Enabled bool `yaml:"enabled"`
}

type rawSnapConfig struct {
	Enabled *bool `yaml:"enabled"`
}

// TelemetryConfig opts into interaction counters.
type TelemetryConfig struct {
	Enabled bool `yaml:"enabled"`
}

// BridgeConfig configures the browser bridge listener.
type BridgeConfig struct {
	Listen string `yaml:"listen"`
}

// WindowConfig seeds one catalog window.
type WindowConfig struct {
	ID      string  `yaml:"id"`
	Name    string  `yaml:"name"`
	Content string  `yaml:"content"`
	W       float64 `yaml:"w"`
	H       float64 `yaml:"h"`
	X       float64 `yaml:"x"`
	Y       float64 `yaml:"y"`
	Active  bool    `yaml:"active"`
}

// WindowList is the window catalog. Decoding rejects duplicate ids.
type WindowList []WindowConfig

// UnmarshalYAML ensures window ids are unique.
func (l *WindowList) UnmarshalYAML(value *yaml.Node) error {
	if value == nil {
		*l = nil
		return nil
	}
	if value.Kind != yaml.SequenceNode {
		return fmt.Errorf("windows must be a list")
	}
	result := make(WindowList, 0, len(value.Content))
	seen := map[string]struct{}{}
	for i, node := range value.Content {
		var w WindowConfig
		if err := node.Decode(&w); err != nil {
			return fmt.Errorf("windows[%d]: %w", i, err)
		}
		if w.ID != "" {
			if _, exists := seen[w.ID]; exists {
				return fmt.Errorf("duplicate window %q", w.ID)
			}
			seen[w.ID] = struct{}{}
		}
		result = append(result, w)
	}
	*l = result
	return nil
}

// Load reads and validates a configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes, defaults and validates a configuration document.
func Parse(data []byte) (*Config, error) {
	cfg, err := decode(data)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the built-in configuration.
func Default() *Config {
	cfg, err := decode(nil)
	if err != nil {
		panic(err)
	}
	return cfg
}

func decode(data []byte) (*Config, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	root := &doc
	if doc.Kind == 0 {
		// Empty documents never reach Config.UnmarshalYAML.
		root = &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	}
	var cfg Config
	if err := root.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Viewport.Width == 0 {
		c.Viewport.Width = DefaultViewportWidth
	}
	if c.Viewport.Height == 0 {
		c.Viewport.Height = DefaultViewportHeight
	}
	if c.Bridge.Listen == "" {
		c.Bridge.Listen = DefaultBridgeListen
	}
	if len(c.Windows) == 0 {
		for _, e := range state.DefaultCatalog() {
			c.Windows = append(c.Windows, WindowConfig{
				ID: e.ID, Name: e.Name, Content: e.Content,
				W: e.Rect.Width, H: e.Rect.Height, X: e.Rect.X, Y: e.Rect.Y,
				Active: e.Active,
			})
		}
	}
	for i := range c.Windows {
		w := &c.Windows[i]
		if w.W == 0 {
			w.W = DefaultWindowWidth
		}
		if w.H == 0 {
			w.H = DefaultWindowHeight
		}
		if w.Name == "" {
			w.Name = w.ID
		}
		if w.Content == "" {
			w.Content = w.ID
		}
	}
}

// Validate performs basic sanity checks.
func (c *Config) Validate() error {
	for _, issue := range c.Lint() {
		if issue.Severity == SeverityError {
			return issue
		}
	}
	return nil
}

// ViewportSize converts the configured page size.
func (c *Config) ViewportSize() layout.Viewport {
	return layout.Viewport{Width: c.Viewport.Width, Height: c.Viewport.Height}
}

// Margins returns the window offset and navigation bar height.
func (c *Config) Margins() layout.Margins {
	return layout.Margins{Offset: c.Offset, NavHeight: c.NavHeight}
}

// Catalog converts the window list into store seed entries.
func (c *Config) Catalog() []state.CatalogEntry {
	entries := make([]state.CatalogEntry, 0, len(c.Windows))
	for _, w := range c.Windows {
		entries = append(entries, state.CatalogEntry{
			ID:      w.ID,
			Name:    w.Name,
			Content: w.Content,
			Rect:    layout.Rect{X: w.X, Y: w.Y, Width: w.W, Height: w.H},
			Active:  w.Active,
		})
	}
	return entries
}

package config

import (
	"fmt"
	"os"

	"github.com/essedev/doppia.os/internal/state"
)

// Severity grades a lint finding.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// LintError is a problem found in a configuration document, addressed by a
// dotted path.
type LintError struct {
	Path     string
	Message  string
	Severity Severity
}

func (e LintError) Error() string {
	if e.Path == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// LintFile loads path without validating it and returns every finding.
func LintFile(path string) ([]LintError, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg, err := decode(data)
	if err != nil {
		return nil, err
	}
	return cfg.Lint(), nil
}

// Lint reports every error and warning in the configuration.
func (c *Config) Lint() []LintError {
	var out []LintError
	errorf := func(path, format string, args ...any) {
		out = append(out, LintError{Path: path, Message: fmt.Sprintf(format, args...), Severity: SeverityError})
	}
	warnf := func(path, format string, args ...any) {
		out = append(out, LintError{Path: path, Message: fmt.Sprintf(format, args...), Severity: SeverityWarning})
	}

	if c.Viewport.Width <= 0 {
		errorf("viewport.width", "must be positive")
	}
	if c.Viewport.Height <= 0 {
		errorf("viewport.height", "must be positive")
	}
	if c.Offset < 0 {
		errorf("offset", "cannot be negative")
	}
	if c.NavHeight < 0 {
		errorf("navHeight", "cannot be negative")
	}
	usable := c.Margins()
	if w := c.Viewport.Width - 2*usable.Offset; c.Viewport.Width > 0 && w < state.MinWidth {
		warnf("viewport.width", "usable width %v is below the minimum window width %d", w, state.MinWidth)
	}
	if h := c.Viewport.Height - usable.NavHeight - 2*usable.Offset; c.Viewport.Height > 0 && h < state.MinHeight {
		warnf("viewport.height", "usable height %v is below the minimum window height %d", h, state.MinHeight)
	}

	if len(c.Windows) == 0 {
		errorf("windows", "at least one window is required")
	}
	active := 0
	for i, w := range c.Windows {
		path := fmt.Sprintf("windows[%d]", i)
		if w.ID == "" {
			errorf(path+".id", "cannot be empty")
		}
		if w.W < state.MinWidth {
			errorf(path+".w", "must be at least %d, got %v", state.MinWidth, w.W)
		}
		if w.H < state.MinHeight {
			errorf(path+".h", "must be at least %d, got %v", state.MinHeight, w.H)
		}
		if w.Active {
			active++
		}
		if w.X+w.W > c.Viewport.Width || w.Y+w.H > c.Viewport.Height || w.X < 0 || w.Y < 0 {
			warnf(path, "window %q starts outside the viewport and will be pulled back on first drag", w.ID)
		}
	}
	if len(c.Windows) > 0 && active == 0 {
		warnf("windows", "no window is active at startup")
	}
	return out
}

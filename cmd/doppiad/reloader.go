package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/google/go-cmp/cmp"

	"github.com/essedev/doppia.os/internal/config"
	"github.com/essedev/doppia.os/internal/desktop"
	"github.com/essedev/doppia.os/internal/metrics"
	"github.com/essedev/doppia.os/internal/util"
)

type configReloader struct {
	path    string
	logger  *util.Logger
	desktop *desktop.Desktop
	metrics *metrics.Collector

	mu             sync.Mutex
	lastConfig     *config.Config
	lastSerialized []byte
}

func newConfigReloader(path string, logger *util.Logger, desk *desktop.Desktop, metrics *metrics.Collector, cfg *config.Config, serialized []byte) *configReloader {
	return &configReloader{
		path:           path,
		logger:         logger,
		desktop:        desk,
		metrics:        metrics,
		lastConfig:     cfg,
		lastSerialized: append([]byte(nil), serialized...),
	}
}

// Reload re-reads the config file and applies margins, snapping, viewport
// and telemetry to the running desktop. A rejected file leaves the previous
// settings in place.
func (r *configReloader) Reload(ctx context.Context, reason string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.logger.Infof("%s, reloading config", reason)
	raw, err := os.ReadFile(r.path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	cfg, err := config.Parse(raw)
	if err != nil {
		if issues, lintErr := config.LintFile(r.path); lintErr == nil {
			r.logLintErrors(issues)
		}
		r.logDiff(raw)
		return err
	}
	for _, issue := range cfg.Lint() {
		r.logger.Warnf("config %s", issue.Error())
	}

	prev := r.lastConfig
	err = r.desktop.Do(ctx, func() error {
		r.desktop.SetMargins(cfg.Margins())
		r.desktop.SetSnapEnabled(cfg.Snap.Enabled)
		if prev == nil || cfg.ViewportSize() != prev.ViewportSize() {
			return r.desktop.SetViewport(cfg.ViewportSize())
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return fmt.Errorf("apply config: %w", err)
	}
	if r.metrics != nil {
		r.metrics.SetEnabled(cfg.Telemetry.Enabled)
	}

	if prev != nil {
		if diff, err := config.Diff(prev, cfg); err == nil && diff != "" {
			r.logger.Debugf("config diff:\n%s", diff)
		}
		if !cmp.Equal(prev.Windows, cfg.Windows) {
			r.logger.Warnf("window catalog changes take effect after restart")
		}
		if prev.Bridge.Listen != cfg.Bridge.Listen {
			r.logger.Warnf("bridge.listen changes take effect after restart")
		}
	}

	r.lastConfig = cfg
	r.lastSerialized = append([]byte(nil), raw...)
	r.logger.Infof("config reloaded")
	return nil
}

func (r *configReloader) logDiff(current []byte) {
	diff := config.DiffSerialized(r.lastSerialized, current)
	if diff == "" {
		r.logger.Warnf("config change rejected; unable to compute diff vs last valid config")
		return
	}
	r.logger.Warnf("config change rejected; diff vs last valid config:\n%s", diff)
}

func (r *configReloader) logLintErrors(errs []config.LintError) {
	var blocking []config.LintError
	for _, e := range errs {
		if e.Severity == config.SeverityError {
			blocking = append(blocking, e)
		}
	}
	if len(blocking) == 0 {
		return
	}
	r.logger.Warnf("config validation failed with %d issue(s):", len(blocking))
	for _, lintErr := range blocking {
		if lintErr.Path != "" {
			r.logger.Warnf(" - %s: %s", lintErr.Path, lintErr.Message)
			continue
		}
		r.logger.Warnf(" - %s", lintErr.Message)
	}
}

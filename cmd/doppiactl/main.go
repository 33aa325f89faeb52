package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/essedev/doppia.os/internal/config"
	"github.com/essedev/doppia.os/internal/control/client"
	"github.com/essedev/doppia.os/internal/layout"
	"github.com/essedev/doppia.os/internal/state"
	"github.com/essedev/doppia.os/internal/ui/tui"
)

var (
	okColor      = color.New(color.FgGreen).SprintFunc()
	warnColor    = color.New(color.FgYellow).SprintFunc()
	errColor     = color.New(color.FgRed, color.Bold).SprintFunc()
	focusColor   = color.New(color.FgCyan, color.Bold).SprintFunc()
	headerColor  = color.New(color.FgWhite, color.Underline).SprintFunc()
	dimColor     = color.New(color.FgHiBlack).SprintFunc()
	snappedColor = color.New(color.FgMagenta).SprintFunc()
)

type globalOptions struct {
	socket  string
	timeout time.Duration
	noColor bool
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &globalOptions{timeout: 3 * time.Second}
	cmd := &cobra.Command{
		Use:           "doppiactl",
		Short:         "Control a running doppia desktop",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			if opts.noColor {
				color.NoColor = true
			}
		},
	}
	cmd.PersistentFlags().StringVar(&opts.socket, "socket", "", "path to doppia control socket")
	cmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", opts.timeout, "control request timeout")
	cmd.PersistentFlags().BoolVar(&opts.noColor, "no-color", false, "disable colored output")

	cmd.AddCommand(
		newStatusCommand(opts),
		newWindowsCommand(opts),
		newWindowActionCommand(opts, "focus", "Bring a window to the front", (*client.Client).Focus),
		newWindowActionCommand(opts, "minimize", "Hide a window", (*client.Client).Minimize),
		newWindowActionCommand(opts, "restore", "Show a minimized window", (*client.Client).Restore),
		newWindowActionCommand(opts, "maximize", "Toggle maximize on a window", (*client.Client).ToggleMaximize),
		newWindowActionCommand(opts, "unsnap", "Return a docked window to its floating geometry", (*client.Client).Unsnap),
		newWindowActionCommand(opts, "open", "Open a catalog window", (*client.Client).Open),
		newWindowActionCommand(opts, "close", "Close a window", (*client.Client).CloseWindow),
		newSnapCommand(opts),
		newViewportCommand(opts),
		newMetricsCommand(opts),
		newReloadCommand(opts),
		newCheckCommand(),
		newTUICommand(opts),
	)
	return cmd
}

func (o *globalOptions) client() (*client.Client, error) {
	cli, err := client.New(o.socket)
	if err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}
	return cli, nil
}

func (o *globalOptions) context(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if o.timeout > 0 {
		return context.WithTimeout(ctx, o.timeout)
	}
	return context.WithCancel(ctx)
}

func newStatusCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show viewport, margins and focus",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cli, err := opts.client()
			if err != nil {
				return err
			}
			ctx, cancel := opts.context(cmd)
			defer cancel()
			status, err := cli.Status(ctx)
			if err != nil {
				return err
			}
			printStatus(cmd.OutOrStdout(), status)
			return nil
		},
	}
}

func printStatus(w io.Writer, status client.Status) {
	focused := status.Focused
	if focused == "" {
		focused = dimColor("(none)")
	} else {
		focused = focusColor(focused)
	}
	snapping := warnColor("off")
	if status.SnapEnabled {
		snapping = okColor("on")
	}
	fmt.Fprintf(w, "viewport:  %.0fx%.0f\n", status.Viewport.Width, status.Viewport.Height)
	fmt.Fprintf(w, "margins:   offset %.0f, nav %.0f\n", status.Offset, status.NavHeight)
	fmt.Fprintf(w, "snapping:  %s\n", snapping)
	fmt.Fprintf(w, "windows:   %d (%d preview)\n", status.Windows, status.Previews)
	fmt.Fprintf(w, "focused:   %s\n", focused)
	fmt.Fprintf(w, "version:   %d\n", status.Version)
}

func newWindowsCommand(opts *globalOptions) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "windows",
		Short: "List windows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cli, err := opts.client()
			if err != nil {
				return err
			}
			ctx, cancel := opts.context(cmd)
			defer cancel()
			list, err := cli.Windows(ctx)
			if err != nil {
				return err
			}
			printWindows(cmd.OutOrStdout(), list.Windows, all)
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "include closed windows and snap previews")
	return cmd
}

func printWindows(w io.Writer, records []state.WindowRecord, all bool) {
	rows := make([]state.WindowRecord, 0, len(records))
	for _, rec := range records {
		if !all && (rec.IsPreview || !rec.Active) {
			continue
		}
		rows = append(rows, rec)
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Pos.Z > rows[j].Pos.Z })
	focused, hasFocus := state.Focused(records)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, headerColor("ID")+"\t"+headerColor("NAME")+"\t"+headerColor("GEOMETRY")+"\t"+headerColor("Z")+"\t"+headerColor("STATE"))
	for _, rec := range rows {
		id := rec.ID
		if hasFocus && rec.ID == focused.ID {
			id = focusColor(id)
		}
		fmt.Fprintf(tw, "%s\t%s\t%.0fx%.0f @ %.0f,%.0f\t%d\t%s\n",
			id, rec.Name, rec.Size.W, rec.Size.H, rec.Pos.X, rec.Pos.Y, rec.Pos.Z, describeState(rec))
	}
	tw.Flush()
}

func describeState(rec state.WindowRecord) string {
	switch {
	case rec.IsPreview:
		return dimColor("preview for " + rec.PreviewFor)
	case !rec.Active:
		return dimColor("closed")
	case rec.IsMinimized:
		return warnColor("minimized")
	case rec.IsMaximized:
		return okColor("maximized")
	case rec.Snapped():
		return snappedColor("snapped " + string(rec.SnapType))
	}
	return "floating"
}

func newWindowActionCommand(opts *globalOptions, use, short string, action func(*client.Client, context.Context, string) error) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <window>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cli, err := opts.client()
			if err != nil {
				return err
			}
			ctx, cancel := opts.context(cmd)
			defer cancel()
			return action(cli, ctx, args[0])
		},
	}
}

func newSnapCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:       "snap <window> <zone>",
		Short:     "Dock a window into a screen region",
		Long:      "Dock a window. Zones: top, left, right, top-left, top-right, bottom-left, bottom-right, none.",
		Args:      cobra.ExactArgs(2),
		ValidArgs: snapZoneNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			zone, err := state.ParseSnapType(args[1])
			if err != nil {
				return err
			}
			cli, err := opts.client()
			if err != nil {
				return err
			}
			ctx, cancel := opts.context(cmd)
			defer cancel()
			if zone == state.SnapNone {
				return cli.Unsnap(ctx, args[0])
			}
			return cli.Snap(ctx, args[0], zone)
		},
	}
}

func snapZoneNames() []string {
	names := make([]string, 0, len(state.SnapTypes)+1)
	for _, t := range state.SnapTypes {
		names = append(names, string(t))
	}
	return append(names, string(state.SnapNone))
}

func newViewportCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "viewport <width> <height>",
		Short: "Resize the page",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			vp, err := parseViewport(args[0], args[1])
			if err != nil {
				return err
			}
			cli, err := opts.client()
			if err != nil {
				return err
			}
			ctx, cancel := opts.context(cmd)
			defer cancel()
			return cli.SetViewport(ctx, vp)
		},
	}
}

func parseViewport(width, height string) (layout.Viewport, error) {
	w, err := strconv.ParseFloat(width, 64)
	if err != nil {
		return layout.Viewport{}, fmt.Errorf("invalid width %q: %w", width, err)
	}
	h, err := strconv.ParseFloat(height, 64)
	if err != nil {
		return layout.Viewport{}, fmt.Errorf("invalid height %q: %w", height, err)
	}
	if w <= 0 || h <= 0 {
		return layout.Viewport{}, fmt.Errorf("viewport must be positive, got %vx%v", w, h)
	}
	return layout.Viewport{Width: w, Height: h}, nil
}

func newMetricsCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "metrics",
		Short: "Show interaction counters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cli, err := opts.client()
			if err != nil {
				return err
			}
			ctx, cancel := opts.context(cmd)
			defer cancel()
			snapshot, err := cli.Metrics(ctx)
			if err != nil {
				return err
			}
			printMetrics(cmd.OutOrStdout(), snapshot)
			return nil
		},
	}
}

func printMetrics(w io.Writer, snapshot client.MetricsSnapshot) {
	if !snapshot.Enabled {
		fmt.Fprintln(w, warnColor("telemetry disabled"))
		return
	}
	t := snapshot.Totals
	fmt.Fprintf(w, "totals: drags %d, resizes %d, snaps %d, maximizes %d, minimizes %d, focuses %d\n",
		t.Drags, t.Resizes, t.Snaps, t.Maximizes, t.Minimizes, t.Focuses)
	if len(snapshot.Windows) == 0 {
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, headerColor("WINDOW")+"\t"+headerColor("DRAGS")+"\t"+headerColor("RESIZES")+"\t"+headerColor("SNAPS")+"\t"+headerColor("FOCUSES"))
	for _, m := range snapshot.Windows {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\n", m.Window, m.Drags, m.Resizes, m.Snaps, m.Focuses)
	}
	tw.Flush()
}

func newReloadCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reload",
		Short: "Trigger a live config reload",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cli, err := opts.client()
			if err != nil {
				return err
			}
			ctx, cancel := opts.context(cmd)
			defer cancel()
			if err := cli.Reload(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), okColor("config reloaded"))
			return nil
		},
	}
}

func newCheckCommand() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate a configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if configPath == "" {
				return fmt.Errorf("check requires --config <path>")
			}
			return runCheck(configPath, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "path to configuration file")
	return cmd
}

func runCheck(configPath string, stdout, stderr io.Writer) error {
	lintErrs, err := config.LintFile(configPath)
	if err != nil {
		return err
	}
	errorsFound := 0
	for _, lintErr := range lintErrs {
		if lintErr.Severity == config.SeverityError {
			errorsFound++
		}
	}
	if errorsFound == 0 {
		for _, lintErr := range lintErrs {
			fmt.Fprintf(stderr, "%s %s\n", warnColor("warning:"), lintErr.Error())
		}
		fmt.Fprintln(stdout, okColor("Configuration OK"))
		return nil
	}

	fmt.Fprintf(stderr, "Configuration has %d issue(s):\n", len(lintErrs))
	for _, lintErr := range lintErrs {
		label := warnColor("warning")
		if lintErr.Severity == config.SeverityError {
			label = errColor("error")
		}
		fmt.Fprintf(stderr, "- %s %s\n", label, lintErr.Error())
	}
	return fmt.Errorf("configuration validation failed")
}

func newTUICommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Launch the live dashboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cli, err := opts.client()
			if err != nil {
				return err
			}
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			renderer := tui.New(cli, cmd.OutOrStdout())
			if err := renderer.Run(ctx); err != nil && ctx.Err() == nil {
				return err
			}
			return nil
		},
	}
}

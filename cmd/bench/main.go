package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"

	"github.com/essedev/doppia.os/internal/config"
	"github.com/essedev/doppia.os/internal/desktop"
	"github.com/essedev/doppia.os/internal/layout"
	"github.com/essedev/doppia.os/internal/metrics"
	"github.com/essedev/doppia.os/internal/state"
	"github.com/essedev/doppia.os/internal/surface"
	"github.com/essedev/doppia.os/internal/util"
)

type benchFixture struct {
	Name     string
	Viewport layout.Viewport
	Windows  config.WindowList
	Events   []benchEvent
}

type benchEvent struct {
	Kind  surface.EventType
	X, Y  float64
	Delay time.Duration
}

func (e benchEvent) event() *surface.Event {
	ev := &surface.Event{Type: e.Kind, X: e.X, Y: e.Y, Button: surface.PrimaryButton}
	if e.Kind.IsTouch() {
		p := layout.Point{X: e.X, Y: e.Y}
		ev.ChangedTouches = []layout.Point{p}
		if e.Kind != surface.TouchEnd {
			ev.Touches = []layout.Point{p}
		}
	}
	return ev
}

type benchLatencyStats struct {
	Min    float64 `json:"minMs"`
	Mean   float64 `json:"meanMs"`
	Median float64 `json:"medianMs"`
	P95    float64 `json:"p95Ms"`
	Max    float64 `json:"maxMs"`
}

type benchAllocationStats struct {
	Total               uint64  `json:"totalAllocations"`
	PerEvent            float64 `json:"allocationsPerEvent"`
	BytesTotal          uint64  `json:"bytesTotal"`
	BytesPerEvent       float64 `json:"bytesPerEvent"`
	MiBTotal            float64 `json:"miBTotal"`
	MiBPerEvent         float64 `json:"miBPerEvent"`
	HeapAllocStart      uint64  `json:"heapAllocStartBytes"`
	HeapAllocEnd        uint64  `json:"heapAllocEndBytes"`
	HeapAllocDelta      int64   `json:"heapAllocDeltaBytes"`
	HeapAllocPerEvent   float64 `json:"heapAllocDeltaPerEvent"`
	HeapObjectsStart    uint64  `json:"heapObjectsStart"`
	HeapObjectsEnd      uint64  `json:"heapObjectsEnd"`
	HeapObjectsDelta    int64   `json:"heapObjectsDelta"`
	HeapObjectsPerEvent float64 `json:"heapObjectsPerEvent"`
}

type benchUpdateStats struct {
	Total        int     `json:"total"`
	PerIteration float64 `json:"perIteration"`
	PerEvent     float64 `json:"perEvent"`
}

type benchSummary struct {
	RunID              string               `json:"runId"`
	Fixture            string               `json:"fixture"`
	Windows            int                  `json:"windows"`
	Iterations         int                  `json:"iterations"`
	EventsPerIteration int                  `json:"eventsPerIteration"`
	TotalEvents        int                  `json:"totalEvents"`
	WarmupIterations   int                  `json:"warmupIterations"`
	StoreUpdates       benchUpdateStats     `json:"storeUpdates"`
	Latency            benchLatencyStats    `json:"latency"`
	IterationDuration  benchLatencyStats    `json:"iterationDuration"`
	Allocations        benchAllocationStats `json:"allocations"`
	TotalDurationMs    float64              `json:"totalDurationMs"`
	EventsPerSecond    float64              `json:"eventsPerSecond"`
}

type benchReport struct {
	Summary     benchSummary     `json:"summary"`
	DurationsMs []float64        `json:"durationsMs"`
	Iterations  []benchIteration `json:"iterations,omitempty"`
}

type benchIteration struct {
	Index        int     `json:"index"`
	DurationMs   float64 `json:"durationMs"`
	StoreUpdates int     `json:"storeUpdates"`
	Events       int     `json:"events"`
}

type benchEventTrace struct {
	Iteration    int     `json:"iteration"`
	EventIndex   int     `json:"eventIndex"`
	Kind         string  `json:"kind"`
	X            float64 `json:"x"`
	Y            float64 `json:"y"`
	DurationMs   float64 `json:"durationMs"`
	StoreUpdates int     `json:"storeUpdates"`
}

type iterationResult struct {
	duration  time.Duration
	updates   int
	durations []time.Duration
	traces    []benchEventTrace
	final     []state.WindowRecord
}

func main() {
	defaultFixturePath := filepath.Join("fixtures", "drag.json")

	cfgPath := flag.String("config", "", "path to YAML config (defaults to the built-in catalog)")
	fixturePath := flag.String("fixture", defaultFixturePath, "path to replay fixture (JSON or pointer event log)")
	iterations := flag.Int("iterations", 10, "number of times to replay the fixture")
	warmup := flag.Int("warmup", 0, "number of warm-up iterations to run before timing")
	cpuProfile := flag.String("cpu-profile", "", "write CPU profile to file")
	memProfile := flag.String("mem-profile", "", "write heap profile to file")
	logLevel := flag.String("log-level", "warn", "log level (trace|debug|info|warn|error)")
	respectDelays := flag.Bool("respect-delays", false, "sleep for event delays declared in the fixture")
	outputPath := flag.String("output", "-", "write JSON report to file ('-' for stdout)")
	humanSummary := flag.Bool("human", false, "print a tabular summary alongside the JSON output")
	eventTracePath := flag.String("event-trace", "", "write per-event timings to file (JSON array, '-' for stdout)")
	flag.Parse()

	if *iterations <= 0 {
		fmt.Fprintln(os.Stderr, "iterations must be positive")
		os.Exit(1)
	}
	if *warmup < 0 {
		fmt.Fprintln(os.Stderr, "warmup must be zero or positive")
		os.Exit(1)
	}

	logger := util.NewLogger(util.ParseLogLevel(*logLevel))
	traceEnabled := strings.TrimSpace(*eventTracePath) != ""

	cfg := config.Default()
	if *cfgPath != "" {
		loaded, err := config.Load(*cfgPath)
		if err != nil {
			exitErr(fmt.Errorf("load config: %w", err))
		}
		cfg = loaded
	}

	fixture := defaultFixture()
	if *fixturePath != "" {
		loaded, loadErr := loadFixture(*fixturePath, fixture)
		if loadErr != nil {
			if errors.Is(loadErr, fs.ErrNotExist) && *fixturePath == defaultFixturePath {
				logger.Warnf("fixture %s not found, using built-in synthetic stream", *fixturePath)
			} else {
				exitErr(fmt.Errorf("load fixture: %w", loadErr))
			}
		} else {
			fixture = loaded
		}
	}
	if len(fixture.Windows) == 0 {
		fixture.Windows = cfg.Windows
	}
	if len(fixture.Events) == 0 {
		exitErr(errors.New("fixture contains no events"))
	}

	if *cpuProfile != "" {
		f, err := os.Create(*cpuProfile)
		if err != nil {
			exitErr(fmt.Errorf("create cpu profile: %w", err))
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			exitErr(fmt.Errorf("start cpu profile: %w", err))
		}
		defer pprof.StopCPUProfile()
	}

	for i := 0; i < *warmup; i++ {
		replayIteration(fixture, cfg, logger, *respectDelays, i+1, false, false)
	}

	runtime.GC()
	var startMem runtime.MemStats
	runtime.ReadMemStats(&startMem)

	eventsPerIteration := len(fixture.Events)
	durations := make([]time.Duration, 0, eventsPerIteration*(*iterations))
	iterationDurations := make([]time.Duration, 0, *iterations)
	iterationUpdates := make([]int, 0, *iterations)
	totalUpdates := 0
	var eventTraces []benchEventTrace

	for i := 0; i < *iterations; i++ {
		res := replayIteration(fixture, cfg, logger, *respectDelays, i+1, true, traceEnabled)
		iterationDurations = append(iterationDurations, res.duration)
		iterationUpdates = append(iterationUpdates, res.updates)
		totalUpdates += res.updates
		durations = append(durations, res.durations...)
		eventTraces = append(eventTraces, res.traces...)
	}

	runtime.GC()
	var endMem runtime.MemStats
	runtime.ReadMemStats(&endMem)

	if *memProfile != "" {
		f, err := os.Create(*memProfile)
		if err != nil {
			exitErr(fmt.Errorf("create mem profile: %w", err))
		}
		defer f.Close()
		runtime.GC()
		if err := pprof.WriteHeapProfile(f); err != nil {
			exitErr(fmt.Errorf("write heap profile: %w", err))
		}
	}

	report := buildReport(uuid.NewString(), fixture, *iterations, *warmup, durations, iterationDurations, iterationUpdates, totalUpdates, startMem, endMem)
	if err := writeReport(report, *outputPath); err != nil {
		exitErr(fmt.Errorf("encode report: %w", err))
	}
	if err := writeEventTrace(eventTraces, *eventTracePath); err != nil {
		exitErr(fmt.Errorf("write event trace: %w", err))
	}
	if *humanSummary {
		if err := printHumanSummary(report.Summary, os.Stdout); err != nil {
			exitErr(fmt.Errorf("print human summary: %w", err))
		}
	}
}

// replayIteration seeds a fresh desktop and delivers every fixture event to
// it on the calling goroutine.
func replayIteration(fixture benchFixture, cfg *config.Config, logger *util.Logger, respectDelays bool, iteration int, capture bool, trace bool) iterationResult {
	iterationStart := time.Now()
	seed := (&config.Config{Windows: fixture.Windows}).Catalog()
	store := state.NewStore(state.Seed(seed))
	viewport := fixture.Viewport
	if viewport.Width <= 0 || viewport.Height <= 0 {
		viewport = cfg.ViewportSize()
	}
	desk := desktop.New(store, logger, metrics.NewCollector(cfg.Telemetry.Enabled), desktop.Params{
		Viewport:    viewport,
		Margins:     cfg.Margins(),
		SnapEnabled: cfg.Snap.Enabled,
	})
	defer desk.Close()

	updates := 0
	unsubscribe := store.Subscribe(func([]state.WindowRecord) { updates++ })
	defer unsubscribe()
	// Subscribe reports the current snapshot once.
	updates = 0

	var res iterationResult
	if capture {
		res.durations = make([]time.Duration, 0, len(fixture.Events))
	}
	if capture && trace {
		res.traces = make([]benchEventTrace, 0, len(fixture.Events))
	}

	for idx, ev := range fixture.Events {
		if respectDelays && ev.Delay > 0 {
			time.Sleep(ev.Delay)
		}
		before := updates
		start := time.Now()
		desk.Deliver(ev.event())
		elapsed := time.Since(start)
		if capture {
			res.durations = append(res.durations, elapsed)
			if trace {
				res.traces = append(res.traces, benchEventTrace{
					Iteration:    iteration,
					EventIndex:   idx + 1,
					Kind:         string(ev.Kind),
					X:            ev.X,
					Y:            ev.Y,
					DurationMs:   toMillis(elapsed),
					StoreUpdates: updates - before,
				})
			}
		}
	}

	res.duration = time.Since(iterationStart)
	res.updates = updates
	res.final = store.Snapshot()
	return res
}

func buildReport(runID string, fixture benchFixture, iterations int, warmup int, durations []time.Duration, iterationDurations []time.Duration, iterationUpdates []int, updates int, start, end runtime.MemStats) benchReport {
	totalEvents := len(fixture.Events) * iterations
	latencyStats, totalEventDuration := buildLatencyStats(durations)
	iterationStats, _ := buildLatencyStats(iterationDurations)

	allocs := end.Mallocs - start.Mallocs
	allocsPerEvent := float64(allocs)
	if totalEvents > 0 {
		allocsPerEvent = float64(allocs) / float64(totalEvents)
	}
	bytesAllocated := end.TotalAlloc - start.TotalAlloc
	bytesPerEvent := float64(bytesAllocated)
	if totalEvents > 0 {
		bytesPerEvent = float64(bytesAllocated) / float64(totalEvents)
	}

	heapAllocDelta := int64(end.HeapAlloc) - int64(start.HeapAlloc)
	heapAllocPerEvent := float64(heapAllocDelta)
	if totalEvents > 0 {
		heapAllocPerEvent = float64(heapAllocDelta) / float64(totalEvents)
	}
	heapObjectsDelta := int64(end.HeapObjects) - int64(start.HeapObjects)
	heapObjectsPerEvent := float64(heapObjectsDelta)
	if totalEvents > 0 {
		heapObjectsPerEvent = float64(heapObjectsDelta) / float64(totalEvents)
	}

	durationsMs := make([]float64, len(durations))
	for i, d := range durations {
		durationsMs[i] = toMillis(d)
	}

	iterationsData := make([]benchIteration, 0, len(iterationDurations))
	for i, d := range iterationDurations {
		count := 0
		if i < len(iterationUpdates) {
			count = iterationUpdates[i]
		}
		iterationsData = append(iterationsData, benchIteration{
			Index:        i + 1,
			DurationMs:   toMillis(d),
			StoreUpdates: count,
			Events:       len(fixture.Events),
		})
	}

	summary := benchSummary{
		RunID:              runID,
		Fixture:            fixture.Name,
		Windows:            len(fixture.Windows),
		Iterations:         iterations,
		WarmupIterations:   warmup,
		EventsPerIteration: len(fixture.Events),
		TotalEvents:        totalEvents,
		StoreUpdates: benchUpdateStats{
			Total:        updates,
			PerIteration: safeDivide(updates, iterations),
			PerEvent:     safeDivide(updates, totalEvents),
		},
		Latency:           latencyStats,
		IterationDuration: iterationStats,
		Allocations: benchAllocationStats{
			Total:               allocs,
			PerEvent:            allocsPerEvent,
			BytesTotal:          bytesAllocated,
			BytesPerEvent:       bytesPerEvent,
			MiBTotal:            float64(bytesAllocated) / (1024 * 1024),
			MiBPerEvent:         bytesPerEvent / (1024 * 1024),
			HeapAllocStart:      start.HeapAlloc,
			HeapAllocEnd:        end.HeapAlloc,
			HeapAllocDelta:      heapAllocDelta,
			HeapAllocPerEvent:   heapAllocPerEvent,
			HeapObjectsStart:    start.HeapObjects,
			HeapObjectsEnd:      end.HeapObjects,
			HeapObjectsDelta:    heapObjectsDelta,
			HeapObjectsPerEvent: heapObjectsPerEvent,
		},
		TotalDurationMs: toMillis(totalEventDuration),
		EventsPerSecond: eventsPerSecond(totalEventDuration, totalEvents),
	}

	return benchReport{Summary: summary, DurationsMs: durationsMs, Iterations: iterationsData}
}

func buildLatencyStats(durations []time.Duration) (benchLatencyStats, time.Duration) {
	stats := benchLatencyStats{}
	if len(durations) == 0 {
		return stats, 0
	}
	total := time.Duration(0)
	for _, d := range durations {
		total += d
	}
	mean := total / time.Duration(len(durations))
	sorted := append([]time.Duration(nil), durations...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	stats.Min = toMillis(sorted[0])
	stats.Mean = toMillis(mean)
	stats.Median = toMillis(percentile(sorted, 0.50))
	stats.P95 = toMillis(percentile(sorted, 0.95))
	stats.Max = toMillis(sorted[len(sorted)-1])
	return stats, total
}

func safeDivide(total int, count int) float64 {
	if count == 0 {
		return 0
	}
	return float64(total) / float64(count)
}

func openOutput(path, what string) (io.Writer, func() error, error) {
	if path == "-" {
		return os.Stdout, func() error { return nil }, nil
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("create %s dir: %w", what, err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

func writeReport(report benchReport, outputPath string) error {
	path := strings.TrimSpace(outputPath)
	if path == "" {
		path = "-"
	}
	w, closeFn, err := openOutput(path, "report")
	if err != nil {
		return err
	}
	defer closeFn()
	return encodeJSON(w, report)
}

func writeEventTrace(events []benchEventTrace, outputPath string) error {
	path := strings.TrimSpace(outputPath)
	if path == "" {
		return nil
	}
	w, closeFn, err := openOutput(path, "event trace")
	if err != nil {
		return err
	}
	defer closeFn()
	if events == nil {
		events = []benchEventTrace{}
	}
	return encodeJSON(w, events)
}

func encodeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printHumanSummary(summary benchSummary, w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	latency := summary.Latency
	iterationLatency := summary.IterationDuration
	allocs := summary.Allocations
	lines := []string{
		fmt.Sprintf("Run:\t%s\n", fallback(summary.RunID, "(unnamed)")),
		fmt.Sprintf("Fixture:\t%s\n", summary.Fixture),
		fmt.Sprintf("Windows:\t%d\n", summary.Windows),
		fmt.Sprintf("Iterations:\t%d\n", summary.Iterations),
		fmt.Sprintf("Warmup iterations:\t%d\n", summary.WarmupIterations),
		fmt.Sprintf("Events/iteration:\t%d\n", summary.EventsPerIteration),
		fmt.Sprintf("Total events:\t%d\n", summary.TotalEvents),
		fmt.Sprintf("Store updates:\t%d (%.2f / iter, %.2f / event)\n", summary.StoreUpdates.Total, summary.StoreUpdates.PerIteration, summary.StoreUpdates.PerEvent),
		fmt.Sprintf("Latency (ms):\tmin %.2f | mean %.2f | median %.2f | p95 %.2f | max %.2f\n", latency.Min, latency.Mean, latency.Median, latency.P95, latency.Max),
		fmt.Sprintf("Iteration duration (ms):\tmin %.2f | mean %.2f | median %.2f | p95 %.2f | max %.2f\n", iterationLatency.Min, iterationLatency.Mean, iterationLatency.Median, iterationLatency.P95, iterationLatency.Max),
		fmt.Sprintf("Allocations:\t%d total (%.2f / event)\n", allocs.Total, allocs.PerEvent),
		fmt.Sprintf("Bytes allocated:\t%s (%.2f / event)\n", formatBytesUnsigned(allocs.BytesTotal), allocs.BytesPerEvent),
		fmt.Sprintf("Heap delta:\t%s change, %d objects (%.2f / event)\n", formatBytesSigned(allocs.HeapAllocDelta), allocs.HeapObjectsDelta, allocs.HeapObjectsPerEvent),
		fmt.Sprintf("Events/sec:\t%.2f\n", summary.EventsPerSecond),
	}
	for _, line := range lines {
		if _, err := io.WriteString(tw, line); err != nil {
			return err
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w)
	return err
}

func formatBytesUnsigned(bytes uint64) string {
	const miB = 1024 * 1024
	if bytes == 0 {
		return "0 B (0.00 MiB)"
	}
	return fmt.Sprintf("%d B (%.2f MiB)", bytes, float64(bytes)/float64(miB))
}

func formatBytesSigned(delta int64) string {
	if delta == 0 {
		return "0 B (0.00 MiB)"
	}
	sign := ""
	if delta < 0 {
		sign = "-"
		delta = -delta
	}
	return sign + formatBytesUnsigned(uint64(delta))
}

func eventsPerSecond(total time.Duration, events int) float64 {
	if total <= 0 || events == 0 {
		return 0
	}
	return float64(events) / total.Seconds()
}

func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[len(sorted)-1]
	}
	idx := int(p*float64(len(sorted)-1) + 0.5)
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

func toMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

// loadFixture reads a JSON fixture or a pointer event log. Fields the file
// leaves out are taken from base.
func loadFixture(path string, base benchFixture) (benchFixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return benchFixture{}, err
	}
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".json" || looksLikeJSON(data) {
		var payload struct {
			Name     string          `json:"name"`
			Viewport layout.Viewport `json:"viewport"`
			Windows  []struct {
				ID     string  `json:"id"`
				Name   string  `json:"name"`
				X      float64 `json:"x"`
				Y      float64 `json:"y"`
				W      float64 `json:"w"`
				H      float64 `json:"h"`
				Active bool    `json:"active"`
			} `json:"windows"`
			Events []struct {
				Kind  string  `json:"kind"`
				X     float64 `json:"x"`
				Y     float64 `json:"y"`
				Delay string  `json:"delay"`
			} `json:"events"`
		}
		if err := json.Unmarshal(data, &payload); err != nil {
			return benchFixture{}, err
		}
		fixture := benchFixture{
			Name:     fallback(payload.Name, filepath.Base(path)),
			Viewport: payload.Viewport,
		}
		for _, w := range payload.Windows {
			fixture.Windows = append(fixture.Windows, config.WindowConfig{
				ID: w.ID, Name: fallback(w.Name, w.ID), Content: w.ID,
				X: w.X, Y: w.Y, W: w.W, H: w.H, Active: w.Active,
			})
		}
		if len(fixture.Windows) == 0 {
			fixture.Windows = append(config.WindowList(nil), base.Windows...)
		}
		if fixture.Viewport.Width <= 0 || fixture.Viewport.Height <= 0 {
			fixture.Viewport = base.Viewport
		}
		for i, ev := range payload.Events {
			kind, err := parseKind(ev.Kind)
			if err != nil {
				return benchFixture{}, fmt.Errorf("events[%d]: %w", i, err)
			}
			delay := time.Duration(0)
			if ev.Delay != "" {
				d, err := time.ParseDuration(ev.Delay)
				if err != nil {
					return benchFixture{}, fmt.Errorf("parse delay %q: %w", ev.Delay, err)
				}
				delay = d
			}
			fixture.Events = append(fixture.Events, benchEvent{Kind: kind, X: ev.X, Y: ev.Y, Delay: delay})
		}
		if len(fixture.Events) == 0 {
			if len(base.Events) == 0 {
				return benchFixture{}, errors.New("fixture contains no events")
			}
			fixture.Events = append([]benchEvent(nil), base.Events...)
		}
		return fixture, nil
	}
	base.Name = filepath.Base(path)
	events, err := parseEventLog(string(data))
	if err != nil {
		return benchFixture{}, err
	}
	base.Events = events
	return base, nil
}

func looksLikeJSON(data []byte) bool {
	return strings.HasPrefix(strings.TrimSpace(string(data)), "{")
}

func parseKind(raw string) (surface.EventType, error) {
	kind := surface.EventType(strings.ToLower(strings.TrimSpace(raw)))
	if !kind.IsNative() {
		return "", fmt.Errorf("unsupported event kind %q", raw)
	}
	return kind, nil
}

// parseEventLog reads one "kind x y" event per line. Blank lines and lines
// starting with # are skipped.
func parseEventLog(input string) ([]benchEvent, error) {
	lines := strings.Split(input, "\n")
	events := make([]benchEvent, 0, len(lines))
	for idx, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		fields := strings.Fields(trimmed)
		if len(fields) != 3 {
			return nil, fmt.Errorf("line %d: want \"kind x y\", got %q", idx+1, trimmed)
		}
		kind, err := parseKind(fields[0])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", idx+1, err)
		}
		x, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: parse x: %w", idx+1, err)
		}
		y, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: parse y: %w", idx+1, err)
		}
		events = append(events, benchEvent{Kind: kind, X: x, Y: y})
	}
	if len(events) == 0 {
		return nil, errors.New("event log produced no events")
	}
	return events, nil
}

// defaultFixture drags "editor" by its title bar into the left snap zone,
// drags it back out and then resizes "terminal" from its bottom-right corner.
func defaultFixture() benchFixture {
	events := []benchEvent{{Kind: surface.MouseDown, X: 150, Y: 110}}
	for x := 140.0; x >= 0; x -= 20 {
		events = append(events, benchEvent{Kind: surface.MouseMove, X: x, Y: 110})
	}
	events = append(events, benchEvent{Kind: surface.MouseUp, X: 0, Y: 110})

	events = append(events, benchEvent{Kind: surface.MouseDown, X: 100, Y: 60})
	for x := 120.0; x <= 400; x += 40 {
		events = append(events, benchEvent{Kind: surface.MouseMove, X: x, Y: 200})
	}
	events = append(events, benchEvent{Kind: surface.MouseUp, X: 400, Y: 200})

	events = append(events, benchEvent{Kind: surface.MouseDown, X: 950, Y: 750})
	for d := 10.0; d <= 100; d += 10 {
		events = append(events, benchEvent{Kind: surface.MouseMove, X: 950 - d, Y: 750 - d})
	}
	events = append(events, benchEvent{Kind: surface.MouseUp, X: 850, Y: 650})

	return benchFixture{
		Name:     "synthetic-drag",
		Viewport: layout.Viewport{Width: 1000, Height: 800},
		Windows: config.WindowList{
			{ID: "editor", Name: "Editor", Content: "editor", X: 100, Y: 100, W: 650, H: 400, Active: true},
			{ID: "terminal", Name: "Terminal", Content: "terminal", X: 300, Y: 350, W: 650, H: 400, Active: true},
		},
		Events: events,
	}
}

func fallback(value, def string) string {
	if strings.TrimSpace(value) != "" {
		return value
	}
	return def
}

func exitErr(err error) {
	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		fmt.Fprintf(os.Stderr, "error: %v\n", pathErr)
	} else {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
	}
	os.Exit(1)
}

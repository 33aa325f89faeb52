package util

import (
	"bytes"
	"strings"
	"testing"
)

func TestParseLogLevel(t *testing.T) {
	tests := map[string]LogLevel{
		"trace": LevelTrace,
		"TRACE": LevelTrace,
		"debug": LevelDebug,
		"info":  LevelInfo,
		"warn":  LevelWarn,
		"error": LevelError,
	}

	for input, want := range tests {
		if got := ParseLogLevel(input); got != want {
			t.Fatalf("ParseLogLevel(%q) = %v, want %v", input, got, want)
		}
	}

	if got := ParseLogLevel("unknown"); got != LevelInfo {
		t.Fatalf("ParseLogLevel default = %v, want %v", got, LevelInfo)
	}
}

func TestLoggerFiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(LevelInfo, &buf)
	logger.Debugf("hidden %d", 1)
	logger.Infof("shown %d", 2)
	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("expected debug message to be filtered, got %q", out)
	}
	if !strings.Contains(out, "[INFO]") || !strings.Contains(out, "shown 2") {
		t.Fatalf("expected info message in output, got %q", out)
	}
}

func TestLoggerTraceLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(LevelDebug, &buf)
	logger.Tracef("drag.move")
	if buf.Len() != 0 {
		t.Fatalf("expected trace to be filtered at debug level, got %q", buf.String())
	}
	logger.SetLevel(LevelTrace)
	if !logger.Enabled(LevelTrace) {
		t.Fatalf("expected trace to be enabled after SetLevel")
	}
	logger.Tracef("drag.move")
	if !strings.Contains(buf.String(), "[TRACE] drag.move") && !strings.Contains(buf.String(), "[TRACE]\tdrag.move") {
		t.Fatalf("expected trace entry, got %q", buf.String())
	}
	if got := logger.Level(); got != LevelTrace {
		t.Fatalf("Level() = %v, want %v", got, LevelTrace)
	}
}

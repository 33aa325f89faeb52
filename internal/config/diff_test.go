package config

import (
	"strings"
	"testing"
)

func TestDiffSerialized(t *testing.T) {
	oldData := []byte("a: 1\nb: 2\n")
	newData := []byte("a: 1\nb: 3\n")

	diff := DiffSerialized(oldData, newData)
	if diff == "" {
		t.Fatalf("expected diff, got empty string")
	}
	if !strings.Contains(diff, "b: 2") || !strings.Contains(diff, "b: 3") {
		t.Fatalf("expected diff to contain both lines, got %s", diff)
	}
	if DiffSerialized(oldData, oldData) != "" {
		t.Fatalf("expected no diff for identical payloads")
	}
}

func TestDiffConfigs(t *testing.T) {
	prev := Default()
	curr := Default()
	curr.Offset = 24

	diff, err := Diff(prev, curr)
	if err != nil {
		t.Fatalf("Diff: %v", err)
	}
	if !strings.Contains(diff, "offset: 24") {
		t.Fatalf("expected offset change in diff, got %s", diff)
	}
	if diff, _ := Diff(prev, Default()); diff != "" {
		t.Fatalf("expected no diff between defaults, got %s", diff)
	}
}

package config

import (
	"fmt"
	"strings"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"
)

// Diff describes how a reloaded configuration differs from the running one.
// The result is empty when nothing changed.
func Diff(previous, current *Config) (string, error) {
	prev, err := yaml.Marshal(previous)
	if err != nil {
		return "", fmt.Errorf("encode previous config: %w", err)
	}
	curr, err := yaml.Marshal(current)
	if err != nil {
		return "", fmt.Errorf("encode current config: %w", err)
	}
	return DiffSerialized(prev, curr), nil
}

// DiffSerialized returns a line diff between two serialized configuration payloads.
func DiffSerialized(previous, current []byte) string {
	return cmp.Diff(splitLines(previous), splitLines(current))
}

func splitLines(data []byte) []string {
	if len(data) == 0 {
		return nil
	}
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return []string{""}
	}
	return strings.Split(text, "\n")
}

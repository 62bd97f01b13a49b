package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewFiltersByLevel(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	logger, err := New(&out, "warn")
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}

	logger.Info().Msg("hidden")
	logger.Warn().Str("file", "a.csv").Msg("shown")

	logged := out.String()
	if strings.Contains(logged, "hidden") {
		t.Fatalf("expected info message to be filtered, got %q", logged)
	}
	if !strings.Contains(logged, "shown") || !strings.Contains(logged, "file=a.csv") {
		t.Fatalf("expected warn message with field, got %q", logged)
	}
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	if _, err := ParseLevel("verbose"); err == nil {
		t.Fatalf("expected unknown level error")
	}
	for _, level := range []string{"", "debug", "INFO", "warn", "error"} {
		if _, err := ParseLevel(level); err != nil {
			t.Fatalf("ParseLevel(%q): %v", level, err)
		}
	}
}

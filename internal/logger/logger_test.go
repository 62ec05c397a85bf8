package logger

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestJSONLevelFiltering(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	log := JSON(&buf, slog.LevelWarn)
	log.Info("dropped")

	if buf.Len() != 0 {
		t.Fatalf("info at warn level wrote %q", buf.String())
	}

	log.Warn("kept", "entry", "Explosion")

	out := buf.String()
	if !strings.Contains(out, `"msg":"kept"`) || !strings.Contains(out, `"entry":"Explosion"`) {
		t.Fatalf("unexpected JSON output %q", out)
	}
}

func TestForFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		format string
		want   string
	}{
		{"json", `"msg":"hello"`},
		{"JSON", `"msg":"hello"`},
		{"text", "msg=hello"},
		{"pretty", colorBold + "INFO "},
		{"", colorBold + "INFO "},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer

			ForFormat(tt.format, &buf, slog.LevelInfo).Info("hello")

			if !strings.Contains(buf.String(), tt.want) {
				t.Fatalf("output=%q, want it to contain %q", buf.String(), tt.want)
			}
		})
	}
}

func TestWithAndGroup(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	log := Pretty(&buf, slog.LevelInfo).With("run", "abc").WithGroup("entry")
	log.Info("exported", "name", "Explosion")

	out := buf.String()
	if !strings.Contains(out, "run=abc") {
		t.Fatalf("missing With attribute in %q", out)
	}

	if !strings.Contains(out, "entry.name=Explosion") {
		t.Fatalf("missing grouped attribute in %q", out)
	}
}

func TestPrettyQuoting(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	log := slog.New(NewPrettyHandler(&buf, nil))
	log.Info("failed", "path", "sfx/Big Bang.wav", "err", errors.New("no data"), "id", "123")

	out := buf.String()
	for _, want := range []string{`path="sfx/Big Bang.wav"`, `err="no data"`, "id=123"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output=%q, want it to contain %s", out, want)
		}
	}
}

func TestPrettyHandlerEnabled(t *testing.T) {
	t.Parallel()

	h := NewPrettyHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelWarn})

	if h.Enabled(context.Background(), slog.LevelInfo) {
		t.Fatal("info enabled at warn level")
	}

	if !h.Enabled(context.Background(), slog.LevelError) {
		t.Fatal("error disabled at warn level")
	}

	if h.WithGroup("") != h {
		t.Fatal("empty group should return the same handler")
	}
}

func TestContextRoundTrip(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	ctx := WithContext(context.Background(), JSON(&buf, slog.LevelInfo))
	FromContext(ctx).Info("via context")

	if !strings.Contains(buf.String(), "via context") {
		t.Fatalf("context logger not used: %q", buf.String())
	}

	// no logger stored: must not panic
	FromContext(context.Background()).Error("dropped")
	OrDiscard(nil).Error("dropped")
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{" warning ", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Fatalf("ParseLevel(%q)=%v, want %v", tt.in, got, tt.want)
		}
	}
}

package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"os"
	"testing"
)

func newTestLogger(buf *bytes.Buffer, level slog.Level) *slog.Logger {
	return slog.New(NewCompactHandler(buf, &slog.HandlerOptions{Level: level}))
}

func TestCompactHandlerFormat(t *testing.T) {
	var buf bytes.Buffer
	log := newTestLogger(&buf, slog.LevelInfo)

	log.Info("parsed csv", "rows", 3, "source", "people list.csv", "durationMs", int64(12), "error", errors.New("boom"))

	line := buf.String()
	for _, want := range []string{
		"[INFO]  ",
		"parsed csv | ",
		"rows=3",
		`source="people list.csv"`,
		"duration=12ms",
		`error="boom"`,
	} {
		if !strings.Contains(line, want) {
			t.Errorf("Expected %q in %q", want, line)
		}
	}
	if !strings.HasSuffix(line, "\n") {
		t.Error("Expected trailing newline")
	}
}

func TestCompactHandlerLevels(t *testing.T) {
	var buf bytes.Buffer
	log := newTestLogger(&buf, slog.LevelWarn)

	log.Info("hidden")
	log.Debug("hidden")
	log.Warn("shown")

	if strings.Contains(buf.String(), "hidden") {
		t.Errorf("Records below the level should be dropped: %q", buf.String())
	}
	if !strings.Contains(buf.String(), "[WARN]  ") {
		t.Errorf("Expected a warn record, got %q", buf.String())
	}
}

func TestCompactHandlerComponentAndAttrs(t *testing.T) {
	var buf bytes.Buffer
	log := newTestLogger(&buf, slog.LevelInfo).With("component", "network", "delimiter", ",")

	log.WithGroup("stats").Info("done", "nodes", 2)

	line := buf.String()
	if !strings.Contains(line, " network: done") {
		t.Errorf("Expected component prefix, got %q", line)
	}
	if !strings.Contains(line, "delimiter=,") {
		t.Errorf("Expected attrs from With, got %q", line)
	}
	if !strings.Contains(line, "stats.nodes=2") {
		t.Errorf("Expected grouped key, got %q", line)
	}
}

func TestCompactHandlerRequestID(t *testing.T) {
	var buf bytes.Buffer
	log := newTestLogger(&buf, slog.LevelInfo)

	log.Info("request", "requestID", "0123456789abcdef")
	if !strings.Contains(buf.String(), "req=01234567") {
		t.Errorf("Expected shortened request id, got %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		verbosity string
		count     int
		want      slog.Level
		wantErr   bool
	}{
		{"", 0, slog.LevelInfo, false},
		{"", 1, slog.LevelDebug, false},
		{"", 3, LevelTrace, false},
		{"warn", 2, slog.LevelWarn, false},
		{"DEBUG", 0, slog.LevelDebug, false},
		{"trace", 0, LevelTrace, false},
		{"error", 0, slog.LevelError, false},
		{"loud", 0, slog.LevelInfo, true},
	}

	for _, tt := range tests {
		got, err := ParseLevel(tt.verbosity, tt.count)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q, %d) error = %v, wantErr %v", tt.verbosity, tt.count, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q, %d) = %v, want %v", tt.verbosity, tt.count, got, tt.want)
		}
	}
}

func TestRequestIDContext(t *testing.T) {
	ctx := WithRequestID(context.Background(), "abc")
	if got := GetRequestID(ctx); got != "abc" {
		t.Errorf("Expected abc, got %q", got)
	}
	if got := GetRequestID(context.Background()); got != "" {
		t.Errorf("Expected empty request id, got %q", got)
	}
}

func TestPackageLoggerOutput(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stdout)

	SetLevel(slog.LevelDebug)
	defer SetLevel(slog.LevelInfo)

	New("source").Debug("fetched", "bytes", 10)
	Info("plain")

	out := buf.String()
	if !strings.Contains(out, "source: fetched | bytes=10") {
		t.Errorf("Expected component logger output, got %q", out)
	}
	if !strings.Contains(out, "plain") {
		t.Errorf("Expected package logger output, got %q", out)
	}
}

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ritzau/influence-graph/pkg/graph"
	"github.com/ritzau/influence-graph/pkg/rows"
)

func load(t *testing.T, args ...string) *Config {
	t.Helper()
	f := Flags("test")
	if err := f.Parse(args); err != nil {
		t.Fatalf("Parse(%v) error = %v", args, err)
	}
	cfg, err := Load(f)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	return cfg
}

func TestLoadDefaults(t *testing.T) {
	cfg := load(t)

	if cfg.Port != 8080 || cfg.Top != 10 || cfg.MaxNodes != 0 {
		t.Errorf("Unexpected defaults: %+v", cfg)
	}
	if !cfg.OpenBrowser || cfg.WebMode || cfg.Watch {
		t.Errorf("Unexpected mode defaults: %+v", cfg)
	}
	if cfg.Debounce != 300*time.Millisecond {
		t.Errorf("Expected 300ms debounce, got %s", cfg.Debounce)
	}
	if got, want := cfg.GraphOptions(), graph.DefaultOptions(); got != want {
		t.Errorf("GraphOptions() = %+v, want %+v", got, want)
	}
}

func TestLoadPriority(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.toml")
	content := `
port = 9000
top = 3
edge-policy = "any-nonempty"
max-nodes = 50

[colors]
"Friends with" = "#000000"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("INFLUENCE_GRAPH_TOP", "7")
	t.Setenv("INFLUENCE_GRAPH_MAX_NODES", "20")

	cfg := load(t, "--config", path, "--max-nodes", "5", "--source", "people.csv")

	if cfg.Port != 9000 {
		t.Errorf("Expected port from file, got %d", cfg.Port)
	}
	if cfg.Top != 7 {
		t.Errorf("Expected env to override file, got top=%d", cfg.Top)
	}
	if cfg.MaxNodes != 5 {
		t.Errorf("Expected flag to override env, got max-nodes=%d", cfg.MaxNodes)
	}
	if cfg.GraphOptions().EdgeTargetPolicy != graph.AnyNonEmpty {
		t.Errorf("Expected edge policy from file, got %q", cfg.EdgePolicy)
	}
	if got := cfg.Legend().Color("Friends with"); got != "#000000" {
		t.Errorf("Expected color override, got %q", got)
	}
	if got := cfg.Legend().Color("Hired"); got == "" || got == "#000000" {
		t.Errorf("Expected default color for Hired, got %q", got)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	f := Flags("test")
	if err := f.Parse([]string{"--config", filepath.Join(t.TempDir(), "missing.toml")}); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(f); err == nil {
		t.Error("Expected error for a missing --config file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"valid report", []string{"-s", "people.csv"}, ""},
		{"web without source", []string{"--web"}, ""},
		{"no source", nil, "no source"},
		{"bad policy", []string{"-s", "a.csv", "--edge-policy", "all"}, "edge target policy"},
		{"bad scheme", []string{"-s", "a.csv", "--id-scheme", "uuid"}, "id scheme"},
		{"bad format", []string{"-s", "a.csv", "--format", "xml"}, "unknown format"},
		{"bad delimiter", []string{"-s", "a.csv", "--delimiter", ";"}, "delimiter"},
		{"negative max", []string{"-s", "a.csv", "--max-nodes", "-1"}, "max-nodes"},
		{"watch url", []string{"-s", "https://example.com/a.csv", "--watch"}, "local file"},
		{"bad port", []string{"--web", "--port", "70000"}, "invalid port"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := load(t, tt.args...).Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidateColors(t *testing.T) {
	cfg := load(t, "-s", "a.csv")
	cfg.Colors = map[string]string{"Hired": "green"}
	if err := cfg.Validate(); err == nil {
		t.Error("Expected error for a non-hex color")
	}
	cfg.Colors = map[string]string{"Hired": "#0f0"}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Short hex color should be valid: %v", err)
	}
}

func TestDelim(t *testing.T) {
	cfg := load(t, "--delimiter", "|")
	d, err := cfg.Delim()
	if err != nil || d != rows.Pipe {
		t.Errorf("Delim() = %q, %v; want '|'", d, err)
	}
}

package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/ritzau/influence-graph/pkg/graph"
	"github.com/ritzau/influence-graph/pkg/graphio"
	"github.com/ritzau/influence-graph/pkg/influence"
	"github.com/ritzau/influence-graph/pkg/lens"
	"github.com/ritzau/influence-graph/pkg/rows"
	"github.com/ritzau/influence-graph/pkg/source"
)

// DefaultFile is read from the working directory when --config is not given.
const DefaultFile = "influence-graph.toml"

// EnvPrefix prefixes environment overrides, e.g. INFLUENCE_GRAPH_MAX_NODES=200.
const EnvPrefix = "INFLUENCE_GRAPH_"

// Config holds all configuration for the application
type Config struct {
	Source      string `koanf:"source"`
	WebMode     bool   `koanf:"web"`
	Port        int    `koanf:"port"`
	Watch       bool   `koanf:"watch"`
	OpenBrowser bool   `koanf:"open"`

	Export   string `koanf:"export"`
	Format   string `koanf:"format"`
	Focus    string `koanf:"focus"`
	MaxNodes int    `koanf:"max-nodes"`
	Top      int    `koanf:"top"`

	Delimiter      string `koanf:"delimiter"`
	EdgePolicy     string `koanf:"edge-policy"`
	IDScheme       string `koanf:"id-scheme"`
	Extraction     string `koanf:"extraction"`
	Ventures       bool   `koanf:"ventures"`
	Connections    bool   `koanf:"connections"`
	MatchLastNames bool   `koanf:"match-last-names"`

	Colors   map[string]string `koanf:"colors"`
	Debounce time.Duration     `koanf:"debounce"`

	LogJSON    bool   `koanf:"log-json"`
	Verbosity  string `koanf:"verbosity"`
	VerboseCnt int    `koanf:"verbose"`
}

func defaults() map[string]interface{} {
	opts := graph.DefaultOptions()
	return map[string]interface{}{
		"source":           "",
		"web":              false,
		"port":             8080,
		"watch":            false,
		"open":             true,
		"export":           "",
		"format":           string(graphio.JSON),
		"focus":            "",
		"max-nodes":        0,
		"top":              10,
		"delimiter":        ",",
		"edge-policy":      string(opts.EdgeTargetPolicy),
		"id-scheme":        string(opts.IDScheme),
		"extraction":       string(opts.Extraction),
		"ventures":         opts.DeriveEdgesFromVentures,
		"connections":      opts.DeriveEdgesFromConnections,
		"match-last-names": opts.MatchLastNames,
		"debounce":         300 * time.Millisecond,
		"log-json":         false,
		"verbosity":        "",
		"verbose":          0,
	}
}

// Flags declares the command-line flags. Flag names are the config keys.
func Flags(name string) *pflag.FlagSet {
	f := pflag.NewFlagSet(name, pflag.ContinueOnError)
	d := defaults()

	f.String("config", "", "Config file (default ./"+DefaultFile+" when present)")
	f.StringP("source", "s", "", "CSV file path or http(s) URL")
	f.Bool("web", false, "Serve the HTTP API instead of printing a report")
	f.IntP("port", "p", d["port"].(int), "Port for the web server")
	f.BoolP("watch", "w", false, "Re-parse when the source file changes")
	f.Bool("open", true, "Open the browser in web mode")

	f.StringP("export", "o", "", "Write the graph to PATH ('-' for stdout)")
	f.String("format", string(graphio.JSON), "Export format: json or yaml")
	f.String("focus", "", "Limit the graph to the component containing this node id")
	f.Int("max-nodes", 0, "Keep only the N most connected nodes (0 keeps all)")
	f.Int("top", d["top"].(int), "Number of ranked nodes in the report")

	f.String("delimiter", ",", "Field delimiter: ',' or '|'")
	f.String("edge-policy", d["edge-policy"].(string), "Edge targets: primary-only or any-nonempty")
	f.String("id-scheme", d["id-scheme"].(string), "Node ids: raw-name or sanitized-slug")
	f.String("extraction", d["extraction"].(string), "Relationship extraction: vocabulary or verbatim")
	f.Bool("ventures", false, "Add edges from people to their ventures")
	f.Bool("connections", false, "Add edges from the Connections column")
	f.Bool("match-last-names", false, "Resolve targets by unique last name")
	f.Duration("debounce", 300*time.Millisecond, "Quiet period before re-parsing a changed file")

	f.Bool("log-json", false, "Log as JSON")
	f.StringP("verbosity", "v", "", "Log level: error, warn, info, debug, trace")
	f.CountP("verbose", "V", "Increase verbosity (repeatable)")
	return f
}

// Load loads configuration from defaults, config file, environment variables, and flags.
// Priority: Flags > Env > Config File > Defaults
func Load(f *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(makeMapProvider(defaults()), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config File (optional)
	path, explicit := DefaultFile, false
	if f != nil {
		if v, err := f.GetString("config"); err == nil && v != "" {
			path, explicit = v, true
		}
	}
	if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	// 3. Environment Variables
	// Prefix: INFLUENCE_GRAPH_ (e.g., INFLUENCE_GRAPH_MAX_NODES=200)
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(
			strings.TrimPrefix(s, EnvPrefix)), "_", "-")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags
	if f != nil {
		if err := k.Load(posflag.Provider(f, ".", k), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	// Unmarshal into struct
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// Validate checks enum values and combinations of settings.
func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.Source) == "" && !c.WebMode {
		errs = append(errs, errors.New("no source given (use --source or web mode)"))
	}
	if c.Watch {
		if c.Source == "" {
			errs = append(errs, errors.New("--watch needs a source file"))
		} else if _, ok := source.New(c.Source).(*source.File); !ok {
			errs = append(errs, fmt.Errorf("--watch needs a local file, got %s", c.Source))
		}
	}
	if c.WebMode && (c.Port <= 0 || c.Port > 65535) {
		errs = append(errs, fmt.Errorf("invalid port %d", c.Port))
	}
	if _, err := graphio.ParseFormat(c.Format); err != nil {
		errs = append(errs, err)
	}
	if c.MaxNodes < 0 {
		errs = append(errs, fmt.Errorf("max-nodes must not be negative, got %d", c.MaxNodes))
	}
	if c.Top < 0 {
		errs = append(errs, fmt.Errorf("top must not be negative, got %d", c.Top))
	}
	if _, err := c.Delim(); err != nil {
		errs = append(errs, err)
	}
	if err := c.GraphOptions().Validate(); err != nil {
		errs = append(errs, err)
	}
	for kind, color := range c.Colors {
		if !validColor(color) {
			errs = append(errs, fmt.Errorf("invalid color %q for %q (want #rgb or #rrggbb)", color, kind))
		}
	}
	if c.Debounce < 0 {
		errs = append(errs, fmt.Errorf("debounce must not be negative, got %s", c.Debounce))
	}

	return errors.Join(errs...)
}

// GraphOptions maps the config onto the graph builder options.
func (c *Config) GraphOptions() graph.Options {
	return graph.Options{
		EdgeTargetPolicy:           graph.EdgeTargetPolicy(c.EdgePolicy),
		DeriveEdgesFromVentures:    c.Ventures,
		DeriveEdgesFromConnections: c.Connections,
		IDScheme:                   graph.IDScheme(c.IDScheme),
		Extraction:                 influence.Scheme(c.Extraction),
		MatchLastNames:             c.MatchLastNames,
	}
}

// Delim returns the row delimiter.
func (c *Config) Delim() (rune, error) {
	switch c.Delimiter {
	case "", ",":
		return rows.Comma, nil
	case "|":
		return rows.Pipe, nil
	}
	return 0, fmt.Errorf("unknown delimiter %q (want ',' or '|')", c.Delimiter)
}

// Legend is the default palette with the configured colors on top.
func (c *Config) Legend() lens.Legend {
	return lens.DefaultLegend().With(c.Colors)
}

func validColor(s string) bool {
	if !strings.HasPrefix(s, "#") || (len(s) != 4 && len(s) != 7) {
		return false
	}
	for _, r := range s[1:] {
		if !strings.ContainsRune("0123456789abcdefABCDEF", r) {
			return false
		}
	}
	return true
}

// Helper to use map as a provider
type mapProvider struct {
	m map[string]interface{}
}

func makeMapProvider(m map[string]interface{}) *mapProvider {
	return &mapProvider{m: m}
}

func (p *mapProvider) Read() (map[string]interface{}, error) {
	return p.m, nil
}

func (p *mapProvider) ReadBytes() ([]byte, error) {
	return nil, fmt.Errorf("not implemented")
}

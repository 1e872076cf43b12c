// Package network turns influence-network CSV text into a graph.
package network

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ritzau/influence-graph/pkg/graph"
	"github.com/ritzau/influence-graph/pkg/influence"
	"github.com/ritzau/influence-graph/pkg/logging"
	"github.com/ritzau/influence-graph/pkg/model"
	"github.com/ritzau/influence-graph/pkg/record"
	"github.com/ritzau/influence-graph/pkg/rows"
)

// ErrEmptyInput is returned when the text is empty or whitespace only.
// A header without data rows is not an error; it yields an empty graph.
var ErrEmptyInput = errors.New("input is empty")

// SkipReason explains why a row did not become a record.
type SkipReason string

const SkipMissingName SkipReason = "missing-name"

// SkippedRow is a row that was left out of the graph.
type SkippedRow struct {
	Line   int        `json:"line"`
	Reason SkipReason `json:"reason"`
}

// Stats describes one parse.
type Stats struct {
	graph.Stats
	Rows          int          `json:"rows"`          // Data rows read, header excluded
	Skipped       []SkippedRow `json:"skipped"`       // Rows that produced no record
	UnparsedItems int          `json:"unparsedItems"` // Influence items that yielded no relationship
	Nodes         int          `json:"nodes"`
	Edges         int          `json:"edges"`
}

// SkippedBy counts skipped rows per reason.
func (s Stats) SkippedBy() map[SkipReason]int {
	counts := make(map[SkipReason]int)
	for _, row := range s.Skipped {
		counts[row.Reason]++
	}
	return counts
}

// Result is a parsed graph and how it was produced.
type Result struct {
	Graph *model.Graph
	Stats Stats
}

// Parser runs the row parser, field decoder, relationship extractor and
// graph builder in sequence.
type Parser struct {
	Delimiter rune // rows.Comma when zero
	Options   graph.Options
	Logger    *slog.Logger // logging.New("network") when nil
}

// NewParser returns a comma-delimited parser with the given options.
func NewParser(opts graph.Options) *Parser {
	return &Parser{Delimiter: rows.Comma, Options: opts}
}

// Parse parses text with the default options.
func Parse(text string) (*Result, error) {
	return NewParser(graph.DefaultOptions()).Parse(text)
}

// Parse builds a graph from CSV text. Only empty input and invalid options
// are errors; malformed rows are skipped and reported in the stats.
func (p *Parser) Parse(text string) (*Result, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyInput
	}
	if err := p.Options.Validate(); err != nil {
		return nil, fmt.Errorf("invalid parser options: %w", err)
	}

	log := p.Logger
	if log == nil {
		log = logging.New("network")
	}
	delim := p.Delimiter
	if delim == 0 {
		delim = rows.Comma
	}

	var stats Stats
	var records []model.Record
	items := 0

	for _, row := range rows.Split(text, delim) {
		stats.Rows++
		rec, err := record.Decode(row)
		if err != nil {
			skip := SkippedRow{Line: row.Line, Reason: reasonFor(err)}
			stats.Skipped = append(stats.Skipped, skip)
			log.Debug("skipping row", "line", skip.Line, "reason", string(skip.Reason))
			continue
		}
		log.Log(context.Background(), logging.LevelTrace, "decoded row", "line", rec.Line, "name", rec.Name)
		items += len(influence.Items(rec.InfluenceRaw))
		records = append(records, rec)
	}

	g, buildStats := graph.Build(records, p.Options)
	stats.Stats = buildStats
	stats.UnparsedItems = items - buildStats.Relationships
	stats.Nodes = len(g.Nodes)
	stats.Edges = len(g.Edges)

	log.Info("parsed network",
		"rows", stats.Rows,
		"skipped", len(stats.Skipped),
		"nodes", stats.Nodes,
		"edges", stats.Edges,
		"placeholders", stats.Placeholders,
		"unparsed", stats.UnparsedItems,
	)

	return &Result{Graph: g, Stats: stats}, nil
}

func reasonFor(err error) SkipReason {
	if errors.Is(err, record.ErrMissingName) {
		return SkipMissingName
	}
	return SkipReason(err.Error())
}

package record

import (
	"errors"
	"strings"

	"github.com/ritzau/influence-graph/pkg/model"
	"github.com/ritzau/influence-graph/pkg/rows"
)

// Column positions of the fixed CSV layout.
const (
	ColName = iota
	ColInfluence
	ColVentures
	ColConnections
	ColQuotes
	ColImage
)

// List separators used inside fields.
const (
	ListSeparator  = ";"
	QuoteSeparator = "|"
)

// ErrMissingName is returned for rows whose Name column is empty.
var ErrMissingName = errors.New("row has no name")

// Decode maps a positional row to a Record.
// Missing trailing columns decode as empty values.
func Decode(row rows.Row) (model.Record, error) {
	name := row.Value(ColName)
	if name == "" {
		return model.Record{}, ErrMissingName
	}

	return model.Record{
		Line:         row.Line,
		Name:         name,
		InfluenceRaw: row.Value(ColInfluence),
		Ventures:     SplitList(row.Value(ColVentures), ListSeparator),
		Connections:  SplitList(row.Value(ColConnections), ListSeparator),
		Quotes:       SplitList(row.Value(ColQuotes), QuoteSeparator),
		Image:        row.Value(ColImage),
	}, nil
}

// SplitList splits s on sep, trims every item and drops empty ones.
// An empty input yields an empty, non-nil slice.
func SplitList(s, sep string) []string {
	items := []string{}
	if strings.TrimSpace(s) == "" {
		return items
	}
	for _, item := range strings.Split(s, sep) {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

// NormalizeImagePath rewrites a /public/ asset prefix to the served root.
// The graph keeps images as written; consumers call this when displaying.
func NormalizeImagePath(path string) string {
	return strings.Replace(path, "/public/", "/", 1)
}

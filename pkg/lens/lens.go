package lens

import (
	"sort"
	"strings"

	"github.com/ritzau/influence-graph/pkg/model"
)

// Filter narrows a graph down to what the viewer asked for. The zero Filter
// keeps everything.
type Filter struct {
	Search        string   `json:"search,omitempty"`        // Case-insensitive substring of the node name
	Ventures      []string `json:"ventures,omitempty"`      // Keep nodes with any of these ventures
	Relationships []string `json:"relationships,omitempty"` // Keep edges of these types and their nodes
}

// IsZero reports whether the filter keeps every node and edge.
func (f Filter) IsZero() bool {
	return strings.TrimSpace(f.Search) == "" && len(f.Ventures) == 0 && len(f.Relationships) == 0
}

// Apply returns the filtered copy of g. A node stays when it matches the
// search, has a selected venture and touches an edge of a selected type; an
// edge stays when its type is selected and both endpoints stay.
func (f Filter) Apply(g *model.Graph) *model.Graph {
	search := strings.ToLower(strings.TrimSpace(f.Search))
	ventures := toSet(f.Ventures)
	relationships := toSet(f.Relationships)

	edgeSelected := func(e *model.Edge) bool {
		return len(relationships) == 0 || relationships[e.Type]
	}

	touched := make(map[string]bool)
	for _, e := range g.Edges {
		if edgeSelected(e) {
			touched[e.Source] = true
			touched[e.Target] = true
		}
	}

	out := model.NewGraph()
	for _, n := range g.Nodes {
		if search != "" && !strings.Contains(strings.ToLower(displayName(n)), search) {
			continue
		}
		if len(ventures) > 0 && !hasAny(n.Ventures, ventures) {
			continue
		}
		if len(relationships) > 0 && !touched[n.ID] {
			continue
		}
		out.AddNode(n.Clone())
	}

	for _, e := range g.Edges {
		if edgeSelected(e) && out.HasNode(e.Source) && out.HasNode(e.Target) {
			c := *e
			out.AddEdge(&c)
		}
	}
	return out
}

func displayName(n *model.Node) string {
	if n.Name != "" {
		return n.Name
	}
	return n.ID
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			set[item] = true
		}
	}
	return set
}

func hasAny(items []string, set map[string]bool) bool {
	for _, item := range items {
		if set[item] {
			return true
		}
	}
	return false
}

// DefaultColor is used for relationship types without a color of their own.
const DefaultColor = "#95A5A6"

// Legend maps relationship types to display colors. It is plain
// configuration handed to whoever renders the graph.
type Legend struct {
	Colors  map[string]string `json:"colors"`
	Default string            `json:"default"`
}

// Entry is one row of the legend.
type Entry struct {
	Type  string `json:"type"`
	Color string `json:"color"`
}

// DefaultLegend returns the standard palette for the relationship vocabulary.
func DefaultLegend() Legend {
	return Legend{
		Colors: map[string]string{
			"Friends with":   "#4285F4",
			"Hired":          "#34A853",
			"Appointed":      "#FBBC05",
			"Worked for":     "#EA4335",
			"Donated to":     "#8E44AD",
			"Founded":        "#F39C12",
			"Recommended":    "#1ABC9C",
			"Contributed to": "#E74C3C",
		},
		Default: DefaultColor,
	}
}

// With returns a copy of the legend with overrides applied on top.
func (l Legend) With(overrides map[string]string) Legend {
	colors := make(map[string]string, len(l.Colors)+len(overrides))
	for k, v := range l.Colors {
		colors[k] = v
	}
	for k, v := range overrides {
		colors[k] = v
	}
	out := Legend{Colors: colors, Default: l.Default}
	if out.Default == "" {
		out.Default = DefaultColor
	}
	return out
}

// Color returns the color for a relationship type.
func (l Legend) Color(relationship string) string {
	if c, ok := l.Colors[relationship]; ok {
		return c
	}
	if l.Default != "" {
		return l.Default
	}
	return DefaultColor
}

// Entries lists the legend sorted by relationship type.
func (l Legend) Entries() []Entry {
	entries := make([]Entry, 0, len(l.Colors))
	for typ, color := range l.Colors {
		entries = append(entries, Entry{Type: typ, Color: color})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Type < entries[j].Type })
	return entries
}

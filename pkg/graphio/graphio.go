// Package graphio exports graphs and loads them back.
package graphio

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ritzau/influence-graph/pkg/model"
)

// Format is a serialization format.
type Format string

const (
	JSON Format = "json"
	YAML Format = "yaml"
)

// ParseFormat accepts "json", "yaml" or "yml". Empty means JSON.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return JSON, nil
	case "yaml", "yml":
		return YAML, nil
	}
	return "", fmt.Errorf("unknown format %q (want json or yaml)", s)
}

// ContentType returns the MIME type for the format.
func (f Format) ContentType() string {
	if f == YAML {
		return "application/yaml"
	}
	return "application/json"
}

// document is the on-disk shape. Links is the key older exports used for
// edges; it is read but never written.
type document struct {
	Nodes []*model.Node `json:"nodes" yaml:"nodes"`
	Edges []*model.Edge `json:"edges" yaml:"edges"`
	Links []*model.Edge `json:"links,omitempty" yaml:"links,omitempty"`
}

// Export writes g in the given format.
func Export(w io.Writer, g *model.Graph, format Format) error {
	doc := document{Nodes: g.Nodes, Edges: g.Edges}
	if doc.Nodes == nil {
		doc.Nodes = []*model.Node{}
	}
	if doc.Edges == nil {
		doc.Edges = []*model.Edge{}
	}

	switch format {
	case JSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encoding json: %w", err)
		}
	case YAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encoding yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("encoding yaml: %w", err)
		}
	default:
		return fmt.Errorf("unknown format %q", format)
	}
	return nil
}

// Load reads a graph written by Export. Edges may come under "edges" or
// "links". The loaded graph is validated, so edges to unknown nodes are an
// error rather than silently dropped.
func Load(r io.Reader, format Format) (*model.Graph, error) {
	var doc document
	switch format {
	case JSON:
		if err := json.NewDecoder(r).Decode(&doc); err != nil {
			return nil, fmt.Errorf("decoding json: %w", err)
		}
	case YAML:
		if err := yaml.NewDecoder(r).Decode(&doc); err != nil && err != io.EOF {
			return nil, fmt.Errorf("decoding yaml: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}

	g := model.NewGraph()
	for _, n := range doc.Nodes {
		if n == nil || n.ID == "" {
			return nil, fmt.Errorf("node without id")
		}
		g.AddNode(n)
	}
	for _, e := range append(doc.Edges, doc.Links...) {
		if e != nil {
			g.AddEdge(e)
		}
	}
	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("loaded graph is inconsistent: %w", err)
	}
	return g, nil
}

package model

import (
	"fmt"
	"strings"
)

// Graph is the node/edge structure handed to the rendering layer.
// Nodes and edges keep insertion order so that repeated parses of the same
// input produce identical output.
type Graph struct {
	Nodes []*Node `json:"nodes" yaml:"nodes"`
	Edges []*Edge `json:"edges" yaml:"edges"`

	index map[string]int
}

// NewGraph creates a new empty graph.
func NewGraph() *Graph {
	return &Graph{
		Nodes: make([]*Node, 0),
		Edges: make([]*Edge, 0),
		index: make(map[string]int),
	}
}

// NodeKind distinguishes people from the ventures they are associated with.
type NodeKind string

const (
	NodeKindPerson  NodeKind = "person"
	NodeKindVenture NodeKind = "venture"
)

// Node is a person or venture in the influence network.
type Node struct {
	ID              string   `json:"id" yaml:"id"`
	Name            string   `json:"name,omitempty" yaml:"name,omitempty"`
	Kind            NodeKind `json:"kind,omitempty" yaml:"kind,omitempty"`
	Ventures        []string `json:"ventures" yaml:"ventures"`
	Quotes          []string `json:"quotes" yaml:"quotes"`
	ConnectionCount int      `json:"connectionCount" yaml:"connectionCount"`
	Image           string   `json:"image,omitempty" yaml:"image,omitempty"`

	// Placeholder is set while the node is known only as an edge endpoint.
	Placeholder bool `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
}

// EdgeOrigin records which CSV column produced an edge.
type EdgeOrigin string

const (
	OriginInfluence  EdgeOrigin = "influence"
	OriginVenture    EdgeOrigin = "venture"
	OriginConnection EdgeOrigin = "connection"
)

// Rank orders origins by specificity. When two edges cover the same pair of
// nodes, the higher ranked origin wins.
func (o EdgeOrigin) Rank() int {
	switch o {
	case OriginInfluence:
		return 3
	case OriginVenture:
		return 2
	case OriginConnection:
		return 1
	default:
		return 0
	}
}

// Edge is a directed, typed relationship between two nodes.
type Edge struct {
	Source   string     `json:"source" yaml:"source"`
	Target   string     `json:"target" yaml:"target"`
	Type     string     `json:"type" yaml:"type"`
	Origin   EdgeOrigin `json:"origin,omitempty" yaml:"origin,omitempty"`
	Category string     `json:"category,omitempty" yaml:"category,omitempty"`
	Amount   string     `json:"amount,omitempty" yaml:"amount,omitempty"`
}

// Key identifies the edge as a (source, target, type) triple.
func (e *Edge) Key() string {
	return e.Source + "\x00" + e.Target + "\x00" + e.Type
}

// PairKey identifies the unordered pair of endpoints.
func (e *Edge) PairKey() string {
	a, b := e.Source, e.Target
	if b < a {
		a, b = b, a
	}
	return a + "\x00" + b
}

// AddNode adds a node to the graph. If a node with the same ID exists, it is
// replaced in place so the original position is kept.
func (g *Graph) AddNode(node *Node) {
	g.ensureIndex()
	normalizeNode(node)
	if i, ok := g.index[node.ID]; ok {
		g.Nodes[i] = node
		return
	}
	g.index[node.ID] = len(g.Nodes)
	g.Nodes = append(g.Nodes, node)
}

// AddEdge appends an edge to the graph. It does not check the endpoints.
func (g *Graph) AddEdge(edge *Edge) {
	g.Edges = append(g.Edges, edge)
}

// Node returns the node with the given id, or nil.
func (g *Graph) Node(id string) *Node {
	g.ensureIndex()
	if i, ok := g.index[id]; ok {
		return g.Nodes[i]
	}
	return nil
}

// HasNode reports whether a node with the given id exists.
func (g *Graph) HasNode(id string) bool {
	return g.Node(id) != nil
}

// NodeIDs returns the set of node ids.
func (g *Graph) NodeIDs() map[string]bool {
	ids := make(map[string]bool, len(g.Nodes))
	for _, n := range g.Nodes {
		ids[n.ID] = true
	}
	return ids
}

// Reindex rebuilds the id index. Call it after assigning Nodes directly,
// e.g. after decoding.
func (g *Graph) Reindex() {
	g.index = make(map[string]int, len(g.Nodes))
	for i, n := range g.Nodes {
		normalizeNode(n)
		g.index[n.ID] = i
	}
	if g.Edges == nil {
		g.Edges = make([]*Edge, 0)
	}
}

func (g *Graph) ensureIndex() {
	if g.index == nil || len(g.index) != len(g.Nodes) {
		g.Reindex()
	}
}

// DanglingEdgeError lists edges whose endpoints are missing from the graph.
type DanglingEdgeError struct {
	Edges []*Edge
}

func (e *DanglingEdgeError) Error() string {
	parts := make([]string, 0, len(e.Edges))
	for _, edge := range e.Edges {
		parts = append(parts, fmt.Sprintf("%s->%s", edge.Source, edge.Target))
	}
	return fmt.Sprintf("%d edge(s) reference unknown nodes: %s", len(e.Edges), strings.Join(parts, ", "))
}

// Validate checks that every edge endpoint is a node of the graph.
func (g *Graph) Validate() error {
	ids := g.NodeIDs()
	var dangling []*Edge
	for _, e := range g.Edges {
		if !ids[e.Source] || !ids[e.Target] {
			dangling = append(dangling, e)
		}
	}
	if len(dangling) > 0 {
		return &DanglingEdgeError{Edges: dangling}
	}
	return nil
}

// PruneDangling drops edges with unknown endpoints and returns how many were removed.
func (g *Graph) PruneDangling() int {
	ids := g.NodeIDs()
	kept := g.Edges[:0]
	removed := 0
	for _, e := range g.Edges {
		if ids[e.Source] && ids[e.Target] {
			kept = append(kept, e)
		} else {
			removed++
		}
	}
	g.Edges = kept
	return removed
}

// Clone returns a deep copy of the graph.
func (g *Graph) Clone() *Graph {
	out := NewGraph()
	for _, n := range g.Nodes {
		out.AddNode(n.Clone())
	}
	for _, e := range g.Edges {
		c := *e
		out.AddEdge(&c)
	}
	return out
}

// Clone returns a copy of the node that shares no slices with the original.
func (n *Node) Clone() *Node {
	c := *n
	c.Ventures = append([]string{}, n.Ventures...)
	c.Quotes = append([]string{}, n.Quotes...)
	return &c
}

// normalizeNode makes list fields non-nil so they serialize as [] rather than null.
func normalizeNode(n *Node) {
	if n.Ventures == nil {
		n.Ventures = []string{}
	}
	if n.Quotes == nil {
		n.Quotes = []string{}
	}
}

package graph

import (
	"errors"
	"fmt"

	"github.com/ritzau/influence-graph/pkg/model"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/traverse"
)

// ErrNodeNotFound is returned when a requested node is not in the graph.
var ErrNodeNotFound = errors.New("node not found")

// Component returns the connected component containing start, ignoring edge
// direction. Nodes and edges keep their order from g.
func Component(g *model.Graph, start string) (*model.Graph, error) {
	ix := NewIndex(g)
	id, ok := ix.ID(start)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNodeNotFound, start)
	}

	members := map[string]bool{start: true}
	bf := traverse.BreadthFirst{
		Visit: func(n graph.Node) {
			members[ix.NodeID(n.ID())] = true
		},
	}
	bf.Walk(ix.Undirected(), ix.undirected.Node(id), nil)

	out := model.NewGraph()
	for _, n := range g.Nodes {
		if members[n.ID] {
			out.AddNode(n.Clone())
		}
	}
	for _, e := range g.Edges {
		if members[e.Source] && members[e.Target] {
			c := *e
			out.AddEdge(&c)
		}
	}
	return out, nil
}

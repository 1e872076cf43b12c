package graph

import (
	"sort"

	"github.com/ritzau/influence-graph/pkg/model"
)

// Optimize reduces g to its maxNodes most connected nodes and the edges
// among them. Ties keep their original relative order. When maxNodes <= 0 or
// the graph is already small enough, g itself is returned. The input graph is
// never modified.
func Optimize(g *model.Graph, maxNodes int) *model.Graph {
	if maxNodes <= 0 || len(g.Nodes) <= maxNodes {
		return g
	}

	nodes := make([]*model.Node, len(g.Nodes))
	copy(nodes, g.Nodes)
	sort.SliceStable(nodes, func(i, j int) bool {
		return nodes[i].ConnectionCount > nodes[j].ConnectionCount
	})

	out := model.NewGraph()
	for _, n := range nodes[:maxNodes] {
		out.AddNode(n.Clone())
	}
	for _, e := range g.Edges {
		if out.HasNode(e.Source) && out.HasNode(e.Target) {
			c := *e
			out.AddEdge(&c)
		}
	}
	return out
}

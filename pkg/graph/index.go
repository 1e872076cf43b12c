package graph

import (
	"github.com/ritzau/influence-graph/pkg/model"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
)

// Index maps a model graph onto gonum graphs so the gonum algorithms can run
// over it. Node ids are assigned in node order. Self-loops stay in the model
// but are not indexed, since gonum's simple graphs reject them.
type Index struct {
	directed   *simple.DirectedGraph
	undirected *simple.UndirectedGraph
	ids        map[string]int64 // model node id -> gonum id
	nodeIDs    []string         // gonum id -> model node id
}

// NewIndex indexes every node and edge of g.
func NewIndex(g *model.Graph) *Index {
	ix := &Index{
		directed:   simple.NewDirectedGraph(),
		undirected: simple.NewUndirectedGraph(),
		ids:        make(map[string]int64, len(g.Nodes)),
		nodeIDs:    make([]string, 0, len(g.Nodes)),
	}

	for _, n := range g.Nodes {
		ix.addNode(n.ID)
	}

	for _, e := range g.Edges {
		if e.Source == e.Target {
			continue
		}
		from, ok := ix.ids[e.Source]
		if !ok {
			continue
		}
		to, ok := ix.ids[e.Target]
		if !ok {
			continue
		}

		if !ix.directed.HasEdgeFromTo(from, to) {
			ix.directed.SetEdge(ix.directed.NewEdge(simple.Node(from), simple.Node(to)))
		}
		if !ix.undirected.HasEdgeBetween(from, to) {
			ix.undirected.SetEdge(ix.undirected.NewEdge(simple.Node(from), simple.Node(to)))
		}
	}

	return ix
}

func (ix *Index) addNode(id string) {
	if _, exists := ix.ids[id]; exists {
		return
	}
	gid := int64(len(ix.nodeIDs))
	ix.ids[id] = gid
	ix.nodeIDs = append(ix.nodeIDs, id)
	ix.directed.AddNode(simple.Node(gid))
	ix.undirected.AddNode(simple.Node(gid))
}

// ID returns the gonum id of a model node.
func (ix *Index) ID(nodeID string) (int64, bool) {
	id, ok := ix.ids[nodeID]
	return id, ok
}

// NodeID returns the model node id for a gonum id, or "" if unknown.
func (ix *Index) NodeID(id int64) string {
	if id < 0 || id >= int64(len(ix.nodeIDs)) {
		return ""
	}
	return ix.nodeIDs[id]
}

// Directed returns the directed view, edges pointing from source to target.
func (ix *Index) Directed() graph.Directed {
	return ix.directed
}

// Undirected returns the view where every edge connects both ways.
func (ix *Index) Undirected() graph.Undirected {
	return ix.undirected
}

package cycles

import (
	"sort"

	"gonum.org/v1/gonum/graph/topo"

	"github.com/ritzau/influence-graph/pkg/graph"
	"github.com/ritzau/influence-graph/pkg/model"
)

// Circle is a group of nodes that all reach each other through directed
// influence edges, e.g. A hired B who recommended A.
type Circle struct {
	Members []string `json:"members"` // Node ids in graph order
}

// FindCircles lists the influence circles of g. Members and circles are
// ordered by node position in g, so the result does not depend on gonum's
// iteration order.
func FindCircles(g *model.Graph) []Circle {
	ix := graph.NewIndex(g)

	var circles []Circle
	for _, scc := range topo.TarjanSCC(ix.Directed()) {
		// A single node is only a circle through a self-loop, which the index drops.
		if len(scc) < 2 {
			continue
		}

		// gonum ids are assigned in node order
		sort.Slice(scc, func(i, j int) bool { return scc[i].ID() < scc[j].ID() })

		members := make([]string, 0, len(scc))
		for _, n := range scc {
			members = append(members, ix.NodeID(n.ID()))
		}
		circles = append(circles, Circle{Members: members})
	}

	sort.Slice(circles, func(i, j int) bool {
		a, _ := ix.ID(circles[i].Members[0])
		b, _ := ix.ID(circles[j].Members[0])
		return a < b
	})
	return circles
}

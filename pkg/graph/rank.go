package graph

import (
	"sort"

	"github.com/ritzau/influence-graph/pkg/model"
	"gonum.org/v1/gonum/graph/network"
)

const (
	pageRankDamping   = 0.85
	pageRankTolerance = 1e-6
)

// Ranked is a node with its PageRank score.
type Ranked struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// Rank scores nodes by PageRank over the directed edges, highest first.
// Equal scores keep node order.
func Rank(g *model.Graph) []Ranked {
	if len(g.Nodes) == 0 {
		return nil
	}

	ix := NewIndex(g)
	scores := network.PageRank(ix.Directed(), pageRankDamping, pageRankTolerance)

	ranked := make([]Ranked, 0, len(g.Nodes))
	for _, n := range g.Nodes {
		id, _ := ix.ID(n.ID)
		ranked = append(ranked, Ranked{ID: n.ID, Name: n.Name, Score: scores[id]})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}

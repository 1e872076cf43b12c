package graph

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/ritzau/influence-graph/pkg/model"
)

// chain builds n nodes where node i has connectionCount i and an edge to node i+1.
func chain(n int) *model.Graph {
	g := model.NewGraph()
	for i := 0; i < n; i++ {
		g.AddNode(&model.Node{ID: fmt.Sprintf("n%d", i), ConnectionCount: i, Ventures: []string{"V"}})
	}
	for i := 0; i+1 < n; i++ {
		g.AddEdge(&model.Edge{Source: fmt.Sprintf("n%d", i), Target: fmt.Sprintf("n%d", i+1), Type: "Hired"})
	}
	return g
}

func TestOptimizeKeepsMostConnected(t *testing.T) {
	g := chain(10)
	out := Optimize(g, 3)

	if got, want := nodeIDs(out), []string{"n9", "n8", "n7"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Expected nodes %v, got %v", want, got)
	}
	want := []triple{{"n7", "n8", "Hired"}, {"n8", "n9", "Hired"}}
	if got := triples(out); !reflect.DeepEqual(got, want) {
		t.Errorf("Expected edges %v, got %v", want, got)
	}

	if len(g.Nodes) != 10 || len(g.Edges) != 9 {
		t.Errorf("Input graph was modified: %d nodes, %d edges", len(g.Nodes), len(g.Edges))
	}
	out.Nodes[0].Ventures[0] = "changed"
	out.Edges[0].Type = "changed"
	if g.Node("n9").Ventures[0] != "V" || g.Edges[7].Type != "Hired" {
		t.Error("Optimized graph shares data with the input")
	}
}

func TestOptimizeNoop(t *testing.T) {
	g := chain(4)
	for _, n := range []int{-1, 0, 4, 10} {
		if out := Optimize(g, n); out != g {
			t.Errorf("Optimize(g, %d) should return the input unchanged", n)
		}
	}
}

func TestOptimizeStableTies(t *testing.T) {
	g := model.NewGraph()
	g.AddNode(&model.Node{ID: "a", ConnectionCount: 1})
	g.AddNode(&model.Node{ID: "b", ConnectionCount: 2})
	g.AddNode(&model.Node{ID: "c", ConnectionCount: 2})
	g.AddNode(&model.Node{ID: "d", ConnectionCount: 0})

	if got, want := nodeIDs(Optimize(g, 2)), []string{"b", "c"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Expected ties in input order %v, got %v", want, got)
	}
}

func TestOptimizeBounds(t *testing.T) {
	g := chain(8)
	for n := 0; n <= 10; n++ {
		out := Optimize(g, n)

		limit := n
		if n == 0 || n > len(g.Nodes) {
			limit = len(g.Nodes)
		}
		if len(out.Nodes) != limit {
			t.Errorf("Optimize(g, %d) kept %d nodes, want %d", n, len(out.Nodes), limit)
		}
		if err := out.Validate(); err != nil {
			t.Errorf("Optimize(g, %d) left dangling edges: %v", n, err)
		}
	}
}

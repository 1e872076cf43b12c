package graph

import (
	"errors"
	"reflect"
	"testing"

	"github.com/ritzau/influence-graph/pkg/model"
)

func newTestGraph(ids []string, edges [][2]string) *model.Graph {
	g := model.NewGraph()
	for _, id := range ids {
		g.AddNode(&model.Node{ID: id, Name: id})
	}
	for _, e := range edges {
		g.AddEdge(&model.Edge{Source: e[0], Target: e[1], Type: "Hired"})
	}
	return g
}

func TestNewIndex(t *testing.T) {
	g := newTestGraph(
		[]string{"a", "b", "c"},
		[][2]string{{"a", "b"}, {"a", "c"}, {"b", "b"}},
	)
	ix := NewIndex(g)

	a, ok := ix.ID("a")
	if !ok {
		t.Fatal("Node a not indexed")
	}
	if ix.NodeID(a) != "a" {
		t.Errorf("Expected NodeID(%d) = a, got %q", a, ix.NodeID(a))
	}
	if _, ok := ix.ID("missing"); ok {
		t.Error("Unknown node should not be indexed")
	}
	if ix.NodeID(99) != "" {
		t.Error("Unknown gonum id should map to empty string")
	}

	if got, want := ix.Directed().From(a).Len(), 2; got != want {
		t.Errorf("Expected %d successors of a, got %d", want, got)
	}
	c, _ := ix.ID("c")
	if got := ix.Directed().From(c).Len(); got != 0 {
		t.Errorf("Expected no successors of c, got %d", got)
	}

	b, _ := ix.ID("b")
	if ix.Directed().HasEdgeBetween(b, b) {
		t.Error("Self-loops should not be indexed")
	}
	if !ix.Undirected().HasEdgeBetween(c, a) {
		t.Error("Undirected view should connect c and a")
	}
	if ix.Directed().HasEdgeFromTo(c, a) {
		t.Error("Directed view should not have c->a")
	}
}

func TestComponent(t *testing.T) {
	g := newTestGraph(
		[]string{"a", "b", "c", "d", "e", "f"},
		[][2]string{{"a", "b"}, {"c", "b"}, {"d", "e"}, {"f", "f"}},
	)

	tests := []struct {
		start string
		want  []string
		edges int
	}{
		{"a", []string{"a", "b", "c"}, 2},
		{"c", []string{"a", "b", "c"}, 2},
		{"e", []string{"d", "e"}, 1},
		{"f", []string{"f"}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.start, func(t *testing.T) {
			out, err := Component(g, tt.start)
			if err != nil {
				t.Fatalf("Component(%q) error = %v", tt.start, err)
			}
			if got := nodeIDs(out); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
			if len(out.Edges) != tt.edges {
				t.Errorf("Expected %d edges, got %d", tt.edges, len(out.Edges))
			}
		})
	}

	if _, err := Component(g, "zz"); !errors.Is(err, ErrNodeNotFound) {
		t.Errorf("Expected ErrNodeNotFound, got %v", err)
	}
}

func TestRank(t *testing.T) {
	g := newTestGraph(
		[]string{"a", "b", "hub", "lonely"},
		[][2]string{{"a", "hub"}, {"b", "hub"}, {"hub", "hub"}},
	)

	ranked := Rank(g)
	if len(ranked) != 4 {
		t.Fatalf("Expected 4 ranked nodes, got %d", len(ranked))
	}
	if ranked[0].ID != "hub" {
		t.Errorf("Expected hub first, got %+v", ranked)
	}
	for i := 1; i < len(ranked); i++ {
		if ranked[i].Score > ranked[i-1].Score {
			t.Errorf("Ranking not sorted at %d: %+v", i, ranked)
		}
	}

	if Rank(model.NewGraph()) != nil {
		t.Error("Empty graph should have no ranking")
	}
}

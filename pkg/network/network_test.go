package network

import (
	"errors"
	"testing"

	"github.com/ritzau/influence-graph/pkg/graph"
	"github.com/ritzau/influence-graph/pkg/rows"
)

const scenarioA = "Name,Influence,Ventures,Connections,Quotes,Image\n" +
	"Alice,Friends with Bob;Hired Charlie,Company A;Company B,Bob;Charlie,Quote 1|Quote 2,/img/a.jpg\n" +
	"Bob,Hired Charlie,Company B,,Quote 3,/img/b.jpg\n" +
	"Charlie,,,Alice;Bob,,/img/c.jpg"

func TestParseBasicNetwork(t *testing.T) {
	res, err := Parse(scenarioA)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if res.Stats.Nodes != 3 || res.Stats.Edges != 3 {
		t.Errorf("Expected 3 nodes and 3 edges, got %d/%d", res.Stats.Nodes, res.Stats.Edges)
	}
	if res.Stats.Rows != 3 || len(res.Stats.Skipped) != 0 {
		t.Errorf("Unexpected row stats: %+v", res.Stats)
	}

	want := map[string]bool{
		"Alice>Bob>Friends with": true,
		"Alice>Charlie>Hired":    true,
		"Bob>Charlie>Hired":      true,
	}
	for _, e := range res.Graph.Edges {
		key := e.Source + ">" + e.Target + ">" + e.Type
		if !want[key] {
			t.Errorf("Unexpected edge %s", key)
		}
		delete(want, key)
	}
	if len(want) != 0 {
		t.Errorf("Missing edges: %v", want)
	}
}

func TestParseEmptyInput(t *testing.T) {
	for _, text := range []string{"", "   ", "\n\n \t\n"} {
		res, err := Parse(text)
		if !errors.Is(err, ErrEmptyInput) {
			t.Errorf("Parse(%q) error = %v, want ErrEmptyInput", text, err)
		}
		if res != nil {
			t.Errorf("Parse(%q) should not return a graph", text)
		}
	}
}

func TestParseHeaderOnly(t *testing.T) {
	res, err := Parse("Name,Influence,Ventures,Connections,Quotes,Image\n")
	if err != nil {
		t.Fatalf("Header-only input should not fail: %v", err)
	}
	if len(res.Graph.Nodes) != 0 || len(res.Graph.Edges) != 0 {
		t.Errorf("Expected an empty graph, got %d nodes", len(res.Graph.Nodes))
	}
}

func TestParseQuotedDelimiter(t *testing.T) {
	text := "Name,Influence,Ventures,Connections,Quotes,Image\n" +
		"Alice,\"Hired Bob, Jr.\",,,\"He said \"\"hi\"\"\",\n" +
		"\"Bob, Jr.\",,,,,"

	res, err := Parse(text)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if !res.Graph.HasNode("Bob, Jr.") {
		t.Fatalf("Expected node \"Bob, Jr.\", got %v", res.Graph.Nodes)
	}
	if len(res.Graph.Edges) != 1 || res.Graph.Edges[0].Target != "Bob, Jr." {
		t.Errorf("Expected edge to \"Bob, Jr.\", got %v", res.Graph.Edges)
	}
	if q := res.Graph.Node("Alice").Quotes; len(q) != 1 || q[0] != `He said "hi"` {
		t.Errorf("Expected unescaped quote, got %v", q)
	}
}

func TestParseSkipsAnomalies(t *testing.T) {
	text := "Name,Influence,Ventures,Connections,Quotes,Image\n" +
		",Hired Alice,,,,\n" +
		"\n" +
		"Alice,Married Bob;Hired;Hired Bob,,,,\n" +
		"Bob"

	res, err := Parse(text)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if res.Stats.Rows != 3 {
		t.Errorf("Expected 3 data rows, got %d", res.Stats.Rows)
	}
	if len(res.Stats.Skipped) != 1 || res.Stats.Skipped[0].Line != 2 || res.Stats.Skipped[0].Reason != SkipMissingName {
		t.Errorf("Unexpected skipped rows: %+v", res.Stats.Skipped)
	}
	if res.Stats.SkippedBy()[SkipMissingName] != 1 {
		t.Errorf("Expected one missing-name skip, got %v", res.Stats.SkippedBy())
	}
	if res.Stats.UnparsedItems != 2 {
		t.Errorf("Expected 2 unparsed items, got %d", res.Stats.UnparsedItems)
	}
	if len(res.Graph.Nodes) != 2 || len(res.Graph.Edges) != 1 {
		t.Errorf("Expected Alice->Bob only, got %d nodes, %d edges", len(res.Graph.Nodes), len(res.Graph.Edges))
	}
}

func TestParserPipeLayout(t *testing.T) {
	text := "Name|Influence|Ventures|Connections|Quotes|Image\n" +
		"Alice|Friends with Bob, the builder|Acme||Hi|\n" +
		"Bob, the builder|||||"

	p := NewParser(graph.DefaultOptions())
	p.Delimiter = rows.Pipe
	res, err := p.Parse(text)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(res.Graph.Edges) != 1 || res.Graph.Edges[0].Target != "Bob, the builder" {
		t.Errorf("Expected edge to \"Bob, the builder\", got %v", res.Graph.Edges)
	}
}

func TestParserInvalidOptions(t *testing.T) {
	p := NewParser(graph.Options{EdgeTargetPolicy: "everything"})
	if _, err := p.Parse(scenarioA); err == nil {
		t.Error("Expected error for invalid options")
	}
}

func TestParseIsIdempotent(t *testing.T) {
	a, err := Parse(scenarioA)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Parse(scenarioA)
	if err != nil {
		t.Fatal(err)
	}

	if len(a.Graph.Nodes) != len(b.Graph.Nodes) || len(a.Graph.Edges) != len(b.Graph.Edges) {
		t.Fatal("Repeated parses differ in size")
	}
	for i := range a.Graph.Edges {
		if a.Graph.Edges[i].Key() != b.Graph.Edges[i].Key() {
			t.Errorf("Edge %d differs: %s vs %s", i, a.Graph.Edges[i].Key(), b.Graph.Edges[i].Key())
		}
	}
}

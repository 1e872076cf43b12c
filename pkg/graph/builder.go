package graph

import (
	"github.com/ritzau/influence-graph/pkg/logging"
	"github.com/ritzau/influence-graph/pkg/model"
)

// Edge types for edges that do not come from the Influence column.
const (
	ConnectedTo    = "Connected to"
	AssociatedWith = "Associated with"
)

// Stats summarizes one Build.
type Stats struct {
	Records        int `json:"records"`        // Records folded into the graph
	Relationships  int `json:"relationships"`  // Relationships extracted from Influence
	RejectedTarget int `json:"rejectedTarget"` // Relationship or connection targets refused by the edge policy
	DuplicateEdges int `json:"duplicateEdges"` // Edges dropped or replaced by de-duplication
	Placeholders   int `json:"placeholders"`   // Nodes that remain edge targets only, without a row
	Dangling       int `json:"dangling"`       // Edges removed by the validation pass (should stay 0)
}

type edgeSlot struct {
	edge    *model.Edge
	removed bool
}

type builder struct {
	opts    Options
	graph   *model.Graph
	primary map[string]bool   // ids of names that have their own row
	filled  map[string]bool   // ids whose attributes come from a row
	aliases map[string]string // last name -> primary name, "" when ambiguous
	slots   []*edgeSlot
	byPair  map[string][]int
	stats   Stats
}

// Build folds decoded records into a graph.
//
// Primary names are collected before any edge is added, so whether a target
// has its own row never depends on row order. A node created as an edge
// target is completed when its own row is folded in.
func Build(records []model.Record, opts Options) (*model.Graph, Stats) {
	b := &builder{
		opts:    opts,
		graph:   model.NewGraph(),
		primary: make(map[string]bool),
		filled:  make(map[string]bool),
		aliases: make(map[string]string),
		byPair:  make(map[string][]int),
	}

	for _, rec := range records {
		b.primary[b.id(rec.Name)] = true
		if opts.MatchLastNames {
			b.addAlias(rec.Name)
		}
	}

	for _, rec := range records {
		b.stats.Records++
		source := b.id(rec.Name)
		b.upsertPrimary(source, rec)

		for _, rel := range opts.Extraction.Extract(rec.InfluenceRaw) {
			b.stats.Relationships++
			b.link(source, rel.Target, &model.Edge{
				Type:     rel.Kind,
				Origin:   model.OriginInfluence,
				Category: rel.Category,
				Amount:   rel.Amount,
			})
		}

		if opts.DeriveEdgesFromVentures {
			for _, venture := range rec.Ventures {
				b.linkVenture(source, venture)
			}
		}

		if opts.DeriveEdgesFromConnections {
			for _, conn := range rec.Connections {
				b.link(source, conn, &model.Edge{Type: ConnectedTo, Origin: model.OriginConnection})
			}
		}
	}

	for _, slot := range b.slots {
		if !slot.removed {
			b.graph.AddEdge(slot.edge)
		}
	}

	if err := b.graph.Validate(); err != nil {
		logging.Error("graph builder produced dangling edges", "error", err)
		b.stats.Dangling = b.graph.PruneDangling()
	}

	return b.graph, b.stats
}

func (b *builder) id(name string) string {
	return b.opts.IDScheme.ID(name)
}

func (b *builder) addAlias(name string) {
	last := lastName(name)
	if last == "" {
		return
	}
	if existing, ok := b.aliases[last]; ok && existing != name {
		b.aliases[last] = ""
		return
	}
	b.aliases[last] = name
}

// resolve maps a relationship target to a node id under the edge policy.
func (b *builder) resolve(target string) (id, name string, ok bool) {
	id = b.id(target)
	if b.primary[id] {
		return id, target, true
	}
	if b.opts.MatchLastNames {
		if full := b.aliases[target]; full != "" {
			return b.id(full), full, true
		}
	}
	if b.opts.EdgeTargetPolicy == AnyNonEmpty {
		return id, target, true
	}
	return "", "", false
}

func (b *builder) upsertPrimary(id string, rec model.Record) {
	node := b.graph.Node(id)
	switch {
	case node == nil:
		node = &model.Node{ID: id}
		b.fill(node, rec)
		b.graph.AddNode(node)
	case !b.filled[id]:
		// Placeholder or venture node created earlier; the row carries the real data.
		if node.Placeholder {
			b.stats.Placeholders--
		}
		b.fill(node, rec)
	default:
		node.Ventures = appendMissing(node.Ventures, rec.Ventures)
		node.Quotes = appendMissing(node.Quotes, rec.Quotes)
		node.ConnectionCount += len(rec.Connections)
		if node.Image == "" {
			node.Image = rec.Image
		}
	}
	b.filled[id] = true
}

func (b *builder) fill(node *model.Node, rec model.Record) {
	node.Name = rec.Name
	node.Kind = model.NodeKindPerson
	node.Ventures = append([]string{}, rec.Ventures...)
	node.Quotes = append([]string{}, rec.Quotes...)
	node.ConnectionCount = len(rec.Connections)
	node.Image = rec.Image
	node.Placeholder = false
}

// ensureNode creates a node for an edge endpoint unless one exists.
func (b *builder) ensureNode(id, name string, kind model.NodeKind) {
	if b.graph.HasNode(id) {
		return
	}
	node := &model.Node{ID: id, Name: name, Kind: kind}
	if kind == model.NodeKindPerson {
		node.Placeholder = true
		b.stats.Placeholders++
	}
	b.graph.AddNode(node)
}

// link emits an edge from source to the node named target. The target node
// is created together with the edge, so edges never dangle.
func (b *builder) link(source, target string, edge *model.Edge) {
	id, name, ok := b.resolve(target)
	if !ok {
		b.stats.RejectedTarget++
		return
	}
	b.ensureNode(id, name, model.NodeKindPerson)
	edge.Source = source
	edge.Target = id
	b.addEdge(edge)
}

func (b *builder) linkVenture(source, venture string) {
	id := b.id(venture)
	if id == source {
		// A venture sharing its id with the person would only yield a self-loop.
		return
	}
	b.ensureNode(id, venture, model.NodeKindVenture)
	b.addEdge(&model.Edge{
		Source: source,
		Target: id,
		Type:   AssociatedWith,
		Origin: model.OriginVenture,
	})
}

// addEdge keeps at most one edge per unordered pair and origin rank: exact
// repeats are dropped, and a more specific origin replaces a generic one.
func (b *builder) addEdge(edge *model.Edge) bool {
	pair := edge.PairKey()
	rank := edge.Origin.Rank()

	for _, i := range b.byPair[pair] {
		slot := b.slots[i]
		if slot.removed {
			continue
		}
		if slot.edge.Key() == edge.Key() || slot.edge.Origin.Rank() > rank {
			b.stats.DuplicateEdges++
			return false
		}
	}

	for _, i := range b.byPair[pair] {
		slot := b.slots[i]
		if !slot.removed && slot.edge.Origin.Rank() < rank {
			slot.removed = true
			b.stats.DuplicateEdges++
		}
	}

	b.byPair[pair] = append(b.byPair[pair], len(b.slots))
	b.slots = append(b.slots, &edgeSlot{edge: edge})
	return true
}

func appendMissing(dst, src []string) []string {
	seen := make(map[string]bool, len(dst))
	for _, s := range dst {
		seen[s] = true
	}
	for _, s := range src {
		if !seen[s] {
			dst = append(dst, s)
			seen[s] = true
		}
	}
	return dst
}

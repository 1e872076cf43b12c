package analysis

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ritzau/influence-graph/pkg/cycles"
	"github.com/ritzau/influence-graph/pkg/graph"
	"github.com/ritzau/influence-graph/pkg/logging"
	"github.com/ritzau/influence-graph/pkg/metrics"
	"github.com/ritzau/influence-graph/pkg/model"
	"github.com/ritzau/influence-graph/pkg/network"
	"github.com/ritzau/influence-graph/pkg/pubsub"
	"github.com/ritzau/influence-graph/pkg/source"
)

const totalSteps = 3

// Snapshot is one parsed network together with what was derived from it.
type Snapshot struct {
	Source   string          `json:"source"`
	Graph    *model.Graph    `json:"-"`
	Stats    network.Stats   `json:"stats"`
	Circles  []cycles.Circle `json:"circles"`
	Ranking  []graph.Ranked  `json:"ranking"`
	ParsedAt time.Time       `json:"parsedAt"`
}

// NewSnapshot derives circles and ranking for g.
func NewSnapshot(src string, g *model.Graph, stats network.Stats) *Snapshot {
	stats.Nodes = len(g.Nodes)
	stats.Edges = len(g.Edges)
	return &Snapshot{
		Source:   src,
		Graph:    g,
		Stats:    stats,
		Circles:  cycles.FindCircles(g),
		Ranking:  graph.Rank(g),
		ParsedAt: time.Now(),
	}
}

// Sink receives every successfully parsed snapshot.
type Sink interface {
	SetSnapshot(*Snapshot)
}

// Runner fetches, parses and hands out snapshots. Runs are serialized, so
// the last run to start is also the last to finish and its snapshot wins.
type Runner struct {
	source    source.Source
	parser    *network.Parser
	publisher pubsub.Publisher
	sinks     []Sink

	mu   sync.Mutex
	last *Snapshot
}

// NewRunner creates a runner. publisher may be nil.
func NewRunner(src source.Source, parser *network.Parser, publisher pubsub.Publisher, sinks ...Sink) *Runner {
	return &Runner{
		source:    src,
		parser:    parser,
		publisher: publisher,
		sinks:     sinks,
	}
}

// AddSink registers another sink for later runs.
func (r *Runner) AddSink(s Sink) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sinks = append(r.sinks, s)
}

// Last returns the latest snapshot, or nil before the first successful run.
func (r *Runner) Last() *Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last
}

// Run parses the configured source.
func (r *Runner) Run(ctx context.Context, reason string) (*Snapshot, error) {
	if r.source == nil {
		return nil, errors.New("runner has no source")
	}
	return r.RunSource(ctx, r.source, reason)
}

// RunSource parses src instead of the configured source, e.g. an upload.
func (r *Runner) RunSource(ctx context.Context, src source.Source, reason string) (*Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	log := logging.New("analysis")
	name := src.Name()
	start := time.Now()
	log.Info("starting parse", "source", name, "reason", reason)

	r.publishStatus(pubsub.ParseStatus{State: pubsub.StateFetching, Source: name, Message: "Fetching CSV...", Step: 1, Total: totalSteps})
	text, err := src.Fetch(ctx)
	if err != nil {
		metrics.RecordParse(metrics.OutcomeUnavailable, time.Since(start), nil)
		log.Warn("fetch failed", "source", name, "error", err)
		r.publishStatus(pubsub.ParseStatus{
			State:     pubsub.StateFailed,
			Source:    name,
			Message:   err.Error(),
			Step:      1,
			Total:     totalSteps,
			Retryable: source.IsRetryable(err),
		})
		return nil, fmt.Errorf("fetching %s: %w", name, err)
	}

	r.publishStatus(pubsub.ParseStatus{State: pubsub.StateParsing, Source: name, Message: "Building graph...", Step: 2, Total: totalSteps})
	res, err := r.parser.Parse(text)
	if err != nil {
		outcome := metrics.OutcomeError
		if errors.Is(err, network.ErrEmptyInput) {
			outcome = metrics.OutcomeEmpty
		}
		metrics.RecordParse(outcome, time.Since(start), nil)
		log.Warn("parse failed", "source", name, "error", err)
		r.publishStatus(pubsub.ParseStatus{State: pubsub.StateFailed, Source: name, Message: err.Error(), Step: 2, Total: totalSteps})
		return nil, fmt.Errorf("parsing %s: %w", name, err)
	}

	snap := NewSnapshot(name, res.Graph, res.Stats)
	metrics.RecordParse(metrics.OutcomeOK, time.Since(start), &snap.Stats)
	r.install(snap)

	log.Info("parse complete",
		"source", name,
		"nodes", snap.Stats.Nodes,
		"edges", snap.Stats.Edges,
		"circles", len(snap.Circles),
		"durationMs", time.Since(start).Milliseconds(),
	)
	r.publishStatus(pubsub.ParseStatus{
		State:   pubsub.StateReady,
		Source:  name,
		Message: fmt.Sprintf("%d nodes, %d edges", snap.Stats.Nodes, snap.Stats.Edges),
		Step:    3,
		Total:   totalSteps,
	})
	return snap, nil
}

// Install replaces the current graph without parsing, e.g. after an import.
func (r *Runner) Install(name string, g *model.Graph) *Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	snap := NewSnapshot(name, g, network.Stats{})
	r.install(snap)
	r.publishStatus(pubsub.ParseStatus{
		State:   pubsub.StateReady,
		Source:  name,
		Message: fmt.Sprintf("imported %d nodes, %d edges", snap.Stats.Nodes, snap.Stats.Edges),
		Step:    totalSteps,
		Total:   totalSteps,
	})
	return snap
}

// install stores snap and notifies sinks and subscribers. Callers hold r.mu.
func (r *Runner) install(snap *Snapshot) {
	r.last = snap
	metrics.SetGraphSize(snap.Stats.Nodes, snap.Stats.Edges)
	for _, s := range r.sinks {
		s.SetSnapshot(snap)
	}
	r.publish(pubsub.TopicNetworkGraph, pubsub.EventGraphUpdated, pubsub.GraphSummary{
		Source:       snap.Source,
		Nodes:        snap.Stats.Nodes,
		Edges:        snap.Stats.Edges,
		Placeholders: snap.Stats.Placeholders,
		SkippedRows:  len(snap.Stats.Skipped),
		Circles:      len(snap.Circles),
	})
}

func (r *Runner) publishStatus(status pubsub.ParseStatus) {
	r.publish(pubsub.TopicParseStatus, status.State, status)
}

func (r *Runner) publish(topic, eventType string, data any) {
	if r.publisher == nil {
		return
	}
	if err := r.publisher.Publish(topic, eventType, data); err != nil {
		logging.Debug("could not publish event", "topic", topic, "error", err)
	}
}

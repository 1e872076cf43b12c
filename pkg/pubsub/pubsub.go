package pubsub

import (
	"context"
	"encoding/json"
	"errors"
)

// Topics published by the analysis runner.
const (
	TopicParseStatus  = "parse_status"
	TopicNetworkGraph = "network_graph"
)

// Event types on TopicParseStatus.
const (
	StateFetching = "fetching"
	StateParsing  = "parsing"
	StateReady    = "ready"
	StateFailed   = "failed"
)

// EventGraphUpdated is the event type on TopicNetworkGraph.
const EventGraphUpdated = "graph_updated"

// ErrClosed is returned by a publisher that has been shut down.
var ErrClosed = errors.New("publisher is closed")

// Event represents a pub/sub event
type Event struct {
	Topic   string          `json:"topic"`   // Subscription topic, e.g. TopicParseStatus
	Type    string          `json:"type"`    // Event type, e.g. StateParsing
	Data    json.RawMessage `json:"data"`    // Event payload
	Version int             `json:"version"` // Per-topic sequence number
}

// Subscription represents a client subscription to a topic
type Subscription interface {
	// Topic returns the subscription topic
	Topic() string

	// Events returns a channel for receiving events
	Events() <-chan Event

	// Close closes the subscription
	Close() error
}

// Publisher manages pub/sub subscriptions and event publishing
type Publisher interface {
	// Subscribe creates a new subscription to a topic.
	// Context cancellation will close the subscription.
	Subscribe(ctx context.Context, topic string) (Subscription, error)

	// Publish sends an event to all subscribers of a topic
	Publish(topic string, eventType string, data any) error

	// Close shuts down the publisher and all subscriptions
	Close() error
}

// ParseStatus reports the progress of one parse run.
type ParseStatus struct {
	State     string `json:"state"`             // One of the State* constants
	Source    string `json:"source"`            // Where the CSV came from
	Message   string `json:"message"`           // Human-readable status message
	Step      int    `json:"step"`              // Current step number (1-based)
	Total     int    `json:"total"`             // Total number of steps
	Retryable bool   `json:"retryable,omitempty"`
}

// GraphSummary announces a new graph. Clients fetch the graph itself over HTTP.
type GraphSummary struct {
	Source       string `json:"source"`
	Nodes        int    `json:"nodes"`
	Edges        int    `json:"edges"`
	Placeholders int    `json:"placeholders"`
	SkippedRows  int    `json:"skippedRows"`
	Circles      int    `json:"circles"`
}

// ConfigureDefaults sets the buffering used by the service: late subscribers
// see the latest status and the latest graph summary.
func ConfigureDefaults(p *SSEPublisher) {
	p.ConfigureTopic(TopicParseStatus, TopicConfig{BufferSize: 10})
	p.ConfigureTopic(TopicNetworkGraph, TopicConfig{BufferSize: 1})
}

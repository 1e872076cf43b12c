package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ritzau/influence-graph/pkg/analysis"
	"github.com/ritzau/influence-graph/pkg/cycles"
	"github.com/ritzau/influence-graph/pkg/graph"
	"github.com/ritzau/influence-graph/pkg/graphio"
	"github.com/ritzau/influence-graph/pkg/lens"
	"github.com/ritzau/influence-graph/pkg/logging"
	"github.com/ritzau/influence-graph/pkg/model"
	"github.com/ritzau/influence-graph/pkg/network"
	"github.com/ritzau/influence-graph/pkg/pubsub"
	"github.com/ritzau/influence-graph/pkg/record"
	"github.com/ritzau/influence-graph/pkg/source"
)

// maxUploadSize bounds CSV uploads and graph imports.
const maxUploadSize = 64 << 20

// GraphResponse is the body of GET /api/graph.
type GraphResponse struct {
	Nodes      []*model.Node `json:"nodes"`
	Edges      []*model.Edge `json:"edges"`
	TotalNodes int           `json:"totalNodes"` // Before focus, lens and optimizer
	TotalEdges int           `json:"totalEdges"`
}

// NodeDetail is the body of GET /api/nodes/{id}.
type NodeDetail struct {
	*model.Node
	ImageURL string        `json:"imageUrl,omitempty"`
	Outgoing []*model.Edge `json:"outgoing"`
	Incoming []*model.Edge `json:"incoming"`
}

// Status is the body of GET /api/status.
type Status struct {
	Loaded   bool          `json:"loaded"`
	Source   string        `json:"source,omitempty"`
	ParsedAt time.Time     `json:"parsedAt,omitempty"`
	Stats    network.Stats `json:"stats"`
}

// Server represents the web server
type Server struct {
	router    *mux.Router
	runner    *analysis.Runner
	publisher pubsub.Publisher
	legend    lens.Legend
	maxNodes  int

	mu       sync.RWMutex
	snapshot *analysis.Snapshot
}

// NewServer creates a server and registers it as a sink of runner, so every
// successful parse replaces the graph it serves. maxNodes is the optimizer
// bound used when a request does not pass ?max=.
func NewServer(runner *analysis.Runner, publisher pubsub.Publisher, legend lens.Legend, maxNodes int) *Server {
	s := &Server{
		router:    mux.NewRouter(),
		runner:    runner,
		publisher: publisher,
		legend:    legend,
		maxNodes:  maxNodes,
	}
	if snap := runner.Last(); snap != nil {
		s.snapshot = snap
	}
	runner.AddSink(s)
	s.setupRoutes()
	return s
}

// SetSnapshot implements analysis.Sink.
func (s *Server) SetSnapshot(snap *analysis.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = snap
}

func (s *Server) current() *analysis.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// Handler returns the router with all middleware applied.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupRoutes() {
	s.router.Use(logging.RequestIDMiddleware, metricsMiddleware)

	s.router.HandleFunc("/api/subscribe/{topic}", s.handleSubscribe).Methods("GET")

	s.router.HandleFunc("/api/status", s.handleStatus).Methods("GET")
	s.router.HandleFunc("/api/graph", s.handleGraph).Methods("GET")
	s.router.HandleFunc("/api/graph/export", s.handleExport).Methods("GET")
	s.router.HandleFunc("/api/graph/import", s.handleImport).Methods("POST")
	s.router.HandleFunc("/api/csv", s.handleCSV).Methods("POST")
	s.router.HandleFunc("/api/nodes/{id}", s.handleNode).Methods("GET")
	s.router.HandleFunc("/api/legend", s.handleLegend).Methods("GET")
	s.router.HandleFunc("/api/circles", s.handleCircles).Methods("GET")

	s.router.Handle("/metrics", promhttp.Handler()).Methods("GET")
}

func (s *Server) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	topic := mux.Vars(r)["topic"]
	if topic != pubsub.TopicParseStatus && topic != pubsub.TopicNetworkGraph {
		writeError(w, http.StatusNotFound, fmt.Sprintf("unknown topic %q", topic))
		return
	}

	// Create subscription
	sub, err := s.publisher.Subscribe(r.Context(), topic)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	defer sub.Close()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	// Initial comment establishes the stream (Safari compatibility)
	fmt.Fprintf(w, ": connected\n\n")
	flush(w)

	for {
		select {
		case <-r.Context().Done():
			return
		case event, ok := <-sub.Events():
			if !ok {
				return
			}
			if err := pubsub.WriteSSE(w, event); err != nil {
				logging.DebugContext(r.Context(), "SSE client went away", "topic", topic, "error", err)
				return
			}
			flush(w)
		}
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	snap := s.current()
	if snap == nil {
		writeJSON(w, http.StatusOK, Status{})
		return
	}
	writeJSON(w, http.StatusOK, Status{
		Loaded:   true,
		Source:   snap.Source,
		ParsedAt: snap.ParsedAt,
		Stats:    snap.Stats,
	})
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	maxNodes := s.maxNodes
	if raw := q.Get("max"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid max %q", raw))
			return
		}
		maxNodes = n
	}

	g := s.graph()
	resp := GraphResponse{TotalNodes: len(g.Nodes), TotalEdges: len(g.Edges)}

	if focus := q.Get("focus"); focus != "" {
		component, err := graph.Component(g, focus)
		if err != nil {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		g = component
	}

	filter := lens.Filter{
		Search:        q.Get("search"),
		Ventures:      multi(q["venture"]),
		Relationships: multi(q["relationship"]),
	}
	if !filter.IsZero() {
		g = filter.Apply(g)
	}

	g = graph.Optimize(g, maxNodes)
	resp.Nodes = g.Nodes
	resp.Edges = g.Edges
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format, err := formatParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=influence-graph.%s", format))
	if err := graphio.Export(w, s.graph(), format); err != nil {
		logging.ErrorContext(r.Context(), "export failed", "format", string(format), "error", err)
	}
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	format, err := formatParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	g, err := graphio.Load(http.MaxBytesReader(w, r.Body, maxUploadSize), format)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	snap := s.runner.Install("import", g)
	logging.InfoContext(r.Context(), "imported graph", "nodes", snap.Stats.Nodes, "edges", snap.Stats.Edges)
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleCSV(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxUploadSize))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, err.Error())
		return
	}

	label := r.URL.Query().Get("name")
	if label == "" {
		label = "upload"
	}
	snap, err := s.runner.RunSource(r.Context(), &source.Text{Label: label, Body: string(body)}, "upload")
	switch {
	case errors.Is(err, network.ErrEmptyInput):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleNode(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	g := s.graph()

	node := g.Node(id)
	if node == nil {
		writeError(w, http.StatusNotFound, fmt.Sprintf("%v: %q", graph.ErrNodeNotFound, id))
		return
	}

	detail := NodeDetail{
		Node:     node,
		Outgoing: []*model.Edge{},
		Incoming: []*model.Edge{},
	}
	if node.Image != "" {
		detail.ImageURL = record.NormalizeImagePath(node.Image)
	}
	for _, e := range g.Edges {
		if e.Source == id {
			detail.Outgoing = append(detail.Outgoing, e)
		}
		if e.Target == id {
			detail.Incoming = append(detail.Incoming, e)
		}
	}
	writeJSON(w, http.StatusOK, detail)
}

func (s *Server) handleLegend(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, struct {
		Entries []lens.Entry `json:"entries"`
		Default string       `json:"default"`
	}{s.legend.Entries(), s.legend.Color("")})
}

func (s *Server) handleCircles(w http.ResponseWriter, r *http.Request) {
	circles := []cycles.Circle{}
	if snap := s.current(); snap != nil && snap.Circles != nil {
		circles = snap.Circles
	}
	writeJSON(w, http.StatusOK, circles)
}

// graph returns the graph being served, or an empty one before the first parse.
func (s *Server) graph() *model.Graph {
	if snap := s.current(); snap != nil {
		return snap.Graph
	}
	return model.NewGraph()
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context, port int) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info("starting web server", "url", fmt.Sprintf("http://localhost:%d", port))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		logging.Info("shutting down web server")
		return srv.Shutdown(shutdownCtx)
	}
}

func formatParam(r *http.Request) (graphio.Format, error) {
	raw := r.URL.Query().Get("format")
	if raw == "" {
		return graphio.JSON, nil
	}
	return graphio.ParseFormat(raw)
}

// multi accepts both repeated parameters and comma-separated values.
func multi(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func flush(w http.ResponseWriter) {
	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Debug("could not encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

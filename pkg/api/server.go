// Package api serves the extraction-and-traversal engine over HTTP. Every
// request reads the session's current snapshot once and computes against it.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/coolbeans/ontoscope/pkg/graph"
	"github.com/coolbeans/ontoscope/pkg/ontology"
	"github.com/coolbeans/ontoscope/pkg/render"
	"github.com/coolbeans/ontoscope/pkg/session"
	"github.com/coolbeans/ontoscope/pkg/store"
)

// SnapshotHeader carries the id of the snapshot a response was computed from.
const SnapshotHeader = "X-Snapshot-ID"

// ReloadFunc loads the source again and installs a new snapshot.
type ReloadFunc func(ctx context.Context) (*session.Snapshot, error)

// Config configures a Server.
type Config struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// DefaultDepth applies when a class graph request has no depth.
	DefaultDepth int
	// MaxDepth caps requested depths.
	MaxDepth int

	// Prefixes expands CURIEs in iri parameters. Defaults to the standard prefixes.
	Prefixes *store.PrefixMap

	// Reload enables POST /v1/reload when set.
	Reload ReloadFunc

	// Registry receives the API metrics. Defaults to a fresh registry.
	Registry *prometheus.Registry

	Logger *slog.Logger
}

// Server encapsulates the HTTP API server.
type Server struct {
	session  *session.Session
	config   Config
	metrics  *Metrics
	logger   *slog.Logger
	handler  http.Handler
	server   *http.Server
	registry *prometheus.Registry
}

// NewServer creates an API server over sess.
func NewServer(sess *session.Session, config Config) *Server {
	if config.Addr == "" {
		config.Addr = "127.0.0.1:8080"
	}
	if config.ReadTimeout == 0 {
		config.ReadTimeout = 10 * time.Second
	}
	if config.WriteTimeout == 0 {
		config.WriteTimeout = 30 * time.Second
	}
	if config.MaxDepth < config.DefaultDepth {
		config.MaxDepth = config.DefaultDepth
	}
	if config.Prefixes == nil {
		config.Prefixes = store.NewPrefixMap()
	}
	if config.Registry == nil {
		config.Registry = prometheus.NewRegistry()
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		session:  sess,
		config:   config,
		metrics:  NewMetrics(config.Registry),
		logger:   logger,
		registry: config.Registry,
	}

	if snapshot, err := sess.Current(); err == nil {
		s.metrics.SnapshotTriples.Set(float64(snapshot.Store.Count()))
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/health", s.instrument("health", s.handleHealth))
	mux.HandleFunc("GET /v1/overview", s.instrument("overview", s.withSnapshot(s.handleOverview)))
	mux.HandleFunc("GET /v1/classes", s.instrument("classes", s.withSnapshot(s.handleClasses)))
	mux.HandleFunc("GET /v1/properties", s.instrument("properties", s.withSnapshot(s.handleProperties)))
	mux.HandleFunc("GET /v1/graph/class", s.instrument("graph_class", s.withSnapshot(s.handleClassGraph)))
	mux.HandleFunc("GET /v1/graph/property", s.instrument("graph_property", s.withSnapshot(s.handlePropertyGraph)))
	mux.HandleFunc("GET /v1/node", s.instrument("node", s.withSnapshot(s.handleNode)))
	mux.HandleFunc("POST /v1/reload", s.instrument("reload", s.handleReload))
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	s.handler = s.withLogging(withRecovery(s.logger, mux))
	s.server = &http.Server{
		Addr:         config.Addr,
		Handler:      s.handler,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Handler returns the root handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Metrics returns the server's collectors.
func (s *Server) Metrics() *Metrics {
	return s.metrics
}

// Start runs the HTTP server (blocking).
func (s *Server) Start() error {
	s.logger.Info("API server starting", "addr", s.server.Addr)
	if err := s.server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("API server stopping")
	return s.server.Shutdown(ctx)
}

// snapshotHandler handles a request against one snapshot.
type snapshotHandler func(w http.ResponseWriter, r *http.Request, snapshot *session.Snapshot)

// withSnapshot resolves the current snapshot once per request.
func (s *Server) withSnapshot(next snapshotHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snapshot, err := s.session.Current()
		if err != nil {
			writeError(w, http.StatusServiceUnavailable, "no_snapshot", err.Error())
			return
		}
		w.Header().Set(SnapshotHeader, snapshot.ID)
		next(w, r, snapshot)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{Status: "ok"}
	if snapshot, err := s.session.Current(); err == nil {
		response.Snapshot = &SnapshotInfo{
			ID:          snapshot.ID,
			Source:      snapshot.Source,
			Fingerprint: snapshot.Fingerprint,
			Triples:     snapshot.Store.Count(),
			LoadedAt:    snapshot.LoadedAt,
		}
	} else {
		response.Status = "loading"
	}
	writeJSON(w, http.StatusOK, response)
}

func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request, snapshot *session.Snapshot) {
	writeJSON(w, http.StatusOK, ontology.Summarize(snapshot.Store))
}

func (s *Server) handleClasses(w http.ResponseWriter, r *http.Request, snapshot *session.Snapshot) {
	classes := ontology.FilterClasses(ontology.NewExtractor(s.logger).Classes(snapshot.Store), r.URL.Query().Get("q"))
	writeJSON(w, http.StatusOK, ClassesResponse{Count: len(classes), Classes: classes})
}

func (s *Server) handleProperties(w http.ResponseWriter, r *http.Request, snapshot *session.Snapshot) {
	query := r.URL.Query()
	properties := ontology.FilterProperties(ontology.NewExtractor(s.logger).Properties(snapshot.Store), query.Get("q"))

	if kindName := query.Get("kind"); kindName != "" {
		kind, err := ontology.ParsePropertyKind(kindName)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_kind", err.Error())
			return
		}
		properties = ontology.PropertiesOfKind(properties, kind)
	}
	writeJSON(w, http.StatusOK, PropertiesResponse{Count: len(properties), Properties: properties})
}

func (s *Server) handleClassGraph(w http.ResponseWriter, r *http.Request, snapshot *session.Snapshot) {
	iri, ok := s.requireIRI(w, r)
	if !ok {
		return
	}

	depth := s.config.DefaultDepth
	if raw := r.URL.Query().Get("depth"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_depth", fmt.Sprintf("depth %q is not an integer", raw))
			return
		}
		depth = parsed
	}
	if depth > s.config.MaxDepth {
		writeError(w, http.StatusBadRequest, "invalid_depth", fmt.Sprintf("depth %d exceeds the maximum of %d", depth, s.config.MaxDepth))
		return
	}

	g, err := ontology.BuildClassSubclassGraph(snapshot.Store, iri, depth)
	if errors.Is(err, ontology.ErrNegativeDepth) {
		writeError(w, http.StatusBadRequest, "invalid_depth", err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "graph_failed", err.Error())
		return
	}

	s.metrics.GraphNodes.WithLabelValues("class").Observe(float64(g.NodeCount()))
	writeGraph(w, r, g)
}

func (s *Server) handlePropertyGraph(w http.ResponseWriter, r *http.Request, snapshot *session.Snapshot) {
	iri, ok := s.requireIRI(w, r)
	if !ok {
		return
	}
	g := ontology.BuildPropertyGraph(snapshot.Store, iri)
	s.metrics.GraphNodes.WithLabelValues("property").Observe(float64(g.NodeCount()))
	writeGraph(w, r, g)
}

func (s *Server) handleNode(w http.ResponseWriter, r *http.Request, snapshot *session.Snapshot) {
	iri, ok := s.requireIRI(w, r)
	if !ok {
		return
	}

	if r.URL.Query().Get("view") == "graph" {
		g := ontology.DescribeGraph(snapshot.Store, iri)
		s.metrics.GraphNodes.WithLabelValues("node").Observe(float64(g.NodeCount()))
		writeGraph(w, r, g)
		return
	}
	writeJSON(w, http.StatusOK, ontology.DescribeNode(snapshot.Store, iri))
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if s.config.Reload == nil {
		writeError(w, http.StatusNotImplemented, "reload_disabled", "reloading is not configured")
		return
	}

	snapshot, err := s.config.Reload(r.Context())
	if err != nil {
		s.metrics.ObserveReload(0, err)
		s.logger.Error("Reload failed", "error", err)
		writeError(w, http.StatusBadGateway, "reload_failed", err.Error())
		return
	}
	s.metrics.ObserveReload(snapshot.Store.Count(), nil)

	w.Header().Set(SnapshotHeader, snapshot.ID)
	writeJSON(w, http.StatusOK, SnapshotInfo{
		ID:          snapshot.ID,
		Source:      snapshot.Source,
		Fingerprint: snapshot.Fingerprint,
		Triples:     snapshot.Store.Count(),
		LoadedAt:    snapshot.LoadedAt,
	})
}

// requireIRI reads the iri parameter, expanding CURIEs.
func (s *Server) requireIRI(w http.ResponseWriter, r *http.Request) (string, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get("iri"))
	if raw == "" {
		writeError(w, http.StatusBadRequest, "missing_iri", "the iri query parameter is required")
		return "", false
	}
	return s.config.Prefixes.Expand(raw), true
}

// writeGraph writes the JSON document, or DOT when format=dot.
func writeGraph(w http.ResponseWriter, r *http.Request, g *graph.NeighbourhoodGraph) {
	switch r.URL.Query().Get("format") {
	case "", "json":
		writeJSON(w, http.StatusOK, graph.ToDocument(g))
	case "dot":
		w.Header().Set("Content-Type", "text/vnd.graphviz; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(graph.ToDOT(g)))
	default:
		writeError(w, http.StatusBadRequest, "invalid_format", "format must be json or dot")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = render.WriteJSON(w, v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Error: code, Message: message})
}

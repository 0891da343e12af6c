// Package mcp exposes the extraction-and-traversal engine as Model Context
// Protocol tools over stdio.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/coolbeans/ontoscope/pkg/graph"
	"github.com/coolbeans/ontoscope/pkg/ontology"
	"github.com/coolbeans/ontoscope/pkg/session"
	"github.com/coolbeans/ontoscope/pkg/store"
)

const overviewURI = "ontoscope://overview"

// Config configures a Server.
type Config struct {
	Version      string
	DefaultDepth int
	MaxDepth     int
	Prefixes     *store.PrefixMap
	Logger       *slog.Logger
}

// Server adapts a session to the Model Context Protocol.
type Server struct {
	mcpServer *server.MCPServer
	session   *session.Session
	config    Config
	extractor *ontology.Extractor
}

// NewServer creates an MCP server over sess.
func NewServer(sess *session.Session, config Config) *Server {
	if config.Version == "" {
		config.Version = "dev"
	}
	if config.Prefixes == nil {
		config.Prefixes = store.NewPrefixMap()
	}
	if config.MaxDepth < config.DefaultDepth {
		config.MaxDepth = config.DefaultDepth
	}

	s := &Server{
		mcpServer: server.NewMCPServer(
			"ontoscope",
			config.Version,
			server.WithToolCapabilities(false),
			server.WithResourceCapabilities(false, false),
		),
		session:   sess,
		config:    config,
		extractor: ontology.NewExtractor(config.Logger),
	}
	s.registerResources()
	s.registerTools()
	return s
}

// Serve starts the MCP server on stdio.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcpServer)
}

// --- Resources ---

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(
		overviewURI,
		"Ontology overview",
		mcp.WithResourceDescription("Statement, class and property counts plus ontology metadata of the loaded snapshot"),
		mcp.WithMIMEType("application/json"),
	), s.handleReadOverview)
}

// --- Tools ---

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool(
		"list_classes",
		mcp.WithDescription("List classes (owl:Class and rdfs:Class) with labels, parents and comments."),
		mcp.WithString("query", mcp.Description("Case-insensitive filter on label or IRI")),
	), s.handleListClasses)

	s.mcpServer.AddTool(mcp.NewTool(
		"list_properties",
		mcp.WithDescription("List properties with kind, domain and range."),
		mcp.WithString("query", mcp.Description("Case-insensitive filter on label or IRI")),
		mcp.WithString("kind", mcp.Description("Object, Datatype, Annotation, Generic or Unknown")),
	), s.handleListProperties)

	s.mcpServer.AddTool(mcp.NewTool(
		"class_graph",
		mcp.WithDescription("Ancestors and descendants of a class over rdfs:subClassOf, as a node/edge graph."),
		mcp.WithString("iri", mcp.Required(), mcp.Description("Class IRI or CURIE (e.g. owl:Thing)")),
		mcp.WithNumber("depth", mcp.Description("Maximum hops in each direction")),
	), s.handleClassGraph)

	s.mcpServer.AddTool(mcp.NewTool(
		"property_graph",
		mcp.WithDescription("Domain and range classes of a property, as a node/edge graph."),
		mcp.WithString("iri", mcp.Required(), mcp.Description("Property IRI or CURIE")),
	), s.handlePropertyGraph)

	s.mcpServer.AddTool(mcp.NewTool(
		"describe_node",
		mcp.WithDescription("Everything the ontology states about one entity: label, comment, types, parents, children, and properties using it as domain or range."),
		mcp.WithString("iri", mcp.Required(), mcp.Description("Entity IRI or CURIE")),
	), s.handleDescribeNode)
}

// --- Handlers ---

func (s *Server) handleReadOverview(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	snapshot, err := s.session.Current()
	if err != nil {
		return nil, err
	}

	data, err := json.MarshalIndent(ontology.Summarize(snapshot.Store), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal overview: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      request.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (s *Server) handleListClasses(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	snapshot, err := s.session.Current()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	classes := ontology.FilterClasses(s.extractor.Classes(snapshot.Store), mcp.ParseString(request, "query", ""))
	return jsonResult(classes)
}

func (s *Server) handleListProperties(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	snapshot, err := s.session.Current()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	properties := ontology.FilterProperties(s.extractor.Properties(snapshot.Store), mcp.ParseString(request, "query", ""))
	if kindName := mcp.ParseString(request, "kind", ""); kindName != "" {
		kind, err := ontology.ParsePropertyKind(kindName)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		properties = ontology.PropertiesOfKind(properties, kind)
	}
	return jsonResult(properties)
}

func (s *Server) handleClassGraph(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	snapshot, iri, result := s.resolve(request)
	if result != nil {
		return result, nil
	}

	depth := mcp.ParseInt(request, "depth", s.config.DefaultDepth)
	if depth > s.config.MaxDepth {
		return mcp.NewToolResultError(fmt.Sprintf("depth %d exceeds the maximum of %d", depth, s.config.MaxDepth)), nil
	}

	g, err := ontology.BuildClassSubclassGraph(snapshot.Store, iri, depth)
	if errors.Is(err, ontology.ErrNegativeDepth) {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err != nil {
		return nil, err
	}
	return jsonResult(graph.ToDocument(g))
}

func (s *Server) handlePropertyGraph(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	snapshot, iri, result := s.resolve(request)
	if result != nil {
		return result, nil
	}
	return jsonResult(graph.ToDocument(ontology.BuildPropertyGraph(snapshot.Store, iri)))
}

func (s *Server) handleDescribeNode(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	snapshot, iri, result := s.resolve(request)
	if result != nil {
		return result, nil
	}
	return jsonResult(ontology.DescribeNode(snapshot.Store, iri))
}

// resolve reads the current snapshot and the expanded iri argument. A
// non-nil result is an error to return to the client as-is.
func (s *Server) resolve(request mcp.CallToolRequest) (*session.Snapshot, string, *mcp.CallToolResult) {
	snapshot, err := s.session.Current()
	if err != nil {
		return nil, "", mcp.NewToolResultError(err.Error())
	}

	raw := mcp.ParseString(request, "iri", "")
	if raw == "" {
		return nil, "", mcp.NewToolResultError("iri is required")
	}
	return snapshot, s.config.Prefixes.Expand(raw), nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

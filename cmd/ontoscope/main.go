package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/coolbeans/ontoscope/pkg/api"
	"github.com/coolbeans/ontoscope/pkg/config"
	"github.com/coolbeans/ontoscope/pkg/mcp"
	"github.com/coolbeans/ontoscope/pkg/ontology"
	"github.com/coolbeans/ontoscope/pkg/render"
	"github.com/coolbeans/ontoscope/pkg/session"
	"github.com/coolbeans/ontoscope/pkg/source"
)

var version = "0.1.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "ontoscope",
		Short: "Explore OWL/RDFS ontologies",
		Long: `Ontoscope loads an ontology from a local directory or a GitHub repository
and lets you browse its classes and properties, walk the subclass hierarchy
around a class, and inspect any node.

Graphs can be exported as JSON for visualization tools or as Graphviz DOT.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "Configuration file (default: ontoscope.yaml in the project)")
	flags.StringP("source", "s", "", "Ontology source: a file, a directory, or github:owner/repo@branch:dir")
	flags.String("pattern", "", "Glob that source documents must match (default: **/*.ttl)")
	flags.StringP("document", "d", "", "Load only this document (name or path)")
	flags.StringP("format", "f", "", "Output format: table or json")
	flags.String("delimiter", "", "Separator for multi-valued table cells")
	flags.String("log-level", "", "Log level: debug, info, warn or error")

	rootCmd.AddCommand(initCmd())
	rootCmd.AddCommand(overviewCmd())
	rootCmd.AddCommand(classesCmd())
	rootCmd.AddCommand(propertiesCmd())
	rootCmd.AddCommand(hierarchyCmd())
	rootCmd.AddCommand(propertyGraphCmd())
	rootCmd.AddCommand(describeCmd())
	rootCmd.AddCommand(sourcesCmd())
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(mcpCmd())

	return rootCmd
}

func initCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a configuration file with the defaults",
		Long: `Write ontoscope.yaml (or the file named by --config) holding the default
configuration. Source flags given on the command line are recorded in it.

Examples:
  ontoscope init --source ./ontology
  ontoscope init --config ~/.config/ontoscope/config.yaml --force`,
		RunE: func(cmd *cobra.Command, args []string) error {
			force, _ := cmd.Flags().GetBool("force")
			path, _ := cmd.Flags().GetString("config")
			if path == "" {
				path = config.ProjectConfigFile
			}

			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}

			cfg := config.DefaultConfig()
			if cmd.Flags().Changed("source") {
				cfg.Source.Location, _ = cmd.Flags().GetString("source")
			}
			if cmd.Flags().Changed("pattern") {
				cfg.Source.Pattern, _ = cmd.Flags().GetString("pattern")
			}
			if cmd.Flags().Changed("document") {
				cfg.Source.Document, _ = cmd.Flags().GetString("document")
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			if err := cfg.SaveToFile(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}

	cmd.Flags().Bool("force", false, "Overwrite an existing file")
	return cmd
}

func overviewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "overview",
		Short: "Summarize the loaded ontology",
		Long: `Show the ontology header and how many classes and properties of each
kind the source declares.

Example:
  ontoscope overview --source ./ontology`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			snapshot, err := a.snapshot(cmd.Context())
			if err != nil {
				return err
			}

			overview := ontology.Summarize(snapshot.Store)
			return a.emit(render.Overview(overview), overview)
		},
	}
}

func classesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classes",
		Short: "List declared classes",
		Long: `List every owl:Class and rdfs:Class with its label, parents and comment.

Examples:
  ontoscope classes
  ontoscope classes --query salmon --format json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			query, _ := cmd.Flags().GetString("query")

			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			snapshot, err := a.snapshot(cmd.Context())
			if err != nil {
				return err
			}

			classes := ontology.NewExtractor(a.logger).Classes(snapshot.Store)
			classes = ontology.FilterClasses(classes, query)
			return a.emit(render.Classes(classes, a.renderOptions()), classes)
		},
	}

	cmd.Flags().StringP("query", "q", "", "Only classes whose IRI or label contains this text")
	return cmd
}

func propertiesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "properties",
		Short: "List properties with their domains and ranges",
		Long: `List declared properties, and predicates that only appear with an
rdfs:domain or rdfs:range, together with their kind.

Kinds: object, datatype, annotation, generic, unknown.

Examples:
  ontoscope properties --kind object
  ontoscope properties --query stock`,
		RunE: func(cmd *cobra.Command, args []string) error {
			query, _ := cmd.Flags().GetString("query")
			kindName, _ := cmd.Flags().GetString("kind")

			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			snapshot, err := a.snapshot(cmd.Context())
			if err != nil {
				return err
			}

			properties := ontology.NewExtractor(a.logger).Properties(snapshot.Store)
			properties = ontology.FilterProperties(properties, query)
			if kindName != "" {
				kind, err := ontology.ParsePropertyKind(kindName)
				if err != nil {
					return err
				}
				properties = ontology.PropertiesOfKind(properties, kind)
			}
			return a.emit(render.Properties(properties, a.renderOptions()), properties)
		},
	}

	cmd.Flags().StringP("query", "q", "", "Only properties whose IRI or label contains this text")
	cmd.Flags().StringP("kind", "k", "", "Only properties of this kind")
	return cmd
}

func hierarchyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hierarchy <class>",
		Short: "Show the subclass neighbourhood of a class",
		Long: `Walk rdfs:subClassOf up to the ancestors and down to the descendants
of a class, at most --depth steps in each direction.

The class may be a full IRI or a CURIE using a configured prefix.

Examples:
  ontoscope hierarchy https://example.org/ontology#Salmon --depth 3
  ontoscope hierarchy ex:Salmon --dot | dot -Tsvg > salmon.svg`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dot, _ := cmd.Flags().GetBool("dot")

			a, err := newApp(cmd)
			if err != nil {
				return err
			}

			depth := a.config.Graph.DefaultDepth
			if cmd.Flags().Changed("depth") {
				depth, _ = cmd.Flags().GetInt("depth")
			}
			if depth > a.config.Graph.MaxDepth {
				return fmt.Errorf("depth %d exceeds the maximum of %d", depth, a.config.Graph.MaxDepth)
			}

			snapshot, err := a.snapshot(cmd.Context())
			if err != nil {
				return err
			}

			g, err := ontology.BuildClassSubclassGraph(snapshot.Store, a.prefixes.Expand(args[0]), depth)
			if err != nil {
				return err
			}
			return a.emitGraph(g, dot)
		},
	}

	cmd.Flags().Int("depth", 0, "Maximum steps from the class (default from config)")
	cmd.Flags().Bool("dot", false, "Write Graphviz DOT")
	return cmd
}

func propertyGraphCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "property-graph <property>",
		Short: "Show a property with its domains and ranges",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dot, _ := cmd.Flags().GetBool("dot")

			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			snapshot, err := a.snapshot(cmd.Context())
			if err != nil {
				return err
			}

			g := ontology.BuildPropertyGraph(snapshot.Store, a.prefixes.Expand(args[0]))
			return a.emitGraph(g, dot)
		},
	}

	cmd.Flags().Bool("dot", false, "Write Graphviz DOT")
	return cmd
}

func describeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "describe <iri>",
		Short: "Inspect any node in the ontology",
		Long: `Show the label, comment, types, parents, children, and the properties
that use a node as domain or range.

With --graph the same neighbourhood is written as a graph instead.

Examples:
  ontoscope describe ex:Salmon
  ontoscope describe ex:Salmon --graph --dot`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			asGraph, _ := cmd.Flags().GetBool("graph")
			dot, _ := cmd.Flags().GetBool("dot")

			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			snapshot, err := a.snapshot(cmd.Context())
			if err != nil {
				return err
			}

			iri := a.prefixes.Expand(args[0])
			if asGraph || dot {
				return a.emitGraph(ontology.DescribeGraph(snapshot.Store, iri), dot)
			}

			description := ontology.DescribeNode(snapshot.Store, iri)
			if !description.Known {
				a.logger.Warn("Node not found in the ontology", "iri", iri)
			}
			return a.emit(render.Description(description, a.renderOptions()), description)
		},
	}

	cmd.Flags().Bool("graph", false, "Write the neighbourhood as a graph")
	cmd.Flags().Bool("dot", false, "Write Graphviz DOT (implies --graph)")
	return cmd
}

func sourcesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sources",
		Short: "List the documents of the configured source",
		RunE: func(cmd *cobra.Command, args []string) error {
			clearCache, _ := cmd.Flags().GetBool("clear-cache")

			a, err := newApp(cmd)
			if err != nil {
				return err
			}

			if clearCache && a.config.GitHub.CacheDir != "" {
				cache, err := source.NewDiskCache(a.config.GitHub.CacheDir, a.config.GitHub.CacheTTL)
				if err != nil {
					return err
				}
				if err := cache.Clear(); err != nil {
					return fmt.Errorf("failed to clear cache: %w", err)
				}
				a.logger.Info("Download cache cleared", "dir", a.config.GitHub.CacheDir)
			}

			loader, err := a.loader()
			if err != nil {
				return err
			}
			documents, err := loader.Documents(cmd.Context())
			if err != nil {
				return err
			}

			view := render.View{Headers: []string{"Name", "Path", "Location"}}
			for _, document := range documents {
				view.Rows = append(view.Rows, []string{document.Name, document.Path, document.Location})
			}
			return a.emit(view, documents)
		},
	}

	cmd.Flags().Bool("clear-cache", false, "Remove cached downloads first")
	return cmd
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the ontology over HTTP",
		Long: `Start the JSON API. Every response is computed from one snapshot, named
in the X-Snapshot-ID header. POST /v1/reload loads the source again; with
--watch, local sources also reload when their files change.

Endpoints:
  GET  /v1/health
  GET  /v1/overview
  GET  /v1/classes?q=
  GET  /v1/properties?q=&kind=
  GET  /v1/graph/class?iri=&depth=&format=json|dot
  GET  /v1/graph/property?iri=&format=json|dot
  GET  /v1/node?iri=&view=graph
  POST /v1/reload
  GET  /metrics`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				a.config.Server.Addr, _ = cmd.Flags().GetString("addr")
			}
			if cmd.Flags().Changed("watch") {
				a.config.Source.Watch, _ = cmd.Flags().GetBool("watch")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			sess, loader, err := a.open(ctx)
			if err != nil {
				return err
			}

			server := api.NewServer(sess, api.Config{
				Addr:         a.config.Server.Addr,
				ReadTimeout:  a.config.Server.ReadTimeout,
				WriteTimeout: a.config.Server.WriteTimeout,
				DefaultDepth: a.config.Graph.DefaultDepth,
				MaxDepth:     a.config.Graph.MaxDepth,
				Prefixes:     a.prefixes,
				Reload: func(ctx context.Context) (*session.Snapshot, error) {
					return loader.Reload(ctx, sess)
				},
				Logger: a.logger,
			})

			if a.config.Source.Watch {
				watcher, err := source.NewWatcher(loader, sess, source.WatcherConfig{
					Logger: a.logger,
					OnReload: func(snapshot *session.Snapshot, err error) {
						triples := 0
						if snapshot != nil {
							triples = snapshot.Store.Count()
						}
						server.Metrics().ObserveReload(triples, err)
					},
				})
				if err != nil {
					return err
				}
				if err := watcher.Start(ctx); err != nil {
					return err
				}
				defer watcher.Stop()
			}

			errCh := make(chan error, 1)
			go func() {
				errCh <- server.Start()
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			a.logger.Info("Shutting down")
			return server.Stop(shutdownCtx)
		},
	}

	cmd.Flags().String("addr", "", "Listen address (default from config)")
	cmd.Flags().Bool("watch", false, "Reload local sources when files change")
	return cmd
}

func mcpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the ontology to MCP clients over stdio",
		Long: `Run a Model Context Protocol server on stdin/stdout exposing the
ontology overview as a resource and list_classes, list_properties,
class_graph, property_graph and describe_node as tools.

Logs are written to stderr.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			sess, _, err := a.open(cmd.Context())
			if err != nil {
				return err
			}

			return mcp.NewServer(sess, mcp.Config{
				Version:      version,
				DefaultDepth: a.config.Graph.DefaultDepth,
				MaxDepth:     a.config.Graph.MaxDepth,
				Prefixes:     a.prefixes,
				Logger:       a.logger,
			}).Serve()
		},
	}
}

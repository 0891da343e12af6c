package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/coolbeans/ontoscope/pkg/config"
	"github.com/coolbeans/ontoscope/pkg/graph"
	"github.com/coolbeans/ontoscope/pkg/render"
	"github.com/coolbeans/ontoscope/pkg/session"
	"github.com/coolbeans/ontoscope/pkg/source"
	"github.com/coolbeans/ontoscope/pkg/store"
)

// app is the resolved runtime shared by every command.
type app struct {
	config   *config.Config
	logger   *slog.Logger
	prefixes *store.PrefixMap
	out      io.Writer
}

// newApp layers defaults, config files and flags, then validates.
func newApp(cmd *cobra.Command) (*app, error) {
	flags := cmd.Flags()
	configPath, _ := flags.GetString("config")

	bootstrap := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	cfg, err := config.NewLoader(bootstrap).Load(configPath)
	if err != nil {
		return nil, err
	}

	if flags.Changed("source") {
		cfg.Source.Location, _ = flags.GetString("source")
	}
	if flags.Changed("document") {
		cfg.Source.Document, _ = flags.GetString("document")
	}
	if flags.Changed("pattern") {
		cfg.Source.Pattern, _ = flags.GetString("pattern")
	}
	if flags.Changed("format") {
		cfg.Output.Format, _ = flags.GetString("format")
	}
	if flags.Changed("delimiter") {
		cfg.Output.Delimiter, _ = flags.GetString("delimiter")
	}
	if flags.Changed("log-level") {
		cfg.LogLevel, _ = flags.GetString("log-level")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	level, _ := config.ParseLogLevel(cfg.LogLevel)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	return &app{
		config:   cfg,
		logger:   logger,
		prefixes: cfg.PrefixMap(),
		out:      cmd.OutOrStdout(),
	}, nil
}

// loader builds the source loader from configuration.
func (a *app) loader() (*source.Loader, error) {
	githubOptions := source.GitHubOptions{
		APIBaseURL: a.config.GitHub.APIBaseURL,
		RawBaseURL: a.config.GitHub.RawBaseURL,
		Logger:     a.logger,
	}
	if a.config.GitHub.TokenEnv != "" {
		githubOptions.Token = os.Getenv(a.config.GitHub.TokenEnv)
	}

	var client source.HTTPClient = &http.Client{Timeout: a.config.GitHub.Timeout}
	if a.config.GitHub.RequestInterval > 0 {
		client = source.NewThrottledClient(client, a.config.GitHub.RequestInterval)
	}
	githubOptions.Client = client

	if a.config.GitHub.CacheDir != "" && a.config.GitHub.CacheTTL > 0 {
		cache, err := source.NewDiskCache(a.config.GitHub.CacheDir, a.config.GitHub.CacheTTL)
		if err != nil {
			a.logger.Warn("Download cache disabled", "error", err)
		} else {
			githubOptions.Cache = cache
		}
	}

	src, err := source.Parse(a.config.Source.Location, source.Options{
		Pattern: a.config.Source.Pattern,
		GitHub:  githubOptions,
	})
	if err != nil {
		return nil, err
	}
	return source.NewLoader(src, a.config.Source.Document, a.logger), nil
}

// open loads the configured source into a new session.
func (a *app) open(ctx context.Context) (*session.Session, *source.Loader, error) {
	loader, err := a.loader()
	if err != nil {
		return nil, nil, err
	}

	sess := session.New(a.logger)
	if _, err := loader.Reload(ctx, sess); err != nil {
		return nil, nil, err
	}
	return sess, loader, nil
}

// snapshot loads the configured source and returns its snapshot.
func (a *app) snapshot(ctx context.Context) (*session.Snapshot, error) {
	sess, _, err := a.open(ctx)
	if err != nil {
		return nil, err
	}
	return sess.Current()
}

func (a *app) renderOptions() render.Options {
	return render.Options{Delimiter: a.config.Output.Delimiter, Prefixes: a.prefixes}
}

// emit writes value as JSON, or view as a table.
func (a *app) emit(view render.View, value any) error {
	if a.config.Output.Format == "json" {
		return render.WriteJSON(a.out, value)
	}
	return render.WriteTable(a.out, view)
}

// emitGraph writes a graph as DOT, its JSON document, or a node table.
func (a *app) emitGraph(g *graph.NeighbourhoodGraph, dot bool) error {
	if dot {
		_, err := io.WriteString(a.out, graph.ToDOT(g))
		return err
	}
	if a.config.Output.Format == "json" {
		return render.WriteJSON(a.out, graph.ToDocument(g))
	}
	return render.WriteTable(a.out, render.GraphNodes(g, a.renderOptions()))
}

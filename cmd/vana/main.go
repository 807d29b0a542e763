// Copyright 2025 The VANA Authors
// SPDX-License-Identifier: Apache-2.0

// Command vana runs the VANA multi-agent orchestrator.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"google.golang.org/genai"

	"github.com/vana-ai/vana/artifact"
	"github.com/vana-ai/vana/config"
	"github.com/vana-ai/vana/internal/vertexai/vectorsearch"
	"github.com/vana-ai/vana/memory"
	"github.com/vana-ai/vana/model"
	"github.com/vana-ai/vana/pkg/logging"
	"github.com/vana-ai/vana/runner"
	"github.com/vana-ai/vana/server"
	"github.com/vana-ai/vana/session"
	"github.com/vana-ai/vana/specialist"
	"github.com/vana-ai/vana/tool/tools"
	"github.com/vana-ai/vana/types"
)

type cli struct {
	Serve serveCmd `cmd:"" help:"Start the VANA HTTP server."`
	Smoke smokeCmd `cmd:"" help:"Probe a running VANA deployment with canned routing queries."`
}

type serveCmd struct{}

func (c *serveCmd) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)
	ctx = logging.NewContext(ctx, logger)

	searcher, err := newSearcher(ctx, cfg)
	if err != nil {
		return err
	}

	root, err := specialist.NewRootAgent(ctx, specialist.Config{
		Model:    cfg.Model,
		Searcher: searcher,
	})
	if err != nil {
		return fmt.Errorf("build agent tree: %w", err)
	}

	appName := specialist.RootAgentName
	var sessionService types.SessionService = session.NewInMemoryService(session.WithInMemoryLogger(logger))
	if cfg.AgentEngine != "" {
		appName = cfg.AgentEngine
		sessionService = session.NewVertexAIService(cfg.Project, cfg.Location, session.WithVertexLogger(logger))
	}

	var memoryService types.MemoryService = memory.NewInMemoryService(memory.WithLogger(logger))
	if cfg.HasRagMemory() {
		ragService, err := memory.NewVertexAIRagService(ctx, cfg.RagCorpus, cfg.StagingBucket,
			memory.WithVertexAIRagLogger(logger))
		if err != nil {
			return fmt.Errorf("create rag memory service: %w", err)
		}
		defer ragService.Close()
		memoryService = ragService
	}

	var artifactService types.ArtifactService = artifact.NewInMemoryService()
	if cfg.StagingBucket != "" {
		gcsService, err := artifact.NewGCSService(ctx, cfg.StagingBucket)
		if err != nil {
			return fmt.Errorf("create gcs artifact service: %w", err)
		}
		defer gcsService.Close()
		artifactService = gcsService
	}

	r, err := runner.NewRunner(appName, root,
		runner.WithSessionService(sessionService),
		runner.WithMemoryService(memoryService),
		runner.WithArtifactService(artifactService),
		runner.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	srv := server.New(r, server.WithLogger(logger))
	return srv.Serve(ctx, cfg.Addr())
}

// newSearcher builds the Vector Search backend for the data science tools,
// or nil when it is not configured.
func newSearcher(ctx context.Context, cfg *config.Config) (tools.SemanticSearcher, error) {
	if !cfg.HasVectorSearch() {
		return nil, nil
	}

	clientConfig := &genai.ClientConfig{APIKey: cfg.APIKey}
	if cfg.APIKey == "" {
		clientConfig = &genai.ClientConfig{
			Project:  cfg.Project,
			Location: cfg.Location,
			Backend:  genai.BackendVertexAI,
		}
	}
	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return vectorsearch.NewService(ctx, vectorsearch.Config{
		Project:              cfg.Project,
		Location:             cfg.Location,
		IndexName:            cfg.VectorSearchIndex,
		IndexEndpoint:        cfg.VectorSearchIndexEndpoint,
		DeployedIndexID:      cfg.VectorSearchDeployedIndexID,
		PublicEndpointDomain: cfg.VectorSearchPublicEndpoint,
	}, vectorsearch.NewEmbedder(client))
}

func main() {
	// Side effect: registers the built-in model families.
	_ = model.GetRegistry()

	parser := kong.Parse(&cli{},
		kong.Name("vana"),
		kong.Description("VANA, a multi-agent software engineering assistant."),
		kong.UsageOnError(),
	)
	parser.FatalIfErrorf(parser.Run())
}

// Copyright 2025 The VANA Authors
// SPDX-License-Identifier: Apache-2.0

package vectorsearch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	aiplatform "cloud.google.com/go/aiplatform/apiv1beta1"
	"cloud.google.com/go/aiplatform/apiv1beta1/aiplatformpb"
	"github.com/googleapis/gax-go/v2"
	"google.golang.org/api/option"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/vana-ai/vana/tool/tools"
)

// textNamespace is the reserved restrict namespace carrying the document text.
// Vector Search stores no payloads, so the text rides along as a restrict
// token and is recovered from full datapoints on retrieval.
const textNamespace = "text"

// TextEmbedder converts text into an embedding vector.
type TextEmbedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// matchAPI is the slice of the MatchService client used by [Service].
type matchAPI interface {
	FindNeighbors(ctx context.Context, req *aiplatformpb.FindNeighborsRequest, opts ...gax.CallOption) (*aiplatformpb.FindNeighborsResponse, error)
}

// indexAPI is the slice of the IndexService client used by [Service].
type indexAPI interface {
	UpsertDatapoints(ctx context.Context, req *aiplatformpb.UpsertDatapointsRequest, opts ...gax.CallOption) (*aiplatformpb.UpsertDatapointsResponse, error)
}

// Config describes the Vector Search deployment the service talks to.
type Config struct {
	// Project and Location identify the Google Cloud location.
	Project  string
	Location string

	// IndexName is the full index resource name,
	// projects/{project}/locations/{location}/indexes/{index}.
	IndexName string

	// IndexEndpoint is the full index endpoint resource name.
	IndexEndpoint string

	// DeployedIndexID is the ID of the deployed index on the endpoint.
	DeployedIndexID string

	// PublicEndpointDomain is the match service domain of the endpoint,
	// e.g. 1234.us-central1-123456.vdb.vertexai.goog.
	PublicEndpointDomain string
}

// Service queries and maintains a Vertex AI Vector Search index.
type Service struct {
	config   Config
	match    matchAPI
	index    indexAPI
	embedder TextEmbedder

	indexAdmin     *aiplatform.IndexClient
	endpointClient *aiplatform.IndexEndpointClient

	logger *slog.Logger
}

var _ tools.SemanticSearcher = (*Service)(nil)

// ServiceOption configures a [Service].
type ServiceOption func(*Service)

// WithServiceLogger sets the logger for the service.
func WithServiceLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = logger
	}
}

// NewService creates a Vector Search service for the given deployment.
func NewService(ctx context.Context, config Config, embedder TextEmbedder, opts ...ServiceOption) (*Service, error) {
	if embedder == nil {
		return nil, errors.New("embedder must be set")
	}
	if config.PublicEndpointDomain == "" {
		return nil, errors.New("public endpoint domain must be set")
	}

	regionEndpoint := fmt.Sprintf("%s-aiplatform.googleapis.com:443", config.Location)

	indexClient, err := aiplatform.NewIndexClient(ctx, option.WithEndpoint(regionEndpoint))
	if err != nil {
		return nil, fmt.Errorf("create index client: %w", err)
	}
	endpointClient, err := aiplatform.NewIndexEndpointClient(ctx, option.WithEndpoint(regionEndpoint))
	if err != nil {
		return nil, fmt.Errorf("create index endpoint client: %w", err)
	}
	matchClient, err := aiplatform.NewMatchClient(ctx, option.WithEndpoint(config.PublicEndpointDomain+":443"))
	if err != nil {
		return nil, fmt.Errorf("create match client: %w", err)
	}

	s := &Service{
		config:         config,
		match:          matchClient,
		index:          indexClient,
		embedder:       embedder,
		indexAdmin:     indexClient,
		endpointClient: endpointClient,
		logger:         slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// Search embeds the query and returns the topK nearest datapoints.
func (s *Service) Search(ctx context.Context, query string, topK int) ([]*tools.SemanticSearchResult, error) {
	if topK <= 0 {
		topK = 10
	}

	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}

	resp, err := s.match.FindNeighbors(ctx, &aiplatformpb.FindNeighborsRequest{
		IndexEndpoint:   s.config.IndexEndpoint,
		DeployedIndexId: s.config.DeployedIndexID,
		Queries: []*aiplatformpb.FindNeighborsRequest_Query{
			{
				Datapoint: &aiplatformpb.IndexDatapoint{
					FeatureVector: vector,
				},
				NeighborCount: int32(topK),
			},
		},
		ReturnFullDatapoint: true,
	})
	if err != nil {
		return nil, fmt.Errorf("find neighbors: %w", err)
	}

	var results []*tools.SemanticSearchResult
	for _, nearest := range resp.GetNearestNeighbors() {
		for _, neighbor := range nearest.GetNeighbors() {
			results = append(results, neighborToResult(neighbor))
		}
	}

	s.logger.DebugContext(ctx, "vector search",
		slog.String("index_endpoint", s.config.IndexEndpoint),
		slog.Int("results", len(results)),
	)

	return results, nil
}

// Index embeds the text and upserts it as a datapoint with the given ID.
func (s *Service) Index(ctx context.Context, id, text string, metadata map[string]string) error {
	vector, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return err
	}

	if _, err := s.index.UpsertDatapoints(ctx, &aiplatformpb.UpsertDatapointsRequest{
		Index: s.config.IndexName,
		Datapoints: []*aiplatformpb.IndexDatapoint{
			newDatapoint(id, vector, text, metadata),
		},
	}); err != nil {
		return fmt.Errorf("upsert datapoint %s: %w", id, err)
	}

	return nil
}

// CreateIndex creates a stream-updatable ANN index and returns its resource
// name. The call blocks until the index exists.
func (s *Service) CreateIndex(ctx context.Context, displayName string, dimensions int) (string, error) {
	metadata, err := structpb.NewValue(map[string]any{
		"config": map[string]any{
			"dimensions":                float64(dimensions),
			"approximateNeighborsCount": float64(150),
			"distanceMeasureType":       "DOT_PRODUCT_DISTANCE",
			"algorithmConfig": map[string]any{
				"treeAhConfig": map[string]any{},
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("build index metadata: %w", err)
	}

	op, err := s.indexAdmin.CreateIndex(ctx, &aiplatformpb.CreateIndexRequest{
		Parent: fmt.Sprintf("projects/%s/locations/%s", s.config.Project, s.config.Location),
		Index: &aiplatformpb.Index{
			DisplayName:       displayName,
			Metadata:          metadata,
			IndexUpdateMethod: aiplatformpb.Index_STREAM_UPDATE,
		},
	})
	if err != nil {
		return "", fmt.Errorf("create index: %w", err)
	}
	index, err := op.Wait(ctx)
	if err != nil {
		return "", fmt.Errorf("wait for index creation: %w", err)
	}

	return index.GetName(), nil
}

// DeployIndex deploys an index onto the configured endpoint. The call blocks
// until the deployment finishes.
func (s *Service) DeployIndex(ctx context.Context, indexName, deployedIndexID string) error {
	op, err := s.endpointClient.DeployIndex(ctx, &aiplatformpb.DeployIndexRequest{
		IndexEndpoint: s.config.IndexEndpoint,
		DeployedIndex: &aiplatformpb.DeployedIndex{
			Id:    deployedIndexID,
			Index: indexName,
		},
	})
	if err != nil {
		return fmt.Errorf("deploy index: %w", err)
	}
	if _, err := op.Wait(ctx); err != nil {
		return fmt.Errorf("wait for index deployment: %w", err)
	}

	return nil
}

// newDatapoint builds an [aiplatformpb.IndexDatapoint] carrying the text and
// metadata as restricts.
func newDatapoint(id string, vector []float32, text string, metadata map[string]string) *aiplatformpb.IndexDatapoint {
	restricts := []*aiplatformpb.IndexDatapoint_Restriction{
		{
			Namespace: textNamespace,
			AllowList: []string{text},
		},
	}
	for key, value := range metadata {
		restricts = append(restricts, &aiplatformpb.IndexDatapoint_Restriction{
			Namespace: key,
			AllowList: []string{value},
		})
	}

	return &aiplatformpb.IndexDatapoint{
		DatapointId:   id,
		FeatureVector: vector,
		Restricts:     restricts,
	}
}

// neighborToResult converts one neighbor into a search result, recovering
// text and metadata from the datapoint restricts.
func neighborToResult(neighbor *aiplatformpb.FindNeighborsResponse_Neighbor) *tools.SemanticSearchResult {
	result := &tools.SemanticSearchResult{
		ID:    neighbor.GetDatapoint().GetDatapointId(),
		Score: neighbor.GetDistance(),
	}

	for _, restrict := range neighbor.GetDatapoint().GetRestricts() {
		values := restrict.GetAllowList()
		if len(values) == 0 {
			continue
		}
		if restrict.GetNamespace() == textNamespace {
			result.Text = values[0]
			continue
		}
		if result.Metadata == nil {
			result.Metadata = make(map[string]string)
		}
		result.Metadata[restrict.GetNamespace()] = values[0]
	}

	return result
}

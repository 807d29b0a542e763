// Copyright 2025 The VANA Authors
// SPDX-License-Identifier: Apache-2.0

package memory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	aiplatform "cloud.google.com/go/aiplatform/apiv1beta1"
	"cloud.google.com/go/aiplatform/apiv1beta1/aiplatformpb"
	"cloud.google.com/go/auth/credentials"
	"cloud.google.com/go/storage"
	"github.com/bytedance/sonic"
	"google.golang.org/api/option"
	"google.golang.org/genai"

	"github.com/vana-ai/vana/types"
)

// VertexAIRagService implements [types.MemoryService] with a Vertex AI RAG
// corpus. Session transcripts are staged to a GCS bucket as JSONL and
// imported into the corpus; retrieval uses semantic similarity.
type VertexAIRagService struct {
	ragClient     *aiplatform.VertexRagClient
	ragDataClient *aiplatform.VertexRagDataClient
	storageClient *storage.Client

	// ragCorpus is the full corpus resource name,
	// projects/{project}/locations/{location}/ragCorpora/{corpus}.
	ragCorpus     string
	stagingBucket string

	similarityTopK          int
	vectorDistanceThreshold float64
	logger                  *slog.Logger
}

var _ types.MemoryService = (*VertexAIRagService)(nil)

// VertexAIRagOption is a functional option for configuring [VertexAIRagService].
type VertexAIRagOption func(*VertexAIRagService)

// WithVertexAIRagLogger sets the logger for the service.
func WithVertexAIRagLogger(logger *slog.Logger) VertexAIRagOption {
	return func(s *VertexAIRagService) {
		s.logger = logger
	}
}

// WithSimilarityTopK sets the number of contexts to retrieve.
func WithSimilarityTopK(topK int) VertexAIRagOption {
	return func(s *VertexAIRagService) {
		s.similarityTopK = topK
	}
}

// WithVectorDistanceThreshold sets the retrieval distance cutoff.
func WithVectorDistanceThreshold(threshold float64) VertexAIRagOption {
	return func(s *VertexAIRagService) {
		s.vectorDistanceThreshold = threshold
	}
}

// NewVertexAIRagService creates a memory service backed by the given RAG
// corpus. stagingBucket names the GCS bucket used to stage transcripts
// before import.
func NewVertexAIRagService(ctx context.Context, ragCorpus, stagingBucket string, opts ...VertexAIRagOption) (*VertexAIRagService, error) {
	if ragCorpus == "" {
		return nil, errors.New("ragCorpus must be set")
	}
	if stagingBucket == "" {
		return nil, errors.New("stagingBucket must be set")
	}

	creds, err := credentials.DetectDefault(&credentials.DetectOptions{
		Scopes: []string{
			"https://www.googleapis.com/auth/cloud-platform",
			storage.ScopeReadWrite,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("detect credentials: %w", err)
	}

	ragClient, err := aiplatform.NewVertexRagClient(ctx, option.WithAuthCredentials(creds))
	if err != nil {
		return nil, fmt.Errorf("create vertex rag client: %w", err)
	}
	ragDataClient, err := aiplatform.NewVertexRagDataClient(ctx, option.WithAuthCredentials(creds))
	if err != nil {
		return nil, fmt.Errorf("create vertex rag data client: %w", err)
	}
	storageClient, err := storage.NewClient(ctx, option.WithAuthCredentials(creds))
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}

	s := &VertexAIRagService{
		ragClient:               ragClient,
		ragDataClient:           ragDataClient,
		storageClient:           storageClient,
		ragCorpus:               ragCorpus,
		stagingBucket:           stagingBucket,
		similarityTopK:          5,
		vectorDistanceThreshold: 0.7,
		logger:                  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// Close releases the underlying API clients.
func (s *VertexAIRagService) Close() error {
	return errors.Join(
		s.ragClient.Close(),
		s.ragDataClient.Close(),
		s.storageClient.Close(),
	)
}

// transcriptLine is one JSONL line of a staged session transcript.
type transcriptLine struct {
	Author    string    `json:"author"`
	Timestamp time.Time `json:"timestamp"`
	Text      string    `json:"text"`
}

// buildTranscript renders the session's text events as JSONL. Events without
// text are skipped.
func buildTranscript(session types.Session) (string, error) {
	var lines []string
	for _, event := range session.Events() {
		if event.Content == nil || len(event.Content.Parts) == 0 {
			continue
		}

		var texts []string
		for _, part := range event.Content.Parts {
			if part.Text != "" {
				texts = append(texts, strings.ReplaceAll(part.Text, "\n", " "))
			}
		}
		if len(texts) == 0 {
			continue
		}

		data, err := sonic.ConfigFastest.Marshal(transcriptLine{
			Author:    event.Author,
			Timestamp: event.Timestamp,
			Text:      strings.Join(texts, ". "),
		})
		if err != nil {
			return "", fmt.Errorf("marshal transcript line: %w", err)
		}
		lines = append(lines, string(data))
	}

	return strings.Join(lines, "\n"), nil
}

// AddSessionToMemory stages the session transcript to GCS and imports it
// into the RAG corpus.
func (s *VertexAIRagService) AddSessionToMemory(ctx context.Context, session types.Session) error {
	transcript, err := buildTranscript(session)
	if err != nil {
		return err
	}
	if transcript == "" {
		s.logger.InfoContext(ctx, "session has no text events, skipping memory import",
			slog.String("session_id", session.ID()),
		)
		return nil
	}

	objectName := fmt.Sprintf("memory/%s/%s/%s.jsonl", session.AppName(), session.UserID(), session.ID())
	writer := s.storageClient.Bucket(s.stagingBucket).Object(objectName).NewWriter(ctx)
	writer.ContentType = "application/jsonl"
	if _, err := writer.Write([]byte(transcript)); err != nil {
		writer.Close()
		return fmt.Errorf("stage transcript to gs://%s/%s: %w", s.stagingBucket, objectName, err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("stage transcript to gs://%s/%s: %w", s.stagingBucket, objectName, err)
	}

	op, err := s.ragDataClient.ImportRagFiles(ctx, &aiplatformpb.ImportRagFilesRequest{
		Parent: s.ragCorpus,
		ImportRagFilesConfig: &aiplatformpb.ImportRagFilesConfig{
			ImportSource: &aiplatformpb.ImportRagFilesConfig_GcsSource{
				GcsSource: &aiplatformpb.GcsSource{
					Uris: []string{fmt.Sprintf("gs://%s/%s", s.stagingBucket, objectName)},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("import rag files: %w", err)
	}
	if _, err := op.Wait(ctx); err != nil {
		return fmt.Errorf("wait for rag import: %w", err)
	}

	s.logger.InfoContext(ctx, "imported session into rag corpus",
		slog.String("session_id", session.ID()),
		slog.String("rag_corpus", s.ragCorpus),
	)

	return nil
}

// SearchMemory retrieves contexts from the RAG corpus matching the query.
func (s *VertexAIRagService) SearchMemory(ctx context.Context, appName, userID, query string) (*types.SearchMemoryResponse, error) {
	idx := strings.Index(s.ragCorpus, "/ragCorpora/")
	if idx < 0 {
		return nil, fmt.Errorf("malformed rag corpus name %q", s.ragCorpus)
	}
	parent := s.ragCorpus[:idx]

	resp, err := s.ragClient.RetrieveContexts(ctx, &aiplatformpb.RetrieveContextsRequest{
		Parent: parent,
		DataSource: &aiplatformpb.RetrieveContextsRequest_VertexRagStore_{
			VertexRagStore: &aiplatformpb.RetrieveContextsRequest_VertexRagStore{
				RagResources: []*aiplatformpb.RetrieveContextsRequest_VertexRagStore_RagResource{
					{RagCorpus: s.ragCorpus},
				},
				VectorDistanceThreshold: genai.Ptr(s.vectorDistanceThreshold),
			},
		},
		Query: &aiplatformpb.RagQuery{
			Query: &aiplatformpb.RagQuery_Text{
				Text: query,
			},
			SimilarityTopK: int32(s.similarityTopK),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("retrieve contexts: %w", err)
	}

	response := &types.SearchMemoryResponse{
		Memories: make([]*types.MemoryEntry, 0),
	}
	if resp.GetContexts() == nil {
		return response, nil
	}
	for _, ragContext := range resp.GetContexts().GetContexts() {
		if ragContext.GetText() == "" {
			continue
		}
		response.Memories = append(response.Memories, &types.MemoryEntry{
			Content: genai.NewContentFromText(ragContext.GetText(), genai.RoleModel),
			Author:  ragContext.GetSourceDisplayName(),
		})
	}

	return response, nil
}

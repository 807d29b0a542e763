// Copyright 2025 The VANA Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads the VANA runtime configuration from environment
// variables.
package config

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"
)

// Config is the environment-driven runtime configuration.
type Config struct {
	// Project is the Google Cloud project ID.
	Project string `mapstructure:"GOOGLE_CLOUD_PROJECT"`

	// Location is the Google Cloud region for Vertex AI resources.
	Location string `mapstructure:"GOOGLE_CLOUD_LOCATION"`

	// APIKey is the Gemini API key. Unset when running against Vertex AI.
	APIKey string `mapstructure:"GOOGLE_API_KEY"`

	// Model is the model name used by every agent.
	Model string `mapstructure:"VANA_MODEL"`

	// AgentEngine is the full Vertex AI Agent Engine resource name. When
	// set, sessions are stored there instead of in memory.
	AgentEngine string `mapstructure:"VANA_AGENT_ENGINE"`

	// RagCorpus is the full Vertex AI RAG corpus resource name backing
	// long-term memory.
	RagCorpus string `mapstructure:"RAG_CORPUS"`

	// StagingBucket is the GCS bucket used to stage session transcripts
	// before importing them into the RAG corpus.
	StagingBucket string `mapstructure:"VANA_STAGING_BUCKET"`

	// VectorSearchIndex is the full Vector Search index resource name.
	VectorSearchIndex string `mapstructure:"VECTOR_SEARCH_INDEX"`

	// VectorSearchIndexEndpoint is the full index endpoint resource name.
	VectorSearchIndexEndpoint string `mapstructure:"VECTOR_SEARCH_INDEX_ENDPOINT"`

	// VectorSearchDeployedIndexID is the deployed index ID on the endpoint.
	VectorSearchDeployedIndexID string `mapstructure:"VECTOR_SEARCH_DEPLOYED_INDEX_ID"`

	// VectorSearchPublicEndpoint is the public endpoint domain of the
	// index endpoint, used for queries.
	VectorSearchPublicEndpoint string `mapstructure:"VECTOR_SEARCH_PUBLIC_ENDPOINT"`

	// Port is the HTTP server port.
	Port int `mapstructure:"PORT"`
}

// envKeys lists every environment variable the config reads.
var envKeys = []string{
	"GOOGLE_CLOUD_PROJECT",
	"GOOGLE_CLOUD_LOCATION",
	"GOOGLE_API_KEY",
	"VANA_MODEL",
	"VANA_AGENT_ENGINE",
	"RAG_CORPUS",
	"VANA_STAGING_BUCKET",
	"VECTOR_SEARCH_INDEX",
	"VECTOR_SEARCH_INDEX_ENDPOINT",
	"VECTOR_SEARCH_DEPLOYED_INDEX_ID",
	"VECTOR_SEARCH_PUBLIC_ENDPOINT",
	"PORT",
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	v := viper.New()
	v.SetDefault("GOOGLE_CLOUD_LOCATION", "us-central1")
	v.SetDefault("VANA_MODEL", "gemini-2.0-flash")
	v.SetDefault("PORT", 8080)
	for _, key := range envKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the cross-field constraints.
func (c *Config) Validate() error {
	if c.Model == "" {
		return errors.New("VANA_MODEL must not be empty")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("PORT %d out of range", c.Port)
	}
	if c.RagCorpus != "" && c.StagingBucket == "" {
		return errors.New("RAG_CORPUS requires VANA_STAGING_BUCKET")
	}
	if c.HasVectorSearch() && c.Project == "" {
		return errors.New("vector search requires GOOGLE_CLOUD_PROJECT")
	}
	if c.AgentEngine != "" && c.Project == "" {
		return errors.New("VANA_AGENT_ENGINE requires GOOGLE_CLOUD_PROJECT")
	}
	return nil
}

// HasVectorSearch reports whether all Vector Search settings are present.
func (c *Config) HasVectorSearch() bool {
	return c.VectorSearchIndex != "" &&
		c.VectorSearchIndexEndpoint != "" &&
		c.VectorSearchDeployedIndexID != "" &&
		c.VectorSearchPublicEndpoint != ""
}

// HasRagMemory reports whether the Vertex AI RAG memory backend is
// configured.
func (c *Config) HasRagMemory() bool {
	return c.RagCorpus != "" && c.StagingBucket != ""
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/viper"

	"github.com/pdiddy/privylens/internal/embedding"
	"github.com/pdiddy/privylens/internal/formulate"
	"github.com/pdiddy/privylens/internal/history"
	"github.com/pdiddy/privylens/internal/pipeline"
	"github.com/pdiddy/privylens/internal/provider"
	"github.com/pdiddy/privylens/internal/rank"
	"github.com/pdiddy/privylens/pkg/types"
)

// loadAppConfig resolves the full configuration: viper (config file plus
// PRIVYLENS_* environment) with defaults, API keys falling back to .secrets/.
func loadAppConfig() (types.AppConfig, error) {
	v := viper.GetViper()

	v.SetDefault("embedding.base_url", "http://localhost:11434/v1")
	v.SetDefault("embedding.model", "snowflake-arctic-embed")
	v.SetDefault("embedding.pool_size", 4)
	v.SetDefault("formulate.base_url", "http://localhost:11434/v1")
	v.SetDefault("formulate.model", "llama3")
	v.SetDefault("formulate.temperature", 0.6)
	v.SetDefault("search.timeout", 30*time.Second)
	v.SetDefault("search.user_agent", "privylens/"+version)
	v.SetDefault("search.max_results", 10)
	v.SetDefault("history.base_dir", "searches")
	v.SetDefault("serve.listen", ":8080")
	v.SetDefault("serve.env", "dev")

	var cfg types.AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("parsing configuration: %w", err)
	}

	cfg.Embedding.APIKey = secretDefault("openai-api-key", cfg.Embedding.APIKey)
	cfg.Formulate.APIKey = secretDefault("openai-api-key", cfg.Formulate.APIKey)
	cfg.Search.GoogleAPIKey = secretDefault("google-cse-key", cfg.Search.GoogleAPIKey)
	cfg.Search.GoogleEngineID = secretDefault("google-cse-id", cfg.Search.GoogleEngineID)

	return cfg, nil
}

// buildPipeline assembles the search pipeline and opens the archive. The
// caller owns closing the archive.
func buildPipeline(cfg types.AppConfig) (*pipeline.Pipeline, *history.Archive, error) {
	archive, err := history.NewArchive(cfg.History.BaseDir)
	if err != nil {
		return nil, nil, err
	}

	httpClient := &http.Client{Timeout: cfg.Search.Timeout}

	embedder := embedding.NewClient(embedding.Config{
		APIKey:  cfg.Embedding.APIKey,
		BaseURL: cfg.Embedding.BaseURL,
		Model:   cfg.Embedding.Model,
	})

	formulator := formulate.NewLLMFormulator(formulate.Config{
		APIKey:      cfg.Formulate.APIKey,
		BaseURL:     cfg.Formulate.BaseURL,
		Model:       cfg.Formulate.Model,
		Temperature: cfg.Formulate.Temperature,
	})

	providers := make(map[string]provider.Provider)
	for _, name := range provider.Names() {
		p, err := provider.ByName(name, httpClient)
		if err != nil {
			archive.Close()
			return nil, nil, err
		}
		providers[name] = p
	}

	return &pipeline.Pipeline{
		Formulator: formulator,
		Providers:  providers,
		Ranker:     rank.NewRanker(embedder, cfg.Embedding.PoolSize),
		Archive:    archive,
		Config:     cfg.Search,
	}, archive, nil
}

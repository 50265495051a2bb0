package analysis

import (
	"context"
	"errors"
	"fmt"

	"github.com/mariamalualmeida/FinanceAI-3.0-sub001/internal/config"
	"github.com/mariamalualmeida/FinanceAI-3.0-sub001/internal/dedup"
	"github.com/mariamalualmeida/FinanceAI-3.0-sub001/internal/extractor"
	"github.com/mariamalualmeida/FinanceAI-3.0-sub001/internal/gcs"
	infra "github.com/mariamalualmeida/FinanceAI-3.0-sub001/internal/infra/bigquery"
	"github.com/mariamalualmeida/FinanceAI-3.0-sub001/internal/llm"
	"github.com/mariamalualmeida/FinanceAI-3.0-sub001/internal/logger"
	"github.com/mariamalualmeida/FinanceAI-3.0-sub001/internal/pipeline"
	"github.com/mariamalualmeida/FinanceAI-3.0-sub001/internal/validator"
)

// Build wires a Service from cfg: Gemini backends for extraction and validation when
// enabled, the BigQuery run recorder when a project is set, and a GCS fetcher when
// credentials are available. The returned cleanup closes every client.
func Build(ctx context.Context, cfg *config.Config) (*Service, func(), error) {
	log := logger.FromContext(ctx)
	var closers []func() error
	cleanup := func() {
		for _, c := range closers {
			if err := c(); err != nil {
				log.Warn().Err(err).Msg("Close failed")
			}
		}
	}

	orchOpts := []pipeline.Option{pipeline.WithGateThreshold(cfg.Pipeline.GateThreshold)}
	svcOpts := []Option{WithGuard(dedup.NewMemoryGuard(cfg.Jobs.GuardTTL))}

	geminiCfg := llm.GeminiConfig{
		Model:      cfg.LLM.Model,
		APIVersion: cfg.LLM.APIVersion,
		Timeout:    cfg.LLM.Timeout,
	}
	extractionBackend, err := llm.New(ctx, cfg.LLM.Provider, geminiCfg)
	switch {
	case errors.Is(err, llm.ErrNoBackend):
		log.Info().Msg("Reasoning backend disabled; documents go to the parsers")
	case err != nil:
		return nil, cleanup, fmt.Errorf("Build: extraction backend: %w", err)
	default:
		orchOpts = append(orchOpts, pipeline.WithExtractor(extractor.New(extractionBackend)))

		// The validator gets its own client so it never shares state with extraction.
		validationBackend, err := llm.New(ctx, cfg.LLM.Provider, geminiCfg)
		if err != nil {
			return nil, cleanup, fmt.Errorf("Build: validation backend: %w", err)
		}
		svcOpts = append(svcOpts, WithValidator(validator.New(validationBackend, cfg.Pipeline.ValidatorTextLimit)))
	}

	if cfg.RecorderEnabled() {
		repo, err := infra.NewRunRepository(ctx, cfg.Recorder.ProjectID, cfg.Recorder.Dataset)
		if err != nil {
			return nil, cleanup, fmt.Errorf("Build: run recorder: %w", err)
		}
		closers = append(closers, repo.Close)
		orchOpts = append(orchOpts, pipeline.WithRecorder(repo))
	}

	if client, err := gcs.NewClient(ctx); err != nil {
		log.Debug().Err(err).Msg("GCS unavailable; gs:// documents disabled")
	} else {
		closers = append(closers, client.Close)
		svcOpts = append(svcOpts, WithFetcher(client))
	}

	return NewService(pipeline.NewOrchestrator(orchOpts...), svcOpts...), cleanup, nil
}

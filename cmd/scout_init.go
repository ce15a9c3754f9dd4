package main

import (
	"net/http"
	"time"

	"github.com/meridian-vc/scout-cli/internal/discovery"
	"github.com/meridian-vc/scout-cli/internal/enrich"
	"github.com/meridian-vc/scout-cli/internal/pipeline"
	anthropicpkg "github.com/meridian-vc/scout-cli/pkg/anthropic"
	"github.com/meridian-vc/scout-cli/pkg/linkup"
	"github.com/meridian-vc/scout-cli/pkg/perplexity"
)

// scoutEnv holds the initialized clients and pipeline shared by the
// run/serve/enhance commands.
type scoutEnv struct {
	Discoverer *discovery.Discoverer
	Enricher   *enrich.Enricher
	Pipeline   *pipeline.Pipeline
}

// initScout validates credentials and wires all API clients into the
// pipeline.
func initScout() (*scoutEnv, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	search := linkup.NewClient(cfg.Linkup.Key,
		linkup.WithBaseURL(cfg.Linkup.BaseURL),
		linkup.WithRateLimit(cfg.Linkup.RatePerSec),
		linkup.WithHTTPClient(&http.Client{
			Timeout: time.Duration(cfg.Linkup.TimeoutSecs) * time.Second,
		}),
	)

	llm := anthropicpkg.NewClient(cfg.Anthropic.Key,
		anthropicpkg.WithRequestTimeout(time.Duration(cfg.Anthropic.TimeoutSecs)*time.Second),
	)

	// Discovery and scoring reason over whole result sets; extraction per
	// company is high-volume, so it runs on the cheaper tier.
	disc := discovery.NewDiscoverer(search, llm, cfg.Anthropic.SonnetModel, cfg.Discovery)

	var enrichOpts []enrich.Option
	if cfg.Perplexity.Key != "" {
		px := perplexity.NewClient(cfg.Perplexity.Key,
			perplexity.WithBaseURL(cfg.Perplexity.BaseURL),
			perplexity.WithModel(cfg.Perplexity.Model),
		)
		enrichOpts = append(enrichOpts, enrich.WithFallbackProvider(px))
	}
	enr := enrich.NewEnricher(search, llm, cfg.Anthropic.HaikuModel, cfg.Enrich, enrichOpts...)

	return &scoutEnv{
		Discoverer: disc,
		Enricher:   enr,
		Pipeline:   pipeline.New(disc, enr, cfg.Pipeline.MaxWorkers),
	}, nil
}

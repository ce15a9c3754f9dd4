// Package pipeline orchestrates a scout run: discovery, the concurrent
// enrichment fan-out, and the stream of progress events the caller
// renders. Every run ends with exactly one terminal event.
package pipeline

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/meridian-vc/scout-cli/internal/model"
)

// Discoverer produces candidates for a thesis.
type Discoverer interface {
	Discover(ctx context.Context, thesis string, maxCandidates int) ([]model.Candidate, error)
}

// EmitFunc receives progress events as the run advances. Implementations
// must be cheap; the pipeline calls them inline.
type EmitFunc func(model.ProgressEvent)

// Pipeline wires discovery and enrichment into a single run.
type Pipeline struct {
	discoverer Discoverer
	enricher   Enricher
	maxWorkers int
}

// New creates a Pipeline. maxWorkers bounds concurrent enrichments.
func New(discoverer Discoverer, enricher Enricher, maxWorkers int) *Pipeline {
	return &Pipeline{
		discoverer: discoverer,
		enricher:   enricher,
		maxWorkers: maxWorkers,
	}
}

// Run executes one scout run and streams progress through emit. The
// returned error mirrors the terminal error event: a nil return means a
// complete event was emitted, an error return means an error event was.
func (p *Pipeline) Run(ctx context.Context, req model.ScoutRequest, emit EmitFunc) error {
	if emit == nil {
		emit = func(model.ProgressEvent) {}
	}
	runID := uuid.NewString()
	log := zap.L().With(zap.String("run_id", runID))

	thesis := strings.TrimSpace(req.Thesis)
	if thesis == "" {
		emit(model.ErrorEvent("investment thesis is required"))
		return eris.New("pipeline: thesis is required")
	}
	log.Info("run started", zap.String("thesis", thesis))

	emit(model.StatusEvent("Analyzing investment thesis..."))
	emit(model.StatusEvent("Searching for matching companies..."))

	cands, err := p.discoverer.Discover(ctx, thesis, req.MaxCandidates)
	if err != nil {
		log.Error("discovery failed", zap.Error(err))
		emit(model.ErrorEvent("company discovery failed"))
		return eris.Wrap(err, "pipeline: discover")
	}
	if err := ctx.Err(); err != nil {
		emit(model.ErrorEvent("run cancelled"))
		return eris.Wrap(err, "pipeline: cancelled")
	}

	// No candidates is a legitimate outcome, not an error.
	if len(cands) == 0 {
		log.Info("run complete, no candidates found")
		emit(model.StatusEvent("No matching companies found."))
		emit(model.CompleteEvent(nil))
		return nil
	}

	emit(model.StatusEvent(fmt.Sprintf("Found %d companies. Researching each in depth...", len(cands))))

	companies := EnrichAll(ctx, p.enricher, cands, thesis, req.Attributes, p.maxWorkers)
	if err := ctx.Err(); err != nil {
		emit(model.ErrorEvent("run cancelled"))
		return eris.Wrap(err, "pipeline: cancelled")
	}

	emit(model.StatusEvent("Finalizing results..."))
	for i := range companies {
		companies[i].FillSentinels()
	}
	sort.SliceStable(companies, func(i, j int) bool {
		return companies[i].RelevanceScore > companies[j].RelevanceScore
	})

	log.Info("run complete", zap.Int("companies", len(companies)))
	emit(model.CompleteEvent(companies))
	return nil
}

package pipeline

import (
	"context"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/meridian-vc/scout-cli/internal/model"
)

// Enricher is the per-candidate deep dive the coordinator fans out to.
type Enricher interface {
	Enrich(ctx context.Context, cand model.Candidate, thesis string, attrs []string) (*model.EnrichedCompany, error)
}

// EnrichAll enriches every candidate with bounded concurrency. A failed
// or panicking task never drops its candidate: the result set always
// contains exactly one record per input, degraded records substituted
// where enrichment failed. Order of inputs is preserved.
func EnrichAll(ctx context.Context, enricher Enricher, cands []model.Candidate, thesis string, attrs []string, maxWorkers int) []model.EnrichedCompany {
	if len(cands) == 0 {
		return []model.EnrichedCompany{}
	}
	if maxWorkers <= 0 {
		maxWorkers = 3
	}

	results := make([]model.EnrichedCompany, len(cands))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxWorkers)

	for i, cand := range cands {
		g.Go(func() error {
			log := zap.L().With(zap.String("company", cand.Name))

			company, err := enrichSafe(gctx, enricher, cand, thesis, attrs)
			if err == nil && company == nil {
				err = eris.New("pipeline: enricher returned no record")
			}
			if err != nil {
				log.Error("enrichment failed, substituting degraded record", zap.Error(err))
				degraded := model.DegradedCompany(cand, err.Error())
				company = &degraded
			}

			mu.Lock()
			results[i] = *company
			mu.Unlock()
			return nil // one failure never aborts the batch
		})
	}
	_ = g.Wait()

	return results
}

// enrichSafe converts a panicking enrichment task into an error so a
// single bad candidate cannot take down the run.
func enrichSafe(ctx context.Context, enricher Enricher, cand model.Candidate, thesis string, attrs []string) (company *model.EnrichedCompany, err error) {
	defer func() {
		if r := recover(); r != nil {
			company = nil
			err = eris.Errorf("pipeline: enrichment panic: %v", r)
		}
	}()
	return enricher.Enrich(ctx, cand, thesis, attrs)
}

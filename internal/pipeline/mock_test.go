package pipeline

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/meridian-vc/scout-cli/internal/model"
)

// mockDiscoverer implements Discoverer.
type mockDiscoverer struct {
	cands  []model.Candidate
	err    error
	calls  int
	thesis string
}

func (m *mockDiscoverer) Discover(_ context.Context, thesis string, _ int) ([]model.Candidate, error) {
	m.calls++
	m.thesis = thesis
	if m.err != nil {
		return nil, m.err
	}
	return m.cands, nil
}

// mockEnricher implements Enricher with per-company behavior. Companies
// named in failures error out; companies named in panics panic.
type mockEnricher struct {
	failures map[string]bool
	panics   map[string]bool
	nils     map[string]bool
	scores   map[string]int
	delay    func()

	mu          sync.Mutex
	enriched    []string
	inFlight    atomic.Int32
	maxInFlight atomic.Int32
}

func (m *mockEnricher) Enrich(_ context.Context, cand model.Candidate, _ string, _ []string) (*model.EnrichedCompany, error) {
	n := m.inFlight.Add(1)
	defer m.inFlight.Add(-1)
	for {
		prev := m.maxInFlight.Load()
		if n <= prev || m.maxInFlight.CompareAndSwap(prev, n) {
			break
		}
	}
	if m.delay != nil {
		m.delay()
	}

	if m.panics[cand.Name] {
		panic("boom: " + cand.Name)
	}
	if m.nils[cand.Name] {
		return nil, nil
	}
	if m.failures[cand.Name] {
		return nil, errors.New("enrichment blew up")
	}

	m.mu.Lock()
	m.enriched = append(m.enriched, cand.Name)
	m.mu.Unlock()

	company := model.EnrichedCompany{
		Name:           cand.Name,
		URL:            cand.URL,
		Country:        cand.Country,
		Description:    "does things",
		RelevanceScore: m.scores[cand.Name],
	}
	company.FillSentinels()
	return &company, nil
}

// collectEvents returns an EmitFunc appending into events.
func collectEvents(events *[]model.ProgressEvent) EmitFunc {
	return func(e model.ProgressEvent) {
		*events = append(*events, e)
	}
}

func countTerminal(events []model.ProgressEvent) int {
	n := 0
	for _, e := range events {
		if e.Terminal() {
			n++
		}
	}
	return n
}

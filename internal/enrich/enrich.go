// Package enrich runs the per-candidate deep dive: bounded web searches
// per attribute, one extraction call over the gathered evidence, and a
// relevance judgment against the thesis.
package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/meridian-vc/scout-cli/internal/config"
	"github.com/meridian-vc/scout-cli/internal/llmjson"
	"github.com/meridian-vc/scout-cli/internal/model"
	"github.com/meridian-vc/scout-cli/internal/resilience"
	"github.com/meridian-vc/scout-cli/pkg/anthropic"
	"github.com/meridian-vc/scout-cli/pkg/linkup"
	"github.com/meridian-vc/scout-cli/pkg/perplexity"
)

const (
	extractMaxTokens = 4096

	// search attempt bounds per attribute.
	minSearchAttempts = 2
	maxSearchAttempts = 5

	extractSystemPrompt = `You extract company attributes from web search evidence for an investment analyst.
For each requested attribute, report what the evidence supports:
- confidence "verified" when a source states the value directly
- confidence "approximate" when the value is estimated or inferred from partial data
- confidence "unknown" when the evidence does not support any value
Never invent values. An unknown is always better than a guess.
Respond with a JSON array only:
[{"attribute": "...", "value": "...", "confidence": "...", "reasoning": "...", "source_url": "..."}]`
)

// Enricher resolves the attribute schema for one candidate at a time.
type Enricher struct {
	search   linkup.Client
	llm      anthropic.Client
	fallback perplexity.Client
	registry *model.AttributeRegistry
	llmModel string
	cfg      config.EnrichConfig
}

// Option configures an Enricher.
type Option func(*Enricher)

// WithFallbackProvider sets the optional third-attempt research provider.
func WithFallbackProvider(p perplexity.Client) Option {
	return func(e *Enricher) { e.fallback = p }
}

// NewEnricher creates an Enricher with the given dependencies.
func NewEnricher(search linkup.Client, llm anthropic.Client, llmModel string, cfg config.EnrichConfig, opts ...Option) *Enricher {
	e := &Enricher{
		search:   search,
		llm:      llm,
		registry: model.LoadAttributeRegistry(),
		llmModel: llmModel,
		cfg:      cfg,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Enrich researches one candidate and returns the flattened record. The
// identity fields of the candidate are always preserved. An error is
// returned only when the extraction call exhausts its retry budget; the
// caller substitutes a degraded record in that case.
func (e *Enricher) Enrich(ctx context.Context, cand model.Candidate, thesis string, attrs []string) (*model.EnrichedCompany, error) {
	if e.search == nil || e.llm == nil {
		return nil, eris.New("enrich: search and llm clients are required")
	}
	if strings.TrimSpace(cand.Name) == "" {
		return nil, eris.New("enrich: candidate name is empty")
	}
	keys := e.registry.ResolveAttributes(attrs)
	log := zap.L().With(zap.String("stage", "enrich"), zap.String("company", cand.Name))

	// Identity attributes already delivered by discovery are carried over
	// instead of re-searched; the rest go through the research ladder.
	preset := make(map[string]model.AttributeFinding)
	var researchKeys []string
	for _, key := range keys {
		attr := e.registry.ByKey(key)
		if attr != nil && attr.Identity {
			if v := identityValue(cand, key); v != "" {
				preset[key] = model.AttributeFinding{
					Attribute:  key,
					Value:      v,
					Confidence: model.ConfidenceVerified,
					Reasoning:  "carried from the discovery search",
				}
				continue
			}
		}
		researchKeys = append(researchKeys, key)
	}

	var findings []model.AttributeFinding
	if len(researchKeys) > 0 {
		evidence := e.gatherEvidence(ctx, cand, researchKeys)
		var err error
		findings, err = e.extractFindings(ctx, cand, researchKeys, evidence)
		if err != nil {
			return nil, eris.Wrap(err, "enrich: extract findings")
		}
	}

	company := model.EnrichedCompany{
		Name:    cand.Name,
		URL:     cand.URL,
		Country: cand.Country,
	}
	researched := coerceFindings(findings, researchKeys)
	resolved := make([]model.AttributeFinding, 0, len(keys))
	i := 0
	for _, key := range keys {
		if f, ok := preset[key]; ok {
			resolved = append(resolved, f)
			continue
		}
		resolved = append(resolved, researched[i])
		i++
	}
	for _, f := range resolved {
		if f.Resolved() {
			company.SetAttribute(f.Attribute, f.Value)
		}
	}
	company.Findings = resolved
	company.RelevanceScore = e.scoreRelevance(ctx, &company, thesis, resolved)
	company.FillSentinels()

	log.Info("enrichment complete",
		zap.Int("attributes", len(keys)),
		zap.Int("relevance", company.RelevanceScore),
	)
	return &company, nil
}

// gatherEvidence runs the bounded search ladder for each attribute and
// returns one evidence section per attribute key. Search failures leave
// holes, never abort the candidate.
func (e *Enricher) gatherEvidence(ctx context.Context, cand model.Candidate, keys []string) map[string]string {
	attempts := e.cfg.SearchAttempts
	if attempts < minSearchAttempts {
		attempts = minSearchAttempts
	}
	if attempts > maxSearchAttempts {
		attempts = maxSearchAttempts
	}
	log := zap.L().With(zap.String("stage", "enrich"), zap.String("company", cand.Name))

	// Shared first attempt: one overview search for the company itself.
	overview := e.runSearch(ctx, fmt.Sprintf("%q company overview %s", cand.Name, cand.URL))

	evidence := make(map[string]string, len(keys))
	for _, key := range keys {
		attr := e.registry.ByKey(key)
		if attr == nil {
			continue
		}
		parts := []string{overview}

		// Second attempt: the attribute's own query template.
		text := e.runSearch(ctx, attr.SearchQuery(cand.Name))
		parts = append(parts, text)

		// Third and later attempts go to the fallback provider when the
		// web search produced nothing for this attribute.
		if attempts >= 3 && e.fallback != nil && strings.TrimSpace(text) == "" {
			question := fmt.Sprintf("What is the %s of the company %q (%s)? Cite sources.", attr.Label, cand.Name, cand.URL)
			answer, err := e.fallback.Answer(ctx, question)
			if err != nil {
				log.Debug("fallback answer failed", zap.String("attribute", key), zap.Error(err))
			} else {
				parts = append(parts, answer)
			}
		}

		evidence[key] = clip(strings.TrimSpace(strings.Join(parts, "\n")), e.snippetLimit())
	}
	return evidence
}

func (e *Enricher) runSearch(ctx context.Context, query string) string {
	resp, err := e.search.Search(ctx, linkup.SearchRequest{
		Query:      query,
		Depth:      linkup.DepthStandard,
		OutputType: linkup.OutputSearchResults,
		MaxResults: 5,
	})
	if err != nil {
		zap.L().Debug("evidence search failed", zap.String("query", query), zap.Error(err))
		return ""
	}
	var b strings.Builder
	for _, r := range resp.Results {
		fmt.Fprintf(&b, "[%s] %s\n%s\n", r.URL, r.Name, r.Snippet)
	}
	return b.String()
}

func (e *Enricher) snippetLimit() int {
	if e.cfg.SnippetLimit > 0 {
		return e.cfg.SnippetLimit
	}
	return 6000
}

// extractFindings makes the single extraction call over all evidence.
// Transient API failures are retried; an unparsable response is an error.
func (e *Enricher) extractFindings(ctx context.Context, cand model.Candidate, keys []string, evidence map[string]string) ([]model.AttributeFinding, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Company: %s (%s, %s)\n", cand.Name, cand.URL, cand.Country)
	fmt.Fprintf(&b, "Attributes to extract: %s\n\n", strings.Join(keys, ", "))
	for _, key := range keys {
		if evidence[key] == "" {
			continue
		}
		fmt.Fprintf(&b, "### Evidence for %s\n%s\n\n", key, evidence[key])
	}

	policy := resilience.DefaultPolicy()
	policy.OnRetry = resilience.LogRetries("anthropic", "enrich extract")
	resp, err := resilience.Retry(ctx, policy, func(ctx context.Context) (*anthropic.MessageResponse, error) {
		return e.llm.CreateMessage(ctx, anthropic.MessageRequest{
			Model:     e.llmModel,
			MaxTokens: extractMaxTokens,
			System:    anthropic.CachedSystemBlocks(extractSystemPrompt),
			Messages:  []anthropic.Message{{Role: "user", Content: b.String()}},
		})
	})
	if err != nil {
		return nil, err
	}
	resp.Usage.LogCost(e.llmModel, "enrich extract")

	raw, ok := llmjson.FirstArray(resp.Text())
	if !ok {
		return nil, eris.New("enrich: no JSON array in extraction response")
	}
	var findings []rawFinding
	if err := json.Unmarshal([]byte(raw), &findings); err != nil {
		return nil, eris.Wrap(err, "enrich: unmarshal findings")
	}

	out := make([]model.AttributeFinding, 0, len(findings))
	for _, f := range findings {
		out = append(out, model.AttributeFinding{
			Attribute:  model.NormalizeAttributeKey(f.Attribute),
			Value:      strings.TrimSpace(f.Value),
			Confidence: model.ParseConfidence(f.Confidence),
			Reasoning:  strings.TrimSpace(f.Reasoning),
			SourceURL:  strings.TrimSpace(f.SourceURL),
		})
	}
	return out, nil
}

// rawFinding tolerates loose model output before coercion.
type rawFinding struct {
	Attribute  string `json:"attribute"`
	Value      string `json:"value"`
	Confidence string `json:"confidence"`
	Reasoning  string `json:"reasoning"`
	SourceURL  string `json:"source_url"`
}

// coerceFindings guarantees exactly one finding per requested attribute:
// extras are dropped, duplicates keep the first occurrence, and missing
// or empty entries become unknown findings.
func coerceFindings(findings []model.AttributeFinding, keys []string) []model.AttributeFinding {
	byAttr := make(map[string]model.AttributeFinding, len(findings))
	for _, f := range findings {
		if f.Attribute == "" {
			continue
		}
		if _, seen := byAttr[f.Attribute]; seen {
			continue
		}
		if f.Confidence == model.ConfidenceUnknown || f.Value == "" || strings.EqualFold(f.Value, model.ValueNA) {
			f = model.UnknownFinding(f.Attribute)
		}
		byAttr[f.Attribute] = f
	}

	out := make([]model.AttributeFinding, 0, len(keys))
	for _, key := range keys {
		if f, ok := byAttr[key]; ok {
			out = append(out, f)
		} else {
			out = append(out, model.UnknownFinding(key))
		}
	}
	return out
}

func identityValue(cand model.Candidate, key string) string {
	switch key {
	case model.AttrName:
		return strings.TrimSpace(cand.Name)
	case model.AttrURL:
		return strings.TrimSpace(cand.URL)
	case model.AttrCountry:
		return strings.TrimSpace(cand.Country)
	}
	return ""
}

func clip(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}

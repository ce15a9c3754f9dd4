// Package discovery turns an investment thesis into a list of candidate
// companies by searching the web and extracting entities from the results.
// Extraction is constrained to names that literally appear in the search
// corpus so the model cannot invent companies.
package discovery

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
)

const (
	// extractMaxTokens bounds discovery extraction responses.
	extractMaxTokens = 2048

	extractSystemPrompt = `You extract company names from web search results for an investment analyst.
Only list companies that are literally mentioned in the provided search results.
Never invent, guess, or complete company names that are not present in the text.
Respond with a JSON array of objects: [{"name": "...", "url": "...", "country": "..."}].
Use an empty string for url or country when the results do not state them.
Respond with the JSON array only, no commentary.`
)

// Discoverer finds candidate companies for a thesis.
type Discoverer struct {
	search   linkup.Client
	llm      anthropic.Client
	llmModel string
	cfg      config.DiscoveryConfig
}

// NewDiscoverer creates a Discoverer with the given dependencies.
func NewDiscoverer(search linkup.Client, llm anthropic.Client, llmModel string, cfg config.DiscoveryConfig) *Discoverer {
	return &Discoverer{
		search:   search,
		llm:      llm,
		llmModel: llmModel,
		cfg:      cfg,
	}
}

// Discover runs one web search for the thesis and extracts candidate
// companies from the results. A failed or empty search yields an empty
// slice rather than an error; the pipeline treats that as a legitimate
// no-results outcome.
func (d *Discoverer) Discover(ctx context.Context, thesis string, maxCandidates int) ([]model.Candidate, error) {
	if d.search == nil || d.llm == nil {
		return nil, eris.New("discovery: search and llm clients are required")
	}
	thesis = strings.TrimSpace(thesis)
	if thesis == "" {
		return nil, eris.New("discovery: thesis is empty")
	}
	if maxCandidates <= 0 {
		maxCandidates = d.cfg.MaxCandidates
	}
	log := zap.L().With(zap.String("stage", "discovery"))

	resp, err := d.search.Search(ctx, linkup.SearchRequest{
		Query:      fmt.Sprintf("companies and startups: %s", thesis),
		Depth:      linkup.DepthDeep,
		OutputType: linkup.OutputSourcedAnswer,
	})
	if err != nil {
		log.Warn("search failed", zap.Error(err))
		return []model.Candidate{}, nil
	}

	corpus := buildCorpus(resp)
	if strings.TrimSpace(corpus) == "" {
		log.Info("search returned no usable results")
		return []model.Candidate{}, nil
	}

	cands, err := d.extract(ctx, thesis, corpus, maxCandidates)
	if err != nil {
		log.Warn("extraction failed", zap.Error(err))
		return []model.Candidate{}, nil
	}

	cands = filterFabricated(cands, corpus)
	cands = dedupe(cands)
	if len(cands) > maxCandidates {
		cands = cands[:maxCandidates]
	}
	log.Info("discovery complete", zap.Int("candidates", len(cands)))
	return cands, nil
}

// extract asks the model for a candidate array and re-asks once if the
// response cannot be parsed.
func (d *Discoverer) extract(ctx context.Context, thesis, corpus string, maxCandidates int) ([]model.Candidate, error) {
	prompt := fmt.Sprintf(
		"Investment thesis: %s\n\nList up to %d companies from these search results that match the thesis.\n\nSearch results:\n%s",
		thesis, maxCandidates, corpus,
	)

	msgs := []anthropic.Message{{Role: "user", Content: prompt}}
	retries := d.cfg.ExtractRetries
	if retries < 0 {
		retries = 0
	}

	var lastErr error
	for attempt := 0; attempt <= retries; attempt++ {
		resp, err := d.createMessage(ctx, msgs)
		if err != nil {
			return nil, err
		}
		resp.Usage.LogCost(d.llmModel, "discovery extract")
		cands, err := parseCandidates(resp.Text())
		if err == nil {
			return cands, nil
		}
		lastErr = err
		// Re-ask with the failed output in context.
		msgs = append(msgs,
			anthropic.Message{Role: "assistant", Content: resp.Text()},
			anthropic.Message{Role: "user", Content: "That was not valid JSON. Respond with only the JSON array of companies."},
		)
	}
	return nil, eris.Wrap(lastErr, "discovery: parse extraction")
}

func (d *Discoverer) createMessage(ctx context.Context, msgs []anthropic.Message) (*anthropic.MessageResponse, error) {
	policy := resilience.DefaultPolicy()
	policy.OnRetry = resilience.LogRetries("anthropic", "discovery extract")
	return resilience.Retry(ctx, policy, func(ctx context.Context) (*anthropic.MessageResponse, error) {
		return d.llm.CreateMessage(ctx, anthropic.MessageRequest{
			Model:     d.llmModel,
			MaxTokens: extractMaxTokens,
			System:    []anthropic.SystemBlock{{Text: extractSystemPrompt}},
			Messages:  msgs,
		})
	})
}

func parseCandidates(text string) ([]model.Candidate, error) {
	raw, ok := llmjson.FirstArray(text)
	if !ok {
		return nil, eris.New("discovery: no JSON array in response")
	}
	var cands []model.Candidate
	if err := json.Unmarshal([]byte(raw), &cands); err != nil {
		return nil, eris.Wrap(err, "discovery: unmarshal candidates")
	}
	return cands, nil
}

// buildCorpus joins the answer and result snippets into the text the
// extraction model is allowed to draw names from.
func buildCorpus(resp *linkup.SearchResponse) string {
	var b strings.Builder
	if resp.Answer != "" {
		b.WriteString(resp.Answer)
		b.WriteString("\n\n")
	}
	for _, r := range resp.Results {
		if r.Name != "" {
			b.WriteString(r.Name)
			b.WriteString("\n")
		}
		if r.URL != "" {
			b.WriteString(r.URL)
			b.WriteString("\n")
		}
		if r.Snippet != "" {
			b.WriteString(r.Snippet)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	return b.String()
}

// filterFabricated drops candidates whose names do not appear in the
// search corpus.
func filterFabricated(cands []model.Candidate, corpus string) []model.Candidate {
	lower := strings.ToLower(corpus)
	kept := cands[:0]
	for _, c := range cands {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			continue
		}
		if !strings.Contains(lower, strings.ToLower(name)) {
			zap.L().Debug("dropped fabricated candidate", zap.String("name", name))
			continue
		}
		c.Name = name
		kept = append(kept, c)
	}
	return kept
}

// dedupe removes candidates that collapse to the same normalized name or
// URL, keeping the first occurrence.
func dedupe(cands []model.Candidate) []model.Candidate {
	seenNames := make(map[string]bool, len(cands))
	seenURLs := make(map[string]bool, len(cands))
	kept := cands[:0]
	for _, c := range cands {
		name := NormalizeName(c.Name)
		if name == "" || seenNames[name] {
			continue
		}
		if u := NormalizeURL(c.URL); u != "" {
			if seenURLs[u] {
				continue
			}
			seenURLs[u] = true
		}
		seenNames[name] = true
		kept = append(kept, c)
	}
	return kept
}

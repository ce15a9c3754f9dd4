package discovery

import (
	"context"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/meridian-vc/scout-cli/pkg/anthropic"
)

const enhanceSystemPrompt = `You refine investment theses into effective web search queries.
Rewrite the user's thesis as a single search query that will surface matching companies.
Keep every constraint from the thesis (sector, geography, stage, metrics).
Respond with the refined query only, no quotes and no commentary.`

// expansion terms appended by the deterministic fallback when they are
// not already present in the thesis.
var fallbackTerms = []string{"startups", "companies", "list"}

// EnhanceThesis rewrites a raw thesis into a sharper search query. When
// the model call fails the deterministic keyword expansion is returned
// instead, so callers always get a usable query.
func (d *Discoverer) EnhanceThesis(ctx context.Context, raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", eris.New("discovery: thesis is empty")
	}
	if d.llm == nil {
		return keywordExpand(raw), nil
	}

	resp, err := d.llm.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     d.llmModel,
		MaxTokens: 256,
		System:    []anthropic.SystemBlock{{Text: enhanceSystemPrompt}},
		Messages: []anthropic.Message{{
			Role:    "user",
			Content: fmt.Sprintf("Thesis: %s", raw),
		}},
	})
	if err != nil {
		zap.L().Warn("thesis enhancement failed, using keyword expansion", zap.Error(err))
		return keywordExpand(raw), nil
	}

	enhanced := strings.TrimSpace(strings.Trim(resp.Text(), `"`))
	if enhanced == "" {
		return keywordExpand(raw), nil
	}
	return enhanced, nil
}

// keywordExpand appends generic discovery terms missing from the thesis.
func keywordExpand(raw string) string {
	lower := strings.ToLower(raw)
	parts := []string{raw}
	for _, term := range fallbackTerms {
		if !strings.Contains(lower, term) {
			parts = append(parts, term)
		}
	}
	return strings.Join(parts, " ")
}

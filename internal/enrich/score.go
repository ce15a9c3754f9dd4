package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/meridian-vc/scout-cli/internal/llmjson"
	"github.com/meridian-vc/scout-cli/internal/model"
	"github.com/meridian-vc/scout-cli/pkg/anthropic"
)

const scoreSystemPrompt = `You judge how well a company matches an investment thesis.
Score 0-100: 80-100 strong match, 50-79 partial match, 0-35 weak or no match.
Respond with a JSON object only: {"score": <number>, "reasoning": "..."}`

// fallback score weights when the judgment cannot be parsed. A record
// with some resolved attributes still deserves a nonzero score.
const (
	fallbackBase        = 10
	fallbackVerifiedPts = 12
	fallbackApproxPts   = 6
	fallbackCap         = 70
)

// scoreRelevance asks the model to judge the company against the thesis.
// Any failure degrades to a deterministic completeness-based score.
func (e *Enricher) scoreRelevance(ctx context.Context, company *model.EnrichedCompany, thesis string, findings []model.AttributeFinding) int {
	log := zap.L().With(zap.String("stage", "enrich"), zap.String("company", company.Name))

	var b strings.Builder
	fmt.Fprintf(&b, "Thesis: %s\n\nCompany: %s (%s)\n", thesis, company.Name, company.URL)
	for _, f := range findings {
		fmt.Fprintf(&b, "- %s: %s [%s]\n", f.Attribute, f.Value, f.Confidence)
	}

	resp, err := e.llm.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     e.llmModel,
		MaxTokens: 512,
		System:    anthropic.CachedSystemBlocks(scoreSystemPrompt),
		Messages:  []anthropic.Message{{Role: "user", Content: b.String()}},
	})
	if err != nil {
		log.Warn("relevance judgment failed, using completeness score", zap.Error(err))
		return completenessScore(findings)
	}
	resp.Usage.LogCost(e.llmModel, "relevance score")

	score, ok := parseScore(resp.Text())
	if !ok {
		log.Warn("relevance judgment unparsable, using completeness score")
		return completenessScore(findings)
	}
	return score
}

func parseScore(text string) (int, bool) {
	raw, ok := llmjson.FirstObject(text)
	if !ok {
		return 0, false
	}
	var out struct {
		Score float64 `json:"score"`
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return 0, false
	}
	return clamp(int(out.Score), 0, 100), true
}

// completenessScore is the deterministic fallback: resolved attributes
// earn points weighted by confidence.
func completenessScore(findings []model.AttributeFinding) int {
	score := fallbackBase
	for _, f := range findings {
		switch f.Confidence {
		case model.ConfidenceVerified:
			score += fallbackVerifiedPts
		case model.ConfidenceApproximate:
			score += fallbackApproxPts
		}
	}
	return clamp(score, 0, fallbackCap)
}

func clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}

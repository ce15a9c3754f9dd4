package model

import "strings"

// Confidence is the evidentiary tier behind an attribute value.
type Confidence string

const (
	// ConfidenceVerified means an exact value with a cited source.
	ConfidenceVerified Confidence = "verified"
	// ConfidenceApproximate means an estimate backed by indirect evidence.
	ConfidenceApproximate Confidence = "approximate"
	// ConfidenceUnknown means the search budget was exhausted without an answer.
	ConfidenceUnknown Confidence = "unknown"
)

// ParseConfidence coerces raw LLM output into a Confidence tier. Anything
// unrecognized degrades to unknown; raw text is never trusted past this
// boundary.
func ParseConfidence(raw string) Confidence {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "verified", "exact", "confirmed", "high":
		return ConfidenceVerified
	case "approximate", "estimated", "estimate", "medium", "partial":
		return ConfidenceApproximate
	default:
		return ConfidenceUnknown
	}
}

// AttributeFinding records the resolution of a single requested attribute
// for one candidate.
type AttributeFinding struct {
	Attribute  string     `json:"attribute"`
	Value      string     `json:"value"`
	Confidence Confidence `json:"confidence"`
	Reasoning  string     `json:"reasoning,omitempty"`
	SourceURL  string     `json:"source_url,omitempty"`
}

// UnknownFinding builds the finding emitted when an attribute stays
// unresolved after the bounded search attempts.
func UnknownFinding(attribute string) AttributeFinding {
	return AttributeFinding{
		Attribute:  attribute,
		Value:      ValueUnknown,
		Confidence: ConfidenceUnknown,
		Reasoning:  "no grounding evidence found in search results",
	}
}

// Resolved reports whether the finding carries a usable value.
func (f AttributeFinding) Resolved() bool {
	return f.Confidence != ConfidenceUnknown &&
		f.Value != "" && f.Value != ValueUnknown && f.Value != ValueNA
}

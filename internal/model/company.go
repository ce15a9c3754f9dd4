// Package model defines the data model shared across the scout pipeline:
// candidates produced by discovery, attribute findings produced by
// enrichment, and the progress events streamed to callers.
package model

import "strings"

// Sentinel values substituted for attributes that could not be resolved.
const (
	ValueUnknown = "Unknown - no public data available"
	ValueNA      = "N/A"
)

// Candidate identifies a company discovered for a thesis, before enrichment.
type Candidate struct {
	Name    string `json:"name"`
	URL     string `json:"url"`
	Country string `json:"country"`
}

// EnrichedCompany is the flattened, caller-facing record for one candidate.
// Missing attributes hold the Unknown sentinel, never an empty string.
type EnrichedCompany struct {
	Name           string `json:"name"`
	URL            string `json:"url"`
	Country        string `json:"country"`
	Description    string `json:"description"`
	FoundingYear   string `json:"founding_year"`
	FundingStage   string `json:"funding_stage"`
	ARR            string `json:"arr"`
	MarketSector   string `json:"market_sector"`
	RelevanceScore int    `json:"relevance_score"`

	// Findings carry the per-attribute evidence trail behind the flat fields.
	Findings []AttributeFinding `json:"findings,omitempty"`

	// Degraded marks a record substituted after enrichment failed outright.
	Degraded      bool   `json:"degraded,omitempty"`
	FailureReason string `json:"failure_reason,omitempty"`
}

// DegradedCompany builds the fallback record for a candidate whose
// enrichment failed. Identity fields are preserved; everything else gets
// the Unknown sentinel and a zero relevance score.
func DegradedCompany(cand Candidate, reason string) EnrichedCompany {
	country := cand.Country
	if country == "" {
		country = ValueUnknown
	}
	return EnrichedCompany{
		Name:          cand.Name,
		URL:           cand.URL,
		Country:       country,
		Description:   ValueUnknown,
		FoundingYear:  ValueUnknown,
		FundingStage:  ValueUnknown,
		ARR:           ValueUnknown,
		MarketSector:  ValueUnknown,
		Degraded:      true,
		FailureReason: reason,
	}
}

// FillSentinels replaces empty attribute fields with the Unknown sentinel.
// Called once during finalization so callers never see a missing value.
func (c *EnrichedCompany) FillSentinels() {
	for _, f := range []*string{
		&c.Country, &c.Description, &c.FoundingYear,
		&c.FundingStage, &c.ARR, &c.MarketSector,
	} {
		if strings.TrimSpace(*f) == "" {
			*f = ValueUnknown
		}
	}
	if strings.TrimSpace(c.URL) == "" {
		c.URL = ValueNA
	}
}

// SetAttribute assigns a flat field by attribute key. Unknown keys are
// ignored; callers keep the full finding in Findings regardless.
func (c *EnrichedCompany) SetAttribute(key, value string) {
	switch key {
	case AttrName:
		if value != "" {
			c.Name = value
		}
	case AttrURL:
		if value != "" {
			c.URL = value
		}
	case AttrCountry:
		c.Country = value
	case AttrDescription:
		c.Description = value
	case AttrFoundingYear:
		c.FoundingYear = value
	case AttrFundingStage:
		c.FundingStage = value
	case AttrARR:
		c.ARR = value
	case AttrMarketSector:
		c.MarketSector = value
	}
}

// Attribute returns the flat field for an attribute key, or "" for keys
// outside the fixed schema.
func (c *EnrichedCompany) Attribute(key string) string {
	switch key {
	case AttrName:
		return c.Name
	case AttrURL:
		return c.URL
	case AttrCountry:
		return c.Country
	case AttrDescription:
		return c.Description
	case AttrFoundingYear:
		return c.FoundingYear
	case AttrFundingStage:
		return c.FundingStage
	case AttrARR:
		return c.ARR
	case AttrMarketSector:
		return c.MarketSector
	}
	return ""
}

package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAttributeRegistry(t *testing.T) {
	r := LoadAttributeRegistry()
	require.Len(t, r.Attributes, 8)

	assert.Equal(t, []string{
		AttrName, AttrURL, AttrCountry, AttrDescription,
		AttrFoundingYear, AttrFundingStage, AttrARR, AttrMarketSector,
	}, r.Keys())

	arr := r.ByKey("arr")
	require.NotNil(t, arr)
	assert.Equal(t, "ARR", arr.Label)
	assert.False(t, arr.Identity)

	name := r.ByKey("name")
	require.NotNil(t, name)
	assert.True(t, name.Identity)
}

func TestResolveAttributes_EmptyDefaultsToFullSchema(t *testing.T) {
	r := LoadAttributeRegistry()
	assert.Equal(t, r.Keys(), r.ResolveAttributes(nil))
	assert.Equal(t, r.Keys(), r.ResolveAttributes([]string{}))
}

func TestResolveAttributes_MapsAliasesAndDropsUnknown(t *testing.T) {
	r := LoadAttributeRegistry()

	keys := r.ResolveAttributes([]string{"Founding Year", "ARR", "Website", "Technology Stack", "arr"})
	assert.Equal(t, []string{AttrFoundingYear, AttrARR, AttrURL}, keys)

	// All-unknown request falls back to the full schema rather than an
	// empty attribute list.
	assert.Equal(t, r.Keys(), r.ResolveAttributes([]string{"Founders", "Team Size"}))
}

func TestAttributeSearchQuery(t *testing.T) {
	r := LoadAttributeRegistry()
	q := r.ByKey("founding_year").SearchQuery("Acme Robotics")
	assert.Contains(t, q, "Acme Robotics")
	assert.Contains(t, q, "founded")
}

func TestDegradedCompany(t *testing.T) {
	c := DegradedCompany(Candidate{Name: "Acme", URL: "https://acme.io", Country: "Germany"}, "enrichment timed out")

	assert.Equal(t, "Acme", c.Name)
	assert.Equal(t, "https://acme.io", c.URL)
	assert.Equal(t, "Germany", c.Country)
	assert.Equal(t, ValueUnknown, c.ARR)
	assert.Equal(t, ValueUnknown, c.Description)
	assert.True(t, c.Degraded)
	assert.Equal(t, "enrichment timed out", c.FailureReason)
	assert.Equal(t, 0, c.RelevanceScore)
}

func TestFillSentinels(t *testing.T) {
	c := EnrichedCompany{Name: "Acme", Description: "robots"}
	c.FillSentinels()

	assert.Equal(t, "robots", c.Description)
	assert.Equal(t, ValueUnknown, c.Country)
	assert.Equal(t, ValueUnknown, c.FundingStage)
	assert.Equal(t, ValueNA, c.URL)
}

func TestSetAndGetAttribute(t *testing.T) {
	var c EnrichedCompany
	c.SetAttribute(AttrARR, "$1.2M")
	c.SetAttribute(AttrMarketSector, "fintech")
	c.SetAttribute("no_such_key", "ignored")

	assert.Equal(t, "$1.2M", c.Attribute(AttrARR))
	assert.Equal(t, "fintech", c.Attribute(AttrMarketSector))
	assert.Equal(t, "", c.Attribute("no_such_key"))

	// Empty identity values must not clobber discovery identity.
	c.Name = "Acme"
	c.SetAttribute(AttrName, "")
	assert.Equal(t, "Acme", c.Name)
}

func TestEventHelpers(t *testing.T) {
	assert.False(t, StatusEvent("working").Terminal())
	assert.True(t, ErrorEvent("boom").Terminal())

	done := CompleteEvent(nil)
	assert.True(t, done.Terminal())
	assert.True(t, done.Success)
	assert.NotNil(t, done.Results)
	assert.Empty(t, done.Results)
}

package model

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Canonical attribute keys of the fixed schema.
const (
	AttrName         = "name"
	AttrURL          = "url"
	AttrCountry      = "country"
	AttrDescription  = "description"
	AttrFoundingYear = "founding_year"
	AttrFundingStage = "funding_stage"
	AttrARR          = "arr"
	AttrMarketSector = "market_sector"
)

//go:embed attributes.yaml
var attributesYAML []byte

// Attribute describes one entry of the fixed schema: how it is labeled,
// prompted for, and searched.
type Attribute struct {
	Key   string `yaml:"key"`
	Label string `yaml:"label"`
	// Identity attributes arrive from discovery and are not re-searched.
	Identity       bool   `yaml:"identity"`
	Hint           string `yaml:"hint"`
	SearchTemplate string `yaml:"search_template"`
}

// SearchQuery renders the attribute's follow-up search query for a company.
func (a Attribute) SearchQuery(companyName string) string {
	if a.SearchTemplate == "" {
		return fmt.Sprintf("%q company %s", companyName, strings.ReplaceAll(a.Key, "_", " "))
	}
	return fmt.Sprintf(a.SearchTemplate, companyName)
}

// AttributeRegistry is the indexed fixed schema.
type AttributeRegistry struct {
	Attributes []Attribute
	byKey      map[string]*Attribute
}

// LoadAttributeRegistry parses the embedded schema. It panics on a corrupt
// embed since that is a build defect, not a runtime condition.
func LoadAttributeRegistry() *AttributeRegistry {
	var doc struct {
		Attributes []Attribute `yaml:"attributes"`
	}
	if err := yaml.Unmarshal(attributesYAML, &doc); err != nil {
		panic(fmt.Sprintf("model: embedded attribute schema: %v", err))
	}
	r := &AttributeRegistry{
		Attributes: doc.Attributes,
		byKey:      make(map[string]*Attribute, len(doc.Attributes)),
	}
	for i := range r.Attributes {
		r.byKey[r.Attributes[i].Key] = &r.Attributes[i]
	}
	return r
}

// ByKey returns the attribute for key, or nil.
func (r *AttributeRegistry) ByKey(key string) *Attribute {
	return r.byKey[NormalizeAttributeKey(key)]
}

// Keys returns all attribute keys in schema order.
func (r *AttributeRegistry) Keys() []string {
	keys := make([]string, len(r.Attributes))
	for i, a := range r.Attributes {
		keys[i] = a.Key
	}
	return keys
}

// ResolveAttributes maps caller-supplied attribute names onto canonical
// keys, dropping duplicates and names outside the schema. An empty request
// defaults to the full fixed schema.
func (r *AttributeRegistry) ResolveAttributes(requested []string) []string {
	if len(requested) == 0 {
		return r.Keys()
	}
	seen := make(map[string]bool, len(requested))
	var keys []string
	for _, name := range requested {
		key := NormalizeAttributeKey(name)
		if _, ok := r.byKey[key]; !ok || seen[key] {
			continue
		}
		seen[key] = true
		keys = append(keys, key)
	}
	if len(keys) == 0 {
		return r.Keys()
	}
	return keys
}

// NormalizeAttributeKey lowercases and snake-cases a caller-supplied
// attribute name ("Founding Year" -> "founding_year", "ARR" -> "arr").
func NormalizeAttributeKey(name string) string {
	key := strings.ToLower(strings.TrimSpace(name))
	key = strings.ReplaceAll(key, " ", "_")
	key = strings.ReplaceAll(key, "-", "_")
	switch key {
	case "website", "website_url":
		return AttrURL
	case "company_name":
		return AttrName
	case "industry", "sector":
		return AttrMarketSector
	case "year_founded", "founded":
		return AttrFoundingYear
	case "annual_recurring_revenue":
		return AttrARR
	}
	return key
}

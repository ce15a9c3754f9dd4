package discovery

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var nameTransformer = transform.Chain(
	norm.NFKD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// corporate suffixes stripped before comparing company names.
var nameSuffixes = []string{
	"inc", "inc.", "llc", "ltd", "ltd.", "gmbh", "corp", "corp.",
	"co", "co.", "plc", "sa", "s.a.", "ag", "bv", "b.v.", "ab", "oy",
}

// NormalizeName folds a company name for duplicate detection: lowercase,
// diacritics stripped, corporate suffixes and punctuation removed.
func NormalizeName(name string) string {
	folded, _, err := transform.String(nameTransformer, name)
	if err != nil {
		folded = name
	}
	folded = strings.ToLower(strings.TrimSpace(folded))

	var b strings.Builder
	for _, r := range folded {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}
	words := strings.Fields(b.String())
	for len(words) > 1 && isSuffix(words[len(words)-1]) {
		words = words[:len(words)-1]
	}
	return strings.Join(words, " ")
}

func isSuffix(word string) bool {
	for _, s := range nameSuffixes {
		if word == strings.Trim(s, ".") {
			return true
		}
	}
	return false
}

// NormalizeURL folds a URL for duplicate detection: scheme, www prefix,
// trailing slash and query dropped, host lowercased.
func NormalizeURL(raw string) string {
	u := strings.TrimSpace(strings.ToLower(raw))
	for _, prefix := range []string{"https://", "http://"} {
		u = strings.TrimPrefix(u, prefix)
	}
	u = strings.TrimPrefix(u, "www.")
	if i := strings.IndexAny(u, "?#"); i >= 0 {
		u = u[:i]
	}
	return strings.TrimSuffix(u, "/")
}

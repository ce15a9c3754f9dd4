// Package llmjson extracts JSON payloads from free-form LLM output. Model
// responses frequently wrap JSON in prose or markdown fences; nothing past
// this package ever parses raw model text directly.
package llmjson

import "strings"

// FirstObject returns the first balanced JSON object embedded in text.
// Brace matching is string-aware, so braces inside JSON strings do not
// terminate the scan. Returns false when no complete object exists
// (including truncated output).
func FirstObject(text string) (string, bool) {
	return firstDelimited(text, '{')
}

// FirstArray returns the first balanced JSON array in text.
func FirstArray(text string) (string, bool) {
	return firstDelimited(text, '[')
}

func firstDelimited(text string, open byte) (string, bool) {
	text = stripFences(text)
	for i := 0; i < len(text); i++ {
		if text[i] == open {
			if end := scanBalanced(text, i); end > i {
				return text[i : end+1], true
			}
		}
	}
	return "", false
}

// scanBalanced returns the index of the delimiter closing the value that
// opens at start, or -1 if the value never closes.
func scanBalanced(text string, start int) int {
	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{', '[':
			depth++
		case '}', ']':
			depth--
			if depth == 0 {
				return i
			}
			if depth < 0 {
				return -1
			}
		}
	}
	return -1
}

// stripFences removes a leading markdown code fence (``` or ```json) and
// its closing fence when present.
func stripFences(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	if idx := strings.LastIndex(text, "```"); idx >= 0 {
		text = text[:idx]
	}
	return strings.TrimSpace(text)
}

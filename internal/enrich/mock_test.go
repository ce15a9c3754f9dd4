package enrich

import (
	"context"
	"strings"

	"github.com/meridian-vc/scout-cli/pkg/anthropic"
	"github.com/meridian-vc/scout-cli/pkg/linkup"
	"github.com/meridian-vc/scout-cli/pkg/perplexity"
)

// mockSearch implements linkup.Client. Queries containing a key of
// results are answered with that canned response; everything else gets
// an empty result set.
type mockSearch struct {
	results  map[string]*linkup.SearchResponse
	err      error
	requests []linkup.SearchRequest
}

func (m *mockSearch) Search(_ context.Context, req linkup.SearchRequest) (*linkup.SearchResponse, error) {
	m.requests = append(m.requests, req)
	if m.err != nil {
		return nil, m.err
	}
	for key, resp := range m.results {
		if strings.Contains(req.Query, key) {
			return resp, nil
		}
	}
	return &linkup.SearchResponse{}, nil
}

// mockLLM implements anthropic.Client, returning canned responses in order.
type mockLLM struct {
	responses []string
	errs      []error
	requests  []anthropic.MessageRequest
	calls     int
}

func (m *mockLLM) CreateMessage(_ context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	i := m.calls
	m.calls++
	m.requests = append(m.requests, req)
	if i < len(m.errs) && m.errs[i] != nil {
		return nil, m.errs[i]
	}
	text := ""
	if i < len(m.responses) {
		text = m.responses[i]
	}
	return &anthropic.MessageResponse{
		Content: []anthropic.ContentBlock{{Type: "text", Text: text}},
	}, nil
}

// mockFallback implements perplexity.Client.
type mockFallback struct {
	answer    string
	err       error
	questions []string
}

func (m *mockFallback) ChatCompletion(_ context.Context, _ perplexity.ChatCompletionRequest) (*perplexity.ChatCompletionResponse, error) {
	return nil, nil
}

func (m *mockFallback) Answer(_ context.Context, question string) (string, error) {
	m.questions = append(m.questions, question)
	if m.err != nil {
		return "", m.err
	}
	return m.answer, nil
}

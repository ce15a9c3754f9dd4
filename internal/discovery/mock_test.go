package discovery

import (
	"context"

	"github.com/meridian-vc/scout-cli/pkg/anthropic"
	"github.com/meridian-vc/scout-cli/pkg/linkup"
)

// mockSearch implements linkup.Client for testing.
type mockSearch struct {
	resp     *linkup.SearchResponse
	err      error
	requests []linkup.SearchRequest
}

func (m *mockSearch) Search(_ context.Context, req linkup.SearchRequest) (*linkup.SearchResponse, error) {
	m.requests = append(m.requests, req)
	if m.err != nil {
		return nil, m.err
	}
	return m.resp, nil
}

// mockLLM implements anthropic.Client, returning canned responses in order.
type mockLLM struct {
	responses []string
	err       error
	requests  []anthropic.MessageRequest
	calls     int
}

func (m *mockLLM) CreateMessage(_ context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	m.requests = append(m.requests, req)
	if m.err != nil {
		return nil, m.err
	}
	text := ""
	if m.calls < len(m.responses) {
		text = m.responses[m.calls]
	} else if len(m.responses) > 0 {
		text = m.responses[len(m.responses)-1]
	}
	m.calls++
	return &anthropic.MessageResponse{
		Content: []anthropic.ContentBlock{{Type: "text", Text: text}},
	}, nil
}

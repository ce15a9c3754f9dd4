package model

// EventKind tags a ProgressEvent variant.
type EventKind string

const (
	EventStatus   EventKind = "status"
	EventComplete EventKind = "complete"
	EventError    EventKind = "error"
)

// ProgressEvent is one entry in a run's ordered progress stream: zero or
// more status events followed by exactly one complete or error event.
type ProgressEvent struct {
	Kind    EventKind         `json:"kind"`
	Message string            `json:"message,omitempty"`
	Success bool              `json:"success,omitempty"`
	Results []EnrichedCompany `json:"results,omitempty"`
}

// Terminal reports whether the event closes the stream.
func (e ProgressEvent) Terminal() bool {
	return e.Kind == EventComplete || e.Kind == EventError
}

// StatusEvent builds a progress status message.
func StatusEvent(message string) ProgressEvent {
	return ProgressEvent{Kind: EventStatus, Message: message}
}

// CompleteEvent builds the terminal success event carrying the results.
// Results may be empty; an empty run still completes successfully.
func CompleteEvent(results []EnrichedCompany) ProgressEvent {
	if results == nil {
		results = []EnrichedCompany{}
	}
	return ProgressEvent{Kind: EventComplete, Success: true, Results: results}
}

// ErrorEvent builds the terminal failure event.
func ErrorEvent(message string) ProgressEvent {
	return ProgressEvent{Kind: EventError, Message: message}
}

// ScoutRequest is the input contract for one pipeline run.
type ScoutRequest struct {
	Thesis        string   `json:"thesis"`
	Attributes    []string `json:"attributes,omitempty"`
	MaxCandidates int      `json:"max_candidates,omitempty"`
}

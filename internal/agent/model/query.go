package model

import "time"

// Query is the request-scoped input to the support pipeline.
// CustomerID is required for any query that may trigger a structured lookup;
// SessionID is optional and, when absent, the session key is derived from the
// customer id so memory is still addressable.
type Query struct {
	Query      string `json:"query"`
	CustomerID string `json:"customer_id"`
	SessionID  string `json:"session_id,omitempty"`
}

// Answer is the response envelope returned by the orchestrator.
type Answer struct {
	Response string `json:"response"`
	Source   string `json:"source"` // cache | agent | degraded
	Cached   bool   `json:"cached"`
}

const (
	SourceCache    = "cache"
	SourceAgent    = "agent"
	SourceDegraded = "degraded"
)

// Turn is a single conversation entry. Insertion order is meaningful,
// most-recent-last.
type Turn struct {
	Role      string    `json:"role"` // user | assistant
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ToolStatus distinguishes absence of data from absence of capability.
type ToolStatus string

const (
	// ToolStatusOK means the toolbox answered the call.
	ToolStatusOK ToolStatus = "ok"
	// ToolStatusSubstitute means the whole toolbox endpoint was unreachable
	// and clearly-labeled substitute data was used instead.
	ToolStatusSubstitute ToolStatus = "substitute"
	// ToolStatusUnavailable means this one call failed; no data is carried.
	ToolStatusUnavailable ToolStatus = "unavailable"
	// ToolStatusUnknown means the tool name is not registered.
	ToolStatusUnknown ToolStatus = "unknown"
)

// ToolResult carries the outcome of one named structured lookup.
type ToolResult struct {
	Name   string           `json:"name"`
	Status ToolStatus       `json:"status"`
	Data   []map[string]any `json:"data,omitempty"`
	Source string           `json:"source,omitempty"` // toolbox | substitute
}

// Usable reports whether the result carries data the generator may cite.
func (r ToolResult) Usable() bool {
	return r.Status == ToolStatusOK || r.Status == ToolStatusSubstitute
}

// ContextBundle is what the generator sees: selected tool results followed by
// the session memory snapshot. Assembly order is fixed (tool facts before
// conversational history) so generation input is deterministic.
type ContextBundle struct {
	Tools   []ToolResult
	History []Turn
}

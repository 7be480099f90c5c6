package models

import (
	"time"

	"github.com/google/uuid"
)

// Node names the stages of the pipeline state machine. Transitions are
// strictly forward: start -> routed -> one of {clarifying, retrieving,
// answering-direct} -> (retrieve only) context-built -> synthesizing ->
// done. No node rewrites a field set by an earlier node.
type Node string

const (
	NodeStart           Node = "start"
	NodeRouted          Node = "routed"
	NodeClarifying      Node = "clarifying"
	NodeRetrieving      Node = "retrieving"
	NodeAnsweringDirect Node = "answering-direct"
	NodeContextBuilt    Node = "context-built"
	NodeSynthesizing    Node = "synthesizing"
	NodeDone            Node = "done"
)

// NodeTiming records per-node latency for diagnostics
type NodeTiming struct {
	Node     Node          `json:"node"`
	Duration time.Duration `json:"duration"`
}

// PipelineState is the full record threaded through one pipeline run.
// It is owned exclusively by a single runner invocation and never shared
// across concurrent queries.
type PipelineState struct {
	RequestID string `json:"request_id"`
	Query     *Query `json:"query"`

	// Decision is set exactly once by the router node
	Decision *RouteDecision `json:"decision,omitempty"`

	// Chunks and Context are populated only on the retrieve branch
	Chunks  []RetrievedChunk `json:"chunks,omitempty"`
	Context string           `json:"context,omitempty"`

	// Answer is absent until a terminal node completes
	Answer *Answer `json:"answer,omitempty"`

	// Error marks the run as fatally failed when non-empty
	Error string `json:"error,omitempty"`

	Timings []NodeTiming `json:"timings"`
}

// NewPipelineState starts a fresh state for one query
func NewPipelineState(query *Query) *PipelineState {
	return &PipelineState{
		RequestID: uuid.New().String(),
		Query:     query,
	}
}

// RecordTiming appends one node's latency to the diagnostic trace
func (s *PipelineState) RecordTiming(node Node, d time.Duration) {
	s.Timings = append(s.Timings, NodeTiming{Node: node, Duration: d})
}

// Failed reports whether the run terminated with a fatal error
func (s *PipelineState) Failed() bool {
	return s.Error != ""
}

package taskgraph

import "encoding/json"

// Status is the lifecycle state of a task node.
//
// Lifecycle: pending → in_progress → completed. failed is terminal and is
// only ever set by a manual status update, never by Advance.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Valid reports whether s is a known lifecycle status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusFailed:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether a node in this status can never advance again.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// DependencyType is the strength of an edge. A hard dependency blocks its
// target from starting until the source is completed; a soft dependency is
// informational only. Both kinds count toward cycle detection.
type DependencyType string

const (
	DependencyHard DependencyType = "hard"
	DependencySoft DependencyType = "soft"
)

// Valid reports whether t is a known dependency type.
func (t DependencyType) Valid() bool {
	return t == DependencyHard || t == DependencySoft
}

// Node is a task unit in the graph.
// Inputs and Outputs are opaque payloads the engine never interprets.
type Node struct {
	ID          string          `json:"id"`
	Description string          `json:"description"`
	Status      Status          `json:"status"`
	Inputs      json.RawMessage `json:"inputs,omitempty"`
	Outputs     json.RawMessage `json:"outputs,omitempty"`
}

// Edge is a directed dependency: Source must reach completed before Target
// may start (when the dependency is hard). DataTransfer is an opaque payload.
type Edge struct {
	Source         string          `json:"source"`
	Target         string          `json:"target"`
	DependencyType DependencyType  `json:"dependency_type"`
	DataTransfer   json.RawMessage `json:"data_transfer,omitempty"`
}

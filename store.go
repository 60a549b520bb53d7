package taskgraph

import (
	"context"
	"errors"
)

var (
	ErrNodeNotFound  = errors.New("taskgraph: node not found")
	ErrEdgeNotFound  = errors.New("taskgraph: edge not found")
	ErrDuplicateEdge = errors.New("taskgraph: edge already exists")
	ErrCycleDetected = errors.New("taskgraph: cycle detected, graph is not acyclic")
	ErrInvalidStatus = errors.New("taskgraph: invalid status")
)

// Store defines the contract for persisting and retrieving task graphs.
type Store interface {
	// Schema
	CreateSchema(ctx context.Context) error
	DropSchema(ctx context.Context) error

	// Graph (bulk operations, replace semantics)
	SaveGraph(ctx context.Context, graphID string, g *Graph) error
	LoadGraph(ctx context.Context, graphID string) (*Graph, error)
	DeleteGraph(ctx context.Context, graphID string) error

	// Nodes
	AddNode(ctx context.Context, graphID string, node *Node) (string, error)
	GetNode(ctx context.Context, nodeID string) (*Node, error)
	UpdateNodeStatus(ctx context.Context, nodeID string, status Status) error
	DeleteNode(ctx context.Context, nodeID string) error
	ListNodes(ctx context.Context, graphID string) ([]Node, error)

	// Edges
	AddEdge(ctx context.Context, graphID string, edge *Edge) error
	DeleteEdge(ctx context.Context, graphID, source, target string) error
	ListEdges(ctx context.Context, graphID string) ([]Edge, error)

	// Advancement
	ApplyTransitions(ctx context.Context, graphID string, transitions []Transition) error
}

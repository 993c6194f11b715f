package config

import (
	"errors"
	"fmt"

	"github.com/specialistvlad/forgegrid/internal/node"
	"github.com/specialistvlad/forgegrid/internal/nodeid"
)

// ErrInvalidDocument is wrapped by every structural validation failure.
var ErrInvalidDocument = errors.New("invalid pipeline document")

// Document is a pipeline as loaded from any source format.
type Document struct {
	Name string
	// StartNodeID is the node a run starts from. Empty means "pick the first
	// root".
	StartNodeID string
	Nodes       []node.Node
	Edges       []node.Edge
}

// Validate checks the structural rules every loader must uphold: node ids
// are well-formed and unique, node types are known, and edges name both
// endpoints. Edges pointing at missing nodes are allowed here; the planner
// sanitizes them away.
func (d *Document) Validate() error {
	seen := make(map[string]struct{}, len(d.Nodes))
	for i, n := range d.Nodes {
		if err := nodeid.Validate(n.ID); err != nil {
			return fmt.Errorf("%w: node #%d: %w", ErrInvalidDocument, i+1, err)
		}
		if _, dup := seen[n.ID]; dup {
			return fmt.Errorf("%w: duplicate node id %q", ErrInvalidDocument, n.ID)
		}
		seen[n.ID] = struct{}{}
		if _, err := node.ParseType(string(n.Type)); err != nil {
			return fmt.Errorf("%w: node %q: %w", ErrInvalidDocument, n.ID, err)
		}
	}
	for i, e := range d.Edges {
		if e.Source == "" || e.Target == "" {
			return fmt.Errorf("%w: edge #%d (%q): source and target ids cannot be empty", ErrInvalidDocument, i+1, e.ID)
		}
	}
	return nil
}

// Node returns the node with the given id.
func (d *Document) Node(id string) (node.Node, bool) {
	for _, n := range d.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return node.Node{}, false
}

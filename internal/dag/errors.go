package dag

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidStartNode is returned when the requested start node is not
	// part of the pipeline.
	ErrInvalidStartNode = errors.New("invalid start node")
	// ErrCyclicGraph is returned when the nodes reachable from the start node
	// contain a cycle.
	ErrCyclicGraph = errors.New("pipeline contains a cycle")
)

// PlanError wraps planning failures with the offending node identifiers.
type PlanError struct {
	Kind error
	// NodeIDs is the start node for ErrInvalidStartNode, or the nodes that
	// could not be ordered for ErrCyclicGraph, in node list order.
	NodeIDs []string
}

func (e *PlanError) Error() string {
	if e == nil {
		return ""
	}
	switch e.Kind {
	case ErrInvalidStartNode:
		if len(e.NodeIDs) > 0 {
			return fmt.Sprintf("%s: %q is not a node in this pipeline", e.Kind, e.NodeIDs[0])
		}
	case ErrCyclicGraph:
		msg := fmt.Sprintf("%s: remove circular connections before running", e.Kind)
		if len(e.NodeIDs) > 0 {
			msg += " (involved: " + strings.Join(e.NodeIDs, ", ") + ")"
		}
		return msg
	}
	return e.Kind.Error()
}

func (e *PlanError) Unwrap() error { return e.Kind }

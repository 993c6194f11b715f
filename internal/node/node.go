// Package node defines the vertices and edges of a pipeline graph along with
// the typed configuration each kind of step carries.
package node

import (
	"fmt"
	"strings"
)

// Type distinguishes the kinds of steps a pipeline can contain.
type Type string

const (
	// Ingest reads a local path or object-store prefix into a dataset.
	Ingest Type = "ingest"
	// Filter creates a metadata-filtered dataset snapshot.
	Filter Type = "filter"
	// Train fits a model on a dataset version.
	Train Type = "train"
	// Export writes a dataset version as sharded training files.
	Export Type = "export"
	// Chat generates a completion from trained weights.
	Chat Type = "chat"
	// Custom runs a user supplied forge argument string.
	Custom Type = "custom"
)

// Types lists every known node type in canonical order.
var Types = []Type{Ingest, Filter, Train, Export, Chat, Custom}

// ParseType converts a raw type tag into a Type.
func ParseType(raw string) (Type, error) {
	t := Type(strings.ToLower(strings.TrimSpace(raw)))
	for _, known := range Types {
		if t == known {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownType, raw)
}

// String implements fmt.Stringer.
func (t Type) String() string { return string(t) }

// Node is a single step of a pipeline as authored on the canvas.
type Node struct {
	// ID uniquely identifies the node within its pipeline.
	ID string
	// Type selects which forge command the node runs.
	Type Type
	// Title is the human-readable label shown on the canvas.
	Title string
	// X and Y are the canvas position. They carry no meaning for planning or
	// execution and are passed through unchanged.
	X float64
	Y float64
	// Config holds the raw string settings for the node. DecodeConfig turns
	// it into the typed variant for the node's Type.
	Config map[string]string
}

// Label returns the title when set, otherwise the type name.
func (n Node) Label() string {
	if title := strings.TrimSpace(n.Title); title != "" {
		return title
	}
	return string(n.Type)
}

// Edge is a directed connection from Source to Target. The target runs after
// the source.
type Edge struct {
	ID     string
	Source string
	Target string
}

// Key returns the ordered (source, target) pair used to detect duplicates.
func (e Edge) Key() [2]string {
	return [2]string{e.Source, e.Target}
}

package canvas

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/specialistvlad/forgegrid/internal/config"
	"github.com/specialistvlad/forgegrid/internal/node"
	"github.com/specialistvlad/forgegrid/internal/nodeid"
)

// FormatVersion is the canvas layout version this package reads and writes.
const FormatVersion = 1

// ErrUnsupportedVersion is returned for canvases newer than FormatVersion.
var ErrUnsupportedVersion = errors.New("unsupported canvas format version")

// File is the on-disk canvas layout.
type File struct {
	FormatVersion       int     `json:"format_version" yaml:"format_version"`
	ExportedUnixSeconds int64   `json:"exported_unix_seconds,omitempty" yaml:"exported_unix_seconds,omitempty"`
	Name                string  `json:"name,omitempty" yaml:"name,omitempty"`
	StartNodeID         *string `json:"start_node_id" yaml:"start_node_id"`
	Nodes               []Node  `json:"nodes" yaml:"nodes"`
	Edges               []Edge  `json:"edges" yaml:"edges"`
}

// Node is a canvas node. Config values may be written as strings, numbers
// or bools; they are normalized to strings on load.
type Node struct {
	ID      string         `json:"id" yaml:"id"`
	Type    string         `json:"type" yaml:"type"`
	Title   string         `json:"title" yaml:"title"`
	CanvasX float64        `json:"canvas_x" yaml:"canvas_x"`
	CanvasY float64        `json:"canvas_y" yaml:"canvas_y"`
	Config  map[string]any `json:"config" yaml:"config"`
}

// Edge is a canvas edge.
type Edge struct {
	ID           string `json:"id" yaml:"id"`
	SourceNodeID string `json:"source_node_id" yaml:"source_node_id"`
	TargetNodeID string `json:"target_node_id" yaml:"target_node_id"`
}

// toDocument converts a decoded canvas into a config.Document.
func (f *File) toDocument() (*config.Document, error) {
	if f.FormatVersion > FormatVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, f.FormatVersion)
	}

	doc := &config.Document{
		Name:  f.Name,
		Nodes: make([]node.Node, 0, len(f.Nodes)),
		Edges: make([]node.Edge, 0, len(f.Edges)),
	}
	if f.StartNodeID != nil {
		doc.StartNodeID = nodeid.Normalize(*f.StartNodeID)
	}
	for _, n := range f.Nodes {
		t, err := node.ParseType(n.Type)
		if err != nil {
			return nil, fmt.Errorf("node %q: %w", n.ID, err)
		}
		cfg, err := stringify(n.Config)
		if err != nil {
			return nil, fmt.Errorf("node %q: %w", n.ID, err)
		}
		doc.Nodes = append(doc.Nodes, node.Node{
			ID:     nodeid.Normalize(n.ID),
			Type:   t,
			Title:  n.Title,
			X:      n.CanvasX,
			Y:      n.CanvasY,
			Config: cfg,
		})
	}
	for _, e := range f.Edges {
		doc.Edges = append(doc.Edges, node.Edge{
			ID:     e.ID,
			Source: nodeid.Normalize(e.SourceNodeID),
			Target: nodeid.Normalize(e.TargetNodeID),
		})
	}
	return doc, nil
}

// fromDocument builds the canvas layout for doc.
func fromDocument(doc *config.Document, exportedAt int64) *File {
	f := &File{
		FormatVersion:       FormatVersion,
		ExportedUnixSeconds: exportedAt,
		Name:                doc.Name,
		Nodes:               make([]Node, 0, len(doc.Nodes)),
		Edges:               make([]Edge, 0, len(doc.Edges)),
	}
	if doc.StartNodeID != "" {
		start := doc.StartNodeID
		f.StartNodeID = &start
	}
	for _, n := range doc.Nodes {
		cfg := make(map[string]any, len(n.Config))
		for k, v := range n.Config {
			cfg[k] = v
		}
		f.Nodes = append(f.Nodes, Node{
			ID:      n.ID,
			Type:    string(n.Type),
			Title:   n.Title,
			CanvasX: n.X,
			CanvasY: n.Y,
			Config:  cfg,
		})
	}
	for _, e := range doc.Edges {
		f.Edges = append(f.Edges, Edge{ID: e.ID, SourceNodeID: e.Source, TargetNodeID: e.Target})
	}
	return f
}

func stringify(raw map[string]any) (map[string]string, error) {
	out := make(map[string]string, len(raw))
	for k, v := range raw {
		switch val := v.(type) {
		case nil:
			continue
		case string:
			out[k] = val
		case bool:
			out[k] = strconv.FormatBool(val)
		case int:
			out[k] = strconv.Itoa(val)
		case int64:
			out[k] = strconv.FormatInt(val, 10)
		case uint64:
			out[k] = strconv.FormatUint(val, 10)
		case float64:
			out[k] = strconv.FormatFloat(val, 'f', -1, 64)
		default:
			return nil, fmt.Errorf("config.%s: must be a string, number or bool, got %T", k, v)
		}
	}
	return out, nil
}

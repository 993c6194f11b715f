package hcl_adapter

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/forgegrid/internal/config"
	"github.com/specialistvlad/forgegrid/internal/ctxlog"
	"github.com/specialistvlad/forgegrid/internal/fsutil"
	"github.com/specialistvlad/forgegrid/internal/node"
	"github.com/specialistvlad/forgegrid/internal/nodeid"
)

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct{}

// NewLoader creates a new HCL document loader.
func NewLoader() *Loader {
	return &Loader{}
}

var _ config.Loader = (*Loader)(nil)

// Load parses every .hcl file reachable from paths and merges the blocks
// into one document.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Document, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	files, err := l.findAllHCLFiles(paths)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no .hcl files found in %v", paths)
	}
	logger.Debug("Discovered HCL files.", "count", len(files))

	doc := &config.Document{}
	parser := hclparse.NewParser()
	sawPipeline := false

	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}

		var root fileRoot
		diags = gohcl.DecodeBody(hclFile.Body, nil, &root)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
		}

		for _, p := range root.Pipelines {
			if sawPipeline {
				return nil, fmt.Errorf("%s: only one pipeline block is allowed", file)
			}
			sawPipeline = true
			doc.Name = p.Name
			doc.StartNodeID = nodeid.Normalize(p.Start)
		}
		for _, n := range root.Nodes {
			translated, err := l.translateNode(ctx, n)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", file, err)
			}
			doc.Nodes = append(doc.Nodes, translated)
		}
		for _, e := range root.Edges {
			doc.Edges = append(doc.Edges, translateEdge(e))
		}
	}

	logger.Debug("HCL loading complete.", "nodes", len(doc.Nodes), "edges", len(doc.Edges))
	return doc, nil
}

func (l *Loader) translateNode(ctx context.Context, n *Node) (node.Node, error) {
	logger := ctxlog.FromContext(ctx).With("node_id", n.ID)
	ctx = ctxlog.WithLogger(ctx, logger)

	t, err := node.ParseType(n.Type)
	if err != nil {
		return node.Node{}, fmt.Errorf("node %q: %w", n.ID, err)
	}
	cfg, err := configToStrings(ctx, n.Config)
	if err != nil {
		return node.Node{}, fmt.Errorf("node %q: %w", n.ID, err)
	}
	logger.Debug("Translated HCL node.", "type", t, "config_keys", sortedKeys(cfg))

	return node.Node{
		ID:     nodeid.Normalize(n.ID),
		Type:   t,
		Title:  n.Title,
		X:      n.X,
		Y:      n.Y,
		Config: cfg,
	}, nil
}

func translateEdge(e *Edge) node.Edge {
	from, to := nodeid.Normalize(e.From), nodeid.Normalize(e.To)
	id := e.ID
	if id == "" {
		id = from + "->" + to
	}
	return node.Edge{ID: id, Source: from, Target: to}
}

// findAllHCLFiles expands directories and keeps explicit .hcl files, in a
// stable order and without duplicates.
func (l *Loader) findAllHCLFiles(paths []string) ([]string, error) {
	var allFiles []string
	seen := make(map[string]struct{})
	add := func(p string) {
		if _, ok := seen[p]; !ok {
			seen[p] = struct{}{}
			allFiles = append(allFiles, p)
		}
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("pipeline path %s does not exist: %w", path, err)
			}
			return nil, fmt.Errorf("error accessing path %s: %w", path, err)
		}
		if !info.IsDir() {
			add(path)
			continue
		}
		found, err := fsutil.FindFilesByExtension(path, ".hcl")
		if err != nil {
			return nil, err
		}
		for _, f := range found {
			add(f)
		}
	}
	return allFiles, nil
}

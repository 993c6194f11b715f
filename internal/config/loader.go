package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/specialistvlad/forgegrid/internal/ctxlog"
)

// ErrUnsupportedFormat is returned when no loader is registered for a path.
var ErrUnsupportedFormat = errors.New("unsupported pipeline document format")

// Loader is the interface for a format-specific document loader.
type Loader interface {
	// Load reads every path and merges them into one Document.
	Load(ctx context.Context, paths ...string) (*Document, error)
}

// LoaderFunc adapts a function into a Loader.
type LoaderFunc func(ctx context.Context, paths ...string) (*Document, error)

// Load implements Loader.
func (f LoaderFunc) Load(ctx context.Context, paths ...string) (*Document, error) {
	return f(ctx, paths...)
}

// Dispatcher picks a Loader by file extension. A directory is handed to the
// loader registered for DirectoryFormat.
type Dispatcher struct {
	loaders map[string]Loader
	// DirectoryFormat is the extension whose loader handles directories.
	DirectoryFormat string
}

// NewDispatcher creates an empty dispatcher whose directories go to the
// ".hcl" loader.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{loaders: make(map[string]Loader), DirectoryFormat: ".hcl"}
}

// Register binds a loader to one or more extensions, such as ".yaml".
func (d *Dispatcher) Register(l Loader, exts ...string) {
	for _, ext := range exts {
		d.loaders[strings.ToLower(ext)] = l
	}
}

// Formats lists the registered extensions.
func (d *Dispatcher) Formats() []string {
	out := make([]string, 0, len(d.loaders))
	for ext := range d.loaders {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}

// Load reads the document at path and validates it.
func (d *Dispatcher) Load(ctx context.Context, path string) (*Document, error) {
	logger := ctxlog.FromContext(ctx)

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("reading pipeline %s: %w", path, err)
	}
	ext := strings.ToLower(filepath.Ext(path))
	if info.IsDir() {
		ext = d.DirectoryFormat
	}

	l, ok := d.loaders[ext]
	if !ok {
		return nil, fmt.Errorf("%w: %q (supported: %s)", ErrUnsupportedFormat, ext, strings.Join(d.Formats(), ", "))
	}
	logger.Debug("Loading pipeline document.", "path", path, "format", ext)

	doc, err := l.Load(ctx, path)
	if err != nil {
		return nil, err
	}
	if err := doc.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	logger.Debug("Pipeline document loaded.", "nodes", len(doc.Nodes), "edges", len(doc.Edges), "start", doc.StartNodeID)
	return doc, nil
}

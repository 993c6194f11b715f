package canvas

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/specialistvlad/forgegrid/internal/config"
)

// ExportDir is where canvases are written, relative to the data root, when
// no output path is requested.
const ExportDir = "outputs/canvas"

// ErrInvalidCanvas is returned when a document cannot be exported.
var ErrInvalidCanvas = errors.New("canvas export failed")

// Export writes doc to w as indented canvas JSON stamped with exportedAt.
func Export(w io.Writer, doc *config.Document, exportedAt time.Time) error {
	if err := validateForExport(doc); err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(fromDocument(doc, exportedAt.Unix())); err != nil {
		return fmt.Errorf("%w: could not serialize canvas payload: %w", ErrInvalidCanvas, err)
	}
	return nil
}

// ExportFile writes doc under dataRoot and returns the path written. See
// ResolveOutputPath for how requested is interpreted.
func ExportFile(dataRoot, requested string, doc *config.Document, now time.Time) (string, error) {
	if err := validateForExport(doc); err != nil {
		return "", err
	}
	path := ResolveOutputPath(dataRoot, requested, now)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("%w: could not create export directory %s: %w", ErrInvalidCanvas, filepath.Dir(path), err)
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("%w: could not write export file %s: %w", ErrInvalidCanvas, path, err)
	}
	if err := Export(f, doc, now); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("%w: could not write export file %s: %w", ErrInvalidCanvas, path, err)
	}
	return path, nil
}

// ResolveOutputPath decides where an exported canvas goes. An empty request
// yields <dataRoot>/outputs/canvas/forge-canvas-<unix seconds>.json. A
// relative request is placed under dataRoot. A request without an
// extension gets ".json".
func ResolveOutputPath(dataRoot, requested string, now time.Time) string {
	requested = strings.TrimSpace(requested)
	if requested == "" {
		return filepath.Join(dataRoot, ExportDir, fmt.Sprintf("forge-canvas-%d.json", now.Unix()))
	}
	path := requested
	if !filepath.IsAbs(path) {
		path = filepath.Join(dataRoot, path)
	}
	if filepath.Ext(path) == "" {
		path += ".json"
	}
	return path
}

func validateForExport(doc *config.Document) error {
	for _, n := range doc.Nodes {
		if strings.TrimSpace(n.ID) == "" {
			return fmt.Errorf("%w: node id cannot be empty", ErrInvalidCanvas)
		}
	}
	for _, e := range doc.Edges {
		if strings.TrimSpace(e.Source) == "" || strings.TrimSpace(e.Target) == "" {
			return fmt.Errorf("%w: edge source/target ids cannot be empty", ErrInvalidCanvas)
		}
	}
	return nil
}

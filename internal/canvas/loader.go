package canvas

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/specialistvlad/forgegrid/internal/config"
	"github.com/specialistvlad/forgegrid/internal/ctxlog"
)

// JSONLoader loads Studio canvas exports.
type JSONLoader struct{}

// YAMLLoader loads canvases written as YAML.
type YAMLLoader struct{}

var (
	_ config.Loader = JSONLoader{}
	_ config.Loader = YAMLLoader{}
)

// Load implements config.Loader. Exactly one path is accepted.
func (JSONLoader) Load(ctx context.Context, paths ...string) (*config.Document, error) {
	return loadOne(ctx, "json", paths, DecodeJSON)
}

// Load implements config.Loader. Exactly one path is accepted.
func (YAMLLoader) Load(ctx context.Context, paths ...string) (*config.Document, error) {
	return loadOne(ctx, "yaml", paths, DecodeYAML)
}

// DecodeJSON reads a canvas in JSON form. Unknown fields are rejected.
func DecodeJSON(r io.Reader) (*config.Document, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	dec.UseNumber()

	var raw File
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decoding canvas json: %w", err)
	}
	for i := range raw.Nodes {
		normalizeJSONNumbers(raw.Nodes[i].Config)
	}
	return raw.toDocument()
}

// DecodeYAML reads a canvas in YAML form. Unknown fields are rejected.
func DecodeYAML(r io.Reader) (*config.Document, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var raw File
	if err := dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("decoding canvas yaml: document is empty")
		}
		return nil, fmt.Errorf("decoding canvas yaml: %w", err)
	}
	return raw.toDocument()
}

// normalizeJSONNumbers rewrites json.Number values as their literal text.
func normalizeJSONNumbers(cfg map[string]any) {
	for k, v := range cfg {
		if n, ok := v.(json.Number); ok {
			cfg[k] = n.String()
		}
	}
}

func loadOne(ctx context.Context, format string, paths []string, decode func(io.Reader) (*config.Document, error)) (*config.Document, error) {
	if len(paths) != 1 {
		return nil, fmt.Errorf("%s canvas loader takes exactly one file, got %d", format, len(paths))
	}
	path := paths[0]
	ctxlog.FromContext(ctx).Debug("Reading canvas.", "path", path, "format", format)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading canvas %s: %w", path, err)
	}
	doc, err := decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

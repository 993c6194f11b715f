package canvas

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/forgegrid/internal/config"
	"github.com/specialistvlad/forgegrid/internal/node"
)

const canvasJSON = `{
  "format_version": 1,
  "exported_unix_seconds": 1767225600,
  "start_node_id": "a",
  "nodes": [
    {"id": "a", "type": "ingest", "title": "Ingest", "canvas_x": 10, "canvas_y": 20,
     "config": {"dataset": "demo", "source": "./raw"}},
    {"id": "b", "type": "train", "title": "", "canvas_x": 0, "canvas_y": 0,
     "config": {"dataset": "demo", "output_dir": "out", "epochs": 3, "dropout": 0.25, "resume": null}}
  ],
  "edges": [
    {"id": "e1", "source_node_id": "a", "target_node_id": "b"}
  ]
}`

const canvasYAML = `
format_version: 1
name: demo
start_node_id: a
nodes:
  - id: a
    type: ingest
    title: Ingest
    canvas_x: 10
    canvas_y: 20
    config:
      dataset: demo
      source: ./raw
  - id: b
    type: train
    config:
      dataset: demo
      output_dir: out
      epochs: 3
      dropout: 0.25
      include_metadata: true
edges:
  - id: e1
    source_node_id: a
    target_node_id: b
`

func TestDecodeJSON(t *testing.T) {
	doc, err := DecodeJSON(strings.NewReader(canvasJSON))
	require.NoError(t, err)

	assert.Equal(t, "a", doc.StartNodeID)
	require.Len(t, doc.Nodes, 2)
	assert.Equal(t, node.Node{
		ID: "a", Type: node.Ingest, Title: "Ingest", X: 10, Y: 20,
		Config: map[string]string{"dataset": "demo", "source": "./raw"},
	}, doc.Nodes[0])
	assert.Equal(t, map[string]string{"dataset": "demo", "output_dir": "out", "epochs": "3", "dropout": "0.25"}, doc.Nodes[1].Config)
	assert.Equal(t, []node.Edge{{ID: "e1", Source: "a", Target: "b"}}, doc.Edges)
}

func TestDecodeYAML(t *testing.T) {
	doc, err := DecodeYAML(strings.NewReader(canvasYAML))
	require.NoError(t, err)

	assert.Equal(t, "demo", doc.Name)
	assert.Equal(t, "a", doc.StartNodeID)
	require.Len(t, doc.Nodes, 2)
	assert.Equal(t, map[string]string{
		"dataset": "demo", "output_dir": "out", "epochs": "3", "dropout": "0.25", "include_metadata": "true",
	}, doc.Nodes[1].Config)
	assert.Len(t, doc.Edges, 1)
}

func TestDecode_Errors(t *testing.T) {
	_, err := DecodeJSON(strings.NewReader(`{"format_version": 2, "nodes": [], "edges": []}`))
	assert.ErrorIs(t, err, ErrUnsupportedVersion)

	_, err = DecodeJSON(strings.NewReader(`{"nodes": [{"id": "a", "type": "deploy"}]}`))
	assert.ErrorIs(t, err, node.ErrUnknownType)

	_, err = DecodeJSON(strings.NewReader(`{"nodes": [], "surprise": true}`))
	assert.ErrorContains(t, err, "surprise")

	_, err = DecodeJSON(strings.NewReader(`{"nodes": [{"id": "a", "type": "custom", "config": {"args": ["x"]}}]}`))
	assert.ErrorContains(t, err, "config.args")

	_, err = DecodeYAML(strings.NewReader(""))
	assert.ErrorContains(t, err, "empty")
}

func TestLoaders(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "p.json")
	yamlPath := filepath.Join(dir, "p.yaml")
	require.NoError(t, os.WriteFile(jsonPath, []byte(canvasJSON), 0o644))
	require.NoError(t, os.WriteFile(yamlPath, []byte(canvasYAML), 0o644))

	ctx := context.Background()
	doc, err := JSONLoader{}.Load(ctx, jsonPath)
	require.NoError(t, err)
	assert.Len(t, doc.Nodes, 2)

	doc, err = YAMLLoader{}.Load(ctx, yamlPath)
	require.NoError(t, err)
	assert.Len(t, doc.Nodes, 2)

	_, err = JSONLoader{}.Load(ctx, jsonPath, yamlPath)
	assert.ErrorContains(t, err, "exactly one file")

	_, err = YAMLLoader{}.Load(ctx, filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestExport_RoundTrip(t *testing.T) {
	doc, err := DecodeJSON(strings.NewReader(canvasJSON))
	require.NoError(t, err)

	var buf bytes.Buffer
	at := time.Unix(1767225600, 0)
	require.NoError(t, Export(&buf, doc, at))

	var raw map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &raw))
	assert.Equal(t, float64(FormatVersion), raw["format_version"])
	assert.Equal(t, float64(1767225600), raw["exported_unix_seconds"])
	assert.Equal(t, "a", raw["start_node_id"])

	again, err := DecodeJSON(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, doc, again)
}

func TestExport_NullStart(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Export(&buf, &config.Document{}, time.Unix(0, 0)))
	assert.Contains(t, buf.String(), `"start_node_id": null`)
}

func TestExport_Validation(t *testing.T) {
	var buf bytes.Buffer
	err := Export(&buf, &config.Document{Nodes: []node.Node{{ID: " "}}}, time.Now())
	assert.ErrorIs(t, err, ErrInvalidCanvas)

	err = Export(&buf, &config.Document{Edges: []node.Edge{{ID: "e", Source: "a"}}}, time.Now())
	assert.ErrorIs(t, err, ErrInvalidCanvas)
	assert.ErrorContains(t, err, "edge source/target ids cannot be empty")
}

func TestResolveOutputPath(t *testing.T) {
	now := time.Unix(1767225600, 0)
	root := filepath.Join("/", "data")

	assert.Equal(t, filepath.Join(root, "outputs", "canvas", "forge-canvas-1767225600.json"), ResolveOutputPath(root, "", now))
	assert.Equal(t, filepath.Join(root, "outputs", "canvas", "forge-canvas-1767225600.json"), ResolveOutputPath(root, "   ", now))
	assert.Equal(t, filepath.Join(root, "exports", "mine.json"), ResolveOutputPath(root, "exports/mine", now))
	assert.Equal(t, filepath.Join(root, "mine.canvas"), ResolveOutputPath(root, "mine.canvas", now))

	abs := filepath.Join(t.TempDir(), "abs")
	assert.Equal(t, abs+".json", ResolveOutputPath(root, abs, now))
}

func TestExportFile(t *testing.T) {
	root := t.TempDir()
	doc := &config.Document{
		StartNodeID: "a",
		Nodes:       []node.Node{{ID: "a", Type: node.Ingest, Config: map[string]string{"dataset": "d", "source": "s"}}},
	}
	now := time.Unix(1767225600, 0)

	path, err := ExportFile(root, "", doc, now)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "outputs", "canvas", "forge-canvas-1767225600.json"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	loaded, err := DecodeJSON(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, doc.Nodes, loaded.Nodes)
}

package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/forgegrid/internal/node"
)

func TestTranslate(t *testing.T) {
	tr := NewTranslator()

	tests := []struct {
		name string
		node node.Node
		want []string
	}{
		{
			name: "ingest",
			node: node.Node{ID: "a", Type: node.Ingest, Config: map[string]string{
				"dataset": "demo", "source": "./raw", "resume": "true",
			}},
			want: []string{"ingest", "./raw", "--dataset", "demo", "--resume"},
		},
		{
			name: "filter with threshold",
			node: node.Node{ID: "b", Type: node.Filter, Config: map[string]string{
				"dataset": "demo", "language": "en", "min_quality": "0.75",
			}},
			want: []string{"filter", "--dataset", "demo", "--language", "en", "--min-quality", "0.75"},
		},
		{
			name: "train",
			node: node.Node{ID: "c", Type: node.Train, Config: map[string]string{
				"dataset": "demo", "output_dir": "models/v1", "epochs": "3", "learning_rate": "0.001",
			}},
			want: []string{"train", "--dataset", "demo", "--output-dir", "models/v1", "--epochs", "3", "--learning-rate", "0.001"},
		},
		{
			name: "export maps to export-training",
			node: node.Node{ID: "d", Type: node.Export, Config: map[string]string{
				"dataset": "demo", "output_dir": "out", "include_metadata": "yes",
			}},
			want: nil,
		},
		{
			name: "chat",
			node: node.Node{ID: "e", Type: node.Chat, Config: map[string]string{
				"model_path": "m.bin", "prompt": "hello there", "top_k": "0",
			}},
			want: []string{"chat", "--model-path", "m.bin", "--prompt", "hello there", "--top-k", "0"},
		},
		{
			name: "custom passes raw args through",
			node: node.Node{ID: "f", Type: node.Custom, Config: map[string]string{
				"args": `versions --dataset "my data"`,
			}},
			want: []string{"versions", "--dataset", "my data"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := tr.Translate(tc.node)
			if tc.want == nil {
				// "yes" is not a valid boolean.
				require.Error(t, err)
				assert.ErrorIs(t, err, node.ErrInvalidConfig)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestTranslate_Export(t *testing.T) {
	got, err := NewTranslator().Translate(node.Node{ID: "d", Type: node.Export, Config: map[string]string{
		"dataset": "demo", "output_dir": "out", "shard_size": "100", "include_metadata": "true",
	}})
	require.NoError(t, err)
	assert.Equal(t, []string{"export-training", "--dataset", "demo", "--output-dir", "out", "--shard-size", "100", "--include-metadata"}, got)
}

func TestTranslate_Errors(t *testing.T) {
	tr := NewTranslator()

	t.Run("missing required field", func(t *testing.T) {
		_, err := tr.Translate(node.Node{ID: "x", Type: node.Train, Config: map[string]string{"dataset": "d"}})
		require.Error(t, err)
		assert.ErrorIs(t, err, node.ErrInvalidConfig)
		assert.Contains(t, err.Error(), `node "x"`)
		assert.Contains(t, err.Error(), "output_dir")
	})

	t.Run("custom command outside the allow-list", func(t *testing.T) {
		_, err := tr.Translate(node.Node{ID: "x", Type: node.Custom, Config: map[string]string{"args": "rm -rf /"}})
		assert.ErrorIs(t, err, ErrUnsupportedCommand)
	})

	t.Run("unknown type", func(t *testing.T) {
		_, err := tr.Translate(node.Node{ID: "x", Type: node.Type("deploy")})
		assert.ErrorIs(t, err, node.ErrUnknownType)
	})
}

func TestValidate(t *testing.T) {
	for _, sub := range Allowed {
		assert.NoError(t, Validate([]string{sub}), sub)
	}
	assert.ErrorIs(t, Validate(nil), ErrUnsupportedCommand)
	assert.ErrorIs(t, Validate([]string{"shell"}), ErrUnsupportedCommand)
}

func TestLine(t *testing.T) {
	assert.Equal(t, "forge ingest ./raw --dataset demo", Line([]string{"ingest", "./raw", "--dataset", "demo"}))
	assert.Equal(t, `forge chat --prompt "hello there"`, Line([]string{"chat", "--prompt", "hello there"}))
	assert.Equal(t, "forge", Line(nil))
}

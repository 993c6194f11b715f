package node

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseType(t *testing.T) {
	for _, known := range Types {
		got, err := ParseType(string(known))
		require.NoError(t, err)
		assert.Equal(t, known, got)
	}

	got, err := ParseType("  TRAIN ")
	require.NoError(t, err)
	assert.Equal(t, Train, got)

	_, err = ParseType("shell")
	assert.ErrorIs(t, err, ErrUnknownType)
}

func TestNodeLabel(t *testing.T) {
	assert.Equal(t, "Tokenize corpus", Node{Type: Ingest, Title: "Tokenize corpus"}.Label())
	assert.Equal(t, "train", Node{Type: Train, Title: "   "}.Label())
}

func TestDecodeConfig(t *testing.T) {
	t.Run("ingest", func(t *testing.T) {
		cfg, err := DecodeConfig(Ingest, map[string]string{
			"dataset":     "demo",
			"source":      "./corpus",
			"incremental": "true",
		})
		require.NoError(t, err)
		assert.Equal(t, IngestConfig{Dataset: "demo", Source: "./corpus", Incremental: true}, cfg)
	})

	t.Run("train with numbers", func(t *testing.T) {
		cfg, err := DecodeConfig(Train, map[string]string{
			"dataset":          "demo",
			"output_dir":       "out/run1",
			"epochs":           "3",
			"learning_rate":    "0.0005",
			"validation_split": "0.1",
		})
		require.NoError(t, err)
		train := cfg.(TrainConfig)
		require.NotNil(t, train.Epochs)
		assert.Equal(t, 3, *train.Epochs)
		require.NotNil(t, train.LearningRate)
		assert.InDelta(t, 0.0005, *train.LearningRate, 1e-12)
		assert.Nil(t, train.BatchSize)
	})

	t.Run("custom splits args", func(t *testing.T) {
		cfg, err := DecodeConfig(Custom, map[string]string{"args": `versions --dataset "my data"`})
		require.NoError(t, err)
		assert.Equal(t, []string{"versions", "--dataset", "my data"}, cfg.(CustomConfig).Args)
	})

	t.Run("error cases", func(t *testing.T) {
		testCases := []struct {
			name    string
			typ     Type
			raw     map[string]string
			wantKey string
		}{
			{"missing dataset", Filter, map[string]string{}, "dataset"},
			{"bad bool", Ingest, map[string]string{"dataset": "d", "source": "s", "resume": "maybe"}, "resume"},
			{"bad int", Train, map[string]string{"dataset": "d", "output_dir": "o", "epochs": "three"}, "epochs"},
			{"zero int", Export, map[string]string{"dataset": "d", "output_dir": "o", "shard_size": "0"}, "shard_size"},
			{"fraction out of range", Train, map[string]string{"dataset": "d", "output_dir": "o", "dropout": "1.5"}, "dropout"},
			{"negative temperature", Chat, map[string]string{"model_path": "m", "prompt": "p", "temperature": "-1"}, "temperature"},
			{"unterminated quote", Custom, map[string]string{"args": `train "oops`}, "args"},
		}
		for _, tc := range testCases {
			t.Run(tc.name, func(t *testing.T) {
				_, err := DecodeConfig(tc.typ, tc.raw)
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidConfig)
				var cfgErr *ConfigError
				require.True(t, errors.As(err, &cfgErr))
				assert.Equal(t, tc.wantKey, cfgErr.Key)
				assert.Equal(t, tc.typ, cfgErr.NodeType)
			})
		}
	})

	t.Run("unknown type", func(t *testing.T) {
		_, err := DecodeConfig(Type("shell"), nil)
		assert.ErrorIs(t, err, ErrUnknownType)
	})
}

func TestSplitArgs(t *testing.T) {
	testCases := []struct {
		raw  string
		want []string
	}{
		{"", nil},
		{"   ", nil},
		{"versions --dataset demo", []string{"versions", "--dataset", "demo"}},
		{`a 'b c' "d e"`, []string{"a", "b c", "d e"}},
		{`say "a \"quoted\" word"`, []string{"say", `a "quoted" word`}},
		{`x\ y z`, []string{"x y", "z"}},
		{`''`, []string{""}},
	}
	for _, tc := range testCases {
		got, err := SplitArgs(tc.raw)
		require.NoError(t, err, tc.raw)
		assert.Equal(t, tc.want, got, tc.raw)
	}

	_, err := SplitArgs(`a\`)
	assert.ErrorContains(t, err, "trailing backslash")
}

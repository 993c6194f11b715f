// Package command translates pipeline nodes into forge argument vectors and
// guards which forge subcommands a pipeline may run.
package command

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/specialistvlad/forgegrid/internal/node"
)

// ErrUnsupportedCommand is returned for an empty argv or a subcommand that is
// not on the allow-list.
var ErrUnsupportedCommand = errors.New("unsupported forge command")

// Allowed lists the forge subcommands a pipeline step may invoke.
var Allowed = []string{"ingest", "filter", "train", "export-training", "versions", "chat"}

// Validate checks that args starts with an allowed subcommand.
func Validate(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: forge args must include a command", ErrUnsupportedCommand)
	}
	for _, allowed := range Allowed {
		if args[0] == allowed {
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrUnsupportedCommand, args[0])
}

// Line renders args as the command line shown in console output.
func Line(args []string) string {
	quoted := make([]string, len(args))
	for i, a := range args {
		if a == "" || strings.ContainsAny(a, " \t\n'\"\\") {
			quoted[i] = strconv.Quote(a)
		} else {
			quoted[i] = a
		}
	}
	return strings.TrimSpace("forge " + strings.Join(quoted, " "))
}

// Translator maps nodes to forge argument vectors.
type Translator struct{}

// NewTranslator creates a Translator.
func NewTranslator() *Translator {
	return &Translator{}
}

// Translate decodes the node's typed configuration and renders the matching
// forge invocation. The returned argv always passes Validate.
func (t *Translator) Translate(n node.Node) ([]string, error) {
	cfg, err := node.DecodeConfig(n.Type, n.Config)
	if err != nil {
		return nil, fmt.Errorf("node %q: %w", n.ID, err)
	}

	var args argv
	switch c := cfg.(type) {
	case node.IngestConfig:
		args.add("ingest", c.Source)
		args.flag("--dataset", c.Dataset)
		args.flag("--output-uri", c.OutputURI)
		args.toggle("--resume", c.Resume)
		args.toggle("--incremental", c.Incremental)
		args.flag("--quality-model", c.QualityModel)
	case node.FilterConfig:
		args.add("filter")
		args.flag("--dataset", c.Dataset)
		args.flag("--language", c.Language)
		args.float("--min-quality", c.MinQuality)
		args.flag("--source-prefix", c.SourcePrefix)
	case node.TrainConfig:
		args.add("train")
		args.flag("--dataset", c.Dataset)
		args.flag("--output-dir", c.OutputDir)
		args.flag("--version-id", c.VersionID)
		args.flag("--architecture-file", c.ArchitectureFile)
		args.flag("--custom-loop-file", c.CustomLoopFile)
		args.flag("--initial-weights-path", c.InitialWeightsPath)
		args.int("--epochs", c.Epochs)
		args.float("--learning-rate", c.LearningRate)
		args.int("--batch-size", c.BatchSize)
		args.int("--max-token-length", c.MaxTokenLength)
		args.int("--vocabulary-size", c.VocabularySize)
		args.float("--validation-split", c.ValidationSplit)
		args.int("--hidden-dim", c.HiddenDim)
		args.int("--num-layers", c.NumLayers)
		args.int("--attention-heads", c.AttentionHeads)
		args.int("--mlp-hidden-dim", c.MLPHiddenDim)
		args.int("--mlp-layers", c.MLPLayers)
		args.float("--dropout", c.Dropout)
	case node.ExportConfig:
		args.add("export-training")
		args.flag("--dataset", c.Dataset)
		args.flag("--output-dir", c.OutputDir)
		args.flag("--version-id", c.VersionID)
		args.int("--shard-size", c.ShardSize)
		args.toggle("--include-metadata", c.IncludeMetadata)
	case node.ChatConfig:
		args.add("chat")
		args.flag("--model-path", c.ModelPath)
		args.flag("--prompt", c.Prompt)
		args.flag("--dataset", c.Dataset)
		args.flag("--tokenizer-path", c.TokenizerPath)
		args.flag("--version-id", c.VersionID)
		args.int("--max-new-tokens", c.MaxNewTokens)
		args.float("--temperature", c.Temperature)
		args.int("--top-k", c.TopK)
	case node.CustomConfig:
		args.add(c.Args...)
	default:
		return nil, fmt.Errorf("node %q: no translation for config %T", n.ID, cfg)
	}

	if err := Validate(args); err != nil {
		return nil, fmt.Errorf("node %q: %w", n.ID, err)
	}
	return args, nil
}

// argv accumulates arguments, skipping unset optional values.
type argv []string

func (a *argv) add(values ...string) { *a = append(*a, values...) }

func (a *argv) flag(name, value string) {
	if value != "" {
		a.add(name, value)
	}
}

func (a *argv) toggle(name string, on bool) {
	if on {
		a.add(name)
	}
}

func (a *argv) int(name string, value *int) {
	if value != nil {
		a.add(name, strconv.Itoa(*value))
	}
}

func (a *argv) float(name string, value *float64) {
	if value != nil {
		a.add(name, strconv.FormatFloat(*value, 'g', -1, 64))
	}
}

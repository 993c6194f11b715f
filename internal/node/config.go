package node

import (
	"fmt"
	"strconv"
	"strings"
)

// Config is the typed configuration of a node. Each node Type has exactly one
// implementation; callers switch over the concrete type.
type Config interface {
	NodeType() Type
}

// IngestConfig configures an ingest step.
type IngestConfig struct {
	Dataset      string
	Source       string
	OutputURI    string
	Resume       bool
	Incremental  bool
	QualityModel string
}

// FilterConfig configures a filter step.
type FilterConfig struct {
	Dataset      string
	Language     string
	MinQuality   *float64
	SourcePrefix string
}

// TrainConfig configures a training step.
type TrainConfig struct {
	Dataset            string
	OutputDir          string
	VersionID          string
	ArchitectureFile   string
	CustomLoopFile     string
	InitialWeightsPath string
	Epochs             *int
	BatchSize          *int
	MaxTokenLength     *int
	VocabularySize     *int
	HiddenDim          *int
	NumLayers          *int
	AttentionHeads     *int
	MLPHiddenDim       *int
	MLPLayers          *int
	LearningRate       *float64
	ValidationSplit    *float64
	Dropout            *float64
}

// ExportConfig configures an export-training step.
type ExportConfig struct {
	Dataset         string
	OutputDir       string
	VersionID       string
	ShardSize       *int
	IncludeMetadata bool
}

// ChatConfig configures a chat step.
type ChatConfig struct {
	ModelPath     string
	Prompt        string
	Dataset       string
	TokenizerPath string
	VersionID     string
	MaxNewTokens  *int
	TopK          *int
	Temperature   *float64
}

// CustomConfig carries a raw forge argument string, split into Args.
type CustomConfig struct {
	Raw  string
	Args []string
}

func (IngestConfig) NodeType() Type { return Ingest }
func (FilterConfig) NodeType() Type { return Filter }
func (TrainConfig) NodeType() Type  { return Train }
func (ExportConfig) NodeType() Type { return Export }
func (ChatConfig) NodeType() Type   { return Chat }
func (CustomConfig) NodeType() Type { return Custom }

// DecodeConfig converts the raw settings of a node of type t into its typed
// configuration. Empty values are treated as unset. Unknown keys are ignored
// so canvases written by newer editors still load.
func DecodeConfig(t Type, raw map[string]string) (Config, error) {
	r := &reader{nodeType: t, raw: raw}
	var cfg Config
	switch t {
	case Ingest:
		cfg = IngestConfig{
			Dataset:      r.required("dataset"),
			Source:       r.required("source"),
			OutputURI:    r.str("output_uri"),
			Resume:       r.boolean("resume"),
			Incremental:  r.boolean("incremental"),
			QualityModel: r.str("quality_model"),
		}
	case Filter:
		cfg = FilterConfig{
			Dataset:      r.required("dataset"),
			Language:     r.str("language"),
			MinQuality:   r.float("min_quality"),
			SourcePrefix: r.str("source_prefix"),
		}
	case Train:
		cfg = TrainConfig{
			Dataset:            r.required("dataset"),
			OutputDir:          r.required("output_dir"),
			VersionID:          r.str("version_id"),
			ArchitectureFile:   r.str("architecture_file"),
			CustomLoopFile:     r.str("custom_loop_file"),
			InitialWeightsPath: r.str("initial_weights_path"),
			Epochs:             r.positiveInt("epochs"),
			BatchSize:          r.positiveInt("batch_size"),
			MaxTokenLength:     r.positiveInt("max_token_length"),
			VocabularySize:     r.positiveInt("vocabulary_size"),
			HiddenDim:          r.positiveInt("hidden_dim"),
			NumLayers:          r.positiveInt("num_layers"),
			AttentionHeads:     r.positiveInt("attention_heads"),
			MLPHiddenDim:       r.positiveInt("mlp_hidden_dim"),
			MLPLayers:          r.positiveInt("mlp_layers"),
			LearningRate:       r.float("learning_rate"),
			ValidationSplit:    r.fraction("validation_split"),
			Dropout:            r.fraction("dropout"),
		}
	case Export:
		cfg = ExportConfig{
			Dataset:         r.required("dataset"),
			OutputDir:       r.required("output_dir"),
			VersionID:       r.str("version_id"),
			ShardSize:       r.positiveInt("shard_size"),
			IncludeMetadata: r.boolean("include_metadata"),
		}
	case Chat:
		cfg = ChatConfig{
			ModelPath:     r.required("model_path"),
			Prompt:        r.required("prompt"),
			Dataset:       r.str("dataset"),
			TokenizerPath: r.str("tokenizer_path"),
			VersionID:     r.str("version_id"),
			MaxNewTokens:  r.positiveInt("max_new_tokens"),
			TopK:          r.nonNegativeInt("top_k"),
			Temperature:   r.nonNegativeFloat("temperature"),
		}
	case Custom:
		rawArgs := r.required("args")
		var args []string
		if rawArgs != "" {
			split, err := SplitArgs(rawArgs)
			if err != nil {
				r.fail("args", err.Error())
			}
			args = split
		}
		cfg = CustomConfig{Raw: rawArgs, Args: args}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, t)
	}
	if r.err != nil {
		return nil, r.err
	}
	return cfg, nil
}

// reader pulls typed values out of a raw settings map, remembering the first
// failure so DecodeConfig stays a flat list of fields.
type reader struct {
	nodeType Type
	raw      map[string]string
	err      error
}

func (r *reader) fail(key, reason string) {
	if r.err == nil {
		r.err = &ConfigError{NodeType: r.nodeType, Key: key, Reason: reason}
	}
}

func (r *reader) str(key string) string {
	return strings.TrimSpace(r.raw[key])
}

func (r *reader) required(key string) string {
	v := r.str(key)
	if v == "" {
		r.fail(key, "is required")
	}
	return v
}

func (r *reader) boolean(key string) bool {
	v := r.str(key)
	if v == "" {
		return false
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		r.fail(key, fmt.Sprintf("must be a boolean, got %q", v))
		return false
	}
	return b
}

func (r *reader) integer(key string, min int, rule string) *int {
	v := r.str(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		r.fail(key, fmt.Sprintf("must be an integer, got %q", v))
		return nil
	}
	if n < min {
		r.fail(key, fmt.Sprintf("must be %s, got %d", rule, n))
		return nil
	}
	return &n
}

func (r *reader) positiveInt(key string) *int    { return r.integer(key, 1, "positive") }
func (r *reader) nonNegativeInt(key string) *int { return r.integer(key, 0, "non-negative") }

func (r *reader) float(key string) *float64 {
	v := r.str(key)
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		r.fail(key, fmt.Sprintf("must be a number, got %q", v))
		return nil
	}
	return &f
}

func (r *reader) nonNegativeFloat(key string) *float64 {
	f := r.float(key)
	if f != nil && *f < 0 {
		r.fail(key, fmt.Sprintf("must be non-negative, got %v", *f))
		return nil
	}
	return f
}

// fraction accepts values in [0, 1).
func (r *reader) fraction(key string) *float64 {
	f := r.float(key)
	if f != nil && (*f < 0 || *f >= 1) {
		r.fail(key, fmt.Sprintf("must be in [0,1), got %v", *f))
		return nil
	}
	return f
}

package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/specialistvlad/forgegrid/internal/nodeid"
	"github.com/specialistvlad/forgegrid/internal/scheduler"
)

// DefaultDataRoot is where forge keeps its data when nothing else is set.
const DefaultDataRoot = ".forge"

// TaskIDPrefix prefixes the ids of tasks launched by local runs.
const TaskIDPrefix = "forge-task"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	PipelinePath string // .hcl, .json, .yaml or a directory of .hcl files
	StartNodeID  string // empty picks the document's start or first root

	DataRoot     string
	ForgeBin     string
	WorkDir      string
	PollInterval time.Duration
	TaskIDFormat string // nodeid.FormatSequence (default) or nodeid.FormatUUID

	LogFormat       string
	LogLevel        string
	HealthcheckPort int

	Progress          []string // progress sink names
	SocketIOURL       string
	SocketIONamespace string
	SocketIOEvent     string

	ExportCanvas bool
	ExportPath   string
	DryRun       bool
}

// NewConfig validates cfg and fills in defaults.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.PipelinePath == "" {
		return nil, errors.New("PipelinePath is a required configuration field and cannot be empty")
	}
	if strings.TrimSpace(cfg.DataRoot) == "" {
		cfg.DataRoot = DefaultDataRoot
	}
	if cfg.PollInterval < 0 {
		return nil, fmt.Errorf("poll interval must not be negative, got %s", cfg.PollInterval)
	}
	if cfg.PollInterval == 0 {
		cfg.PollInterval = scheduler.DefaultPollInterval
	}
	if cfg.TaskIDFormat == "" {
		cfg.TaskIDFormat = nodeid.FormatSequence
	}
	if _, err := nodeid.NewGenerator(cfg.TaskIDFormat, TaskIDPrefix); err != nil {
		return nil, fmt.Errorf("task id format: %w", err)
	}
	if cfg.HealthcheckPort < 0 || cfg.HealthcheckPort > 65535 {
		return nil, fmt.Errorf("healthcheck port %d is out of range", cfg.HealthcheckPort)
	}
	if _, err := ParseLevel(cfg.LogLevel); err != nil {
		return nil, err
	}

	sinks := make([]string, 0, len(cfg.Progress))
	seen := make(map[string]struct{}, len(cfg.Progress))
	for _, name := range cfg.Progress {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		sinks = append(sinks, name)
	}
	cfg.Progress = sinks

	return &cfg, nil
}

package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/specialistvlad/forgegrid/internal/app"
	"github.com/specialistvlad/forgegrid/internal/nodeid"
	"github.com/specialistvlad/forgegrid/internal/scheduler"
)

// Environment variables that provide flag defaults.
const (
	EnvDataRoot  = "FORGE_DATA_ROOT"
	EnvForgeBin  = "FORGEGRID_FORGE_BIN"
	EnvLogLevel  = "FORGEGRID_LOG_LEVEL"
	EnvLogFormat = "FORGEGRID_LOG_FORMAT"
)

// Exit codes.
const (
	ExitRuntime = 1
	ExitUsage   = 2
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// ExitErrorFor classifies an error returned by the app. Pipeline document
// and flag problems exit with ExitUsage, everything else with ExitRuntime.
func ExitErrorFor(err error) *ExitError {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr
	}
	code := ExitRuntime
	if errors.Is(err, app.ErrConfiguration) {
		code = ExitUsage
	}
	return &ExitError{Code: code, Message: err.Error()}
}

// LoadDotEnv reads KEY=value pairs from path into the process environment.
// Variables already set win. A missing file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("loading %s: %w", path, err)
	}
	slog.Debug("Loaded environment file.", "path", path)
	return nil
}

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("forgegrid", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
forgegrid - Runs forge pipeline canvases step by step.

Usage:
  forgegrid [options] [PIPELINE_PATH]

Arguments:
  PIPELINE_PATH
    Path to a pipeline document (.hcl, .json, .yaml) or a directory of .hcl files.

Environment:
  FORGE_DATA_ROOT, FORGEGRID_FORGE_BIN, FORGEGRID_LOG_LEVEL, FORGEGRID_LOG_FORMAT
    provide defaults for the matching flags. A .env file in the working
    directory is read first.

Options:
`)
		flagSet.PrintDefaults()
	}

	pipelineFlag := flagSet.String("pipeline", "", "Path to the pipeline document or directory.")
	pFlag := flagSet.String("p", "", "Path to the pipeline document or directory (shorthand).")
	startFlag := flagSet.String("start", "", "Node to start from. Defaults to the document's start node or its first root.")
	dataRootFlag := flagSet.String("data-root", envOr(EnvDataRoot, app.DefaultDataRoot), "forge data root passed to every step.")
	forgeBinFlag := flagSet.String("forge-bin", envOr(EnvForgeBin, "forge"), "forge executable.")
	pollFlag := flagSet.Duration("poll-interval", scheduler.DefaultPollInterval, "Pause between task status polls.")
	taskIDsFlag := flagSet.String("task-ids", nodeid.FormatSequence, "Task id format for local runs. Options: 'sequence' or 'uuid'.")
	logFormatFlag := flagSet.String("log-format", envOr(EnvLogFormat, "text"), "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", envOr(EnvLogLevel, "info"), "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	healthPortFlag := flagSet.Int("healthcheck-port", 0, "Port for the HTTP health, progress and metrics server. 0 is disabled.")
	progressFlag := flagSet.String("progress", strings.Join(app.DefaultProgress, ","), "Comma separated progress sinks. Options: 'log', 'print', 'socketio'.")
	socketURLFlag := flagSet.String("socketio-url", "", "socket.io server for the socketio progress sink.")
	socketNSFlag := flagSet.String("socketio-namespace", "", "socket.io namespace. Defaults to '/'.")
	socketEventFlag := flagSet.String("socketio-event", "", "socket.io event name. Defaults to 'progress'.")
	exportFlag := flagSet.Bool("export-canvas", false, "Write the loaded pipeline as a canvas JSON file under the data root.")
	exportPathFlag := flagSet.String("export-path", "", "Where -export-canvas writes, relative to the data root.")
	dryRunFlag := flagSet.Bool("dry-run", false, "Print the execution plan without running it.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: ExitUsage, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	path := ""
	if *pipelineFlag != "" {
		path = *pipelineFlag
	} else if *pFlag != "" {
		path = *pFlag
	} else if flagSet.NArg() > 0 {
		path = flagSet.Arg(0)
	}
	slog.Debug("Pipeline path determined.", "path", path)

	if path == "" {
		slog.Debug("No pipeline path provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: ExitUsage, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	if _, err := app.ParseLevel(logLevel); err != nil {
		return nil, false, &ExitError{Code: ExitUsage, Message: err.Error()}
	}

	if *pollFlag <= 0 {
		return nil, false, &ExitError{Code: ExitUsage, Message: fmt.Sprintf("invalid poll-interval %s: must be positive", *pollFlag)}
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(app.Config{
		PipelinePath:      path,
		StartNodeID:       *startFlag,
		DataRoot:          *dataRootFlag,
		ForgeBin:          *forgeBinFlag,
		PollInterval:      *pollFlag,
		TaskIDFormat:      strings.ToLower(*taskIDsFlag),
		LogFormat:         logFormat,
		LogLevel:          logLevel,
		HealthcheckPort:   *healthPortFlag,
		Progress:          strings.Split(*progressFlag, ","),
		SocketIOURL:       *socketURLFlag,
		SocketIONamespace: *socketNSFlag,
		SocketIOEvent:     *socketEventFlag,
		ExportCanvas:      *exportFlag || *exportPathFlag != "",
		ExportPath:        *exportPathFlag,
		DryRun:            *dryRunFlag,
	})
	if err != nil {
		return nil, false, &ExitError{Code: ExitUsage, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}

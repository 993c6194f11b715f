package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/specialistvlad/forgegrid/internal/app"
	"github.com/specialistvlad/forgegrid/internal/cli"
)

// main is the entrypoint for the forgegrid application.
func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	// The real main function handles errors and exit codes.
	if err := run(context.Background(), os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		exitErr := cli.ExitErrorFor(err)
		fmt.Fprintln(os.Stderr, exitErr.Message)
		os.Exit(exitErr.Code)
	}
}

// run encapsulates the main application logic for easier testing and error handling.
func run(ctx context.Context, outW, logW io.Writer, args []string) error {
	if err := cli.LoadDotEnv(".env"); err != nil {
		return &cli.ExitError{Code: cli.ExitUsage, Message: err.Error()}
	}

	appConfig, shouldExit, err := cli.Parse(args, outW)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	forgegrid := app.NewApp(outW, appConfig, app.WithLogWriter(logW))
	return forgegrid.Run(ctx)
}

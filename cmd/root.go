// Package cmd implements the pagemeta CLI using Cobra.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gaurav-prasanna/pagemeta/config"
	"github.com/gaurav-prasanna/pagemeta/logging"
)

// app carries what the persistent pre-run resolves for subcommands.
type app struct {
	configPath string
	verbose    bool

	cfg    config.Config
	logger *zap.Logger
}

// newRootCmd builds the command tree. Each call returns independent state.
func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "pagemeta",
		Short: "pagemeta extracts page metadata from HTML documents",
		Long: `pagemeta fetches a web page (or reads a local HTML file) and extracts its
title, headlines, description, keywords, Open Graph and Twitter Card
properties, and image URLs, then writes them as JSON, Markdown, or PDF.

Usage:
  pagemeta parse <url> [flags]
  pagemeta parse --file page.html --base-url https://example.com`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "Config file (default: ./.pagemeta.yaml or $XDG_CONFIG_HOME/pagemeta/config.yaml)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(newParseCmd(a))
	return root
}

// init loads configuration and builds the logger.
func (a *app) init(cmd *cobra.Command) error {
	cfg, file, err := config.Load(a.configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if a.verbose {
		cfg.LogLevel = "debug"
	}

	logger, err := logging.NewWithWriter(logging.Config{
		Level:       cfg.LogLevel,
		Development: cfg.Development,
	}, cmd.ErrOrStderr())
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}

	a.cfg = cfg
	a.logger = logger
	if file != "" {
		logger.Debug("loaded config", zap.String("file", file))
	}
	return nil
}

// Execute runs the root command and exits non-zero on failure.
// Fetch failures print their numeric code.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, formatError(err))
		stop()
		os.Exit(1)
	}
}

type codedError interface {
	error
	Code() int
}

func formatError(err error) string {
	var coded codedError
	if errors.As(err, &coded) {
		return fmt.Sprintf("Error [%d]: %v", coded.Code(), err)
	}
	return fmt.Sprintf("Error: %v", err)
}

package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"adriskmap/internal/app"
	"adriskmap/internal/config"
	"adriskmap/internal/logging"
)

type analyzeOptions struct {
	input              string
	output             string
	format             string
	maxDelegationEdges int
}

func newAnalyzeCmd(root *rootOptions) *cobra.Command {
	opts := &analyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze [snapshot]",
		Short: "Analyze a snapshot and write the risk report",
		Long: "Reads a snapshot from a file, - (stdin) or s3://bucket/key, prints the scores, " +
			"attack paths and recommendations, and saves the JSON report",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				if opts.input != "" && opts.input != args[0] {
					return errors.New("snapshot given both as argument and --input")
				}
				opts.input = args[0]
			}
			if opts.input == "" {
				return errors.New("no snapshot given: pass a path, - for stdin, or s3://bucket/key")
			}

			cfg, err := setup(cmd.Context(), root)
			if err != nil {
				return err
			}
			if err := applyAnalyzeFlags(cmd, cfg, opts); err != nil {
				return err
			}
			return runAnalyze(cmd, cfg, opts.input)
		},
	}

	cmd.Flags().StringVarP(&opts.input, "input", "i", "", "Snapshot path, - for stdin, or s3://bucket/key")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Report directory or s3://bucket/prefix (overrides config)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "Console format: table, json or both (overrides config)")
	cmd.Flags().IntVar(&opts.maxDelegationEdges, "max-delegation-edges", 0,
		"Cap on DelegatesTo graph edges per user, 0 for no cap (overrides config)")
	return cmd
}

// setup resolves config and configures logging.
func setup(ctx context.Context, root *rootOptions) (*config.Config, error) {
	cfg, err := app.ResolveConfig(ctx, root.configPath, os.Getenv)
	if err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}

	level, _ := logging.ParseLevel(cfg.Logging.Level)
	if root.debug {
		level = logging.LogLevelDebug
		cfg.Logging.Level = "debug"
	}
	logging.SetLogLevel(level)
	logging.SetStructured(cfg.Logging.Structured)
	return cfg, nil
}

func applyAnalyzeFlags(cmd *cobra.Command, cfg *config.Config, opts *analyzeOptions) error {
	flags := cmd.Flags()
	if flags.Changed("output") {
		cfg.Output.Directory = opts.output
	}
	if flags.Changed("format") {
		cfg.Output.Format = opts.format
	}
	if flags.Changed("max-delegation-edges") {
		cfg.Analysis.MaxDelegationEdgesPerUser = opts.maxDelegationEdges
	}
	return cfg.Validate()
}

func runAnalyze(cmd *cobra.Command, cfg *config.Config, input string) error {
	ctx := cmd.Context()

	auditor, err := app.NewAuditor(ctx, cfg, version, input, cfg.Output.Directory)
	if err != nil {
		return fmt.Errorf("error initializing auditor: %w", err)
	}

	report, err := auditor.Analyze(ctx, input)
	if err != nil {
		return err
	}

	location, err := auditor.Publish(ctx, report, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	if cfg.Output.Format != config.FormatJSON {
		fmt.Fprintf(cmd.OutOrStdout(), "\n✓ Saved report to: %s\n", location)
	}
	return nil
}

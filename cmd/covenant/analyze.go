package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/JaimeStill/covenant/internal/analyses"
	"github.com/JaimeStill/covenant/internal/config"
	"github.com/JaimeStill/covenant/internal/prompts"
)

type analyzeOptions struct {
	tone      string
	focus     []string
	threshold float64
	output    string
}

func newAnalyzeCmd() *cobra.Command {
	var opts analyzeOptions

	cmd := &cobra.Command{
		Use:   "analyze <file>",
		Short: "Classify a contract, run its domain agents, and print the report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, args[0], opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.tone, "tone", "", "report tone (defaults to analysis.tone)")
	f.StringSliceVar(&opts.focus, "focus", nil, "domains to display, e.g. legal,finance")
	f.Float64Var(&opts.threshold, "risk-threshold", 0, "risk threshold in [0, 1]")
	f.StringVarP(&opts.output, "output", "o", formatText, "output format: text, json, or yaml")

	return cmd
}

func (o analyzeOptions) command(cmd *cobra.Command) analyses.RunCommand {
	var rc analyses.RunCommand
	if cmd.Flags().Changed("tone") {
		rc.Tone = &o.tone
	}
	if cmd.Flags().Changed("focus") {
		rc.Focus = o.focus
	}
	if cmd.Flags().Changed("risk-threshold") {
		rc.RiskThreshold = &o.threshold
	}
	return rc
}

func runAnalyze(cmd *cobra.Command, path string, opts analyzeOptions) error {
	if err := validFormat(opts.output); err != nil {
		return err
	}

	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadLocal(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	settings, err := opts.command(cmd).Resolve(analyses.SettingsFromConfig(&cfg.Analysis))
	if err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	logger := cfg.Logging.NewLogger(cmd.ErrOrStderr())

	pipeline, err := analyses.BuildPipeline(&cfg.Agent, &cfg.Analysis, prompts.Defaults(), logger)
	if err != nil {
		return err
	}

	out, err := pipeline.Run(cmd.Context(), filepath.Base(path), data, settings)
	if err != nil {
		return err
	}

	out.Report = out.Report.Focus(settings.Focus)

	r := newRenderer(cmd.OutOrStdout())
	return r.Outcome(opts.output, filepath.Base(path), out)
}

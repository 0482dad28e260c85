package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JaimeStill/covenant/internal/clauses"
	"github.com/JaimeStill/covenant/internal/config"
	"github.com/JaimeStill/covenant/internal/loader"
	"github.com/JaimeStill/covenant/internal/prompts"
)

func newClausesCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "clauses <file>",
		Short: "Print the clause windows found in a contract",
		Long: "Extracts keyword windows for each clause category. Scanned PDF " +
			"pages are transcribed with the configured vision model when " +
			"analysis.transcribe_scanned_pages is set.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validFormat(output); err != nil {
				return err
			}

			configPath, _ := cmd.Flags().GetString("config")
			cfg, err := config.LoadLocal(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			l := loader.NewFromConfig(
				&cfg.Agent,
				&cfg.Analysis,
				prompts.Defaults(),
				cfg.Logging.NewLogger(cmd.ErrOrStderr()),
			)

			doc, err := l.LoadFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			return newRenderer(cmd.OutOrStdout()).Clauses(output, clauses.Extract(doc.Text))
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", formatText, "output format: text, json, or yaml")
	return cmd
}

// Command covenant analyzes contract files locally, without the database
// or blob storage the server depends on.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "covenant",
		Short:        "Multi-agent contract risk analysis",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "config.toml", "base configuration file")

	root.AddCommand(newAnalyzeCmd(), newClausesCmd())
	return root
}

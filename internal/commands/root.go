// Package commands implements the financeai command line.
package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mariamalualmeida/FinanceAI-3.0-sub001/internal/analysis"
	"github.com/mariamalualmeida/FinanceAI-3.0-sub001/internal/config"
	"github.com/mariamalualmeida/FinanceAI-3.0-sub001/internal/logger"
)

// ServiceFactory builds the analysis service for commands that run the pipeline.
// The returned cleanup is always safe to call.
type ServiceFactory func(ctx context.Context) (*analysis.Service, func(), error)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	return newRootCommand(buildFromConfig)
}

func newRootCommand(newService ServiceFactory) *cobra.Command {
	var logLevel string

	rootCmd := &cobra.Command{
		Use:   "financeai",
		Short: "Extract and score Brazilian bank statements",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			log := logger.NewWithLevel(logLevel)
			cmd.SetContext(logger.WithContext(cmd.Context(), log))
		},
	}

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level written to stderr")

	rootCmd.AddCommand(newAnalyzeCommand(newService))
	rootCmd.AddCommand(newBatchCommand(newService))
	rootCmd.AddCommand(newDetectCommand())
	rootCmd.AddCommand(newScoreCommand())

	return rootCmd
}

func buildFromConfig(ctx context.Context) (*analysis.Service, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, func() {}, fmt.Errorf("loading config: %w", err)
	}
	return analysis.Build(ctx, cfg)
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

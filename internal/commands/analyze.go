package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mariamalualmeida/FinanceAI-3.0-sub001/internal/analysis"
	"github.com/mariamalualmeida/FinanceAI-3.0-sub001/internal/bank"
	"github.com/mariamalualmeida/FinanceAI-3.0-sub001/internal/domain"
	"github.com/mariamalualmeida/FinanceAI-3.0-sub001/internal/gcs"
)

func newAnalyzeCommand(newService ServiceFactory) *cobra.Command {
	var userID string
	var bankHint string
	var validate bool

	cmd := &cobra.Command{
		Use:   "analyze <file|gs://bucket/object>",
		Short: "Extract, categorize and score one statement",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := analysisOptions(bankHint, validate)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			svc, cleanup, err := newService(ctx)
			if err != nil {
				return fmt.Errorf("building analysis service: %w", err)
			}
			defer cleanup()

			report, err := analyzeSource(ctx, svc, userID, args[0], opts)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), report)
		},
	}

	cmd.Flags().StringVar(&userID, "user", "cli", "user the analysis runs for")
	cmd.Flags().StringVar(&bankHint, "bank-hint", "", "issuer to assume when the document does not name one")
	cmd.Flags().BoolVar(&validate, "validate", false, "cross-validate the extraction with a second model")

	return cmd
}

func analysisOptions(bankHint string, validate bool) (analysis.Options, error) {
	opts := analysis.Options{Validate: validate}
	if bankHint != "" {
		b, ok := bank.FromName(bankHint)
		if !ok {
			return opts, fmt.Errorf("unknown bank %q", bankHint)
		}
		opts.BankHint = b.ID
	}
	return opts, nil
}

// analyzeSource runs a gs:// URI through the fetcher and anything else as a local path.
func analyzeSource(ctx context.Context, svc *analysis.Service, userID, source string, opts analysis.Options) (domain.AnalysisReport, error) {
	if gcs.IsURI(source) {
		return svc.AnalyzeURI(ctx, userID, source, opts)
	}
	doc, err := readLocal(source)
	if err != nil {
		return domain.AnalysisReport{}, err
	}
	return svc.Analyze(ctx, userID, doc, opts)
}

func readLocal(path string) (domain.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Document{}, fmt.Errorf("reading %s: %w", path, err)
	}
	return domain.Document{FileBytes: data, FileName: filepath.Base(path)}, nil
}

package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mariamalualmeida/FinanceAI-3.0-sub001/internal/categorizer"
	"github.com/mariamalualmeida/FinanceAI-3.0-sub001/internal/domain"
	"github.com/mariamalualmeida/FinanceAI-3.0-sub001/internal/metrics"
)

func newScoreCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "score <transactions.json>",
		Short: "Categorize a transaction list and compute its financial summary",
		Long: "Reads a JSON array of transactions (date, description, amount, direction),\n" +
			"categorizes them and prints the credit score, risk and category breakdown.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading %s: %w", args[0], err)
			}

			var txs []domain.Transaction
			if err := json.Unmarshal(data, &txs); err != nil {
				return fmt.Errorf("parsing transactions: %w", err)
			}
			for i, tx := range txs {
				if !tx.Direction.Valid() {
					return fmt.Errorf("transaction %d: invalid direction %q", i, tx.Direction)
				}
			}

			summary := metrics.Compute(categorizer.CategorizeAll(txs))
			return writeJSON(cmd.OutOrStdout(), summary)
		},
	}
}

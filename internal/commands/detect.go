package commands

import (
	"github.com/spf13/cobra"

	"github.com/mariamalualmeida/FinanceAI-3.0-sub001/internal/bank"
	"github.com/mariamalualmeida/FinanceAI-3.0-sub001/internal/document"
	"github.com/mariamalualmeida/FinanceAI-3.0-sub001/internal/domain"
	"github.com/mariamalualmeida/FinanceAI-3.0-sub001/internal/logger"
	"github.com/mariamalualmeida/FinanceAI-3.0-sub001/internal/parser"
)

func newDetectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "detect <file>",
		Short: "Identify the issuing bank of a statement",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := readLocal(args[0])
			if err != nil {
				return err
			}

			text, err := document.Text(doc)
			if err != nil {
				log := logger.FromContext(cmd.Context())
				log.Warn().Err(err).Str("file", doc.FileName).Msg("Could not read document text")
			}

			detected := bank.Detect(text, doc.FileName)
			parserName := "generic"
			if p := parser.DefaultRegistry().For(detected.ID); p.Bank() != domain.BankUnknown {
				parserName = string(p.Bank())
			}

			return writeJSON(cmd.OutOrStdout(), struct {
				Bank   domain.DetectedBank `json:"bank"`
				Kind   document.Kind       `json:"kind"`
				Parser string              `json:"parser"`
			}{
				Bank:   detected,
				Kind:   document.KindOf(doc),
				Parser: parserName,
			})
		},
	}
}

package extractor

import (
	"fmt"
	"strings"

	"github.com/mariamalualmeida/FinanceAI-3.0-sub001/internal/brfmt"
	"github.com/mariamalualmeida/FinanceAI-3.0-sub001/internal/domain"
)

// maxPromptText bounds the document text sent to the backend.
const maxPromptText = 60000

// buildPrompt renders the extraction contract for one document.
func buildPrompt(text, fileName string, hint domain.DetectedBank) string {
	var b strings.Builder

	b.WriteString("Você é um extrator de documentos financeiros brasileiros (extratos bancários, faturas de cartão, holerites).\n\n")
	b.WriteString("Tarefa:\n")
	b.WriteString("- Extraia TODAS as transações do documento abaixo.\n")
	b.WriteString("- Responda SOMENTE com um objeto JSON válido, sem comentários e sem texto extra.\n\n")

	b.WriteString("Formato obrigatório:\n")
	b.WriteString(`{
  "bank": string,
  "accountHolder": string,
  "period": {"start": "YYYY-MM-DD", "end": "YYYY-MM-DD"},
  "transactions": [
    {
      "date": "YYYY-MM-DD",
      "description": string,
      "amount": "1234.56",
      "direction": "credit" | "debit",
      "category": string,
      "subcategory": string,
      "runningBalance": "1234.56"
    }
  ],
  "summary": {"totalCredits": "0.00", "totalDebits": "0.00", "notes": string},
  "confidence": number between 0 and 1
}`)
	b.WriteString("\n\nRegras:\n")
	b.WriteString("- Todo item de \"transactions\" deve ter date, description, amount, direction e category.\n")
	b.WriteString("- \"amount\" é um decimal simples e positivo, com ponto decimal e sem símbolo de moeda nem separador de milhar.\n")
	b.WriteString("- O sinal fica em \"direction\": entradas são \"credit\", saídas são \"debit\".\n")
	fmt.Fprintf(&b, "- Campos ausentes no documento devem receber %q; nunca omita um campo.\n", brfmt.NotAvailable)
	b.WriteString("- Categorias sugeridas: alimentação, transporte, compras, transferência, saúde, entretenimento, educação, investimentos, tarifas bancárias, apostas, empréstimos, moradia, outros.\n")
	b.WriteString("- \"confidence\" é a sua certeza de que a extração está completa e correta.\n\n")

	if fileName != "" {
		fmt.Fprintf(&b, "Arquivo: %s\n", fileName)
	}
	if hint.Known() {
		fmt.Fprintf(&b, "Banco provável: %s\n", hint.DisplayName)
	}

	if len(text) > maxPromptText {
		text = text[:maxPromptText]
	}
	b.WriteString("\nDocumento:\n<<<\n")
	b.WriteString(text)
	b.WriteString("\n>>>\n")

	return b.String()
}

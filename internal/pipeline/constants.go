package pipeline

const (
	// DefaultGateThreshold is the backend confidence an extraction must exceed to be
	// accepted without falling back to the parsers.
	DefaultGateThreshold = 0.7

	// ParserConfidence is reported for every parser-produced result.
	ParserConfidence = 0.5

	// AccuracyWarning is attached to parser-produced results.
	AccuracyWarning = "Dados extraídos por parser determinístico; a precisão pode ser menor que a da extração inteligente. Revise os valores."
)

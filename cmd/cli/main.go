package main

import (
	"os"

	"github.com/mariamalualmeida/FinanceAI-3.0-sub001/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

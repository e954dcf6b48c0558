package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jacktools/jackc/internal/jackerr"
	"github.com/jacktools/jackc/internal/lexer"
)

var tokensCmd = &cobra.Command{
	Use:   "tokens <file>",
	Short: "Print the token stream for a single .jack file",
	Long: `tokens prints one "KIND literal" line per token, in source order,
without invoking the parser. It exists to debug the lexer in isolation
and to drive the tokenize/rejoin round-trip check.`,
	Args: cobra.ExactArgs(1),
	RunE: runTokens,
}

func runTokens(cmd *cobra.Command, args []string) error {
	path := args[0]
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: %v", jackerr.ErrIO, err)
	}
	defer f.Close()

	lex := lexer.New(f)
	out := cmd.OutOrStdout()
	for lex.Scan() {
		tok := lex.Token()
		fmt.Fprintf(out, "%s %s\n", tok.Kind, tok.Value)
	}
	return lex.Err()
}

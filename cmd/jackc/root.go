package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/jacktools/jackc/internal/jackerr"
)

var rootCmd = &cobra.Command{
	Use:   "jackc <path>",
	Short: "Compile Jack source to textual VM code",
	Long: `jackc is the front end and code generator of a Jack-to-VM compiler.

It tokenizes, resolves, and compiles .jack source in a single pass,
emitting textual stack-machine instructions for a downstream VM-to-
assembly translator. It never builds an intermediate AST.

Given a .jack file it compiles just that file. Given a directory it
compiles every .jack file directly inside it (not recursively). Output
for "foo.jack" is written alongside as "foo.vm".`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCompile(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(compileCmd)
	rootCmd.AddCommand(tokensCmd)
}

// exitCodeFor maps an error's taxonomy to a process exit code: 0 on
// success (never reached here), nonzero otherwise. All error classes
// currently map to the same nonzero code; distinguishing them is left to
// the printed message, not the exit status.
func exitCodeFor(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, jackerr.ErrIO):
		return 1
	case errors.Is(err, jackerr.ErrLexical), errors.Is(err, jackerr.ErrParse), errors.Is(err, jackerr.ErrResolution):
		return 1
	default:
		return 1
	}
}

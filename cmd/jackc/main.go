// Command jackc is the Jack compiler's driver: it discovers .jack source
// files and writes the VM code the core compiler emits for each one.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCodeFor(err))
	}
}

package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jacktools/jackc/internal/compiler"
	"github.com/jacktools/jackc/internal/jackerr"
)

var compileVerbose bool

var compileCmd = &cobra.Command{
	Use:   "compile <path>",
	Short: "Compile a .jack file or directory of .jack files to VM code",
	Args:  cobra.ExactArgs(1),
	RunE:  runCompile,
}

func init() {
	compileCmd.Flags().BoolVarP(&compileVerbose, "verbose", "v", false, "print each file as it is compiled")
}

func runCompile(cmd *cobra.Command, args []string) error {
	path := args[0]
	files, err := collectJackFiles(path)
	if err != nil {
		return err
	}

	var failures []error
	for _, file := range files {
		if compileVerbose {
			fmt.Fprintf(cmd.OutOrStdout(), "Compiling %s\n", file)
		}
		out, compileErr := compileOne(file)
		if compileErr != nil {
			failures = append(failures, fmt.Errorf("%s: %w", file, compileErr))
			continue
		}
		if compileVerbose {
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", out)
		}
	}

	if len(failures) > 0 {
		return fmt.Errorf("%d file(s) failed:\n%w", len(failures), errors.Join(failures...))
	}
	return nil
}

// collectJackFiles resolves path to the list of .jack files it names: the
// single file if path names one directly, or every .jack entry directly
// inside path if it names a directory (non-recursive — nested directories
// are never descended into).
func collectJackFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", jackerr.ErrIO, err)
	}

	if !info.IsDir() {
		if filepath.Ext(path) != ".jack" {
			return nil, fmt.Errorf("%w: %q is not a .jack file", jackerr.ErrIO, path)
		}
		return []string{path}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("%w: cannot read directory %q: %v", jackerr.ErrIO, path, err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".jack" {
			continue
		}
		files = append(files, filepath.Join(path, e.Name()))
	}
	return files, nil
}

// compileOne compiles a single file into an in-memory buffer and only
// writes the .vm output once compilation has fully succeeded, so a
// failing file never leaves a partial artifact behind.
func compileOne(path string) (outputPath string, err error) {
	in, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", jackerr.ErrIO, err)
	}
	defer in.Close()

	var buf bytes.Buffer
	if err := compiler.CompileFile(in, &buf); err != nil {
		return "", err
	}

	outputPath = outputPathFor(path)
	if err := os.WriteFile(outputPath, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("%w: %v", jackerr.ErrIO, err)
	}
	return outputPath, nil
}

func outputPathFor(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ".vm"
}

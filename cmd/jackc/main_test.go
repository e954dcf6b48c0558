package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeJackFile(t *testing.T, dir, name, src string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

func TestCompileSingleFileWritesVMAlongside(t *testing.T) {
	dir := t.TempDir()
	path := writeJackFile(t, dir, "A.jack", `class A { method void f() { return; } }`)

	var out bytes.Buffer
	compileVerbose = false
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{path})
	require.NoError(t, rootCmd.Execute())

	vmPath := filepath.Join(dir, "A.vm")
	contents, err := os.ReadFile(vmPath)
	require.NoError(t, err)

	want := "function A.f 0\npush argument 0\npop pointer 0\npush constant 0\nreturn\n"
	assert.Equal(t, want, string(contents))
}

func TestCompileDirectoryIsNonRecursive(t *testing.T) {
	dir := t.TempDir()
	writeJackFile(t, dir, "A.jack", `class A { function void f() { return; } }`)
	writeJackFile(t, dir, "B.jack", `class B { function void g() { return; } }`)

	nested := filepath.Join(dir, "nested")
	require.NoError(t, os.Mkdir(nested, 0o755))
	writeJackFile(t, nested, "C.jack", `class C { function void h() { return; } }`)

	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetArgs([]string{dir})
	require.NoError(t, rootCmd.Execute())

	_, err := os.Stat(filepath.Join(dir, "A.vm"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "B.vm"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(nested, "C.vm"))
	assert.True(t, os.IsNotExist(err), "nested directory must not be compiled")
}

func TestCompileFailureLeavesNoPartialOutput(t *testing.T) {
	dir := t.TempDir()
	path := writeJackFile(t, dir, "Bad.jack", `class Bad { method void f() { let ; } }`)

	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetArgs([]string{path})
	err := rootCmd.Execute()
	require.Error(t, err)

	_, statErr := os.Stat(filepath.Join(dir, "Bad.vm"))
	assert.True(t, os.IsNotExist(statErr), "a failing compile must not leave a .vm artifact")
}

func TestNonJackFileIsIOError(t *testing.T) {
	dir := t.TempDir()
	path := writeJackFile(t, dir, "notes.txt", "hello")

	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetArgs([]string{path})
	err := rootCmd.Execute()
	require.Error(t, err)
}

func TestTokensSubcommandPrintsOneTokenPerLine(t *testing.T) {
	dir := t.TempDir()
	path := writeJackFile(t, dir, "A.jack", `class A {}`)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"tokens", path})
	require.NoError(t, rootCmd.Execute())

	want := "KEYWORD class\nIDENTIFIER A\nSYMBOL {\nSYMBOL }\n"
	assert.Equal(t, want, out.String())
}

package symtab_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jacktools/jackc/internal/jackerr"
	"github.com/jacktools/jackc/internal/symtab"
)

func TestDefineThenLookup(t *testing.T) {
	tbl := symtab.New()
	tbl.Define("x", "int", symtab.Field)

	typ, ok := tbl.TypeOf("x")
	require.True(t, ok)
	assert.Equal(t, "int", typ)

	kind, ok := tbl.KindOf("x")
	require.True(t, ok)
	assert.Equal(t, symtab.Field, kind)

	idx, err := tbl.IndexOf("x")
	require.NoError(t, err)
	assert.Equal(t, 0, idx)
}

func TestIndexOfIsCountMinusOneImmediatelyAfterDefine(t *testing.T) {
	tbl := symtab.New()
	for i, name := range []string{"a", "b", "c"} {
		tbl.Define(name, "int", symtab.Local)
		idx, err := tbl.IndexOf(name)
		require.NoError(t, err)
		assert.Equal(t, i, idx)
		assert.Equal(t, tbl.Count(symtab.Local)-1, idx)
	}
}

func TestIndicesAreDenseWithinKind(t *testing.T) {
	tbl := symtab.New()
	tbl.Define("s1", "int", symtab.Static)
	tbl.Define("f1", "int", symtab.Field)
	tbl.Define("f2", "int", symtab.Field)
	tbl.Define("s2", "int", symtab.Static)

	assert.Equal(t, 2, tbl.Count(symtab.Static))
	assert.Equal(t, 2, tbl.Count(symtab.Field))

	idx, _ := tbl.IndexOf("f1")
	assert.Equal(t, 0, idx)
	idx, _ = tbl.IndexOf("f2")
	assert.Equal(t, 1, idx)
}

func TestSubroutineScopeShadowsClassScope(t *testing.T) {
	tbl := symtab.New()
	tbl.Define("x", "int", symtab.Field)
	tbl.Define("x", "boolean", symtab.Local)

	typ, ok := tbl.TypeOf("x")
	require.True(t, ok)
	assert.Equal(t, "boolean", typ)

	kind, _ := tbl.KindOf("x")
	assert.Equal(t, symtab.Local, kind)
}

func TestStartSubroutineClearsOnlySubroutineScope(t *testing.T) {
	tbl := symtab.New()
	tbl.Define("field1", "int", symtab.Field)
	tbl.Define("arg1", "int", symtab.Argument)

	tbl.StartSubroutine()

	_, ok := tbl.TypeOf("arg1")
	assert.False(t, ok, "subroutine scope should be cleared")

	typ, ok := tbl.TypeOf("field1")
	require.True(t, ok, "class scope must survive StartSubroutine")
	assert.Equal(t, "int", typ)
}

func TestUnresolvedNameIsNotAnErrorForTypeOrKind(t *testing.T) {
	tbl := symtab.New()
	_, ok := tbl.TypeOf("SomeClassOrFunction")
	assert.False(t, ok)
	_, ok = tbl.KindOf("SomeClassOrFunction")
	assert.False(t, ok)
}

func TestIndexOfUnknownNameIsResolutionError(t *testing.T) {
	tbl := symtab.New()
	_, err := tbl.IndexOf("nope")
	require.Error(t, err)
	assert.ErrorIs(t, err, jackerr.ErrResolution)
}

func TestCountIsPerScope(t *testing.T) {
	tbl := symtab.New()
	tbl.Define("local1", "int", symtab.Local)
	tbl.StartSubroutine()
	assert.Equal(t, 0, tbl.Count(symtab.Local))
}

// Package jackerr defines the error taxonomy shared by every stage of the
// compiler: lexing, symbol resolution, parsing and driver I/O. Every error
// surfaced by the compiler wraps one of the sentinels below so callers can
// classify a failure with errors.Is without parsing message text.
package jackerr

import "errors"

var (
	// ErrIO marks a failure to open, read or write a file or directory.
	ErrIO = errors.New("io error")
	// ErrLexical marks a source file that could not be tokenized: an
	// unterminated string or block comment, or a byte that cannot start
	// any token.
	ErrLexical = errors.New("lexical error")
	// ErrParse marks a token stream that does not match the grammar:
	// expect() saw an unexpected terminal, or the stream ran out mid
	// production.
	ErrParse = errors.New("parse error")
	// ErrResolution marks an identifier used in a context where it must
	// resolve to a symbol table entry (array base, let target, method
	// receiver) but does not.
	ErrResolution = errors.New("resolution error")
)

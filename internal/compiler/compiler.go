// Package compiler implements the single-pass, recursive-descent Jack
// compiler: it walks the token stream produced by internal/lexer, resolves
// identifiers against internal/symtab, and emits VM instructions through
// internal/vmcode as it recognizes each grammar production. No
// intermediate AST is built.
//
// Parse/lexical/resolution failures are reported by panicking with a
// compileError and recovering once, in Compile — the same "escape deep
// recursion via a typed panic" idiom the standard library's own
// recursive-descent parsers (go/parser, text/template/parse) use, so a
// mismatch ten calls deep doesn't need to be threaded back up by hand
// through every intervening return value.
package compiler

import (
	"bytes"
	"fmt"
	"io"
	"strconv"

	"github.com/jacktools/jackc/internal/jackerr"
	"github.com/jacktools/jackc/internal/lexer"
	"github.com/jacktools/jackc/internal/symtab"
	"github.com/jacktools/jackc/internal/token"
	"github.com/jacktools/jackc/internal/vmcode"
)

// tokenSource is the subset of *lexer.Lexer the compiler depends on.
type tokenSource interface {
	Scan() bool
	Token() token.Token
	Err() error
}

// Compiler drives one class's worth of compilation. A Compiler is used
// for exactly one source file: label counters, the symbol table, and the
// current token are all instance state, never shared across files.
type Compiler struct {
	tokens tokenSource
	out    *vmcode.Writer
	syms   *symtab.Table

	className    string
	cur          token.Token
	ifCounter    int
	whileCounter int
}

// New builds a Compiler that reads tokens from tokens and emits VM code
// to out.
func New(tokens tokenSource, out *vmcode.Writer) *Compiler {
	return &Compiler{tokens: tokens, out: out, syms: symtab.New()}
}

// CompileFile tokenizes r with a fresh lexer and writes the resulting VM
// code to w, using a fresh Compiler and symbol table. It is the
// convenience entry point the driver and tests use. Output is buffered and
// written to w only once the whole file has compiled, so a failed compile
// writes nothing.
func CompileFile(r io.Reader, w io.Writer) error {
	var buf bytes.Buffer
	c := New(lexer.New(r), vmcode.New(&buf))
	if err := c.Compile(); err != nil {
		return err
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("%w: %v", jackerr.ErrIO, err)
	}
	return nil
}

type compileError struct{ err error }

func (c *Compiler) fail(sentinel error, format string, args ...any) {
	panic(compileError{fmt.Errorf("%w: "+format, append([]any{sentinel}, args...)...)})
}

// Compile parses and compiles a single class, returning the first
// lexical, parse, or resolution error encountered.
func (c *Compiler) Compile() (err error) {
	defer func() {
		if r := recover(); r != nil {
			ce, ok := r.(compileError)
			if !ok {
				panic(r)
			}
			err = ce.err
		}
	}()

	c.advance()
	c.compileClass()
	return nil
}

func (c *Compiler) advance() {
	if !c.tokens.Scan() {
		if err := c.tokens.Err(); err != nil {
			panic(compileError{err})
		}
		return
	}
	c.cur = c.tokens.Token()
}

// expect consumes the current token if it matches literal, for every
// literal given in order, advancing past each. It panics with a
// jackerr.ErrParse on the first mismatch.
func (c *Compiler) expect(literals ...string) {
	for _, lit := range literals {
		if !c.cur.Is(lit) {
			c.fail(jackerr.ErrParse, "expected %q, got %q", lit, c.cur.Value)
		}
		c.advance()
	}
}

func (c *Compiler) expectIdentifier() string {
	if c.cur.Kind != token.Identifier {
		c.fail(jackerr.ErrParse, "expected identifier, got %q", c.cur.Value)
	}
	name := c.cur.Value
	c.advance()
	return name
}

// expectType consumes a primitive type keyword or a class-name
// identifier and returns its text.
func (c *Compiler) expectType() string {
	if c.cur.IsAny("int", "char", "boolean") {
		t := c.cur.Value
		c.advance()
		return t
	}
	return c.expectIdentifier()
}

// ----------------------------------------------------------------------
// class ::= 'class' name '{' classVarDec* subroutineDec* '}'

func (c *Compiler) compileClass() {
	c.expect("class")
	c.className = c.expectIdentifier()
	c.expect("{")

	for c.cur.IsAny("static", "field") {
		c.compileClassVarDec()
	}
	for c.cur.IsAny("constructor", "function", "method") {
		c.compileSubroutineDec()
	}

	c.expect("}")
}

// classVarDec ::= ('static'|'field') type name (',' name)* ';'
func (c *Compiler) compileClassVarDec() {
	kind := symtab.Static
	if c.cur.Is("field") {
		kind = symtab.Field
	}
	c.advance()
	c.compileVarSequence(kind)
}

// compileVarSequence compiles `type name (',' name)* ';'`, declaring each
// name with kind, and returns the number of names declared.
func (c *Compiler) compileVarSequence(kind symtab.Kind) int {
	typ := c.expectType()
	n := 0
	for {
		name := c.expectIdentifier()
		c.syms.Define(name, typ, kind)
		n++
		if !c.cur.Is(",") {
			break
		}
		c.advance()
	}
	c.expect(";")
	return n
}

// subroutineDec ::= ('constructor'|'function'|'method') (type|'void') name
//                   '(' parameterList ')' subroutineBody
func (c *Compiler) compileSubroutineDec() {
	c.syms.StartSubroutine()
	c.ifCounter = 0
	c.whileCounter = 0

	kind := c.cur.Value
	c.advance()

	if kind == "method" {
		c.syms.Define("this", c.className, symtab.Argument)
	}

	if c.cur.Is("void") {
		c.advance()
	} else {
		c.expectType()
	}

	name := c.expectIdentifier()

	c.expect("(")
	if !c.cur.Is(")") {
		c.compileParameterList()
	}
	c.expect(")")

	c.expect("{")

	// varDecs are parsed (and declared) before the function header is
	// emitted, so nLocals reflects the true local count. Emitting the
	// header right after the parameter list would always report 0
	// locals, since no varDec has been seen yet.
	nLocals := 0
	for c.cur.Is("var") {
		c.advance()
		nLocals += c.compileVarSequence(symtab.Local)
	}

	c.out.Function(c.className+"."+name, nLocals)

	switch kind {
	case "constructor":
		c.out.Push(vmcode.Constant, c.syms.Count(symtab.Field))
		c.out.Call("Memory.alloc", 1)
		c.out.Pop(vmcode.Pointer, 0)
	case "method":
		c.out.Push(vmcode.Argument, 0)
		c.out.Pop(vmcode.Pointer, 0)
	}

	c.compileStatements()
	c.expect("}")
}

// parameterList ::= (type name (',' type name)*)?
func (c *Compiler) compileParameterList() {
	for {
		typ := c.expectType()
		name := c.expectIdentifier()
		c.syms.Define(name, typ, symtab.Argument)
		if !c.cur.Is(",") {
			break
		}
		c.advance()
	}
}

// statements ::= (letStatement|ifStatement|whileStatement|doStatement|returnStatement)*
func (c *Compiler) compileStatements() {
	for {
		switch {
		case c.cur.Is("let"):
			c.compileLet()
		case c.cur.Is("if"):
			c.compileIf()
		case c.cur.Is("while"):
			c.compileWhile()
		case c.cur.Is("do"):
			c.compileDo()
		case c.cur.Is("return"):
			c.compileReturn()
		default:
			return
		}
	}
}

// letStatement ::= 'let' name ('[' expression ']')? '=' expression ';'
func (c *Compiler) compileLet() {
	c.expect("let")
	name := c.expectIdentifier()

	if c.cur.Is("[") {
		c.advance()
		seg, idx := c.resolveVariable(name)
		c.out.Push(seg, idx)
		c.compileExpression()
		c.out.Op(vmcode.Add)
		c.expect("]")

		c.expect("=")
		c.compileExpression()
		c.expect(";")

		// The address computed above is on the stack; the RHS value is
		// on top of that. Stash the RHS in temp, point THAT at the
		// address, then store through THAT.
		c.out.Pop(vmcode.Temp, 0)
		c.out.Pop(vmcode.Pointer, 1)
		c.out.Push(vmcode.Temp, 0)
		c.out.Pop(vmcode.That, 0)
		return
	}

	c.expect("=")
	c.compileExpression()
	c.expect(";")

	seg, idx := c.resolveVariable(name)
	c.out.Pop(seg, idx)
}

// ifStatement ::= 'if' '(' expression ')' '{' statements '}' ('else' '{' statements '}')?
func (c *Compiler) compileIf() {
	c.expect("if", "(")
	c.compileExpression()
	c.expect(")")

	// Snapshot the label id before recursing so a nested if inside the
	// then/else block gets its own, independent suffix.
	id := c.ifCounter
	c.ifCounter++

	trueLabel := fmt.Sprintf("IF_TRUE%d", id)
	falseLabel := fmt.Sprintf("IF_FALSE%d", id)
	endLabel := fmt.Sprintf("IF_END%d", id)

	c.out.IfGoto(trueLabel)
	c.out.Goto(falseLabel)
	c.out.Label(trueLabel)

	c.expect("{")
	c.compileStatements()
	c.expect("}")

	hasElse := c.cur.Is("else")
	if hasElse {
		c.out.Goto(endLabel)
	}
	c.out.Label(falseLabel)

	if hasElse {
		c.expect("else", "{")
		c.compileStatements()
		c.expect("}")
		c.out.Label(endLabel)
	}
}

// whileStatement ::= 'while' '(' expression ')' '{' statements '}'
func (c *Compiler) compileWhile() {
	c.expect("while", "(")

	id := c.whileCounter
	c.whileCounter++

	expLabel := fmt.Sprintf("WHILE_EXP%d", id)
	endLabel := fmt.Sprintf("WHILE_END%d", id)

	c.out.Label(expLabel)
	c.compileExpression()
	c.out.Op(vmcode.Not)
	c.out.IfGoto(endLabel)

	c.expect(")", "{")
	c.compileStatements()
	c.expect("}")

	c.out.Goto(expLabel)
	c.out.Label(endLabel)
}

// doStatement ::= 'do' subroutineCall ';'
func (c *Compiler) compileDo() {
	c.expect("do")
	name := c.expectIdentifier()
	c.compileSubroutineCall(name)
	c.out.Pop(vmcode.Temp, 0)
	c.expect(";")
}

// returnStatement ::= 'return' expression? ';'
func (c *Compiler) compileReturn() {
	c.expect("return")
	if c.cur.Is(";") {
		c.out.Push(vmcode.Constant, 0)
	} else {
		// Compile the return expression as an ordinary expression and
		// trust its semantics — in particular, a bare `return this;`
		// must not re-push `this` a second time after compileExpression
		// has already pushed it once.
		c.compileExpression()
	}
	c.out.Return()
	c.expect(";")
}

// expression ::= term (op term)*
func (c *Compiler) compileExpression() {
	c.compileTerm()
	for isBinaryOp(c.cur) {
		op := binaryOp(c.cur.Value)
		c.advance()
		c.compileTerm()
		c.out.Op(op)
	}
}

// expressionList ::= (expression (',' expression)*)?
func (c *Compiler) compileExpressionList() int {
	if c.cur.Is(")") {
		return 0
	}
	n := 1
	c.compileExpression()
	for c.cur.Is(",") {
		c.advance()
		c.compileExpression()
		n++
	}
	return n
}

// term ::= intConst | stringConst | keywordConst | name | name '[' expression ']'
//        | subroutineCall | '(' expression ')' | unaryOp term
func (c *Compiler) compileTerm() {
	switch {
	case c.cur.Kind == token.IntConst:
		n, err := strconv.Atoi(c.cur.Value)
		if err != nil {
			c.fail(jackerr.ErrLexical, "invalid integer constant %q", c.cur.Value)
		}
		c.out.Push(vmcode.Constant, n)
		c.advance()
	case c.cur.Kind == token.StringConst:
		c.out.StringConstant(c.cur.Value)
		c.advance()
	case c.cur.IsAny("true", "false", "null", "this"):
		c.compileKeywordConstant()
	case c.cur.Is("("):
		c.advance()
		c.compileExpression()
		c.expect(")")
	case isUnaryOp(c.cur):
		op := unaryOp(c.cur.Value)
		c.advance()
		c.compileTerm()
		c.out.Op(op)
	case c.cur.Kind == token.Identifier:
		c.compileIdentifierTerm()
	default:
		c.fail(jackerr.ErrParse, "unexpected token %q", c.cur.Value)
	}
}

func (c *Compiler) compileKeywordConstant() {
	switch c.cur.Value {
	case "true":
		c.out.Push(vmcode.Constant, 0)
		c.out.Op(vmcode.Not)
	case "false", "null":
		c.out.Push(vmcode.Constant, 0)
	case "this":
		c.out.Push(vmcode.Pointer, 0)
	}
	c.advance()
}

// compileIdentifierTerm handles the three term forms that start with an
// identifier: a bare variable reference, an array subscript, and a
// subroutine call.
func (c *Compiler) compileIdentifierTerm() {
	name := c.expectIdentifier()

	switch {
	case c.cur.Is("["):
		c.advance()
		seg, idx := c.resolveVariable(name)
		c.out.Push(seg, idx)
		c.compileExpression()
		c.out.Op(vmcode.Add)
		c.expect("]")
		c.out.Pop(vmcode.Pointer, 1)
		c.out.Push(vmcode.That, 0)
	case c.cur.IsAny("(", "."):
		c.compileSubroutineCall(name)
	default:
		seg, idx := c.resolveVariable(name)
		c.out.Push(seg, idx)
	}
}

// compileSubroutineCall compiles the two call forms:
//
//	name '(' expressionList ')'             — always a method of this class
//	qualifier '.' name '(' expressionList ')' — object method, or class/OS call
func (c *Compiler) compileSubroutineCall(name string) {
	if c.cur.Is(".") {
		c.advance()
		method := c.expectIdentifier()

		target := name + "." + method
		nArgs := 0
		if typ, ok := c.syms.TypeOf(name); ok && !isPrimitiveType(typ) {
			seg, idx := c.resolveVariable(name)
			c.out.Push(seg, idx)
			target = typ + "." + method
			nArgs = 1
		}

		c.expect("(")
		nArgs += c.compileExpressionList()
		c.expect(")")
		c.out.Call(target, nArgs)
		return
	}

	c.expect("(")
	c.out.Push(vmcode.Pointer, 0)
	nArgs := 1 + c.compileExpressionList()
	c.expect(")")
	c.out.Call(c.className+"."+name, nArgs)
}

func (c *Compiler) resolveVariable(name string) (vmcode.Segment, int) {
	kind, ok := c.syms.KindOf(name)
	if !ok {
		c.fail(jackerr.ErrResolution, "undeclared variable %q", name)
	}
	idx, err := c.syms.IndexOf(name)
	if err != nil {
		panic(compileError{err})
	}
	return segmentFor(kind), idx
}

func segmentFor(kind symtab.Kind) vmcode.Segment {
	switch kind {
	case symtab.Static:
		return vmcode.Static
	case symtab.Argument:
		return vmcode.Argument
	case symtab.Local:
		return vmcode.Local
	case symtab.Field:
		return vmcode.This
	default:
		return ""
	}
}

func isPrimitiveType(t string) bool {
	return t == "int" || t == "char" || t == "boolean"
}

func isBinaryOp(t token.Token) bool {
	return t.Kind == token.Symbol && t.IsAny("+", "-", "*", "/", "&", "|", "<", ">", "=")
}

func isUnaryOp(t token.Token) bool {
	return t.Kind == token.Symbol && t.IsAny("-", "~")
}

func binaryOp(sym string) vmcode.Op {
	switch sym {
	case "+":
		return vmcode.Add
	case "-":
		return vmcode.Sub
	case "*":
		return vmcode.Mul
	case "/":
		return vmcode.Div
	case "&":
		return vmcode.And
	case "|":
		return vmcode.Or
	case "<":
		return vmcode.Lt
	case ">":
		return vmcode.Gt
	case "=":
		return vmcode.Eq
	default:
		panic(compileError{fmt.Errorf("%w: not a binary operator %q", jackerr.ErrParse, sym)})
	}
}

func unaryOp(sym string) vmcode.Op {
	if sym == "-" {
		return vmcode.Neg
	}
	return vmcode.Not
}

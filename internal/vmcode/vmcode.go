// Package vmcode formats and accumulates textual VM instructions. It is a
// pure sink: it knows nothing about Jack grammar, only about the target
// stack-machine's instruction set.
package vmcode

import (
	"fmt"
	"io"
)

// Segment names a VM memory segment.
type Segment string

const (
	Constant Segment = "constant"
	Local    Segment = "local"
	Argument Segment = "argument"
	Static   Segment = "static"
	This     Segment = "this"
	That     Segment = "that"
	Pointer  Segment = "pointer"
	Temp     Segment = "temp"
)

// Op identifies a source-level operator to be lowered by Writer.Op. Mul and
// Div are not real VM opcodes — they are lowered to OS calls.
type Op int

const (
	Add Op = iota
	Sub
	Neg
	Eq
	Gt
	Lt
	And
	Or
	Not
	Mul
	Div
)

var opMnemonic = map[Op]string{
	Add: "add", Sub: "sub", Neg: "neg", Eq: "eq", Gt: "gt", Lt: "lt",
	And: "and", Or: "or", Not: "not",
}

// Writer accumulates VM instruction lines against an io.Writer.
type Writer struct {
	out io.Writer
}

// New wraps w as a VM instruction sink.
func New(w io.Writer) *Writer {
	return &Writer{out: w}
}

func (w *Writer) line(s string) {
	io.WriteString(w.out, s)
	io.WriteString(w.out, "\n")
}

// Push emits `push <segment> <index>`.
func (w *Writer) Push(seg Segment, index int) {
	w.line(fmt.Sprintf("push %s %d", seg, index))
}

// Pop emits `pop <segment> <index>`.
func (w *Writer) Pop(seg Segment, index int) {
	w.line(fmt.Sprintf("pop %s %d", seg, index))
}

// Op emits the arithmetic/logical opcode for op, translating Mul and Div
// into the Math.multiply/Math.divide calls — there is no multiply or
// divide opcode in the target instruction set.
func (w *Writer) Op(op Op) {
	switch op {
	case Mul:
		w.Call("Math.multiply", 2)
	case Div:
		w.Call("Math.divide", 2)
	default:
		w.line(opMnemonic[op])
	}
}

// Label emits `label <name>`.
func (w *Writer) Label(name string) {
	w.line("label " + name)
}

// Goto emits `goto <name>`.
func (w *Writer) Goto(name string) {
	w.line("goto " + name)
}

// IfGoto emits `if-goto <name>`.
func (w *Writer) IfGoto(name string) {
	w.line("if-goto " + name)
}

// Call emits `call <name> <nArgs>`.
func (w *Writer) Call(name string, nArgs int) {
	w.line(fmt.Sprintf("call %s %d", name, nArgs))
}

// Function emits `function <name> <nLocals>`.
func (w *Writer) Function(name string, nLocals int) {
	w.line(fmt.Sprintf("function %s %d", name, nLocals))
}

// Return emits `return`.
func (w *Writer) Return() {
	w.line("return")
}

// StringConstant emits the call sequence that builds a String object for
// the given (already unquoted) constant: allocate a string of the right
// length, then append one character at a time. String.appendChar returns
// the string itself, so the final call leaves exactly one value — the
// finished string — on the stack; no extra bookkeeping is required.
func (w *Writer) StringConstant(s string) {
	w.Push(Constant, len(s))
	w.Call("String.new", 1)
	for _, ch := range s {
		w.Push(Constant, int(ch))
		w.Call("String.appendChar", 2)
	}
}

package object

import (
	"bytes"
	"fmt"
	"lox/internal/token"
)

// RuntimeError is raised when an operation's precondition fails. It is a Go
// error, never an Object, and it unwinds to the outermost interpret loop.
type RuntimeError struct {
	Token      token.Token
	Message    string
	StackTrace []StackFrame // innermost call first
}

type StackFrame struct {
	Function string
	Line     int
}

func NewRuntimeError(tok token.Token, format string, args ...interface{}) *RuntimeError {
	return &RuntimeError{Token: tok, Message: fmt.Sprintf(format, args...)}
}

func (re *RuntimeError) Error() string { return re.Message }
func (re *RuntimeError) Line() int     { return re.Token.Line }

// AddFrame records a call the error unwound through.
func (re *RuntimeError) AddFrame(function string, line int) {
	re.StackTrace = append(re.StackTrace, StackFrame{Function: function, Line: line})
}

// Trace renders the message followed by the calls it unwound through.
func (re *RuntimeError) Trace() string {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "RuntimeError: %s\n  at [line %d]", re.Message, re.Token.Line)
	for _, frame := range re.StackTrace {
		fmt.Fprintf(&buf, "\n  in %s() called from [line %d]", frame.Function, frame.Line)
	}

	return buf.String()
}

package diag

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"lox/internal/token"
	"lox/internal/util"
	"os"
)

// Reporter collects diagnostics from every pass. The core never exits the
// process; callers inspect the flags and decide.
type Reporter interface {
	Report(line int, where, message string)
	ReportRuntimeError(err error)
	HadError() bool
	HadRuntimeError() bool
	Reset()
}

// lined is satisfied by runtime errors that know their source line.
type lined interface {
	Line() int
}

type traced interface {
	Trace() string
}

type ConsoleReporter struct {
	out             io.Writer
	src             string
	hadError        bool
	hadRuntimeError bool
}

func NewConsoleReporter(out io.Writer) *ConsoleReporter {
	if out == nil {
		out = os.Stderr
	}
	return &ConsoleReporter{out: out}
}

// SetSource enables source context lines under static errors.
func (r *ConsoleReporter) SetSource(src string) {
	r.src = src
}

func (r *ConsoleReporter) Report(line int, where, message string) {
	slog.Debug("static error",
		slog.Int("line", line),
		slog.String("where", where),
		slog.String("message", message))

	fmt.Fprintf(r.out, "[line %d] Error%s: %s\n", line, where, message)
	if r.src != "" {
		if ctx := util.GetContextLines(r.src, line); ctx != "" {
			io.WriteString(r.out, ctx)
		}
	}
	r.hadError = true
}

func (r *ConsoleReporter) ReportRuntimeError(err error) {
	var te traced
	if errors.As(err, &te) {
		slog.Debug("runtime error", slog.String("trace", te.Trace()))
	} else {
		slog.Debug("runtime error", slog.Any("error", err))
	}

	var le lined
	if errors.As(err, &le) {
		fmt.Fprintf(r.out, "%s\n[line %d]\n", err.Error(), le.Line())
	} else {
		fmt.Fprintln(r.out, err.Error())
	}
	r.hadRuntimeError = true
}

func (r *ConsoleReporter) HadError() bool        { return r.hadError }
func (r *ConsoleReporter) HadRuntimeError() bool { return r.hadRuntimeError }

func (r *ConsoleReporter) Reset() {
	r.hadError = false
	r.hadRuntimeError = false
}

// ReportAt reports a static error located at tok.
func ReportAt(r Reporter, tok token.Token, message string) {
	r.Report(tok.Line, Where(tok), message)
}

func Where(tok token.Token) string {
	if tok.Type == token.EOF {
		return " at end"
	}
	return fmt.Sprintf(" at '%s'", tok.Lexeme)
}

package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"lox/internal/diag"
	"lox/internal/evaluator"
	"lox/internal/history"
	"lox/internal/lexer"
	"lox/internal/parser"
	"lox/internal/resolver"
	"lox/internal/util"
	"os"
	"strings"
)

// Exit codes follow sysexits.h.
const (
	ExitOK       = 0
	ExitUsage    = 64
	ExitDataErr  = 65
	ExitNoInput  = 66
	ExitSoftware = 70
)

type Options struct {
	Prompt    string
	DebugAST  bool
	ASTFormat string

	// History is optional; a nil store disables recording.
	History *history.Store
}

// Session is one interpreter plus its reporter. Globals defined by one Run
// are visible to the next.
type Session struct {
	interp   *evaluator.Evaluator
	reporter *diag.ConsoleReporter
	errOut   io.Writer
	opts     Options
}

// NewSession sends program output to out and diagnostics to errOut.
func NewSession(out, errOut io.Writer, opts Options) *Session {
	if errOut == nil {
		errOut = os.Stderr
	}
	reporter := diag.NewConsoleReporter(errOut)
	return &Session{
		interp:   evaluator.New(out, reporter),
		reporter: reporter,
		errOut:   errOut,
		opts:     opts,
	}
}

// Run scans, parses, resolves and executes src as one program. Execution is
// skipped when any static error was reported.
func (s *Session) Run(src string) history.Outcome {
	s.reporter.SetSource(src)

	program := parser.New(lexer.New(src, s.reporter), s.reporter).ParseProgram()
	if s.reporter.HadError() {
		return history.OutcomeSyntaxError
	}

	resolver.New(s.reporter).ResolveProgram(program)
	if s.reporter.HadError() {
		return history.OutcomeStaticError
	}

	if s.opts.DebugAST {
		dump, err := parser.RenderAST(program, s.opts.ASTFormat)
		if err != nil {
			fmt.Fprintf(s.errOut, "failed to render AST: %v\n", err)
		} else {
			io.WriteString(s.errOut, dump)
		}
	}

	if err := s.interp.Interpret(program); err != nil {
		return history.OutcomeRuntimeError
	}
	return history.OutcomeOK
}

// Reset clears the error flags so the next line starts clean.
func (s *Session) Reset() {
	s.reporter.Reset()
}

// ExitCode maps a program outcome to the process exit status.
func ExitCode(outcome history.Outcome) int {
	switch outcome {
	case history.OutcomeSyntaxError, history.OutcomeStaticError:
		return ExitDataErr
	case history.OutcomeRuntimeError:
		return ExitSoftware
	}
	return ExitOK
}

// RunFile executes the script at path and returns the exit status.
func RunFile(path string, out, errOut io.Writer, opts Options) int {
	src, err := os.ReadFile(path)
	if err != nil {
		if errOut == nil {
			errOut = os.Stderr
		}
		fmt.Fprintf(errOut, "Could not read file '%s': %v\n", path, err)
		return ExitNoInput
	}

	slog.Debug("running script", slog.String("path", path), slog.Int("bytes", len(src)))
	return ExitCode(NewSession(out, errOut, opts).Run(string(src)))
}

// Start reads one line at a time and runs each as a program against a
// single session until in is exhausted.
func Start(ctx context.Context, in io.Reader, out, errOut io.Writer, opts Options) {
	prompt := opts.Prompt
	if prompt == "" {
		prompt = util.DefaultPrompt
	}

	session := NewSession(out, errOut, opts)
	// lines are read whole, however long
	reader := bufio.NewReader(in)

	for {
		io.WriteString(out, prompt)
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			if !errors.Is(err, io.EOF) {
				slog.Warn("failed to read input", slog.Any("error", err))
			}
			return
		}

		line = strings.TrimRight(line, "\r\n")
		if strings.TrimSpace(line) == "" {
			continue
		}

		outcome := session.Run(line)
		session.Reset()

		if opts.History != nil {
			if err := opts.History.Record(ctx, history.Entry{Source: line, Outcome: outcome}); err != nil {
				slog.Warn("history not recorded", slog.Any("error", err))
			}
		}
	}
}

// PrintHistory writes the last n entries of store to out, oldest first.
func PrintHistory(ctx context.Context, store *history.Store, n int, out io.Writer) error {
	entries, err := store.Recent(ctx, n)
	if err != nil {
		return err
	}
	for _, e := range entries {
		fmt.Fprintf(out, "%5d  %s  %-13s  %s\n",
			e.ID, e.EnteredAt.Format("2006-01-02 15:04:05"), e.Outcome, e.Source)
	}
	return nil
}

package parser

import (
	"bytes"
	"fmt"
	"lox/internal/ast"
	"lox/internal/diag"
	"lox/internal/lexer"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(input string) (*ast.Program, *Parser, *diag.ConsoleReporter) {
	var out bytes.Buffer
	r := diag.NewConsoleReporter(&out)
	p := New(lexer.New(input, r), r)
	return p.ParseProgram(), p, r
}

func parseOK(t *testing.T, input string) *ast.Program {
	t.Helper()
	program, p, r := parse(input)
	require.Empty(t, p.Errors(), input)
	require.False(t, r.HadError(), input)
	return program
}

func TestExpressionPrecedence(t *testing.T) {
	cases := []struct {
		input  string
		expect string
	}{
		{"1 + 2 * 3;", "(; (+ 1 (* 2 3)))"},
		{"(1 + 2) * 3;", "(; (* (group (+ 1 2)) 3))"},
		{"-a * b;", "(; (* (- a) b))"},
		{"!!true;", "(; (! (! true)))"},
		{"a - b - c;", "(; (- (- a b) c))"},
		{"a / b * c;", "(; (* (/ a b) c))"},
		{"1 < 2 == 3 >= 4;", "(; (== (< 1 2) (>= 3 4)))"},
		{"a != b;", "(; (!= a b))"},
		{"a or b and c;", "(; (or a (and b c)))"},
		{"a and b or c;", "(; (or (and a b) c))"},
		{"a = b = c;", "(; (= a (= b c)))"},
		{"a = 1 + 2;", "(; (= a (+ 1 2)))"},
		{"obj.field.other = 3;", "(; (= (. (. obj field) other) 3))"},
		{"f(1, 2)(3);", "(; (call (call f 1 2) 3))"},
		{"f();", "(; (call f))"},
		{"a.b(c).d;", "(; (. (call (. a b) c) d))"},
		{"this.x;", "(; (. this x))"},
		{"super.init(1);", "(; (call (super init) 1))"},
		{"nil; true; false; \"str\"; 12.5;", "(; nil)\n(; true)\n(; false)\n(; str)\n(; 12.5)"},
		{"f(a = 1);", "(; (call f (= a 1)))"},
	}

	for _, c := range cases {
		program := parseOK(t, c.input)
		assert.Equal(t, c.expect, program.String(), c.input)
	}
}

func TestStatements(t *testing.T) {
	cases := []struct {
		input  string
		expect string
	}{
		{"print 1;", "(print 1)"},
		{"var a;", "(var a)"},
		{"var a = 1;", "(var a 1)"},
		{"{ var a = 1; print a; }", "(block (var a 1) (print a))"},
		{"{}", "(block)"},
		{"if (a) print 1;", "(if a (print 1))"},
		{"if (a) print 1; else print 2;", "(if a (print 1) (print 2))"},
		{"if (a) if (b) print 1; else print 2;", "(if a (if b (print 1) (print 2)))"},
		{"while (a) a = a - 1;", "(while a (; (= a (- a 1))))"},
		{"fun f() {}", "(fun f ())"},
		{"fun add(a, b) { return a + b; }", "(fun add (a b) (return (+ a b)))"},
		{"fun f() { return; }", "(fun f () (return))"},
		{"class A {}", "(class A)"},
		{"class B < A { init(x) { this.x = x; } get() { return this.x; } }",
			"(class B < A (fun init (x) (; (= (. this x) x))) (fun get () (return (. this x))))"},
	}

	for _, c := range cases {
		program := parseOK(t, c.input)
		assert.Equal(t, c.expect, program.String(), c.input)
	}
}

func TestForDesugaring(t *testing.T) {
	cases := []struct {
		input  string
		expect string
	}{
		{
			"for (var i = 0; i < 3; i = i + 1) print i;",
			"(block (var i 0) (while (< i 3) (block (print i) (; (= i (+ i 1))))))",
		},
		{"for (;;) print 1;", "(while true (print 1))"},
		{"for (i = 0; i < 1;) print i;", "(block (; (= i 0)) (while (< i 1) (print i)))"},
	}

	for _, c := range cases {
		program := parseOK(t, c.input)
		assert.Equal(t, c.expect, program.String(), c.input)
	}
}

func TestPrinterIsIdempotent(t *testing.T) {
	program := parseOK(t, "var x = (1 + 2) * -3; fun f(a) { return a.b(x) or !a; }")
	first := ast.Print(program)
	assert.Equal(t, first, ast.Print(program))

	for _, s := range program.Statements {
		assert.Equal(t, s.String(), ast.Print(s))
	}
}

func TestSyntaxErrors(t *testing.T) {
	cases := []struct {
		input  string
		errors []string
	}{
		{"print 1", []string{"[line 1] Error at end: Expect ';' after value."}},
		{"print ;", []string{"[line 1] Error at ';': Expect expression."}},
		{"var = 1;", []string{"[line 1] Error at '=': Expect variable name."}},
		{"var a = 1", []string{"[line 1] Error at end: Expect ';' after variable declaration."}},
		{"(1 + 2;", []string{"[line 1] Error at ';': Expect ')' after expression."}},
		{"{ print 1;", []string{"[line 1] Error at end: Expect '}' after block."}},
		{"1 + 2 = 3;", []string{"[line 1] Error at '=': Invalid assignment target."}},
		{"fun (a) {}", []string{"[line 1] Error at '(': Expect function name."}},
		{"fun f(a b) {}", []string{"[line 1] Error at 'b': Expect ')' after parameters."}},
		{"class A < {}", []string{"[line 1] Error at '{': Expect superclass name."}},
		{"super;", []string{"[line 1] Error at ';': Expect '.' after 'super'."}},
		{"a.;", []string{"[line 1] Error at ';': Expect property name after '.'."}},
		{"f(1;", []string{"[line 1] Error at ';': Expect ')' after arguments."}},
		{"for x;", []string{"[line 1] Error at 'x': Expect '(' after 'for'."}},
	}

	for _, c := range cases {
		program, p, r := parse(c.input)
		assert.Equal(t, c.errors, p.Errors(), c.input)
		assert.True(t, r.HadError(), c.input)
		assert.NotNil(t, program)
	}
}

func TestErrorBatching(t *testing.T) {
	input := strings.Join([]string{
		"var a = 1;",
		"print a;",
		"var = 3;",
		"print a;",
		"print a;",
		"print a;",
		"print (a;",
		"print a;",
		"print a;",
		"print a;",
	}, "\n")

	program, p, _ := parse(input)
	assert.Equal(t, []string{
		"[line 3] Error at '=': Expect variable name.",
		"[line 7] Error at ';': Expect ')' after expression.",
	}, p.Errors())
	assert.Len(t, program.Statements, 8)
}

func TestRecoveryInsideBlock(t *testing.T) {
	program, p, _ := parse("{ print ; print 1; } print 2;")
	assert.Equal(t, []string{"[line 1] Error at ';': Expect expression."}, p.Errors())
	assert.Equal(t, "(block (print 1))\n(print 2)", program.String())
}

func TestInvalidAssignmentDoesNotStopParsing(t *testing.T) {
	program, p, _ := parse("a + b = c; print 1;")
	assert.Equal(t, []string{"[line 1] Error at '=': Invalid assignment target."}, p.Errors())
	assert.Equal(t, "(; (+ a b))\n(print 1)", program.String())
}

func TestTooManyArguments(t *testing.T) {
	args := make([]string, 256)
	for i := range args {
		args[i] = fmt.Sprintf("a%d", i)
	}
	list := strings.Join(args, ", ")

	program, p, _ := parse("f(" + list + "); fun g(" + list + ") {}")
	assert.Equal(t, []string{
		"[line 1] Error at 'a255': Can't have more than 255 arguments.",
		"[line 1] Error at 'a255': Can't have more than 255 parameters.",
	}, p.Errors())
	require.Len(t, program.Statements, 2)

	call := program.Statements[0].(*ast.ExpressionStatement).Expression.(*ast.Call)
	assert.Len(t, call.Arguments, 256)
	fn := program.Statements[1].(*ast.FunctionStatement)
	assert.Len(t, fn.Params, 256)
}

func TestLineNumbers(t *testing.T) {
	_, p, _ := parse("print 1;\n\nprint 2\nprint 3;")
	assert.Equal(t, []string{"[line 4] Error at 'print': Expect ';' after value."}, p.Errors())
}

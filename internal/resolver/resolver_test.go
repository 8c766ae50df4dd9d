package resolver

import (
	"bytes"
	"lox/internal/ast"
	"lox/internal/diag"
	"lox/internal/lexer"
	"lox/internal/parser"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resolve(t *testing.T, input string) (*ast.Program, *diag.ConsoleReporter, string) {
	t.Helper()
	var out bytes.Buffer
	r := diag.NewConsoleReporter(&out)

	program := parser.New(lexer.New(input, r), r).ParseProgram()
	require.False(t, r.HadError(), "syntax error in %q: %s", input, out.String())

	New(r).ResolveProgram(program)
	return program, r, out.String()
}

func TestStaticErrors(t *testing.T) {
	cases := []struct {
		input  string
		errors []string
	}{
		{"{ var a = a; }", []string{"[line 1] Error at 'a': Can't read local variable in its own initializer."}},
		{"{ var a = 1; { var a = a; } }", []string{"[line 1] Error at 'a': Can't read local variable in its own initializer."}},
		{"{ var a = 1; var a = 2; }", []string{"[line 1] Error at 'a': Already a variable with this name in this scope."}},
		{"fun f(a, a) {}", []string{"[line 1] Error at 'a': Already a variable with this name in this scope."}},
		{"return 1;", []string{"[line 1] Error at 'return': Can't return from top-level code."}},
		{"class A { init() { return 1; } }", []string{"[line 1] Error at 'return': Can't return a value from an initializer."}},
		{"print this;", []string{"[line 1] Error at 'this': Can't use 'this' outside of a class."}},
		{"fun f() { return this; }", []string{"[line 1] Error at 'this': Can't use 'this' outside of a class."}},
		{"super.m();", []string{"[line 1] Error at 'super': Can't use 'super' outside of a class."}},
		{"class A { m() { super.m(); } }", []string{"[line 1] Error at 'super': Can't use 'super' in a class with no superclass."}},
		{"class A < A {}", []string{"[line 1] Error at 'A': A class can't inherit from itself."}},
	}

	for _, c := range cases {
		_, r, out := resolve(t, c.input)
		assert.True(t, r.HadError(), c.input)
		assert.Equal(t, strings.Join(c.errors, "\n")+"\n", out, c.input)
	}
}

func TestAllowedDeclarations(t *testing.T) {
	inputs := []string{
		"var a = 1; var a = 2;",
		"var a = a;",
		"class A { init() { return; } }",
		"fun f() { return 1; }",
		"fun f() { f(); }",
		"class A { m() { return A; } }",
		"class A {} class B < A { m() { super.m(); return this; } }",
	}

	for _, input := range inputs {
		_, r, out := resolve(t, input)
		assert.False(t, r.HadError(), "%s: %s", input, out)
	}
}

func TestReportsEveryError(t *testing.T) {
	_, _, out := resolve(t, "return 1;\nprint this;\n{ var a = a; }")
	assert.Equal(t,
		"[line 1] Error at 'return': Can't return from top-level code.\n"+
			"[line 2] Error at 'this': Can't use 'this' outside of a class.\n"+
			"[line 3] Error at 'a': Can't read local variable in its own initializer.\n",
		out)
}

func TestHopCounts(t *testing.T) {
	program, r, _ := resolve(t, `
var g = 0;
{
  var a = 1;
  {
    var b = 2;
    print a + b + g;
    a = 3;
  }
}`)
	require.False(t, r.HadError())

	outer := program.Statements[1].(*ast.BlockStatement)
	inner := outer.Statements[1].(*ast.BlockStatement)

	sum := inner.Statements[1].(*ast.PrintStatement).Expression.(*ast.Binary)
	left := sum.Left.(*ast.Binary)

	hops, local := left.Left.(*ast.Variable).Resolved()
	assert.True(t, local)
	assert.Equal(t, 1, hops, "a")

	hops, local = left.Right.(*ast.Variable).Resolved()
	assert.True(t, local)
	assert.Equal(t, 0, hops, "b")

	_, local = sum.Right.(*ast.Variable).Resolved()
	assert.False(t, local, "g is global")

	assign := inner.Statements[2].(*ast.ExpressionStatement).Expression.(*ast.Assign)
	hops, local = assign.Resolved()
	assert.True(t, local)
	assert.Equal(t, 1, hops)
}

func TestClosureAndClassHops(t *testing.T) {
	program, r, _ := resolve(t, `
fun outer() {
  var x = 1;
  fun inner() { return x; }
}
class A {}
class B < A {
  m() { return super.m; }
  n() { return this; }
}`)
	require.False(t, r.HadError())

	outer := program.Statements[0].(*ast.FunctionStatement)
	inner := outer.Body[1].(*ast.FunctionStatement)
	x := inner.Body[0].(*ast.ReturnStatement).Value.(*ast.Variable)
	hops, _ := x.Resolved()
	assert.Equal(t, 1, hops)

	class := program.Statements[2].(*ast.ClassStatement)
	_, local := class.Superclass.Resolved()
	assert.False(t, local)

	super := class.Methods[0].Body[0].(*ast.ReturnStatement).Value.(*ast.Super)
	hops, local = super.Resolved()
	assert.True(t, local)
	assert.Equal(t, 2, hops, "super sits outside the this scope")

	this := class.Methods[1].Body[0].(*ast.ReturnStatement).Value.(*ast.This)
	hops, local = this.Resolved()
	assert.True(t, local)
	assert.Equal(t, 1, hops)
}

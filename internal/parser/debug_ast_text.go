package parser

import (
	"fmt"
	"lox/internal/ast"
	"lox/internal/util"
	"reflect"
	"strings"
)

// RenderASTAsText produces a human-centric, indented, source-like representation of the AST.
// Resolved references are suffixed with their scope distance, e.g. `a@1`.
func RenderASTAsText(node ast.Node, indent int) string {
	if node == nil || (reflect.ValueOf(node).Kind() == reflect.Ptr && reflect.ValueOf(node).IsNil()) {
		return "nil"
	}

	sp := strings.Repeat("  ", indent)

	switch n := node.(type) {
	case *ast.Program:
		var sb strings.Builder
		for i, s := range n.Statements {
			if i > 0 {
				sb.WriteString("\n")
			}
			sb.WriteString(RenderASTAsText(s, 0))
		}
		return sb.String()

	case *ast.ExpressionStatement:
		return sp + RenderASTAsText(n.Expression, 0) + ";"

	case *ast.PrintStatement:
		return fmt.Sprintf("%sprint %s;", sp, RenderASTAsText(n.Expression, 0))

	case *ast.VarStatement:
		if n.Initializer == nil {
			return fmt.Sprintf("%svar %s;", sp, n.Name.Lexeme)
		}
		return fmt.Sprintf("%svar %s = %s;", sp, n.Name.Lexeme, RenderASTAsText(n.Initializer, 0))

	case *ast.BlockStatement:
		return sp + renderBlock(n.Statements, indent)

	case *ast.IfStatement:
		res := fmt.Sprintf("%sif (%s) %s", sp, RenderASTAsText(n.Condition, 0), strings.TrimLeft(RenderASTAsText(n.Then, indent), " "))
		if n.Else != nil {
			res += " else " + strings.TrimLeft(RenderASTAsText(n.Else, indent), " ")
		}
		return res

	case *ast.WhileStatement:
		return fmt.Sprintf("%swhile (%s) %s", sp, RenderASTAsText(n.Condition, 0), strings.TrimLeft(RenderASTAsText(n.Body, indent), " "))

	case *ast.FunctionStatement:
		return fmt.Sprintf("%sfun %s(%s) %s", sp, n.Name.Lexeme, joinLexemes(n), renderBlock(n.Body, indent))

	case *ast.ReturnStatement:
		if n.Value == nil {
			return sp + "return;"
		}
		return fmt.Sprintf("%sreturn %s;", sp, RenderASTAsText(n.Value, 0))

	case *ast.ClassStatement:
		var sb strings.Builder
		sb.WriteString(sp + "class " + n.Name.Lexeme)
		if n.Superclass != nil {
			sb.WriteString(" < " + RenderASTAsText(n.Superclass, 0))
		}
		sb.WriteString(" {\n")
		for _, m := range n.Methods {
			// methods drop the `fun` keyword
			sb.WriteString(strings.Replace(RenderASTAsText(m, indent+1), "fun ", "", 1))
			sb.WriteString("\n")
		}
		sb.WriteString(sp + "}")
		return sb.String()

	case *ast.Literal:
		switch v := n.Value.(type) {
		case string:
			return fmt.Sprintf("%q", v)
		case float64:
			return util.FormatNumber(v)
		}
		return n.String()

	case *ast.Variable:
		return n.Name.Lexeme + renderHops(&n.Resolution)

	case *ast.Assign:
		return fmt.Sprintf("(%s%s = %s)", n.Name.Lexeme, renderHops(&n.Resolution), RenderASTAsText(n.Value, 0))

	case *ast.Unary:
		return fmt.Sprintf("(%s%s)", n.Operator.Lexeme, RenderASTAsText(n.Right, 0))

	case *ast.Binary:
		return fmt.Sprintf("(%s %s %s)", RenderASTAsText(n.Left, 0), n.Operator.Lexeme, RenderASTAsText(n.Right, 0))

	case *ast.Logical:
		return fmt.Sprintf("(%s %s %s)", RenderASTAsText(n.Left, 0), n.Operator.Lexeme, RenderASTAsText(n.Right, 0))

	case *ast.Grouping:
		return RenderASTAsText(n.Expression, 0)

	case *ast.Call:
		args := []string{}
		for _, a := range n.Arguments {
			args = append(args, RenderASTAsText(a, 0))
		}
		return fmt.Sprintf("%s(%s)", RenderASTAsText(n.Callee, 0), strings.Join(args, ", "))

	case *ast.Get:
		return RenderASTAsText(n.Object, 0) + "." + n.Name.Lexeme

	case *ast.Set:
		return fmt.Sprintf("(%s.%s = %s)", RenderASTAsText(n.Object, 0), n.Name.Lexeme, RenderASTAsText(n.Value, 0))

	case *ast.This:
		return "this" + renderHops(&n.Resolution)

	case *ast.Super:
		return "super" + renderHops(&n.Resolution) + "." + n.Method.Lexeme

	default:
		return fmt.Sprintf("/* unknown %T */", n)
	}
}

func renderBlock(stmts []ast.Statement, indent int) string {
	if len(stmts) == 0 {
		return "{}"
	}
	var sb strings.Builder
	sb.WriteString("{\n")
	for _, s := range stmts {
		sb.WriteString(RenderASTAsText(s, indent+1))
		sb.WriteString("\n")
	}
	// The closing brace aligns with the parent's indent
	sb.WriteString(strings.Repeat("  ", indent) + "}")
	return sb.String()
}

func joinLexemes(fn *ast.FunctionStatement) string {
	params := make([]string, len(fn.Params))
	for i, p := range fn.Params {
		params[i] = p.Lexeme
	}
	return strings.Join(params, ", ")
}

func renderHops(r *ast.Resolution) string {
	if hops, ok := r.Resolved(); ok {
		return fmt.Sprintf("@%d", hops)
	}
	return ""
}

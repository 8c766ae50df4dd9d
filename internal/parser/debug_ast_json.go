package parser

import (
	"bytes"
	"encoding/json"
	"fmt"
	"lox/internal/ast"
	"lox/internal/token"
	"reflect"
)

// WalkAST recursively traverses an AST and serializes it into a machine-centric map structure.
// The same structure backs both the JSON and the YAML renderings.
func WalkAST(node ast.Node) interface{} {
	if node == nil || (reflect.ValueOf(node).Kind() == reflect.Ptr && reflect.ValueOf(node).IsNil()) {
		return nil
	}

	switch n := node.(type) {
	case *ast.Program:
		return map[string]interface{}{
			"type":       "Program",
			"statements": walkStatements(n.Statements),
		}

	// statements
	case *ast.ExpressionStatement:
		return map[string]interface{}{
			"type":       "ExpressionStatement",
			"line":       n.Token.Line,
			"expression": WalkAST(n.Expression),
		}

	case *ast.PrintStatement:
		return map[string]interface{}{
			"type":       "PrintStatement",
			"line":       n.Token.Line,
			"expression": WalkAST(n.Expression),
		}

	case *ast.VarStatement:
		return map[string]interface{}{
			"type":        "VarStatement",
			"line":        n.Name.Line,
			"name":        n.Name.Lexeme,
			"initializer": WalkAST(n.Initializer),
		}

	case *ast.BlockStatement:
		return map[string]interface{}{
			"type":       "BlockStatement",
			"line":       n.Token.Line,
			"statements": walkStatements(n.Statements),
		}

	case *ast.IfStatement:
		return map[string]interface{}{
			"type":      "IfStatement",
			"line":      n.Token.Line,
			"condition": WalkAST(n.Condition),
			"then":      WalkAST(n.Then),
			"else":      WalkAST(n.Else),
		}

	case *ast.WhileStatement:
		return map[string]interface{}{
			"type":      "WhileStatement",
			"line":      n.Token.Line,
			"condition": WalkAST(n.Condition),
			"body":      WalkAST(n.Body),
		}

	case *ast.FunctionStatement:
		return map[string]interface{}{
			"type":       "FunctionStatement",
			"line":       n.Name.Line,
			"name":       n.Name.Lexeme,
			"parameters": lexemes(n.Params),
			"body":       walkStatements(n.Body),
		}

	case *ast.ReturnStatement:
		return map[string]interface{}{
			"type":  "ReturnStatement",
			"line":  n.Keyword.Line,
			"value": WalkAST(n.Value),
		}

	case *ast.ClassStatement:
		methods := make([]interface{}, len(n.Methods))
		for i, m := range n.Methods {
			methods[i] = WalkAST(m)
		}
		return map[string]interface{}{
			"type":       "ClassStatement",
			"line":       n.Name.Line,
			"name":       n.Name.Lexeme,
			"superclass": WalkAST(n.Superclass),
			"methods":    methods,
		}

	// expressions
	case *ast.Literal:
		return map[string]interface{}{
			"type":  "Literal",
			"line":  n.Token.Line,
			"token": n.TokenLiteral(),
			"value": n.Value,
		}

	case *ast.Variable:
		return withResolution(map[string]interface{}{
			"type": "Variable",
			"line": n.Name.Line,
			"name": n.Name.Lexeme,
		}, &n.Resolution)

	case *ast.Assign:
		return withResolution(map[string]interface{}{
			"type":  "Assign",
			"line":  n.Name.Line,
			"name":  n.Name.Lexeme,
			"value": WalkAST(n.Value),
		}, &n.Resolution)

	case *ast.Unary:
		return map[string]interface{}{
			"type":     "Unary",
			"line":     n.Operator.Line,
			"operator": n.Operator.Lexeme,
			"right":    WalkAST(n.Right),
		}

	case *ast.Binary:
		return map[string]interface{}{
			"type":     "Binary",
			"line":     n.Operator.Line,
			"left":     WalkAST(n.Left),
			"operator": n.Operator.Lexeme,
			"right":    WalkAST(n.Right),
		}

	case *ast.Logical:
		return map[string]interface{}{
			"type":     "Logical",
			"line":     n.Operator.Line,
			"left":     WalkAST(n.Left),
			"operator": n.Operator.Lexeme,
			"right":    WalkAST(n.Right),
		}

	case *ast.Grouping:
		return map[string]interface{}{
			"type":       "Grouping",
			"line":       n.Token.Line,
			"expression": WalkAST(n.Expression),
		}

	case *ast.Call:
		args := make([]interface{}, len(n.Arguments))
		for i, arg := range n.Arguments {
			args[i] = WalkAST(arg)
		}
		return map[string]interface{}{
			"type":      "Call",
			"line":      n.Paren.Line,
			"callee":    WalkAST(n.Callee),
			"arguments": args,
		}

	case *ast.Get:
		return map[string]interface{}{
			"type":   "Get",
			"line":   n.Name.Line,
			"object": WalkAST(n.Object),
			"name":   n.Name.Lexeme,
		}

	case *ast.Set:
		return map[string]interface{}{
			"type":   "Set",
			"line":   n.Name.Line,
			"object": WalkAST(n.Object),
			"name":   n.Name.Lexeme,
			"value":  WalkAST(n.Value),
		}

	case *ast.This:
		return withResolution(map[string]interface{}{
			"type": "This",
			"line": n.Keyword.Line,
		}, &n.Resolution)

	case *ast.Super:
		return withResolution(map[string]interface{}{
			"type":   "Super",
			"line":   n.Keyword.Line,
			"method": n.Method.Lexeme,
		}, &n.Resolution)

	default:
		return map[string]interface{}{
			"type": "Unknown",
			"node": fmt.Sprintf("%T", n),
		}
	}
}

func walkStatements(stmts []ast.Statement) []interface{} {
	result := make([]interface{}, len(stmts))
	for i, s := range stmts {
		result[i] = WalkAST(s)
	}
	return result
}

func lexemes(toks []token.Token) []interface{} {
	result := make([]interface{}, len(toks))
	for i, t := range toks {
		result[i] = t.Lexeme
	}
	return result
}

// withResolution adds the resolved scope distance; global references carry none.
func withResolution(m map[string]interface{}, r *ast.Resolution) map[string]interface{} {
	if hops, ok := r.Resolved(); ok {
		m["hops"] = hops
	}
	return m
}

func RenderASTAsJSON(node ast.Node) (string, error) {
	astMap := WalkAST(node)
	buf := new(bytes.Buffer)
	encoder := json.NewEncoder(buf)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)

	if err := encoder.Encode(astMap); err != nil {
		return "", fmt.Errorf("failed to encode JSON: %v", err)
	}
	return buf.String(), nil
}

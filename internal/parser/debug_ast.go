package parser

import (
	"fmt"
	"lox/internal/ast"
	"strings"
)

const (
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatText = "text"
)

// RenderAST renders node in one of the debug formats.
func RenderAST(node ast.Node, format string) (string, error) {
	switch strings.ToLower(format) {
	case FormatJSON, "":
		return RenderASTAsJSON(node)
	case FormatYAML, "yml":
		return RenderASTAsYAML(node)
	case FormatText:
		return RenderASTAsText(node, 0) + "\n", nil
	default:
		return "", fmt.Errorf("unknown AST format %q (want json, yaml or text)", format)
	}
}

package parser

import (
	"bytes"
	"fmt"
	"lox/internal/ast"

	"gopkg.in/yaml.v3"
)

// RenderASTAsYAML renders the WalkAST structure as a YAML document.
func RenderASTAsYAML(node ast.Node) (string, error) {
	buf := new(bytes.Buffer)
	encoder := yaml.NewEncoder(buf)
	encoder.SetIndent(2)

	if err := encoder.Encode(WalkAST(node)); err != nil {
		return "", fmt.Errorf("failed to encode YAML: %v", err)
	}
	if err := encoder.Close(); err != nil {
		return "", fmt.Errorf("failed to encode YAML: %v", err)
	}
	return buf.String(), nil
}

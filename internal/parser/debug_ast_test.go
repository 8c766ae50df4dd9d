package parser

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const debugSource = `var a = 1;
fun f(x) {
  if (x) print "yes"; else return a;
}`

func TestRenderASTAsJSON(t *testing.T) {
	program := parseOK(t, debugSource)

	out, err := RenderAST(program, FormatJSON)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))

	assert.Equal(t, "Program", decoded["type"])
	statements := decoded["statements"].([]interface{})
	require.Len(t, statements, 2)

	first := statements[0].(map[string]interface{})
	assert.Equal(t, "VarStatement", first["type"])
	assert.Equal(t, "a", first["name"])
	assert.Equal(t, float64(1), first["line"])

	second := statements[1].(map[string]interface{})
	assert.Equal(t, "FunctionStatement", second["type"])
	assert.Equal(t, []interface{}{"x"}, second["parameters"])
}

func TestRenderASTAsYAML(t *testing.T) {
	program := parseOK(t, debugSource)

	out, err := RenderAST(program, FormatYAML)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, yaml.Unmarshal([]byte(out), &decoded))

	assert.Equal(t, "Program", decoded["type"])
	statements := decoded["statements"].([]interface{})
	require.Len(t, statements, 2)
	assert.Equal(t, "VarStatement", statements[0].(map[string]interface{})["type"])
}

func TestRenderASTAsText(t *testing.T) {
	program := parseOK(t, debugSource)

	out, err := RenderAST(program, FormatText)
	require.NoError(t, err)

	expected := "var a = 1;\n" +
		"fun f(x) {\n" +
		"  if (x) print \"yes\"; else return a;\n" +
		"}\n"
	assert.Equal(t, expected, out)
}

func TestRenderASTShowsResolution(t *testing.T) {
	program := parseOK(t, "a;")
	stmt := program.Statements[0]
	assert.Equal(t, "a;", RenderASTAsText(stmt, 0))

	walked := WalkAST(stmt).(map[string]interface{})
	assert.NotContains(t, walked["expression"], "hops")
}

func TestRenderASTUnknownFormat(t *testing.T) {
	_, err := RenderAST(parseOK(t, "1;"), "xml")
	assert.Error(t, err)
}

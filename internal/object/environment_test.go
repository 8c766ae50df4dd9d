package object

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvironmentDefineAndGet(t *testing.T) {
	global := NewEnvironment()
	global.Define("a", &Number{Value: 1})
	global.Define("a", &Number{Value: 2})

	val, err := global.Get(ident("a"))
	require.NoError(t, err)
	assert.Equal(t, &Number{Value: 2}, val)

	_, err = global.Get(ident("b"))
	var rtErr *RuntimeError
	require.ErrorAs(t, err, &rtErr)
	assert.Equal(t, "Undefined variable 'b'.", rtErr.Message)
}

func TestEnvironmentChain(t *testing.T) {
	global := NewEnvironment()
	global.Define("a", &String{Value: "global"})

	inner := NewEnclosedEnvironment(NewEnclosedEnvironment(global))
	val, err := inner.Get(ident("a"))
	require.NoError(t, err)
	assert.Equal(t, &String{Value: "global"}, val)

	require.NoError(t, inner.Assign(ident("a"), &String{Value: "changed"}))
	assert.Equal(t, &String{Value: "changed"}, global.Bindings["a"])
	assert.NotContains(t, inner.Bindings, "a")

	err = inner.Assign(ident("missing"), NIL)
	assert.EqualError(t, err, "Undefined variable 'missing'.")
}

func TestEnvironmentShadowing(t *testing.T) {
	global := NewEnvironment()
	global.Define("a", &String{Value: "global"})
	local := NewEnclosedEnvironment(global)
	local.Define("a", &String{Value: "local"})

	val, _ := local.Get(ident("a"))
	assert.Equal(t, "local", val.Inspect())
	val, _ = global.Get(ident("a"))
	assert.Equal(t, "global", val.Inspect())
}

func TestEnvironmentAncestor(t *testing.T) {
	global := NewEnvironment()
	middle := NewEnclosedEnvironment(global)
	inner := NewEnclosedEnvironment(middle)

	assert.Same(t, inner, inner.Ancestor(0))
	assert.Same(t, middle, inner.Ancestor(1))
	assert.Same(t, global, inner.Ancestor(2))
	assert.NotEqual(t, inner.ID, middle.ID)
}

func TestEnvironmentGetAtAssignAt(t *testing.T) {
	global := NewEnvironment()
	global.Define("x", &Number{Value: 1})
	middle := NewEnclosedEnvironment(global)
	middle.Define("x", &Number{Value: 2})
	inner := NewEnclosedEnvironment(middle)

	assert.Equal(t, &Number{Value: 2}, inner.GetAt(1, "x"))
	assert.Equal(t, &Number{Value: 1}, inner.GetAt(2, "x"))

	inner.AssignAt(2, ident("x"), &Number{Value: 10})
	assert.Equal(t, &Number{Value: 10}, global.Bindings["x"])
	assert.Equal(t, &Number{Value: 2}, middle.Bindings["x"])
}

func TestClosuresShareEnvironment(t *testing.T) {
	scope := NewEnvironment()
	scope.Define("i", &Number{Value: 0})

	first := NewEnclosedEnvironment(scope)
	second := NewEnclosedEnvironment(scope)

	first.AssignAt(1, ident("i"), &Number{Value: 5})
	assert.Equal(t, &Number{Value: 5}, second.GetAt(1, "i"))
}

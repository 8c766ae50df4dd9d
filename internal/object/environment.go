package object

import (
	"log/slog"
	"lox/internal/token"
	"sync/atomic"
)

var nextID atomic.Uint64

// Environment is one lexical scope. Closures share environments by pointer,
// so a write through one closure is visible through every other.
type Environment struct {
	ID       uint64
	Bindings map[string]Object
	Outer    *Environment
}

func nextEnvID() uint64 {
	return nextID.Add(1)
}

func NewEnvironment() *Environment {
	return &Environment{
		ID:       nextEnvID(),
		Bindings: make(map[string]Object),
	}
}

// NewEnclosedEnvironment initializes an environment chained to outer.
func NewEnclosedEnvironment(outer *Environment) *Environment {
	env := NewEnvironment()
	env.Outer = outer
	slog.Debug("new env",
		slog.Uint64("id", env.ID),
		slog.Uint64("outer", outer.ID))
	return env
}

// Define always binds in this scope, replacing any existing binding.
func (e *Environment) Define(name string, val Object) {
	slog.Debug("binding value",
		slog.Uint64("env", e.ID),
		slog.String("name", name),
		slog.Any("type", typeOf(val)))
	e.Bindings[name] = val
}

// Get searches this scope and then each enclosing one.
func (e *Environment) Get(name token.Token) (Object, error) {
	for env := e; env != nil; env = env.Outer {
		if val, ok := env.Bindings[name.Lexeme]; ok {
			return val, nil
		}
	}
	return nil, NewRuntimeError(name, "Undefined variable '%s'.", name.Lexeme)
}

// Assign updates the nearest existing binding; it never creates one.
func (e *Environment) Assign(name token.Token, val Object) error {
	for env := e; env != nil; env = env.Outer {
		if _, ok := env.Bindings[name.Lexeme]; ok {
			slog.Debug("assigning bound value",
				slog.Uint64("env", env.ID),
				slog.String("name", name.Lexeme),
				slog.Any("type", typeOf(val)))
			env.Bindings[name.Lexeme] = val
			return nil
		}
	}
	return NewRuntimeError(name, "Undefined variable '%s'.", name.Lexeme)
}

// Ancestor walks exactly hops links outward.
func (e *Environment) Ancestor(hops int) *Environment {
	env := e
	for i := 0; i < hops; i++ {
		env = env.Outer
	}
	return env
}

// GetAt reads name from the scope hops links up without searching. The
// resolver guarantees the binding exists there.
func (e *Environment) GetAt(hops int, name string) Object {
	return e.Ancestor(hops).Bindings[name]
}

func (e *Environment) AssignAt(hops int, name token.Token, val Object) {
	e.Ancestor(hops).Bindings[name.Lexeme] = val
}

func typeOf(obj Object) ObjectType {
	if obj == nil {
		return ""
	}
	return obj.Type()
}

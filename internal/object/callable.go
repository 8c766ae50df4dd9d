package object

import (
	"fmt"
	"lox/internal/ast"
	"lox/internal/token"
)

// Executor runs a function body. The evaluator implements it; keeping the
// dependency as an interface lets callables live next to the other values.
type Executor interface {
	ExecuteBlock(statements []ast.Statement, env *Environment) (*ReturnValue, error)
}

type Callable interface {
	Object
	Arity() int
	Call(ex Executor, args []Object) (Object, error)
}

type Function struct {
	Declaration   *ast.FunctionStatement
	Closure       *Environment
	IsInitializer bool
}

func (f *Function) Type() ObjectType { return FUNCTION_OBJ }
func (f *Function) Inspect() string  { return "<fn " + f.Declaration.Name.Lexeme + ">" }
func (f *Function) Name() string     { return f.Declaration.Name.Lexeme }
func (f *Function) Arity() int       { return len(f.Declaration.Params) }

func (f *Function) Call(ex Executor, args []Object) (Object, error) {
	env := NewEnclosedEnvironment(f.Closure)
	for i, param := range f.Declaration.Params {
		env.Define(param.Lexeme, args[i])
	}

	rv, err := ex.ExecuteBlock(f.Declaration.Body, env)
	if err != nil {
		return nil, err
	}

	if f.IsInitializer {
		return f.Closure.GetAt(0, "this"), nil
	}
	if rv != nil {
		return rv.Value, nil
	}
	return NIL, nil
}

// Bind returns a copy of f whose closure defines `this` as instance. The
// shared method table is left untouched.
func (f *Function) Bind(instance *Instance) *Function {
	env := NewEnclosedEnvironment(f.Closure)
	env.Define("this", instance)
	return &Function{Declaration: f.Declaration, Closure: env, IsInitializer: f.IsInitializer}
}

type Class struct {
	Name       string
	Superclass *Class
	Methods    map[string]*Function
}

func (c *Class) Type() ObjectType { return CLASS_OBJ }
func (c *Class) Inspect() string  { return c.Name }

// FindMethod looks name up on c, then along the superclass chain.
func (c *Class) FindMethod(name string) (*Function, bool) {
	for class := c; class != nil; class = class.Superclass {
		if method, ok := class.Methods[name]; ok {
			return method, true
		}
	}
	return nil, false
}

func (c *Class) Arity() int {
	if initializer, ok := c.FindMethod("init"); ok {
		return initializer.Arity()
	}
	return 0
}

func (c *Class) Call(ex Executor, args []Object) (Object, error) {
	instance := &Instance{Class: c}
	if initializer, ok := c.FindMethod("init"); ok {
		if _, err := initializer.Bind(instance).Call(ex, args); err != nil {
			return nil, err
		}
	}
	return instance, nil
}

type Instance struct {
	Class  *Class
	Fields map[string]Object // created on first assignment
}

func (i *Instance) Type() ObjectType { return INSTANCE_OBJ }
func (i *Instance) Inspect() string  { return i.Class.Name + " instance" }

// Get returns a field, or else a method bound to i. Fields shadow methods.
func (i *Instance) Get(name token.Token) (Object, error) {
	if value, ok := i.Fields[name.Lexeme]; ok {
		return value, nil
	}
	if method, ok := i.Class.FindMethod(name.Lexeme); ok {
		return method.Bind(i), nil
	}
	return nil, NewRuntimeError(name, "Undefined property '%s'.", name.Lexeme)
}

func (i *Instance) Set(name token.Token, value Object) {
	if i.Fields == nil {
		i.Fields = make(map[string]Object)
	}
	i.Fields[name.Lexeme] = value
}

type NativeFunction func(args []Object) (Object, error)

// Native is a host-provided callable with a fixed arity and no closure.
type Native struct {
	Name   string
	Params int
	Fn     NativeFunction
}

func (n *Native) Type() ObjectType { return NATIVE_OBJ }
func (n *Native) Inspect() string  { return fmt.Sprintf("<native fn %s>", n.Name) }
func (n *Native) Arity() int       { return n.Params }

func (n *Native) Call(_ Executor, args []Object) (Object, error) {
	return n.Fn(args)
}

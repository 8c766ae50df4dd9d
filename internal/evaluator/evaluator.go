package evaluator

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"lox/internal/ast"
	"lox/internal/diag"
	"lox/internal/object"
	"lox/internal/token"
	"os"
)

// MaxCallDepth bounds nested calls so runaway recursion surfaces as a
// runtime error instead of exhausting the host stack.
const MaxCallDepth = 8192

var NIL = object.NIL

// Evaluator walks resolved statements. Globals persist across Interpret
// calls so a REPL session keeps its definitions.
type Evaluator struct {
	Globals  *object.Environment
	envStack []*object.Environment

	out      io.Writer
	reporter diag.Reporter
	depth    int
}

// New creates an evaluator with the native functions bound as globals.
// Print output goes to out; a nil out means stdout.
func New(out io.Writer, reporter diag.Reporter) *Evaluator {
	if out == nil {
		out = os.Stdout
	}

	globals := object.NewEnvironment()
	for name, native := range builtins {
		globals.Define(name, native())
	}

	e := &Evaluator{
		Globals:  globals,
		out:      out,
		reporter: reporter,
	}
	e.PushEnv(globals)
	return e
}

// DefineNative binds a host function as a global.
func (e *Evaluator) DefineNative(name string, arity int, fn object.NativeFunction) {
	e.Globals.Define(name, &object.Native{Name: name, Params: arity, Fn: fn})
}

func (e *Evaluator) PushEnv(env *object.Environment) {
	e.envStack = append(e.envStack, env)
}

func (e *Evaluator) PopEnv() {
	if len(e.envStack) > 1 {
		e.envStack = e.envStack[:len(e.envStack)-1]
	}
}

func (e *Evaluator) CurrentEnv() *object.Environment {
	return e.envStack[len(e.envStack)-1]
}

// Interpret executes the program's statements in order. The first runtime
// error stops execution, goes to the reporter and is returned.
func (e *Evaluator) Interpret(program *ast.Program) error {
	// a previous failure may have left frames behind
	e.envStack = e.envStack[:1]
	e.depth = 0

	for _, stmt := range program.Statements {
		if _, err := e.Execute(stmt); err != nil {
			slog.Debug("execution stopped", slog.Any("error", err))
			if e.reporter != nil {
				e.reporter.ReportRuntimeError(err)
			}
			return err
		}
	}
	return nil
}

// ExecuteBlock runs statements with env as the current scope and restores
// the previous scope on every exit path.
func (e *Evaluator) ExecuteBlock(statements []ast.Statement, env *object.Environment) (*object.ReturnValue, error) {
	e.PushEnv(env)
	defer e.PopEnv()

	for _, stmt := range statements {
		rv, err := e.Execute(stmt)
		if err != nil || rv != nil {
			return rv, err
		}
	}
	return nil, nil
}

// Execute runs one statement. A non-nil ReturnValue means a `return` is
// unwinding to the enclosing call.
func (e *Evaluator) Execute(stmt ast.Statement) (*object.ReturnValue, error) {
	switch s := stmt.(type) {
	case *ast.ExpressionStatement:
		_, err := e.Eval(s.Expression)
		return nil, err

	case *ast.PrintStatement:
		val, err := e.Eval(s.Expression)
		if err != nil {
			return nil, err
		}
		fmt.Fprintln(e.out, val.Inspect())
		return nil, nil

	case *ast.VarStatement:
		var val object.Object = NIL
		if s.Initializer != nil {
			v, err := e.Eval(s.Initializer)
			if err != nil {
				return nil, err
			}
			val = v
		}
		e.CurrentEnv().Define(s.Name.Lexeme, val)
		return nil, nil

	case *ast.BlockStatement:
		return e.ExecuteBlock(s.Statements, object.NewEnclosedEnvironment(e.CurrentEnv()))

	case *ast.IfStatement:
		cond, err := e.Eval(s.Condition)
		if err != nil {
			return nil, err
		}
		if object.IsTruthy(cond) {
			return e.Execute(s.Then)
		} else if s.Else != nil {
			return e.Execute(s.Else)
		}
		return nil, nil

	case *ast.WhileStatement:
		return e.evalWhileStatement(s)

	case *ast.FunctionStatement:
		fn := &object.Function{Declaration: s, Closure: e.CurrentEnv()}
		e.CurrentEnv().Define(s.Name.Lexeme, fn)
		return nil, nil

	case *ast.ReturnStatement:
		var val object.Object = NIL
		if s.Value != nil {
			v, err := e.Eval(s.Value)
			if err != nil {
				return nil, err
			}
			val = v
		}
		return &object.ReturnValue{Value: val}, nil

	case *ast.ClassStatement:
		return nil, e.evalClassStatement(s)
	}

	return nil, fmt.Errorf("unknown statement %T", stmt)
}

func (e *Evaluator) evalWhileStatement(s *ast.WhileStatement) (*object.ReturnValue, error) {
	for {
		cond, err := e.Eval(s.Condition)
		if err != nil {
			return nil, err
		}
		if !object.IsTruthy(cond) {
			return nil, nil
		}
		rv, err := e.Execute(s.Body)
		if err != nil || rv != nil {
			return rv, err
		}
	}
}

func (e *Evaluator) evalClassStatement(s *ast.ClassStatement) error {
	var superclass *object.Class
	if s.Superclass != nil {
		val, err := e.Eval(s.Superclass)
		if err != nil {
			return err
		}
		class, ok := val.(*object.Class)
		if !ok {
			return object.NewRuntimeError(s.Superclass.Name, "Superclass must be a class.")
		}
		superclass = class
	}

	// bound first so methods can refer to the class by name
	env := e.CurrentEnv()
	env.Define(s.Name.Lexeme, NIL)

	methodEnv := env
	if superclass != nil {
		methodEnv = object.NewEnclosedEnvironment(env)
		methodEnv.Define("super", superclass)
	}

	methods := make(map[string]*object.Function, len(s.Methods))
	for _, method := range s.Methods {
		methods[method.Name.Lexeme] = &object.Function{
			Declaration:   method,
			Closure:       methodEnv,
			IsInitializer: method.Name.Lexeme == "init",
		}
	}

	class := &object.Class{Name: s.Name.Lexeme, Superclass: superclass, Methods: methods}
	slog.Debug("class defined",
		slog.String("name", class.Name),
		slog.Int("methods", len(methods)))

	return env.Assign(s.Name, class)
}

// Eval evaluates an expression to a value.
func (e *Evaluator) Eval(expr ast.Expression) (object.Object, error) {
	switch n := expr.(type) {
	case *ast.Literal:
		return object.FromLiteral(n.Value), nil

	case *ast.Grouping:
		return e.Eval(n.Expression)

	case *ast.Unary:
		right, err := e.Eval(n.Right)
		if err != nil {
			return nil, err
		}
		return e.evalPrefixExpression(n.Operator, right)

	case *ast.Binary:
		left, err := e.Eval(n.Left)
		if err != nil {
			return nil, err
		}
		right, err := e.Eval(n.Right)
		if err != nil {
			return nil, err
		}
		return e.evalInfixExpression(n.Operator, left, right)

	case *ast.Logical:
		return e.evalLogicalExpression(n)

	case *ast.Variable:
		return e.lookUpVariable(n.Name, n)

	case *ast.Assign:
		val, err := e.Eval(n.Value)
		if err != nil {
			return nil, err
		}
		if hops, ok := n.Resolved(); ok {
			e.CurrentEnv().AssignAt(hops, n.Name, val)
		} else if err := e.Globals.Assign(n.Name, val); err != nil {
			return nil, err
		}
		return val, nil

	case *ast.Call:
		return e.evalCallExpression(n)

	case *ast.Get:
		obj, err := e.Eval(n.Object)
		if err != nil {
			return nil, err
		}
		instance, ok := obj.(*object.Instance)
		if !ok {
			return nil, object.NewRuntimeError(n.Name, "Only instances have properties.")
		}
		return instance.Get(n.Name)

	case *ast.Set:
		obj, err := e.Eval(n.Object)
		if err != nil {
			return nil, err
		}
		instance, ok := obj.(*object.Instance)
		if !ok {
			return nil, object.NewRuntimeError(n.Name, "Only instances have fields.")
		}
		val, err := e.Eval(n.Value)
		if err != nil {
			return nil, err
		}
		instance.Set(n.Name, val)
		return val, nil

	case *ast.This:
		return e.lookUpVariable(n.Keyword, n)

	case *ast.Super:
		return e.evalSuperExpression(n)
	}

	return nil, fmt.Errorf("unknown expression %T", expr)
}

type resolved interface {
	Resolved() (int, bool)
}

func (e *Evaluator) lookUpVariable(name token.Token, node resolved) (object.Object, error) {
	if hops, ok := node.Resolved(); ok {
		return e.CurrentEnv().GetAt(hops, name.Lexeme), nil
	}
	return e.Globals.Get(name)
}

func (e *Evaluator) evalPrefixExpression(operator token.Token, right object.Object) (object.Object, error) {
	switch operator.Type {
	case token.BANG:
		return object.NativeBoolToBooleanObject(!object.IsTruthy(right)), nil
	case token.MINUS:
		num, ok := right.(*object.Number)
		if !ok {
			return nil, object.NewRuntimeError(operator, "Operand must be a number.")
		}
		return &object.Number{Value: -num.Value}, nil
	}
	return nil, object.NewRuntimeError(operator, "Unknown operator: %s", operator.Lexeme)
}

func (e *Evaluator) evalInfixExpression(operator token.Token, left, right object.Object) (object.Object, error) {
	switch operator.Type {
	case token.EQ:
		return object.NativeBoolToBooleanObject(object.Equal(left, right)), nil
	case token.NOT_EQ:
		return object.NativeBoolToBooleanObject(!object.Equal(left, right)), nil
	case token.PLUS:
		return evalPlus(operator, left, right)
	}

	l, lok := left.(*object.Number)
	r, rok := right.(*object.Number)
	if !lok || !rok {
		return nil, object.NewRuntimeError(operator, "Operands must be numbers.")
	}
	return evalNumberInfixExpression(operator, l.Value, r.Value)
}

func evalPlus(operator token.Token, left, right object.Object) (object.Object, error) {
	switch l := left.(type) {
	case *object.Number:
		if r, ok := right.(*object.Number); ok {
			return &object.Number{Value: l.Value + r.Value}, nil
		}
	case *object.String:
		if r, ok := right.(*object.String); ok {
			return &object.String{Value: l.Value + r.Value}, nil
		}
	}
	return nil, object.NewRuntimeError(operator, "Operands must be two numbers or two strings.")
}

// Division by zero follows IEEE 754 and yields an infinity or NaN.
func evalNumberInfixExpression(operator token.Token, l, r float64) (object.Object, error) {
	switch operator.Type {
	case token.MINUS:
		return &object.Number{Value: l - r}, nil
	case token.ASTERISK:
		return &object.Number{Value: l * r}, nil
	case token.SLASH:
		return &object.Number{Value: l / r}, nil
	case token.GT:
		return object.NativeBoolToBooleanObject(l > r), nil
	case token.GT_EQ:
		return object.NativeBoolToBooleanObject(l >= r), nil
	case token.LT:
		return object.NativeBoolToBooleanObject(l < r), nil
	case token.LT_EQ:
		return object.NativeBoolToBooleanObject(l <= r), nil
	}
	return nil, object.NewRuntimeError(operator, "Unknown operator: %s", operator.Lexeme)
}

// evalLogicalExpression returns the deciding operand itself, not a boolean.
func (e *Evaluator) evalLogicalExpression(n *ast.Logical) (object.Object, error) {
	left, err := e.Eval(n.Left)
	if err != nil {
		return nil, err
	}

	if n.Operator.Type == token.OR {
		if object.IsTruthy(left) {
			return left, nil
		}
	} else if !object.IsTruthy(left) {
		return left, nil
	}

	return e.Eval(n.Right)
}

func (e *Evaluator) evalCallExpression(n *ast.Call) (object.Object, error) {
	callee, err := e.Eval(n.Callee)
	if err != nil {
		return nil, err
	}

	args := make([]object.Object, 0, len(n.Arguments))
	for _, arg := range n.Arguments {
		val, err := e.Eval(arg)
		if err != nil {
			return nil, err
		}
		args = append(args, val)
	}

	fn, ok := callee.(object.Callable)
	if !ok {
		return nil, object.NewRuntimeError(n.Paren, "Can only call functions and classes.")
	}
	if len(args) != fn.Arity() {
		return nil, object.NewRuntimeError(n.Paren, "Expected %d arguments but got %d.", fn.Arity(), len(args))
	}

	return e.applyFunction(fn, args, n.Paren)
}

func (e *Evaluator) applyFunction(fn object.Callable, args []object.Object, paren token.Token) (object.Object, error) {
	if e.depth >= MaxCallDepth {
		return nil, object.NewRuntimeError(paren, "Stack overflow.")
	}
	e.depth++
	defer func() { e.depth-- }()

	result, err := fn.Call(e, args)
	if err != nil {
		var re *object.RuntimeError
		if errors.As(err, &re) {
			re.AddFrame(calleeName(fn), paren.Line)
		}
		return nil, err
	}
	return result, nil
}

func calleeName(fn object.Callable) string {
	switch f := fn.(type) {
	case *object.Function:
		return f.Name()
	case *object.Class:
		return f.Name
	case *object.Native:
		return f.Name
	}
	return fn.Inspect()
}

func (e *Evaluator) evalSuperExpression(n *ast.Super) (object.Object, error) {
	hops, ok := n.Resolved()
	if !ok {
		return nil, object.NewRuntimeError(n.Keyword, "Can't use 'super' outside of a class.")
	}

	superclass, _ := e.CurrentEnv().GetAt(hops, "super").(*object.Class)
	instance, _ := e.CurrentEnv().GetAt(hops-1, "this").(*object.Instance)
	if superclass == nil || instance == nil {
		return nil, object.NewRuntimeError(n.Keyword, "Can't use 'super' outside of a class.")
	}

	method, ok := superclass.FindMethod(n.Method.Lexeme)
	if !ok {
		return nil, object.NewRuntimeError(n.Method, "Undefined property '%s'.", n.Method.Lexeme)
	}
	return method.Bind(instance), nil
}

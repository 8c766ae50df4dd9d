package resolver

import (
	"log/slog"
	"lox/internal/ast"
	"lox/internal/diag"
	"lox/internal/token"
)

type FunctionType int

const (
	FunctionNone FunctionType = iota
	FunctionPlain
	FunctionInitializer
	FunctionMethod
)

type ClassType int

const (
	ClassNone ClassType = iota
	ClassPlain
	ClassSubclass
)

// resolvable nodes get the distance to their binding scope written into them.
type resolvable interface {
	Resolve(hops int)
}

// Resolver is a single static pass over the program. It records, on each
// variable, `this` and `super` node, how many scopes separate it from its
// declaration, and reports misuse of return, this and super. Names it
// cannot find are left unresolved and treated as globals at runtime.
type Resolver struct {
	reporter diag.Reporter

	// innermost last; the value is false while a name is declared but its
	// initializer has not finished
	scopes []map[string]bool

	currentFunction FunctionType
	currentClass    ClassType
}

func New(reporter diag.Reporter) *Resolver {
	return &Resolver{reporter: reporter}
}

func (r *Resolver) ResolveProgram(program *ast.Program) {
	r.resolveStatements(program.Statements)
	slog.Debug("resolution done", slog.Int("statements", len(program.Statements)))
}

func (r *Resolver) resolveStatements(statements []ast.Statement) {
	for _, s := range statements {
		r.resolveStatement(s)
	}
}

func (r *Resolver) resolveStatement(stmt ast.Statement) {
	switch s := stmt.(type) {
	case *ast.BlockStatement:
		r.beginScope()
		r.resolveStatements(s.Statements)
		r.endScope()

	case *ast.VarStatement:
		r.declare(s.Name)
		if s.Initializer != nil {
			r.resolveExpression(s.Initializer)
		}
		r.define(s.Name)

	case *ast.FunctionStatement:
		// defined before the body so the function can call itself
		r.declare(s.Name)
		r.define(s.Name)
		r.resolveFunction(s, FunctionPlain)

	case *ast.ClassStatement:
		r.resolveClass(s)

	case *ast.ExpressionStatement:
		r.resolveExpression(s.Expression)

	case *ast.PrintStatement:
		r.resolveExpression(s.Expression)

	case *ast.IfStatement:
		r.resolveExpression(s.Condition)
		r.resolveStatement(s.Then)
		if s.Else != nil {
			r.resolveStatement(s.Else)
		}

	case *ast.WhileStatement:
		r.resolveExpression(s.Condition)
		r.resolveStatement(s.Body)

	case *ast.ReturnStatement:
		if r.currentFunction == FunctionNone {
			diag.ReportAt(r.reporter, s.Keyword, "Can't return from top-level code.")
		}
		if s.Value != nil {
			if r.currentFunction == FunctionInitializer {
				diag.ReportAt(r.reporter, s.Keyword, "Can't return a value from an initializer.")
			}
			r.resolveExpression(s.Value)
		}
	}
}

func (r *Resolver) resolveClass(s *ast.ClassStatement) {
	enclosingClass := r.currentClass
	r.currentClass = ClassPlain
	defer func() { r.currentClass = enclosingClass }()

	r.declare(s.Name)
	r.define(s.Name)

	if s.Superclass != nil {
		if s.Superclass.Name.Lexeme == s.Name.Lexeme {
			diag.ReportAt(r.reporter, s.Superclass.Name, "A class can't inherit from itself.")
		}
		r.currentClass = ClassSubclass
		r.resolveExpression(s.Superclass)

		r.beginScope()
		r.peek()["super"] = true
		defer r.endScope()
	}

	r.beginScope()
	r.peek()["this"] = true

	for _, method := range s.Methods {
		kind := FunctionMethod
		if method.Name.Lexeme == "init" {
			kind = FunctionInitializer
		}
		r.resolveFunction(method, kind)
	}

	r.endScope()
}

func (r *Resolver) resolveFunction(fn *ast.FunctionStatement, kind FunctionType) {
	enclosingFunction := r.currentFunction
	r.currentFunction = kind

	r.beginScope()
	for _, param := range fn.Params {
		r.declare(param)
		r.define(param)
	}
	r.resolveStatements(fn.Body)
	r.endScope()

	r.currentFunction = enclosingFunction
}

func (r *Resolver) resolveExpression(expr ast.Expression) {
	switch e := expr.(type) {
	case *ast.Variable:
		if len(r.scopes) > 0 {
			if initialized, ok := r.peek()[e.Name.Lexeme]; ok && !initialized {
				diag.ReportAt(r.reporter, e.Name, "Can't read local variable in its own initializer.")
			}
		}
		r.resolveLocal(e, e.Name)

	case *ast.Assign:
		r.resolveExpression(e.Value)
		r.resolveLocal(e, e.Name)

	case *ast.Binary:
		r.resolveExpression(e.Left)
		r.resolveExpression(e.Right)

	case *ast.Logical:
		r.resolveExpression(e.Left)
		r.resolveExpression(e.Right)

	case *ast.Unary:
		r.resolveExpression(e.Right)

	case *ast.Grouping:
		r.resolveExpression(e.Expression)

	case *ast.Call:
		r.resolveExpression(e.Callee)
		for _, arg := range e.Arguments {
			r.resolveExpression(arg)
		}

	case *ast.Get:
		r.resolveExpression(e.Object)

	case *ast.Set:
		r.resolveExpression(e.Value)
		r.resolveExpression(e.Object)

	case *ast.This:
		if r.currentClass == ClassNone {
			diag.ReportAt(r.reporter, e.Keyword, "Can't use 'this' outside of a class.")
			return
		}
		r.resolveLocal(e, e.Keyword)

	case *ast.Super:
		switch r.currentClass {
		case ClassNone:
			diag.ReportAt(r.reporter, e.Keyword, "Can't use 'super' outside of a class.")
			return
		case ClassPlain:
			diag.ReportAt(r.reporter, e.Keyword, "Can't use 'super' in a class with no superclass.")
			return
		}
		r.resolveLocal(e, e.Keyword)

	case *ast.Literal:
	}
}

// resolveLocal writes the distance from the innermost scope to the one
// declaring name. Names found in no scope stay global.
func (r *Resolver) resolveLocal(node resolvable, name token.Token) {
	for i := len(r.scopes) - 1; i >= 0; i-- {
		if _, ok := r.scopes[i][name.Lexeme]; ok {
			node.Resolve(len(r.scopes) - 1 - i)
			return
		}
	}
}

func (r *Resolver) declare(name token.Token) {
	if len(r.scopes) == 0 {
		return
	}
	scope := r.peek()
	if _, ok := scope[name.Lexeme]; ok {
		diag.ReportAt(r.reporter, name, "Already a variable with this name in this scope.")
	}
	scope[name.Lexeme] = false
}

func (r *Resolver) define(name token.Token) {
	if len(r.scopes) == 0 {
		return
	}
	r.peek()[name.Lexeme] = true
}

func (r *Resolver) beginScope() {
	r.scopes = append(r.scopes, make(map[string]bool))
}

func (r *Resolver) endScope() {
	r.scopes = r.scopes[:len(r.scopes)-1]
}

func (r *Resolver) peek() map[string]bool {
	return r.scopes[len(r.scopes)-1]
}

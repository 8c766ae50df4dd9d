package ast

import (
	"bytes"
	"lox/internal/token"
	"lox/internal/util"
	"strings"
)

// The base Node interface
type Node interface {
	TokenLiteral() string
	String() string
}

type Statement interface {
	Node
	statementNode()
}

type Expression interface {
	Node
	expressionNode()
}

// Resolution records where a name reference binds. The zero value means the
// reference was left unresolved and is looked up in the global scope.
type Resolution struct {
	Local bool
	Hops  int
}

func (r *Resolution) Resolve(hops int) {
	r.Local = true
	r.Hops = hops
}

func (r *Resolution) Resolved() (int, bool) {
	return r.Hops, r.Local
}

type Program struct {
	Statements []Statement
}

func (p *Program) TokenLiteral() string {
	if len(p.Statements) > 0 {
		return p.Statements[0].TokenLiteral()
	}
	return ""
}

func (p *Program) String() string {
	parts := make([]string, 0, len(p.Statements))
	for _, s := range p.Statements {
		parts = append(parts, s.String())
	}
	return strings.Join(parts, "\n")
}

// Print renders any node in fully parenthesized prefix form.
func Print(n Node) string {
	if n == nil {
		return ""
	}
	return n.String()
}

func parenthesize(name string, parts ...Node) string {
	var out bytes.Buffer
	out.WriteString("(")
	out.WriteString(name)
	for _, p := range parts {
		out.WriteString(" ")
		out.WriteString(p.String())
	}
	out.WriteString(")")
	return out.String()
}

// Expressions

type Literal struct {
	Token token.Token
	Value any // nil, bool, float64 or string
}

func (l *Literal) expressionNode()      {}
func (l *Literal) TokenLiteral() string { return l.Token.Lexeme }
func (l *Literal) String() string {
	switch v := l.Value.(type) {
	case nil:
		return "nil"
	case bool:
		if v {
			return "true"
		}
		return "false"
	case float64:
		return util.FormatNumber(v)
	case string:
		return v
	}
	return l.Token.Lexeme
}

type Variable struct {
	Name token.Token
	Resolution
}

func (v *Variable) expressionNode()      {}
func (v *Variable) TokenLiteral() string { return v.Name.Lexeme }
func (v *Variable) String() string       { return v.Name.Lexeme }

type Assign struct {
	Name  token.Token
	Value Expression
	Resolution
}

func (a *Assign) expressionNode()      {}
func (a *Assign) TokenLiteral() string { return a.Name.Lexeme }
func (a *Assign) String() string {
	return "(= " + a.Name.Lexeme + " " + a.Value.String() + ")"
}

type Unary struct {
	Operator token.Token
	Right    Expression
}

func (u *Unary) expressionNode()      {}
func (u *Unary) TokenLiteral() string { return u.Operator.Lexeme }
func (u *Unary) String() string       { return parenthesize(u.Operator.Lexeme, u.Right) }

type Binary struct {
	Left     Expression
	Operator token.Token
	Right    Expression
}

func (b *Binary) expressionNode()      {}
func (b *Binary) TokenLiteral() string { return b.Operator.Lexeme }
func (b *Binary) String() string       { return parenthesize(b.Operator.Lexeme, b.Left, b.Right) }

// Logical is a short-circuiting `and` / `or`.
type Logical struct {
	Left     Expression
	Operator token.Token
	Right    Expression
}

func (l *Logical) expressionNode()      {}
func (l *Logical) TokenLiteral() string { return l.Operator.Lexeme }
func (l *Logical) String() string       { return parenthesize(l.Operator.Lexeme, l.Left, l.Right) }

type Grouping struct {
	Token      token.Token // the '(' token
	Expression Expression
}

func (g *Grouping) expressionNode()      {}
func (g *Grouping) TokenLiteral() string { return g.Token.Lexeme }
func (g *Grouping) String() string       { return parenthesize("group", g.Expression) }

type Call struct {
	Callee    Expression
	Paren     token.Token // closing ')' used to locate runtime errors
	Arguments []Expression
}

func (c *Call) expressionNode()      {}
func (c *Call) TokenLiteral() string { return c.Paren.Lexeme }
func (c *Call) String() string {
	parts := make([]Node, 0, len(c.Arguments)+1)
	parts = append(parts, c.Callee)
	for _, a := range c.Arguments {
		parts = append(parts, a)
	}
	return parenthesize("call", parts...)
}

type Get struct {
	Object Expression
	Name   token.Token
}

func (g *Get) expressionNode()      {}
func (g *Get) TokenLiteral() string { return g.Name.Lexeme }
func (g *Get) String() string {
	return "(. " + g.Object.String() + " " + g.Name.Lexeme + ")"
}

type Set struct {
	Object Expression
	Name   token.Token
	Value  Expression
}

func (s *Set) expressionNode()      {}
func (s *Set) TokenLiteral() string { return s.Name.Lexeme }
func (s *Set) String() string {
	return "(= (. " + s.Object.String() + " " + s.Name.Lexeme + ") " + s.Value.String() + ")"
}

type This struct {
	Keyword token.Token
	Resolution
}

func (t *This) expressionNode()      {}
func (t *This) TokenLiteral() string { return t.Keyword.Lexeme }
func (t *This) String() string       { return "this" }

type Super struct {
	Keyword token.Token
	Method  token.Token
	Resolution
}

func (s *Super) expressionNode()      {}
func (s *Super) TokenLiteral() string { return s.Keyword.Lexeme }
func (s *Super) String() string       { return "(super " + s.Method.Lexeme + ")" }

// Statements

type ExpressionStatement struct {
	Token      token.Token // the first token of the expression
	Expression Expression
}

func (es *ExpressionStatement) statementNode()       {}
func (es *ExpressionStatement) TokenLiteral() string { return es.Token.Lexeme }
func (es *ExpressionStatement) String() string       { return parenthesize(";", es.Expression) }

type PrintStatement struct {
	Token      token.Token // the 'print' token
	Expression Expression
}

func (ps *PrintStatement) statementNode()       {}
func (ps *PrintStatement) TokenLiteral() string { return ps.Token.Lexeme }
func (ps *PrintStatement) String() string       { return parenthesize("print", ps.Expression) }

type VarStatement struct {
	Name        token.Token
	Initializer Expression // nil when absent
}

func (vs *VarStatement) statementNode()       {}
func (vs *VarStatement) TokenLiteral() string { return vs.Name.Lexeme }
func (vs *VarStatement) String() string {
	if vs.Initializer == nil {
		return "(var " + vs.Name.Lexeme + ")"
	}
	return "(var " + vs.Name.Lexeme + " " + vs.Initializer.String() + ")"
}

type BlockStatement struct {
	Token      token.Token // the '{' token
	Statements []Statement
}

func (bs *BlockStatement) statementNode()       {}
func (bs *BlockStatement) TokenLiteral() string { return bs.Token.Lexeme }
func (bs *BlockStatement) String() string {
	return parenthesize("block", statementNodes(bs.Statements)...)
}

type IfStatement struct {
	Token     token.Token
	Condition Expression
	Then      Statement
	Else      Statement // nil when absent
}

func (is *IfStatement) statementNode()       {}
func (is *IfStatement) TokenLiteral() string { return is.Token.Lexeme }
func (is *IfStatement) String() string {
	if is.Else == nil {
		return parenthesize("if", is.Condition, is.Then)
	}
	return parenthesize("if", is.Condition, is.Then, is.Else)
}

type WhileStatement struct {
	Token     token.Token
	Condition Expression
	Body      Statement
}

func (ws *WhileStatement) statementNode()       {}
func (ws *WhileStatement) TokenLiteral() string { return ws.Token.Lexeme }
func (ws *WhileStatement) String() string       { return parenthesize("while", ws.Condition, ws.Body) }

type FunctionStatement struct {
	Name   token.Token
	Params []token.Token
	Body   []Statement
}

func (fs *FunctionStatement) statementNode()       {}
func (fs *FunctionStatement) TokenLiteral() string { return fs.Name.Lexeme }
func (fs *FunctionStatement) String() string {
	var out bytes.Buffer

	params := make([]string, 0, len(fs.Params))
	for _, p := range fs.Params {
		params = append(params, p.Lexeme)
	}

	out.WriteString("(fun ")
	out.WriteString(fs.Name.Lexeme)
	out.WriteString(" (")
	out.WriteString(strings.Join(params, " "))
	out.WriteString(")")
	for _, s := range fs.Body {
		out.WriteString(" ")
		out.WriteString(s.String())
	}
	out.WriteString(")")

	return out.String()
}

type ReturnStatement struct {
	Keyword token.Token
	Value   Expression // nil when absent
}

func (rs *ReturnStatement) statementNode()       {}
func (rs *ReturnStatement) TokenLiteral() string { return rs.Keyword.Lexeme }
func (rs *ReturnStatement) String() string {
	if rs.Value == nil {
		return "(return)"
	}
	return parenthesize("return", rs.Value)
}

type ClassStatement struct {
	Name       token.Token
	Superclass *Variable // nil when absent
	Methods    []*FunctionStatement
}

func (cs *ClassStatement) statementNode()       {}
func (cs *ClassStatement) TokenLiteral() string { return cs.Name.Lexeme }
func (cs *ClassStatement) String() string {
	var out bytes.Buffer

	out.WriteString("(class ")
	out.WriteString(cs.Name.Lexeme)
	if cs.Superclass != nil {
		out.WriteString(" < ")
		out.WriteString(cs.Superclass.String())
	}
	for _, m := range cs.Methods {
		out.WriteString(" ")
		out.WriteString(m.String())
	}
	out.WriteString(")")

	return out.String()
}

func statementNodes(stmts []Statement) []Node {
	nodes := make([]Node, 0, len(stmts))
	for _, s := range stmts {
		nodes = append(nodes, s)
	}
	return nodes
}

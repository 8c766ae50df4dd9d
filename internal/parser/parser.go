package parser

import (
	"fmt"
	"log/slog"
	"lox/internal/ast"
	"lox/internal/diag"
	"lox/internal/lexer"
	"lox/internal/token"
)

// MaxArgs bounds both parameter and argument lists.
const MaxArgs = 255

const (
	_           int = iota
	LOWEST          // lower than any operator
	ASSIGNMENT      // =
	LOGICAL_OR      // or
	LOGICAL_AND     // and
	EQUALS          // == or !=
	COMPARISON      // > >= < <=
	SUM             // + or -
	PRODUCT         // * or /
	PREFIX          // -X or !X
	CALL            // myFunction(X) or obj.field
)

var precedences = map[token.TokenType]int{
	token.ASSIGN:   ASSIGNMENT,
	token.OR:       LOGICAL_OR,
	token.AND:      LOGICAL_AND,
	token.EQ:       EQUALS,
	token.NOT_EQ:   EQUALS,
	token.LT:       COMPARISON,
	token.LT_EQ:    COMPARISON,
	token.GT:       COMPARISON,
	token.GT_EQ:    COMPARISON,
	token.PLUS:     SUM,
	token.MINUS:    SUM,
	token.SLASH:    PRODUCT,
	token.ASTERISK: PRODUCT,
	token.LPAREN:   CALL,
	token.PERIOD:   CALL,
}

// statement-starting keywords used to resynchronize after a syntax error
var statementStart = map[token.TokenType]bool{
	token.CLASS:  true,
	token.FUN:    true,
	token.VAR:    true,
	token.FOR:    true,
	token.IF:     true,
	token.WHILE:  true,
	token.PRINT:  true,
	token.RETURN: true,
}

type (
	prefixParseFn func() ast.Expression
	infixParseFn  func(ast.Expression) ast.Expression
)

type Parser struct {
	l        *lexer.Lexer
	reporter diag.Reporter
	errors   []string

	// set by a syntax error, cleared once the parser has resynchronized
	panicking bool

	curToken  token.Token
	peekToken token.Token

	prefixParseFns map[token.TokenType]prefixParseFn
	infixParseFns  map[token.TokenType]infixParseFn
}

func New(l *lexer.Lexer, reporter diag.Reporter) *Parser {
	p := &Parser{
		l:        l,
		reporter: reporter,
		errors:   []string{},
	}

	p.prefixParseFns = make(map[token.TokenType]prefixParseFn)
	p.registerPrefix(token.NIL, p.parseLiteral)
	p.registerPrefix(token.TRUE, p.parseLiteral)
	p.registerPrefix(token.FALSE, p.parseLiteral)
	p.registerPrefix(token.NUMBER, p.parseLiteral)
	p.registerPrefix(token.STRING, p.parseLiteral)
	p.registerPrefix(token.IDENT, p.parseVariable)
	p.registerPrefix(token.THIS, p.parseThis)
	p.registerPrefix(token.SUPER, p.parseSuper)
	p.registerPrefix(token.BANG, p.parsePrefixExpression)
	p.registerPrefix(token.MINUS, p.parsePrefixExpression)
	p.registerPrefix(token.LPAREN, p.parseGroupedExpression)

	p.infixParseFns = make(map[token.TokenType]infixParseFn)
	p.registerInfix(token.PLUS, p.parseInfixExpression)
	p.registerInfix(token.MINUS, p.parseInfixExpression)
	p.registerInfix(token.SLASH, p.parseInfixExpression)
	p.registerInfix(token.ASTERISK, p.parseInfixExpression)
	p.registerInfix(token.EQ, p.parseInfixExpression)
	p.registerInfix(token.NOT_EQ, p.parseInfixExpression)
	p.registerInfix(token.LT, p.parseInfixExpression)
	p.registerInfix(token.LT_EQ, p.parseInfixExpression)
	p.registerInfix(token.GT, p.parseInfixExpression)
	p.registerInfix(token.GT_EQ, p.parseInfixExpression)
	p.registerInfix(token.AND, p.parseLogicalExpression)
	p.registerInfix(token.OR, p.parseLogicalExpression)
	p.registerInfix(token.ASSIGN, p.parseAssignmentExpression)
	p.registerInfix(token.LPAREN, p.parseCallExpression)
	p.registerInfix(token.PERIOD, p.parseGetExpression)

	// Read two tokens, so curToken and peekToken are both set
	p.nextToken()
	p.nextToken()

	return p
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	if p.curToken.Type == token.EOF {
		// the lexer keeps returning EOF; avoid asking past it
		return
	}
	p.peekToken = p.l.NextToken()
}

func (p *Parser) curTokenIs(t token.TokenType) bool {
	return p.curToken.Type == t
}

func (p *Parser) peekTokenIs(t token.TokenType) bool {
	return p.peekToken.Type == t
}

// report records a syntax error without entering recovery.
func (p *Parser) report(tok token.Token, message string) {
	p.errors = append(p.errors, fmt.Sprintf("[line %d] Error%s: %s", tok.Line, diag.Where(tok), message))
	diag.ReportAt(p.reporter, tok, message)
}

// errorAt records a syntax error and abandons the current declaration.
// Errors raised while already recovering are dropped.
func (p *Parser) errorAt(tok token.Token, message string) {
	if p.panicking {
		return
	}
	p.panicking = true
	p.report(tok, message)
}

func (p *Parser) expectPeek(t token.TokenType, message string) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	}
	p.errorAt(p.peekToken, message)
	return false
}

// Errors returns the formatted syntax errors in the order they were found.
func (p *Parser) Errors() []string {
	return p.errors
}

func (p *Parser) ParseProgram() *ast.Program {
	program := &ast.Program{}
	program.Statements = []ast.Statement{}

	for !p.curTokenIs(token.EOF) {
		stmt := p.parseDeclaration()
		if stmt != nil {
			program.Statements = append(program.Statements, stmt)
		}
		p.nextToken()
	}

	slog.Debug("parsed program",
		slog.Int("statements", len(program.Statements)),
		slog.Int("errors", len(p.errors)))
	return program
}

// synchronize skips tokens until curToken ends a statement or peekToken
// starts one, so the caller's nextToken lands on a fresh statement.
func (p *Parser) synchronize() {
	p.panicking = false
	for !p.curTokenIs(token.EOF) {
		if p.curTokenIs(token.SEMICOLON) || statementStart[p.peekToken.Type] || p.peekTokenIs(token.EOF) {
			return
		}
		p.nextToken()
	}
}

func (p *Parser) parseDeclaration() ast.Statement {
	var stmt ast.Statement
	switch p.curToken.Type {
	case token.CLASS:
		if class := p.parseClassStatement(); class != nil {
			stmt = class
		}
	case token.FUN:
		if fn := p.parseFunStatement(); fn != nil {
			stmt = fn
		}
	case token.VAR:
		if v := p.parseVarStatement(); v != nil {
			stmt = v
		}
	default:
		stmt = p.parseStatement()
	}

	if p.panicking {
		p.synchronize()
		return nil
	}
	return stmt
}

func (p *Parser) parseStatement() ast.Statement {
	switch p.curToken.Type {
	case token.FOR:
		return p.parseForStatement()
	case token.IF:
		return p.parseIfStatement()
	case token.PRINT:
		return p.parsePrintStatement()
	case token.RETURN:
		return p.parseReturnStatement()
	case token.WHILE:
		return p.parseWhileStatement()
	case token.LBRACE:
		tok := p.curToken
		statements := p.parseBlock()
		if statements == nil {
			return nil
		}
		return &ast.BlockStatement{Token: tok, Statements: statements}
	default:
		if stmt := p.parseExpressionStatement(); stmt != nil {
			return stmt
		}
		return nil
	}
}

func (p *Parser) parseClassStatement() *ast.ClassStatement {
	if !p.expectPeek(token.IDENT, "Expect class name.") {
		return nil
	}
	stmt := &ast.ClassStatement{Name: p.curToken}

	if p.peekTokenIs(token.LT) {
		p.nextToken()
		if !p.expectPeek(token.IDENT, "Expect superclass name.") {
			return nil
		}
		stmt.Superclass = &ast.Variable{Name: p.curToken}
	}

	if !p.expectPeek(token.LBRACE, "Expect '{' before class body.") {
		return nil
	}

	stmt.Methods = []*ast.FunctionStatement{}
	for !p.peekTokenIs(token.RBRACE) && !p.peekTokenIs(token.EOF) {
		if !p.expectPeek(token.IDENT, "Expect method name.") {
			return nil
		}
		method := p.parseFunction("method")
		if method == nil {
			return nil
		}
		stmt.Methods = append(stmt.Methods, method)
	}

	if !p.expectPeek(token.RBRACE, "Expect '}' after class body.") {
		return nil
	}
	return stmt
}

func (p *Parser) parseFunStatement() *ast.FunctionStatement {
	if !p.expectPeek(token.IDENT, "Expect function name.") {
		return nil
	}
	return p.parseFunction("function")
}

// parseFunction parses parameters and body; curToken is the name.
func (p *Parser) parseFunction(kind string) *ast.FunctionStatement {
	fn := &ast.FunctionStatement{Name: p.curToken}

	if !p.expectPeek(token.LPAREN, "Expect '(' after "+kind+" name.") {
		return nil
	}

	fn.Params = p.parseFunctionParameters()
	if fn.Params == nil {
		return nil
	}

	if !p.expectPeek(token.LBRACE, "Expect '{' before "+kind+" body.") {
		return nil
	}

	fn.Body = p.parseBlock()
	if fn.Body == nil {
		return nil
	}
	return fn
}

func (p *Parser) parseFunctionParameters() []token.Token {
	parameters := []token.Token{}

	if !p.peekTokenIs(token.RPAREN) {
		for {
			if len(parameters) >= MaxArgs {
				p.report(p.peekToken, fmt.Sprintf("Can't have more than %d parameters.", MaxArgs))
			}
			if !p.expectPeek(token.IDENT, "Expect parameter name.") {
				return nil
			}
			parameters = append(parameters, p.curToken)

			if !p.peekTokenIs(token.COMMA) {
				break
			}
			p.nextToken() // consume comma
		}
	}

	if !p.expectPeek(token.RPAREN, "Expect ')' after parameters.") {
		return nil
	}
	return parameters
}

func (p *Parser) parseVarStatement() *ast.VarStatement {
	if !p.expectPeek(token.IDENT, "Expect variable name.") {
		return nil
	}
	stmt := &ast.VarStatement{Name: p.curToken}

	if p.peekTokenIs(token.ASSIGN) {
		p.nextToken()
		p.nextToken()
		stmt.Initializer = p.parseExpression(LOWEST)
		if stmt.Initializer == nil {
			return nil
		}
	}

	if !p.expectPeek(token.SEMICOLON, "Expect ';' after variable declaration.") {
		return nil
	}
	return stmt
}

// parseForStatement desugars `for (init; cond; incr) body` into
// `{ init; while (cond) { body; incr; } }`.
func (p *Parser) parseForStatement() ast.Statement {
	forTok := p.curToken

	if !p.expectPeek(token.LPAREN, "Expect '(' after 'for'.") {
		return nil
	}
	p.nextToken()

	var initializer ast.Statement
	switch p.curToken.Type {
	case token.SEMICOLON:
	case token.VAR:
		if init := p.parseVarStatement(); init != nil {
			initializer = init
		} else {
			return nil
		}
	default:
		if init := p.parseExpressionStatement(); init != nil {
			initializer = init
		} else {
			return nil
		}
	}

	var condition ast.Expression
	if !p.peekTokenIs(token.SEMICOLON) {
		p.nextToken()
		if condition = p.parseExpression(LOWEST); condition == nil {
			return nil
		}
	}
	if !p.expectPeek(token.SEMICOLON, "Expect ';' after loop condition.") {
		return nil
	}

	var increment ast.Expression
	if !p.peekTokenIs(token.RPAREN) {
		p.nextToken()
		if increment = p.parseExpression(LOWEST); increment == nil {
			return nil
		}
	}
	if !p.expectPeek(token.RPAREN, "Expect ')' after for clauses.") {
		return nil
	}
	p.nextToken()

	body := p.parseStatement()
	if body == nil {
		return nil
	}

	if increment != nil {
		body = &ast.BlockStatement{
			Token: forTok,
			Statements: []ast.Statement{
				body,
				&ast.ExpressionStatement{Token: forTok, Expression: increment},
			},
		}
	}
	if condition == nil {
		condition = &ast.Literal{Token: forTok, Value: true}
	}
	var loop ast.Statement = &ast.WhileStatement{Token: forTok, Condition: condition, Body: body}

	if initializer != nil {
		loop = &ast.BlockStatement{Token: forTok, Statements: []ast.Statement{initializer, loop}}
	}
	return loop
}

func (p *Parser) parseIfStatement() ast.Statement {
	stmt := &ast.IfStatement{Token: p.curToken}

	if !p.expectPeek(token.LPAREN, "Expect '(' after 'if'.") {
		return nil
	}
	p.nextToken()
	if stmt.Condition = p.parseExpression(LOWEST); stmt.Condition == nil {
		return nil
	}
	if !p.expectPeek(token.RPAREN, "Expect ')' after if condition.") {
		return nil
	}

	p.nextToken()
	if stmt.Then = p.parseStatement(); stmt.Then == nil {
		return nil
	}

	if p.peekTokenIs(token.ELSE) {
		p.nextToken()
		p.nextToken()
		if stmt.Else = p.parseStatement(); stmt.Else == nil {
			return nil
		}
	}
	return stmt
}

func (p *Parser) parsePrintStatement() ast.Statement {
	stmt := &ast.PrintStatement{Token: p.curToken}

	p.nextToken()
	if stmt.Expression = p.parseExpression(LOWEST); stmt.Expression == nil {
		return nil
	}
	if !p.expectPeek(token.SEMICOLON, "Expect ';' after value.") {
		return nil
	}
	return stmt
}

func (p *Parser) parseReturnStatement() ast.Statement {
	stmt := &ast.ReturnStatement{Keyword: p.curToken}

	if !p.peekTokenIs(token.SEMICOLON) {
		p.nextToken()
		if stmt.Value = p.parseExpression(LOWEST); stmt.Value == nil {
			return nil
		}
	}
	if !p.expectPeek(token.SEMICOLON, "Expect ';' after return value.") {
		return nil
	}
	return stmt
}

func (p *Parser) parseWhileStatement() ast.Statement {
	stmt := &ast.WhileStatement{Token: p.curToken}

	if !p.expectPeek(token.LPAREN, "Expect '(' after 'while'.") {
		return nil
	}
	p.nextToken()
	if stmt.Condition = p.parseExpression(LOWEST); stmt.Condition == nil {
		return nil
	}
	if !p.expectPeek(token.RPAREN, "Expect ')' after condition.") {
		return nil
	}

	p.nextToken()
	if stmt.Body = p.parseStatement(); stmt.Body == nil {
		return nil
	}
	return stmt
}

// parseBlock parses declarations up to the matching '}'; curToken is the '{'.
// Declarations that fail are recovered from individually.
func (p *Parser) parseBlock() []ast.Statement {
	statements := []ast.Statement{}

	for !p.peekTokenIs(token.RBRACE) && !p.peekTokenIs(token.EOF) {
		p.nextToken()
		if stmt := p.parseDeclaration(); stmt != nil {
			statements = append(statements, stmt)
		}
	}

	if !p.expectPeek(token.RBRACE, "Expect '}' after block.") {
		return nil
	}
	return statements
}

func (p *Parser) parseExpressionStatement() *ast.ExpressionStatement {
	stmt := &ast.ExpressionStatement{Token: p.curToken}

	if stmt.Expression = p.parseExpression(LOWEST); stmt.Expression == nil {
		return nil
	}
	if !p.expectPeek(token.SEMICOLON, "Expect ';' after expression.") {
		return nil
	}
	return stmt
}

func (p *Parser) parseExpression(precedence int) ast.Expression {
	prefix := p.prefixParseFns[p.curToken.Type]
	if prefix == nil {
		p.errorAt(p.curToken, "Expect expression.")
		return nil
	}
	leftExp := prefix()

	for leftExp != nil && !p.peekTokenIs(token.SEMICOLON) && precedence < p.peekPrecedence() {
		infix := p.infixParseFns[p.peekToken.Type]
		if infix == nil {
			return leftExp
		}

		p.nextToken()

		leftExp = infix(leftExp)
	}

	return leftExp
}

func (p *Parser) peekPrecedence() int {
	if p, ok := precedences[p.peekToken.Type]; ok {
		return p
	}

	return LOWEST
}

func (p *Parser) curPrecedence() int {
	if p, ok := precedences[p.curToken.Type]; ok {
		return p
	}

	return LOWEST
}

func (p *Parser) parseLiteral() ast.Expression {
	lit := &ast.Literal{Token: p.curToken}
	switch p.curToken.Type {
	case token.TRUE:
		lit.Value = true
	case token.FALSE:
		lit.Value = false
	case token.NUMBER, token.STRING:
		lit.Value = p.curToken.Literal
	}
	return lit
}

func (p *Parser) parseVariable() ast.Expression {
	return &ast.Variable{Name: p.curToken}
}

func (p *Parser) parseThis() ast.Expression {
	return &ast.This{Keyword: p.curToken}
}

func (p *Parser) parseSuper() ast.Expression {
	expr := &ast.Super{Keyword: p.curToken}
	if !p.expectPeek(token.PERIOD, "Expect '.' after 'super'.") {
		return nil
	}
	if !p.expectPeek(token.IDENT, "Expect superclass method name.") {
		return nil
	}
	expr.Method = p.curToken
	return expr
}

func (p *Parser) parsePrefixExpression() ast.Expression {
	expression := &ast.Unary{Operator: p.curToken}

	p.nextToken()

	if expression.Right = p.parseExpression(PREFIX); expression.Right == nil {
		return nil
	}
	return expression
}

func (p *Parser) parseGroupedExpression() ast.Expression {
	group := &ast.Grouping{Token: p.curToken}

	p.nextToken()

	if group.Expression = p.parseExpression(LOWEST); group.Expression == nil {
		return nil
	}
	if !p.expectPeek(token.RPAREN, "Expect ')' after expression.") {
		return nil
	}
	return group
}

func (p *Parser) parseInfixExpression(left ast.Expression) ast.Expression {
	expression := &ast.Binary{
		Left:     left,
		Operator: p.curToken,
	}

	precedence := p.curPrecedence()
	p.nextToken()

	if expression.Right = p.parseExpression(precedence); expression.Right == nil {
		return nil
	}
	return expression
}

func (p *Parser) parseLogicalExpression(left ast.Expression) ast.Expression {
	expression := &ast.Logical{
		Left:     left,
		Operator: p.curToken,
	}

	precedence := p.curPrecedence()
	p.nextToken()

	if expression.Right = p.parseExpression(precedence); expression.Right == nil {
		return nil
	}
	return expression
}

// parseAssignmentExpression is right-associative. An invalid target is
// reported but parsing carries on with the left-hand side.
func (p *Parser) parseAssignmentExpression(left ast.Expression) ast.Expression {
	equals := p.curToken

	p.nextToken()
	value := p.parseExpression(ASSIGNMENT - 1)
	if value == nil {
		return nil
	}

	switch target := left.(type) {
	case *ast.Variable:
		return &ast.Assign{Name: target.Name, Value: value}
	case *ast.Get:
		return &ast.Set{Object: target.Object, Name: target.Name, Value: value}
	}

	p.report(equals, "Invalid assignment target.")
	return left
}

func (p *Parser) parseCallExpression(callee ast.Expression) ast.Expression {
	call := &ast.Call{Callee: callee, Arguments: []ast.Expression{}}

	if !p.peekTokenIs(token.RPAREN) {
		p.nextToken()
		for {
			if len(call.Arguments) >= MaxArgs {
				p.report(p.curToken, fmt.Sprintf("Can't have more than %d arguments.", MaxArgs))
			}
			arg := p.parseExpression(LOWEST)
			if arg == nil {
				return nil
			}
			call.Arguments = append(call.Arguments, arg)

			if !p.peekTokenIs(token.COMMA) {
				break
			}
			p.nextToken() // consume comma
			p.nextToken()
		}
	}

	if !p.expectPeek(token.RPAREN, "Expect ')' after arguments.") {
		return nil
	}
	call.Paren = p.curToken
	return call
}

func (p *Parser) parseGetExpression(object ast.Expression) ast.Expression {
	if !p.expectPeek(token.IDENT, "Expect property name after '.'.") {
		return nil
	}
	return &ast.Get{Object: object, Name: p.curToken}
}

func (p *Parser) registerPrefix(tokenType token.TokenType, fn prefixParseFn) {
	p.prefixParseFns[tokenType] = fn
}

func (p *Parser) registerInfix(tokenType token.TokenType, fn infixParseFn) {
	p.infixParseFns[tokenType] = fn
}

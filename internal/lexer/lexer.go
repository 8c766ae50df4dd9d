package lexer

import (
	"log/slog"
	"lox/internal/diag"
	"lox/internal/token"
	"strconv"
	"unicode"
	"unicode/utf8"
)

type Lexer struct {
	input        string
	position     int  // current byte position in input (points to start of current rune)
	readPosition int  // next byte position in input (start of next rune)
	ch           rune // current rune under examination; see atEnd for end of input
	line         int

	reporter diag.Reporter
}

func New(input string, reporter diag.Reporter) *Lexer {
	l := &Lexer{input: input, line: 1, reporter: reporter}
	l.readChar()
	return l
}

// Tokens scans the whole input. The result always ends with a single EOF.
func (l *Lexer) Tokens() []token.Token {
	tokens := make([]token.Token, 0, len(l.input)/4+1)
	for {
		tok := l.NextToken()
		tokens = append(tokens, tok)
		if tok.Type == token.EOF {
			break
		}
	}
	slog.Debug("scanned tokens", slog.Int("count", len(tokens)))
	return tokens
}

// NextToken returns the next valid token, reporting and skipping anything
// that cannot start one.
func (l *Lexer) NextToken() token.Token {
	for {
		l.skipWhitespace()
		if tok, ok := l.scanToken(); ok {
			return tok
		}
	}
}

func (l *Lexer) scanToken() (token.Token, bool) {
	start := l.position
	if l.atEnd() {
		return token.Token{Type: token.EOF, Line: l.line}, true
	}

	switch l.ch {
	case '(':
		return l.single(token.LPAREN), true
	case ')':
		return l.single(token.RPAREN), true
	case '{':
		return l.single(token.LBRACE), true
	case '}':
		return l.single(token.RBRACE), true
	case ',':
		return l.single(token.COMMA), true
	case '.':
		return l.single(token.PERIOD), true
	case '-':
		return l.single(token.MINUS), true
	case '+':
		return l.single(token.PLUS), true
	case ';':
		return l.single(token.SEMICOLON), true
	case '*':
		return l.single(token.ASTERISK), true
	case '/':
		return l.single(token.SLASH), true
	case '!':
		return l.handleCompoundToken(token.BANG, '=', token.NOT_EQ), true
	case '=':
		return l.handleCompoundToken(token.ASSIGN, '=', token.EQ), true
	case '<':
		return l.handleCompoundToken(token.LT, '=', token.LT_EQ), true
	case '>':
		return l.handleCompoundToken(token.GT, '=', token.GT_EQ), true
	case '"':
		return l.readString()
	}

	if isDigit(l.ch) {
		return l.readNumber(), true
	}
	if isLetter(l.ch) {
		ident := l.readIdentifier()
		return token.Token{Type: token.LookupIdent(ident), Lexeme: ident, Line: l.line}, true
	}

	l.reporter.Report(l.line, "", "Unexpected character.")
	slog.Debug("unexpected character",
		slog.Int("line", l.line),
		slog.String("char", l.input[start:l.readPosition]))
	l.readChar()
	return token.Token{}, false
}

// single consumes the current rune as a one-character token.
func (l *Lexer) single(t token.TokenType) token.Token {
	tok := token.Token{Type: t, Lexeme: string(l.ch), Line: l.line}
	l.readChar()
	return tok
}

func (l *Lexer) handleCompoundToken(t token.TokenType, ch1 rune, t1 token.TokenType) token.Token {
	if l.peekChar() == ch1 {
		first := l.ch
		l.readChar()
		lexeme := string(first) + string(l.ch)
		l.readChar()
		return token.Token{Type: t1, Lexeme: lexeme, Line: l.line}
	}
	return l.single(t)
}

func (l *Lexer) skipWhitespace() {
	for {
		switch l.ch {
		case ' ', '\t', '\r', '\n':
			l.readChar()
		case '/':
			if l.peekChar() == '/' {
				l.skipToLineEnd()
			} else {
				return
			}
		default:
			return
		}
	}
}

func (l *Lexer) skipToLineEnd() {
	for l.ch != '\n' && !l.atEnd() {
		l.readChar()
	}
}

// readChar advances by one UTF-8 rune, counting lines as newlines are left behind.
func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
	}
	if l.readPosition >= len(l.input) {
		l.ch = 0
		l.position = l.readPosition
		return
	}
	r, size := utf8.DecodeRuneInString(l.input[l.readPosition:])
	l.ch = r
	l.position = l.readPosition
	l.readPosition += size
}

// atEnd is decided by position, so a NUL byte in the input is an ordinary rune.
func (l *Lexer) atEnd() bool {
	return l.position >= len(l.input)
}

// peekChar returns the next rune without advancing; returns 0 at EOF
func (l *Lexer) peekChar() rune {
	if l.readPosition >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPosition:])
	return r
}

// readString consumes a double-quoted string. Strings may span lines and
// have no escape sequences.
func (l *Lexer) readString() (token.Token, bool) {
	start := l.position
	l.readChar() // opening "
	for l.ch != '"' && !l.atEnd() {
		l.readChar()
	}
	if l.atEnd() {
		l.reporter.Report(l.line, "", "Unterminated string.")
		return token.Token{}, false
	}
	l.readChar() // closing "

	lexeme := l.input[start:l.position]
	return token.Token{
		Type:    token.STRING,
		Lexeme:  lexeme,
		Literal: lexeme[1 : len(lexeme)-1],
		Line:    l.line,
	}, true
}

func (l *Lexer) readIdentifier() string {
	start := l.position
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	return l.input[start:l.position]
}

// readNumber reads digits with an optional fractional part. A trailing '.'
// without digits after it is left for the next token.
func (l *Lexer) readNumber() token.Token {
	start := l.position
	for isDigit(l.ch) {
		l.readChar()
	}
	if l.ch == '.' && isDigit(l.peekChar()) {
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	lexeme := l.input[start:l.position]
	// literals beyond float64 range become +Inf, the same as overflowing arithmetic
	value, _ := strconv.ParseFloat(lexeme, 64)
	return token.Token{Type: token.NUMBER, Lexeme: lexeme, Literal: value, Line: l.line}
}

func isLetter(ch rune) bool {
	return ch == '_' || unicode.IsLetter(ch)
}

func isDigit(ch rune) bool {
	return '0' <= ch && ch <= '9'
}

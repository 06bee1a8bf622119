// Copyright (c) 2022, The GoKi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package lexer turns NESTML source bytes into a token stream. The
// grammar is block-structured and indentation-insensitive: blocks
// open with a keyword and close with an explicit "end", so unlike Python
// the lexer never tracks indentation level or emits synthetic
// INDENT/DEDENT tokens - whitespace (other than separating tokens) is
// simply skipped.
package lexer

import (
	"fmt"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/emer/nestml/internal/token"
)

// Lexer scans one source file into tokens on demand.
type Lexer struct {
	filename string
	src      []byte
	offset   int
	line     int
	col      int
	Errors   []Error
}

// Error is a lexical diagnostic.
type Error struct {
	Pos token.Position
	Msg string
}

// New creates a Lexer over src. Source text is NFC-normalized first so
// that unit symbols and identifiers compare byte-for-byte in the symbol
// table and unit tables regardless of the input encoding form.
func New(filename string, src []byte) *Lexer {
	return &Lexer{filename: filename, src: norm.NFC.Bytes(src), line: 1, col: 1}
}

func (l *Lexer) pos() token.Position {
	return token.Position{Filename: l.filename, Line: l.line, Col: l.col}
}

func (l *Lexer) errorf(pos token.Position, format string, args ...any) {
	l.Errors = append(l.Errors, Error{Pos: pos, Msg: fmt.Sprintf(format, args...)})
}

func (l *Lexer) peekByte() byte {
	if l.offset >= len(l.src) {
		return 0
	}
	return l.src[l.offset]
}

func (l *Lexer) peekByteAt(n int) byte {
	if l.offset+n >= len(l.src) {
		return 0
	}
	return l.src[l.offset+n]
}

func (l *Lexer) advance() byte {
	if l.offset >= len(l.src) {
		return 0
	}
	b := l.src[l.offset]
	l.offset++
	if b == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return b
}

// skipSpaceAndComments consumes spaces, tabs, carriage returns, and '#'
// line comments. Newlines ARE significant (NESTML statements are
// newline-terminated within a block) so they are returned to the caller as
// NEWLINE tokens rather than skipped here.
func (l *Lexer) skipSpaceAndComments() {
	for {
		switch l.peekByte() {
		case ' ', '\t', '\r':
			l.advance()
		case '#':
			for l.peekByte() != '\n' && l.peekByte() != 0 {
				l.advance()
			}
		default:
			return
		}
	}
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentCont(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// Next scans and returns the next token. At end of input it returns an
// EOF token forever.
func (l *Lexer) Next() token.Token {
	l.skipSpaceAndComments()
	startPos := l.pos()

	b := l.peekByte()
	switch {
	case b == 0:
		return token.Token{Kind: token.EOF, Pos: startPos}
	case b == '\n':
		l.advance()
		return token.Token{Kind: token.NEWLINE, Literal: "\n", Pos: startPos}
	case b >= '0' && b <= '9':
		return l.scanNumber(startPos)
	case b == '"':
		return l.scanString(startPos)
	case isIdentStart(rune(b)) || b >= utf8.RuneSelf:
		return l.scanIdent(startPos)
	default:
		return l.scanOperator(startPos)
	}
}

func (l *Lexer) scanNumber(pos token.Position) token.Token {
	start := l.offset
	isFloat := false
	for isDigit(l.peekByte()) {
		l.advance()
	}
	if l.peekByte() == '.' && isDigit(l.peekByteAt(1)) {
		isFloat = true
		l.advance()
		for isDigit(l.peekByte()) {
			l.advance()
		}
	}
	if l.peekByte() == 'e' || l.peekByte() == 'E' {
		save := l.offset
		saveLine, saveCol := l.line, l.col
		l.advance()
		if l.peekByte() == '+' || l.peekByte() == '-' {
			l.advance()
		}
		if isDigit(l.peekByte()) {
			isFloat = true
			for isDigit(l.peekByte()) {
				l.advance()
			}
		} else {
			l.offset, l.line, l.col = save, saveLine, saveCol
		}
	}
	lit := string(l.src[start:l.offset])
	kind := token.INT
	if isFloat {
		kind = token.FLOAT
	}
	return token.Token{Kind: kind, Literal: lit, Pos: pos}
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func (l *Lexer) scanString(pos token.Position) token.Token {
	l.advance() // opening quote
	start := l.offset
	for l.peekByte() != '"' && l.peekByte() != 0 && l.peekByte() != '\n' {
		l.advance()
	}
	lit := string(l.src[start:l.offset])
	if l.peekByte() == '"' {
		l.advance()
	} else {
		l.errorf(pos, "unterminated string literal")
	}
	return token.Token{Kind: token.STRING, Literal: lit, Pos: pos}
}

func (l *Lexer) scanIdent(pos token.Position) token.Token {
	start := l.offset
	for {
		r, size := utf8.DecodeRune(l.src[l.offset:])
		if !isIdentCont(r) {
			break
		}
		for i := 0; i < size; i++ {
			l.advance()
		}
	}
	// trailing prime(s) denote a differential quotient and are their own
	// token so the parser can see "x" then PRIME then PRIME for x''.
	lit := string(l.src[start:l.offset])
	return token.Token{Kind: token.Lookup(lit), Literal: lit, Pos: pos}
}

func (l *Lexer) scanOperator(pos token.Position) token.Token {
	b := l.advance()
	two := func(next byte, k2 token.Kind, k1 token.Kind) token.Token {
		if l.peekByte() == next {
			l.advance()
			return token.Token{Kind: k2, Literal: string(b) + string(next), Pos: pos}
		}
		return token.Token{Kind: k1, Literal: string(b), Pos: pos}
	}
	switch b {
	case '=':
		return two('=', token.EQ, token.ASSIGN)
	case '+':
		return two('=', token.PLUS_EQ, token.PLUS)
	case '-':
		if l.peekByte() == '>' {
			// not used in NESTML grammar today, but tokenized rather than
			// rejected so the parser can give a clear diagnostic
			l.advance()
			return token.Token{Kind: token.ILLEGAL, Literal: "->", Pos: pos}
		}
		return two('=', token.MINUS_EQ, token.MINUS)
	case '*':
		if l.peekByte() == '*' {
			l.advance()
			return token.Token{Kind: token.POW, Literal: "**", Pos: pos}
		}
		return two('=', token.STAR_EQ, token.STAR)
	case '/':
		return two('=', token.SLASH_EQ, token.SLASH)
	case '%':
		return token.Token{Kind: token.PERCENT, Literal: "%", Pos: pos}
	case '<':
		if l.peekByte() == '-' {
			l.advance()
			return token.Token{Kind: token.ARROW, Literal: "<-", Pos: pos}
		}
		return two('=', token.LE, token.LT)
	case '>':
		return two('=', token.GE, token.GT)
	case '!':
		if l.peekByte() == '=' {
			l.advance()
			return token.Token{Kind: token.NE, Literal: "!=", Pos: pos}
		}
		l.errorf(pos, "unexpected character %q", b)
		return token.Token{Kind: token.ILLEGAL, Literal: "!", Pos: pos}
	case '(':
		return token.Token{Kind: token.LPAREN, Literal: "(", Pos: pos}
	case ')':
		return token.Token{Kind: token.RPAREN, Literal: ")", Pos: pos}
	case ':':
		return token.Token{Kind: token.COLON, Literal: ":", Pos: pos}
	case ',':
		return token.Token{Kind: token.COMMA, Literal: ",", Pos: pos}
	case '.':
		return token.Token{Kind: token.DOT, Literal: ".", Pos: pos}
	case '\'':
		return token.Token{Kind: token.PRIME, Literal: "'", Pos: pos}
	case '?':
		return token.Token{Kind: token.QUESTION, Literal: "?", Pos: pos}
	default:
		l.errorf(pos, "unexpected character %q", b)
		return token.Token{Kind: token.ILLEGAL, Literal: string(b), Pos: pos}
	}
}

// Tokenize scans the entire source and returns all tokens including a
// final EOF. Used by the parser, which operates on a fully materialized
// token slice for simple lookahead.
func (l *Lexer) Tokenize() []token.Token {
	var toks []token.Token
	for {
		t := l.Next()
		toks = append(toks, t)
		if t.Kind == token.EOF {
			return toks
		}
	}
}

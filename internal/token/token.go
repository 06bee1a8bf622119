// Copyright (c) 2022, The GoKi Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package token defines the lexical tokens of NESTML: a
// block-structured, indentation-insensitive grammar whose blocks close
// with an explicit "end" rather than relying on layout.
package token

import "fmt"

type Kind int

const (
	ILLEGAL Kind = iota
	EOF

	IDENT  // V_m, tau_syn_ex
	INT    // 42
	FLOAT  // 3.14
	STRING // "quoted"

	// keywords
	keywordBeg
	NEURON
	SYNAPSE
	STATE
	INITIAL_VALUES
	PARAMETERS
	INTERNALS
	EQUATIONS
	INPUT
	OUTPUT
	UPDATE
	FUNCTION
	SHAPE
	IF
	ELIF
	ELSE
	FOR
	WHILE
	RETURN
	AND
	OR
	NOT
	TRUE
	FALSE
	END
	RECORDABLE
	INHIBITORY
	EXCITATORY
	SPIKE
	CURRENT
	keywordEnd

	// operators & punctuation
	ASSIGN    // =
	PLUS      // +
	MINUS     // -
	STAR      // *
	SLASH     // /
	PERCENT   // %
	POW       // **
	LT        // <
	GT        // >
	LE        // <=
	GE        // >=
	EQ        // ==
	NE        // !=
	ARROW     // <-
	LPAREN    // (
	RPAREN    // )
	COLON     // :
	COMMA     // ,
	DOT       // .
	PRIME     // '  (on identifiers: differential quotient)
	QUESTION  // ?  (conditional expression)
	PLUS_EQ   // +=
	MINUS_EQ  // -=
	STAR_EQ   // *=
	SLASH_EQ  // /=
	NEWLINE
)

var keywords = map[string]Kind{
	"neuron":          NEURON,
	"synapse":         SYNAPSE,
	"state":           STATE,
	"initial_values":  INITIAL_VALUES,
	"parameters":      PARAMETERS,
	"internals":       INTERNALS,
	"equations":       EQUATIONS,
	"input":           INPUT,
	"output":          OUTPUT,
	"update":          UPDATE,
	"function":        FUNCTION,
	"shape":           SHAPE,
	"if":              IF,
	"elif":            ELIF,
	"else":            ELSE,
	"for":             FOR,
	"while":           WHILE,
	"return":          RETURN,
	"and":             AND,
	"or":              OR,
	"not":             NOT,
	"true":            TRUE,
	"false":           FALSE,
	"end":             END,
	"recordable":      RECORDABLE,
	"inhibitory":      INHIBITORY,
	"excitatory":      EXCITATORY,
	"spike":           SPIKE,
	"current":         CURRENT,
}

// Lookup classifies ident as a keyword Kind, or IDENT if it isn't one.
func Lookup(ident string) Kind {
	if k, ok := keywords[ident]; ok {
		return k
	}
	return IDENT
}

func (k Kind) IsKeyword() bool { return k > keywordBeg && k < keywordEnd }

var names = map[Kind]string{
	ILLEGAL: "ILLEGAL", EOF: "EOF", IDENT: "IDENT", INT: "INT", FLOAT: "FLOAT", STRING: "STRING",
	NEURON: "neuron", SYNAPSE: "synapse", STATE: "state", INITIAL_VALUES: "initial_values",
	PARAMETERS: "parameters", INTERNALS: "internals", EQUATIONS: "equations", INPUT: "input",
	OUTPUT: "output", UPDATE: "update", FUNCTION: "function", SHAPE: "shape", IF: "if", ELIF: "elif",
	ELSE: "else", FOR: "for", WHILE: "while", RETURN: "return", AND: "and", OR: "or", NOT: "not",
	TRUE: "true", FALSE: "false", END: "end", RECORDABLE: "recordable", INHIBITORY: "inhibitory",
	EXCITATORY: "excitatory", SPIKE: "spike", CURRENT: "current",
	ASSIGN: "=", PLUS: "+", MINUS: "-", STAR: "*", SLASH: "/", PERCENT: "%", POW: "**",
	LT: "<", GT: ">", LE: "<=", GE: ">=", EQ: "==", NE: "!=", ARROW: "<-", LPAREN: "(", RPAREN: ")",
	COLON: ":", COMMA: ",", DOT: ".", PRIME: "'", QUESTION: "?", PLUS_EQ: "+=", MINUS_EQ: "-=", STAR_EQ: "*=",
	SLASH_EQ: "/=", NEWLINE: "\\n",
}

func (k Kind) String() string {
	if n, ok := names[k]; ok {
		return n
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Position is a one-based line/column location in a source file.
type Position struct {
	Filename string
	Line     int
	Col      int
}

func (p Position) String() string {
	return fmt.Sprintf("%s:%d:%d", p.Filename, p.Line, p.Col)
}

// Token is one lexical token: its kind, literal text, and source position.
type Token struct {
	Kind    Kind
	Literal string
	Pos     Position
}

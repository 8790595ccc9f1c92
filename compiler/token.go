package compiler

import "fmt"

// ---------------------------------------------------------------------------
// Token types for the Weft lexer
// ---------------------------------------------------------------------------

// TokenType represents the type of a token.
type TokenType int

const (
	// Special tokens
	TokenEOF TokenType = iota
	TokenError

	// Literals
	TokenNumber     // 42, 3.14
	TokenIdentifier // foo, result_1

	// Operators
	TokenPlus   // +
	TokenMinus  // -
	TokenStar   // *
	TokenSlash  // /
	TokenAssign // =

	// Delimiters
	TokenSemicolon // ;
	TokenLParen    // (
	TokenRParen    // )
	TokenComma     // ,
	TokenLBrace    // {
	TokenRBrace    // }

	// Keywords
	TokenSpawn   // spawn
	TokenSync    // sync
	TokenBarrier // barrier
	TokenJump    // jump
	TokenJz      // jz
	TokenJnz     // jnz
	TokenFn      // fn
)

var tokenNames = map[TokenType]string{
	TokenEOF:        "EOF",
	TokenError:      "ERROR",
	TokenNumber:     "NUMBER",
	TokenIdentifier: "IDENTIFIER",
	TokenPlus:       "+",
	TokenMinus:      "-",
	TokenStar:       "*",
	TokenSlash:      "/",
	TokenAssign:     "=",
	TokenSemicolon:  ";",
	TokenLParen:     "(",
	TokenRParen:     ")",
	TokenComma:      ",",
	TokenLBrace:     "{",
	TokenRBrace:     "}",
	TokenSpawn:      "spawn",
	TokenSync:       "sync",
	TokenBarrier:    "barrier",
	TokenJump:       "jump",
	TokenJz:         "jz",
	TokenJnz:        "jnz",
	TokenFn:         "fn",
}

func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Token(%d)", int(t))
}

// Position represents a source location.
type Position struct {
	Offset int // byte offset
	Line   int // 1-based line number
	Column int // 1-based column number
}

// Token represents a lexical token. Number tokens carry their parsed value,
// identifier and error tokens carry the raw text.
type Token struct {
	Type    TokenType
	Literal string
	Value   float64 // numeric value when Type == TokenNumber
	Pos     Position
}

func (t Token) String() string {
	switch t.Type {
	case TokenEOF:
		return "EOF"
	case TokenError:
		return fmt.Sprintf("ERROR(%s)", t.Literal)
	case TokenNumber, TokenIdentifier:
		return fmt.Sprintf("%s(%q)", t.Type, t.Literal)
	}
	return t.Type.String()
}

// Reserved words mapped to their token types.
var reservedWords = map[string]TokenType{
	"spawn":   TokenSpawn,
	"sync":    TokenSync,
	"barrier": TokenBarrier,
	"jump":    TokenJump,
	"jz":      TokenJz,
	"jnz":     TokenJnz,
	"fn":      TokenFn,
}

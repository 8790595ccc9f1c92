package compiler

import "fmt"

// ---------------------------------------------------------------------------
// Error types for the front end. Every error is fatal: the pipeline stops at
// the first failure and returns it to the caller.
// ---------------------------------------------------------------------------

// LexErrorKind classifies lexical failures.
type LexErrorKind int

const (
	// LexUnexpectedCharacter means the scanner hit a character matching no
	// token rule.
	LexUnexpectedCharacter LexErrorKind = iota
)

// LexError is a fatal lexical failure.
type LexError struct {
	Kind   LexErrorKind
	Char   string // offending character
	Offset int    // byte offset into the source
}

func (e *LexError) Error() string {
	return fmt.Sprintf("lex error: unexpected character %q at offset %d", e.Char, e.Offset)
}

// ParseErrorKind classifies syntactic failures.
type ParseErrorKind int

const (
	// ParseUnexpectedToken covers all structural errors: missing closing
	// delimiters, tokens in an invalid position, malformed function syntax.
	ParseUnexpectedToken ParseErrorKind = iota
)

// ParseError is a fatal syntactic failure.
type ParseError struct {
	Kind   ParseErrorKind
	Token  Token
	Offset int // scanner byte offset when the error was detected
	Msg    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error: %s (got %s at offset %d)", e.Msg, e.Token, e.Offset)
}

// CompileErrorKind classifies lowering failures.
type CompileErrorKind int

const (
	// CompileUnsupportedOperator means an operator token with no matching
	// instruction reached codegen.
	CompileUnsupportedOperator CompileErrorKind = iota
	// CompileUnboundIdentifier means an identifier reached codegen without a
	// memory slot assignment.
	CompileUnboundIdentifier
)

// CompileError is a fatal lowering failure.
type CompileError struct {
	Kind CompileErrorKind
	Name string    // identifier name, when applicable
	Op   TokenType // operator token, when applicable
}

func (e *CompileError) Error() string {
	switch e.Kind {
	case CompileUnboundIdentifier:
		return fmt.Sprintf("compile error: unbound identifier %q", e.Name)
	default:
		return fmt.Sprintf("compile error: unsupported operator %s", e.Op)
	}
}

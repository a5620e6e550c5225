package query

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// TokenType defines the type of a lexical token.
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenLBracket
	TokenRBracket
	TokenIdent
	TokenString
	TokenEq
	TokenNeq
	TokenAnd
	TokenOr
)

func (t TokenType) String() string {
	switch t {
	case TokenEOF:
		return "EOF"
	case TokenLBracket:
		return "["
	case TokenRBracket:
		return "]"
	case TokenIdent:
		return "Ident"
	case TokenString:
		return "String"
	case TokenEq:
		return "="
	case TokenNeq:
		return "!="
	case TokenAnd:
		return "&"
	case TokenOr:
		return "|"
	default:
		return "Unknown"
	}
}

// Token represents a lexical token of a query.
type Token struct {
	Type  TokenType
	Value string // unquoted value for strings, name for identifiers
	Line  int
	Col   int
}

// Lex performs lexical analysis on the query source
// and returns a sequence of tokens terminated by TokenEOF.
// Columns count characters, not bytes.
func Lex(input string) ([]Token, error) {
	var tokens []Token

	line, col := 1, 1
	i := 0

	emit := func(tt TokenType, value string, c int) {
		tokens = append(tokens, Token{Type: tt, Value: value, Line: line, Col: c})
	}

	for i < len(input) {
		c, size := utf8.DecodeRuneInString(input[i:])
		if c == utf8.RuneError && size == 1 {
			return nil, fmt.Errorf("%w: line %d col %d: invalid UTF-8", ErrSyntax, line, col)
		}

		switch {
		case c == '\n':
			line++
			col = 1
			i++
		case unicode.IsSpace(c):
			col++
			i += size
		case c == '[':
			emit(TokenLBracket, "[", col)
			col++
			i++
		case c == ']':
			emit(TokenRBracket, "]", col)
			col++
			i++
		case c == '&':
			emit(TokenAnd, "&", col)
			col++
			i++
		case c == '|':
			emit(TokenOr, "|", col)
			col++
			i++
		case c == '=':
			emit(TokenEq, "=", col)
			col++
			i++
		case c == '!':
			if i+1 >= len(input) || input[i+1] != '=' {
				return nil, fmt.Errorf("%w: line %d col %d: expected '=' after '!'", ErrSyntax, line, col)
			}
			emit(TokenNeq, "!=", col)
			col += 2
			i += 2
		case c == '"':
			startLine, startCol := line, col
			value, n, err := lexString(input[i+1:], &line, &col)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d col %d: %v", ErrSyntax, startLine, startCol, err)
			}
			i += 1 + n
			emit(TokenString, value, startCol)
		case isIdentifierStart(c):
			startCol := col
			start := i
			for i < len(input) {
				r, n := utf8.DecodeRuneInString(input[i:])
				if !isIdentifierChar(r) {
					break
				}
				i += n
				col++
			}
			emit(TokenIdent, input[start:i], startCol)
		default:
			return nil, fmt.Errorf("%w: line %d col %d: unexpected character %q", ErrSyntax, line, col, c)
		}
	}

	emit(TokenEOF, "", col)
	return tokens, nil
}

// lexString reads a string literal body up to and including the closing
// quote. It returns the unescaped value and the number of bytes consumed,
// advancing line and col past the literal.
func lexString(input string, line, col *int) (string, int, error) {
	var value strings.Builder
	*col++ // opening quote
	i := 0
	for i < len(input) {
		r, size := utf8.DecodeRuneInString(input[i:])
		switch r {
		case '\\':
			if i+size >= len(input) {
				return "", 0, fmt.Errorf("'\\' escape is at the end of input")
			}
			esc, n := utf8.DecodeRuneInString(input[i+size:])
			value.WriteRune(esc)
			i += size + n
			*col += 2
			continue
		case '"':
			*col++
			return value.String(), i + size, nil
		case '\n':
			*line++
			*col = 1
		default:
			*col++
		}
		value.WriteRune(r)
		i += size
	}
	return "", 0, fmt.Errorf("string literal is not terminated")
}

func isIdentifierStart(r rune) bool {
	return unicode.IsLetter(r) || r == '_'
}

func isIdentifierChar(r rune) bool {
	return isIdentifierStart(r) || unicode.IsDigit(r) || r == '-' || r == '.'
}

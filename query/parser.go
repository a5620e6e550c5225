package query

import "fmt"

// Parser consumes tokens produced by Lex and builds token expressions.
type Parser struct {
	tokens  []Token
	current int
}

// NewParser creates a new Parser instance
func NewParser(tokens []Token) *Parser {
	return &Parser{tokens: tokens}
}

// Parse processes all tokens and returns one TokenExpr per bracketed position.
func (p *Parser) Parse() ([]TokenExpr, error) {
	var exprs []TokenExpr
	for p.peek().Type != TokenEOF {
		expr, err := p.parseTokenExpr()
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, expr)
	}
	if len(exprs) == 0 {
		return nil, fmt.Errorf("%w: query has no token expressions", ErrSyntax)
	}
	return exprs, nil
}

func (p *Parser) parseTokenExpr() (TokenExpr, error) {
	open, err := p.expect(TokenLBracket)
	if err != nil {
		return TokenExpr{}, err
	}
	expr := TokenExpr{Line: open.Line, Col: open.Col}

	// "[]" matches any token
	if p.peek().Type == TokenRBracket {
		p.current++
		return expr, nil
	}

	for {
		conj, err := p.parseConj()
		if err != nil {
			return TokenExpr{}, err
		}
		expr.Alternatives = append(expr.Alternatives, conj)

		if p.peek().Type != TokenOr {
			break
		}
		p.current++
	}

	if _, err := p.expect(TokenRBracket); err != nil {
		return TokenExpr{}, err
	}
	return expr, nil
}

func (p *Parser) parseConj() (Conj, error) {
	var conj Conj
	for {
		attr, err := p.parseAttrExpr()
		if err != nil {
			return nil, err
		}
		conj = append(conj, attr)

		if p.peek().Type != TokenAnd {
			return conj, nil
		}
		p.current++
	}
}

func (p *Parser) parseAttrExpr() (AttrExpr, error) {
	name, err := p.expect(TokenIdent)
	if err != nil {
		return AttrExpr{}, err
	}

	var op Op
	switch tok := p.next(); tok.Type {
	case TokenEq:
		op = OpEq
	case TokenNeq:
		op = OpNeq
	default:
		return AttrExpr{}, unexpected(tok, "'=' or '!='")
	}

	value, err := p.expect(TokenString)
	if err != nil {
		return AttrExpr{}, err
	}
	return AttrExpr{Attribute: name.Value, Op: op, Value: value.Value}, nil
}

// peek returns the current token without consuming it.
func (p *Parser) peek() Token {
	if p.current >= len(p.tokens) {
		return Token{Type: TokenEOF}
	}
	return p.tokens[p.current]
}

func (p *Parser) next() Token {
	tok := p.peek()
	if p.current < len(p.tokens) {
		p.current++
	}
	return tok
}

func (p *Parser) expect(tt TokenType) (Token, error) {
	tok := p.next()
	if tok.Type != tt {
		return Token{}, unexpected(tok, tt.String())
	}
	return tok, nil
}

func unexpected(tok Token, want string) error {
	if tok.Type == TokenEOF {
		return fmt.Errorf("%w: line %d col %d: unexpected end of query, expected %s", ErrSyntax, tok.Line, tok.Col, want)
	}
	return fmt.Errorf("%w: line %d col %d: unexpected %s %q, expected %s", ErrSyntax, tok.Line, tok.Col, tok.Type, tok.Value, want)
}

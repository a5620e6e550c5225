package query

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gnoswap-labs/tokensplit/internal/types"
)

var (
	ErrSyntax        = errors.New("query syntax error")
	ErrNotAssignment = errors.New("token expression is not a flat assignment")
)

// Query is a compiled sequence of per-position token constraints.
// It is immutable once compiled and safe for concurrent use.
type Query struct {
	source string
	exprs  []TokenExpr
}

// Compile lexes and parses src into a Query.
func Compile(src string) (*Query, error) {
	tokens, err := Lex(src)
	if err != nil {
		return nil, err
	}
	exprs, err := NewParser(tokens).Parse()
	if err != nil {
		return nil, err
	}
	return &Query{source: src, exprs: exprs}, nil
}

// MustCompile is like Compile but panics if the query cannot be parsed.
func MustCompile(src string) *Query {
	q, err := Compile(src)
	if err != nil {
		panic(fmt.Sprintf("query: Compile(%q): %v", src, err))
	}
	return q
}

// Len returns the number of tokens the query requires.
func (q *Query) Len() int { return len(q.exprs) }

// Source returns the text the query was compiled from.
func (q *Query) Source() string { return q.source }

// Accepts reports whether tokens satisfies every position constraint.
// A slice whose length differs from Len never matches.
func (q *Query) Accepts(tokens []types.Token) bool {
	if len(tokens) != len(q.exprs) {
		return false
	}
	for i, expr := range q.exprs {
		if !expr.accepts(tokens[i]) {
			return false
		}
	}
	return true
}

// String renders the query in canonical form.
func (q *Query) String() string {
	parts := make([]string, len(q.exprs))
	for i, e := range q.exprs {
		parts[i] = e.String()
	}
	return strings.Join(parts, " ")
}

// Assignments reads every position as a flat attribute -> value mapping.
// Each position must be empty ("[]", an empty mapping) or a single
// conjunction of '=' constraints.
func (q *Query) Assignments() ([]map[string]string, error) {
	out := make([]map[string]string, len(q.exprs))
	for i, e := range q.exprs {
		if len(e.Alternatives) == 0 {
			out[i] = map[string]string{}
			continue
		}
		if len(e.Alternatives) != 1 {
			return nil, fmt.Errorf("%w: position %d (line %d col %d) must hold exactly one conjunction", ErrNotAssignment, i+1, e.Line, e.Col)
		}
		m := make(map[string]string, len(e.Alternatives[0]))
		for _, a := range e.Alternatives[0] {
			if a.Op != OpEq {
				return nil, fmt.Errorf("%w: position %d uses %s on %q", ErrNotAssignment, i+1, a.Op, a.Attribute)
			}
			m[a.Attribute] = a.Value
		}
		out[i] = m
	}
	return out, nil
}

func (t TokenExpr) accepts(tok types.Token) bool {
	if len(t.Alternatives) == 0 {
		return true
	}
	for _, conj := range t.Alternatives {
		if conj.accepts(tok) {
			return true
		}
	}
	return false
}

func (c Conj) accepts(tok types.Token) bool {
	for _, a := range c {
		v, ok := tok.Attr(a.Attribute)
		switch a.Op {
		case OpEq:
			if !ok || v != a.Value {
				return false
			}
		case OpNeq:
			if ok && v == a.Value {
				return false
			}
		}
	}
	return true
}

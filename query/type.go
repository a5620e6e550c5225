package query

import (
	"strconv"
	"strings"
)

// Op is the comparison operator of an attribute constraint.
type Op int

const (
	OpEq Op = iota
	OpNeq
)

func (o Op) String() string {
	if o == OpNeq {
		return "!="
	}
	return "="
}

// AttrExpr constrains a single attribute, e.g. lemma="this".
type AttrExpr struct {
	Attribute string
	Op        Op
	Value     string
}

func (a AttrExpr) String() string {
	return a.Attribute + a.Op.String() + strconv.Quote(a.Value)
}

// Conj is a conjunction of attribute constraints joined by '&'.
type Conj []AttrExpr

func (c Conj) String() string {
	parts := make([]string, len(c))
	for i, a := range c {
		parts[i] = a.String()
	}
	return strings.Join(parts, " & ")
}

// TokenExpr is one bracketed position of a query: a disjunction of
// conjunctions. An empty TokenExpr accepts any token.
type TokenExpr struct {
	Alternatives []Conj
	Line         int
	Col          int
}

func (t TokenExpr) String() string {
	parts := make([]string, len(t.Alternatives))
	for i, c := range t.Alternatives {
		parts[i] = c.String()
	}
	return "[" + strings.Join(parts, " | ") + "]"
}

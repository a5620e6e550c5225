// Package matcher finds the windows of a token sequence that satisfy a
// fixed-width pattern.
package matcher

import (
	"github.com/gnoswap-labs/tokensplit/internal/types"
	"github.com/gnoswap-labs/tokensplit/query"
)

// Pattern is a compiled token pattern with a fixed required token count.
// Accepts is only called with slices of exactly Len tokens.
type Pattern interface {
	Len() int
	Accepts(tokens []types.Token) bool
}

var _ Pattern = (*query.Query)(nil)

// Matcher runs a Pattern against token sequences.
type Matcher struct {
	pattern Pattern
	span    int
}

// New returns a Matcher for p.
func New(p Pattern) *Matcher {
	return &Matcher{pattern: p, span: p.Len() - 1}
}

// Compile builds a Matcher from query source.
func Compile(src string) (*Matcher, error) {
	q, err := query.Compile(src)
	if err != nil {
		return nil, err
	}
	return New(q), nil
}

// Span is the 0-based offset of the last token of a window.
func (m *Matcher) Span() int { return m.span }

// Match returns every window of tokens accepted by the pattern, in
// ascending start order. Overlapping windows are all reported.
//
// Start positions run from 0 to len(tokens)-2: the last token never starts
// a window, even for single-token patterns.
func (m *Matcher) Match(tokens []types.Token) []types.Match {
	var matches []types.Match
	for i := 0; i < len(tokens)-1; i++ {
		if m.MatchesAt(tokens, i) {
			matches = append(matches, types.Match{Start: i, End: i + m.span})
		}
	}
	return matches
}

// MatchesAt reports whether the window starting at i fits inside tokens
// and is accepted by the pattern.
func (m *Matcher) MatchesAt(tokens []types.Token, i int) bool {
	if i < 0 || i+m.span >= len(tokens) {
		return false
	}
	return m.pattern.Accepts(tokens[i : i+m.span+1])
}

// Package splitmatch splits a designated token inside every window of a
// token sequence that matches a pattern.
package splitmatch

import (
	"errors"
	"fmt"

	"github.com/gnoswap-labs/tokensplit/internal/types"
	"github.com/gnoswap-labs/tokensplit/matcher"
	"github.com/gnoswap-labs/tokensplit/query"
	"github.com/gnoswap-labs/tokensplit/splitter"
)

var ErrReplaceIndex = errors.New("replace index outside the match window")

// SplittingMatcher replaces the token at a fixed 1-based position of each
// matched window with its two split halves.
type SplittingMatcher struct {
	matcher    *matcher.Matcher
	splitter   *splitter.Splitter
	replaceIdx int // 0-based offset inside the window
	splitIdx   int
}

// New validates every argument up front: replaceIdx must lie in
// [1, p.Len()], splitIdx must not be negative and overrideSpec must parse
// into exactly two assignment groups (or be empty).
func New(p matcher.Pattern, replaceIdx, splitIdx int, overrideSpec string) (*SplittingMatcher, error) {
	if replaceIdx < 1 || replaceIdx > p.Len() {
		return nil, fmt.Errorf("%w: %d not in [1, %d]", ErrReplaceIndex, replaceIdx, p.Len())
	}
	if splitIdx < 0 {
		return nil, fmt.Errorf("%w: %d", splitter.ErrSplitOffset, splitIdx)
	}
	s, err := splitter.New(overrideSpec)
	if err != nil {
		return nil, err
	}
	return &SplittingMatcher{
		matcher:    matcher.New(p),
		splitter:   s,
		replaceIdx: replaceIdx - 1,
		splitIdx:   splitIdx,
	}, nil
}

// Compile is New with the pattern given as query source.
func Compile(src string, replaceIdx, splitIdx int, overrideSpec string) (*SplittingMatcher, error) {
	q, err := query.Compile(src)
	if err != nil {
		return nil, err
	}
	return New(q, replaceIdx, splitIdx, overrideSpec)
}

// Matches returns the windows SplitOnMatches would act on.
func (sm *SplittingMatcher) Matches(tokens []types.Token) []types.Match {
	return sm.matcher.Match(tokens)
}

// SplitOnMatches builds a new sequence from tokens. For every start
// position i in [0, len(tokens)-2]:
//
//   - if the window at i matches, tokens[i:target] are copied followed by
//     the two halves of tokens[target], target being the designated token;
//   - otherwise tokens[i] is copied.
//
// Positions advance one at a time over the input, so overlapping windows
// can emit a token more than once, and the last input token only appears
// when a match window reaches it. tokens is not modified.
func (sm *SplittingMatcher) SplitOnMatches(tokens []types.Token) ([]types.Token, error) {
	out := make([]types.Token, 0, len(tokens)+1)

	for i := 0; i < len(tokens)-1; i++ {
		if !sm.matcher.MatchesAt(tokens, i) {
			out = append(out, tokens[i].Clone())
			continue
		}

		target := i + sm.replaceIdx
		for r := i; r < target; r++ {
			out = append(out, tokens[r].Clone())
		}

		first, second, err := sm.splitter.Split(tokens[target], sm.splitIdx)
		if err != nil {
			return nil, fmt.Errorf("window %d, token %d: %w", i, target, err)
		}
		out = append(out, first, second)
	}

	return out, nil
}

// Package splitter divides one token into two at a character offset,
// redistributing content, offsets, char groups and syllables.
package splitter

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/gnoswap-labs/tokensplit/internal/types"
	"github.com/gnoswap-labs/tokensplit/query"
)

var (
	ErrSplitOffset    = errors.New("split offset out of range")
	ErrOverrideGroups = errors.New("override spec must have exactly two token expressions")
)

// Overrides holds the literal attribute assignments applied to each half
// after the structural split.
type Overrides struct {
	First  types.Attrs
	Second types.Attrs
}

// ParseOverrides reads an override spec such as
//
//	[tag="NOUN"] [tag="PART" & lemma="s"]
//
// An empty spec yields nil overrides.
func ParseOverrides(spec string) (*Overrides, error) {
	if spec == "" {
		return nil, nil
	}
	q, err := query.Compile(spec)
	if err != nil {
		return nil, fmt.Errorf("parsing overrides: %w", err)
	}
	if q.Len() != 2 {
		return nil, fmt.Errorf("%w: got %d in %q", ErrOverrideGroups, q.Len(), spec)
	}
	groups, err := q.Assignments()
	if err != nil {
		return nil, fmt.Errorf("parsing overrides: %w", err)
	}
	for _, g := range groups {
		for name, value := range g {
			if err := types.CheckAssignable(name, value); err != nil {
				return nil, fmt.Errorf("parsing overrides: %w", err)
			}
		}
	}
	return &Overrides{First: groups[0], Second: groups[1]}, nil
}

// Splitter splits tokens, applying the same overrides to every split.
type Splitter struct {
	overrides *Overrides
}

// New parses overrideSpec eagerly; see ParseOverrides.
func New(overrideSpec string) (*Splitter, error) {
	o, err := ParseOverrides(overrideSpec)
	if err != nil {
		return nil, err
	}
	return &Splitter{overrides: o}, nil
}

// NewWithOverrides returns a Splitter applying o, which may be nil.
func NewWithOverrides(o *Overrides) *Splitter {
	return &Splitter{overrides: o}
}

// Split divides t at character offset idx into two fresh tokens. t is left
// untouched.
func Split(t types.Token, idx int) (first, second types.Token, err error) {
	return NewWithOverrides(nil).Split(t, idx)
}

// Split divides t at idx, then applies the splitter's overrides.
func (s *Splitter) Split(t types.Token, idx int) (first, second types.Token, err error) {
	if idx < 0 || idx > t.Length {
		return first, second, fmt.Errorf("%w: offset %d, token %q has length %d", ErrSplitOffset, idx, t.Content, t.Length)
	}
	runes := []rune(t.Content)
	if idx > len(runes) {
		return first, second, fmt.Errorf("%w: offset %d, token %q has %d characters", ErrSplitOffset, idx, t.Content, len(runes))
	}

	first, second = t.Clone(), t.Clone()

	first.Content = string(runes[:idx])
	second.Content = string(runes[idx:])
	first.Length = utf8.RuneCountInString(first.Content)
	second.Length = utf8.RuneCountInString(second.Content)
	second.Start = t.Start + idx

	first.CharGroups, second.CharGroups = splitCharGroups(t, idx)
	first.Syls, second.Syls = splitSyls(t.Syls, idx)

	if err := s.apply(&first, &second); err != nil {
		return types.Token{}, types.Token{}, err
	}
	return first, second, nil
}

func (s *Splitter) apply(first, second *types.Token) error {
	if s.overrides == nil {
		return nil
	}
	for name, value := range s.overrides.First {
		if err := first.SetAttr(name, value); err != nil {
			return err
		}
	}
	for name, value := range s.overrides.Second {
		if err := second.SetAttr(name, value); err != nil {
			return err
		}
	}
	return nil
}

// splitCharGroups keeps keys below idx for the first half and renumbers
// the remaining keys densely from 0 for the second half.
func splitCharGroups(t types.Token, idx int) (map[int]string, map[int]string) {
	if t.CharGroups == nil {
		return nil, nil
	}
	first := make(map[int]string)
	second := make(map[int]string)
	n := 0
	for _, k := range t.GroupKeys() {
		if k < idx {
			first[k] = t.CharGroups[k]
			continue
		}
		second[n] = t.CharGroups[k]
		n++
	}
	return first, second
}

// splitSyls assigns a syllable whole to the first half when its last index
// is <= idx; any other syllable is bisected, second-half indices shifted by
// -idx. Empty halves are dropped.
func splitSyls(syls [][]int, idx int) ([][]int, [][]int) {
	if syls == nil {
		return nil, nil
	}
	first := [][]int{}
	second := [][]int{}
	for _, syl := range syls {
		if len(syl) == 0 {
			continue
		}
		if syl[len(syl)-1] <= idx {
			first = append(first, append([]int(nil), syl...))
			continue
		}
		var part1, part2 []int
		for _, i := range syl {
			if i < idx {
				part1 = append(part1, i)
			} else {
				part2 = append(part2, i-idx)
			}
		}
		if len(part1) > 0 {
			first = append(first, part1)
		}
		if len(part2) > 0 {
			second = append(second, part2)
		}
	}
	return first, second
}

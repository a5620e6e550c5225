package types

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"unicode/utf8"
)

// Structural attribute names. Every other name resolves through Attrs.
const (
	AttrContent    = "content"
	AttrStart      = "start"
	AttrLength     = "length"
	AttrCharGroups = "char_groups"
	AttrSyls       = "syls"
)

var (
	ErrInvalidToken      = errors.New("invalid token")
	ErrAttrNotAssignable = errors.New("attribute cannot be assigned a literal value")
)

// Attrs holds the descriptive attributes of a token (lemma, tag, ...).
type Attrs map[string]string

// Clone returns an independent copy. A nil map stays nil.
func (a Attrs) Clone() Attrs {
	if a == nil {
		return nil
	}
	out := make(Attrs, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// Token is the unit of the token stream.
//
// Character indices (Length, CharGroups keys, Syls entries) count runes of
// Content, not bytes.
type Token struct {
	Content    string         `json:"content" yaml:"content"`
	Start      int            `json:"start" yaml:"start"`
	Length     int            `json:"length" yaml:"length"`
	CharGroups map[int]string `json:"char_groups,omitempty" yaml:"char_groups,omitempty"`
	Syls       [][]int        `json:"syls,omitempty" yaml:"syls,omitempty"`
	Attrs      Attrs          `json:"attrs,omitempty" yaml:"attrs,omitempty"`
}

// New builds a token covering content at the given absolute offset, with
// Length derived from the rune count.
func New(content string, start int) Token {
	return Token{
		Content: content,
		Start:   start,
		Length:  utf8.RuneCountInString(content),
	}
}

// Clone returns a deep copy sharing no maps or slices with t.
func (t Token) Clone() Token {
	out := t
	out.Attrs = t.Attrs.Clone()
	if t.CharGroups != nil {
		out.CharGroups = make(map[int]string, len(t.CharGroups))
		for k, v := range t.CharGroups {
			out.CharGroups[k] = v
		}
	}
	if t.Syls != nil {
		out.Syls = make([][]int, len(t.Syls))
		for i, syl := range t.Syls {
			out.Syls[i] = append([]int(nil), syl...)
		}
	}
	return out
}

// Validate checks the structural invariant of a token.
func (t Token) Validate() error {
	return t.validate(t.Length)
}

// ValidateSplit is Validate for tokens that may come out of a split: a
// syllable ending exactly at the cut stays whole in the first half, so its
// last index may equal Length.
func (t Token) ValidateSplit() error {
	return t.validate(t.Length + 1)
}

func (t Token) validate(sylBound int) error {
	if n := utf8.RuneCountInString(t.Content); t.Length != n {
		return fmt.Errorf("%w: length %d, content %q has %d characters", ErrInvalidToken, t.Length, t.Content, n)
	}
	for k := range t.CharGroups {
		if k < 0 || k >= t.Length {
			return fmt.Errorf("%w: char group index %d out of range [0, %d)", ErrInvalidToken, k, t.Length)
		}
	}
	for i, syl := range t.Syls {
		for j, idx := range syl {
			if idx < 0 || idx >= sylBound {
				return fmt.Errorf("%w: syllable %d index %d out of range [0, %d)", ErrInvalidToken, i, idx, sylBound)
			}
			if j > 0 && idx <= syl[j-1] {
				return fmt.Errorf("%w: syllable %d is not strictly increasing", ErrInvalidToken, i)
			}
		}
	}
	return nil
}

// GroupKeys returns the char group keys in ascending order.
func (t Token) GroupKeys() []int {
	keys := make([]int, 0, len(t.CharGroups))
	for k := range t.CharGroups {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

// Attr looks up an attribute by name for predicate evaluation.
// Structural names take precedence over Attrs.
func (t Token) Attr(name string) (string, bool) {
	switch name {
	case AttrContent:
		return t.Content, true
	case AttrStart:
		return strconv.Itoa(t.Start), true
	case AttrLength:
		return strconv.Itoa(t.Length), true
	}
	v, ok := t.Attrs[name]
	return v, ok
}

// SetAttr overwrites an attribute with a literal value. No structural
// recomputation happens: setting content leaves Length untouched.
func (t *Token) SetAttr(name, value string) error {
	switch name {
	case AttrContent:
		t.Content = value
	case AttrStart, AttrLength:
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not an integer", ErrAttrNotAssignable, name, value)
		}
		if name == AttrStart {
			t.Start = n
		} else {
			t.Length = n
		}
	case AttrCharGroups, AttrSyls:
		return fmt.Errorf("%w: %s", ErrAttrNotAssignable, name)
	default:
		if t.Attrs == nil {
			t.Attrs = make(Attrs)
		}
		t.Attrs[name] = value
	}
	return nil
}

// CheckAssignable reports whether SetAttr(name, value) would succeed,
// without a token at hand.
func CheckAssignable(name, value string) error {
	var probe Token
	return probe.SetAttr(name, value)
}

// Match is an inclusive window [Start, End] of token indices.
type Match struct {
	Start int `json:"start" yaml:"start"`
	End   int `json:"end" yaml:"end"`
}

// Len is the number of tokens in the window.
func (m Match) Len() int { return m.End - m.Start + 1 }

func (m Match) String() string {
	return fmt.Sprintf("(%d, %d)", m.Start, m.End)
}

// Package tokenize turns plain text into tokens for the matcher. It is an
// input convenience; any tokenizer producing valid types.Token values works.
package tokenize

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/jdkato/prose/v2"
	"golang.org/x/text/unicode/norm"

	"github.com/gnoswap-labs/tokensplit/internal/types"
)

// Character classes used as char group identifiers.
const (
	ClassLetter = "letter"
	ClassDigit  = "digit"
	ClassMark   = "mark"
	ClassPunct  = "punct"
	ClassSymbol = "symbol"
	ClassSpace  = "space"
	ClassOther  = "other"
)

// Text tokenizes NFC-normalized text with prose, tagging each token with
// its part of speech ("tag") and lower-cased form ("lemma"). Start offsets
// count runes of the normalized text.
func Text(text string) ([]types.Token, error) {
	text = norm.NFC.String(text)

	doc, err := prose.NewDocument(text,
		prose.WithSegmentation(false),
		prose.WithExtraction(false),
	)
	if err != nil {
		return nil, fmt.Errorf("tokenizing text: %w", err)
	}

	var tokens []types.Token
	cursor := 0     // byte offset into text
	runeCursor := 0 // rune offset matching cursor
	for _, pt := range doc.Tokens() {
		if pt.Text == "" {
			continue
		}
		start := runeCursor
		if at := strings.Index(text[cursor:], pt.Text); at >= 0 {
			start += utf8.RuneCountInString(text[cursor : cursor+at])
			runeCursor = start + utf8.RuneCountInString(pt.Text)
			cursor += at + len(pt.Text)
		}

		tok := Token(pt.Text, start)
		tok.Attrs = types.Attrs{
			"tag":   pt.Tag,
			"lemma": strings.ToLower(pt.Text),
		}
		tokens = append(tokens, tok)
	}
	return tokens, nil
}

// Token builds a token for content with char groups and syllables derived
// from character classes: every maximal run of same-class characters forms
// one syllable. Combining marks take the class of the preceding character.
func Token(content string, start int) types.Token {
	tok := types.New(content, start)
	tok.CharGroups = make(map[int]string, tok.Length)
	tok.Syls = [][]int{}

	prev := ""
	i := 0
	for _, r := range content {
		class := Class(r)
		if class == ClassMark && prev != "" {
			class = prev
		}
		tok.CharGroups[i] = class

		if class == prev && len(tok.Syls) > 0 {
			last := len(tok.Syls) - 1
			tok.Syls[last] = append(tok.Syls[last], i)
		} else {
			tok.Syls = append(tok.Syls, []int{i})
		}
		prev = class
		i++
	}
	return tok
}

// Class returns the character class of r.
func Class(r rune) string {
	switch {
	case unicode.IsLetter(r):
		return ClassLetter
	case unicode.IsDigit(r):
		return ClassDigit
	case unicode.IsMark(r):
		return ClassMark
	case unicode.IsPunct(r):
		return ClassPunct
	case unicode.IsSymbol(r):
		return ClassSymbol
	case unicode.IsSpace(r):
		return ClassSpace
	default:
		return ClassOther
	}
}

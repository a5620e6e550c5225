package splitter

import (
	"errors"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnoswap-labs/tokensplit/internal/types"
	"github.com/gnoswap-labs/tokensplit/query"
)

func hello() types.Token {
	return types.Token{
		Content:    "hello",
		Start:      10,
		Length:     5,
		CharGroups: map[int]string{0: "A", 1: "A", 2: "B", 3: "B", 4: "B"},
		Syls:       [][]int{{0, 1}, {2, 3, 4}},
	}
}

func TestSplitHello(t *testing.T) {
	t.Parallel()

	first, second, err := Split(hello(), 2)
	require.NoError(t, err)

	assert.Equal(t, types.Token{
		Content:    "he",
		Start:      10,
		Length:     2,
		CharGroups: map[int]string{0: "A", 1: "A"},
		Syls:       [][]int{{0, 1}},
	}, first)
	assert.Equal(t, types.Token{
		Content:    "llo",
		Start:      12,
		Length:     3,
		CharGroups: map[int]string{0: "B", 1: "B", 2: "B"},
		Syls:       [][]int{{0, 1, 2}},
	}, second)
}

func TestSplitSyllables(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		syls       [][]int
		idx        int
		wantFirst  [][]int
		wantSecond [][]int
	}{
		{
			name:       "straddling syllable is bisected",
			syls:       [][]int{{0, 1, 2, 3, 4}},
			idx:        2,
			wantFirst:  [][]int{{0, 1}},
			wantSecond: [][]int{{0, 1, 2}},
		},
		{
			name:       "syllable ending on the cut stays whole",
			syls:       [][]int{{0, 1, 2}, {3, 4}},
			idx:        2,
			wantFirst:  [][]int{{0, 1, 2}},
			wantSecond: [][]int{{1, 2}},
		},
		{
			name:       "syllable starting after the cut moves whole",
			syls:       [][]int{{0}, {3, 4}},
			idx:        2,
			wantFirst:  [][]int{{0}},
			wantSecond: [][]int{{1, 2}},
		},
		{
			name:       "cut at zero",
			syls:       [][]int{{0, 1}, {2, 3, 4}},
			idx:        0,
			wantFirst:  [][]int{},
			wantSecond: [][]int{{0, 1}, {2, 3, 4}},
		},
		{
			name:       "cut at end",
			syls:       [][]int{{0, 1}, {2, 3, 4}},
			idx:        5,
			wantFirst:  [][]int{{0, 1}, {2, 3, 4}},
			wantSecond: [][]int{},
		},
		{
			name:       "empty syllable is dropped",
			syls:       [][]int{{}, {0, 1, 2, 3, 4}},
			idx:        3,
			wantFirst:  [][]int{{0, 1, 2}},
			wantSecond: [][]int{{0, 1}},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			tok := hello()
			tok.Syls = tt.syls
			first, second, err := Split(tok, tt.idx)
			require.NoError(t, err)
			assert.Equal(t, tt.wantFirst, first.Syls)
			assert.Equal(t, tt.wantSecond, second.Syls)
		})
	}
}

func TestSplitCutAtZero(t *testing.T) {
	t.Parallel()

	first, second, err := Split(hello(), 0)
	require.NoError(t, err)
	assert.Equal(t, "", first.Content)
	assert.Equal(t, 0, first.Length)
	assert.Empty(t, first.CharGroups)
	assert.Equal(t, hello().CharGroups, second.CharGroups)
	assert.Equal(t, [][]int{{0, 1}, {2, 3, 4}}, second.Syls)
	assert.Equal(t, 10, second.Start)
}

func TestSplitProperties(t *testing.T) {
	t.Parallel()

	tokens := []types.Token{
		hello(),
		{
			Content:    "བཀྲ་ཤིས",
			Start:      3,
			Length:     7,
			CharGroups: map[int]string{0: "cons", 1: "cons", 2: "sub", 3: "tsek", 4: "cons", 5: "vow", 6: "cons"},
			Syls:       [][]int{{0, 1, 2}, {4, 5, 6}},
			Attrs:      types.Attrs{"pos": "NOUN"},
		},
		types.New("plain", 0),
	}

	for _, tok := range tokens {
		for idx := 0; idx <= tok.Length; idx++ {
			first, second, err := Split(tok, idx)
			require.NoError(t, err)

			assert.Equal(t, tok.Content, first.Content+second.Content)
			assert.Equal(t, tok.Length, first.Length+second.Length)
			assert.Equal(t, idx, first.Length)
			assert.Equal(t, tok.Start, first.Start)
			assert.Equal(t, tok.Start+idx, second.Start)
			assert.Equal(t, tok.Attrs, first.Attrs)
			assert.Equal(t, tok.Attrs, second.Attrs)

			assert.Equal(t, groupValues(tok.CharGroups), groupValues(mergeGroups(first, second)))
			assert.Equal(t, len(tok.CharGroups), len(first.CharGroups)+len(second.CharGroups))
			for k := range second.CharGroups {
				assert.Less(t, k, len(second.CharGroups), "second half keys are dense")
			}

			assert.Equal(t, countIndices(tok.Syls), countIndices(first.Syls)+countIndices(second.Syls))
			for _, syl := range append(first.Syls, second.Syls...) {
				assert.NotEmpty(t, syl)
			}
		}
	}
}

func TestSplitDoesNotShareState(t *testing.T) {
	t.Parallel()

	tok := hello()
	tok.Attrs = types.Attrs{"lemma": "hello"}
	first, second, err := Split(tok, 3)
	require.NoError(t, err)

	first.Attrs["lemma"] = "changed"
	second.Syls[0][0] = 99
	second.CharGroups[0] = "Z"

	assert.Equal(t, "hello", tok.Attrs["lemma"])
	assert.Equal(t, "hello", second.Attrs["lemma"])
	assert.Equal(t, hello().Syls, tok.Syls)
	assert.Equal(t, hello().CharGroups, tok.CharGroups)
}

func TestSplitOffsetOutOfRange(t *testing.T) {
	t.Parallel()

	for _, idx := range []int{-1, 6, 100} {
		_, _, err := Split(hello(), idx)
		assert.True(t, errors.Is(err, ErrSplitOffset), "idx %d: got %v", idx, err)
	}

	// Length claims more characters than the content holds
	bad := hello()
	bad.Length = 8
	_, _, err := Split(bad, 7)
	assert.True(t, errors.Is(err, ErrSplitOffset))
}

func TestSplitWithOverrides(t *testing.T) {
	t.Parallel()

	s, err := New(`[tag="VERB" & lemma="he"] [tag="PART" & start="0"]`)
	require.NoError(t, err)

	tok := hello()
	tok.Attrs = types.Attrs{"tag": "NOUN"}
	first, second, err := s.Split(tok, 2)
	require.NoError(t, err)

	assert.Equal(t, types.Attrs{"tag": "VERB", "lemma": "he"}, first.Attrs)
	assert.Equal(t, types.Attrs{"tag": "PART"}, second.Attrs)
	// overrides win over computed structural values
	assert.Equal(t, 0, second.Start)
	assert.Equal(t, types.Attrs{"tag": "NOUN"}, tok.Attrs)
}

func TestSplitOverridesOneHalf(t *testing.T) {
	t.Parallel()

	s, err := New(`[] [tag="PART"]`)
	require.NoError(t, err)

	tok := hello()
	tok.Attrs = types.Attrs{"tag": "NOUN"}
	first, second, err := s.Split(tok, 2)
	require.NoError(t, err)

	assert.Equal(t, types.Attrs{"tag": "NOUN"}, first.Attrs)
	assert.Equal(t, types.Attrs{"tag": "PART"}, second.Attrs)
	assert.Equal(t, 12, second.Start)
}

func TestParseOverrides(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		spec    string
		want    *Overrides
		wantErr error
	}{
		{
			name: "empty spec",
			spec: "",
			want: nil,
		},
		{
			name: "two groups",
			spec: `[tag="A"] [tag="B" & lemma="b"]`,
			want: &Overrides{
				First:  types.Attrs{"tag": "A"},
				Second: types.Attrs{"tag": "B", "lemma": "b"},
			},
		},
		{
			name: "empty first group",
			spec: `[] [tag="PART"]`,
			want: &Overrides{
				First:  types.Attrs{},
				Second: types.Attrs{"tag": "PART"},
			},
		},
		{
			name: "empty second group",
			spec: `[tag="AUX"] []`,
			want: &Overrides{
				First:  types.Attrs{"tag": "AUX"},
				Second: types.Attrs{},
			},
		},
		{
			name:    "one group",
			spec:    `[tag="A"]`,
			wantErr: ErrOverrideGroups,
		},
		{
			name:    "three groups",
			spec:    `[tag="A"] [tag="B"] [tag="C"]`,
			wantErr: ErrOverrideGroups,
		},
		{
			name:    "negated constraint",
			spec:    `[tag!="A"] [tag="B"]`,
			wantErr: query.ErrNotAssignment,
		},
		{
			name:    "syntax error",
			spec:    `[tag="A"`,
			wantErr: query.ErrSyntax,
		},
		{
			name:    "non-integer start",
			spec:    `[start="x"] [tag="B"]`,
			wantErr: types.ErrAttrNotAssignable,
		},
		{
			name:    "syllables are not literal",
			spec:    `[tag="A"] [syls="0"]`,
			wantErr: types.ErrAttrNotAssignable,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := ParseOverrides(tt.spec)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func mergeGroups(a, b types.Token) map[int]string {
	out := make(map[int]string)
	for k, v := range a.CharGroups {
		out[k] = v
	}
	for k, v := range b.CharGroups {
		out[len(a.CharGroups)+k] = v
	}
	return out
}

func groupValues(groups map[int]string) []string {
	keys := make([]int, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	values := make([]string, 0, len(keys))
	for _, k := range keys {
		values = append(values, groups[k])
	}
	return values
}

func countIndices(syls [][]int) int {
	n := 0
	for _, syl := range syls {
		n += len(syl)
	}
	return n
}

package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnoswap-labs/tokensplit/internal/cache"
	"github.com/gnoswap-labs/tokensplit/internal/types"
	"github.com/gnoswap-labs/tokensplit/rules"
	"github.com/gnoswap-labs/tokensplit/tokenio"
)

func writeTokens(t *testing.T, name string, tokens []types.Token) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, tokenio.WriteFile(path, tokens))
	return path
}

func sentence() []types.Token {
	return []types.Token{types.New("this", 0), types.New("is", 5), types.New("it", 8)}
}

func TestRunMatch(t *testing.T) {
	t.Parallel()
	path := writeTokens(t, "tokens.json", sentence())
	query := `[content="this"] [content="is"]`

	t.Run("json", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		require.NoError(t, runMatch(context.Background(), &buf, query, []string{path}, true))

		var got map[string][]types.Match
		require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
		assert.Equal(t, map[string][]types.Match{path: {{Start: 0, End: 1}}}, got)
	})

	t.Run("text", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		require.NoError(t, runMatch(context.Background(), &buf, query, []string{path}, false))
		assert.Contains(t, buf.String(), "match: (0, 1)")
		assert.Contains(t, buf.String(), path)
	})

	t.Run("bad query", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		assert.Error(t, runMatch(context.Background(), &buf, `[content=`, []string{path}, false))
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		assert.Error(t, runMatch(context.Background(), &buf, query, []string{filepath.Join(t.TempDir(), "nope.json")}, false))
	})
}

func TestRunSplit(t *testing.T) {
	t.Parallel()
	input := writeTokens(t, "tokens.json", []types.Token{
		types.New("hello", 0), types.New("world", 6), types.New(".", 11),
	})

	cfgPath := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
rules:
  - name: split-hello
    query: '[content="hello"]'
    replace_idx: 1
    split_idx: 2
`), 0o644))

	compiled, err := loadRules(cfgPath, "")
	require.NoError(t, err)
	require.Len(t, compiled, 1)

	var buf bytes.Buffer
	require.NoError(t, runSplit(context.Background(), &buf, compiled, []string{input}, "", tokenio.JSON, false))

	got, err := tokenio.Read(&buf, tokenio.JSON)
	require.NoError(t, err)

	var contents []string
	var starts []int
	for _, tok := range got {
		contents = append(contents, tok.Content)
		starts = append(starts, tok.Start)
	}
	assert.Equal(t, []string{"he", "llo", "world"}, contents)
	assert.Equal(t, []int{0, 2, 6}, starts)
}

func TestRunSplitOutputDirectory(t *testing.T) {
	t.Parallel()
	a := writeTokens(t, "a.json", sentence())
	b := writeTokens(t, "b.yaml", sentence())

	compiled, err := (rules.Config{Rules: []rules.Rule{{
		Name: "split-this", Query: `[content="this"]`, ReplaceIdx: 1, SplitIdx: 1,
	}}}).CompileAll()
	require.NoError(t, err)

	out := filepath.Join(t.TempDir(), "out")
	require.NoError(t, runSplit(context.Background(), nil, compiled, []string{a, b}, out, tokenio.JSON, false))

	for _, name := range []string{"a.json", "b.yaml"} {
		got, err := tokenio.ReadFile(filepath.Join(out, name))
		require.NoError(t, err, name)
		require.Len(t, got, 3, name)
		assert.Equal(t, "t", got[0].Content)
		assert.Equal(t, "his", got[1].Content)
		assert.Equal(t, "is", got[2].Content)
	}
}

func TestRunSplitCancelled(t *testing.T) {
	t.Parallel()
	path := writeTokens(t, "tokens.json", sentence())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var buf bytes.Buffer
	err := runSplit(ctx, &buf, nil, []string{path}, "", tokenio.JSON, false)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestOutputPath(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		output string
		input  string
		inputs int
		want   string
	}{
		{"stdout", "", "in/a.json", 1, ""},
		{"single file", "out.json", "in/a.json", 1, "out.json"},
		{"directory", "out", "in/a.json", 2, filepath.Join("out", "a.json")},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, outputPath(tt.output, tt.input, tt.inputs))
		})
	}
}

func TestWatchDestination(t *testing.T) {
	t.Parallel()
	assert.Equal(t, filepath.Join("in", "a.split.json"), watchDestination("", filepath.Join("in", "a.json")))
	assert.Equal(t, filepath.Join("out", "a.json"), watchDestination("out", filepath.Join("in", "a.json")))
}

func TestInitConfigurationFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), ".tokensplit.yaml")
	require.NoError(t, initConfigurationFile(path))

	cfg, err := rules.Load(path)
	require.NoError(t, err)
	assert.Equal(t, rules.Sample(), cfg)

	_, err = cfg.CompileAll()
	assert.NoError(t, err)
}

func TestRunTokenize(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	require.NoError(t, runTokenize(&buf, "This is it.", "", tokenio.YAML))

	got, err := tokenio.Read(&buf, tokenio.YAML)
	require.NoError(t, err)
	require.Len(t, got, 4)
	assert.Equal(t, "This", got[0].Content)
	assert.Equal(t, 10, got[3].Start)
}

func TestBuildLogger(t *testing.T) {
	t.Parallel()
	l, err := buildLogger("debug")
	require.NoError(t, err)
	assert.NotNil(t, l)

	_, err = buildLogger("loud")
	assert.Error(t, err)
}

func TestSplitSession(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	input := filepath.Join(dir, "tokens.json")
	require.NoError(t, tokenio.WriteFile(input, sentence()))
	cfgPath := filepath.Join(dir, "rules.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
rules:
  - name: split-this
    query: '[content="this"]'
    replace_idx: 1
    split_idx: 2
`), 0o644))

	s := &splitSession{cfgPath: cfgPath, inputs: []string{input}, results: cache.New(cfgPath)}
	require.NoError(t, s.reload())
	require.NoError(t, s.splitOne(input))

	dest := filepath.Join(dir, "tokens.split.json")
	got, err := tokenio.ReadFile(dest)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "th", got[0].Content)

	// unchanged input is served from the cache and not rewritten
	require.NoError(t, os.Remove(dest))
	require.NoError(t, s.splitOne(input))
	_, err = os.Stat(dest)
	assert.True(t, os.IsNotExist(err))

	// reloading the rules drops cached results even if the file is unchanged
	require.NoError(t, s.reload())
	require.NoError(t, s.splitOne(input))
	_, err = os.Stat(dest)
	require.NoError(t, err)

	// a rules change re-splits every input
	cfgAbs, err := filepath.Abs(cfgPath)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
rules:
  - name: split-this
    query: '[content="this"]'
    replace_idx: 1
    split_idx: 1
`), 0o644))
	require.NoError(t, s.handle(cfgAbs))
	got, err = tokenio.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "t", got[0].Content)
}

package rules

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/gnoswap-labs/tokensplit/internal/types"
	"github.com/gnoswap-labs/tokensplit/splitmatch"
)

const DefaultConfigPath = ".tokensplit.yaml"

// Rule describes one split-on-match pass.
type Rule struct {
	Name       string `yaml:"name"`
	Query      string `yaml:"query"`
	ReplaceIdx int    `yaml:"replace_idx"`
	SplitIdx   int    `yaml:"split_idx"`
	Changes    string `yaml:"changes,omitempty"`
}

// Config represents the overall configuration with a name and an ordered
// list of rules.
type Config struct {
	Name  string `yaml:"name"`
	Rules []Rule `yaml:"rules"`
}

// Compiled pairs a rule with its ready-to-run splitting matcher.
type Compiled struct {
	Rule    Rule
	Matcher *splitmatch.SplittingMatcher
}

func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	return Parse(data)
}

func Parse(data []byte) (Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, err
	}
	return cfg, nil
}

// Compile builds the rule's splitting matcher, surfacing any query or
// override error before a token is processed.
func (r Rule) Compile() (*splitmatch.SplittingMatcher, error) {
	sm, err := splitmatch.Compile(r.Query, r.ReplaceIdx, r.SplitIdx, r.Changes)
	if err != nil {
		return nil, fmt.Errorf("rule %q: %w", r.Name, err)
	}
	return sm, nil
}

// CompileAll compiles every rule, stopping at the first failure.
func (c Config) CompileAll() ([]Compiled, error) {
	compiled := make([]Compiled, 0, len(c.Rules))
	for _, r := range c.Rules {
		sm, err := r.Compile()
		if err != nil {
			return nil, err
		}
		compiled = append(compiled, Compiled{Rule: r, Matcher: sm})
	}
	return compiled, nil
}

// Apply runs the rules in order, each one consuming the previous output.
func Apply(logger *zap.Logger, tokens []types.Token, compiled []Compiled) ([]types.Token, error) {
	result := tokens
	for _, c := range compiled {
		next, err := c.Matcher.SplitOnMatches(result)
		if err != nil {
			return nil, fmt.Errorf("rule %q: %w", c.Rule.Name, err)
		}
		if logger != nil {
			// counting matches rescans the input, so only do it when debug is on
			if ce := logger.Check(zap.DebugLevel, "applied rule"); ce != nil {
				ce.Write(
					zap.String("rule", c.Rule.Name),
					zap.Int("matches", len(c.Matcher.Matches(result))),
					zap.Int("before", len(result)),
					zap.Int("after", len(next)),
				)
			}
		}
		result = next
	}
	return result, nil
}

// Sample returns the starter configuration written by `tokensplit init`.
// It targets `tokensplit tokenize` output: lower-cased lemmas and Penn
// Treebank tags. The tokenizer already splits "n't" contractions but
// keeps "cannot" whole.
func Sample() Config {
	return Config{
		Name: "tokensplit",
		Rules: []Rule{
			{
				Name:       "split-cannot",
				Query:      `[lemma="cannot"]`,
				ReplaceIdx: 1,
				SplitIdx:   3,
				Changes:    `[lemma="can" & tag="MD"] [lemma="not" & tag="RB"]`,
			},
		},
	}
}

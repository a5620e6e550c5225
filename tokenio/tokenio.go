// Package tokenio reads and writes token lists as JSON or YAML documents.
package tokenio

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/gnoswap-labs/tokensplit/internal/types"
)

type Format int

const (
	JSON Format = iota
	YAML
)

func (f Format) String() string {
	if f == YAML {
		return "yaml"
	}
	return "json"
}

// ParseFormat maps a format name to a Format.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(name) {
	case "", "json":
		return JSON, nil
	case "yaml", "yml":
		return YAML, nil
	default:
		return JSON, fmt.Errorf("unknown token format %q", name)
	}
}

// FormatOf picks the format from a file extension, defaulting to JSON.
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return YAML
	default:
		return JSON
	}
}

// Read decodes a token list and validates every token. Syllables are
// checked with ValidateSplit so split output can be read back.
func Read(r io.Reader, format Format) ([]types.Token, error) {
	var tokens []types.Token
	var err error
	switch format {
	case YAML:
		err = yaml.NewDecoder(r).Decode(&tokens)
	default:
		err = json.NewDecoder(r).Decode(&tokens)
	}
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("decoding %s tokens: %w", format, err)
	}
	for i, t := range tokens {
		if err := t.ValidateSplit(); err != nil {
			return nil, fmt.Errorf("token %d: %w", i, err)
		}
	}
	return tokens, nil
}

func ReadFile(path string) ([]types.Token, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	tokens, err := Read(f, FormatOf(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return tokens, nil
}

// Write encodes tokens. JSON output is indented for readability.
func Write(w io.Writer, tokens []types.Token, format Format) error {
	if tokens == nil {
		tokens = []types.Token{}
	}
	switch format {
	case YAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(tokens); err != nil {
			return err
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(tokens)
	}
}

func WriteFile(path string, tokens []types.Token) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := Write(f, tokens, FormatOf(path)); err != nil {
		return err
	}
	return f.Close()
}

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnoswap-labs/tokensplit/formatter"
	"github.com/gnoswap-labs/tokensplit/rules"
	"github.com/gnoswap-labs/tokensplit/tokenio"
)

// inline rule flags
var (
	splitQuery   string
	replaceIdx   int
	splitIdx     int
	splitChanges string
	splitOutput  string
	splitFormat  string
	splitPretty  bool
)

var splitCmd = &cobra.Command{
	Use:   "split [paths...]",
	Short: "Split matched tokens using the configured rules",
	Long: `Applies split rules to token files. Rules come from the config file, or from
--query/--replace/--split/--changes for a single inline rule.
Example) tokensplit split --query '[content="isn'"'"'t"]' --replace 1 --split 2 tokens.json`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		compiled, err := loadRules(cfgFile, splitQuery)
		if err != nil {
			return err
		}
		format, err := tokenio.ParseFormat(splitFormat)
		if err != nil {
			return err
		}
		return runSplit(ctx, cmd.OutOrStdout(), compiled, args, splitOutput, format, splitPretty)
	},
}

func init() {
	splitCmd.Flags().StringVarP(&splitQuery, "query", "q", "", "Inline rule query (overrides the config file)")
	splitCmd.Flags().IntVar(&replaceIdx, "replace", 1, "1-based position of the token to split inside the match window")
	splitCmd.Flags().IntVar(&splitIdx, "split", 1, "Character offset to split the token at")
	splitCmd.Flags().StringVar(&splitChanges, "changes", "", "Attribute overrides for the two halves, e.g. '[tag=\"A\"] [tag=\"B\"]'")
	splitCmd.Flags().StringVarP(&splitOutput, "output", "o", "", "Output file (one input) or directory (several inputs)")
	splitCmd.Flags().StringVar(&splitFormat, "format", "json", "Output format for stdout (json, yaml)")
	splitCmd.Flags().BoolVar(&splitPretty, "pretty", false, "Print a human-readable token listing instead of JSON/YAML")
}

// loadRules builds the inline rule when a query is given, otherwise loads
// the rule file. Every rule is compiled before any token is read.
func loadRules(configPath, inlineQuery string) ([]rules.Compiled, error) {
	var cfg rules.Config
	if inlineQuery != "" {
		cfg.Rules = []rules.Rule{{
			Name:       "inline",
			Query:      inlineQuery,
			ReplaceIdx: replaceIdx,
			SplitIdx:   splitIdx,
			Changes:    splitChanges,
		}}
	} else {
		var err error
		cfg, err = rules.Load(configPath)
		if err != nil {
			return nil, fmt.Errorf("loading rules: %w", err)
		}
	}

	compiled, err := cfg.CompileAll()
	if err != nil {
		return nil, err
	}
	logger.Debug("rules compiled", zap.Int("count", len(compiled)))
	return compiled, nil
}

func runSplit(ctx context.Context, w io.Writer, compiled []rules.Compiled, paths []string, output string, format tokenio.Format, pretty bool) error {
	var bar *progressbar.ProgressBar
	if len(paths) > 1 {
		bar = progressbar.NewOptions(len(paths),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetDescription("splitting"),
			progressbar.OptionEnableColorCodes(true),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "[green]=[reset]",
				SaucerHead:    "[green]>[reset]",
				SaucerPadding: " ",
				BarStart:      "[",
				BarEnd:        "]",
			}))
		if output != "" {
			if err := os.MkdirAll(output, 0o755); err != nil {
				return err
			}
		}
	}

	for _, path := range paths {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := splitFile(w, compiled, path, outputPath(output, path, len(paths)), format, pretty); err != nil {
			logger.Error("Error splitting tokens", zap.String("path", path), zap.Error(err))
			return err
		}
		if bar != nil {
			_ = bar.Add(1)
		}
	}
	return nil
}

func splitFile(w io.Writer, compiled []rules.Compiled, path, dest string, format tokenio.Format, pretty bool) error {
	tokens, err := tokenio.ReadFile(path)
	if err != nil {
		return err
	}
	result, err := rules.Apply(logger, tokens, compiled)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	logger.Info("split tokens", zap.String("path", path), zap.Int("before", len(tokens)), zap.Int("after", len(result)))

	switch {
	case dest != "":
		return tokenio.WriteFile(dest, result)
	case pretty:
		_, err := fmt.Fprint(w, formatter.GenerateFormattedTokens(result))
		return err
	default:
		return tokenio.Write(w, result, format)
	}
}

// outputPath maps an input to its destination: the output itself for a
// single input, a file of the same name inside output otherwise.
func outputPath(output, input string, inputs int) string {
	if output == "" || inputs == 1 {
		return output
	}
	return filepath.Join(output, filepath.Base(input))
}

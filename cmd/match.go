package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnoswap-labs/tokensplit/formatter"
	"github.com/gnoswap-labs/tokensplit/internal/types"
	"github.com/gnoswap-labs/tokensplit/matcher"
	"github.com/gnoswap-labs/tokensplit/tokenio"
)

var (
	matchQuery      string
	matchJsonOutput bool
)

var matchCmd = &cobra.Command{
	Use:   "match [paths...]",
	Short: "Report the token windows matching a query",
	Long: `Reads token files (JSON or YAML) and prints every window matching the query.
Example) tokensplit match --query '[lemma="this"] [tag!="ADJ"]' tokens.json`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		return runMatch(ctx, cmd.OutOrStdout(), matchQuery, args, matchJsonOutput)
	},
}

func init() {
	matchCmd.Flags().StringVarP(&matchQuery, "query", "q", "", "Token query to match")
	matchCmd.Flags().BoolVar(&matchJsonOutput, "json", false, "Output matches in JSON format")
	_ = matchCmd.MarkFlagRequired("query")
}

func runMatch(ctx context.Context, w io.Writer, query string, paths []string, isJson bool) error {
	m, err := matcher.Compile(query)
	if err != nil {
		return err
	}

	matchesByFile := make(map[string][]types.Match, len(paths))
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return err
		}
		tokens, err := tokenio.ReadFile(path)
		if err != nil {
			logger.Error("Error reading tokens", zap.String("path", path), zap.Error(err))
			return err
		}
		matches := m.Match(tokens)
		logger.Debug("matched", zap.String("path", path), zap.Int("tokens", len(tokens)), zap.Int("matches", len(matches)))

		if isJson {
			matchesByFile[path] = matches
			continue
		}
		fmt.Fprint(w, formatter.GenerateFormattedMatches(path, query, tokens, matches))
	}

	if isJson {
		d, err := json.Marshal(matchesByFile)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, string(d))
	}
	return nil
}

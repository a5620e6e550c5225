package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnoswap-labs/tokensplit/tokenio"
	"github.com/gnoswap-labs/tokensplit/tokenize"
)

var (
	tokenizeFile   string
	tokenizeOutput string
	tokenizeFormat string
)

var tokenizeCmd = &cobra.Command{
	Use:   "tokenize [text...]",
	Short: "Turn plain text into a token file",
	Long: `Tokenizes text given as arguments or with --file, tagging parts of speech.
Example) tokensplit tokenize "This is it." -o tokens.json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		text := strings.Join(args, " ")
		if tokenizeFile != "" {
			data, err := os.ReadFile(tokenizeFile)
			if err != nil {
				return err
			}
			text = string(data)
		}
		if text == "" {
			return fmt.Errorf("no text given: pass text arguments or --file")
		}
		format, err := tokenio.ParseFormat(tokenizeFormat)
		if err != nil {
			return err
		}
		return runTokenize(cmd.OutOrStdout(), text, tokenizeOutput, format)
	},
}

func init() {
	tokenizeCmd.Flags().StringVarP(&tokenizeFile, "file", "f", "", "Read the text from a file")
	tokenizeCmd.Flags().StringVarP(&tokenizeOutput, "output", "o", "", "Output path (format from extension)")
	tokenizeCmd.Flags().StringVar(&tokenizeFormat, "format", "json", "Output format for stdout (json, yaml)")
}

func runTokenize(w io.Writer, text, output string, format tokenio.Format) error {
	tokens, err := tokenize.Text(text)
	if err != nil {
		return err
	}
	logger.Debug("tokenized", zap.Int("tokens", len(tokens)))

	if output != "" {
		return tokenio.WriteFile(output, tokens)
	}
	return tokenio.Write(w, tokens, format)
}

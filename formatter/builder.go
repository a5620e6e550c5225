package formatter

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"text/template"

	"github.com/fatih/color"

	"github.com/gnoswap-labs/tokensplit/internal/types"
)

var (
	matchStyle   = color.New(color.FgYellow, color.Bold)
	fileStyle    = color.New(color.FgCyan, color.Bold)
	lineStyle    = color.New(color.FgHiBlue, color.Bold)
	contentStyle = color.New(color.FgGreen, color.Bold)
	noteStyle    = color.New(color.FgWhite)
)

const matchTemplate = `{{header .Start .End .MaxIndexWidth .Filename -}}
{{window .Tokens .Start .End .MaxIndexWidth .Padding -}}
{{note .Query .Padding}}
`

/***** Match Formatter Builder *****/

type MatchData struct {
	Filename      string
	Query         string
	Start         int
	End           int
	MaxIndexWidth int
	Padding       string
	Tokens        []types.Token
}

// GenerateFormattedMatches renders every match window of tokens, one block
// per match, in the order given.
func GenerateFormattedMatches(filename, query string, tokens []types.Token, matches []types.Match) string {
	funcMap := template.FuncMap{
		"header": header,
		"window": window,
		"note":   note,
	}
	tmpl := template.Must(template.New("match").Funcs(funcMap).Parse(matchTemplate))

	var builder strings.Builder
	for _, m := range matches {
		width := calculateMaxIndexWidth(m.End)
		data := MatchData{
			Filename:      filename,
			Query:         query,
			Start:         m.Start,
			End:           m.End,
			MaxIndexWidth: width,
			Padding:       strings.Repeat(" ", width+1),
			Tokens:        tokens,
		}

		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, data); err != nil {
			builder.WriteString(fmt.Sprintf("Error formatting match: %v\n", err))
			continue
		}
		builder.WriteString(buf.String())
		builder.WriteString("\n")
	}
	return builder.String()
}

// GenerateFormattedTokens renders one line per token: index, content,
// offsets and descriptive attributes in name order.
func GenerateFormattedTokens(tokens []types.Token) string {
	width := calculateMaxIndexWidth(len(tokens) - 1)
	var builder strings.Builder
	for i, t := range tokens {
		builder.WriteString(lineStyle.Sprintf("%*d | ", width, i))
		builder.WriteString(contentStyle.Sprintf("%q", t.Content))
		builder.WriteString(noteStyle.Sprintf(" start=%d length=%d", t.Start, t.Length))
		for _, name := range sortedAttrNames(t.Attrs) {
			builder.WriteString(noteStyle.Sprintf(" %s=%s", name, t.Attrs[name]))
		}
		builder.WriteString("\n")
	}
	return builder.String()
}

// utils functions used in the text templates

func header(start, end, maxIndexWidth int, filename string) string {
	endString := matchStyle.Sprintf("match: (%d, %d)\n", start, end)
	padding := strings.Repeat(" ", maxIndexWidth)
	endString += lineStyle.Sprintf("%s--> ", padding)
	endString += fileStyle.Sprintf("%s:%d\n", filename, start)
	return endString
}

func window(tokens []types.Token, start, end, maxIndexWidth int, padding string) string {
	endString := lineStyle.Sprintf("%s|\n", padding)
	for i := start; i <= end; i++ {
		if i < 0 || i >= len(tokens) {
			continue
		}
		endString += lineStyle.Sprintf("%*d | ", maxIndexWidth, i)
		endString += contentStyle.Sprintf("%s\n", tokens[i].Content)
	}
	return endString
}

func note(query, padding string) string {
	return lineStyle.Sprintf("%s= ", padding) + noteStyle.Sprintf("%s", query)
}

func calculateMaxIndexWidth(idx int) int {
	if idx < 0 {
		idx = 0
	}
	return len(fmt.Sprintf("%d", idx))
}

func sortedAttrNames(attrs types.Attrs) []string {
	names := make([]string, 0, len(attrs))
	for k := range attrs {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

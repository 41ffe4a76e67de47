// Package syntaxhl tokenizes already-parsed text with chroma and emits
// styled ranges per spec §4.5. Grounded on
// original_source/renderer/src/textutils/syntaxhl.rs; chroma is sourced
// from the runsys-core example's dependency set (see SPEC_FULL.md).
package syntaxhl

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"

	"github.com/wudi/slidekit/rendererr"
)

// TokenRange is one chroma token's span over the output text's byte
// offsets, tagged with the theme color it should render in.
type TokenRange struct {
	Start, End int
	Color      string // theme-resolved hex color, e.g. "#ff0000"
}

// Highlight tokenizes text's already-stripped output string with the
// named language and theme, returning token ranges over the full text
// (across all lines; newlines advance the offset by exactly one rune,
// matching spec §4.5).
func Highlight(text string, language, theme string) ([]TokenRange, error) {
	lexer := lexers.Get(language)
	if lexer == nil {
		return nil, &rendererr.ResourceError{Kind: "syntax", Name: language}
	}
	lexer = chroma.Coalesce(lexer)

	style := styles.Get(theme)
	if style == nil || (style == styles.Fallback && theme != styles.Fallback.Name) {
		return nil, &rendererr.ResourceError{Kind: "theme", Name: theme}
	}

	iterator, err := lexer.Tokenise(nil, text)
	if err != nil {
		return nil, &rendererr.ResourceError{Kind: "syntax", Name: language}
	}

	var ranges []TokenRange
	offset := 0
	for _, tok := range iterator.Tokens() {
		n := len(tok.Value)
		if n == 0 {
			continue
		}
		entry := style.Get(tok.Type)
		color := "#000000"
		if entry.Colour.IsSet() {
			color = "#" + entry.Colour.String()[1:]
		}
		ranges = append(ranges, TokenRange{Start: offset, End: offset + n, Color: color})
		offset += n
	}
	return ranges, nil
}

// SplitLines splits already-parsed text into lines the way the
// highlighter scans them, advancing the byte offset by exactly one per
// newline rune (spec §4.5).
func SplitLines(text string) []string {
	return strings.Split(text, "\n")
}

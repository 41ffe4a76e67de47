// Package textparse implements the inline-markup tokenizer described in
// spec §4.4: a stack-based scanner that strips `escape name begin … end`
// blocks out of the source text, recording named-style ranges and
// inline-anchor ranges over the resulting output text's UTF-8 byte
// offsets. Grounded on original_source/renderer/src/textutils/styling.rs;
// hand-rolled against the standard library per DESIGN.md (no pack
// library implements this spec's specific grammar).
package textparse

import (
	"sort"
	"strings"

	"github.com/wudi/slidekit/node"
	"github.com/wudi/slidekit/rendererr"
	"github.com/wudi/slidekit/textmodel"
)

// StyledRange is a half-open [Start, End) byte range over the output
// text with a named style applied. Layer orders ranges from
// independently-sourced passes (e.g. the syntax highlighter's token
// ranges vs. the markup parser's user-named-style ranges): lower layers
// are merged first so higher layers win on overlap, per spec §4.5
// ("token ranges are prepended to the user styles"). Plain markup
// parsing leaves every range at layer 0.
type StyledRange struct {
	Start, End int
	Style      string
	Layer      int
}

// InlineAnchor is a half-open [Start, End) byte range over the output
// text, named by an inline id the host can reference from a sibling
// node's LayoutExpr.
type InlineAnchor struct {
	Start, End int
}

// StyledText is the parser's output: markup-stripped text plus the
// ranges and anchors recovered from the markup.
type StyledText struct {
	Text      string
	MainStyle textmodel.Style
	Styles    []StyledRange
	Anchors   []AnchorEntry
	TextAlign textmodel.Align
}

// AnchorEntry pairs an inline id with its resolved range, in source
// order (per spec §4.4: "anchors preserve source order").
type AnchorEntry struct {
	Id    node.InlineId
	Range InlineAnchor
}

type openFrame struct {
	name      string
	start     int // byte offset in the output buffer where this block started
	isAnchor  bool
	inlineId  node.InlineId
}

// Parse scans src against the three parsing characters and the
// named-style table, producing a StyledText with markup-stripped text.
// name is either a non-empty decimal digit string (an inline anchor) or
// a key into styling.NamedStyles (a style name).
func Parse(src string, mainStyle textmodel.Style, styling *textmodel.Styling, align textmodel.Align) (*StyledText, error) {
	if styling == nil {
		return &StyledText{Text: src, MainStyle: mainStyle, TextAlign: align}, nil
	}
	pc := styling.ParsingChars

	var out strings.Builder
	var stack []openFrame
	var styles []StyledRange
	var anchors []AnchorEntry

	runes := []rune(src)
	i := 0
	for i < len(runes) {
		r := runes[i]
		switch r {
		case pc.Escape:
			i++
			var nameRunes []rune
			for i < len(runes) && runes[i] != pc.Begin {
				if runes[i] == pc.End {
					return nil, &rendererr.ParsingError{
						Text: src, Offset: out.Len(),
						Reason: "escape not followed by begin before end",
					}
				}
				nameRunes = append(nameRunes, runes[i])
				i++
			}
			if i >= len(runes) {
				return nil, &rendererr.ParsingError{
					Text: src, Offset: out.Len(),
					Reason: "escape not followed by begin before EOF",
				}
			}
			i++ // consume begin
			name := string(nameRunes)
			isAnchor, id := isAnchorName(name)
			if !isAnchor {
				if _, ok := styling.Lookup(name); !ok {
					return nil, &rendererr.ParsingError{
						Text: src, Offset: out.Len(),
						Reason: "unknown style name " + name,
					}
				}
			}
			stack = append(stack, openFrame{name: name, start: out.Len(), isAnchor: isAnchor, inlineId: id})
		case pc.End:
			if len(stack) == 0 {
				return nil, &rendererr.ParsingError{
					Text: src, Offset: out.Len(),
					Reason: "end with empty stack",
				}
			}
			frame := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			end := out.Len()
			if frame.isAnchor {
				anchors = append(anchors, AnchorEntry{Id: frame.inlineId, Range: InlineAnchor{Start: frame.start, End: end}})
			} else {
				styles = append(styles, StyledRange{Start: frame.start, End: end, Style: frame.name})
			}
			i++
		default:
			out.WriteRune(r)
			i++
		}
	}
	if len(stack) > 0 {
		return nil, &rendererr.ParsingError{
			Text: src, Offset: out.Len(),
			Reason: "unbalanced at EOF",
		}
	}

	sort.SliceStable(styles, func(a, b int) bool {
		if styles[a].Start != styles[b].Start {
			return styles[a].Start < styles[b].Start
		}
		return styles[a].End < styles[b].End
	})

	return &StyledText{
		Text:      out.String(),
		MainStyle: mainStyle,
		Styles:    styles,
		Anchors:   anchors,
		TextAlign: align,
	}, nil
}

func isAnchorName(name string) (bool, node.InlineId) {
	if name == "" {
		return false, 0
	}
	n := 0
	for _, r := range name {
		if r < '0' || r > '9' {
			return false, 0
		}
		n = n*10 + int(r-'0')
	}
	return true, node.InlineId(n)
}

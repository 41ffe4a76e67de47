// Package textmodel holds the data types describing styled text as the
// host supplies it: source markup, base style, named-style table, and
// the parsed output produced by textparse. Grounded on spec §3/§4.4 and
// original_source/renderer/src/text.rs.
package textmodel

import "github.com/wudi/slidekit/geo"

// Align is the text's horizontal alignment within its shaped width.
type Align int

const (
	AlignStart Align = iota
	AlignCenter
	AlignEnd
)

// Stretch is the 9-level condensed..expanded font-stretch enum.
type Stretch int

const (
	StretchUltraCondensed Stretch = iota
	StretchExtraCondensed
	StretchCondensed
	StretchSemiCondensed
	StretchNormal
	StretchSemiExpanded
	StretchExpanded
	StretchExtraExpanded
	StretchUltraExpanded
)

// Style is a partial text style: every field is optional, merged with a
// base style at resolution time (only present fields override).
type Style struct {
	FontFamily    *string
	Color         *geo.Color
	Size          *float64 // strictly positive
	LineSpacing   *float64 // strictly positive multiplier
	Italic        *bool
	Stretch       *Stretch
	Weight        *int // 100..900
	Underline     *bool
	Strikethrough *bool
}

// DefaultStyle is the base style pushed before any override: sans-serif
// 16pt, weight 400, line-height ratio 1.0, opaque black, matching §4.6.
func DefaultStyle() Style {
	family := "sans-serif"
	size := 16.0
	spacing := 1.0
	weight := 400
	return Style{
		FontFamily:  &family,
		Color:       &geo.Black,
		Size:        &size,
		LineSpacing: &spacing,
		Weight:      &weight,
	}
}

// Merge overlays only o's present (non-nil) fields onto base, returning
// a new fully or partially resolved Style.
func Merge(base, o Style) Style {
	out := base
	if o.FontFamily != nil {
		out.FontFamily = o.FontFamily
	}
	if o.Color != nil {
		out.Color = o.Color
	}
	if o.Size != nil {
		out.Size = o.Size
	}
	if o.LineSpacing != nil {
		out.LineSpacing = o.LineSpacing
	}
	if o.Italic != nil {
		out.Italic = o.Italic
	}
	if o.Stretch != nil {
		out.Stretch = o.Stretch
	}
	if o.Weight != nil {
		out.Weight = o.Weight
	}
	if o.Underline != nil {
		out.Underline = o.Underline
	}
	if o.Strikethrough != nil {
		out.Strikethrough = o.Strikethrough
	}
	return out
}

// ParsingChars are the three characters driving the inline-markup
// grammar: escape introduces a styled/anchor block, begin/end delimit
// its extent.
type ParsingChars struct {
	Escape rune
	Begin  rune
	End    rune
}

// NamedStyle is one entry of a text's named-style table: an ordered
// (name, partial style) pair. Kept as a slice (not a map) because
// original source order can matter for diagnostic messages and the
// spec's grammar looks styles up by name, not position.
type NamedStyle struct {
	Name  string
	Style Style
}

// Styling holds the three parsing characters and the named-style table
// a Text's markup is interpreted against.
type Styling struct {
	ParsingChars ParsingChars
	NamedStyles  []NamedStyle
}

// Lookup returns the style registered under name, if any.
func (s Styling) Lookup(name string) (Style, bool) {
	for _, ns := range s.NamedStyles {
		if ns.Name == name {
			return ns.Style, true
		}
	}
	return Style{}, false
}

// SyntaxHighlight requests that the shaper run lines of text through
// the syntax highlighter before applying user styles.
type SyntaxHighlight struct {
	Language string
	Theme    string
}

// Text is the host-authored source for one styled-text content entry.
type Text struct {
	Source      string
	MainStyle   Style
	Styling     *Styling // nil => no markup parsing, Source taken literally
	TextAlign   Align
	SyntaxHl    *SyntaxHighlight
}

// Package shaper turns a parsed StyledText into positioned glyph runs
// and decoration runs (spec §4.6), using go-text/typesetting for
// shaping (grounded on wudi-pdfkit/fonts/shaper.go) and
// golang.org/x/image/font/sfnt for glyph outline/metric extraction
// (grounded on wudi-pdfkit/fonts/opentype.go). The split between
// "shaping" (this file) and "outlining" (outline.go) mirrors spec §2's
// two separate component rows.
package shaper

import (
	"bytes"
	"sort"
	"strings"
	"unicode"

	"github.com/go-text/typesetting/di"
	gofont "github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/image/math/fixed"

	"github.com/wudi/slidekit/geo"
	"github.com/wudi/slidekit/node"
	"github.com/wudi/slidekit/rendererr"
	"github.com/wudi/slidekit/resources"
	"github.com/wudi/slidekit/textmodel"
	"github.com/wudi/slidekit/textparse"
)

// Glyph is a single shaped glyph, positioned within its line in page
// coordinates (y grows downward, matching spec §4.6).
type Glyph struct {
	Font     *resources.LoadedFont
	ID       int
	Cluster  int // byte offset into the line's text
	X, Y     float64
	FontSize float64
	Color    geo.Color
}

// Decoration is an underline or strikethrough stroked segment.
type Decoration struct {
	X, Y, Width, Thickness float64
	Color                  geo.Color
}

// Line is one shaped line of text: its bounding rectangle plus its
// glyphs and decorations.
type Line struct {
	Rect       geo.Rectangle
	Glyphs     []Glyph
	Decoration []Decoration
}

// ShapedText is the shaper's output for one StyledText: its lines and
// the resolved rectangle for each inline anchor (by pairing the
// anchor's start/end zero-width boxes).
type ShapedText struct {
	Lines   []Line
	Anchors map[node.InlineId]geo.Rectangle
	Width   float64
	Height  float64
}

// Shape shapes st against resources, producing one Line per '\n'-
// separated segment of st.Text (spec §4.6: "a single line break pass
// with no width constraint"), then applies text_align across lines.
func Shape(st *textparse.StyledText, styling *textmodel.Styling, resources *resources.Resources) (*ShapedText, error) {
	lineTexts := strings.Split(st.Text, "\n")

	lineOffsets := make([]int, len(lineTexts))
	offset := 0
	for i, lt := range lineTexts {
		lineOffsets[i] = offset
		offset += len(lt) + 1 // +1 for the consumed '\n'
	}

	out := &ShapedText{Anchors: map[node.InlineId]geo.Rectangle{}}
	if st.Text == "" {
		return out, nil
	}
	anchorBoxes := map[node.InlineId][2]*geo.Point{}

	cursorY := 0.0
	maxWidth := 0.0
	for i, lineText := range lineTexts {
		lineStart := lineOffsets[i]
		lineEnd := lineStart + len(lineText)

		line, err := shapeLine(lineText, lineStart, st, styling, resources, cursorY)
		if err != nil {
			return nil, err
		}
		out.Lines = append(out.Lines, line)
		if line.Rect.Width > maxWidth {
			maxWidth = line.Rect.Width
		}
		cursorY += line.Rect.Height

		for _, a := range st.Anchors {
			if a.Range.Start >= lineStart && a.Range.Start <= lineEnd {
				recordAnchorBox(anchorBoxes, a.Id, 0, geo.Point{X: xWithinLine(line, a.Range.Start), Y: line.Rect.Y})
			}
			if a.Range.End >= lineStart && a.Range.End <= lineEnd {
				recordAnchorBox(anchorBoxes, a.Id, 1, geo.Point{X: xWithinLine(line, a.Range.End), Y: line.Rect.Y + line.Rect.Height})
			}
		}
	}
	out.Width = maxWidth
	out.Height = cursorY

	applyAlignment(out, st.TextAlign)

	for id, box := range anchorBoxes {
		if box[0] == nil || box[1] == nil {
			continue
		}
		x0, x1 := box[0].X, box[1].X
		y0, y1 := box[0].Y, box[1].Y
		if x1 < x0 {
			x0, x1 = x1, x0
		}
		if y1 < y0 {
			y0, y1 = y1, y0
		}
		out.Anchors[id] = geo.Rectangle{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
	}

	return out, nil
}

func recordAnchorBox(m map[node.InlineId][2]*geo.Point, id node.InlineId, slot int, p geo.Point) {
	box := m[id]
	box[slot] = &p
	m[id] = box
}

func xWithinLine(l Line, byteOffset int) float64 {
	x := l.Rect.X
	for _, g := range l.Glyphs {
		if g.Cluster >= byteOffset {
			break
		}
		x = g.X
	}
	return x
}

// applyAlignment shifts each line's glyphs/rect horizontally so the
// block aligns Start|Center|End against the widest line.
func applyAlignment(st *ShapedText, align textmodel.Align) {
	for i := range st.Lines {
		l := &st.Lines[i]
		var shift float64
		switch align {
		case textmodel.AlignCenter:
			shift = (st.Width - l.Rect.Width) / 2
		case textmodel.AlignEnd:
			shift = st.Width - l.Rect.Width
		}
		if shift == 0 {
			continue
		}
		l.Rect.X += shift
		for gi := range l.Glyphs {
			l.Glyphs[gi].X += shift
		}
		for di := range l.Decoration {
			l.Decoration[di].X += shift
		}
	}
}

func shapeLine(lineText string, lineStart int, st *textparse.StyledText, styling *textmodel.Styling, res *resources.Resources, y float64) (Line, error) {
	if lineText == "" {
		style := resolveMergedStyle(st.MainStyle, nil, styling)
		lineHeight := *style.Size * *style.LineSpacing
		return Line{Rect: geo.Rectangle{X: 0, Y: y, Width: 0, Height: lineHeight}}, nil
	}

	segments := segmentLine(lineText, lineStart, st.Styles)

	line := Line{Rect: geo.Rectangle{Y: y}}
	cursorX := 0.0
	maxAscentLineHeight := 0.0
	for _, seg := range segments {
		style := resolveMergedStyle(st.MainStyle, seg.activeStyles, styling)
		font, ok := res.Font(*style.FontFamily)
		if !ok {
			return Line{}, &rendererr.ResourceError{Kind: "font", Name: *style.FontFamily}
		}
		glyphs, advanceW, err := shapeRun(seg.text, font, *style.Size)
		if err != nil {
			return Line{}, err
		}
		lineHeight := *style.Size * *style.LineSpacing
		if lineHeight > maxAscentLineHeight {
			maxAscentLineHeight = lineHeight
		}
		color := geo.Black
		if style.Color != nil {
			color = *style.Color
		}
		for _, g := range glyphs {
			line.Glyphs = append(line.Glyphs, Glyph{
				Font: font, ID: g.ID, Cluster: lineStart + seg.start + g.Cluster,
				X: cursorX + g.X, Y: y + lineHeight, FontSize: *style.Size, Color: color,
			})
		}
		if style.Underline != nil && *style.Underline {
			line.Decoration = append(line.Decoration, Decoration{
				X: cursorX, Y: y + lineHeight, Width: advanceW, Thickness: *style.Size / 14, Color: color,
			})
		}
		if style.Strikethrough != nil && *style.Strikethrough {
			line.Decoration = append(line.Decoration, Decoration{
				X: cursorX, Y: y + lineHeight*0.6, Width: advanceW, Thickness: *style.Size / 14, Color: color,
			})
		}
		cursorX += advanceW
	}
	line.Rect.Width = cursorX
	line.Rect.Height = maxAscentLineHeight
	return line, nil
}

type lineSegment struct {
	start, end    int // byte offsets within the line
	text          string
	activeStyles  []string
}

// segmentLine splits lineText at every styled-range boundary that falls
// inside it, recording which style names are active over each segment
// (outer ranges first, inner ranges last, so Merge applies inner
// overrides last).
func segmentLine(lineText string, lineStart int, ranges []textparse.StyledRange) []lineSegment {
	lineEnd := lineStart + len(lineText)
	boundarySet := map[int]bool{0: true, len(lineText): true}
	var relevant []textparse.StyledRange
	for _, r := range ranges {
		if r.End <= lineStart || r.Start >= lineEnd {
			continue
		}
		s := r.Start - lineStart
		e := r.End - lineStart
		if s < 0 {
			s = 0
		}
		if e > len(lineText) {
			e = len(lineText)
		}
		relevant = append(relevant, textparse.StyledRange{Start: s, End: e, Style: r.Style, Layer: r.Layer})
		boundarySet[s] = true
		boundarySet[e] = true
	}
	boundaries := make([]int, 0, len(boundarySet))
	for b := range boundarySet {
		boundaries = append(boundaries, b)
	}
	sort.Ints(boundaries)

	// Lower layers (e.g. syntax-highlighter token ranges) apply first so
	// higher layers win on overlap; within a layer, the widest range
	// applies first so narrower nested ranges override it.
	sort.SliceStable(relevant, func(i, j int) bool {
		if relevant[i].Layer != relevant[j].Layer {
			return relevant[i].Layer < relevant[j].Layer
		}
		return (relevant[i].End - relevant[i].Start) > (relevant[j].End - relevant[j].Start)
	})

	segs := make([]lineSegment, 0, len(boundaries)-1)
	for i := 0; i+1 < len(boundaries); i++ {
		s, e := boundaries[i], boundaries[i+1]
		if s == e {
			continue
		}
		var active []string
		for _, r := range relevant {
			if r.Start <= s && e <= r.End {
				active = append(active, r.Style)
			}
		}
		segs = append(segs, lineSegment{start: s, end: e, text: lineText[s:e], activeStyles: active})
	}
	return segs
}

func resolveMergedStyle(base textmodel.Style, activeNames []string, styling *textmodel.Styling) textmodel.Style {
	out := textmodel.Merge(textmodel.DefaultStyle(), base)
	if styling != nil {
		for _, name := range activeNames {
			if s, ok := styling.Lookup(name); ok {
				out = textmodel.Merge(out, s)
			}
		}
	}
	return out
}

type shapedGlyph struct {
	ID      int
	Cluster int
	X       float64
}

// shapeRun shapes one homogeneously-styled run with go-text/typesetting,
// returning glyph positions and the run's total advance width, both in
// points at the given font size.
func shapeRun(text string, font *resources.LoadedFont, fontSize float64) ([]shapedGlyph, float64, error) {
	runes := []rune(text)
	script := detectScript(runes)
	dir := scriptDirection(script)

	size := fixed.Int26_6(fontSize * 64)
	input := shaping.Input{
		Text: runes, RunStart: 0, RunEnd: len(runes),
		Direction: dir, Face: font.Face, Size: size,
		Script: script, Language: language.DefaultLanguage(),
	}
	output := (&shaping.HarfbuzzShaper{}).Shape(input)

	glyphs := make([]shapedGlyph, 0, len(output.Glyphs))
	x := 0.0
	byteOffset := 0
	runeByteOffsets := make([]int, len(runes)+1)
	for i, r := range runes {
		runeByteOffsets[i] = byteOffset
		byteOffset += len(string(r))
	}
	runeByteOffsets[len(runes)] = byteOffset

	for _, g := range output.Glyphs {
		cluster := 0
		if g.ClusterIndex >= 0 && g.ClusterIndex < len(runeByteOffsets) {
			cluster = runeByteOffsets[g.ClusterIndex]
		}
		glyphs = append(glyphs, shapedGlyph{ID: int(g.GlyphID), Cluster: cluster, X: x + float64(g.XOffset)/64.0})
		x += float64(g.XAdvance) / 64.0
	}
	return glyphs, x, nil
}

func scriptDirection(script language.Script) di.Direction {
	switch script {
	case language.Arabic, language.Hebrew, language.Syriac, language.Thaana, language.Nko:
		return di.DirectionRTL
	default:
		return di.DirectionLTR
	}
}

func detectScript(runes []rune) language.Script {
	counts := make(map[language.Script]int)
	maxCount := 0
	best := language.Latin
	for _, r := range runes {
		s := scriptFromRune(r)
		if s == language.Unknown {
			continue
		}
		counts[s]++
		if counts[s] > maxCount {
			maxCount = counts[s]
			best = s
		}
	}
	return best
}

func scriptFromRune(r rune) language.Script {
	switch {
	case unicode.Is(unicode.Arabic, r):
		return language.Arabic
	case unicode.Is(unicode.Hebrew, r):
		return language.Hebrew
	case unicode.Is(unicode.Han, r):
		return language.Han
	case unicode.Is(unicode.Hiragana, r):
		return language.Hiragana
	case unicode.Is(unicode.Katakana, r):
		return language.Katakana
	case unicode.Is(unicode.Hangul, r):
		return language.Hangul
	case unicode.Is(unicode.Cyrillic, r):
		return language.Cyrillic
	case unicode.Is(unicode.Greek, r):
		return language.Greek
	case unicode.Is(unicode.Latin, r):
		return language.Latin
	}
	return language.Unknown
}

// ParseTTF is re-exported for callers (e.g. resources) that need the
// same font-parsing entry point the shaper itself uses.
func ParseTTF(data []byte) (*gofont.Face, error) {
	return gofont.ParseTTF(bytes.NewReader(data))
}

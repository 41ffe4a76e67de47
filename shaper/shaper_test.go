package shaper

import (
	"testing"

	"github.com/go-text/typesetting/language"

	"github.com/wudi/slidekit/geo"
	"github.com/wudi/slidekit/textmodel"
	"github.com/wudi/slidekit/textparse"
)

func TestDetectScript(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		expect language.Script
	}{
		{"Latin", "Hello World", language.Latin},
		{"Arabic", "مرحبا بالعالم", language.Arabic},
		{"Hebrew", "שלום עולם", language.Hebrew},
		{"Cyrillic", "Привет мир", language.Cyrillic},
		{"CJK (Han)", "你好世界", language.Han},
		{"Hiragana", "こんにちは", language.Hiragana},
		{"Hangul", "안녕하세요", language.Hangul},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := detectScript([]rune(tc.input)); got != tc.expect {
				t.Errorf("detectScript(%q) = %v, want %v", tc.input, got, tc.expect)
			}
		})
	}
}

func TestSegmentLineNoStyles(t *testing.T) {
	segs := segmentLine("hello", 0, nil)
	if len(segs) != 1 || segs[0].text != "hello" {
		t.Fatalf("got %+v", segs)
	}
}

func TestSegmentLineSingleStyle(t *testing.T) {
	segs := segmentLine("hello world", 0, []textparse.StyledRange{{Start: 6, End: 11, Style: "bold"}})
	if len(segs) != 2 {
		t.Fatalf("got %+v", segs)
	}
	if segs[0].text != "hello " || segs[1].text != "world" {
		t.Fatalf("got %+v", segs)
	}
	if len(segs[1].activeStyles) != 1 || segs[1].activeStyles[0] != "bold" {
		t.Fatalf("expected bold active on second segment, got %+v", segs[1])
	}
}

func TestSegmentLineNestedStylesOuterFirst(t *testing.T) {
	// "a[b[c]d]e" with outer covering b..d, inner covering only c.
	ranges := []textparse.StyledRange{
		{Start: 1, End: 4, Style: "outer"},
		{Start: 2, End: 3, Style: "inner"},
	}
	segs := segmentLine("abcde", 0, ranges)
	var middle lineSegment
	for _, s := range segs {
		if s.text == "c" {
			middle = s
		}
	}
	if len(middle.activeStyles) != 2 || middle.activeStyles[0] != "outer" || middle.activeStyles[1] != "inner" {
		t.Fatalf("expected [outer, inner] order, got %+v", middle.activeStyles)
	}
}

func TestApplyAlignmentCenter(t *testing.T) {
	st := &ShapedText{
		Width: 100,
		Lines: []Line{{Rect: geo.Rectangle{X: 0, Y: 0, Width: 40, Height: 10}, Glyphs: []Glyph{{X: 5}}}},
	}
	applyAlignment(st, textmodel.AlignCenter)
	if st.Lines[0].Rect.X != 30 {
		t.Fatalf("rect.X = %v, want 30", st.Lines[0].Rect.X)
	}
	if st.Lines[0].Glyphs[0].X != 35 {
		t.Fatalf("glyph.X = %v, want 35", st.Lines[0].Glyphs[0].X)
	}
}

package node

import (
	"testing"

	"github.com/wudi/slidekit/rendererr"
)

func TestParseLengthPoints(t *testing.T) {
	for s, want := range map[string]float64{"12": 12, "12.5": 12.5, "0": 0} {
		l, err := ParseLength(s)
		if err != nil {
			t.Fatalf("ParseLength(%q): %v", s, err)
		}
		if l.IsFraction() || l.Points != want {
			t.Fatalf("ParseLength(%q) = %+v", s, l)
		}
	}
}

func TestParseLengthPercent(t *testing.T) {
	l, err := ParseLength("50%")
	if err != nil {
		t.Fatal(err)
	}
	if !l.IsFraction() || l.Fraction != 0.5 {
		t.Fatalf("got %+v", l)
	}
}

func TestParseLengthInvalid(t *testing.T) {
	for _, s := range []string{"", "abc", "1.2.3", "%"} {
		_, err := ParseLength(s)
		if err == nil {
			t.Fatalf("ParseLength(%q) should fail", s)
		}
		if _, ok := err.(*rendererr.FormatError); !ok {
			t.Fatalf("ParseLength(%q) error type %T", s, err)
		}
	}
}

func TestParseTrackSize(t *testing.T) {
	ts, err := ParseTrackSize("10")
	if err != nil || ts.Kind != TrackPoints || ts.Points != 10 {
		t.Fatalf("got %+v, %v", ts, err)
	}
	ts, err = ParseTrackSize("25%")
	if err != nil || ts.Kind != TrackPercent || ts.Percent != 0.25 {
		t.Fatalf("got %+v, %v", ts, err)
	}
	ts, err = ParseTrackSize("2fr")
	if err != nil || ts.Kind != TrackFlex || ts.Flex != 2 {
		t.Fatalf("got %+v, %v", ts, err)
	}
	if _, err := ParseTrackSize("fr"); err == nil {
		t.Fatal("bare fr should fail")
	}
}

func TestParseGridPlacement(t *testing.T) {
	p, err := ParseGridPlacement("auto")
	if err != nil || p.Kind != GridAuto {
		t.Fatalf("got %+v, %v", p, err)
	}
	p, err = ParseGridPlacement("3")
	if err != nil || p.Kind != GridLine || p.N != 3 {
		t.Fatalf("got %+v, %v", p, err)
	}
	p, err = ParseGridPlacement("span 2")
	if err != nil || p.Kind != GridSpan || p.N != 2 {
		t.Fatalf("got %+v, %v", p, err)
	}
	if _, err := ParseGridPlacement("span x"); err == nil {
		t.Fatal("invalid span should fail")
	}
}

func TestPageNSteps(t *testing.T) {
	page := NewPage(0, 10, 10)
	if page.NSteps() != 1 {
		t.Fatalf("constant page NSteps = %d, want 1", page.NSteps())
	}
}

package node

import (
	"strconv"
	"strings"

	"github.com/wudi/slidekit/rendererr"
)

// ParseLength parses a host-supplied length string: `f[.f]` for
// absolute points or `f[.f]%` for a fraction of the containing block.
func ParseLength(s string) (Length, error) {
	s = strings.TrimSpace(s)
	if strings.HasSuffix(s, "%") {
		v, err := strconv.ParseFloat(strings.TrimSpace(s[:len(s)-1]), 64)
		if err != nil {
			return Length{}, &rendererr.FormatError{Kind: "length", Value: s}
		}
		return Frac(v / 100), nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Length{}, &rendererr.FormatError{Kind: "length", Value: s}
	}
	return Pt(v), nil
}

// ParseTrackSize parses one grid-template track entry: a length in
// points, a percentage of the container, or a flex fraction like "1fr".
func ParseTrackSize(s string) (TrackSize, error) {
	s = strings.TrimSpace(s)
	if strings.HasSuffix(s, "fr") {
		v, err := strconv.ParseFloat(strings.TrimSpace(s[:len(s)-2]), 64)
		if err != nil || v <= 0 {
			return TrackSize{}, &rendererr.FormatError{Kind: "grid-track", Value: s}
		}
		return TrackSize{Kind: TrackFlex, Flex: v}, nil
	}
	l, err := ParseLength(s)
	if err != nil {
		return TrackSize{}, &rendererr.FormatError{Kind: "grid-track", Value: s}
	}
	if l.IsFraction() {
		return TrackSize{Kind: TrackPercent, Percent: l.Fraction}, nil
	}
	return TrackSize{Kind: TrackPoints, Points: l.Points}, nil
}

// ParseGridPlacement parses a grid_row/grid_column token: "auto", a
// line index, or "span n".
func ParseGridPlacement(s string) (GridPlacement, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "auto" {
		return GridPlacement{Kind: GridAuto}, nil
	}
	if rest, ok := strings.CutPrefix(s, "span"); ok {
		n, err := strconv.Atoi(strings.TrimSpace(rest))
		if err != nil || n < 1 {
			return GridPlacement{}, &rendererr.FormatError{Kind: "grid-placement", Value: s}
		}
		return GridPlacement{Kind: GridSpan, N: n}, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return GridPlacement{}, &rendererr.FormatError{Kind: "grid-placement", Value: s}
	}
	return GridPlacement{Kind: GridLine, N: n}, nil
}

package canvas

import (
	"math"

	"github.com/wudi/slidekit/geo"
	"github.com/wudi/slidekit/node"
)

// applyArrows rewrites the first/last path segment to retract the line
// under a filled or stroked arrowhead and appends the arrowhead's own
// path parts, per spec §4.9's arrow geometry (wing angle, retraction,
// notch). A nil start/end leaves that end of the path untouched.
func applyArrows(parts []ResolvedPathPart, start, end *node.Arrow, stroke *geo.Stroke) []ResolvedPathPart {
	if len(parts) < 2 {
		return parts
	}
	if end != nil {
		parts = appendArrowhead(parts, end, false, stroke)
	}
	if start != nil {
		parts = appendArrowhead(parts, start, true, stroke)
	}
	return parts
}

// appendArrowhead draws an arrowhead at the path's start or end point,
// retracting the adjoining segment's endpoint so the line disappears
// under the arrowhead rather than poking through its tip.
func appendArrowhead(parts []ResolvedPathPart, a *node.Arrow, atStart bool, lineStroke *geo.Stroke) []ResolvedPathPart {
	tipIdx, fromIdx := len(parts)-1, len(parts)-2
	if atStart {
		tipIdx, fromIdx = 0, 1
	}
	tip := geo.Point{X: parts[tipIdx].X, Y: parts[tipIdx].Y}
	from := geo.Point{X: parts[fromIdx].X, Y: parts[fromIdx].Y}

	dx, dy := tip.X-from.X, tip.Y-from.Y
	theta := math.Atan2(dy, dx) + math.Pi

	angle := a.AngleDeg * math.Pi / 180
	wingLen := a.Size

	filled := a.StrokeWidth == nil
	var retract float64
	if filled {
		inner := 0.0
		if a.InnerPoint != nil {
			inner = *a.InnerPoint
		}
		retract = a.Size * inner / 2
	} else if lineStroke != nil {
		retract = lineStroke.Width / 2
	}

	ux, uy := math.Cos(theta+math.Pi), math.Sin(theta+math.Pi)
	if l := math.Hypot(dx, dy); l > 0 {
		ux, uy = dx/l, dy/l
	}
	retractedTip := geo.Point{
		X: tip.X - retract*ux,
		Y: tip.Y - retract*uy,
	}
	parts[tipIdx].X, parts[tipIdx].Y = retractedTip.X, retractedTip.Y

	wing1 := geo.Point{
		X: tip.X + wingLen*math.Cos(theta+angle),
		Y: tip.Y + wingLen*math.Sin(theta+angle),
	}
	wing2 := geo.Point{
		X: tip.X + wingLen*math.Cos(theta-angle),
		Y: tip.Y + wingLen*math.Sin(theta-angle),
	}

	head := []ResolvedPathPart{
		{Kind: node.PathMoveTo, X: tip.X, Y: tip.Y},
		{Kind: node.PathLineTo, X: wing1.X, Y: wing1.Y},
	}
	if filled && a.InnerPoint != nil {
		notch := geo.Point{
			X: tip.X - (*a.InnerPoint)*wingLen*math.Cos(theta),
			Y: tip.Y - (*a.InnerPoint)*wingLen*math.Sin(theta),
		}
		head = append(head, ResolvedPathPart{Kind: node.PathLineTo, X: notch.X, Y: notch.Y})
	}
	head = append(head,
		ResolvedPathPart{Kind: node.PathLineTo, X: wing2.X, Y: wing2.Y},
		ResolvedPathPart{Kind: node.PathClose},
	)

	return append(parts, head...)
}

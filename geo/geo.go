// Package geo holds the geometric and color primitives shared by every
// later stage of the rendering pipeline: points, rectangles, colors with
// alpha, and the stroke/fill paint description attached to shapes.
package geo

import "math"

// Point is a location in page coordinates (points, y grows downward).
type Point struct {
	X, Y float64
}

// Rectangle is an axis-aligned box in page coordinates.
type Rectangle struct {
	X, Y, Width, Height float64
}

// Right returns the x coordinate of the rectangle's right edge.
func (r Rectangle) Right() float64 { return r.X + r.Width }

// Bottom returns the y coordinate of the rectangle's bottom edge.
func (r Rectangle) Bottom() float64 { return r.Y + r.Height }

// Center returns the rectangle's midpoint.
func (r Rectangle) Center() Point {
	return Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// InvertY flips the rectangle's y coordinate against a page of height h,
// turning a top-down rect into the bottom-up coordinate system PDF uses.
func (r Rectangle) InvertY(h float64) Rectangle {
	return Rectangle{X: r.X, Y: h - r.Y - r.Height, Width: r.Width, Height: r.Height}
}

// FitContent fits an intrinsic w×h content box into r, preserving aspect
// ratio and centering the result. Grounded on nelsie's
// fit_content_with_aspect_ratio: when the content is relatively wider than
// r, width is pinned to r's and height shrinks; otherwise the reverse.
func FitContent(r Rectangle, w, h float64) Rectangle {
	if w <= 0 || h <= 0 {
		return Rectangle{X: r.X, Y: r.Y, Width: 0, Height: 0}
	}
	var out Rectangle
	if w/h > r.Width/r.Height {
		out.Width = r.Width
		out.Height = r.Width * h / w
	} else {
		out.Height = r.Height
		out.Width = r.Height * w / h
	}
	out.X = r.X + (r.Width-out.Width)/2
	out.Y = r.Y + (r.Height-out.Height)/2
	return out
}

// Color is an RGB color with an 8-bit alpha channel, matching the PDF/SVG
// sRGB model used throughout the backends.
type Color struct {
	R, G, B, A uint8
}

// Opaque reports whether the color's alpha channel is fully opaque.
func (c Color) Opaque() bool { return c.A == 255 }

// AlphaFraction returns the alpha channel as a 0..1 fraction, the unit
// PDF ExtGState CA/ca entries and SVG fill-opacity attributes expect.
func (c Color) AlphaFraction() float64 { return float64(c.A) / 255.0 }

// Black is the default text/stroke color used when a style omits one.
var Black = Color{R: 0, G: 0, B: 0, A: 255}

// Stroke describes outline paint for a shape or path.
type Stroke struct {
	Color Color
	Width float64
	Dash  []float64
}

// Fill describes solid paint for a shape's interior.
type Fill struct {
	Color Color
}

// Matrix is an affine 2D transform in PDF's row-vector convention,
// carried over unmodified from the teacher's coords package.
type Matrix [6]float64

// Identity returns the identity transform.
func Identity() Matrix { return Matrix{1, 0, 0, 1, 0, 0} }

// Translate returns a pure-translation transform.
func Translate(tx, ty float64) Matrix { return Matrix{1, 0, 0, 1, tx, ty} }

// Scale returns a pure-scale transform.
func Scale(sx, sy float64) Matrix { return Matrix{sx, 0, 0, sy, 0, 0} }

// Multiply composes m followed by o (m is applied first).
func (m Matrix) Multiply(o Matrix) Matrix {
	return Matrix{
		m[0]*o[0] + m[1]*o[2], m[0]*o[1] + m[1]*o[3],
		m[2]*o[0] + m[3]*o[2], m[2]*o[1] + m[3]*o[3],
		m[4]*o[0] + m[5]*o[2] + o[4], m[4]*o[1] + m[5]*o[3] + o[5],
	}
}

// Transform applies the matrix to a point.
func (m Matrix) Transform(p Point) Point {
	return Point{X: m[0]*p.X + m[2]*p.Y + m[4], Y: m[1]*p.X + m[3]*p.Y + m[5]}
}

// NearlyUnitScale reports whether sx and sy are within 1e-6 of 1, the
// threshold the SVG backend uses to decide whether a `scale(...)` term
// is worth emitting alongside a `translate(...)`.
func NearlyUnitScale(sx, sy float64) bool {
	const eps = 1e-6
	return math.Abs(sx-1) < eps && math.Abs(sy-1) < eps
}

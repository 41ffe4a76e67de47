// Package rendererr defines the error taxonomy described in spec §7:
// Parsing, Resource, IO, Format, Conversion, and Internal error kinds,
// each a distinct type so callers can discriminate with errors.As.
// Modeled on the teacher's compliance/security packages, which define
// their own plain error structs instead of reaching for a generic
// errors-wrapping library.
package rendererr

import "fmt"

// ParsingError reports malformed inline markup, an unknown style name,
// or an unclosed style block.
type ParsingError struct {
	Text   string
	Offset int
	Reason string
}

func (e *ParsingError) Error() string {
	return fmt.Sprintf("parsing error at offset %d: %s", e.Offset, e.Reason)
}

// ResourceError reports a missing font family, syntax, or theme, or an
// unparseable font file or unrecognized image format.
type ResourceError struct {
	Kind string // "font" | "syntax" | "theme" | "image"
	Name string
}

func (e *ResourceError) Error() string {
	return fmt.Sprintf("resource error: %s %q not found or unusable", e.Kind, e.Name)
}

// IOError wraps a failure reading an input image or writing output.
type IOError struct {
	Path string
	Op   string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("io error during %s %q: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// FormatError reports an invalid color string, length string, grid
// track or placement token, or an unknown output format.
type FormatError struct {
	Kind  string // "color" | "length" | "grid-track" | "grid-placement" | "format"
	Value string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("format error: invalid %s %q", e.Kind, e.Value)
}

// ConversionError reports an SVG-to-PDF conversion failure or a PNG
// encoding failure.
type ConversionError struct {
	Stage string
	Err   error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("conversion error during %s: %v", e.Stage, e.Err)
}

func (e *ConversionError) Unwrap() error { return e.Err }

// InternalError reports a LayoutExpr referencing an unknown or
// not-yet-resolved node id — a programmer error in the host's document,
// fatal but not a panic.
type InternalError struct {
	ReferringNode  int
	ReferencedNode int
	Reason         string
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("internal error: node %d: %s (referenced node %d)",
		e.ReferringNode, e.Reason, e.ReferencedNode)
}

package content

import (
	"bytes"
	"fmt"
	"image"

	"github.com/wudi/slidekit/geo"
	"github.com/wudi/slidekit/rendererr"
	"github.com/wudi/slidekit/syntaxhl"
	"github.com/wudi/slidekit/textmodel"
	"github.com/wudi/slidekit/textparse"
)

// parseAndHighlight runs t's source through the inline-markup parser
// and, when t.SyntaxHl is set, layers chroma's token ranges underneath
// the parsed user styles (spec §4.5: "token ranges are prepended to the
// user styles"). Token colors are injected as synthetic named styles on
// a copy of t's Styling table so the shaper's ordinary named-style
// lookup picks them up without any special-casing downstream.
func parseAndHighlight(t *textmodel.Text) (*textparse.StyledText, *textmodel.Styling, error) {
	st, err := textparse.Parse(t.Source, t.MainStyle, t.Styling, t.TextAlign)
	if err != nil {
		return nil, nil, err
	}
	if t.SyntaxHl == nil {
		return st, t.Styling, nil
	}

	tokens, err := syntaxhl.Highlight(st.Text, t.SyntaxHl.Language, t.SyntaxHl.Theme)
	if err != nil {
		return nil, nil, err
	}

	ext := textmodel.Styling{}
	if t.Styling != nil {
		ext.ParsingChars = t.Styling.ParsingChars
		ext.NamedStyles = append(ext.NamedStyles, t.Styling.NamedStyles...)
	}

	tokenStyles := make([]textparse.StyledRange, 0, len(tokens))
	seen := map[string]bool{}
	for _, tok := range tokens {
		name := "chroma:" + tok.Color
		if !seen[name] {
			seen[name] = true
			color, perr := parseHexColor(tok.Color)
			if perr != nil {
				return nil, nil, perr
			}
			ext.NamedStyles = append(ext.NamedStyles, textmodel.NamedStyle{
				Name: name, Style: textmodel.Style{Color: &color},
			})
		}
		tokenStyles = append(tokenStyles, textparse.StyledRange{Start: tok.Start, End: tok.End, Style: name, Layer: -1})
	}

	st.Styles = append(tokenStyles, st.Styles...)
	return st, &ext, nil
}

func parseHexColor(hex string) (geo.Color, error) {
	var c geo.Color
	if len(hex) != 7 || hex[0] != '#' {
		return c, &rendererr.FormatError{Kind: "color", Value: hex}
	}
	var r, g, b int
	if _, err := fmt.Sscanf(hex[1:], "%02x%02x%02x", &r, &g, &b); err != nil {
		return c, &rendererr.FormatError{Kind: "color", Value: hex}
	}
	c.R, c.G, c.B, c.A = uint8(r), uint8(g), uint8(b), 255
	return c, nil
}

// decodeRasterImage decodes a registered binary image payload with the
// standard library's registered image decoders (png/jpeg), returning
// the decoded image plus the format name stdlib detected.
func decodeRasterImage(payload *ImagePayload) (image.Image, string, error) {
	img, format, err := image.Decode(bytes.NewReader(payload.Data))
	if err != nil {
		return nil, "", &rendererr.ResourceError{Kind: "image", Name: payload.Format}
	}
	return img, format, nil
}

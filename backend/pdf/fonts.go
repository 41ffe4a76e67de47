// Font resource embedding: each distinct LoadedFont used by a document
// becomes one Identity-H CIDFontType2 descendant font with its raw
// TrueType/OpenType bytes embedded via FontFile2, addressed by glyph id
// directly (2-byte CID == GID, matching what shaper.Glyph.ID already
// carries from go-text/typesetting's shaping pass -- no re-encoding
// through character codes is needed). Grounded on
// original_source/renderer/src/render/composer_pdf.rs's font embedding
// step; CIDFontType2/Identity-H is the standard idiom for painting
// shaper-resolved glyph ids directly, as sketched by the teacher's own
// fonts/opentype.go metrics extraction.
package pdf

import (
	"github.com/wudi/slidekit/ir/raw"
	"github.com/wudi/slidekit/resources"
)

// fontResource is one embedded font's allocated object references.
type fontResource struct {
	name       raw.NameObj // resource dictionary key, e.g. "F0"
	compositeR raw.ObjectRef
}

// ensureFont returns the resource name/ref for font, embedding it into
// the builder on first use and reusing the cached entry afterward.
func (c *Composer) ensureFont(font *resources.LoadedFont) (raw.NameObj, raw.ObjectRef) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if f, ok := c.fonts[font.Family]; ok {
		return f.name, f.compositeR
	}

	descendantRef := c.builder.Alloc()
	fileRef := c.builder.Alloc()
	descriptorRef := c.builder.Alloc()
	compositeRef := c.builder.Alloc()

	fontFile, err := c.builder.NewStream(rawDictWith("Length1", raw.NumberInt(int64(len(font.Data)))), font.Data, true, c.compressionLevel)
	if err != nil {
		fontFile = raw.NewStream(raw.Dict(), font.Data)
	}
	c.builder.Set(fileRef, fontFile)

	descriptor := raw.Dict()
	descriptor.Set(raw.NameLiteral("Type"), raw.NameLiteral("FontDescriptor"))
	descriptor.Set(raw.NameLiteral("FontName"), raw.NameLiteral(font.Family))
	descriptor.Set(raw.NameLiteral("Flags"), raw.NumberInt(4))
	descriptor.Set(raw.NameLiteral("ItalicAngle"), raw.NumberInt(0))
	descriptor.Set(raw.NameLiteral("Ascent"), raw.NumberInt(1000))
	descriptor.Set(raw.NameLiteral("Descent"), raw.NumberInt(-200))
	descriptor.Set(raw.NameLiteral("CapHeight"), raw.NumberInt(700))
	descriptor.Set(raw.NameLiteral("StemV"), raw.NumberInt(80))
	descriptor.Set(raw.NameLiteral("FontFile2"), raw.Ref(fileRef.Num, fileRef.Gen))
	c.builder.Set(descriptorRef, descriptor)

	descendant := raw.Dict()
	descendant.Set(raw.NameLiteral("Type"), raw.NameLiteral("Font"))
	descendant.Set(raw.NameLiteral("Subtype"), raw.NameLiteral("CIDFontType2"))
	descendant.Set(raw.NameLiteral("BaseFont"), raw.NameLiteral(font.Family))
	descendant.Set(raw.NameLiteral("CIDToGIDMap"), raw.NameLiteral("Identity"))
	descendant.Set(raw.NameLiteral("FontDescriptor"), raw.Ref(descriptorRef.Num, descriptorRef.Gen))
	cidSysInfo := raw.Dict()
	cidSysInfo.Set(raw.NameLiteral("Registry"), raw.Str([]byte("Adobe")))
	cidSysInfo.Set(raw.NameLiteral("Ordering"), raw.Str([]byte("Identity")))
	cidSysInfo.Set(raw.NameLiteral("Supplement"), raw.NumberInt(0))
	descendant.Set(raw.NameLiteral("CIDSystemInfo"), cidSysInfo)
	c.builder.Set(descendantRef, descendant)

	composite := raw.Dict()
	composite.Set(raw.NameLiteral("Type"), raw.NameLiteral("Font"))
	composite.Set(raw.NameLiteral("Subtype"), raw.NameLiteral("Type0"))
	composite.Set(raw.NameLiteral("BaseFont"), raw.NameLiteral(font.Family))
	composite.Set(raw.NameLiteral("Encoding"), raw.NameLiteral("Identity-H"))
	composite.Set(raw.NameLiteral("DescendantFonts"), raw.NewArray(raw.Ref(descendantRef.Num, descendantRef.Gen)))
	c.builder.Set(compositeRef, composite)

	name := raw.NameLiteral("F" + itoa(len(c.fonts)))
	c.fonts[font.Family] = fontResource{name: name, compositeR: compositeRef}
	return name, compositeRef
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var digits []byte
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return string(digits)
}

func rawDictWith(key string, val raw.Object) *raw.DictObj {
	d := raw.Dict()
	d.Set(raw.NameLiteral(key), val)
	return d
}

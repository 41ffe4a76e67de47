// Package resources owns the font collection used for shaping, the
// syntax set, and the theme set, per spec §4.7. It holds no separate
// font database for rasterizing or embedding SVG assets. Retargeted from the teacher's
// resources package (the lifecycle pattern -- lazily populated,
// explicitly-constructed tables with no global state -- is kept; the
// teacher's PDF-resource-dictionary-inheritance content is replaced by
// font/syntax/theme directory loading, grounded on
// original_source/renderer/src/resources.rs).
package resources

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	gofont "github.com/go-text/typesetting/font"

	"github.com/wudi/slidekit/rendererr"
)

// fontFileExtensions are the extensions resources.rs walks a font
// directory for.
var fontFileExtensions = map[string]bool{
	".ttf": true, ".otf": true, ".ttc": true, ".otc": true,
}

// LoadedFont is one font family's parsed face plus its raw bytes (the
// raw bytes are what the shaper and PDF backend embed).
type LoadedFont struct {
	Family string
	Data   []byte
	Face   *gofont.Face
}

// Resources is the read side of the host's font/syntax/theme
// environment: built once, then shared immutably across every
// preprocessing worker (spec §5's "Resources... immutable after
// preprocessing").
type Resources struct {
	genericFamilies map[string]string // "sans-serif" etc. -> concrete family name
	fonts           map[string]*LoadedFont
	syntaxes        map[string]bool
	themes          map[string]bool
}

// New returns an empty Resources; populate with RegisterGenericFamily,
// AddFontDirectory, AddSyntaxDirectory, AddThemeDirectory before
// rendering.
func New() *Resources {
	return &Resources{
		genericFamilies: map[string]string{},
		fonts:           map[string]*LoadedFont{},
		syntaxes:        map[string]bool{"text": true},
		themes:          map[string]bool{"default": true},
	}
}

// RegisterGenericFamily maps a CSS-style generic family name
// ("sans-serif", "serif", "monospace") to a concrete loaded family.
func (r *Resources) RegisterGenericFamily(generic, concrete string) {
	r.genericFamilies[generic] = concrete
}

// AddFont registers a single already-loaded font under family.
func (r *Resources) AddFont(family string, data []byte) error {
	face, err := gofont.ParseTTF(bytes.NewReader(data))
	if err != nil {
		return &rendererr.ResourceError{Kind: "font", Name: family}
	}
	r.fonts[family] = &LoadedFont{Family: family, Data: data, Face: face}
	return nil
}

// AddFontDirectory walks dir non-recursively, loading every file whose
// extension is ttf/otf/ttc/otc, registered under its base filename
// (without extension) as the family name -- matching the directory-walk
// and extension-filter behavior of original_source's resources.rs.
func (r *Resources) AddFontDirectory(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return &rendererr.IOError{Path: dir, Op: "read font directory", Err: err}
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if !fontFileExtensions[ext] {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return &rendererr.IOError{Path: path, Op: "read font file", Err: err}
		}
		family := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		if err := r.AddFont(family, data); err != nil {
			return err
		}
	}
	return nil
}

// AddSyntaxDirectory registers every file's base name (extension
// stripped, lowercased) as a recognized syntax key. The actual tokenization still
// goes through chroma's built-in lexer table (syntaxhl.Highlight); this
// records which extra names the host has made available, mirroring
// resources.rs's syntax-set-from-folder API without vendoring a full
// custom grammar loader.
func (r *Resources) AddSyntaxDirectory(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return &rendererr.IOError{Path: dir, Op: "read syntax directory", Err: err}
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		r.syntaxes[strings.ToLower(name)] = true
	}
	return nil
}

// AddThemeDirectory registers every file's base name as a recognized
// theme key, mirroring AddSyntaxDirectory.
func (r *Resources) AddThemeDirectory(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return &rendererr.IOError{Path: dir, Op: "read theme directory", Err: err}
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		r.themes[strings.ToLower(name)] = true
	}
	return nil
}

// CheckFont accepts a recognized generic family or any loaded family
// name; rejection is surfaced to the host as a ResourceError.
func (r *Resources) CheckFont(family string) error {
	if _, ok := r.genericFamilies[family]; ok {
		return nil
	}
	if _, ok := r.fonts[family]; ok {
		return nil
	}
	return &rendererr.ResourceError{Kind: "font", Name: family}
}

// Font resolves family (following one level of generic-family
// indirection) to its loaded font, for the shaper.
func (r *Resources) Font(family string) (*LoadedFont, bool) {
	if concrete, ok := r.genericFamilies[family]; ok {
		family = concrete
	}
	f, ok := r.fonts[family]
	return f, ok
}

// ListSyntaxes returns every recognized syntax key.
func (r *Resources) ListSyntaxes() []string {
	out := make([]string, 0, len(r.syntaxes))
	for k := range r.syntaxes {
		out = append(out, k)
	}
	return out
}

// ListThemes returns every recognized theme key.
func (r *Resources) ListThemes() []string {
	out := make([]string, 0, len(r.themes))
	for k := range r.themes {
		out = append(out, k)
	}
	return out
}

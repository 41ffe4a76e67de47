package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/wudi/slidekit/geo"
	"github.com/wudi/slidekit/node"
	"github.com/wudi/slidekit/rendererr"
)

// PadWidth returns the zero-padding width for per-page output
// filenames: the number of digits in the page count (spec §6).
func PadWidth(nPages int) int {
	w := 1
	for nPages >= 10 {
		nPages /= 10
		w++
	}
	return w
}

// PageFilename formats one page's output filename:
// zero-padded index plus extension (spec §6 "Filename padding").
func PageFilename(idx, nPages int, ext string) string {
	return fmt.Sprintf("%0*d.%s", PadWidth(nPages), idx, ext)
}

func writeFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return &rendererr.IOError{Op: "write " + path, Err: err}
	}
	return nil
}

// writePageFiles writes one file per page into the directory at path,
// creating it first. Callers treat the directory as invalid on error
// (spec §7: no atomic rename in the core).
func writePageFiles[T any](path string, format Format, pages []T, encode func(T) []byte) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return &rendererr.IOError{Op: "mkdir " + path, Err: err}
	}
	for i, p := range pages {
		name := filepath.Join(path, PageFilename(i, len(pages), format.Ext()))
		if err := os.WriteFile(name, encode(p), 0o644); err != nil {
			return &rendererr.IOError{Op: "write " + name, Err: err}
		}
	}
	return nil
}

// layoutEntry is the JSON shape of one resolved node rectangle in a
// layout report file.
type layoutEntry struct {
	Node   int     `json:"node"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func writeLayoutReport(path string, pages []map[node.Id]geo.Rectangle) error {
	report := make([][]layoutEntry, len(pages))
	for i, rects := range pages {
		ids := make([]node.Id, 0, len(rects))
		for id := range rects {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(a, b int) bool { return ids[a] < ids[b] })
		entries := make([]layoutEntry, 0, len(ids))
		for _, id := range ids {
			r := rects[id]
			entries = append(entries, layoutEntry{
				Node: int(id), X: r.X, Y: r.Y, Width: r.Width, Height: r.Height,
			})
		}
		report[i] = entries
	}
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return &rendererr.IOError{Op: "encode layout report", Err: err}
	}
	return writeFile(path, data)
}

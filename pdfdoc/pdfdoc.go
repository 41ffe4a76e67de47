// Package pdfdoc is a minimal, write-only PDF object model and
// serializer: an indirect-object allocator plus a classic
// (non-cross-reference-stream) xref table and trailer writer. Adapted
// from the teacher's ir/raw object types and the serialization idiom of
// writer/writer_impl.go's SerializeObject/serializePrimitive, rewritten
// fresh here because that file is wired to ir/semantic.Document's
// general-purpose foreign-PDF-editing model, which this spec never
// needs (spec §4.11 only ever produces fresh output).
package pdfdoc

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"sort"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zlib"

	"github.com/wudi/slidekit/ir/raw"
	"github.com/wudi/slidekit/rendererr"
)

// fileIDNamespace is a fixed namespace UUID used to derive deterministic
// PDF file IDs (spec's SUPPLEMENTED FEATURES: "deterministic PDF file
// IDs via uuid.v5") so two renders of the same document byte-for-byte
// produce the same /ID entry.
var fileIDNamespace = uuid.MustParse("6f53a3d2-9b0e-4e07-8f39-6d1c9a7b5e2a")

// Builder accumulates indirect PDF objects and serializes them, plus a
// trailer, to a complete PDF file.
type Builder struct {
	nextNum int
	order   []raw.ObjectRef
	objects map[raw.ObjectRef]raw.Object

	catalog raw.ObjectRef
	info    *raw.ObjectRef
}

// NewBuilder returns an empty Builder; object numbers start at 1 (0 is
// reserved for the free-list head per the PDF spec).
func NewBuilder() *Builder {
	return &Builder{nextNum: 1, objects: map[raw.ObjectRef]raw.Object{}}
}

// Alloc reserves the next indirect object number without assigning its
// value yet, for forward references (e.g. a page referencing a content
// stream allocated later in the same pass).
func (b *Builder) Alloc() raw.ObjectRef {
	ref := raw.ObjectRef{Num: b.nextNum, Gen: 0}
	b.nextNum++
	b.order = append(b.order, ref)
	return ref
}

// Set assigns obj to a previously Alloc'd ref.
func (b *Builder) Set(ref raw.ObjectRef, obj raw.Object) {
	b.objects[ref] = obj
}

// Add allocates a new indirect object number and assigns obj to it in
// one step, returning the new reference.
func (b *Builder) Add(obj raw.Object) raw.ObjectRef {
	ref := b.Alloc()
	b.Set(ref, obj)
	return ref
}

// SetCatalog records which object is the document catalog, required in
// the trailer's /Root entry.
func (b *Builder) SetCatalog(ref raw.ObjectRef) { b.catalog = ref }

// SetInfo records which object is the document information dictionary,
// written to the trailer's /Info entry when present.
func (b *Builder) SetInfo(ref raw.ObjectRef) { b.info = &ref }

// NewStream builds a Stream object, Flate-compressing data when compress
// is true (spec §4.11: "optional FlateDecode compression"); a level
// outside 0-9 selects zlib's default level. dict's /Length and /Filter
// are set here.
func (b *Builder) NewStream(dict *raw.DictObj, data []byte, compress bool, level int) (*raw.StreamObj, error) {
	if dict == nil {
		dict = raw.Dict()
	}
	payload := data
	if compress {
		compressed, err := flateEncode(data, level)
		if err != nil {
			return nil, &rendererr.IOError{Op: "flate-encode", Err: err}
		}
		payload = compressed
		dict.Set(raw.NameLiteral("Filter"), raw.NameLiteral("FlateDecode"))
	}
	dict.Set(raw.NameLiteral("Length"), raw.NumberInt(int64(len(payload))))
	return raw.NewStream(dict, payload), nil
}

func flateEncode(data []byte, level int) ([]byte, error) {
	var buf bytes.Buffer
	if level < 0 || level > 9 {
		level = zlib.DefaultCompression
	}
	w, err := zlib.NewWriterLevel(&buf, level)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// FileID derives a deterministic PDF file identifier from seed: equal
// seeds always produce the same /ID, different seeds different ones.
func FileID(seed []byte) []byte {
	id := uuid.NewSHA1(fileIDNamespace, seed)
	return id[:]
}

// WriteTo serializes every allocated object plus a classic xref table
// and trailer to w, producing a complete PDF 1.7 file. fileID is used
// verbatim (twice) as the trailer's /ID entries.
func (b *Builder) WriteTo(w io.Writer, fileID []byte) error {
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.7\n%\xe2\xe3\xcf\xd3\n")

	offsets := make(map[int]int64, len(b.order))
	maxNum := 0
	for _, ref := range b.order {
		obj, ok := b.objects[ref]
		if !ok {
			continue // Alloc'd but never Set: caller error, skip rather than emit a dangling ref
		}
		offsets[ref.Num] = int64(buf.Len())
		if ref.Num > maxNum {
			maxNum = ref.Num
		}
		fmt.Fprintf(&buf, "%d %d obj\n", ref.Num, ref.Gen)
		buf.Write(serializeObject(obj))
		buf.WriteString("\nendobj\n")
	}

	xrefOffset := buf.Len()
	size := maxNum + 1
	buf.WriteString("xref\n")
	fmt.Fprintf(&buf, "0 %d\n", size)
	buf.WriteString("0000000000 65535 f \n")
	for n := 1; n < size; n++ {
		off, ok := offsets[n]
		if !ok {
			buf.WriteString("0000000000 00000 f \n")
			continue
		}
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}

	trailer := raw.Dict()
	trailer.Set(raw.NameLiteral("Size"), raw.NumberInt(int64(size)))
	trailer.Set(raw.NameLiteral("Root"), raw.Ref(b.catalog.Num, b.catalog.Gen))
	if b.info != nil {
		trailer.Set(raw.NameLiteral("Info"), raw.Ref(b.info.Num, b.info.Gen))
	}
	idArr := raw.NewArray(raw.Str(fileID), raw.Str(fileID))
	trailer.Set(raw.NameLiteral("ID"), idArr)

	buf.WriteString("trailer\n")
	buf.Write(serializeObject(trailer))
	buf.WriteString("\n")
	fmt.Fprintf(&buf, "startxref\n%d\n%%%%EOF", xrefOffset)

	if _, err := w.Write(buf.Bytes()); err != nil {
		return &rendererr.IOError{Op: "write", Err: err}
	}
	return nil
}

// serializeObject renders a single raw.Object to PDF syntax. Dict keys
// are sorted for deterministic output across runs (spec's determinism
// property, §8).
func serializeObject(o raw.Object) []byte {
	switch v := o.(type) {
	case raw.NameObj:
		return []byte("/" + v.Value())
	case raw.NumberObj:
		if v.IsInteger() {
			return []byte(fmt.Sprintf("%d", v.Int()))
		}
		return []byte(fmt.Sprintf("%g", v.Float()))
	case raw.StringObj:
		dst := make([]byte, hex.EncodedLen(len(v.Value())))
		hex.Encode(dst, v.Value())
		return []byte("<" + string(dst) + ">")
	case *raw.ArrayObj:
		var buf bytes.Buffer
		buf.WriteByte('[')
		for i, it := range v.Items {
			if i > 0 {
				buf.WriteByte(' ')
			}
			buf.Write(serializeObject(it))
		}
		buf.WriteByte(']')
		return buf.Bytes()
	case *raw.DictObj:
		var buf bytes.Buffer
		buf.WriteString("<<")
		keys := make([]string, 0, len(v.KV))
		for k := range v.KV {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			buf.WriteString("/" + k + " ")
			buf.Write(serializeObject(v.KV[k]))
			buf.WriteByte(' ')
		}
		buf.WriteString(">>")
		return buf.Bytes()
	case *raw.StreamObj:
		var buf bytes.Buffer
		buf.Write(serializeObject(v.Dict))
		buf.WriteString("\nstream\n")
		buf.Write(v.Data)
		buf.WriteString("\nendstream")
		return buf.Bytes()
	case raw.RefObj:
		return []byte(fmt.Sprintf("%d %d R", v.Ref().Num, v.Ref().Gen))
	default:
		return []byte("null")
	}
}

package raw

// The emit-side object set: just enough structure for the composer to
// assemble catalogs, page dicts, content streams, and X-objects, and
// for the serializer to render them.

// NameObj is a PDF name, used both as a value and as a dictionary key.
type NameObj struct{ Val string }

func (NameObj) pdfObject() {}

// Value returns the name without its leading slash.
func (n NameObj) Value() string { return n.Val }

// NumberObj is a PDF numeric value; IsInt selects integer or real
// serialization.
type NumberObj struct {
	I     int64
	F     float64
	IsInt bool
}

func (NumberObj) pdfObject() {}

func (n NumberObj) Int() int64 { return n.I }
func (n NumberObj) Float() float64 {
	if n.IsInt {
		return float64(n.I)
	}
	return n.F
}
func (n NumberObj) IsInteger() bool { return n.IsInt }

// StringObj is a PDF string, serialized in hex form.
type StringObj struct{ Bytes []byte }

func (StringObj) pdfObject() {}

func (s StringObj) Value() []byte { return s.Bytes }

// ArrayObj is a PDF array.
type ArrayObj struct{ Items []Object }

func (*ArrayObj) pdfObject() {}

// Append adds o to the end of the array.
func (a *ArrayObj) Append(o Object) { a.Items = append(a.Items, o) }

// DictObj is a PDF dictionary keyed by name.
type DictObj struct{ KV map[string]Object }

func (*DictObj) pdfObject() {}

// Get returns the entry stored under key, if present.
func (d *DictObj) Get(key NameObj) (Object, bool) {
	o, ok := d.KV[key.Value()]
	return o, ok
}

// Set stores value under key, allocating the map on first use.
func (d *DictObj) Set(key NameObj, value Object) {
	if d.KV == nil {
		d.KV = make(map[string]Object)
	}
	d.KV[key.Value()] = value
}

// StreamObj is a PDF stream: its dictionary plus the (possibly
// compressed) payload bytes.
type StreamObj struct {
	Dict *DictObj
	Data []byte
}

func (*StreamObj) pdfObject() {}

// RefObj is an indirect object reference value.
type RefObj struct{ R ObjectRef }

func (RefObj) pdfObject() {}

func (r RefObj) Ref() ObjectRef { return r.R }

// Constructors
func NameLiteral(v string) NameObj       { return NameObj{Val: v} }
func NumberInt(i int64) NumberObj        { return NumberObj{I: i, IsInt: true} }
func NumberFloat(f float64) NumberObj    { return NumberObj{F: f, IsInt: false} }
func Str(bytes []byte) StringObj         { return StringObj{Bytes: bytes} }
func NewArray(items ...Object) *ArrayObj { return &ArrayObj{Items: items} }
func Dict() *DictObj                     { return &DictObj{KV: make(map[string]Object)} }
func NewStream(dict *DictObj, data []byte) *StreamObj {
	return &StreamObj{Dict: dict, Data: data}
}
func Ref(num, gen int) RefObj { return RefObj{R: ObjectRef{Num: num, Gen: gen}} }

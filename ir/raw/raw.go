// Package raw holds the write-only PDF object model (names, numbers,
// strings, arrays, dictionaries, streams, indirect references) that the
// pdfdoc serializer and the PDF composition backend build output from.
// This renderer only ever emits fresh objects, so there is no
// read-back/inspection surface here.
package raw

import "fmt"

// ObjectRef uniquely identifies an indirect PDF object.
type ObjectRef struct {
	Num int
	Gen int
}

func (r ObjectRef) String() string { return fmt.Sprintf("%d %d R", r.Num, r.Gen) }

// Object marks a value as serializable into a PDF body; the serializer
// dispatches on the concrete types in objects.go.
type Object interface {
	pdfObject()
}

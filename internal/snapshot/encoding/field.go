package encoding

import "fmt"

// Field is one self-framed unit of a stream. It is implemented by
// IntegerField, SignedIntegerField and BlobField only.
type Field interface {
	FieldName() []byte
	Marker() FieldMarker
	String() string

	field()
}

// IntegerField is encoded as `:i name value\n`.
type IntegerField struct {
	Name  []byte
	Value uint64
}

// SignedIntegerField is encoded as `:s name value\n`.
type SignedIntegerField struct {
	Name  []byte
	Value int64
}

// BlobField is encoded as `:b name size\ndata\n`.
type BlobField struct {
	Name []byte
	Data []byte
}

func (f IntegerField) FieldName() []byte       { return f.Name }
func (f SignedIntegerField) FieldName() []byte { return f.Name }
func (f BlobField) FieldName() []byte          { return f.Name }

func (IntegerField) Marker() FieldMarker       { return Integer }
func (SignedIntegerField) Marker() FieldMarker { return SignedInteger }
func (BlobField) Marker() FieldMarker          { return Blob }

func (IntegerField) field()       {}
func (SignedIntegerField) field() {}
func (BlobField) field()          {}

func (f IntegerField) String() string {
	return fmt.Sprintf(":%c %s %d", MarkerInteger, f.Name, f.Value)
}

func (f SignedIntegerField) String() string {
	return fmt.Sprintf(":%c %s %d", MarkerSignedInteger, f.Name, f.Value)
}

// String prints the blob header only; the payload may be arbitrary bytes.
func (f BlobField) String() string {
	return fmt.Sprintf(":%c %s %d", MarkerBlob, f.Name, len(f.Data))
}

// NewInteger builds an IntegerField from a string name.
func NewInteger(name string, v uint64) IntegerField {
	return IntegerField{Name: []byte(name), Value: v}
}

// NewSignedInteger builds a SignedIntegerField from a string name.
func NewSignedInteger(name string, v int64) SignedIntegerField {
	return SignedIntegerField{Name: []byte(name), Value: v}
}

// NewBlob builds a BlobField from a string name. data is not copied.
func NewBlob(name string, data []byte) BlobField {
	return BlobField{Name: []byte(name), Data: data}
}

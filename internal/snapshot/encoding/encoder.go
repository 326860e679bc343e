package encoding

import (
	"errors"
	"fmt"
	"io"
	"strconv"
)

var errNilField = errors.New("nil field")

// Encoder serializes fields to an append-only sink. Each field reaches the
// sink in a single Write call, or not at all.
type Encoder struct {
	w io.Writer
}

func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

// WriteFieldDefault writes f with field name validation enabled.
func (e *Encoder) WriteFieldDefault(f Field) (int64, error) {
	return e.WriteField(f, true)
}

// WriteField encodes f and writes it to the sink, returning the number of
// bytes written.
func (e *Encoder) WriteField(f Field, validate bool) (int64, error) {
	buf, err := Encode(f, validate)
	if err != nil {
		return 0, err
	}
	n, err := e.w.Write(buf)
	if err == nil && n != len(buf) {
		err = io.ErrShortWrite
	}
	if err != nil {
		return int64(n), &WriteError{Err: fmt.Errorf("%w: %w", ErrWrite, err)}
	}
	return int64(n), nil
}

// Encode returns the wire form of f.
func Encode(f Field, validate bool) ([]byte, error) {
	if f = deref(f); f == nil {
		return nil, &WriteError{Err: errNilField}
	}
	if validate {
		if err := ValidateFieldName(f.FieldName()); err != nil {
			return nil, &WriteError{Err: err}
		}
	}
	return AppendField(make([]byte, 0, encodedSize(f)), f), nil
}

// AppendField appends the wire form of f to dst without validating it. A
// nil field appends nothing.
func AppendField(dst []byte, f Field) []byte {
	if f = deref(f); f == nil {
		return dst
	}
	dst = append(dst, MarkerSymbol, f.Marker().Byte(), Separator)
	dst = append(dst, f.FieldName()...)
	dst = append(dst, Separator)
	switch v := f.(type) {
	case IntegerField:
		dst = strconv.AppendUint(dst, v.Value, 10)
	case SignedIntegerField:
		dst = strconv.AppendInt(dst, v.Value, 10)
	case BlobField:
		dst = strconv.AppendUint(dst, uint64(len(v.Data)), 10)
		dst = append(dst, Terminator)
		dst = append(dst, v.Data...)
	}
	return append(dst, Terminator)
}

func encodedSize(f Field) int {
	// marker + separator + longest decimal + terminator
	n := MarkerSize + len(f.FieldName()) + 1 + 20 + 1
	if b, ok := deref(f).(BlobField); ok {
		n += len(b.Data) + 1
	}
	return n
}

// deref returns the value behind a field pointer, or nil for a nil pointer.
func deref(f Field) Field {
	switch v := f.(type) {
	case *IntegerField:
		if v == nil {
			return nil
		}
		return *v
	case *SignedIntegerField:
		if v == nil {
			return nil
		}
		return *v
	case *BlobField:
		if v == nil {
			return nil
		}
		return *v
	}
	return f
}

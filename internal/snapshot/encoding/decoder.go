package encoding

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"math"
	"strconv"
	"unicode/utf8"
)

// blob buffers grow from at most this size so a corrupt size header cannot
// force a huge allocation before any content has been read.
const maxBlobPrealloc = 64 * 1024

// Decoder reads fields sequentially from a byte stream. It keeps no state
// between fields other than the stream position and is not safe for
// concurrent use.
type Decoder struct {
	r      *bufio.Reader
	offset int64
}

func NewDecoder(r io.Reader) *Decoder {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	return &Decoder{r: br}
}

// Offset returns the number of bytes consumed so far.
func (d *Decoder) Offset() int64 {
	return d.offset
}

// ReadFieldDefault reads a field with validation enabled.
func (d *Decoder) ReadFieldDefault() (Field, error) {
	return d.ReadField(true)
}

// ReadField decodes the next field. With validate unset only the checks
// needed to decode the bytes at all are applied: truncation, unknown marker
// types and unparsable integers are always reported.
func (d *Decoder) ReadField(validate bool) (Field, error) {
	start := d.offset
	fail := func(op string, err error) (Field, error) {
		return nil, &ParseError{Offset: start, Op: op, Err: err}
	}

	var marker [MarkerSize]byte
	n, err := io.ReadFull(d.r, marker[:])
	d.offset += int64(n)
	if err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return fail("reading marker", fmt.Errorf("%w: got %d of %d marker bytes", ErrUnexpectedEOF, n, MarkerSize))
		}
		return fail("reading marker", fmt.Errorf("%w: %w", ErrRead, err))
	}
	if validate {
		if err := ValidateMarker(marker, false); err != nil {
			return fail("validating marker", err)
		}
	}
	kind, ok := MarkerFromByte(marker[1])
	if !ok {
		return fail("decoding marker", &ValidationError{Kind: ErrInvalidMarkerType, Char: marker[1]})
	}

	name, err := d.readUntil(Separator)
	if err != nil {
		return fail("reading field name", err)
	}
	if validate {
		if err := ValidateFieldName(name); err != nil {
			return fail("validating field name", err)
		}
	}

	switch kind {
	case Integer, SignedInteger:
		text, err := d.readUntil(Terminator)
		if err != nil {
			return fail("reading integer value", err)
		}
		if validate {
			if err := validateNumber(kind, text); err != nil {
				return fail("validating integer value", err)
			}
		}
		if kind == SignedInteger {
			v, err := parseSigned(text)
			if err != nil {
				return fail("decoding integer value", err)
			}
			return SignedIntegerField{Name: name, Value: v}, nil
		}
		v, err := parseUnsigned(text)
		if err != nil {
			return fail("decoding integer value", err)
		}
		return IntegerField{Name: name, Value: v}, nil

	default:
		text, err := d.readUntil(Terminator)
		if err != nil {
			return fail("reading blob size", err)
		}
		if validate {
			if err := ValidateInteger(text); err != nil {
				return fail("validating blob size", err)
			}
		}
		size, err := parseUnsigned(text)
		if err != nil {
			return fail("decoding blob size", err)
		}
		if size >= math.MaxInt64 {
			return fail("reading blob content", fmt.Errorf("%w: %w: declared size %d cannot be satisfied", ErrRead, io.ErrUnexpectedEOF, size))
		}
		content, err := d.readExact(size + 1)
		if err != nil {
			return fail("reading blob content", err)
		}
		if validate {
			if err := ValidateBlob(content, size); err != nil {
				return fail("validating blob content", err)
			}
		}
		return BlobField{Name: name, Data: content[:len(content)-1]}, nil
	}
}

// More reports whether another field starts at the current position. A
// clean end of stream between fields is the only case it returns false.
func (d *Decoder) More() bool {
	_, err := d.r.Peek(1)
	return err != io.EOF
}

// ReadAll reads fields until the stream ends on a field boundary.
func (d *Decoder) ReadAll(validate bool) ([]Field, error) {
	var fields []Field
	for d.More() {
		f, err := d.ReadField(validate)
		if err != nil {
			return fields, err
		}
		fields = append(fields, f)
	}
	return fields, nil
}

// readUntil returns the bytes before the next delim, consuming the delim.
// Running out of input first is a read error: the marker promised more.
func (d *Decoder) readUntil(delim byte) ([]byte, error) {
	line, err := d.r.ReadBytes(delim)
	d.offset += int64(len(line))
	if err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("%w: %w before %q", ErrRead, io.ErrUnexpectedEOF, delim)
		}
		return nil, fmt.Errorf("%w: %w", ErrRead, err)
	}
	return line[:len(line)-1], nil
}

func (d *Decoder) readExact(n uint64) ([]byte, error) {
	var buf bytes.Buffer
	if n < maxBlobPrealloc {
		buf.Grow(int(n))
	} else {
		buf.Grow(maxBlobPrealloc)
	}
	copied, err := io.CopyN(&buf, d.r, int64(n))
	d.offset += copied
	if err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("%w: %w: got %d of %d bytes", ErrRead, io.ErrUnexpectedEOF, copied, n)
		}
		return nil, fmt.Errorf("%w: %w", ErrRead, err)
	}
	return buf.Bytes(), nil
}

func parseUnsigned(text []byte) (uint64, error) {
	if !utf8.Valid(text) {
		return 0, invalid(ErrInvalidUTF8, "%q", text)
	}
	v, err := strconv.ParseUint(string(text), 10, 64)
	if err != nil {
		return 0, invalid(ErrInvalidInteger, "%s", text)
	}
	return v, nil
}

func parseSigned(text []byte) (int64, error) {
	if !utf8.Valid(text) {
		return 0, invalid(ErrInvalidUTF8, "%q", text)
	}
	v, err := strconv.ParseInt(string(text), 10, 64)
	if err != nil {
		return 0, invalid(ErrInvalidInteger, "%s", text)
	}
	return v, nil
}

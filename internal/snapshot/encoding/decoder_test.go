package encoding

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDecoder(content string) *Decoder {
	return NewDecoder(strings.NewReader(content))
}

func TestReadIntegerField(t *testing.T) {
	field, err := newDecoder(":i count 42\n").ReadFieldDefault()
	require.NoError(t, err)
	assert.Equal(t, NewInteger("count", 42), field)
}

func TestReadSignedIntegerField(t *testing.T) {
	field, err := newDecoder(":s returncode -127\n").ReadFieldDefault()
	require.NoError(t, err)
	assert.Equal(t, NewSignedInteger("returncode", -127), field)
}

func TestReadBlobField(t *testing.T) {
	field, err := newDecoder(":b data 5\nhello\n").ReadFieldDefault()
	require.NoError(t, err)
	blob, ok := field.(BlobField)
	require.True(t, ok, "expected blob field, got %T", field)
	assert.Equal(t, []byte("data"), blob.Name)
	assert.Equal(t, []byte("hello"), blob.Data)
}

func TestReadLeadingZeros(t *testing.T) {
	field, err := newDecoder(":i count 007\n").ReadFieldDefault()
	require.NoError(t, err)
	assert.Equal(t, NewInteger("count", 7), field)
}

func TestReadFieldErrors(t *testing.T) {
	data := []struct {
		name     string
		input    string
		validate bool
		kind     error
	}{
		{name: "marker symbol", input: "#i count 42\n", validate: true, kind: ErrInvalidMarkerSymbol},
		{name: "eof after one byte", input: "x", validate: true, kind: ErrUnexpectedEOF},
		{name: "marker format", input: ":ix count 42\n", validate: true, kind: ErrInvalidMarkerFormat},
		{name: "marker type", input: ":x count 42\n", validate: true, kind: ErrInvalidMarkerType},
		{name: "marker type unvalidated", input: ":x count 42\n", validate: false, kind: ErrInvalidMarkerType},
		{name: "invalid integer", input: ":i count abc\n", validate: true, kind: ErrInvalidInteger},
		{name: "invalid integer unvalidated", input: ":i count abc\n", validate: false, kind: ErrInvalidInteger},
		{name: "negative unsigned", input: ":i count -1\n", validate: true, kind: ErrInvalidInteger},
		{name: "negative unsigned unvalidated", input: ":i count -1\n", validate: false, kind: ErrInvalidInteger},
		{name: "signed overflow", input: ":s code 9223372036854775808\n", validate: true, kind: ErrInvalidInteger},
		{name: "empty integer", input: ":i count \n", validate: true, kind: ErrInvalidInteger},
		{name: "empty field name", input: ":i  42\n", validate: true, kind: ErrInvalidFieldName},
		{name: "non utf-8 field name", input: ":i \xff\xfe 42\n", validate: true, kind: ErrInvalidUTF8},
		{name: "blob too long", input: ":b data 3\nhello\n", validate: true, kind: ErrInvalidBlob},
		{name: "blob too short", input: ":b data 10\nhello\n", validate: true, kind: ErrRead},
		{name: "blob missing newline", input: ":b data 5\nhello", validate: true, kind: ErrRead},
		{name: "blob bad size", input: ":b data five\nhello\n", validate: false, kind: ErrInvalidInteger},
		{name: "eof in marker", input: ":b", validate: true, kind: ErrUnexpectedEOF},
		{name: "eof at start", input: "", validate: true, kind: ErrUnexpectedEOF},
		{name: "eof in name", input: ":i count", validate: true, kind: ErrRead},
		{name: "eof in value", input: ":i count ", validate: false, kind: ErrRead},
		{name: "eof in blob size", input: ":b data 5", validate: true, kind: ErrRead},
	}

	for _, item := range data {
		t.Run(item.name, func(t *testing.T) {
			field, err := newDecoder(item.input).ReadField(item.validate)
			require.Error(t, err)
			assert.Nil(t, field)
			assert.True(t, errors.Is(err, item.kind), "expected %v, got %v", item.kind, err)

			var perr *ParseError
			assert.True(t, errors.As(err, &perr), "expected *ParseError, got %T", err)
		})
	}
}

func TestReadMarkerErrorCarriesCharacter(t *testing.T) {
	_, err := newDecoder("#i count 42\n").ReadFieldDefault()
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, byte('#'), verr.Char)

	_, err = newDecoder(":x count 42\n").ReadField(false)
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, ErrInvalidMarkerType, verr.Kind)
	assert.Equal(t, byte('x'), verr.Char)
}

func TestReadTruncationIsNotEOF(t *testing.T) {
	_, err := newDecoder(":b data 10\nhello\n").ReadFieldDefault()
	assert.False(t, errors.Is(err, ErrUnexpectedEOF))
	assert.True(t, errors.Is(err, io.ErrUnexpectedEOF))
	assert.Equal(t, ClassParse, Classify(err))
}

func TestReadBlobSizeMismatchUnvalidated(t *testing.T) {
	// Without validation the terminator check is skipped, so the declared
	// size wins and the remaining bytes are left in the stream.
	field, err := newDecoder(":b data 3\nhello\n").ReadField(false)
	require.NoError(t, err)
	assert.Equal(t, []byte("hel"), field.(BlobField).Data)
}

func TestReadHugeBlobSize(t *testing.T) {
	for _, validate := range []bool{true, false} {
		_, err := newDecoder(":b data 18446744073709551615\nhello\n").ReadField(validate)
		assert.True(t, errors.Is(err, ErrRead), "validate=%v", validate)
		assert.True(t, errors.Is(err, io.ErrUnexpectedEOF), "validate=%v", validate)
		assert.False(t, errors.Is(err, ErrInvalidBlob), "validate=%v", validate)
		assert.Equal(t, ClassParse, Classify(err))
	}

	_, err := newDecoder(":b data 1099511627776\nhello\n").ReadFieldDefault()
	assert.True(t, errors.Is(err, ErrRead))
}

func TestReadSequentialFields(t *testing.T) {
	decoder := newDecoder(":i count 2\n:b a 1\nx\n:s b -3\n")
	fields, err := decoder.ReadAll(true)
	require.NoError(t, err)
	require.Len(t, fields, 3)
	assert.Equal(t, NewInteger("count", 2), fields[0])
	assert.Equal(t, []byte("x"), fields[1].(BlobField).Data)
	assert.Equal(t, NewSignedInteger("b", -3), fields[2])
	assert.Equal(t, int64(len(":i count 2\n:b a 1\nx\n:s b -3\n")), decoder.Offset())

	_, err = decoder.ReadFieldDefault()
	assert.True(t, errors.Is(err, ErrUnexpectedEOF))
}

func TestReadAllStopsAtFirstError(t *testing.T) {
	fields, err := newDecoder(":i count 2\n:x bad 1\n").ReadAll(true)
	assert.Len(t, fields, 1)

	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, int64(len(":i count 2\n")), perr.Offset)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("disk on fire")
}

func TestReadUnderlyingFailure(t *testing.T) {
	_, err := NewDecoder(failingReader{}).ReadFieldDefault()
	assert.True(t, errors.Is(err, ErrRead))
	assert.Contains(t, err.Error(), "disk on fire")
}

package encoding

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
)

const formatDocs = "https://github.com/tsoding/bi-format/blob/main/README.md"

// Validation kinds.
var (
	ErrInvalidMarkerSymbol = errors.New("invalid marker symbol")
	ErrInvalidMarkerFormat = errors.New("invalid marker format")
	ErrInvalidMarkerType   = errors.New("invalid field marker")
	ErrInvalidFieldName    = errors.New("invalid field name")
	ErrInvalidInteger      = errors.New("invalid integer")
	ErrInvalidBlob         = errors.New("invalid blob")
	ErrInvalidUTF8         = errors.New("utf-8 decoding error")
)

// Parse and write kinds.
var (
	ErrUnexpectedEOF = errors.New("unexpected end of file")
	ErrRead          = errors.New("error reading input")
	ErrWrite         = errors.New("error writing output")
)

// ValidationError reports a grammar violation. Kind is one of the
// ErrInvalid* sentinels; Char carries the offending marker byte for the
// symbol and type kinds.
type ValidationError struct {
	Kind   error
	Char   byte
	Detail string
}

func (e *ValidationError) Error() string {
	switch e.Kind {
	case ErrInvalidMarkerSymbol:
		return fmt.Sprintf("%v: expected `%c`, found `%c`", e.Kind, MarkerSymbol, e.Char)
	case ErrInvalidMarkerType:
		return fmt.Sprintf("%v: expected `%c%c`, `%c%c` or `%c%c`, found `%c`", e.Kind,
			MarkerSymbol, MarkerInteger, MarkerSymbol, MarkerSignedInteger, MarkerSymbol, MarkerBlob, e.Char)
	case ErrInvalidMarkerFormat:
		return fmt.Sprintf("%v: %s\nrefer to %s", e.Kind, e.Detail, formatDocs)
	}
	if e.Detail == "" {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%v: %s", e.Kind, e.Detail)
}

func (e *ValidationError) Unwrap() error {
	return e.Kind
}

func invalid(kind error, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

// ParseError is returned by Decoder. Err is either a *ValidationError or
// wraps ErrUnexpectedEOF / ErrRead together with the underlying I/O error.
type ParseError struct {
	// Offset is the stream position at which the failing field started.
	Offset int64
	Op     string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at offset %d while %s: %v", e.Offset, e.Op, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// WriteError is returned by Encoder. Err is either a *ValidationError or
// wraps ErrWrite together with the sink error.
type WriteError struct {
	Err error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write error: %v", e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// ErrorClass groups errors by the layer that produced them.
type ErrorClass int

const (
	ClassOther ErrorClass = iota
	ClassIO
	ClassParse
	ClassWrite
	ClassValidation
)

func (c ErrorClass) String() string {
	switch c {
	case ClassIO:
		return "io"
	case ClassParse:
		return "parse"
	case ClassWrite:
		return "write"
	case ClassValidation:
		return "validation"
	default:
		return "other"
	}
}

// Classify maps any error returned by this package, or by the I/O it was
// handed, to its layer. Validation failures surfaced through a reader or
// writer classify as ClassValidation.
func Classify(err error) ErrorClass {
	if err == nil {
		return ClassOther
	}
	var verr *ValidationError
	if errors.As(err, &verr) {
		return ClassValidation
	}
	var perr *ParseError
	if errors.As(err, &perr) {
		return ClassParse
	}
	var werr *WriteError
	if errors.As(err, &werr) {
		return ClassWrite
	}
	var pathErr *fs.PathError
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) || errors.As(err, &pathErr) {
		return ClassIO
	}
	return ClassOther
}

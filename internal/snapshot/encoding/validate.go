package encoding

import (
	"bytes"
	"strconv"
	"unicode/utf8"
)

// ValidateMarker checks the symbol and separator of a 3-byte marker. With
// full set it also checks the type byte; readers skip that because they
// decode the type right after and report it themselves.
//
// All Validate* functions return nil or a *ValidationError.
func ValidateMarker(marker [MarkerSize]byte, full bool) error {
	if marker[0] != MarkerSymbol {
		return &ValidationError{Kind: ErrInvalidMarkerSymbol, Char: marker[0]}
	}
	if marker[2] != Separator {
		return invalid(ErrInvalidMarkerFormat, "expected single space after marker")
	}
	if full {
		if _, ok := MarkerFromByte(marker[1]); !ok {
			return &ValidationError{Kind: ErrInvalidMarkerType, Char: marker[1]}
		}
	}
	return nil
}

// ValidateFieldName checks that name is non-empty UTF-8 without a separator
// or terminator byte.
func ValidateFieldName(name []byte) error {
	if len(name) == 0 {
		return invalid(ErrInvalidFieldName, "empty field name")
	}
	if !utf8.Valid(name) {
		return invalid(ErrInvalidUTF8, "field name %q", name)
	}
	if i := bytes.IndexAny(name, " \n"); i >= 0 {
		return invalid(ErrInvalidFieldName, "%q contains %q at %d", name, name[i], i)
	}
	return nil
}

// ValidateInteger checks that text is a base-10 uint64. Leading zeros are
// accepted.
func ValidateInteger(text []byte) error {
	if len(text) == 0 {
		return invalid(ErrInvalidInteger, "empty integer")
	}
	if !utf8.Valid(text) {
		return invalid(ErrInvalidInteger, "%q is not utf-8", text)
	}
	if _, err := strconv.ParseUint(string(text), 10, 64); err != nil {
		return invalid(ErrInvalidInteger, "%s", text)
	}
	return nil
}

// ValidateSignedInteger checks that text is a base-10 int64.
func ValidateSignedInteger(text []byte) error {
	if len(text) == 0 {
		return invalid(ErrInvalidInteger, "empty signed integer")
	}
	if !utf8.Valid(text) {
		return invalid(ErrInvalidInteger, "%q is not utf-8", text)
	}
	if _, err := strconv.ParseInt(string(text), 10, 64); err != nil {
		return invalid(ErrInvalidInteger, "%s", text)
	}
	return nil
}

// ValidateBlob checks raw blob content as read from the stream, including
// its trailing terminator.
func ValidateBlob(content []byte, expectedSize uint64) error {
	want := expectedSize + 1
	if len(content) == 0 || uint64(len(content)) != want {
		return invalid(ErrInvalidBlob, "actual size (%d) doesn't match expected size (%d)", len(content), want)
	}
	if content[len(content)-1] != Terminator {
		return invalid(ErrInvalidBlob, "missing trailing newline")
	}
	return nil
}

func validateNumber(m FieldMarker, text []byte) error {
	if m == SignedInteger {
		return ValidateSignedInteger(text)
	}
	return ValidateInteger(text)
}

package encoding

const (
	MarkerSymbol        = ':'
	MarkerInteger       = 'i'
	MarkerSignedInteger = 's'
	MarkerBlob          = 'b'
	Separator           = ' '
	Terminator          = '\n'

	// MarkerSize is the width of every field prefix: symbol, type, separator.
	MarkerSize = 3
)

// FieldMarker identifies the shape of a field from the second marker byte.
type FieldMarker byte

const (
	Integer FieldMarker = iota + 1
	SignedInteger
	Blob
)

// MarkerFromByte maps the type byte of a marker to its FieldMarker.
func MarkerFromByte(b byte) (FieldMarker, bool) {
	switch b {
	case MarkerInteger:
		return Integer, true
	case MarkerSignedInteger:
		return SignedInteger, true
	case MarkerBlob:
		return Blob, true
	default:
		return 0, false
	}
}

// Byte returns the wire type byte for m.
func (m FieldMarker) Byte() byte {
	switch m {
	case Integer:
		return MarkerInteger
	case SignedInteger:
		return MarkerSignedInteger
	case Blob:
		return MarkerBlob
	default:
		return 0
	}
}

func (m FieldMarker) String() string {
	switch m {
	case Integer:
		return "integer"
	case SignedInteger:
		return "signed integer"
	case Blob:
		return "blob"
	default:
		return "unknown"
	}
}

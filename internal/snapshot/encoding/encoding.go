// Package encoding implements the bi field format: a sequential stream of
// named integer, signed integer and blob fields, each framed by a 3-byte
// marker and terminated by a line feed.
//
//	:i <name> <decimal-uint>\n
//	:s <name> <decimal-int>\n
//	:b <name> <decimal-size>\n<raw bytes>\n
//
// Fields carry no identity beyond their position in the stream.
package encoding

type Serializable interface {
	WriteField(f Field, validate bool) (int64, error)
}

type Deserializable interface {
	ReadField(validate bool) (Field, error)
}

var (
	_ Serializable   = (*Encoder)(nil)
	_ Deserializable = (*Decoder)(nil)
)

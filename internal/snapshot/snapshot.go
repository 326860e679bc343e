// Package snapshot stores the captured output of a list of shell commands as
// a bi field stream: a `count` integer followed, per command, by the command
// text, its exit code, stdout and stderr.
package snapshot

import (
	"errors"
	"fmt"
	"io"

	"pingcap.com/rere/internal/snapshot/encoding"
)

const (
	FieldCount      = "count"
	FieldShell      = "shell"
	FieldReturnCode = "returncode"
	FieldStdout     = "stdout"
	FieldStderr     = "stderr"
)

var ErrUnexpectedField = errors.New("unexpected snapshot field")

// Entry is one recorded command execution.
type Entry struct {
	Shell      string
	ReturnCode int64
	Stdout     []byte
	Stderr     []byte
}

type Writer struct {
	enc     *encoding.Encoder
	written int64
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{enc: encoding.NewEncoder(w)}
}

func (w *Writer) write(f encoding.Field) error {
	n, err := w.enc.WriteFieldDefault(f)
	w.written += n
	if err != nil {
		return fmt.Errorf("error writing %s field: %w", f.FieldName(), err)
	}
	return nil
}

// WriteCount writes the header field. It must come first.
func (w *Writer) WriteCount(n int) error {
	return w.write(encoding.NewInteger(FieldCount, uint64(n)))
}

func (w *Writer) WriteEntry(e Entry) error {
	fields := []encoding.Field{
		encoding.NewBlob(FieldShell, []byte(e.Shell)),
		encoding.NewSignedInteger(FieldReturnCode, e.ReturnCode),
		encoding.NewBlob(FieldStdout, e.Stdout),
		encoding.NewBlob(FieldStderr, e.Stderr),
	}
	for _, f := range fields {
		if err := w.write(f); err != nil {
			return err
		}
	}
	return nil
}

// Size returns the number of bytes written so far.
func (w *Writer) Size() int64 {
	return w.written
}

// Write serializes a complete snapshot to w.
func Write(w io.Writer, entries []Entry) (int64, error) {
	sw := NewWriter(w)
	if err := sw.WriteCount(len(entries)); err != nil {
		return sw.Size(), err
	}
	for _, e := range entries {
		if err := sw.WriteEntry(e); err != nil {
			return sw.Size(), err
		}
	}
	return sw.Size(), nil
}

// Reader yields the entries of a snapshot one at a time, in recorded order.
type Reader struct {
	dec      *encoding.Decoder
	validate bool
	count    uint64
	read     uint64
}

// NewReader consumes the header field of the snapshot in r.
func NewReader(r io.Reader, validate bool) (*Reader, error) {
	sr := &Reader{dec: encoding.NewDecoder(r), validate: validate}
	count, err := sr.integer(FieldCount)
	if err != nil {
		return nil, err
	}
	sr.count = count
	return sr, nil
}

// Count returns the number of entries the snapshot declares.
func (r *Reader) Count() int {
	return int(r.count)
}

// Next returns the next entry, or io.EOF once Count entries were read.
func (r *Reader) Next() (Entry, error) {
	if r.read >= r.count {
		return Entry{}, io.EOF
	}
	var e Entry
	shell, err := r.blob(FieldShell)
	if err != nil {
		return Entry{}, err
	}
	e.Shell = string(shell)
	if e.ReturnCode, err = r.signed(FieldReturnCode); err != nil {
		return Entry{}, err
	}
	if e.Stdout, err = r.blob(FieldStdout); err != nil {
		return Entry{}, err
	}
	if e.Stderr, err = r.blob(FieldStderr); err != nil {
		return Entry{}, err
	}
	r.read++
	return e, nil
}

// ReadAll reads every remaining entry.
func (r *Reader) ReadAll() ([]Entry, error) {
	var entries []Entry
	for {
		e, err := r.Next()
		if err == io.EOF {
			return entries, nil
		}
		if err != nil {
			return entries, err
		}
		entries = append(entries, e)
	}
}

func (r *Reader) next(name string, want encoding.FieldMarker) (encoding.Field, error) {
	f, err := r.dec.ReadField(r.validate)
	if err != nil {
		return nil, fmt.Errorf("error reading %s field: %w", name, err)
	}
	if f.Marker() != want || string(f.FieldName()) != name {
		return nil, fmt.Errorf("%w: expected %s field %q, found %q", ErrUnexpectedField, want, name, f)
	}
	return f, nil
}

func (r *Reader) integer(name string) (uint64, error) {
	f, err := r.next(name, encoding.Integer)
	if err != nil {
		return 0, err
	}
	return f.(encoding.IntegerField).Value, nil
}

func (r *Reader) signed(name string) (int64, error) {
	f, err := r.next(name, encoding.SignedInteger)
	if err != nil {
		return 0, err
	}
	return f.(encoding.SignedIntegerField).Value, nil
}

func (r *Reader) blob(name string) ([]byte, error) {
	f, err := r.next(name, encoding.Blob)
	if err != nil {
		return nil, err
	}
	return f.(encoding.BlobField).Data, nil
}

package snapshot

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pingcap.com/rere/internal/snapshot/encoding"
)

func dummyEntries() []Entry {
	return []Entry{
		{Shell: "echo coffee", ReturnCode: 0, Stdout: []byte("coffee\n"), Stderr: []byte{}},
		{Shell: "cat missing", ReturnCode: 1, Stdout: []byte{}, Stderr: []byte("cat: missing: No such file or directory\n")},
		{Shell: "kill -9 $$", ReturnCode: -1, Stdout: nil, Stderr: nil},
	}
}

func TestWriteLayout(t *testing.T) {
	var buf bytes.Buffer
	n, err := Write(&buf, []Entry{{Shell: "echo hi", ReturnCode: 0, Stdout: []byte("hi\n")}})
	require.NoError(t, err)
	expected := ":i count 1\n" +
		":b shell 7\necho hi\n" +
		":s returncode 0\n" +
		":b stdout 3\nhi\n\n" +
		":b stderr 0\n\n"
	assert.Equal(t, expected, buf.String())
	assert.Equal(t, int64(len(expected)), n)
}

func TestReadAllEntries(t *testing.T) {
	var buf bytes.Buffer
	_, err := Write(&buf, dummyEntries())
	require.NoError(t, err)

	r, err := NewReader(&buf, true)
	require.NoError(t, err)
	assert.Equal(t, 3, r.Count())

	entries, err := r.ReadAll()
	require.NoError(t, err)
	require.Len(t, entries, 3)
	for i, want := range dummyEntries() {
		assert.Equal(t, want.Shell, entries[i].Shell)
		assert.Equal(t, want.ReturnCode, entries[i].ReturnCode)
		assert.True(t, bytes.Equal(want.Stdout, entries[i].Stdout), "stdout of %q", want.Shell)
		assert.True(t, bytes.Equal(want.Stderr, entries[i].Stderr), "stderr of %q", want.Shell)
	}

	_, err = r.Next()
	assert.Equal(t, io.EOF, err)
}

func TestNilOutputReadsAsEmpty(t *testing.T) {
	var buf bytes.Buffer
	_, err := Write(&buf, []Entry{{Shell: "true"}})
	require.NoError(t, err)

	r, err := NewReader(&buf, true)
	require.NoError(t, err)
	entry, err := r.Next()
	require.NoError(t, err)
	assert.NotNil(t, entry.Stdout)
	assert.Empty(t, entry.Stdout)
	assert.NotNil(t, entry.Stderr)
	assert.Empty(t, entry.Stderr)
}

func TestReadUnexpectedField(t *testing.T) {
	data := []struct {
		name  string
		input string
	}{
		{name: "missing count", input: ":b shell 2\nls\n"},
		{name: "wrong count name", input: ":i total 1\n"},
		{name: "unsigned exit code", input: ":i count 1\n:b shell 2\nls\n:i returncode 0\n"},
	}
	for _, item := range data {
		t.Run(item.name, func(t *testing.T) {
			r, err := NewReader(bytes.NewBufferString(item.input), true)
			if err == nil {
				_, err = r.Next()
			}
			assert.True(t, errors.Is(err, ErrUnexpectedField), "got %v", err)
		})
	}
}

func TestReadTruncatedSnapshot(t *testing.T) {
	r, err := NewReader(bytes.NewBufferString(":i count 2\n:b shell 2\nls\n:s returncode 0\n:b stdout 4\nab"), true)
	require.NoError(t, err)
	_, err = r.Next()
	assert.True(t, errors.Is(err, encoding.ErrRead), "got %v", err)

	r, err = NewReader(bytes.NewBufferString(":i count 1\n"), true)
	require.NoError(t, err)
	_, err = r.Next()
	assert.True(t, errors.Is(err, encoding.ErrUnexpectedEOF), "got %v", err)
}

func TestWriteInvalidUTF8Shell(t *testing.T) {
	// command text is a blob, so arbitrary bytes are fine
	var buf bytes.Buffer
	_, err := Write(&buf, []Entry{{Shell: "printf '\xff'"}})
	require.NoError(t, err)
	entries, err := mustReader(t, &buf).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, "printf '\xff'", entries[0].Shell)
}

func mustReader(t *testing.T, r io.Reader) *Reader {
	t.Helper()
	sr, err := NewReader(r, true)
	require.NoError(t, err)
	return sr
}

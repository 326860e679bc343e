package snapshot

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pingcap.com/rere/internal/snapshot/encoding"
)

func dummyStore(t *testing.T) *Store {
	s, err := NewStore(filepath.Join(t.TempDir(), "snapshots"))
	require.NoError(t, err)
	return s
}

func TestName(t *testing.T) {
	assert.Equal(t, "test.list.bi", Name("test.list", true))
	assert.Equal(t, "test.list.bi", Name("nested/test.list", true))

	first := Name("test.list", false)
	second := Name("test.list", false)
	assert.True(t, strings.HasPrefix(first, "test.list_"))
	assert.True(t, strings.HasSuffix(first, Extension))
	assert.NotEqual(t, first, second)
}

func TestCreateAndOpen(t *testing.T) {
	s := dummyStore(t)
	written, err := s.Create("test.list.bi", dummyEntries())
	require.NoError(t, err)
	assert.True(t, s.Exists("test.list.bi"))

	fi, err := os.Stat(s.Path("test.list.bi"))
	require.NoError(t, err)
	assert.Equal(t, fi.Size(), written)

	f, err := s.Open("test.list.bi", true)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, len(dummyEntries()), f.Count())

	entries, err := f.ReadAll()
	require.NoError(t, err)
	for i, want := range dummyEntries() {
		assert.Equal(t, want.Shell, entries[i].Shell)
		assert.Equal(t, want.ReturnCode, entries[i].ReturnCode)
	}
}

func TestCreateOverwrites(t *testing.T) {
	s := dummyStore(t)
	_, err := s.Create("a.bi", dummyEntries())
	require.NoError(t, err)
	_, err = s.Create("a.bi", dummyEntries()[:1])
	require.NoError(t, err)

	f, err := s.Open("a.bi", true)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, 1, f.Count())

	names, err := s.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"a.bi"}, names)
}

func TestOpenCorruptSnapshot(t *testing.T) {
	s := dummyStore(t)
	require.NoError(t, os.WriteFile(s.Path("bad.bi"), []byte("#i count 1\n"), 0644))
	_, err := s.Open("bad.bi", true)
	assert.ErrorIs(t, err, encoding.ErrInvalidMarkerSymbol)

	require.NoError(t, os.WriteFile(s.Path("empty.bi"), nil, 0644))
	_, err = s.Open("empty.bi", true)
	assert.ErrorIs(t, err, encoding.ErrUnexpectedEOF)

	_, err = s.Open("missing.bi", true)
	assert.Error(t, err)
}

func TestFields(t *testing.T) {
	s := dummyStore(t)
	_, err := s.Create("a.bi", dummyEntries()[:1])
	require.NoError(t, err)

	fields, err := s.Fields("a.bi", true)
	require.NoError(t, err)
	require.Len(t, fields, 5)
	assert.Equal(t, ":i count 1", fields[0].String())
	assert.Equal(t, ":b shell 11", fields[1].String())
	assert.Equal(t, ":s returncode 0", fields[2].String())
}

func TestPrune(t *testing.T) {
	s := dummyStore(t)
	for _, name := range []string{"test.list_a.bi", "test.list_b.bi", "test.list_c.bi", "test.list.bi", "other.list_a.bi", "mine.bi"} {
		_, err := s.Create(name, nil)
		require.NoError(t, err)
	}
	require.NoError(t, os.WriteFile(s.Path("test.list_notes.txt"), []byte("keep me"), 0644))

	removed, err := s.Prune(HistoryPrefix("rere/test.list"), []string{"test.list_b.bi", "elsewhere/test.list_c.bi"})
	require.NoError(t, err)
	assert.Equal(t, []string{"test.list_a.bi"}, removed)

	names, err := s.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"mine.bi", "other.list_a.bi", "test.list.bi", "test.list_b.bi", "test.list_c.bi"}, names)
	assert.FileExists(t, s.Path("test.list_notes.txt"))
}

func TestNameSharesHistoryPrefix(t *testing.T) {
	assert.Equal(t, "test.list.bi", Name("rere/test.list", true))
	name := Name("rere/test.list", false)
	assert.True(t, strings.HasPrefix(name, HistoryPrefix("test.list")))
	assert.True(t, strings.HasSuffix(name, Extension))
}

func TestClear(t *testing.T) {
	s := dummyStore(t)
	_, err := s.Create("a.bi", nil)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(s.Path("notes.txt"), nil, 0644))

	require.NoError(t, s.Clear())
	entries, err := os.ReadDir(s.Dir())
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.DirExists(t, s.Dir())
}

package snapshot

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/segmentio/ksuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/exp/mmap"
	"pingcap.com/rere/internal/snapshot/encoding"
)

const (
	Extension  = ".bi"
	tmpSuffix  = ".tmp"
	dirPerm    = 0755
	snapshotFn = "*" + Extension
)

// Name returns the snapshot file name for a test list. With overwrite set
// every recording reuses the same name; otherwise the name embeds a KSUID so
// names sort by creation time and never collide.
func Name(testFile string, overwrite bool) string {
	if overwrite {
		return filepath.Base(testFile) + Extension
	}
	return HistoryPrefix(testFile) + ksuid.New().String() + Extension
}

// HistoryPrefix is the name prefix shared by every non-overwriting snapshot
// of a test list.
func HistoryPrefix(testFile string) string {
	return filepath.Base(testFile) + "_"
}

// Store manages the snapshot files of one directory.
type Store struct {
	dir string
}

func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return nil, fmt.Errorf("error creating snapshot directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) Path(name string) string {
	return filepath.Join(s.dir, name)
}

func (s *Store) Exists(name string) bool {
	fi, err := os.Stat(s.Path(name))
	return err == nil && !fi.IsDir()
}

// Create writes entries to a new snapshot, replacing any file with the same
// name. The file only appears under its final name once fully synced.
func (s *Store) Create(name string, entries []Entry) (int64, error) {
	path := s.Path(name)
	tmpPath := path + tmpSuffix
	fd, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return 0, fmt.Errorf("error creating snapshot file: %w", err)
	}
	written, err := Write(fd, entries)
	if err != nil {
		fd.Close()
		os.Remove(tmpPath)
		return written, fmt.Errorf("error writing snapshot %s: %w", name, err)
	}
	if err := fd.Sync(); err != nil {
		fd.Close()
		os.Remove(tmpPath)
		return written, fmt.Errorf("error syncing with disk: %w", err)
	}
	if err := fd.Close(); err != nil {
		os.Remove(tmpPath)
		return written, fmt.Errorf("error closing snapshot file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return written, err
	}
	log.WithFields(log.Fields{"snapshot": path, "entries": len(entries), "bytes": written}).Debug("snapshot written")
	return written, nil
}

// File is an open snapshot. Its entries are read from a read-only memory
// mapping of the file.
type File struct {
	*Reader
	ra   *mmap.ReaderAt
	path string
}

// Open maps the named snapshot and reads its header.
func (s *Store) Open(name string, validate bool) (*File, error) {
	path := s.Path(name)
	ra, err := mmap.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening snapshot file: %w", err)
	}
	r, err := NewReader(io.NewSectionReader(ra, 0, int64(ra.Len())), validate)
	if err != nil {
		ra.Close()
		return nil, fmt.Errorf("error reading snapshot %s: %w", name, err)
	}
	return &File{Reader: r, ra: ra, path: path}, nil
}

// Fields decodes every field of the named snapshot without interpreting
// them as entries.
func (s *Store) Fields(name string, validate bool) ([]encoding.Field, error) {
	ra, err := mmap.Open(s.Path(name))
	if err != nil {
		return nil, fmt.Errorf("error opening snapshot file: %w", err)
	}
	defer ra.Close()
	return encoding.NewDecoder(io.NewSectionReader(ra, 0, int64(ra.Len()))).ReadAll(validate)
}

func (f *File) Path() string {
	return f.path
}

func (f *File) Close() error {
	if err := f.ra.Close(); err != nil {
		return fmt.Errorf("error closing mmap fd: %w", err)
	}
	return nil
}

// List returns the snapshot names in the store, oldest KSUID first.
func (s *Store) List() ([]string, error) {
	files, err := filepath.Glob(filepath.Join(s.dir, snapshotFn))
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(files))
	for _, f := range files {
		names = append(names, filepath.Base(f))
	}
	sort.Strings(names)
	return names, nil
}

func (s *Store) Remove(name string) error {
	if err := os.Remove(s.Path(name)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Clear removes every file in the store but keeps the directory.
func (s *Store) Clear() error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return fmt.Errorf("error reading snapshot directory: %w", err)
	}
	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(s.dir, e.Name())); err != nil {
			return err
		}
	}
	return nil
}

// Prune deletes snapshots whose name starts with prefix and that are not
// listed in keep, and returns their names. Snapshots of other test lists and
// files without the snapshot extension are left alone.
func (s *Store) Prune(prefix string, keep []string) ([]string, error) {
	names, err := s.List()
	if err != nil {
		return nil, err
	}
	referenced := make(map[string]bool, len(keep))
	for _, k := range keep {
		referenced[filepath.Base(k)] = true
	}
	var removed []string
	for _, name := range names {
		if !strings.HasPrefix(name, prefix) || referenced[name] {
			continue
		}
		if err := s.Remove(name); err != nil {
			return removed, fmt.Errorf("error pruning snapshot %s: %w", name, err)
		}
		log.WithField("snapshot", name).Debug("pruned unreferenced snapshot")
		removed = append(removed, name)
	}
	return removed, nil
}

package internal

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	log "github.com/sirupsen/logrus"
	"pingcap.com/rere/internal/config"
	"pingcap.com/rere/internal/shell"
	"pingcap.com/rere/internal/snapshot"
)

const (
	lockFilename = ".locked"
)

var (
	ErrLocked       = errors.New("workspace is locked by another rere process")
	ErrNoSnapshot   = errors.New("no snapshots found, run `rere record` first")
	ErrNoTestFile   = errors.New("test file not found, run `rere init` first")
	ErrReplayFailed = errors.New("replay failed")
)

// Workspace is the directory holding a rere config, its test list and its
// snapshots. While open it holds an exclusive lock file so that only one
// process reads or writes its snapshots at a time.
type Workspace struct {
	configPath string
	baseDir    string
	cfg        *config.Config
	store      *snapshot.Store
	lockFile   *os.File

	runner shell.Runner
	out    io.Writer
	now    func() time.Time
}

type Option func(*Workspace)

func WithRunner(r shell.Runner) Option {
	return func(w *Workspace) { w.runner = r }
}

// WithOutput sets where progress and diffs are printed.
func WithOutput(out io.Writer) Option {
	return func(w *Workspace) { w.out = out }
}

func WithClock(now func() time.Time) Option {
	return func(w *Workspace) { w.now = now }
}

// OpenWorkspace loads the config at configPath and locks its directory.
func OpenWorkspace(configPath string, opts ...Option) (*Workspace, error) {
	baseDir := filepath.Dir(configPath)
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("error creating workspace directory: %w", err)
	}

	cfg, err := config.LoadOrDefault(configPath)
	if err != nil {
		return nil, err
	}

	lockFile, err := os.OpenFile(filepath.Join(baseDir, lockFilename), os.O_RDONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("%w: remove %s if no other process is running", ErrLocked, filepath.Join(baseDir, lockFilename))
		}
		return nil, fmt.Errorf("error locking workspace: %w", err)
	}

	w := &Workspace{
		configPath: configPath,
		baseDir:    baseDir,
		cfg:        cfg,
		lockFile:   lockFile,
		runner:     shell.ExecRunner{},
		out:        io.Discard,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}

	store, err := snapshot.NewStore(cfg.SnapshotPath(baseDir))
	if err != nil {
		w.Close()
		return nil, err
	}
	w.store = store
	log.WithField("config", configPath).Debug("workspace opened")
	return w, nil
}

func (w *Workspace) Config() *config.Config {
	return w.cfg
}

func (w *Workspace) Store() *snapshot.Store {
	return w.store
}

func (w *Workspace) testPath() string {
	return w.cfg.TestPath(w.baseDir)
}

func (w *Workspace) save() error {
	return w.cfg.Save(w.configPath)
}

func (w *Workspace) printf(format string, args ...interface{}) {
	fmt.Fprintf(w.out, format, args...)
}

// Close releases the workspace lock.
func (w *Workspace) Close() error {
	if w.lockFile == nil {
		return nil
	}
	path := w.lockFile.Name()
	if err := w.lockFile.Close(); err != nil {
		return err
	}
	w.lockFile = nil
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("error releasing workspace lock: %w", err)
	}
	return nil
}

package internal

import (
	"errors"
	"fmt"
	"io"
	"os"

	log "github.com/sirupsen/logrus"
	"pingcap.com/rere/internal/snapshot/encoding"
)

type CleanOptions struct {
	// All removes the config, test list, snapshots and, when it ends up
	// empty, the workspace directory.
	All bool
	// Snapshots removes every snapshot and the snapshot history.
	Snapshots bool
	// Config resets settings to their defaults, keeping the test list and
	// snapshot locations.
	Config bool
}

func (w *Workspace) Clean(opts CleanOptions) error {
	switch {
	case opts.All:
		if err := os.RemoveAll(w.store.Dir()); err != nil {
			return fmt.Errorf("error removing snapshots: %w", err)
		}
		for _, path := range []string{w.testPath(), w.configPath} {
			if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
				return err
			}
		}
		if err := w.Close(); err != nil {
			return err
		}
		// Only removes the directory when nothing else lives there.
		if err := os.Remove(w.baseDir); err != nil && !errors.Is(err, os.ErrNotExist) {
			log.Debugf("keeping workspace directory %s: %v", w.baseDir, err)
		}
		return nil

	case opts.Snapshots:
		if err := w.store.Clear(); err != nil {
			return err
		}
		w.cfg.State.LatestSnapshots = nil
		w.cfg.State.RecordTimestamps = nil
		w.cfg.State.RecordElapsedTime = nil
		return w.save()

	case opts.Config:
		w.cfg.Reset()
		return w.save()
	}
	return errors.New("nothing to clean: pass --all, --snapshots or --reset-config")
}

// Show prints every field of the latest snapshot to out.
func (w *Workspace) Show(out io.Writer, validate bool) error {
	name, ok := w.cfg.LatestSnapshot()
	if !ok {
		return ErrNoSnapshot
	}
	fields, err := w.store.Fields(name, validate)
	for _, f := range fields {
		fmt.Fprintln(out, f)
		if blob, ok := f.(encoding.BlobField); ok && len(blob.Data) > 0 {
			fmt.Fprintf(out, "    %q\n", blob.Data)
		}
	}
	if err != nil {
		return fmt.Errorf("error reading snapshot %s: %w", name, err)
	}
	return nil
}

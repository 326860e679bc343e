package internal

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
	"pingcap.com/rere/internal/shell"
	"pingcap.com/rere/internal/snapshot"
)

// Record runs every command of the test list and stores their outputs as a
// new snapshot. It returns the snapshot name.
func (w *Workspace) Record(ctx context.Context) (string, error) {
	shells, err := shell.LoadCommands(w.testPath())
	if err != nil {
		return "", err
	}

	start := w.now()
	entries := make([]snapshot.Entry, 0, len(shells))
	for _, sh := range shells {
		w.printf("Capturing: %s\n", sh)
		out, err := w.runner.Capture(ctx, sh)
		if err != nil {
			return "", err
		}
		entries = append(entries, snapshot.Entry{
			Shell:      out.Shell,
			ReturnCode: out.ReturnCode,
			Stdout:     out.Stdout,
			Stderr:     out.Stderr,
		})
	}

	name := snapshot.Name(w.cfg.Common.TestFile, w.cfg.Record.Overwrite)
	if _, err := w.store.Create(name, entries); err != nil {
		return "", err
	}

	end := w.now()
	w.cfg.AddRecord(name, end.Sub(start), end)
	if !w.cfg.Record.Overwrite {
		removed, err := w.store.Prune(snapshot.HistoryPrefix(w.cfg.Common.TestFile), w.cfg.State.LatestSnapshots)
		if err != nil {
			return "", fmt.Errorf("error pruning snapshot history: %w", err)
		}
		if len(removed) > 0 {
			log.Infof("removed %d snapshots beyond history", len(removed))
		}
	}
	if err := w.save(); err != nil {
		return "", err
	}
	log.WithFields(log.Fields{"snapshot": name, "commands": len(entries)}).Info("recording completed")
	return name, nil
}

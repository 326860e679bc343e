package internal

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"
	"pingcap.com/rere/internal/config"
	"pingcap.com/rere/internal/shell"
)

// ReplayReport summarizes one replay run.
type ReplayReport struct {
	Snapshot string
	Replayed int
	Diffs    []Diff
	Elapsed  time.Duration
}

func (r *ReplayReport) Passed() bool {
	return len(r.Diffs) == 0
}

// Replay re-runs the test list and compares every command against the
// latest snapshot, field by field. The outcome is appended to the history.
// A run with differences returns the report together with ErrReplayFailed.
func (w *Workspace) Replay(ctx context.Context) (*ReplayReport, error) {
	testPath := w.testPath()
	if _, err := os.Stat(testPath); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNoTestFile, testPath)
	}
	name, ok := w.cfg.LatestSnapshot()
	if !ok {
		return nil, ErrNoSnapshot
	}
	if !w.store.Exists(name) {
		return nil, fmt.Errorf("%w: %s is missing", ErrNoSnapshot, w.store.Path(name))
	}

	shells, err := shell.LoadCommands(testPath)
	if err != nil {
		return nil, err
	}

	snap, err := w.store.Open(name, true)
	if err != nil {
		return nil, err
	}
	defer snap.Close()

	if snap.Count() != len(shells) {
		return nil, fmt.Errorf("number of commands in test file (%d) doesn't match snapshot (%d)", len(shells), snap.Count())
	}

	report := &ReplayReport{Snapshot: name}
	start := w.now()
	failFast := w.cfg.Replay.FailFast
	for _, sh := range shells {
		w.printf("Replaying: %s\n", sh)
		expected, err := snap.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		var diffs []Diff
		if sh != expected.Shell {
			diffs = append(diffs, Diff{Shell: sh, Field: "shell command", Expected: expected.Shell, Actual: sh})
		} else {
			out, err := w.runner.Capture(ctx, sh)
			if err != nil {
				return nil, err
			}
			diffs = compare(sh, expected.ReturnCode, expected.Stdout, expected.Stderr, out)
		}
		report.Replayed++

		for _, d := range diffs {
			w.printf("%s", d)
			report.Diffs = append(report.Diffs, d)
			log.WithFields(log.Fields{"shell": sh, "field": d.Field}).Debug("replay mismatch")
			if failFast {
				break
			}
		}
		if failFast && len(report.Diffs) > 0 {
			break
		}
	}
	report.Elapsed = w.now().Sub(start)

	result := config.ReplayPass
	if !report.Passed() {
		result = config.ReplayFail
	}
	w.cfg.AddReplay(result, report.Elapsed, w.now())
	if err := w.save(); err != nil {
		return report, err
	}

	if !report.Passed() {
		return report, ErrReplayFailed
	}
	w.printf("All tests passed!\n")
	return report, nil
}

func compare(sh string, returnCode int64, stdout, stderr []byte, out shell.Output) []Diff {
	var diffs []Diff
	if out.ReturnCode != returnCode {
		diffs = append(diffs, Diff{
			Shell:    sh,
			Field:    "return code",
			Expected: strconv.FormatInt(returnCode, 10),
			Actual:   strconv.FormatInt(out.ReturnCode, 10),
		})
	}
	if !bytes.Equal(out.Stdout, stdout) {
		diffs = append(diffs, Diff{Shell: sh, Field: "stdout", Expected: string(stdout), Actual: string(out.Stdout), Lines: true})
	}
	if !bytes.Equal(out.Stderr, stderr) {
		diffs = append(diffs, Diff{Shell: sh, Field: "stderr", Expected: string(stderr), Actual: string(out.Stderr), Lines: true})
	}
	return diffs
}

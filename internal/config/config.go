// Package config loads and persists the rere TOML configuration, which also
// carries the recording and replay history.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	DefaultPath        = "./rere/rere.toml"
	DefaultTestFile    = "test.list"
	DefaultSnapshotDir = "snapshots"
	DefaultHistory     = 3
	DefaultOverwrite   = true
	DefaultFailFast    = true
)

var ErrConfigExists = errors.New("configuration file already exists")

type ReplayResult string

const (
	ReplayPass ReplayResult = "Pass"
	ReplayFail ReplayResult = "Fail"
)

type Config struct {
	Common CommonConfig `toml:"common"`
	Record RecordConfig `toml:"record"`
	Replay ReplayConfig `toml:"replay"`
	State  StateConfig  `toml:"state"`
}

type CommonConfig struct {
	TestFile    string `toml:"test_file"`
	SnapshotDir string `toml:"snapshot_dir"`
	History     int    `toml:"history"`
}

type RecordConfig struct {
	Overwrite bool `toml:"overwrite"`
}

type ReplayConfig struct {
	FailFast bool `toml:"fail_fast"`
}

// StateConfig holds the most recent runs, newest first, trimmed to
// Common.History. Elapsed times are stored as nanoseconds.
type StateConfig struct {
	LatestSnapshots   []string       `toml:"latest_snapshots"`
	RecordTimestamps  []time.Time    `toml:"record_timestamps"`
	RecordElapsedTime []int64        `toml:"record_elapsed_time"`
	ReplayTimestamps  []time.Time    `toml:"replay_timestamps"`
	ReplayElapsedTime []int64        `toml:"replay_elapsed_time"`
	ReplayResults     []ReplayResult `toml:"replay_results"`
}

func Default() *Config {
	return &Config{
		Common: CommonConfig{
			TestFile:    DefaultTestFile,
			SnapshotDir: DefaultSnapshotDir,
			History:     DefaultHistory,
		},
		Record: RecordConfig{Overwrite: DefaultOverwrite},
		Replay: ReplayConfig{FailFast: DefaultFailFast},
	}
}

// LoadOrDefault reads the config at path, or returns defaults when the file
// does not exist. Keys missing from the file keep their default values.
func LoadOrDefault(path string) (*Config, error) {
	cfg := Default()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config invalid (%s): %w", path, err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Common.TestFile == "" {
		return fmt.Errorf("common.test_file is required")
	}
	if c.Common.SnapshotDir == "" {
		return fmt.Errorf("common.snapshot_dir is required")
	}
	if c.Common.History < 1 {
		return fmt.Errorf("common.history must be at least 1, got %d", c.Common.History)
	}
	for _, r := range c.State.ReplayResults {
		if r != ReplayPass && r != ReplayFail {
			return fmt.Errorf("state.replay_results: unknown result %q, expected %q or %q", r, ReplayPass, ReplayFail)
		}
	}
	return nil
}

func (c *Config) Save(path string) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return fmt.Errorf("config encode failed: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("config write failed (%s): %w", path, err)
	}
	return nil
}

// InitOptions override the defaults written by Init. Nil pointers and empty
// strings keep the default.
type InitOptions struct {
	TestFile    string
	SnapshotDir string
	History     int
	Overwrite   *bool
	FailFast    *bool
}

// Init writes a fresh config at path and creates the snapshot directory and
// an empty test list next to it. It refuses to replace an existing config.
func Init(path string, opts InitOptions) (*Config, error) {
	if _, err := os.Stat(path); err == nil {
		return nil, fmt.Errorf("%w at %s", ErrConfigExists, path)
	}

	cfg := Default()
	if opts.TestFile != "" {
		cfg.Common.TestFile = opts.TestFile
	}
	if opts.SnapshotDir != "" {
		cfg.Common.SnapshotDir = opts.SnapshotDir
	}
	if opts.History != 0 {
		cfg.Common.History = opts.History
	}
	if opts.Overwrite != nil {
		cfg.Record.Overwrite = *opts.Overwrite
	}
	if opts.FailFast != nil {
		cfg.Replay.FailFast = *opts.FailFast
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	base := filepath.Dir(path)
	if err := os.MkdirAll(cfg.SnapshotPath(base), 0755); err != nil {
		return nil, fmt.Errorf("failed to construct path to snapshot directory: %w", err)
	}
	testPath := cfg.TestPath(base)
	if err := os.MkdirAll(filepath.Dir(testPath), 0755); err != nil {
		return nil, err
	}
	fd, err := os.OpenFile(testPath, os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("unable to create test file: %w", err)
	}
	if err := fd.Close(); err != nil {
		return nil, err
	}
	if err := cfg.Save(path); err != nil {
		return nil, err
	}
	return cfg, nil
}

// TestPath resolves the test list relative to the config directory.
func (c *Config) TestPath(base string) string {
	return resolve(base, c.Common.TestFile)
}

// SnapshotPath resolves the snapshot directory relative to the config
// directory.
func (c *Config) SnapshotPath(base string) string {
	return resolve(base, c.Common.SnapshotDir)
}

func resolve(base, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}

// AddRecord prepends a recording to the history.
func (c *Config) AddRecord(snapshot string, elapsed time.Duration, at time.Time) {
	s := &c.State
	s.LatestSnapshots = prepend(s.LatestSnapshots, snapshot, c.Common.History)
	s.RecordTimestamps = prepend(s.RecordTimestamps, at.UTC(), c.Common.History)
	s.RecordElapsedTime = prepend(s.RecordElapsedTime, elapsed.Nanoseconds(), c.Common.History)
}

// AddReplay prepends a replay outcome to the history.
func (c *Config) AddReplay(result ReplayResult, elapsed time.Duration, at time.Time) {
	s := &c.State
	s.ReplayTimestamps = prepend(s.ReplayTimestamps, at.UTC(), c.Common.History)
	s.ReplayElapsedTime = prepend(s.ReplayElapsedTime, elapsed.Nanoseconds(), c.Common.History)
	s.ReplayResults = prepend(s.ReplayResults, result, c.Common.History)
}

// LatestSnapshot returns the most recently recorded snapshot name.
func (c *Config) LatestSnapshot() (string, bool) {
	if len(c.State.LatestSnapshots) == 0 {
		return "", false
	}
	return c.State.LatestSnapshots[0], true
}

// Reset restores every setting to its default except the test file and
// snapshot directory, and drops the history.
func (c *Config) Reset() {
	fresh := Default()
	fresh.Common.TestFile = c.Common.TestFile
	fresh.Common.SnapshotDir = c.Common.SnapshotDir
	*c = *fresh
}

func prepend[T any](list []T, v T, limit int) []T {
	out := make([]T, 0, len(list)+1)
	out = append(out, v)
	out = append(out, list...)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Package shell runs test-list commands and captures their output.
package shell

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	log "github.com/sirupsen/logrus"
)

const commentPrefix = "//"

var ErrNoCommands = errors.New("test file is empty or contains only comments")

// Output is the captured result of one command.
type Output struct {
	Shell      string
	ReturnCode int64
	Stdout     []byte
	Stderr     []byte
}

// Runner abstracts command execution so record/replay can be tested
// without a shell.
type Runner interface {
	Capture(ctx context.Context, shell string) (Output, error)
}

// ExecRunner runs each command line through `sh -c`.
type ExecRunner struct {
	// Dir is the working directory of the commands; empty means the
	// current one.
	Dir string
}

func (r ExecRunner) Capture(ctx context.Context, shell string) (Output, error) {
	log.WithField("shell", shell).Debug("capturing")
	cmd := exec.CommandContext(ctx, "sh", "-c", shell)
	cmd.Dir = r.Dir
	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	out := Output{Shell: shell}
	err := cmd.Run()
	out.Stdout = stdout.Bytes()
	out.Stderr = stderr.Bytes()
	if err == nil {
		return out, nil
	}

	// A non-zero exit is a result, not a failure. ExitCode is -1 when the
	// process was killed by a signal.
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		out.ReturnCode = int64(exitErr.ExitCode())
		return out, nil
	}
	return out, fmt.Errorf("error running %q: %w", shell, err)
}

// LoadCommands reads a test list: one command per line, blank lines and
// lines starting with // are skipped.
func LoadCommands(path string) ([]string, error) {
	fd, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening test file: %w", err)
	}
	defer fd.Close()

	var shells []string
	scanner := bufio.NewScanner(fd)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, commentPrefix) {
			continue
		}
		shells = append(shells, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading test file: %w", err)
	}
	if len(shells) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoCommands, path)
	}
	return shells, nil
}

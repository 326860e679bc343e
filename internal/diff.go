package internal

import (
	"fmt"
	"strings"

	"github.com/kylelemons/godebug/diff"
)

// Diff is one field of a replayed command whose output differs from the
// snapshot.
type Diff struct {
	Shell    string
	Field    string
	Expected string
	Actual   string
	// Lines marks multi-line content, rendered as a line diff.
	Lines bool
}

func (d Diff) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "\nUnexpected %s:\n", d.Field)
	if !d.Lines {
		fmt.Fprintf(&b, "  Expected: %s\n", d.Expected)
		fmt.Fprintf(&b, "  Actual: %s\n", d.Actual)
		return b.String()
	}
	for _, line := range strings.Split(diff.Diff(d.Expected, d.Actual), "\n") {
		fmt.Fprintf(&b, "    %s\n", line)
	}
	return b.String()
}

package cmd

import (
	"bytes"
	"context"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"
)

// isolate points every joinindex path at a fresh home directory and
// returns it.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	t.Setenv("NO_COLOR", "1")
	for _, name := range []string{"JOININDEX_BACKEND", "JOININDEX_SEED", "JOININDEX_FACTS", "JOININDEX_LOG_LEVEL", "JOININDEX_TELEMETRY_DB"} {
		t.Setenv(name, "")
	}
	return home
}

// execute runs the root command with args and returns everything it wrote.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return buf.String(), err
}

var runIDPattern = regexp.MustCompile(`Run: (\S+)`)

// runID extracts the stored run ID from bench or check output.
func runID(t *testing.T, out string) string {
	t.Helper()
	m := runIDPattern.FindStringSubmatch(out)
	require.Len(t, m, 2, "no run id in output:\n%s", out)
	return m[1]
}

// smallBench are bench flags for a run that finishes quickly.
func smallBench(dir string, extra ...string) []string {
	args := []string{"bench", "-C", dir, "--plain",
		"--facts", "60", "--moves", "200", "--verify-every", "50", "-j", "4"}
	return append(args, extra...)
}

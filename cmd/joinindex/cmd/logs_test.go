package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeLog(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "joinindex.log")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0644))
	return path
}

func TestLogsCmd_TailsAndFilters(t *testing.T) {
	// Given: a log with records at several levels
	isolate(t)
	path := writeLog(t,
		`{"time":"2026-10-17T10:00:00Z","level":"INFO","msg":"bench_run_started","jobs":8}`,
		`{"time":"2026-10-17T10:00:01Z","level":"ERROR","msg":"bench_job_failed","job":"mixed/linked"}`,
		`{"time":"2026-10-17T10:00:02Z","level":"INFO","msg":"bench_run_complete","jobs":8}`,
	)

	// When: showing warnings and above
	out, err := execute(t, "logs", "--file", path, "--level", "warn")

	// Then: only the error record is printed
	require.NoError(t, err)
	assert.Contains(t, out, "Log file: "+path)
	assert.Contains(t, out, "bench_job_failed job=mixed/linked")
	assert.NotContains(t, out, "bench_run_started")
}

func TestLogsCmd_LinesAndPattern(t *testing.T) {
	isolate(t)
	path := writeLog(t,
		`{"time":"2026-10-17T10:00:00Z","level":"INFO","msg":"bench_run_started"}`,
		`{"time":"2026-10-17T10:00:01Z","level":"INFO","msg":"bench_job_complete","job":"equal/linked"}`,
		`{"time":"2026-10-17T10:00:02Z","level":"INFO","msg":"bench_job_complete","job":"equal/indexed"}`,
	)

	out, err := execute(t, "logs", "--file", path, "-n", "2", "--filter", "linked")

	require.NoError(t, err)
	assert.Contains(t, out, "equal/linked")
	assert.NotContains(t, out, "equal/indexed")
	assert.NotContains(t, out, "bench_run_started")
}

func TestLogsCmd_MissingFile(t *testing.T) {
	isolate(t)

	_, err := execute(t, "logs")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "--debug")
}

func TestLogsCmd_BadPattern(t *testing.T) {
	isolate(t)
	path := writeLog(t, `{"level":"INFO","msg":"x"}`)

	_, err := execute(t, "logs", "--file", path, "--filter", "(")

	assert.Error(t, err)
}

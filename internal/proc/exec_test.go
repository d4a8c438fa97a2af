//go:build unix

package proc

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeScript creates an executable shell script in a temp dir.
func writeScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "script.sh")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755))
	return path
}

func TestExecRunner_CapturesOutput(t *testing.T) {
	script := writeScript(t, `echo "args: $@"; echo oops >&2`)

	res, err := ExecRunner{}.Run(context.Background(), Command{Path: script, Args: []string{"a", "b"}})
	require.NoError(t, err)

	assert.Equal(t, "args: a b\n", string(res.Stdout))
	assert.Equal(t, "oops\n", string(res.Stderr))
	assert.Equal(t, 0, res.ExitCode)
}

func TestExecRunner_NonZeroExitIsNotAnError(t *testing.T) {
	script := writeScript(t, `echo partial; exit 3`)

	res, err := ExecRunner{}.Run(context.Background(), Command{Path: script})
	require.NoError(t, err)

	assert.Equal(t, 3, res.ExitCode)
	assert.Equal(t, "partial\n", string(res.Stdout))
}

func TestExecRunner_WorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	script := writeScript(t, `pwd`)

	res, err := ExecRunner{}.Run(context.Background(), Command{Path: script, Dir: dir})
	require.NoError(t, err)

	want, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	got, err := filepath.EvalSymlinks(string(res.Stdout[:len(res.Stdout)-1]))
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestExecRunner_MissingProgram(t *testing.T) {
	_, err := ExecRunner{}.Run(context.Background(), Command{Path: filepath.Join(t.TempDir(), "nope")})
	require.Error(t, err)
}

func TestExecRunner_EmptyPath(t *testing.T) {
	_, err := ExecRunner{}.Run(context.Background(), Command{})
	require.Error(t, err)
}

func TestExecRunner_ContextCancelKillsProcess(t *testing.T) {
	script := writeScript(t, `sleep 30`)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := ExecRunner{}.Run(ctx, Command{Path: script})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 10*time.Second)
}

// TestExecRunner_ContextCancelKillsProcessGroup starts a background
// grandchild that would write a marker after the deadline. Killing only the
// shell would leave it running.
func TestExecRunner_ContextCancelKillsProcessGroup(t *testing.T) {
	marker := filepath.Join(t.TempDir(), "survived")
	script := writeScript(t, `(sleep 1; touch "$1") >/dev/null 2>&1 &
sleep 30`)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	_, err := ExecRunner{}.Run(ctx, Command{Path: script, Args: []string{marker}})
	require.Error(t, err)

	time.Sleep(2 * time.Second)
	assert.NoFileExists(t, marker)
}

func TestCommandString(t *testing.T) {
	c := Command{Path: "java", Args: []string{"-jar", "m.jar"}}
	assert.Equal(t, "java -jar m.jar", c.String())
}

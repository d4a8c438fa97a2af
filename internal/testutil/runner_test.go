package testutil

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/idorch/internal/header"
	"github.com/roach88/idorch/internal/proc"
	"github.com/roach88/idorch/internal/store"
)

func newStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(t.TempDir())
	require.NoError(t, err)
	return st
}

func TestScriptedRunner_EmitsAtStep(t *testing.T) {
	st := newStore(t)
	h := header.New("Mapping", []string{"a"}, "")
	r := NewScriptedRunner(st).On("/mods/a", 1, h)

	cmd := func(step string) proc.Command {
		return proc.Command{Path: "/mods/a", Args: []string{"--no-integration", st.RunPath(), step}}
	}

	res, err := r.Run(context.Background(), cmd("0"))
	require.NoError(t, err)
	assert.Empty(t, res.Stdout)

	res, err = r.Run(context.Background(), cmd("1"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(res.Stdout)), "\n")
	require.Len(t, lines, 1)

	got, err := store.ReadRecord(lines[0])
	require.NoError(t, err)
	assert.Equal(t, h, got)
	assert.Equal(t, []int{0, 1}, r.Steps("/mods/a"))
}

func TestScriptedRunner_ArchiveProgram(t *testing.T) {
	st := newStore(t)
	r := NewScriptedRunner(st)

	_, err := r.Run(context.Background(), proc.Command{
		Path: "java",
		Args: []string{"-jar", "/mods/m.jar", "--no-integration", st.RunPath(), "4"},
	})
	require.NoError(t, err)

	calls := r.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "/mods/m.jar", calls[0].Program)
	assert.Equal(t, 4, calls[0].Step)
}

func TestScriptedRunner_FailureAndExitCode(t *testing.T) {
	st := newStore(t)
	boom := errors.New("boom")
	r := NewScriptedRunner(st).Fail("/mods/a", boom).ExitCode("/mods/b", 2)

	_, err := r.Run(context.Background(), proc.Command{Path: "/mods/a", Args: []string{"--no-integration", "/run", "0"}})
	assert.ErrorIs(t, err, boom)

	res, err := r.Run(context.Background(), proc.Command{Path: "/mods/b", Args: []string{"--no-integration", "/run", "0"}})
	require.NoError(t, err)
	assert.Equal(t, 2, res.ExitCode)
}

func TestScriptedRunner_BadArguments(t *testing.T) {
	r := NewScriptedRunner(newStore(t))

	_, err := r.Run(context.Background(), proc.Command{Path: "/mods/a"})
	require.Error(t, err)

	_, err = r.Run(context.Background(), proc.Command{Path: "/mods/a", Args: []string{"--no-integration", "/run", "x"}})
	require.Error(t, err)
}

package module

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/idorch/internal/header"
	"github.com/roach88/idorch/internal/store"
	"github.com/roach88/idorch/internal/testutil"
)

func newStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(t.TempDir())
	require.NoError(t, err)
	return st
}

func TestNew_SelectsVariantByExtension(t *testing.T) {
	assert.IsType(t, &Archive{}, New("/run", "/mods/m.jar"))
	assert.IsType(t, &Archive{}, New("/run", "/mods/M.JAR"))
	assert.IsType(t, &Executable{}, New("/run", "/mods/m"))
	assert.IsType(t, &Executable{}, New("/run", "/mods/m.jar.sh"))

	assert.Equal(t, "archive", Kind(New("/run", "/mods/m.jar")))
	assert.Equal(t, "executable", Kind(New("/run", "/mods/m")))
}

func TestHandleIdentity(t *testing.T) {
	a := New("/run", "/mods/m")
	b := New("/run", "/mods/m", WithJava("other"))
	c := New("/other-run", "/mods/m")

	assert.Equal(t, a.Key(), b.Key())
	assert.NotEqual(t, a.Key(), c.Key())
	assert.Equal(t, "/mods/m", a.UniqueIdentifier())
	assert.Equal(t, "/run", a.RunPath())
}

func TestExecutable_CommandLine(t *testing.T) {
	st := newStore(t)
	runner := testutil.NewScriptedRunner(st)
	m := NewExecutable(st.RunPath(), "/mods/ident", WithRunner(runner))

	m.IdentificationStep(context.Background(), 7)

	calls := runner.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "/mods/ident", calls[0].Command.Path)
	assert.Equal(t, []string{"--no-integration", st.RunPath(), "7"}, calls[0].Command.Args)
	assert.Equal(t, st.RunPath(), calls[0].Command.Dir)
}

func TestArchive_CommandLine(t *testing.T) {
	st := newStore(t)
	runner := testutil.NewScriptedRunner(st)

	m := NewArchive(st.RunPath(), "/mods/ident.jar", WithRunner(runner))
	m.IdentificationStep(context.Background(), 0)

	custom := NewArchive(st.RunPath(), "/mods/ident.jar", WithRunner(runner), WithJava("/opt/jdk/bin/java"))
	custom.IdentificationStep(context.Background(), 1)

	calls := runner.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, "java", calls[0].Command.Path)
	assert.Equal(t, []string{"-jar", "/mods/ident.jar", "--no-integration", st.RunPath(), "0"}, calls[0].Command.Args)
	assert.Equal(t, "/opt/jdk/bin/java", calls[1].Command.Path)
}

func TestIdentificationStep_CollectsReportedHeaders(t *testing.T) {
	st := newStore(t)
	h1 := header.New("Mapping", []string{"a"}, "")
	h2 := header.New("Mapping", []string{"b"}, "")
	runner := testutil.NewScriptedRunner(st).On("/mods/a", 0, h1, h2)

	got := NewExecutable(st.RunPath(), "/mods/a", WithRunner(runner)).IdentificationStep(context.Background(), 0)

	assert.Equal(t, 2, got.Len())
	assert.True(t, got.Contains(h1))
	assert.True(t, got.Contains(h2))
}

func TestIdentificationStep_DropsBadLines(t *testing.T) {
	st := newStore(t)
	good := header.New("Mapping", []string{"a"}, "")
	goodPath, err := st.Save(good)
	require.NoError(t, err)

	relGood := header.New("Mapping", []string{"rel"}, "")
	relPath, err := st.Save(relGood)
	require.NoError(t, err)
	rel, err := filepath.Rel(st.RunPath(), relPath)
	require.NoError(t, err)

	malformed := filepath.Join(st.BinaryPath(), "header_bad.msgpack")
	require.NoError(t, os.WriteFile(malformed, []byte("not msgpack"), 0o644))

	runner := testutil.NewScriptedRunner(st).RawOutput("/mods/a", 0,
		"",
		"  "+goodPath+"  ",
		filepath.Join(st.BinaryPath(), "missing.msgpack"),
		malformed,
		rel,
		goodPath,
	)

	got := NewExecutable(st.RunPath(), "/mods/a", WithRunner(runner)).IdentificationStep(context.Background(), 0)

	assert.Equal(t, 2, got.Len())
	assert.True(t, got.Contains(good))
	assert.True(t, got.Contains(relGood))
}

func TestIdentificationStep_OversizedLineDoesNotStopReading(t *testing.T) {
	st := newStore(t)
	good := header.New("Mapping", []string{"a"}, "")
	goodPath, err := st.Save(good)
	require.NoError(t, err)

	runner := testutil.NewScriptedRunner(st).RawOutput("/mods/a", 0,
		strings.Repeat("x", 2*maxLineBytes),
		goodPath,
	)

	got := NewExecutable(st.RunPath(), "/mods/a", WithRunner(runner)).IdentificationStep(context.Background(), 0)

	assert.Equal(t, 1, got.Len())
	assert.True(t, got.Contains(good))
}

func TestIdentificationStep_LaunchFailureYieldsNothing(t *testing.T) {
	st := newStore(t)
	runner := testutil.NewScriptedRunner(st).Fail("/mods/a", errors.New("exec format error"))

	got := NewExecutable(st.RunPath(), "/mods/a", WithRunner(runner)).IdentificationStep(context.Background(), 0)
	assert.Equal(t, 0, got.Len())
}

func TestIdentificationStep_NonZeroExitKeepsPrintedHeaders(t *testing.T) {
	st := newStore(t)
	h := header.New("Mapping", []string{"a"}, "")
	runner := testutil.NewScriptedRunner(st).On("/mods/a", 0, h).ExitCode("/mods/a", 1)

	got := NewExecutable(st.RunPath(), "/mods/a", WithRunner(runner)).IdentificationStep(context.Background(), 0)
	assert.True(t, got.Contains(h))
}

func TestIdentificationStep_TimeoutIsSoft(t *testing.T) {
	st := newStore(t)
	runner := testutil.NewScriptedRunner(st).Block("/mods/slow")

	m := NewExecutable(st.RunPath(), "/mods/slow", WithRunner(runner), WithStepTimeout(50*time.Millisecond))

	start := time.Now()
	got := m.IdentificationStep(context.Background(), 0)
	assert.Equal(t, 0, got.Len())
	assert.Less(t, time.Since(start), 5*time.Second)
}

package ledger

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createTestLedger opens a ledger in a temp dir and closes it on cleanup.
func createTestLedger(t *testing.T) *Ledger {
	t.Helper()
	l, err := Open(filepath.Join(t.TempDir(), FileName))
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })
	return l
}

func TestOpen_Pragmas(t *testing.T) {
	l := createTestLedger(t)

	want := map[string]string{
		"journal_mode": "wal",
		"foreign_keys": "1",
		"busy_timeout": "5000",
		"synchronous":  "1",
		"user_version": "1",
	}
	for name, expected := range want {
		got, err := l.pragma(name)
		require.NoError(t, err)
		assert.Equal(t, expected, got, name)
	}
}

func TestLoadMigrations_Ordered(t *testing.T) {
	steps, err := loadMigrations()
	require.NoError(t, err)
	require.NotEmpty(t, steps)

	assert.Equal(t, 1, steps[0].version)
	assert.Equal(t, "runs", steps[0].name)
	for i := 1; i < len(steps); i++ {
		assert.Greater(t, steps[i].version, steps[i-1].version)
	}
}

func TestOpen_RejectsNewerSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)

	l, err := Open(path)
	require.NoError(t, err)
	_, err = l.db.Exec("PRAGMA user_version = 99")
	require.NoError(t, err)
	require.NoError(t, l.Close())

	_, err = Open(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "newer than supported")
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)

	l1, err := Open(path)
	require.NoError(t, err)
	id, err := l1.BeginRun(context.Background(), "/run", 0)
	require.NoError(t, err)
	require.NoError(t, l1.Close())

	l2, err := Open(path)
	require.NoError(t, err)
	defer l2.Close()

	runs, err := l2.Runs(context.Background(), "/run")
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, id, runs[0].ID)
}

func TestClose_Nil(t *testing.T) {
	var l Ledger
	assert.NoError(t, l.Close())
}

func TestLastCompletedStep_Empty(t *testing.T) {
	l := createTestLedger(t)

	_, _, ok, err := l.LastCompletedStep(context.Background(), "/run")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLastCompletedStep_AcrossRuns(t *testing.T) {
	ctx := context.Background()
	l := createTestLedger(t)

	first, err := l.BeginRun(ctx, "/run", 0)
	require.NoError(t, err)
	require.NoError(t, l.RecordRound(ctx, first, 0, 1, 1))
	require.NoError(t, l.RecordRound(ctx, first, 1, 1, 2))
	require.NoError(t, l.FinishRun(ctx, first, StatusCancelled, 2))

	second, err := l.BeginRun(ctx, "/run", 2)
	require.NoError(t, err)
	require.NoError(t, l.RecordRound(ctx, second, 2, 0, 2))

	other, err := l.BeginRun(ctx, "/other", 0)
	require.NoError(t, err)
	require.NoError(t, l.RecordRound(ctx, other, 9, 0, 0))

	step, total, ok, err := l.LastCompletedStep(ctx, "/run")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 2, step)
	assert.Equal(t, 2, total)
}

func TestFinishRun(t *testing.T) {
	ctx := context.Background()
	l := createTestLedger(t)

	id, err := l.BeginRun(ctx, "/run", 3)
	require.NoError(t, err)

	runs, err := l.Runs(ctx, "/run")
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, StatusRunning, runs[0].Status)
	assert.Nil(t, runs[0].LastStep)
	assert.Equal(t, 3, runs[0].StartStep)

	require.NoError(t, l.FinishRun(ctx, id, StatusConverged, 5))

	runs, err = l.Runs(ctx, "/run")
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, StatusConverged, runs[0].Status)
	require.NotNil(t, runs[0].LastStep)
	assert.Equal(t, 5, *runs[0].LastStep)
}

func TestFinishRun_UnknownRun(t *testing.T) {
	l := createTestLedger(t)
	err := l.FinishRun(context.Background(), "missing", StatusConverged, 0)
	require.Error(t, err)
}

func TestRecordModuleStep(t *testing.T) {
	ctx := context.Background()
	l := createTestLedger(t)

	id, err := l.BeginRun(ctx, "/run", 0)
	require.NoError(t, err)

	require.NoError(t, l.RecordModuleStep(ctx, id, 0, "/mods/b", 0, 0))
	require.NoError(t, l.RecordModuleStep(ctx, id, 0, "/mods/a", 2, 1))
	require.NoError(t, l.RecordModuleStep(ctx, id, 1, "/mods/a", 0, 0))
	// duplicate is ignored
	require.NoError(t, l.RecordModuleStep(ctx, id, 0, "/mods/a", 7, 7))

	records, err := l.Rounds(ctx, "/run")
	require.NoError(t, err)
	assert.Equal(t, []StepRecord{
		{RunID: id, Step: 0, Module: "/mods/a", Produced: 2, Fresh: 1},
		{RunID: id, Step: 0, Module: "/mods/b", Produced: 0, Fresh: 0},
		{RunID: id, Step: 1, Module: "/mods/a", Produced: 0, Fresh: 0},
	}, records)
}

func TestRecordModuleStep_UnknownRunRejected(t *testing.T) {
	l := createTestLedger(t)
	err := l.RecordModuleStep(context.Background(), "missing", 0, "/mods/a", 0, 0)
	require.Error(t, err, "foreign key should reject unknown run")
}

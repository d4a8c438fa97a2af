package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Run is one orchestration run as stored.
type Run struct {
	ID        string
	RunPath   string
	StartStep int
	LastStep  *int
	Status    string
}

// StepRecord is one module invocation as stored.
type StepRecord struct {
	RunID    string
	Step     int
	Module   string
	Produced int
	Fresh    int
}

// LastCompletedStep returns the highest step recorded as a completed round
// for runPath across all runs, with the header total after that round.
// ok is false when no round was ever completed.
func (l *Ledger) LastCompletedStep(ctx context.Context, runPath string) (step, total int, ok bool, err error) {
	err = l.db.QueryRowContext(ctx, `
		SELECT r.step, r.total
		FROM rounds r
		JOIN runs ON runs.id = r.run_id
		WHERE runs.run_path = ?
		ORDER BY r.step DESC
		LIMIT 1
	`, runPath).Scan(&step, &total)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, 0, false, nil
	}
	if err != nil {
		return 0, 0, false, fmt.Errorf("last completed step: %w", err)
	}
	return step, total, true, nil
}

// Runs lists the runs recorded for runPath, oldest first.
func (l *Ledger) Runs(ctx context.Context, runPath string) ([]Run, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT id, run_path, start_step, last_step, status
		FROM runs
		WHERE run_path = ?
		ORDER BY id ASC
	`, runPath)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var last sql.NullInt64
		if err := rows.Scan(&r.ID, &r.RunPath, &r.StartStep, &last, &r.Status); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if last.Valid {
			v := int(last.Int64)
			r.LastStep = &v
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// Rounds lists every module invocation recorded for runPath, ordered by run,
// step and module.
func (l *Ledger) Rounds(ctx context.Context, runPath string) ([]StepRecord, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT m.run_id, m.step, m.module, m.produced, m.fresh
		FROM module_steps m
		JOIN runs ON runs.id = m.run_id
		WHERE runs.run_path = ?
		ORDER BY m.run_id ASC, m.step ASC, m.module ASC
	`, runPath)
	if err != nil {
		return nil, fmt.Errorf("query module steps: %w", err)
	}
	defer rows.Close()

	var out []StepRecord
	for rows.Next() {
		var r StepRecord
		if err := rows.Scan(&r.RunID, &r.Step, &r.Module, &r.Produced, &r.Fresh); err != nil {
			return nil, fmt.Errorf("scan module step: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate module steps: %w", err)
	}
	return out, nil
}

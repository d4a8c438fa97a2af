package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Run statuses written by FinishRun.
const (
	StatusRunning    = "running"
	StatusConverged  = "converged"
	StatusRoundLimit = "round_limit"
	StatusCancelled  = "cancelled"
)

// BeginRun inserts a run row and returns its UUIDv7 identifier.
func (l *Ledger) BeginRun(ctx context.Context, runPath string, startStep int) (string, error) {
	id := uuid.Must(uuid.NewV7()).String()
	_, err := l.db.ExecContext(ctx, `
		INSERT INTO runs (id, run_path, start_step, status)
		VALUES (?, ?, ?, ?)
	`, id, runPath, startStep, StatusRunning)
	if err != nil {
		return "", fmt.Errorf("begin run: %w", err)
	}
	return id, nil
}

// RecordModuleStep stores what one module produced at one step.
// produced counts headers the module returned; fresh counts those that were
// new to the accumulated set. Rewriting the same (run, step, module) is a no-op.
func (l *Ledger) RecordModuleStep(ctx context.Context, runID string, step int, moduleID string, produced, fresh int) error {
	_, err := l.db.ExecContext(ctx, `
		INSERT INTO module_steps (run_id, step, module, produced, fresh)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`, runID, step, moduleID, produced, fresh)
	if err != nil {
		return fmt.Errorf("record module step: %w", err)
	}
	return nil
}

// RecordRound marks step as completed for the run. total is the size of the
// accumulated set after the round.
func (l *Ledger) RecordRound(ctx context.Context, runID string, step, fresh, total int) error {
	_, err := l.db.ExecContext(ctx, `
		INSERT INTO rounds (run_id, step, fresh, total)
		VALUES (?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`, runID, step, fresh, total)
	if err != nil {
		return fmt.Errorf("record round: %w", err)
	}
	return nil
}

// FinishRun sets the final status and the last step the run attempted.
func (l *Ledger) FinishRun(ctx context.Context, runID, status string, lastStep int) error {
	res, err := l.db.ExecContext(ctx, `
		UPDATE runs SET status = ?, last_step = ? WHERE id = ?
	`, status, lastStep, runID)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("finish run: unknown run %q", runID)
	}
	return nil
}

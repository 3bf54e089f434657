package mtask

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"kyri56xcaesar/athlete-tracker/internal/models"
	"kyri56xcaesar/athlete-tracker/internal/pgutil"
	"kyri56xcaesar/athlete-tracker/internal/progress"
)

// pgProgressStore runs contributions in a transaction holding an advisory
// lock on the (task, user) pair. The partial unique index on achievements
// backs the lock up.
type pgProgressStore struct {
	pool *pgxpool.Pool
}

func (s pgProgressStore) Atomically(ctx context.Context, taskID, userID string, fn func(context.Context, progress.Tx) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1), hashtext($2))`, taskID, userID); err != nil {
		return err
	}

	if err := fn(ctx, pgProgressTx{tx: tx}); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

type pgProgressTx struct {
	tx pgx.Tx
}

func (t pgProgressTx) Task(ctx context.Context, taskID string) (models.Task, error) {
	task, err := scanTask(t.tx.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, taskID))
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Task{}, progress.ErrTaskNotFound
	}

	return task, err
}

func (t pgProgressTx) Entries(ctx context.Context, taskID, userID string) ([]models.ProgressEntry, error) {
	return listProgress(ctx, t.tx, taskID, userID)
}

func (t pgProgressTx) InsertEntry(ctx context.Context, e models.ProgressEntry) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO task_progress (id, task_id, user_id, value_added, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, e.ID, e.TaskID, e.UserID, e.ValueAdded, e.Notes, e.CreatedAt)

	return err
}

func (t pgProgressTx) InsertCompletion(ctx context.Context, a *models.Achievement) error {
	err := insertAchievement(ctx, t.tx, a)
	if pgutil.IsUniqueViolation(err, "achievements_progress_once") {
		return progress.ErrDuplicateCompletionAward
	}

	return err
}

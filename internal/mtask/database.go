package mtask

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"kyri56xcaesar/athlete-tracker/internal/models"
	"kyri56xcaesar/athlete-tracker/internal/pgutil"
)

var (
	ErrNoFieldsToUpdate = errors.New("no fields to update")
	ErrAlreadySubmitted = errors.New("proof already submitted for this task")
)

const taskColumns = `
	id, team_id, title, description, points, assigned_by, due_date, is_active,
	target_value, COALESCE(progress_unit, ''), created_at, updated_at`

func scanTask(row pgx.Row) (models.Task, error) {
	var t models.Task
	err := row.Scan(
		&t.ID, &t.TeamID, &t.Title, &t.Description, &t.Points, &t.AssignedBy, &t.DueDate, &t.IsActive,
		&t.TargetValue, &t.ProgressUnit, &t.CreatedAt, &t.UpdatedAt,
	)

	return t, err
}

func CreateTask(ctx context.Context, t models.Task) (models.Task, error) {
	t.ID = uuid.NewString()

	var unit *string
	if t.IsProgress() {
		unit = &t.ProgressUnit
	}

	err := pool.QueryRow(ctx, `
		INSERT INTO tasks (id, team_id, title, description, points, assigned_by, due_date, is_active, target_value, progress_unit)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at
	`, t.ID, t.TeamID, t.Title, t.Description, t.Points, t.AssignedBy, t.DueDate, t.IsActive, t.TargetValue, unit,
	).Scan(&t.CreatedAt, &t.UpdatedAt)

	return t, err
}

func GetTask(ctx context.Context, taskID string) (models.Task, error) {
	return scanTask(pool.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, taskID))
}

type ListTasksFilter struct {
	TeamID        string
	IncludeClosed bool
	Limit         int
	Offset        int
	Order         string
}

func ListTasks(ctx context.Context, f ListTasksFilter) ([]models.Task, error) {
	where := "team_id = $1"
	if !f.IncludeClosed {
		where += " AND is_active"
	}

	q := fmt.Sprintf(`SELECT %s FROM tasks WHERE %s ORDER BY %s, id LIMIT $2 OFFSET $3`,
		taskColumns, where, taskOrderClause(f.Order))

	rows, err := pool.Query(ctx, q, f.TeamID, normalizeLimit(f.Limit), f.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}

	return out, rows.Err()
}

func UpdateTask(ctx context.Context, taskID string, req UpdateTaskRequest) error {
	sets := make([]string, 0, 5)
	args := make([]any, 0, 6)
	add := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if req.Title != nil {
		add("title", strings.TrimSpace(*req.Title))
	}
	if req.Description != nil {
		add("description", *req.Description)
	}
	if req.Points != nil {
		add("points", *req.Points)
	}
	if req.DueDate != nil {
		add("due_date", *req.DueDate)
	}
	if req.IsActive != nil {
		add("is_active", *req.IsActive)
	}

	if len(sets) == 0 {
		return ErrNoFieldsToUpdate
	}

	args = append(args, taskID)
	q := fmt.Sprintf("UPDATE tasks SET %s, updated_at = now() WHERE id = $%d", strings.Join(sets, ", "), len(args))

	ct, err := pool.Exec(ctx, q, args...)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}

	return nil
}

// DeactivateTask is the soft delete; achievements keep their points.
func DeactivateTask(ctx context.Context, taskID string) error {
	ct, err := pool.Exec(ctx, `UPDATE tasks SET is_active = FALSE, updated_at = now() WHERE id = $1`, taskID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}

	return nil
}

const achievementColumns = `
	a.id, a.user_id, a.task_id, a.completed_at, a.verified, a.status, a.proof_url, a.proof_text,
	a.verified_by, a.verified_at, a.points_earned, a.source`

func scanAchievement(row pgx.Row) (models.Achievement, error) {
	var a models.Achievement
	err := row.Scan(
		&a.ID, &a.UserID, &a.TaskID, &a.CompletedAt, &a.Verified, &a.Status, &a.ProofURL, &a.ProofText,
		&a.VerifiedBy, &a.VerifiedAt, &a.PointsEarned, &a.Source,
	)

	return a, err
}

// queryer is satisfied by both the pool and a pgx.Tx.
type queryer interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// insertAchievement copies points_earned from the task in the same
// statement.
func insertAchievement(ctx context.Context, q queryer, a *models.Achievement) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}

	return q.QueryRow(ctx, `
		INSERT INTO achievements (id, user_id, task_id, completed_at, verified, status, proof_url, proof_text,
		                          verified_by, verified_at, points_earned, source)
		SELECT $1::text, $2::text, t.id, $4::timestamptz, $5::boolean, $6::text, $7::text, $8::text,
		       $9::text, $10::timestamptz, t.points, $11::text
		FROM tasks t
		WHERE t.id = $3
		RETURNING points_earned
	`, a.ID, a.UserID, a.TaskID, a.CompletedAt, a.Verified, a.Status, a.ProofURL, a.ProofText,
		a.VerifiedBy, a.VerifiedAt, a.Source,
	).Scan(&a.PointsEarned)
}

func InsertProofAchievement(ctx context.Context, a *models.Achievement) error {
	err := insertAchievement(ctx, pool, a)
	if pgutil.IsUniqueViolation(err, "achievements_proof_once") {
		return ErrAlreadySubmitted
	}

	return err
}

type AchievementFilter struct {
	TeamID string
	UserID string
	TaskID string
	Limit  int
	Offset int
	Order  string
}

// ListAchievements returns one page of achievements, newest first unless
// f.Order is "completed_asc". All verification states are included; readers
// filter on Verified.
func ListAchievements(ctx context.Context, f AchievementFilter) ([]models.Achievement, error) {
	var (
		where []string
		args  []any
	)
	if f.TeamID != "" {
		args = append(args, f.TeamID)
		where = append(where, fmt.Sprintf("t.team_id = $%d", len(args)))
	}
	if f.UserID != "" {
		args = append(args, f.UserID)
		where = append(where, fmt.Sprintf("a.user_id = $%d", len(args)))
	}
	if f.TaskID != "" {
		args = append(args, f.TaskID)
		where = append(where, fmt.Sprintf("a.task_id = $%d", len(args)))
	}
	if len(where) == 0 {
		return nil, errors.New("achievement filter needs a team, user or task")
	}

	args = append(args, normalizeAchievementLimit(f.Limit), f.Offset)

	q := fmt.Sprintf(`
		SELECT %s
		FROM achievements a
		JOIN tasks t ON t.id = a.task_id
		WHERE %s
		ORDER BY %s
		LIMIT $%d OFFSET $%d
	`, achievementColumns, strings.Join(where, " AND "), achievementOrderClause(f.Order), len(args)-1, len(args))

	rows, err := pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Achievement{}
	for rows.Next() {
		a, err := scanAchievement(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}

	return out, rows.Err()
}

// ReviewAchievement moves a pending achievement to verified or rejected.
func ReviewAchievement(ctx context.Context, achievementID, reviewer string, approve bool) (models.Achievement, error) {
	status := models.StatusRejected
	if approve {
		status = models.StatusVerified
	}

	return scanAchievement(pool.QueryRow(ctx, `
		UPDATE achievements a
		   SET status = $1, verified = $2, verified_by = $3, verified_at = now()
		 WHERE a.id = $4 AND a.status = 'pending'
		RETURNING `+achievementColumns,
		status, approve, reviewer, achievementID,
	))
}

func listProgress(ctx context.Context, q queryer, taskID, userID string) ([]models.ProgressEntry, error) {
	rows, err := q.Query(ctx, `
		SELECT id, task_id, user_id, value_added, notes, created_at
		FROM task_progress
		WHERE task_id = $1 AND user_id = $2
		ORDER BY created_at ASC
	`, taskID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.ProgressEntry{}
	for rows.Next() {
		var e models.ProgressEntry
		if err := rows.Scan(&e.ID, &e.TaskID, &e.UserID, &e.ValueAdded, &e.Notes, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}

	return out, rows.Err()
}

func ListProgress(ctx context.Context, taskID, userID string) ([]models.ProgressEntry, error) {
	return listProgress(ctx, pool, taskID, userID)
}

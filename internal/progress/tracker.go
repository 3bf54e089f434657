package progress

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"kyri56xcaesar/athlete-tracker/internal/logger"
	"kyri56xcaesar/athlete-tracker/internal/metrics"
	"kyri56xcaesar/athlete-tracker/internal/models"
)

var (
	ErrTaskNotFound             = errors.New("task not found")
	ErrNotProgressTask          = errors.New("task has no progress target")
	ErrTaskInactive             = errors.New("task is no longer active")
	ErrDuplicateCompletionAward = errors.New("completion already awarded for this task")
)

// Store runs fn inside one transaction that no other Atomically call for
// the same (taskID, userID) can interleave with.
type Store interface {
	Atomically(ctx context.Context, taskID, userID string, fn func(ctx context.Context, tx Tx) error) error
}

// Tx is the view of storage a contribution needs.
type Tx interface {
	Task(ctx context.Context, taskID string) (models.Task, error)
	Entries(ctx context.Context, taskID, userID string) ([]models.ProgressEntry, error)
	InsertEntry(ctx context.Context, e models.ProgressEntry) error
	// InsertCompletion stores a progress award. It returns
	// ErrDuplicateCompletionAward if one already exists for the pair.
	InsertCompletion(ctx context.Context, a *models.Achievement) error
}

type Contribution struct {
	TaskID string
	UserID string
	Value  float64
	Notes  string
}

type Result struct {
	Entry  models.ProgressEntry `json:"entry"`
	Total  float64              `json:"current_progress"`
	Target float64              `json:"target_value"`
	Unit   string               `json:"progress_unit"`
	// Award is set only on the contribution that completed the task.
	Award *models.Achievement `json:"achievement,omitempty"`
}

func (r Result) Completed() bool {
	return IsComplete(r.Total, r.Target)
}

type Tracker struct {
	store  Store
	policy models.VerificationPolicy
	now    func() time.Time
}

func NewTracker(store Store, policy models.VerificationPolicy) *Tracker {
	if policy == nil {
		policy = models.AutoVerify{}
	}

	return &Tracker{store: store, policy: policy, now: time.Now}
}

// Contribute validates and records a contribution, awarding the task's
// points exactly once when the running total first reaches the target.
func (t *Tracker) Contribute(ctx context.Context, c Contribution) (Result, error) {
	var res Result

	if c.Value <= 0 {
		metrics.ProgressRejected("not_positive")
		return res, ValidateContribution(0, c.Value, 0)
	}

	err := t.store.Atomically(ctx, c.TaskID, c.UserID, func(ctx context.Context, tx Tx) error {
		task, err := tx.Task(ctx, c.TaskID)
		if err != nil {
			return err
		}
		if !task.IsProgress() {
			return ErrNotProgressTask
		}
		if !task.IsActive {
			return ErrTaskInactive
		}
		target := *task.TargetValue

		entries, err := tx.Entries(ctx, c.TaskID, c.UserID)
		if err != nil {
			return fmt.Errorf("failed to load progress: %w", err)
		}
		current := CurrentTotal(c.TaskID, c.UserID, entries)

		if err := ValidateContribution(current, c.Value, target); err != nil {
			metrics.ProgressRejected("exceeds_target")
			var r *Rejection
			if errors.As(err, &r) && task.ProgressUnit != "" {
				r.Message += " " + task.ProgressUnit
			}
			return err
		}

		now := t.now().UTC()
		entry := models.ProgressEntry{
			ID:         uuid.NewString(),
			TaskID:     c.TaskID,
			UserID:     c.UserID,
			ValueAdded: c.Value,
			Notes:      c.Notes,
			CreatedAt:  now,
		}
		if err := tx.InsertEntry(ctx, entry); err != nil {
			return fmt.Errorf("failed to insert progress: %w", err)
		}

		res = Result{Entry: entry, Total: current + c.Value, Target: target, Unit: task.ProgressUnit}
		if !Crossed(current, c.Value, target) {
			return nil
		}

		award := &models.Achievement{
			ID:           uuid.NewString(),
			UserID:       c.UserID,
			TaskID:       c.TaskID,
			CompletedAt:  now,
			ProofText:    CompletionProof(res.Total, target, task.ProgressUnit),
			PointsEarned: task.Points,
			Source:       models.SourceProgress,
		}
		t.policy.Apply(award, now)

		if err := tx.InsertCompletion(ctx, award); err != nil {
			if errors.Is(err, ErrDuplicateCompletionAward) {
				metrics.DuplicateCompletionAward()
				logger.Warn("refused second completion award for task %s user %s", c.TaskID, c.UserID)
			}
			return err
		}
		res.Award = award

		return nil
	})
	if err != nil {
		return Result{}, err
	}

	return res, nil
}

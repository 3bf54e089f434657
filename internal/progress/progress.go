// Package progress sums contributions toward cumulative tasks and decides
// when a task is complete.
package progress

import (
	"errors"
	"fmt"

	"kyri56xcaesar/athlete-tracker/internal/models"
	"kyri56xcaesar/athlete-tracker/internal/utils"
)

var (
	ErrNotPositive   = errors.New("must be positive")
	ErrExceedsTarget = errors.New("would exceed target")
)

// Rejection is a refused contribution. Reason is ErrNotPositive or
// ErrExceedsTarget; Message is fit to show the athlete.
type Rejection struct {
	Reason  error
	Message string
}

func (r *Rejection) Error() string {
	return r.Message
}

func (r *Rejection) Unwrap() error {
	return r.Reason
}

// CurrentTotal sums value_added over the entries of (taskID, userID).
func CurrentTotal(taskID, userID string, entries []models.ProgressEntry) float64 {
	mine := utils.Filter(entries, func(e models.ProgressEntry) bool {
		return e.TaskID == taskID && e.UserID == userID
	})

	return utils.Reduce(mine, 0.0, func(sum float64, e models.ProgressEntry) float64 {
		return sum + e.ValueAdded
	})
}

// ValidateContribution accepts add when it is positive and keeps the total
// within target.
func ValidateContribution(current, add, target float64) error {
	if add <= 0 {
		return &Rejection{
			Reason:  ErrNotPositive,
			Message: "Progress value must be positive",
		}
	}
	if current+add > target {
		return &Rejection{
			Reason: ErrExceedsTarget,
			Message: fmt.Sprintf("Adding %s would exceed the target of %s",
				utils.FormatNumber(add), utils.FormatNumber(target)),
		}
	}

	return nil
}

func IsComplete(current, target float64) bool {
	return current >= target
}

// Crossed reports the false to true completion transition caused by add.
func Crossed(before, add, target float64) bool {
	return !IsComplete(before, target) && IsComplete(before+add, target)
}

// CompletionProof is the proof text stored on a progress award.
func CompletionProof(total, target float64, unit string) string {
	return fmt.Sprintf("Completed %s/%s %s", utils.FormatNumber(total), utils.FormatNumber(target), unit)
}

// Remaining is how much can still be added before reaching target.
func Remaining(current, target float64) float64 {
	if current >= target {
		return 0
	}

	return target - current
}

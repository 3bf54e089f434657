package mtask

import (
	"errors"
	"strings"
	"time"

	"kyri56xcaesar/athlete-tracker/internal/models"
	"kyri56xcaesar/athlete-tracker/internal/utils"
)

var (
	ErrInvalidTarget    = errors.New("target value must be greater than 0")
	ErrMissingUnit      = errors.New("progress unit is required (e.g., miles, reps, minutes)")
	ErrInvalidUnit      = errors.New("progress unit may only hold letters, digits, spaces and - / .")
	ErrPartialProgress  = errors.New("target value and progress unit go together")
	ErrEmptyProof       = errors.New("please describe your proof of completion")
	ErrInvalidProofLink = errors.New("please enter a valid URL (including http:// or https://)")
)

type CreateTaskRequest struct {
	TeamID       string     `json:"team_id" form:"team_id" binding:"required,max=64"`
	Title        string     `json:"title" form:"title" binding:"required,min=1,max=120"`
	Description  string     `json:"description" form:"description" binding:"max=2000"`
	Points       int        `json:"points" form:"points" binding:"required,min=1,max=1000"`
	DueDate      *time.Time `json:"due_date" form:"due_date"`
	TargetValue  *float64   `json:"target_value" form:"target_value"`
	ProgressUnit string     `json:"progress_unit" form:"progress_unit" binding:"max=32"`
}

// validate covers the rules binding tags cannot express.
func (r CreateTaskRequest) validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return errors.New("task title is required")
	}
	unit := strings.TrimSpace(r.ProgressUnit)
	switch {
	case r.TargetValue == nil && unit == "":
		return nil
	case r.TargetValue == nil:
		return ErrPartialProgress
	case *r.TargetValue <= 0:
		return ErrInvalidTarget
	case unit == "":
		return ErrMissingUnit
	case !utils.IsAlphanumericPlus(unit, " -/."):
		return ErrInvalidUnit
	}

	return nil
}

func (r CreateTaskRequest) toTask(assignedBy string) models.Task {
	t := models.Task{
		TeamID:      r.TeamID,
		Title:       strings.TrimSpace(r.Title),
		Description: strings.TrimSpace(r.Description),
		Points:      r.Points,
		AssignedBy:  assignedBy,
		DueDate:     r.DueDate,
		IsActive:    true,
	}
	if r.TargetValue != nil {
		t.TargetValue = r.TargetValue
		t.ProgressUnit = strings.TrimSpace(r.ProgressUnit)
	}

	return t
}

// UpdateTaskRequest cannot turn a completion task into a progress task or
// back; existing achievements depend on the kind.
type UpdateTaskRequest struct {
	Title       *string    `json:"title" form:"title" binding:"omitempty,min=1,max=120"`
	Description *string    `json:"description" form:"description" binding:"omitempty,max=2000"`
	Points      *int       `json:"points" form:"points" binding:"omitempty,min=1,max=1000"`
	DueDate     *time.Time `json:"due_date" form:"due_date"`
	IsActive    *bool      `json:"is_active" form:"is_active"`
}

type ProofType string

const (
	ProofText ProofType = "text"
	ProofLink ProofType = "link"
)

type SubmitProofRequest struct {
	Type  ProofType `json:"type" form:"type" binding:"omitempty,oneof=text link"`
	Proof string    `json:"proof" form:"proof" binding:"max=1000"`
}

// achievement validates the proof and builds the row to insert.
func (r SubmitProofRequest) achievement(taskID, userID string) (models.Achievement, error) {
	proof := strings.TrimSpace(r.Proof)
	if proof == "" {
		return models.Achievement{}, ErrEmptyProof
	}

	a := models.Achievement{TaskID: taskID, UserID: userID, Source: models.SourceProof}
	if r.Type == ProofLink {
		if !utils.IsValidURL(proof) {
			return models.Achievement{}, ErrInvalidProofLink
		}
		a.ProofURL = proof
	} else {
		a.ProofText = proof
	}

	return a, nil
}

type ContributeRequest struct {
	Value float64 `json:"value" form:"value"`
	Notes string  `json:"notes" form:"notes" binding:"max=500"`
}

// ProgressView is a caller's standing on a progress task.
type ProgressView struct {
	TaskID    string                 `json:"task_id"`
	Entries   []models.ProgressEntry `json:"entries"`
	Total     float64                `json:"current_progress"`
	Target    float64                `json:"target_value"`
	Unit      string                 `json:"progress_unit"`
	Remaining float64                `json:"remaining"`
	Completed bool                   `json:"completed"`
}

func normalizeLimit(n int) int {
	if n <= 0 {
		return 50
	}
	if n > 200 {
		return 200
	}

	return n
}

// maxAchievementPage is also the default; readers aggregate whole pages.
const maxAchievementPage = 1000

func normalizeAchievementLimit(n int) int {
	if n <= 0 || n > maxAchievementPage {
		return maxAchievementPage
	}

	return n
}

// achievementOrderClause keeps paging stable. Oldest first suits readers that
// walk every page, since new rows only ever land at the end.
func achievementOrderClause(order string) string {
	if order == "completed_asc" {
		return "a.completed_at ASC, a.id ASC"
	}

	return "a.completed_at DESC, a.id DESC"
}

func taskOrderClause(order string) string {
	switch order {
	case "created_asc":
		return "created_at ASC"
	case "due_asc":
		return "due_date ASC NULLS LAST"
	case "points_desc":
		return "points DESC, created_at DESC"
	case "created_desc":
		fallthrough
	default:
		return "created_at DESC"
	}
}

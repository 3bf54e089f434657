package mtask

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"

	auth "kyri56xcaesar/athlete-tracker/internal/authmw"
	"kyri56xcaesar/athlete-tracker/internal/logger"
	"kyri56xcaesar/athlete-tracker/internal/models"
	"kyri56xcaesar/athlete-tracker/internal/progress"
)

func abortDB(c *gin.Context, err error, what string) {
	if errors.Is(err, pgx.ErrNoRows) {
		c.JSON(http.StatusNotFound, gin.H{"error": what + " not found"})
		return
	}
	logger.Error("%s %s: %v", c.Request.Method, c.FullPath(), err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
}

// pageParams reads ?limit= and ?offset=, both non-negative integers.
func pageParams(c *gin.Context, defaultLimit string) (limit, offset int, err error) {
	limit, err = strconv.Atoi(c.DefaultQuery("limit", defaultLimit))
	if err != nil || limit < 0 {
		return 0, 0, errors.New("invalid limit")
	}
	offset, err = strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		return 0, 0, errors.New("invalid offset")
	}

	return limit, offset, nil
}

func handleListTasks(c *gin.Context) {
	teamID := c.Query("teamid")
	if teamID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "teamid required"})
		return
	}

	limit, offset, err := pageParams(c, "50")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	order := c.DefaultQuery("order", "created_desc")

	items, err := ListTasks(c.Request.Context(), ListTasksFilter{
		TeamID:        teamID,
		IncludeClosed: c.Query("all") == "true",
		Limit:         limit,
		Offset:        offset,
		Order:         order,
	})
	if err != nil {
		abortDB(c, err, "tasks")
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": items, "limit": normalizeLimit(limit), "offset": offset, "order": order})
}

func handleGetTask(c *gin.Context) {
	t, err := GetTask(c.Request.Context(), c.Param("taskid"))
	if err != nil {
		abortDB(c, err, "task")
		return
	}

	c.JSON(http.StatusOK, t)
}

func handleTaskCreate(c *gin.Context) {
	var req CreateTaskRequest
	if err := c.ShouldBind(&req); err != nil {
		logger.Debug("failed to bind input: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input, points must be between 1 and 1000"})
		return
	}
	if err := req.validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id := auth.IdentityFrom(c)
	t, err := CreateTask(c.Request.Context(), req.toTask(id.UserID))
	if err != nil {
		abortDB(c, err, "team")
		return
	}

	c.JSON(http.StatusCreated, t)
}

func handleTaskUpdate(c *gin.Context) {
	var req UpdateTaskRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}

	err := UpdateTask(c.Request.Context(), c.Param("taskid"), req)
	if errors.Is(err, ErrNoFieldsToUpdate) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "provide fields to update"})
		return
	}
	if err != nil {
		abortDB(c, err, "task")
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func handleTaskDelete(c *gin.Context) {
	if err := DeactivateTask(c.Request.Context(), c.Param("taskid")); err != nil {
		abortDB(c, err, "task")
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func handleListAchievements(c *gin.Context) {
	f := AchievementFilter{
		TeamID: c.Query("teamid"),
		UserID: c.Query("userid"),
		TaskID: c.Query("taskid"),
	}
	if f.TeamID == "" && f.UserID == "" && f.TaskID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "teamid, userid or taskid required"})
		return
	}
	var err error
	f.Limit, f.Offset, err = pageParams(c, "0")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	f.Order = c.Query("order")

	items, err := ListAchievements(c.Request.Context(), f)
	if err != nil {
		abortDB(c, err, "achievements")
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": items, "limit": normalizeAchievementLimit(f.Limit), "offset": f.Offset})
}

func handleSubmitProof(c *gin.Context) {
	var req SubmitProofRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}

	id := auth.IdentityFrom(c)
	a, err := req.achievement(c.Param("taskid"), id.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := GetTask(c.Request.Context(), a.TaskID)
	if err != nil {
		abortDB(c, err, "task")
		return
	}
	if !task.IsActive {
		c.JSON(http.StatusBadRequest, gin.H{"error": progress.ErrTaskInactive.Error()})
		return
	}
	if task.IsProgress() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "progress tasks are completed by logging progress"})
		return
	}

	now := time.Now().UTC()
	a.CompletedAt = now
	policy.Apply(&a, now)

	err = InsertProofAchievement(c.Request.Context(), &a)
	if errors.Is(err, ErrAlreadySubmitted) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		abortDB(c, err, "task")
		return
	}

	c.JSON(http.StatusCreated, a)
}

type ReviewRequest struct {
	Approve bool `json:"approve"`
}

func handleReview(c *gin.Context) {
	var req ReviewRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}

	id := auth.IdentityFrom(c)
	a, err := ReviewAchievement(c.Request.Context(), c.Param("achievementid"), id.UserID, req.Approve)
	if err != nil {
		abortDB(c, err, "pending achievement")
		return
	}

	c.JSON(http.StatusOK, a)
}

func handleGetProgress(c *gin.Context) {
	id := auth.IdentityFrom(c)
	ctx := c.Request.Context()

	task, err := GetTask(ctx, c.Param("taskid"))
	if err != nil {
		abortDB(c, err, "task")
		return
	}
	if !task.IsProgress() {
		c.JSON(http.StatusBadRequest, gin.H{"error": progress.ErrNotProgressTask.Error()})
		return
	}

	userID := c.DefaultQuery("userid", id.UserID)
	entries, err := ListProgress(ctx, task.ID, userID)
	if err != nil {
		abortDB(c, err, "progress")
		return
	}

	c.JSON(http.StatusOK, progressView(task, userID, entries))
}

func progressView(task models.Task, userID string, entries []models.ProgressEntry) ProgressView {
	total := progress.CurrentTotal(task.ID, userID, entries)
	target := *task.TargetValue

	return ProgressView{
		TaskID:    task.ID,
		Entries:   entries,
		Total:     total,
		Target:    target,
		Unit:      task.ProgressUnit,
		Remaining: progress.Remaining(total, target),
		Completed: progress.IsComplete(total, target),
	}
}

func handleContribute(c *gin.Context) {
	var req ContributeRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}

	id := auth.IdentityFrom(c)
	res, err := tracker.Contribute(c.Request.Context(), progress.Contribution{
		TaskID: c.Param("taskid"),
		UserID: id.UserID,
		Value:  req.Value,
		Notes:  req.Notes,
	})

	var rejected *progress.Rejection
	switch {
	case err == nil:
	case errors.As(err, &rejected):
		c.JSON(http.StatusBadRequest, gin.H{"error": rejected.Message, "reason": rejected.Reason.Error()})
		return
	case errors.Is(err, progress.ErrTaskNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	case errors.Is(err, progress.ErrNotProgressTask), errors.Is(err, progress.ErrTaskInactive):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case errors.Is(err, progress.ErrDuplicateCompletionAward):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	default:
		logger.Error("failed to record progress: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}

	if res.Award != nil {
		logger.Info("user %s completed task %s for %d points", id.UserID, res.Entry.TaskID, res.Award.PointsEarned)
	}
	c.JSON(http.StatusCreated, res)
}

package mteam

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"

	auth "kyri56xcaesar/athlete-tracker/internal/authmw"
	"kyri56xcaesar/athlete-tracker/internal/logger"
	"kyri56xcaesar/athlete-tracker/internal/metrics"
	"kyri56xcaesar/athlete-tracker/internal/models"
	"kyri56xcaesar/athlete-tracker/internal/teamcode"
)

func abortDB(c *gin.Context, err error, what string) {
	if errors.Is(err, pgx.ErrNoRows) {
		c.JSON(http.StatusNotFound, gin.H{"error": what + " not found"})
		return
	}
	logger.Error("%s %s: %v", c.Request.Method, c.FullPath(), err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
}

func handleMe(c *gin.Context) {
	id := auth.IdentityFrom(c)

	u, err := UpsertUser(c.Request.Context(), models.User{
		ID:    id.UserID,
		Email: id.Email,
		Name:  id.Name,
		Role:  id.Role,
	})
	if errors.Is(err, ErrEmailTaken) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		abortDB(c, err, "user")
		return
	}

	c.JSON(http.StatusOK, u)
}

func handleMyTeams(c *gin.Context) {
	id := auth.IdentityFrom(c)

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	teams, err := ListTeamsForUser(c.Request.Context(), id.UserID, limit)
	if err != nil {
		abortDB(c, err, "teams")
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": withCode(teams...), "limit": normalizeLimit(limit)})
}

func handleListTeams(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	order := c.DefaultQuery("order", "created_desc")

	teams, err := ListTeams(c.Request.Context(), c.Query("name"), c.Query("sport"), limit, order)
	if err != nil {
		abortDB(c, err, "teams")
		return
	}

	// codes are handed out by coaches, not by browsing
	c.JSON(http.StatusOK, gin.H{"items": teams, "limit": normalizeLimit(limit), "order": order})
}

func handleGetTeam(c *gin.Context) {
	t, err := GetTeam(c.Request.Context(), c.Param("teamid"))
	if err != nil {
		abortDB(c, err, "team")
		return
	}

	c.JSON(http.StatusOK, t)
}

func handleMembers(c *gin.Context) {
	members, err := ListMembers(c.Request.Context(), c.Param("teamid"))
	if err != nil {
		abortDB(c, err, "team")
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": members})
}

// resolveCode picks the team a code refers to. Collisions resolve to the
// oldest team and are reported.
func resolveCode(code string, teams []models.Team) (models.Team, error) {
	m := teamcode.Lookup(code, teams, teamFields)
	if m.Ambiguous() {
		metrics.TeamCodeCollision()
		logger.Warn("team code %s matches %d teams, joining %s", teamcode.Normalize(code), m.Matches, m.Team.ID)
	}
	if !m.Found() {
		return models.Team{}, m.Err()
	}

	return m.Team, nil
}

func handleJoinByCode(c *gin.Context) {
	var req JoinByCodeRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "please enter a team code"})
		return
	}

	teams, err := teamCandidates(c.Request.Context())
	if err != nil {
		abortDB(c, err, "teams")
		return
	}

	team, err := resolveCode(req.Code, teams)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "invalid team code"})
		return
	}

	join(c, team.ID)
}

func handleJoinByID(c *gin.Context) {
	join(c, c.Param("teamid"))
}

func join(c *gin.Context, teamID string) {
	id := auth.IdentityFrom(c)

	m, err := JoinTeam(c.Request.Context(), teamID, id.UserID)
	switch {
	case errors.Is(err, ErrAlreadyMember), errors.Is(err, ErrTeamFull):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	case err != nil:
		abortDB(c, err, "team")
		return
	}

	logger.Info("user %s joined team %s", id.UserID, teamID)
	c.JSON(http.StatusCreated, m)
}

func handleCreateTeam(c *gin.Context) {
	var req CreateTeamRequest
	if err := c.ShouldBind(&req); err != nil {
		logger.Debug("failed to bind input: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}
	if req.SubscriptionTier != "" && !req.SubscriptionTier.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid subscription tier"})
		return
	}

	id := auth.IdentityFrom(c)
	t, err := CreateTeam(c.Request.Context(), req.toTeam(id.UserID))
	if err != nil {
		abortDB(c, err, "coach")
		return
	}

	c.JSON(http.StatusCreated, withCode(t)[0])
}

// ownedTeam loads the team and checks the caller coaches it. Admins pass.
func ownedTeam(c *gin.Context) (models.Team, bool) {
	t, err := GetTeam(c.Request.Context(), c.Param("teamid"))
	if err != nil {
		abortDB(c, err, "team")
		return models.Team{}, false
	}

	id := auth.IdentityFrom(c)
	if id.Role != models.RoleAdmin && t.CoachID != id.UserID {
		c.JSON(http.StatusForbidden, gin.H{"error": "not the coach of this team"})
		return models.Team{}, false
	}

	return t, true
}

func handleUpdateTeam(c *gin.Context) {
	var req UpdateTeamRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}
	if req.SubscriptionTier != nil && !req.SubscriptionTier.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid subscription tier"})
		return
	}

	t, ok := ownedTeam(c)
	if !ok {
		return
	}

	err := UpdateTeam(c.Request.Context(), t.ID, req)
	if errors.Is(err, ErrNoFieldsToUpdate) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "provide at least one field to update"})
		return
	}
	if err != nil {
		abortDB(c, err, "team")
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func handleTeamCode(c *gin.Context) {
	t, ok := ownedTeam(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{"teamid": t.ID, "code": teamcode.Encode(t.Name, t.ID)})
}

func handleRemoveMember(c *gin.Context) {
	t, ok := ownedTeam(c)
	if !ok {
		return
	}

	if err := RemoveMember(c.Request.Context(), t.ID, c.Param("userid")); err != nil {
		abortDB(c, err, "member")
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func handleDeleteTeam(c *gin.Context) {
	if err := DeleteTeam(c.Request.Context(), c.Param("teamid")); err != nil {
		abortDB(c, err, "team")
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func handleSetRole(c *gin.Context) {
	var req SetRoleRequest
	if err := c.ShouldBind(&req); err != nil || !req.Role.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "role must be athlete, coach or admin"})
		return
	}

	if err := SetUserRole(c.Request.Context(), c.Param("userid"), req.Role); err != nil {
		abortDB(c, err, "user")
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

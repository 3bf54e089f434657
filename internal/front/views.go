package front

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"kyri56xcaesar/athlete-tracker/internal/leaderboard"
	"kyri56xcaesar/athlete-tracker/internal/logger"
	"kyri56xcaesar/athlete-tracker/internal/models"
	"kyri56xcaesar/athlete-tracker/internal/utils"
)

func abortDownstream(c *gin.Context, err error) {
	var de *DownstreamError
	if errors.As(err, &de) && de.Status < http.StatusInternalServerError {
		c.JSON(de.Status, gin.H{"error": de.Msg})
		return
	}

	logger.Error("%s %s: %v", c.Request.Method, c.FullPath(), err)
	c.JSON(http.StatusBadGateway, gin.H{"error": "upstream unavailable"})
}

func handleMe(c *gin.Context) {
	sess := sessionFrom(c)

	u, err := down.Me(c.Request.Context(), sess.AccessToken)
	if err != nil {
		abortDownstream(c, err)
		return
	}

	c.JSON(http.StatusOK, u)
}

func handleMyTeams(c *gin.Context) {
	sess := sessionFrom(c)

	teams, err := down.MyTeams(c.Request.Context(), sess.AccessToken)
	if err != nil {
		abortDownstream(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": teams})
}

func handleJoin(c *gin.Context) {
	var req JoinRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "please enter a team code"})
		return
	}

	sess := sessionFrom(c)
	m, err := down.JoinByCode(c.Request.Context(), sess.AccessToken, req.Code)
	if err != nil {
		abortDownstream(c, err)
		return
	}

	c.JSON(http.StatusCreated, m)
}

// teamData is everything the in-memory aggregations need for one team.
type teamData struct {
	team         models.Team
	members      []models.Member
	tasks        []models.Task
	achievements []models.Achievement
}

func (d teamData) users() []models.User {
	return utils.Map(d.members, func(m models.Member) models.User { return m.User })
}

func loadTeam(ctx context.Context, bearer, teamID string) (teamData, error) {
	var d teamData

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		d.team, err = down.Team(ctx, bearer, teamID)
		return err
	})
	g.Go(func() (err error) {
		d.members, err = down.Members(ctx, bearer, teamID)
		return err
	})
	g.Go(func() (err error) {
		d.tasks, err = down.TeamTasks(ctx, bearer, teamID)
		return err
	})
	g.Go(func() (err error) {
		d.achievements, err = down.Achievements(ctx, bearer, url.Values{"teamid": {teamID}})
		return err
	})

	return d, g.Wait()
}

func handleLeaderboard(c *gin.Context) {
	sess := sessionFrom(c)
	teamID := c.Param("teamid")

	d, err := loadTeam(c.Request.Context(), sess.AccessToken, teamID)
	if err != nil {
		abortDownstream(c, err)
		return
	}

	// the task service already scopes achievements to the team
	entries := leaderboard.Aggregate(leaderboard.Input{
		Achievements: d.achievements,
		Users:        d.users(),
		Badges:       memo.Count,
	})

	c.JSON(http.StatusOK, LeaderboardView{TeamID: teamID, Entries: entries})
}

func handleStats(c *gin.Context) {
	sess := sessionFrom(c)

	d, err := loadTeam(c.Request.Context(), sess.AccessToken, c.Param("teamid"))
	if err != nil {
		abortDownstream(c, err)
		return
	}

	c.JSON(http.StatusOK, StatsView{
		Team:  d.team,
		Stats: leaderboard.Summarize(d.members, d.tasks, d.achievements, memo.Count),
	})
}

// handleProfile shows a user's badges. With ?teamid= the totals and rank
// are limited to that team.
func handleProfile(c *gin.Context) {
	sess := sessionFrom(c)
	ctx := c.Request.Context()
	userID := c.Param("userid")
	if userID == "" || userID == "me" {
		userID = sess.UserID
	}
	teamID := c.Query("teamid")

	q := url.Values{"userid": {userID}}
	if teamID != "" {
		q = url.Values{"teamid": {teamID}}
	}
	achievements, err := down.Achievements(ctx, sess.AccessToken, q)
	if err != nil {
		abortDownstream(c, err)
		return
	}

	c.JSON(http.StatusOK, profileView(userID, teamID, achievements))
}

// profileView ranks userID among everyone in achievements, which the task
// service has already scoped to teamID when one is given.
func profileView(userID, teamID string, achievements []models.Achievement) ProfileView {
	view := ProfileView{
		UserID:       userID,
		TeamID:       teamID,
		Achievements: []models.Achievement{},
	}

	for _, e := range leaderboard.Aggregate(leaderboard.Input{Achievements: achievements}) {
		if e.UserID != userID {
			continue
		}
		view.Points, view.Count = e.Points, e.Achievements
		if teamID != "" {
			view.Rank = e.Rank
		}
	}

	for _, a := range achievements {
		if a.UserID == userID {
			view.Achievements = append(view.Achievements, a)
		}
	}

	view.Badges = memo.Evaluate(userID, view.Count, view.Points)

	return view
}

func handleSubmitProof(c *gin.Context) {
	var req ProofRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "please describe your proof of completion"})
		return
	}

	sess := sessionFrom(c)
	a, err := down.SubmitProof(c.Request.Context(), sess.AccessToken, c.Param("taskid"), req)
	if err != nil {
		abortDownstream(c, err)
		return
	}
	memo.Invalidate(sess.UserID)

	c.JSON(http.StatusCreated, a)
}

func handleContribute(c *gin.Context) {
	var req ContributeRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}

	sess := sessionFrom(c)
	res, err := down.Contribute(c.Request.Context(), sess.AccessToken, c.Param("taskid"), req)
	if err != nil {
		abortDownstream(c, err)
		return
	}
	if res.Award != nil {
		memo.Invalidate(sess.UserID)
	}

	c.JSON(http.StatusCreated, res)
}

package leaderboard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kyri56xcaesar/athlete-tracker/internal/models"
)

var t0 = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

func ach(user, task string, points int, verified bool, at time.Duration) models.Achievement {
	return models.Achievement{
		UserID:       user,
		TaskID:       task,
		PointsEarned: points,
		Verified:     verified,
		CompletedAt:  t0.Add(at),
	}
}

func TestAggregateCountsOnlyVerified(t *testing.T) {
	in := Input{
		Achievements: []models.Achievement{
			ach("A", "t1", 10, true, 0),
			ach("A", "t2", 5, false, time.Minute),
			ach("B", "t1", 20, true, 2*time.Minute),
		},
		Users: []models.User{{ID: "A", Name: "Alex"}, {ID: "B", Name: "Bo"}},
	}

	got := Aggregate(in)

	require.Len(t, got, 2)
	assert.Equal(t, "B", got[0].UserID)
	assert.Equal(t, 20, got[0].Points)
	assert.Equal(t, 1, got[0].Rank)
	assert.Equal(t, "A", got[1].UserID)
	assert.Equal(t, 10, got[1].Points)
	assert.Equal(t, 1, got[1].Achievements)
	assert.Equal(t, 2, got[1].Rank)
	require.NotNil(t, got[1].User)
	assert.Equal(t, "Alex", got[1].User.Name)
}

func TestAggregateIsIdempotent(t *testing.T) {
	in := Input{
		Achievements: []models.Achievement{
			ach("C", "t1", 30, true, 3*time.Minute),
			ach("A", "t1", 30, true, time.Minute),
			ach("B", "t2", 50, true, 0),
			ach("A", "t2", 5, false, 0),
		},
	}
	before := append([]models.Achievement(nil), in.Achievements...)

	first := Aggregate(in)
	second := Aggregate(in)

	assert.Equal(t, first, second)
	assert.Equal(t, before, in.Achievements)
}

func TestAggregateOmitsUsersWithoutVerifiedAchievements(t *testing.T) {
	in := Input{
		Achievements: []models.Achievement{
			ach("A", "t1", 10, true, 0),
			ach("B", "t1", 10, false, 0),
		},
		Users: []models.User{{ID: "A"}, {ID: "B"}, {ID: "C"}},
	}

	got := Aggregate(in)

	require.Len(t, got, 1)
	assert.Equal(t, "A", got[0].UserID)
}

func TestAggregateKeepsUnresolvedUser(t *testing.T) {
	got := Aggregate(Input{Achievements: []models.Achievement{ach("ghost", "t1", 7, true, 0)}})

	require.Len(t, got, 1)
	assert.Nil(t, got[0].User)
	assert.Equal(t, 7, got[0].Points)
}

func TestAggregateRestrictsToTeam(t *testing.T) {
	in := Input{
		TeamID: "team-1",
		Tasks: []models.Task{
			{ID: "t1", TeamID: "team-1"},
			{ID: "t2", TeamID: "team-2"},
		},
		Achievements: []models.Achievement{
			ach("A", "t1", 10, true, 0),
			ach("A", "t2", 100, true, 0),
			ach("B", "t2", 100, true, 0),
			ach("C", "unknown", 100, true, 0),
		},
	}

	got := Aggregate(in)

	require.Len(t, got, 1)
	assert.Equal(t, "A", got[0].UserID)
	assert.Equal(t, 10, got[0].Points)
}

func TestAggregateTieBreak(t *testing.T) {
	in := Input{
		Achievements: []models.Achievement{
			ach("late", "t1", 20, true, 10*time.Minute),
			ach("early", "t1", 10, true, time.Minute),
			ach("early", "t2", 10, true, 20*time.Minute),
			ach("zed", "t1", 20, true, 0),
			ach("amy", "t1", 20, true, 0),
		},
	}

	got := Aggregate(in)

	ids := make([]string, len(got))
	for i, e := range got {
		ids[i] = e.UserID
		assert.Equal(t, i+1, e.Rank)
	}
	assert.Equal(t, []string{"amy", "zed", "early", "late"}, ids)
}

func TestAggregateBadgeCounter(t *testing.T) {
	in := Input{
		Achievements: []models.Achievement{ach("A", "t1", 600, true, 0), ach("A", "t2", 1, true, 0)},
		Badges: func(count, points int) int {
			assert.Equal(t, 2, count)
			assert.Equal(t, 601, points)
			return 3
		},
	}

	got := Aggregate(in)

	require.Len(t, got, 1)
	assert.Equal(t, 3, got[0].BadgeCount)
}

func TestAggregateEmpty(t *testing.T) {
	assert.Empty(t, Aggregate(Input{}))
}

func TestSummarize(t *testing.T) {
	members := []models.Member{
		{User: models.User{ID: "coach"}, TeamRole: models.RoleCoach},
		{User: models.User{ID: "A"}, TeamRole: models.RoleAthlete},
		{User: models.User{ID: "B"}, TeamRole: models.RoleAthlete},
	}
	tasks := []models.Task{
		{ID: "t1", TeamID: "x", IsActive: true},
		{ID: "t2", TeamID: "x", IsActive: true},
		{ID: "t3", TeamID: "x", IsActive: false},
	}
	achievements := []models.Achievement{
		ach("A", "t1", 10, true, 0),
		ach("A", "t2", 10, true, 0),
		ach("B", "t1", 10, false, 0),
		ach("B", "other", 10, true, 0),
		ach("coach", "t1", 10, true, 0),
	}

	s := Summarize(members, tasks, achievements, func(count, _ int) int { return count })

	assert.Equal(t, 2, s.ActiveAthletes)
	assert.Equal(t, 2, s.ActiveTasks)
	assert.Equal(t, 3, s.CompletedAchievements)
	assert.Equal(t, 2, s.TotalBadges)
}

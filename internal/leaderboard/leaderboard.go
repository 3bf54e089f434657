// Package leaderboard reduces achievement rows into a ranked per-user table.
//
// Only verified achievements count. Ranking is by points descending; equal
// points are ordered by whoever reached their first qualifying achievement
// earlier, then by user id. Ranks are positional, tied users do not share a
// rank.
package leaderboard

import (
	"sort"
	"time"

	"kyri56xcaesar/athlete-tracker/internal/models"
)

// BadgeCounter returns how many badges a user with the given totals holds.
type BadgeCounter func(achievements, points int) int

type Input struct {
	// TeamID restricts the table to achievements on tasks of this team.
	// Empty means no restriction.
	TeamID       string
	Tasks        []models.Task
	Achievements []models.Achievement
	Users        []models.User
	Badges       BadgeCounter
}

type Entry struct {
	UserID       string       `json:"user_id"`
	User         *models.User `json:"user,omitempty"`
	Points       int          `json:"total_points"`
	Achievements int          `json:"achievements_count"`
	BadgeCount   int          `json:"badges_count"`
	Rank         int          `json:"rank"`

	firstAt time.Time
}

// Aggregate builds the leaderboard. Inputs are not modified.
func Aggregate(in Input) []Entry {
	var teamTasks map[string]struct{}
	if in.TeamID != "" {
		teamTasks = make(map[string]struct{}, len(in.Tasks))
		for _, t := range in.Tasks {
			if t.TeamID == in.TeamID {
				teamTasks[t.ID] = struct{}{}
			}
		}
	}

	byUser := map[string]*Entry{}
	order := []string{}
	for _, a := range in.Achievements {
		if !a.Verified {
			continue
		}
		if teamTasks != nil {
			if _, ok := teamTasks[a.TaskID]; !ok {
				continue
			}
		}

		e, ok := byUser[a.UserID]
		if !ok {
			e = &Entry{UserID: a.UserID, firstAt: a.CompletedAt}
			byUser[a.UserID] = e
			order = append(order, a.UserID)
		}
		e.Points += a.PointsEarned
		e.Achievements++
		if a.CompletedAt.Before(e.firstAt) {
			e.firstAt = a.CompletedAt
		}
	}

	users := make(map[string]models.User, len(in.Users))
	for _, u := range in.Users {
		users[u.ID] = u
	}

	entries := make([]Entry, 0, len(order))
	for _, id := range order {
		e := *byUser[id]
		if u, ok := users[id]; ok {
			e.User = &u
		}
		if in.Badges != nil {
			e.BadgeCount = in.Badges(e.Achievements, e.Points)
		}
		entries = append(entries, e)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if !a.firstAt.Equal(b.firstAt) {
			return a.firstAt.Before(b.firstAt)
		}
		return a.UserID < b.UserID
	})

	for i := range entries {
		entries[i].Rank = i + 1
	}

	return entries
}

// Stats is the team overview shown above the leaderboard.
type Stats struct {
	ActiveAthletes        int `json:"active_athletes"`
	ActiveTasks           int `json:"active_tasks"`
	CompletedAchievements int `json:"completed_achievements"`
	TotalBadges           int `json:"total_badges"`
}

// Summarize computes team stats. Athletes are members with the athlete role,
// achievements are the verified ones on the given tasks, and badges are
// summed over the athletes' leaderboard entries.
func Summarize(members []models.Member, tasks []models.Task, achievements []models.Achievement, badges BadgeCounter) Stats {
	var s Stats

	athletes := map[string]struct{}{}
	for _, m := range members {
		if m.TeamRole == models.RoleAthlete {
			athletes[m.ID] = struct{}{}
		}
	}
	s.ActiveAthletes = len(athletes)

	taskIDs := map[string]struct{}{}
	for _, t := range tasks {
		taskIDs[t.ID] = struct{}{}
		if t.IsActive {
			s.ActiveTasks++
		}
	}

	for _, a := range achievements {
		if !a.Verified {
			continue
		}
		if _, ok := taskIDs[a.TaskID]; ok {
			s.CompletedAchievements++
		}
	}

	if badges == nil {
		return s
	}

	rows := Aggregate(Input{Tasks: tasks, Achievements: onTasks(achievements, taskIDs), Badges: badges})
	for _, e := range rows {
		if _, ok := athletes[e.UserID]; ok {
			s.TotalBadges += e.BadgeCount
		}
	}

	return s
}

func onTasks(achievements []models.Achievement, taskIDs map[string]struct{}) []models.Achievement {
	out := make([]models.Achievement, 0, len(achievements))
	for _, a := range achievements {
		if _, ok := taskIDs[a.TaskID]; ok {
			out = append(out, a)
		}
	}

	return out
}

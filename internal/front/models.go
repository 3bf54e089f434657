package front

import (
	"errors"
	"strings"

	"kyri56xcaesar/athlete-tracker/internal/badges"
	"kyri56xcaesar/athlete-tracker/internal/leaderboard"
	"kyri56xcaesar/athlete-tracker/internal/models"
)

type LoginRequest struct {
	Email    string `json:"email" form:"email" binding:"required,email"`
	Password string `json:"password" form:"password" binding:"required"`
}

type RegisterRequest struct {
	Email      string      `json:"email" form:"email" binding:"required,email"`
	Password   string      `json:"password" form:"password" binding:"required,min=6"`
	RepeatPass string      `json:"repeat_password" form:"repeat-password"`
	Name       string      `json:"name" form:"name" binding:"required,max=100"`
	Role       models.Role `json:"role" form:"role"`
}

func (r RegisterRequest) validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return errors.New("please enter your name")
	}
	if r.RepeatPass != "" && r.Password != r.RepeatPass {
		return errors.New("passwords don't match")
	}
	if r.Role != "" && r.Role != models.RoleAthlete && r.Role != models.RoleCoach {
		return errors.New("role must be athlete or coach")
	}

	return nil
}

func (r RegisterRequest) role() models.Role {
	if r.Role == "" {
		return models.RoleAthlete
	}

	return r.Role
}

type JoinRequest struct {
	Code string `json:"code" form:"code" binding:"required,min=1,max=16"`
}

type ProofRequest struct {
	Type  string `json:"type" form:"type"`
	Proof string `json:"proof" form:"proof" binding:"required"`
}

type ContributeRequest struct {
	Value float64 `json:"value" form:"value"`
	Notes string  `json:"notes" form:"notes"`
}

type RoleRequest struct {
	Role models.Role `json:"role" form:"role" binding:"required"`
}

type LeaderboardView struct {
	TeamID  string              `json:"team_id"`
	Entries []leaderboard.Entry `json:"entries"`
}

type StatsView struct {
	Team models.Team `json:"team"`
	leaderboard.Stats
}

// ProfileView is one athlete's standing. Rank is set only when the profile
// is scoped to a team.
type ProfileView struct {
	UserID       string               `json:"user_id"`
	TeamID       string               `json:"team_id,omitempty"`
	Points       int                  `json:"total_points"`
	Count        int                  `json:"achievements_count"`
	Rank         int                  `json:"rank,omitempty"`
	Badges       []badges.Badge       `json:"badges"`
	Achievements []models.Achievement `json:"achievements"`
}

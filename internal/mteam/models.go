package mteam

import (
	"strings"

	"kyri56xcaesar/athlete-tracker/internal/models"
	"kyri56xcaesar/athlete-tracker/internal/teamcode"
)

type CreateTeamRequest struct {
	Name             string                  `json:"name" form:"name" binding:"required,min=2,max=64"`
	Sport            string                  `json:"sport" form:"sport" binding:"required,max=64"`
	Description      string                  `json:"description" form:"description" binding:"max=500"`
	LogoURL          string                  `json:"logo_url" form:"logo_url" binding:"omitempty,url"`
	SubscriptionTier models.SubscriptionTier `json:"subscription_tier" form:"subscription_tier"`
	MaxAthletes      int                     `json:"max_athletes" form:"max_athletes" binding:"omitempty,min=1,max=1000"`
}

// toTeam fills the tier defaults.
func (r CreateTeamRequest) toTeam(coachID string) models.Team {
	tier := r.SubscriptionTier
	if tier == "" {
		tier = models.TierFree
	}
	limit := r.MaxAthletes
	if limit == 0 {
		limit = tier.MaxAthletes()
	}

	return models.Team{
		Name:             strings.TrimSpace(r.Name),
		Sport:            strings.TrimSpace(r.Sport),
		Description:      r.Description,
		LogoURL:          r.LogoURL,
		CoachID:          coachID,
		SubscriptionTier: tier,
		MaxAthletes:      limit,
	}
}

type UpdateTeamRequest struct {
	Name             *string                  `json:"name" form:"name" binding:"omitempty,min=2,max=64"`
	Sport            *string                  `json:"sport" form:"sport" binding:"omitempty,max=64"`
	Description      *string                  `json:"description" form:"description" binding:"omitempty,max=500"`
	LogoURL          *string                  `json:"logo_url" form:"logo_url" binding:"omitempty"`
	SubscriptionTier *models.SubscriptionTier `json:"subscription_tier" form:"subscription_tier"`
	MaxAthletes      *int                     `json:"max_athletes" form:"max_athletes" binding:"omitempty,min=1,max=1000"`
}

type JoinByCodeRequest struct {
	Code string `json:"code" form:"code" binding:"required,min=1,max=16"`
}

type SetRoleRequest struct {
	Role models.Role `json:"role" binding:"required"`
}

// withCode sets the derived join code on teams about to be returned.
func withCode(teams ...models.Team) []models.Team {
	for i := range teams {
		teams[i].Code = teamcode.Encode(teams[i].Name, teams[i].ID)
	}

	return teams
}

func teamFields(t models.Team) (string, string) {
	return t.Name, t.ID
}

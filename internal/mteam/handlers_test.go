package mteam

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auth "kyri56xcaesar/athlete-tracker/internal/authmw"
	"kyri56xcaesar/athlete-tracker/internal/models"
	"kyri56xcaesar/athlete-tracker/internal/teamcode"
)

// testRouter stands in for the auth middleware by planting an identity.
func testRouter(role models.Role) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(auth.KeyUserID, "user-1")
		c.Set(auth.KeyRole, string(role))
		c.Next()
	})
	r.POST("/join", handleJoinByCode)
	r.POST("/teams", handleCreateTeam)
	r.PUT("/teams/:teamid", handleUpdateTeam)
	r.PUT("/users/:userid/role", handleSetRole)

	return r
}

func send(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	return w
}

func TestHandlersRejectBadInput(t *testing.T) {
	r := testRouter(models.RoleCoach)

	tests := []struct {
		name, method, path, body string
	}{
		{"join without code", http.MethodPost, "/join", `{}`},
		{"join empty code", http.MethodPost, "/join", `{"code":""}`},
		{"team without sport", http.MethodPost, "/teams", `{"name":"Warriors"}`},
		{"team name too short", http.MethodPost, "/teams", `{"name":"W","sport":"rugby"}`},
		{"team bad tier", http.MethodPost, "/teams", `{"name":"Warriors","sport":"rugby","subscription_tier":"gold"}`},
		{"team bad cap", http.MethodPost, "/teams", `{"name":"Warriors","sport":"rugby","max_athletes":0.5}`},
		{"update bad tier", http.MethodPut, "/teams/t1", `{"subscription_tier":"gold"}`},
		{"role unknown", http.MethodPut, "/users/u1/role", `{"role":"owner"}`},
		{"role missing", http.MethodPut, "/users/u1/role", `{}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := send(r, tt.method, tt.path, tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), `"error"`)
		})
	}
}

func TestResolveCode(t *testing.T) {
	saints := models.Team{ID: "abcd1234", Name: "Saints"}
	lions := models.Team{ID: "abcdXXXX", Name: "Sai Lions"}
	warriors := models.Team{ID: "w1234567", Name: "Warriors"}

	got, err := resolveCode("warw123", []models.Team{saints, warriors})
	require.NoError(t, err)
	assert.Equal(t, warriors.ID, got.ID)

	got, err = resolveCode("SAIABCD", []models.Team{saints, lions})
	require.NoError(t, err)
	assert.Equal(t, saints.ID, got.ID)

	_, err = resolveCode("NOPE000", []models.Team{saints})
	assert.ErrorIs(t, err, teamcode.ErrTeamCodeNotFound)
}

func TestCreateTeamDefaults(t *testing.T) {
	team := CreateTeamRequest{Name: "  Warriors ", Sport: "rugby"}.toTeam("coach-1")

	assert.Equal(t, "Warriors", team.Name)
	assert.Equal(t, "coach-1", team.CoachID)
	assert.Equal(t, models.TierFree, team.SubscriptionTier)
	assert.Equal(t, 10, team.MaxAthletes)

	premium := CreateTeamRequest{Name: "Sharks", Sport: "swim", SubscriptionTier: models.TierPremium}.toTeam("c")
	assert.Equal(t, 100, premium.MaxAthletes)

	custom := CreateTeamRequest{Name: "Sharks", Sport: "swim", MaxAthletes: 12}.toTeam("c")
	assert.Equal(t, 12, custom.MaxAthletes)
}

func TestWithCode(t *testing.T) {
	teams := withCode(models.Team{ID: "w1234567", Name: "Warriors"}, models.Team{ID: "1", Name: "AB"})

	assert.Equal(t, "WARW123", teams[0].Code)
	assert.Equal(t, "AB1", teams[1].Code)
}

func TestQueryHelpers(t *testing.T) {
	assert.Equal(t, "t.created_at DESC", orderClause(""))
	assert.Equal(t, "t.name ASC", orderClause("name_asc"))
	assert.Equal(t, "t.created_at ASC", orderClause("created_asc"))
	assert.Equal(t, "t.created_at DESC", orderClause("; drop table teams"))

	assert.Equal(t, 50, normalizeLimit(0))
	assert.Equal(t, 200, normalizeLimit(1000))
	assert.Equal(t, 20, normalizeLimit(20))
}

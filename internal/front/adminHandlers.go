package front

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"kyri56xcaesar/athlete-tracker/internal/logger"
	"kyri56xcaesar/athlete-tracker/internal/models"
)

func requireAdmin(c *gin.Context) {
	if models.Role(sessionFrom(c).Role) != models.RoleAdmin {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient role"})
		return
	}
	c.Next()
}

func handleAdminTeams(c *gin.Context) {
	sess := sessionFrom(c)

	teams, err := down.AdminTeams(c.Request.Context(), sess.AccessToken)
	if err != nil {
		abortDownstream(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": teams})
}

// handleAdminSetUserRole changes the role in Keycloak first, then mirrors it
// into the team service's users table.
func handleAdminSetUserRole(c *gin.Context) {
	ctx := c.Request.Context()
	userID := c.Param("id")

	var req RoleRequest
	if err := c.ShouldBind(&req); err != nil || !req.Role.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "role must be athlete, coach or admin"})
		return
	}

	if err := kc.SetUserRole(ctx, userID, req.Role); err != nil {
		logger.Error("failed to set keycloak role of %s: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update roles"})
		return
	}

	sess := sessionFrom(c)
	if err := down.SetRole(ctx, sess.AccessToken, userID, req.Role); err != nil {
		abortDownstream(c, err)
		return
	}

	logger.Info("admin %s set role of %s to %s", sess.UserID, userID, req.Role)
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"userId": userID,
		"role":   req.Role,
	})
}

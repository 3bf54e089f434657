package front

import (
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
)

// maxRelayBody bounds what the gateway reads from a browser before forwarding.
const maxRelayBody = 1 << 20

// relay forwards the request body to the address target builds and answers
// with whatever the service answered. The services enforce roles and
// ownership from the forwarded token.
func relay(method string, target func(c *gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body []byte
		if method != http.MethodGet && method != http.MethodDelete {
			b, err := io.ReadAll(io.LimitReader(c.Request.Body, maxRelayBody))
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
				return
			}
			body = b
		}

		sess := sessionFrom(c)
		status, out, err := down.Relay(c.Request.Context(), method, target(c), sess.AccessToken, body)
		if err != nil {
			abortDownstream(c, err)
			return
		}

		c.Data(status, "application/json; charset=utf-8", out)
	}
}

// passQuery copies the named query parameters, when present.
func passQuery(c *gin.Context, names ...string) url.Values {
	q := url.Values{}
	for _, n := range names {
		if v, ok := c.GetQuery(n); ok {
			q.Set(n, v)
		}
	}

	return q
}

func teamsURL(path ...string) func(c *gin.Context) string {
	return func(c *gin.Context) string {
		return down.TeamBase + expand(c, path)
	}
}

func tasksURL(path ...string) func(c *gin.Context) string {
	return func(c *gin.Context) string {
		return down.TaskBase + expand(c, path)
	}
}

// expand joins path segments, replacing ":name" segments with the escaped
// route parameter of the same name.
func expand(c *gin.Context, path []string) string {
	segs := make([]string, len(path))
	for i, seg := range path {
		if strings.HasPrefix(seg, ":") {
			seg = url.PathEscape(c.Param(seg[1:]))
		}
		segs[i] = seg
	}

	return "/" + strings.Join(segs, "/")
}

// browseTeams lists teams for the join page. Codes are not part of it.
func browseTeams(c *gin.Context) string {
	return down.TeamBase + "/auth/teams?" + passQuery(c, "name", "sport", "limit", "order").Encode()
}

// listTeamTasks is the team's task list, active tasks unless ?all=true.
func listTeamTasks(c *gin.Context) string {
	q := passQuery(c, "all", "limit", "offset", "order")
	q.Set("teamid", c.Param("teamid"))

	return down.TaskBase + "/auth/tasks?" + q.Encode()
}

func taskProgress(c *gin.Context) string {
	u := tasksURL("auth", "tasks", ":taskid", "progress")(c)
	if q := passQuery(c, "userid"); len(q) > 0 {
		u += "?" + q.Encode()
	}

	return u
}

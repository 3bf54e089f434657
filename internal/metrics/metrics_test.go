package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonitorCountsByRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	Init()
	Init()

	r := gin.New()
	r.Use(Monitor("test"))
	r.GET("/teams/:teamid", func(c *gin.Context) { c.Status(http.StatusForbidden) })
	r.GET("/metrics", Handler())

	for _, id := range []string{"a", "b"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/teams/"+id, nil))
		require.Equal(t, http.StatusForbidden, w.Code)
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(httpRequestsTotal.WithLabelValues("test", "/teams/:teamid", "GET", "403")))
	assert.Equal(t, 2.0, testutil.ToFloat64(authRejections.WithLabelValues("test", "403_forbidden")))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http_requests_total")
}

func TestDomainCounters(t *testing.T) {
	before := testutil.ToFloat64(teamCodeCollisions)
	TeamCodeCollision()
	assert.Equal(t, before+1, testutil.ToFloat64(teamCodeCollisions))

	before = testutil.ToFloat64(duplicateCompletionAwards)
	DuplicateCompletionAward()
	assert.Equal(t, before+1, testutil.ToFloat64(duplicateCompletionAwards))

	before = testutil.ToFloat64(progressRejections.WithLabelValues("exceeds_target"))
	ProgressRejected("exceeds_target")
	assert.Equal(t, before+1, testutil.ToFloat64(progressRejections.WithLabelValues("exceeds_target")))
}

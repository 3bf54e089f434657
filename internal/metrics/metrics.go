// Package metrics exposes Prometheus counters for the services: request
// totals and latency, plus the domain events worth alerting on.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"service", "path", "method", "status"},
	)
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "path", "method"},
	)
	authRejections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_rejections_total",
			Help: "Total number of unauthorized or forbidden requests",
		},
		[]string{"service", "reason"},
	)

	teamCodeCollisions = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "team_code_collisions_total",
			Help: "Join codes that matched more than one team",
		},
	)
	duplicateCompletionAwards = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "duplicate_completion_award_total",
			Help: "Completion awards refused because one already existed",
		},
	)
	progressRejections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "progress_rejections_total",
			Help: "Progress contributions refused by validation",
		},
		[]string{"reason"},
	)

	once sync.Once
)

// Init registers the collectors with the default registry. Safe to call
// more than once.
func Init() {
	once.Do(func() {
		prometheus.MustRegister(
			httpRequestsTotal,
			httpRequestDuration,
			authRejections,
			teamCodeCollisions,
			duplicateCompletionAwards,
			progressRejections,
		)
	})
}

// Monitor records every request under the route template, so ids in paths
// do not explode label cardinality.
func Monitor(service string) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := c.Writer.Status()

		httpRequestsTotal.WithLabelValues(service, path, c.Request.Method, strconv.Itoa(status)).Inc()
		httpRequestDuration.WithLabelValues(service, path, c.Request.Method).Observe(time.Since(start).Seconds())

		switch status {
		case http.StatusUnauthorized:
			authRejections.WithLabelValues(service, "401_unauthorized").Inc()
		case http.StatusForbidden:
			authRejections.WithLabelValues(service, "403_forbidden").Inc()
		}
	}
}

// Handler serves the default registry.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}

func TeamCodeCollision() {
	teamCodeCollisions.Inc()
}

func DuplicateCompletionAward() {
	duplicateCompletionAwards.Inc()
}

func ProgressRejected(reason string) {
	progressRejections.WithLabelValues(reason).Inc()
}

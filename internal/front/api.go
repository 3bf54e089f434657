package front

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	auth "kyri56xcaesar/athlete-tracker/internal/authmw"
	"kyri56xcaesar/athlete-tracker/internal/badges"
	"kyri56xcaesar/athlete-tracker/internal/limiter"
	"kyri56xcaesar/athlete-tracker/internal/logger"
	"kyri56xcaesar/athlete-tracker/internal/metrics"
	"kyri56xcaesar/athlete-tracker/internal/session"
	"kyri56xcaesar/athlete-tracker/internal/utils"
)

const (
	apiVersion  = "/api/v1"
	serviceName = "gateway"
)

var (
	config   Config
	engine   *gin.Engine
	kc       Authenticator
	verifier TokenVerifier
	sessions *session.Store
	down     *Downstream
	memo     *badges.Memo
)

func setCors() {
	corsconfig := cors.DefaultConfig()
	corsconfig.AllowOrigins = config.AllowedOrigins
	corsconfig.AllowMethods = config.AllowedMethods
	corsconfig.AllowHeaders = config.AllowedHeaders
	// the session cookie needs credentials, which cors forbids with "*"
	corsconfig.AllowCredentials = !utils.Contains(config.AllowedOrigins, "*")
	engine.Use(cors.New(corsconfig))
}

func setRoutes(logins *limiter.Limiter) {
	root := engine.Group("/")
	{
		root.GET("/healthz", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "alive", "sessions": sessions.Len()})
		})
		root.GET("/metrics", metrics.Handler())
	}

	apiV1 := engine.Group(apiVersion)
	{
		limited := logins.Middleware(limiter.ByClientIP)
		apiV1.POST("/login", limited, handleLogin)
		apiV1.POST("/register", limited, handleRegister)
	}

	withSession := apiV1.Group("/")
	withSession.Use(requireSession)
	{
		withSession.POST("/logout", handleLogout)
		withSession.POST("/refresh", handleRefresh)
	}

	verified := apiV1.Group("/authenticated")
	verified.Use(requireSession)
	{
		verified.GET("/me", handleMe)
		verified.GET("/teams", handleMyTeams)
		verified.GET("/teams/browse", relay(http.MethodGet, browseTeams))
		verified.POST("/teams", relay(http.MethodPost, teamsURL("coach", "teams")))
		verified.POST("/teams/join", handleJoin)
		verified.POST("/teams/:teamid/join", relay(http.MethodPost, teamsURL("auth", "teams", ":teamid", "join")))
		verified.PUT("/teams/:teamid", relay(http.MethodPut, teamsURL("coach", "teams", ":teamid")))
		verified.GET("/teams/:teamid/code", relay(http.MethodGet, teamsURL("coach", "teams", ":teamid", "code")))
		verified.GET("/teams/:teamid/members", relay(http.MethodGet, teamsURL("auth", "teams", ":teamid", "members")))
		verified.DELETE("/teams/:teamid/members/:userid", relay(http.MethodDelete, teamsURL("coach", "teams", ":teamid", "members", ":userid")))
		verified.GET("/teams/:teamid/tasks", relay(http.MethodGet, listTeamTasks))
		verified.GET("/teams/:teamid/leaderboard", handleLeaderboard)
		verified.GET("/teams/:teamid/stats", handleStats)
		verified.GET("/profile", handleProfile)
		verified.GET("/profile/:userid", handleProfile)
		verified.POST("/tasks", relay(http.MethodPost, tasksURL("coach", "tasks")))
		verified.PUT("/tasks/:taskid", relay(http.MethodPut, tasksURL("coach", "tasks", ":taskid")))
		verified.DELETE("/tasks/:taskid", relay(http.MethodDelete, tasksURL("coach", "tasks", ":taskid")))
		verified.POST("/tasks/:taskid/proof", handleSubmitProof)
		verified.GET("/tasks/:taskid/progress", relay(http.MethodGet, taskProgress))
		verified.POST("/tasks/:taskid/progress", handleContribute)
		verified.PUT("/achievements/:achievementid/review", relay(http.MethodPut, tasksURL("coach", "achievements", ":achievementid", "review")))

		admin := verified.Group("/admin")
		admin.Use(requireAdmin)
		{
			admin.GET("/teams", handleAdminTeams)
			admin.PUT("/users/:id/role", handleAdminSetUserRole)
		}
	}

	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "bad path"})
	})
}

func mustLoadLadder(path string) badges.Ladder {
	if path == "" {
		return badges.DefaultLadder
	}

	ladder, err := badges.LoadLadder(path)
	if err != nil {
		logger.Fatal("failed to load badge ladder: %v", err)
	}

	return ladder
}

// logSessions traces the session lifecycle.
func logSessions(e session.Event) {
	logger.Debug("session %s of %s: %s", e.Session.ID, e.Session.UserID, e.Kind)
}

// sweepSessions drops expired sessions every interval until ctx is done.
func sweepSessions(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := sessions.Sweep(); n > 0 {
				logger.Debug("swept %d expired sessions", n)
			}
		}
	}
}

// InitAndServe runs the gateway until SIGINT/SIGTERM.
func InitAndServe(confPath string) {
	config = loadConfig(confPath)

	setGinMode(config.ApiGinMode)
	engine = gin.New()
	engine.Use(gin.Logger(), gin.Recovery(), metrics.Monitor(serviceName))
	metrics.Init()

	svc, err := auth.NewService(config.AuthAddress, config.Realm, config.ClientID, config.Issuer, config.Audience, config.ClientSecret)
	if err != nil {
		logger.Fatal("failed to reach keycloak: %v", err)
	}
	kc, verifier = svc, svc.KCAuth

	down = &Downstream{
		TeamBase: strings.TrimRight(config.TeamServiceURL, "/"),
		TaskBase: strings.TrimRight(config.TaskServiceURL, "/"),
		Client:   &http.Client{Timeout: config.DownstreamTimeout},
	}
	memo = badges.NewMemo(mustLoadLadder(config.BadgeLadderPath))

	sessions = session.New()
	if _, err := sessions.Subscribe(logSessions); err != nil {
		logger.Fatal("%v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logins := limiter.New(config.LoginRate, config.LoginBurst, 10*time.Minute)
	go logins.Run(ctx, time.Minute)
	go sweepSessions(ctx, config.SweepEvery)

	setCors()
	setRoutes(logins)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", config.Port),
		Handler:           engine,
		ReadHeaderTimeout: time.Second * 5,
	}

	go func() {
		logger.Info("%s listening on :%s", serviceName, config.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen: %s", err)
		}
	}()

	<-ctx.Done()

	stop()
	logger.Info("shutting down gracefully, press Ctrl+C again to force")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown: %v", err)
	}
	sessions.Close()

	logger.Info("server exiting")
}

func setGinMode(mode string) {
	switch strings.ToLower(mode) {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}
}

package mteam

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
	"github.com/jackc/pgx/v5/pgxpool"

	auth "kyri56xcaesar/athlete-tracker/internal/authmw"
	"kyri56xcaesar/athlete-tracker/internal/limiter"
	"kyri56xcaesar/athlete-tracker/internal/logger"
	"kyri56xcaesar/athlete-tracker/internal/metrics"
	"kyri56xcaesar/athlete-tracker/internal/models"
	"kyri56xcaesar/athlete-tracker/internal/pgutil"
)

const (
	serviceName = "teams"
)

var (
	config Config
	engine *gin.Engine
	pool   *pgxpool.Pool
)

func setCors() {
	corsconfig := cors.DefaultConfig()
	corsconfig.AllowOrigins = config.AllowedOrigins
	corsconfig.AllowMethods = config.AllowedMethods
	corsconfig.AllowHeaders = config.AllowedHeaders
	engine.Use(cors.New(corsconfig))
}

func mustInitKcAuth() *auth.KeycloakAuth {
	a, err := auth.NewKeycloakAuth(config.jwksURL(), config.Issuer, config.Audience, config.ClientID)
	if err != nil {
		logger.Fatal("failed to fetch realm keys: %v", err)
	}

	return a
}

func setRoutes(kcAuth *auth.KeycloakAuth, joins *limiter.Limiter) {
	root := engine.Group("/")
	{
		root.GET("/healthz", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "alive"})
		})
		root.GET("/metrics", metrics.Handler())
	}

	member := root.Group("/auth")
	member.Use(kcAuth.RequireRoles(models.RoleAthlete, models.RoleCoach, models.RoleAdmin))
	{
		member.GET("/me", handleMe)
		member.GET("/my-teams", handleMyTeams)
		member.GET("/teams", handleListTeams)
		member.GET("/teams/:teamid", handleGetTeam)
		member.GET("/teams/:teamid/members", handleMembers)

		joinLimit := joins.Middleware(limiter.ByContextValue(auth.KeyUserID))
		member.POST("/join", joinLimit, handleJoinByCode)
		member.POST("/teams/:teamid/join", joinLimit, handleJoinByID)
	}

	coach := root.Group("/coach")
	coach.Use(kcAuth.RequireRoles(models.RoleCoach))
	{
		coach.POST("/teams", handleCreateTeam)
		coach.PUT("/teams/:teamid", handleUpdateTeam)
		coach.GET("/teams/:teamid/code", handleTeamCode)
		coach.DELETE("/teams/:teamid/members/:userid", handleRemoveMember)
	}

	admin := root.Group("/admin")
	admin.Use(kcAuth.RequireRoles(models.RoleAdmin))
	{
		admin.GET("/teams", handleListTeams)
		admin.DELETE("/teams/:teamid", handleDeleteTeam)
		admin.PUT("/users/:userid/role", handleSetRole)
	}
}

// InitAndServe runs the team service until SIGINT/SIGTERM.
func InitAndServe(confPath string) {
	config = loadConfig(confPath)

	setGinMode(config.ApiGinMode)
	engine = gin.New()
	engine.Use(gin.Logger(), gin.Recovery(), metrics.Monitor(serviceName))
	metrics.Init()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	joins := limiter.New(config.JoinRate, config.JoinBurst, 10*time.Minute)
	go joins.Run(ctx, time.Minute)

	setCors()
	setRoutes(mustInitKcAuth(), joins)

	var err error
	pool, err = pgutil.Connect(ctx, config.dsn(), config.InitSQLPath)
	if err != nil {
		logger.Fatal("%v", err)
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", config.Port),
		Handler:           engine,
		ReadHeaderTimeout: time.Second * 5,
	}

	go func() {
		logger.Info("%s service listening on :%s", serviceName, config.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen: %s", err)
		}
	}()

	<-ctx.Done()

	stop()
	logger.Info("shutting down gracefully, press Ctrl+C again to force")

	pool.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown: %v", err)
	}

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

package front

import (
	"fmt"
	"time"

	envcfg "kyri56xcaesar/athlete-tracker/internal/config"
	"kyri56xcaesar/athlete-tracker/internal/logger"
)

type Config struct {
	ConfigPath string
	Profile    string
	Verbose    bool
	ApiGinMode string

	Ip          string
	Port        string
	AuthAddress string

	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string

	// kc
	Issuer       string
	Audience     string
	Realm        string
	ClientID     string
	ClientSecret string

	// downstream services
	TeamServiceURL    string
	TaskServiceURL    string
	DownstreamTimeout time.Duration

	SecureCookie bool
	SweepEvery   time.Duration
	// yaml badge ladder, the built-in one when empty
	BadgeLadderPath string

	// sign-in attempts per second per client ip
	LoginRate  float64
	LoginBurst int
}

func loadConfig(path string) Config {
	name := envcfg.Load(path)

	cfg := Config{
		ConfigPath: name,
		Profile:    envcfg.GetEnv("PROFILE", "baremetal"),
		Verbose:    envcfg.GetBoolEnv("VERBOSE", "true"),
		ApiGinMode: envcfg.GetEnv("GIN_MODE", "debug"),

		Ip:          envcfg.GetEnv("IP", "localhost"),
		Port:        envcfg.GetEnv("PORT", "8080"),
		AuthAddress: envcfg.GetEnv("AUTH_ADDRESS", "localhost:5555"),

		AllowedOrigins: envcfg.GetEnvFields("ALLOW_ORIGINS", []string{"*"}),
		AllowedMethods: envcfg.GetEnvFields("ALLOW_METHODS", []string{"*"}),
		AllowedHeaders: envcfg.GetEnvFields("ALLOW_HEADERS", []string{"*"}),

		Issuer:       envcfg.GetEnv("KC_ISSUER", ""),
		Audience:     envcfg.GetEnv("KC_AUDIENCE", ""),
		Realm:        envcfg.GetEnv("KC_REALM", "athlete-tracker"),
		ClientID:     envcfg.GetEnv("KC_CLIENT", "tracker"),
		ClientSecret: envcfg.GetEnv("KC_CLIENT_SECRET", ""),

		TeamServiceURL:    envcfg.GetEnv("TEAM_SERVICE_URL", "http://localhost:5015"),
		TaskServiceURL:    envcfg.GetEnv("TASK_SERVICE_URL", "http://localhost:5030"),
		DownstreamTimeout: envcfg.GetDurationEnv("DOWNSTREAM_TIMEOUT", 10*time.Second),

		SecureCookie:    envcfg.GetBoolEnv("SECURE_COOKIE", "false"),
		SweepEvery:      envcfg.GetDurationEnv("SESSION_SWEEP", time.Minute),
		BadgeLadderPath: envcfg.GetEnv("BADGE_LADDER", ""),

		LoginRate:  float64(envcfg.GetIntEnv("LOGIN_RATE", 1)),
		LoginBurst: envcfg.GetIntEnv("LOGIN_BURST", 5),
	}
	if cfg.Issuer == "" {
		cfg.Issuer = fmt.Sprintf("http://%s/realms/%s", cfg.AuthAddress, cfg.Realm)
	}

	logger.SetVerbose(cfg.Verbose)
	logger.Info("\n%s", envcfg.Dump(name, &cfg))

	return cfg
}

package mtask

import (
	"fmt"

	envcfg "kyri56xcaesar/athlete-tracker/internal/config"
	"kyri56xcaesar/athlete-tracker/internal/logger"
	"kyri56xcaesar/athlete-tracker/internal/pgutil"
)

type Config struct {
	ConfigPath  string
	Profile     string
	Verbose     bool
	ApiGinMode  string
	InitSQLPath string

	Ip          string
	Port        string
	AuthAddress string

	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string

	// kc
	Issuer   string
	Audience string
	Realm    string
	ClientID string

	// database
	DBAddress  string
	DBUser     string
	DBPassword string
	DBName     string

	// progress submissions per second per athlete
	ProgressRate  float64
	ProgressBurst int
	// "auto" verifies at write time, "review" leaves achievements pending
	Verification string
}

func loadConfig(path string) Config {
	name := envcfg.Load(path)

	cfg := Config{
		ConfigPath:  name,
		Profile:     envcfg.GetEnv("PROFILE", "baremetal"),
		Verbose:     envcfg.GetBoolEnv("VERBOSE", "true"),
		ApiGinMode:  envcfg.GetEnv("GIN_MODE", "debug"),
		InitSQLPath: envcfg.GetEnv("INIT_SQL_PATH", "./internal/mtask/db/init.sql"),

		Ip:          envcfg.GetEnv("IP", "localhost"),
		Port:        envcfg.GetEnv("PORT", "5030"),
		AuthAddress: envcfg.GetEnv("AUTH_ADDRESS", "localhost:5555"),

		AllowedOrigins: envcfg.GetEnvFields("ALLOW_ORIGINS", []string{"*"}),
		AllowedMethods: envcfg.GetEnvFields("ALLOW_METHODS", []string{"*"}),
		AllowedHeaders: envcfg.GetEnvFields("ALLOW_HEADERS", []string{"*"}),

		Issuer:   envcfg.GetEnv("KC_ISSUER", ""),
		Audience: envcfg.GetEnv("KC_AUDIENCE", ""),
		Realm:    envcfg.GetEnv("KC_REALM", "athlete-tracker"),
		ClientID: envcfg.GetEnv("KC_CLIENT", "tracker"),

		DBAddress:  envcfg.GetEnv("DB_ADDRESS", "api-db:5432"),
		DBUser:     envcfg.GetEnv("DB_USER", "postgres"),
		DBPassword: envcfg.GetEnv("DB_PASSWORD", "postgres"),
		DBName:     envcfg.GetEnv("DB_NAME", "tracker"),

		ProgressRate:  float64(envcfg.GetIntEnv("PROGRESS_RATE", 2)),
		ProgressBurst: envcfg.GetIntEnv("PROGRESS_BURST", 10),
		Verification:  envcfg.GetEnv("VERIFICATION", "auto"),
	}
	if cfg.Issuer == "" {
		cfg.Issuer = fmt.Sprintf("http://%s/realms/%s", cfg.AuthAddress, cfg.Realm)
	}

	logger.SetVerbose(cfg.Verbose)
	logger.Info("\n%s", envcfg.Dump(name, &cfg))

	return cfg
}

func (c Config) dsn() string {
	return pgutil.DSN(c.DBUser, c.DBPassword, c.DBAddress, c.DBName)
}

func (c Config) jwksURL() string {
	return fmt.Sprintf("http://%s/realms/%s/protocol/openid-connect/certs", c.AuthAddress, c.Realm)
}

// Package config holds the env/.env plumbing shared by the services.
// Each service keeps its own Config struct and calls Load once at startup.
package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"kyri56xcaesar/athlete-tracker/internal/logger"
)

// Load reads the given .env file into the process environment. A missing
// file is not an error; defaults and real env vars still apply.
func Load(path string) string {
	if err := godotenv.Load(path); err != nil {
		logger.Warn("failed to load the config file at %s, using default ones...", path)
	}

	s := strings.Split(path, "/")
	return s[len(s)-1]
}

func GetEnv(env, fallback string) string {
	if value, exists := os.LookupEnv(env); exists {
		return value
	}

	return fallback
}

func GetEnvFields(env string, fallback []string) []string {
	if value, exists := os.LookupEnv(env); exists {
		fields := strings.Split(strings.TrimSpace(value), ",")
		out := make([]string, 0, len(fields))
		for _, f := range fields {
			if f = strings.TrimSpace(f); f != "" {
				out = append(out, f)
			}
		}

		return out
	}

	return fallback
}

func GetBoolEnv(env, fallback string) bool {
	if value, exists := os.LookupEnv(env); exists {
		return strings.ToLower(value) == "true"
	}

	return strings.ToLower(fallback) == "true"
}

func GetIntEnv(env string, fallback int) int {
	if value, exists := os.LookupEnv(env); exists {
		intValue, err := strconv.Atoi(value)
		if err == nil {
			return intValue
		}
	}

	return fallback
}

func GetDurationEnv(env string, fallback time.Duration) time.Duration {
	if value, exists := os.LookupEnv(env); exists {
		d, err := time.ParseDuration(value)
		if err == nil {
			return d
		}
	}

	return fallback
}

// Dump renders every exported field of a config struct pointer, one per
// line. Fields whose name contains Secret or Password are masked.
func Dump(name string, cfg any) string {
	var sb strings.Builder

	values := reflect.ValueOf(cfg)
	if values.Kind() == reflect.Ptr {
		values = values.Elem()
	}
	types := values.Type()

	sb.WriteString(fmt.Sprintf("[CFG]CONFIGURATION: %s\n", name))

	for i := range values.NumField() {
		field := types.Field(i)
		if !field.IsExported() {
			continue
		}
		value := values.Field(i).Interface()
		if byteSlice, ok := value.([]byte); ok {
			value = string(byteSlice)
		}
		if isSecret(field.Name) && value != "" {
			value = "****"
		}

		sb.WriteString(fmt.Sprintf("[CFG]%2d. %-22s -> %v\n", i+1, field.Name, value))
	}

	return sb.String()
}

func isSecret(name string) bool {
	return strings.Contains(name, "Secret") || strings.Contains(name, "Password")
}

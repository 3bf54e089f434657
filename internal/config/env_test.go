package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetEnvFallback(t *testing.T) {
	t.Setenv("TRACKER_TEST_SET", "value")

	assert.Equal(t, "value", GetEnv("TRACKER_TEST_SET", "fallback"))
	assert.Equal(t, "fallback", GetEnv("TRACKER_TEST_UNSET", "fallback"))
}

func TestGetEnvFieldsTrimsAndDropsEmpty(t *testing.T) {
	t.Setenv("TRACKER_TEST_FIELDS", " GET, POST ,,PUT ")

	assert.Equal(t, []string{"GET", "POST", "PUT"}, GetEnvFields("TRACKER_TEST_FIELDS", nil))
	assert.Equal(t, []string{"*"}, GetEnvFields("TRACKER_TEST_FIELDS_UNSET", []string{"*"}))
}

func TestGetBoolEnv(t *testing.T) {
	t.Setenv("TRACKER_TEST_BOOL", "TRUE")

	assert.True(t, GetBoolEnv("TRACKER_TEST_BOOL", "false"))
	assert.False(t, GetBoolEnv("TRACKER_TEST_BOOL_UNSET", "false"))
	assert.True(t, GetBoolEnv("TRACKER_TEST_BOOL_UNSET", "true"))
}

func TestGetIntEnvIgnoresGarbage(t *testing.T) {
	t.Setenv("TRACKER_TEST_INT", "12")
	t.Setenv("TRACKER_TEST_INT_BAD", "twelve")

	assert.Equal(t, 12, GetIntEnv("TRACKER_TEST_INT", 3))
	assert.Equal(t, 3, GetIntEnv("TRACKER_TEST_INT_BAD", 3))
}

func TestGetDurationEnv(t *testing.T) {
	t.Setenv("TRACKER_TEST_DUR", "90s")

	assert.Equal(t, 90*time.Second, GetDurationEnv("TRACKER_TEST_DUR", time.Second))
	assert.Equal(t, time.Second, GetDurationEnv("TRACKER_TEST_DUR_UNSET", time.Second))
}

func TestLoadReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tracker.env")
	require.NoError(t, os.WriteFile(path, []byte("TRACKER_TEST_FROM_FILE=yes\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("TRACKER_TEST_FROM_FILE") })

	name := Load(path)

	assert.Equal(t, "tracker.env", name)
	assert.Equal(t, "yes", os.Getenv("TRACKER_TEST_FROM_FILE"))
}

func TestLoadMissingFileIsNotFatal(t *testing.T) {
	assert.Equal(t, "nope.env", Load(filepath.Join(t.TempDir(), "nope.env")))
}

func TestDumpMasksSecrets(t *testing.T) {
	cfg := struct {
		Port         string
		ClientSecret string
		DBPassword   string
		hidden       string
	}{Port: "5045", ClientSecret: "s3cr3t", DBPassword: "pw", hidden: "x"}

	out := Dump("test.env", &cfg)

	assert.Contains(t, out, "test.env")
	assert.Contains(t, out, "5045")
	assert.NotContains(t, out, "s3cr3t")
	assert.NotContains(t, out, "-> pw")
	assert.False(t, strings.Contains(out, "hidden"))
}

package front

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig(t *testing.T) {
	t.Setenv("TEAM_SERVICE_URL", "http://teams:5015/")
	t.Setenv("DOWNSTREAM_TIMEOUT", "3s")
	t.Setenv("SECURE_COOKIE", "true")

	config = loadConfig(filepath.Join(t.TempDir(), "gateway.env"))

	assert.Equal(t, "gateway.env", config.ConfigPath)
	assert.Equal(t, "http://teams:5015/", config.TeamServiceURL)
	assert.Equal(t, 3*time.Second, config.DownstreamTimeout)
	assert.True(t, config.SecureCookie)
	assert.Equal(t, "8080", config.Port)
}

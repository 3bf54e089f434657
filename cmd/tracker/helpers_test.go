package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { ladderPath = "" })

	err := rootCmd.Execute()

	return out.String(), err
}

func TestCodeCommand(t *testing.T) {
	out, err := run(t, "code", "Warriors", "w1234567")
	require.NoError(t, err)
	assert.Equal(t, "WARW123\n", out)

	_, err = run(t, "code", "Warriors")
	assert.Error(t, err)

	_, err = run(t, "code", "", "")
	assert.Error(t, err)
}

func TestBadgesCommand(t *testing.T) {
	out, err := run(t, "badges", "5", "100")
	require.NoError(t, err)
	assert.Contains(t, out, "First Achievement")
	assert.Contains(t, out, "Achiever")
	assert.NotContains(t, out, "Champion")

	out, err = run(t, "badges", "0", "0")
	require.NoError(t, err)
	assert.Contains(t, out, "no badges yet")

	_, err = run(t, "badges", "-1", "0")
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "ladder.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
badges:
  - id: rookie
    name: Rookie
    icon: "🐣"
    description: Scored a point
    requirement: Earn 1 point
    metric: points
    threshold: 1
`), 0o600))

	out, err = run(t, "badges", "0", "3", "--ladder", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Rookie")
}

func TestLiveReloadBuildsTracker(t *testing.T) {
	mod, err := os.ReadFile(filepath.Join("..", "..", "go.mod"))
	require.NoError(t, err)
	assert.Contains(t, string(mod), "\ntool github.com/air-verse/air\n")

	air, err := os.ReadFile(filepath.Join("..", "..", ".air.toml"))
	require.NoError(t, err)
	assert.Contains(t, string(air), "./cmd/tracker")
	assert.Contains(t, string(air), `args_bin = ["teams"]`)

	cmd, _, err := rootCmd.Find([]string{"teams"})
	require.NoError(t, err)
	assert.Equal(t, "teams", cmd.Name())
}

package badges

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func names(bs []Badge) []string {
	out := make([]string, len(bs))
	for i, b := range bs {
		out[i] = b.Name
	}

	return out
}

func TestEvaluateNothingEarned(t *testing.T) {
	assert.Empty(t, Evaluate(0, 0))
	assert.NotNil(t, Evaluate(0, 0))
}

func TestEvaluateMonotonicAtFive(t *testing.T) {
	before := names(Evaluate(4, 120))
	after := names(Evaluate(5, 120))

	assert.Subset(t, after, before)
	assert.ElementsMatch(t, []string{"Achiever"}, diff(after, before))
}

func TestEvaluateIndependentRules(t *testing.T) {
	assert.Equal(t,
		[]string{"First Achievement", "Achiever", "Champion", "Point Master"},
		names(Evaluate(12, 600)))

	// points alone can earn a badge
	assert.Equal(t, []string{"Point Master"}, names(Evaluate(0, 500)))
	assert.Equal(t, []string{"First Achievement", "Achiever", "Champion", "Legend"}, names(Evaluate(20, 499)))
}

func TestEvaluateCarriesDisplayFields(t *testing.T) {
	got := Evaluate(1, 0)

	require.Len(t, got, 1)
	assert.Equal(t, "first_achievement", got[0].ID)
	assert.Equal(t, "🏅", got[0].Icon)
	assert.Equal(t, "Complete 1 task", got[0].Requirement)
}

func TestCountMatchesEvaluate(t *testing.T) {
	for _, c := range [][2]int{{0, 0}, {1, 10}, {5, 499}, {10, 500}, {25, 1000}} {
		assert.Len(t, DefaultLadder.Evaluate(c[0], c[1]), DefaultLadder.Count(c[0], c[1]))
	}
}

func TestParseLadder(t *testing.T) {
	l, err := ParseLadder([]byte(`
badges:
  - id: starter
    name: Starter
    icon: "🚀"
    metric: achievements
    threshold: 2
  - id: rich
    name: Rich
    metric: points
    threshold: 50
`))
	require.NoError(t, err)
	require.Len(t, l, 2)

	assert.Equal(t, []string{"Starter"}, names(l.Evaluate(2, 10)))
	assert.Equal(t, []string{"Starter", "Rich"}, names(l.Evaluate(3, 50)))
}

func TestParseLadderRejectsBadRules(t *testing.T) {
	cases := map[string]string{
		"empty":     `badges: []`,
		"no id":     "badges:\n  - name: X\n    metric: points\n",
		"duplicate": "badges:\n  - id: a\n    metric: points\n  - id: a\n    metric: points\n",
		"metric":    "badges:\n  - id: a\n    metric: minutes\n",
		"negative":  "badges:\n  - id: a\n    metric: points\n    threshold: -1\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseLadder([]byte(doc))
			assert.ErrorIs(t, err, ErrInvalidLadder)
		})
	}

	_, err := ParseLadder([]byte("badges: [oops"))
	assert.Error(t, err)
}

func TestLoadLadder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ladder.yaml")
	require.NoError(t, os.WriteFile(path, []byte("badges:\n  - id: one\n    name: One\n    metric: achievements\n    threshold: 1\n"), 0o600))

	l, err := LoadLadder(path)
	require.NoError(t, err)
	assert.Equal(t, 1, l.Count(1, 0))

	_, err = LoadLadder(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestMemo(t *testing.T) {
	m := NewMemo(nil)

	first := m.Evaluate("u1", 5, 0)
	assert.Equal(t, []string{"First Achievement", "Achiever"}, names(first))
	assert.Equal(t, 1, m.Len())

	m.Evaluate("u1", 5, 0)
	assert.Equal(t, 1, m.Len())

	// new totals are a new key, never the old set
	assert.Len(t, m.Evaluate("u1", 10, 0), 3)
	m.Evaluate("u2", 1, 0)
	assert.Equal(t, 3, m.Len())

	m.Invalidate("u1")
	assert.Equal(t, 1, m.Len())

	m.Reset()
	assert.Equal(t, 0, m.Len())
	assert.Equal(t, 2, m.Count(5, 0))
}

func diff(a, b []string) []string {
	in := map[string]bool{}
	for _, v := range b {
		in[v] = true
	}
	out := []string{}
	for _, v := range a {
		if !in[v] {
			out = append(out, v)
		}
	}

	return out
}

func TestMemoResultsAreCopies(t *testing.T) {
	m := NewMemo(nil)

	first := m.Evaluate("u1", 5, 600)
	require.NotEmpty(t, first)
	want := names(first)

	first[0].Name = "tampered"
	assert.Equal(t, want, names(m.Evaluate("u1", 5, 600)))

	cached := m.Evaluate("u1", 5, 600)
	cached[0] = Badge{}
	assert.Equal(t, want, names(m.Evaluate("u1", 5, 600)))
}

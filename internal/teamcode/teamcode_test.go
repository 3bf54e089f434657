package teamcode

import (
	"testing"
	"unicode"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type team struct {
	ID   string
	Name string
}

func teamFields(t team) (string, string) {
	return t.Name, t.ID
}

func TestEncode(t *testing.T) {
	tests := []struct {
		name, id, want string
	}{
		{"Warriors", "w1234567", "WARW123"},
		{"saints", "abcd1234", "SAIABCD"},
		{"AB", "1", "AB1"},
		{"", "", ""},
		{"Ox", "", "OX"},
		{"", "abcdef", "ABCD"},
	}

	for _, tt := range tests {
		t.Run(tt.name+"/"+tt.id, func(t *testing.T) {
			assert.Equal(t, tt.want, Encode(tt.name, tt.id))
		})
	}
}

func TestEncodeIsDeterministicAndSevenUpperASCII(t *testing.T) {
	a := Encode("Lightning", "9f8e7d6c-aaaa")
	b := Encode("Lightning", "9f8e7d6c-aaaa")

	require.Equal(t, a, b)
	require.Len(t, a, 7)
	for _, r := range a {
		assert.True(t, r < unicode.MaxASCII)
		assert.False(t, unicode.IsLower(r))
	}
}

func TestEncodeShortInputDoesNotPad(t *testing.T) {
	assert.NotPanics(t, func() { Encode("A", "") })
	assert.Equal(t, "AB1", Encode("AB", "1"))
}

func TestEncodeCountsCharactersNotBytes(t *testing.T) {
	assert.Equal(t, "ÅSEÉ123", Encode("åsenjo", "é1234"))
}

func TestCollisionExistsAndFirstCandidateWins(t *testing.T) {
	saints := team{ID: "abcd1234", Name: "Saints"}
	lions := team{ID: "abcdXXXX", Name: "Sai Lions"}

	require.Equal(t, "SAIABCD", Encode(saints.Name, saints.ID))
	require.Equal(t, Encode(saints.Name, saints.ID), Encode(lions.Name, lions.ID))

	var m Match[team]
	require.NotPanics(t, func() {
		m = Lookup("SAIABCD", []team{saints, lions}, teamFields)
	})

	assert.True(t, m.Found())
	assert.True(t, m.Ambiguous())
	assert.Equal(t, 2, m.Matches)
	assert.Equal(t, saints, m.Team)
	assert.Equal(t, 0, m.Index)
	assert.ErrorIs(t, m.Err(), ErrAmbiguousTeamCode)

	reversed := Lookup("SAIABCD", []team{lions, saints}, teamFields)
	assert.Equal(t, lions, reversed.Team)
}

func TestLookupWarriorsEndToEnd(t *testing.T) {
	warriors := team{ID: "w1234567", Name: "Warriors"}
	candidates := []team{
		{ID: "a0000000", Name: "Eagles"},
		warriors,
		{ID: "b1111111", Name: "Sharks"},
	}

	m := Lookup("WARw123", candidates, teamFields)

	require.True(t, m.Found())
	assert.False(t, m.Ambiguous())
	assert.NoError(t, m.Err())
	assert.Equal(t, warriors, m.Team)
	assert.Equal(t, 1, m.Index)
}

func TestLookupIgnoresCaseAndSurroundingSpace(t *testing.T) {
	candidates := []team{{ID: "w1234567", Name: "Warriors"}}

	assert.True(t, Lookup("  warw123 ", candidates, teamFields).Found())
}

func TestLookupNotFound(t *testing.T) {
	candidates := []team{{ID: "w1234567", Name: "Warriors"}}

	m := Lookup("ZZZ0000", candidates, teamFields)

	assert.False(t, m.Found())
	assert.Equal(t, -1, m.Index)
	assert.ErrorIs(t, m.Err(), ErrTeamCodeNotFound)

	empty := Lookup("", candidates, teamFields)
	assert.False(t, empty.Found())
	assert.False(t, Lookup("WARW123", []team{}, teamFields).Found())
}

// Package teamcode derives the short join code athletes type to join a team.
//
// A code is the first 3 characters of the team name followed by the first 4
// characters of the team id, both upper-cased. Codes are never stored;
// lookup re-encodes every candidate team and compares. The scheme has no
// collision resistance: two teams sharing a 3-letter name prefix and a
// 4-character id prefix produce the same code. Codes are already shared
// with athletes, so the derivation must stay as it is.
package teamcode

import (
	"errors"
	"strings"
)

const (
	namePart = 3
	idPart   = 4
)

var (
	ErrTeamCodeNotFound  = errors.New("no team matches the code")
	ErrAmbiguousTeamCode = errors.New("team code matches more than one team")
)

// Encode returns the join code for a team. Short inputs are truncated to
// whatever is available, never padded.
func Encode(name, id string) string {
	return strings.ToUpper(prefix(name, namePart)) + strings.ToUpper(prefix(id, idPart))
}

func prefix(s string, n int) string {
	r := []rune(s)
	if len(r) > n {
		r = r[:n]
	}

	return string(r)
}

// Normalize trims and upper-cases user input before comparison.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Match is the outcome of a Lookup.
type Match[T any] struct {
	Team T
	// Index of Team in the candidate slice, -1 when nothing matched.
	Index int
	// Matches is how many candidates encode to the code.
	Matches int
}

// Found reports whether any candidate matched.
func (m Match[T]) Found() bool {
	return m.Matches > 0
}

// Ambiguous reports a collision: more than one candidate encodes to the code.
func (m Match[T]) Ambiguous() bool {
	return m.Matches > 1
}

// Err converts the match into the explicit error kinds. An ambiguous match
// still carries the first candidate in Team.
func (m Match[T]) Err() error {
	switch {
	case m.Matches == 0:
		return ErrTeamCodeNotFound
	case m.Matches > 1:
		return ErrAmbiguousTeamCode
	default:
		return nil
	}
}

// Lookup scans candidates in order and returns the first one whose encoded
// code equals code, ignoring case. fields extracts (name, id) from a
// candidate.
func Lookup[T any](code string, candidates []T, fields func(T) (name, id string)) Match[T] {
	want := Normalize(code)
	m := Match[T]{Index: -1}
	if want == "" {
		return m
	}

	for i, c := range candidates {
		name, id := fields(c)
		if !strings.EqualFold(Encode(name, id), want) {
			continue
		}
		if m.Matches == 0 {
			m.Team = c
			m.Index = i
		}
		m.Matches++
	}

	return m
}

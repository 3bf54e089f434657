package utils

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapFilterReduce(t *testing.T) {
	in := []int{1, 2, 3, 4}

	assert.Equal(t, []string{"1", "2", "3", "4"}, Map(in, strconv.Itoa))
	assert.Equal(t, []int{2, 4}, Filter(in, func(v int) bool { return v%2 == 0 }))
	assert.Equal(t, 10.0, Reduce(in, 0.0, func(acc float64, v int) float64 { return acc + float64(v) }))
	assert.Equal(t, 7, Reduce([]int{}, 7, func(acc, v int) int { return acc + v }))
}

func TestContainsAndUniq(t *testing.T) {
	assert.True(t, Contains([]string{"coach", "admin"}, "admin"))
	assert.False(t, Contains([]string{"coach"}, "athlete"))
	assert.Equal(t, []string{"a", "b"}, Uniq([]string{"a", "", "b", "a"}))
}

func TestIsValidURL(t *testing.T) {
	assert.True(t, IsValidURL("https://strava.com/activities/1"))
	assert.True(t, IsValidURL(" http://example.org "))
	assert.False(t, IsValidURL("ftp://example.org"))
	assert.False(t, IsValidURL("example.org/run"))
	assert.False(t, IsValidURL("https://"))
	assert.False(t, IsValidURL(""))
}

func TestIsAlphanumericPlus(t *testing.T) {
	assert.True(t, IsAlphanumericPlus("SAI1A2B", ""))
	assert.True(t, IsAlphanumericPlus("ab-c_d", "-_"))
	assert.False(t, IsAlphanumericPlus("ab c", ""))
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "10", FormatNumber(10))
	assert.Equal(t, "2.5", FormatNumber(2.5))
}

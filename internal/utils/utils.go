// Package utils provides a small collection of reusable helpers for the
// services.
//
// Functional Programming Utilities:
//   - Map, Filter, Reduce: Generic implementations for slice processing.
//
// Slices:
//   - Contains, Uniq
//
// Validation Helpers:
//   - IsValidURL: Checks for an absolute http(s) URL.
//   - IsAlphanumericPlus: Validates string content.
//
// Numbers:
//   - FormatNumber: Renders a float without trailing zeros.
package utils

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

/* some Functional Programming in Go */

// Map applies f to every element of s.
func Map[S ~[]E, E any, R any](s S, f func(E) R) []R {
	result := make([]R, len(s))
	for i, e := range s {
		result[i] = f(e)
	}

	return result
}

// Filter keeps the elements of s for which f returns true.
func Filter[S ~[]E, E any](s S, f func(E) bool) S {
	result := S{}
	for _, v := range s {
		if f(v) {
			result = append(result, v)
		}
	}

	return result
}

// Reduce folds s into a single value starting from init.
func Reduce[E any, A any](s []E, init A, f func(acc A, next E) A) A {
	cur := init
	for _, v := range s {
		cur = f(cur, v)
	}

	return cur
}

// Contains reports whether val is in slice.
func Contains[E comparable](slice []E, val E) bool {
	for _, item := range slice {
		if item == val {
			return true
		}
	}

	return false
}

// Uniq drops empty strings and duplicates, keeping first-seen order.
func Uniq(in []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}

	return out
}

// IsValidURL accepts only absolute http/https URLs with a host.
func IsValidURL(s string) bool {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}

	return u.Host != ""
}

// IsAlphanumericPlus checks s is alphanumeric plus the given extra characters.
func IsAlphanumericPlus(s, plus string) bool {
	re := regexp.MustCompile("^[a-zA-Z0-9" + regexp.QuoteMeta(plus) + "]+$")

	return re.MatchString(s)
}

// FormatNumber renders 10 as "10" and 2.5 as "2.5".
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

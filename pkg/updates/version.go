// Package updates checks GitHub for a newer quickopen release.
package updates

import (
	"errors"
	"strconv"
	"strings"
)

// ErrNoVersion is returned when a release carries no usable version.
var ErrNoVersion = errors.New("could not read latest version from GitHub release")

// Normalize trims v and drops a leading "v" or "V".
func Normalize(v string) string {
	v = strings.TrimSpace(v)
	if len(v) > 0 && (v[0] == 'v' || v[0] == 'V') {
		v = v[1:]
	}
	return v
}

// Compare orders two dotted versions numerically: -1 if a < b, 1 if a > b,
// else 0. Each part counts by its leading digits, so "3-beta" is 3 and a
// part with none is 0. Missing parts are 0, making "1.2" equal "1.2.0".
func Compare(a, b string) int {
	pa, pb := parts(a), parts(b)
	n := len(pa)
	if len(pb) > n {
		n = len(pb)
	}
	for i := 0; i < n; i++ {
		da, db := at(pa, i), at(pb, i)
		if da > db {
			return 1
		}
		if da < db {
			return -1
		}
	}
	return 0
}

func parts(v string) []int {
	fields := strings.Split(Normalize(v), ".")
	out := make([]int, len(fields))
	for i, f := range fields {
		out[i] = leadingInt(strings.TrimSpace(f))
	}
	return out
}

// leadingInt parses the digit prefix of s. A prefix too long for an int
// counts as 0, like no digits at all.
func leadingInt(s string) int {
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return n
}

func at(p []int, i int) int {
	if i < len(p) {
		return p[i]
	}
	return 0
}

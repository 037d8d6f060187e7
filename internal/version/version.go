// Package version compares firmware versions.
//
// Semantic versions are handled by github.com/Masterminds/semver/v3.
// Vendor version strings that are not semantic versions, such as "A07"
// or "1.0.3b", fall back to a natural ordering: case-insensitive, with
// runs of digits compared numerically.
package version

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	mm "github.com/Masterminds/semver/v3"
)

// Compare compares a and b, returning:
//
//	-1 if a < b
//	 0 if a == b
//	+1 if a > b
func Compare(a, b string) int {
	va, errA := mm.NewVersion(a)
	vb, errB := mm.NewVersion(b)
	if errA == nil && errB == nil {
		return va.Compare(vb)
	}
	return natural(strings.ToLower(a), strings.ToLower(b))
}

var simpleConstraint = regexp.MustCompile(`^\s*(>=|<=|!=|==|=|>|<)?\s*([^\s<>=!]+)\s*$`)

// Satisfies reports whether v meets constraint c, for example ">= 2.1",
// "^1.4" or "= A07". An empty constraint is always met.
func Satisfies(v, c string) (bool, error) {
	if strings.TrimSpace(c) == "" {
		return true, nil
	}

	if sv, err := mm.NewVersion(v); err == nil {
		if sc, err := mm.NewConstraint(c); err == nil {
			return sc.Check(sv), nil
		}
	}

	m := simpleConstraint.FindStringSubmatch(c)
	if m == nil {
		return false, fmt.Errorf("version: parse constraint %q", c)
	}

	cmp := Compare(v, m[2])
	switch m[1] {
	case "", "=", "==":
		return cmp == 0, nil
	case "!=":
		return cmp != 0, nil
	case ">":
		return cmp > 0, nil
	case ">=":
		return cmp >= 0, nil
	case "<":
		return cmp < 0, nil
	default: // "<="
		return cmp <= 0, nil
	}
}

// natural compares strings chunk by chunk, digit runs by value.
func natural(a, b string) int {
	for a != "" && b != "" {
		ca, restA := chunk(a)
		cb, restB := chunk(b)

		if c := compareChunk(ca, cb); c != 0 {
			return c
		}
		a, b = restA, restB
	}

	switch {
	case a == "" && b == "":
		return 0
	case a == "":
		return -1
	default:
		return 1
	}
}

func chunk(s string) (string, string) {
	digit := unicode.IsDigit(rune(s[0]))
	i := 1
	for i < len(s) && unicode.IsDigit(rune(s[i])) == digit {
		i++
	}
	return s[:i], s[i:]
}

func compareChunk(a, b string) int {
	na, errA := strconv.ParseUint(a, 10, 64)
	nb, errB := strconv.ParseUint(b, 10, 64)
	if errA == nil && errB == nil {
		switch {
		case na < nb:
			return -1
		case na > nb:
			return 1
		default:
			return 0
		}
	}
	return strings.Compare(a, b)
}

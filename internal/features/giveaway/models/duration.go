package models

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
)

var ErrInvalidDuration = errors.New("invalid duration")

var durationToken = regexp.MustCompile(`(\d+)([smhdw])`)

var unitSeconds = map[string]int64{
	"s": 1,
	"m": 60,
	"h": 3600,
	"d": 86400,
	"w": 604800,
}

// ParseDuration converts a user-supplied duration string to seconds.
//
// The input is lower-cased and whitespace-stripped. A bare number is taken
// as seconds. Otherwise every <digits><unit> token (s, m, h, d, w) is summed
// and unmatched substrings are ignored, so "1d2h" is 93600 and "abc" sums to
// zero. Zero or negative totals are invalid.
func ParseDuration(text string) (int64, error) {
	s := strings.ToLower(strings.Join(strings.Fields(text), ""))
	if s == "" {
		return 0, ErrInvalidDuration
	}

	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		if n <= 0 {
			return 0, ErrInvalidDuration
		}
		return n, nil
	}

	var total int64
	for _, m := range durationToken.FindAllStringSubmatch(s, -1) {
		n, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			// Digit runs too long for int64 are ignored like any other
			// unmatched garbage.
			continue
		}
		total += n * unitSeconds[m[2]]
	}

	if total <= 0 {
		return 0, ErrInvalidDuration
	}
	return total, nil
}

package depthview

import (
	"strconv"
	"strings"
	"unicode"
)

// FootInMeters is the length of one international foot.
const FootInMeters = 0.3048

// The depth clipping range used when no distance is given on the command line.
const (
	DefaultMinDistance float32 = 0.1   // meters
	DefaultMaxDistance float32 = 6.096 // meters, 20 ft
)

// FeetToMeters parses s as a distance in feet and returns it in meters.
// Like strtod the longest leading decimal number is used and anything after
// it is ignored; a string that does not start with a number gives 0.
func FeetToMeters(s string) float32 {
	return float32(parseLeadingFloat(s) * FootInMeters)
}

// ClipRange returns the near and far clipping distances for the positional
// arguments: none keeps the defaults, one sets the near distance, two set
// both. Any other count falls back to the defaults.
func ClipRange(args []string) (near, far float32) {
	switch len(args) {
	case 1:
		return FeetToMeters(args[0]), DefaultMaxDistance
	case 2:
		return FeetToMeters(args[0]), FeetToMeters(args[1])
	}
	return DefaultMinDistance, DefaultMaxDistance
}

// parseLeadingFloat returns the value of the decimal number s starts with,
// after optional white space.
func parseLeadingFloat(s string) float64 {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)

	// Whole strings go through ParseFloat first, so inf, nan and hex
	// floats behave as they do for strtod.
	if v, err := strconv.ParseFloat(s, 64); err == nil || isRangeErr(err) {
		return v
	}
	n := decimalPrefix(s)
	if n == 0 {
		return 0
	}
	v, err := strconv.ParseFloat(s[:n], 64)
	if err != nil && !isRangeErr(err) {
		return 0
	}
	return v
}

// decimalPrefix returns the length of the longest prefix of s that reads as
// [+-]digits[.digits][e[+-]digits], 0 when there is none.
func decimalPrefix(s string) int {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	digits := 0
	for i < len(s) && isDigit(s[i]) {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && isDigit(s[i]) {
			i++
			digits++
		}
	}
	if digits == 0 {
		return 0
	}
	// the exponent only counts when at least one digit follows it
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		if j < len(s) && isDigit(s[j]) {
			for j < len(s) && isDigit(s[j]) {
				j++
			}
			i = j
		}
	}
	return i
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isRangeErr(err error) bool {
	ne, ok := err.(*strconv.NumError)
	return ok && ne.Err == strconv.ErrRange
}

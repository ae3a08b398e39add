package utils

import (
	"strconv"
)

// StringToInt converts string to int, returns 0 if error
func StringToInt(s string) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return i
}

// ClampLimit parses a page-size query value: empty or invalid gives def,
// values above max are capped.
func ClampLimit(s string, def, max int) int {
	n := StringToInt(s)
	if n <= 0 {
		return def
	}
	if n > max {
		return max
	}
	return n
}

package httputil

import "strconv"

const (
	DefaultLimit = 100
	MaxLimit     = 1000
)

// ParseLimit parses a limit query parameter, clamped to [1, MaxLimit].
// Empty or non-numeric input yields DefaultLimit.
func ParseLimit(limitStr string) int {
	if limitStr == "" {
		return DefaultLimit
	}
	n, err := strconv.Atoi(limitStr)
	if err != nil {
		return DefaultLimit
	}
	if n < 1 {
		return 1
	}
	if n > MaxLimit {
		return MaxLimit
	}
	return n
}

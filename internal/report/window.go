package report

import (
	"fmt"
	"strconv"
	"time"
)

// ParseWindow converts a time range like "24h" or "7d" into a
// duration. The unit must be h for hours or d for days.
func ParseWindow(s string) (time.Duration, error) {
	if len(s) < 2 {
		return 0, fmt.Errorf("invalid time range %q: use a number followed by 'h' or 'd'", s)
	}
	value, err := strconv.Atoi(s[:len(s)-1])
	if err != nil || value <= 0 {
		return 0, fmt.Errorf("invalid time range %q: use a number followed by 'h' or 'd'", s)
	}
	switch s[len(s)-1] {
	case 'h':
		return time.Duration(value) * time.Hour, nil
	case 'd':
		return time.Duration(value) * 24 * time.Hour, nil
	default:
		return 0, fmt.Errorf("invalid time range unit %q: use 'h' for hours or 'd' for days", string(s[len(s)-1]))
	}
}

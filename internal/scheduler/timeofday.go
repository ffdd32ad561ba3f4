package scheduler

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	// BusinessStart is the opening time of bookable hours in minutes since midnight.
	BusinessStart = 9 * 60
	// BusinessEnd is the closing time of bookable hours in minutes since midnight.
	BusinessEnd = 20 * 60
	// SlotMinutes is the shortest free interval worth reporting.
	SlotMinutes = 30
)

var clockPattern = regexp.MustCompile(`^([01]?[0-9]|2[0-3]):([0-5][0-9])$`)

// NormalizeTime zero-pads each ":"-separated component of raw to two digits.
// Empty input yields an empty string. Values are not range checked.
func NormalizeTime(raw string) string {
	if raw == "" {
		return ""
	}
	parts := strings.Split(raw, ":")
	for i, part := range parts {
		if len(part) < 2 {
			parts[i] = strings.Repeat("0", 2-len(part)) + part
		}
	}
	return strings.Join(parts, ":")
}

// IsValidTime reports whether raw is an H:MM or HH:MM clock value inside
// business hours. The closing hour only accepts minute 00.
func IsValidTime(raw string) bool {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return false
	}
	minutes, err := ParseClock(trimmed)
	if err != nil {
		return false
	}
	return minutes >= BusinessStart && minutes <= BusinessEnd
}

// ParseClock converts an H:MM or HH:MM value into minutes since midnight.
func ParseClock(raw string) (int, error) {
	m := clockPattern.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return 0, fmt.Errorf("invalid clock value %q", raw)
	}
	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	return hour*60 + minute, nil
}

// FormatClock renders minutes since midnight as HH:MM.
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// Hours converts minutes since midnight to fractional hours.
func Hours(minutes int) float64 {
	return float64(minutes) / 60
}

// MinuteOfDay returns the wall-clock minute of t in its own location.
func MinuteOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

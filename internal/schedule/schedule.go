// Package schedule parses the delivery times accepted by one-to-one sends.
package schedule

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// PlatformLayout is the dd/mm/yyyy HH:mm:ss layout Pure360 expects.
const PlatformLayout = "02/01/2006 15:04:05"

// Matches: "30m", "2h", "1d", "in 2h"
var offsetRegex = regexp.MustCompile(`^(?:in\s+)?(\d+)(w|d|h|m)$`)

var absoluteLayouts = []string{
	PlatformLayout,
	"02/01/2006 15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseDeliveryTime parses a delivery time relative to now.
// Supports: "now", "30m", "in 2h", "tomorrow", "monday", "next fri",
// "2026-01-27", "2026-01-27 10:30", "27/01/2026 10:30:00" and RFC3339.
// Day-only forms resolve to midnight in now's location.
func ParseDeliveryTime(s string, now time.Time) (time.Time, error) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return time.Time{}, fmt.Errorf("empty delivery time")
	}

	input := strings.ToLower(raw)

	switch input {
	case "now":
		return now, nil
	case "today":
		return startOfDay(now), nil
	case "tomorrow":
		return startOfDay(now).AddDate(0, 0, 1), nil
	}

	if t, ok := parseWeekday(input, now); ok {
		return t, nil
	}

	if matches := offsetRegex.FindStringSubmatch(input); len(matches) == 3 {
		unit := unitDuration[matches[2]]
		value, err := strconv.ParseInt(matches[1], 10, 64)
		if err != nil || value < 1 || value > math.MaxInt64/int64(unit) {
			return time.Time{}, fmt.Errorf("invalid delivery offset %q", raw)
		}
		return now.Add(time.Duration(value) * unit), nil
	}

	for _, layout := range absoluteLayouts {
		if t, err := time.ParseInLocation(layout, raw, now.Location()); err == nil {
			return t, nil
		}
	}

	// The platform layout carries no zone, so zoned input is moved to now's.
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.In(now.Location()), nil
	}

	return time.Time{}, fmt.Errorf("invalid delivery time %q", raw)
}

var unitDuration = map[string]time.Duration{
	"w": 7 * 24 * time.Hour,
	"d": 24 * time.Hour,
	"h": time.Hour,
	"m": time.Minute,
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// parseWeekday resolves "monday", "this mon" and "next mon". A bare
// weekday naming today resolves to today; "next" always moves a week on.
func parseWeekday(expr string, now time.Time) (time.Time, bool) {
	input := strings.TrimSpace(expr)
	next := false
	if rest, ok := strings.CutPrefix(input, "next "); ok {
		next = true
		input = strings.TrimSpace(rest)
	} else if rest, ok := strings.CutPrefix(input, "this "); ok {
		input = strings.TrimSpace(rest)
	}

	weekday, ok := weekdays[input]
	if !ok {
		return time.Time{}, false
	}

	base := startOfDay(now)
	delta := (int(weekday) - int(base.Weekday()) + 7) % 7
	if next && delta == 0 {
		delta = 7
	}
	return base.AddDate(0, 0, delta), true
}

var weekdays = map[string]time.Weekday{
	"sun":       time.Sunday,
	"sunday":    time.Sunday,
	"mon":       time.Monday,
	"monday":    time.Monday,
	"tue":       time.Tuesday,
	"tues":      time.Tuesday,
	"tuesday":   time.Tuesday,
	"wed":       time.Wednesday,
	"wednesday": time.Wednesday,
	"thu":       time.Thursday,
	"thurs":     time.Thursday,
	"thursday":  time.Thursday,
	"fri":       time.Friday,
	"friday":    time.Friday,
	"sat":       time.Saturday,
	"saturday":  time.Saturday,
}

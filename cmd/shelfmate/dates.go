package main

import (
	"strconv"
	"strings"
	"time"
)

var monthNames = map[string]time.Month{
	"jan": time.January, "january": time.January,
	"feb": time.February, "february": time.February,
	"mar": time.March, "march": time.March,
	"apr": time.April, "april": time.April,
	"may": time.May,
	"jun": time.June, "june": time.June,
	"jul": time.July, "july": time.July,
	"aug": time.August, "august": time.August,
	"sep": time.September, "september": time.September,
	"oct": time.October, "october": time.October,
	"nov": time.November, "november": time.November,
	"dec": time.December, "december": time.December,
}

// parseFlexibleDate accepts the formats people actually type: "today",
// "June 2024", "2024 June", "15-03-2024", "15/03/2024", "2024-03-15".
// Returns false when nothing matches.
func parseFlexibleDate(text string) (time.Time, bool) {
	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" {
		return time.Time{}, false
	}
	if text == "today" {
		now := time.Now()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), true
	}

	// "June 2024" or "2024 June"
	if parts := strings.Fields(text); len(parts) == 2 {
		if month, ok := monthNames[parts[0]]; ok {
			if year, err := strconv.Atoi(parts[1]); err == nil {
				return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC), true
			}
		}
		if month, ok := monthNames[parts[1]]; ok {
			if year, err := strconv.Atoi(parts[0]); err == nil {
				return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC), true
			}
		}
	}

	// dd-mm-yyyy, dd/mm/yyyy, yyyy-mm-dd
	for _, sep := range []string{"-", "/"} {
		segs := strings.Split(text, sep)
		if len(segs) != 3 {
			continue
		}
		nums := make([]int, 3)
		ok := true
		for i, seg := range segs {
			n, err := strconv.Atoi(seg)
			if err != nil {
				ok = false
				break
			}
			nums[i] = n
		}
		if !ok {
			continue
		}
		year, month, day := nums[2], nums[1], nums[0]
		if len(segs[0]) == 4 {
			year, day = nums[0], nums[2]
		}
		t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
		// time.Date silently normalizes rollovers like day 32.
		if t.Year() == year && int(t.Month()) == month && t.Day() == day {
			return t, true
		}
	}

	return time.Time{}, false
}

package interpreter

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/andresuchdata/stockbin/internal/domain"
)

var (
	explicitRangePattern = regexp.MustCompile(`from\s+(\d{4}-\d{2}-\d{2})\s+to\s+(\d{4}-\d{2}-\d{2})`)
	lastNDaysPattern     = regexp.MustCompile(`last\s+(\d+)\s+days?`)
	reportWordPattern    = regexp.MustCompile(`\b(report|activity|summary)\b`)
)

// ParseDateRange recognises the report phrases of a stock command. Ranges are
// inclusive calendar days in now's location. "today" and "this month" only
// count when the text also asks for a report, since "added today" is a stock field.
func ParseDateRange(text string, now time.Time) (domain.DateRange, bool) {
	lower := strings.ToLower(strings.TrimSpace(text))
	today := domain.Day(now)

	if m := explicitRangePattern.FindStringSubmatch(lower); m != nil {
		from, err1 := time.ParseInLocation(domain.DateLayout, m[1], now.Location())
		to, err2 := time.ParseInLocation(domain.DateLayout, m[2], now.Location())
		if err1 == nil && err2 == nil {
			if to.Before(from) {
				from, to = to, from
			}
			return domain.DateRange{From: from, To: to}, true
		}
	}

	if m := lastNDaysPattern.FindStringSubmatch(lower); m != nil {
		n, err := strconv.Atoi(m[1])
		if err == nil && n > 0 {
			return domain.DateRange{From: today.AddDate(0, 0, -(n - 1)), To: today}, true
		}
	}

	if strings.Contains(lower, "yesterday") {
		y := today.AddDate(0, 0, -1)
		return domain.DateRange{From: y, To: y}, true
	}

	firstOfMonth := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location())
	if strings.Contains(lower, "last month") {
		return domain.DateRange{From: firstOfMonth.AddDate(0, -1, 0), To: firstOfMonth.AddDate(0, 0, -1)}, true
	}

	if reportWordPattern.MatchString(lower) {
		if strings.Contains(lower, "this month") {
			return domain.DateRange{From: firstOfMonth, To: today}, true
		}
		if strings.Contains(lower, "today") {
			return domain.DateRange{From: today, To: today}, true
		}
	}

	return domain.DateRange{}, false
}

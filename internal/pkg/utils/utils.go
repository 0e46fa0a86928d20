package utils

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the provider date format, YYYY-MM-DD.
const DateLayout = "2006-01-02"

// CrawlDate returns the departure date crawled daysAhead days after now.
// Example: 2025-01-01, 187 -> "2025-07-07"
func CrawlDate(now time.Time, daysAhead int) string {
	return now.AddDate(0, 0, daysAhead).Format(DateLayout)
}

// ConvertMinutesToDuration convert minutes to duration format string
// Example: 125 -> "2h 5m"
func ConvertMinutesToDuration(durationInMinutes int64) string {

	h := durationInMinutes / 60
	m := durationInMinutes % 60

	if m == 0 {
		return fmt.Sprintf("%dh", h)
	}

	if h == 0 {
		return fmt.Sprintf("%dm", m)
	}

	return fmt.Sprintf("%dh %dm", h, m)
}

// FormatEuro formats an amount with two decimals and a thousands separator.
// Example: 1234.5 -> "€1,234.50"
func FormatEuro(amount float64) string {
	negative := amount < 0
	if negative {
		amount = -amount
	}

	str := strconv.FormatFloat(amount, 'f', 2, 64)
	whole, cents, _ := strings.Cut(str, ".")

	var result []byte
	count := 0
	for i := len(whole) - 1; i >= 0; i-- {
		result = append([]byte{whole[i]}, result...)
		count++
		if count%3 == 0 && i != 0 {
			result = append([]byte{','}, result...)
		}
	}

	if negative {
		return "-€" + string(result) + "." + cents
	}
	return "€" + string(result) + "." + cents
}

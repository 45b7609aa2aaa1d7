package utils

import (
	"fmt"
	"math"
	"time"
)

// Fixed-size buckets: a month is 30 days and a year is 365.
var timeUnits = []struct {
	name    string
	seconds float64
}{
	{"year", 365 * 24 * 60 * 60},
	{"month", 30 * 24 * 60 * 60},
	{"day", 24 * 60 * 60},
	{"hour", 60 * 60},
	{"minute", 60},
}

// TimeAgo describes t relative to now using the largest unit whose interval
// is strictly greater than one, e.g. "3 days ago". Anything shorter than
// that, including timestamps in the future, is "just now".
func TimeAgo(t, now time.Time) string {
	seconds := now.Sub(t).Seconds()

	for _, u := range timeUnits {
		interval := seconds / u.seconds
		if interval > 1 {
			n := int64(math.Floor(interval))
			if n == 1 {
				return fmt.Sprintf("1 %s ago", u.name)
			}
			return fmt.Sprintf("%d %ss ago", n, u.name)
		}
	}
	return "just now"
}

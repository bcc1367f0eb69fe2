package normalize

import (
	"regexp"
	"strconv"
	"strings"
)

var isoDurationPattern = regexp.MustCompile(`^P(?:(\d+)D)?T?(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?$`)

// ParseDuration converts an ISO-8601 duration such as "PT1H30M" to whole
// minutes. Seconds round up. Returns nil for non-strings, strings that do
// not match, and totals that are not positive.
func ParseDuration(v any) *int {
	s, ok := v.(string)
	if !ok {
		return nil
	}

	m := isoDurationPattern.FindStringSubmatch(strings.ToUpper(strings.TrimSpace(s)))
	if m == nil {
		return nil
	}

	days := atoiOrZero(m[1])
	hours := atoiOrZero(m[2])
	minutes := atoiOrZero(m[3])
	seconds := atoiOrZero(m[4])

	total := days*1440 + hours*60 + minutes + (seconds+59)/60
	if total <= 0 {
		return nil
	}
	return &total
}

func atoiOrZero(s string) int {
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

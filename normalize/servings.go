package normalize

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
)

var firstIntegerPattern = regexp.MustCompile(`\d+`)

// ParseServings reads a yield value. Numbers are floored and clamped to a
// minimum of 1; text yields the first integer it contains ("Serves 4-6"
// gives 4); a list uses its first element. Anything else is nil.
func ParseServings(v any) *int {
	switch t := v.(type) {
	case nil:
		return nil
	case int:
		return clampServings(float64(t))
	case float64:
		return clampServings(t)
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return nil
		}
		return clampServings(f)
	case string:
		match := firstIntegerPattern.FindString(t)
		if match == "" {
			return nil
		}
		n, err := strconv.Atoi(match)
		if err != nil {
			return nil
		}
		return &n
	case []any:
		if len(t) == 0 {
			return nil
		}
		return ParseServings(t[0])
	}
	return nil
}

func clampServings(f float64) *int {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	n := int(math.Floor(f))
	if n < 1 {
		n = 1
	}
	return &n
}

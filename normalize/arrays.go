package normalize

import (
	"encoding/json"
	"strconv"
	"strings"
)

// NutritionFields are the positional names of the 7-element nutrition array
// in the tabular dumps.
var NutritionFields = []string{
	"calories",
	"total_fat",
	"sugar",
	"sodium",
	"protein",
	"saturated_fat",
	"carbohydrates",
}

// ParseArrayString parses an array serialized as a string, such as
// `['1 cup flour', '2 eggs']`. Strict JSON is tried first, then the
// single-quote form with quotes swapped, then a Python literal scan that
// copes with apostrophes inside double-quoted items. Malformed input yields
// an empty, non-nil slice.
func ParseArrayString(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return []string{}
	}

	if items, ok := decodeJSONArray(s); ok {
		return items
	}
	if items, ok := decodeJSONArray(strings.ReplaceAll(s, "'", `"`)); ok {
		return items
	}
	if items, ok := scanQuotedList(s); ok {
		return items
	}
	return []string{}
}

func decodeJSONArray(s string) ([]string, bool) {
	var raw []any
	if err := json.Unmarshal([]byte(s), &raw); err != nil {
		return nil, false
	}
	items := make([]string, 0, len(raw))
	for _, v := range raw {
		if text := scalarText(v); text != "" {
			items = append(items, text)
		}
	}
	return items, true
}

// scanQuotedList reads a bracketed, comma separated list of single or
// double quoted strings with backslash escapes.
func scanQuotedList(s string) ([]string, bool) {
	if !strings.HasPrefix(s, "[") || !strings.HasSuffix(s, "]") {
		return nil, false
	}
	body := []rune(s[1 : len(s)-1])
	items := []string{}

	i := 0
	for i < len(body) {
		for i < len(body) && (body[i] == ' ' || body[i] == ',' || body[i] == '\n' || body[i] == '\t') {
			i++
		}
		if i >= len(body) {
			break
		}

		quote := body[i]
		if quote != '\'' && quote != '"' {
			return nil, false
		}
		i++

		var b strings.Builder
		closed := false
		for i < len(body) {
			ch := body[i]
			if ch == '\\' && i+1 < len(body) {
				b.WriteRune(body[i+1])
				i += 2
				continue
			}
			if ch == quote {
				closed = true
				i++
				break
			}
			b.WriteRune(ch)
			i++
		}
		if !closed {
			return nil, false
		}
		if item := strings.TrimSpace(b.String()); item != "" {
			items = append(items, item)
		}
	}
	return items, true
}

// ParseNutrition maps the positional nutrition array onto NutritionFields.
// Anything other than at least 7 numbers returns nil.
func ParseNutrition(s string) map[string]string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	var raw []any
	if err := json.Unmarshal([]byte(strings.ReplaceAll(s, "'", `"`)), &raw); err != nil {
		return nil
	}
	if len(raw) < len(NutritionFields) {
		return nil
	}

	nutrition := make(map[string]string, len(NutritionFields))
	for i, name := range NutritionFields {
		value, ok := nutritionValue(raw[i])
		if !ok {
			return nil
		}
		nutrition[name] = strconv.FormatFloat(value, 'f', -1, 64)
	}
	return nutrition
}

// nutritionValue accepts a number or a string holding one.
func nutritionValue(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	}
	return 0, false
}

// scalarText renders a decoded JSON scalar as trimmed text.
func scalarText(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case json.Number:
		return t.String()
	}
	return ""
}

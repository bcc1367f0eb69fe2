package normalize

import "strings"

// Schema.org fields are polymorphic. Each field is classified into one of a
// small closed set of shapes and resolved by a pure function.

type instructionShape int

const (
	instructionUnknown instructionShape = iota
	instructionText                     // "Mix. Bake."
	instructionList                     // ["Mix", {...}, ...]
	instructionStep                     // {"@type": "HowToStep", "text": ...}
	instructionSection                  // {"@type": "HowToSection", "itemListElement": [...]}
)

// maxInstructionDepth bounds section nesting in hostile documents.
const maxInstructionDepth = 8

func classifyInstruction(v any) instructionShape {
	switch t := v.(type) {
	case string:
		return instructionText
	case []any:
		return instructionList
	case map[string]any:
		if hasType(t, "HowToSection") || t["itemListElement"] != nil {
			return instructionSection
		}
		return instructionStep
	}
	return instructionUnknown
}

// resolveInstructions flattens any instruction shape into ordered steps.
func resolveInstructions(v any) []string {
	steps := []string{}
	return appendInstructions(steps, v, 0)
}

func appendInstructions(steps []string, v any, depth int) []string {
	if depth > maxInstructionDepth {
		return steps
	}

	switch classifyInstruction(v) {
	case instructionText:
		steps = append(steps, splitLines(cleanText(v.(string)))...)
	case instructionList:
		for _, item := range v.([]any) {
			steps = appendInstructions(steps, item, depth+1)
		}
	case instructionSection:
		steps = appendInstructions(steps, v.(map[string]any)["itemListElement"], depth+1)
	case instructionStep:
		step := v.(map[string]any)
		for _, key := range []string{"text", "name", "description"} {
			if text, ok := step[key].(string); ok {
				if text = cleanText(text); text != "" {
					steps = append(steps, text)
					break
				}
			}
		}
	}
	return steps
}

type imageShape int

const (
	imageUnknown imageShape = iota
	imageURL                // "https://..."
	imageList               // ["https://...", {...}]
	imageObject             // {"@type": "ImageObject", "url": ...}
)

func classifyImage(v any) imageShape {
	switch v.(type) {
	case string:
		return imageURL
	case []any:
		return imageList
	case map[string]any:
		return imageObject
	}
	return imageUnknown
}

// resolveImages flattens any image shape into unique URLs, in order.
func resolveImages(v any) []string {
	return appendImages([]string{}, v, 0)
}

func appendImages(images []string, v any, depth int) []string {
	if depth > maxInstructionDepth {
		return images
	}

	switch classifyImage(v) {
	case imageURL:
		images = appendUnique(images, strings.TrimSpace(v.(string)))
	case imageList:
		for _, item := range v.([]any) {
			images = appendImages(images, item, depth+1)
		}
	case imageObject:
		obj := v.(map[string]any)
		// url can hold any image shape, including a list.
		for _, key := range []string{"url", "contentUrl"} {
			before := len(images)
			images = appendImages(images, obj[key], depth+1)
			if len(images) > before {
				break
			}
		}
	}
	return images
}

// textList resolves a field that may be a string, a comma separated string
// or an array of strings. splitCommas controls whether a lone string is split.
func textList(v any, splitCommas bool) []string {
	switch t := v.(type) {
	case string:
		if splitCommas {
			return splitList(t)
		}
		return splitLines(cleanText(t))
	case []any:
		out := []string{}
		for _, item := range t {
			if s, ok := item.(string); ok {
				if s = cleanText(s); s != "" {
					out = append(out, s)
				}
			}
		}
		return out
	}
	return []string{}
}

// hasType reports whether a node's @type is, or includes, want.
func hasType(node map[string]any, want string) bool {
	switch t := node["@type"].(type) {
	case string:
		return strings.EqualFold(t, want) || strings.EqualFold(strings.TrimPrefix(t, "schema:"), want)
	case []any:
		for _, item := range t {
			if s, ok := item.(string); ok && strings.EqualFold(s, want) {
				return true
			}
		}
	}
	return false
}

package search

import (
	"strings"
	"unicode"

	"github.com/poiesic/larder/core"
)

// Stop words to filter out when checking for verbatim matches
var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "be": true, "is": true, "are": true,
	"was": true, "to": true, "of": true, "and": true, "in": true, "that": true,
	"have": true, "it": true, "for": true, "not": true, "on": true, "with": true,
	"as": true, "you": true, "do": true, "at": true, "this": true, "but": true,
	"by": true, "from": true, "recipe": true, "recipes": true,
}

// tokenizeAndFilter lowercases text, splits it on anything that is not a
// letter or digit and drops stop words.
func tokenizeAndFilter(text string) []string {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	filtered := words[:0]
	for _, word := range words {
		if !stopWords[word] {
			filtered = append(filtered, word)
		}
	}
	return filtered
}

// containsAllQueryWords checks if all query words (after filtering) appear in the document
func containsAllQueryWords(document, query string) bool {
	queryWords := tokenizeAndFilter(query)
	if len(queryWords) == 0 {
		return false
	}

	docWords := tokenizeAndFilter(document)
	docWordSet := make(map[string]bool, len(docWords))
	for _, word := range docWords {
		docWordSet[word] = true
	}

	// Check if all query words exist in document
	for _, qWord := range queryWords {
		if !docWordSet[qWord] {
			return false
		}
	}

	return true
}

// searchableText is the part of a recipe the text boost looks at.
func searchableText(r *core.Recipe) string {
	parts := make([]string, 0, 3+len(r.Tags)+len(r.Ingredients))
	parts = append(parts, r.Name, r.Cuisine, string(r.Difficulty))
	parts = append(parts, r.Tags...)
	parts = append(parts, r.Ingredients...)
	return strings.Join(parts, " ")
}

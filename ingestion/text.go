package ingestion

import (
	"strings"

	"github.com/poiesic/larder/core"
)

// maxEmbeddedIngredients bounds how many ingredients feed the embedding text.
const maxEmbeddedIngredients = 10

// EmbeddingText builds the text a recipe's vector is computed from: name,
// description, cuisine, tags and the first ingredients, each non-empty part
// separated by ". ".
func EmbeddingText(r *core.Recipe) string {
	parts := make([]string, 0, 5)
	add := func(s string) {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}

	add(r.Name)
	add(r.Description)
	if r.Cuisine != "" {
		add("Cuisine: " + r.Cuisine)
	}
	if len(r.Tags) > 0 {
		add("Tags: " + strings.Join(r.Tags, ", "))
	}
	ingredients := r.Ingredients
	if len(ingredients) > maxEmbeddedIngredients {
		ingredients = ingredients[:maxEmbeddedIngredients]
	}
	add(strings.Join(ingredients, ", "))

	return strings.Join(parts, ". ")
}

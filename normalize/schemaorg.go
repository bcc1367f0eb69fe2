// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package normalize

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/poiesic/larder/core"
)

// ExtractSchemaOrgRecipes finds every Recipe node in a JSON(-LD) document.
// The document may be a single object, an array, or use @graph; Recipe
// nodes nested under mainEntity are found too.
func ExtractSchemaOrgRecipes(data []byte) ([]map[string]any, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: schema.org document: %w", core.ErrMalformedSource, err)
	}

	var recipes []map[string]any
	collectRecipes(doc, &recipes, 0)
	return recipes, nil
}

func collectRecipes(v any, out *[]map[string]any, depth int) {
	if depth > maxInstructionDepth {
		return
	}
	switch t := v.(type) {
	case []any:
		for _, item := range t {
			collectRecipes(item, out, depth+1)
		}
	case map[string]any:
		if hasType(t, "Recipe") {
			*out = append(*out, t)
			return
		}
		collectRecipes(t["@graph"], out, depth+1)
		collectRecipes(t["mainEntity"], out, depth+1)
	}
}

// NormalizeSchemaOrg decodes one schema.org Recipe object and maps it.
func NormalizeSchemaOrg(raw []byte, sc SourceContext) (core.Recipe, error) {
	var node map[string]any
	if err := json.Unmarshal(raw, &node); err != nil {
		return core.Recipe{}, fmt.Errorf("%w: schema.org recipe: %w", core.ErrMalformedSource, err)
	}
	if node == nil {
		return core.Recipe{}, fmt.Errorf("%w: schema.org recipe is null", core.ErrMalformedSource)
	}
	return NormalizeSchemaOrgNode(node, sc), nil
}

// NormalizeSchemaOrgNode maps a decoded schema.org Recipe node.
func NormalizeSchemaOrgNode(node map[string]any, sc SourceContext) core.Recipe {
	recipe := core.Recipe{
		Name:            firstLine(node["name"]),
		Description:     plainText(node["description"]),
		Ingredients:     textList(firstPresent(node, "recipeIngredient", "ingredients"), false),
		Instructions:    resolveInstructions(node["recipeInstructions"]),
		PrepTimeMinutes: ParseDuration(node["prepTime"]),
		CookTimeMinutes: ParseDuration(node["cookTime"]),
		Servings:        ParseServings(node["recipeYield"]),
		Tags:            []string{},
		Images:          resolveImages(firstPresent(node, "image", "thumbnailUrl")),
		Nutrition:       schemaNutrition(node["nutrition"]),
	}

	if recipe.PrepTimeMinutes == nil && recipe.CookTimeMinutes == nil {
		recipe.CookTimeMinutes = ParseDuration(node["totalTime"])
	}

	categories := textList(node["recipeCategory"], true)
	categories = append(categories, textList(node["keywords"], true)...)
	for _, c := range categories {
		recipe.AddTag(c)
	}

	if cuisines := textList(node["recipeCuisine"], true); len(cuisines) > 0 {
		recipe.Cuisine = cuisines[0]
	} else {
		recipe.Cuisine = DetectCuisine(categories)
	}
	recipe.Difficulty = EstimateDifficulty(categories, len(recipe.Ingredients), len(recipe.Instructions))

	recipe.SourceURL = plainText(node["url"])
	if recipe.SourceURL == "" {
		if id := plainText(node["@id"]); strings.HasPrefix(id, "http") {
			recipe.SourceURL = strings.SplitN(id, "#", 2)[0]
		}
	}
	recipe.Source = hostname(recipe.SourceURL)
	if recipe.Source == "" {
		recipe.Source = sc.Name
	}

	if published, ok := node["datePublished"].(string); ok {
		recipe.PublishedDate = parseDate(published)
	}
	return recipe
}

// schemaNutrition flattens a NutritionInformation object. Keys starting
// with "@" are dropped; an empty result is nil.
func schemaNutrition(v any) map[string]string {
	obj, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	nutrition := make(map[string]string)
	for key, value := range obj {
		if strings.HasPrefix(key, "@") {
			continue
		}
		if text := scalarText(value); text != "" {
			nutrition[key] = text
		}
	}
	if len(nutrition) == 0 {
		return nil
	}
	return nutrition
}

func firstPresent(node map[string]any, keys ...string) any {
	for _, key := range keys {
		if v, ok := node[key]; ok && v != nil {
			return v
		}
	}
	return nil
}

// plainText returns cleaned text for string values, "" otherwise.
func plainText(v any) string {
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return cleanText(s)
}

func firstLine(v any) string {
	lines := splitLines(plainText(v))
	if len(lines) == 0 {
		return ""
	}
	return lines[0]
}

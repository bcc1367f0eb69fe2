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
	"regexp"
	"strings"

	"github.com/poiesic/larder/core"
)

const (
	mealDBSlots   = 20
	mealDBSite    = "themealdb.com"
	unknownRegion = "unknown"
)

var stepMarkerPattern = regexp.MustCompile(`(?i)^step\s*\d+[.:)]?$`)

// Meal is one raw TheMealDB meal object.
type Meal map[string]any

// NormalizeMealDB decodes and maps a raw meal object. Only a payload that is
// not a JSON object is an error.
func NormalizeMealDB(raw []byte, sc SourceContext) (core.Recipe, error) {
	var meal Meal
	if err := json.Unmarshal(raw, &meal); err != nil {
		return core.Recipe{}, fmt.Errorf("%w: meal: %w", core.ErrMalformedSource, err)
	}
	if meal == nil {
		return core.Recipe{}, fmt.Errorf("%w: meal is null", core.ErrMalformedSource)
	}
	return NormalizeMeal(meal, sc), nil
}

// NormalizeMeal maps an already decoded meal.
func NormalizeMeal(meal Meal, sc SourceContext) core.Recipe {
	recipe := core.Recipe{
		Name:         cleanText(meal.field("strMeal")),
		Ingredients:  mealIngredients(meal),
		Instructions: mealInstructions(meal.field("strInstructions")),
		Tags:         []string{},
		Images:       []string{},
	}

	category := meal.field("strCategory")
	recipe.AddTag(category)
	for _, tag := range splitList(meal.field("strTags")) {
		recipe.AddTag(tag)
	}

	if thumb := meal.field("strMealThumb"); thumb != "" {
		recipe.Images = append(recipe.Images, thumb)
	}

	area := meal.field("strArea")
	if area != "" && strings.ToLower(area) != unknownRegion {
		recipe.Cuisine = area
	} else {
		recipe.Cuisine = DetectCuisine(recipe.Tags)
	}

	recipe.Difficulty = EstimateDifficulty(recipe.Tags, len(recipe.Ingredients), len(recipe.Instructions))

	recipe.Source = sc.Name
	if recipe.Source == "" {
		recipe.Source = mealDBSite
	}
	recipe.SourceURL = meal.field("strSource")
	if recipe.SourceURL == "" && sc.BaseURL != "" {
		if id := meal.field("idMeal"); id != "" {
			recipe.SourceURL = fmt.Sprintf("%s/meal/%s", strings.TrimSuffix(sc.BaseURL, "/"), id)
		}
	}

	recipe.PublishedDate = parseDate(meal.field("dateModified"))
	return recipe
}

// mealIngredients pairs the positional strIngredient{i}/strMeasure{i} slots.
func mealIngredients(meal Meal) []string {
	ingredients := []string{}
	for i := 1; i <= mealDBSlots; i++ {
		ingredient := meal.field(fmt.Sprintf("strIngredient%d", i))
		if ingredient == "" {
			continue
		}
		measure := meal.field(fmt.Sprintf("strMeasure%d", i))
		ingredients = append(ingredients, strings.TrimSpace(measure+" "+ingredient))
	}
	return ingredients
}

func mealInstructions(text string) []string {
	steps := []string{}
	for _, line := range splitLines(cleanText(text)) {
		if stepMarkerPattern.MatchString(line) {
			continue
		}
		steps = append(steps, line)
	}
	return steps
}

// field returns a trimmed scalar field; null and missing fields are "".
func (m Meal) field(key string) string {
	return scalarText(m[key])
}

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
	"fmt"
	"strconv"
	"strings"

	"github.com/poiesic/larder/core"
)

// FoodComRow is one row of the Kaggle food.com RAW_recipes dump. List
// columns (tags, nutrition, steps, ingredients) hold array strings.
type FoodComRow struct {
	Name          string
	ID            string
	Minutes       string
	ContributorID string
	Submitted     string
	Tags          string
	Nutrition     string
	NSteps        string
	Steps         string
	Description   string
	Ingredients   string
	NIngredients  string
}

const foodComSite = "food.com"

// NormalizeFoodCom maps a food.com row. Malformed list columns become empty
// lists and malformed nutrition becomes nil; the recipe is still returned
// so validation can decide whether to skip it.
func NormalizeFoodCom(row FoodComRow, sc SourceContext) core.Recipe {
	id := strings.TrimSpace(row.ID)
	recipe := core.Recipe{
		Name:         titleCase(row.Name),
		Description:  cleanText(row.Description),
		Ingredients:  ParseArrayString(row.Ingredients),
		Instructions: ParseArrayString(row.Steps),
		Tags:         []string{},
		Images:       []string{},
		Nutrition:    ParseNutrition(row.Nutrition),
	}

	for _, tag := range ParseArrayString(row.Tags) {
		recipe.AddTag(tag)
	}

	if minutes, err := strconv.Atoi(strings.TrimSpace(row.Minutes)); err == nil && minutes > 0 {
		recipe.CookTimeMinutes = &minutes
	}

	recipe.PublishedDate = parseDate(row.Submitted)

	if id != "" {
		recipe.Source = fmt.Sprintf("%s/recipe/%s", foodComSite, id)
		base := sc.BaseURL
		if base == "" {
			base = "https://www." + foodComSite
		}
		recipe.SourceURL = fmt.Sprintf("%s/recipe/%s", strings.TrimSuffix(base, "/"), id)
	} else {
		recipe.Source = sc.Name
	}

	recipe.Cuisine = DetectCuisine(recipe.Tags)
	recipe.Difficulty = EstimateDifficulty(recipe.Tags, len(recipe.Ingredients), len(recipe.Instructions))
	return recipe
}

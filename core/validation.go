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

package core

import (
	"fmt"
	"strings"
)

const minInstructionChars = 50

// ValidateRecipe reports whether a Recipe is ingestible.
//
// Validation rules:
//   - Name must not be blank
//   - Ingredients must not be empty
//   - Instructions must not be empty when strict is set
//
// NOT validated (optional enrichment):
//   - times, servings, images, nutrition
//   - Source (storage keys still work with an empty source)
func ValidateRecipe(recipe *Recipe, strict bool) error {
	if recipe == nil {
		return fmt.Errorf("%w: recipe is nil", ErrInvalidRecipe)
	}

	if strings.TrimSpace(recipe.Name) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidRecipe, ErrEmptyName)
	}

	if len(recipe.Ingredients) == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidRecipe, ErrNoIngredients)
	}

	if strict && len(recipe.Instructions) == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidRecipe, ErrNoInstructions)
	}

	return nil
}

// QualityIssues lists the non-blocking problems of a recipe, the same
// checks a curator runs before publishing: the required fields plus
// short instructions, missing images and a missing source URL.
func QualityIssues(recipe *Recipe) []string {
	var issues []string
	if strings.TrimSpace(recipe.Name) == "" {
		issues = append(issues, "Missing name")
	}
	if len(recipe.Ingredients) == 0 {
		issues = append(issues, "No ingredients")
	}
	if len(recipe.Instructions) == 0 {
		issues = append(issues, "No instructions")
	} else if instructionLength(recipe.Instructions) < minInstructionChars {
		issues = append(issues, "Instructions too short")
	}
	if len(recipe.Images) == 0 {
		issues = append(issues, "No images")
	}
	if recipe.SourceURL == "" {
		issues = append(issues, "Missing source URL")
	}
	return issues
}

func instructionLength(steps []string) int {
	n := 0
	for _, s := range steps {
		n += len(strings.TrimSpace(s))
	}
	return n
}

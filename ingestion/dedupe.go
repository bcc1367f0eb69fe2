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

package ingestion

import (
	"context"

	"github.com/poiesic/larder/core"
	"github.com/poiesic/larder/storage"
)

// Match describes why a recipe is considered already stored.
type Match int

const (
	// NoMatch means the recipe is new.
	NoMatch Match = iota
	// MatchNameSource means a recipe with the same name exists for the same source.
	MatchNameSource
	// MatchSourceURL means a recipe with the same source URL exists.
	MatchSourceURL
)

func (m Match) String() string {
	switch m {
	case MatchNameSource:
		return "duplicate name and source"
	case MatchSourceURL:
		return "duplicate source url"
	default:
		return "new"
	}
}

// DuplicateChecker asks storage whether a recipe is already present.
// Names are compared exactly; URLs after trimming surrounding space.
type DuplicateChecker struct {
	recipes        storage.RecipeRepository
	checkSourceURL bool
}

// NewDuplicateChecker creates a checker. When checkSourceURL is false only
// the name and source are compared.
func NewDuplicateChecker(recipes storage.RecipeRepository, checkSourceURL bool) *DuplicateChecker {
	return &DuplicateChecker{recipes: recipes, checkSourceURL: checkSourceURL}
}

// Check returns the first match found, name and source first.
func (d *DuplicateChecker) Check(ctx context.Context, r *core.Recipe) (Match, error) {
	exists, err := d.recipes.ExistsByNameAndSource(ctx, r.Name, r.Source)
	if err != nil {
		return NoMatch, err
	}
	if exists {
		return MatchNameSource, nil
	}

	if !d.checkSourceURL || r.SourceURL == "" {
		return NoMatch, nil
	}
	exists, err = d.recipes.ExistsBySourceURL(ctx, r.SourceURL)
	if err != nil {
		return NoMatch, err
	}
	if exists {
		return MatchSourceURL, nil
	}
	return NoMatch, nil
}

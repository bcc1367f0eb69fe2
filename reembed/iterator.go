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

package reembed

import (
	"context"
	"fmt"

	"github.com/poiesic/larder/core"
	"github.com/poiesic/larder/storage"
)

// DefaultPageSize is the number of records read per page.
const DefaultPageSize = 100

// RecipeIterator walks every stored recipe in ID order.
type RecipeIterator struct {
	repo     storage.RecipeRepository
	pageSize int
}

// NewRecipeIterator creates an iterator reading pageSize records at a time.
// Non-positive sizes fall back to DefaultPageSize.
func NewRecipeIterator(repo storage.RecipeRepository, pageSize int) *RecipeIterator {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &RecipeIterator{repo: repo, pageSize: pageSize}
}

// ForEach calls fn with each page until the store is exhausted or fn fails.
// Pages are keyed on the last ID seen, so fn may update the records it gets.
// Context cancellation is checked before every page.
func (it *RecipeIterator) ForEach(ctx context.Context, fn func([]*core.IngestionRecord) error) error {
	var after core.ID
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		page, err := it.repo.ListRecipes(ctx, after, it.pageSize)
		if err != nil {
			return fmt.Errorf("listing recipes after %d: %w", after, err)
		}
		if len(page) == 0 {
			return nil
		}

		if err := fn(page); err != nil {
			return err
		}
		if len(page) < it.pageSize {
			return nil
		}
		after = page[len(page)-1].ID
	}
}

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

package badger

import "github.com/poiesic/larder/storage"

// NewRepositories creates the recipe and run repositories over backend.
// Caller must close the recipe repository before the backend.
func NewRepositories(backend *Backend) (storage.RecipeRepository, storage.RunRepository, error) {
	recipes, err := NewRecipeRepository(backend)
	if err != nil {
		return nil, nil, err
	}
	return recipes, NewRunRepository(backend), nil
}

// NewMemoryRepositories creates in-memory recipe and run repositories for testing.
// Returns recipeRepo, runRepo, backend, and error.
// Caller must close the recipe repo and backend when done.
func NewMemoryRepositories() (storage.RecipeRepository, storage.RunRepository, *Backend, error) {
	backend, err := OpenBackend("", true)
	if err != nil {
		return nil, nil, nil, err
	}

	recipes, runs, err := NewRepositories(backend)
	if err != nil {
		backend.Close()
		return nil, nil, nil, err
	}
	return recipes, runs, backend, nil
}

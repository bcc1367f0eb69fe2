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

import "errors"

// Domain validation errors
var (
	// ErrInvalidRecipe indicates a Recipe is not ingestible.
	ErrInvalidRecipe = errors.New("invalid recipe")

	// ErrEmptyName indicates the Name field is empty.
	ErrEmptyName = errors.New("missing name")

	// ErrNoIngredients indicates the recipe has no ingredients.
	ErrNoIngredients = errors.New("no ingredients")

	// ErrNoInstructions indicates a strict source produced a recipe without instructions.
	ErrNoInstructions = errors.New("no instructions")
)

// Source level errors. These are the only errors that escape the ingestion pipeline.
var (
	// ErrMalformedSource indicates raw input that cannot be parsed as structured data at all.
	ErrMalformedSource = errors.New("malformed source data")

	// ErrConfiguration indicates missing credentials or settings needed before any work starts.
	ErrConfiguration = errors.New("configuration error")
)

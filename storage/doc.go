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

// Package storage provides the storage abstraction layer for larder.
//
// RecipeRepository persists ingested recipes together with the indexes
// the duplicate checker needs (name+source and source URL) and answers
// nearest-neighbour queries by scanning stored vectors. RunRepository
// keeps the statistics of past ingestion runs.
//
// # Constructor Return Type Pattern
//
// Public constructors return interfaces so the pipeline never couples to
// BadgerDB specifics:
//
//	recipes, runs, err := badger.NewRepositories(backend)  // storage interfaces
//
// # Usage
//
//	backend, err := badger.OpenBackend("/path/to/db", false)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer backend.Close()
//
// Use in tests with in-memory storage:
//
//	recipes, runs, backend, err := badger.NewMemoryRepositories()
//
// # Serialization
//
// Records and runs are stored as JSON values; IDs as 8 big-endian bytes so
// keys sort numerically.
package storage

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

// Package search finds stored recipes by meaning.
//
// A query is embedded with the same model used at ingestion and compared
// against every stored vector. Recipes whose name, cuisine, tags or
// ingredients contain every query word get a fixed boost, so an exact
// "banana bread" beats a merely similar quick bread. Related recipes are
// found by comparing one stored vector with the rest.
package search

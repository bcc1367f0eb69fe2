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

package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"path/filepath"

	"github.com/poiesic/larder/core"
	"github.com/poiesic/larder/normalize"
)

const (
	// DefaultMealDBAPI is the public TheMealDB API root.
	DefaultMealDBAPI = "https://www.themealdb.com/api/json/v1/1"

	mealDBName    = "themealdb.com"
	mealDBSiteURL = "https://www.themealdb.com"
	mealDBFile    = "mealdb.json"
	mealDBLetters = "abcdefghijklmnopqrstuvwxyz"
)

// MealDB crawls TheMealDB by first letter and stores the raw meals.
type MealDB struct {
	api     string
	dir     string
	strict  bool
	fetcher *Fetcher
	logger  *slog.Logger
}

// NewMealDB creates the TheMealDB source storing its data under dir.
// An empty api uses DefaultMealDBAPI.
func NewMealDB(fetcher *Fetcher, dir, api string, strict bool) *MealDB {
	if api == "" {
		api = DefaultMealDBAPI
	}
	return &MealDB{
		api:     api,
		dir:     dir,
		strict:  strict,
		fetcher: fetcher,
		logger:  slog.Default().With("component", "source", "source", mealDBName),
	}
}

func (m *MealDB) Name() string    { return mealDBName }
func (m *MealDB) Strict() bool    { return m.strict }
func (m *MealDB) Available() bool { return fileExists(m.path()) }

func (m *MealDB) path() string {
	return filepath.Join(m.dir, mealDBFile)
}

type mealSearchResponse struct {
	Meals []normalize.Meal `json:"meals"`
}

// Download fetches every letter and writes the deduplicated meals. A
// failed letter is logged and skipped.
func (m *MealDB) Download(ctx context.Context) error {
	seen := make(map[string]struct{})
	var meals []normalize.Meal

	for _, letter := range mealDBLetters {
		endpoint := fmt.Sprintf("%s/search.php?f=%s", m.api, url.QueryEscape(string(letter)))
		body, err := m.fetcher.Get(ctx, endpoint)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			m.logger.Warn("letter failed", "letter", string(letter), "error", err)
			continue
		}

		var resp mealSearchResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			m.logger.Warn("letter response malformed", "letter", string(letter), "error", err)
			continue
		}
		for _, meal := range resp.Meals {
			if meal == nil {
				continue
			}
			id, _ := meal["idMeal"].(string)
			if id != "" {
				if _, dup := seen[id]; dup {
					continue
				}
				seen[id] = struct{}{}
			}
			meals = append(meals, meal)
		}
		m.logger.Debug("letter fetched", "letter", string(letter), "meals", len(resp.Meals))
	}

	if len(meals) == 0 {
		return fmt.Errorf("%w: no meals downloaded", ErrSourceMissing)
	}
	m.logger.Info("meals downloaded", "count", len(meals))
	return writeJSONFile(m.path(), meals)
}

// Load normalizes the stored meals. The file may hold a meal array or a
// raw API response.
func (m *MealDB) Load(ctx context.Context) ([]core.Recipe, error) {
	data, err := readSourceFile(m.path())
	if err != nil {
		return nil, err
	}

	meals, err := decodeMeals(data)
	if err != nil {
		return nil, err
	}

	sc := normalize.SourceContext{Name: mealDBName, BaseURL: mealDBSiteURL}
	recipes := make([]core.Recipe, 0, len(meals))
	for _, meal := range meals {
		if meal == nil {
			continue
		}
		recipes = append(recipes, normalize.NormalizeMeal(meal, sc))
	}
	return recipes, nil
}

func decodeMeals(data []byte) ([]normalize.Meal, error) {
	var meals []normalize.Meal
	if err := json.Unmarshal(data, &meals); err == nil {
		return meals, nil
	}
	var resp mealSearchResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("%w: meals: %w", core.ErrMalformedSource, err)
	}
	return resp.Meals, nil
}

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
	"archive/zip"
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/poiesic/larder/core"
	"github.com/poiesic/larder/normalize"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultKaggleAPI is the Kaggle REST API root.
	DefaultKaggleAPI = "https://www.kaggle.com/api/v1"
	// DefaultFoodComDataset is the Kaggle dataset holding the food.com dump.
	DefaultFoodComDataset = "shuyangli94/food-com-recipes-and-user-interactions"
	// DefaultFoodComFile is the recipe table of the dataset.
	DefaultFoodComFile = "RAW_recipes.csv"

	foodComName         = "food.com"
	maxParallelDownload = 3
)

var zipMagic = []byte("PK\x03\x04")

// KaggleCredentials authenticate dataset downloads.
type KaggleCredentials struct {
	Username string
	Key      string
}

// FoodCom reads the Kaggle food.com recipe dump. Files are either CSV with
// the RAW_recipes header or JSON arrays of objects with the same keys.
type FoodCom struct {
	api         string
	dataset     string
	files       []string
	dir         string
	credentials KaggleCredentials
	strict      bool
	fetcher     *Fetcher
	logger      *slog.Logger
}

// FoodComConfig configures the food.com source. Empty fields use defaults.
type FoodComConfig struct {
	API         string
	Dataset     string
	Files       []string
	Dir         string
	Credentials KaggleCredentials
	Strict      bool
}

// NewFoodCom creates the food.com source.
func NewFoodCom(fetcher *Fetcher, cfg FoodComConfig) *FoodCom {
	if cfg.API == "" {
		cfg.API = DefaultKaggleAPI
	}
	if cfg.Dataset == "" {
		cfg.Dataset = DefaultFoodComDataset
	}
	if len(cfg.Files) == 0 {
		cfg.Files = []string{DefaultFoodComFile}
	}
	return &FoodCom{
		api:         strings.TrimSuffix(cfg.API, "/"),
		dataset:     cfg.Dataset,
		files:       cfg.Files,
		dir:         cfg.Dir,
		credentials: cfg.Credentials,
		strict:      cfg.Strict,
		fetcher:     fetcher,
		logger:      slog.Default().With("component", "source", "source", foodComName),
	}
}

func (f *FoodCom) Name() string { return foodComName }
func (f *FoodCom) Strict() bool { return f.strict }

// Available reports whether every configured file is on disk.
func (f *FoodCom) Available() bool {
	for _, file := range f.files {
		if !fileExists(filepath.Join(f.dir, file)) {
			return false
		}
	}
	return true
}

// Download fetches the configured dataset files concurrently. Kaggle
// serves files zipped; archives are unpacked in place.
func (f *FoodCom) Download(ctx context.Context) error {
	if f.credentials.Username == "" || f.credentials.Key == "" {
		return fmt.Errorf("%w: kaggle username and key are required to download %s", core.ErrConfiguration, f.dataset)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelDownload)
	for _, file := range f.files {
		g.Go(func() error {
			return f.downloadFile(gctx, file)
		})
	}
	return g.Wait()
}

func (f *FoodCom) downloadFile(ctx context.Context, file string) error {
	endpoint := fmt.Sprintf("%s/datasets/download/%s/%s", f.api, f.dataset, file)
	target := filepath.Join(f.dir, file)
	archive := target + ".download"

	if err := f.fetcher.Download(ctx, endpoint, archive, BasicAuth(f.credentials.Username, f.credentials.Key)); err != nil {
		return fmt.Errorf("downloading %s: %w", file, err)
	}
	defer os.Remove(archive)

	if err := unpack(archive, target, file); err != nil {
		return fmt.Errorf("unpacking %s: %w", file, err)
	}
	f.logger.Info("file downloaded", "file", file)
	return nil
}

// unpack moves a plain download to target or extracts the entry named
// name from a zip archive.
func unpack(archive, target, name string) error {
	head := make([]byte, len(zipMagic))
	fh, err := os.Open(archive)
	if err != nil {
		return err
	}
	n, _ := io.ReadFull(fh, head)
	fh.Close()
	if n < len(zipMagic) || !bytes.Equal(head, zipMagic) {
		return os.Rename(archive, target)
	}

	zr, err := zip.OpenReader(archive)
	if err != nil {
		return err
	}
	defer zr.Close()

	for _, entry := range zr.File {
		if filepath.Base(entry.Name) != name && len(zr.File) > 1 {
			continue
		}
		src, err := entry.Open()
		if err != nil {
			return err
		}
		defer src.Close()

		out, err := os.Create(target)
		if err != nil {
			return err
		}
		if _, err := io.Copy(out, src); err != nil {
			out.Close()
			return err
		}
		return out.Close()
	}
	return fmt.Errorf("%w: %s not in archive", ErrSourceMissing, name)
}

// Load normalizes every configured file in order.
func (f *FoodCom) Load(ctx context.Context) ([]core.Recipe, error) {
	sc := normalize.SourceContext{Name: foodComName}
	var recipes []core.Recipe
	for _, file := range f.files {
		rows, err := f.readRows(filepath.Join(f.dir, file))
		if err != nil {
			return nil, err
		}
		for _, row := range rows {
			recipes = append(recipes, normalize.NormalizeFoodCom(row, sc))
		}
		f.logger.Debug("file loaded", "file", file, "rows", len(rows))
	}
	return recipes, nil
}

func (f *FoodCom) readRows(path string) ([]normalize.FoodComRow, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrSourceMissing, path)
	}
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()

	if strings.EqualFold(filepath.Ext(path), ".json") {
		return ReadFoodComJSON(fh)
	}
	return ReadFoodComCSV(fh)
}

// ReadFoodComCSV reads RAW_recipes rows. Columns are matched by header
// name; name and id are required.
func ReadFoodComCSV(r io.Reader) ([]normalize.FoodComRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.ReuseRecord = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: food.com header: %w", core.ErrMalformedSource, err)
	}
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}
	for _, required := range []string{"name", "id"} {
		if _, ok := columns[required]; !ok {
			return nil, fmt.Errorf("%w: food.com header lacks %q", core.ErrMalformedSource, required)
		}
	}

	var rows []normalize.FoodComRow
	for {
		record, err := reader.Read()
		if err == io.EOF {
			return rows, nil
		}
		if err != nil {
			return nil, fmt.Errorf("%w: food.com csv: %w", core.ErrMalformedSource, err)
		}
		cell := func(name string) string {
			i, ok := columns[name]
			if !ok || i >= len(record) {
				return ""
			}
			return record[i]
		}
		rows = append(rows, foodComRow(cell))
	}
}

// ReadFoodComJSON reads an array of RAW_recipes objects.
func ReadFoodComJSON(r io.Reader) ([]normalize.FoodComRow, error) {
	var objects []map[string]any
	if err := json.NewDecoder(r).Decode(&objects); err != nil {
		return nil, fmt.Errorf("%w: food.com json: %w", core.ErrMalformedSource, err)
	}

	rows := make([]normalize.FoodComRow, 0, len(objects))
	for _, obj := range objects {
		rows = append(rows, foodComRow(func(name string) string {
			return jsonCell(obj[name])
		}))
	}
	return rows, nil
}

func foodComRow(cell func(string) string) normalize.FoodComRow {
	return normalize.FoodComRow{
		Name:          cell("name"),
		ID:            cell("id"),
		Minutes:       cell("minutes"),
		ContributorID: cell("contributor_id"),
		Submitted:     cell("submitted"),
		Tags:          cell("tags"),
		Nutrition:     cell("nutrition"),
		NSteps:        cell("n_steps"),
		Steps:         cell("steps"),
		Description:   cell("description"),
		Ingredients:   cell("ingredients"),
		NIngredients:  cell("n_ingredients"),
	}
}

// jsonCell renders a decoded JSON value the way the CSV dump spells it.
// Arrays are re-encoded so the array string parser can read them.
func jsonCell(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []any, map[string]any:
		data, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(data)
	default:
		return fmt.Sprint(t)
	}
}

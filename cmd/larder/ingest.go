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

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/poiesic/larder/config"
	"github.com/poiesic/larder/ingestion"
	"github.com/poiesic/larder/orchestrator"
	"github.com/poiesic/larder/sources"
	"github.com/urfave/cli/v2"
)

var (
	errNoSources         = errors.New("no sources selected: pass --mealdb, --foodcom, --schemaorg or --web, or enable sources in the config file")
	errIngestionFailures = errors.New("ingestion finished with failures")
	errNoListings        = errors.New("no listing pages: pass --listing or set sources.web.listings")
)

func ingestCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	applyIngestFlags(c, cfg)

	fetcher, err := newFetcher(cfg)
	if err != nil {
		return err
	}
	srcs := selectSources(c, cfg, fetcher)
	if len(srcs) == 0 {
		return errNoSources
	}

	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	opts := []ingestion.Option{
		ingestion.WithSourceURLCheck(cfg.Ingestion.CheckSourceURL),
		ingestion.WithRunLogDir(cfg.Ingestion.RunLogDir),
		ingestion.WithDimension(cfg.AI.Dimension),
	}
	if !c.Bool("no-scorer") || !c.Bool("no-embeddings") {
		provider, err := db.Provider()
		if err != nil {
			return fmt.Errorf("failed to create AI provider: %w", err)
		}
		if !c.Bool("no-scorer") {
			opts = append(opts, ingestion.WithScorer(provider.QualityScorer()))
		}
		if !c.Bool("no-embeddings") {
			opts = append(opts, ingestion.WithEmbedder(provider.Embedder()))
		}
	}
	coordinator, err := db.NewCoordinator(opts...)
	if err != nil {
		return err
	}

	orch, err := orchestrator.New(coordinator,
		orchestrator.WithSkipDownload(c.Bool("skip-download")),
		orchestrator.WithMaxRecords(cfg.Ingestion.MaxRecords),
		orchestrator.WithBatchSize(cfg.Ingestion.BatchSize),
		orchestrator.WithRateLimitDelay(cfg.Ingestion.RateLimitDelay),
		orchestrator.WithSourcePause(cfg.Ingestion.SourcePause),
		orchestrator.WithLogger(slog.Default()),
	)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	summary, err := orch.Run(ctx, srcs)
	if err != nil {
		return fmt.Errorf("ingestion aborted: %w", err)
	}
	printSummary(c.App.Writer, summary)
	if !summary.Success {
		return errIngestionFailures
	}
	return nil
}

// applyIngestFlags lets explicit flags win over the file.
func applyIngestFlags(c *cli.Context, cfg *config.Config) {
	if c.IsSet("batch-size") {
		cfg.Ingestion.BatchSize = c.Int("batch-size")
	}
	if c.IsSet("max") {
		cfg.Ingestion.MaxRecords = c.Int("max")
	}
	if c.IsSet("rate-limit-delay") {
		cfg.Ingestion.RateLimitDelay = c.Duration("rate-limit-delay")
	}
}

func newFetcher(cfg *config.Config) (*sources.Fetcher, error) {
	opts := []sources.FetcherOption{
		sources.WithRequestInterval(cfg.Sources.RequestInterval),
		sources.WithFetchLogger(slog.Default()),
	}
	if cfg.Sources.UserAgent != "" {
		opts = append(opts, sources.WithUserAgent(cfg.Sources.UserAgent))
	}
	return sources.NewFetcher(opts...)
}

// selectSources returns the sources named on the command line or, when none
// are, the ones enabled in the config, in a fixed order.
func selectSources(c *cli.Context, cfg *config.Config, fetcher *sources.Fetcher) []orchestrator.Source {
	explicit := c.Bool("mealdb") || c.Bool("foodcom") || c.IsSet("schemaorg") || c.Bool("web")
	enabled := func(flag string, fromConfig bool) bool {
		if explicit {
			return c.IsSet(flag)
		}
		return fromConfig
	}

	sc := cfg.Sources
	var srcs []orchestrator.Source
	if enabled("mealdb", sc.MealDB.Enabled) {
		srcs = append(srcs, sources.NewMealDB(fetcher, sc.DataDir, sc.MealDB.API, sc.MealDB.Strict))
	}
	if enabled("foodcom", sc.FoodCom.Enabled) {
		srcs = append(srcs, sources.NewFoodCom(fetcher, sources.FoodComConfig{
			API:     sc.FoodCom.API,
			Dataset: sc.FoodCom.Dataset,
			Files:   sc.FoodCom.Files,
			Dir:     sc.DataDir,
			Credentials: sources.KaggleCredentials{
				Username: sc.FoodCom.Username,
				Key:      sc.FoodCom.Key,
			},
			Strict: sc.FoodCom.Strict,
		}))
	}
	if enabled("schemaorg", sc.SchemaOrg.Enabled) {
		path := sc.SchemaOrg.Path
		if c.IsSet("schemaorg") {
			path = c.String("schemaorg")
		}
		srcs = append(srcs, sources.NewSchemaOrg(sc.SchemaOrg.Name, path, sc.SchemaOrg.Strict))
	}
	if enabled("web", sc.Web.Enabled) {
		srcs = append(srcs, sources.NewWeb(fetcher, webConfig(cfg)))
	}
	return srcs
}

func webConfig(cfg *config.Config) sources.WebConfig {
	web := cfg.Sources.Web
	return sources.WebConfig{
		Name:       web.Name,
		Listings:   web.Listings,
		Pages:      web.Pages,
		Limit:      web.Limit,
		CorpusPath: web.Corpus,
		Strict:     web.Strict,
	}
}

func printSummary(w io.Writer, summary *orchestrator.Summary) {
	for _, s := range summary.Sources {
		status := "ok"
		if !s.Success {
			status = "FAILED"
		}
		fmt.Fprintf(w, "%s: %s (%d recipes)\n", s.Name, status, s.Count)
		if s.Err != nil {
			fmt.Fprintf(w, "  error: %v\n", s.Err)
		}
		if s.Stats != nil {
			fmt.Fprintf(w, "  success=%d failed=%d skipped=%d duration=%.1fs\n",
				s.Stats.Success, s.Stats.Failed, s.Stats.Skipped, s.Stats.Duration)
			for _, e := range s.Stats.Errors {
				fmt.Fprintf(w, "  - %s: %s\n", e.RecipeName, e.Error)
			}
			if s.Stats.LogPath != "" {
				fmt.Fprintf(w, "  run log: %s\n", s.Stats.LogPath)
			}
		}
		if cov := s.Coverage; cov.Total > 0 {
			fmt.Fprintf(w, "  coverage: images %d/%d, prep time %d, cook time %d, servings %d\n",
				cov.WithImages, cov.Total, cov.WithPrepTime, cov.WithCookTime, cov.WithServings)
		}
	}
}

func discoverCommand(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}
	web := webConfig(cfg)
	if c.IsSet("listing") {
		web.Listings = c.StringSlice("listing")
	}
	if c.IsSet("pages") || web.Pages < 1 {
		web.Pages = c.Int("pages")
	}
	if c.IsSet("limit") {
		web.Limit = c.Int("limit")
	}
	if len(web.Listings) == 0 {
		return errNoListings
	}

	fetcher, err := newFetcher(cfg)
	if err != nil {
		return err
	}
	urls, err := sources.NewWeb(fetcher, web).Discover(c.Context)
	if err != nil {
		return err
	}
	for _, u := range urls {
		fmt.Fprintln(c.App.Writer, u)
	}
	return nil
}

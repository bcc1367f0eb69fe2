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
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/poiesic/larder"
	"github.com/poiesic/larder/config"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "larder",
		Usage: "Recipe acquisition, normalization and embedding pipeline",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "ingest",
				Usage:  "Download, normalize, score, embed and store recipes",
				Action: ingestCommand,
				Flags: append(storeFlags(),
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Log progress every N records (default from config)",
					},
					&cli.IntFlag{
						Name:  "max",
						Usage: "Ingest at most N recipes per source (0 = all)",
					},
					&cli.BoolFlag{
						Name:  "mealdb",
						Usage: "Ingest from TheMealDB",
					},
					&cli.BoolFlag{
						Name:  "foodcom",
						Usage: "Ingest the food.com Kaggle dataset",
					},
					&cli.StringFlag{
						Name:  "schemaorg",
						Usage: "Ingest a schema.org recipe corpus from `FILE`",
					},
					&cli.BoolFlag{
						Name:  "web",
						Usage: "Scrape the configured recipe listing pages",
					},
					&cli.BoolFlag{
						Name:  "skip-download",
						Usage: "Reuse previously downloaded source data when present",
					},
					&cli.DurationFlag{
						Name:  "rate-limit-delay",
						Usage: "Pause between records (default from config)",
					},
					&cli.BoolFlag{
						Name:  "no-scorer",
						Usage: "Skip quality scoring and store the fallback score",
					},
					&cli.BoolFlag{
						Name:  "no-embeddings",
						Usage: "Store recipes without embeddings",
					},
				),
			},
			{
				Name:      "search",
				Usage:     "Find recipes similar to a text query",
				ArgsUsage: "QUERY",
				Action:    searchCommand,
				Flags: append(storeFlags(),
					&cli.IntFlag{
						Name:    "max-hits",
						Aliases: []string{"n"},
						Usage:   "Maximum number of results (default from config)",
					},
					&cli.Float64Flag{
						Name:  "min-similarity",
						Usage: "Minimum cosine similarity (default from config)",
					},
				),
			},
			{
				Name:      "related",
				Usage:     "Find recipes similar to a stored recipe",
				ArgsUsage: "UUID",
				Action:    relatedCommand,
				Flags: append(storeFlags(),
					&cli.IntFlag{
						Name:    "max-hits",
						Aliases: []string{"n"},
						Usage:   "Maximum number of results (default from config)",
					},
				),
			},
			{
				Name:   "reembed",
				Usage:  "Recompute the embeddings of stored recipes",
				Action: reembedCommand,
				Flags: append(storeFlags(),
					&cli.IntFlag{
						Name:  "page-size",
						Usage: "Number of records to read and store per batch",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "group-size",
						Usage: "Number of embeddings requested concurrently",
						Value: 8,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N records",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum attempts per embedding",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
					&cli.BoolFlag{
						Name:  "only-missing",
						Usage: "Only embed recipes stored without an embedding",
					},
				),
			},
			{
				Name:   "runs",
				Usage:  "List recent ingestion runs",
				Action: runsCommand,
				Flags: append(storeFlags(),
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Number of runs to show",
						Value: 10,
					},
				),
			},
			{
				Name:   "discover",
				Usage:  "Print recipe URLs linked from listing pages",
				Action: discoverCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to a YAML configuration `FILE`",
					},
					&cli.StringSliceFlag{
						Name:  "listing",
						Usage: "Listing page URL (repeatable, default from config)",
					},
					&cli.IntFlag{
						Name:  "pages",
						Usage: "Pages to follow per listing",
						Value: 1,
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Stop after N recipe URLs (0 = no limit)",
					},
				},
			},
		},
	}
}

// storeFlags are shared by every command that opens the database.
func storeFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to a YAML configuration `FILE`",
		},
		&cli.StringFlag{
			Name:    "db",
			Aliases: []string{"d"},
			Usage:   "Path to BadgerDB database directory (default from config)",
		},
	}
}

func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}
	if c.IsSet("db") {
		cfg.Database.Path = c.String("db")
	}
	return cfg, nil
}

func openDatabase(cfg *config.Config) (*larder.Database, error) {
	db, err := larder.NewDatabase(cfg.Database.Path,
		larder.WithAIConfig(cfg.AIConfig()),
		larder.WithQueryCache(cfg.AI.CacheSize),
		larder.WithLogger(slog.Default()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}

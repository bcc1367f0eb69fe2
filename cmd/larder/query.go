package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/poiesic/larder/core"
	"github.com/poiesic/larder/reembed"
	"github.com/poiesic/larder/search"
	"github.com/urfave/cli/v2"
)

func searchCommand(c *cli.Context) error {
	query := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if query == "" {
		return errors.New("search needs a query")
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	maxHits := cfg.Search.MaxHits
	if c.IsSet("max-hits") {
		maxHits = c.Int("max-hits")
	}
	minSimilarity := cfg.Search.MinSimilarity
	if c.IsSet("min-similarity") {
		minSimilarity = float32(c.Float64("min-similarity"))
	}

	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	searcher, err := db.NewSearcher(search.WithMinSimilarity(minSimilarity))
	if err != nil {
		return err
	}
	results, err := searcher.FindSimilar(c.Context, query, maxHits)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	printResults(c.App.Writer, results)
	return nil
}

func relatedCommand(c *cli.Context) error {
	uuid := strings.TrimSpace(c.Args().First())
	if uuid == "" {
		return errors.New("related needs a recipe UUID")
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	maxHits := cfg.Search.MaxHits
	if c.IsSet("max-hits") {
		maxHits = c.Int("max-hits")
	}

	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	searcher, err := db.NewSearcher(search.WithMinSimilarity(cfg.Search.MinSimilarity))
	if err != nil {
		return err
	}
	results, err := searcher.Related(c.Context, uuid, maxHits)
	if err != nil {
		return fmt.Errorf("related lookup failed: %w", err)
	}
	printResults(c.App.Writer, results)
	return nil
}

func printResults(w io.Writer, results []*core.SearchResult) {
	if len(results) == 0 {
		fmt.Fprintln(w, "No matching recipes")
		return
	}
	for _, result := range results {
		recipe := result.Record.Recipe
		fmt.Fprintf(w, "%.3f  %s  (%s)  %s\n", result.Score, recipe.Name, recipe.Source, result.Record.UUID)
		if recipe.SourceURL != "" {
			fmt.Fprintf(w, "       %s\n", recipe.SourceURL)
		}
	}
}

func reembedCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	reembedConfig := &reembed.Config{
		PageSize:       c.Int("page-size"),
		GroupSize:      c.Int("group-size"),
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
		Dimension:      cfg.AI.Dimension,
		Normalize:      true,
		OnlyMissing:    c.Bool("only-missing"),
	}

	if reembedConfig.PageSize <= 0 {
		return fmt.Errorf("page-size must be greater than 0")
	}
	if reembedConfig.GroupSize <= 0 {
		return fmt.Errorf("group-size must be greater than 0")
	}
	if reembedConfig.ReportInterval <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}
	if reembedConfig.MaxRetries <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}

	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	reembedder, err := db.NewReembedder(reembedConfig, c.App.ErrWriter)
	if err != nil {
		return fmt.Errorf("failed to create reembedder: %w", err)
	}

	fmt.Fprintf(c.App.ErrWriter, "Database: %s\n", cfg.Database.Path)
	fmt.Fprintf(c.App.ErrWriter, "Embedding model: %s\n", cfg.AI.EmbeddingModel)
	fmt.Fprintln(c.App.ErrWriter)

	if _, err := reembedder.Run(c.Context); err != nil {
		return fmt.Errorf("reembedding failed: %w", err)
	}
	return nil
}

func runsCommand(c *cli.Context) error {
	limit := c.Int("limit")
	if limit <= 0 {
		return fmt.Errorf("limit must be greater than 0")
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	runs, err := db.RunRepository().RecentRuns(c.Context, limit)
	if err != nil {
		return fmt.Errorf("listing runs: %w", err)
	}
	if len(runs) == 0 {
		fmt.Fprintln(c.App.Writer, "No ingestion runs recorded")
		return nil
	}
	for _, run := range runs {
		fmt.Fprintf(c.App.Writer, "%s  %-16s total=%d success=%d failed=%d skipped=%d  %.1fs\n",
			run.StartTime.Local().Format(time.DateTime), run.Label,
			run.Total, run.Success, run.Failed, run.Skipped, run.Duration)
	}
	return nil
}

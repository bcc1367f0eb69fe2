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
	"fmt"
	"log/slog"
	"net/url"
	"sync"

	"github.com/poiesic/larder/core"
	"github.com/poiesic/larder/normalize"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultPagesPerListing is how many listing pages are followed.
	DefaultPagesPerListing = 1
	// DefaultPageWorkers bounds concurrent recipe page fetches. Requests
	// are still paced by the fetcher.
	DefaultPageWorkers = 4
)

// WebConfig configures the web source.
type WebConfig struct {
	// Name is the source name, e.g. "web".
	Name string
	// Listings are category or index pages linking to recipes.
	Listings []string
	// Pages is how many pages of each listing to follow.
	Pages int
	// Limit caps the number of recipe pages fetched; zero means no cap.
	Limit int
	// CorpusPath is where scraped Recipe nodes are written.
	CorpusPath string
	Strict     bool
}

// Web scrapes recipe pages found on listing pages and keeps their JSON-LD
// Recipe nodes as a schema.org corpus.
type Web struct {
	cfg     WebConfig
	fetcher *Fetcher
	corpus  *SchemaOrg
	logger  *slog.Logger
}

// NewWeb creates the web source.
func NewWeb(fetcher *Fetcher, cfg WebConfig) *Web {
	if cfg.Name == "" {
		cfg.Name = "web"
	}
	if cfg.Pages < 1 {
		cfg.Pages = DefaultPagesPerListing
	}
	return &Web{
		cfg:     cfg,
		fetcher: fetcher,
		corpus:  NewSchemaOrg(cfg.Name, cfg.CorpusPath, cfg.Strict),
		logger:  slog.Default().With("component", "source", "source", cfg.Name),
	}
}

func (w *Web) Name() string    { return w.cfg.Name }
func (w *Web) Strict() bool    { return w.cfg.Strict }
func (w *Web) Available() bool { return w.corpus.Available() }

// Load reads the scraped corpus.
func (w *Web) Load(ctx context.Context) ([]core.Recipe, error) {
	return w.corpus.Load(ctx)
}

// Download discovers recipe links and scrapes them into the corpus file.
// Pages that fail or carry no Recipe are skipped.
func (w *Web) Download(ctx context.Context) error {
	if len(w.cfg.Listings) == 0 {
		return fmt.Errorf("%w: no listing pages configured", core.ErrConfiguration)
	}

	links, err := w.Discover(ctx)
	if err != nil {
		return err
	}
	if len(links) == 0 {
		return fmt.Errorf("%w: no recipe links found", ErrSourceMissing)
	}
	w.logger.Info("recipe links discovered", "count", len(links))

	nodes, err := w.scrape(ctx, links)
	if err != nil {
		return err
	}
	if len(nodes) == 0 {
		return fmt.Errorf("%w: no recipes scraped", ErrSourceMissing)
	}
	w.logger.Info("recipes scraped", "count", len(nodes), "pages", len(links))
	return writeJSONFile(w.cfg.CorpusPath, nodes)
}

// Discover walks the listing pages and returns recipe links in first-seen
// order, up to the configured limit.
func (w *Web) Discover(ctx context.Context) ([]string, error) {
	seen := make(map[string]struct{})
	var links []string

	for _, listing := range w.cfg.Listings {
		for page := 1; page <= w.cfg.Pages; page++ {
			pageURL, err := PageURL(listing, page)
			if err != nil {
				return nil, fmt.Errorf("%w: listing %q: %w", core.ErrConfiguration, listing, err)
			}
			base, _ := url.Parse(pageURL)

			body, err := w.fetcher.Get(ctx, pageURL)
			if err != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				w.logger.Warn("listing page failed", "url", pageURL, "error", err)
				break
			}

			found, err := DiscoverRecipeURLs(base, body, 0)
			if err != nil {
				return nil, err
			}
			added := 0
			for _, link := range found {
				if _, dup := seen[link]; dup {
					continue
				}
				seen[link] = struct{}{}
				links = append(links, link)
				added++
				if w.cfg.Limit > 0 && len(links) >= w.cfg.Limit {
					return links, nil
				}
			}
			if added == 0 {
				break
			}
		}
	}
	return links, nil
}

// scrape fetches pages concurrently and returns their Recipe nodes in
// link order.
func (w *Web) scrape(ctx context.Context, links []string) ([]map[string]any, error) {
	results := make([][]map[string]any, len(links))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(DefaultPageWorkers)
	var mu sync.Mutex
	failed := 0

	for i, link := range links {
		g.Go(func() error {
			nodes, err := w.scrapePage(gctx, link)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				w.logger.Warn("recipe page skipped", "url", link, "error", err)
				mu.Lock()
				failed++
				mu.Unlock()
				return nil
			}
			results[i] = nodes
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if failed > 0 {
		w.logger.Warn("some recipe pages failed", "failed", failed, "total", len(links))
	}

	var nodes []map[string]any
	for _, page := range results {
		nodes = append(nodes, page...)
	}
	return nodes, nil
}

func (w *Web) scrapePage(ctx context.Context, link string) ([]map[string]any, error) {
	body, err := w.fetcher.Get(ctx, link)
	if err != nil {
		return nil, err
	}
	blocks, err := ExtractJSONLD(body)
	if err != nil {
		return nil, err
	}

	var nodes []map[string]any
	for _, block := range blocks {
		found, err := normalize.ExtractSchemaOrgRecipes(block)
		if err != nil {
			w.logger.Debug("json-ld block unreadable", "url", link, "error", err)
			continue
		}
		for _, node := range found {
			if _, ok := node["url"]; !ok {
				node["url"] = link
			}
			nodes = append(nodes, node)
		}
	}
	if len(nodes) == 0 {
		return nil, fmt.Errorf("%w: no recipe on page", ErrNotFound)
	}
	return nodes, nil
}

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
	"bytes"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/poiesic/larder/core"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const jsonLDType = "application/ld+json"

// Link paths that mark recipe pages, and paths that look like recipes but
// list many of them.
var (
	recipePathMarker   = "/recipes/"
	excludedPathMarker = []string{"/gallery/", "/collection/"}
)

// ExtractJSONLD returns the contents of every JSON-LD script block in an
// HTML page, in document order.
func ExtractJSONLD(page []byte) ([][]byte, error) {
	doc, err := html.Parse(bytes.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("%w: html: %w", core.ErrMalformedSource, err)
	}

	var blocks [][]byte
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.Script && isJSONLD(n) {
			var buf bytes.Buffer
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if c.Type == html.TextNode {
					buf.WriteString(c.Data)
				}
			}
			if text := bytes.TrimSpace(buf.Bytes()); len(text) > 0 {
				blocks = append(blocks, text)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return blocks, nil
}

func isJSONLD(n *html.Node) bool {
	for _, attr := range n.Attr {
		if attr.Key == "type" && strings.EqualFold(strings.TrimSpace(attr.Val), jsonLDType) {
			return true
		}
	}
	return false
}

// DiscoverRecipeURLs collects links to recipe pages from a listing page.
// Relative links are resolved against base, fragments dropped, gallery and
// collection pages skipped and duplicates removed keeping first-seen order.
// A limit of zero or less returns every link.
func DiscoverRecipeURLs(base *url.URL, page []byte, limit int) ([]string, error) {
	tokenizer := html.NewTokenizer(bytes.NewReader(page))
	seen := make(map[string]struct{})
	var urls []string

	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			// io.EOF ends a well formed page; anything else is a truncated one.
			return urls, nil
		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := tokenizer.TagName()
			if atom.Lookup(name) != atom.A || !hasAttr {
				continue
			}
			href := hrefOf(tokenizer)
			link, ok := recipeLink(base, href)
			if !ok {
				continue
			}
			if _, dup := seen[link]; dup {
				continue
			}
			seen[link] = struct{}{}
			urls = append(urls, link)
			if limit > 0 && len(urls) >= limit {
				return urls, nil
			}
		}
	}
}

func hrefOf(tokenizer *html.Tokenizer) string {
	for {
		key, val, more := tokenizer.TagAttr()
		if string(key) == "href" {
			return string(val)
		}
		if !more {
			return ""
		}
	}
}

func recipeLink(base *url.URL, href string) (string, bool) {
	href = strings.TrimSpace(href)
	if href == "" || !strings.Contains(href, recipePathMarker) {
		return "", false
	}
	for _, marker := range excludedPathMarker {
		if strings.Contains(href, marker) {
			return "", false
		}
	}

	ref, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	resolved := ref
	if base != nil {
		resolved = base.ResolveReference(ref)
	}
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return "", false
	}
	resolved.Fragment = ""
	return resolved.String(), true
}

// PageURL returns the listing URL for a 1-based page number. The first page
// is the listing itself; later pages add a page query parameter.
func PageURL(listing string, page int) (string, error) {
	u, err := url.Parse(listing)
	if err != nil {
		return "", err
	}
	if page <= 1 {
		return u.String(), nil
	}
	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

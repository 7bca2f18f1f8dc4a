// Package pageindex builds the page-index.json consumed by the site's
// related-pages widget.
package pageindex

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/renameio/v2"

	"github.com/goliatone/go-styleguide/internal/logging"
	"github.com/goliatone/go-styleguide/pkg/interfaces"
)

// Page is one entry of the index.
type Page struct {
	URL      string   `json:"url"`
	Title    string   `json:"title"`
	Tags     []string `json:"tags"`
	Category string   `json:"category"`
}

// Index is the ordered list of indexed pages.
type Index struct {
	Pages []Page
}

// MarshalJSON encodes the index as a bare array.
func (ix *Index) MarshalJSON() ([]byte, error) {
	pages := ix.Pages
	if pages == nil {
		pages = []Page{}
	}
	return json.Marshal(pages)
}

// UnmarshalJSON decodes a bare array of pages.
func (ix *Index) UnmarshalJSON(data []byte) error {
	return json.Unmarshal(data, &ix.Pages)
}

// URLFor maps a docs-relative source path to its directory-style site URL:
// "a/b.md" becomes "a/b/", "a/index.md" becomes "a/" and "index.md" becomes "".
func URLFor(rel string) string {
	rel = strings.TrimPrefix(path.Clean("/"+rel), "/")
	dir, file := path.Split(rel)
	stem := strings.TrimSuffix(file, path.Ext(file))
	switch strings.ToLower(stem) {
	case "index", "readme":
		return dir
	}
	return dir + stem + "/"
}

// PageFor returns the index entry for doc and whether it qualifies. Only
// documents with tags or a category are indexed.
func PageFor(doc *interfaces.Document) (Page, bool) {
	fm := doc.FrontMatter
	if len(fm.Tags) == 0 && fm.Category == "" {
		return Page{}, false
	}
	tags := append([]string{}, fm.Tags...)
	return Page{
		URL:      URLFor(doc.FilePath),
		Title:    titleOf(doc),
		Tags:     tags,
		Category: fm.Category,
	}, true
}

// titleOf prefers the front-matter title, then the first H1, then the file
// name.
func titleOf(doc *interfaces.Document) string {
	if doc.FrontMatter.Title != "" {
		return doc.FrontMatter.Title
	}
	if doc.Outline != nil {
		for _, h := range doc.Outline.Headings {
			if h.Level == 1 {
				return h.Text
			}
		}
	}
	stem := strings.TrimSuffix(path.Base(doc.FilePath), path.Ext(doc.FilePath))
	return strings.ReplaceAll(strings.ReplaceAll(stem, "_", " "), "-", " ")
}

// Build indexes docs in the order given.
func Build(docs []*interfaces.Document) *Index {
	ix := &Index{}
	for _, doc := range docs {
		if page, ok := PageFor(doc); ok {
			ix.Pages = append(ix.Pages, page)
		}
	}
	return ix
}

// Find returns the page with url.
func (ix *Index) Find(url string) (Page, bool) {
	for _, p := range ix.Pages {
		if p.URL == url {
			return p, true
		}
	}
	return Page{}, false
}

// Related ranks the other pages sharing a tag or the category with url:
// most shared tags first, then same category, then title. A limit <= 0
// returns every related page.
func (ix *Index) Related(url string, limit int) []Page {
	page, ok := ix.Find(url)
	if !ok {
		return nil
	}
	tags := make(map[string]struct{}, len(page.Tags))
	for _, t := range page.Tags {
		tags[strings.ToLower(t)] = struct{}{}
	}

	type scored struct {
		page         Page
		shared       int
		sameCategory bool
	}
	var candidates []scored
	for _, other := range ix.Pages {
		if other.URL == url {
			continue
		}
		s := scored{page: other, sameCategory: page.Category != "" && other.Category == page.Category}
		for _, t := range other.Tags {
			if _, ok := tags[strings.ToLower(t)]; ok {
				s.shared++
			}
		}
		if s.shared > 0 || s.sameCategory {
			candidates = append(candidates, s)
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.shared != b.shared {
			return a.shared > b.shared
		}
		if a.sameCategory != b.sameCategory {
			return a.sameCategory
		}
		return a.page.Title < b.page.Title
	})

	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}
	related := make([]Page, len(candidates))
	for i, c := range candidates {
		related[i] = c.page
	}
	return related
}

// Write stores the index as JSON at filename, replacing it atomically.
func Write(filename string, ix *Index) error {
	data, err := json.Marshal(ix)
	if err != nil {
		return fmt.Errorf("pageindex: encode: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
		return fmt.Errorf("pageindex: create output dir: %w", err)
	}
	if err := renameio.WriteFile(filename, data, 0o644); err != nil {
		return fmt.Errorf("pageindex: write %s: %w", filename, err)
	}
	return nil
}

// Read loads an index previously written with Write.
func Read(filename string) (*Index, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("pageindex: read %s: %w", filename, err)
	}
	ix := &Index{}
	if err := json.Unmarshal(data, ix); err != nil {
		return nil, fmt.Errorf("pageindex: decode %s: %w", filename, err)
	}
	return ix, nil
}

// Generator loads the docs tree and writes its index.
type Generator struct {
	docs   interfaces.MarkdownService
	logger interfaces.Logger
}

// NewGenerator constructs a Generator over a markdown service rooted at the
// docs directory.
func NewGenerator(docs interfaces.MarkdownService, logger interfaces.Logger) *Generator {
	return &Generator{docs: docs, logger: logging.Ensure(logger)}
}

// Generate indexes every document below the docs root and writes it to
// output unless output is empty.
func (g *Generator) Generate(ctx context.Context, output string) (*Index, error) {
	recursive := true
	docs, err := g.docs.LoadDirectory(ctx, ".", interfaces.LoadOptions{Recursive: &recursive})
	if err != nil {
		return nil, fmt.Errorf("pageindex: load docs: %w", err)
	}
	ix := Build(docs)
	if output != "" {
		if err := Write(output, ix); err != nil {
			return nil, err
		}
	}
	g.logger.Info("pageindex.generated", "pages", len(ix.Pages), "path", output)
	return ix, nil
}

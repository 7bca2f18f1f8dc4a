package markdown

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/goliatone/go-styleguide/pkg/interfaces"
)

// Config controls how the Markdown service discovers and parses files.
type Config struct {
	// BasePath is the docs root (e.g. "docs").
	BasePath  string
	Pattern   string
	Recursive bool
	Exclude   []string
	Parser    interfaces.ParseOptions
	// FS overrides the filesystem rooted at BasePath, mainly for tests.
	FS fs.FS
}

// Service implements interfaces.MarkdownService for filesystem-backed documents.
type Service struct {
	cfg    Config
	parser interfaces.MarkdownParser
	loader *Loader
}

var _ interfaces.MarkdownService = (*Service)(nil)

// NewService constructs a Markdown service. When parser is nil, a goldmark
// parser with cfg.Parser defaults is used.
func NewService(cfg Config, parser interfaces.MarkdownParser) (*Service, error) {
	filesystem := cfg.FS
	if filesystem == nil {
		var err error
		if filesystem, err = prepareFilesystem(cfg.BasePath); err != nil {
			return nil, err
		}
	}
	if parser == nil {
		parser = NewGoldmarkParser(cfg.Parser)
	}

	loader := NewLoader(filesystem, LoaderConfig{
		BasePath:  cfg.BasePath,
		Pattern:   cfg.Pattern,
		Recursive: cfg.Recursive,
		Exclude:   cfg.Exclude,
	})

	return &Service{cfg: cfg, parser: parser, loader: loader}, nil
}

// Loader exposes the underlying loader.
func (s *Service) Loader() *Loader {
	return s.loader
}

// Load reads a single Markdown document relative to the docs root.
func (s *Service) Load(ctx context.Context, name string, opts interfaces.LoadOptions) (*interfaces.Document, error) {
	result, err := s.loader.LoadFile(ctx, name, toLoaderParams(opts))
	if err != nil {
		return nil, err
	}
	if opts.Render {
		if _, err := s.RenderDocument(ctx, result.Document, opts.Parser); err != nil {
			return nil, err
		}
	}
	return result.Document, nil
}

// LoadDirectory reads every Markdown document within dir.
func (s *Service) LoadDirectory(ctx context.Context, dir string, opts interfaces.LoadOptions) ([]*interfaces.Document, error) {
	results, err := s.loader.LoadDirectory(ctx, dir, toLoaderParams(opts))
	if err != nil {
		return nil, err
	}

	docs := make([]*interfaces.Document, 0, len(results))
	for _, result := range results {
		if opts.Render {
			if _, err := s.RenderDocument(ctx, result.Document, opts.Parser); err != nil {
				return nil, err
			}
		}
		docs = append(docs, result.Document)
	}
	return docs, nil
}

// Render parses Markdown bytes into HTML using the configured parser.
func (s *Service) Render(ctx context.Context, markdown []byte, opts interfaces.ParseOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.parser.ParseWithOptions(markdown, mergeParseOptions(s.cfg.Parser, opts))
}

// RenderDocument converts the document body into HTML and stores it on doc.
func (s *Service) RenderDocument(ctx context.Context, doc *interfaces.Document, opts interfaces.ParseOptions) ([]byte, error) {
	if doc == nil {
		return nil, errors.New("markdown service: document is nil")
	}
	html, err := s.Render(ctx, doc.Body, opts)
	if err != nil {
		return nil, fmt.Errorf("markdown render document %s: %w", doc.FilePath, err)
	}
	doc.BodyHTML = html
	return html, nil
}

// Inspect returns the outline of doc, computing it when missing.
func (s *Service) Inspect(doc *interfaces.Document) *interfaces.Outline {
	if doc == nil {
		return nil
	}
	if doc.Outline == nil {
		doc.Outline = Inspect(doc.Body)
	}
	return doc.Outline
}

func mergeParseOptions(base, override interfaces.ParseOptions) interfaces.ParseOptions {
	result := base
	if len(override.Extensions) > 0 {
		result.Extensions = append([]string(nil), override.Extensions...)
	}
	if override.HardWraps {
		result.HardWraps = true
	}
	if override.SafeMode {
		result.SafeMode = true
	}
	return result
}

func toLoaderParams(opts interfaces.LoadOptions) LoadParams {
	return LoadParams{
		Pattern:   opts.Pattern,
		Recursive: opts.Recursive,
	}
}

func prepareFilesystem(basePath string) (fs.FS, error) {
	if strings.TrimSpace(basePath) == "" {
		basePath = "."
	}
	info, err := os.Stat(basePath)
	if err != nil {
		return nil, fmt.Errorf("markdown service: stat base path %s: %w", basePath, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("markdown service: base path %s is not a directory", basePath)
	}
	return os.DirFS(filepath.Clean(basePath)), nil
}

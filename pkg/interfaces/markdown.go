package interfaces

import (
	"context"
	"time"
)

// MarkdownParser defines how raw Markdown bytes are converted into HTML.
type MarkdownParser interface {
	// Parse converts Markdown into HTML using the parser's default settings.
	Parse(markdown []byte) ([]byte, error)
	// ParseWithOptions converts Markdown into HTML using the supplied overrides.
	ParseWithOptions(markdown []byte, opts ParseOptions) ([]byte, error)
}

// ParseOptions customises Markdown parsing behaviour, keeping option names
// readable for configuration unmarshalling and CLI flags.
type ParseOptions struct {
	Extensions []string `yaml:"extensions" json:"extensions"`
	HardWraps  bool     `yaml:"hard_wraps" json:"hard_wraps"`
	SafeMode   bool     `yaml:"safe_mode" json:"safe_mode"`
}

// MarkdownService exposes the document workflows used by every tool in the
// module: discovery, inspection and rendering.
type MarkdownService interface {
	Load(ctx context.Context, path string, opts LoadOptions) (*Document, error)
	LoadDirectory(ctx context.Context, dir string, opts LoadOptions) ([]*Document, error)
	Render(ctx context.Context, markdown []byte, opts ParseOptions) ([]byte, error)
	RenderDocument(ctx context.Context, doc *Document, opts ParseOptions) ([]byte, error)
}

// Document represents a style-guide Markdown file with parsed metadata.
type Document struct {
	// FilePath is slash separated and relative to the docs root.
	FilePath string
	// Section is the first directory segment of FilePath (e.g. 02_language_guides).
	Section        string
	FrontMatter    FrontMatter
	HasFrontMatter bool
	// FrontMatterLines counts the lines consumed by the front-matter block,
	// delimiters included, so body line numbers can be mapped back to the file.
	FrontMatterLines int
	Body             []byte
	BodyHTML         []byte
	Outline          *Outline
	LastModified     time.Time
	// Checksum stores the SHA-256 digest of the original file content.
	Checksum []byte
}

// FrontMatter models the metadata block at the top of every style guide.
type FrontMatter struct {
	Title       string         `yaml:"title" json:"title"`
	Description string         `yaml:"description" json:"description"`
	Author      string         `yaml:"author" json:"author"`
	Tags        []string       `yaml:"tags" json:"tags"`
	Category    string         `yaml:"category" json:"category"`
	Status      string         `yaml:"status" json:"status"`
	Version     string         `yaml:"version" json:"version,omitempty"`
	Date        string         `yaml:"date" json:"date,omitempty"`
	Custom      map[string]any `yaml:",inline" json:"custom,omitempty"`
	Raw         map[string]any `yaml:"-" json:"raw"`
}

// Outline is the structural summary extracted from a document body.
type Outline struct {
	Headings   []Heading
	CodeBlocks []CodeBlock
	Links      []Link
	// Prose holds the document text with code blocks and code spans removed.
	Prose string
	// UnclosedFence reports the body line of a fence that never closes, or 0.
	UnclosedFence int
}

// Heading is a single ATX or setext heading.
type Heading struct {
	Level int
	Text  string
	ID    string
	Line  int
}

// CodeBlock is a fenced or indented code block.
type CodeBlock struct {
	Language string
	Lines    int
	Line     int
	Fenced   bool
}

// Link is a link or image destination found in the body.
type Link struct {
	Destination string
	Text        string
	Line        int
	Image       bool
}

// LoadOptions fine-tunes how documents are discovered and parsed from disk.
type LoadOptions struct {
	Recursive *bool
	Pattern   string
	Parser    ParseOptions
	// Render toggles HTML rendering into Document.BodyHTML.
	Render bool
}

package catalog

import (
	"encoding/hex"
	"strings"
	"time"

	"github.com/goliatone/go-styleguide/internal/identity"
	"github.com/goliatone/go-styleguide/internal/markdown"
	"github.com/goliatone/go-styleguide/pkg/interfaces"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Entry is the persisted summary of a single documentation page.
type Entry struct {
	bun.BaseModel `bun:"table:catalog_entries,alias:ce"`

	ID        uuid.UUID `bun:",pk,type:uuid" json:"id"`
	Path      string    `bun:"path,notnull,unique" json:"path"`
	Section   string    `bun:"section" json:"section"`
	Title     string    `bun:"title" json:"title"`
	Category  string    `bun:"category" json:"category"`
	Status    string    `bun:"status" json:"status"`
	Tags      []string  `bun:"tags,type:jsonb" json:"tags"`
	Checksum  string    `bun:"checksum,notnull" json:"checksum"`
	CodeLines int       `bun:"code_lines,notnull,default:0" json:"code_lines"`
	TextLines int       `bun:"text_lines,notnull,default:0" json:"text_lines"`
	CreatedAt time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}

// EntryFromDocument maps a loaded document onto a catalog entry. Timestamps
// are left for the caller.
func EntryFromDocument(doc *interfaces.Document) *Entry {
	outline := doc.Outline
	if outline == nil {
		outline = markdown.Inspect(doc.Body)
	}

	code := 0
	for _, block := range outline.CodeBlocks {
		code += block.Lines
	}
	text := 0
	for _, line := range strings.Split(outline.Prose, "\n") {
		if strings.TrimSpace(line) != "" {
			text++
		}
	}

	tags := append([]string{}, doc.FrontMatter.Tags...)
	return &Entry{
		ID:        identity.DocumentUUID(doc.FilePath),
		Path:      doc.FilePath,
		Section:   doc.Section,
		Title:     doc.FrontMatter.Title,
		Category:  doc.FrontMatter.Category,
		Status:    doc.FrontMatter.Status,
		Tags:      tags,
		Checksum:  hex.EncodeToString(doc.Checksum),
		CodeLines: code,
		TextLines: text,
	}
}

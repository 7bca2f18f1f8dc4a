package markdown

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-styleguide/pkg/interfaces"
)

func testDocsFS() fstest.MapFS {
	return fstest.MapFS{
		"index.md":                          {Data: []byte("---\ntitle: Home\n---\n# Home\n")},
		"glossary.md":                       {Data: []byte("# Glossary\n")},
		"02_language_guides/bash.md":        {Data: []byte(guideSource)},
		"02_language_guides/python.md":      {Data: []byte("---\ntitle: Python\n---\n# Python\n")},
		"02_language_guides/notes.txt":      {Data: []byte("not markdown")},
		"02_language_guides/nested/deep.md": {Data: []byte("# Deep\n")},
		".hidden/secret.md":                 {Data: []byte("# Hidden\n")},
		"04_templates/README_template.md":   {Data: []byte("# Template\n")},
	}
}

func newTestService(tb testing.TB, recursive bool) *Service {
	tb.Helper()
	svc, err := NewService(Config{FS: testDocsFS(), Recursive: recursive, Exclude: []string{"glossary.md"}}, nil)
	if err != nil {
		tb.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestServiceLoad(t *testing.T) {
	svc := newTestService(t, true)

	doc, err := svc.Load(context.Background(), "02_language_guides/bash.md", interfaces.LoadOptions{Render: true})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if doc.Section != "02_language_guides" {
		t.Fatalf("expected section 02_language_guides, got %q", doc.Section)
	}
	if len(doc.BodyHTML) == 0 || len(doc.Checksum) != 32 {
		t.Fatalf("expected rendered body and sha256 checksum")
	}
	if doc.Outline == nil || len(doc.Outline.Headings) != 1 {
		t.Fatalf("expected outline with one heading, got %+v", doc.Outline)
	}
}

func TestServiceLoadDirectory(t *testing.T) {
	svc := newTestService(t, true)

	docs, err := svc.LoadDirectory(context.Background(), ".", interfaces.LoadOptions{})
	if err != nil {
		t.Fatalf("LoadDirectory: %v", err)
	}

	var paths []string
	for _, doc := range docs {
		paths = append(paths, doc.FilePath)
		if doc.BodyHTML != nil {
			t.Fatalf("expected no rendering without Render flag for %s", doc.FilePath)
		}
	}
	want := []string{
		"02_language_guides/bash.md",
		"02_language_guides/nested/deep.md",
		"02_language_guides/python.md",
		"04_templates/README_template.md",
		"index.md",
	}
	if diff := cmp.Diff(want, paths); diff != "" {
		t.Fatalf("paths mismatch (-want +got):\n%s", diff)
	}
}

func TestServiceLoadDirectory_NonRecursiveOverride(t *testing.T) {
	svc := newTestService(t, true)

	no := false
	docs, err := svc.LoadDirectory(context.Background(), "02_language_guides", interfaces.LoadOptions{Recursive: &no})
	if err != nil {
		t.Fatalf("LoadDirectory override: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(docs))
	}
}

func TestServiceLoadHonoursCancellation(t *testing.T) {
	svc := newTestService(t, true)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := svc.LoadDirectory(ctx, ".", interfaces.LoadOptions{}); err == nil {
		t.Fatal("expected context error")
	}
}

func TestSectionOf(t *testing.T) {
	cases := map[string]string{
		"index.md":                   "",
		"02_language_guides/bash.md": "02_language_guides",
		"./a/b/c.md":                 "a",
	}
	for in, want := range cases {
		if got := SectionOf(in); got != want {
			t.Fatalf("SectionOf(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestMatchPattern(t *testing.T) {
	if !MatchPattern("a/b/c.md", "**/*.md") || !MatchPattern("a/b/c.md", "*.md") {
		t.Fatal("expected markdown match")
	}
	if MatchPattern("a/b/c.txt", "*.md") {
		t.Fatal("unexpected match")
	}
	if !MatchPattern("a/b.md", "a/*.md") || MatchPattern("x/b.md", "a/*.md") {
		t.Fatal("expected directory-qualified patterns to match the full path")
	}
}

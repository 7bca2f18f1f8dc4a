package pageindex

import (
	"context"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-styleguide/internal/markdown"
)

func TestURLFor(t *testing.T) {
	cases := map[string]string{
		"index.md":                    "",
		"02_language_guides/bash.md":  "02_language_guides/bash/",
		"02_language_guides/index.md": "02_language_guides/",
		"03_architecture/README.md":   "03_architecture/",
		"./glossary.md":               "glossary/",
	}
	for in, want := range cases {
		if got := URLFor(in); got != want {
			t.Errorf("URLFor(%q) = %q, want %q", in, got, want)
		}
	}
}

func docsFS() fstest.MapFS {
	return fstest.MapFS{
		"index.md":                     {Data: []byte("---\ntitle: Home\n---\n# Home\n")},
		"guides/bash.md":               {Data: []byte("---\ntitle: Bash\ntags: [shell, scripting]\ncategory: Language Guides\n---\n")},
		"guides/powershell.md":         {Data: []byte("---\ntitle: PowerShell\ntags: [shell, windows]\ncategory: Language Guides\n---\n")},
		"guides/hcl.md":                {Data: []byte("---\ntitle: HCL\ntags: iac\ncategory: Language Guides\n---\n")},
		"guides/makefile.md":           {Data: []byte("---\ntags: [scripting, shell]\n---\n# Makefile Guide\n")},
		"templates/readme_template.md": {Data: []byte("---\ncategory: Templates\n---\n")},
	}
}

func TestGenerate(t *testing.T) {
	svc, err := markdown.NewService(markdown.Config{FS: docsFS()}, nil)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	output := filepath.Join(t.TempDir(), "site", "page-index.json")

	ix, err := NewGenerator(svc, nil).Generate(context.Background(), output)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	want := []Page{
		{URL: "guides/bash/", Title: "Bash", Tags: []string{"shell", "scripting"}, Category: "Language Guides"},
		{URL: "guides/hcl/", Title: "HCL", Tags: []string{"iac"}, Category: "Language Guides"},
		{URL: "guides/makefile/", Title: "Makefile Guide", Tags: []string{"scripting", "shell"}},
		{URL: "guides/powershell/", Title: "PowerShell", Tags: []string{"shell", "windows"}, Category: "Language Guides"},
		{URL: "templates/readme_template/", Title: "readme template", Tags: []string{}, Category: "Templates"},
	}
	if diff := cmp.Diff(want, ix.Pages); diff != "" {
		t.Fatalf("pages mismatch (-want +got):\n%s", diff)
	}

	stored, err := Read(output)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if diff := cmp.Diff(ix.Pages, stored.Pages); diff != "" {
		t.Fatalf("stored index mismatch (-want +got):\n%s", diff)
	}
}

func TestRelated(t *testing.T) {
	ix := &Index{Pages: []Page{
		{URL: "bash/", Title: "Bash", Tags: []string{"shell", "scripting"}, Category: "Guides"},
		{URL: "powershell/", Title: "PowerShell", Tags: []string{"Shell"}, Category: "Guides"},
		{URL: "make/", Title: "Make", Tags: []string{"scripting", "shell"}},
		{URL: "hcl/", Title: "HCL", Category: "Guides"},
		{URL: "adr/", Title: "ADR", Tags: []string{"architecture"}, Category: "Architecture"},
		{URL: "d2/", Title: "D2", Category: "Guides"},
	}}

	var urls []string
	for _, p := range ix.Related("bash/", 0) {
		urls = append(urls, p.URL)
	}
	if diff := cmp.Diff([]string{"make/", "powershell/", "d2/", "hcl/"}, urls); diff != "" {
		t.Fatalf("related order mismatch (-want +got):\n%s", diff)
	}
	if got := ix.Related("bash/", 2); len(got) != 2 {
		t.Fatalf("expected limit to apply, got %d", len(got))
	}
	if got := ix.Related("missing/", 3); got != nil {
		t.Fatalf("expected nil for unknown page, got %+v", got)
	}
}

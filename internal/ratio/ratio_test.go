package ratio

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"
)

func TestCount(t *testing.T) {
	cases := []struct {
		name       string
		source     string
		code, text int
	}{
		{
			name:   "front matter skipped and blank code lines counted",
			source: "---\ntitle: x\n---\n# Title\n\nProse.\n```bash\necho a\n\necho b\n```\n",
			code:   3,
			text:   2,
		},
		{
			name:   "third rule counts as text",
			source: "---\na: b\n---\ntext\n---\n",
			code:   0,
			text:   2,
		},
		{
			name:   "no text yields zero ratio",
			source: "```\ncode\n```\n",
			code:   1,
			text:   0,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			code, text := Count([]byte(tc.source))
			if code != tc.code || text != tc.text {
				t.Fatalf("Count = (%d, %d), want (%d, %d)", code, text, tc.code, tc.text)
			}
		})
	}
	if Ratio(1, 0) != 0 {
		t.Fatal("expected zero ratio without text")
	}
}

func guide(code, text int) []byte {
	var b strings.Builder
	b.WriteString("---\ntitle: g\n---\n")
	for i := 0; i < text; i++ {
		b.WriteString("prose line\n")
	}
	b.WriteString("```\n")
	for i := 0; i < code; i++ {
		b.WriteString("code\n")
	}
	b.WriteString("```\n")
	return []byte(b.String())
}

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"guides/bash.md":              {Data: guide(30, 10)},
		"guides/python.md":            {Data: guide(10, 10)},
		"guides/yaml.md":              {Data: guide(15, 10)},
		"guides/comparison_matrix.md": {Data: guide(0, 40)},
		"guides/nested/skip.md":       {Data: guide(0, 1)},
		"guides/notes.txt":            {Data: []byte("x")},
	}
}

func TestAnalyze(t *testing.T) {
	analyzer := NewAnalyzer(testFS(), Options{Exempt: []string{"comparison_matrix"}}, nil)

	report, err := analyzer.Analyze(context.Background(), "guides")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	var names []string
	for _, g := range report.Guides {
		names = append(names, g.Name)
	}
	if diff := cmp.Diff([]string{"bash", "comparison_matrix", "python", "yaml"}, names); diff != "" {
		t.Fatalf("guides mismatch (-want +got):\n%s", diff)
	}
	if report.TotalCode != 55 || report.TotalText != 30 {
		t.Fatalf("unexpected totals %d/%d", report.TotalCode, report.TotalText)
	}
	below := report.BelowTarget()
	if len(below) != 2 || below[0].Name != "python" || below[1].Name != "yaml" {
		t.Fatalf("unexpected below-target order %+v", below)
	}
	if below[0].NeededLines(3) != 20 {
		t.Fatalf("expected python to need 20 lines, got %d", below[0].NeededLines(3))
	}
	if report.Passing() != 1 || report.Eligible() != 3 || !report.Failed() {
		t.Fatalf("unexpected pass counts %d/%d", report.Passing(), report.Eligible())
	}
}

func TestReportWrite(t *testing.T) {
	report, err := NewAnalyzer(testFS(), Options{Exempt: []string{"comparison_matrix"}}, nil).Analyze(context.Background(), "guides")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	var buf bytes.Buffer
	if err := report.Write(&buf); err != nil {
		t.Fatalf("Write: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"bash                                     30           10       3.00     ✅ PASS\n",
		"comparison_matrix                         0           40       0.00   ⬜ EXEMPT\n",
		"OVERALL                                  55           30       1.83     ❌ FAIL\n",
		"2 guides below 3:1 target ratio:\n  - python: 1.00 (needs ~20 more code lines)\n  - yaml: 1.50 (needs ~15 more code lines)\n",
		"Exempt:  1 guide(s) — comparison_matrix\n",
		"Achievement: 1/3 guides pass\n",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected output to contain %q\n%s", want, out)
		}
	}
}

func TestAnalyzeErrors(t *testing.T) {
	analyzer := NewAnalyzer(fstest.MapFS{"empty/readme.txt": {Data: []byte("x")}}, Options{}, nil)
	if _, err := analyzer.Analyze(context.Background(), "missing"); !errors.Is(err, ErrGuidesDirMissing) {
		t.Fatalf("expected ErrGuidesDirMissing, got %v", err)
	}
	if _, err := analyzer.Analyze(context.Background(), "empty"); !errors.Is(err, ErrNoGuides) {
		t.Fatalf("expected ErrNoGuides, got %v", err)
	}
}

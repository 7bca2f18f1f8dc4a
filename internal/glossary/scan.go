package glossary

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"regexp"
	"slices"
	"sort"
	"strings"
)

// ExcludedFiles are never scanned for term usage or candidates.
var ExcludedFiles = []string{"glossary.md", "changelog.md"}

// DefaultMinOccurrences is how often a bold phrase must appear before it is
// proposed as a glossary term.
const DefaultMinOccurrences = 3

var (
	fencedCodePattern = regexp.MustCompile("(?s)```.*?```")
	inlineCodePattern = regexp.MustCompile("`[^`]+`")
	boldTermPattern   = regexp.MustCompile(`\*\*([A-Z][A-Za-z0-9 /\-()]+)\*\*`)

	candidateSkipPrefixes = []string{"Version", "Note", "Warning", "Important"}
)

// source is a scanned document.
type source struct {
	rel  string
	text string
}

// readDocs returns every *.md file below dir in path order, skipping the
// excluded files and hidden directories. rel is relative to dir.
func readDocs(ctx context.Context, fsys fs.FS, dir string) ([]source, error) {
	var docs []source
	err := fs.WalkDir(fsys, dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p != dir && strings.HasPrefix(d.Name(), ".") {
				return fs.SkipDir
			}
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if path.Ext(p) != ".md" || slices.Contains(ExcludedFiles, d.Name()) {
			return nil
		}
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return err
		}
		rel := strings.TrimPrefix(strings.TrimPrefix(p, dir), "/")
		if dir == "." {
			rel = p
		}
		docs = append(docs, source{rel: rel, text: string(data)})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("glossary: scan %s: %w", dir, err)
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].rel < docs[j].rel })
	return docs, nil
}

// References maps a term key to the docs-relative paths that use it.
type References map[string][]string

// Referenced counts terms with at least one reference.
func (r References) Referenced() int {
	n := 0
	for _, paths := range r {
		if len(paths) > 0 {
			n++
		}
	}
	return n
}

// CrossReference finds, for every term, the documents whose prose mentions
// the term's base name as a whole word, ignoring case and code.
func CrossReference(ctx context.Context, fsys fs.FS, dir string, terms map[string]Term) (References, error) {
	docs, err := readDocs(ctx, fsys, dir)
	if err != nil {
		return nil, err
	}

	patterns := make(map[string]*regexp.Regexp, len(terms))
	for key, term := range terms {
		base := term.BaseName()
		if len(base) < 2 {
			continue
		}
		patterns[key] = regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(base) + `\b`)
	}

	refs := make(References)
	for _, doc := range docs {
		prose := fencedCodePattern.ReplaceAllString(doc.text, "")
		prose = inlineCodePattern.ReplaceAllString(prose, "")
		for key, pattern := range patterns {
			if pattern.MatchString(prose) && !slices.Contains(refs[key], doc.rel) {
				refs[key] = append(refs[key], doc.rel)
			}
		}
	}
	return refs, nil
}

// Candidate is a bold phrase that looks like an undefined term.
type Candidate struct {
	Term        string `json:"term"`
	Occurrences int    `json:"occurrences"`
}

// Candidates scans bold phrases outside fenced code that are not already
// known, keeping those seen at least minOccurrences times. Results are
// ordered by occurrences descending, then term.
func Candidates(ctx context.Context, fsys fs.FS, dir string, known map[string]struct{}, minOccurrences int) ([]Candidate, error) {
	if minOccurrences <= 0 {
		minOccurrences = DefaultMinOccurrences
	}
	docs, err := readDocs(ctx, fsys, dir)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	for _, doc := range docs {
		prose := fencedCodePattern.ReplaceAllString(doc.text, "")
		for _, m := range boldTermPattern.FindAllStringSubmatch(prose, -1) {
			term := strings.TrimSpace(m[1])
			if !isCandidate(term, known) {
				continue
			}
			counts[term]++
		}
	}

	var out []Candidate
	for term, n := range counts {
		if n >= minOccurrences {
			out = append(out, Candidate{Term: term, Occurrences: n})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Occurrences != out[j].Occurrences {
			return out[i].Occurrences > out[j].Occurrences
		}
		return out[i].Term < out[j].Term
	})
	return out, nil
}

func isCandidate(term string, known map[string]struct{}) bool {
	if len(term) < 3 || strings.Contains(term, ":") {
		return false
	}
	if _, ok := known[strings.ToLower(term)]; ok {
		return false
	}
	for _, prefix := range candidateSkipPrefixes {
		if strings.HasPrefix(term, prefix) {
			return false
		}
	}
	return true
}

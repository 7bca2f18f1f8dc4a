// Package glossary parses, cross-references and regenerates the style
// guide glossary.
package glossary

import (
	"regexp"
	"strings"
	"unicode"
)

// NonTermSections are level-two sections preserved verbatim rather than
// parsed as alphabetical term sections.
var NonTermSections = []string{
	"Metadata Tags Reference",
	"Common Abbreviations",
	"Tool Names Quick Reference",
}

var (
	letterSectionPattern = regexp.MustCompile(`^## ([A-Z])$`)
	sectionPattern       = regexp.MustCompile(`^## (.+)$`)
	termPattern          = regexp.MustCompile(`^### (.+)$`)
	trailingRulePattern  = regexp.MustCompile(`(\n*---\s*)+$`)
	trailingSepPattern   = regexp.MustCompile(`\n---\s*$`)
	referencedPattern    = regexp.MustCompile(`\n*\*Referenced in: .*$`)

	supplementaryFooters = []*regexp.Regexp{
		regexp.MustCompile(`\*\*Total Terms\*\*:.*`),
		regexp.MustCompile(`For additional terms.*`),
		regexp.MustCompile(`\[GitHub repository\].*`),
	}
)

// Term is a single glossary definition.
type Term struct {
	Name       string `json:"name"`
	Definition string `json:"definition"`
	// Section is the alphabetical letter the term is filed under.
	Section string `json:"section"`
}

// Key returns the case-insensitive lookup key.
func (t Term) Key() string {
	return strings.ToLower(t.Name)
}

// BaseName strips parenthetical notes, so "CI/CD (Continuous ...)" matches
// on "CI/CD".
func (t Term) BaseName() string {
	name, _, _ := strings.Cut(t.Name, "(")
	return strings.TrimSpace(name)
}

// Glossary is the parsed content of glossary.md.
type Glossary struct {
	Terms map[string]Term
	// Supplementary holds the non-term sections with the generated footer
	// removed.
	Supplementary string
}

// Known returns the set of lowercase term names.
func (g *Glossary) Known() map[string]struct{} {
	known := make(map[string]struct{}, len(g.Terms))
	for key := range g.Terms {
		known[key] = struct{}{}
	}
	return known
}

// bodyLines splits source and drops the lines inside the front-matter
// block, delimited by the first two "---" lines.
func bodyLines(source []byte) []string {
	var out []string
	inFrontMatter := false
	delimiters := 0
	for _, line := range strings.Split(string(source), "\n") {
		if strings.TrimSpace(line) == "---" {
			delimiters++
			if delimiters <= 2 {
				inFrontMatter = !inFrontMatter
				continue
			}
		}
		if inFrontMatter {
			continue
		}
		out = append(out, line)
	}
	return out
}

func isNonTermSection(name string) bool {
	for _, s := range NonTermSections {
		if s == name {
			return true
		}
	}
	return false
}

// Parse extracts terms and supplementary sections from glossary source.
func Parse(source []byte) *Glossary {
	lines := bodyLines(source)
	return &Glossary{
		Terms:         parseTerms(lines),
		Supplementary: parseSupplementary(lines),
	}
}

func parseTerms(lines []string) map[string]Term {
	terms := make(map[string]Term)

	var (
		section    string
		current    string
		definition []string
		nonTerm    bool
	)
	flush := func() {
		if current == "" || nonTerm {
			return
		}
		text := strings.TrimSpace(strings.Join(definition, "\n"))
		text = strings.TrimSpace(trailingRulePattern.ReplaceAllString(text, ""))
		// Generated reference lines are rebuilt on every run.
		text = strings.TrimSpace(referencedPattern.ReplaceAllString(text, ""))
		terms[strings.ToLower(current)] = Term{Name: current, Definition: text, Section: section}
	}

	for _, raw := range lines {
		line := strings.TrimSpace(raw)

		if m := letterSectionPattern.FindStringSubmatch(line); m != nil {
			flush()
			section = m[1]
			current, definition, nonTerm = "", nil, false
			continue
		}
		if m := sectionPattern.FindStringSubmatch(line); m != nil {
			flush()
			if isNonTermSection(strings.TrimSpace(m[1])) {
				nonTerm = true
			}
			current, definition = "", nil
			continue
		}
		if nonTerm {
			continue
		}
		if m := termPattern.FindStringSubmatch(line); m != nil {
			flush()
			current, definition = strings.TrimSpace(m[1]), nil
			continue
		}
		if current != "" {
			definition = append(definition, raw)
		}
	}
	flush()
	return terms
}

func parseSupplementary(lines []string) string {
	var captured []string
	capturing := false
	for _, raw := range lines {
		if m := sectionPattern.FindStringSubmatch(strings.TrimSpace(raw)); m != nil {
			name := strings.TrimSpace(m[1])
			if isNonTermSection(name) {
				capturing = true
			} else if letterSectionPattern.MatchString("## " + name) {
				capturing = false
				continue
			}
		}
		if capturing {
			captured = append(captured, raw)
		}
	}

	result := strings.TrimSpace(strings.Join(captured, "\n"))
	for _, footer := range supplementaryFooters {
		result = footer.ReplaceAllString(result, "")
	}
	result = trailingSepPattern.ReplaceAllString(strings.TrimRightFunc(result, unicode.IsSpace), "")
	return strings.TrimSpace(result)
}

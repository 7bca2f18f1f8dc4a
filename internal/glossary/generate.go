package glossary

import (
	"fmt"
	"sort"
	"strings"
)

// DefaultMaxReferences caps the links listed under a term.
const DefaultMaxReferences = 5

const defaultFrontMatter = `---
title: "Glossary"
description: "Comprehensive glossary of terms used in the Dukes Engineering Style Guide"
author: "Tyler Dukes"
tags: [glossary, terms, definitions, reference, dictionary]
category: "Reference"
status: "active"
---`

// GenerateOptions controls the rendered glossary.
type GenerateOptions struct {
	CrossRef      bool
	References    References
	MaxReferences int
	// Repository is the owner/name used for the issues link in the footer.
	Repository string
}

// Generate renders glossary.md from parsed terms.
func Generate(g *Glossary, opts GenerateOptions) string {
	maxRefs := opts.MaxReferences
	if maxRefs <= 0 {
		maxRefs = DefaultMaxReferences
	}
	repo := opts.Repository
	if repo == "" {
		repo = "tydukes/coding-style-guide"
	}

	sections := make(map[string][]Term)
	for _, term := range g.Terms {
		sections[term.Section] = append(sections[term.Section], term)
	}
	letters := make([]string, 0, len(sections))
	for letter, terms := range sections {
		letters = append(letters, letter)
		sort.SliceStable(terms, func(i, j int) bool { return terms[i].Key() < terms[j].Key() })
	}
	sort.Strings(letters)

	lines := []string{
		defaultFrontMatter,
		"",
		"This glossary defines terms used throughout the Dukes Engineering Style Guide, including technical concepts, tool names,",
		"metadata tags, and industry terminology.",
		"",
	}

	for _, letter := range letters {
		lines = append(lines, "## "+letter, "")
		for _, term := range sections[letter] {
			lines = append(lines, "### "+term.Name, "", term.Definition)
			if opts.CrossRef {
				if refs := opts.References[term.Key()]; len(refs) > 0 {
					lines = append(lines, "", referenceLine(refs, maxRefs))
				}
			}
			lines = append(lines, "")
		}
	}

	if g.Supplementary != "" {
		lines = append(lines, "---", "", g.Supplementary, "")
	}

	lines = append(lines,
		"---",
		"",
		fmt.Sprintf("**Total Terms**: %d+", len(g.Terms)),
		"",
		"For additional terms or clarifications, please refer to the specific language guides or open an issue on the",
		fmt.Sprintf("[GitHub repository](https://github.com/%s/issues).", repo),
		"",
	)
	return strings.Join(lines, "\n")
}

func referenceLine(refs []string, limit int) string {
	sorted := append([]string(nil), refs...)
	sort.Strings(sorted)

	links := make([]string, 0, limit)
	for i, ref := range sorted {
		if i == limit {
			break
		}
		links = append(links, fmt.Sprintf("[%s](%s)", ref, ref))
	}
	line := "*Referenced in: " + strings.Join(links, ", ")
	if len(sorted) > limit {
		return line + fmt.Sprintf(" and %d more*", len(sorted)-limit)
	}
	return line + "*"
}

// Preview shortens long content to its first 50 and last 10 lines.
func Preview(content, output string, terms int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "\n--- Preview (%s) ---\n", output)

	lines := strings.Split(content, "\n")
	if len(lines) > 60 {
		for _, line := range lines[:50] {
			b.WriteString(line + "\n")
		}
		fmt.Fprintf(&b, "\n... (%d lines omitted) ...\n\n", len(lines)-60)
		for _, line := range lines[len(lines)-10:] {
			b.WriteString(line + "\n")
		}
	} else {
		b.WriteString(content + "\n")
	}
	fmt.Fprintf(&b, "\nTotal: %d lines, %d terms\n", len(lines), terms)
	return b.String()
}

// Package markdown loads style-guide documents from a docs tree. It splits
// the YAML front-matter from the body with adrg/frontmatter, renders bodies
// with goldmark and extracts a structural Outline (headings, code blocks,
// links and prose) that the lint, ratio and glossary tooling build on.
package markdown

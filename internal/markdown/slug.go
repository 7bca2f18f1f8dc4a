package markdown

import (
	"html"
	"regexp"
	"strconv"
	"strings"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"golang.org/x/text/unicode/norm"
)

var (
	linkTargetPattern = regexp.MustCompile(`\]\([^)]*\)`)
	htmlTagPattern    = regexp.MustCompile(`<[^>]*>`)
	nonWordPattern    = regexp.MustCompile(`[^\w\s-]`)
	separatorPattern  = regexp.MustCompile(`[-\s]+`)
	suffixPattern     = regexp.MustCompile(`^(.*)_([0-9]+)$`)
)

// Slugify turns heading text into the anchor MkDocs publishes for it: ASCII
// folded, punctuation dropped, lower-cased, runs of spaces and hyphens
// collapsed into a single "-".
func Slugify(value string) string {
	value = norm.NFKD.String(value)
	var b strings.Builder
	for _, r := range value {
		if r < 0x80 {
			b.WriteRune(r)
		}
	}
	value = nonWordPattern.ReplaceAllString(b.String(), "")
	value = strings.ToLower(strings.TrimSpace(value))
	return separatorPattern.ReplaceAllString(value, "-")
}

// headingText reduces a raw heading line to the text a reader sees: link
// targets, inline HTML and entities are removed before slugging.
func headingText(line []byte) string {
	value := linkTargetPattern.ReplaceAllString(string(line), "]")
	value = htmlTagPattern.ReplaceAllString(value, "")
	return html.UnescapeString(value)
}

// headingIDs implements parser.IDs with the MkDocs toc rules. Duplicates get
// "_1", "_2", ... suffixes. One instance serves a single document.
type headingIDs struct {
	used map[string]struct{}
}

// NewHeadingIDs returns a fresh parser.IDs for one document.
func NewHeadingIDs() parser.IDs {
	return &headingIDs{used: map[string]struct{}{}}
}

func (ids *headingIDs) Generate(value []byte, _ ast.NodeKind) []byte {
	id := Slugify(headingText(value))
	for _, taken := ids.used[id]; taken || id == ""; _, taken = ids.used[id] {
		if m := suffixPattern.FindStringSubmatch(id); m != nil {
			n, _ := strconv.Atoi(m[2])
			id = m[1] + "_" + strconv.Itoa(n+1)
		} else {
			id += "_1"
		}
	}
	ids.used[id] = struct{}{}
	return []byte(id)
}

func (ids *headingIDs) Put(value []byte) {
	ids.used[string(value)] = struct{}{}
}

// parseContext returns a parser context that assigns MkDocs heading IDs.
func parseContext() parser.Context {
	return parser.NewContext(parser.WithIDs(NewHeadingIDs()))
}

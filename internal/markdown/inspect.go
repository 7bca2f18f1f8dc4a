package markdown

import (
	"bytes"
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"

	"github.com/goliatone/go-styleguide/pkg/interfaces"
)

var inspectParser = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithParserOptions(parser.WithAutoHeadingID()),
).Parser()

// Inspect walks the goldmark AST of body and returns its Outline. Line
// numbers are 1-based and relative to body.
func Inspect(body []byte) *interfaces.Outline {
	root := inspectParser.Parse(text.NewReader(body), parser.WithContext(parseContext()))
	lines := newLineIndex(body)

	outline := &interfaces.Outline{}
	var prose strings.Builder

	_ = ast.Walk(root, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			if node.Type() == ast.TypeBlock && prose.Len() > 0 {
				if !strings.HasSuffix(prose.String(), "\n") {
					prose.WriteByte('\n')
				}
			}
			return ast.WalkContinue, nil
		}

		switch n := node.(type) {
		case *ast.Heading:
			heading := interfaces.Heading{
				Level: n.Level,
				Text:  strings.TrimSpace(string(n.Text(body))),
				Line:  lines.blockLine(n),
			}
			if id, ok := n.AttributeString("id"); ok {
				if raw, ok := id.([]byte); ok {
					heading.ID = string(raw)
				}
			}
			outline.Headings = append(outline.Headings, heading)
		case *ast.FencedCodeBlock:
			block := interfaces.CodeBlock{
				Language: string(n.Language(body)),
				Lines:    n.Lines().Len(),
				Fenced:   true,
			}
			switch {
			case n.Info != nil:
				block.Line = lines.line(n.Info.Segment.Start)
			case n.Lines().Len() > 0:
				block.Line = lines.line(n.Lines().At(0).Start) - 1
			}
			outline.CodeBlocks = append(outline.CodeBlocks, block)
			return ast.WalkSkipChildren, nil
		case *ast.CodeBlock:
			outline.CodeBlocks = append(outline.CodeBlocks, interfaces.CodeBlock{
				Lines: n.Lines().Len(),
				Line:  lines.blockLine(n),
			})
			return ast.WalkSkipChildren, nil
		case *ast.CodeSpan, *ast.HTMLBlock, *ast.RawHTML:
			return ast.WalkSkipChildren, nil
		case *ast.Link:
			outline.Links = append(outline.Links, interfaces.Link{
				Destination: string(n.Destination),
				Text:        strings.TrimSpace(string(n.Text(body))),
				Line:        lines.inlineLine(n),
			})
		case *ast.Image:
			outline.Links = append(outline.Links, interfaces.Link{
				Destination: string(n.Destination),
				Text:        strings.TrimSpace(string(n.Text(body))),
				Line:        lines.inlineLine(n),
				Image:       true,
			})
		case *ast.AutoLink:
			outline.Links = append(outline.Links, interfaces.Link{
				Destination: string(n.URL(body)),
				Text:        string(n.Label(body)),
				Line:        lines.inlineLine(n),
			})
		case *ast.Text:
			prose.Write(n.Segment.Value(body))
			if n.SoftLineBreak() || n.HardLineBreak() {
				prose.WriteByte('\n')
			}
		case *ast.String:
			prose.Write(n.Value)
		}
		return ast.WalkContinue, nil
	})

	outline.Prose = prose.String()
	outline.UnclosedFence = UnclosedFence(body)
	return outline
}

// UnclosedFence returns the 1-based line of a fenced code block opener that
// is never closed, or 0 when every fence is balanced. A closing fence uses
// the opener's character, is at least as long and carries no info string.
func UnclosedFence(body []byte) int {
	var (
		openChar byte
		openLen  int
		openLine int
	)
	for i, raw := range bytes.Split(body, []byte("\n")) {
		line := strings.TrimRight(string(raw), "\r")
		indent := len(line) - len(strings.TrimLeft(line, " "))
		if indent > 3 {
			continue
		}
		trimmed := line[indent:]
		if len(trimmed) < 3 || (trimmed[0] != '`' && trimmed[0] != '~') {
			continue
		}
		char := trimmed[0]
		run := len(trimmed) - len(strings.TrimLeft(trimmed, string(char)))
		if run < 3 {
			continue
		}
		rest := strings.TrimSpace(trimmed[run:])

		if openLen == 0 {
			if char == '`' && strings.Contains(rest, "`") {
				continue
			}
			openChar, openLen, openLine = char, run, i+1
			continue
		}
		if char == openChar && run >= openLen && rest == "" {
			openChar, openLen, openLine = 0, 0, 0
		}
	}
	return openLine
}

// HeadingIDs returns the set of heading anchors in the outline.
func HeadingIDs(outline *interfaces.Outline) map[string]struct{} {
	ids := map[string]struct{}{}
	if outline == nil {
		return ids
	}
	for _, h := range outline.Headings {
		if h.ID != "" {
			ids[h.ID] = struct{}{}
		}
	}
	return ids
}

type lineIndex struct {
	starts []int
}

func newLineIndex(source []byte) lineIndex {
	starts := []int{0}
	for i, b := range source {
		if b == '\n' {
			starts = append(starts, i+1)
		}
	}
	return lineIndex{starts: starts}
}

func (l lineIndex) line(offset int) int {
	return sort.Search(len(l.starts), func(i int) bool { return l.starts[i] > offset })
}

func (l lineIndex) blockLine(node ast.Node) int {
	if segs := node.Lines(); segs != nil && segs.Len() > 0 {
		return l.line(segs.At(0).Start)
	}
	return 0
}

// inlineLine resolves the line of an inline node from its first text
// descendant, falling back to the enclosing block.
func (l lineIndex) inlineLine(node ast.Node) int {
	var found = -1
	_ = ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering || found >= 0 {
			return ast.WalkStop, nil
		}
		if t, ok := n.(*ast.Text); ok {
			found = t.Segment.Start
			return ast.WalkStop, nil
		}
		return ast.WalkContinue, nil
	})
	if found >= 0 {
		return l.line(found)
	}
	for parent := node.Parent(); parent != nil; parent = parent.Parent() {
		if parent.Type() == ast.TypeBlock {
			return l.blockLine(parent)
		}
	}
	return 0
}

package markdown

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/adrg/frontmatter"

	"github.com/goliatone/go-styleguide/pkg/interfaces"
)

const frontMatterDelimiter = "---"

// ParseFrontMatter extracts metadata and the Markdown body from source. A
// source without a leading front-matter block yields an empty FrontMatter and
// the full source as body. The returned line count covers the block and its
// delimiters so body line numbers can be mapped back to the file.
func ParseFrontMatter(source []byte) (interfaces.FrontMatter, []byte, int, error) {
	block, body, lines, ok := splitFrontMatter(source)
	if !ok {
		return interfaces.FrontMatter{Custom: map[string]any{}, Raw: map[string]any{}}, source, 0, nil
	}

	var meta frontMatterEnvelope
	if _, err := frontmatter.Parse(bytes.NewReader(block), &meta); err != nil {
		return interfaces.FrontMatter{}, nil, 0, fmt.Errorf("parse frontmatter: %w", err)
	}
	var raw map[string]any
	if _, err := frontmatter.Parse(bytes.NewReader(block), &raw); err != nil {
		return interfaces.FrontMatter{}, nil, 0, fmt.Errorf("parse frontmatter: %w", err)
	}

	return envelopeToFrontMatter(meta, raw), body, lines, nil
}

// BuildDocument assembles an interfaces.Document from the supplied file path,
// section, raw content and modification time. BodyHTML and Outline are left
// empty so callers decide what to compute.
func BuildDocument(path, section string, source []byte, modified time.Time) (*interfaces.Document, error) {
	fm, body, lines, err := ParseFrontMatter(source)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return &interfaces.Document{
		FilePath:         path,
		Section:          section,
		FrontMatter:      fm,
		HasFrontMatter:   lines > 0,
		FrontMatterLines: lines,
		Body:             body,
		LastModified:     modified,
	}, nil
}

// HasFrontMatter reports whether source opens with a closed front-matter block.
func HasFrontMatter(source []byte) bool {
	_, _, _, ok := splitFrontMatter(source)
	return ok
}

// splitFrontMatter returns the delimited block (delimiters included), the
// body after the closing delimiter and the number of lines consumed. The
// opening delimiter must be the first line of the file.
func splitFrontMatter(source []byte) (block, body []byte, lines int, ok bool) {
	offset := 0
	if bytes.HasPrefix(source, utf8BOM) {
		offset = len(utf8BOM)
	}

	pos := offset
	for pos < len(source) {
		next := bytes.IndexByte(source[pos:], '\n')
		end := len(source)
		if next >= 0 {
			end = pos + next + 1
		}
		line := strings.TrimRight(string(source[pos:end]), " \t\r\n")
		lines++
		pos = end
		if line != frontMatterDelimiter {
			if lines == 1 {
				return nil, nil, 0, false
			}
			continue
		}
		if lines > 1 {
			return source[offset:end], source[end:], lines, true
		}
	}
	return nil, nil, 0, false
}

var utf8BOM = []byte{0xef, 0xbb, 0xbf}

type frontMatterEnvelope struct {
	Title       string         `yaml:"title"`
	Description string         `yaml:"description"`
	Author      string         `yaml:"author"`
	Tags        any            `yaml:"tags"`
	Category    string         `yaml:"category"`
	Status      string         `yaml:"status"`
	Version     string         `yaml:"version"`
	Date        string         `yaml:"date"`
	Custom      map[string]any `yaml:",inline"`
}

func envelopeToFrontMatter(env frontMatterEnvelope, decoded map[string]any) interfaces.FrontMatter {
	custom := make(map[string]any, len(env.Custom))
	for key, value := range env.Custom {
		custom[key] = normalizeValue(value)
	}

	tags := normalizeTags(env.Tags)

	// Raw keeps every key that is present, empty values included, so
	// required-key checks can tell a blank value from a missing one. Known
	// keys use their typed form (version "1.0" stays a string).
	raw := make(map[string]any, len(decoded))
	for key, value := range decoded {
		raw[key] = normalizeValue(value)
	}
	typed := map[string]string{
		"title":       env.Title,
		"description": env.Description,
		"author":      env.Author,
		"category":    env.Category,
		"status":      env.Status,
		"version":     env.Version,
		"date":        env.Date,
	}
	for key, value := range typed {
		if _, ok := raw[key]; ok {
			raw[key] = value
		}
	}
	if _, ok := raw["tags"]; ok {
		list := make([]any, len(tags))
		for i, tag := range tags {
			list[i] = tag
		}
		raw["tags"] = list
	}

	return interfaces.FrontMatter{
		Title:       env.Title,
		Description: env.Description,
		Author:      env.Author,
		Tags:        tags,
		Category:    env.Category,
		Status:      env.Status,
		Version:     env.Version,
		Date:        env.Date,
		Custom:      custom,
		Raw:         raw,
	}
}

// normalizeTags promotes a scalar tag to a single-element list.
func normalizeTags(value any) []string {
	switch v := value.(type) {
	case nil:
		return nil
	case string:
		if strings.TrimSpace(v) == "" {
			return nil
		}
		return []string{v}
	case []string:
		return append([]string(nil), v...)
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if item == nil {
				continue
			}
			out = append(out, fmt.Sprint(item))
		}
		return out
	default:
		return []string{fmt.Sprint(v)}
	}
}

// normalizeValue converts YAML maps with interface keys into map[string]any
// so front-matter can be validated as JSON.
func normalizeValue(value any) any {
	switch v := value.(type) {
	case map[any]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			out[fmt.Sprint(key)] = normalizeValue(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			out[key] = normalizeValue(item)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = normalizeValue(item)
		}
		return out
	case time.Time:
		return v.Format(time.RFC3339)
	default:
		return v
	}
}

// FrontMatterKeys returns the sorted keys present in the front-matter block.
func FrontMatterKeys(fm interfaces.FrontMatter) []string {
	keys := make([]string, 0, len(fm.Raw))
	for key := range fm.Raw {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

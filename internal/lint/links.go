package lint

import (
	"io/fs"
	"net/url"
	"path"
	"strings"

	"github.com/goliatone/go-styleguide/internal/markdown"
)

type internalLinksRule struct{}

func (internalLinksRule) Name() string { return "links-internal" }

func (r internalLinksRule) Check(env *Env, file *File) []Issue {
	if file.Doc == nil || file.Doc.Outline == nil {
		return nil
	}

	var issues []Issue
	for _, link := range file.Doc.Outline.Links {
		target, anchor, ok := splitInternal(link.Destination)
		if !ok {
			continue
		}
		line := link.Line + file.Doc.FrontMatterLines

		if target == "" {
			if anchor != "" {
				if _, found := markdown.HeadingIDs(file.Doc.Outline)[anchor]; !found {
					issues = append(issues, issue(file, line, r.Name(), SeverityError, "anchor #%s does not match any heading", anchor))
				}
			}
			continue
		}

		resolved := path.Clean(path.Join(path.Dir(file.Path), target))
		if resolved == ".." || strings.HasPrefix(resolved, "../") {
			issues = append(issues, issue(file, line, r.Name(), SeverityError, "link %q points outside the docs root", link.Destination))
			continue
		}

		info := env.target(resolved)
		if !info.exists {
			issues = append(issues, issue(file, line, r.Name(), SeverityError, "broken link %q: %s not found", link.Destination, resolved))
			continue
		}
		if anchor == "" || info.ids == nil {
			continue
		}
		if _, found := info.ids[anchor]; !found {
			issues = append(issues, issue(file, line, r.Name(), SeverityError, "anchor #%s not found in %s", anchor, info.path))
		}
	}
	return issues
}

// splitInternal returns the path and fragment of a relative link. External
// links (any scheme, protocol-relative or site-absolute) report ok=false.
func splitInternal(destination string) (target, anchor string, ok bool) {
	destination = strings.TrimSpace(destination)
	if destination == "" || strings.HasPrefix(destination, "/") {
		return "", "", false
	}
	u, err := url.Parse(destination)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return "", "", false
	}
	return u.Path, u.Fragment, true
}

type targetInfo struct {
	path   string
	exists bool
	// ids is nil for targets that are not Markdown documents.
	ids map[string]struct{}
}

// target resolves and caches a link target. Directory links resolve to
// their index.md or README.md the way MkDocs serves them.
func (e *Env) target(resolved string) targetInfo {
	if cached, ok := e.targets.Load(resolved); ok {
		return cached.(targetInfo)
	}

	info := targetInfo{path: resolved}
	if stat, err := fs.Stat(e.fsys, resolved); err == nil {
		if stat.IsDir() {
			for _, index := range []string{"index.md", "README.md"} {
				candidate := path.Join(resolved, index)
				if _, err := fs.Stat(e.fsys, candidate); err == nil {
					info.path = candidate
					info.exists = true
					break
				}
			}
		} else {
			info.exists = true
		}
	}

	if info.exists && strings.EqualFold(path.Ext(info.path), ".md") {
		if source, err := fs.ReadFile(e.fsys, info.path); err == nil {
			_, body, _, err := markdown.ParseFrontMatter(source)
			if err != nil {
				body = source
			}
			info.ids = markdown.HeadingIDs(markdown.Inspect(body))
		}
	}

	actual, _ := e.targets.LoadOrStore(resolved, info)
	return actual.(targetInfo)
}

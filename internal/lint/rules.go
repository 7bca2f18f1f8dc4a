package lint

import (
	"bytes"
	"fmt"
	"regexp"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-slug"
	"golang.org/x/mod/semver"

	"github.com/goliatone/go-styleguide/internal/cleanup"
	fmschema "github.com/goliatone/go-styleguide/internal/validation"
	"github.com/goliatone/go-styleguide/pkg/interfaces"
)

// File is a unit of work for the rules. Doc is nil for non-Markdown files.
type File struct {
	Path   string
	Source []byte
	Doc    *interfaces.Document

	parseErr error
}

// Rule checks one file.
type Rule interface {
	Name() string
	Check(env *Env, file *File) []Issue
}

func issue(file *File, line int, rule string, severity Severity, format string, args ...any) Issue {
	return Issue{
		Path:     file.Path,
		Line:     line,
		Rule:     rule,
		Severity: severity,
		Message:  fmt.Sprintf(format, args...),
	}
}

// DefaultRules returns every built-in rule.
func DefaultRules() []Rule {
	return []Rule{
		frontMatterPresentRule{},
		frontMatterRequiredRule{},
		frontMatterStatusRule{},
		frontMatterTagsRule{},
		frontMatterVersionRule{},
		frontMatterSchemaRule{},
		codeFenceClosedRule{},
		singleH1Rule{},
		internalLinksRule{},
		staticFooterRule{},
		moduleTagRule{},
	}
}

type frontMatterPresentRule struct{}

func (frontMatterPresentRule) Name() string { return "frontmatter-present" }

func (r frontMatterPresentRule) Check(_ *Env, file *File) []Issue {
	if file.Doc == nil || file.Doc.HasFrontMatter {
		return nil
	}
	if bytes.HasPrefix(bytes.TrimPrefix(file.Source, []byte("\ufeff")), []byte("---")) {
		return []Issue{issue(file, 1, r.Name(), SeverityError, "front-matter block is not closed")}
	}
	return []Issue{issue(file, 1, r.Name(), SeverityError, "missing front-matter block")}
}

type frontMatterRequiredRule struct{}

func (frontMatterRequiredRule) Name() string { return "frontmatter-required" }

func (r frontMatterRequiredRule) Check(env *Env, file *File) []Issue {
	if file.Doc == nil || !file.Doc.HasFrontMatter {
		return nil
	}

	keys := make([]*validation.KeyRules, 0, len(env.opts.RequiredKeys))
	for _, key := range env.opts.RequiredKeys {
		keys = append(keys, validation.Key(key, validation.Required.Error("must not be empty")))
	}
	err := validation.Validate(file.Doc.FrontMatter.Raw, validation.Map(keys...).AllowExtraKeys())
	if err == nil {
		return nil
	}

	errs, ok := err.(validation.Errors)
	if !ok {
		return []Issue{issue(file, 1, r.Name(), SeverityError, "%v", err)}
	}
	names := make([]string, 0, len(errs))
	for name := range errs {
		names = append(names, name)
	}
	sort.Strings(names)

	var issues []Issue
	for _, name := range names {
		if _, present := file.Doc.FrontMatter.Raw[name]; !present {
			issues = append(issues, issue(file, 1, r.Name(), SeverityError, "missing required key %q", name))
			continue
		}
		issues = append(issues, issue(file, keyLine(file, name), r.Name(), SeverityError, "key %q %v", name, errs[name]))
	}
	return issues
}

type frontMatterStatusRule struct{}

func (frontMatterStatusRule) Name() string { return "frontmatter-status" }

func (r frontMatterStatusRule) Check(env *Env, file *File) []Issue {
	if file.Doc == nil {
		return nil
	}
	status := strings.ToLower(strings.TrimSpace(file.Doc.FrontMatter.Status))
	if status == "" {
		return nil
	}
	allowed := make([]any, len(env.opts.AllowedStatuses))
	for i, s := range env.opts.AllowedStatuses {
		allowed[i] = strings.ToLower(s)
	}
	if err := validation.Validate(status, validation.In(allowed...)); err != nil {
		return []Issue{issue(file, keyLine(file, "status"), r.Name(), SeverityError,
			"status %q is not one of %s", file.Doc.FrontMatter.Status, strings.Join(env.opts.AllowedStatuses, ", "))}
	}
	return nil
}

type frontMatterTagsRule struct{}

func (frontMatterTagsRule) Name() string { return "frontmatter-tags" }

func (r frontMatterTagsRule) Check(_ *Env, file *File) []Issue {
	if file.Doc == nil {
		return nil
	}
	line := keyLine(file, "tags")
	seen := map[string]struct{}{}
	var issues []Issue
	for _, tag := range file.Doc.FrontMatter.Tags {
		if !slug.IsValid(tag) {
			if suggestion, err := slug.Normalize(tag); err == nil && suggestion != "" {
				issues = append(issues, issue(file, line, r.Name(), SeverityError, "tag %q is not a valid slug (try %q)", tag, suggestion))
			} else {
				issues = append(issues, issue(file, line, r.Name(), SeverityError, "tag %q is not a valid slug", tag))
			}
		}
		key := strings.ToLower(tag)
		if _, dup := seen[key]; dup {
			issues = append(issues, issue(file, line, r.Name(), SeverityError, "duplicate tag %q", tag))
		}
		seen[key] = struct{}{}
	}
	return issues
}

type frontMatterVersionRule struct{}

func (frontMatterVersionRule) Name() string { return "frontmatter-version" }

func (r frontMatterVersionRule) Check(_ *Env, file *File) []Issue {
	if file.Doc == nil {
		return nil
	}
	version := strings.TrimSpace(file.Doc.FrontMatter.Version)
	if version == "" || ValidDocVersion(version) {
		return nil
	}
	return []Issue{issue(file, keyLine(file, "version"), r.Name(), SeverityError,
		"version %q must look like MAJOR.MINOR or MAJOR.MINOR.PATCH", version)}
}

// ValidDocVersion reports whether v is MAJOR.MINOR[.PATCH] without
// pre-release or build suffixes. A leading "v" is accepted.
func ValidDocVersion(v string) bool {
	candidate := "v" + strings.TrimPrefix(strings.TrimSpace(v), "v")
	if !semver.IsValid(candidate) || semver.Prerelease(candidate) != "" || semver.Build(candidate) != "" {
		return false
	}
	return strings.Count(candidate, ".") >= 1
}

type frontMatterSchemaRule struct{}

func (frontMatterSchemaRule) Name() string { return "frontmatter-schema" }

func (r frontMatterSchemaRule) Check(env *Env, file *File) []Issue {
	if env.schema == nil || file.Doc == nil || !file.Doc.HasFrontMatter {
		return nil
	}
	err := env.schema.Validate(file.Doc.FrontMatter.Raw)
	if err == nil {
		return nil
	}
	var issues []Issue
	for _, vi := range fmschema.Issues(err) {
		issues = append(issues, issue(file, 1, r.Name(), SeverityError, "%s: %s", vi.Pointer(), vi.Message))
	}
	return issues
}

type codeFenceClosedRule struct{}

func (codeFenceClosedRule) Name() string { return "code-fence-closed" }

func (r codeFenceClosedRule) Check(_ *Env, file *File) []Issue {
	if file.Doc == nil || file.Doc.Outline == nil || file.Doc.Outline.UnclosedFence == 0 {
		return nil
	}
	return []Issue{issue(file, file.Doc.Outline.UnclosedFence+file.Doc.FrontMatterLines, r.Name(), SeverityError,
		"fenced code block is never closed")}
}

type singleH1Rule struct{}

func (singleH1Rule) Name() string { return "heading-single-h1" }

func (r singleH1Rule) Check(_ *Env, file *File) []Issue {
	if file.Doc == nil || file.Doc.Outline == nil {
		return nil
	}
	var issues []Issue
	first := ""
	for _, h := range file.Doc.Outline.Headings {
		if h.Level != 1 {
			continue
		}
		if first == "" {
			first = h.Text
			continue
		}
		issues = append(issues, issue(file, h.Line+file.Doc.FrontMatterLines, r.Name(), SeverityError,
			"additional level-1 heading %q (document already has %q)", h.Text, first))
	}
	return issues
}

type staticFooterRule struct{}

func (staticFooterRule) Name() string { return "static-footer" }

func (r staticFooterRule) Check(_ *Env, file *File) []Issue {
	if file.Doc == nil {
		return nil
	}
	var issues []Issue
	inFence := false
	for i, line := range strings.Split(string(file.Doc.Body), "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			inFence = !inFence
			continue
		}
		if !inFence && cleanup.IsStaticFooter(line) {
			issues = append(issues, issue(file, i+1+file.Doc.FrontMatterLines, r.Name(), SeverityWarning,
				"hard-coded footer %q goes stale; remove it", strings.TrimSpace(line)))
		}
	}
	return issues
}

var moduleTag = regexp.MustCompile(`@module:\s*\w+`)

type moduleTagRule struct{}

func (moduleTagRule) Name() string { return "module-tag" }

func (r moduleTagRule) Check(_ *Env, file *File) []Issue {
	if file.Doc != nil || len(bytes.TrimSpace(file.Source)) == 0 {
		return nil
	}
	if moduleTag.Match(file.Source) {
		return nil
	}
	return []Issue{issue(file, 0, r.Name(), SeverityError, "missing @module: metadata tag")}
}

// keyLine finds the file line of a front-matter key, defaulting to 1.
func keyLine(file *File, key string) int {
	if file.Doc == nil || file.Doc.FrontMatterLines == 0 {
		return 1
	}
	lines := strings.SplitN(string(file.Source), "\n", file.Doc.FrontMatterLines+1)
	for i := 1; i < len(lines) && i < file.Doc.FrontMatterLines; i++ {
		if strings.HasPrefix(lines[i], key+":") {
			return i + 1
		}
	}
	return 1
}

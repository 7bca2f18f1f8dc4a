package markdown

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-styleguide/pkg/interfaces"
)

const guideSource = `---
title: "Bash Style Guide"
description: Conventions for shell scripts
author: Tyler Dukes
tags: [bash, shell]
category: Language Guides
status: active
version: 1.0
reviewers:
  lead: ops
---

# Bash Style Guide

Use **strict mode** in every script.
`

func TestParseFrontMatter(t *testing.T) {
	fm, body, lines, err := ParseFrontMatter([]byte(guideSource))
	if err != nil {
		t.Fatalf("ParseFrontMatter: %v", err)
	}

	if fm.Title != "Bash Style Guide" || fm.Author != "Tyler Dukes" {
		t.Fatalf("unexpected title/author: %+v", fm)
	}
	if diff := cmp.Diff([]string{"bash", "shell"}, fm.Tags); diff != "" {
		t.Fatalf("tags mismatch (-want +got):\n%s", diff)
	}
	if fm.Version != "1.0" {
		t.Fatalf("expected version kept as written, got %q", fm.Version)
	}
	reviewers, ok := fm.Custom["reviewers"].(map[string]any)
	if !ok || reviewers["lead"] != "ops" {
		t.Fatalf("expected nested custom map with string keys, got %#v", fm.Custom["reviewers"])
	}
	if fm.Raw["category"] != "Language Guides" {
		t.Fatalf("expected raw category, got %#v", fm.Raw)
	}
	if lines != 11 {
		t.Fatalf("expected 11 front-matter lines, got %d", lines)
	}
	if !strings.HasPrefix(string(body), "\n# Bash Style Guide") {
		t.Fatalf("unexpected body %q", body)
	}
}

func TestParseFrontMatterPromotesScalarTag(t *testing.T) {
	fm, _, _, err := ParseFrontMatter([]byte("---\ntitle: x\ntags: python\n---\nbody\n"))
	if err != nil {
		t.Fatalf("ParseFrontMatter: %v", err)
	}
	if diff := cmp.Diff([]string{"python"}, fm.Tags); diff != "" {
		t.Fatalf("tags mismatch (-want +got):\n%s", diff)
	}
}

func TestParseFrontMatterWithoutBlock(t *testing.T) {
	source := []byte("# Title\n\n---\n\ntext\n")
	fm, body, lines, err := ParseFrontMatter(source)
	if err != nil {
		t.Fatalf("ParseFrontMatter: %v", err)
	}
	if lines != 0 || fm.Title != "" {
		t.Fatalf("expected no front-matter, got lines=%d fm=%+v", lines, fm)
	}
	if string(body) != string(source) {
		t.Fatalf("expected body to equal source")
	}
}

func TestHasFrontMatterRequiresClosingDelimiter(t *testing.T) {
	if HasFrontMatter([]byte("---\ntitle: x\nno closing\n")) {
		t.Fatal("expected unclosed block to be rejected")
	}
	if !HasFrontMatter([]byte("---\r\ntitle: x\r\n---\r\n")) {
		t.Fatal("expected CRLF block to be accepted")
	}
}

func TestBuildDocument(t *testing.T) {
	modified := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	doc, err := BuildDocument("02_language_guides/bash.md", "02_language_guides", []byte(guideSource), modified)
	if err != nil {
		t.Fatalf("BuildDocument: %v", err)
	}
	if !doc.HasFrontMatter || doc.FrontMatterLines != 11 {
		t.Fatalf("expected front-matter flags, got %v/%d", doc.HasFrontMatter, doc.FrontMatterLines)
	}
	if doc.Section != "02_language_guides" || !doc.LastModified.Equal(modified) {
		t.Fatalf("unexpected document metadata %+v", doc)
	}
}

func TestGoldmarkParser_Parse(t *testing.T) {
	parser := NewGoldmarkParser(interfaces.ParseOptions{})

	html, err := parser.Parse([]byte("# Heading\n\nHello **world**"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	got := string(html)
	if !strings.Contains(got, `<h1 id="heading">Heading</h1>`) {
		t.Fatalf("expected heading with id, got %q", got)
	}
	if !strings.Contains(got, "<strong>world</strong>") {
		t.Fatalf("expected <strong>, got %q", got)
	}
}

func TestGoldmarkParser_ParseWithOptions(t *testing.T) {
	parser := NewGoldmarkParser(interfaces.ParseOptions{})

	html, err := parser.ParseWithOptions([]byte("line one\nline two\n\n<div>raw</div>"), interfaces.ParseOptions{
		HardWraps: true,
		SafeMode:  true,
	})
	if err != nil {
		t.Fatalf("ParseWithOptions: %v", err)
	}
	got := string(html)
	if !strings.Contains(got, "line one<br>") {
		t.Fatalf("expected hard wraps in HTML output, got %q", got)
	}
	if strings.Contains(got, "<div>raw</div>") {
		t.Fatalf("expected raw HTML to be omitted in safe mode, got %q", got)
	}
}

func TestKnownExtensions(t *testing.T) {
	unknown := KnownExtensions([]string{"gfm", "Footnote", "mermaid"})
	if diff := cmp.Diff([]string{"mermaid"}, unknown); diff != "" {
		t.Fatalf("unknown mismatch (-want +got):\n%s", diff)
	}
}

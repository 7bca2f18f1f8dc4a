package identity

import (
	"testing"

	"github.com/google/uuid"
)

func TestDocumentUUIDIsStable(t *testing.T) {
	a := DocumentUUID("02_language_guides/bash.md")
	b := DocumentUUID("./02_language_guides/bash.md")
	if a == uuid.Nil || a != b {
		t.Fatalf("expected stable non-nil id, got %s and %s", a, b)
	}
	if a == DocumentUUID("02_language_guides/python.md") {
		t.Fatal("expected different paths to produce different ids")
	}
}

func TestUUIDEmptyKey(t *testing.T) {
	if UUID("  ") != uuid.Nil {
		t.Fatal("expected nil uuid for empty key")
	}
}

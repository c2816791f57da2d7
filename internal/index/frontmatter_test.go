package index

import (
	"strings"
	"testing"
)

func TestEnsureNoteIDAddsFrontmatter(t *testing.T) {
	updated, id, changed := EnsureNoteID("# Hello\n\n- [ ] task\n")
	if !changed {
		t.Fatal("expected content to change")
	}
	if id == "" {
		t.Fatal("expected a generated id")
	}
	if !strings.HasPrefix(updated, "---\nid: "+id+"\n---\n") {
		t.Fatalf("unexpected frontmatter:\n%s", updated)
	}
	if !strings.Contains(updated, "- [ ] task") {
		t.Fatalf("body must survive:\n%s", updated)
	}
}

func TestEnsureNoteIDAppendsIntoExistingBlock(t *testing.T) {
	content := "---\ntitle: Planning\n---\nbody\n"
	updated, id, changed := EnsureNoteID(content)
	if !changed {
		t.Fatal("expected content to change")
	}
	if !strings.Contains(updated, "title: Planning\nid: "+id+"\n---") {
		t.Fatalf("id must land inside the existing block:\n%s", updated)
	}
}

func TestEnsureNoteIDKeepsExisting(t *testing.T) {
	content := "---\nid: abc-123\n---\nbody\n"
	updated, id, changed := EnsureNoteID(content)
	if changed {
		t.Fatal("content with an id must not change")
	}
	if id != "abc-123" {
		t.Fatalf("id = %q", id)
	}
	if updated != content {
		t.Fatalf("content rewritten:\n%s", updated)
	}
}

func TestNoteID(t *testing.T) {
	if got := NoteID("---\nid: \"quoted-id\"\n---\n"); got != "quoted-id" {
		t.Fatalf("NoteID = %q", got)
	}
	if got := NoteID("no frontmatter\n"); got != "" {
		t.Fatalf("NoteID on plain content = %q", got)
	}
	if got := NoteID("---\nunterminated\n"); got != "" {
		t.Fatalf("NoteID on unterminated block = %q", got)
	}
}

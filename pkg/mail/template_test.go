package mail

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestTemplateStoreRegisterAndRender(t *testing.T) {
	store := NewTemplateStore("")
	if err := store.Register("greeting", "Hello {{.name}}!"); err != nil {
		t.Fatalf("register error: %v", err)
	}

	out, err := store.Render("greeting", map[string]string{"name": "Alice"})
	if err != nil {
		t.Fatalf("render error: %v", err)
	}
	if out != "Hello Alice!" {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestTemplateStoreMissingKeysRenderEmpty(t *testing.T) {
	store := NewTemplateStore("")
	if err := store.Register("greeting", "Hello {{.name}}!"); err != nil {
		t.Fatalf("register error: %v", err)
	}

	out, err := store.Render("greeting", nil)
	if err != nil {
		t.Fatalf("render error: %v", err)
	}
	if out != "Hello !" {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestTemplateStoreLoadsFromDisk(t *testing.T) {
	dir := t.TempDir()
	id := "matrix-org/invite_template.eml.j2"

	path := filepath.Join(dir, filepath.FromSlash(id))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir error: %v", err)
	}
	if err := os.WriteFile(path, []byte("Invite from {{.sender}}"), 0o600); err != nil {
		t.Fatalf("write error: %v", err)
	}

	store := NewTemplateStore(dir)
	out, err := store.Render(id, map[string]string{"sender": "@alice:localhost"})
	if err != nil {
		t.Fatalf("render error: %v", err)
	}
	if out != "Invite from @alice:localhost" {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestTemplateStoreRejectsEscapingIdentifiers(t *testing.T) {
	store := NewTemplateStore(t.TempDir())

	if _, err := store.Render("../etc/passwd", nil); err == nil {
		t.Fatal("expected path traversal to be rejected")
	}
	if _, err := store.Render("/etc/passwd", nil); err == nil {
		t.Fatal("expected absolute path to be rejected")
	}
}

func TestTemplateStoreUnknownTemplate(t *testing.T) {
	store := NewTemplateStore("")
	if _, err := store.Render("nope", nil); err == nil || !strings.Contains(err.Error(), "not registered") {
		t.Fatalf("expected not-registered error, got %v", err)
	}
}

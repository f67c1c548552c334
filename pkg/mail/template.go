package mail

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"text/template"
)

// TemplateStore loads and renders notification templates by identifier.
// Identifiers are relative paths beneath the template root, e.g.
// "matrix-org/invite_template.eml.j2". Parsed templates are cached.
type TemplateStore struct {
	root string

	mu    sync.Mutex
	cache map[string]*template.Template
}

// NewTemplateStore creates a store rooted at dir. An empty dir is allowed;
// rendering then relies entirely on registered fallbacks.
func NewTemplateStore(dir string) *TemplateStore {
	return &TemplateStore{
		root:  strings.TrimSpace(dir),
		cache: make(map[string]*template.Template),
	}
}

// Register inserts an in-memory template under the given identifier,
// overriding any file of the same name. Used for built-in defaults.
func (s *TemplateStore) Register(id, text string) error {
	tmpl, err := template.New(id).Option("missingkey=zero").Parse(text)
	if err != nil {
		return fmt.Errorf("template %s: parse: %w", id, err)
	}

	s.mu.Lock()
	s.cache[id] = tmpl
	s.mu.Unlock()
	return nil
}

// Render executes the template identified by id with the given substitutions.
func (s *TemplateStore) Render(id string, substitutions map[string]string) (string, error) {
	tmpl, err := s.lookup(id)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	if err := tmpl.Execute(&sb, substitutions); err != nil {
		return "", fmt.Errorf("template %s: execute: %w", id, err)
	}
	return sb.String(), nil
}

func (s *TemplateStore) lookup(id string) (*template.Template, error) {
	s.mu.Lock()
	if tmpl, ok := s.cache[id]; ok {
		s.mu.Unlock()
		return tmpl, nil
	}
	s.mu.Unlock()

	if s.root == "" {
		return nil, fmt.Errorf("template %s: not registered and no template root configured", id)
	}

	// Identifiers are slash-separated; refuse anything escaping the root.
	clean := filepath.Clean(filepath.FromSlash(id))
	if strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return nil, fmt.Errorf("template %s: invalid identifier", id)
	}

	raw, err := os.ReadFile(filepath.Join(s.root, clean))
	if err != nil {
		return nil, fmt.Errorf("template %s: read: %w", id, err)
	}

	tmpl, err := template.New(id).Option("missingkey=zero").Parse(string(raw))
	if err != nil {
		return nil, fmt.Errorf("template %s: parse: %w", id, err)
	}

	s.mu.Lock()
	s.cache[id] = tmpl
	s.mu.Unlock()
	return tmpl, nil
}

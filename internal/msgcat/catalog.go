package msgcat

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"text/template"

	yaml "gopkg.in/yaml.v3"
)

//go:embed messages.ko.yaml
var defaultFiles embed.FS

// Catalog holds message templates keyed by dotted path (e.g. "pvp.start").
// Templates run with missingkey=error.
type Catalog struct {
	mu    sync.RWMutex
	data  map[string]string
	cache map[string]*template.Template
}

// New loads the embedded Korean messages, then applies *.yaml overrides from
// overrideDir when set.
func New(overrideDir string) (*Catalog, error) {
	c := &Catalog{data: make(map[string]string), cache: make(map[string]*template.Template)}

	raw, err := fs.ReadFile(defaultFiles, "messages.ko.yaml")
	if err != nil {
		return nil, fmt.Errorf("read embedded messages: %w", err)
	}
	flat, err := parseYAMLToFlat(raw)
	if err != nil {
		return nil, fmt.Errorf("parse embedded messages: %w", err)
	}
	c.merge(flat)

	if strings.TrimSpace(overrideDir) != "" {
		if err := c.applyDir(overrideDir); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *Catalog) applyDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read template dir: %w", err)
	}
	files := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".yaml", ".yml":
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	// a key may be overridden by at most one file
	owner := make(map[string]string)
	for _, name := range files {
		b, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return fmt.Errorf("read %s: %w", name, err)
		}
		flat, err := parseYAMLToFlat(b)
		if err != nil {
			return fmt.Errorf("parse %s: %w", name, err)
		}
		for k := range flat {
			if prev, ok := owner[k]; ok {
				return fmt.Errorf("duplicate override key %q in %s and %s", k, prev, name)
			}
			owner[k] = name
		}
		c.merge(flat)
	}
	return nil
}

func (c *Catalog) merge(flat map[string]string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, v := range flat {
		c.data[k] = v
		delete(c.cache, k)
	}
}

func parseYAMLToFlat(b []byte) (map[string]string, error) {
	var m map[string]any
	if err := yaml.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	flat := make(map[string]string)
	if err := flattenStrings(m, "", flat); err != nil {
		return nil, err
	}
	return flat, nil
}

func flattenStrings(src any, prefix string, out map[string]string) error {
	switch v := src.(type) {
	case map[string]any:
		for k, vv := range v {
			key := k
			if prefix != "" {
				key = prefix + "." + k
			}
			if err := flattenStrings(vv, key, out); err != nil {
				return err
			}
		}
		return nil
	case string:
		if prefix == "" {
			return errors.New("string value without key prefix")
		}
		out[prefix] = v
		return nil
	case nil:
		return nil
	default:
		return fmt.Errorf("unsupported value at %s: %T", prefix, v)
	}
}

// Has reports whether key has a non-empty template.
func (c *Catalog) Has(key string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return strings.TrimSpace(c.data[strings.TrimSpace(key)]) != ""
}

// Render executes the template for key with data.
func (c *Catalog) Render(key string, data any) (string, error) {
	key = strings.TrimSpace(key)
	t, err := c.template(key)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	if err := t.Execute(&b, data); err != nil {
		return "", fmt.Errorf("render %s: %w", key, err)
	}
	return b.String(), nil
}

func (c *Catalog) template(key string) (*template.Template, error) {
	c.mu.RLock()
	t, ok := c.cache[key]
	src := c.data[key]
	c.mu.RUnlock()
	if ok {
		return t, nil
	}
	if strings.TrimSpace(src) == "" {
		return nil, fmt.Errorf("template not found: %s", key)
	}
	t, err := template.New(key).Option("missingkey=error").Parse(src)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", key, err)
	}
	c.mu.Lock()
	c.cache[key] = t
	c.mu.Unlock()
	return t, nil
}

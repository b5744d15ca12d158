package i18n

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"sync"
)

// Catalog is an in-memory store of resource trees keyed by language and
// namespace. It is safe for concurrent use.
type Catalog struct {
	mu      sync.RWMutex
	bundles map[string]map[string]map[string]any
}

// NewCatalog creates an empty Catalog.
func NewCatalog() *Catalog {
	return &Catalog{bundles: make(map[string]map[string]map[string]any)}
}

// Add merges tree into the bundle for lang and namespace.
func (c *Catalog) Add(lang, namespace string, tree map[string]any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	byNS, ok := c.bundles[lang]
	if !ok {
		byNS = make(map[string]map[string]any)
		c.bundles[lang] = byNS
	}
	existing, ok := byNS[namespace]
	if !ok {
		existing = make(map[string]any)
		byNS[namespace] = existing
	}
	merge(existing, tree)
}

// LoadFS reads every "<dir>/i18n/<lang>.json" file in fsys. The directory
// "app" feeds the app namespace; every other directory is a formpack id.
func (c *Catalog) LoadFS(fsys fs.FS) error {
	matches, err := fs.Glob(fsys, "*/i18n/*.json")
	if err != nil {
		return fmt.Errorf("glob i18n resources: %w", err)
	}
	for _, file := range matches {
		raw, err := fs.ReadFile(fsys, file)
		if err != nil {
			return fmt.Errorf("read %s: %w", file, err)
		}
		var tree map[string]any
		if err := json.Unmarshal(raw, &tree); err != nil {
			return fmt.Errorf("parse %s: %w", file, err)
		}
		dir := strings.SplitN(file, "/", 2)[0]
		lang := strings.TrimSuffix(path.Base(file), ".json")
		ns := FormpackNamespace(dir)
		if dir == AppNamespace {
			ns = AppNamespace
		}
		c.Add(lang, ns, tree)
	}
	return nil
}

// ResourceBundle returns a deep copy of the bundle for locale and namespace.
func (c *Catalog) ResourceBundle(locale, namespace string) (map[string]any, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	tree, ok := c.bundles[Resolve(locale)][namespace]
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", ErrBundleNotFound, Resolve(locale), namespace)
	}
	return copyTree(tree), nil
}

// Translator returns a Translator for locale and namespace. Missing bundles
// produce a translator that only honours defaults.
func (c *Catalog) Translator(locale, namespace string) Translator {
	tree, err := c.ResourceBundle(locale, namespace)
	if err != nil {
		return KeyTranslator{}
	}
	return NewTranslator(tree)
}

// Languages lists the languages that have at least one bundle.
func (c *Catalog) Languages() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.bundles))
	for lang := range c.bundles {
		out = append(out, lang)
	}
	return out
}

func merge(dst, src map[string]any) {
	for k, v := range src {
		if sm, ok := v.(map[string]any); ok {
			if dm, ok := dst[k].(map[string]any); ok {
				merge(dm, sm)
				continue
			}
			dst[k] = copyTree(sm)
			continue
		}
		dst[k] = v
	}
}

func copyTree(src map[string]any) map[string]any {
	out := make(map[string]any, len(src))
	for k, v := range src {
		out[k] = copyValue(v)
	}
	return out
}

func copyValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return copyTree(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = copyValue(e)
		}
		return out
	}
	return v
}

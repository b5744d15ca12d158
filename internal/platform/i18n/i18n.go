// Package i18n resolves localized strings for formpacks and the app shell.
//
// Resources are organized by language and namespace. Formpack resources live in
// the namespace "formpack:<id>", shared strings in "app". Keys are dotted paths
// into the nested resource tree.
package i18n

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/language"
)

// Supported languages. Any locale whose base language is not German resolves
// to English.
const (
	German  = "de"
	English = "en"
)

// AppNamespace holds strings shared by all formpacks.
const AppNamespace = "app"

// ErrBundleNotFound is returned when no resources exist for a namespace.
var ErrBundleNotFound = errors.New("i18n: resource bundle not found")

// FormpackNamespace returns the namespace of a formpack's resources.
func FormpackNamespace(formpackID string) string {
	return "formpack:" + formpackID
}

// Translator resolves keys within one locale and namespace.
type Translator interface {
	// T returns the string at key, the configured default when the key is
	// missing, or the key itself when no default was given.
	T(key string, opts ...Option) string
	// Lookup returns the raw resource at key, which may be a string, a nested
	// object or an array.
	Lookup(key string) (any, bool)
}

// Bundles exposes whole resource trees.
type Bundles interface {
	ResourceBundle(locale, namespace string) (map[string]any, error)
}

// Source provides both translators and raw bundles.
type Source interface {
	Bundles
	Translator(locale, namespace string) Translator
}

// Options configures a single translation.
type Options struct {
	Default    string
	HasDefault bool
	Vars       map[string]any
}

// Option mutates Options.
type Option func(*Options)

// Default sets the fallback returned for a missing key.
func Default(v string) Option {
	return func(o *Options) {
		o.Default = v
		o.HasDefault = true
	}
}

// Var adds an interpolation variable referenced as {{name}}.
func Var(name string, v any) Option {
	return func(o *Options) {
		if o.Vars == nil {
			o.Vars = make(map[string]any)
		}
		o.Vars[name] = v
	}
}

// Vars adds several interpolation variables.
func Vars(vars map[string]any) Option {
	return func(o *Options) {
		for k, v := range vars {
			Var(k, v)(o)
		}
	}
}

// BaseLanguage returns the lower-case base language of a locale tag such as
// "de-AT" or "en_GB". Unparseable input falls back to its leading letters.
func BaseLanguage(locale string) string {
	locale = strings.TrimSpace(strings.ReplaceAll(locale, "_", "-"))
	if locale == "" {
		return ""
	}
	if tag, err := language.Parse(locale); err == nil {
		base, _ := tag.Base()
		return base.String()
	}
	if i := strings.IndexByte(locale, '-'); i > 0 {
		locale = locale[:i]
	}
	return strings.ToLower(locale)
}

// IsGerman reports whether locale resolves to German.
func IsGerman(locale string) bool {
	return BaseLanguage(locale) == German
}

// Resolve maps a locale onto the two supported languages.
func Resolve(locale string) string {
	if IsGerman(locale) {
		return German
	}
	return English
}

var placeholder = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_.\-]+)\s*\}\}`)

// Interpolate replaces {{name}} placeholders. Unknown names are left as-is.
func Interpolate(s string, vars map[string]any) string {
	if len(vars) == 0 || !strings.Contains(s, "{{") {
		return s
	}
	return placeholder.ReplaceAllStringFunc(s, func(m string) string {
		name := placeholder.FindStringSubmatch(m)[1]
		v, ok := vars[name]
		if !ok || v == nil {
			return m
		}
		return fmt.Sprint(v)
	})
}

// Lookup walks a dotted key through a resource tree. A flat key containing
// dots is tried first so that both layouts resolve.
func Lookup(tree map[string]any, key string) (any, bool) {
	if tree == nil || key == "" {
		return nil, false
	}
	if v, ok := tree[key]; ok {
		return v, true
	}
	var cur any = tree
	for _, seg := range strings.Split(key, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[seg]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

type treeTranslator struct {
	tree map[string]any
}

// NewTranslator returns a Translator over a single resource tree.
func NewTranslator(tree map[string]any) Translator {
	return treeTranslator{tree: tree}
}

func (t treeTranslator) T(key string, opts ...Option) string {
	o := Options{}
	for _, fn := range opts {
		fn(&o)
	}
	if v, ok := Lookup(t.tree, key); ok {
		if s, ok := v.(string); ok {
			return Interpolate(s, o.Vars)
		}
	}
	if o.HasDefault {
		return Interpolate(o.Default, o.Vars)
	}
	return key
}

func (t treeTranslator) Lookup(key string) (any, bool) {
	return Lookup(t.tree, key)
}

// KeyTranslator returns every key unchanged, or its default when given.
// Builders fall back to it when no resources are wired.
type KeyTranslator struct{}

func (KeyTranslator) T(key string, opts ...Option) string {
	return treeTranslator{}.T(key, opts...)
}

func (KeyTranslator) Lookup(string) (any, bool) { return nil, false }

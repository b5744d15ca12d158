package docx

import (
	"sort"
	"strings"
)

// FormpackAlias is the key under "t" that mirrors the formpack's own
// translations.
const FormpackAlias = "formpack"

// BuildTranslations folds the string resources of a bundle into a nested
// tree. Only keys under prefix are kept when prefix is set. Keys are inserted
// in sorted order and non-string values are skipped.
func BuildTranslations(bundle map[string]any, prefix, formpackID string) map[string]any {
	flat := map[string]string{}
	flatten(bundle, "", flat)

	keys := make([]string, 0, len(flat))
	for k := range flat {
		if prefix == "" || k == prefix || strings.HasPrefix(k, prefix+".") {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	b := NewContextBuilder()
	for _, k := range keys {
		b.Set(k, flat[k])
	}

	for _, anchor := range []string{prefix, formpackID} {
		if anchor == "" {
			continue
		}
		if sub, ok := b.Get(anchor); ok {
			if m, isMap := sub.(map[string]any); isMap {
				b.Context()[FormpackAlias] = cloneValue(m)
				break
			}
		}
	}
	return b.Context()
}

func flatten(v any, key string, out map[string]string) {
	switch t := v.(type) {
	case map[string]any:
		for k, e := range t {
			flatten(e, joinPath(key, k), out)
		}
	case string:
		if key != "" {
			out[key] = t
		}
	}
}

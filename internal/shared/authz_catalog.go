package shared

import "strings"

// CatalogEntry describes one permission key and the module it belongs to.
// The module is grouping metadata only; authorization decisions never
// consult it.
type CatalogEntry struct {
	Key    string
	Module string
}

// Catalog returns the fixed universe of permission keys, one entry per key.
func Catalog() []CatalogEntry {
	keys := make([]string, 0, 16)
	keys = append(keys, CoreScopes()...)
	keys = append(keys, PropertyScopes()...)
	keys = append(keys, FinanceScopes()...)

	entries := make([]CatalogEntry, 0, len(keys))
	for _, key := range keys {
		entries = append(entries, CatalogEntry{Key: key, Module: moduleOf(key)})
	}
	return entries
}

// CatalogKeys returns every permission key in the catalog.
func CatalogKeys() []string {
	entries := Catalog()
	keys := make([]string, len(entries))
	for i, entry := range entries {
		keys[i] = entry.Key
	}
	return keys
}

func moduleOf(key string) string {
	if idx := strings.IndexByte(key, '.'); idx > 0 {
		return key[:idx]
	}
	return key
}

// Package schema holds the identifier mappings and symbol settings that
// drive text extraction, and the rules for merging user overrides onto the
// built-in defaults.
package schema

import (
	"sort"
	"strings"
)

// Schema maps short symbolic keys to opaque Tana identifiers, one mapping
// per category.
type Schema struct {
	Nodes     map[string]string `yaml:"nodes,omitempty" json:"nodes,omitempty"`
	Supertags map[string]string `yaml:"supertags,omitempty" json:"supertags,omitempty"`
	Fields    map[string]string `yaml:"fields,omitempty" json:"fields,omitempty"`
}

// Symbols are the marker characters recognised in input text
type Symbols struct {
	Supertag string `yaml:"supertag,omitempty" json:"supertag,omitempty"`
	Field    string `yaml:"field,omitempty" json:"field,omitempty"`
	Node     string `yaml:"node,omitempty" json:"node,omitempty"`
}

// Defaults apply when the input does not say otherwise
type Defaults struct {
	Target string `yaml:"target,omitempty" json:"target,omitempty"`
	Type   string `yaml:"type,omitempty" json:"type,omitempty"`
}

// Settings describes symbol characters and default values.
type Settings struct {
	Symbols Symbols  `yaml:"symbols,omitempty" json:"symbols,omitempty"`
	Default Defaults `yaml:"default,omitempty" json:"default,omitempty"`
}

// DefaultSchema returns the standard Tana schema. Every call returns fresh
// maps so callers may modify the result.
func DefaultSchema() Schema {
	return Schema{
		Nodes: map[string]string{
			"inbox":   "INBOX",
			"schema":  "SCHEMA",
			"library": "LIBRARY",
		},
		Supertags: map[string]string{},
		Fields: map[string]string{
			"due": "SYS_A61",
		},
	}
}

// DefaultSettings returns the standard symbols and defaults
func DefaultSettings() Settings {
	return Settings{
		Symbols: Symbols{Supertag: "#", Field: ":", Node: "@"},
		Default: Defaults{Target: "inbox", Type: "plain"},
	}
}

// Resolve merges override onto base. Each category is merged on its own:
// override entries win by key, keys missing from override keep the base
// value. Nil maps are treated as empty. Neither input is modified.
func Resolve(base, override Schema) Schema {
	return Schema{
		Nodes:     mergeMap(base.Nodes, override.Nodes),
		Supertags: mergeMap(base.Supertags, override.Supertags),
		Fields:    mergeMap(base.Fields, override.Fields),
	}
}

// ResolveSettings merges override onto base. Empty strings in override
// mean "not set".
func ResolveSettings(base, override Settings) Settings {
	return Settings{
		Symbols: Symbols{
			Supertag: firstSet(override.Symbols.Supertag, base.Symbols.Supertag),
			Field:    firstSet(override.Symbols.Field, base.Symbols.Field),
			Node:     firstSet(override.Symbols.Node, base.Symbols.Node),
		},
		Default: Defaults{
			Target: firstSet(override.Default.Target, base.Default.Target),
			Type:   firstSet(override.Default.Type, base.Default.Type),
		},
	}
}

func mergeMap(base, override map[string]string) map[string]string {
	merged := make(map[string]string, len(base)+len(override))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range override {
		merged[k] = v
	}
	return merged
}

func firstSet(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// Keys returns the keys of m ordered longest first, then alphabetically.
// Pattern alternations built from this order are deterministic and prefer
// the longest key when one key is a prefix of another.
func Keys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		if k == "" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	return keys
}

// Lookup finds key in m, falling back to a case-insensitive match.
// It returns the canonical key as stored in m.
func Lookup(m map[string]string, key string) (canonical, id string, ok bool) {
	if id, ok := m[key]; ok {
		return key, id, true
	}
	for _, k := range Keys(m) {
		if strings.EqualFold(k, key) {
			return k, m[k], true
		}
	}
	return "", "", false
}

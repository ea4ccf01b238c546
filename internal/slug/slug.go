// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug turns editor-entered labels into the lowercase keys used
// for sub-locations, post types and taxonomies.
package slug

import (
	"regexp"
	"strings"
)

var (
	// invalid matches anything that cannot appear in a key.
	invalid = regexp.MustCompile(`[^a-z0-9_\-\s]`)
	// separators collapses runs of whitespace and underscores into one.
	separators = regexp.MustCompile(`[\s_]+`)
)

// Key creates a location key from the given string. Hyphens survive
// because content type and taxonomy names may contain them.
// Example: "Single Product" → "single_product"
func Key(s string) string {
	result := strings.ToLower(strings.TrimSpace(s))
	result = invalid.ReplaceAllString(result, "")
	result = separators.ReplaceAllString(result, "_")
	return strings.Trim(result, "_")
}

// Valid reports whether s is already a well-formed key.
func Valid(s string) bool {
	return s != "" && Key(s) == s
}

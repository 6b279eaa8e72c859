// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"strings"
	"unicode"

	"github.com/jinzhu/inflection"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Canonicalize turns a raw entity mention into its canonical name: the last
// word is singularized and every word is capitalized and joined, so
// "blog posts" and "BlogPost" both become "BlogPost". Canonicalize is
// idempotent.
func Canonicalize(raw string) string {
	parts := splitWords(raw)
	if len(parts) == 0 {
		return ""
	}
	last := len(parts) - 1
	parts[last] = singular(parts[last])

	// A Caser carries state and is not shared between goroutines.
	caser := cases.Title(language.English)
	var b strings.Builder
	for _, p := range parts {
		b.WriteString(caser.String(p))
	}
	return b.String()
}

// Key returns the grouping key for a raw mention. Two mentions with the same
// key name the same entity. A trailing "s" is folded on words inflection
// treats as their own singular, so "series" and "serie" share a key.
func Key(raw string) string {
	parts := splitWords(raw)
	if len(parts) == 0 {
		return ""
	}
	last := len(parts) - 1
	w := singular(parts[last])
	if w == parts[last] && len(w) > 3 && strings.HasSuffix(w, "s") && !strings.HasSuffix(w, "ss") {
		w = strings.TrimSuffix(w, "s")
	}
	parts[last] = w
	return strings.Join(parts, "_")
}

// singular lowercases w and singularizes it.
func singular(w string) string {
	w = strings.ToLower(strings.TrimSpace(w))
	if w == "" {
		return ""
	}
	return inflection.Singular(w)
}

// Plural returns the lowercase plural of a canonical name as a snake_case
// path segment: "BlogPost" becomes "blog_posts".
func Plural(name string) string {
	parts := splitWords(name)
	if len(parts) == 0 {
		return ""
	}
	last := len(parts) - 1
	parts[last] = inflection.Plural(parts[last])
	return strings.Join(parts, "_")
}

// Snake returns the lowercase snake_case form of a canonical name.
func Snake(name string) string {
	return strings.Join(splitWords(name), "_")
}

// splitWords lowercases s and splits it on non-alphanumeric runes and on
// lower-to-upper case transitions.
func splitWords(s string) []string {
	var parts []string
	var cur []rune
	var prev rune
	emit := func() {
		if len(cur) > 0 {
			parts = append(parts, strings.ToLower(string(cur)))
			cur = cur[:0]
		}
	}
	for _, r := range s {
		switch {
		case !unicode.IsLetter(r) && !unicode.IsDigit(r):
			emit()
		case unicode.IsUpper(r) && (unicode.IsLower(prev) || unicode.IsDigit(prev)):
			emit()
			cur = append(cur, r)
		default:
			cur = append(cur, r)
		}
		prev = r
	}
	emit()
	return parts
}

// singularLast singularizes the last "_" segment of a snake_case name.
func singularLast(name string) string {
	i := strings.LastIndex(name, "_")
	if i < 0 {
		return singular(name)
	}
	return name[:i+1] + singular(name[i+1:])
}

package lesson

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var titlePattern = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)

// Identifier is how a local lesson is named on the remote course.
type Identifier struct {
	// Slug is the key used to match the lesson against remote lessons. Slugs
	// share a single namespace per course, so two files with the same name
	// in different folders map to the same remote lesson.
	Slug string

	// Title is the display title of the lesson.
	Title string
}

// Slug returns the slug for the lesson at path: the file name without its
// extension, lower-cased, with spaces replaced by hyphens.
func Slug(path string) string {
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return strings.Replace(strings.ToLower(stem), " ", "-", -1)
}

// Title returns the contents of the first <title> element in content. If the
// document has no title, it falls back to the slug with each word
// capitalized.
func Title(slug, content string) string {
	if match := titlePattern.FindStringSubmatch(content); match != nil {
		if title := strings.TrimSpace(match[1]); title != "" {
			return title
		}
	}
	return humanize(slug)
}

func humanize(slug string) string {
	words := strings.Fields(strings.Replace(slug, "-", " ", -1))
	for i, word := range words {
		words[i] = capitalize(word)
	}
	return strings.Join(words, " ")
}

// capitalize upper-cases the first letter of s and lower-cases the rest. A
// leading byte that isn't valid UTF-8 is kept as is.
func capitalize(s string) string {
	first, size := utf8.DecodeRuneInString(s)
	head := s[:size]
	if first != utf8.RuneError || size > 1 {
		head = string(unicode.ToUpper(first))
	}
	return head + strings.ToLower(s[size:])
}

// Package text provides the default sanitizer and profanity filter.
package text

import (
	"html"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

const MaxLen = 120

var (
	tagRe   = regexp.MustCompile(`(?s)<[^>]*>`)
	spaceRe = regexp.MustCompile(`\s+`)
)

// DefaultBanned is a light PG-13 list, matched as lowercase substrings.
var DefaultBanned = []string{"fuck", "shit", "bitch", "cunt", "dick", "cock", "asshole", "fag", "slut", "whore"}

type Filter struct {
	banned []string
}

func NewFilter(banned []string) *Filter {
	if banned == nil {
		banned = DefaultBanned
	}
	lower := make([]string, 0, len(banned))
	for _, b := range banned {
		if b = strings.ToLower(strings.TrimSpace(b)); b != "" {
			lower = append(lower, b)
		}
	}
	return &Filter{banned: lower}
}

// Sanitize strips markup and control characters, normalises to NFC, collapses
// whitespace and caps the result at MaxLen runes.
func (f *Filter) Sanitize(s string) string {
	s = tagRe.ReplaceAllString(s, "")
	s = html.UnescapeString(s)
	s = strings.NewReplacer("<", "", ">", "").Replace(s)
	s = norm.NFC.String(s)
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && !unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
	s = strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
	if rs := []rune(s); len(rs) > MaxLen {
		s = strings.TrimSpace(string(rs[:MaxLen]))
	}
	return s
}

// Passes reports whether s contains none of the banned words.
func (f *Filter) Passes(s string) bool {
	t := strings.ToLower(norm.NFKC.String(s))
	for _, b := range f.banned {
		if strings.Contains(t, b) {
			return false
		}
	}
	return true
}

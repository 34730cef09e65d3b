// Package sanitize cleans user supplied single-line text before it gets stored.
// The rules follow what WordPress does in sanitize_text_field, so values saved by
// the admin page behave the same way they did in the plugin.
package sanitize

import (
	"html"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/text/unicode/norm"
)

var (
	// strict policy allows no elements at all, content of script and style is dropped
	policy = func() *bluemonday.Policy {
		p := bluemonday.StrictPolicy()
		p.AddSpaceWhenStrippingTag(true)
		return p
	}()

	octetRe      = regexp.MustCompile(`%[a-fA-F0-9]{2}`)
	whitespaceRe = regexp.MustCompile(`\s+`)
	bracketsRepl = strings.NewReplacer("<", "&lt;", ">", "&gt;")
)

// Text returns s stripped of markup, control characters, line breaks, extra whitespace
// and percent-encoded octets. Invalid UTF-8 input results in an empty string.
// Angle brackets left after tag stripping stay entity-encoded, so the result never carries markup.
func Text(s string) string {
	if s == "" || !utf8.ValidString(s) {
		return ""
	}

	res := policy.Sanitize(norm.NFC.String(s))
	res = bracketsRepl.Replace(html.UnescapeString(res))

	res = strings.Map(func(r rune) rune {
		switch {
		case r == '\t', r == '\n', r == '\r':
			return r
		case unicode.IsControl(r):
			return -1
		}
		return r
	}, res)
	res = collapse(res)

	// removing octets may glue words or leave double spaces, repeat until stable
	for octetRe.MatchString(res) {
		res = collapse(octetRe.ReplaceAllString(res, ""))
	}
	return res
}

func collapse(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

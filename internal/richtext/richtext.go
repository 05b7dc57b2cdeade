// Package richtext handles the HTML produced by the admin rich-text editor.
package richtext

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	tagPattern        = regexp.MustCompile(`<\s*/?\s*[a-zA-Z][a-zA-Z0-9]*[^>]*>`)
	whitespacePattern = regexp.MustCompile(`[ \t\f\v\x{00a0}]+`)
)

// IsHTML reports whether s contains markup
func IsHTML(s string) bool {
	return tagPattern.MatchString(s)
}

// IsBlank reports whether s has no visible text. Markup-only content such as
// "<p><br></p>" or "<p>&nbsp;</p>" is blank.
func IsBlank(s string) bool {
	if strings.TrimSpace(s) == "" {
		return true
	}
	if !IsHTML(s) {
		return false
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return false
	}
	doc.Find("script, style").Remove()
	return strings.TrimSpace(whitespacePattern.ReplaceAllString(doc.Text(), " ")) == ""
}

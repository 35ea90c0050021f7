// Package sanitizer strips markup out of feed-sourced text before it is
// stored or served, since a hostile or malformed feed can embed HTML/XML in
// fields that are supposed to be plain text.
package sanitizer

import (
	"io"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
)

// authorNameRegex matches an Atom-style <name> tag.
var authorNameRegex = regexp.MustCompile(`<name>([^<]+)</name>`)

var strictPolicy = bluemonday.StrictPolicy()

// SanitizeAuthor cleans markup that sometimes ends up in an author field.
// Atom feeds occasionally nest a <name> tag inside additional structure
// (e.g. "<name>Daniel Roggen</name><title>Staff Research Scientist</title>");
// in that case the <name> content is preferred over stripping everything.
func SanitizeAuthor(author string) string {
	author = strings.TrimSpace(author)
	if author == "" {
		return ""
	}
	if !strings.Contains(author, "<") {
		return author
	}
	if strings.Contains(author, "<name>") {
		if matches := authorNameRegex.FindStringSubmatch(author); len(matches) > 1 {
			return strings.TrimSpace(matches[1])
		}
	}
	return StripTags(author)
}

// Title sanitizes a feed entry title: tags are stripped, then whatever
// bluemonday's strict policy would otherwise flag is removed as a second
// pass, so a title can never smuggle markup into a JSON response that a
// client renders unescaped.
func Title(title string) string {
	stripped := StripTags(title)
	return strings.TrimSpace(strictPolicy.Sanitize(stripped))
}

// StripTags removes HTML/XML tags from input, keeping only text content.
// It is a content-cleanup helper, not an XSS defense on its own — callers
// serving sanitized output to a browser should still rely on Title's
// bluemonday pass or their own output encoding.
func StripTags(input string) string {
	input = strings.TrimSpace(input)
	if input == "" {
		return ""
	}

	tokenizer := html.NewTokenizer(strings.NewReader(input))
	var buf strings.Builder

	for {
		tt := tokenizer.Next()
		if tt == html.ErrorToken {
			if tokenizer.Err() == io.EOF {
				break
			}
			return ""
		}
		if tt == html.TextToken {
			buf.WriteString(tokenizer.Token().Data)
		}
	}

	return strings.TrimSpace(buf.String())
}

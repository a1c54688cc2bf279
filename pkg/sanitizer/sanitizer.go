// Package sanitizer cleans HTML fragments coming from upstream product pages.
package sanitizer

import (
	"io"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
)

var (
	policyOnce sync.Once
	policy     *bluemonday.Policy
)

func descriptionPolicy() *bluemonday.Policy {
	policyOnce.Do(func() {
		policy = bluemonday.UGCPolicy()
		policy.RequireNoFollowOnLinks(true)
		policy.AddTargetBlankToFullyQualifiedLinks(true)
	})
	return policy
}

// SanitizeHTML removes scripts, handlers and other unsafe markup while keeping
// the formatting tags a product description normally uses.
func SanitizeHTML(input string) string {
	input = strings.TrimSpace(input)
	if input == "" {
		return ""
	}
	return strings.TrimSpace(descriptionPolicy().Sanitize(input))
}

// StripTags returns only the text nodes of an HTML fragment, with runs of
// whitespace collapsed to a single space.
//
// Not an XSS defence; use SanitizeHTML for markup that is rendered.
//
//   - "<p>Hello <strong>World</strong></p>" -> "Hello World"
//   - "Plain text" -> "Plain text"
func StripTags(input string) string {
	input = strings.TrimSpace(input)
	if input == "" {
		return ""
	}
	if !strings.Contains(input, "<") {
		return strings.Join(strings.Fields(input), " ")
	}

	tokenizer := html.NewTokenizer(strings.NewReader(input))
	var buf strings.Builder
	skip := 0

	for {
		tt := tokenizer.Next()
		switch tt {
		case html.ErrorToken:
			if tokenizer.Err() == io.EOF {
				return strings.Join(strings.Fields(buf.String()), " ")
			}
			return ""
		case html.StartTagToken:
			name, _ := tokenizer.TagName()
			if isRawTextTag(string(name)) {
				skip++
			}
			// block-level boundaries must not glue words together
			buf.WriteByte(' ')
		case html.EndTagToken:
			name, _ := tokenizer.TagName()
			if isRawTextTag(string(name)) && skip > 0 {
				skip--
			}
			buf.WriteByte(' ')
		case html.TextToken:
			if skip == 0 {
				buf.Write(tokenizer.Text())
			}
		}
	}
}

// Excerpt truncates text to at most maxRunes runes, appending "..." when cut.
func Excerpt(text string, maxRunes int) string {
	text = strings.TrimSpace(text)
	if maxRunes <= 0 || utf8.RuneCountInString(text) <= maxRunes {
		return text
	}
	runes := []rune(text)
	return strings.TrimSpace(string(runes[:maxRunes])) + "..."
}

func isRawTextTag(name string) bool {
	return name == "script" || name == "style"
}

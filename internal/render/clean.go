package render

import (
	"html"
	"regexp"
	"strings"
)

// htmlTag matches markup fragments the renderer may echo into error
// messages.
var htmlTag = regexp.MustCompile(`<[^<>]*>`)

// multiSpace collapses runs of whitespace left behind by tag removal.
var multiSpace = regexp.MustCompile(`[ \t]{2,}`)

// CleanMessage strips embedded HTML from a renderer error message so
// it is safe and readable to display inline.
func CleanMessage(msg string) string {
	msg = htmlTag.ReplaceAllString(msg, "")
	msg = html.UnescapeString(msg)
	msg = multiSpace.ReplaceAllString(msg, " ")
	return strings.TrimSpace(msg)
}

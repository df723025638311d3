// Package htmlenc escapes raw text for safe embedding in generated HTML pages.
package htmlenc

import (
	"strings"

	"golang.org/x/net/html"
)

// Escape replaces HTML-significant characters with their entity forms.
func Escape(s string) string {
	return html.EscapeString(s)
}

// EscapePre escapes text destined for a <pre> block, normalizing CRLF line
// endings so license and NEWS files authored on other platforms render cleanly.
func EscapePre(s string) string {
	return html.EscapeString(strings.ReplaceAll(s, "\r\n", "\n"))
}

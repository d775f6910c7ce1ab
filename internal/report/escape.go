package report

import "strings"

var (
	htmlReplacer = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"'", "&#39;",
	)
	attributeReplacer = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"'", "&#39;",
		"`", "&#96;",
	)
)

// EscapeHTML makes s safe for element content.
func EscapeHTML(s string) string {
	return htmlReplacer.Replace(s)
}

// EscapeAttribute makes s safe inside a quoted attribute value, href and src
// included. Backticks are escaped as well.
func EscapeAttribute(s string) string {
	return attributeReplacer.Replace(s)
}

func formatMultiline(s string) string {
	return strings.ReplaceAll(EscapeHTML(s), "\n", "<br />")
}

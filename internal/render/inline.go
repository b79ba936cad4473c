package render

import "regexp"

var (
	linkPattern   = regexp.MustCompile(`\[(.*?)\]\((.*?)\)`)
	codePattern   = regexp.MustCompile("`([^`]+)`")
	boldPattern   = regexp.MustCompile(`\*\*(.*?)\*\*`)
	italicPattern = regexp.MustCompile(`\*([^*]+)\*`)
)

// Inline converts the inline markdown spans of a single line to HTML.
// Links are rewritten first so their bracket text survives the later
// passes, then code, bold, and italic in that order. Bold must run
// before italic or the double asterisks would be eaten as two italic
// delimiters.
func Inline(text string) string {
	text = linkPattern.ReplaceAllString(text, `<a href="$2">$1</a>`)
	text = codePattern.ReplaceAllString(text, `<code>$1</code>`)
	text = boldPattern.ReplaceAllString(text, `<strong>$1</strong>`)
	text = italicPattern.ReplaceAllString(text, `<em>$1</em>`)
	return text
}

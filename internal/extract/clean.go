package extract

import (
	"regexp"
	"strings"
)

var (
	multiSpace   = regexp.MustCompile(` {2,}`)
	multiNewline = regexp.MustCompile(`\n{3,}`)
)

// Clean normalizes raw PDF text. The steps run in a fixed order: NBSP and
// tab become spaces, CRLF/CR become LF, runs of 2+ spaces collapse to one,
// runs of 3+ newlines collapse to two (paragraph breaks survive, page-break
// noise does not), then every line and the whole string are trimmed. Space
// collapsing must precede line trimming or trailing spaces before newlines
// would survive.
func Clean(text string) string {
	if text == "" {
		return ""
	}

	text = strings.ReplaceAll(text, "\u00a0", " ")
	text = strings.ReplaceAll(text, "\t", " ")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = multiSpace.ReplaceAllString(text, " ")
	text = multiNewline.ReplaceAllString(text, "\n\n")

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

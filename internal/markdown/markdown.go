package markdown

import "strings"

// Taken from https://core.telegram.org/bots/api#markdownv2-style.
const mdV2SpecialChars = `_*[]()~` + "`" + `>#+-=|{}.!\`

//nolint:gochecknoglobals // Lookup table.
var mdV2Special = func() [256]bool {
	var m [256]bool
	for _, c := range []byte(mdV2SpecialChars) {
		m[c] = true
	}
	return m
}()

// EscapeV2 makes input safe to send as plain text with the MarkdownV2 parse mode.
func EscapeV2(input string) string {
	var b strings.Builder
	b.Grow(len(input))

	for i := range len(input) {
		c := input[i]
		if mdV2Special[c] {
			b.WriteByte('\\')
		}
		b.WriteByte(c)
	}

	return b.String()
}

// Bold wraps already escaped text in a bold entity.
func Bold(escaped string) string {
	return "*" + escaped + "*"
}

package page

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

//nolint:gochecknoglobals // Lookup table.
var invisibleElements = map[atom.Atom]struct{}{
	atom.Script:   {},
	atom.Style:    {},
	atom.Template: {},
}

// VisibleText returns every human-readable text node of doc, one per line.
func VisibleText(doc *goquery.Document) string {
	var b strings.Builder

	for _, n := range doc.Nodes {
		writeVisibleText(&b, n)
	}

	return b.String()
}

func writeVisibleText(b *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(n.Data)

		return
	case html.CommentNode, html.DoctypeNode:
		return
	case html.ElementNode:
		if _, ok := invisibleElements[n.DataAtom]; ok {
			return
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeVisibleText(b, c)
	}
}

// CleanText trims every line and drops the blank ones, keeping order.
// Applying it to its own output is a no-op.
func CleanText(text string) string {
	lines := strings.FieldsFunc(text, isLineBreak)

	kept := lines[:0]
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		kept = append(kept, line)
	}

	return strings.Join(kept, "\n")
}

// Truncate cuts text to its first limit characters.
func Truncate(text string, limit int) string {
	if limit <= 0 {
		return ""
	}

	count := 0
	for i := range text {
		if count == limit {
			return text[:i]
		}
		count++
	}

	return text
}

func isLineBreak(r rune) bool {
	switch r {
	case '\n', '\r', '\v', '\f', '\x1c', '\x1d', '\x1e', '\u0085', '\u2028', '\u2029':
		return true
	default:
		return false
	}
}

package sources

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ExtractExcerpt strips HTML markup from a feed entry description and
// truncates the result to maxLen runes. Whitespace runs collapse to single
// spaces. Returns "" when nothing textual remains.
func ExtractExcerpt(html string, maxLen int) string {
	text := html
	if strings.ContainsAny(html, "<>") {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
		if err == nil {
			text = doc.Text()
		}
	}

	text = strings.Join(strings.Fields(text), " ")
	if maxLen > 0 {
		runes := []rune(text)
		if len(runes) > maxLen {
			text = strings.TrimSpace(string(runes[:maxLen])) + "…"
		}
	}
	return text
}

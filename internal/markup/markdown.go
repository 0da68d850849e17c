package markup

import (
	"fmt"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/PuerkitoBio/goquery"
)

// Elements that carry no prose worth reading in a terminal.
const noiseSelector = "style, script, link, meta, img, sup.reference, .mw-editsection, " +
	"table, figure, .thumb, .navbox, .reflist, .mw-references-wrap, .metadata, " +
	".noprint, .mw-empty-elt, .hatnote, .shortdescription, .toc, .mw-cite-backlink"

// ToMarkdown renders the parsed article body as Markdown suitable for glamour.
// Links are flattened to their text since wiki-relative hrefs mean nothing
// in a terminal.
func ToMarkdown(raw string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("parsing article html: %w", err)
	}

	doc.Find(noiseSelector).Remove()
	doc.Find("a").Each(func(_ int, a *goquery.Selection) {
		a.ReplaceWithSelection(a.Contents())
	})

	root := doc.Find(".mw-parser-output").First()
	if root.Length() == 0 {
		root = doc.Find("body")
	}
	body, err := root.Html()
	if err != nil {
		return "", fmt.Errorf("serializing article html: %w", err)
	}

	md, err := htmltomarkdown.ConvertString(body)
	if err != nil {
		return "", fmt.Errorf("converting article to markdown: %w", err)
	}
	md = strings.TrimSpace(md)
	if md == "" {
		return "", nil
	}
	return md + "\n", nil
}

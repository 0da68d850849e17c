package wiki

import (
	"context"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"github.com/pders01/wikinsight/internal/markup"
)

const blurbChars = 280

// Featured returns the recent "Today's featured article" entries.
func (c *Client) Featured(ctx context.Context) ([]FeaturedItem, error) {
	params := url.Values{
		"action":     {"featuredfeed"},
		"feed":       {"featured"},
		"feedformat": {"atom"},
	}

	body, err := c.get(ctx, "featured", params, "application/atom+xml, application/xml, text/xml")
	if err != nil {
		return nil, err
	}
	defer body.Close()

	feed, err := gofeed.NewParser().Parse(body)
	if err != nil {
		return nil, &ParseError{Op: "featured", Err: err}
	}

	items := make([]FeaturedItem, 0, len(feed.Items))
	for _, item := range feed.Items {
		desc := item.Content
		if desc == "" {
			desc = item.Description
		}

		fi := FeaturedItem{
			Title: featuredTitle(desc, item.Title),
			Blurb: markup.Truncate(markup.PlainText(desc), blurbChars),
			Link:  item.Link,
		}
		if item.PublishedParsed != nil {
			fi.Published = *item.PublishedParsed
		} else if item.UpdatedParsed != nil {
			fi.Published = *item.UpdatedParsed
		}
		items = append(items, fi)
	}

	// Newest first.
	for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
		items[i], items[j] = items[j], items[i]
	}
	return items, nil
}

// featuredTitle finds the article a blurb is about: the blurb opens with
// the article name as a bold link.
func featuredTitle(blurb, fallback string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(blurb))
	if err != nil {
		return fallback
	}

	link := doc.Find("b a").First()
	if link.Length() == 0 {
		return fallback
	}
	if title, ok := link.Attr("title"); ok && strings.TrimSpace(title) != "" {
		return strings.TrimSpace(title)
	}
	if text := strings.TrimSpace(link.Text()); text != "" {
		return text
	}
	return fallback
}

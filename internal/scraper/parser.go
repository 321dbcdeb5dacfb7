package scraper

import (
	"io"
	"net/url"
	"strings"

	"golang.org/x/net/html"

	"github.com/seekerhq/intentcrawl/pkg/models"
)

// parseResult holds everything extracted from one HTML document.
type parseResult struct {
	Title   string
	Content string
	Links   []models.Link
}

// parseHTML walks the document once, collecting the title, the visible
// text (script and style subtrees are skipped), and all anchor links
// resolved against the page URL. Malformed HTML is tolerated; x/net/html
// parses whatever the web serves.
func parseHTML(base *url.URL, r io.Reader) (*parseResult, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	res := &parseResult{}
	var text strings.Builder

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.ElementNode:
			switch n.Data {
			case "script", "style", "noscript":
				return
			case "title":
				if res.Title == "" && n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
					res.Title = strings.TrimSpace(n.FirstChild.Data)
				}
			case "a":
				if link, ok := extractLink(base, n); ok {
					res.Links = append(res.Links, link)
				}
			}
		case html.TextNode:
			if t := strings.TrimSpace(n.Data); t != "" {
				text.WriteString(t)
				text.WriteByte('\n')
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	res.Content = strings.TrimSpace(text.String())
	if res.Title == "" {
		res.Title = base.String()
	}
	return res, nil
}

// extractLink resolves an anchor's href against the base URL. Only
// absolute http/https results are kept; mailto:, javascript:, and
// fragment-only anchors are dropped here rather than downstream.
func extractLink(base *url.URL, n *html.Node) (models.Link, bool) {
	var href string
	for _, attr := range n.Attr {
		if attr.Key == "href" {
			href = strings.TrimSpace(attr.Val)
			break
		}
	}
	if href == "" || strings.HasPrefix(href, "#") {
		return models.Link{}, false
	}

	ref, err := url.Parse(href)
	if err != nil {
		return models.Link{}, false
	}
	abs := base.ResolveReference(ref)
	if abs.Scheme != "http" && abs.Scheme != "https" {
		return models.Link{}, false
	}

	return models.Link{URL: abs.String(), Text: anchorText(n)}, true
}

func anchorText(n *html.Node) string {
	var b strings.Builder
	var walk func(c *html.Node)
	walk = func(c *html.Node) {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
		for gc := c.FirstChild; gc != nil; gc = gc.NextSibling {
			walk(gc)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(b.String()), " ")
}

package linkverify

import (
	"io"
	"net/url"
	"strings"

	"golang.org/x/net/html"

	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/util/sets"
)

// Link is a reference found in rendered HTML.
type Link struct {
	URL       string `json:"url"`
	Text      string `json:"text,omitempty"`
	Tag       string `json:"tag"`
	Attribute string `json:"attribute"`
	// IsInternal is set for links without a scheme or host.
	IsInternal bool `json:"isInternal"`
}

// Page is what a rendered document exposes to the verifier: its outgoing
// links and the element ids fragments may point at.
type Page struct {
	Links []Link
	IDs   sets.Set[string]
}

// Extract parses rendered HTML and collects links and element ids.
func Extract(r io.Reader) (Page, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return Page{}, errors.WrapError(err, errors.CategoryValidation, "failed to parse HTML").Build()
	}

	page := Page{IDs: sets.New[string]()}
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if id := getAttr(n, "id"); id != "" {
				page.IDs.Add(id)
			}
			extractElementLinks(n, &page.Links)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return page, nil
}

func extractElementLinks(n *html.Node, links *[]Link) {
	var attr, text string
	switch n.Data {
	case "a":
		attr, text = "href", extractText(n)
	case "img":
		attr, text = "src", getAttr(n, "alt")
	case "video", "audio", "source", "script":
		attr = "src"
	default:
		return
	}
	v := getAttr(n, attr)
	if v == "" {
		return
	}
	*links = append(*links, Link{
		URL:        v,
		Text:       text,
		Tag:        n.Data,
		Attribute:  attr,
		IsInternal: isInternalLink(v),
	})
}

func getAttr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func extractText(n *html.Node) string {
	if n.Type == html.TextNode {
		return strings.TrimSpace(n.Data)
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := extractText(c); t != "" {
			if b.Len() > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(t)
		}
	}
	return b.String()
}

func isInternalLink(link string) bool {
	if strings.HasPrefix(link, "#") {
		return true
	}
	u, err := url.Parse(link)
	if err != nil {
		return false
	}
	return u.Scheme == "" && u.Host == ""
}

// ShouldVerifyLink filters out links that cannot be checked: empty ones and
// special schemes.
func ShouldVerifyLink(link Link) bool {
	if link.URL == "" {
		return false
	}
	for _, p := range []string{"mailto:", "tel:", "javascript:", "data:"} {
		if strings.HasPrefix(link.URL, p) {
			return false
		}
	}
	return true
}

// isAsset reports whether a site-absolute path points at a file rather than
// a page route.
func isAsset(p string) bool {
	last := p[strings.LastIndex(p, "/")+1:]
	return strings.Contains(last, ".")
}

package search

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// PlainText flattens rendered HTML into searchable text and returns the
// text of its headings separately. Scripts and styles are dropped.
func PlainText(src []byte) (text string, headings []string) {
	z := html.NewTokenizer(bytes.NewReader(src))
	var (
		body    strings.Builder
		heading strings.Builder
		depth   int
		skip    int
	)
	write := func(b *strings.Builder, s string) {
		s = strings.Join(strings.Fields(s), " ")
		if s == "" {
			return
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(s)
	}

	for {
		switch z.Next() {
		case html.ErrorToken:
			return body.String(), headings
		case html.StartTagToken:
			name, _ := z.TagName()
			switch atom.Lookup(name) {
			case atom.Script, atom.Style:
				skip++
			case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
				depth++
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			switch atom.Lookup(name) {
			case atom.Script, atom.Style:
				if skip > 0 {
					skip--
				}
			case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
				if depth > 0 {
					depth--
				}
				if depth == 0 && heading.Len() > 0 {
					headings = append(headings, heading.String())
					heading.Reset()
				}
			}
		case html.TextToken:
			if skip > 0 {
				continue
			}
			t := string(z.Text())
			write(&body, t)
			if depth > 0 {
				write(&heading, t)
			}
		}
	}
}

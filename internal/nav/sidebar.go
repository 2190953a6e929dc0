// Package nav folds document metadata into sidebar trees and top-level
// navigation groups.
package nav

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"git.home.luguber.info/inful/docsite/internal/docs"
	"git.home.luguber.info/inful/docsite/internal/markdown"
)

// Item is a sidebar node. A node always has an href, children, or both.
type Item struct {
	Title    string  `json:"title"`
	Href     string  `json:"href,omitempty"`
	Order    float64 `json:"order"`
	Children []Item  `json:"children,omitempty"`
	// Segment is the slug segment the node stands for; the home node has none.
	Segment string `json:"segment,omitempty"`
}

// SidebarOptions controls href generation and ordering.
type SidebarOptions struct {
	// Root is the route of the locale's home page ("" or "/docs/zh").
	Root string
	// IntroSlug is skipped; it only redirects elsewhere.
	IntroSlug []string
	// Tag selects the collation used for title tie-breaks.
	Tag language.Tag
}

type node struct {
	item     Item
	children []int
}

// arena stores nodes by index; sections are addressed by their joined
// segment path.
type arena struct {
	nodes    []node
	sections map[string]int
	roots    []int
}

func (a *arena) add(it Item) int {
	a.nodes = append(a.nodes, node{item: it})
	return len(a.nodes) - 1
}

func (a *arena) attach(parent, child int) {
	if parent < 0 {
		a.roots = append(a.roots, child)
		return
	}
	a.nodes[parent].children = append(a.nodes[parent].children, child)
}

// section returns the section node for slug[:depth], creating the chain of
// intermediate sections on demand.
func (a *arena) section(slug []string, depth int) int {
	parent := -1
	for i := 1; i <= depth; i++ {
		key := docs.SlugKey(slug[:i])
		idx, ok := a.sections[key]
		if !ok {
			idx = a.add(Item{
				Title:   docs.Humanize(slug[i-1]),
				Order:   docs.DefaultOrder,
				Segment: slug[i-1],
			})
			a.sections[key] = idx
			a.attach(parent, idx)
		}
		parent = idx
	}
	return parent
}

// BuildSidebar builds the sidebar tree of one locale. The home document, if
// any, is always the first item.
func BuildSidebar(documents []docs.DocumentMetadata, opts SidebarOptions) []Item {
	a := &arena{sections: make(map[string]int)}
	introKey := docs.SlugKey(opts.IntroSlug)
	var home *Item

	for _, d := range documents {
		if len(opts.IntroSlug) > 0 && docs.SlugKey(d.Slug) == introKey {
			continue
		}
		if len(d.Slug) == 0 {
			if d.IsIndex {
				home = &Item{Title: d.Title, Href: markdown.Href(opts.Root, nil), Order: d.Order}
			}
			continue
		}

		href := markdown.Href(opts.Root, d.Slug)
		if d.IsIndex {
			idx := a.section(d.Slug, len(d.Slug))
			n := &a.nodes[idx].item
			n.Title, n.Href, n.Order = d.Title, href, d.Order
			continue
		}
		parent := a.section(d.Slug, len(d.Slug)-1)
		leaf := a.add(Item{
			Title:   d.Title,
			Href:    href,
			Order:   d.Order,
			Segment: d.Slug[len(d.Slug)-1],
		})
		a.attach(parent, leaf)
	}

	col := collate.New(opts.Tag)
	items := a.emit(a.roots, col)
	if home != nil {
		items = append([]Item{*home}, items...)
	}
	return items
}

func (a *arena) emit(ids []int, col *collate.Collator) []Item {
	out := make([]Item, 0, len(ids))
	for _, id := range ids {
		n := a.nodes[id]
		it := n.item
		it.Children = nil
		if len(n.children) > 0 {
			if children := a.emit(n.children, col); len(children) > 0 {
				it.Children = children
			}
		}
		if it.Href == "" && len(it.Children) == 0 {
			continue
		}
		out = append(out, it)
	}
	SortItems(out, col)
	return out
}

// SortItems orders siblings by (order, title). Equal keys keep their
// relative order.
func SortItems(items []Item, col *collate.Collator) {
	if col == nil {
		col = collate.New(language.Und)
	}
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Order != items[j].Order {
			return items[i].Order < items[j].Order
		}
		return col.CompareString(items[i].Title, items[j].Title) < 0
	})
}

// FirstHref returns the href of the first node, depth first, that has one.
func FirstHref(items []Item) string {
	for _, it := range items {
		if it.Href != "" {
			return it.Href
		}
		if h := FirstHref(it.Children); h != "" {
			return h
		}
	}
	return ""
}

// Find returns the top-level item whose segment matches.
func Find(items []Item, segment string) (Item, bool) {
	for _, it := range items {
		if it.Segment == segment {
			return it, true
		}
	}
	return Item{}, false
}

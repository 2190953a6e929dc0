package nav

import (
	"strings"

	"git.home.luguber.info/inful/docsite/internal/docs"
	"git.home.luguber.info/inful/docsite/internal/markdown"
)

// Group keys with built-in meaning.
const (
	GroupDocumentation = "documentation"
	GroupAPI           = "api"
)

// Group is a top-level navigation area.
type Group struct {
	Key   string `json:"key"`
	Title string `json:"title"`
	Href  string `json:"href"`
	Items []Item `json:"items,omitempty"`
}

// GroupLink is the top-bar entry of a group.
type GroupLink struct {
	Key    string `json:"key"`
	Title  string `json:"title"`
	Href   string `json:"href"`
	Active bool   `json:"active"`
}

// Section is a standalone group without a sidebar, such as a playground.
type Section struct {
	Key   string
	Title string
	// Href is relative to the locale root unless it is external.
	Href string
}

// GroupsInput is everything BuildNavigationGroups needs for one request.
type GroupsInput struct {
	// Items is the current locale's sidebar.
	Items []Item
	// DefaultItems is the default locale's sidebar with hrefs already
	// pointing into the current locale. The API group is taken from it.
	DefaultItems []Item
	Strings      map[string]string
	CurrentSlug  []string
	Sections     []Section
	APISegment   string
	// LocaleRoot is the current locale's home route.
	LocaleRoot string
}

// Navigation is the resolved navigation shell of one page.
type Navigation struct {
	Groups       []Group     `json:"groups"`
	ActiveGroup  string      `json:"activeGroup"`
	NavGroups    []GroupLink `json:"navGroups"`
	SidebarItems []Item      `json:"sidebarItems"`
}

// BuildNavigationGroups splits the sidebar into documentation and API
// groups, appends the standalone sections and picks the active group from
// the first slug segment.
func BuildNavigationGroups(in GroupsInput) Navigation {
	apiSegment := in.APISegment
	if apiSegment == "" {
		apiSegment = GroupAPI
	}
	root := in.LocaleRoot
	if root == "" {
		root = "/"
	}

	docItems := make([]Item, 0, len(in.Items))
	for _, it := range in.Items {
		if it.Segment == apiSegment {
			continue
		}
		docItems = append(docItems, it)
	}
	groups := []Group{{
		Key:   GroupDocumentation,
		Title: groupTitle(in.Strings, GroupDocumentation, ""),
		Href:  root,
		Items: docItems,
	}}

	hasAPI := false
	if api, ok := Find(in.DefaultItems, apiSegment); ok {
		href := api.Href
		if href == "" {
			href = FirstHref(api.Children)
		}
		if href != "" || len(api.Children) > 0 {
			hasAPI = true
			groups = append(groups, Group{
				Key:   GroupAPI,
				Title: groupTitle(in.Strings, GroupAPI, ""),
				Href:  href,
				Items: api.Children,
			})
		}
	}

	for _, s := range in.Sections {
		groups = append(groups, Group{
			Key:   s.Key,
			Title: groupTitle(in.Strings, s.Key, s.Title),
			Href:  sectionHref(root, s.Href),
		})
	}

	active := GroupDocumentation
	if hasAPI && len(in.CurrentSlug) > 0 && in.CurrentSlug[0] == apiSegment {
		active = GroupAPI
	}

	nav := Navigation{Groups: groups, ActiveGroup: active, SidebarItems: []Item{}}
	for _, g := range groups {
		nav.NavGroups = append(nav.NavGroups, GroupLink{Key: g.Key, Title: g.Title, Href: g.Href, Active: g.Key == active})
		if g.Key == active && g.Items != nil {
			nav.SidebarItems = g.Items
		}
	}
	return nav
}

func groupTitle(strs map[string]string, key, configured string) string {
	if t := strings.TrimSpace(strs[key]); t != "" {
		return t
	}
	if configured != "" {
		return configured
	}
	return docs.Humanize(key)
}

func sectionHref(root, href string) string {
	if href != "" && markdown.IsExternal(href) && !strings.HasPrefix(href, "/") {
		return href
	}
	rel := strings.Trim(href, "/")
	if rel == "" {
		return root
	}
	return markdown.Href(root, strings.Split(rel, "/"))
}

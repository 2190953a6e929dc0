package nav

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixtureItems(root string) []Item {
	return []Item{
		{Title: "Home", Href: root, Order: 0},
		{Title: "Guides", Href: root + "/guides", Order: 1, Segment: "guides"},
		{Title: "Api", Order: 9999, Segment: "api", Children: []Item{
			{Title: "Sub", Order: 1, Segment: "sub", Children: []Item{
				{Title: "Foo", Href: root + "/api/sub/foo", Order: 1, Segment: "foo"},
			}},
		}},
	}
}

func TestBuildNavigationGroupsDocumentationActive(t *testing.T) {
	nav := BuildNavigationGroups(GroupsInput{
		Items:        fixtureItems("/zh")[:2],
		DefaultItems: fixtureItems("/zh"),
		Strings:      map[string]string{"documentation": "文档"},
		CurrentSlug:  []string{"guides"},
		Sections:     []Section{{Key: "playground", Href: "/playground"}, {Key: "blog", Title: "Blog", Href: "https://blog.example.com"}},
		LocaleRoot:   "/zh",
	})

	require.Len(t, nav.Groups, 4)
	assert.Equal(t, GroupDocumentation, nav.ActiveGroup)

	assert.Equal(t, []GroupLink{
		{Key: "documentation", Title: "文档", Href: "/zh", Active: true},
		{Key: "api", Title: "Api", Href: "/zh/api/sub/foo"},
		{Key: "playground", Title: "Playground", Href: "/zh/playground"},
		{Key: "blog", Title: "Blog", Href: "https://blog.example.com"},
	}, nav.NavGroups)

	assert.Equal(t, []string{"Home", "Guides"}, titles(nav.SidebarItems))
	assert.Nil(t, nav.Groups[2].Items)
}

func TestBuildNavigationGroupsAPIActiveUsesDefaultTree(t *testing.T) {
	current := fixtureItems("")
	current[2].Children = nil
	current = current[:2]

	nav := BuildNavigationGroups(GroupsInput{
		Items:        current,
		DefaultItems: fixtureItems(""),
		CurrentSlug:  []string{"api", "sub", "foo"},
		Strings:      map[string]string{"api": "API Reference"},
	})
	assert.Equal(t, GroupAPI, nav.ActiveGroup)
	assert.Equal(t, []string{"Sub"}, titles(nav.SidebarItems))
	assert.Equal(t, "API Reference", nav.NavGroups[1].Title)
	assert.True(t, nav.NavGroups[1].Active)
	assert.Equal(t, "/", nav.Groups[0].Href)
}

func TestBuildNavigationGroupsStripsAPIFromDocumentation(t *testing.T) {
	items := fixtureItems("")
	nav := BuildNavigationGroups(GroupsInput{Items: items, DefaultItems: items})
	assert.Equal(t, []string{"Home", "Guides"}, titles(nav.Groups[0].Items))
}

func TestBuildNavigationGroupsWithoutAPI(t *testing.T) {
	items := fixtureItems("")[:2]
	nav := BuildNavigationGroups(GroupsInput{
		Items:        items,
		DefaultItems: items,
		CurrentSlug:  []string{"api", "missing"},
	})
	require.Len(t, nav.Groups, 1)
	assert.Equal(t, GroupDocumentation, nav.ActiveGroup)
}

func TestBuildNavigationGroupsCustomAPISegment(t *testing.T) {
	items := []Item{{Title: "Ref", Href: "/reference", Segment: "reference", Children: []Item{{Title: "X", Href: "/reference/x", Segment: "x"}}}}
	nav := BuildNavigationGroups(GroupsInput{
		Items:        items,
		DefaultItems: items,
		APISegment:   "reference",
		CurrentSlug:  []string{"reference", "x"},
	})
	assert.Equal(t, GroupAPI, nav.ActiveGroup)
	assert.Equal(t, "/reference", nav.Groups[1].Href)
	assert.Empty(t, nav.Groups[0].Items)
}

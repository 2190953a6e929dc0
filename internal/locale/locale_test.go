package locale

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	foundationerrors "git.home.luguber.info/inful/docsite/internal/foundation/errors"
)

func testRegistry(t *testing.T) *Registry {
	t.Helper()
	r, err := NewRegistry("en", []Locale{
		{ID: "zh", Label: "简体中文", Tag: language.MustParse("zh-Hans")},
		{ID: "en", Label: "English"},
		{ID: "ja"},
	})
	require.NoError(t, err)
	return r
}

func TestRegistryOrderAndLookup(t *testing.T) {
	r := testRegistry(t)

	assert.Equal(t, "en", r.Default().ID)
	assert.Equal(t, []string{"en", "zh", "ja"}, r.IDs())

	ja, ok := r.Get("ja")
	require.True(t, ok)
	assert.Equal(t, "ja", ja.Label)
	assert.Equal(t, language.Japanese, ja.Tag)

	_, ok = r.Get("fr")
	assert.False(t, ok)

	assert.True(t, r.IsDefault("en"))
	assert.False(t, r.IsDefault("zh"))
}

func TestRegistryPrefix(t *testing.T) {
	r := testRegistry(t)
	assert.Equal(t, "", r.Prefix("en"))
	assert.Equal(t, "/zh", r.Prefix("zh"))
}

func TestRegistryAllIsCopy(t *testing.T) {
	r := testRegistry(t)
	all := r.All()
	all[0].ID = "mutated"
	assert.Equal(t, "en", r.Default().ID)
}

func TestRegistryMatch(t *testing.T) {
	r := testRegistry(t)
	tests := []struct {
		header string
		want   string
	}{
		{"", "en"},
		{"zh-CN,zh;q=0.9,en;q=0.8", "zh"},
		{"ja-JP", "ja"},
		{"fr-FR", "en"},
		{"en-US,en;q=0.9", "en"},
		{"not a header ;;;", "en"},
	}
	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Match(tt.header).ID)
		})
	}
}

func TestNewRegistryErrors(t *testing.T) {
	_, err := NewRegistry("de", []Locale{{ID: "en"}})
	require.Error(t, err)
	assert.True(t, foundationerrors.HasCategory(err, foundationerrors.CategoryConfig))

	_, err = NewRegistry("en", []Locale{{ID: "en"}, {ID: "en"}})
	require.Error(t, err)

	_, err = NewRegistry("en", []Locale{{ID: "en"}, {ID: "not_a_tag!"}})
	require.Error(t, err)
}

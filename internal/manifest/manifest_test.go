package manifest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteRead(t *testing.T) {
	dir := t.TempDir()
	m := &BuildManifest{
		ID:        "b-1",
		Timestamp: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Commit:    "abc123",
		Status:    "success",
		Locales:   []LocaleOutput{{ID: "en", Pages: 2}, {ID: "zh", Pages: 2, FallbackPages: 1}},
		Pages: map[string]string{
			PageKey("en", []string{}):         "f1",
			PageKey("en", []string{"a", "b"}): "f2",
			PageKey("zh", []string{}):         "f3",
			PageKey("zh", []string{"a", "b"}): "f2",
		},
	}
	m.ContentHash = m.Hash()
	require.NoError(t, m.Write(dir))

	got, err := Read(dir)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, m.ID, got.ID)
	assert.True(t, m.Timestamp.Equal(got.Timestamp))
	assert.Equal(t, m.Locales, got.Locales)
	assert.Equal(t, m.Pages, got.Pages)
	assert.Equal(t, m.ContentHash, got.Hash())
}

func TestReadMissing(t *testing.T) {
	m, err := Read(t.TempDir())
	require.NoError(t, err)
	assert.Nil(t, m)
}

func TestHashDependsOnPages(t *testing.T) {
	a := &BuildManifest{Pages: map[string]string{"en:": "x"}}
	b := &BuildManifest{Pages: map[string]string{"en:": "y"}}
	assert.NotEqual(t, a.Hash(), b.Hash())
	assert.Equal(t, "en:a/b", PageKey("en", []string{"a", "b"}))
	assert.Equal(t, "en:", PageKey("en", nil))
}

func TestFromJSONInvalid(t *testing.T) {
	_, err := FromJSON([]byte("{"))
	require.Error(t, err)
}

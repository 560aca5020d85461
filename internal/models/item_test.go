package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCategory_NormalizeHint(t *testing.T) {
	tests := []struct {
		name     string
		category Category
		hint     TemplateHint
		expected TemplateHint
	}{
		{"source keeps main", CategorySources, HintMain, HintMain},
		{"source drops header", CategorySources, HintHeader, HintNone},
		{"header keeps header", CategoryHeaders, HintHeader, HintHeader},
		{"header keeps lib prefixed", CategoryHeaders, HintLibHeaderPrefixed, HintLibHeaderPrefixed},
		{"header drops main", CategoryHeaders, HintMain, HintNone},
		{"other drops everything", CategoryOthers, HintHeader, HintNone},
		{"other drops main", CategoryOthers, HintMain, HintNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, tt.category.NormalizeHint(tt.hint))
		})
	}
}

func TestCategory_Names(t *testing.T) {
	require.Equal(t, []Category{CategorySources, CategoryHeaders, CategoryOthers}, Categories())

	require.Equal(t, "Sources", CategorySources.String())
	require.Equal(t, "header", CategoryHeaders.TagName())
	require.Equal(t, "other", CategoryOthers.TagName())

	require.Equal(t, ItemHeaderFile, CategoryHeaders.FileKind())
	require.Equal(t, ItemOtherCategory, CategoryOthers.ItemKind())
	require.False(t, Category(7).IsValid())
}

func TestParseCategory(t *testing.T) {
	c, err := ParseCategory("headers")
	require.NoError(t, err)
	require.Equal(t, CategoryHeaders, c)

	_, err = ParseCategory("docs")
	require.Error(t, err)
}

func TestItemKind(t *testing.T) {
	require.True(t, ItemSourceFile.IsFile())
	require.False(t, ItemSourceCategory.IsFile())
	require.True(t, ItemOtherCategory.IsCategory())
	require.False(t, ItemProjectRoot.IsCategory())
}

package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseProjectKind(t *testing.T) {
	tests := []struct {
		input    string
		expected ProjectKind
		wantErr  bool
	}{
		{input: "console", expected: KindConsole},
		{input: "", expected: KindConsole},
		{input: "static", expected: KindStaticLibrary},
		{input: "static library", expected: KindStaticLibrary},
		{input: "Shared", expected: KindSharedLibrary},
		{input: "dynamic library", expected: KindSharedLibrary},
		{input: "plugin", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			kind, err := ParseProjectKind(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.expected, kind)
		})
	}
}

func TestProjectKind_String(t *testing.T) {
	require.Equal(t, "console", KindConsole.String())
	require.Equal(t, "static library", KindStaticLibrary.String())
	require.Equal(t, "dynamic library", KindSharedLibrary.String())
}

func TestLanguage_CMakeName(t *testing.T) {
	require.Equal(t, "CXX", LanguageCPP.CMakeName())
	require.Equal(t, "C", LanguageC.CMakeName())
	require.Equal(t, "C", Language("Fortran").CMakeName())
}

func TestLanguage_CategoryForFile(t *testing.T) {
	tests := []struct {
		lang     Language
		name     string
		expected Category
	}{
		{LanguageCPP, "main.cpp", CategorySources},
		{LanguageCPP, "util.cxx", CategorySources},
		{LanguageCPP, "util.hpp", CategoryHeaders},
		{LanguageCPP, "util.h", CategoryHeaders},
		{LanguageCPP, "README", CategoryOthers},
		{LanguageCPP, "notes.md", CategoryOthers},
		{LanguageC, "main.c", CategorySources},
		{LanguageC, "main.cpp", CategoryOthers},
		{LanguageC, "api.h", CategoryHeaders},
	}

	for _, tt := range tests {
		t.Run(string(tt.lang)+"/"+tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, tt.lang.CategoryForFile(tt.name))
		})
	}
}

func TestNewProjectDetails(t *testing.T) {
	d, err := NewProjectDetails(" demo ", "/work/demo/", LanguageCPP, KindConsole)
	require.NoError(t, err)
	require.Equal(t, "demo", d.Name)
	require.Equal(t, "/work/demo", d.Path)
	require.Equal(t, "/work/demo/demo.pro", d.ProjectFilePath())

	_, err = NewProjectDetails("", "/work", LanguageC, KindConsole)
	require.Error(t, err)

	_, err = NewProjectDetails("a/b", "/work", LanguageC, KindConsole)
	require.Error(t, err)

	_, err = NewProjectDetails("demo", "/work", LanguageC, ProjectKind("plugin"))
	require.Error(t, err)

	_, err = NewProjectDetails(`my "demo"`, "/work", LanguageC, KindConsole)
	require.ErrorContains(t, err, "quotes or line breaks")

	_, err = NewProjectDetails("de\nmo", "/work", LanguageC, KindConsole)
	require.Error(t, err)
}

func TestValidFileName(t *testing.T) {
	for _, name := range []string{"main.cpp", "my file.txt", "a-b_c.h++"} {
		require.True(t, ValidFileName(name), name)
	}
	for _, name := range []string{"", "src/a.c", `src\a.c`, `say"hi".txt`, "a\nb", "a\rb"} {
		require.False(t, ValidFileName(name), name)
	}
}

package models

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/tacticalyash/IDEStudio/internal/kmx"
)

// ProjectKind selects the artifact a project builds.
type ProjectKind string

const (
	KindConsole       ProjectKind = "console"
	KindStaticLibrary ProjectKind = "static library"
	KindSharedLibrary ProjectKind = "dynamic library"
)

// IsValid checks if the project kind is valid
func (k ProjectKind) IsValid() bool {
	switch k {
	case KindConsole, KindStaticLibrary, KindSharedLibrary:
		return true
	default:
		return false
	}
}

// String returns the persisted form of the kind ("console", "static library", "dynamic library").
func (k ProjectKind) String() string {
	return string(k)
}

// ParseProjectKind parses a kind from its persisted form or a short alias
// (static, shared, dynamic, lib).
func ParseProjectKind(s string) (ProjectKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "console", "executable", "exe", "":
		return KindConsole, nil
	case "static", "static library", "staticlib", "lib":
		return KindStaticLibrary, nil
	case "shared", "dynamic", "dynamic library", "shared library", "sharedlib":
		return KindSharedLibrary, nil
	default:
		return "", fmt.Errorf("invalid project kind: %s (must be console, static or shared)", s)
	}
}

// Language is the source language of a project.
type Language string

const (
	LanguageCPP Language = "C++"
	LanguageC   Language = "C"
)

// ParseLanguage parses a language name. Empty input defaults to C++.
func ParseLanguage(s string) (Language, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "c++", "cpp", "cxx", "":
		return LanguageCPP, nil
	case "c":
		return LanguageC, nil
	default:
		return "", fmt.Errorf("invalid language: %s (must be C or C++)", s)
	}
}

// String returns the language name
func (l Language) String() string {
	return string(l)
}

// CMakeName returns the identifier the build tool uses for the language.
// Anything other than C++ is treated as C.
func (l Language) CMakeName() string {
	if l == LanguageCPP {
		return "CXX"
	}
	return "C"
}

// SourceExtensions returns the file extensions offered for new source files.
func (l Language) SourceExtensions() []string {
	if l == LanguageCPP {
		return []string{"cpp", "CPP", "c++", "cxx", "CXX", "C"}
	}
	return []string{"c"}
}

// HeaderExtensions returns the file extensions offered for new header files.
func (l Language) HeaderExtensions() []string {
	if l == LanguageCPP {
		return []string{"h", "hpp", "H", "hxx", "h++"}
	}
	return []string{"h"}
}

// MainFileName is the default entry point file for console projects.
func (l Language) MainFileName() string {
	if l == LanguageCPP {
		return "main.cpp"
	}
	return "main.c"
}

// CategoryForFile guesses the category of a file name from its extension.
func (l Language) CategoryForFile(name string) Category {
	ext := strings.TrimPrefix(filepath.Ext(name), ".")
	if ext == "" {
		return CategoryOthers
	}
	for _, e := range l.SourceExtensions() {
		if e == ext {
			return CategorySources
		}
	}
	for _, e := range l.HeaderExtensions() {
		if e == ext {
			return CategoryHeaders
		}
	}
	return CategoryOthers
}

// ProjectDetails describes a project. It never changes after the project is created.
type ProjectDetails struct {
	// Name is the project name, also used for the persisted file name
	Name string

	// Path is the project root directory
	Path string

	// Language is the source language
	Language Language

	// Kind selects executable, static or shared library output
	Kind ProjectKind
}

// NewProjectDetails creates a validated ProjectDetails instance
func NewProjectDetails(name, path string, language Language, kind ProjectKind) (ProjectDetails, error) {
	d := ProjectDetails{
		Name:     strings.TrimSpace(name),
		Path:     filepath.Clean(path),
		Language: language,
		Kind:     kind,
	}
	if err := d.Validate(); err != nil {
		return ProjectDetails{}, err
	}
	return d, nil
}

// Validate checks that all fields are set and well formed.
func (d ProjectDetails) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("project name cannot be empty")
	}
	if !ValidFileName(d.Name) {
		return fmt.Errorf("project name %q must not contain path separators, quotes or line breaks", d.Name)
	}
	if strings.TrimSpace(d.Path) == "" {
		return fmt.Errorf("project path cannot be empty")
	}
	if d.Language != LanguageCPP && d.Language != LanguageC {
		return fmt.Errorf("invalid language: %s", d.Language)
	}
	if !d.Kind.IsValid() {
		return fmt.Errorf("invalid project kind: %s", d.Kind)
	}
	return nil
}

// ValidFileName reports whether name can be used as a project or file name:
// non-empty, a single path element, and storable in the project file.
func ValidFileName(name string) bool {
	if name == "" || strings.ContainsAny(name, `/\`) {
		return false
	}
	return kmx.ValidValue(name)
}

// ProjectFilePath returns the path of the persisted project file (<path>/<name>.pro).
func (d ProjectDetails) ProjectFilePath() string {
	return filepath.Join(d.Path, d.Name+".pro")
}

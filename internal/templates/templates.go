package templates

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/adrg/frontmatter"
	"github.com/tacticalyash/IDEStudio/internal/filesystem"
	"github.com/tacticalyash/IDEStudio/internal/models"
)

// Template file names, without the .txt extension.
const (
	MainC          = "main.c"
	MainCPP        = "main.cpp"
	Header         = "header.h"
	GlobalSettings = "global_settings.h"
)

// Extension is appended to a template name to form its file name.
const Extension = ".txt"

// LegacyGuardPlaceholder is replaced with the include guard macro in addition
// to the {{ .Guard }} template field.
const LegacyGuardPlaceholder = "${HEADER_H}"

var (
	// ErrUnknownTemplate is returned when no template file exists for a name.
	ErrUnknownTemplate = errors.New("unknown template")

	// ErrLoadFailed marks a template that could not be read or rendered.
	// The file is still created, with empty content.
	ErrLoadFailed = errors.New("template load failed")

	// ErrWriteFailed marks a file that could not be written to disk.
	ErrWriteFailed = errors.New("file write failed")
)

// Meta is the optional front matter of a template file.
type Meta struct {
	Description string `yaml:"description"`
	// Guard disables include guard substitution when set to false.
	Guard *bool `yaml:"guard"`
	// Raw skips template execution; only the legacy placeholder is replaced.
	Raw bool `yaml:"raw"`
}

// Template is a parsed template file.
type Template struct {
	Name string
	Path string
	Meta Meta
	Body string
}

// Data is passed to a template when rendering.
type Data struct {
	FileName string
	Project  string
	Prefix   string
	Guard    string
}

// SubstitutesGuard reports whether the include guard is filled in.
func (t *Template) SubstitutesGuard() bool {
	return t.Meta.Guard == nil || *t.Meta.Guard
}

// Render executes the template body with the sprig function map.
func (t *Template) Render(data Data) (string, error) {
	body := t.Body
	if t.SubstitutesGuard() {
		body = strings.ReplaceAll(body, LegacyGuardPlaceholder, data.Guard)
	}
	if t.Meta.Raw {
		return body, nil
	}

	tmpl, err := template.New(t.Name).Funcs(sprig.TxtFuncMap()).Parse(body)
	if err != nil {
		return "", fmt.Errorf("failed to parse template %s: %w", t.Name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", t.Name, err)
	}
	return buf.String(), nil
}

// Loader reads template files from a directory.
type Loader struct {
	fs  filesystem.FileSystem
	dir string
}

// NewLoader creates a loader for templates stored in dir.
func NewLoader(fs filesystem.FileSystem, dir string) *Loader {
	return &Loader{fs: fs, dir: dir}
}

// Dir returns the template directory
func (l *Loader) Dir() string {
	return l.dir
}

// Load reads and parses <dir>/<name>.txt.
func (l *Loader) Load(name string) (*Template, error) {
	path := filepath.Join(l.dir, name+Extension)
	if !l.fs.Exists(path) {
		return nil, fmt.Errorf("%s: %w", path, ErrUnknownTemplate)
	}

	data, err := l.fs.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read template %s: %w", path, err)
	}

	var meta Meta
	rest, err := frontmatter.Parse(bytes.NewReader(data), &meta)
	if err != nil {
		return nil, fmt.Errorf("failed to parse frontmatter of %s: %w", path, err)
	}

	return &Template{
		Name: name,
		Path: path,
		Meta: meta,
		Body: string(rest),
	}, nil
}

// List returns every template in the directory, sorted by name.
// Unparsable templates are skipped.
func (l *Loader) List() ([]*Template, error) {
	if !l.fs.Exists(l.dir) {
		return []*Template{}, nil
	}

	matches, err := l.fs.Glob(filepath.Join(l.dir, "*"+Extension))
	if err != nil {
		return nil, fmt.Errorf("failed to read template directory: %w", err)
	}

	var list []*Template
	for _, match := range matches {
		tmpl, err := l.Load(strings.TrimSuffix(filepath.Base(match), Extension))
		if err != nil {
			continue
		}
		list = append(list, tmpl)
	}

	sort.Slice(list, func(i, j int) bool {
		return list[i].Name < list[j].Name
	})
	return list, nil
}

// NameForHint selects the template used to pre-fill fileName.
// It reports false when the hint asks for an empty file.
func NameForHint(hint models.TemplateHint, fileName string) (string, bool) {
	switch hint {
	case models.HintMain:
		if strings.HasSuffix(fileName, ".c") {
			return MainC, true
		}
		return MainCPP, true
	case models.HintHeader, models.HintHeaderPrefixed:
		return Header, true
	case models.HintLibHeader, models.HintLibHeaderPrefixed:
		return GlobalSettings, true
	default:
		return "", false
	}
}

// HeaderGuard builds the include guard macro for a header:
// the optional prefix and the file name joined by '_', upper-cased, with
// dots replaced by underscores.
func HeaderGuard(prefix, fileName string) string {
	guard := fileName
	if prefix != "" {
		guard = prefix + "_" + fileName
	}
	return strings.ToUpper(strings.ReplaceAll(guard, ".", "_"))
}

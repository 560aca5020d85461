package templates

import (
	"fmt"
	"path/filepath"

	"github.com/tacticalyash/IDEStudio/internal/filesystem"
	"github.com/tacticalyash/IDEStudio/internal/models"
)

// Creator materializes new project files on disk, pre-filled from templates.
type Creator struct {
	fs      filesystem.FileSystem
	loader  *Loader
	project models.ProjectDetails
}

// NewCreator creates a Creator writing into the project's root directory.
func NewCreator(fs filesystem.FileSystem, loader *Loader, project models.ProjectDetails) *Creator {
	return &Creator{
		fs:      fs,
		loader:  loader,
		project: project,
	}
}

// Create writes <project path>/<fileName> and returns its content.
//
// A template that cannot be loaded or rendered still produces the file, with
// empty content, and the returned error wraps ErrLoadFailed. A file that
// cannot be written returns an error wrapping ErrWriteFailed.
func (c *Creator) Create(fileName string, hint models.TemplateHint, prefix string) (string, error) {
	content, templateErr := c.render(fileName, hint, prefix)
	if templateErr != nil {
		content = ""
	}

	path := filepath.Join(c.project.Path, fileName)
	if err := c.fs.WriteFile(path, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w: %w", path, ErrWriteFailed, err)
	}

	if templateErr != nil {
		return "", fmt.Errorf("%s: %w: %w", fileName, ErrLoadFailed, templateErr)
	}
	return content, nil
}

func (c *Creator) render(fileName string, hint models.TemplateHint, prefix string) (string, error) {
	name, ok := NameForHint(hint, fileName)
	if !ok {
		return "", nil
	}

	tmpl, err := c.loader.Load(name)
	if err != nil {
		return "", err
	}

	data := Data{
		FileName: fileName,
		Project:  c.project.Name,
		Prefix:   prefix,
	}
	switch hint {
	case models.HintHeader, models.HintLibHeader:
		data.Guard = HeaderGuard("", fileName)
	case models.HintHeaderPrefixed, models.HintLibHeaderPrefixed:
		data.Guard = HeaderGuard(prefix, fileName)
	}

	return tmpl.Render(data)
}

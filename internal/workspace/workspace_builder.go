package workspace

import (
	"path/filepath"

	"github.com/tacticalyash/IDEStudio/internal/config"
	"github.com/tacticalyash/IDEStudio/internal/filesystem"
	"github.com/tacticalyash/IDEStudio/internal/templates"
)

// WorkspaceBuilder helps create test workspaces
type WorkspaceBuilder struct {
	fs   *filesystem.MockFileSystem
	root string
}

// NewWorkspaceBuilder creates a new WorkspaceBuilder with an empty
// templates directory under root.
func NewWorkspaceBuilder(root string) *WorkspaceBuilder {
	fs := filesystem.NewMockFileSystem()
	fs.AddDir(root)
	fs.AddDir(filepath.Join(root, "templates"))
	fs.SetCurrentDir(root)

	return &WorkspaceBuilder{
		fs:   fs,
		root: root,
	}
}

// TemplatesDir returns the templates directory of the workspace
func (wb *WorkspaceBuilder) TemplatesDir() string {
	return filepath.Join(wb.root, "templates")
}

// AddTemplate adds <name>.txt to the templates directory
func (wb *WorkspaceBuilder) AddTemplate(name, body string) *WorkspaceBuilder {
	wb.fs.AddFile(filepath.Join(wb.TemplatesDir(), name+templates.Extension), []byte(body))
	return wb
}

// AddDefaultTemplates adds the four built-in templates with small bodies
func (wb *WorkspaceBuilder) AddDefaultTemplates() *WorkspaceBuilder {
	return wb.
		AddTemplate(templates.MainC, "int main(void) { return 0; }\n").
		AddTemplate(templates.MainCPP, "int main() { return 0; }\n").
		AddTemplate(templates.Header, "#ifndef ${HEADER_H}\n#define ${HEADER_H}\n#endif\n").
		AddTemplate(templates.GlobalSettings, "#ifndef {{ .Guard }}\n#define {{ .Guard }}\n#endif\n")
}

// AddConfig writes an idestudio.toml into dir, relative to the root
func (wb *WorkspaceBuilder) AddConfig(dir, content string) *WorkspaceBuilder {
	wb.fs.AddFile(filepath.Join(wb.root, dir, config.FileName), []byte(content))
	return wb
}

// AddProjectFile pre-creates a file inside a project directory
func (wb *WorkspaceBuilder) AddProjectFile(project, name, content string) *WorkspaceBuilder {
	wb.fs.AddFile(filepath.Join(wb.root, project, name), []byte(content))
	return wb
}

// Config returns a configuration pointing at the builder's templates
func (wb *WorkspaceBuilder) Config() config.Config {
	cfg := config.Default()
	cfg.Project.Templates = wb.TemplatesDir()
	return cfg
}

// ProjectPath returns the absolute path for a project directory name
func (wb *WorkspaceBuilder) ProjectPath(name string) string {
	return filepath.Join(wb.root, name)
}

// Build finalizes the workspace and returns the filesystem
func (wb *WorkspaceBuilder) Build() *filesystem.MockFileSystem {
	return wb.fs
}

// FileSystem returns the mock filesystem
func (wb *WorkspaceBuilder) FileSystem() *filesystem.MockFileSystem {
	return wb.fs
}
